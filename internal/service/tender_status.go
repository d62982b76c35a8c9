package service

import (
	"context"
	"fmt"

	"procurement/internal/models"
	"procurement/internal/repository"

	"go.uber.org/zap"
)

// RecomputeTenderStatus derives the tender status from its lines and awards and persists it.
func (s *Service) RecomputeTenderStatus(ctx context.Context, tenderId int64) (models.TenderStatus, error) {
	var status models.TenderStatus
	err := s.store.Atomic(ctx, func(ctx context.Context, tx repository.Tx) error {
		var err error
		status, err = s.recomputeTenderStatus(ctx, tx, tenderId)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("service.Service.RecomputeTenderStatus: %w", err)
	}
	return status, nil
}

func (s *Service) recomputeTenderStatus(ctx context.Context, tx repository.Tx, tenderId int64) (models.TenderStatus, error) {
	tender, ok, err := tx.TenderById(ctx, tenderId)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", models.NotFound("tender", tenderId)
	}

	awards, err := tx.AwardsByTender(ctx, tenderId)
	if err != nil {
		return "", err
	}

	ledger, err := awardedLedger(ctx, tx, tenderId, awards)
	if err != nil {
		return "", err
	}

	status := models.AggregateTenderStatus(tender.Lines, awards, ledger)
	if status == tender.Status {
		return status, nil
	}

	if err = tx.SetTenderStatus(ctx, tenderId, status); err != nil {
		return "", err
	}

	s.log.Debug("tender status changed",
		zap.Int64("tenderId", tenderId),
		zap.String("from", string(tender.Status)),
		zap.String("to", string(status)),
	)
	return status, nil
}

// awardedLedger sums awarded quantities per product over the quotation items
// of the tender's awarded quotations. Only quotations bound to tenderId count,
// since a free quotation may carry quantities awarded under other tenders.
// Items marked NotAwarded are left out.
func awardedLedger(ctx context.Context, tx repository.Tx, tenderId int64, awards []models.Award) (map[int64]int, error) {
	ledger := make(map[int64]int)
	seen := make(map[int64]bool)
	for _, award := range awards {
		if seen[award.QuotationId] {
			continue
		}
		seen[award.QuotationId] = true

		quotation, ok, err := tx.QuotationById(ctx, award.QuotationId)
		if err != nil {
			return nil, err
		}
		if !ok || quotation.TenderId == nil || *quotation.TenderId != tenderId {
			continue
		}
		for _, item := range quotation.Items {
			if item.ProductId != nil && item.AwardStatus != models.ItemNotAwarded {
				ledger[*item.ProductId] += item.AwardedQuantity
			}
		}
	}
	return ledger, nil
}
