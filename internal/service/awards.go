package service

import (
	"context"
	"fmt"

	"procurement/internal/models"
	"procurement/internal/repository"

	"go.uber.org/zap"
)

// SubmitAward registers an award decision for a (tender, quotation) pair.
//
// Awarded quantities accumulate on quotation items, while award items are
// merged by product and replaced. Missing products or quotation items do not
// abort the submission; they are reported in AwardResult.SkippedItems.
func (s *Service) SubmitAward(ctx context.Context, sub models.AwardSubmission) (models.AwardResult, error) {
	err := sub.Validate()
	if err != nil {
		return models.AwardResult{}, fmt.Errorf("service.Service.SubmitAward: %w", err)
	}
	if sub.Status == "" {
		sub.Status = models.AwardTotal
	}
	sub.Normalize()

	var result models.AwardResult
	err = s.store.Atomic(ctx, func(ctx context.Context, tx repository.Tx) error {
		result = models.AwardResult{SkippedItems: []models.SkippedItem{}}

		if err := requireTender(ctx, tx, sub.TenderId); err != nil {
			return err
		}
		quotation, ok, err := tx.QuotationById(ctx, sub.QuotationId)
		if err != nil {
			return err
		}
		if !ok {
			return models.NotFound("quotation", sub.QuotationId)
		}
		if quotation.TenderId != nil && *quotation.TenderId != sub.TenderId {
			return models.Invalid("quotation %d belongs to tender %d, not %d", quotation.Id, *quotation.TenderId, sub.TenderId)
		}

		if err := tx.LockAwardPair(ctx, sub.TenderId, sub.QuotationId); err != nil {
			return err
		}

		existing, found, err := tx.AwardByTenderAndQuotation(ctx, sub.TenderId, sub.QuotationId)
		if err != nil {
			return err
		}

		for _, item := range sub.AwardedItems {
			skipped, err := s.applyAwardedItem(ctx, tx, sub, item)
			if err != nil {
				return err
			}
			result.SkippedItems = append(result.SkippedItems, skipped...)
		}

		for _, item := range sub.NonAwardedItems {
			skipped, err := s.applyNonAwardedItem(ctx, tx, sub, item)
			if err != nil {
				return err
			}
			result.SkippedItems = append(result.SkippedItems, skipped...)
		}

		var award models.Award
		var touched []models.AwardItem
		if !found {
			award, err = s.createAward(ctx, tx, sub)
			touched = award.Items
		} else {
			award, touched, err = s.mergeAward(ctx, tx, existing, sub.AwardedItems)
		}
		if err != nil {
			return err
		}

		if _, err = s.syncDelivery(ctx, tx, award.TenderId, touched); err != nil {
			return err
		}

		if _, err = s.recomputeTenderStatus(ctx, tx, award.TenderId); err != nil {
			return err
		}

		award, _, err = tx.AwardById(ctx, award.Id)
		if err != nil {
			return err
		}
		result.Award = award
		return nil
	})
	if err != nil {
		return models.AwardResult{}, fmt.Errorf("service.Service.SubmitAward: %w", err)
	}

	for _, skipped := range result.SkippedItems {
		s.logSkipped(sub, skipped)
	}

	return result, nil
}

// applyAwardedItem accumulates the awarded quantity on the quotation item and takes it out of stock.
func (s *Service) applyAwardedItem(ctx context.Context, tx repository.Tx, sub models.AwardSubmission, item models.AwardedItemInput) ([]models.SkippedItem, error) {
	if item.ProductId == nil {
		return []models.SkippedItem{{Awarded: true, Reason: models.SkipNoProductId}}, nil
	}

	var skipped []models.SkippedItem
	productId := *item.ProductId

	qi, ok, err := tx.QuotationItem(ctx, sub.QuotationId, productId)
	if err != nil {
		return nil, err
	}
	if ok {
		updated, err := tx.AddAwardedQuantity(ctx, qi.Id, item.Quantity)
		if err != nil {
			return nil, err
		}
		status := models.ClassifyAwardedQuantity(updated.AwardedQuantity, updated.Quantity)
		if err = tx.SetQuotationItemAward(ctx, qi.Id, status, updated.AwardedQuantity); err != nil {
			return nil, err
		}
	} else {
		skipped = append(skipped, models.SkippedItem{ProductId: item.ProductId, Awarded: true, Reason: models.SkipQuotationItemMiss})
	}

	decremented, err := tx.DecrementStock(ctx, productId, item.Quantity)
	if err != nil {
		return nil, err
	}
	if !decremented {
		skipped = append(skipped, models.SkippedItem{ProductId: item.ProductId, Awarded: true, Reason: models.SkipProductMiss})
	}

	return skipped, nil
}

// applyNonAwardedItem marks the quotation item lost and records the winning competitor on the product.
func (s *Service) applyNonAwardedItem(ctx context.Context, tx repository.Tx, sub models.AwardSubmission, item models.NonAwardedItemInput) ([]models.SkippedItem, error) {
	if item.ProductId == nil {
		return []models.SkippedItem{{Awarded: false, Reason: models.SkipNoProductId}}, nil
	}

	var skipped []models.SkippedItem
	productId := *item.ProductId

	qi, ok, err := tx.QuotationItem(ctx, sub.QuotationId, productId)
	if err != nil {
		return nil, err
	}
	if ok {
		if err = tx.SetQuotationItemAward(ctx, qi.Id, models.ItemNotAwarded, qi.AwardedQuantity); err != nil {
			return nil, err
		}
	} else {
		skipped = append(skipped, models.SkippedItem{ProductId: item.ProductId, Reason: models.SkipQuotationItemMiss})
	}

	appended, err := tx.AppendAwardHistory(ctx, productId, models.CompetitorAward{
		Date:            s.now(),
		TenderId:        sub.TenderId,
		CompetitorName:  item.CompetitorName,
		CompetitorRut:   item.CompetitorRut,
		CompetitorPrice: item.CompetitorPrice,
		CompetitorBrand: item.CompetitorBrand,
	})
	if err != nil {
		return nil, err
	}
	if !appended {
		skipped = append(skipped, models.SkippedItem{ProductId: item.ProductId, Reason: models.SkipProductMiss})
	}

	return skipped, nil
}

func (s *Service) createAward(ctx context.Context, tx repository.Tx, sub models.AwardSubmission) (models.Award, error) {
	award := models.Award{
		TenderId:    sub.TenderId,
		QuotationId: sub.QuotationId,
		Status:      sub.Status,
		AwardDate:   dateOf(s.now()),
	}
	award.Items, _ = mergeAwardItems(nil, sub.AwardedItems)
	award.RecomputeTotals()

	return tx.CreateAward(ctx, award)
}

// mergeAward folds submitted items into an existing award and returns the
// award with its full item set plus the items that were added or replaced.
func (s *Service) mergeAward(ctx context.Context, tx repository.Tx, award models.Award, inputs []models.AwardedItemInput) (models.Award, []models.AwardItem, error) {
	merged, changed := mergeAwardItems(award.Items, inputs)

	touched := make([]models.AwardItem, 0, len(changed))
	for _, i := range changed {
		item := merged[i]
		if item.Id == 0 {
			item.AwardId = award.Id
			created, err := tx.AddAwardItem(ctx, item)
			if err != nil {
				return award, nil, err
			}
			merged[i] = created
		} else if err := tx.UpdateAwardItem(ctx, item); err != nil {
			return award, nil, err
		}
		touched = append(touched, merged[i])
	}

	award.Items = merged
	award.RecomputeTotals()
	if err := tx.UpdateAwardTotals(ctx, award); err != nil {
		return award, nil, err
	}

	return award, touched, nil
}

// mergeAwardItems replaces quantity and price of items whose product is
// already present and appends the rest. It returns the merged set and the
// positions that changed. Items without a product are always appended.
func mergeAwardItems(items []models.AwardItem, inputs []models.AwardedItemInput) ([]models.AwardItem, []int) {
	merged := make([]models.AwardItem, len(items), len(items)+len(inputs))
	copy(merged, items)

	changed := []int{}
	seen := map[int]bool{}
	award := models.Award{Items: merged}
	for _, in := range inputs {
		pos := -1
		if in.ProductId != nil {
			if i, ok := award.ItemIndexByProduct(*in.ProductId); ok {
				pos = i
			}
		}

		if pos >= 0 {
			award.Items[pos].Quantity = in.Quantity
			award.Items[pos].UnitPrice = in.UnitPrice
			if in.ProductName != "" {
				award.Items[pos].ProductName = in.ProductName
			}
		} else {
			award.Items = append(award.Items, models.AwardItem{
				ProductId:   in.ProductId,
				ProductName: in.ProductName,
				Quantity:    in.Quantity,
				UnitPrice:   in.UnitPrice,
			})
			pos = len(award.Items) - 1
		}

		if !seen[pos] {
			seen[pos] = true
			changed = append(changed, pos)
		}
	}

	return award.Items, changed
}

// AddAwardItem appends one item to an existing award without touching
// quotations, stock or deliveries.
func (s *Service) AddAwardItem(ctx context.Context, awardId int64, in models.AwardedItemInput) (models.Award, error) {
	if in.Quantity <= 0 {
		return models.Award{}, fmt.Errorf("service.Service.AddAwardItem: %w", models.Invalid("quantity must be positive, got %d", in.Quantity))
	}
	if in.UnitPrice.IsNegative() {
		return models.Award{}, fmt.Errorf("service.Service.AddAwardItem: %w", models.Invalid("unitPrice must not be negative"))
	}
	in.UnitPrice = models.Money(in.UnitPrice)

	var award models.Award
	err := s.store.Atomic(ctx, func(ctx context.Context, tx repository.Tx) error {
		var ok bool
		var err error
		award, ok, err = tx.AwardById(ctx, awardId)
		if err != nil {
			return err
		}
		if !ok {
			return models.NotFound("award", awardId)
		}

		item, err := tx.AddAwardItem(ctx, models.AwardItem{
			AwardId:     awardId,
			ProductId:   in.ProductId,
			ProductName: in.ProductName,
			Quantity:    in.Quantity,
			UnitPrice:   in.UnitPrice,
		})
		if err != nil {
			return err
		}

		award.Items = append(award.Items, item)
		award.RecomputeTotals()
		if err = tx.UpdateAwardTotals(ctx, award); err != nil {
			return err
		}

		if _, err = s.recomputeTenderStatus(ctx, tx, award.TenderId); err != nil {
			return err
		}

		award, _, err = tx.AwardById(ctx, awardId)
		return err
	})
	if err != nil {
		return models.Award{}, fmt.Errorf("service.Service.AddAwardItem: %w", err)
	}

	return award, nil
}

// RemoveAward deletes an award with its items and re-derives the tender status.
func (s *Service) RemoveAward(ctx context.Context, awardId int64) error {
	err := s.store.Atomic(ctx, func(ctx context.Context, tx repository.Tx) error {
		award, ok, err := tx.AwardById(ctx, awardId)
		if err != nil {
			return err
		}
		if !ok {
			return models.NotFound("award", awardId)
		}

		if err = tx.DeleteAward(ctx, awardId); err != nil {
			return err
		}

		_, err = s.recomputeTenderStatus(ctx, tx, award.TenderId)
		return err
	})
	if err != nil {
		return fmt.Errorf("service.Service.RemoveAward: %w", err)
	}

	s.log.Info("award removed", zap.Int64("awardId", awardId))
	return nil
}

// UpdateAwardedQuantity overwrites the awarded quantity of a quotation item
// and mirrors it onto the tender's delivery item for the same product.
func (s *Service) UpdateAwardedQuantity(ctx context.Context, quotationItemId int64, quantity int) (models.QuotationItem, error) {
	if quantity < 0 {
		return models.QuotationItem{}, fmt.Errorf("service.Service.UpdateAwardedQuantity: %w", models.Invalid("quantity must not be negative, got %d", quantity))
	}

	var item models.QuotationItem
	err := s.store.Atomic(ctx, func(ctx context.Context, tx repository.Tx) error {
		var ok bool
		var err error
		item, ok, err = tx.QuotationItemById(ctx, quotationItemId)
		if err != nil {
			return err
		}
		if !ok {
			return models.NotFound("quotation item", quotationItemId)
		}

		item.AwardedQuantity = quantity
		item.AwardStatus = models.ClassifyAwardedQuantity(quantity, item.Quantity)
		if err = tx.SetQuotationItemAward(ctx, item.Id, item.AwardStatus, item.AwardedQuantity); err != nil {
			return err
		}

		quotation, ok, err := tx.QuotationById(ctx, item.QuotationId)
		if err != nil {
			return err
		}
		if !ok || quotation.TenderId == nil {
			return nil
		}
		tenderId := *quotation.TenderId

		if item.ProductId != nil {
			delivery, found, err := tx.DeliveryByTender(ctx, tenderId)
			if err != nil {
				return err
			}
			if found {
				di, found, err := tx.DeliveryItemByProduct(ctx, delivery.Id, *item.ProductId)
				if err != nil {
					return err
				}
				if found {
					di.Quantity = quantity
					if err = tx.UpdateDeliveryItem(ctx, di); err != nil {
						return err
					}
				}
			}
		}

		_, err = s.recomputeTenderStatus(ctx, tx, tenderId)
		return err
	})
	if err != nil {
		return models.QuotationItem{}, fmt.Errorf("service.Service.UpdateAwardedQuantity: %w", err)
	}

	return item, nil
}

// GetAward returns one award with its items.
func (s *Service) GetAward(ctx context.Context, awardId int64) (models.Award, error) {
	var award models.Award
	err := s.store.Atomic(ctx, func(ctx context.Context, tx repository.Tx) error {
		var ok bool
		var err error
		award, ok, err = tx.AwardById(ctx, awardId)
		if err != nil {
			return err
		}
		if !ok {
			return models.NotFound("award", awardId)
		}
		return nil
	})
	if err != nil {
		return models.Award{}, fmt.Errorf("service.Service.GetAward: %w", err)
	}
	return award, nil
}

// GetTenderAwards lists the awards of a tender, newest first.
func (s *Service) GetTenderAwards(ctx context.Context, tenderId int64) ([]models.Award, error) {
	var awards []models.Award
	err := s.store.Atomic(ctx, func(ctx context.Context, tx repository.Tx) error {
		if err := requireTender(ctx, tx, tenderId); err != nil {
			return err
		}
		var err error
		awards, err = tx.AwardsByTender(ctx, tenderId)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("service.Service.GetTenderAwards: %w", err)
	}
	return awards, nil
}

// GetQuotationAwards lists the awards a quotation received across tenders.
func (s *Service) GetQuotationAwards(ctx context.Context, quotationId int64) ([]models.Award, error) {
	var awards []models.Award
	err := s.store.Atomic(ctx, func(ctx context.Context, tx repository.Tx) error {
		if _, ok, err := tx.QuotationById(ctx, quotationId); err != nil {
			return err
		} else if !ok {
			return models.NotFound("quotation", quotationId)
		}
		var err error
		awards, err = tx.AwardsByQuotation(ctx, quotationId)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("service.Service.GetQuotationAwards: %w", err)
	}
	return awards, nil
}

func (s *Service) logSkipped(sub models.AwardSubmission, skipped models.SkippedItem) {
	fields := []zap.Field{
		zap.Int64("tenderId", sub.TenderId),
		zap.Int64("quotationId", sub.QuotationId),
		zap.Bool("awarded", skipped.Awarded),
		zap.String("reason", string(skipped.Reason)),
	}
	if skipped.ProductId != nil {
		fields = append(fields, zap.Int64("productId", *skipped.ProductId))
	}
	s.log.Warn("award side effect skipped", fields...)
}

func requireTender(ctx context.Context, tx repository.Tx, tenderId int64) error {
	_, ok, err := tx.TenderById(ctx, tenderId)
	if err != nil {
		return err
	}
	if !ok {
		return models.NotFound("tender", tenderId)
	}
	return nil
}
