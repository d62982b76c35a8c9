package service

import (
	"context"
	"fmt"

	"procurement/internal/models"
	"procurement/internal/repository"
)

func (s *Service) CreateTender(ctx context.Context, tender models.Tender) (models.Tender, error) {
	tender.Status = models.TenderPending
	err := tender.Validate()
	if err != nil {
		return models.Tender{}, fmt.Errorf("service.Service.CreateTender: %w", err)
	}

	err = s.store.Atomic(ctx, func(ctx context.Context, tx repository.Tx) error {
		tender, err = tx.CreateTender(ctx, tender)
		return err
	})
	if err != nil {
		return models.Tender{}, fmt.Errorf("service.Service.CreateTender: %w", err)
	}

	return tender, nil
}

func (s *Service) GetTender(ctx context.Context, tenderId int64) (models.Tender, error) {
	var tender models.Tender
	err := s.store.Atomic(ctx, func(ctx context.Context, tx repository.Tx) error {
		var ok bool
		var err error
		tender, ok, err = tx.TenderById(ctx, tenderId)
		if err != nil {
			return err
		}
		if !ok {
			return models.NotFound("tender", tenderId)
		}
		return nil
	})
	if err != nil {
		return models.Tender{}, fmt.Errorf("service.Service.GetTender: %w", err)
	}
	return tender, nil
}

// CreateQuotation stores a quotation with all items pending and nothing awarded.
func (s *Service) CreateQuotation(ctx context.Context, quotation models.Quotation) (models.Quotation, error) {
	if quotation.Status == "" {
		quotation.Status = models.QuotationCreated
	}
	for i := range quotation.Items {
		quotation.Items[i].AwardStatus = models.ItemPending
		quotation.Items[i].AwardedQuantity = 0
		quotation.Items[i].PriceWithoutTax = models.Money(quotation.Items[i].PriceWithoutTax)
		quotation.Items[i].PriceWithTax = models.Money(quotation.Items[i].PriceWithTax)
	}

	err := quotation.Validate()
	if err != nil {
		return models.Quotation{}, fmt.Errorf("service.Service.CreateQuotation: %w", err)
	}

	err = s.store.Atomic(ctx, func(ctx context.Context, tx repository.Tx) error {
		if quotation.TenderId != nil {
			if err := requireTender(ctx, tx, *quotation.TenderId); err != nil {
				return err
			}
		}
		var err error
		quotation, err = tx.CreateQuotation(ctx, quotation)
		return err
	})
	if err != nil {
		return models.Quotation{}, fmt.Errorf("service.Service.CreateQuotation: %w", err)
	}

	return quotation, nil
}

func (s *Service) GetQuotation(ctx context.Context, quotationId int64) (models.Quotation, error) {
	var quotation models.Quotation
	err := s.store.Atomic(ctx, func(ctx context.Context, tx repository.Tx) error {
		var ok bool
		var err error
		quotation, ok, err = tx.QuotationById(ctx, quotationId)
		if err != nil {
			return err
		}
		if !ok {
			return models.NotFound("quotation", quotationId)
		}
		return nil
	})
	if err != nil {
		return models.Quotation{}, fmt.Errorf("service.Service.GetQuotation: %w", err)
	}
	return quotation, nil
}

func (s *Service) CreateProduct(ctx context.Context, product models.Product) (models.Product, error) {
	product.AwardHistory = []models.CompetitorAward{}
	err := product.Validate()
	if err != nil {
		return models.Product{}, fmt.Errorf("service.Service.CreateProduct: %w", err)
	}

	err = s.store.Atomic(ctx, func(ctx context.Context, tx repository.Tx) error {
		product, err = tx.CreateProduct(ctx, product)
		return err
	})
	if err != nil {
		return models.Product{}, fmt.Errorf("service.Service.CreateProduct: %w", err)
	}

	return product, nil
}

func (s *Service) GetProduct(ctx context.Context, productId int64) (models.Product, error) {
	var product models.Product
	err := s.store.Atomic(ctx, func(ctx context.Context, tx repository.Tx) error {
		var ok bool
		var err error
		product, ok, err = tx.ProductById(ctx, productId)
		if err != nil {
			return err
		}
		if !ok {
			return models.NotFound("product", productId)
		}
		return nil
	})
	if err != nil {
		return models.Product{}, fmt.Errorf("service.Service.GetProduct: %w", err)
	}
	return product, nil
}
