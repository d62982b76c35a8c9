package service

import (
	"context"
	"fmt"
	"strings"

	"procurement/internal/models"
	"procurement/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// syncDelivery mirrors award items onto the tender's delivery, creating the
// delivery on first use. Quantities of existing product lines are replaced.
func (s *Service) syncDelivery(ctx context.Context, tx repository.Tx, tenderId int64, items []models.AwardItem) (models.Delivery, error) {
	delivery, ok, err := tx.DeliveryByTender(ctx, tenderId)
	if err != nil {
		return models.Delivery{}, err
	}
	if !ok {
		delivery, err = tx.CreateDelivery(ctx, models.Delivery{TenderId: tenderId, Status: models.DeliveryPending})
		if err != nil {
			return models.Delivery{}, err
		}
		s.log.Debug("delivery created", zap.Int64("tenderId", tenderId), zap.Int64("deliveryId", delivery.Id))
	}

	for _, item := range items {
		if item.ProductId != nil {
			existing, found, err := tx.DeliveryItemByProduct(ctx, delivery.Id, *item.ProductId)
			if err != nil {
				return models.Delivery{}, err
			}
			if found {
				existing.Quantity = item.Quantity
				if err = tx.UpdateDeliveryItem(ctx, existing); err != nil {
					return models.Delivery{}, err
				}
				continue
			}
		}

		code, name, err := s.deliveryLabels(ctx, tx, item)
		if err != nil {
			return models.Delivery{}, err
		}

		_, err = tx.AddDeliveryItem(ctx, models.DeliveryItem{
			DeliveryId:    delivery.Id,
			ProductId:     item.ProductId,
			ProductCode:   code,
			ProductName:   name,
			Quantity:      item.Quantity,
			Status:        models.DeliveryItemPending,
			EstimatedDate: dateOf(s.now().Add(s.leadTime)),
		})
		if err != nil {
			return models.Delivery{}, err
		}
	}

	delivery, _, err = tx.DeliveryById(ctx, delivery.Id)
	return delivery, err
}

// deliveryLabels picks code and name for a new delivery line: award item
// name first, then the catalog product, then a generated placeholder.
func (s *Service) deliveryLabels(ctx context.Context, tx repository.Tx, item models.AwardItem) (string, string, error) {
	code, name := "", item.ProductName
	if item.ProductId != nil {
		product, ok, err := tx.ProductById(ctx, *item.ProductId)
		if err != nil {
			return "", "", err
		}
		if ok {
			code = product.Code
			if name == "" {
				name = product.Name
			}
		}
	}

	if code == "" {
		code = name
	}
	if code == "" {
		code = placeholderCode()
	}
	if name == "" {
		if item.ProductId != nil {
			name = fmt.Sprintf("Product %d", *item.ProductId)
		} else {
			name = code
		}
	}

	return code, name, nil
}

func placeholderCode() string {
	return "SKU-" + strings.ToUpper(uuid.NewString()[:8])
}

// UpdateDeliveryItem applies a partial update to one delivery item.
// Moving an item to Delivered without a date stamps the current time.
func (s *Service) UpdateDeliveryItem(ctx context.Context, deliveryId, itemId int64, patch models.DeliveryItemPatch) (models.DeliveryItem, error) {
	err := patch.Validate()
	if err != nil {
		return models.DeliveryItem{}, fmt.Errorf("service.Service.UpdateDeliveryItem: %w", err)
	}

	var item models.DeliveryItem
	err = s.store.Atomic(ctx, func(ctx context.Context, tx repository.Tx) error {
		var ok bool
		var err error
		item, ok, err = tx.DeliveryItemById(ctx, deliveryId, itemId)
		if err != nil {
			return err
		}
		if !ok {
			return models.NotFound("delivery item", itemId)
		}

		if patch.Status != nil {
			item.Status = *patch.Status
			if item.Status == models.DeliveryItemDelivered && patch.ActualDate == nil {
				now := s.now()
				item.ActualDate = &now
			}
		}
		if patch.ActualDate != nil {
			actual := *patch.ActualDate
			item.ActualDate = &actual
		}
		if patch.Observations != nil {
			observations := *patch.Observations
			item.Observations = &observations
		}
		if patch.Quantity != nil {
			item.Quantity = *patch.Quantity
		}

		return tx.UpdateDeliveryItem(ctx, item)
	})
	if err != nil {
		return models.DeliveryItem{}, fmt.Errorf("service.Service.UpdateDeliveryItem: %w", err)
	}

	return item, nil
}

// AddInvoice attaches an invoice to a delivery. A missing invoice number is generated.
func (s *Service) AddInvoice(ctx context.Context, deliveryId int64, inv models.Invoice) (models.Invoice, error) {
	err := inv.Validate()
	if err != nil {
		return models.Invoice{}, fmt.Errorf("service.Service.AddInvoice: %w", err)
	}

	err = s.store.Atomic(ctx, func(ctx context.Context, tx repository.Tx) error {
		_, ok, err := tx.DeliveryById(ctx, deliveryId)
		if err != nil {
			return err
		}
		if !ok {
			return models.NotFound("delivery", deliveryId)
		}

		inv.DeliveryId = deliveryId
		inv.Amount = models.Money(inv.Amount)
		if inv.InvoiceNumber == "" {
			inv.InvoiceNumber = "INV-" + strings.ToUpper(uuid.NewString()[:8])
		}
		if inv.IssueDate.IsZero() {
			inv.IssueDate = dateOf(s.now())
		}

		inv, err = tx.AddInvoice(ctx, inv)
		return err
	})
	if err != nil {
		return models.Invoice{}, fmt.Errorf("service.Service.AddInvoice: %w", err)
	}

	return inv, nil
}

// GetDelivery returns a delivery with its items and invoices.
func (s *Service) GetDelivery(ctx context.Context, deliveryId int64) (models.Delivery, error) {
	var delivery models.Delivery
	err := s.store.Atomic(ctx, func(ctx context.Context, tx repository.Tx) error {
		var ok bool
		var err error
		delivery, ok, err = tx.DeliveryById(ctx, deliveryId)
		if err != nil {
			return err
		}
		if !ok {
			return models.NotFound("delivery", deliveryId)
		}
		return nil
	})
	if err != nil {
		return models.Delivery{}, fmt.Errorf("service.Service.GetDelivery: %w", err)
	}
	return delivery, nil
}

// GetTenderDelivery returns the single delivery of a tender.
func (s *Service) GetTenderDelivery(ctx context.Context, tenderId int64) (models.Delivery, error) {
	var delivery models.Delivery
	err := s.store.Atomic(ctx, func(ctx context.Context, tx repository.Tx) error {
		if err := requireTender(ctx, tx, tenderId); err != nil {
			return err
		}
		var ok bool
		var err error
		delivery, ok, err = tx.DeliveryByTender(ctx, tenderId)
		if err != nil {
			return err
		}
		if !ok {
			return models.NotFound("delivery for tender", tenderId)
		}
		return nil
	})
	if err != nil {
		return models.Delivery{}, fmt.Errorf("service.Service.GetTenderDelivery: %w", err)
	}
	return delivery, nil
}
