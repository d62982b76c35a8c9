package repository

import (
	"context"

	"procurement/internal/models"
)

// Store runs a unit of work. Everything fn does through tx commits together
// or not at all.
type Store interface {
	Atomic(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	Close() error
}

// Lookups return (value, found, error); a missing row is not an error.

type TenderRepository interface {
	CreateTender(ctx context.Context, t models.Tender) (models.Tender, error)
	TenderById(ctx context.Context, id int64) (models.Tender, bool, error)
	TenderLines(ctx context.Context, tenderId int64) ([]models.TenderLine, error)
	SetTenderStatus(ctx context.Context, id int64, status models.TenderStatus) error
}

type QuotationRepository interface {
	CreateQuotation(ctx context.Context, q models.Quotation) (models.Quotation, error)
	QuotationById(ctx context.Context, id int64) (models.Quotation, bool, error)
	QuotationItem(ctx context.Context, quotationId, productId int64) (models.QuotationItem, bool, error)
	QuotationItemById(ctx context.Context, id int64) (models.QuotationItem, bool, error)
	// AddAwardedQuantity atomically increments awarded quantity and returns the updated item.
	AddAwardedQuantity(ctx context.Context, itemId int64, delta int) (models.QuotationItem, error)
	SetQuotationItemAward(ctx context.Context, itemId int64, status models.ItemAwardStatus, awardedQuantity int) error
}

type ProductRepository interface {
	CreateProduct(ctx context.Context, p models.Product) (models.Product, error)
	ProductById(ctx context.Context, id int64) (models.Product, bool, error)
	// DecrementStock reports false when the product does not exist. Stock may go negative.
	DecrementStock(ctx context.Context, productId int64, quantity int) (bool, error)
	AppendAwardHistory(ctx context.Context, productId int64, entry models.CompetitorAward) (bool, error)
}

type AwardRepository interface {
	// LockAwardPair serializes award submissions for one (tender, quotation) pair until the unit ends.
	LockAwardPair(ctx context.Context, tenderId, quotationId int64) error
	AwardByTenderAndQuotation(ctx context.Context, tenderId, quotationId int64) (models.Award, bool, error)
	AwardById(ctx context.Context, id int64) (models.Award, bool, error)
	AwardsByTender(ctx context.Context, tenderId int64) ([]models.Award, error)
	AwardsByQuotation(ctx context.Context, quotationId int64) ([]models.Award, error)
	CreateAward(ctx context.Context, a models.Award) (models.Award, error)
	AddAwardItem(ctx context.Context, item models.AwardItem) (models.AwardItem, error)
	UpdateAwardItem(ctx context.Context, item models.AwardItem) error
	UpdateAwardTotals(ctx context.Context, a models.Award) error
	DeleteAward(ctx context.Context, id int64) error
}

type DeliveryRepository interface {
	DeliveryByTender(ctx context.Context, tenderId int64) (models.Delivery, bool, error)
	DeliveryById(ctx context.Context, id int64) (models.Delivery, bool, error)
	CreateDelivery(ctx context.Context, d models.Delivery) (models.Delivery, error)
	DeliveryItemByProduct(ctx context.Context, deliveryId, productId int64) (models.DeliveryItem, bool, error)
	DeliveryItemById(ctx context.Context, deliveryId, itemId int64) (models.DeliveryItem, bool, error)
	AddDeliveryItem(ctx context.Context, item models.DeliveryItem) (models.DeliveryItem, error)
	UpdateDeliveryItem(ctx context.Context, item models.DeliveryItem) error
	AddInvoice(ctx context.Context, inv models.Invoice) (models.Invoice, error)
}

type Tx interface {
	TenderRepository
	QuotationRepository
	ProductRepository
	AwardRepository
	DeliveryRepository
}
