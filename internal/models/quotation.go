package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type QuotationStatus string

const (
	QuotationCreated   QuotationStatus = "Created"
	QuotationFinalized QuotationStatus = "Finalized"
)

func ValidQuotationStatus(s QuotationStatus) bool {
	switch s {
	case QuotationCreated, QuotationFinalized:
		return true
	default:
		return false
	}
}

// ItemAwardStatus classifies a single quotation line.
type ItemAwardStatus string

const (
	ItemPending          ItemAwardStatus = "Pending"
	ItemAwarded          ItemAwardStatus = "Awarded"
	ItemPartiallyAwarded ItemAwardStatus = "PartiallyAwarded"
	ItemNotAwarded       ItemAwardStatus = "NotAwarded"
)

type Quotation struct {
	Id         int64           `json:"id"`
	Identifier string          `json:"identifier"`
	Status     QuotationStatus `json:"status"`
	TenderId   *int64          `json:"tenderId,omitempty"`
	ClientId   *int64          `json:"clientId,omitempty"`
	Items      []QuotationItem `json:"items"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"-"`
}

type QuotationItem struct {
	Id              int64           `json:"id"`
	QuotationId     int64           `json:"quotationId"`
	ProductId       *int64          `json:"productId,omitempty"`
	Sku             string          `json:"sku"`
	ProductName     string          `json:"productName"`
	Quantity        int             `json:"quantity"`
	PriceWithoutTax decimal.Decimal `json:"priceWithoutTax"`
	PriceWithTax    decimal.Decimal `json:"priceWithTax"`
	AwardStatus     ItemAwardStatus `json:"awardStatus"`
	AwardedQuantity int             `json:"awardedQuantity"`
}

// ClassifyAwardedQuantity maps an awarded quantity against the requested one.
func ClassifyAwardedQuantity(awarded, requested int) ItemAwardStatus {
	switch {
	case awarded >= requested && awarded > 0:
		return ItemAwarded
	case awarded > 0:
		return ItemPartiallyAwarded
	default:
		return ItemPending
	}
}

func (q Quotation) Validate() error {
	if q.Identifier == "" {
		return Invalid("quotation identifier is required")
	}
	if q.Status != "" && !ValidQuotationStatus(q.Status) {
		return Invalid("unknown quotation status %q", q.Status)
	}
	for _, item := range q.Items {
		if item.Quantity <= 0 {
			return Invalid("quotation item %q must have a positive quantity", item.ProductName)
		}
		if item.PriceWithoutTax.IsNegative() || item.PriceWithTax.IsNegative() {
			return Invalid("quotation item %q has a negative price", item.ProductName)
		}
		if item.ProductId == nil && item.Sku == "" && item.ProductName == "" {
			return Invalid("quotation item needs a product, sku or name")
		}
	}
	return nil
}
