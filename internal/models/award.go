package models

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// totals and prices travel as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true
}

type AwardStatus string

const (
	AwardTotal   AwardStatus = "Total"
	AwardPartial AwardStatus = "Partial"
)

func ValidAwardStatus(s AwardStatus) bool {
	switch s {
	case AwardTotal, AwardPartial:
		return true
	default:
		return false
	}
}

// TaxRate is the fixed 19% multiplier applied to every award total.
var TaxRate = decimal.RequireFromString("1.19")

// Money rounds an amount to the two decimal places every price column stores.
func Money(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

type Award struct {
	Id                   int64           `json:"id"`
	TenderId             int64           `json:"tenderId"`
	QuotationId          int64           `json:"quotationId"`
	Status               AwardStatus     `json:"status"`
	TotalPriceWithoutTax decimal.Decimal `json:"totalPriceWithoutTax"`
	TotalPriceWithTax    decimal.Decimal `json:"totalPriceWithTax"`
	TotalQuantity        int             `json:"totalQuantity"`
	AwardDate            time.Time       `json:"awardDate"`
	Items                []AwardItem     `json:"items"`
	CreatedAt            time.Time       `json:"-"`
	UpdatedAt            time.Time       `json:"-"`
}

type AwardItem struct {
	Id          int64           `json:"id"`
	AwardId     int64           `json:"awardId"`
	ProductId   *int64          `json:"productId,omitempty"`
	ProductName string          `json:"productName,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
}

// RecomputeTotals rebuilds the award totals from its full current item set.
func (a *Award) RecomputeTotals() {
	withoutTax := decimal.Zero
	quantity := 0
	for _, item := range a.Items {
		withoutTax = withoutTax.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
		quantity += item.Quantity
	}
	a.TotalPriceWithoutTax = withoutTax
	a.TotalPriceWithTax = withoutTax.Mul(TaxRate).Round(2)
	a.TotalQuantity = quantity
}

// ItemIndexByProduct returns the position of the item for productId.
// Items without a product never match.
func (a *Award) ItemIndexByProduct(productId int64) (int, bool) {
	for i, item := range a.Items {
		if item.ProductId != nil && *item.ProductId == productId {
			return i, true
		}
	}
	return 0, false
}

//// Submission

type AwardedItemInput struct {
	ProductId   *int64          `json:"productId,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	ProductName string          `json:"productName,omitempty"`
}

type NonAwardedItemInput struct {
	ProductId       *int64          `json:"productId,omitempty"`
	CompetitorName  string          `json:"competitorName"`
	CompetitorRut   string          `json:"competitorRut"`
	CompetitorPrice decimal.Decimal `json:"competitorPrice"`
	CompetitorBrand string          `json:"competitorBrand,omitempty"`
}

type AwardSubmission struct {
	TenderId        int64                 `json:"tenderId"`
	QuotationId     int64                 `json:"quotationId"`
	Status          AwardStatus           `json:"status,omitempty"`
	AwardedItems    []AwardedItemInput    `json:"awardedItems"`
	NonAwardedItems []NonAwardedItemInput `json:"nonAwardedItems,omitempty"`
}

func (s AwardSubmission) Validate() error {
	if s.TenderId <= 0 {
		return Invalid("tenderId is required")
	}
	if s.QuotationId <= 0 {
		return Invalid("quotationId is required")
	}
	if s.Status != "" && !ValidAwardStatus(s.Status) {
		return Invalid("unknown award status %q, should be one of: %s, %s", s.Status, AwardTotal, AwardPartial)
	}
	for i, item := range s.AwardedItems {
		if item.Quantity <= 0 {
			return Invalid("awardedItems[%d]: quantity must be positive, got %d", i, item.Quantity)
		}
		if item.UnitPrice.IsNegative() {
			return Invalid("awardedItems[%d]: unitPrice must not be negative", i)
		}
		if item.ProductId != nil && *item.ProductId <= 0 {
			return Invalid("awardedItems[%d]: invalid productId %d", i, *item.ProductId)
		}
	}
	for i, item := range s.NonAwardedItems {
		if item.CompetitorName == "" {
			return Invalid("nonAwardedItems[%d]: competitorName is required", i)
		}
		if item.CompetitorPrice.IsNegative() {
			return Invalid("nonAwardedItems[%d]: competitorPrice must not be negative", i)
		}
	}
	return nil
}

// Normalize rounds submitted prices to stored precision so totals computed
// before persisting match the items read back.
func (s *AwardSubmission) Normalize() {
	for i := range s.AwardedItems {
		s.AwardedItems[i].UnitPrice = Money(s.AwardedItems[i].UnitPrice)
	}
	for i := range s.NonAwardedItems {
		s.NonAwardedItems[i].CompetitorPrice = Money(s.NonAwardedItems[i].CompetitorPrice)
	}
}

// SkipReason explains why a batch side effect was not applied.
type SkipReason string

const (
	SkipNoProductId       SkipReason = "NoProductId"
	SkipQuotationItemMiss SkipReason = "QuotationItemNotFound"
	SkipProductMiss       SkipReason = "ProductNotFound"
)

type SkippedItem struct {
	ProductId *int64     `json:"productId,omitempty"`
	Awarded   bool       `json:"awarded"`
	Reason    SkipReason `json:"reason"`
}

// AwardResult is the persisted award plus every side effect that could not be applied.
type AwardResult struct {
	Award        Award         `json:"award"`
	SkippedItems []SkippedItem `json:"skippedItems"`
}
