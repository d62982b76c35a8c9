package models

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestRecomputeTotals(t *testing.T) {
	a := Award{Items: []AwardItem{
		{ProductId: int64p(1), Quantity: 3, UnitPrice: decimal.RequireFromString("1000")},
		{ProductId: int64p(2), Quantity: 2, UnitPrice: decimal.RequireFromString("33.33")},
	}}
	a.RecomputeTotals()

	if !a.TotalPriceWithoutTax.Equal(decimal.RequireFromString("3066.66")) {
		t.Errorf("Expected total without tax 3066.66, got %s", a.TotalPriceWithoutTax)
	}
	// 3066.66 * 1.19 = 3649.3254
	if !a.TotalPriceWithTax.Equal(decimal.RequireFromString("3649.33")) {
		t.Errorf("Expected total with tax 3649.33, got %s", a.TotalPriceWithTax)
	}
	if a.TotalQuantity != 5 {
		t.Errorf("Expected total quantity 5, got %d", a.TotalQuantity)
	}

	a.Items = nil
	a.RecomputeTotals()
	if !a.TotalPriceWithoutTax.IsZero() || !a.TotalPriceWithTax.IsZero() || a.TotalQuantity != 0 {
		t.Errorf("Expected zero totals for empty award, got %+v", a)
	}
}

func TestItemIndexByProduct(t *testing.T) {
	a := Award{Items: []AwardItem{
		{Quantity: 1},
		{ProductId: int64p(7), Quantity: 2},
	}}

	i, ok := a.ItemIndexByProduct(7)
	if !ok || i != 1 {
		t.Errorf("Expected product 7 at index 1, got %d %v", i, ok)
	}
	if _, ok = a.ItemIndexByProduct(0); ok {
		t.Error("Item without product must never match")
	}
}

func TestAwardSubmissionValidate(t *testing.T) {
	base := AwardSubmission{
		TenderId:     1,
		QuotationId:  2,
		AwardedItems: []AwardedItemInput{{ProductId: int64p(1), Quantity: 1, UnitPrice: decimal.NewFromInt(10)}},
	}
	if err := base.Validate(); err != nil {
		t.Fatalf("Expected valid submission, got %s", err)
	}

	noTender := base
	noTender.TenderId = 0

	badStatus := base
	badStatus.Status = "Everything"

	zeroQty := base
	zeroQty.AwardedItems = []AwardedItemInput{{ProductId: int64p(1), Quantity: 0}}

	negPrice := base
	negPrice.AwardedItems = []AwardedItemInput{{ProductId: int64p(1), Quantity: 1, UnitPrice: decimal.NewFromInt(-1)}}

	noCompetitor := base
	noCompetitor.NonAwardedItems = []NonAwardedItemInput{{ProductId: int64p(1)}}

	for name, sub := range map[string]AwardSubmission{
		"missing tender": noTender,
		"unknown status": badStatus,
		"zero quantity":  zeroQty,
		"negative price": negPrice,
		"no competitor":  noCompetitor,
	} {
		if err := sub.Validate(); !errors.Is(err, ErrValidation) {
			t.Errorf("%s: expected validation error, got %v", name, err)
		}
	}
}

func TestAwardJSONPrices(t *testing.T) {
	data, err := json.Marshal(AwardItem{Quantity: 1, UnitPrice: decimal.RequireFromString("12.50")})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"unitPrice":12.5`) {
		t.Errorf("Expected unquoted price in %s", data)
	}
}

func TestClassifyAwardedQuantity(t *testing.T) {
	cases := []struct {
		awarded, requested int
		want               ItemAwardStatus
	}{
		{0, 10, ItemPending},
		{4, 10, ItemPartiallyAwarded},
		{10, 10, ItemAwarded},
		{12, 10, ItemAwarded},
	}
	for _, c := range cases {
		if got := ClassifyAwardedQuantity(c.awarded, c.requested); got != c.want {
			t.Errorf("ClassifyAwardedQuantity(%d, %d) = %s, expected %s", c.awarded, c.requested, got, c.want)
		}
	}
}

func TestSubmissionNormalizeRoundsPrices(t *testing.T) {
	sub := AwardSubmission{
		AwardedItems:    []AwardedItemInput{{ProductId: int64p(1), Quantity: 10, UnitPrice: decimal.RequireFromString("0.125")}},
		NonAwardedItems: []NonAwardedItemInput{{CompetitorName: "Acme", CompetitorPrice: decimal.RequireFromString("49.999")}},
	}
	sub.Normalize()

	if !sub.AwardedItems[0].UnitPrice.Equal(decimal.RequireFromString("0.13")) {
		t.Errorf("Expected unit price 0.13, got %s", sub.AwardedItems[0].UnitPrice)
	}
	if !sub.NonAwardedItems[0].CompetitorPrice.Equal(decimal.RequireFromString("50")) {
		t.Errorf("Expected competitor price 50, got %s", sub.NonAwardedItems[0].CompetitorPrice)
	}

	a := Award{Items: []AwardItem{{Quantity: 10, UnitPrice: sub.AwardedItems[0].UnitPrice}}}
	a.RecomputeTotals()
	if !a.TotalPriceWithoutTax.Equal(decimal.RequireFromString("1.30")) {
		t.Errorf("Expected total 1.30 from rounded price, got %s", a.TotalPriceWithoutTax)
	}
}
