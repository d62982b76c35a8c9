package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"procurement/internal/models"
)

// LockAwardPair is a no-op: Atomic already serializes every unit.
func (t *tx) LockAwardPair(ctx context.Context, tenderId, quotationId int64) error {
	return nil
}

func (t *tx) withItems(a models.Award) models.Award {
	a.Items = collect(t.st.awardItems, func(i models.AwardItem) bool { return i.AwardId == a.Id })
	return a
}

func (t *tx) AwardByTenderAndQuotation(ctx context.Context, tenderId, quotationId int64) (models.Award, bool, error) {
	for _, a := range t.st.awards {
		if a.TenderId == tenderId && a.QuotationId == quotationId {
			return t.withItems(a), true, nil
		}
	}
	return models.Award{}, false, nil
}

func (t *tx) AwardById(ctx context.Context, id int64) (models.Award, bool, error) {
	a, ok := t.st.awards[id]
	if !ok {
		return models.Award{}, false, nil
	}
	return t.withItems(a), true, nil
}

func (t *tx) AwardsByTender(ctx context.Context, tenderId int64) ([]models.Award, error) {
	awards := collect(t.st.awards, func(a models.Award) bool { return a.TenderId == tenderId })
	// newest first, matching the postgres ordering
	slices.SortFunc(awards, func(a, b models.Award) int { return cmp.Compare(b.Id, a.Id) })
	for i := range awards {
		awards[i] = t.withItems(awards[i])
	}
	return awards, nil
}

func (t *tx) AwardsByQuotation(ctx context.Context, quotationId int64) ([]models.Award, error) {
	awards := collect(t.st.awards, func(a models.Award) bool { return a.QuotationId == quotationId })
	slices.SortFunc(awards, func(a, b models.Award) int { return cmp.Compare(b.Id, a.Id) })
	for i := range awards {
		awards[i] = t.withItems(awards[i])
	}
	return awards, nil
}

func (t *tx) CreateAward(ctx context.Context, a models.Award) (models.Award, error) {
	if _, exists, _ := t.AwardByTenderAndQuotation(ctx, a.TenderId, a.QuotationId); exists {
		return a, fmt.Errorf("memory.tx.CreateAward: award for tender %d and quotation %d: %w", a.TenderId, a.QuotationId, models.ErrConflict)
	}

	now := t.now()
	a.Id = t.st.nextId()
	a.CreatedAt, a.UpdatedAt = now, now

	items := make([]models.AwardItem, 0, len(a.Items))
	for _, item := range a.Items {
		item.AwardId = a.Id
		item, _ = t.AddAwardItem(ctx, item)
		items = append(items, item)
	}

	stored := a
	stored.Items = nil
	t.st.awards[a.Id] = stored

	a.Items = items
	return a, nil
}

func (t *tx) AddAwardItem(ctx context.Context, item models.AwardItem) (models.AwardItem, error) {
	item.Id = t.st.nextId()
	t.st.awardItems[item.Id] = item
	return item, nil
}

func (t *tx) UpdateAwardItem(ctx context.Context, item models.AwardItem) error {
	existing, ok := t.st.awardItems[item.Id]
	if !ok {
		return nil
	}
	existing.Quantity = item.Quantity
	existing.UnitPrice = item.UnitPrice
	existing.ProductName = item.ProductName
	t.st.awardItems[item.Id] = existing
	return nil
}

func (t *tx) UpdateAwardTotals(ctx context.Context, a models.Award) error {
	existing, ok := t.st.awards[a.Id]
	if !ok {
		return nil
	}
	existing.TotalPriceWithoutTax = a.TotalPriceWithoutTax
	existing.TotalPriceWithTax = a.TotalPriceWithTax
	existing.TotalQuantity = a.TotalQuantity
	existing.UpdatedAt = t.now()
	t.st.awards[a.Id] = existing
	return nil
}

func (t *tx) DeleteAward(ctx context.Context, id int64) error {
	delete(t.st.awards, id)
	for itemId, item := range t.st.awardItems {
		if item.AwardId == id {
			delete(t.st.awardItems, itemId)
		}
	}
	return nil
}
