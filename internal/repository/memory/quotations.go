package memory

import (
	"context"
	"fmt"

	"procurement/internal/models"
)

func (t *tx) CreateQuotation(ctx context.Context, q models.Quotation) (models.Quotation, error) {
	for _, existing := range t.st.quotations {
		if existing.Identifier == q.Identifier {
			return q, fmt.Errorf("memory.tx.CreateQuotation: identifier %q: %w", q.Identifier, models.ErrConflict)
		}
	}

	now := t.now()
	q.Id = t.st.nextId()
	q.CreatedAt, q.UpdatedAt = now, now
	if q.Status == "" {
		q.Status = models.QuotationCreated
	}

	items := make([]models.QuotationItem, 0, len(q.Items))
	for _, item := range q.Items {
		item.Id = t.st.nextId()
		item.QuotationId = q.Id
		item.AwardStatus = models.ItemPending
		item.AwardedQuantity = 0
		t.st.quotationItems[item.Id] = item
		items = append(items, item)
	}

	stored := q
	stored.Items = nil
	t.st.quotations[q.Id] = stored

	q.Items = items
	return q, nil
}

func (t *tx) QuotationById(ctx context.Context, id int64) (models.Quotation, bool, error) {
	q, ok := t.st.quotations[id]
	if !ok {
		return models.Quotation{}, false, nil
	}
	q.Items = collect(t.st.quotationItems, func(i models.QuotationItem) bool { return i.QuotationId == id })
	return q, true, nil
}

func (t *tx) QuotationItem(ctx context.Context, quotationId, productId int64) (models.QuotationItem, bool, error) {
	items := collect(t.st.quotationItems, func(i models.QuotationItem) bool {
		return i.QuotationId == quotationId && i.ProductId != nil && *i.ProductId == productId
	})
	if len(items) == 0 {
		return models.QuotationItem{}, false, nil
	}
	return items[0], true, nil
}

func (t *tx) QuotationItemById(ctx context.Context, id int64) (models.QuotationItem, bool, error) {
	item, ok := t.st.quotationItems[id]
	return item, ok, nil
}

func (t *tx) AddAwardedQuantity(ctx context.Context, itemId int64, delta int) (models.QuotationItem, error) {
	item, ok := t.st.quotationItems[itemId]
	if !ok {
		return item, fmt.Errorf("memory.tx.AddAwardedQuantity: %w", models.NotFound("quotation item", itemId))
	}
	item.AwardedQuantity += delta
	t.st.quotationItems[itemId] = item
	return item, nil
}

func (t *tx) SetQuotationItemAward(ctx context.Context, itemId int64, status models.ItemAwardStatus, awardedQuantity int) error {
	item, ok := t.st.quotationItems[itemId]
	if !ok {
		return nil
	}
	item.AwardStatus = status
	item.AwardedQuantity = awardedQuantity
	t.st.quotationItems[itemId] = item
	return nil
}
