package memory

import (
	"context"
	"slices"

	"procurement/internal/models"
)

func (t *tx) CreateProduct(ctx context.Context, p models.Product) (models.Product, error) {
	now := t.now()
	p.Id = t.st.nextId()
	p.CreatedAt, p.UpdatedAt = now, now
	p.AwardHistory = slices.Clone(p.AwardHistory)
	if p.AwardHistory == nil {
		p.AwardHistory = []models.CompetitorAward{}
	}
	t.st.products[p.Id] = p
	return p, nil
}

func (t *tx) ProductById(ctx context.Context, id int64) (models.Product, bool, error) {
	p, ok := t.st.products[id]
	if !ok {
		return models.Product{}, false, nil
	}
	p.AwardHistory = slices.Clone(p.AwardHistory)
	return p, true, nil
}

func (t *tx) DecrementStock(ctx context.Context, productId int64, quantity int) (bool, error) {
	p, ok := t.st.products[productId]
	if !ok {
		return false, nil
	}
	p.StockQuantity -= quantity
	p.UpdatedAt = t.now()
	t.st.products[productId] = p
	return true, nil
}

func (t *tx) AppendAwardHistory(ctx context.Context, productId int64, entry models.CompetitorAward) (bool, error) {
	p, ok := t.st.products[productId]
	if !ok {
		return false, nil
	}
	// clip so the append never writes into a slice shared with a snapshot
	p.AwardHistory = append(slices.Clip(p.AwardHistory), entry)
	p.UpdatedAt = t.now()
	t.st.products[productId] = p
	return true, nil
}
