package memory

import (
	"context"
	"fmt"

	"procurement/internal/models"
)

func (t *tx) loadDelivery(d models.Delivery) models.Delivery {
	d.Items = collect(t.st.deliveryItems, func(i models.DeliveryItem) bool { return i.DeliveryId == d.Id })
	d.Invoices = collect(t.st.invoices, func(i models.Invoice) bool { return i.DeliveryId == d.Id })
	d.Status = d.ComputeStatus()
	return d
}

func (t *tx) DeliveryByTender(ctx context.Context, tenderId int64) (models.Delivery, bool, error) {
	for _, d := range t.st.deliveries {
		if d.TenderId == tenderId {
			return t.loadDelivery(d), true, nil
		}
	}
	return models.Delivery{}, false, nil
}

func (t *tx) DeliveryById(ctx context.Context, id int64) (models.Delivery, bool, error) {
	d, ok := t.st.deliveries[id]
	if !ok {
		return models.Delivery{}, false, nil
	}
	return t.loadDelivery(d), true, nil
}

func (t *tx) CreateDelivery(ctx context.Context, d models.Delivery) (models.Delivery, error) {
	if _, exists, _ := t.DeliveryByTender(ctx, d.TenderId); exists {
		return d, fmt.Errorf("memory.tx.CreateDelivery: delivery for tender %d: %w", d.TenderId, models.ErrConflict)
	}

	now := t.now()
	d.Id = t.st.nextId()
	d.CreatedAt, d.UpdatedAt = now, now
	d.Items, d.Invoices = nil, nil
	t.st.deliveries[d.Id] = d

	return t.loadDelivery(d), nil
}

func (t *tx) DeliveryItemByProduct(ctx context.Context, deliveryId, productId int64) (models.DeliveryItem, bool, error) {
	items := collect(t.st.deliveryItems, func(i models.DeliveryItem) bool {
		return i.DeliveryId == deliveryId && i.ProductId != nil && *i.ProductId == productId
	})
	if len(items) == 0 {
		return models.DeliveryItem{}, false, nil
	}
	return items[0], true, nil
}

func (t *tx) DeliveryItemById(ctx context.Context, deliveryId, itemId int64) (models.DeliveryItem, bool, error) {
	item, ok := t.st.deliveryItems[itemId]
	if !ok || item.DeliveryId != deliveryId {
		return models.DeliveryItem{}, false, nil
	}
	return item, true, nil
}

func (t *tx) AddDeliveryItem(ctx context.Context, item models.DeliveryItem) (models.DeliveryItem, error) {
	if _, ok := t.st.deliveries[item.DeliveryId]; !ok {
		return item, fmt.Errorf("memory.tx.AddDeliveryItem: %w", models.NotFound("delivery", item.DeliveryId))
	}
	item.Id = t.st.nextId()
	t.st.deliveryItems[item.Id] = item
	return item, nil
}

func (t *tx) UpdateDeliveryItem(ctx context.Context, item models.DeliveryItem) error {
	existing, ok := t.st.deliveryItems[item.Id]
	if !ok || existing.DeliveryId != item.DeliveryId {
		return nil
	}
	t.st.deliveryItems[item.Id] = item
	return nil
}

func (t *tx) AddInvoice(ctx context.Context, inv models.Invoice) (models.Invoice, error) {
	if _, ok := t.st.deliveries[inv.DeliveryId]; !ok {
		return inv, fmt.Errorf("memory.tx.AddInvoice: %w", models.NotFound("delivery", inv.DeliveryId))
	}
	inv.Id = t.st.nextId()
	inv.CreatedAt = t.now()
	t.st.invoices[inv.Id] = inv
	return inv, nil
}
