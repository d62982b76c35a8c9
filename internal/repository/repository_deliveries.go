package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"procurement/internal/models"

	"github.com/lib/pq"
)

const deliveryItemColumns = `
		id,
		delivery_id,
		product_id,
		product_code,
		product_name,
		quantity,
		status,
		estimated_date,
		actual_date,
		observations`

func scanDeliveryItem(row interface{ Scan(...any) error }, item *models.DeliveryItem) error {
	return row.Scan(&item.Id, &item.DeliveryId, &item.ProductId, &item.ProductCode, &item.ProductName, &item.Quantity,
		&item.Status, &item.EstimatedDate, &item.ActualDate, &item.Observations)
}

func (q *queries) DeliveryByTender(ctx context.Context, tenderId int64) (models.Delivery, bool, error) {
	d, ok, err := q.selectDelivery(ctx, "SELECT id, tender_id, observations, created_at, updated_at FROM deliveries WHERE tender_id = $1", tenderId)
	if err != nil {
		return d, false, fmt.Errorf("repository.queries.DeliveryByTender: %w", err)
	}
	return d, ok, nil
}

func (q *queries) DeliveryById(ctx context.Context, id int64) (models.Delivery, bool, error) {
	d, ok, err := q.selectDelivery(ctx, "SELECT id, tender_id, observations, created_at, updated_at FROM deliveries WHERE id = $1", id)
	if err != nil {
		return d, false, fmt.Errorf("repository.queries.DeliveryById: %w", err)
	}
	return d, ok, nil
}

func (q *queries) selectDelivery(ctx context.Context, query string, arg int64) (models.Delivery, bool, error) {
	var d models.Delivery
	err := q.tx.QueryRowContext(ctx, query, arg).Scan(&d.Id, &d.TenderId, &d.Observations, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return d, false, nil
	} else if err != nil {
		return d, false, err
	}

	d.Items, err = q.deliveryItems(ctx, d.Id)
	if err != nil {
		return d, false, err
	}
	d.Invoices, err = q.deliveryInvoices(ctx, d.Id)
	if err != nil {
		return d, false, err
	}
	d.Status = d.ComputeStatus()

	return d, true, nil
}

func (q *queries) deliveryItems(ctx context.Context, deliveryId int64) ([]models.DeliveryItem, error) {
	rows, err := q.tx.QueryContext(ctx, "SELECT"+deliveryItemColumns+" FROM delivery_items WHERE delivery_id = $1 ORDER BY id", deliveryId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []models.DeliveryItem{}
	for rows.Next() {
		var item models.DeliveryItem
		if err = scanDeliveryItem(rows, &item); err != nil {
			return nil, fmt.Errorf("row scan failed: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (q *queries) deliveryInvoices(ctx context.Context, deliveryId int64) ([]models.Invoice, error) {
	rows, err := q.tx.QueryContext(ctx, `
	SELECT id, delivery_id, invoice_number, file_name, file_url, issue_date, amount, created_at
	FROM invoices
	WHERE delivery_id = $1
	ORDER BY id
	`, deliveryId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	invoices := []models.Invoice{}
	for rows.Next() {
		var inv models.Invoice
		err = rows.Scan(&inv.Id, &inv.DeliveryId, &inv.InvoiceNumber, &inv.FileName, &inv.FileUrl, &inv.IssueDate, &inv.Amount, &inv.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("row scan failed: %w", err)
		}
		invoices = append(invoices, inv)
	}
	return invoices, rows.Err()
}

func (q *queries) CreateDelivery(ctx context.Context, d models.Delivery) (models.Delivery, error) {
	result := d
	err := q.tx.QueryRowContext(ctx, `
	INSERT INTO deliveries (tender_id, observations)
	VALUES ($1, $2)
	RETURNING id, created_at, updated_at
	`, d.TenderId, d.Observations).Scan(&result.Id, &result.CreatedAt, &result.UpdatedAt)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return result, fmt.Errorf("repository.queries.CreateDelivery: delivery for tender %d: %w", d.TenderId, models.ErrConflict)
	} else if err != nil {
		return result, fmt.Errorf("repository.queries.CreateDelivery: %w", err)
	}
	result.Items = []models.DeliveryItem{}
	result.Invoices = []models.Invoice{}
	result.Status = result.ComputeStatus()
	return result, nil
}

func (q *queries) DeliveryItemByProduct(ctx context.Context, deliveryId, productId int64) (models.DeliveryItem, bool, error) {
	var item models.DeliveryItem
	query := "SELECT" + deliveryItemColumns + `
	FROM delivery_items
	WHERE delivery_id = $1 AND product_id = $2
	ORDER BY id
	LIMIT 1
	`

	err := scanDeliveryItem(q.tx.QueryRowContext(ctx, query, deliveryId, productId), &item)
	if errors.Is(err, sql.ErrNoRows) {
		return item, false, nil
	} else if err != nil {
		return item, false, fmt.Errorf("repository.queries.DeliveryItemByProduct: %w", err)
	}
	return item, true, nil
}

func (q *queries) DeliveryItemById(ctx context.Context, deliveryId, itemId int64) (models.DeliveryItem, bool, error) {
	var item models.DeliveryItem
	query := "SELECT" + deliveryItemColumns + " FROM delivery_items WHERE delivery_id = $1 AND id = $2"

	err := scanDeliveryItem(q.tx.QueryRowContext(ctx, query, deliveryId, itemId), &item)
	if errors.Is(err, sql.ErrNoRows) {
		return item, false, nil
	} else if err != nil {
		return item, false, fmt.Errorf("repository.queries.DeliveryItemById: %w", err)
	}
	return item, true, nil
}

func (q *queries) AddDeliveryItem(ctx context.Context, item models.DeliveryItem) (models.DeliveryItem, error) {
	err := q.tx.QueryRowContext(ctx, `
	INSERT INTO delivery_items
		(delivery_id, product_id, product_code, product_name, quantity, status, estimated_date, actual_date, observations)
	VALUES
		($1, $2, $3, $4, $5, $6, $7, $8, $9)
	RETURNING id
	`, item.DeliveryId, item.ProductId, item.ProductCode, item.ProductName, item.Quantity, item.Status,
		item.EstimatedDate, item.ActualDate, item.Observations).Scan(&item.Id)
	if err != nil {
		return item, fmt.Errorf("repository.queries.AddDeliveryItem: %w", err)
	}
	return item, nil
}

func (q *queries) UpdateDeliveryItem(ctx context.Context, item models.DeliveryItem) error {
	_, err := q.tx.ExecContext(ctx, `
	UPDATE delivery_items
	SET (quantity, status, estimated_date, actual_date, observations) =
	($3, $4, $5, $6, $7)
	WHERE delivery_id = $1 AND id = $2
	`, item.DeliveryId, item.Id, item.Quantity, item.Status, item.EstimatedDate, item.ActualDate, item.Observations)
	if err != nil {
		return fmt.Errorf("repository.queries.UpdateDeliveryItem: %w", err)
	}
	return nil
}

func (q *queries) AddInvoice(ctx context.Context, inv models.Invoice) (models.Invoice, error) {
	err := q.tx.QueryRowContext(ctx, `
	INSERT INTO invoices (delivery_id, invoice_number, file_name, file_url, issue_date, amount)
	VALUES ($1, $2, $3, $4, $5, $6)
	RETURNING id, created_at
	`, inv.DeliveryId, inv.InvoiceNumber, inv.FileName, inv.FileUrl, inv.IssueDate, inv.Amount).Scan(&inv.Id, &inv.CreatedAt)
	if err != nil {
		return inv, fmt.Errorf("repository.queries.AddInvoice: %w", err)
	}
	return inv, nil
}
