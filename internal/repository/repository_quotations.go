package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"procurement/internal/models"
)

const quotationItemColumns = `
		id,
		quotation_id,
		product_id,
		sku,
		product_name,
		quantity,
		price_without_tax,
		price_with_tax,
		award_status,
		awarded_quantity`

func scanQuotationItem(row interface{ Scan(...any) error }, item *models.QuotationItem) error {
	return row.Scan(&item.Id, &item.QuotationId, &item.ProductId, &item.Sku, &item.ProductName, &item.Quantity,
		&item.PriceWithoutTax, &item.PriceWithTax, &item.AwardStatus, &item.AwardedQuantity)
}

func (q *queries) CreateQuotation(ctx context.Context, quotation models.Quotation) (models.Quotation, error) {
	result := quotation
	if result.Status == "" {
		result.Status = models.QuotationCreated
	}

	query := `
	INSERT INTO quotations (identifier, status, tender_id, client_id)
	VALUES ($1, $2, $3, $4)
	RETURNING id, created_at, updated_at
	`

	row := q.tx.QueryRowContext(ctx, query, result.Identifier, result.Status, result.TenderId, result.ClientId)
	err := row.Scan(&result.Id, &result.CreatedAt, &result.UpdatedAt)
	if err != nil {
		return result, fmt.Errorf("repository.queries.CreateQuotation: %w", err)
	}

	queryItem := `
	INSERT INTO quotation_items
		(quotation_id, product_id, sku, product_name, quantity, price_without_tax, price_with_tax, award_status, awarded_quantity)
	VALUES
		($1, $2, $3, $4, $5, $6, $7, $8, 0)
	RETURNING id
	`

	result.Items = make([]models.QuotationItem, 0, len(quotation.Items))
	for _, item := range quotation.Items {
		item.QuotationId = result.Id
		item.AwardStatus = models.ItemPending
		item.AwardedQuantity = 0
		err = q.tx.QueryRowContext(ctx, queryItem, item.QuotationId, item.ProductId, item.Sku, item.ProductName, item.Quantity,
			item.PriceWithoutTax, item.PriceWithTax, item.AwardStatus).Scan(&item.Id)
		if err != nil {
			return result, fmt.Errorf("repository.queries.CreateQuotation: item %q: %w", item.ProductName, err)
		}
		result.Items = append(result.Items, item)
	}

	return result, nil
}

func (q *queries) QuotationById(ctx context.Context, id int64) (models.Quotation, bool, error) {
	var quotation models.Quotation
	query := `
	SELECT id, identifier, status, tender_id, client_id, created_at, updated_at
	FROM quotations
	WHERE id = $1
	`

	row := q.tx.QueryRowContext(ctx, query, id)
	err := row.Scan(&quotation.Id, &quotation.Identifier, &quotation.Status, &quotation.TenderId, &quotation.ClientId, &quotation.CreatedAt, &quotation.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return quotation, false, nil
	} else if err != nil {
		return quotation, false, fmt.Errorf("repository.queries.QuotationById: %w", err)
	}

	rows, err := q.tx.QueryContext(ctx, "SELECT"+quotationItemColumns+" FROM quotation_items WHERE quotation_id = $1 ORDER BY id", id)
	if err != nil {
		return quotation, false, fmt.Errorf("repository.queries.QuotationById: %w", err)
	}
	defer rows.Close()

	quotation.Items = []models.QuotationItem{}
	for rows.Next() {
		var item models.QuotationItem
		if err = scanQuotationItem(rows, &item); err != nil {
			return quotation, false, fmt.Errorf("repository.queries.QuotationById: row scan failed: %w", err)
		}
		quotation.Items = append(quotation.Items, item)
	}

	if err = rows.Err(); err != nil {
		return quotation, false, fmt.Errorf("repository.queries.QuotationById: %w", err)
	}

	return quotation, true, nil
}

func (q *queries) QuotationItem(ctx context.Context, quotationId, productId int64) (models.QuotationItem, bool, error) {
	var item models.QuotationItem
	query := "SELECT" + quotationItemColumns + `
	FROM quotation_items
	WHERE quotation_id = $1 AND product_id = $2
	ORDER BY id
	LIMIT 1
	`

	err := scanQuotationItem(q.tx.QueryRowContext(ctx, query, quotationId, productId), &item)
	if errors.Is(err, sql.ErrNoRows) {
		return item, false, nil
	} else if err != nil {
		return item, false, fmt.Errorf("repository.queries.QuotationItem: %w", err)
	}
	return item, true, nil
}

func (q *queries) QuotationItemById(ctx context.Context, id int64) (models.QuotationItem, bool, error) {
	var item models.QuotationItem
	query := "SELECT" + quotationItemColumns + " FROM quotation_items WHERE id = $1"

	err := scanQuotationItem(q.tx.QueryRowContext(ctx, query, id), &item)
	if errors.Is(err, sql.ErrNoRows) {
		return item, false, nil
	} else if err != nil {
		return item, false, fmt.Errorf("repository.queries.QuotationItemById: %w", err)
	}
	return item, true, nil
}

func (q *queries) AddAwardedQuantity(ctx context.Context, itemId int64, delta int) (models.QuotationItem, error) {
	var item models.QuotationItem
	query := `
	UPDATE quotation_items
	SET awarded_quantity = awarded_quantity + $2
	WHERE id = $1
	RETURNING` + quotationItemColumns

	err := scanQuotationItem(q.tx.QueryRowContext(ctx, query, itemId, delta), &item)
	if errors.Is(err, sql.ErrNoRows) {
		return item, fmt.Errorf("repository.queries.AddAwardedQuantity: %w", models.NotFound("quotation item", itemId))
	} else if err != nil {
		return item, fmt.Errorf("repository.queries.AddAwardedQuantity: %w", err)
	}
	return item, nil
}

func (q *queries) SetQuotationItemAward(ctx context.Context, itemId int64, status models.ItemAwardStatus, awardedQuantity int) error {
	_, err := q.tx.ExecContext(ctx, "UPDATE quotation_items SET award_status = $2, awarded_quantity = $3 WHERE id = $1", itemId, status, awardedQuantity)
	if err != nil {
		return fmt.Errorf("repository.queries.SetQuotationItemAward: %w", err)
	}
	return nil
}
