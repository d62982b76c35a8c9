package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"procurement/internal/models"
)

func (q *queries) CreateProduct(ctx context.Context, p models.Product) (models.Product, error) {
	result := p
	if result.AwardHistory == nil {
		result.AwardHistory = []models.CompetitorAward{}
	}

	history, err := json.Marshal(result.AwardHistory)
	if err != nil {
		return result, fmt.Errorf("repository.queries.CreateProduct: %w", err)
	}

	query := `
	INSERT INTO products (name, code, brand, stock_quantity, adjudication_history)
	VALUES ($1, $2, $3, $4, $5::jsonb)
	RETURNING id, created_at, updated_at
	`

	row := q.tx.QueryRowContext(ctx, query, p.Name, p.Code, p.Brand, p.StockQuantity, string(history))
	err = row.Scan(&result.Id, &result.CreatedAt, &result.UpdatedAt)
	if err != nil {
		return result, fmt.Errorf("repository.queries.CreateProduct: %w", err)
	}
	return result, nil
}

func (q *queries) ProductById(ctx context.Context, id int64) (models.Product, bool, error) {
	var product models.Product
	var history []byte
	query := `
	SELECT id, name, code, brand, stock_quantity, adjudication_history, created_at, updated_at
	FROM products
	WHERE id = $1
	`

	row := q.tx.QueryRowContext(ctx, query, id)
	err := row.Scan(&product.Id, &product.Name, &product.Code, &product.Brand, &product.StockQuantity, &history, &product.CreatedAt, &product.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return product, false, nil
	} else if err != nil {
		return product, false, fmt.Errorf("repository.queries.ProductById: %w", err)
	}

	err = json.Unmarshal(history, &product.AwardHistory)
	if err != nil {
		return product, false, fmt.Errorf("repository.queries.ProductById: bad adjudication history of product %d: %w", id, err)
	}

	return product, true, nil
}

func (q *queries) DecrementStock(ctx context.Context, productId int64, quantity int) (bool, error) {
	res, err := q.tx.ExecContext(ctx, `
	UPDATE products
	SET stock_quantity = stock_quantity - $2, updated_at = CURRENT_TIMESTAMP
	WHERE id = $1
	`, productId, quantity)
	if err != nil {
		return false, fmt.Errorf("repository.queries.DecrementStock: %w", err)
	}
	return rowsTouched(res)
}

func (q *queries) AppendAwardHistory(ctx context.Context, productId int64, entry models.CompetitorAward) (bool, error) {
	data, err := json.Marshal(entry)
	if err != nil {
		return false, fmt.Errorf("repository.queries.AppendAwardHistory: %w", err)
	}

	res, err := q.tx.ExecContext(ctx, `
	UPDATE products
	SET adjudication_history = adjudication_history || jsonb_build_array($2::jsonb), updated_at = CURRENT_TIMESTAMP
	WHERE id = $1
	`, productId, string(data))
	if err != nil {
		return false, fmt.Errorf("repository.queries.AppendAwardHistory: %w", err)
	}
	return rowsTouched(res)
}

func rowsTouched(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
