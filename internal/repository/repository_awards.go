package repository

import (
	"context"
	"errors"
	"fmt"

	"procurement/internal/models"

	"github.com/lib/pq"
)

const awardColumns = `
		id,
		tender_id,
		quotation_id,
		status,
		total_price_without_tax,
		total_price_with_tax,
		total_quantity,
		award_date,
		created_at,
		updated_at`

func scanAward(row interface{ Scan(...any) error }, a *models.Award) error {
	return row.Scan(&a.Id, &a.TenderId, &a.QuotationId, &a.Status, &a.TotalPriceWithoutTax, &a.TotalPriceWithTax,
		&a.TotalQuantity, &a.AwardDate, &a.CreatedAt, &a.UpdatedAt)
}

func (q *queries) LockAwardPair(ctx context.Context, tenderId, quotationId int64) error {
	_, err := q.tx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1, $2)", lockKey(tenderId), lockKey(quotationId))
	if err != nil {
		return fmt.Errorf("repository.queries.LockAwardPair: %w", err)
	}
	return nil
}

func (q *queries) AwardByTenderAndQuotation(ctx context.Context, tenderId, quotationId int64) (models.Award, bool, error) {
	awards, err := q.selectAwards(ctx, "SELECT"+awardColumns+" FROM awards WHERE tender_id = $1 AND quotation_id = $2 FOR UPDATE", tenderId, quotationId)
	if err != nil {
		return models.Award{}, false, fmt.Errorf("repository.queries.AwardByTenderAndQuotation: %w", err)
	}
	if len(awards) == 0 {
		return models.Award{}, false, nil
	}
	return awards[0], true, nil
}

func (q *queries) AwardById(ctx context.Context, id int64) (models.Award, bool, error) {
	awards, err := q.selectAwards(ctx, "SELECT"+awardColumns+" FROM awards WHERE id = $1 FOR UPDATE", id)
	if err != nil {
		return models.Award{}, false, fmt.Errorf("repository.queries.AwardById: %w", err)
	}
	if len(awards) == 0 {
		return models.Award{}, false, nil
	}
	return awards[0], true, nil
}

func (q *queries) AwardsByTender(ctx context.Context, tenderId int64) ([]models.Award, error) {
	awards, err := q.selectAwards(ctx, "SELECT"+awardColumns+" FROM awards WHERE tender_id = $1 ORDER BY created_at DESC, id DESC", tenderId)
	if err != nil {
		return nil, fmt.Errorf("repository.queries.AwardsByTender: %w", err)
	}
	return awards, nil
}

func (q *queries) AwardsByQuotation(ctx context.Context, quotationId int64) ([]models.Award, error) {
	awards, err := q.selectAwards(ctx, "SELECT"+awardColumns+" FROM awards WHERE quotation_id = $1 ORDER BY created_at DESC, id DESC", quotationId)
	if err != nil {
		return nil, fmt.Errorf("repository.queries.AwardsByQuotation: %w", err)
	}
	return awards, nil
}

// selectAwards runs an award query and attaches the items of every returned award.
func (q *queries) selectAwards(ctx context.Context, query string, args ...any) ([]models.Award, error) {
	rows, err := q.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	awards := []models.Award{}
	ids := []int64{}
	for rows.Next() {
		var a models.Award
		if err = scanAward(rows, &a); err != nil {
			return nil, fmt.Errorf("row scan failed: %w", err)
		}
		a.Items = []models.AwardItem{}
		awards = append(awards, a)
		ids = append(ids, a.Id)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	if len(ids) == 0 {
		return awards, nil
	}

	itemRows, err := q.tx.QueryContext(ctx, `
	SELECT id, award_id, product_id, product_name, quantity, unit_price
	FROM award_items
	WHERE award_id = ANY($1)
	ORDER BY id
	`, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer itemRows.Close()

	index := make(map[int64]int, len(awards))
	for i, a := range awards {
		index[a.Id] = i
	}

	for itemRows.Next() {
		var item models.AwardItem
		err = itemRows.Scan(&item.Id, &item.AwardId, &item.ProductId, &item.ProductName, &item.Quantity, &item.UnitPrice)
		if err != nil {
			return nil, fmt.Errorf("item row scan failed: %w", err)
		}
		i := index[item.AwardId]
		awards[i].Items = append(awards[i].Items, item)
	}

	return awards, itemRows.Err()
}

func (q *queries) CreateAward(ctx context.Context, a models.Award) (models.Award, error) {
	result := a
	query := `
	INSERT INTO awards
		(tender_id, quotation_id, status, total_price_without_tax, total_price_with_tax, total_quantity, award_date)
	VALUES
		($1, $2, $3, $4, $5, $6, $7)
	RETURNING
		id, created_at, updated_at
	`

	row := q.tx.QueryRowContext(ctx, query, a.TenderId, a.QuotationId, a.Status, a.TotalPriceWithoutTax, a.TotalPriceWithTax, a.TotalQuantity, a.AwardDate)
	err := row.Scan(&result.Id, &result.CreatedAt, &result.UpdatedAt)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return result, fmt.Errorf("repository.queries.CreateAward: award for tender %d and quotation %d: %w", a.TenderId, a.QuotationId, models.ErrConflict)
	} else if err != nil {
		return result, fmt.Errorf("repository.queries.CreateAward: %w", err)
	}

	result.Items = make([]models.AwardItem, 0, len(a.Items))
	for _, item := range a.Items {
		item.AwardId = result.Id
		item, err = q.AddAwardItem(ctx, item)
		if err != nil {
			return result, fmt.Errorf("repository.queries.CreateAward: %w", err)
		}
		result.Items = append(result.Items, item)
	}

	return result, nil
}

func (q *queries) AddAwardItem(ctx context.Context, item models.AwardItem) (models.AwardItem, error) {
	query := `
	INSERT INTO award_items (award_id, product_id, product_name, quantity, unit_price)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING id
	`

	err := q.tx.QueryRowContext(ctx, query, item.AwardId, item.ProductId, item.ProductName, item.Quantity, item.UnitPrice).Scan(&item.Id)
	if err != nil {
		return item, fmt.Errorf("repository.queries.AddAwardItem: %w", err)
	}
	return item, nil
}

func (q *queries) UpdateAwardItem(ctx context.Context, item models.AwardItem) error {
	_, err := q.tx.ExecContext(ctx, `
	UPDATE award_items
	SET quantity = $2, unit_price = $3, product_name = $4
	WHERE id = $1
	`, item.Id, item.Quantity, item.UnitPrice, item.ProductName)
	if err != nil {
		return fmt.Errorf("repository.queries.UpdateAwardItem: %w", err)
	}
	return nil
}

func (q *queries) UpdateAwardTotals(ctx context.Context, a models.Award) error {
	_, err := q.tx.ExecContext(ctx, `
	UPDATE awards
	SET (total_price_without_tax, total_price_with_tax, total_quantity, updated_at) =
	($2, $3, $4, CURRENT_TIMESTAMP)
	WHERE id = $1
	`, a.Id, a.TotalPriceWithoutTax, a.TotalPriceWithTax, a.TotalQuantity)
	if err != nil {
		return fmt.Errorf("repository.queries.UpdateAwardTotals: %w", err)
	}
	return nil
}

func (q *queries) DeleteAward(ctx context.Context, id int64) error {
	_, err := q.tx.ExecContext(ctx, "DELETE FROM awards WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("repository.queries.DeleteAward: %w", err)
	}
	return nil
}
