package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"procurement/internal/models"
)

func (q *queries) CreateTender(ctx context.Context, t models.Tender) (models.Tender, error) {
	result := t
	if result.Status == "" {
		result.Status = models.TenderPending
	}

	query := `
	INSERT INTO tenders
		(start_date, deadline_date, client_id, call_number, internal_number, status)
	VALUES
		($1, $2, $3, $4, $5, $6)
	RETURNING
		id, created_at, updated_at
	`

	row := q.tx.QueryRowContext(ctx, query, t.StartDate, t.DeadlineDate, t.ClientId, t.CallNumber, t.InternalNumber, result.Status)
	err := row.Scan(&result.Id, &result.CreatedAt, &result.UpdatedAt)
	if err != nil {
		return result, fmt.Errorf("repository.queries.CreateTender: %w", err)
	}

	queryLine := `
	INSERT INTO tender_lines (tender_id, product_id, quantity)
	VALUES ($1, $2, $3)
	RETURNING id
	`

	result.Lines = make([]models.TenderLine, 0, len(t.Lines))
	for _, line := range t.Lines {
		line.TenderId = result.Id
		err = q.tx.QueryRowContext(ctx, queryLine, line.TenderId, line.ProductId, line.Quantity).Scan(&line.Id)
		if err != nil {
			return result, fmt.Errorf("repository.queries.CreateTender: line for product %d: %w", line.ProductId, err)
		}
		result.Lines = append(result.Lines, line)
	}

	return result, nil
}

func (q *queries) TenderById(ctx context.Context, id int64) (models.Tender, bool, error) {
	var tender models.Tender
	query := `
	SELECT
		id,
		start_date,
		deadline_date,
		client_id,
		call_number,
		internal_number,
		status,
		created_at,
		updated_at
	FROM tenders
	WHERE id = $1
	`

	row := q.tx.QueryRowContext(ctx, query, id)
	err := row.Scan(&tender.Id, &tender.StartDate, &tender.DeadlineDate, &tender.ClientId, &tender.CallNumber, &tender.InternalNumber, &tender.Status, &tender.CreatedAt, &tender.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return tender, false, nil
	} else if err != nil {
		return tender, false, fmt.Errorf("repository.queries.TenderById: %w", err)
	}

	tender.Lines, err = q.TenderLines(ctx, id)
	if err != nil {
		return tender, false, fmt.Errorf("repository.queries.TenderById: %w", err)
	}

	return tender, true, nil
}

func (q *queries) TenderLines(ctx context.Context, tenderId int64) ([]models.TenderLine, error) {
	query := `
	SELECT id, tender_id, product_id, quantity
	FROM tender_lines
	WHERE tender_id = $1
	ORDER BY id
	`

	rows, err := q.tx.QueryContext(ctx, query, tenderId)
	if err != nil {
		return nil, fmt.Errorf("repository.queries.TenderLines: %w", err)
	}
	defer rows.Close()

	result := []models.TenderLine{}
	var line models.TenderLine
	for rows.Next() {
		err = rows.Scan(&line.Id, &line.TenderId, &line.ProductId, &line.Quantity)
		if err != nil {
			return nil, fmt.Errorf("repository.queries.TenderLines: row scan failed: %w", err)
		}
		result = append(result, line)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("repository.queries.TenderLines: %w", err)
	}

	return result, nil
}

func (q *queries) SetTenderStatus(ctx context.Context, id int64, status models.TenderStatus) error {
	_, err := q.tx.ExecContext(ctx, "UPDATE tenders SET status = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2", status, id)
	if err != nil {
		return fmt.Errorf("repository.queries.SetTenderStatus: %w", err)
	}
	return nil
}
