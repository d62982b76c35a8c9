package memory

import (
	"context"

	"procurement/internal/models"
)

func (t *tx) CreateTender(ctx context.Context, tender models.Tender) (models.Tender, error) {
	now := t.now()
	tender.Id = t.st.nextId()
	tender.CreatedAt, tender.UpdatedAt = now, now
	if tender.Status == "" {
		tender.Status = models.TenderPending
	}

	lines := make([]models.TenderLine, 0, len(tender.Lines))
	for _, line := range tender.Lines {
		line.Id = t.st.nextId()
		line.TenderId = tender.Id
		t.st.tenderLines[line.Id] = line
		lines = append(lines, line)
	}

	stored := tender
	stored.Lines = nil
	t.st.tenders[tender.Id] = stored

	tender.Lines = lines
	return tender, nil
}

func (t *tx) TenderById(ctx context.Context, id int64) (models.Tender, bool, error) {
	tender, ok := t.st.tenders[id]
	if !ok {
		return models.Tender{}, false, nil
	}
	tender.Lines, _ = t.TenderLines(ctx, id)
	return tender, true, nil
}

func (t *tx) TenderLines(ctx context.Context, tenderId int64) ([]models.TenderLine, error) {
	return collect(t.st.tenderLines, func(l models.TenderLine) bool { return l.TenderId == tenderId }), nil
}

func (t *tx) SetTenderStatus(ctx context.Context, id int64, status models.TenderStatus) error {
	tender, ok := t.st.tenders[id]
	if !ok {
		return nil
	}
	tender.Status = status
	tender.UpdatedAt = t.now()
	t.st.tenders[id] = tender
	return nil
}
