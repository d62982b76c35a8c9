package models

import "time"

type TenderStatus string

const (
	TenderPending      TenderStatus = "Pending"
	TenderQuoted       TenderStatus = "Quoted"
	TenderPartialAward TenderStatus = "PartialAward"
	TenderNotAwarded   TenderStatus = "NotAwarded"
	TenderTotalAward   TenderStatus = "TotalAward"
)

func ValidTenderStatus(t TenderStatus) bool {
	switch t {
	case TenderPending, TenderQuoted, TenderPartialAward, TenderNotAwarded, TenderTotalAward:
		return true
	default:
		return false
	}
}

type Tender struct {
	Id             int64        `json:"id"`
	StartDate      time.Time    `json:"startDate"`
	DeadlineDate   time.Time    `json:"deadlineDate"`
	ClientId       int64        `json:"clientId"`
	CallNumber     string       `json:"callNumber"`
	InternalNumber string       `json:"internalNumber"`
	Status         TenderStatus `json:"status"`
	Lines          []TenderLine `json:"lines"`
	CreatedAt      time.Time    `json:"createdAt"`
	UpdatedAt      time.Time    `json:"-"`
}

// TenderLine is a requested product and quantity of a tender.
type TenderLine struct {
	Id        int64 `json:"id"`
	TenderId  int64 `json:"tenderId"`
	ProductId int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

func (t Tender) Validate() error {
	if t.StartDate.IsZero() || t.DeadlineDate.IsZero() {
		return Invalid("tender start and deadline dates are required")
	}
	if !t.DeadlineDate.After(t.StartDate) {
		return Invalid("tender deadline %s must be after start date %s", t.DeadlineDate.Format(time.DateOnly), t.StartDate.Format(time.DateOnly))
	}
	if t.ClientId <= 0 {
		return Invalid("tender client is required")
	}
	if len(t.Lines) == 0 {
		return Invalid("tender must request at least one product")
	}
	for _, line := range t.Lines {
		if line.ProductId <= 0 {
			return Invalid("tender line product is required")
		}
		if line.Quantity <= 0 {
			return Invalid("tender line for product %d must request a positive quantity, got %d", line.ProductId, line.Quantity)
		}
	}
	return nil
}

// AggregateTenderStatus derives a tender's status from its requested lines and
// every award registered under it. It is recomputed from scratch after each
// award mutation, never patched.
//
// ledger holds the quantities accumulated on quotation items per product. A
// product counts as awarded up to the larger of its award item sum and its
// ledger entry, since merged award items carry the latest quantity only.
// A nil ledger aggregates award items alone.
func AggregateTenderStatus(lines []TenderLine, awards []Award, ledger map[int64]int) TenderStatus {
	if len(awards) == 0 {
		return TenderPending
	}

	awarded := make(map[int64]int)
	for _, award := range awards {
		for _, item := range award.Items {
			if item.ProductId == nil {
				continue
			}
			awarded[*item.ProductId] += item.Quantity
		}
	}
	for productId, qty := range ledger {
		awarded[productId] = max(awarded[productId], qty)
	}

	if len(lines) == 0 {
		return TenderPartialAward
	}

	complete, touched := true, false
	for _, line := range lines {
		qty := awarded[line.ProductId]
		if qty < line.Quantity {
			complete = false
		}
		if qty > 0 {
			touched = true
		}
	}

	switch {
	case complete:
		return TenderTotalAward
	case touched:
		return TenderPartialAward
	default:
		return TenderPending
	}
}
