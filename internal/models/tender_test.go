package models

import (
	"errors"
	"testing"
	"time"
)

func int64p(v int64) *int64 {
	return &v
}

func TestAggregateTenderStatus(t *testing.T) {
	lines := []TenderLine{
		{ProductId: 1, Quantity: 10},
		{ProductId: 2, Quantity: 5},
	}

	award := func(items ...AwardItem) Award {
		return Award{Items: items}
	}

	cases := []struct {
		name   string
		lines  []TenderLine
		awards []Award
		ledger map[int64]int
		want   TenderStatus
	}{
		{"no awards", lines, nil, nil, TenderPending},
		{"nothing matches", lines, []Award{award(AwardItem{ProductId: int64p(9), Quantity: 100})}, nil, TenderPending},
		{"one line covered", lines, []Award{award(AwardItem{ProductId: int64p(1), Quantity: 10})}, nil, TenderPartialAward},
		{"all lines covered", lines, []Award{award(
			AwardItem{ProductId: int64p(1), Quantity: 10},
			AwardItem{ProductId: int64p(2), Quantity: 5},
		)}, nil, TenderTotalAward},
		{"over award still total", lines, []Award{award(
			AwardItem{ProductId: int64p(1), Quantity: 12},
			AwardItem{ProductId: int64p(2), Quantity: 6},
		)}, nil, TenderTotalAward},
		{"summed across awards", lines, []Award{
			award(AwardItem{ProductId: int64p(1), Quantity: 4}, AwardItem{ProductId: int64p(2), Quantity: 5}),
			award(AwardItem{ProductId: int64p(1), Quantity: 6}),
		}, nil, TenderTotalAward},
		{"items without product ignored", lines, []Award{award(AwardItem{Quantity: 50})}, nil, TenderPending},
		{"no lines with awards", nil, []Award{award(AwardItem{ProductId: int64p(1), Quantity: 1})}, nil, TenderPartialAward},
		{"ledger completes replaced item", lines, []Award{award(
			AwardItem{ProductId: int64p(1), Quantity: 6},
			AwardItem{ProductId: int64p(2), Quantity: 5},
		)}, map[int64]int{1: 10}, TenderTotalAward},
		{"ledger ignored without awards", lines, nil, map[int64]int{1: 10, 2: 5}, TenderPending},
		{"ledger below item sum", lines, []Award{award(AwardItem{ProductId: int64p(1), Quantity: 10})}, map[int64]int{1: 3}, TenderPartialAward},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := AggregateTenderStatus(c.lines, c.awards, c.ledger)
			if got != c.want {
				t.Errorf("Expected %s, got %s", c.want, got)
			}
		})
	}
}

func TestTenderValidate(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	valid := Tender{
		StartDate:    start,
		DeadlineDate: start.Add(48 * time.Hour),
		ClientId:     1,
		Lines:        []TenderLine{{ProductId: 1, Quantity: 3}},
	}

	if err := valid.Validate(); err != nil {
		t.Fatalf("Expected valid tender, got %s", err)
	}

	sameDay := valid
	sameDay.DeadlineDate = start
	noLines := valid
	noLines.Lines = nil
	zeroQty := valid
	zeroQty.Lines = []TenderLine{{ProductId: 1, Quantity: 0}}

	for name, tender := range map[string]Tender{"deadline equals start": sameDay, "no lines": noLines, "zero quantity": zeroQty} {
		err := tender.Validate()
		if !errors.Is(err, ErrValidation) {
			t.Errorf("%s: expected validation error, got %v", name, err)
		}
	}
}
