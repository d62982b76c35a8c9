package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	Id            int64             `json:"id"`
	Name          string            `json:"name"`
	Code          string            `json:"code,omitempty"`
	Brand         string            `json:"brand,omitempty"`
	StockQuantity int               `json:"stockQuantity"`
	AwardHistory  []CompetitorAward `json:"adjudicationHistory"`
	CreatedAt     time.Time         `json:"createdAt"`
	UpdatedAt     time.Time         `json:"-"`
}

// CompetitorAward records a tender line lost to a competitor.
type CompetitorAward struct {
	Date            time.Time       `json:"date"`
	TenderId        int64           `json:"tenderId"`
	CompetitorName  string          `json:"competitorName"`
	CompetitorRut   string          `json:"competitorRut"`
	CompetitorPrice decimal.Decimal `json:"competitorPrice"`
	CompetitorBrand string          `json:"competitorBrand,omitempty"`
}

func (p Product) Validate() error {
	if p.Name == "" {
		return Invalid("product name is required")
	}
	return nil
}
