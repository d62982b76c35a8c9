package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type DeliveryItemStatus string

const (
	DeliveryItemPending   DeliveryItemStatus = "Pending"
	DeliveryItemOnWay     DeliveryItemStatus = "OnWay"
	DeliveryItemDelivered DeliveryItemStatus = "Delivered"
	DeliveryItemIssue     DeliveryItemStatus = "Issue"
)

func ValidDeliveryItemStatus(s DeliveryItemStatus) bool {
	switch s {
	case DeliveryItemPending, DeliveryItemOnWay, DeliveryItemDelivered, DeliveryItemIssue:
		return true
	default:
		return false
	}
}

// DeliveryStatus is derived from item statuses and never stored.
type DeliveryStatus string

const (
	DeliveryPending   DeliveryStatus = "Pending"
	DeliveryPartial   DeliveryStatus = "Partial"
	DeliveryCompleted DeliveryStatus = "Completed"
	DeliveryIssue     DeliveryStatus = "Issue"
)

type Delivery struct {
	Id           int64          `json:"id"`
	TenderId     int64          `json:"tenderId"`
	Status       DeliveryStatus `json:"status"`
	Items        []DeliveryItem `json:"items"`
	Invoices     []Invoice      `json:"invoices"`
	Observations string         `json:"observations,omitempty"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"-"`
}

type DeliveryItem struct {
	Id            int64              `json:"id"`
	DeliveryId    int64              `json:"deliveryId"`
	ProductId     *int64             `json:"productId,omitempty"`
	ProductCode   string             `json:"productCode"`
	ProductName   string             `json:"productName"`
	Quantity      int                `json:"quantity"`
	Status        DeliveryItemStatus `json:"status"`
	EstimatedDate time.Time          `json:"estimatedDate"`
	ActualDate    *time.Time         `json:"actualDate,omitempty"`
	Observations  *string            `json:"observations,omitempty"`
}

// DeliveryItemPatch holds the fields a caller may change on a delivery item; nil means untouched.
type DeliveryItemPatch struct {
	Status       *DeliveryItemStatus `json:"status,omitempty"`
	ActualDate   *time.Time          `json:"actualDate,omitempty"`
	Observations *string             `json:"observations,omitempty"`
	Quantity     *int                `json:"quantity,omitempty"`
}

func (p DeliveryItemPatch) Validate() error {
	if p.Status != nil && !ValidDeliveryItemStatus(*p.Status) {
		return Invalid("unknown delivery item status %q", *p.Status)
	}
	if p.Quantity != nil && *p.Quantity < 0 {
		return Invalid("delivery item quantity must not be negative, got %d", *p.Quantity)
	}
	return nil
}

type Invoice struct {
	Id            int64           `json:"id"`
	DeliveryId    int64           `json:"deliveryId"`
	InvoiceNumber string          `json:"invoiceNumber"`
	FileName      string          `json:"fileName,omitempty"`
	FileUrl       string          `json:"fileUrl,omitempty"`
	IssueDate     time.Time       `json:"issueDate"`
	Amount        decimal.Decimal `json:"amount"`
	CreatedAt     time.Time       `json:"createdAt"`
}

func (i Invoice) Validate() error {
	if i.Amount.IsNegative() {
		return Invalid("invoice amount must not be negative")
	}
	return nil
}

// ComputeStatus derives the delivery status. Issue wins over partial progress.
func (d Delivery) ComputeStatus() DeliveryStatus {
	if len(d.Items) == 0 {
		return DeliveryPending
	}

	delivered := 0
	for _, item := range d.Items {
		switch item.Status {
		case DeliveryItemIssue:
			return DeliveryIssue
		case DeliveryItemDelivered:
			delivered++
		}
	}

	switch {
	case delivered == len(d.Items):
		return DeliveryCompleted
	case delivered > 0:
		return DeliveryPartial
	default:
		return DeliveryPending
	}
}
