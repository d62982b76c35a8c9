package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"procurement/internal/models"

	"github.com/shopspring/decimal"
)

// New tender request

type NewTenderReq struct {
	StartDate      time.Time           `json:"startDate"`
	DeadlineDate   time.Time           `json:"deadlineDate"`
	ClientId       int64               `json:"clientId"`
	CallNumber     string              `json:"callNumber"`
	InternalNumber string              `json:"internalNumber"`
	Lines          []models.TenderLine `json:"lines"`
}

func ParseNewTenderReq(data []byte) (*NewTenderReq, error) {
	t := &NewTenderReq{}

	err := json.Unmarshal(data, t)
	if err != nil {
		return nil, err
	}

	if err = checkLengthLimit(t.CallNumber, "callNumber", 100); err != nil {
		return nil, err
	}
	if err = checkLengthLimit(t.InternalNumber, "internalNumber", 100); err != nil {
		return nil, err
	}

	return t, nil
}

func (t *NewTenderReq) Tender() models.Tender {
	return models.Tender{
		StartDate:      t.StartDate,
		DeadlineDate:   t.DeadlineDate,
		ClientId:       t.ClientId,
		CallNumber:     t.CallNumber,
		InternalNumber: t.InternalNumber,
		Lines:          t.Lines,
	}
}

// New quotation request

type NewQuotationReq struct {
	Identifier string                `json:"identifier"`
	TenderId   *int64                `json:"tenderId,omitempty"`
	ClientId   *int64                `json:"clientId,omitempty"`
	Items      []NewQuotationItemReq `json:"items"`
}

type NewQuotationItemReq struct {
	ProductId       *int64          `json:"productId,omitempty"`
	Sku             string          `json:"sku"`
	ProductName     string          `json:"productName"`
	Quantity        int             `json:"quantity"`
	PriceWithoutTax decimal.Decimal `json:"priceWithoutTax"`
	PriceWithTax    decimal.Decimal `json:"priceWithTax"`
}

func ParseNewQuotationReq(data []byte) (*NewQuotationReq, error) {
	q := &NewQuotationReq{}

	err := json.Unmarshal(data, q)
	if err != nil {
		return nil, err
	}

	if len(q.Identifier) == 0 {
		return nil, errors.New("field 'identifier' is required")
	}
	if err = checkLengthLimit(q.Identifier, "identifier", 100); err != nil {
		return nil, err
	}
	for _, item := range q.Items {
		if err = checkLengthLimit(item.ProductName, "productName", 500); err != nil {
			return nil, err
		}
	}

	return q, nil
}

func (q *NewQuotationReq) Quotation() models.Quotation {
	items := make([]models.QuotationItem, 0, len(q.Items))
	for _, item := range q.Items {
		items = append(items, models.QuotationItem{
			ProductId:       item.ProductId,
			Sku:             item.Sku,
			ProductName:     item.ProductName,
			Quantity:        item.Quantity,
			PriceWithoutTax: item.PriceWithoutTax,
			PriceWithTax:    item.PriceWithTax,
		})
	}

	return models.Quotation{
		Identifier: q.Identifier,
		TenderId:   q.TenderId,
		ClientId:   q.ClientId,
		Items:      items,
	}
}

// Awarded quantity request

type AwardedQuantityReq struct {
	Quantity *int `json:"quantity"`
}

func ParseAwardedQuantityReq(data []byte) (*AwardedQuantityReq, error) {
	q := &AwardedQuantityReq{}

	err := json.Unmarshal(data, q)
	if err != nil {
		return nil, err
	}

	if q.Quantity == nil {
		return nil, errors.New("field 'quantity' is required")
	}

	return q, nil
}

// New product request

type NewProductReq struct {
	Name          string `json:"name"`
	Code          string `json:"code"`
	Brand         string `json:"brand"`
	StockQuantity int    `json:"stockQuantity"`
}

func ParseNewProductReq(data []byte) (*NewProductReq, error) {
	p := &NewProductReq{}

	err := json.Unmarshal(data, p)
	if err != nil {
		return nil, err
	}

	if err = checkLengthLimit(p.Name, "name", 500); err != nil {
		return nil, err
	}
	if err = checkLengthLimit(p.Code, "code", 100); err != nil {
		return nil, err
	}
	if err = checkLengthLimit(p.Brand, "brand", 100); err != nil {
		return nil, err
	}

	return p, nil
}

// Award submission request

func ParseSubmitAwardReq(data []byte) (*models.AwardSubmission, error) {
	sub := &models.AwardSubmission{}

	err := json.Unmarshal(data, sub)
	if err != nil {
		return nil, err
	}

	if sub.Status != "" && !models.ValidAwardStatus(sub.Status) {
		return nil, fmt.Errorf("invalid award status supplied: %s, should be one of: %s, %s", string(sub.Status), models.AwardTotal, models.AwardPartial)
	}

	return sub, nil
}

// Add award item request

func ParseAwardItemReq(data []byte) (*models.AwardedItemInput, error) {
	item := &models.AwardedItemInput{}

	err := json.Unmarshal(data, item)
	if err != nil {
		return nil, err
	}

	if item.Quantity <= 0 {
		return nil, fmt.Errorf("field 'quantity' must be positive, got %d", item.Quantity)
	}

	return item, nil
}

// Delivery item patch request

func ParseDeliveryItemPatchReq(data []byte) (*models.DeliveryItemPatch, error) {
	patch := &models.DeliveryItemPatch{}

	err := json.Unmarshal(data, patch)
	if err != nil {
		return nil, err
	}

	if patch.Status != nil && !models.ValidDeliveryItemStatus(*patch.Status) {
		return nil, fmt.Errorf("invalid delivery item status supplied: %s, should be one of: %s, %s, %s, %s", string(*patch.Status),
			models.DeliveryItemPending, models.DeliveryItemOnWay, models.DeliveryItemDelivered, models.DeliveryItemIssue)
	}
	if patch.Observations != nil {
		if err = checkLengthLimit(*patch.Observations, "observations", 1000); err != nil {
			return nil, err
		}
	}

	return patch, nil
}

// New invoice request

type NewInvoiceReq struct {
	InvoiceNumber string          `json:"invoiceNumber"`
	FileName      string          `json:"fileName"`
	FileUrl       string          `json:"fileUrl"`
	IssueDate     *time.Time      `json:"issueDate,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
}

func ParseNewInvoiceReq(data []byte) (*NewInvoiceReq, error) {
	inv := &NewInvoiceReq{}

	err := json.Unmarshal(data, inv)
	if err != nil {
		return nil, err
	}

	if err = checkLengthLimit(inv.InvoiceNumber, "invoiceNumber", 100); err != nil {
		return nil, err
	}
	if err = checkLengthLimit(inv.FileName, "fileName", 255); err != nil {
		return nil, err
	}

	return inv, nil
}

func (inv *NewInvoiceReq) Invoice() models.Invoice {
	i := models.Invoice{
		InvoiceNumber: inv.InvoiceNumber,
		FileName:      inv.FileName,
		FileUrl:       inv.FileUrl,
		Amount:        inv.Amount,
	}
	if inv.IssueDate != nil {
		i.IssueDate = *inv.IssueDate
	}
	return i
}

//// Service

func checkLengthLimit(str, fieldName string, limit int) error {
	if len(str) > limit {
		return fmt.Errorf("field '%s' exceeds length limit: %d / %d", fieldName, len(str), limit)
	}
	return nil
}
