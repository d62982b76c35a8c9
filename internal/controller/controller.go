package controller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"procurement/internal/models"

	"go.uber.org/zap"
)

type Service interface {
	CreateTender(ctx context.Context, tender models.Tender) (models.Tender, error)
	GetTender(ctx context.Context, tenderId int64) (models.Tender, error)
	CreateQuotation(ctx context.Context, quotation models.Quotation) (models.Quotation, error)
	GetQuotation(ctx context.Context, quotationId int64) (models.Quotation, error)
	CreateProduct(ctx context.Context, product models.Product) (models.Product, error)
	GetProduct(ctx context.Context, productId int64) (models.Product, error)

	SubmitAward(ctx context.Context, sub models.AwardSubmission) (models.AwardResult, error)
	GetAward(ctx context.Context, awardId int64) (models.Award, error)
	GetTenderAwards(ctx context.Context, tenderId int64) ([]models.Award, error)
	GetQuotationAwards(ctx context.Context, quotationId int64) ([]models.Award, error)
	AddAwardItem(ctx context.Context, awardId int64, in models.AwardedItemInput) (models.Award, error)
	RemoveAward(ctx context.Context, awardId int64) error
	UpdateAwardedQuantity(ctx context.Context, quotationItemId int64, quantity int) (models.QuotationItem, error)

	GetDelivery(ctx context.Context, deliveryId int64) (models.Delivery, error)
	GetTenderDelivery(ctx context.Context, tenderId int64) (models.Delivery, error)
	UpdateDeliveryItem(ctx context.Context, deliveryId, itemId int64, patch models.DeliveryItemPatch) (models.DeliveryItem, error)
	AddInvoice(ctx context.Context, deliveryId int64, inv models.Invoice) (models.Invoice, error)
}

type Controller struct {
	service Service
	log     *zap.Logger
}

func NewController(service Service, log *zap.Logger) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{service: service, log: log}
}

// GET /api/ping
func (c *Controller) Ping(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "ok")
}

//// Tenders

// POST /api/tenders
func (c *Controller) NewTender(w http.ResponseWriter, r *http.Request) {
	data, err := c.readBody(r.Body)
	if err != nil {
		c.errorResponse(w, http.StatusInternalServerError, "could not read request body")
		return
	}

	req, err := ParseNewTenderReq(data)
	if err != nil {
		c.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	tender, err := c.service.CreateTender(r.Context(), req.Tender())
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, tender)
}

// GET /api/tenders/{tenderId}
func (c *Controller) Tender(w http.ResponseWriter, r *http.Request) {
	tenderId, ok := c.pathId(w, r, "tenderId")
	if !ok {
		return
	}

	tender, err := c.service.GetTender(r.Context(), tenderId)
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, tender)
}

// GET /api/tenders/{tenderId}/awards
func (c *Controller) TenderAwards(w http.ResponseWriter, r *http.Request) {
	tenderId, ok := c.pathId(w, r, "tenderId")
	if !ok {
		return
	}

	awards, err := c.service.GetTenderAwards(r.Context(), tenderId)
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, awards)
}

// GET /api/tenders/{tenderId}/delivery
func (c *Controller) TenderDelivery(w http.ResponseWriter, r *http.Request) {
	tenderId, ok := c.pathId(w, r, "tenderId")
	if !ok {
		return
	}

	delivery, err := c.service.GetTenderDelivery(r.Context(), tenderId)
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, delivery)
}

//// Quotations

// POST /api/quotations
func (c *Controller) NewQuotation(w http.ResponseWriter, r *http.Request) {
	data, err := c.readBody(r.Body)
	if err != nil {
		c.errorResponse(w, http.StatusInternalServerError, "could not read request body")
		return
	}

	req, err := ParseNewQuotationReq(data)
	if err != nil {
		c.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	quotation, err := c.service.CreateQuotation(r.Context(), req.Quotation())
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, quotation)
}

// GET /api/quotations/{quotationId}
func (c *Controller) Quotation(w http.ResponseWriter, r *http.Request) {
	quotationId, ok := c.pathId(w, r, "quotationId")
	if !ok {
		return
	}

	quotation, err := c.service.GetQuotation(r.Context(), quotationId)
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, quotation)
}

// GET /api/quotations/{quotationId}/awards
func (c *Controller) QuotationAwards(w http.ResponseWriter, r *http.Request) {
	quotationId, ok := c.pathId(w, r, "quotationId")
	if !ok {
		return
	}

	awards, err := c.service.GetQuotationAwards(r.Context(), quotationId)
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, awards)
}

// PUT /api/quotations/items/{itemId}/awarded-quantity
func (c *Controller) SetAwardedQuantity(w http.ResponseWriter, r *http.Request) {
	itemId, ok := c.pathId(w, r, "itemId")
	if !ok {
		return
	}

	data, err := c.readBody(r.Body)
	if err != nil {
		c.errorResponse(w, http.StatusInternalServerError, "could not read request body")
		return
	}

	req, err := ParseAwardedQuantityReq(data)
	if err != nil {
		c.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	item, err := c.service.UpdateAwardedQuantity(r.Context(), itemId, *req.Quantity)
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, item)
}

//// Products

// POST /api/products
func (c *Controller) NewProduct(w http.ResponseWriter, r *http.Request) {
	data, err := c.readBody(r.Body)
	if err != nil {
		c.errorResponse(w, http.StatusInternalServerError, "could not read request body")
		return
	}

	req, err := ParseNewProductReq(data)
	if err != nil {
		c.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	product, err := c.service.CreateProduct(r.Context(), models.Product{
		Name:          req.Name,
		Code:          req.Code,
		Brand:         req.Brand,
		StockQuantity: req.StockQuantity,
	})
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, product)
}

// GET /api/products/{productId}
func (c *Controller) Product(w http.ResponseWriter, r *http.Request) {
	productId, ok := c.pathId(w, r, "productId")
	if !ok {
		return
	}

	product, err := c.service.GetProduct(r.Context(), productId)
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, product)
}

//// Awards

// POST /api/awards
func (c *Controller) SubmitAward(w http.ResponseWriter, r *http.Request) {
	data, err := c.readBody(r.Body)
	if err != nil {
		c.errorResponse(w, http.StatusInternalServerError, "could not read request body")
		return
	}

	sub, err := ParseSubmitAwardReq(data)
	if err != nil {
		c.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := c.service.SubmitAward(r.Context(), *sub)
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, result)
}

// GET /api/awards/{awardId}
func (c *Controller) Award(w http.ResponseWriter, r *http.Request) {
	awardId, ok := c.pathId(w, r, "awardId")
	if !ok {
		return
	}

	award, err := c.service.GetAward(r.Context(), awardId)
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, award)
}

// POST /api/awards/{awardId}/items
func (c *Controller) AddAwardItem(w http.ResponseWriter, r *http.Request) {
	awardId, ok := c.pathId(w, r, "awardId")
	if !ok {
		return
	}

	data, err := c.readBody(r.Body)
	if err != nil {
		c.errorResponse(w, http.StatusInternalServerError, "could not read request body")
		return
	}

	item, err := ParseAwardItemReq(data)
	if err != nil {
		c.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	award, err := c.service.AddAwardItem(r.Context(), awardId, *item)
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, award)
}

// DELETE /api/awards/{awardId}
func (c *Controller) RemoveAward(w http.ResponseWriter, r *http.Request) {
	awardId, ok := c.pathId(w, r, "awardId")
	if !ok {
		return
	}

	err := c.service.RemoveAward(r.Context(), awardId)
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

//// Deliveries

// GET /api/deliveries/{deliveryId}
func (c *Controller) Delivery(w http.ResponseWriter, r *http.Request) {
	deliveryId, ok := c.pathId(w, r, "deliveryId")
	if !ok {
		return
	}

	delivery, err := c.service.GetDelivery(r.Context(), deliveryId)
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, delivery)
}

// PATCH /api/deliveries/{deliveryId}/items/{itemId}
func (c *Controller) EditDeliveryItem(w http.ResponseWriter, r *http.Request) {
	deliveryId, ok := c.pathId(w, r, "deliveryId")
	if !ok {
		return
	}
	itemId, ok := c.pathId(w, r, "itemId")
	if !ok {
		return
	}

	data, err := c.readBody(r.Body)
	if err != nil {
		c.errorResponse(w, http.StatusInternalServerError, "could not read request body")
		return
	}

	patch, err := ParseDeliveryItemPatchReq(data)
	if err != nil {
		c.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	item, err := c.service.UpdateDeliveryItem(r.Context(), deliveryId, itemId, *patch)
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, item)
}

// POST /api/deliveries/{deliveryId}/invoices
func (c *Controller) NewInvoice(w http.ResponseWriter, r *http.Request) {
	deliveryId, ok := c.pathId(w, r, "deliveryId")
	if !ok {
		return
	}

	data, err := c.readBody(r.Body)
	if err != nil {
		c.errorResponse(w, http.StatusInternalServerError, "could not read request body")
		return
	}

	req, err := ParseNewInvoiceReq(data)
	if err != nil {
		c.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	invoice, err := c.service.AddInvoice(r.Context(), deliveryId, req.Invoice())
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, invoice)
}

//// Service

type ErrorResponse struct {
	Reason string `json:"reason"`
}

func (c *Controller) pathId(w http.ResponseWriter, r *http.Request, key string) (int64, bool) {
	raw := r.PathValue(key)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		c.errorResponse(w, http.StatusBadRequest, fmt.Sprintf("invalid value of '%s' path parameter: %s", key, raw))
		return 0, false
	}
	return id, true
}

func (c *Controller) errorResponse(w http.ResponseWriter, status int, text string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	data, err := json.Marshal(ErrorResponse{Reason: text})
	if err != nil {
		c.log.Error("controller.Controller.errorResponse", zap.Error(err))
		return
	}

	_, err = w.Write(data)
	if err != nil {
		c.log.Error("controller.Controller.errorResponse", zap.Error(err))
		return
	}
}

func (c *Controller) serviceErrorResponse(w http.ResponseWriter, err error) {
	var notFound *models.NotFoundError

	switch {
	case errors.As(err, &notFound):
		c.errorResponse(w, http.StatusNotFound, notFound.Error())
	case errors.Is(err, models.ErrNotFound):
		c.errorResponse(w, http.StatusNotFound, "requested entity does not exist")
	case errors.Is(err, models.ErrValidation):
		c.errorResponse(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrConflict):
		c.errorResponse(w, http.StatusConflict, err.Error())
	default:
		c.log.Error("controller: unexpected service error", zap.Error(err))
		c.errorResponse(w, http.StatusInternalServerError, "internal server error")
	}
}

func (c *Controller) marshalResponse(w http.ResponseWriter, data any) {
	d, err := json.Marshal(data)
	if err != nil {
		c.errorResponse(w, http.StatusInternalServerError, "could not marshal response data")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_, err = w.Write(d)
	if err != nil {
		c.log.Warn("controller: could not write response", zap.Error(err))
	}
}

func (c *Controller) readBody(src io.ReadCloser) ([]byte, error) {
	data, err := io.ReadAll(src)
	if err != nil {
		return nil, err
	}
	src.Close()
	return data, nil
}
