package controller_test

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"procurement/internal/controller"
	"procurement/internal/models"
	"procurement/internal/repository/memory"
	"procurement/internal/router"
	"procurement/internal/service"

	gofakeit "github.com/brianvoe/gofakeit/v7"
)

func NewTestServer(t *testing.T) *httptest.Server {
	svc := service.NewService(memory.NewStore())
	srv := httptest.NewServer(router.NewRouter(controller.NewController(svc, nil)))
	t.Cleanup(srv.Close)
	return srv
}

func ReqTest(t *testing.T, srv *httptest.Server, method, endpoint, body, testName string, expectedStatus int) []byte {
	t.Helper()

	var reader io.Reader
	if len(body) > 0 {
		reader = strings.NewReader(body)
	}

	req, err := http.NewRequest(method, srv.URL+endpoint, reader)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}

	respBody, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != expectedStatus {
		t.Fatalf("%s %s '%s' test should return status code %d, got %d, body:\n%s", method, endpoint, testName, expectedStatus, resp.StatusCode, string(respBody))
	}
	return respBody
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		t.Fatalf("Could not decode %s: %s", data, err)
	}
	return v
}

func TestPing(t *testing.T) {
	srv := NewTestServer(t)
	body := ReqTest(t, srv, "GET", "/api/ping", "", "ping", http.StatusOK)
	if string(body) != "ok" {
		t.Errorf("Expected 'ok', got %q", body)
	}
	ReqTest(t, srv, "GET", "/api/nowhere", "", "unknown route", http.StatusNotFound)
}

func TestAwardFlow(t *testing.T) {
	srv := NewTestServer(t)

	product := decode[models.Product](t, ReqTest(t, srv, "POST", "/api/products",
		fmt.Sprintf(`{"name": %q, "code": "P-1", "stockQuantity": 50}`, gofakeit.ProductName()), "new product", http.StatusOK))

	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	tenderBody := fmt.Sprintf(`{
	"startDate": %q,
	"deadlineDate": %q,
	"clientId": 7,
	"callNumber": "1234-56-LE24",
	"lines": [{"productId": %d, "quantity": 10}]
	}`, start.Format(time.RFC3339), start.AddDate(0, 0, 14).Format(time.RFC3339), product.Id)
	tender := decode[models.Tender](t, ReqTest(t, srv, "POST", "/api/tenders", tenderBody, "new tender", http.StatusOK))

	badTender := strings.Replace(tenderBody, start.AddDate(0, 0, 14).Format(time.RFC3339), start.AddDate(0, 0, -1).Format(time.RFC3339), 1)
	ReqTest(t, srv, "POST", "/api/tenders", badTender, "deadline before start", http.StatusBadRequest)

	quotation := decode[models.Quotation](t, ReqTest(t, srv, "POST", "/api/quotations", fmt.Sprintf(`{
	"identifier": "COT-%s",
	"tenderId": %d,
	"items": [{"productId": %d, "productName": "Item", "quantity": 10, "priceWithoutTax": 100, "priceWithTax": 119}]
	}`, gofakeit.LetterN(6), tender.Id, product.Id), "new quotation", http.StatusOK))

	submit := fmt.Sprintf(`{
	"tenderId": %d,
	"quotationId": %d,
	"awardedItems": [{"productId": %d, "quantity": 10, "unitPrice": 100}]
	}`, tender.Id, quotation.Id, product.Id)
	result := decode[models.AwardResult](t, ReqTest(t, srv, "POST", "/api/awards", submit, "submit award", http.StatusOK))
	if result.Award.TotalQuantity != 10 || result.Award.TotalPriceWithTax.String() != "1190" {
		t.Errorf("Unexpected award totals %+v", result.Award)
	}

	stored := decode[models.Tender](t, ReqTest(t, srv, "GET", fmt.Sprintf("/api/tenders/%d", tender.Id), "", "get tender", http.StatusOK))
	if stored.Status != models.TenderTotalAward {
		t.Errorf("Expected tender %s, got %s", models.TenderTotalAward, stored.Status)
	}

	awards := decode[[]models.Award](t, ReqTest(t, srv, "GET", fmt.Sprintf("/api/tenders/%d/awards", tender.Id), "", "tender awards", http.StatusOK))
	if len(awards) != 1 {
		t.Fatalf("Expected one award, got %d", len(awards))
	}
	byQuotation := decode[[]models.Award](t, ReqTest(t, srv, "GET", fmt.Sprintf("/api/quotations/%d/awards", quotation.Id), "", "quotation awards", http.StatusOK))
	if len(byQuotation) != 1 || byQuotation[0].Id != awards[0].Id {
		t.Errorf("Expected the same award by quotation, got %+v", byQuotation)
	}
	ReqTest(t, srv, "GET", "/api/quotations/999/awards", "", "quotation awards missing", http.StatusNotFound)

	delivery := decode[models.Delivery](t, ReqTest(t, srv, "GET", fmt.Sprintf("/api/tenders/%d/delivery", tender.Id), "", "tender delivery", http.StatusOK))
	if len(delivery.Items) != 1 {
		t.Fatalf("Expected one delivery item, got %d", len(delivery.Items))
	}

	itemUrl := fmt.Sprintf("/api/deliveries/%d/items/%d", delivery.Id, delivery.Items[0].Id)
	item := decode[models.DeliveryItem](t, ReqTest(t, srv, "PATCH", itemUrl, `{"status": "Delivered"}`, "deliver item", http.StatusOK))
	if item.ActualDate == nil {
		t.Error("Expected actual date to be stamped")
	}
	ReqTest(t, srv, "PATCH", itemUrl, `{"status": "Lost"}`, "bad status", http.StatusBadRequest)

	ReqTest(t, srv, "POST", fmt.Sprintf("/api/deliveries/%d/invoices", delivery.Id), `{"amount": 1190}`, "invoice", http.StatusOK)
	delivery = decode[models.Delivery](t, ReqTest(t, srv, "GET", fmt.Sprintf("/api/deliveries/%d", delivery.Id), "", "get delivery", http.StatusOK))
	if delivery.Status != models.DeliveryCompleted || len(delivery.Invoices) != 1 {
		t.Errorf("Expected completed delivery with an invoice, got %s / %d", delivery.Status, len(delivery.Invoices))
	}

	qItemUrl := fmt.Sprintf("/api/quotations/items/%d/awarded-quantity", quotation.Items[0].Id)
	ReqTest(t, srv, "PUT", qItemUrl, `{"quantity": 8}`, "set awarded quantity", http.StatusOK)
	ReqTest(t, srv, "PUT", qItemUrl, `{}`, "missing quantity", http.StatusBadRequest)

	awardUrl := fmt.Sprintf("/api/awards/%d", result.Award.Id)
	updated := decode[models.Award](t, ReqTest(t, srv, "POST", awardUrl+"/items", `{"productName": "Extra", "quantity": 1, "unitPrice": 10}`, "add item", http.StatusOK))
	if len(updated.Items) != 2 {
		t.Errorf("Expected 2 award items, got %d", len(updated.Items))
	}

	ReqTest(t, srv, "DELETE", awardUrl, "", "remove award", http.StatusNoContent)
	ReqTest(t, srv, "GET", awardUrl, "", "removed award", http.StatusNotFound)
}

func TestErrorMapping(t *testing.T) {
	srv := NewTestServer(t)

	for _, endpoint := range []string{
		"/api/tenders/5",
		"/api/tenders/5/awards",
		"/api/quotations/5",
		"/api/products/5",
		"/api/awards/5",
		"/api/deliveries/5",
	} {
		body := ReqTest(t, srv, "GET", endpoint, "", "missing entity", http.StatusNotFound)
		resp := decode[controller.ErrorResponse](t, body)
		if !strings.Contains(resp.Reason, "5 does not exist") {
			t.Errorf("%s: expected reason to name the missing id, got %q", endpoint, resp.Reason)
		}
	}

	ReqTest(t, srv, "GET", "/api/tenders/abc", "", "non numeric id", http.StatusBadRequest)
	ReqTest(t, srv, "POST", "/api/awards", `{"tenderId": 1`, "broken json", http.StatusBadRequest)
	ReqTest(t, srv, "POST", "/api/awards", `{"tenderId": 1, "quotationId": 1, "status": "Most"}`, "bad award status", http.StatusBadRequest)
	ReqTest(t, srv, "POST", "/api/awards", `{"tenderId": 1, "quotationId": 1, "awardedItems": []}`, "missing tender", http.StatusNotFound)
	ReqTest(t, srv, "POST", "/api/products", `{"name": ""}`, "empty product name", http.StatusBadRequest)
	ReqTest(t, srv, "POST", "/api/quotations", `{"identifier": "A"}`, "first quotation", http.StatusOK)
	ReqTest(t, srv, "POST", "/api/quotations", `{"identifier": "A"}`, "duplicate identifier", http.StatusConflict)
}
