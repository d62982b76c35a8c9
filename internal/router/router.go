package router

import (
	"net/http"

	"procurement/internal/controller"
)

func NewRouter(c *controller.Controller) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/ping", c.Ping)
	mux.HandleFunc("POST /api/tenders", c.NewTender)
	mux.HandleFunc("GET /api/tenders/{tenderId}", c.Tender)
	mux.HandleFunc("GET /api/tenders/{tenderId}/awards", c.TenderAwards)
	mux.HandleFunc("GET /api/tenders/{tenderId}/delivery", c.TenderDelivery)
	mux.HandleFunc("POST /api/quotations", c.NewQuotation)
	mux.HandleFunc("GET /api/quotations/{quotationId}", c.Quotation)
	mux.HandleFunc("GET /api/quotations/{quotationId}/awards", c.QuotationAwards)
	mux.HandleFunc("PUT /api/quotations/items/{itemId}/awarded-quantity", c.SetAwardedQuantity)
	mux.HandleFunc("POST /api/products", c.NewProduct)
	mux.HandleFunc("GET /api/products/{productId}", c.Product)
	mux.HandleFunc("POST /api/awards", c.SubmitAward)
	mux.HandleFunc("GET /api/awards/{awardId}", c.Award)
	mux.HandleFunc("POST /api/awards/{awardId}/items", c.AddAwardItem)
	mux.HandleFunc("DELETE /api/awards/{awardId}", c.RemoveAward)
	mux.HandleFunc("GET /api/deliveries/{deliveryId}", c.Delivery)
	mux.HandleFunc("PATCH /api/deliveries/{deliveryId}/items/{itemId}", c.EditDeliveryItem)
	mux.HandleFunc("POST /api/deliveries/{deliveryId}/invoices", c.NewInvoice)

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("page not found"))
	})

	cors := http.NewServeMux()
	cors.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
		} else {
			mux.ServeHTTP(w, r)
		}
	})

	return cors
}
