package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"procurement/internal/models"
	"procurement/internal/repository/memory"

	gofakeit "github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"
)

var testNow = time.Date(2024, 5, 10, 14, 30, 0, 0, time.UTC)

type fixture struct {
	t         *testing.T
	svc       *Service
	tender    models.Tender
	quotation models.Quotation
	products  []models.Product
}

func NewTestService() *Service {
	return NewService(memory.NewStore(), WithClock(func() time.Time { return testNow }))
}

// NewFixture creates one product per requested quantity, a tender asking for
// them and a quotation offering them at the same quantities.
func NewFixture(t *testing.T, quantities ...int) *fixture {
	t.Helper()
	gofakeit.Seed(0)

	f := &fixture{t: t, svc: NewTestService()}
	ctx := context.Background()

	lines := make([]models.TenderLine, 0, len(quantities))
	items := make([]models.QuotationItem, 0, len(quantities))
	for _, qty := range quantities {
		product, err := f.svc.CreateProduct(ctx, models.Product{
			Name:          gofakeit.ProductName(),
			Code:          gofakeit.LetterN(8),
			Brand:         gofakeit.Company(),
			StockQuantity: 100,
		})
		if err != nil {
			t.Fatalf("Could not create product: %s", err)
		}
		f.products = append(f.products, product)

		lines = append(lines, models.TenderLine{ProductId: product.Id, Quantity: qty})
		items = append(items, models.QuotationItem{
			ProductId:       &product.Id,
			Sku:             product.Code,
			ProductName:     product.Name,
			Quantity:        qty,
			PriceWithoutTax: decimal.NewFromInt(100),
			PriceWithTax:    decimal.NewFromInt(119),
		})
	}

	var err error
	f.tender, err = f.svc.CreateTender(ctx, models.Tender{
		StartDate:      testNow,
		DeadlineDate:   testNow.Add(10 * 24 * time.Hour),
		ClientId:       1,
		CallNumber:     gofakeit.Numerify("####-##-LE##"),
		InternalNumber: gofakeit.Numerify("INT-#####"),
		Lines:          lines,
	})
	if err != nil {
		t.Fatalf("Could not create tender: %s", err)
	}

	f.quotation, err = f.svc.CreateQuotation(ctx, models.Quotation{
		Identifier: gofakeit.UUID(),
		TenderId:   &f.tender.Id,
		Items:      items,
	})
	if err != nil {
		t.Fatalf("Could not create quotation: %s", err)
	}

	return f
}

func (f *fixture) pid(i int) *int64 {
	id := f.products[i].Id
	return &id
}

func (f *fixture) award(items ...models.AwardedItemInput) models.AwardResult {
	f.t.Helper()
	result, err := f.svc.SubmitAward(context.Background(), models.AwardSubmission{
		TenderId:     f.tender.Id,
		QuotationId:  f.quotation.Id,
		AwardedItems: items,
	})
	if err != nil {
		f.t.Fatalf("SubmitAward failed: %s", err)
	}
	return result
}

func (f *fixture) quotationItem(i int) models.QuotationItem {
	f.t.Helper()
	q, err := f.svc.GetQuotation(context.Background(), f.quotation.Id)
	if err != nil {
		f.t.Fatal(err)
	}
	return q.Items[i]
}

func (f *fixture) tenderStatus() models.TenderStatus {
	f.t.Helper()
	tender, err := f.svc.GetTender(context.Background(), f.tender.Id)
	if err != nil {
		f.t.Fatal(err)
	}
	return tender.Status
}

func (f *fixture) delivery() models.Delivery {
	f.t.Helper()
	d, err := f.svc.GetTenderDelivery(context.Background(), f.tender.Id)
	if err != nil {
		f.t.Fatal(err)
	}
	return d
}

func item(pid *int64, qty int, price int64) models.AwardedItemInput {
	return models.AwardedItemInput{ProductId: pid, Quantity: qty, UnitPrice: decimal.NewFromInt(price)}
}

func assertNotFound(t *testing.T, err error, entity string) {
	t.Helper()
	var nf *models.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("Expected not found error for %s, got %v", entity, err)
	}
	if nf.Entity != entity {
		t.Errorf("Expected missing %s, got %s", entity, nf.Entity)
	}
}

func TestCreateTenderValidation(t *testing.T) {
	svc := NewTestService()

	_, err := svc.CreateTender(context.Background(), models.Tender{
		StartDate:    testNow,
		DeadlineDate: testNow.Add(-time.Hour),
		ClientId:     1,
		Lines:        []models.TenderLine{{ProductId: 1, Quantity: 1}},
	})
	if !errors.Is(err, models.ErrValidation) {
		t.Errorf("Expected validation error for deadline before start, got %v", err)
	}
}

func TestCreateQuotationStartsPending(t *testing.T) {
	f := NewFixture(t, 5)

	qi := f.quotationItem(0)
	if qi.AwardStatus != models.ItemPending || qi.AwardedQuantity != 0 {
		t.Errorf("Expected new quotation item to be pending with nothing awarded, got %+v", qi)
	}
	if f.tenderStatus() != models.TenderPending {
		t.Errorf("Expected new tender to be %s, got %s", models.TenderPending, f.tenderStatus())
	}

	missing := int64(999)
	_, err := f.svc.CreateQuotation(context.Background(), models.Quotation{Identifier: "X", TenderId: &missing})
	assertNotFound(t, err, "tender")
}

func TestGetNotFound(t *testing.T) {
	ctx := context.Background()
	svc := NewTestService()

	_, err := svc.GetTender(ctx, 1)
	assertNotFound(t, err, "tender")
	_, err = svc.GetQuotation(ctx, 1)
	assertNotFound(t, err, "quotation")
	_, err = svc.GetProduct(ctx, 1)
	assertNotFound(t, err, "product")
	_, err = svc.GetAward(ctx, 1)
	assertNotFound(t, err, "award")
	_, err = svc.GetTenderAwards(ctx, 1)
	assertNotFound(t, err, "tender")
	_, err = svc.GetDelivery(ctx, 1)
	assertNotFound(t, err, "delivery")
	_, err = svc.RecomputeTenderStatus(ctx, 1)
	assertNotFound(t, err, "tender")
}
