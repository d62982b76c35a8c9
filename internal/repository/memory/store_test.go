package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"procurement/internal/models"
	"procurement/internal/repository"

	"github.com/shopspring/decimal"
)

func TestAtomicDiscardsFailedUnit(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	var product models.Product
	err := store.Atomic(ctx, func(ctx context.Context, tx repository.Tx) error {
		var err error
		product, err = tx.CreateProduct(ctx, models.Product{Name: "Paracetamol 500mg", StockQuantity: 10})
		return err
	})
	if err != nil {
		t.Fatal(err)
	}

	boom := errors.New("boom")
	err = store.Atomic(ctx, func(ctx context.Context, tx repository.Tx) error {
		if _, err := tx.DecrementStock(ctx, product.Id, 4); err != nil {
			return err
		}
		if _, err := tx.AppendAwardHistory(ctx, product.Id, models.CompetitorAward{CompetitorName: "Rival"}); err != nil {
			return err
		}
		if _, err := tx.CreateProduct(ctx, models.Product{Name: "Ghost"}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Expected unit error, got %v", err)
	}

	err = store.Atomic(ctx, func(ctx context.Context, tx repository.Tx) error {
		stored, ok, err := tx.ProductById(ctx, product.Id)
		if err != nil {
			return err
		}
		if !ok {
			t.Fatal("Expected product to exist")
		}
		if stored.StockQuantity != 10 {
			t.Errorf("Expected stock 10 after failed unit, got %d", stored.StockQuantity)
		}
		if len(stored.AwardHistory) != 0 {
			t.Errorf("Expected empty history after failed unit, got %+v", stored.AwardHistory)
		}
		if _, ok, _ = tx.ProductById(ctx, product.Id+1); ok {
			t.Error("Expected product created by failed unit to be discarded")
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestAtomicCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := NewStore().Atomic(ctx, func(ctx context.Context, tx repository.Tx) error {
		called = true
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if called {
		t.Error("Unit must not run with a canceled context")
	}
}

func TestAwardAndDeliveryConflicts(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	err := store.Atomic(ctx, func(ctx context.Context, tx repository.Tx) error {
		tender, err := tx.CreateTender(ctx, models.Tender{
			StartDate:    time.Now(),
			DeadlineDate: time.Now().Add(time.Hour),
			ClientId:     1,
			Status:       models.TenderPending,
			Lines:        []models.TenderLine{{ProductId: 1, Quantity: 2}},
		})
		if err != nil {
			return err
		}

		award := models.Award{TenderId: tender.Id, QuotationId: 99, Status: models.AwardTotal}
		created, err := tx.CreateAward(ctx, award)
		if err != nil {
			return err
		}
		if _, err = tx.CreateAward(ctx, award); !errors.Is(err, models.ErrConflict) {
			t.Errorf("Expected award pair conflict, got %v", err)
		}

		pid := int64(1)
		if _, err = tx.AddAwardItem(ctx, models.AwardItem{AwardId: created.Id, ProductId: &pid, Quantity: 2, UnitPrice: decimal.NewFromInt(5)}); err != nil {
			return err
		}

		awards, err := tx.AwardsByTender(ctx, tender.Id)
		if err != nil {
			return err
		}
		if len(awards) != 1 || len(awards[0].Items) != 1 {
			t.Errorf("Expected one award with one item, got %+v", awards)
		}
		byQuotation, err := tx.AwardsByQuotation(ctx, 99)
		if err != nil {
			return err
		}
		if len(byQuotation) != 1 || byQuotation[0].Id != created.Id || len(byQuotation[0].Items) != 1 {
			t.Errorf("Expected the award by quotation, got %+v", byQuotation)
		}

		if _, err = tx.CreateDelivery(ctx, models.Delivery{TenderId: tender.Id}); err != nil {
			return err
		}
		if _, err = tx.CreateDelivery(ctx, models.Delivery{TenderId: tender.Id}); !errors.Is(err, models.ErrConflict) {
			t.Errorf("Expected delivery conflict, got %v", err)
		}

		if err = tx.DeleteAward(ctx, created.Id); err != nil {
			return err
		}
		awards, err = tx.AwardsByTender(ctx, tender.Id)
		if err != nil {
			return err
		}
		if len(awards) != 0 {
			t.Errorf("Expected no awards after delete, got %d", len(awards))
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestAddAwardedQuantity(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	err := store.Atomic(ctx, func(ctx context.Context, tx repository.Tx) error {
		pid := int64(3)
		q, err := tx.CreateQuotation(ctx, models.Quotation{
			Identifier: "COT-1",
			Items:      []models.QuotationItem{{ProductId: &pid, ProductName: "Gauze", Quantity: 10}},
		})
		if err != nil {
			return err
		}

		item, err := tx.AddAwardedQuantity(ctx, q.Items[0].Id, 4)
		if err != nil {
			return err
		}
		item, err = tx.AddAwardedQuantity(ctx, item.Id, 3)
		if err != nil {
			return err
		}
		if item.AwardedQuantity != 7 {
			t.Errorf("Expected awarded quantity 7, got %d", item.AwardedQuantity)
		}

		if _, err = tx.AddAwardedQuantity(ctx, item.Id+100, 1); !errors.Is(err, models.ErrNotFound) {
			t.Errorf("Expected not found for missing item, got %v", err)
		}

		if _, err = tx.CreateQuotation(ctx, models.Quotation{Identifier: "COT-1"}); !errors.Is(err, models.ErrConflict) {
			t.Errorf("Expected identifier conflict, got %v", err)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}
