package memory

import (
	"cmp"
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"procurement/internal/models"
	"procurement/internal/repository"
)

// Store keeps every entity in process memory. Units of work are serialized
// and run against a copy of the state that replaces the original only when
// the unit succeeds.
type Store struct {
	mu    sync.Mutex
	state *state
	now   func() time.Time
}

var _ repository.Store = (*Store)(nil)

func NewStore() *Store {
	return &Store{
		state: newState(),
		now:   time.Now,
	}
}

func (s *Store) Atomic(ctx context.Context, fn func(ctx context.Context, tx repository.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("memory.Store.Atomic: %w", err)
	}

	working := s.state.clone()
	err := fn(ctx, &tx{st: working, now: s.now})
	if err != nil {
		return err
	}

	s.state = working
	return nil
}

func (s *Store) Close() error {
	return nil
}

type state struct {
	seq int64

	tenders        map[int64]models.Tender
	tenderLines    map[int64]models.TenderLine
	quotations     map[int64]models.Quotation
	quotationItems map[int64]models.QuotationItem
	products       map[int64]models.Product
	awards         map[int64]models.Award
	awardItems     map[int64]models.AwardItem
	deliveries     map[int64]models.Delivery
	deliveryItems  map[int64]models.DeliveryItem
	invoices       map[int64]models.Invoice
}

func newState() *state {
	return &state{
		tenders:        map[int64]models.Tender{},
		tenderLines:    map[int64]models.TenderLine{},
		quotations:     map[int64]models.Quotation{},
		quotationItems: map[int64]models.QuotationItem{},
		products:       map[int64]models.Product{},
		awards:         map[int64]models.Award{},
		awardItems:     map[int64]models.AwardItem{},
		deliveries:     map[int64]models.Delivery{},
		deliveryItems:  map[int64]models.DeliveryItem{},
		invoices:       map[int64]models.Invoice{},
	}
}

// clone copies every table. Slices held by values are never appended to in
// place, so a shallow copy of each map is enough.
func (s *state) clone() *state {
	return &state{
		seq:            s.seq,
		tenders:        maps.Clone(s.tenders),
		tenderLines:    maps.Clone(s.tenderLines),
		quotations:     maps.Clone(s.quotations),
		quotationItems: maps.Clone(s.quotationItems),
		products:       maps.Clone(s.products),
		awards:         maps.Clone(s.awards),
		awardItems:     maps.Clone(s.awardItems),
		deliveries:     maps.Clone(s.deliveries),
		deliveryItems:  maps.Clone(s.deliveryItems),
		invoices:       maps.Clone(s.invoices),
	}
}

func (s *state) nextId() int64 {
	s.seq++
	return s.seq
}

// collect returns the values of m accepted by keep, ordered by id.
func collect[T any](m map[int64]T, keep func(T) bool) []T {
	ids := make([]int64, 0, len(m))
	for id, v := range m {
		if keep(v) {
			ids = append(ids, id)
		}
	}
	slices.SortFunc(ids, cmp.Compare[int64])

	result := make([]T, 0, len(ids))
	for _, id := range ids {
		result = append(result, m[id])
	}
	return result
}

type tx struct {
	st  *state
	now func() time.Time
}

var _ repository.Tx = (*tx)(nil)
