package service

import (
	"time"

	"procurement/internal/repository"

	"go.uber.org/zap"
)

const defaultDeliveryLeadDays = 7

type Service struct {
	store    repository.Store
	log      *zap.Logger
	now      func() time.Time
	leadTime time.Duration
}

type option func(*Service)

func WithLogger(log *zap.Logger) option {
	return func(s *Service) {
		s.log = log
	}
}

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) option {
	return func(s *Service) {
		s.now = now
	}
}

func WithDeliveryLeadDays(days int) option {
	return func(s *Service) {
		s.leadTime = time.Duration(days) * 24 * time.Hour
	}
}

func NewService(store repository.Store, opts ...option) *Service {
	s := &Service{
		store:    store,
		log:      zap.NewNop(),
		now:      time.Now,
		leadTime: defaultDeliveryLeadDays * 24 * time.Hour,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
