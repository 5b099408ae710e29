package store

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vyrodovalexey/listapp/internal/model"
)

// Operation result labels.
const (
	resultOK       = "ok"
	resultNotFound = "not_found"
	resultError    = "error"
)

// InstrumentedStore wraps a Store and records Prometheus metrics for each operation.
type InstrumentedStore struct {
	next       Store
	operations *prometheus.CounterVec
	items      prometheus.Gauge
}

// NewInstrumentedStore wraps next and registers its collectors with reg.
// The item gauge starts from the current size of next.
func NewInstrumentedStore(ctx context.Context, next Store, reg prometheus.Registerer) (*InstrumentedStore, error) {
	s := &InstrumentedStore{
		next: next,
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "item_store_operations_total",
				Help: "Total number of item store operations",
			},
			[]string{"operation", "result"},
		),
		items: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "item_store_items",
				Help: "Number of items currently held by the store",
			},
		),
	}

	if err := reg.Register(s.operations); err != nil {
		return nil, err
	}
	if err := reg.Register(s.items); err != nil {
		return nil, err
	}

	items, err := next.List(ctx)
	if err != nil {
		return nil, err
	}
	s.items.Set(float64(len(items)))

	return s, nil
}

// List returns all items from the wrapped store.
func (s *InstrumentedStore) List(ctx context.Context) ([]model.Item, error) {
	items, err := s.next.List(ctx)
	s.observe("list", err)
	return items, err
}

// FindByName looks the item up in the wrapped store.
func (s *InstrumentedStore) FindByName(ctx context.Context, name string) (*model.Item, error) {
	item, err := s.next.FindByName(ctx, name)
	s.observe("find", err)
	return item, err
}

// Create appends the item to the wrapped store.
func (s *InstrumentedStore) Create(ctx context.Context, item *model.Item) (*model.Item, error) {
	created, err := s.next.Create(ctx, item)
	s.observe("create", err)
	if err == nil {
		s.items.Inc()
	}
	return created, err
}

// UpdateByName updates the item in the wrapped store.
func (s *InstrumentedStore) UpdateByName(ctx context.Context, name string, item *model.Item) (*model.Item, error) {
	updated, err := s.next.UpdateByName(ctx, name, item)
	s.observe("update", err)
	return updated, err
}

// DeleteByName removes the item from the wrapped store.
func (s *InstrumentedStore) DeleteByName(ctx context.Context, name string) error {
	err := s.next.DeleteByName(ctx, name)
	s.observe("delete", err)
	if err == nil {
		s.items.Dec()
	}
	return err
}

func (s *InstrumentedStore) observe(operation string, err error) {
	result := resultOK
	switch {
	case err == nil:
	case errors.Is(err, ErrNotFound):
		result = resultNotFound
	default:
		result = resultError
	}

	s.operations.WithLabelValues(operation, result).Inc()
}
