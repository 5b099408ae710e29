package store

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/vyrodovalexey/listapp/internal/model"
)

// MemoryStore implements Store with an ordered in-memory slice.
// Lookups are linear scans; the mutex serializes find-then-mutate sequences.
type MemoryStore struct {
	mu    sync.RWMutex
	items []model.Item
}

// NewMemoryStore creates a MemoryStore, optionally pre-seeded with items.
func NewMemoryStore(seed ...model.Item) *MemoryStore {
	items := make([]model.Item, 0, len(seed))
	items = append(items, seed...)

	return &MemoryStore{
		items: items,
	}
}

// List returns a copy of all items in insertion order.
func (s *MemoryStore) List(ctx context.Context) ([]model.Item, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("list items: %w", ctx.Err())
	default:
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]model.Item, len(s.items))
	copy(items, s.items)

	return items, nil
}

// FindByName retrieves the first item whose name equals name.
func (s *MemoryStore) FindByName(ctx context.Context, name string) (*model.Item, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("find item: %w", ctx.Err())
	default:
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.indexOf(name)
	if idx < 0 {
		return nil, ErrNotFound
	}

	item := s.items[idx]
	return &item, nil
}

// Create appends the item. Names are neither validated nor deduplicated here.
func (s *MemoryStore) Create(ctx context.Context, item *model.Item) (*model.Item, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("create item: %w", ctx.Err())
	default:
	}

	if item == nil {
		return nil, fmt.Errorf("create item: %w", ErrNilItem)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	newItem := model.Item{
		Name:  item.Name,
		Price: item.Price,
	}
	s.items = append(s.items, newItem)

	return &newItem, nil
}

// UpdateByName replaces the name and price of the named item, keeping its position.
func (s *MemoryStore) UpdateByName(ctx context.Context, name string, item *model.Item) (*model.Item, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("update item: %w", ctx.Err())
	default:
	}

	if item == nil {
		return nil, fmt.Errorf("update item: %w", ErrNilItem)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(name)
	if idx < 0 {
		return nil, ErrNotFound
	}

	s.items[idx].Name = item.Name
	s.items[idx].Price = item.Price

	updated := s.items[idx]
	return &updated, nil
}

// DeleteByName removes the named item, preserving the order of the rest.
func (s *MemoryStore) DeleteByName(ctx context.Context, name string) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("delete item: %w", ctx.Err())
	default:
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(name)
	if idx < 0 {
		return ErrNotFound
	}

	s.items = slices.Delete(s.items, idx, idx+1)

	return nil
}

// Len returns the number of stored items.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.items)
}

// indexOf must be called with the lock held.
func (s *MemoryStore) indexOf(name string) int {
	return slices.IndexFunc(s.items, func(item model.Item) bool {
		return item.Name == name
	})
}
