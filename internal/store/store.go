// Package store provides data storage interfaces and implementations.
package store

import (
	"context"
	"errors"

	"github.com/vyrodovalexey/listapp/internal/model"
)

// Store errors.
var (
	ErrNotFound = errors.New("item not found")
	ErrNilItem  = errors.New("item cannot be nil")
)

// Store defines the interface for item storage operations.
// Items are keyed by name and kept in insertion order.
type Store interface {
	// List returns all items in insertion order.
	List(ctx context.Context) ([]model.Item, error)

	// FindByName returns the item with exactly the given name.
	FindByName(ctx context.Context, name string) (*model.Item, error)

	// Create appends a new item and returns it.
	Create(ctx context.Context, item *model.Item) (*model.Item, error)

	// UpdateByName replaces the name and price of the named item in place.
	UpdateByName(ctx context.Context, name string, item *model.Item) (*model.Item, error)

	// DeleteByName removes the named item.
	DeleteByName(ctx context.Context, name string) error
}
