// Package model defines data structures used throughout the application.
package model

import (
	"errors"
	"time"
)

// ErrNameRequired is returned when an item is created or updated without a name.
var ErrNameRequired = errors.New("name required")

// Item is a named, priced record held by the item store.
// The name identifies the item.
type Item struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// Validate checks that the item can be stored.
func (i *Item) Validate() error {
	if i.Name == "" {
		return ErrNameRequired
	}

	return nil
}

// AddedResponse is the body returned after an item is created.
type AddedResponse struct {
	Added Item `json:"added"`
}

// UpdatedResponse is the body returned after an item is updated.
type UpdatedResponse struct {
	Updated Item `json:"updated"`
}

// MessageResponse carries a plain status message.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorBody is the inner part of the error envelope.
type ErrorBody struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
}

// ErrorEnvelope is the uniform body written for every failed request.
type ErrorEnvelope struct {
	Error ErrorBody `json:"error"`
}

// NewErrorEnvelope builds an error envelope for the given status and message.
func NewErrorEnvelope(status int, message string) ErrorEnvelope {
	return ErrorEnvelope{
		Error: ErrorBody{
			Message: message,
			Status:  status,
		},
	}
}

// ItemEvent describes a change to the item store pushed to WebSocket subscribers.
type ItemEvent struct {
	Type      string    `json:"type"`
	Name      string    `json:"name"`
	Item      *Item     `json:"item,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Item event types.
const (
	EventItemCreated = "item_created"
	EventItemUpdated = "item_updated"
	EventItemDeleted = "item_deleted"
)

// NewItemEvent creates an event of the given type. The name is the item's
// name before the change; item is nil for deletions.
func NewItemEvent(eventType, name string, item *Item) ItemEvent {
	return ItemEvent{
		Type:      eventType,
		Name:      name,
		Item:      item,
		Timestamp: time.Now().UTC(),
	}
}
