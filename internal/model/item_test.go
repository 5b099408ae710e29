package model

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"
)

func TestItem_Validate(t *testing.T) {
	tests := []struct {
		name    string
		item    Item
		wantErr error
	}{
		{
			name:    "valid item",
			item:    Item{Name: "soda", Price: 1.75},
			wantErr: nil,
		},
		{
			name:    "valid item - zero price",
			item:    Item{Name: "water", Price: 0},
			wantErr: nil,
		},
		{
			name:    "valid item - negative price",
			item:    Item{Name: "coupon", Price: -2},
			wantErr: nil,
		},
		{
			name:    "invalid - empty name",
			item:    Item{Name: "", Price: 4.0},
			wantErr: ErrNameRequired,
		},
		{
			name:    "invalid - empty name and zero price",
			item:    Item{},
			wantErr: ErrNameRequired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Act
			err := tt.item.Validate()

			// Assert
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestErrNameRequired_Message(t *testing.T) {
	if ErrNameRequired.Error() != "name required" {
		t.Errorf("ErrNameRequired = %q, want %q", ErrNameRequired.Error(), "name required")
	}
}

func TestItem_JSONShape(t *testing.T) {
	// Arrange
	item := Item{Name: "soda", Price: 1.75}

	// Act
	data, err := json.Marshal(item)

	// Assert
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	want := `{"name":"soda","price":1.75}`
	if string(data) != want {
		t.Errorf("Marshal() = %s, want %s", data, want)
	}
}

func TestResponseShapes(t *testing.T) {
	item := Item{Name: "cheesecake", Price: 4}

	tests := []struct {
		name string
		body any
		want string
	}{
		{
			name: "added",
			body: AddedResponse{Added: item},
			want: `{"added":{"name":"cheesecake","price":4}}`,
		},
		{
			name: "updated",
			body: UpdatedResponse{Updated: item},
			want: `{"updated":{"name":"cheesecake","price":4}}`,
		},
		{
			name: "message",
			body: MessageResponse{Message: "Deleted"},
			want: `{"message":"Deleted"}`,
		},
		{
			name: "error envelope",
			body: NewErrorEnvelope(http.StatusBadRequest, "name required"),
			want: `{"error":{"message":"name required","status":400}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.body)
			if err != nil {
				t.Fatalf("Marshal() error: %v", err)
			}
			if string(data) != tt.want {
				t.Errorf("Marshal() = %s, want %s", data, tt.want)
			}
		})
	}
}

func TestNewItemEvent(t *testing.T) {
	// Arrange
	before := time.Now().UTC()
	item := &Item{Name: "new soda", Price: 1.75}

	// Act
	event := NewItemEvent(EventItemUpdated, "soda", item)

	// Assert
	if event.Type != EventItemUpdated {
		t.Errorf("Type = %s, want %s", event.Type, EventItemUpdated)
	}
	if event.Name != "soda" {
		t.Errorf("Name = %s, want soda", event.Name)
	}
	if event.Item != item {
		t.Error("Item should be the given pointer")
	}
	if event.Timestamp.Before(before) {
		t.Errorf("Timestamp = %v, should not be before %v", event.Timestamp, before)
	}
}

func TestItemEvent_DeletedOmitsItem(t *testing.T) {
	// Arrange
	event := NewItemEvent(EventItemDeleted, "soda", nil)

	// Act
	data, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}

	// Assert
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if _, ok := decoded["item"]; ok {
		t.Error("deleted event should not carry an item")
	}
	if decoded["type"] != EventItemDeleted {
		t.Errorf("type = %v, want %s", decoded["type"], EventItemDeleted)
	}
}
