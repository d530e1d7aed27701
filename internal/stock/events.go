package stock

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EventType labels a stock feed message.
type EventType string

const (
	// EventStockChanged reports that a product's on-hand count moved, from a
	// sale, a return, or a catalog edit.
	EventStockChanged EventType = "stock_changed"
)

// Event is one message on the stock change channel. Every instance that
// sells from the same inventory publishes here after committing a stock
// write, and every instance consumes the channel to keep its open carts
// honest.
type Event struct {
	Type      EventType `json:"type"`
	StoreID   uuid.UUID `json:"store_id"`
	ProductID uuid.UUID `json:"product_id,omitempty"`
	Stock     int       `json:"stock"`
	SourceID  string    `json:"source_id,omitempty"`
	At        time.Time `json:"at"`
}

// NewStockChanged builds a stock change event for the given product count.
// sourceID names what caused the change, such as a bill or return id.
func NewStockChanged(storeID, productID uuid.UUID, stock int, sourceID string) Event {
	return Event{
		Type:      EventStockChanged,
		StoreID:   storeID,
		ProductID: productID,
		Stock:     stock,
		SourceID:  sourceID,
		At:        time.Now().UTC(),
	}
}

// Encode marshals the event for the wire.
func (e Event) Encode() ([]byte, error) {
	return json.Marshal(e)
}

// DecodeEvent parses a wire payload. Unknown or missing fields fail
// validation rather than producing a half-formed event.
func DecodeEvent(payload []byte) (Event, error) {
	var event Event
	if err := json.Unmarshal(payload, &event); err != nil {
		return Event{}, fmt.Errorf("decode stock event: %w", err)
	}
	if event.Type != EventStockChanged {
		return Event{}, fmt.Errorf("unknown stock event type %q", event.Type)
	}
	if event.StoreID == uuid.Nil {
		return Event{}, fmt.Errorf("stock event missing store id")
	}
	return event, nil
}
