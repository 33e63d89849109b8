package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Booking lifecycle event types. They double as Kafka topic names.
const (
	TypeBookingCreated   = "booking_created"
	TypeBookingUpdated   = "booking_updated"
	TypeBookingCancelled = "booking_cancelled"
)

// Event is the envelope delivered to every publisher.
type Event struct {
	ID         string          `json:"event_id"`
	Type       string          `json:"event_type"`
	Key        string          `json:"key"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

// New builds an event with a fresh id. key groups related events (a barber id
// keeps one barber's events ordered on a partitioned transport).
func New(eventType, key string, payload any) (Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		Key:        key,
		OccurredAt: time.Now().UTC(),
		Payload:    raw,
	}, nil
}

// Publisher delivers events to one transport.
type Publisher interface {
	Name() string
	Publish(ctx context.Context, e Event) error
	Close() error
}
