package events

import (
	"context"
	"fmt"
	"time"

	"brista-coffee/models"

	"github.com/google/uuid"
)

const (
	TypeOrderCreated = "order.created"
	TypeOrderRated   = "order.rated"
	typeStatusPrefix = "order.status."
)

// Event is one order fact published to downstream consumers.
type Event struct {
	ID          uuid.UUID `json:"id"`
	Type        string    `json:"type"`
	Order_id    string    `json:"order_id"`
	Customer_id string    `json:"customer_id"`
	Status      string    `json:"status"`
	Total       float64   `json:"total"`
	Rating      *int      `json:"rating,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

func StatusType(status string) string {
	return typeStatusPrefix + status
}

func newEvent(eventType string, order models.Order, at time.Time) Event {
	return Event{
		ID:          uuid.New(),
		Type:        eventType,
		Order_id:    order.Order_id,
		Customer_id: order.Customer_id,
		Status:      order.Status,
		Total:       order.Total,
		Rating:      order.Rating,
		Timestamp:   at,
	}
}

func OrderCreated(order models.Order) Event {
	return newEvent(TypeOrderCreated, order, order.Created_at)
}

func StatusChanged(order models.Order, at time.Time) Event {
	return newEvent(StatusType(order.Status), order, at)
}

func OrderRated(order models.Order, at time.Time) Event {
	return newEvent(TypeOrderRated, order, at)
}

// NopPublisher discards events. It is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

// Recorder keeps published events in memory.
type Recorder struct {
	events chan Event
}

func NewRecorder(size int) *Recorder {
	return &Recorder{events: make(chan Event, size)}
}

func (r *Recorder) Publish(_ context.Context, event Event) error {
	select {
	case r.events <- event:
		return nil
	default:
		return fmt.Errorf("recorder full, dropped %s", event.Type)
	}
}

func (r *Recorder) Events() <-chan Event {
	return r.events
}
