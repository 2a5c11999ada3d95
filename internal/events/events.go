package events

import (
	"encoding/json"
	"sync"
	"time"
)

const (
	EventListingCreated  = "listing_created"
	EventBookingCreated  = "booking_created"
	EventBookingApproved = "booking_approved"
	EventBookingDeclined = "booking_declined"
)

// BookingEventPayload describes the minimal booking snapshot for event
// consumers (the watch hub and the ledger worker).
type BookingEventPayload struct {
	BookingID        string `json:"booking_id"`
	Owner            string `json:"owner"`
	Renter           string `json:"renter"`
	VehicleName      string `json:"vehicle_name"`
	LicensePlate     string `json:"license_plate"`
	Status           string `json:"status"`
	BookingDate      string `json:"booking_date"`
	ConfirmationCode string `json:"confirmation_code,omitempty"`
}

// ListingEventPayload describes a created listing for event consumers.
type ListingEventPayload struct {
	ListingID   string `json:"listing_id"`
	Owner       string `json:"owner"`
	VehicleName string `json:"vehicle_name"`
}

// Event represents a lightweight domain event.
type Event struct {
	ID        int64
	Type      string
	Payload   []byte
	CreatedAt time.Time
}

// EventHandler reacts to an event.
type EventHandler func(event *Event) error

// EventBus provides in-process pub/sub for events.
type EventBus struct {
	subscribers map[string][]EventHandler
	mu          sync.RWMutex
}

// NewEventBus constructs an empty bus.
func NewEventBus() *EventBus {
	return &EventBus{subscribers: make(map[string][]EventHandler)}
}

// Subscribe registers a handler for a given event type.
func (b *EventBus) Subscribe(eventType string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// Publish notifies subscribers of the event type.
func (b *EventBus) Publish(event *Event) {
	b.mu.RLock()
	handlers := append([]EventHandler(nil), b.subscribers[event.Type]...)
	b.mu.RUnlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	for _, handler := range handlers {
		// Handlers run synchronously; caller decides concurrency model.
		_ = handler(event)
	}
}

// PublishJSON serializes the payload and publishes an event.
func (b *EventBus) PublishJSON(eventType string, payload interface{}) error {
	if b == nil {
		return nil
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	b.Publish(&Event{Type: eventType, Payload: raw, CreatedAt: time.Now()})
	return nil
}
