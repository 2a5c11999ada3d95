package watch

import (
	"context"
	"encoding/json"
	"sync"

	"driveshare/internal/domain"
	"driveshare/internal/events"
	"driveshare/internal/models"

	"github.com/rs/zerolog"
)

// Hub fans booking changes out to watchers as full owner-scoped
// snapshots. Every update re-queries the store, so a watcher only ever
// sees states that were actually persisted. Slow watchers get coalesced
// snapshots: the buffer holds one pending snapshot and a newer one
// replaces it.
type Hub struct {
	repo   domain.Repository
	logger *zerolog.Logger

	mu     sync.Mutex
	subs   map[int64]*subscriber
	nextID int64
}

type subscriber struct {
	owner string
	ch    chan []models.Booking
}

func NewHub(repo domain.Repository, logger *zerolog.Logger) *Hub {
	return &Hub{
		repo:   repo,
		logger: logger,
		subs:   make(map[int64]*subscriber),
	}
}

// Bind subscribes the hub to booking lifecycle events.
func (h *Hub) Bind(bus *events.EventBus) {
	handler := func(event *events.Event) error {
		var payload events.BookingEventPayload
		if err := json.Unmarshal(event.Payload, &payload); err != nil {
			h.logger.Error().Err(err).Str("event_type", event.Type).Msg("watch hub: bad event payload")
			return nil
		}
		h.notify(payload.Owner)
		return nil
	}

	bus.Subscribe(events.EventBookingCreated, handler)
	bus.Subscribe(events.EventBookingApproved, handler)
	bus.Subscribe(events.EventBookingDeclined, handler)
}

// Watch opens a stream of booking snapshots for the owner. The current
// snapshot is delivered immediately; each subsequent store change for
// that owner delivers a fresh one. The returned cancel func stops the
// stream and closes the channel. Cancel is idempotent.
func (h *Hub) Watch(ctx context.Context, owner string) (<-chan []models.Booking, func(), error) {
	snapshot, err := h.repo.GetOwnerBookings(ctx, owner)
	if err != nil {
		return nil, nil, err
	}

	sub := &subscriber{
		owner: owner,
		ch:    make(chan []models.Booking, models.WatchBufferSize),
	}
	sub.ch <- snapshot

	h.mu.Lock()
	h.nextID++
	id := h.nextID
	h.subs[id] = sub
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
			close(sub.ch)
		})
	}

	return sub.ch, cancel, nil
}

// Watchers reports the number of open streams.
func (h *Hub) Watchers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

func (h *Hub) notify(owner string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	var targets []*subscriber
	for _, sub := range h.subs {
		if sub.owner == owner {
			targets = append(targets, sub)
		}
	}
	if len(targets) == 0 {
		return
	}

	// The triggering event is detached from any request lifetime.
	snapshot, err := h.repo.GetOwnerBookings(context.Background(), owner)
	if err != nil {
		// Watchers keep their previous snapshot; the next successful
		// re-query catches them up.
		h.logger.Error().Err(err).Str("owner", owner).Msg("watch hub: snapshot query failed")
		return
	}

	for _, sub := range targets {
		deliver(sub.ch, snapshot)
	}
}

// deliver replaces any undrained snapshot with the newer one instead of
// blocking on a slow watcher.
func deliver(ch chan []models.Booking, snapshot []models.Booking) {
	for {
		select {
		case ch <- snapshot:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}
