// Package activityfeed broadcasts journaled listing activity to live
// subscribers, such as websocket clients of the server.
package activityfeed

import (
	"context"
	"sync"
	"sync/atomic"

	"nft-marketplace/internal/domain"
	"nft-marketplace/internal/storage"
)

// subscriberBuffer is the per-subscriber queue depth. A subscriber that
// falls further behind misses events instead of blocking publishers.
const subscriberBuffer = 64

// Hub fans activity out to subscribers.
type Hub struct {
	mu      sync.RWMutex
	subs    map[uint64]chan domain.ListingActivity
	nextID  uint64
	dropped atomic.Uint64
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[uint64]chan domain.ListingActivity)}
}

// Subscribe registers a subscriber. The returned cancel func closes the
// channel and must be called once the subscriber is done.
func (h *Hub) Subscribe() (<-chan domain.ListingActivity, func()) {
	ch := make(chan domain.ListingActivity, subscriberBuffer)

	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.subs[id] = ch
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Publish delivers a copy of a to every subscriber without blocking.
func (h *Hub) Publish(a domain.ListingActivity) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, ch := range h.subs {
		select {
		case ch <- a:
		default:
			h.dropped.Add(1)
		}
	}
}

// Subscribers returns the number of live subscribers.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Dropped returns how many deliveries were skipped for slow subscribers.
func (h *Hub) Dropped() uint64 {
	return h.dropped.Load()
}

// Store publishes every successfully inserted activity to a Hub.
type Store struct {
	storage.ActivityStore
	hub *Hub
}

var _ storage.ActivityStore = (*Store)(nil)

// NewStore wraps inner so inserts reach hub subscribers.
func NewStore(inner storage.ActivityStore, hub *Hub) *Store {
	return &Store{ActivityStore: inner, hub: hub}
}

// Insert stores a and publishes it on success.
func (s *Store) Insert(ctx context.Context, a *domain.ListingActivity) error {
	if err := s.ActivityStore.Insert(ctx, a); err != nil {
		return err
	}
	s.hub.Publish(*a)
	return nil
}
