// Package realtime distributes row change events to in-process
// subscribers. Services publish one event per committed mutation; the
// cache bridge and the websocket feed both consume from the same hub, so
// the process holds a single logical change stream.
package realtime

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Operation is the kind of row change an event describes
type Operation string

const (
	OpInsert Operation = "INSERT"
	OpUpdate Operation = "UPDATE"
	OpDelete Operation = "DELETE"
)

// Event describes a single committed row change
type Event struct {
	Table  string      `json:"table"`
	Op     Operation   `json:"op"`
	Before interface{} `json:"before,omitempty"`
	After  interface{} `json:"after,omitempty"`
}

// Subscription is one consumer's view of the change stream. Events
// arrive on C until Close is called or the hub shuts down.
type Subscription struct {
	id     uuid.UUID
	C      <-chan Event
	hub    *Hub
	closed bool
	mu     sync.Mutex
}

// Close detaches the subscription from the hub and closes C.
// Safe to call more than once.
func (s *Subscription) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.hub.unsubscribe(s.id)
}

type subscriber struct {
	ch     chan Event
	tables map[string]struct{}
}

func (sub *subscriber) wants(table string) bool {
	if len(sub.tables) == 0 {
		return true
	}
	_, ok := sub.tables[table]
	return ok
}

// Hub is the in-process change event dispatcher
type Hub struct {
	mu      sync.RWMutex
	subs    map[uuid.UUID]*subscriber
	closed  bool
	dropped int64
	logger  *zap.Logger
}

// Buffer per subscriber. A consumer that falls this far behind starts
// losing events instead of blocking publishers.
const subscriberBuffer = 64

// NewHub creates an empty hub
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		subs:   make(map[uuid.UUID]*subscriber),
		logger: logger,
	}
}

// Subscribe registers a consumer for the given tables. With no tables
// the subscription receives every event.
func (h *Hub) Subscribe(tables ...string) *Subscription {
	sub := &subscriber{
		ch:     make(chan Event, subscriberBuffer),
		tables: make(map[string]struct{}, len(tables)),
	}
	for _, t := range tables {
		sub.tables[t] = struct{}{}
	}

	id := uuid.New()

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(sub.ch)
	} else {
		h.subs[id] = sub
	}

	return &Subscription{id: id, C: sub.ch, hub: h}
}

// Publish fans the event out to every interested subscriber. Publish
// never blocks: a subscriber with a full buffer loses the event.
func (h *Hub) Publish(e Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return
	}

	for _, sub := range h.subs {
		if !sub.wants(e.Table) {
			continue
		}
		select {
		case sub.ch <- e:
		default:
			atomic.AddInt64(&h.dropped, 1)
			h.logger.Warn("realtime subscriber too slow, event dropped",
				zap.String("table", e.Table),
				zap.String("op", string(e.Op)))
		}
	}
}

// Close shuts the hub down and closes every subscription channel
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id, sub := range h.subs {
		close(sub.ch)
		delete(h.subs, id)
	}
}

func (h *Hub) unsubscribe(id uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if sub, ok := h.subs[id]; ok {
		close(sub.ch)
		delete(h.subs, id)
	}
}

// SubscriberCount returns the number of attached subscriptions
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
