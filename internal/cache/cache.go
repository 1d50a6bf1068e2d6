// Package cache provides a process-wide query cache with tag-based
// invalidation. Entries are stored under a key and associated with one or
// more tags; invalidating a tag removes every entry carrying it.
package cache

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Invalidator is the write-side contract services depend on. Keeping it
// narrow lets tests observe invalidation without a real store.
type Invalidator interface {
	InvalidateTags(tags ...string)
}

type entry struct {
	value     interface{}
	tags      []string
	expiresAt time.Time
}

// Store is a concurrent-safe tagged cache
type Store struct {
	mu      sync.RWMutex
	entries map[string]*entry
	byTag   map[string]map[string]struct{}
	ttl     time.Duration
	logger  *zap.Logger
}

// NewStore creates a cache store. A zero ttl disables expiry.
func NewStore(ttl time.Duration, logger *zap.Logger) *Store {
	return &Store{
		entries: make(map[string]*entry),
		byTag:   make(map[string]map[string]struct{}),
		ttl:     ttl,
		logger:  logger,
	}
}

// Get returns the cached value for key, if present and not expired
func (s *Store) Get(key string) (interface{}, bool) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if !e.expiresAt.IsZero() && time.Now().After(e.expiresAt) {
		s.mu.Lock()
		s.removeLocked(key)
		s.mu.Unlock()
		return nil, false
	}
	return e.value, true
}

// Set stores value under key, tagged for later invalidation
func (s *Store) Set(key string, value interface{}, tags ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.entries[key]; ok {
		s.detachLocked(key, old.tags)
	}

	e := &entry{value: value, tags: tags}
	if s.ttl > 0 {
		e.expiresAt = time.Now().Add(s.ttl)
	}
	s.entries[key] = e

	for _, tag := range tags {
		keys, ok := s.byTag[tag]
		if !ok {
			keys = make(map[string]struct{})
			s.byTag[tag] = keys
		}
		keys[key] = struct{}{}
	}
}

// InvalidateTags removes every entry carrying any of the given tags.
// Invalidating an unknown or already-clean tag is a no-op, so calls are
// idempotent and order-independent.
func (s *Store) InvalidateTags(tags ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for _, tag := range tags {
		for key := range s.byTag[tag] {
			s.removeLocked(key)
			removed++
		}
		delete(s.byTag, tag)
	}

	if removed > 0 {
		s.logger.Debug("cache entries invalidated",
			zap.Strings("tags", tags),
			zap.Int("removed", removed))
	}
}

// InvalidateAll empties the store
func (s *Store) InvalidateAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]*entry)
	s.byTag = make(map[string]map[string]struct{})
}

// Len returns the number of live entries
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *Store) removeLocked(key string) {
	if e, ok := s.entries[key]; ok {
		s.detachLocked(key, e.tags)
		delete(s.entries, key)
	}
}

func (s *Store) detachLocked(key string, tags []string) {
	for _, tag := range tags {
		if keys, ok := s.byTag[tag]; ok {
			delete(keys, key)
			if len(keys) == 0 {
				delete(s.byTag, tag)
			}
		}
	}
}
