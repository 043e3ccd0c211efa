// Package storage holds the concurrency-safe, dedup-aware content store.
package storage

import (
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/opsfeed/opsfeed/internal/model"
)

// MemoryStore is the single-process item repository. One mutex serializes
// every operation; the dominant access pattern is full-snapshot reads, so
// fine-grained locking buys nothing. Item identity is the sole duplicate
// detection mechanism in the system.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]model.Item
	log   *zap.Logger
}

// NewMemory creates an empty store.
func NewMemory(log *zap.Logger) *MemoryStore {
	return &MemoryStore{
		items: make(map[string]model.Item),
		log:   log,
	}
}

// Add stores the item. It returns false without modifying anything when an
// item with the same ID already exists.
func (s *MemoryStore) Add(item model.Item) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.items[item.ID]; exists {
		s.log.Debug("duplicate item skipped", zap.String("id", item.ID))
		return false
	}
	s.items[item.ID] = item
	s.log.Debug("item stored", zap.String("id", item.ID), zap.String("source", item.Source))
	return true
}

// AddMany stores a batch and returns how many items were newly stored.
func (s *MemoryStore) AddMany(items []model.Item) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	added := 0
	for _, item := range items {
		if _, exists := s.items[item.ID]; exists {
			continue
		}
		s.items[item.ID] = item
		added++
	}
	s.log.Debug("batch stored", zap.Int("added", added), zap.Int("received", len(items)))
	return added
}

// All returns a snapshot of every stored item ordered by published_at
// descending, ties broken by id ascending. The ordering is deterministic
// across repeated calls with unchanged data.
func (s *MemoryStore) All() []model.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Item, 0, len(s.items))
	for _, item := range s.items {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].PublishedAt.Equal(out[j].PublishedAt) {
			return out[i].PublishedAt.After(out[j].PublishedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Get returns the item stored under id.
func (s *MemoryStore) Get(id string) (model.Item, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.items[id]
	return item, ok
}

// Count returns the number of stored items.
func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Clear removes every item. There is no automatic eviction or TTL; this is
// the only destructive operation and exists for test isolation.
func (s *MemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.items)
	s.items = make(map[string]model.Item)
	s.log.Info("store cleared", zap.Int("removed", n))
}
