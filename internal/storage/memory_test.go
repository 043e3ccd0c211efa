package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/opsfeed/opsfeed/internal/model"
)

func storedItem(t *testing.T, id string, published time.Time) model.Item {
	t.Helper()
	item, err := model.NewItem(id, "test", "title "+id, "", published, 1)
	require.NoError(t, err)
	return item
}

func TestAddRejectsDuplicate(t *testing.T) {
	s := NewMemory(zap.NewNop())
	now := time.Now()

	first := storedItem(t, "a1", now)
	assert.True(t, s.Add(first))
	assert.False(t, s.Add(storedItem(t, "a1", now.Add(time.Hour))))
	assert.Equal(t, 1, s.Count())

	got, ok := s.Get("a1")
	require.True(t, ok)
	assert.Equal(t, first.PublishedAt, got.PublishedAt, "duplicate add must not modify the stored item")
}

func TestAddMany(t *testing.T) {
	s := NewMemory(zap.NewNop())
	now := time.Now()

	require.True(t, s.Add(storedItem(t, "a1", now)))
	added := s.AddMany([]model.Item{
		storedItem(t, "a1", now),
		storedItem(t, "b1", now),
		storedItem(t, "c1", now),
	})
	assert.Equal(t, 2, added)
	assert.Equal(t, 3, s.Count())
}

func TestAllOrdering(t *testing.T) {
	s := NewMemory(zap.NewNop())
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	// Insert out of order; two items share a timestamp.
	s.Add(storedItem(t, "old", base.Add(-2*time.Hour)))
	s.Add(storedItem(t, "newest", base.Add(time.Hour)))
	s.Add(storedItem(t, "tie_b", base))
	s.Add(storedItem(t, "tie_a", base))

	var ids []string
	for _, item := range s.All() {
		ids = append(ids, item.ID)
	}
	assert.Equal(t, []string{"newest", "tie_a", "tie_b", "old"}, ids)
}

func TestAllDeterministic(t *testing.T) {
	s := NewMemory(zap.NewNop())
	base := time.Now()
	for _, id := range []string{"c1", "a1", "b1"} {
		s.Add(storedItem(t, id, base))
	}
	assert.Equal(t, s.All(), s.All())
}

func TestGetMissing(t *testing.T) {
	s := NewMemory(zap.NewNop())
	_, ok := s.Get("nope")
	assert.False(t, ok)
}

func TestClear(t *testing.T) {
	s := NewMemory(zap.NewNop())
	s.Add(storedItem(t, "a1", time.Now()))
	s.Clear()
	assert.Equal(t, 0, s.Count())
	assert.Empty(t, s.All())
}
