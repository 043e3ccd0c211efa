package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewItemValidation(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name      string
		id        string
		source    string
		title     string
		published time.Time
		wantField string
	}{
		{"empty id", "", "src", "title", now, "id"},
		{"blank id", "   ", "src", "title", now, "id"},
		{"empty source", "a1", "", "title", now, "source"},
		{"empty title", "a1", "src", "  ", now, "title"},
		{"zero timestamp", "a1", "src", "title", time.Time{}, "published_at"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewItem(tt.id, tt.source, tt.title, "", tt.published, 1)
			require.Error(t, err)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.wantField, verr.Field)
		})
	}
}

func TestNewItemNormalizes(t *testing.T) {
	published := time.Date(2024, 3, 1, 10, 0, 0, 0, time.FixedZone("CET", 3600))

	item, err := NewItem("  a1  ", " src ", "  Title  ", "  body  ", published, 0)
	require.NoError(t, err)

	assert.Equal(t, "a1", item.ID)
	assert.Equal(t, "src", item.Source)
	assert.Equal(t, "Title", item.Title)
	assert.Equal(t, "body", item.Body)
	assert.Equal(t, time.UTC, item.PublishedAt.Location())
	assert.Equal(t, 9, item.PublishedAt.Hour())
	assert.Equal(t, 1, item.Version, "version defaults to 1")
}

func TestDraftValidateRequiresExplicitOffset(t *testing.T) {
	draft := Draft{
		ID:          "a1",
		Source:      "src",
		Title:       "title",
		PublishedAt: "2024-03-01T10:00:00", // no offset
	}
	_, err := draft.Validate()
	require.Error(t, err)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "published_at", verr.Field)

	draft.PublishedAt = "2024-03-01T10:00:00Z"
	item, err := draft.Validate()
	require.NoError(t, err)
	assert.Equal(t, "a1", item.ID)

	draft.PublishedAt = "2024-03-01T10:00:00+02:00"
	item, err = draft.Validate()
	require.NoError(t, err)
	assert.Equal(t, 8, item.PublishedAt.Hour())
}

func TestItemText(t *testing.T) {
	item := Item{Title: "AWS Outage", Body: "Services DOWN"}
	assert.Equal(t, "aws outage services down", item.Text())

	item = Item{Title: "Title Only"}
	assert.Equal(t, "title only", item.Text())
}

func TestNewScoredItemBounds(t *testing.T) {
	item := Item{ID: "a1"}

	_, err := NewScoredItem(item, 1.2, nil)
	assert.Error(t, err)

	_, err = NewScoredItem(item, -0.1, nil)
	assert.Error(t, err)

	_, err = NewScoredItem(item, 0.5, map[string]float64{"x": 1.5})
	assert.Error(t, err)

	sc, err := NewScoredItem(item, 0.5, map[string]float64{"x": 1.0})
	require.NoError(t, err)
	assert.Equal(t, 0.5, sc.RelevanceScore)
}

func TestNewScoredItemCopiesBreakdown(t *testing.T) {
	breakdown := map[string]float64{"x": 0.4}
	sc, err := NewScoredItem(Item{ID: "a1"}, 0.4, breakdown)
	require.NoError(t, err)

	breakdown["x"] = 0.9
	assert.Equal(t, 0.4, sc.ScoreBreakdown["x"])
}
