package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func hnTestServer(t *testing.T, stories map[int]hnStory, top []int) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/topstories.json", func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(top)
	})
	for id, story := range stories {
		story := story
		mux.HandleFunc(fmt.Sprintf("/item/%d.json", id), func(w http.ResponseWriter, _ *http.Request) {
			json.NewEncoder(w).Encode(story)
		})
	}
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestHackerNewsFetch(t *testing.T) {
	srv := hnTestServer(t, map[int]hnStory{
		1: {ID: 1, Title: "Postgres outage postmortem", Time: 1709287200, Type: "story"},
		2: {ID: 2, Title: "Hiring Go engineers", Time: 1709287200, Type: "job"},
		3: {ID: 3, Title: "", Time: 1709287200, Type: "story"},
	}, []int{1, 2, 3})

	s := NewHackerNewsSource(srv.URL, 10, zap.NewNop())
	items, err := s.Fetch(context.Background())
	require.NoError(t, err)

	require.Len(t, items, 1, "jobs and empty titles are filtered")
	assert.Equal(t, "hn_1", items[0].ID)
	assert.Equal(t, "hackernews", items[0].Source)
	assert.Equal(t, "Postgres outage postmortem", items[0].Title)
}

func TestHackerNewsMaxItems(t *testing.T) {
	stories := make(map[int]hnStory, 5)
	top := make([]int, 0, 5)
	for i := 1; i <= 5; i++ {
		stories[i] = hnStory{ID: i, Title: fmt.Sprintf("Story %d", i), Time: 1709287200, Type: "story"}
		top = append(top, i)
	}
	srv := hnTestServer(t, stories, top)

	s := NewHackerNewsSource(srv.URL, 2, zap.NewNop())
	items, err := s.Fetch(context.Background())
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestHackerNewsTopStoriesError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	s := NewHackerNewsSource(srv.URL, 10, zap.NewNop())
	_, err := s.Fetch(context.Background())
	assert.Error(t, err)
}

func TestHackerNewsBrokenItemSkipped(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/topstories.json", func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode([]int{1, 2})
	})
	mux.HandleFunc("/item/1.json", func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(hnStory{ID: 1, Title: "Good story", Time: 1709287200, Type: "story"})
	})
	mux.HandleFunc("/item/2.json", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	s := NewHackerNewsSource(srv.URL, 10, zap.NewNop())
	items, err := s.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "hn_1", items[0].ID)
}
