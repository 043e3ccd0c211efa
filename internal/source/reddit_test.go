package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testListing = `{
  "data": {
    "children": [
      {"data": {"id": "abc1", "title": "AD outage this morning", "selftext": "Anyone else seeing auth failures?", "created_utc": 1709287200}},
      {"data": {"id": "abc2", "title": "Patch Tuesday roundup", "selftext": "", "created_utc": 1709283600}}
    ]
  }
}`

func TestRedditSourceFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/r/sysadmin/new.json", r.URL.Path)
		require.Equal(t, "5", r.URL.Query().Get("limit"))
		require.NotEmpty(t, r.Header.Get("User-Agent"))
		w.Write([]byte(testListing))
	}))
	defer srv.Close()

	s := NewRedditSource(srv.URL, "sysadmin", 5, zap.NewNop())
	assert.Equal(t, "reddit_sysadmin", s.Name())

	items, err := s.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "reddit_sysadmin_abc1", items[0].ID)
	assert.Equal(t, "reddit_sysadmin", items[0].Source)
	assert.Equal(t, "AD outage this morning", items[0].Title)
	assert.Equal(t, time.Unix(1709287200, 0).UTC(), items[0].PublishedAt)
	assert.Empty(t, items[1].Body, "link posts have no selftext")
}

func TestRedditSourceHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	s := NewRedditSource(srv.URL, "sysadmin", 5, zap.NewNop())
	_, err := s.Fetch(context.Background())
	assert.ErrorContains(t, err, "status 429")
}

func TestRedditSourceDefaults(t *testing.T) {
	s := NewRedditSource("", "", 0, zap.NewNop())
	assert.Equal(t, "reddit_sysadmin", s.Name())
	assert.Equal(t, redditDefaultBaseURL, s.baseURL)
	assert.Equal(t, redditDefaultLimit, s.limit)
}
