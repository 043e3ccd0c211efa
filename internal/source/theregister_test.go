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

const testFrontPage = `<!DOCTYPE html>
<html><body>
<article>
  <a href="/2024/03/01/big_outage/">
    <div class="standfirst">Redundant systems turned out not to be</div>
    <h4>Datacenter outage takes down half the internet</h4>
  </a>
  <span class="time_stamp" data-epoch="1709287200">1 Mar</span>
</article>
<article>
  <a href="/2024/03/01/patch_now/">
    <div class="standfirst">Exploit code already circulating</div>
    <h4>Critical VPN flaw under active attack</h4>
  </a>
  <span class="time_stamp" data-epoch="1709283600">1 Mar</span>
</article>
<article>
  <a href="/2024/03/01/no_title/"></a>
</article>
</body></html>`

func TestRegisterSourceFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(testFrontPage))
	}))
	defer srv.Close()

	s := NewRegisterSource(srv.URL+"/", zap.NewNop())
	assert.Equal(t, "theregister", s.Name())

	items, err := s.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2, "the article without a headline is skipped")

	assert.Equal(t, "Datacenter outage takes down half the internet", items[0].Title)
	assert.Equal(t, "Redundant systems turned out not to be", items[0].Body)
	assert.Equal(t, time.Unix(1709287200, 0).UTC(), items[0].PublishedAt)
	assert.Equal(t, "theregister", items[0].Source)
}

func TestRegisterSourceStableIDs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(testFrontPage))
	}))
	defer srv.Close()

	s := NewRegisterSource(srv.URL+"/", zap.NewNop())
	ctx := context.Background()

	first, err := s.Fetch(ctx)
	require.NoError(t, err)
	second, err := s.Fetch(ctx)
	require.NoError(t, err)

	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID, "link-derived ids survive refetching")
	}
}

func TestRegisterSourceHonorsCancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(testFrontPage))
	}))
	defer srv.Close()

	s := NewRegisterSource(srv.URL+"/", zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Fetch(ctx)
	require.Error(t, err, "a cancelled context must abort the visit")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRegisterSourceUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	s := NewRegisterSource(srv.URL+"/", zap.NewNop())
	_, err := s.Fetch(context.Background())
	assert.Error(t, err)
}
