package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestHTTPEncoderEncode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/encode", r.URL.Path)

		var req struct {
			Text string `json:"text"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "hello", req.Text)

		json.NewEncoder(w).Encode(map[string]any{"vector": []float64{0.6, 0.8}})
	}))
	defer srv.Close()

	enc := NewHTTPEncoder(srv.URL, 2, zap.NewNop())

	vec, err := enc.Encode(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []float64{0.6, 0.8}, vec)
}

func TestHTTPEncoderDimMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"vector": []float64{0.1}})
	}))
	defer srv.Close()

	enc := NewHTTPEncoder(srv.URL, 4, zap.NewNop())

	_, err := enc.Encode(context.Background(), "hello")
	assert.ErrorContains(t, err, "dims")
}

func TestHTTPEncoderServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	enc := NewHTTPEncoder(srv.URL, 2, zap.NewNop())

	_, err := enc.Encode(context.Background(), "hello")
	assert.ErrorContains(t, err, "status 500")
}
