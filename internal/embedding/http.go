package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const (
	httpEncoderTimeout = 30 * time.Second
	maxEncodeRespBytes = 1 << 20 // 1MB
	encodePath         = "/encode"
)

// HTTPEncoder calls an external embedding service over HTTP. The service is
// expected to answer POST /encode {"text": "..."} with
// {"vector": [...], "dim": n}.
type HTTPEncoder struct {
	baseURL string
	dim     int
	client  *http.Client
	log     *zap.Logger
}

// NewHTTPEncoder points the encoder at baseURL. dim must match the dimension
// the remote service produces.
func NewHTTPEncoder(baseURL string, dim int, log *zap.Logger) *HTTPEncoder {
	return &HTTPEncoder{
		baseURL: baseURL,
		dim:     dim,
		client:  &http.Client{Timeout: httpEncoderTimeout},
		log:     log,
	}
}

func (e *HTTPEncoder) Dim() int { return e.dim }

type encodeRequest struct {
	Text string `json:"text"`
}

type encodeResponse struct {
	Vector []float64 `json:"vector"`
}

// Encode sends the text to the remote service and returns its vector.
func (e *HTTPEncoder) Encode(ctx context.Context, text string) ([]float64, error) {
	payload, err := json.Marshal(encodeRequest{Text: text})
	if err != nil {
		return nil, fmt.Errorf("encoder: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+encodePath, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("encoder: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("encoder: call %s: %w", e.baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("encoder: unexpected status %d", resp.StatusCode)
	}

	var out encodeResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxEncodeRespBytes)).Decode(&out); err != nil {
		return nil, fmt.Errorf("encoder: decode response: %w", err)
	}
	if len(out.Vector) != e.dim {
		return nil, fmt.Errorf("encoder: got %d dims, want %d", len(out.Vector), e.dim)
	}
	return out.Vector, nil
}
