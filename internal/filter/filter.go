// Package filter defines the scoring capability and the two concrete
// strategies: keyword matching and embedding similarity.
package filter

import (
	"context"

	"github.com/opsfeed/opsfeed/internal/model"
)

// Filter is a pluggable scoring strategy. Implementations must be
// deterministic (same items in, same scores out) and must not treat
// malformed-but-valid item content as an error; a returned error means the
// strategy itself failed and the orchestrator excludes it from the pass.
type Filter interface {
	Name() string

	// Score scores a batch, returning exactly one result per input item in
	// input order.
	Score(ctx context.Context, items []model.Item) ([]model.ScoredItem, error)

	// Breakdown explains the score of a single item. Its values must agree
	// with what Score computes for the same item.
	Breakdown(ctx context.Context, item model.Item) (map[string]float64, error)
}
