// Package source defines the external feed contract and its adapters.
package source

import (
	"context"

	"github.com/opsfeed/opsfeed/internal/model"
)

// Source fetches news items from one external feed. Adapters absorb
// transport and parse errors per entry; "no data available" is an empty
// slice, not an error. A returned error means the fetch itself failed and
// the scheduler logs and skips this source for the cycle.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]model.Item, error)
}
