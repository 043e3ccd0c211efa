// Package embedding supplies the numeric text encoders consumed by the
// semantic filter. Encoding is treated as an expensive, possibly blocking
// operation behind an interface so the scoring strategy is independent of
// where vectors actually come from.
package embedding

import "context"

// Encoder maps text into a fixed-dimension vector space. Implementations
// must be deterministic: the same text always encodes to the same vector.
type Encoder interface {
	Encode(ctx context.Context, text string) ([]float64, error)
	Dim() int
}
