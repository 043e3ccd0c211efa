package embedding

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"
)

// DefaultDim is the vector size of the in-process encoder.
const DefaultDim = 256

// HashingEncoder is a feature-hashing encoder: every token and adjacent token
// bigram is hashed into one of dim buckets with a hash-derived sign, and the
// result is L2-normalized. It has no model weights and no notion of meaning,
// but it is fast, deterministic and dependency-free, which makes it a usable
// in-process stand-in for a real sentence-embedding service: texts sharing
// vocabulary land near each other in the hashed space.
type HashingEncoder struct {
	dim int
}

// NewHashingEncoder creates an encoder of the given dimension. Non-positive
// dims fall back to DefaultDim.
func NewHashingEncoder(dim int) *HashingEncoder {
	if dim <= 0 {
		dim = DefaultDim
	}
	return &HashingEncoder{dim: dim}
}

func (e *HashingEncoder) Dim() int { return e.dim }

// Encode hashes the text's unigrams and bigrams into a normalized vector.
// The zero vector is returned for text with no tokens.
func (e *HashingEncoder) Encode(_ context.Context, text string) ([]float64, error) {
	vec := make([]float64, e.dim)

	tokens := tokenize(text)
	for i, tok := range tokens {
		e.accumulate(vec, tok)
		if i+1 < len(tokens) {
			e.accumulate(vec, tok+" "+tokens[i+1])
		}
	}

	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for i := range vec {
			vec[i] /= norm
		}
	}
	return vec, nil
}

func (e *HashingEncoder) accumulate(vec []float64, feature string) {
	h := fnv.New64a()
	h.Write([]byte(feature))
	sum := h.Sum64()

	idx := int(sum % uint64(e.dim))
	// One hash bit decides the sign so colliding features can cancel
	// instead of always piling up.
	if sum&(1<<63) != 0 {
		vec[idx]--
	} else {
		vec[idx]++
	}
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
