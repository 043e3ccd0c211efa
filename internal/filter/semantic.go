package filter

import (
	"context"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/opsfeed/opsfeed/internal/embedding"
	"github.com/opsfeed/opsfeed/internal/model"
)

// KeyOverallSemantic is the reserved breakdown key carrying the maximum
// similarity across all topics.
const KeyOverallSemantic = "overall_semantic"

// Topic phrases representative of IT-management concerns. Their vectors are
// encoded once at construction; item vectors are computed per pass and never
// cached (items do not repeat within a pass).
var semanticTopics = []string{
	"system administration",
	"network security",
	"data breach",
	"service outage",
	"software vulnerability",
	"cybersecurity incident",
	"IT infrastructure",
	"system maintenance",
	"performance monitoring",
	"disaster recovery",
}

// SemanticFilter scores items by cosine similarity between the item text and
// a fixed set of topic phrases in the encoder's vector space. Negative
// similarity is treated as "no relevance", not anti-relevance.
type SemanticFilter struct {
	enc       embedding.Encoder
	topics    []string
	topicVecs [][]float64
	log       *zap.Logger
}

// NewSemanticFilter pre-encodes the topic phrases with the given encoder.
func NewSemanticFilter(ctx context.Context, enc embedding.Encoder, log *zap.Logger) (*SemanticFilter, error) {
	vecs := make([][]float64, 0, len(semanticTopics))
	for _, topic := range semanticTopics {
		vec, err := enc.Encode(ctx, strings.ToLower(topic))
		if err != nil {
			return nil, fmt.Errorf("semantic filter: encode topic %q: %w", topic, err)
		}
		vecs = append(vecs, vec)
	}
	log.Info("semantic filter initialized",
		zap.Int("topics", len(semanticTopics)), zap.Int("dim", enc.Dim()))
	return &SemanticFilter{enc: enc, topics: semanticTopics, topicVecs: vecs, log: log}, nil
}

func (f *SemanticFilter) Name() string { return "semantic" }

// Score scores every item. An encoder failure fails the whole batch; the
// orchestrator isolates it.
func (f *SemanticFilter) Score(ctx context.Context, items []model.Item) ([]model.ScoredItem, error) {
	out := make([]model.ScoredItem, 0, len(items))
	for _, item := range items {
		breakdown, err := f.Breakdown(ctx, item)
		if err != nil {
			return nil, err
		}
		scored, err := model.NewScoredItem(item, breakdown[KeyOverallSemantic], breakdown)
		if err != nil {
			return nil, err
		}
		out = append(out, scored)
	}
	f.log.Debug("semantic filter scored batch", zap.Int("items", len(out)))
	return out, nil
}

// Breakdown reports per-topic similarity plus the overall maximum under the
// reserved key.
func (f *SemanticFilter) Breakdown(ctx context.Context, item model.Item) (map[string]float64, error) {
	vec, err := f.enc.Encode(ctx, item.Text())
	if err != nil {
		return nil, fmt.Errorf("semantic filter: encode item %s: %w", item.ID, err)
	}

	breakdown := make(map[string]float64, len(f.topics)+1)
	var overall float64
	for i, topic := range f.topics {
		sim := cosine(vec, f.topicVecs[i])
		if sim < 0 {
			sim = 0
		}
		if sim > 1 {
			// Guard against float drift just over the bound.
			sim = 1
		}
		breakdown["topic_"+strings.ReplaceAll(topic, " ", "_")] = sim
		if sim > overall {
			overall = sim
		}
	}
	breakdown[KeyOverallSemantic] = overall
	return breakdown, nil
}

func cosine(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
