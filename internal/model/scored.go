package model

import "fmt"

// ScoredItem is the scored projection of an item, computed per retrieval or
// ingestion pass. It is never stored; authoritative state keeps only Items.
type ScoredItem struct {
	Item           Item               `json:"item"`
	RelevanceScore float64            `json:"relevance_score"`
	ScoreBreakdown map[string]float64 `json:"score_breakdown"`
}

// NewScoredItem builds a scored projection, verifying that the relevance
// score and every breakdown value lie in [0,1]. Out-of-range values are a
// construction error, never clamped. The breakdown map is copied.
func NewScoredItem(item Item, score float64, breakdown map[string]float64) (ScoredItem, error) {
	if score < 0 || score > 1 {
		return ScoredItem{}, fmt.Errorf("relevance score %v out of [0,1]", score)
	}
	bd := make(map[string]float64, len(breakdown))
	for name, v := range breakdown {
		if v < 0 || v > 1 {
			return ScoredItem{}, fmt.Errorf("breakdown value %q = %v out of [0,1]", name, v)
		}
		bd[name] = v
	}
	return ScoredItem{Item: item, RelevanceScore: score, ScoreBreakdown: bd}, nil
}
