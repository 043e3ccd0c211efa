// Package filtering combines the scores of multiple registered strategies
// into one relevance score per item.
package filtering

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/opsfeed/opsfeed/internal/filter"
	"github.com/opsfeed/opsfeed/internal/model"
	"github.com/opsfeed/opsfeed/internal/registry"
)

const (
	// KeyFinal is the reserved breakdown key for the combined score.
	KeyFinal = "final"
	// KeyDefault is the breakdown key used when no strategies are available.
	KeyDefault = "default"
	// neutralScore is the fail-open score applied when no strategies are
	// available: the absence of configured scoring never blocks the pipeline.
	neutralScore = 0.5
)

// Orchestrator runs all (or a weighted subset of) registered filters over an
// item batch and combines their scores into a weighted average.
type Orchestrator struct {
	registry *registry.Registry[filter.Filter]
	weights  map[string]float64
	names    []string // configured weight names, sorted for determinism
	log      *zap.Logger
}

// New creates an orchestrator. With nil or empty weights every registered
// filter runs with equal weight; otherwise exactly the named filters run and
// names missing from the registry silently contribute nothing.
func New(reg *registry.Registry[filter.Filter], weights map[string]float64, log *zap.Logger) *Orchestrator {
	o := &Orchestrator{registry: reg, weights: weights, log: log}
	for name := range weights {
		o.names = append(o.names, name)
	}
	sort.Strings(o.names)
	return o
}

type filterRun struct {
	name   string
	weight float64
	scored []model.ScoredItem
}

// Apply scores the batch with every selected strategy and combines the
// results. A strategy that fails is logged and excluded from the combination
// for this batch; it never aborts the remaining strategies or items. The
// returned error only reports a broken score invariant, which no conforming
// strategy can produce.
func (o *Orchestrator) Apply(ctx context.Context, items []model.Item) ([]model.ScoredItem, error) {
	if len(items) == 0 {
		return nil, nil
	}

	runs := o.runFilters(ctx, items)
	if runs == nil {
		return o.applyDefault(items)
	}

	out := make([]model.ScoredItem, 0, len(items))
	for i, item := range items {
		breakdown := make(map[string]float64, len(runs)+1)
		var weightedSum, totalWeight float64
		for _, run := range runs {
			score := run.scored[i].RelevanceScore
			breakdown[run.name] = score
			weightedSum += score * run.weight
			totalWeight += run.weight
		}

		// Failed strategies were dropped from runs entirely, so they are
		// excluded from normalization rather than counted as zero. With
		// every strategy failed the final score is exactly 0.
		final := 0.0
		if totalWeight > 0 {
			final = weightedSum / totalWeight
		}
		breakdown[KeyFinal] = final

		scored, err := model.NewScoredItem(item, final, breakdown)
		if err != nil {
			return nil, err
		}
		out = append(out, scored)
	}
	return out, nil
}

// Breakdown explains a single item the same way Apply scores it.
func (o *Orchestrator) Breakdown(ctx context.Context, item model.Item) (map[string]float64, error) {
	scored, err := o.Apply(ctx, []model.Item{item})
	if err != nil {
		return nil, err
	}
	return scored[0].ScoreBreakdown, nil
}

// runFilters resolves the strategies to run and scores the batch with each,
// dropping any strategy that errors or breaks the one-output-per-input
// contract. A nil return means no strategy was available at all.
func (o *Orchestrator) runFilters(ctx context.Context, items []model.Item) []filterRun {
	type selection struct {
		name   string
		weight float64
	}
	var selected []selection
	if len(o.weights) > 0 {
		for _, name := range o.names {
			selected = append(selected, selection{name: name, weight: o.weights[name]})
		}
	} else {
		for _, name := range o.registry.List() {
			selected = append(selected, selection{name: name, weight: 1})
		}
	}

	var runs []filterRun
	available := 0
	for _, sel := range selected {
		f, ok := o.registry.Get(sel.name)
		if !ok {
			// A configured weight whose filter was never registered
			// silently contributes nothing.
			continue
		}
		available++
		scored, err := f.Score(ctx, items)
		if err != nil {
			o.log.Error("filter failed, excluding from this batch",
				zap.String("filter", sel.name), zap.Error(err))
			continue
		}
		if len(scored) != len(items) {
			o.log.Error("filter returned wrong result count, excluding from this batch",
				zap.String("filter", sel.name),
				zap.Int("got", len(scored)), zap.Int("want", len(items)))
			continue
		}
		runs = append(runs, filterRun{name: sel.name, weight: sel.weight, scored: scored})
	}

	if available == 0 {
		return nil
	}
	if runs == nil {
		// Strategies were available but every one failed: combine to 0.0
		// per item rather than falling open to the neutral score.
		return []filterRun{}
	}
	return runs
}

// applyDefault implements the fail-open path for an empty registry.
func (o *Orchestrator) applyDefault(items []model.Item) ([]model.ScoredItem, error) {
	o.log.Warn("no filters available, applying neutral default score")
	out := make([]model.ScoredItem, 0, len(items))
	for _, item := range items {
		scored, err := model.NewScoredItem(item, neutralScore, map[string]float64{KeyDefault: neutralScore})
		if err != nil {
			return nil, err
		}
		out = append(out, scored)
	}
	return out, nil
}
