// Package ingest implements the accept/reject pipeline shared by manual
// submission and the background scheduler, and the ranked retrieval path.
package ingest

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/opsfeed/opsfeed/internal/filtering"
	"github.com/opsfeed/opsfeed/internal/model"
	"github.com/opsfeed/opsfeed/internal/storage"
)

// Status classifies the outcome of processing one item.
type Status string

const (
	StatusAccepted  Status = "accepted"
	StatusRejected  Status = "rejected"
	StatusDuplicate Status = "duplicate"
	StatusError     Status = "error"
)

// ItemResult is the per-item outcome of an ingestion pass.
type ItemResult struct {
	ID     string  `json:"id"`
	Status Status  `json:"status"`
	Score  float64 `json:"score,omitempty"`
	Reason string  `json:"reason,omitempty"`
}

// Summary aggregates the outcomes of one batch.
type Summary struct {
	TotalReceived int `json:"total_received"`
	Accepted      int `json:"accepted"`
	Rejected      int `json:"rejected"`
	Duplicates    int `json:"duplicates"`
	Errors        int `json:"errors"`
}

// Service runs items through scoring and the relevance threshold. It carries
// the single threshold value shared by manual ingestion, retrieval and the
// scheduler.
type Service struct {
	store     *storage.MemoryStore
	orch      *filtering.Orchestrator
	threshold float64
	log       *zap.Logger
}

// NewService wires the pipeline. threshold must be in [0,1].
func NewService(store *storage.MemoryStore, orch *filtering.Orchestrator, threshold float64, log *zap.Logger) (*Service, error) {
	if threshold < 0 || threshold > 1 {
		return nil, fmt.Errorf("ingest: relevance threshold %v out of [0,1]", threshold)
	}
	return &Service{store: store, orch: orch, threshold: threshold, log: log}, nil
}

// Threshold returns the configured relevance threshold.
func (s *Service) Threshold() float64 { return s.threshold }

// IngestBatch validates, dedup-checks, scores and stores a batch of drafts.
// Every draft is processed independently: a validation failure or an
// unexpected fault is recorded against that item and never aborts its
// siblings.
func (s *Service) IngestBatch(ctx context.Context, drafts []model.Draft) (Summary, []ItemResult) {
	results := make([]ItemResult, len(drafts))
	valid := make([]model.Item, 0, len(drafts))
	validIdx := make([]int, 0, len(drafts))

	for i, draft := range drafts {
		item, err := draft.Validate()
		if err != nil {
			s.log.Warn("item rejected by validation", zap.String("id", draft.ID), zap.Error(err))
			results[i] = ItemResult{ID: draft.ID, Status: StatusError, Reason: err.Error()}
			continue
		}
		if _, exists := s.store.Get(item.ID); exists {
			results[i] = ItemResult{ID: item.ID, Status: StatusDuplicate, Reason: "id already stored"}
			continue
		}
		valid = append(valid, item)
		validIdx = append(validIdx, i)
	}

	screened := s.Screen(ctx, valid)
	for j, res := range screened {
		results[validIdx[j]] = res
	}

	summary := summarize(results)
	s.log.Info("ingest batch processed",
		zap.Int("received", summary.TotalReceived),
		zap.Int("accepted", summary.Accepted),
		zap.Int("rejected", summary.Rejected),
		zap.Int("duplicates", summary.Duplicates),
		zap.Int("errors", summary.Errors))
	return summary, results
}

// Screen scores already-validated items and stores the ones at or above the
// threshold. The threshold is an inclusive lower bound. Used directly by the
// scheduler, which validates items at the source adapter boundary.
func (s *Service) Screen(ctx context.Context, items []model.Item) []ItemResult {
	if len(items) == 0 {
		return nil
	}

	results := make([]ItemResult, len(items))
	scored, err := s.orch.Apply(ctx, items)
	if err != nil || len(scored) != len(items) {
		// Scoring the whole batch failed; record each item as errored
		// rather than dropping the batch silently.
		s.log.Error("scoring batch failed", zap.Error(err))
		for i, item := range items {
			results[i] = ItemResult{ID: item.ID, Status: StatusError, Reason: "scoring failed"}
		}
		return results
	}

	for i, sc := range scored {
		if sc.RelevanceScore < s.threshold {
			results[i] = ItemResult{ID: sc.Item.ID, Status: StatusRejected, Score: sc.RelevanceScore, Reason: "below relevance threshold"}
			continue
		}
		// A concurrent writer may have stored the same id since the
		// dedup check; Add is the authoritative decision.
		if !s.store.Add(sc.Item) {
			results[i] = ItemResult{ID: sc.Item.ID, Status: StatusDuplicate, Reason: "id already stored"}
			continue
		}
		results[i] = ItemResult{ID: sc.Item.ID, Status: StatusAccepted, Score: sc.RelevanceScore}
	}
	return results
}

// Retrieve re-scores the full store snapshot, drops items below the
// threshold and returns the rest sorted by relevance descending, then
// published_at descending. Scores are always computed fresh so the ranking
// reflects the current strategy configuration, not ingestion-time scores.
func (s *Service) Retrieve(ctx context.Context) ([]model.ScoredItem, error) {
	items := s.store.All()
	if len(items) == 0 {
		return nil, nil
	}

	scored, err := s.orch.Apply(ctx, items)
	if err != nil {
		return nil, fmt.Errorf("ingest: score snapshot: %w", err)
	}

	relevant := make([]model.ScoredItem, 0, len(scored))
	for _, sc := range scored {
		if sc.RelevanceScore >= s.threshold {
			relevant = append(relevant, sc)
		}
	}

	sort.SliceStable(relevant, func(i, j int) bool {
		if relevant[i].RelevanceScore != relevant[j].RelevanceScore {
			return relevant[i].RelevanceScore > relevant[j].RelevanceScore
		}
		return relevant[i].Item.PublishedAt.After(relevant[j].Item.PublishedAt)
	})

	s.log.Debug("retrieve pass complete",
		zap.Int("stored", len(items)), zap.Int("relevant", len(relevant)))
	return relevant, nil
}

func summarize(results []ItemResult) Summary {
	summary := Summary{TotalReceived: len(results)}
	for _, r := range results {
		switch r.Status {
		case StatusAccepted:
			summary.Accepted++
		case StatusRejected:
			summary.Rejected++
		case StatusDuplicate:
			summary.Duplicates++
		case StatusError:
			summary.Errors++
		}
	}
	return summary
}
