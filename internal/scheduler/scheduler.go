// Package scheduler runs the continuous-ingestion loop: poll every
// registered source on an interval and feed new items through the same
// scoring and dedup path as manual submission.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/opsfeed/opsfeed/internal/ingest"
	"github.com/opsfeed/opsfeed/internal/model"
	"github.com/opsfeed/opsfeed/internal/registry"
	"github.com/opsfeed/opsfeed/internal/source"
)

const (
	defaultStopTimeout  = 5 * time.Second
	defaultSeenCapacity = 4096
)

// Stats is a point-in-time snapshot of the scheduler for monitoring.
type Stats struct {
	Running         bool `json:"running"`
	CompletedCycles int  `json:"completed_cycles"`
	SeenIDs         int  `json:"seen_ids"`
}

// Scheduler polls all registered sources on a fixed interval. Only one
// fetch-all-sources cycle is in flight at a time: overlapping ticks are
// skipped, never queued.
type Scheduler struct {
	cron        *cron.Cron
	sources     *registry.Registry[source.Source]
	svc         *ingest.Service
	interval    time.Duration
	stopTimeout time.Duration
	log         *zap.Logger

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	baseCtx context.Context
	seen    *seenSet
	cycles  int
}

// Options tune the scheduler; zero values select defaults.
type Options struct {
	StopTimeout  time.Duration
	SeenCapacity int
}

// New builds a scheduler polling at the given interval.
func New(sources *registry.Registry[source.Source], svc *ingest.Service, interval time.Duration, opts Options, log *zap.Logger) (*Scheduler, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("scheduler: interval must be positive, got %v", interval)
	}
	if opts.StopTimeout <= 0 {
		opts.StopTimeout = defaultStopTimeout
	}
	if opts.SeenCapacity <= 0 {
		opts.SeenCapacity = defaultSeenCapacity
	}

	s := &Scheduler{
		sources:     sources,
		svc:         svc,
		interval:    interval,
		stopTimeout: opts.StopTimeout,
		seen:        newSeenSet(opts.SeenCapacity),
		log:         log,
	}

	cronLog := cron.PrintfLogger(zap.NewStdLog(log.Named("cron")))
	s.cron = cron.New(cron.WithChain(cron.SkipIfStillRunning(cronLog)))
	if _, err := s.cron.AddFunc(fmt.Sprintf("@every %s", interval), s.runCycle); err != nil {
		return nil, fmt.Errorf("scheduler: schedule interval job: %w", err)
	}
	return s, nil
}

// Start transitions to Running, runs one full fetch pass synchronously so
// the first poll is not delayed by the interval, then hands off to the
// background timer. Start on a running scheduler is a no-op.
func (s *Scheduler) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.baseCtx, s.cancel = context.WithCancel(context.Background())
	s.mu.Unlock()

	s.log.Info("scheduler starting", zap.Duration("interval", s.interval))
	s.runCycle()
	s.cron.Start()
}

// Stop signals the loop to exit and waits, bounded by the stop timeout, for
// an in-flight cycle to finish. When the timeout elapses Stop returns anyway;
// shutdown is best-effort, not a guarantee the cycle has exited.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.cancel()
	s.mu.Unlock()

	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
		s.log.Info("scheduler stopped")
	case <-time.After(s.stopTimeout):
		s.log.Warn("scheduler stop timed out with a cycle still in flight",
			zap.Duration("timeout", s.stopTimeout))
	}
}

// Stats reports the current scheduler state.
func (s *Scheduler) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Stats{
		Running:         s.running,
		CompletedCycles: s.cycles,
		SeenIDs:         s.seen.Len(),
	}
}

// runCycle fetches every registered source once. Sources run in their own
// goroutines so a slow or hung source delays, but does not block, its
// siblings; the cycle itself does not complete until every fetch returns.
func (s *Scheduler) runCycle() {
	s.mu.Lock()
	ctx := s.baseCtx
	s.mu.Unlock()
	if ctx == nil || ctx.Err() != nil {
		return
	}

	names := s.sources.List()
	s.log.Debug("fetch cycle starting", zap.Int("sources", len(names)))

	var wg sync.WaitGroup
	for _, name := range names {
		src, ok := s.sources.Get(name)
		if !ok {
			continue
		}
		wg.Add(1)
		go func(src source.Source) {
			defer wg.Done()
			s.pollSource(ctx, src)
		}(src)
	}
	wg.Wait()

	s.mu.Lock()
	s.cycles++
	s.mu.Unlock()
	s.log.Debug("fetch cycle complete")
}

// pollSource fetches one source and routes unseen items through the shared
// accept/reject pipeline. A fetch error is logged and skipped; it never
// prevents sibling sources from being processed or corrupts the next cycle.
func (s *Scheduler) pollSource(ctx context.Context, src source.Source) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("source panicked",
				zap.String("source", src.Name()), zap.Any("panic", r))
		}
	}()

	items, err := src.Fetch(ctx)
	if err != nil {
		s.log.Error("source fetch failed, skipping",
			zap.String("source", src.Name()), zap.Error(err))
		return
	}
	if len(items) == 0 {
		s.log.Debug("source returned no items", zap.String("source", src.Name()))
		return
	}

	fresh := s.markUnseen(items)
	if len(fresh) == 0 {
		return
	}

	results := s.svc.Screen(ctx, fresh)
	accepted := 0
	for _, r := range results {
		if r.Status == ingest.StatusAccepted {
			accepted++
		}
	}
	s.log.Info("source processed",
		zap.String("source", src.Name()),
		zap.Int("fetched", len(items)),
		zap.Int("new", len(fresh)),
		zap.Int("accepted", accepted))
}

// markUnseen returns the items this scheduler has not processed before and
// marks their ids as seen. Marking happens up front so an id is scored at
// most once per scheduler lifetime regardless of the accept/reject outcome
// and regardless of which source emits it first.
func (s *Scheduler) markUnseen(items []model.Item) []model.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	fresh := make([]model.Item, 0, len(items))
	for _, item := range items {
		if s.seen.Has(item.ID) {
			continue
		}
		s.seen.Add(item.ID)
		fresh = append(fresh, item)
	}
	return fresh
}
