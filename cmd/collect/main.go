package main

import (
	"context"
	"fmt"
	"log"

	"go.uber.org/zap"

	"github.com/opsfeed/opsfeed/internal/config"
	"github.com/opsfeed/opsfeed/internal/embedding"
	"github.com/opsfeed/opsfeed/internal/filter"
	"github.com/opsfeed/opsfeed/internal/filtering"
	"github.com/opsfeed/opsfeed/internal/ingest"
	"github.com/opsfeed/opsfeed/internal/logger"
	"github.com/opsfeed/opsfeed/internal/registry"
	"github.com/opsfeed/opsfeed/internal/source"
	"github.com/opsfeed/opsfeed/internal/storage"
)

// One-shot entrypoint: run a single fetch pass over every configured source
// and print per-source results, without starting the daemon.
func main() {
	cfg := config.Load()

	lg, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("init logger failed: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	ctx := context.Background()
	store := storage.NewMemory(lg)

	filters := registry.New[filter.Filter]("filter", lg)
	if err := filters.Register(filter.NewKeywordFilter(lg)); err != nil {
		lg.Fatal("register keyword filter failed", zap.Error(err))
	}
	var enc embedding.Encoder = embedding.NewHashingEncoder(cfg.EmbeddingDim)
	if cfg.EncoderURL != "" {
		enc = embedding.NewHTTPEncoder(cfg.EncoderURL, cfg.EmbeddingDim, lg)
	}
	semantic, err := filter.NewSemanticFilter(ctx, enc, lg)
	if err != nil {
		lg.Fatal("init semantic filter failed", zap.Error(err))
	}
	if err := filters.Register(semantic); err != nil {
		lg.Fatal("register semantic filter failed", zap.Error(err))
	}

	orch := filtering.New(filters, cfg.FilterWeights, lg)
	svc, err := ingest.NewService(store, orch, cfg.RelevanceThreshold, lg)
	if err != nil {
		lg.Fatal("init ingest service failed", zap.Error(err))
	}

	sources := registry.New[source.Source]("source", lg)
	registerSources(cfg, sources, lg)

	for _, name := range sources.List() {
		src, ok := sources.Get(name)
		if !ok {
			continue
		}
		items, err := src.Fetch(ctx)
		if err != nil {
			fmt.Printf("%-16s fetch error: %v\n", name, err)
			continue
		}
		accepted := 0
		for _, res := range svc.Screen(ctx, items) {
			if res.Status == ingest.StatusAccepted {
				accepted++
			}
		}
		fmt.Printf("%-16s fetched=%d accepted=%d\n", name, len(items), accepted)
	}
	fmt.Printf("store now holds %d items\n", store.Count())
}

// registerSources wires every enabled source adapter, mirroring cmd/api.
func registerSources(cfg *config.Config, sources *registry.Registry[source.Source], lg *zap.Logger) {
	register := func(src source.Source) {
		if err := sources.Register(src); err != nil {
			lg.Fatal("register source failed", zap.String("source", src.Name()), zap.Error(err))
		}
	}
	if cfg.EnableMockSource {
		register(source.NewMockSource("mock", 0, lg))
	}
	if cfg.EnableHackerNews {
		register(source.NewHackerNewsSource("", 0, lg))
	}
	if cfg.EnableTheRegister {
		register(source.NewRegisterSource("", lg))
	}
	if cfg.RedditSubreddit != "" {
		register(source.NewRedditSource("", cfg.RedditSubreddit, cfg.RedditLimit, lg))
	}
	for name, feedURL := range cfg.RSSFeeds {
		register(source.NewRSSSource(name, feedURL, cfg.RSSMaxItems, lg))
	}
}
