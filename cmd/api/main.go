package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/opsfeed/opsfeed/internal/api"
	"github.com/opsfeed/opsfeed/internal/config"
	"github.com/opsfeed/opsfeed/internal/embedding"
	"github.com/opsfeed/opsfeed/internal/filter"
	"github.com/opsfeed/opsfeed/internal/filtering"
	"github.com/opsfeed/opsfeed/internal/ingest"
	"github.com/opsfeed/opsfeed/internal/logger"
	"github.com/opsfeed/opsfeed/internal/registry"
	"github.com/opsfeed/opsfeed/internal/scheduler"
	"github.com/opsfeed/opsfeed/internal/source"
	"github.com/opsfeed/opsfeed/internal/storage"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()

	lg, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("init logger failed: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	store := storage.NewMemory(lg)

	filters := registry.New[filter.Filter]("filter", lg)
	if err := filters.Register(filter.NewKeywordFilter(lg)); err != nil {
		lg.Fatal("register keyword filter failed", zap.Error(err))
	}

	var enc embedding.Encoder = embedding.NewHashingEncoder(cfg.EmbeddingDim)
	if cfg.EncoderURL != "" {
		enc = embedding.NewHTTPEncoder(cfg.EncoderURL, cfg.EmbeddingDim, lg)
	}
	semantic, err := filter.NewSemanticFilter(context.Background(), enc, lg)
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

	sched, err := scheduler.New(sources, svc, cfg.FetchInterval, scheduler.Options{
		StopTimeout:  cfg.SchedulerStopTimeout,
		SeenCapacity: cfg.SeenCapacity,
	}, lg)
	if err != nil {
		lg.Fatal("init scheduler failed", zap.Error(err))
	}
	sched.Start()

	r := gin.Default()
	r.Use(cors.Default())
	api.NewServer(svc, store, sources, filters, sched, lg).RegisterRoutes(r)

	srv := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		lg.Info("starting api server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Fatal("server exit", zap.Error(err))
		}
	}()

	<-ctx.Done()
	lg.Info("shutting down")
	sched.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		lg.Warn("server shutdown", zap.Error(err))
	}
}

// registerSources wires every enabled source adapter.
func registerSources(cfg *config.Config, sources *registry.Registry[source.Source], lg *zap.Logger) {
	if cfg.EnableMockSource {
		mustRegister(sources, source.NewMockSource("mock", 0, lg), lg)
	}
	if cfg.EnableHackerNews {
		mustRegister(sources, source.NewHackerNewsSource("", 0, lg), lg)
	}
	if cfg.EnableTheRegister {
		mustRegister(sources, source.NewRegisterSource("", lg), lg)
	}
	if cfg.RedditSubreddit != "" {
		mustRegister(sources, source.NewRedditSource("", cfg.RedditSubreddit, cfg.RedditLimit, lg), lg)
	}
	for name, feedURL := range cfg.RSSFeeds {
		mustRegister(sources, source.NewRSSSource(name, feedURL, cfg.RSSMaxItems, lg), lg)
	}
}

func mustRegister(sources *registry.Registry[source.Source], src source.Source, lg *zap.Logger) {
	if err := sources.Register(src); err != nil {
		lg.Fatal("register source failed", zap.String("source", src.Name()), zap.Error(err))
	}
}
