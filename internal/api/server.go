// Package api exposes the ingest/retrieve pipeline over HTTP.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/opsfeed/opsfeed/internal/filter"
	"github.com/opsfeed/opsfeed/internal/ingest"
	"github.com/opsfeed/opsfeed/internal/model"
	"github.com/opsfeed/opsfeed/internal/registry"
	"github.com/opsfeed/opsfeed/internal/scheduler"
	"github.com/opsfeed/opsfeed/internal/source"
	"github.com/opsfeed/opsfeed/internal/storage"
)

// Server wires the HTTP handlers to the pipeline components.
type Server struct {
	svc     *ingest.Service
	store   *storage.MemoryStore
	sources *registry.Registry[source.Source]
	filters *registry.Registry[filter.Filter]
	sched   *scheduler.Scheduler
	log     *zap.Logger
}

// NewServer creates the HTTP layer. sched may be nil when the process runs
// without background ingestion.
func NewServer(
	svc *ingest.Service,
	store *storage.MemoryStore,
	sources *registry.Registry[source.Source],
	filters *registry.Registry[filter.Filter],
	sched *scheduler.Scheduler,
	log *zap.Logger,
) *Server {
	return &Server{
		svc:     svc,
		store:   store,
		sources: sources,
		filters: filters,
		sched:   sched,
		log:     log,
	}
}

// RegisterRoutes mounts all endpoints on the engine.
func (s *Server) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", s.health)

	v1 := r.Group("/api/v1")
	{
		v1.POST("/ingest", s.ingestBatch)
		v1.GET("/retrieve", s.retrieve)
		v1.GET("/stats", s.stats)
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type ingestRequest struct {
	Items []model.Draft `json:"items"`
}

func (s *Server) ingestBatch(c *gin.Context) {
	var req ingestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    "bad_request",
			"message": "malformed request body",
		})
		return
	}
	if len(req.Items) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    "bad_request",
			"message": "no items provided",
		})
		return
	}

	summary, results := s.svc.IngestBatch(c.Request.Context(), req.Items)
	c.JSON(http.StatusOK, gin.H{
		"status":  "ACK",
		"message": "news items processed",
		"summary": summary,
		"results": results,
	})
}

func (s *Server) retrieve(c *gin.Context) {
	items, err := s.svc.Retrieve(c.Request.Context())
	if err != nil {
		s.log.Error("retrieve failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    "internal_error",
			"message": "internal server error",
		})
		return
	}
	if items == nil {
		items = []model.ScoredItem{}
	}

	c.JSON(http.StatusOK, gin.H{
		"items": items,
		"total": len(items),
		"filtering_info": gin.H{
			"total_items_in_storage": s.store.Count(),
			"items_passing_filters":  len(items),
			"relevance_threshold":    s.svc.Threshold(),
		},
	})
}

func (s *Server) stats(c *gin.Context) {
	resp := gin.H{
		"stored_items":        s.store.Count(),
		"sources":             s.sources.List(),
		"filters":             s.filters.List(),
		"relevance_threshold": s.svc.Threshold(),
	}
	if s.sched != nil {
		resp["scheduler"] = s.sched.Stats()
	}
	c.JSON(http.StatusOK, resp)
}
