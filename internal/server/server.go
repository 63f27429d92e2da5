// Package server exposes sessions, the explain proxy and health endpoints
// over HTTP, plus a gRPC health service.
package server

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/joseph-ayodele/doc-explainer/internal/core"
	"github.com/joseph-ayodele/doc-explainer/internal/metrics"
	"github.com/joseph-ayodele/doc-explainer/internal/session"
)

// DefaultMaxUploadBytes caps multipart uploads.
const DefaultMaxUploadBytes = 32 << 20

type Deps struct {
	Processor      *core.Processor
	Sessions       *session.Store
	Relay          http.Handler // mounted at /explain-proxy when set
	Metrics        *metrics.Metrics
	Logger         *slog.Logger
	MaxUploadBytes int64
}

type Server struct {
	proc      *core.Processor
	sessions  *session.Store
	relay     http.Handler
	metrics   *metrics.Metrics
	logger    *slog.Logger
	maxUpload int64
}

func New(d Deps) *Server {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.MaxUploadBytes <= 0 {
		d.MaxUploadBytes = DefaultMaxUploadBytes
	}
	return &Server{
		proc:      d.Processor,
		sessions:  d.Sessions,
		relay:     d.Relay,
		metrics:   d.Metrics,
		logger:    d.Logger,
		maxUpload: d.MaxUploadBytes,
	}
}

// Router builds the gin engine with every route registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.MaxMultipartMemory = s.maxUpload
	r.Use(gin.Recovery(), requestID(), s.accessLog(), s.observe())

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	if s.relay != nil {
		r.Any("/explain-proxy", gin.WrapH(s.relay))
	}

	api := r.Group("/api/sessions")
	api.POST("", s.createSession)
	sess := api.Group("/:id", s.loadSession())
	sess.POST("/document", s.uploadDocument)
	sess.GET("/progress", s.getProgress)
	sess.POST("/explain", s.explain)
	sess.POST("/chat", s.chat)
	sess.GET("/explanation.txt", s.downloadExplanation)
	sess.DELETE("", s.resetSession)
	return r
}
