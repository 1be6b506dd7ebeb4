// Package server exposes proposal pricing and rendering over HTTP.
package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	proposal "github.com/alnah/go-proposal"
)

// Service is the part of *proposal.Converter the HTTP layer needs.
type Service interface {
	Preview(ctx context.Context, in proposal.Input) (*proposal.PreviewResult, error)
	Document(ctx context.Context, in proposal.Input) (*proposal.DocumentResult, error)
}

// DefaultMaxBodyBytes bounds request bodies when Config leaves it unset.
const DefaultMaxBodyBytes = 2 << 20

// Config tunes the HTTP boundary.
type Config struct {
	MaxBodyBytes int64
}

// Server routes API requests to a Service.
type Server struct {
	svc     Service
	logger  *zap.Logger
	tracer  trace.Tracer
	maxBody int64
	engine  *gin.Engine
}

// New builds the router. A nil logger discards logs.
func New(svc Service, cfg Config, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}

	s := &Server{
		svc:     svc,
		logger:  logger,
		tracer:  otel.Tracer("github.com/alnah/go-proposal/server"),
		maxBody: cfg.MaxBodyBytes,
	}

	r := gin.New()
	r.HandleMethodNotAllowed = true
	// Recovery sits innermost so recovered panics are still traced and logged.
	r.Use(
		requestID(),
		s.tracing(),
		s.accessLog(),
		s.recovery(),
	)
	r.NoRoute(func(c *gin.Context) {
		writeError(c, http.StatusNotFound, "not found", "no route for "+c.Request.URL.Path, "")
	})
	r.NoMethod(func(c *gin.Context) {
		writeError(c, http.StatusMethodNotAllowed, "method not allowed", c.Request.Method+" is not supported here", "")
	})

	r.GET("/healthz", s.health)

	api := r.Group("/api", s.limitBody())
	api.POST("/preview", s.preview)
	api.POST("/document", s.document)
	api.POST("/pdf", s.document)

	s.engine = r
	return s
}

// Handler returns the http.Handler serving all routes.
func (s *Server) Handler() http.Handler {
	return s.engine
}
