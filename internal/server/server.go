// Package server implements the rendering gateway's HTTP surface.
//
// Endpoints:
//
//	POST /render/svg  – convert a diagram document and return rewritten SVG
//	POST /render/png  – convert, rewrite and rasterize to PNG
//	GET  /healthz     – full-pipeline liveness probe
//
// Request bodies are treated as opaque diagram-document text. All failures
// are serialized as {"error": message} with the status derived from the
// structured error code.
package server

import (
	"context"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/rasterd/pkg/config"
	"github.com/matzehuels/rasterd/pkg/pipeline"
)

// Renderer is the pipeline surface the gateway dispatches to.
// *pipeline.Renderer implements it; tests may substitute a stub.
type Renderer interface {
	RenderSVG(ctx context.Context, document, fontMapParam string) ([]byte, error)
	RenderPNG(ctx context.Context, document, fontMapParam string, opts pipeline.Options) ([]byte, error)
	Health(ctx context.Context) pipeline.HealthReport
}

// Server holds the gateway's request-independent state.
type Server struct {
	cfg      config.Config
	renderer Renderer
	logger   *log.Logger
}

// New creates a Server around the given renderer.
func New(cfg config.Config, renderer Renderer, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{cfg: cfg, renderer: renderer, logger: logger}
}

// Routes builds the gateway's router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(s.requestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Post("/render/svg", s.handleRenderSVG)
	r.Post("/render/png", s.handleRenderPNG)
	r.Get("/healthz", s.handleHealth)

	return r
}
