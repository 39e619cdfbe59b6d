package server

import (
	"errors"
	"io"
	"net/http"
	"strings"

	apperrors "github.com/matzehuels/rasterd/pkg/errors"
)

func (s *Server) handleRenderSVG(w http.ResponseWriter, r *http.Request) {
	document, err := s.readDocument(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	svg, err := s.renderer.RenderSVG(r.Context(), document, r.URL.Query().Get("fontMap"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	_, _ = w.Write(svg)
}

func (s *Server) handleRenderPNG(w http.ResponseWriter, r *http.Request) {
	document, err := s.readDocument(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	opts, err := parseOptions(r.URL.Query(), s.cfg)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	png, err := s.renderer.RenderPNG(r.Context(), document, r.URL.Query().Get("fontMap"), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := s.renderer.Health(r.Context())

	status := http.StatusOK
	if !report.Healthy() {
		status = http.StatusServiceUnavailable
		s.logger.Warn("health check failed",
			"kroki", report.Checks.Kroki,
			"rasterizer", report.Checks.Rasterizer,
			"message", report.Message)
	}
	writeJSON(w, status, report)
}

// readDocument reads the request body as diagram-document text, enforcing
// the configured size limit and rejecting empty payloads.
func (s *Server) readDocument(w http.ResponseWriter, r *http.Request) (string, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.BodyLimit))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return "", apperrors.New(apperrors.ErrCodeBodyTooLarge,
				"request body exceeds %d bytes", tooLarge.Limit)
		}
		return "", apperrors.Wrap(apperrors.ErrCodeInternal, err, "read request body")
	}

	document := string(body)
	if strings.TrimSpace(document) == "" {
		return "", apperrors.New(apperrors.ErrCodeEmptyBody, "Empty request body")
	}
	return document, nil
}
