// Package pipeline drives the two-stage render: convert the diagram
// document to SVG via the external conversion service, then rasterize the
// (font-rewritten) markup with the shared rendering engine.
//
// The Renderer is stateless per request apart from two shared resources,
// the conversion client and the lazily-launched engine, so a single
// instance serves unlimited concurrent requests.
package pipeline

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/rasterd/pkg/config"
	"github.com/matzehuels/rasterd/pkg/engine"
	"github.com/matzehuels/rasterd/pkg/errors"
	"github.com/matzehuels/rasterd/pkg/fonts"
	"github.com/matzehuels/rasterd/pkg/kroki"
	"github.com/matzehuels/rasterd/pkg/sizing"
)

// Rasterizer is the engine surface the pipeline needs. *engine.Manager
// implements it; tests substitute a stub.
type Rasterizer interface {
	Rasterize(ctx context.Context, req engine.Request) ([]byte, error)
	Close()
}

// Renderer executes the conversion and rasterization stages.
type Renderer struct {
	cfg            config.Config
	kroki          *kroki.Client
	engine         Rasterizer
	registry       fonts.Registry
	defaultFontMap map[string]string
	logger         *log.Logger
}

// New builds a Renderer from the resolved configuration: it loads the font
// registry, constructs the conversion client and prepares (but does not
// launch) the rendering engine.
func New(cfg config.Config, logger *log.Logger) (*Renderer, error) {
	if logger == nil {
		logger = log.Default()
	}

	registry, err := fonts.Load(cfg.FontsDir, logger)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "load font registry from %s", cfg.FontsDir)
	}

	return &Renderer{
		cfg:            cfg,
		kroki:          kroki.New(cfg.KrokiURL, cfg.RequestTimeout()),
		engine:         engine.New(cfg.ChromePath, cfg.RequestTimeout(), logger),
		registry:       registry,
		defaultFontMap: fonts.MergeFontMap(nil, cfg.FontMap),
		logger:         logger,
	}, nil
}

// SetRasterizer replaces the rendering engine. Intended for tests.
func (r *Renderer) SetRasterizer(e Rasterizer) {
	r.engine = e
}

// FontMap merges the per-request substitution string onto the process-wide
// default map.
func (r *Renderer) FontMap(perRequest string) map[string]string {
	return fonts.MergeFontMap(r.defaultFontMap, perRequest)
}

// RenderSVG converts the document and applies font substitution, returning
// the rewritten SVG markup.
func (r *Renderer) RenderSVG(ctx context.Context, document, fontMapParam string) ([]byte, error) {
	svg, err := r.kroki.Convert(ctx, document)
	if err != nil {
		return nil, err
	}
	return []byte(fonts.RewriteMarkup(svg, r.FontMap(fontMapParam))), nil
}

// RenderPNG runs the full pipeline: convert, rewrite fonts, resolve the
// output size and rasterize to PNG.
func (r *Renderer) RenderPNG(ctx context.Context, document, fontMapParam string, opts Options) ([]byte, error) {
	start := time.Now()

	svg, err := r.kroki.Convert(ctx, document)
	if err != nil {
		return nil, err
	}

	fontMap := r.FontMap(fontMapParam)
	png, err := r.rasterize(ctx, fonts.RewriteMarkup(svg, fontMap), fontMap, opts)
	if err != nil {
		return nil, err
	}

	r.logger.Debug("rendered png",
		"bytes", len(png),
		"duration", time.Since(start).Round(time.Millisecond))
	return png, nil
}

// rasterize resolves the output size for the rewritten markup and drives
// the engine.
func (r *Renderer) rasterize(ctx context.Context, svg string, fontMap map[string]string, opts Options) ([]byte, error) {
	intrinsic, err := sizing.ParseIntrinsicSize(svg)
	if err != nil {
		return nil, err
	}
	px, err := sizing.ComputeOutputSize(intrinsic, opts.target())
	if err != nil {
		return nil, err
	}

	return r.engine.Rasterize(ctx, engine.Request{
		Markup:      svg,
		Width:       px.Width,
		Height:      px.Height,
		Transparent: opts.Transparent,
		Background:  opts.Background,
		FontCSS:     fonts.FontFaceRules(fontMap, r.registry),
	})
}

// Close releases the rendering engine.
func (r *Renderer) Close() {
	r.engine.Close()
}
