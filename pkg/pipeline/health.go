package pipeline

import (
	"context"

	"github.com/matzehuels/rasterd/pkg/errors"
	"github.com/matzehuels/rasterd/pkg/fonts"
)

// CheckStatus is the outcome of one pipeline stage during a health probe.
type CheckStatus string

const (
	CheckUnknown CheckStatus = "unknown"
	CheckOK      CheckStatus = "ok"
	CheckFailed  CheckStatus = "failed"
)

// HealthChecks reports per-stage outcomes.
type HealthChecks struct {
	Kroki      CheckStatus `json:"kroki"`
	Rasterizer CheckStatus `json:"rasterizer"`
}

// HealthReport is the full health probe result.
type HealthReport struct {
	Status   string       `json:"status"`
	Checks   HealthChecks `json:"checks"`
	KrokiURL string       `json:"krokiUrl"`
	Message  string       `json:"message,omitempty"`
}

// Healthy reports whether both stages succeeded.
func (h HealthReport) Healthy() bool {
	return h.Status == "ok"
}

// healthScene is a minimal empty diagram document used to exercise the full
// pipeline without depending on any real user input.
const healthScene = `{"type":"excalidraw","version":2,"source":"https://excalidraw.com","elements":[],"appState":{"viewBackgroundColor":"#ffffff"}}`

// Health runs the full pipeline against the built-in empty scene with
// default options. It exercises both the conversion client and the
// rasterizer, and reports per-stage status rather than propagating errors:
// any failure collapses into a single "error" status with a message.
func (r *Renderer) Health(ctx context.Context) HealthReport {
	report := HealthReport{
		Status:   "ok",
		Checks:   HealthChecks{Kroki: CheckUnknown, Rasterizer: CheckUnknown},
		KrokiURL: r.kroki.BaseURL(),
	}

	svg, err := r.kroki.Convert(ctx, healthScene)
	if err != nil {
		report.Status = "error"
		report.Checks.Kroki = CheckFailed
		report.Message = errors.UserMessage(err)
		return report
	}
	report.Checks.Kroki = CheckOK

	png, err := r.rasterize(ctx, fonts.RewriteMarkup(svg, r.defaultFontMap), r.defaultFontMap, DefaultOptions(r.cfg))
	if err != nil {
		report.Status = "error"
		report.Checks.Rasterizer = CheckFailed
		report.Message = errors.UserMessage(err)
		return report
	}
	if len(png) == 0 {
		report.Status = "error"
		report.Checks.Rasterizer = CheckFailed
		report.Message = "rasterizer produced an empty image"
		return report
	}
	report.Checks.Rasterizer = CheckOK

	return report
}
