package pipeline

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/rasterd/pkg/config"
	"github.com/matzehuels/rasterd/pkg/engine"
	"github.com/matzehuels/rasterd/pkg/errors"
)

type stubEngine struct {
	req    engine.Request
	calls  int
	png    []byte
	err    error
	closed bool
}

func (s *stubEngine) Rasterize(ctx context.Context, req engine.Request) ([]byte, error) {
	s.calls++
	s.req = req
	return s.png, s.err
}

func (s *stubEngine) Close() { s.closed = true }

// fakeKroki answers every conversion with the given SVG, or status/body
// when status is non-zero.
func fakeKroki(t *testing.T, svg string, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if status != 0 {
			w.WriteHeader(status)
			io.WriteString(w, body)
			return
		}
		w.Header().Set("Content-Type", "image/svg+xml")
		io.WriteString(w, svg)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestRenderer(t *testing.T, krokiURL string) (*Renderer, *stubEngine) {
	t.Helper()
	cfg := config.Default()
	cfg.KrokiURL = krokiURL
	cfg.FontsDir = t.TempDir()
	cfg.FontMap = "Virgil:Excalifont"

	r, err := New(cfg, log.NewWithOptions(io.Discard, log.Options{}))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	stub := &stubEngine{png: []byte("png-bytes")}
	r.SetRasterizer(stub)
	return r, stub
}

func TestRenderSVG(t *testing.T) {
	srv := fakeKroki(t, `<svg width="100" height="50"><text font-family="Virgil">hi</text></svg>`, 0, "")
	r, _ := newTestRenderer(t, srv.URL)

	out, err := r.RenderSVG(context.Background(), "{}", "")
	if err != nil {
		t.Fatalf("RenderSVG() error: %v", err)
	}
	if !strings.Contains(string(out), `font-family="Excalifont"`) {
		t.Errorf("default font map not applied: %s", out)
	}
	if strings.Contains(string(out), `font-family="Virgil"`) {
		t.Errorf("original family still present: %s", out)
	}
}

func TestRenderSVGPerRequestFontMapWins(t *testing.T) {
	srv := fakeKroki(t, `<svg><text font-family="Virgil">hi</text></svg>`, 0, "")
	r, _ := newTestRenderer(t, srv.URL)

	out, err := r.RenderSVG(context.Background(), "{}", "Virgil:Comic Sans MS")
	if err != nil {
		t.Fatalf("RenderSVG() error: %v", err)
	}
	if !strings.Contains(string(out), `font-family="Comic Sans MS"`) {
		t.Errorf("per-request override not applied: %s", out)
	}
}

func TestRenderSVGUpstreamError(t *testing.T) {
	srv := fakeKroki(t, "", http.StatusUnprocessableEntity, "bad diagram")
	r, _ := newTestRenderer(t, srv.URL)

	_, err := r.RenderSVG(context.Background(), "{}", "")
	if !errors.Is(err, errors.ErrCodeUpstream) {
		t.Fatalf("error code = %v, want UPSTREAM_ERROR", errors.GetCode(err))
	}
}

func TestRenderPNG(t *testing.T) {
	srv := fakeKroki(t, `<svg width="200" height="100"><rect/></svg>`, 0, "")
	r, stub := newTestRenderer(t, srv.URL)

	opts := Options{DPI: 96, Zoom: 1, Width: 500, Background: "#fff"}
	png, err := r.RenderPNG(context.Background(), "{}", "", opts)
	if err != nil {
		t.Fatalf("RenderPNG() error: %v", err)
	}
	if string(png) != "png-bytes" {
		t.Errorf("RenderPNG() = %q", png)
	}

	if stub.req.Width != 500 || stub.req.Height != 250 {
		t.Errorf("engine size = %dx%d, want 500x250", stub.req.Width, stub.req.Height)
	}
	if stub.req.Background != "#fff" || stub.req.Transparent {
		t.Errorf("engine presentation = %+v", stub.req)
	}
}

func TestRenderPNGTransparent(t *testing.T) {
	srv := fakeKroki(t, `<svg width="10" height="10"/>`, 0, "")
	r, stub := newTestRenderer(t, srv.URL)

	_, err := r.RenderPNG(context.Background(), "{}", "", Options{DPI: 96, Zoom: 2, Transparent: true, Background: "white"})
	if err != nil {
		t.Fatal(err)
	}
	if !stub.req.Transparent {
		t.Error("transparency flag not forwarded to engine")
	}
	if stub.req.Width != 20 || stub.req.Height != 20 {
		t.Errorf("engine size = %dx%d, want 20x20 (zoom 2)", stub.req.Width, stub.req.Height)
	}
}

func TestRenderPNGBadMarkup(t *testing.T) {
	srv := fakeKroki(t, `<html>not svg</html>`, 0, "")
	r, stub := newTestRenderer(t, srv.URL)

	_, err := r.RenderPNG(context.Background(), "{}", "", DefaultOptions(config.Default()))
	if !errors.Is(err, errors.ErrCodeInvalidMarkup) {
		t.Fatalf("error code = %v, want INVALID_MARKUP", errors.GetCode(err))
	}
	if stub.calls != 0 {
		t.Error("engine invoked despite unusable markup")
	}
}

func TestHealthOK(t *testing.T) {
	srv := fakeKroki(t, `<svg width="100" height="100"/>`, 0, "")
	r, _ := newTestRenderer(t, srv.URL)

	report := r.Health(context.Background())
	if !report.Healthy() {
		t.Fatalf("Health() = %+v, want ok", report)
	}
	if report.Checks.Kroki != CheckOK || report.Checks.Rasterizer != CheckOK {
		t.Errorf("checks = %+v", report.Checks)
	}
	if report.KrokiURL != srv.URL {
		t.Errorf("KrokiURL = %q, want %q", report.KrokiURL, srv.URL)
	}
}

func TestHealthKrokiDown(t *testing.T) {
	srv := fakeKroki(t, "", 0, "")
	url := srv.URL
	srv.Close()

	r, stub := newTestRenderer(t, url)
	report := r.Health(context.Background())

	if report.Healthy() {
		t.Fatal("Health() reports ok with kroki down")
	}
	if report.Checks.Kroki != CheckFailed {
		t.Errorf("kroki check = %s, want failed", report.Checks.Kroki)
	}
	if report.Checks.Rasterizer != CheckUnknown {
		t.Errorf("rasterizer check = %s, want unknown (stage never reached)", report.Checks.Rasterizer)
	}
	if report.Message == "" {
		t.Error("failure report carries no message")
	}
	if stub.calls != 0 {
		t.Error("rasterizer invoked after conversion failure")
	}
}

func TestHealthRasterizerFailure(t *testing.T) {
	srv := fakeKroki(t, `<svg width="10" height="10"/>`, 0, "")
	r, stub := newTestRenderer(t, srv.URL)
	stub.err = errors.New(errors.ErrCodeRaster, "tab crashed")
	stub.png = nil

	report := r.Health(context.Background())
	if report.Healthy() {
		t.Fatal("Health() reports ok with failing rasterizer")
	}
	if report.Checks.Kroki != CheckOK || report.Checks.Rasterizer != CheckFailed {
		t.Errorf("checks = %+v", report.Checks)
	}
}

func TestHealthEmptyImage(t *testing.T) {
	srv := fakeKroki(t, `<svg width="10" height="10"/>`, 0, "")
	r, stub := newTestRenderer(t, srv.URL)
	stub.png = []byte{}

	report := r.Health(context.Background())
	if report.Healthy() {
		t.Fatal("Health() reports ok for an empty image")
	}
	if report.Checks.Rasterizer != CheckFailed {
		t.Errorf("rasterizer check = %s, want failed", report.Checks.Rasterizer)
	}
}

func TestClose(t *testing.T) {
	srv := fakeKroki(t, "<svg/>", 0, "")
	r, stub := newTestRenderer(t, srv.URL)
	r.Close()
	if !stub.closed {
		t.Error("Close() did not release the engine")
	}
}
