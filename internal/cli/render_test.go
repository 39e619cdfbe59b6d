package cli

import (
	"testing"

	"github.com/spf13/cobra"

	"github.com/matzehuels/rasterd/pkg/config"
	"github.com/matzehuels/rasterd/pkg/errors"
)

// parseRenderFlags binds the render flags on a scratch command and applies
// the given raw flag values.
func parseRenderFlags(t *testing.T, raw map[string]string) (*cobra.Command, renderOpts) {
	t.Helper()
	var opts renderOpts
	cmd := &cobra.Command{}
	opts.bindFlags(cmd)
	for name, value := range raw {
		if err := cmd.Flags().Set(name, value); err != nil {
			t.Fatalf("set --%s=%s: %v", name, value, err)
		}
	}
	return cmd, opts
}

func TestPipelineOptionsDefaults(t *testing.T) {
	cmd, opts := parseRenderFlags(t, nil)

	got, err := opts.pipelineOptions(cmd, config.Default())
	if err != nil {
		t.Fatalf("pipelineOptions: %v", err)
	}
	if got.Width != config.DefaultWidth {
		t.Errorf("Width = %d, want injected default %d", got.Width, config.DefaultWidth)
	}
	if got.DPI != config.DefaultDPI || got.Zoom != config.DefaultZoom {
		t.Errorf("DPI/Zoom = %d/%v, want configured defaults", got.DPI, got.Zoom)
	}
	if got.Background != config.DefaultBackground {
		t.Errorf("Background = %q, want %q", got.Background, config.DefaultBackground)
	}
}

func TestPipelineOptionsExplicitSizing(t *testing.T) {
	cmd, opts := parseRenderFlags(t, map[string]string{"zoom": "2"})

	got, err := opts.pipelineOptions(cmd, config.Default())
	if err != nil {
		t.Fatalf("pipelineOptions: %v", err)
	}
	if got.Width != 0 {
		t.Errorf("Width = %d, want 0 when zoom drives sizing", got.Width)
	}
	if got.Zoom != 2 {
		t.Errorf("Zoom = %v, want 2", got.Zoom)
	}
}

func TestPipelineOptionsInvalid(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]string
	}{
		{"zero width", map[string]string{"width": "0"}},
		{"negative height", map[string]string{"height": "-5"}},
		{"zero dpi", map[string]string{"dpi": "0"}},
		{"negative zoom", map[string]string{"zoom": "-1"}},
		{"bad background", map[string]string{"background": "url(javascript:x)"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, opts := parseRenderFlags(t, tt.raw)
			_, err := opts.pipelineOptions(cmd, config.Default())
			if err == nil {
				t.Fatal("pipelineOptions succeeded, want error")
			}
			if !errors.Is(err, errors.ErrCodeInvalidParameter) {
				t.Errorf("error code = %s, want %s", errors.GetCode(err), errors.ErrCodeInvalidParameter)
			}
		})
	}
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		name  string
		opts  renderOpts
		input string
		want  string
	}{
		{"explicit output wins", renderOpts{output: "out.png", format: formatPNG}, "scene.json", "out.png"},
		{"derived from input", renderOpts{format: formatPNG}, "scenes/demo.json", "demo.png"},
		{"svg extension", renderOpts{format: formatSVG}, "demo.excalidraw", "demo.svg"},
		{"stdin fallback", renderOpts{format: formatPNG}, "-", "diagram.png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.opts.outputPath(tt.input); got != tt.want {
				t.Errorf("outputPath(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
