package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/rasterd/pkg/config"
	"github.com/matzehuels/rasterd/pkg/errors"
	"github.com/matzehuels/rasterd/pkg/pipeline"
)

const (
	formatSVG = "svg"
	formatPNG = "png"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output      string  // output file path, derived from input when empty
	format      string  // "svg" or "png"
	width       int     // explicit output width in pixels
	height      int     // explicit output height in pixels
	dpi         int     // raster density
	zoom        float64 // scale factor
	transparent bool    // omit the page background
	background  string  // CSS background color
	fontMap     string  // extra substitutions in "from:to,from:to" form
}

// renderCommand creates the render command for one-shot conversions.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render a single diagram document to SVG or PNG",
		Long: `Render converts one diagram document and writes the result to a file.
Pass "-" to read the document from standard input.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd, args[0], opts)
		},
	}

	opts.bindFlags(cmd)

	return cmd
}

// bindFlags registers the render flags on cmd.
func (o *renderOpts) bindFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.output, "output", "o", "", "output file path")
	cmd.Flags().StringVarP(&o.format, "format", "f", formatPNG, "output format (svg, png)")
	cmd.Flags().IntVar(&o.width, "width", 0, "output width in pixels")
	cmd.Flags().IntVar(&o.height, "height", 0, "output height in pixels")
	cmd.Flags().IntVar(&o.dpi, "dpi", 0, "raster density (96 = intrinsic size)")
	cmd.Flags().Float64Var(&o.zoom, "zoom", 0, "scale factor")
	cmd.Flags().BoolVar(&o.transparent, "transparent", false, "render with a transparent background")
	cmd.Flags().StringVar(&o.background, "background", "", "background color (hex or CSS name)")
	cmd.Flags().StringVar(&o.fontMap, "font-map", "", "font substitutions, e.g. \"Virgil:Excalifont\"")
}

func (c *CLI) runRender(cmd *cobra.Command, input string, opts renderOpts) error {
	if opts.format != formatSVG && opts.format != formatPNG {
		return errors.New(errors.ErrCodeInvalidParameter, "unsupported format %q", opts.format)
	}

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}

	document, err := readInput(input)
	if err != nil {
		return err
	}
	if strings.TrimSpace(document) == "" {
		return errors.New(errors.ErrCodeEmptyBody, "Empty request body")
	}

	renderer, err := pipeline.New(cfg, c.Logger)
	if err != nil {
		return err
	}
	defer renderer.Close()

	printInfo("Converting via %s", cfg.KrokiURL)

	track := newProgress(c.Logger)
	spinner := newSpinnerWithContext(cmd.Context(), fmt.Sprintf("rendering %s", opts.format))
	spinner.Start()

	var result []byte
	switch opts.format {
	case formatSVG:
		result, err = renderer.RenderSVG(cmd.Context(), document, opts.fontMap)
	case formatPNG:
		var pngOpts pipeline.Options
		pngOpts, err = opts.pipelineOptions(cmd, cfg)
		if err == nil {
			result, err = renderer.RenderPNG(cmd.Context(), document, opts.fontMap, pngOpts)
		}
	}
	if err != nil {
		if spinner.Cancelled() {
			spinner.Stop()
			return cmd.Context().Err()
		}
		spinner.StopWithError(errors.UserMessage(err))
		return err
	}
	spinner.Stop()

	path := opts.outputPath(input)
	if err := os.WriteFile(path, result, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	track.done(fmt.Sprintf("Rendered %d bytes", len(result)))
	printSuccess("Rendered %s", opts.format)
	printKeyValue("size", fmt.Sprintf("%d bytes", len(result)))
	printFile(path)
	return nil
}

// pipelineOptions resolves the raster options from flags and configuration.
// When no sizing flag was set, the configured default width is injected.
func (o renderOpts) pipelineOptions(cmd *cobra.Command, cfg config.Config) (pipeline.Options, error) {
	opts := pipeline.Options{
		DPI:         cfg.DefaultDPI,
		Zoom:        cfg.DefaultZoom,
		Transparent: o.transparent,
		Background:  cfg.DefaultBackground,
	}

	sized := false
	flags := cmd.Flags()
	if flags.Changed("width") {
		if o.width <= 0 {
			return opts, errors.New(errors.ErrCodeInvalidParameter, "width must be positive, got %d", o.width)
		}
		opts.Width = o.width
		sized = true
	}
	if flags.Changed("height") {
		if o.height <= 0 {
			return opts, errors.New(errors.ErrCodeInvalidParameter, "height must be positive, got %d", o.height)
		}
		opts.Height = o.height
		sized = true
	}
	if flags.Changed("dpi") {
		if o.dpi <= 0 {
			return opts, errors.New(errors.ErrCodeInvalidParameter, "dpi must be positive, got %d", o.dpi)
		}
		opts.DPI = o.dpi
		sized = true
	}
	if flags.Changed("zoom") {
		if o.zoom <= 0 {
			return opts, errors.New(errors.ErrCodeInvalidParameter, "zoom must be positive, got %v", o.zoom)
		}
		opts.Zoom = o.zoom
		sized = true
	}
	if !sized {
		opts.Width = cfg.DefaultWidth
	}

	if o.background != "" {
		if err := errors.ValidateBackground(o.background); err != nil {
			return opts, err
		}
		opts.Background = o.background
	}

	return opts, nil
}

// outputPath derives the output file path from the flags or the input name.
func (o renderOpts) outputPath(input string) string {
	if o.output != "" {
		return o.output
	}
	base := "diagram"
	if input != "-" {
		base = strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	}
	return base + "." + o.format
}

// readInput reads the diagram document from a file or standard input.
func readInput(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}
