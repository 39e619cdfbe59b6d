package server

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/matzehuels/rasterd/pkg/config"
	"github.com/matzehuels/rasterd/pkg/errors"
	"github.com/matzehuels/rasterd/pkg/pipeline"
)

// parseOptions resolves the PNG query parameters against the configured
// defaults. When the request carries no sizing directive at all, the
// configured default width is injected so output size never degrades to the
// bare zoom/dpi baseline.
func parseOptions(q url.Values, cfg config.Config) (pipeline.Options, error) {
	opts := pipeline.Options{
		DPI:        cfg.DefaultDPI,
		Zoom:       cfg.DefaultZoom,
		Background: cfg.DefaultBackground,
	}

	sized := false
	if v := q.Get("width"); v != "" {
		n, err := parsePositiveInt("width", v)
		if err != nil {
			return opts, err
		}
		opts.Width = n
		sized = true
	}
	if v := q.Get("height"); v != "" {
		n, err := parsePositiveInt("height", v)
		if err != nil {
			return opts, err
		}
		opts.Height = n
		sized = true
	}
	if v := q.Get("dpi"); v != "" {
		n, err := parsePositiveInt("dpi", v)
		if err != nil {
			return opts, err
		}
		opts.DPI = n
		sized = true
	}
	if v := q.Get("zoom"); v != "" {
		z, err := strconv.ParseFloat(v, 64)
		if err != nil || z <= 0 {
			return opts, errors.New(errors.ErrCodeInvalidParameter,
				"invalid zoom %q: must be a positive number", v)
		}
		opts.Zoom = z
		sized = true
	}
	if !sized {
		opts.Width = cfg.DefaultWidth
	}

	if v := q.Get("transparent"); v != "" {
		b, err := parseBool("transparent", v)
		if err != nil {
			return opts, err
		}
		opts.Transparent = b
	}
	if v := q.Get("background"); v != "" {
		if err := errors.ValidateBackground(v); err != nil {
			return opts, err
		}
		opts.Background = v
	}

	return opts, nil
}

func parsePositiveInt(name, value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return 0, errors.New(errors.ErrCodeInvalidParameter,
			"invalid %s %q: must be a positive integer", name, value)
	}
	return n, nil
}

// parseBool accepts the common boolean spellings case-insensitively.
func parseBool(name, value string) (bool, error) {
	switch strings.ToLower(value) {
	case "true", "yes", "y", "1":
		return true, nil
	case "false", "no", "n", "0":
		return false, nil
	}
	return false, errors.New(errors.ErrCodeInvalidParameter,
		"invalid %s %q: must be a boolean", name, value)
}
