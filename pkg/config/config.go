// Package config holds the process-wide gateway configuration.
//
// Configuration is resolved once at startup from three layers, later layers
// winning: built-in defaults, an optional TOML file, and environment
// variables. The resulting Config is passed by value to component
// constructors; nothing reads the environment after startup.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/rasterd/pkg/errors"
)

// Defaults applied before the file and environment layers.
const (
	DefaultPort             = 8080
	DefaultKrokiURL         = "http://localhost:8000"
	DefaultBodyLimit        = 4 << 20 // 4 MiB
	DefaultRequestTimeoutMS = 30_000
	DefaultDPI              = 96
	DefaultZoom             = 1.0
	DefaultWidth            = 1280
	DefaultBackground       = "white"
	DefaultFontsDir         = "fonts"
)

// Config is the resolved gateway configuration.
type Config struct {
	// Port is the HTTP listening port.
	Port int `toml:"port"`

	// KrokiURL is the conversion-service base URL, without trailing slash.
	KrokiURL string `toml:"kroki_url"`

	// BodyLimit is the maximum request body size in bytes.
	BodyLimit int64 `toml:"body_limit"`

	// RequestTimeoutMS bounds each outbound wait (conversion call, page
	// load, screenshot capture) in milliseconds.
	RequestTimeoutMS int `toml:"request_timeout_ms"`

	// DefaultDPI and DefaultZoom drive raster scaling when the caller
	// supplies no sizing directives.
	DefaultDPI  int     `toml:"default_dpi"`
	DefaultZoom float64 `toml:"default_zoom"`

	// DefaultWidth is the display-oriented output width injected when the
	// caller supplied neither width, height, dpi nor zoom.
	DefaultWidth int `toml:"default_width"`

	// DefaultBackground is the page background when the caller supplies
	// none and transparency is off.
	DefaultBackground string `toml:"default_background"`

	// ChromePath overrides the rendering-engine executable. Empty means
	// let the driver find a system Chrome/Chromium.
	ChromePath string `toml:"chrome_path"`

	// FontsDir is the custom-fonts directory holding fonts.json plus the
	// referenced font binaries.
	FontsDir string `toml:"fonts_dir"`

	// FontMap is the process-wide default font substitution map, in
	// "from:to,from:to" form.
	FontMap string `toml:"font_map"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Port:              DefaultPort,
		KrokiURL:          DefaultKrokiURL,
		BodyLimit:         DefaultBodyLimit,
		RequestTimeoutMS:  DefaultRequestTimeoutMS,
		DefaultDPI:        DefaultDPI,
		DefaultZoom:       DefaultZoom,
		DefaultWidth:      DefaultWidth,
		DefaultBackground: DefaultBackground,
		FontsDir:          DefaultFontsDir,
	}
}

// Load resolves the configuration: defaults, then the TOML file at path
// (skipped when path is empty), then environment variables.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}

	cfg.KrokiURL = strings.TrimRight(cfg.KrokiURL, "/")

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// RequestTimeout returns the outbound-wait deadline as a duration.
func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMS) * time.Millisecond
}

// Addr returns the listen address for the HTTP server.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate checks configuration invariants.
func (c Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return errors.New(errors.ErrCodeInvalidParameter, "port out of range: %d", c.Port)
	}
	if err := errors.ValidateUpstreamURL(c.KrokiURL); err != nil {
		return err
	}
	if c.BodyLimit <= 0 {
		return errors.New(errors.ErrCodeInvalidParameter, "body limit must be positive, got %d", c.BodyLimit)
	}
	if c.RequestTimeoutMS <= 0 {
		return errors.New(errors.ErrCodeInvalidParameter, "request timeout must be positive, got %dms", c.RequestTimeoutMS)
	}
	if c.DefaultDPI <= 0 {
		return errors.New(errors.ErrCodeInvalidParameter, "default dpi must be positive, got %d", c.DefaultDPI)
	}
	if c.DefaultZoom <= 0 {
		return errors.New(errors.ErrCodeInvalidParameter, "default zoom must be positive, got %g", c.DefaultZoom)
	}
	if c.DefaultWidth <= 0 {
		return errors.New(errors.ErrCodeInvalidParameter, "default width must be positive, got %d", c.DefaultWidth)
	}
	if err := errors.ValidateBackground(c.DefaultBackground); err != nil {
		return err
	}
	return nil
}

// applyEnv overlays environment variables onto the config.
func (c *Config) applyEnv() error {
	var err error
	setInt := func(key string, dst *int) {
		if err != nil {
			return
		}
		if v := os.Getenv(key); v != "" {
			n, convErr := strconv.Atoi(v)
			if convErr != nil {
				err = fmt.Errorf("invalid %s: %q", key, v)
				return
			}
			*dst = n
		}
	}
	setString := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}

	setInt("PORT", &c.Port)
	setInt("REQUEST_TIMEOUT_MS", &c.RequestTimeoutMS)
	setInt("DEFAULT_DPI", &c.DefaultDPI)
	setInt("DEFAULT_WIDTH", &c.DefaultWidth)

	if v := os.Getenv("BODY_LIMIT"); v != "" && err == nil {
		n, convErr := strconv.ParseInt(v, 10, 64)
		if convErr != nil {
			err = fmt.Errorf("invalid BODY_LIMIT: %q", v)
		} else {
			c.BodyLimit = n
		}
	}
	if v := os.Getenv("DEFAULT_ZOOM"); v != "" && err == nil {
		f, convErr := strconv.ParseFloat(v, 64)
		if convErr != nil {
			err = fmt.Errorf("invalid DEFAULT_ZOOM: %q", v)
		} else {
			c.DefaultZoom = f
		}
	}

	setString("KROKI_URL", &c.KrokiURL)
	setString("DEFAULT_BACKGROUND", &c.DefaultBackground)
	setString("CHROME_PATH", &c.ChromePath)
	setString("FONTS_DIR", &c.FontsDir)
	setString("FONT_MAP", &c.FontMap)

	return err
}
