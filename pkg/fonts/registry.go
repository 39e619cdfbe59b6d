// Package fonts provides custom font loading and font-family substitution
// for converter-produced SVG markup.
//
// Custom fonts are described by a fonts.json manifest mapping a CSS family
// name to one or more variant files. Font bytes are read once at startup and
// retained base64-encoded so they can be embedded as @font-face data URIs in
// the rasterizer's HTML shell.
package fonts

import (
	"encoding/base64"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
)

// manifestName is the registry manifest filename inside the fonts directory.
const manifestName = "fonts.json"

// Variant is a single loadable font file for a family.
type Variant struct {
	Data   string // base64-encoded font bytes
	MIME   string // data URI media type
	Format string // CSS @font-face format() token
	Weight string // CSS font-weight
	Style  string // CSS font-style
}

// Registry maps a font family name to its loaded variants.
// It is populated once at startup and read-only afterwards, so it is safe
// for unsynchronized concurrent reads.
type Registry map[string][]Variant

// manifestVariant is the on-disk shape of a variant descriptor.
type manifestVariant struct {
	File   string `json:"file"`
	Weight string `json:"weight,omitempty"`
	Style  string `json:"style,omitempty"`
}

// formatByExt maps supported font file extensions to their MIME type and
// @font-face format() token.
var formatByExt = map[string]struct{ mime, format string }{
	".woff2": {"font/woff2", "woff2"},
	".woff":  {"font/woff", "woff"},
	".otf":   {"font/otf", "opentype"},
	".ttf":   {"font/ttf", "truetype"},
}

// Load reads the fonts.json manifest from dir and loads every referenced
// font file. A missing manifest yields an empty registry: the gateway still
// serves renders that need no custom fonts. Variants with an unsupported
// extension or an unreadable file are skipped with a warning; loading never
// aborts the process.
func Load(dir string, logger *log.Logger) (Registry, error) {
	if logger == nil {
		logger = log.Default()
	}

	raw, err := os.ReadFile(filepath.Join(dir, manifestName))
	if os.IsNotExist(err) {
		logger.Debug("no font manifest, custom fonts disabled", "dir", dir)
		return Registry{}, nil
	}
	if err != nil {
		return nil, err
	}

	var manifest map[string][]manifestVariant
	if err := json.Unmarshal(raw, &manifest); err != nil {
		return nil, err
	}

	reg := make(Registry, len(manifest))
	for family, variants := range manifest {
		for _, mv := range variants {
			ext := strings.ToLower(filepath.Ext(mv.File))
			ft, ok := formatByExt[ext]
			if !ok {
				logger.Warn("skipping font with unsupported extension", "family", family, "file", mv.File)
				continue
			}

			data, err := os.ReadFile(filepath.Join(dir, mv.File))
			if err != nil {
				logger.Warn("skipping unreadable font file", "family", family, "file", mv.File, "err", err)
				continue
			}

			weight := mv.Weight
			if weight == "" {
				weight = "normal"
			}
			style := mv.Style
			if style == "" {
				style = "normal"
			}

			reg[family] = append(reg[family], Variant{
				Data:   base64.StdEncoding.EncodeToString(data),
				MIME:   ft.mime,
				Format: ft.format,
				Weight: weight,
				Style:  style,
			})
		}
		if len(reg[family]) > 0 {
			logger.Info("loaded font family", "family", family, "variants", len(reg[family]))
		}
	}

	return reg, nil
}
