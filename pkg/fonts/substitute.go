package fonts

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// RewriteMarkup replaces font-family references in converter-produced SVG
// text according to fontMap. For every (from, to) pair the two literal
// attribute shapes the converter emits are rewritten:
//
//	font-family="from"    (single family)
//	font-family="from,    (head of a family list)
//
// This is a textual substitution contract, not a markup parse: the converter
// quotes font-family attributes in exactly these forms, and both patterns
// must be preserved byte-for-byte for compatibility. Markup that uses other
// quoting is passed through unchanged.
//
// Keys are applied in sorted order so output is deterministic for a given
// map regardless of map iteration order.
func RewriteMarkup(svg string, fontMap map[string]string) string {
	for _, from := range slices.Sorted(maps.Keys(fontMap)) {
		to := fontMap[from]
		svg = strings.ReplaceAll(svg, `font-family="`+from+`,`, `font-family="`+to+`,`)
		svg = strings.ReplaceAll(svg, `font-family="`+from+`"`, `font-family="`+to+`"`)
	}
	return svg
}

// FontFaceRules builds the @font-face CSS block for the substitution targets
// of fontMap that are present in the registry. Target families without a
// registry entry are assumed to be resolvable by the rendering engine itself
// and are silently skipped. Returns "" when no rule applies.
func FontFaceRules(fontMap map[string]string, reg Registry) string {
	targets := make(map[string]bool, len(fontMap))
	for _, to := range fontMap {
		targets[to] = true
	}

	var rules []string
	for _, family := range slices.Sorted(maps.Keys(targets)) {
		for _, v := range reg[family] {
			rules = append(rules, fmt.Sprintf(
				`@font-face { font-family: %q; src: url(data:%s;base64,%s) format(%q); font-weight: %s; font-style: %s; }`,
				family, v.MIME, v.Data, v.Format, v.Weight, v.Style))
		}
	}
	return strings.Join(rules, "\n")
}

// MergeFontMap parses perRequest as comma-separated "from:to" pairs and
// overlays them onto a copy of defaults. The first colon delimits the pair;
// entries with an empty from or to after trimming are dropped. Per-request
// entries win on key collision.
func MergeFontMap(defaults map[string]string, perRequest string) map[string]string {
	merged := maps.Clone(defaults)
	if merged == nil {
		merged = map[string]string{}
	}

	for entry := range strings.SplitSeq(perRequest, ",") {
		from, to, ok := strings.Cut(entry, ":")
		if !ok {
			continue
		}
		from = strings.TrimSpace(from)
		to = strings.TrimSpace(to)
		if from == "" || to == "" {
			continue
		}
		merged[from] = to
	}
	return merged
}
