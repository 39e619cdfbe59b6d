package engine

import (
	"bytes"
	"fmt"
)

// composePage wraps the markup in a minimal HTML shell: the font-face rules,
// a container sized exactly to the output dimensions, and the requested
// background. The markup is embedded verbatim as body content.
func composePage(req Request) string {
	background := req.Background
	if req.Transparent {
		background = "transparent"
	}

	var buf bytes.Buffer
	buf.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<style>\n")
	if req.FontCSS != "" {
		buf.WriteString(req.FontCSS)
		buf.WriteString("\n")
	}
	fmt.Fprintf(&buf, "html, body { margin: 0; padding: 0; background: %s; }\n", background)
	fmt.Fprintf(&buf, "#diagram { width: %dpx; height: %dpx; }\n", req.Width, req.Height)
	buf.WriteString("#diagram svg { width: 100%; height: 100%; }\n")
	buf.WriteString("</style>\n</head>\n<body>\n<div id=\"diagram\">")
	buf.WriteString(req.Markup)
	buf.WriteString("</div>\n</body>\n</html>\n")
	return buf.String()
}
