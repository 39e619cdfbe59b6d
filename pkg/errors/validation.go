package errors

import (
	"regexp"
	"strings"
)

// ValidateUpstreamURL validates the conversion-service base URL.
// It ensures the URL has a safe scheme (http or https).
func ValidateUpstreamURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidParameter, "upstream URL cannot be empty")
	}

	// Simple scheme validation without full URL parsing
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidParameter, "upstream URL must use http or https scheme")
	}

	return nil
}

// hexColorRegex matches # followed by 3, 4, 6 or 8 hex digits.
var hexColorRegex = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{4}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)

// cssIdentRegex matches bare CSS-identifier-shaped color names ("white",
// "lightsteelblue"). The value is interpolated into a style sheet, so
// anything outside this shape is rejected rather than escaped.
var cssIdentRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9-]*$`)

// ValidateBackground validates a background color value.
// Accepted forms: hex triplet/quad/sextet/octet (#fff, #1971c2, #ffffffff)
// or a bare CSS color name.
func ValidateBackground(value string) error {
	if value == "" {
		return New(ErrCodeInvalidParameter, "background cannot be empty")
	}
	if hexColorRegex.MatchString(value) || cssIdentRegex.MatchString(value) {
		return nil
	}
	return New(ErrCodeInvalidParameter, "invalid background color: %q", value)
}
