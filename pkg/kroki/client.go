// Package kroki implements the client for the external diagram-to-SVG
// conversion service.
//
// The gateway treats diagram documents as opaque text: the document body is
// POSTed to the Kroki-compatible upstream as-is and the returned SVG markup
// is passed downstream. Transport and service failures are normalized into
// the gateway's structured error codes so the HTTP layer can map them to
// 502/504 responses.
package kroki

import (
	"context"
	stderrors "errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/matzehuels/rasterd/pkg/errors"
)

// convertPath is the upstream endpoint for Excalidraw documents. Kroki
// routes by diagram type and output format in the URL path.
const convertPath = "/excalidraw/svg"

// maxErrorBody caps how much of an upstream error body is echoed back.
const maxErrorBody = 4 << 10

// Client converts diagram documents to SVG via the upstream service.
type Client struct {
	baseURL string
	timeout time.Duration
	http    *http.Client
}

// New creates a Client for the given base URL. Each conversion is bounded
// by timeout, enforced through context cancellation of the in-flight call.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		http:    &http.Client{},
	}
}

// BaseURL returns the configured upstream base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Convert POSTs the diagram document to the conversion service and returns
// the SVG markup. Failures are classified as:
//   - UPSTREAM_TIMEOUT when the bounded wait elapsed
//   - UPSTREAM_ERROR when the service answered with a non-success status
//     (the message carries the status code and response body)
//   - UPSTREAM_UNREACHABLE for any other transport failure
func (c *Client) Convert(ctx context.Context, document string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+convertPath, strings.NewReader(document))
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "build conversion request")
	}
	req.Header.Set("Content-Type", "text/plain")
	req.Header.Set("Accept", "image/svg+xml")

	resp, err := c.http.Do(req)
	if err != nil {
		if stderrors.Is(err, context.DeadlineExceeded) {
			return "", errors.New(errors.ErrCodeUpstreamTimeout,
				"conversion service did not answer within %s", c.timeout)
		}
		return "", errors.Wrap(errors.ErrCodeUpstreamUnreachable, err,
			"conversion service unreachable at %s", c.baseURL)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return "", errors.New(errors.ErrCodeUpstream,
			"conversion service returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	svg, err := io.ReadAll(resp.Body)
	if err != nil {
		if stderrors.Is(err, context.DeadlineExceeded) {
			return "", errors.New(errors.ErrCodeUpstreamTimeout,
				"conversion service did not answer within %s", c.timeout)
		}
		return "", errors.Wrap(errors.ErrCodeUpstreamUnreachable, err, "read conversion response")
	}
	return string(svg), nil
}
