// Package engine manages the long-lived headless-browser process used to
// rasterize SVG markup.
//
// A single browser process is launched lazily on the first render and reused
// by all requests; the underlying engine supports many simultaneous pages.
// Each render call gets an isolated short-lived tab that is closed on every
// exit path. Launching is single-flight: concurrent first requests share one
// launch attempt and its outcome, and a failed launch may be retried by a
// later request.
package engine

import (
	"context"
	"encoding/base64"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/chromedp"
	"golang.org/x/sync/singleflight"

	"github.com/matzehuels/rasterd/pkg/errors"
)

// Request describes one rasterization: markup plus its resolved presentation.
type Request struct {
	Markup      string // converted (and font-rewritten) SVG text
	Width       int    // output width in pixels, >= 1
	Height      int    // output height in pixels, >= 1
	Transparent bool   // omit the page background entirely
	Background  string // CSS background when not transparent
	FontCSS     string // @font-face rules to embed, may be empty
}

// Manager owns the shared browser process.
type Manager struct {
	timeout time.Duration
	logger  *log.Logger

	// launch starts a browser and returns its root context plus a shutdown
	// func. Overridable in tests.
	launch func() (context.Context, func(), error)

	group singleflight.Group

	mu       sync.Mutex
	browser  context.Context
	shutdown func()
}

// New creates a Manager. execPath overrides the browser executable; empty
// lets the driver locate a system Chrome/Chromium. timeout bounds each page
// load and capture.
func New(execPath string, timeout time.Duration, logger *log.Logger) *Manager {
	if logger == nil {
		logger = log.Default()
	}
	m := &Manager{
		timeout: timeout,
		logger:  logger,
	}
	m.launch = func() (context.Context, func(), error) {
		return launchBrowser(execPath)
	}
	return m
}

// launchBrowser starts a headless browser and verifies it is reachable.
func launchBrowser(execPath string) (context.Context, func(), error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox,
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("hide-scrollbars", true),
		chromedp.Flag("force-color-profile", "srgb"),
	)
	if execPath != "" {
		opts = append(opts, chromedp.ExecPath(execPath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)

	// Run with no actions forces the process to start now, so launch
	// failures surface here instead of on the first render action.
	if err := chromedp.Run(browserCtx); err != nil {
		cancelBrowser()
		cancelAlloc()
		return nil, nil, err
	}

	shutdown := func() {
		cancelBrowser()
		cancelAlloc()
	}
	return browserCtx, shutdown, nil
}

// ensure returns the shared browser context, launching it on first use.
// Concurrent callers during launch share a single attempt and its result.
func (m *Manager) ensure() (context.Context, error) {
	m.mu.Lock()
	browser := m.browser
	m.mu.Unlock()
	if browser != nil {
		return browser, nil
	}

	v, err, _ := m.group.Do("launch", func() (any, error) {
		m.mu.Lock()
		browser := m.browser
		m.mu.Unlock()
		if browser != nil {
			return browser, nil
		}

		start := time.Now()
		browser, shutdown, err := m.launch()
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeEngineLaunch, err, "launch rendering engine")
		}
		m.logger.Info("rendering engine launched", "duration", time.Since(start).Round(time.Millisecond))

		m.mu.Lock()
		m.browser = browser
		m.shutdown = shutdown
		m.mu.Unlock()
		return browser, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(context.Context), nil
}

// Rasterize renders the request to PNG bytes. A fresh tab is created for
// the call and closed on every exit path; its page load and screenshot are
// bounded by the manager's timeout.
func (m *Manager) Rasterize(ctx context.Context, req Request) ([]byte, error) {
	browser, err := m.ensure()
	if err != nil {
		return nil, err
	}

	tab, closeTab := chromedp.NewContext(browser)
	defer closeTab()

	tabCtx, cancel := context.WithTimeout(tab, m.timeout)
	defer cancel()

	// Stop waiting on the tab if the inbound request goes away.
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	page := composePage(req)
	url := "data:text/html;base64," + base64.StdEncoding.EncodeToString([]byte(page))

	actions := []chromedp.Action{
		chromedp.EmulateViewport(int64(req.Width), int64(req.Height), chromedp.EmulateScale(1)),
	}
	if req.Transparent {
		actions = append(actions,
			emulation.SetDefaultBackgroundColorOverride().WithColor(&cdp.RGBA{R: 0, G: 0, B: 0, A: 0}))
	}
	var shot []byte
	actions = append(actions,
		chromedp.Navigate(url),
		chromedp.CaptureScreenshot(&shot),
	)

	if err := chromedp.Run(tabCtx, actions...); err != nil {
		return nil, errors.Wrap(errors.ErrCodeRaster, err, "rasterize %dx%d page", req.Width, req.Height)
	}
	return shot, nil
}

// Close shuts the browser process down if it was launched.
func (m *Manager) Close() {
	m.mu.Lock()
	shutdown := m.shutdown
	m.browser = nil
	m.shutdown = nil
	m.mu.Unlock()
	if shutdown != nil {
		shutdown()
	}
}
