package capture

import (
	"context"
	"fmt"
	"strings"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"
	"github.com/shirou/gopsutil/v3/process"

	"github.com/jiviteshreddy44-netizen/deepscan/pkg/logger"
	"github.com/jiviteshreddy44-netizen/deepscan/pkg/models"
)

// browserProcessNames identifies Chromium-family browsers in the process
// table for the preflight check.
var browserProcessNames = []string{
	"chrome", "chromium", "msedge", "brave", "opera", "vivaldi",
}

// TabSource captures a single still frame of the active tab of a running
// Chromium-family browser over the DevTools protocol. The browser must be
// started with --remote-debugging-port so the DevTools endpoint is reachable.
type TabSource struct {
	DevToolsURL string
	Quality     int
}

// NewTabSource creates a DevTools-backed frame source
func NewTabSource(devToolsURL string, quality int) *TabSource {
	return &TabSource{DevToolsURL: devToolsURL, Quality: quality}
}

// Name returns the source name
func (s *TabSource) Name() string { return "tab" }

// Capture screenshots the active tab as a JPEG at the configured quality and
// returns it as a data URL.
func (s *TabSource) Capture(ctx context.Context) (string, error) {
	s.preflight(ctx)

	allocCtx, cancelAlloc := chromedp.NewRemoteAllocator(ctx, s.DevToolsURL)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	targets, err := chromedp.Targets(browserCtx)
	if err != nil {
		return "", fmt.Errorf("failed to reach DevTools at %s (start the browser with --remote-debugging-port): %w", s.DevToolsURL, err)
	}

	info := activePage(targets)
	if info == nil {
		return "", fmt.Errorf("no active tab found")
	}
	logger.Debug("capturing tab", "url", info.URL, "title", info.Title)

	tabCtx, cancelTab := chromedp.NewContext(browserCtx, chromedp.WithTargetID(info.TargetID))
	defer cancelTab()

	var frame []byte
	err = chromedp.Run(tabCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		var captureErr error
		frame, captureErr = page.CaptureScreenshot().
			WithFormat(page.CaptureScreenshotFormatJpeg).
			WithQuality(int64(s.Quality)).
			Do(ctx)
		return captureErr
	}))
	if err != nil {
		return "", fmt.Errorf("screenshot capture failed: %w", err)
	}
	if len(frame) == 0 {
		return "", fmt.Errorf("browser returned an empty screenshot")
	}

	return models.JPEGDataURL(frame), nil
}

// preflight checks the process table so a dead browser produces a clearer
// message than a connection refusal. Advisory only: a scan against a remote
// DevTools endpoint still proceeds.
func (s *TabSource) preflight(ctx context.Context) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		logger.Debug("process preflight unavailable", "err", err)
		return
	}
	for _, p := range procs {
		name, err := p.NameWithContext(ctx)
		if err != nil {
			continue
		}
		name = strings.ToLower(name)
		for _, known := range browserProcessNames {
			if strings.Contains(name, known) {
				return
			}
		}
	}
	logger.Warn("no Chromium-family browser process found; capture will likely fail",
		"devtools_url", s.DevToolsURL)
}

// activePage picks the tab the browser reports first, which is the most
// recently focused page. Internal surfaces (devtools, settings, extensions)
// are never the scan subject.
func activePage(targets []*target.Info) *target.Info {
	for _, t := range targets {
		if t.Type != "page" {
			continue
		}
		if strings.HasPrefix(t.URL, "devtools://") ||
			strings.HasPrefix(t.URL, "chrome://") ||
			strings.HasPrefix(t.URL, "chrome-extension://") {
			continue
		}
		return t
	}
	return nil
}
