// Package scan drives the lifecycle of a single scan: idle, scanning, then
// completed or failed, and back to idle through an explicit reset. The
// controller owns the scan state; everything else only reads it.
package scan

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jiviteshreddy44-netizen/deepscan/pkg/analysis"
	"github.com/jiviteshreddy44-netizen/deepscan/pkg/capture"
	"github.com/jiviteshreddy44-netizen/deepscan/pkg/logger"
	"github.com/jiviteshreddy44-netizen/deepscan/pkg/models"
)

// Listener is notified with a copy of the state after every transition
type Listener func(models.ScanState)

// Controller orchestrates one scan at a time: it issues the capture request
// through the injected transport, forwards the frame to the analyzer, and is
// the only writer of the scan state. The capture round trip and the analysis
// call are strictly sequential; a frame is never analyzed unless capture
// succeeded, and a second scan cannot start while one is in flight.
type Controller struct {
	mu        sync.Mutex
	state     models.ScanState
	transport capture.Transport
	analyzer  analysis.Analyzer
	listener  Listener
}

// New creates a controller in the idle state
func New(transport capture.Transport, analyzer analysis.Analyzer) *Controller {
	return &Controller{
		transport: transport,
		analyzer:  analyzer,
		state:     models.ScanState{Phase: models.PhaseIdle},
	}
}

// SetListener registers the state-change callback
func (c *Controller) SetListener(l Listener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listener = l
}

// State returns a snapshot of the current scan state
func (c *Controller) State() models.ScanState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// StartScan runs one full scan: capture, then analysis. Valid from idle or a
// terminal state; while a scan is already in flight the call is ignored and
// no second capture request is issued. Returns whether a scan was started.
// The call blocks until the scan reaches a terminal state.
func (c *Controller) StartScan(ctx context.Context) bool {
	c.mu.Lock()
	if c.state.Phase == models.PhaseScanning {
		c.mu.Unlock()
		logger.Debug("scan already in flight, ignoring start request")
		return false
	}
	scanID := uuid.NewString()
	c.state = models.ScanState{
		Phase:     models.PhaseScanning,
		ScanID:    scanID,
		StartedAt: time.Now(),
	}
	c.mu.Unlock()
	c.notify()

	logger.Info("scan started", "scan_id", scanID)

	resp, err := c.transport.Send(ctx, models.NewCaptureRequest())
	c.onCaptureResult(ctx, scanID, resp, err)
	return true
}

// Reset returns the controller to idle. Valid from completed or failed;
// a reset while idle or scanning is ignored.
func (c *Controller) Reset() bool {
	c.mu.Lock()
	if !c.state.Phase.Terminal() {
		c.mu.Unlock()
		return false
	}
	c.state = models.ScanState{Phase: models.PhaseIdle}
	c.mu.Unlock()
	c.notify()
	return true
}

// onCaptureResult consumes the single capture response. A capture failure
// ends the scan immediately; analysis never runs without a captured frame.
func (c *Controller) onCaptureResult(ctx context.Context, scanID string, resp models.CaptureResponse, err error) {
	if err != nil {
		// The transport itself failed to deliver; the relay never does
		// this, but a custom transport might.
		c.fail(scanID, models.NewCaptureError(err.Error()))
		return
	}
	if resp.Error != "" {
		c.fail(scanID, models.NewCaptureError(resp.Error))
		return
	}

	frame, err := resp.Frame()
	if err != nil {
		c.fail(scanID, models.NewCaptureError(err.Error()))
		return
	}

	result, err := c.analyzer.Analyze(ctx, frame)
	c.onAnalysisResult(scanID, result, err)
}

// onAnalysisResult consumes the analysis outcome and settles the scan
func (c *Controller) onAnalysisResult(scanID string, result *models.AnalysisResult, err error) {
	if err != nil {
		var se *models.ScanError
		if !errors.As(err, &se) {
			// Analyzers classify their own failures; anything else is a
			// remote problem by definition.
			se = models.NewRemoteError(err.Error(), err)
		}
		c.fail(scanID, se)
		return
	}
	c.complete(scanID, result)
}

// complete moves the scan to the completed state
func (c *Controller) complete(scanID string, result *models.AnalysisResult) {
	c.mu.Lock()
	if !c.owns(scanID) {
		c.mu.Unlock()
		return
	}
	c.state.Phase = models.PhaseCompleted
	c.state.Result = result
	c.mu.Unlock()
	c.notify()

	logger.Info("scan completed", "scan_id", scanID,
		"score", result.DeepfakeScore, "verdict", result.Verdict)
}

// fail moves the scan to the failed state
func (c *Controller) fail(scanID string, serr *models.ScanError) {
	c.mu.Lock()
	if !c.owns(scanID) {
		c.mu.Unlock()
		return
	}
	c.state.Phase = models.PhaseFailed
	c.state.Err = serr
	c.mu.Unlock()
	c.notify()

	logger.Warn("scan failed", "scan_id", scanID, "kind", serr.Kind, "err", serr.Message)
}

// owns reports whether the in-flight scan with the given ID is still the
// current one. A completion arriving after a reset is an orphan and is
// dropped without observable effect.
func (c *Controller) owns(scanID string) bool {
	return c.state.Phase == models.PhaseScanning && c.state.ScanID == scanID
}

// notify invokes the listener outside the state lock
func (c *Controller) notify() {
	c.mu.Lock()
	l := c.listener
	st := c.state
	c.mu.Unlock()
	if l != nil {
		l(st)
	}
}
