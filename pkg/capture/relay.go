package capture

import (
	"context"
	"fmt"

	"github.com/jiviteshreddy44-netizen/deepscan/pkg/logger"
	"github.com/jiviteshreddy44-netizen/deepscan/pkg/models"
)

// Relay adapts a Source into the Transport contract. Whatever happens on the
// capture side - an unknown action, a source error, even a panic - the caller
// receives exactly one CaptureResponse: a frame or an error message, never
// both and never neither.
type Relay struct {
	source Source
}

// NewRelay wraps a frame source in the exactly-once response contract
func NewRelay(source Source) *Relay {
	return &Relay{source: source}
}

// Send performs one capture round trip. The returned error is always nil;
// all failure modes are folded into the response union so the channel is
// never left unanswered.
func (r *Relay) Send(ctx context.Context, req models.CaptureRequest) (resp models.CaptureResponse, err error) {
	defer func() {
		if p := recover(); p != nil {
			logger.Error("capture source panicked", "source", r.source.Name(), "panic", p)
			resp = models.CaptureResponse{Error: fmt.Sprintf("capture failed: %v", p)}
			err = nil
		}
	}()

	if req.Action != models.ActionCaptureTab {
		return models.CaptureResponse{Error: fmt.Sprintf("unknown capture action %q", req.Action)}, nil
	}

	logger.Debug("capture request", "source", r.source.Name())

	dataURL, captureErr := r.source.Capture(ctx)
	if captureErr != nil {
		logger.Warn("capture failed", "source", r.source.Name(), "err", captureErr)
		return models.CaptureResponse{Error: captureErr.Error()}, nil
	}
	if dataURL == "" {
		return models.CaptureResponse{Error: "capture returned no image"}, nil
	}

	logger.Debug("capture succeeded", "source", r.source.Name(), "bytes", len(dataURL))
	return models.CaptureResponse{DataURL: dataURL}, nil
}
