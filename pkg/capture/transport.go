// Package capture implements the capture side of a scan: a message transport
// carrying one capture request and exactly one response across the boundary
// between the scan controller and the privileged frame source.
package capture

import (
	"context"

	"github.com/jiviteshreddy44-netizen/deepscan/pkg/models"
)

// Transport is the message channel between the controller and the capture
// side. Implementations must return exactly one response per request; a
// request that is never answered would leave the caller scanning forever.
// Faked in controller tests.
type Transport interface {
	Send(ctx context.Context, req models.CaptureRequest) (models.CaptureResponse, error)
}

// Source produces one encoded frame per call, returned as a JPEG data URL.
// Sources are wrapped by a Relay to obtain the Transport delivery guarantees.
type Source interface {
	Name() string
	Capture(ctx context.Context) (string, error)
}
