package models

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"
)

// Phase is the lifecycle phase of a scan. Exactly one phase is active at a
// time; transitions happen only through the scan controller.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseScanning
	PhaseCompleted
	PhaseFailed
)

// String returns a human-readable phase name
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseScanning:
		return "scanning"
	case PhaseCompleted:
		return "completed"
	case PhaseFailed:
		return "failed"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Terminal reports whether the phase is a terminal display state
func (p Phase) Terminal() bool {
	return p == PhaseCompleted || p == PhaseFailed
}

// ScanState is the single state container for one scan lifecycle.
// Result is non-nil exactly when Phase is PhaseCompleted and Err is non-nil
// exactly when Phase is PhaseFailed. The controller is the only writer.
type ScanState struct {
	Phase     Phase
	ScanID    string
	Result    *AnalysisResult
	Err       error
	StartedAt time.Time
}

// Verdict is the coarse classification the external model derives from the
// deepfake score.
type Verdict string

const (
	VerdictLikelyReal     Verdict = "Likely Real"
	VerdictUncertain      Verdict = "Uncertain"
	VerdictLikelyDeepfake Verdict = "Likely Deepfake"
)

// ParseVerdict maps a model-reported verdict string to a known Verdict.
// Matching ignores case and surrounding whitespace; anything else is rejected
// so a misbehaving model cannot smuggle an unknown classification through.
func ParseVerdict(s string) (Verdict, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "likely real":
		return VerdictLikelyReal, nil
	case "uncertain":
		return VerdictUncertain, nil
	case "likely deepfake":
		return VerdictLikelyDeepfake, nil
	default:
		return "", fmt.Errorf("unknown verdict %q", s)
	}
}

// Metric is one named forensic sub-score reported by the external model
type Metric struct {
	Score float64 `json:"score"` // 0-100
	Notes string  `json:"notes"`
}

// AnalysisResult contains the structured deepfake-likelihood report returned
// by the external analysis model. Immutable once constructed; owned by the
// ScanState while the scan is completed.
type AnalysisResult struct {
	DeepfakeScore float64 `json:"deepfakeScore"` // 0-100, higher means more likely synthetic
	Verdict       Verdict `json:"verdict"`
	Integrity     Metric  `json:"integrity"`
	Consistency   Metric  `json:"consistency"`
	AIPattern     Metric  `json:"aiPattern"`
	Temporal      Metric  `json:"temporal"`
}

// ActionCaptureTab is the only capture action the transport understands
const ActionCaptureTab = "capture_tab"

// CaptureRequest asks the privileged capture side for one still frame of the
// active tab. It carries no payload beyond the action name.
type CaptureRequest struct {
	Action string `json:"action"`
}

// NewCaptureRequest builds the standard capture request
func NewCaptureRequest() CaptureRequest {
	return CaptureRequest{Action: ActionCaptureTab}
}

// CaptureResponse is the disjoint result of one capture request: either a
// data URL holding the encoded frame, or an error message. Never both, never
// neither.
type CaptureResponse struct {
	DataURL string `json:"dataUrl,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Frame decodes the response's data URL into raw image bytes.
// Accepts any "data:<mime>;base64,<payload>" URL; the capture sources only
// ever produce image/jpeg.
func (r CaptureResponse) Frame() ([]byte, error) {
	if r.Error != "" {
		return nil, fmt.Errorf("capture response carries an error: %s", r.Error)
	}
	rest, ok := strings.CutPrefix(r.DataURL, "data:")
	if !ok {
		return nil, fmt.Errorf("not a data URL")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok || !strings.HasSuffix(meta, ";base64") {
		return nil, fmt.Errorf("unsupported data URL encoding")
	}
	frame, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to decode frame payload: %w", err)
	}
	if len(frame) == 0 {
		return nil, fmt.Errorf("empty frame payload")
	}
	return frame, nil
}

// JPEGDataURL encodes raw JPEG bytes as the data URL the capture contract
// transports.
func JPEGDataURL(frame []byte) string {
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(frame)
}
