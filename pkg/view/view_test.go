package view

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/jiviteshreddy44-netizen/deepscan/pkg/models"
)

func plainRender(t *testing.T, st models.ScanState) string {
	t.Helper()
	prev := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = prev }()

	var buf bytes.Buffer
	New(&buf, strings.NewReader("")).Render(st)
	return buf.String()
}

func TestRenderCompletedReport(t *testing.T) {
	out := plainRender(t, models.ScanState{
		Phase: models.PhaseCompleted,
		Result: &models.AnalysisResult{
			DeepfakeScore: 82,
			Verdict:       models.VerdictLikelyDeepfake,
			Integrity:     models.Metric{Score: 70, Notes: "noise"},
			Consistency:   models.Metric{Score: 60, Notes: "ok"},
			AIPattern:     models.Metric{Score: 90, Notes: "GAN artifacts"},
			Temporal:      models.Metric{Score: 50, Notes: "n/a"},
		},
	})

	for _, want := range []string{
		"Likely Deepfake", "82/100", "GAN artifacts", "noise", "Temporal",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderFailedShowsMessageAndRetryHint(t *testing.T) {
	out := plainRender(t, models.ScanState{
		Phase: models.PhaseFailed,
		Err:   errors.New("Permission denied"),
	})

	if !strings.Contains(out, "Permission denied") {
		t.Errorf("failure output missing the error message:\n%s", out)
	}
	if !strings.Contains(out, "retry") {
		t.Errorf("failure output missing the retry hint:\n%s", out)
	}
}

func TestReadIntent(t *testing.T) {
	cases := map[string]Intent{
		"start":        IntentStart,
		"s":            IntentStart,
		"retry":        IntentRetry,
		"new-scan":     IntentNewScan,
		"q":            IntentQuit,
		"bogus\nretry": IntentRetry, // unknown input re-prompts
	}

	for input, want := range cases {
		v := New(&bytes.Buffer{}, strings.NewReader(input+"\n"))
		got, ok := v.ReadIntent()
		if !ok {
			t.Errorf("ReadIntent(%q) reported exhausted input", input)
			continue
		}
		if got != want {
			t.Errorf("ReadIntent(%q) = %v, want %v", input, got, want)
		}
	}

	// Exhausted input reads as quit.
	if _, ok := New(&bytes.Buffer{}, strings.NewReader("")).ReadIntent(); ok {
		t.Error("empty input should report exhausted")
	}
}
