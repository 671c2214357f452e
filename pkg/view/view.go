// Package view renders the current scan state to the terminal and reads user
// intents back. It is a pure function of the state: the view owns nothing
// beyond the writer it prints to.
package view

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/jiviteshreddy44-netizen/deepscan/pkg/models"
)

var (
	// Color printers
	infoColor    = color.New(color.FgBlue).SprintFunc()
	successColor = color.New(color.FgGreen).SprintFunc()
	warningColor = color.New(color.FgYellow).SprintFunc()
	errorColor   = color.New(color.FgRed).SprintFunc()
	alertColor   = color.New(color.FgRed, color.Bold).SprintFunc()
)

// Intent is a user action fed back into the scan controller
type Intent int

const (
	IntentStart Intent = iota
	IntentRetry
	IntentNewScan
	IntentQuit
)

// View prints scan states and reads intents
type View struct {
	out io.Writer
	in  *bufio.Scanner
}

// New creates a view over the given streams
func New(out io.Writer, in io.Reader) *View {
	return &View{out: out, in: bufio.NewScanner(in)}
}

// Render draws the surface for the given state
func (v *View) Render(st models.ScanState) {
	switch st.Phase {
	case models.PhaseIdle:
		fmt.Fprintf(v.out, "%s Ready to scan\n", infoColor("[*]"))
	case models.PhaseScanning:
		fmt.Fprintf(v.out, "%s Scanning... capturing frame and consulting the analysis model\n", infoColor("[*]"))
	case models.PhaseCompleted:
		v.renderReport(st.Result)
	case models.PhaseFailed:
		fmt.Fprintf(v.out, "%s Scan failed: %v\n", errorColor("[-]"), st.Err)
		fmt.Fprintf(v.out, "%s Type 'retry' to scan again\n", infoColor("[*]"))
	}
}

// renderReport prints the full deepfake-likelihood report
func (v *View) renderReport(result *models.AnalysisResult) {
	fmt.Fprintln(v.out, "\n--- Deepfake Analysis Report ---")

	marker, verdictColor := verdictStyle(result.Verdict)
	fmt.Fprintf(v.out, "%s Verdict: %s\n", marker, verdictColor(string(result.Verdict)))
	fmt.Fprintf(v.out, "%s Deepfake score: %s\n", infoColor("[*]"),
		scoreColor(result.DeepfakeScore)(fmt.Sprintf("%.0f/100", result.DeepfakeScore)))

	fmt.Fprintln(v.out)
	v.renderMetric("Integrity  ", result.Integrity)
	v.renderMetric("Consistency", result.Consistency)
	v.renderMetric("AI patterns", result.AIPattern)
	v.renderMetric("Temporal   ", result.Temporal)
	fmt.Fprintln(v.out)
}

// renderMetric prints one forensic sub-score row
func (v *View) renderMetric(label string, m models.Metric) {
	notes := m.Notes
	if notes == "" {
		notes = "-"
	}
	fmt.Fprintf(v.out, "    %s  %s  %s\n", label,
		scoreColor(m.Score)(fmt.Sprintf("%5.1f", m.Score)), notes)
}

// verdictStyle picks the marker and color for a verdict line
func verdictStyle(verdict models.Verdict) (string, func(a ...interface{}) string) {
	switch verdict {
	case models.VerdictLikelyDeepfake:
		return alertColor("[!!!]"), alertColor
	case models.VerdictUncertain:
		return warningColor("[!]"), warningColor
	default:
		return successColor("[+]"), successColor
	}
}

// scoreColor maps a 0-100 score to a severity color. Higher scores mean more
// evidence of manipulation.
func scoreColor(score float64) func(a ...interface{}) string {
	switch {
	case score >= 70:
		return errorColor
	case score >= 40:
		return warningColor
	default:
		return successColor
	}
}

// ReadIntent prompts for and parses the next user intent. Returns false when
// input is exhausted.
func (v *View) ReadIntent() (Intent, bool) {
	fmt.Fprintf(v.out, "%s start | retry | new-scan | quit > ", infoColor("[*]"))
	for v.in.Scan() {
		switch strings.ToLower(strings.TrimSpace(v.in.Text())) {
		case "start", "s", "scan":
			return IntentStart, true
		case "retry", "r":
			return IntentRetry, true
		case "new-scan", "new", "n":
			return IntentNewScan, true
		case "quit", "q", "exit":
			return IntentQuit, true
		case "":
			continue
		default:
			fmt.Fprintf(v.out, "%s Unknown command; use start, retry, new-scan or quit > ", warningColor("[!]"))
		}
	}
	return IntentQuit, false
}
