package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fatih/color"

	"github.com/jiviteshreddy44-netizen/deepscan/pkg/analysis"
	"github.com/jiviteshreddy44-netizen/deepscan/pkg/capture"
	"github.com/jiviteshreddy44-netizen/deepscan/pkg/config"
	"github.com/jiviteshreddy44-netizen/deepscan/pkg/filehandler"
	"github.com/jiviteshreddy44-netizen/deepscan/pkg/logger"
	"github.com/jiviteshreddy44-netizen/deepscan/pkg/models"
	"github.com/jiviteshreddy44-netizen/deepscan/pkg/scan"
	"github.com/jiviteshreddy44-netizen/deepscan/pkg/view"
)

var (
	// Color printers
	infoColor  = color.New(color.FgBlue).SprintFunc()
	errorColor = color.New(color.FgRed).SprintFunc()
)

func printInfo(format string, args ...interface{}) {
	fmt.Printf("%s %s\n", infoColor("[*]"), fmt.Sprintf(format, args...))
}

func printError(format string, args ...interface{}) {
	fmt.Printf("%s %s\n", errorColor("[-]"), fmt.Sprintf(format, args...))
}

func main() {
	var (
		tabFlag     = flag.Bool("tab", false, "Scan the active browser tab (default when no other input is given)")
		filePath    = flag.String("file", "", "Path to a local image to scan")
		urlPath     = flag.String("url", "", "URL of an image to download and scan")
		interactive = flag.Bool("interactive", false, "Interactive mode: drive scans with start/retry/new-scan")
		outDir      = flag.String("out", "", "Directory to save the captured frame and report JSON")
		configPath  = flag.String("config", "", "Path to a config file (default: ./deepscan.yaml)")
		verbose     = flag.Bool("verbose", false, "Enable verbose output")
	)
	flag.Parse()

	fmt.Println("deepscan v1.0.0")
	fmt.Println("Deepfake likelihood scanner for browser tabs")
	fmt.Println("---------------------------------")

	if (*filePath != "" && *urlPath != "") || (*tabFlag && (*filePath != "" || *urlPath != "")) {
		printError("Use only one of -tab, -file and -url")
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		printError("Failed to load configuration: %v", err)
		os.Exit(1)
	}

	level := cfg.Log.Level
	if *verbose {
		level = "debug"
	}
	if err := logger.Init(level); err != nil {
		printError("Failed to set up logging: %v", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// Pick the frame source; the active tab is the default subject.
	var source capture.Source
	switch {
	case *filePath != "":
		printInfo("Scanning file: %s", *filePath)
		source = capture.NewFileSource(*filePath, cfg.Capture.JPEGQuality)
	case *urlPath != "":
		printInfo("Scanning URL: %s", *urlPath)
		source = capture.NewURLSource(*urlPath, cfg.Capture.JPEGQuality)
	default:
		printInfo("Scanning the active browser tab via %s", cfg.Browser.DevToolsURL)
		source = capture.NewTabSource(cfg.Browser.DevToolsURL, cfg.Capture.JPEGQuality)
	}

	transport := &recordingTransport{inner: capture.NewRelay(source)}

	registry := analysis.NewRegistry()
	registry.Register(analysis.NewGeminiAnalyzer(cfg.Gemini))

	controller := scan.New(transport, registry.Get("gemini"))
	v := view.New(os.Stdout, os.Stdin)
	controller.SetListener(v.Render)

	ctx := context.Background()

	if *interactive {
		runInteractive(ctx, controller, v)
		return
	}

	controller.StartScan(ctx)
	state := controller.State()

	if *outDir != "" {
		if err := saveArtifacts(*outDir, transport.Last(), state.Result); err != nil {
			printError("Failed to save artifacts: %v", err)
		}
	}

	if state.Phase == models.PhaseFailed {
		os.Exit(1)
	}
}

// runInteractive loops over user intents until quit. Retry and new-scan both
// reset the controller; retry immediately starts the next scan.
func runInteractive(ctx context.Context, controller *scan.Controller, v *view.View) {
	v.Render(controller.State())

	for {
		intent, ok := v.ReadIntent()
		if !ok {
			return
		}
		switch intent {
		case view.IntentStart:
			controller.StartScan(ctx)
		case view.IntentRetry:
			controller.Reset()
			controller.StartScan(ctx)
		case view.IntentNewScan:
			if !controller.Reset() {
				v.Render(controller.State())
			}
		case view.IntentQuit:
			return
		}
	}
}

// saveArtifacts writes the captured frame and the report JSON to outDir
func saveArtifacts(outDir, dataURL string, result *models.AnalysisResult) error {
	if dataURL != "" {
		frame, err := models.CaptureResponse{DataURL: dataURL}.Frame()
		if err != nil {
			return fmt.Errorf("failed to decode captured frame: %w", err)
		}
		framePath := filepath.Join(outDir, "frame.jpg")
		if err := filehandler.SaveFile(frame, framePath); err != nil {
			return err
		}
		printInfo("Saved captured frame to %s", framePath)
	}

	if result != nil {
		report, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode report: %w", err)
		}
		reportPath := filepath.Join(outDir, "report.json")
		if err := filehandler.SaveFile(report, reportPath); err != nil {
			return err
		}
		printInfo("Saved report to %s", reportPath)
	}

	return nil
}

// recordingTransport remembers the last successful frame so one-shot mode
// can save it after the scan settles. Delegation only; the delivery contract
// stays with the wrapped relay.
type recordingTransport struct {
	inner capture.Transport

	mu   sync.Mutex
	last string
}

// Send delegates to the wrapped transport and records the frame
func (t *recordingTransport) Send(ctx context.Context, req models.CaptureRequest) (models.CaptureResponse, error) {
	resp, err := t.inner.Send(ctx, req)
	if err == nil && resp.Error == "" {
		t.mu.Lock()
		t.last = resp.DataURL
		t.mu.Unlock()
	}
	return resp, err
}

// Last returns the most recently captured frame data URL
func (t *recordingTransport) Last() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.last
}
