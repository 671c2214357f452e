package capture

import (
	"context"
	"fmt"

	"github.com/jiviteshreddy44-netizen/deepscan/pkg/filehandler"
)

// FileSource captures a frame from a local image file instead of a live tab.
// Useful for scanning saved screenshots and for exercising the pipeline
// without a running browser.
type FileSource struct {
	Path    string
	Quality int
}

// NewFileSource creates a file-backed frame source
func NewFileSource(path string, quality int) *FileSource {
	return &FileSource{Path: path, Quality: quality}
}

// Name returns the source name
func (s *FileSource) Name() string { return "file" }

// Capture reads and normalizes the image file into a JPEG data URL
func (s *FileSource) Capture(_ context.Context) (string, error) {
	data, err := filehandler.ReadFileBytes(s.Path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", s.Path, err)
	}
	return EncodeFrame(data, s.Quality)
}
