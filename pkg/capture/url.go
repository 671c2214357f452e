package capture

import (
	"context"
	"fmt"

	"github.com/jiviteshreddy44-netizen/deepscan/pkg/filehandler"
)

// URLSource downloads an image over HTTP and feeds it through the same
// normalization path as a local file.
type URLSource struct {
	URL     string
	Quality int
}

// NewURLSource creates a download-backed frame source
func NewURLSource(url string, quality int) *URLSource {
	return &URLSource{URL: url, Quality: quality}
}

// Name returns the source name
func (s *URLSource) Name() string { return "url" }

// Capture downloads and normalizes the image into a JPEG data URL
func (s *URLSource) Capture(ctx context.Context) (string, error) {
	data, err := filehandler.DownloadImage(ctx, s.URL)
	if err != nil {
		return "", fmt.Errorf("failed to download %s: %w", s.URL, err)
	}
	return EncodeFrame(data, s.Quality)
}
