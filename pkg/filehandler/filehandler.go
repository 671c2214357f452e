// Package filehandler contains small IO helpers shared by the capture
// sources and the CLI: reading images, downloading them over HTTP and saving
// scan artifacts.
package filehandler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/h2non/filetype"
)

// maxImageBytes bounds how much image data we are willing to hold in memory.
// A tab screenshot is well under a megabyte; 20MB leaves headroom for large
// local files without risking the inline request limit of the analysis API.
const maxImageBytes = 20 * 1024 * 1024

// ReadFileBytes reads a file fully into memory, refusing oversized input
func ReadFileBytes(filePath string) ([]byte, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if info.Size() > maxImageBytes {
		return nil, fmt.Errorf("file too large (%d bytes, max %d)", info.Size(), maxImageBytes)
	}

	content := make([]byte, info.Size())
	if _, err := io.ReadFull(file, content); err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return content, nil
}

// IsURL checks if the given string is an HTTP(S) URL
func IsURL(path string) bool {
	return strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://")
}

// DownloadImage fetches an image over HTTP and returns its bytes after
// verifying the payload actually is an image.
func DownloadImage(ctx context.Context, url string) ([]byte, error) {
	client := &http.Client{Timeout: 60 * time.Second}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bad status: %s", resp.Status)
	}
	if resp.ContentLength > maxImageBytes {
		return nil, fmt.Errorf("response too large (%d bytes, max %d)", resp.ContentLength, maxImageBytes)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if len(data) > maxImageBytes {
		return nil, fmt.Errorf("response too large (max %d bytes)", maxImageBytes)
	}

	if !filetype.IsImage(data) {
		return nil, fmt.Errorf("downloaded payload is not an image")
	}
	return data, nil
}

// SaveFile writes data to filePath, creating parent directories as needed
func SaveFile(data []byte, filePath string) error {
	if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(filePath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}
