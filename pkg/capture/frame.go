package capture

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"

	// Decoders for the formats a frame may arrive in.
	_ "image/gif"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/h2non/filetype"

	"github.com/jiviteshreddy44-netizen/deepscan/pkg/models"
)

// EncodeFrame normalizes raw image bytes into the JPEG data URL the capture
// contract transports. JPEG input passes through untouched; every other
// supported format is decoded and re-encoded at the given quality. The
// content type is sniffed from the bytes, not trusted from a file extension.
func EncodeFrame(data []byte, quality int) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("empty image data")
	}

	kind, err := filetype.Match(data)
	if err != nil {
		return "", fmt.Errorf("failed to sniff image type: %w", err)
	}
	if kind.MIME.Value == "image/jpeg" {
		return models.JPEGDataURL(data), nil
	}
	if !filetype.IsImage(data) {
		return "", fmt.Errorf("unsupported content type %q, expected an image", kind.MIME.Value)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to decode %s image: %w", kind.Extension, err)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return "", fmt.Errorf("failed to re-encode %s frame as JPEG: %w", format, err)
	}
	return models.JPEGDataURL(buf.Bytes()), nil
}
