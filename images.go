package rosepress

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/image/draw"
)

const (
	maxImageWidth = 1200
	jpegQuality   = 80
	maxUploadSize = 10 << 20 // 10MB
)

// processImage decodes an uploaded cover image, scales it down to
// maxImageWidth when wider, and re-encodes it as JPEG.
func processImage(src io.Reader) ([]byte, error) {
	img, _, err := image.Decode(src)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w > maxImageWidth {
		newH := h * maxImageWidth / w
		dst := image.NewRGBA(image.Rect(0, 0, maxImageWidth, newH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// uploadCoverImage processes an uploaded file and stores it, returning
// the public URL to reference from the post row.
func (a *App) uploadCoverImage(src io.Reader, originalName string) (string, error) {
	data, err := processImage(src)
	if err != nil {
		return "", err
	}
	return a.files.Put(uploadKey(originalName, time.Now()), data, "image/jpeg")
}

// uploadKey names a stored cover image after its upload time and the
// slugified original filename, so keys never collide in practice and
// stay readable in the bucket.
func uploadKey(originalName string, now time.Time) string {
	ext := filepath.Ext(originalName)
	base := Slugify(strings.TrimSuffix(originalName, ext))
	if base == "" {
		base = "image"
	}
	return fmt.Sprintf("%d-%s.jpg", now.UnixMilli(), base)
}
