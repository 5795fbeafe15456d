package storage

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
)

// Longest edge allowed before an upload is downscaled.
const maxEdgePx = 2400

// ImageProcessor validates and normalizes image payloads before they reach
// the asset host.
type ImageProcessor struct {
	MaxSize int64 // bytes
}

func NewImageProcessor(maxSize int64) *ImageProcessor {
	if maxSize <= 0 {
		maxSize = 5 * 1024 * 1024
	}
	return &ImageProcessor{MaxSize: maxSize}
}

// Validate checks size and that the payload decodes as JPEG or PNG.
// Returns the detected format name.
func (p *ImageProcessor) Validate(data []byte) (string, error) {
	if int64(len(data)) > p.MaxSize {
		return "", fmt.Errorf("image exceeds %dMB", p.MaxSize/(1024*1024))
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("not an image: %w", err)
	}
	switch format {
	case "jpeg", "png":
	default:
		return "", fmt.Errorf("image format %s not allowed (only jpeg/png)", format)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return "", fmt.Errorf("image has no dimensions")
	}
	return format, nil
}

// Normalize validates data and, when an edge exceeds maxEdgePx, re-encodes a
// downscaled JPEG. Returns the payload to upload, its content type and the
// file extension.
func (p *ImageProcessor) Normalize(data []byte) ([]byte, string, string, error) {
	format, err := p.Validate(data)
	if err != nil {
		return nil, "", "", err
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", "", fmt.Errorf("cannot decode image: %w", err)
	}

	if cfg.Width <= maxEdgePx && cfg.Height <= maxEdgePx {
		ext := "jpg"
		if format == "png" {
			ext = "png"
		}
		return data, "image/" + format, ext, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", "", fmt.Errorf("cannot decode image: %w", err)
	}

	resized := imaging.Fit(img, maxEdgePx, maxEdgePx, imaging.Lanczos)
	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, resized, &jpeg.Options{Quality: 90}); err != nil {
		return nil, "", "", fmt.Errorf("cannot encode resized image: %w", err)
	}
	return buf.Bytes(), "image/jpeg", "jpg", nil
}
