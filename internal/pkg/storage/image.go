package storage

import (
	"bytes"
	"fmt"
	"io"

	"github.com/disintegration/imaging"
)

// ImageProcessor re-encodes uploaded images as bounded JPEGs.
type ImageProcessor struct {
	quality int
}

func NewImageProcessor() *ImageProcessor {
	return &ImageProcessor{quality: 80}
}

// Fit scales the image down to fit within maxWidth x maxHeight, keeping the
// aspect ratio, and returns it as JPEG. EXIF orientation is applied first.
func (p *ImageProcessor) Fit(content io.Reader, maxWidth, maxHeight int) (*bytes.Buffer, error) {
	img, err := imaging.Decode(content, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	// Fit never upscales.
	fitted := imaging.Fit(img, maxWidth, maxHeight, imaging.Lanczos)

	buf := new(bytes.Buffer)
	if err := imaging.Encode(buf, fitted, imaging.JPEG, imaging.JPEGQuality(p.quality)); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf, nil
}
