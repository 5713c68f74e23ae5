package validate

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	// Register decoders for the accepted upload formats.
	_ "image/jpeg"

	"github.com/nfnt/resize"
)

// Default sanitizer configuration constants.
const (
	defaultMaxDimension = 1600 // longest edge after downscaling
)

// Sanitizer re-encodes an image, discarding every container-level byte of
// the original file. EXIF, GPS, and any other embedded metadata do not
// survive the round trip through a decoded pixel buffer.
type Sanitizer struct {
	maxDimension uint
}

// SanitizerOption applies a configuration option to the Sanitizer.
type SanitizerOption func(*Sanitizer)

// WithMaxDimension caps the longest edge of the sanitized image.
func WithMaxDimension(px uint) SanitizerOption {
	return func(s *Sanitizer) {
		if px > 0 {
			s.maxDimension = px
		}
	}
}

// NewSanitizer creates a sanitizer with the given options.
func NewSanitizer(opts ...SanitizerOption) *Sanitizer {
	s := &Sanitizer{maxDimension: defaultMaxDimension}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sanitize re-encodes the decoded image as PNG, downscaling first when
// the longest edge exceeds the configured cap.
func (s *Sanitizer) Sanitize(img image.Image) ([]byte, error) {
	b := img.Bounds()
	if uint(b.Dx()) > s.maxDimension || uint(b.Dy()) > s.maxDimension {
		img = resize.Thumbnail(s.maxDimension, s.maxDimension, img, resize.Lanczos3)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("re-encode image: %w", err)
	}
	return buf.Bytes(), nil
}
