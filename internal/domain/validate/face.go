package validate

import (
	"context"
	"image"
)

// FaceDetector reports how many faces appear in an image. The validator
// requires exactly one.
type FaceDetector interface {
	Count(ctx context.Context, img image.Image) (int, error)
}

// ContentHeuristic is a stand-in detector: it reports one face when the
// image has any visible (non-transparent, non-uniform) content, zero
// otherwise. It is NOT real face detection; swap in a model-backed
// detector for anything beyond a demo. The single-face-required policy
// and its rejection message stay the same either way.
type ContentHeuristic struct{}

// Count samples the image for visible content.
func (ContentHeuristic) Count(_ context.Context, img image.Image) (int, error) {
	b := img.Bounds()
	if b.Empty() {
		return 0, nil
	}

	// Sample a coarse grid rather than every pixel; enough to tell a
	// blank or fully transparent canvas from a photo.
	const grid = 16
	stepX := max(b.Dx()/grid, 1)
	stepY := max(b.Dy()/grid, 1)

	var firstR, firstG, firstB uint32
	first := true
	opaque := false
	varied := false

	for y := b.Min.Y; y < b.Max.Y; y += stepY {
		for x := b.Min.X; x < b.Max.X; x += stepX {
			r, g, bl, a := img.At(x, y).RGBA()
			if a == 0 {
				continue
			}
			opaque = true
			if first {
				firstR, firstG, firstB = r, g, bl
				first = false
				continue
			}
			if r != firstR || g != firstG || bl != firstB {
				varied = true
			}
		}
	}

	if opaque && varied {
		return 1, nil
	}
	return 0, nil
}

// FixedFaces is a detector returning a fixed count. Used by tests.
type FixedFaces struct {
	Faces int
	Err   error
}

// Count returns the fixed count or error.
func (f FixedFaces) Count(_ context.Context, _ image.Image) (int, error) {
	return f.Faces, f.Err
}
