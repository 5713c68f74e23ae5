// Package compose defines the contract for the external image-composition
// collaborator that merges an uploaded photo with a reference feeling
// image, producing one personalized image per tile.
package compose

import "context"

// Request carries everything a single per-tile compose call needs.
type Request struct {
	TileKey   string
	Feeling   string // English label, used in the generation prompt
	Photo     []byte // sanitized upload
	Reference []byte // reference feeling image
}

// Composer produces a personalized image for one tile. Calls are
// independent; a failure affects only the requested tile.
type Composer interface {
	Compose(ctx context.Context, req Request) ([]byte, error)
}
