// Package model contains domain models passed between layers.
package model

// Job is one per-tile compose request flowing through the pipeline.
// Photo is the sanitized upload shared by every job of a generation;
// jobs reference the same backing bytes, they do not copy them.
type Job struct {
	GenerationID string // identifies the upload cycle this job belongs to
	TileKey      string // unique tile key across the catalog
	Feeling      string // English label used in the generation prompt
	Asset        string // reference image asset identifier
	Photo        []byte // sanitized uploaded photo
}
