// Package catalog holds the static registry of feeling categories and tiles.
//
// The catalog is immutable reference data: four categories of six tiles
// each, with labels for every supported language and a reference image
// identifier per tile. Nothing here is generated at runtime.
package catalog

// Lang identifies a supported spoken/display language.
type Lang string

// Supported languages.
const (
	LangEnglish    Lang = "en"
	LangSpanish    Lang = "es"
	LangPortuguese Lang = "pt"
)

// Languages lists the supported language set in stable order.
func Languages() []Lang {
	return []Lang{LangEnglish, LangSpanish, LangPortuguese}
}

// IsSupported reports whether lang is one of the supported languages.
func IsSupported(lang Lang) bool {
	switch lang {
	case LangEnglish, LangSpanish, LangPortuguese:
		return true
	}
	return false
}

// Label maps each supported language to a localized string.
type Label map[Lang]string

// Get returns the label for lang, falling back to English.
func (l Label) Get(lang Lang) string {
	if s, ok := l[lang]; ok {
		return s
	}
	return l[LangEnglish]
}

// Tile is one feeling entry: a key unique within its category, localized
// labels, and the identifier of its reference image asset.
type Tile struct {
	Key   string
	Label Label
	Asset string
}

// Category is a themed group of tiles.
type Category struct {
	Key   string
	Label Label
	Asset string
	Tiles []Tile
}

// Catalog is the full ordered set of categories.
type Catalog []Category

// Category returns the category with the given key.
func (c Catalog) Category(key string) (Category, bool) {
	for _, cat := range c {
		if cat.Key == key {
			return cat, true
		}
	}
	return Category{}, false
}

// Tile returns the tile with the given key, searching all categories.
// Tile keys are unique across the catalog.
func (c Catalog) Tile(key string) (Tile, bool) {
	for _, cat := range c {
		for _, t := range cat.Tiles {
			if t.Key == key {
				return t, true
			}
		}
	}
	return Tile{}, false
}

// Tiles returns all tiles in catalog order.
func (c Catalog) Tiles() []Tile {
	out := make([]Tile, 0, c.TileCount())
	for _, cat := range c {
		out = append(out, cat.Tiles...)
	}
	return out
}

// TileCount returns the total number of tiles.
func (c Catalog) TileCount() int {
	n := 0
	for _, cat := range c {
		n += len(cat.Tiles)
	}
	return n
}
