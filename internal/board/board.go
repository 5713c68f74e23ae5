// Package board renders category views of the feelings catalog and
// dispatches tap-to-speak.
//
// Image resolution is two-tier and keyed by tile key: the personalized
// image when the pipeline has produced one, the tile's bundled
// reference image otherwise. Lookups are never positional, so a partial
// personalized set still renders a complete board.
package board

import (
	"context"
	"fmt"

	"github.com/metalk/feelings/internal/domain/catalog"
	"github.com/metalk/feelings/pkg/logger"
	"github.com/metalk/feelings/pkg/metrics"
)

// ErrUnknownCategory is returned for category keys outside the catalog.
var ErrUnknownCategory = fmt.Errorf("unknown category")

// ErrUnknownTile is returned for tile keys outside the catalog.
var ErrUnknownTile = fmt.Errorf("unknown tile")

// ImageSource names which tier a tile's image came from.
type ImageSource string

// Image source values.
const (
	SourcePersonalized ImageSource = "personalized"
	SourceReference    ImageSource = "reference"
)

// Images is the personalized-image lookup the presenter reads from.
type Images interface {
	Image(ctx context.Context, tileKey string) ([]byte, bool)
}

// Speaker dispatches utterances for tapped tiles.
type Speaker interface {
	Speak(ctx context.Context, text string, lang catalog.Lang) error
}

// TileView is one rendered tile.
type TileView struct {
	Key    string      `json:"key"`
	Label  string      `json:"label"`
	Source ImageSource `json:"source"`
	Asset  string      `json:"asset"`
}

// View is one rendered category.
type View struct {
	Category string     `json:"category"`
	Label    string     `json:"label"`
	Lang     string     `json:"lang"`
	Tiles    []TileView `json:"tiles"`
}

// Presenter resolves tiles against the personalized set and speaks
// tapped labels.
type Presenter struct {
	catalog catalog.Catalog
	images  Images
	speaker Speaker
	logger  logger.Logger
}

// NewPresenter creates a presenter over the catalog, personalized image
// lookup, and speaker.
func NewPresenter(cat catalog.Catalog, images Images, speaker Speaker, opts ...Option) *Presenter {
	p := &Presenter{
		catalog: cat,
		images:  images,
		speaker: speaker,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = logger.Get().Named("board")
	}
	return p
}

// CategoryView renders one category in the given language. Each tile
// resolves to its personalized image when present, otherwise to the
// reference asset; absent personalized tiles are normal, not errors.
func (p *Presenter) CategoryView(ctx context.Context, categoryKey string, lang catalog.Lang) (View, error) {
	category, ok := p.catalog.Category(categoryKey)
	if !ok {
		return View{}, fmt.Errorf("%w: %s", ErrUnknownCategory, categoryKey)
	}

	view := View{
		Category: category.Key,
		Label:    category.Label.Get(lang),
		Lang:     string(lang),
		Tiles:    make([]TileView, 0, len(category.Tiles)),
	}
	for _, tile := range category.Tiles {
		tv := TileView{
			Key:    tile.Key,
			Label:  tile.Label.Get(lang),
			Source: SourceReference,
			Asset:  tile.Asset,
		}
		if p.images != nil {
			if _, ok := p.images.Image(ctx, tile.Key); ok {
				tv.Source = SourcePersonalized
			}
		}
		view.Tiles = append(view.Tiles, tv)
	}
	return view, nil
}

// TileImage resolves one tile's image bytes for serving: personalized
// bytes when installed, the reference asset id otherwise. The returned
// asset id is non-empty only for the reference tier.
func (p *Presenter) TileImage(ctx context.Context, tileKey string) ([]byte, string, error) {
	tile, ok := p.catalog.Tile(tileKey)
	if !ok {
		return nil, "", fmt.Errorf("%w: %s", ErrUnknownTile, tileKey)
	}
	if p.images != nil {
		if img, ok := p.images.Image(ctx, tileKey); ok {
			return img, "", nil
		}
	}
	return nil, tile.Asset, nil
}

// Tap speaks the tapped tile's label in the given language. Speech
// failure is soft: it is logged and returned, and the board stays
// usable without audio.
func (p *Presenter) Tap(ctx context.Context, tileKey string, lang catalog.Lang) error {
	tile, ok := p.catalog.Tile(tileKey)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTile, tileKey)
	}

	metrics.RecordTileTap(string(lang))

	if p.speaker == nil {
		return nil
	}
	if err := p.speaker.Speak(ctx, tile.Label.Get(lang), lang); err != nil {
		p.logger.Warn(ctx, "tap speech failed",
			logger.String("tileKey", tileKey),
			logger.Error(err),
		)
		return err
	}
	return nil
}
