// Package collage renders the feelings board as a single printable PNG
// page.
//
// Tiles resolve through the same two-tier lookup as the board: the
// personalized image when the pipeline produced one, the bundled
// reference image otherwise.
package collage

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	_ "image/jpeg"

	"github.com/nfnt/resize"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/metalk/feelings/internal/adapters/assets"
	"github.com/metalk/feelings/internal/domain/catalog"
	"github.com/metalk/feelings/pkg/logger"
	"github.com/metalk/feelings/pkg/metrics"
)

// PageSize selects the output page width.
type PageSize string

// Supported page sizes, at 96 dpi.
const (
	PageA4     PageSize = "a4"
	PageLetter PageSize = "letter"
)

// Layout constants, in pixels.
const (
	defaultTilesPerRow = 4
	pageMargin         = 32
	titleBandHeight    = 48
	headingBandHeight  = 32
	labelBandHeight    = 20
	cellPadding        = 8
)

// Options controls the rendered page.
type Options struct {
	Title                   string
	IncludeCategoryHeadings bool
	TilesPerRow             int
	PageSize                PageSize
	Lang                    catalog.Lang
}

// Images is the personalized-image lookup the exporter reads from.
type Images interface {
	Image(ctx context.Context, tileKey string) ([]byte, bool)
}

// Exporter renders collage pages from the catalog and the current
// personalized set.
type Exporter struct {
	catalog catalog.Catalog
	images  Images
	refs    assets.Source
	logger  logger.Logger
}

// NewExporter creates a collage exporter.
func NewExporter(cat catalog.Catalog, images Images, refs assets.Source, opts ...Option) *Exporter {
	e := &Exporter{
		catalog: cat,
		images:  images,
		refs:    refs,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = logger.Get().Named("collage")
	}
	return e
}

func pageWidth(size PageSize) int {
	switch size {
	case PageLetter:
		return 816
	default:
		return 794 // A4
	}
}

// Render draws the whole catalog as one PNG page. A tile whose image
// cannot be loaded or decoded is drawn as an empty cell with its label;
// it never fails the page.
func (e *Exporter) Render(ctx context.Context, opts Options) ([]byte, error) {
	perRow := opts.TilesPerRow
	if perRow < 1 {
		perRow = defaultTilesPerRow
	}
	lang := opts.Lang
	if !catalog.IsSupported(lang) {
		lang = catalog.LangEnglish
	}

	width := pageWidth(opts.PageSize)
	contentWidth := width - 2*pageMargin
	cellWidth := contentWidth / perRow
	cellHeight := cellWidth + labelBandHeight

	height := e.pageHeight(opts, perRow, cellHeight)
	canvas := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(canvas, canvas.Bounds(), image.White, image.Point{}, draw.Src)

	y := pageMargin
	if opts.Title != "" {
		drawText(canvas, opts.Title, pageMargin, y+titleBandHeight/2, color.Black)
		y += titleBandHeight
	}

	for _, category := range e.catalog {
		if opts.IncludeCategoryHeadings {
			drawText(canvas, category.Label.Get(lang), pageMargin, y+headingBandHeight/2, color.Black)
			y += headingBandHeight
		}
		for i, tile := range category.Tiles {
			col := i % perRow
			if i > 0 && col == 0 {
				y += cellHeight
			}
			x := pageMargin + col*cellWidth
			e.drawTile(ctx, canvas, tile, lang, x, y, cellWidth)
		}
		y += cellHeight
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return nil, fmt.Errorf("encode collage: %w", err)
	}

	metrics.RecordCollageRendered()
	return buf.Bytes(), nil
}

// pageHeight computes the canvas height for the full catalog.
func (e *Exporter) pageHeight(opts Options, perRow, cellHeight int) int {
	height := 2 * pageMargin
	if opts.Title != "" {
		height += titleBandHeight
	}
	for _, category := range e.catalog {
		if opts.IncludeCategoryHeadings {
			height += headingBandHeight
		}
		rows := (len(category.Tiles) + perRow - 1) / perRow
		height += rows * cellHeight
	}
	return height
}

// drawTile draws one cell: the scaled tile image with its label below.
func (e *Exporter) drawTile(ctx context.Context, canvas *image.RGBA, tile catalog.Tile, lang catalog.Lang, x, y, cellWidth int) {
	inner := cellWidth - 2*cellPadding

	if img := e.loadTile(ctx, tile); img != nil {
		scaled := resize.Thumbnail(uint(inner), uint(inner), img, resize.Lanczos3)
		bounds := scaled.Bounds()
		// Center the scaled image within the cell.
		ox := x + cellPadding + (inner-bounds.Dx())/2
		oy := y + cellPadding + (inner-bounds.Dy())/2
		target := image.Rect(ox, oy, ox+bounds.Dx(), oy+bounds.Dy())
		draw.Draw(canvas, target, scaled, bounds.Min, draw.Over)
	}

	drawText(canvas, tile.Label.Get(lang), x+cellPadding, y+cellWidth+labelBandHeight/2, color.Black)
}

// loadTile resolves the tile image bytes and decodes them, returning
// nil on any failure.
func (e *Exporter) loadTile(ctx context.Context, tile catalog.Tile) image.Image {
	var data []byte
	if e.images != nil {
		if img, ok := e.images.Image(ctx, tile.Key); ok {
			data = img
		}
	}
	if data == nil && e.refs != nil {
		ref, err := e.refs.Load(ctx, tile.Asset)
		if err != nil {
			e.logger.Warn(ctx, "reference image unavailable",
				logger.String("tileKey", tile.Key),
				logger.Error(err),
			)
			return nil
		}
		data = ref
	}
	if data == nil {
		return nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		e.logger.Warn(ctx, "tile image undecodable",
			logger.String("tileKey", tile.Key),
			logger.Error(err),
		)
		return nil
	}
	return img
}

func drawText(canvas *image.RGBA, text string, x, y int, col color.Color) {
	d := font.Drawer{
		Dst:  canvas,
		Src:  image.NewUniform(col),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}
