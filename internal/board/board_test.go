package board

import (
	"context"
	"errors"
	"sync"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/metalk/feelings/internal/domain/catalog"
)

type memoryImages struct {
	mu     sync.Mutex
	images map[string][]byte
}

func (m *memoryImages) Image(_ context.Context, tileKey string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	img, ok := m.images[tileKey]
	return img, ok
}

type recordingSpeaker struct {
	spoken []string
	langs  []catalog.Lang
	err    error
}

func (r *recordingSpeaker) Speak(_ context.Context, text string, lang catalog.Lang) error {
	if r.err != nil {
		return r.err
	}
	r.spoken = append(r.spoken, text)
	r.langs = append(r.langs, lang)
	return nil
}

func TestCategoryView(t *testing.T) {
	Convey("Given a presenter with a partial personalized set", t, func() {
		cat := catalog.Default()
		images := &memoryImages{images: map[string][]byte{
			"comfortable": []byte("personalized-comfortable"),
			"strong":      []byte("personalized-strong"),
		}}
		presenter := NewPresenter(cat, images, nil)
		ctx := context.Background()

		Convey("When rendering a category", func() {
			view, err := presenter.CategoryView(ctx, "goodBody", catalog.LangEnglish)

			Convey("Then every tile resolves, personalized where available", func() {
				So(err, ShouldBeNil)
				So(view.Tiles, ShouldHaveLength, 6)

				bySrc := map[ImageSource]int{}
				for _, tile := range view.Tiles {
					bySrc[tile.Source]++
				}
				So(bySrc[SourcePersonalized], ShouldEqual, 2)
				So(bySrc[SourceReference], ShouldEqual, 4)
			})

			Convey("Then tiles keep catalog order and localized labels", func() {
				So(err, ShouldBeNil)
				So(view.Tiles[0].Key, ShouldEqual, "comfortable")
				So(view.Tiles[0].Label, ShouldEqual, "Comfortable")
			})
		})

		Convey("When rendering in Spanish", func() {
			view, err := presenter.CategoryView(ctx, "goodBody", catalog.LangSpanish)

			Convey("Then labels are localized", func() {
				So(err, ShouldBeNil)
				So(view.Lang, ShouldEqual, "es")
				So(view.Tiles[0].Label, ShouldNotEqual, "Comfortable")
			})
		})

		Convey("When the category key is unknown", func() {
			_, err := presenter.CategoryView(ctx, "nonsense", catalog.LangEnglish)

			Convey("Then ErrUnknownCategory is returned", func() {
				So(errors.Is(err, ErrUnknownCategory), ShouldBeTrue)
			})
		})
	})
}

func TestTileImage(t *testing.T) {
	Convey("Given a presenter with one personalized tile", t, func() {
		cat := catalog.Default()
		images := &memoryImages{images: map[string][]byte{
			"happy": []byte("personalized-happy"),
		}}
		presenter := NewPresenter(cat, images, nil)
		ctx := context.Background()

		Convey("When resolving the personalized tile", func() {
			img, asset, err := presenter.TileImage(ctx, "happy")

			Convey("Then the personalized bytes are returned", func() {
				So(err, ShouldBeNil)
				So(img, ShouldResemble, []byte("personalized-happy"))
				So(asset, ShouldBeEmpty)
			})
		})

		Convey("When resolving a tile without a personalized image", func() {
			img, asset, err := presenter.TileImage(ctx, "sad")

			Convey("Then the reference asset id is returned", func() {
				So(err, ShouldBeNil)
				So(img, ShouldBeNil)
				So(asset, ShouldNotBeEmpty)
			})
		})

		Convey("When the tile key is unknown", func() {
			_, _, err := presenter.TileImage(ctx, "nonsense")

			Convey("Then ErrUnknownTile is returned", func() {
				So(errors.Is(err, ErrUnknownTile), ShouldBeTrue)
			})
		})
	})
}

func TestTap(t *testing.T) {
	Convey("Given a presenter with a speaker", t, func() {
		cat := catalog.Default()
		speaker := &recordingSpeaker{}
		presenter := NewPresenter(cat, &memoryImages{}, speaker)
		ctx := context.Background()

		Convey("When tapping a tile", func() {
			err := presenter.Tap(ctx, "happy", catalog.LangEnglish)

			Convey("Then the localized label is spoken", func() {
				So(err, ShouldBeNil)
				So(speaker.spoken, ShouldResemble, []string{"Happy"})
				So(speaker.langs, ShouldResemble, []catalog.Lang{catalog.LangEnglish})
			})
		})

		Convey("When the speaker fails", func() {
			speaker.err = errors.New("no audio device")
			err := presenter.Tap(ctx, "happy", catalog.LangEnglish)

			Convey("Then the failure is soft and surfaced", func() {
				So(err, ShouldNotBeNil)
			})
		})

		Convey("When tapping an unknown tile", func() {
			err := presenter.Tap(ctx, "nonsense", catalog.LangEnglish)

			Convey("Then ErrUnknownTile is returned and nothing is spoken", func() {
				So(errors.Is(err, ErrUnknownTile), ShouldBeTrue)
				So(speaker.spoken, ShouldBeEmpty)
			})
		})
	})
}
