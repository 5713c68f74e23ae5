package catalog

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestDefaultCatalog(t *testing.T) {
	Convey("Given the default catalog", t, func() {
		cat := Default()

		Convey("Then it holds four categories of six tiles", func() {
			So(cat, ShouldHaveLength, 4)
			for _, c := range cat {
				So(c.Tiles, ShouldHaveLength, 6)
			}
			So(cat.TileCount(), ShouldEqual, 24)
		})

		Convey("Then the categories appear in board order", func() {
			keys := make([]string, 0, len(cat))
			for _, c := range cat {
				keys = append(keys, c.Key)
			}
			So(keys, ShouldResemble, []string{"goodBody", "goodFeelings", "badFeelings", "badBody"})
		})

		Convey("Then every tile has labels for all supported languages", func() {
			for _, tile := range cat.Tiles() {
				for _, lang := range Languages() {
					So(tile.Label[lang], ShouldNotBeEmpty)
				}
				So(tile.Asset, ShouldNotBeEmpty)
			}
		})

		Convey("Then tile keys are unique across the catalog", func() {
			seen := map[string]bool{}
			for _, tile := range cat.Tiles() {
				So(seen[tile.Key], ShouldBeFalse)
				seen[tile.Key] = true
			}
		})

		Convey("When looking up a category by key", func() {
			c, ok := cat.Category("badFeelings")

			Convey("Then the category is found", func() {
				So(ok, ShouldBeTrue)
				So(c.Label.Get(LangEnglish), ShouldNotBeEmpty)
			})
		})

		Convey("When looking up an unknown category", func() {
			_, ok := cat.Category("nope")
			So(ok, ShouldBeFalse)
		})

		Convey("When looking up a tile by key", func() {
			tile, ok := cat.Tile("happy")

			Convey("Then the tile carries its localized labels", func() {
				So(ok, ShouldBeTrue)
				So(tile.Label.Get(LangEnglish), ShouldEqual, "Happy")
				So(tile.Label.Get(LangSpanish), ShouldEqual, "Feliz")
				So(tile.Label.Get(LangPortuguese), ShouldEqual, "Feliz")
			})
		})
	})
}

func TestLabelFallback(t *testing.T) {
	Convey("Given a label with a missing translation", t, func() {
		l := Label{LangEnglish: "Calm"}

		Convey("When requesting an absent language", func() {
			So(l.Get(LangSpanish), ShouldEqual, "Calm")
		})

		Convey("When requesting an unsupported language", func() {
			So(l.Get(Lang("fr")), ShouldEqual, "Calm")
		})
	})
}

func TestLanguageSupport(t *testing.T) {
	Convey("Given the supported language set", t, func() {
		So(Languages(), ShouldResemble, []Lang{LangEnglish, LangSpanish, LangPortuguese})
		So(IsSupported(LangEnglish), ShouldBeTrue)
		So(IsSupported(Lang("de")), ShouldBeFalse)
		So(IsSupported(Lang("")), ShouldBeFalse)
	})
}
