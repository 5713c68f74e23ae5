package service

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/metalk/feelings/internal/adapters/assets"
	"github.com/metalk/feelings/internal/adapters/compose"
	"github.com/metalk/feelings/internal/board"
	"github.com/metalk/feelings/internal/domain/catalog"
	"github.com/metalk/feelings/internal/domain/validate"
	"github.com/metalk/feelings/internal/export/collage"
	"github.com/metalk/feelings/internal/speech"
)

// photoUpload builds a valid photo upload that passes every stage.
func photoUpload() validate.Upload {
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 4), G: uint8(y * 4), B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	return validate.Upload{Name: "me.png", MediaType: "image/png", Data: buf.Bytes()}
}

// referenceSet maps every catalog asset id to a small decodable PNG.
func referenceSet(cat catalog.Catalog) assets.Memory {
	var buf bytes.Buffer
	_ = png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 8, 8)))
	refs := assets.Memory{}
	for _, tile := range cat.Tiles() {
		refs[tile.Asset] = buf.Bytes()
	}
	return refs
}

func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return cond()
}

func newTestService(opts ...Option) *Service {
	base := []Option{
		WithComposer(compose.NewSimulated(compose.WithLatencyRange(time.Millisecond, 3*time.Millisecond))),
		WithAssets(referenceSet(catalog.Default())),
		WithWorkerCount(4),
	}
	return New(append(base, opts...)...)
}

func TestServiceLifecycle(t *testing.T) {
	Convey("Given a service", t, func() {
		ctx := context.Background()
		svc := newTestService()

		Convey("When started and stopped", func() {
			So(svc.Start(ctx), ShouldBeNil)
			svc.Stop()

			Convey("Then repeating either is safe", func() {
				So(svc.Start(ctx), ShouldBeNil)
				svc.Stop()
				svc.Stop()
			})
		})

		Convey("When stats are requested before start", func() {
			stats := svc.GetStats()

			So(stats["started"], ShouldBeFalse)
			So(stats, ShouldNotContainKey, "queueLength")
		})
	})
}

func TestServiceSessions(t *testing.T) {
	Convey("Given a started service", t, func() {
		ctx := context.Background()
		svc := newTestService()
		So(svc.Start(ctx), ShouldBeNil)
		Reset(svc.Stop)

		Convey("When a new session is created", func() {
			st, err := svc.NewSession(ctx)

			Convey("Then it has an id and a start time", func() {
				So(err, ShouldBeNil)
				So(st.ID, ShouldNotBeEmpty)
				So(st.SessionStart.IsZero(), ShouldBeFalse)
				So(st.AvatarsCreated, ShouldEqual, 0)
			})

			Convey("Then info reports it ready to generate", func() {
				_, decision, err := svc.SessionInfo(ctx, st.ID)
				So(err, ShouldBeNil)
				So(decision.Allowed, ShouldBeTrue)
			})
		})

		Convey("When a session is initialized twice", func() {
			first, err := svc.InitializeSession(ctx, "fixed-id")
			So(err, ShouldBeNil)

			second, err := svc.InitializeSession(ctx, "fixed-id")

			Convey("Then the start time is preserved", func() {
				So(err, ShouldBeNil)
				So(second.SessionStart, ShouldEqual, first.SessionStart)
			})
		})

		Convey("When a session is reset", func() {
			st, _ := svc.NewSession(ctx)
			So(svc.ResetSession(ctx, st.ID), ShouldBeNil)

			fresh, err := svc.InitializeSession(ctx, st.ID)
			So(err, ShouldBeNil)
			So(fresh.AvatarsCreated, ShouldEqual, 0)
		})
	})
}

func TestServiceUpload(t *testing.T) {
	Convey("Given a started service", t, func() {
		ctx := context.Background()
		svc := newTestService()
		So(svc.Start(ctx), ShouldBeNil)
		Reset(svc.Stop)

		st, err := svc.NewSession(ctx)
		So(err, ShouldBeNil)

		Convey("When a valid photo is uploaded", func() {
			outcome, err := svc.Upload(ctx, st.ID, photoUpload())

			Convey("Then it is accepted and the pipeline starts", func() {
				So(err, ShouldBeNil)
				So(outcome.Status, ShouldEqual, UploadAccepted)
				So(outcome.GenerationID, ShouldNotBeEmpty)
				So(outcome.AvatarsCreated, ShouldEqual, 1)
			})

			Convey("Then every tile is personalized", func() {
				So(waitFor(func() bool { return svc.Progress(ctx).Done }), ShouldBeTrue)

				p := svc.Progress(ctx)
				So(p.Completed, ShouldEqual, svc.Catalog().TileCount())
				So(p.Failed, ShouldEqual, 0)
			})

			Convey("Then an immediate second upload hits the cooldown", func() {
				second, err := svc.Upload(ctx, st.ID, photoUpload())

				So(err, ShouldBeNil)
				So(second.Status, ShouldEqual, UploadOnCooldown)
				So(second.RetryAfterSeconds, ShouldBeBetweenOrEqual, 1, 5)
			})
		})

		Convey("When the upload is not an image", func() {
			outcome, err := svc.Upload(ctx, st.ID, validate.Upload{
				Name:      "doc.pdf",
				MediaType: "application/pdf",
				Data:      []byte("x"),
			})

			Convey("Then it is rejected with the stage message", func() {
				So(err, ShouldBeNil)
				So(outcome.Status, ShouldEqual, UploadRejected)
				So(outcome.Reason, ShouldEqual, validate.ReasonUnsupportedType)
			})

			Convey("Then a rejection does not start the cooldown", func() {
				_, decision, err := svc.SessionInfo(ctx, st.ID)
				So(err, ShouldBeNil)
				So(decision.Allowed, ShouldBeTrue)
			})
		})
	})
}

func TestServicePartialGeneration(t *testing.T) {
	Convey("Given a composer that fails for one tile", t, func() {
		ctx := context.Background()
		svc := newTestService(WithComposer(compose.NewSimulated(
			compose.WithLatencyRange(time.Millisecond, 3*time.Millisecond),
			compose.WithFailingTiles("happy"),
		)))
		So(svc.Start(ctx), ShouldBeNil)
		Reset(svc.Stop)

		st, _ := svc.NewSession(ctx)

		Convey("When an upload is processed", func() {
			outcome, err := svc.Upload(ctx, st.ID, photoUpload())
			So(err, ShouldBeNil)
			So(outcome.Status, ShouldEqual, UploadAccepted)
			So(waitFor(func() bool { return svc.Progress(ctx).Done }), ShouldBeTrue)

			Convey("Then the generation completes with one failure", func() {
				p := svc.Progress(ctx)
				So(p.Completed, ShouldEqual, svc.Catalog().TileCount()-1)
				So(p.Failed, ShouldEqual, 1)
				So(p.AllFailed, ShouldBeFalse)
			})

			Convey("Then the failed tile falls back to its reference", func() {
				_, assetID, err := svc.TileImage(ctx, "happy")
				So(err, ShouldBeNil)
				So(assetID, ShouldNotBeEmpty)

				img, assetID, err := svc.TileImage(ctx, "sad")
				So(err, ShouldBeNil)
				So(assetID, ShouldBeEmpty)
				So(img, ShouldNotBeEmpty)
			})
		})
	})
}

func TestServiceSupersession(t *testing.T) {
	Convey("Given a service with a short cooldown", t, func() {
		ctx := context.Background()
		svc := newTestService(WithCooldown(10 * time.Millisecond))
		So(svc.Start(ctx), ShouldBeNil)
		Reset(svc.Stop)

		st, _ := svc.NewSession(ctx)

		Convey("When a second upload follows the first", func() {
			first, err := svc.Upload(ctx, st.ID, photoUpload())
			So(err, ShouldBeNil)
			So(first.Status, ShouldEqual, UploadAccepted)
			So(waitFor(func() bool { return svc.Progress(ctx).Done }), ShouldBeTrue)

			time.Sleep(20 * time.Millisecond)
			second, err := svc.Upload(ctx, st.ID, photoUpload())
			So(err, ShouldBeNil)
			So(second.Status, ShouldEqual, UploadAccepted)

			Convey("Then the new generation supersedes the old one", func() {
				So(second.GenerationID, ShouldNotEqual, first.GenerationID)
				So(svc.Progress(ctx).GenerationID, ShouldEqual, second.GenerationID)
				So(second.AvatarsCreated, ShouldEqual, 2)
			})
		})
	})
}

func TestServiceBoardAndSpeech(t *testing.T) {
	Convey("Given a started service with a mock speech engine", t, func() {
		ctx := context.Background()
		engine := speech.NewMockEngine(
			speech.Voice{ID: "en-1", Name: "English", Lang: "en-US", Default: true},
		)
		svc := newTestService(WithSpeech(speech.NewDriver(engine)))
		So(svc.Start(ctx), ShouldBeNil)
		Reset(svc.Stop)

		Convey("When a category view is requested", func() {
			view, err := svc.BoardView(ctx, "goodFeelings", catalog.LangSpanish)

			Convey("Then tiles render from the reference tier", func() {
				So(err, ShouldBeNil)
				So(view.Tiles, ShouldHaveLength, 6)
				for _, tile := range view.Tiles {
					So(tile.Source, ShouldEqual, board.SourceReference)
					So(tile.Label, ShouldNotBeEmpty)
				}
			})
		})

		Convey("When an unknown category is requested", func() {
			_, err := svc.BoardView(ctx, "nope", catalog.LangEnglish)
			So(err, ShouldNotBeNil)
		})

		Convey("When a tile is tapped", func() {
			err := svc.TapTile(ctx, "happy", catalog.LangEnglish)

			Convey("Then the label is spoken", func() {
				So(err, ShouldBeNil)
				So(engine.Spoken(), ShouldContain, "Happy")
			})
		})

		Convey("When free text is spoken", func() {
			So(svc.Speak(ctx, "hello there", catalog.LangEnglish), ShouldBeNil)
			So(engine.Spoken(), ShouldContain, "hello there")
		})

		Convey("When diagnostics are probed", func() {
			diag := svc.SpeechDiagnostics(ctx)

			So(diag.Supported, ShouldBeTrue)
			So(diag.Ready, ShouldBeTrue)
			So(diag.VoiceCount, ShouldEqual, 1)
		})
	})
}

func TestServiceCollageAndPrefs(t *testing.T) {
	Convey("Given a started service", t, func() {
		ctx := context.Background()
		svc := newTestService()
		So(svc.Start(ctx), ShouldBeNil)
		Reset(svc.Stop)

		Convey("When a collage is rendered", func() {
			data, err := svc.Collage(ctx, collage.Options{Title: "My Feelings"})

			Convey("Then the output is a decodable PNG", func() {
				So(err, ShouldBeNil)
				cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
				So(err, ShouldBeNil)
				So(format, ShouldEqual, "png")
				So(cfg.Width, ShouldBeGreaterThan, 0)
			})
		})

		Convey("When preferences are saved and reloaded", func() {
			st, _ := svc.NewSession(ctx)

			p, err := svc.Preferences(ctx, st.ID)
			So(err, ShouldBeNil)
			So(p.Language, ShouldEqual, catalog.LangEnglish)

			p.Language = catalog.LangPortuguese
			p.HighContrast = true
			So(svc.SavePreferences(ctx, st.ID, p), ShouldBeNil)

			got, err := svc.Preferences(ctx, st.ID)
			So(err, ShouldBeNil)
			So(got.Language, ShouldEqual, catalog.LangPortuguese)
			So(got.HighContrast, ShouldBeTrue)
		})
	})
}

func TestServiceStats(t *testing.T) {
	Convey("Given a started service", t, func() {
		ctx := context.Background()
		svc := newTestService()
		So(svc.Start(ctx), ShouldBeNil)
		Reset(svc.Stop)

		Convey("When stats are collected", func() {
			stats := svc.GetStats()

			Convey("Then the snapshot covers runtime state", func() {
				So(stats["started"], ShouldBeTrue)
				So(stats["workerCount"], ShouldEqual, 4)
				So(stats["cooldownMS"], ShouldEqual, int64(5000))
				So(stats, ShouldContainKey, "queueLength")
				So(stats, ShouldContainKey, "activeGeneration")
				So(stats, ShouldContainKey, "sessions")
			})
		})
	})
}
