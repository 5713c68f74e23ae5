package compose

import (
	"context"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestSimulatedCompose(t *testing.T) {
	Convey("Given a simulated composer", t, func() {
		ctx := context.Background()
		s := NewSimulated(WithLatencyRange(time.Millisecond, 3*time.Millisecond))

		Convey("When composing a tile", func() {
			out, err := s.Compose(ctx, Request{
				TileKey:   "happy",
				Feeling:   "Happy",
				Photo:     []byte("photo"),
				Reference: []byte("reference"),
			})

			Convey("Then the reference image is echoed back", func() {
				So(err, ShouldBeNil)
				So(out, ShouldResemble, []byte("reference"))
			})
		})

		Convey("When the result is mutated by the caller", func() {
			ref := []byte("reference")
			out, err := s.Compose(ctx, Request{TileKey: "happy", Reference: ref})
			So(err, ShouldBeNil)

			out[0] = 'X'

			Convey("Then the caller's reference bytes are untouched", func() {
				So(ref[0], ShouldEqual, byte('r'))
			})
		})

		Convey("When a tile is marked as failing", func() {
			failing := NewSimulated(
				WithLatencyRange(time.Millisecond, 3*time.Millisecond),
				WithFailingTiles("sad"),
			)

			_, badErr := failing.Compose(ctx, Request{TileKey: "sad", Reference: []byte("r")})
			good, goodErr := failing.Compose(ctx, Request{TileKey: "happy", Reference: []byte("r")})

			Convey("Then only that tile fails", func() {
				So(badErr, ShouldNotBeNil)
				So(goodErr, ShouldBeNil)
				So(good, ShouldResemble, []byte("r"))
			})
		})

		Convey("When the context is already canceled", func() {
			canceled, cancel := context.WithCancel(ctx)
			cancel()

			slow := NewSimulated(WithLatencyRange(time.Second, 2*time.Second))
			_, err := slow.Compose(canceled, Request{TileKey: "happy"})

			Convey("Then compose aborts with the context error", func() {
				So(err, ShouldEqual, context.Canceled)
			})
		})

		Convey("When an invalid latency range is supplied", func() {
			odd := NewSimulated(WithLatencyRange(-time.Second, -time.Millisecond))

			start := time.Now()
			_, err := odd.Compose(ctx, Request{TileKey: "happy"})

			Convey("Then the defaults still apply", func() {
				So(err, ShouldBeNil)
				So(time.Since(start), ShouldBeGreaterThanOrEqualTo, defaultMinLatency)
			})
		})
	})
}
