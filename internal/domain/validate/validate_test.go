package validate

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/metalk/feelings/internal/adapters/moderation"
)

// countingClassifier records how many times it was consulted.
type countingClassifier struct {
	calls       int
	predictions []moderation.Prediction
	err         error
}

func (c *countingClassifier) Classify(_ context.Context, _ []byte) ([]moderation.Prediction, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return c.predictions, nil
}

func gradientImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 100, A: 255})
		}
	}
	return img
}

func photoPNG(w, h int) []byte {
	var buf bytes.Buffer
	_ = png.Encode(&buf, gradientImage(w, h))
	return buf.Bytes()
}

func photoJPEG(w, h int) []byte {
	var buf bytes.Buffer
	_ = jpeg.Encode(&buf, gradientImage(w, h), nil)
	return buf.Bytes()
}

func blankPNG(w, h int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 50, G: 50, B: 50, A: 255})
		}
	}
	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	return buf.Bytes()
}

func transparentPNG(w, h int) []byte {
	var buf bytes.Buffer
	_ = png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h)))
	return buf.Bytes()
}

func TestValidateStages(t *testing.T) {
	Convey("Given a validator with a counting classifier", t, func() {
		ctx := context.Background()
		classifier := &countingClassifier{}
		v := New(WithClassifier(classifier))

		Convey("When the media type is not an image", func() {
			res := v.Validate(ctx, Upload{Name: "doc.pdf", MediaType: "application/pdf", Data: []byte("x")})

			Convey("Then it rejects at the type stage without classifying", func() {
				So(res.Valid, ShouldBeFalse)
				So(res.Stage, ShouldEqual, StageType)
				So(res.Reason, ShouldEqual, ReasonUnsupportedType)
				So(classifier.calls, ShouldEqual, 0)
			})
		})

		Convey("When a 6 MB PNG is uploaded", func() {
			big := Upload{Name: "big.png", MediaType: "image/png", Data: make([]byte, 6*1024*1024)}
			res := v.Validate(ctx, big)

			Convey("Then it rejects at the size stage without classifying", func() {
				So(res.Valid, ShouldBeFalse)
				So(res.Stage, ShouldEqual, StageSize)
				So(res.Reason, ShouldEqual, ReasonTooLarge)
				So(classifier.calls, ShouldEqual, 0)
			})
		})

		Convey("When the bytes are not a decodable image", func() {
			res := v.Validate(ctx, Upload{Name: "x.png", MediaType: "image/png", Data: []byte("not an image")})

			Convey("Then it rejects with the processing message", func() {
				So(res.Valid, ShouldBeFalse)
				So(res.Reason, ShouldEqual, ReasonProcessFailed)
			})
		})

		Convey("When the classifier flags explicit content", func() {
			classifier.predictions = []moderation.Prediction{
				{Category: moderation.CategoryExplicit, Probability: 0.9},
			}
			res := v.Validate(ctx, Upload{Name: "p.png", MediaType: "image/png", Data: photoPNG(64, 64)})

			Convey("Then it rejects at the safety stage", func() {
				So(res.Valid, ShouldBeFalse)
				So(res.Stage, ShouldEqual, StageSafety)
				So(res.Reason, ShouldEqual, ReasonUnsafeContent)
				So(classifier.calls, ShouldEqual, 1)
			})
		})

		Convey("When the classifier reports only low probabilities", func() {
			classifier.predictions = []moderation.Prediction{
				{Category: moderation.CategoryExplicit, Probability: 0.3},
				{Category: moderation.CategorySuggestive, Probability: 0.5},
			}
			res := v.Validate(ctx, Upload{Name: "p.png", MediaType: "image/png", Data: photoPNG(64, 64)})

			Convey("Then probabilities at the threshold do not block", func() {
				So(res.Valid, ShouldBeTrue)
			})
		})

		Convey("When the classifier is unreachable", func() {
			classifier.err = errors.New("connection refused")

			Convey("And the policy is fail open", func() {
				res := v.Validate(ctx, Upload{Name: "p.png", MediaType: "image/png", Data: photoPNG(64, 64)})

				Convey("Then the upload passes the safety stage", func() {
					So(res.Valid, ShouldBeTrue)
				})
			})

			Convey("And the policy is fail closed", func() {
				closed := New(WithClassifier(classifier), WithFailOpen(false))
				res := closed.Validate(ctx, Upload{Name: "p.png", MediaType: "image/png", Data: photoPNG(64, 64)})

				Convey("Then the upload is blocked", func() {
					So(res.Valid, ShouldBeFalse)
					So(res.Stage, ShouldEqual, StageSafety)
				})
			})
		})

		Convey("When the photo has no visible content", func() {
			res := v.Validate(ctx, Upload{Name: "t.png", MediaType: "image/png", Data: transparentPNG(64, 64)})

			Convey("Then the face stage rejects it", func() {
				So(res.Valid, ShouldBeFalse)
				So(res.Stage, ShouldEqual, StageFace)
				So(res.Reason, ShouldEqual, ReasonFaceCount)
			})
		})

		Convey("When the photo is a uniform blank", func() {
			res := v.Validate(ctx, Upload{Name: "b.png", MediaType: "image/png", Data: blankPNG(64, 64)})

			Convey("Then the face stage rejects it", func() {
				So(res.Valid, ShouldBeFalse)
				So(res.Stage, ShouldEqual, StageFace)
			})
		})

		Convey("When the detector reports two faces", func() {
			two := New(WithClassifier(classifier), WithFaceDetector(FixedFaces{Faces: 2}))
			res := two.Validate(ctx, Upload{Name: "p.png", MediaType: "image/png", Data: photoPNG(64, 64)})

			Convey("Then exactly-one is enforced", func() {
				So(res.Valid, ShouldBeFalse)
				So(res.Stage, ShouldEqual, StageFace)
				So(res.Reason, ShouldEqual, ReasonFaceCount)
			})
		})
	})
}

func TestValidateAccept(t *testing.T) {
	Convey("Given a validator without a classifier", t, func() {
		ctx := context.Background()
		v := New()

		Convey("When a 2 MB JPEG photo is uploaded", func() {
			data := photoJPEG(800, 600)
			So(len(data), ShouldBeLessThan, 2*1024*1024)
			res := v.Validate(ctx, Upload{Name: "me.jpg", MediaType: "image/jpeg", Data: data})

			Convey("Then it is accepted and re-encoded as PNG", func() {
				So(res.Valid, ShouldBeTrue)
				So(res.Reason, ShouldBeEmpty)
				img, format, err := image.Decode(bytes.NewReader(res.Processed))
				So(err, ShouldBeNil)
				So(format, ShouldEqual, "png")
				So(img.Bounds().Dx(), ShouldEqual, 800)
			})
		})

		Convey("When the declared type uses odd casing", func() {
			res := v.Validate(ctx, Upload{Name: "p.PNG", MediaType: "IMAGE/PNG", Data: photoPNG(64, 64)})

			Convey("Then the type check is case-insensitive", func() {
				So(res.Valid, ShouldBeTrue)
			})
		})

		Convey("When the photo exceeds the dimension ceiling", func() {
			small := New(WithSanitizer(NewSanitizer(WithMaxDimension(100))))
			res := small.Validate(ctx, Upload{Name: "p.png", MediaType: "image/png", Data: photoPNG(400, 200)})

			Convey("Then the sanitized output is downscaled", func() {
				So(res.Valid, ShouldBeTrue)
				img, _, err := image.Decode(bytes.NewReader(res.Processed))
				So(err, ShouldBeNil)
				So(img.Bounds().Dx(), ShouldBeLessThanOrEqualTo, 100)
			})
		})
	})
}
