// Package validate implements the upload validation pipeline: type and
// size checks, content-safety classification, face presence, and
// metadata-stripping sanitization.
//
// The pipeline short-circuits on the first failing stage and produces a
// tagged result: either a sanitized image or a user-facing rejection
// reason, never both.
package validate

import (
	"bytes"
	"context"
	"image"
	"strings"
	"time"

	"github.com/metalk/feelings/internal/adapters/moderation"
	"github.com/metalk/feelings/pkg/logger"
	"github.com/metalk/feelings/pkg/metrics"
)

// Default validation configuration constants.
const (
	DefaultMaxBytes        = 5 * 1024 * 1024 // 5 MiB upload ceiling
	defaultUnsafeThreshold = 0.5
	defaultCheckTimeout    = 15 * time.Second
)

// Pipeline stage names, used for rejection metrics.
const (
	StageType     = "type"
	StageSize     = "size"
	StageSafety   = "safety"
	StageFace     = "face"
	StageSanitize = "sanitize"
)

// User-facing rejection reasons.
const (
	ReasonUnsupportedType = "Please upload an image file (JPG, PNG, etc.)"
	ReasonTooLarge        = "File size must be less than 5MB"
	ReasonUnsafeContent   = "Image content is not appropriate for this application"
	ReasonFaceCount       = "Please upload a photo with exactly one face"
	ReasonProcessFailed   = "Failed to process image"
)

// Upload is a raw user-submitted file: bytes plus declared media type.
type Upload struct {
	Name      string
	MediaType string
	Data      []byte
}

// Result is the tagged outcome of one validation attempt.
type Result struct {
	Valid     bool
	Reason    string // set only when invalid
	Stage     string // stage that rejected, when invalid
	Processed []byte // sanitized PNG, set only when valid
}

func invalid(stage, reason string) Result {
	metrics.RecordUploadRejected(stage)
	return Result{Valid: false, Stage: stage, Reason: reason}
}

// Validator runs the four-stage upload check followed by sanitization.
type Validator struct {
	maxBytes        int
	acceptedTypes   []string
	unsafeThreshold float64
	checkTimeout    time.Duration

	// OpenOnUnavailable is the fail-open policy: when the classifier is
	// unreachable or errors, the safety stage passes. Acceptable for a
	// demo; flip to false for a deployment that must fail closed.
	openOnUnavailable bool

	classifier moderation.Classifier
	faces      FaceDetector
	sanitizer  *Sanitizer
	logger     logger.Logger
}

// New creates a validator with the given options.
func New(opts ...Option) *Validator {
	v := &Validator{
		maxBytes:          DefaultMaxBytes,
		acceptedTypes:     []string{"image/jpeg", "image/jpg", "image/png"},
		unsafeThreshold:   defaultUnsafeThreshold,
		checkTimeout:      defaultCheckTimeout,
		openOnUnavailable: true,
		faces:             &ContentHeuristic{},
		sanitizer:         NewSanitizer(),
	}
	for _, opt := range opts {
		opt(v)
	}
	if v.logger == nil {
		v.logger = logger.Get().Named("validate")
	}
	return v
}

// Validate runs the pipeline, short-circuiting on the first failure.
func (v *Validator) Validate(ctx context.Context, up Upload) Result {
	start := time.Now()
	defer func() {
		metrics.RecordValidateLatency(float64(time.Since(start).Milliseconds()))
	}()

	// Stage 1: declared media type.
	if !v.typeAccepted(up.MediaType) {
		v.logger.Debug(ctx, "upload rejected: unsupported type",
			logger.String("mediaType", up.MediaType),
		)
		return invalid(StageType, ReasonUnsupportedType)
	}

	// Stage 2: byte size ceiling.
	if len(up.Data) > v.maxBytes {
		v.logger.Debug(ctx, "upload rejected: too large",
			logger.Int("size", len(up.Data)),
			logger.Int("limit", v.maxBytes),
		)
		return invalid(StageSize, ReasonTooLarge)
	}

	// Stages 3 and 4 need a decoded image.
	img, _, err := image.Decode(bytes.NewReader(up.Data))
	if err != nil {
		v.logger.Warn(ctx, "upload rejected: undecodable image", logger.Error(err))
		return invalid(StageSanitize, ReasonProcessFailed)
	}

	// Stage 3: content safety, delegated to the external classifier.
	if rejected, res := v.checkSafety(ctx, up.Data); rejected {
		return res
	}

	// Stage 4: face presence. The detector must report exactly one face.
	if rejected, res := v.checkFace(ctx, img); rejected {
		return res
	}

	// Stage 5: re-encode, stripping embedded metadata (EXIF/GPS).
	processed, err := v.sanitizer.Sanitize(img)
	if err != nil {
		v.logger.Error(ctx, "sanitization failed", logger.Error(err))
		return invalid(StageSanitize, ReasonProcessFailed)
	}

	metrics.RecordUploadAccepted()
	return Result{Valid: true, Processed: processed}
}

func (v *Validator) typeAccepted(mediaType string) bool {
	mt := strings.ToLower(strings.TrimSpace(mediaType))
	for _, t := range v.acceptedTypes {
		if mt == t {
			return true
		}
	}
	return false
}

// checkSafety applies the classifier with the fail-open policy. The
// second return value is meaningful only when the first is true.
func (v *Validator) checkSafety(ctx context.Context, data []byte) (bool, Result) {
	if v.classifier == nil {
		// No classifier configured at all: same policy as unavailable.
		if v.openOnUnavailable {
			metrics.RecordClassifierFailOpen()
			v.logger.Warn(ctx, "no classifier configured; safety check passing open")
			return false, Result{}
		}
		return true, invalid(StageSafety, ReasonUnsafeContent)
	}

	cctx, cancel := context.WithTimeout(ctx, v.checkTimeout)
	defer cancel()

	preds, err := v.classifier.Classify(cctx, data)
	if err != nil {
		if v.openOnUnavailable {
			// Documented risk tradeoff: unavailable classifier does not
			// block the demo, but the event is surfaced in diagnostics.
			metrics.RecordClassifierFailOpen()
			v.logger.Warn(ctx, "classifier unavailable; failing open", logger.Error(err))
			return false, Result{}
		}
		v.logger.Error(ctx, "classifier unavailable; failing closed", logger.Error(err))
		return true, invalid(StageSafety, ReasonUnsafeContent)
	}

	if moderation.Unsafe(preds, v.unsafeThreshold) {
		v.logger.Info(ctx, "upload rejected: unsafe content")
		return true, invalid(StageSafety, ReasonUnsafeContent)
	}
	return false, Result{}
}

func (v *Validator) checkFace(ctx context.Context, img image.Image) (bool, Result) {
	count, err := v.faces.Count(ctx, img)
	if err != nil {
		v.logger.Warn(ctx, "face detection failed", logger.Error(err))
		return true, invalid(StageFace, ReasonFaceCount)
	}
	if count != 1 {
		v.logger.Debug(ctx, "upload rejected: face count", logger.Int("faces", count))
		return true, invalid(StageFace, ReasonFaceCount)
	}
	return false, Result{}
}
