package validate

import (
	"time"

	"github.com/metalk/feelings/internal/adapters/moderation"
	"github.com/metalk/feelings/pkg/logger"
)

// Option applies a configuration option to the Validator.
type Option func(*Validator)

// WithMaxBytes sets the upload size ceiling.
func WithMaxBytes(n int) Option {
	return func(v *Validator) {
		if n > 0 {
			v.maxBytes = n
		}
	}
}

// WithAcceptedTypes sets the accepted declared media types.
func WithAcceptedTypes(types []string) Option {
	return func(v *Validator) {
		if len(types) > 0 {
			v.acceptedTypes = types
		}
	}
}

// WithClassifier sets the content-safety classifier.
func WithClassifier(c moderation.Classifier) Option {
	return func(v *Validator) {
		v.classifier = c
	}
}

// WithUnsafeThreshold sets the probability above which an unsafe
// category rejects the upload.
func WithUnsafeThreshold(t float64) Option {
	return func(v *Validator) {
		if t > 0 && t < 1 {
			v.unsafeThreshold = t
		}
	}
}

// WithFailOpen sets the policy applied when the classifier is
// unavailable: true passes the safety stage, false rejects.
func WithFailOpen(open bool) Option {
	return func(v *Validator) {
		v.openOnUnavailable = open
	}
}

// WithFaceDetector sets the face-presence detector.
func WithFaceDetector(d FaceDetector) Option {
	return func(v *Validator) {
		if d != nil {
			v.faces = d
		}
	}
}

// WithSanitizer sets the sanitizer.
func WithSanitizer(s *Sanitizer) Option {
	return func(v *Validator) {
		if s != nil {
			v.sanitizer = s
		}
	}
}

// WithCheckTimeout bounds each external check call.
func WithCheckTimeout(d time.Duration) Option {
	return func(v *Validator) {
		if d > 0 {
			v.checkTimeout = d
		}
	}
}

// WithLogger sets a custom logger for the validator.
func WithLogger(l logger.Logger) Option {
	return func(v *Validator) {
		if l != nil {
			v.logger = l
		}
	}
}
