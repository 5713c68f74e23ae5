// Package moderation defines the content-safety classifier boundary used
// by upload validation.
//
// The classifier is an external collaborator: the validator only sees
// category/probability predictions and applies its own threshold policy.
package moderation

import (
	"context"
)

// Categories the safety policy treats as unsafe.
const (
	CategoryExplicit   = "Porn"
	CategorySuggestive = "Sexy"
)

// Prediction is one classifier output: a category and its confidence.
type Prediction struct {
	Category    string  `json:"category"`
	Probability float64 `json:"probability"`
}

// Classifier classifies a decoded image into content categories.
type Classifier interface {
	// Classify returns predictions for the image bytes. An error means
	// the classifier was unavailable or failed internally; the caller's
	// fail-open/fail-closed policy decides what happens next.
	Classify(ctx context.Context, image []byte) ([]Prediction, error)
}

// Unsafe reports whether the predictions cross the threshold for any of
// the unsafe categories.
func Unsafe(preds []Prediction, threshold float64) bool {
	for _, p := range preds {
		if p.Category != CategoryExplicit && p.Category != CategorySuggestive {
			continue
		}
		if p.Probability > threshold {
			return true
		}
	}
	return false
}
