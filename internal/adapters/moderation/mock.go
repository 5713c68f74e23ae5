package moderation

import "context"

// MockClassifier returns scripted predictions. Used by tests and by
// deployments without a classifier endpoint configured.
type MockClassifier struct {
	Predictions []Prediction
	Err         error
}

// Classify returns the scripted predictions or error.
func (m *MockClassifier) Classify(_ context.Context, _ []byte) ([]Prediction, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Predictions, nil
}
