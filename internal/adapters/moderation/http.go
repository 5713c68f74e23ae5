package moderation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Default HTTP classifier configuration constants.
const (
	defaultClassifyTimeout = 10 * time.Second
)

// HTTPClassifier calls a remote classification endpoint. The endpoint
// accepts raw image bytes and responds with a JSON prediction list.
type HTTPClassifier struct {
	endpoint string
	client   *http.Client
}

// HTTPOption applies a configuration option to the HTTPClassifier.
type HTTPOption func(*HTTPClassifier)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(h *HTTPClassifier) {
		if c != nil {
			h.client = c
		}
	}
}

// NewHTTPClassifier creates a classifier client for the given endpoint.
func NewHTTPClassifier(endpoint string, opts ...HTTPOption) *HTTPClassifier {
	h := &HTTPClassifier{
		endpoint: endpoint,
		client:   &http.Client{Timeout: defaultClassifyTimeout},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

type classifyResponse struct {
	Predictions []Prediction `json:"predictions"`
}

// Classify posts the image and decodes the prediction list.
func (h *HTTPClassifier) Classify(ctx context.Context, image []byte) ([]Prediction, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint, bytes.NewReader(image))
	if err != nil {
		return nil, fmt.Errorf("build classify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("classifier unavailable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("classifier returned status %d", resp.StatusCode)
	}

	var out classifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode classifier response: %w", err)
	}
	return out.Predictions, nil
}
