package compose

import (
	"context"
	"fmt"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Default Gemini composer configuration constants.
const (
	defaultGeminiModel    = "gemini-2.0-flash-exp"
	defaultComposeTimeout = 60 * time.Second
)

// Gemini composes images through the Google Gemini API: the uploaded
// photo and the reference feeling image go in as inline image parts, a
// cartoon-style personalized image comes back.
type Gemini struct {
	apiKey  string
	model   string
	timeout time.Duration
}

// GeminiOption applies a configuration option to the Gemini composer.
type GeminiOption func(*Gemini)

// WithModel sets the Gemini model name.
func WithModel(model string) GeminiOption {
	return func(g *Gemini) {
		if model != "" {
			g.model = model
		}
	}
}

// WithTimeout bounds each compose call.
func WithTimeout(d time.Duration) GeminiOption {
	return func(g *Gemini) {
		if d > 0 {
			g.timeout = d
		}
	}
}

// NewGemini creates a Gemini-backed composer.
func NewGemini(apiKey string, opts ...GeminiOption) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key not set")
	}
	g := &Gemini{
		apiKey:  apiKey,
		model:   defaultGeminiModel,
		timeout: defaultComposeTimeout,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Compose sends both images and a style prompt, returning the first
// image part of the first candidate.
func (g *Gemini) Compose(ctx context.Context, req Request) ([]byte, error) {
	cctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	client, err := genai.NewClient(cctx, option.WithAPIKey(g.apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	defer client.Close()

	model := client.GenerativeModel(g.model)

	prompt := fmt.Sprintf(
		"Redraw the second image in the same cartoon style, replacing the person "+
			"with the person from the first photo, expressing the feeling %q. "+
			"Keep the composition, background and framing of the second image.",
		req.Feeling,
	)

	resp, err := model.GenerateContent(cctx,
		genai.ImageData("png", req.Photo),
		genai.ImageData("jpeg", req.Reference),
		genai.Text(prompt),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to generate content for tile %s: %w", req.TileKey, err)
	}

	if len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("no candidates returned for tile %s", req.TileKey)
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return nil, fmt.Errorf("empty content returned for tile %s", req.TileKey)
	}

	for _, part := range candidate.Content.Parts {
		if blob, ok := part.(genai.Blob); ok && len(blob.Data) > 0 {
			return blob.Data, nil
		}
	}
	return nil, fmt.Errorf("no image part in response for tile %s", req.TileKey)
}
