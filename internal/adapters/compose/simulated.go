package compose

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"
)

// Default simulated composer configuration constants.
const (
	defaultMinLatency = 80 * time.Millisecond
	defaultMaxLatency = 150 * time.Millisecond
	defaultRandomSeed = 42
)

// SimulatedOption applies a configuration option to the Simulated composer.
type SimulatedOption func(*Simulated)

// WithLatencyRange sets the simulated latency range.
func WithLatencyRange(minLatency, maxLatency time.Duration) SimulatedOption {
	return func(s *Simulated) {
		if minLatency > 0 && maxLatency > minLatency {
			s.minLatency = minLatency
			s.maxLatency = maxLatency
		}
	}
}

// WithFailingTiles marks tile keys whose compose calls always fail.
func WithFailingTiles(keys ...string) SimulatedOption {
	return func(s *Simulated) {
		for _, k := range keys {
			s.failing[k] = true
		}
	}
}

// Simulated implements Composer without calling a real model: it sleeps
// within a configured latency range and echoes the reference image back.
// Useful for local runs and tests where a generation backend is absent.
type Simulated struct {
	minLatency time.Duration
	maxLatency time.Duration
	failing    map[string]bool

	mu  sync.Mutex
	rng *rand.Rand
}

// NewSimulated creates a simulated composer with configuration options.
func NewSimulated(opts ...SimulatedOption) *Simulated {
	s := &Simulated{
		minLatency: defaultMinLatency,
		maxLatency: defaultMaxLatency,
		failing:    make(map[string]bool),
		rng:        rand.New(rand.NewSource(defaultRandomSeed)), //nolint:gosec // deterministic seed for reproducible testing
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Compose sleeps for a latency sample and returns the reference bytes.
func (s *Simulated) Compose(ctx context.Context, req Request) ([]byte, error) {
	s.mu.Lock()
	jitter := s.rng.Int63n(int64(s.maxLatency - s.minLatency))
	s.mu.Unlock()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(s.minLatency + time.Duration(jitter)):
	}

	if s.failing[req.TileKey] {
		return nil, fmt.Errorf("simulated compose failure for tile %s", req.TileKey)
	}
	out := make([]byte, len(req.Reference))
	copy(out, req.Reference)
	return out, nil
}
