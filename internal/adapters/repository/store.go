// Package repository holds the personalized tile images for the active
// generation.
//
// The map may be partial: a tile appears only once its compose call
// succeeds, and consumers fall back to the reference image for absent
// keys. A new upload supersedes the whole set; superseded images are
// released exactly once and results from a stale generation are never
// installed.
package repository

import (
	"context"
	"sync"

	"github.com/metalk/feelings/pkg/metrics"
)

// Progress describes how far the active generation has come. AllFailed
// marks a generation that finished with zero personalized tiles, so
// clients get the everything-failed signal without recomputing it.
type Progress struct {
	GenerationID string `json:"generation_id"`
	Completed    int    `json:"completed"`
	Failed       int    `json:"failed"`
	Total        int    `json:"total"`
	Done         bool   `json:"done"`
	AllFailed    bool   `json:"all_failed"`
}

// Store is the contract for personalized image storage.
type Store interface {
	// BeginGeneration supersedes any active generation and starts a new
	// one expecting total tiles. Superseded images are released.
	BeginGeneration(ctx context.Context, generationID string, total int)

	// Install records a personalized image for a tile. Returns false when
	// generationID is no longer the active generation; the image is then
	// discarded, not installed.
	Install(ctx context.Context, generationID, tileKey string, image []byte) bool

	// MarkFailed records a per-tile failure for progress accounting.
	MarkFailed(ctx context.Context, generationID, tileKey string) bool

	// Image returns the personalized image for a tile, if present.
	Image(ctx context.Context, tileKey string) ([]byte, bool)

	// Progress returns a snapshot of the active generation.
	Progress(ctx context.Context) Progress

	// ActiveGeneration returns the id of the active generation, or "".
	ActiveGeneration() string
}

// ImageStore implements Store in memory with progress notification.
type ImageStore struct {
	mu         sync.RWMutex
	generation string
	total      int
	failed     int
	images     map[string][]byte

	release     func(tileKey string, image []byte)
	subscribers map[int]chan Progress
	nextSub     int
}

// New creates an image store with configuration options.
func New(opts ...Option) *ImageStore {
	s := &ImageStore{
		images:      make(map[string][]byte),
		subscribers: make(map[int]chan Progress),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// BeginGeneration supersedes the active generation.
func (s *ImageStore) BeginGeneration(_ context.Context, generationID string, total int) {
	s.mu.Lock()
	old := s.images
	hadGeneration := s.generation != ""
	s.generation = generationID
	s.total = total
	s.failed = 0
	s.images = make(map[string][]byte, total)
	release := s.release
	s.mu.Unlock()

	if hadGeneration {
		metrics.RecordGenerationSuperseded()
	}
	metrics.RecordGenerationStarted()
	metrics.UpdateTilesPersonalized(0)

	// Release outside the lock; each superseded image exactly once.
	if release != nil {
		for key, img := range old {
			release(key, img)
		}
	}

	s.notify()
}

// Install records a personalized image, refusing stale generations.
func (s *ImageStore) Install(_ context.Context, generationID, tileKey string, image []byte) bool {
	s.mu.Lock()
	if generationID != s.generation {
		s.mu.Unlock()
		return false
	}
	s.images[tileKey] = image
	count := len(s.images)
	s.mu.Unlock()

	metrics.UpdateTilesPersonalized(count)
	s.notify()
	return true
}

// MarkFailed records a per-tile failure for the active generation.
func (s *ImageStore) MarkFailed(_ context.Context, generationID, tileKey string) bool {
	s.mu.Lock()
	if generationID != s.generation {
		s.mu.Unlock()
		return false
	}
	s.failed++
	s.mu.Unlock()

	s.notify()
	return true
}

// Image returns the personalized image for a tile, if present.
func (s *ImageStore) Image(_ context.Context, tileKey string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	img, ok := s.images[tileKey]
	return img, ok
}

// Progress returns a snapshot of the active generation.
func (s *ImageStore) Progress(_ context.Context) Progress {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.progressLocked()
}

func (s *ImageStore) progressLocked() Progress {
	completed := len(s.images)
	done := s.total > 0 && completed+s.failed >= s.total
	return Progress{
		GenerationID: s.generation,
		Completed:    completed,
		Failed:       s.failed,
		Total:        s.total,
		Done:         done,
		AllFailed:    done && s.failed == s.total,
	}
}

// ActiveGeneration returns the id of the active generation, or "".
func (s *ImageStore) ActiveGeneration() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

// Subscribe returns a channel receiving progress snapshots and a cancel
// function. Slow subscribers miss intermediate snapshots rather than
// blocking the pipeline.
func (s *ImageStore) Subscribe() (<-chan Progress, func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	ch := make(chan Progress, 1)
	s.subscribers[id] = ch
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if sub, ok := s.subscribers[id]; ok {
			delete(s.subscribers, id)
			close(sub)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

func (s *ImageStore) notify() {
	s.mu.RLock()
	p := s.progressLocked()
	for _, ch := range s.subscribers {
		select {
		case ch <- p:
		default:
			// Drop the stale snapshot and leave the fresh one.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- p:
			default:
			}
		}
	}
	s.mu.RUnlock()
}
