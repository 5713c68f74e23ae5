// Package worker runs the compose workers that personalize tiles
// asynchronously.
//
// Each worker dequeues a job, loads the tile's reference image, calls the
// external composer, and installs the result. A per-tile failure is
// logged and recorded; it never aborts the rest of the generation.
package worker

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/metalk/feelings/internal/adapters/assets"
	"github.com/metalk/feelings/internal/adapters/compose"
	"github.com/metalk/feelings/internal/adapters/mq/queue"
	"github.com/metalk/feelings/internal/domain/model"
	"github.com/metalk/feelings/pkg/logger"
	"github.com/metalk/feelings/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerCount    = 4
	workerShutdownTimeout = 5 * time.Second
)

// Job abstracts what workers read off the queue.
type Job = model.Job

// Installer records per-tile outcomes for a generation.
type Installer interface {
	Install(ctx context.Context, generationID, tileKey string, image []byte) bool
	MarkFailed(ctx context.Context, generationID, tileKey string) bool
	ActiveGeneration() string
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Job
}

// Worker processes compose jobs until stopped.
type Worker struct {
	queue     Queue
	composer  compose.Composer
	installer Installer
	refs      assets.Source
	name      string

	shutdown chan struct{}
	stopOnce sync.Once
	done     chan struct{}

	logger logger.Logger
}

// NewWorker creates a worker with configuration options.
func NewWorker(q Queue, composer compose.Composer, installer Installer, refs assets.Source, opts ...Option) *Worker {
	w := &Worker{
		queue:     q,
		composer:  composer,
		installer: installer,
		refs:      refs,
		name:      "worker",
		shutdown:  make(chan struct{}),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Get().Named(w.name)
	}
	return w
}

// Run starts the worker loop.
func (w *Worker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			if err := w.process(ctx, job); err != nil {
				w.logger.Error(ctx, "compose job failed",
					logger.String("tileKey", job.TileKey),
					logger.Error(err),
				)
			}
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *Worker) Shutdown(ctx context.Context) error {
	w.stopOnce.Do(func() { close(w.shutdown) })
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// process handles a single compose job.
func (w *Worker) process(ctx context.Context, job Job) error {
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	// A superseded generation's jobs are drained without composing:
	// their results would be discarded anyway.
	if w.installer.ActiveGeneration() != job.GenerationID {
		w.logger.Debug(ctx, "skipping stale job",
			logger.String("tileKey", job.TileKey),
			logger.String("generation", job.GenerationID),
		)
		return nil
	}

	reference, err := w.refs.Load(ctx, job.Asset)
	if err != nil {
		w.fail(ctx, job)
		return fmt.Errorf("load reference for tile %s: %w", job.TileKey, err)
	}

	composeStart := time.Now()
	img, err := w.composer.Compose(ctx, compose.Request{
		TileKey:   job.TileKey,
		Feeling:   job.Feeling,
		Photo:     job.Photo,
		Reference: reference,
	})
	metrics.RecordComposeLatency(float64(time.Since(composeStart).Milliseconds()))

	if err != nil {
		w.fail(ctx, job)
		return fmt.Errorf("compose tile %s: %w", job.TileKey, err)
	}

	if !w.installer.Install(ctx, job.GenerationID, job.TileKey, img) {
		// Superseded while composing; the result is dropped here and the
		// new generation is untouched.
		w.logger.Debug(ctx, "discarding result for superseded generation",
			logger.String("tileKey", job.TileKey),
		)
		return nil
	}
	metrics.RecordComposeSuccess()
	return nil
}

func (w *Worker) fail(ctx context.Context, job Job) {
	metrics.RecordComposeFailure()
	metrics.RecordWorkerError()
	w.installer.MarkFailed(ctx, job.GenerationID, job.TileKey)
}

// Pool manages multiple workers.
type Pool struct {
	workers []*Worker
	logger  logger.Logger
}

// NewPool creates a worker pool.
func NewPool(workerCount int, q Queue, composer compose.Composer, installer Installer, refs assets.Source) *Pool {
	if workerCount < 1 {
		workerCount = defaultWorkerCount
	}

	pool := &Pool{
		workers: make([]*Worker, workerCount),
		logger:  logger.Get().Named("worker-pool"),
	}
	for i := 0; i < workerCount; i++ {
		pool.workers[i] = NewWorker(q, composer, installer, refs,
			WithName("worker-"+strconv.Itoa(i)),
		)
	}

	metrics.UpdateWorkerActiveCount(workerCount)
	return pool
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Stop gracefully stops all workers.
func (p *Pool) Stop() {
	for _, w := range p.workers {
		w.stopOnce.Do(func() { close(w.shutdown) })
	}
	for _, w := range p.workers {
		select {
		case <-w.done:
		case <-time.After(workerShutdownTimeout):
		}
	}
	metrics.UpdateWorkerActiveCount(0)
}
