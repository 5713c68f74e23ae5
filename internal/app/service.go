// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/metalk/feelings/internal/adapters/assets"
	"github.com/metalk/feelings/internal/adapters/compose"
	"github.com/metalk/feelings/internal/adapters/mq/queue"
	workerpool "github.com/metalk/feelings/internal/adapters/mq/worker"
	"github.com/metalk/feelings/internal/adapters/prefs"
	"github.com/metalk/feelings/internal/adapters/repository"
	"github.com/metalk/feelings/internal/board"
	"github.com/metalk/feelings/internal/domain/catalog"
	"github.com/metalk/feelings/internal/domain/model"
	"github.com/metalk/feelings/internal/domain/session"
	"github.com/metalk/feelings/internal/domain/validate"
	"github.com/metalk/feelings/internal/export/collage"
	"github.com/metalk/feelings/internal/speech"
	"github.com/metalk/feelings/pkg/logger"
	"github.com/metalk/feelings/pkg/metrics"
)

// UploadStatus classifies the outcome of an upload attempt.
type UploadStatus string

// Upload outcomes.
const (
	UploadAccepted   UploadStatus = "accepted"
	UploadRejected   UploadStatus = "rejected"
	UploadOnCooldown UploadStatus = "cooldown"
)

// UploadOutcome is the full result of one upload attempt.
type UploadOutcome struct {
	Status            UploadStatus `json:"status"`
	Reason            string       `json:"reason,omitempty"`
	RetryAfterSeconds int          `json:"retry_after_seconds,omitempty"`
	GenerationID      string       `json:"generation_id,omitempty"`
	AvatarsCreated    int          `json:"avatars_created,omitempty"`
}

// Service wires the session gate, validator, personalization pipeline,
// board, speech, and collage export together.
type Service struct {
	mu sync.RWMutex

	// Core components
	sessions  *session.Manager
	store     *session.MemoryStore
	validator *validate.Validator
	catalog   catalog.Catalog
	images    *repository.ImageStore
	jobQueue  queue.Queue
	pool      *workerpool.Pool
	composer  compose.Composer
	refs      assets.Source
	presenter *board.Presenter
	exporter  *collage.Exporter
	speaker   *speech.Driver
	prefs     prefs.Store

	// Configuration
	workerCount int
	queueSize   int
	cooldown    time.Duration
	sessionTTL  time.Duration

	// State
	started bool
	stopCh  chan struct{}

	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		catalog:     catalog.Default(),
		workerCount: 4,
		queueSize:   256,
		cooldown:    session.DefaultCooldown,
		sessionTTL:  30 * time.Minute,
		stopCh:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting feelings service...")

	s.store = session.NewMemoryStore(session.WithTTL(s.sessionTTL))
	s.sessions = session.NewManager(s.store,
		session.WithGate(session.NewGate(session.WithCooldown(s.cooldown))),
	)

	if s.validator == nil {
		s.validator = validate.New()
	}
	if s.composer == nil {
		s.composer = compose.NewSimulated()
		s.logger.Info(ctx, "using simulated composer")
	}
	if s.refs == nil {
		s.refs = assets.Memory{}
	}
	if s.prefs == nil {
		s.prefs = prefs.NewMemoryStore()
	}
	if s.speaker == nil {
		s.speaker = speech.NewDriver(nil)
	}

	s.images = repository.New(
		repository.WithReleaseFunc(func(tileKey string, _ []byte) {
			// Dropping the bytes here is the release; the hook exists so a
			// future store holding richer handles can free them.
			s.logger.Debug(context.Background(), "released superseded image",
				logger.String("tileKey", tileKey),
			)
		}),
	)

	s.jobQueue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.pool = workerpool.NewPool(s.workerCount, s.jobQueue, s.composer, s.images, s.refs)
	s.pool.Start(ctx)

	s.presenter = board.NewPresenter(s.catalog, s.images, s.speaker)
	s.exporter = collage.NewExporter(s.catalog, s.images, s.refs)

	s.store.StartSweeper(ctx, time.Minute)

	s.started = true
	s.logger.Info(ctx, "feelings service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Duration("cooldown", s.cooldown),
	)
	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping feelings service...")

	if s.pool != nil {
		s.pool.Stop()
	}
	if s.jobQueue != nil {
		_ = s.jobQueue.Close()
	}
	if s.prefs != nil {
		_ = s.prefs.Close()
	}

	select {
	case <-s.stopCh:
	default:
		close(s.stopCh)
	}

	s.started = false
	s.logger.Info(context.Background(), "feelings service stopped")
}

// NewSession creates a session with a fresh id.
func (s *Service) NewSession(ctx context.Context) (session.State, error) {
	return s.sessions.Initialize(ctx, uuid.NewString())
}

// InitializeSession ensures a session exists for the given id.
// Idempotent: an existing session keeps its start time.
func (s *Service) InitializeSession(ctx context.Context, id string) (session.State, error) {
	return s.sessions.Initialize(ctx, id)
}

// SessionInfo returns the session state plus its cooldown decision.
func (s *Service) SessionInfo(ctx context.Context, id string) (session.State, session.Decision, error) {
	return s.sessions.Info(ctx, id)
}

// ResetSession clears a session entirely.
func (s *Service) ResetSession(ctx context.Context, id string) error {
	return s.sessions.Reset(ctx, id)
}

// Upload runs the full accept path: cooldown gate, validation,
// generation stamping, then pipeline start. The gate is checked before
// validation so a cooldown rejection never burns classifier calls.
func (s *Service) Upload(ctx context.Context, sessionID string, up validate.Upload) (UploadOutcome, error) {
	if _, err := s.sessions.Initialize(ctx, sessionID); err != nil {
		return UploadOutcome{}, err
	}

	decision, err := s.sessions.CanGenerate(ctx, sessionID)
	if err != nil {
		return UploadOutcome{}, err
	}
	if !decision.Allowed {
		return UploadOutcome{
			Status:            UploadOnCooldown,
			RetryAfterSeconds: decision.RetryAfterSeconds,
		}, nil
	}

	result := s.validator.Validate(ctx, up)
	if !result.Valid {
		return UploadOutcome{
			Status: UploadRejected,
			Reason: result.Reason,
		}, nil
	}

	if err := s.sessions.RecordGeneration(ctx, sessionID); err != nil {
		return UploadOutcome{}, err
	}
	count, err := s.sessions.IncrementCount(ctx, sessionID)
	if err != nil {
		return UploadOutcome{}, err
	}

	generationID := s.startPipeline(ctx, result.Processed)
	return UploadOutcome{
		Status:         UploadAccepted,
		GenerationID:   generationID,
		AvatarsCreated: count,
	}, nil
}

// startPipeline supersedes any running generation and enqueues one job
// per tile in catalog order.
func (s *Service) startPipeline(ctx context.Context, photo []byte) string {
	generationID := uuid.NewString()
	s.images.BeginGeneration(ctx, generationID, s.catalog.TileCount())

	for _, tile := range s.catalog.Tiles() {
		job := model.Job{
			GenerationID: generationID,
			TileKey:      tile.Key,
			Feeling:      tile.Label.Get(catalog.LangEnglish),
			Asset:        tile.Asset,
			Photo:        photo,
		}
		if !s.jobQueue.Enqueue(ctx, job) {
			// A full queue counts the tile as failed so progress still
			// reaches done.
			s.logger.Warn(ctx, "queue full, tile skipped",
				logger.String("tileKey", tile.Key),
			)
			s.images.MarkFailed(ctx, generationID, tile.Key)
		}
	}

	s.logger.Info(ctx, "personalization started",
		logger.String("generation", generationID),
		logger.Int("tiles", s.catalog.TileCount()),
	)
	return generationID
}

// Progress returns a snapshot of the active generation.
func (s *Service) Progress(ctx context.Context) repository.Progress {
	return s.images.Progress(ctx)
}

// SubscribeProgress returns a live progress feed and its cancel func.
func (s *Service) SubscribeProgress() (<-chan repository.Progress, func()) {
	return s.images.Subscribe()
}

// Catalog exposes the static feeling registry.
func (s *Service) Catalog() catalog.Catalog {
	return s.catalog
}

// BoardView renders one category with two-tier image resolution.
func (s *Service) BoardView(ctx context.Context, categoryKey string, lang catalog.Lang) (board.View, error) {
	return s.presenter.CategoryView(ctx, categoryKey, lang)
}

// TileImage resolves a tile's image: personalized bytes or the
// reference asset id.
func (s *Service) TileImage(ctx context.Context, tileKey string) ([]byte, string, error) {
	return s.presenter.TileImage(ctx, tileKey)
}

// LoadAsset loads a reference image by asset id.
func (s *Service) LoadAsset(ctx context.Context, id string) ([]byte, error) {
	return s.refs.Load(ctx, id)
}

// TapTile speaks the tapped tile's label.
func (s *Service) TapTile(ctx context.Context, tileKey string, lang catalog.Lang) error {
	return s.presenter.Tap(ctx, tileKey, lang)
}

// Speak voices free text in the given language.
func (s *Service) Speak(ctx context.Context, text string, lang catalog.Lang) error {
	return s.speaker.Speak(ctx, text, lang)
}

// SpeechDiagnostics probes the speech engine.
func (s *Service) SpeechDiagnostics(ctx context.Context) speech.Diagnostics {
	return s.speaker.Diagnostics(ctx)
}

// Collage renders the printable board page.
func (s *Service) Collage(ctx context.Context, opts collage.Options) ([]byte, error) {
	return s.exporter.Render(ctx, opts)
}

// Preferences returns the stored display preferences for a session.
func (s *Service) Preferences(ctx context.Context, sessionID string) (prefs.Preferences, error) {
	return s.prefs.Get(ctx, sessionID)
}

// SavePreferences persists display preferences for a session.
func (s *Service) SavePreferences(ctx context.Context, sessionID string, p prefs.Preferences) error {
	return s.prefs.Put(ctx, sessionID, p)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"cooldownMS":  s.cooldown.Milliseconds(),
	}

	if s.started {
		progress := s.images.Progress(ctx)
		stats["queueLength"] = s.jobQueue.Len(ctx)
		stats["activeGeneration"] = progress.GenerationID
		stats["tilesPersonalized"] = progress.Completed
		stats["sessions"] = s.store.Len()

		metrics.UpdateQueueSize(s.jobQueue.Len(ctx))
	}

	return stats
}
