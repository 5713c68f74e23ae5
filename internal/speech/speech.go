// Package speech wraps an external speech-synthesis engine: lazy voice
// readiness, language-aware voice selection, one utterance at a time.
//
// Failure is always soft. A caller that cannot speak degrades to
// visual-only feedback; nothing here panics or blocks the application.
package speech

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/metalk/feelings/internal/domain/catalog"
	"github.com/metalk/feelings/pkg/logger"
	"github.com/metalk/feelings/pkg/metrics"
)

// Default driver configuration constants.
const (
	defaultReadyTimeout = 3 * time.Second
	defaultPollInterval = 100 * time.Millisecond
)

// Sentinel kinds for speech errors.
var (
	ErrBusy        = errors.New("an utterance is already active")
	ErrUnsupported = errors.New("speech synthesis not supported")
	ErrNoVoices    = errors.New("no voices available")
)

// Voice describes one synthesizer voice.
type Voice struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Lang    string `json:"lang"`
	Default bool   `json:"default"`
}

// Engine is the external synthesis capability. Voices may be empty until
// the engine finishes its own initialization; Speak blocks until the
// utterance completes or fails.
type Engine interface {
	Voices(ctx context.Context) ([]Voice, error)
	Speak(ctx context.Context, text string, voice Voice) error
}

// Notifier is an optional Engine extension signaling that the voice list
// changed. The driver waits on it once, bounded by a timeout, when the
// initial list is empty.
type Notifier interface {
	VoicesChanged() <-chan struct{}
}

// UtteranceState tracks the per-utterance state machine.
type UtteranceState int

// Utterance states: idle -> speaking -> {completed | failed}.
const (
	StateIdle UtteranceState = iota
	StateSpeaking
	StateCompleted
	StateFailed
)

func (s UtteranceState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSpeaking:
		return "speaking"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Driver coordinates voice readiness and playback over an Engine.
type Driver struct {
	engine       Engine
	readyTimeout time.Duration
	pollInterval time.Duration

	speaking sync.Mutex // held for the duration of one utterance

	mu     sync.Mutex
	voices []Voice
	ready  bool
	state  UtteranceState

	logger logger.Logger
}

// NewDriver creates a driver over the given engine.
func NewDriver(engine Engine, opts ...Option) *Driver {
	d := &Driver{
		engine:       engine,
		readyTimeout: defaultReadyTimeout,
		pollInterval: defaultPollInterval,
		state:        StateIdle,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = logger.Get().Named("speech")
	}
	return d
}

// State returns the current utterance state.
func (d *Driver) State() UtteranceState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Speak synthesizes text in the best-matching voice for lang. Only one
// utterance may be active at a time: a second call while speaking fails
// fast with ErrBusy so the caller can disable its trigger instead of
// queueing. All failures are soft; no retries.
func (d *Driver) Speak(ctx context.Context, text string, lang catalog.Lang) error {
	if d.engine == nil {
		metrics.RecordUtteranceFailure()
		return ErrUnsupported
	}
	if !d.speaking.TryLock() {
		return ErrBusy
	}
	defer d.speaking.Unlock()

	d.setState(StateSpeaking)

	voice, err := d.selectVoice(ctx, lang)
	if err != nil {
		d.setState(StateFailed)
		metrics.RecordUtteranceFailure()
		d.logger.Warn(ctx, "no voice available",
			logger.String("lang", string(lang)),
			logger.Error(err),
		)
		return err
	}

	if err := d.engine.Speak(ctx, text, voice); err != nil {
		d.setState(StateFailed)
		metrics.RecordUtteranceFailure()
		d.logger.Warn(ctx, "utterance failed",
			logger.String("voice", voice.Name),
			logger.Error(err),
		)
		return err
	}

	d.setState(StateCompleted)
	metrics.RecordUtteranceSpoken()
	return nil
}

func (d *Driver) setState(s UtteranceState) {
	d.mu.Lock()
	d.state = s
	d.mu.Unlock()
}

// selectVoice returns the best match for lang: first a prefix match on
// the language tag, then the engine's default voice, then the first
// voice in the list.
func (d *Driver) selectVoice(ctx context.Context, lang catalog.Lang) (Voice, error) {
	voices, err := d.awaitVoices(ctx)
	if err != nil {
		return Voice{}, err
	}
	if len(voices) == 0 {
		return Voice{}, ErrNoVoices
	}

	prefix := strings.ToLower(string(lang))
	for _, v := range voices {
		if strings.HasPrefix(strings.ToLower(v.Lang), prefix) {
			return v, nil
		}
	}
	for _, v := range voices {
		if v.Default {
			return v, nil
		}
	}
	return voices[0], nil
}

// awaitVoices resolves the voice list, waiting once for the engine's
// voices-changed signal (bounded by the ready timeout) when the initial
// list is empty. The resolved list is cached for the driver's lifetime.
func (d *Driver) awaitVoices(ctx context.Context) ([]Voice, error) {
	d.mu.Lock()
	if d.ready {
		voices := d.voices
		d.mu.Unlock()
		return voices, nil
	}
	d.mu.Unlock()

	start := time.Now()
	defer func() {
		metrics.RecordVoiceGateWait(float64(time.Since(start).Milliseconds()))
	}()

	voices, err := d.engine.Voices(ctx)
	if err != nil {
		return nil, err
	}
	if len(voices) == 0 {
		voices, err = d.waitForVoices(ctx)
		if err != nil {
			return nil, err
		}
	}

	d.mu.Lock()
	d.voices = voices
	d.ready = true
	d.mu.Unlock()
	return voices, nil
}

func (d *Driver) waitForVoices(ctx context.Context) ([]Voice, error) {
	deadline := time.NewTimer(d.readyTimeout)
	defer deadline.Stop()

	var changed <-chan struct{}
	if n, ok := d.engine.(Notifier); ok {
		changed = n.VoicesChanged()
	}

	for {
		if changed != nil {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-deadline.C:
				return nil, ErrNoVoices
			case <-changed:
			}
		} else {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-deadline.C:
				return nil, ErrNoVoices
			case <-time.After(d.pollInterval):
			}
		}

		voices, err := d.engine.Voices(ctx)
		if err != nil {
			return nil, err
		}
		if len(voices) > 0 {
			return voices, nil
		}
	}
}
