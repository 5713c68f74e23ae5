package speech

import (
	"context"
	"sync"
	"time"
)

// MockEngine is a configurable in-memory engine for tests.
type MockEngine struct {
	mu         sync.Mutex
	voices     []Voice
	voicesErr  error
	speakErr   error
	speakDelay time.Duration
	spoken     []string
	changed    chan struct{}
}

// NewMockEngine creates a mock engine with the given voices.
func NewMockEngine(voices ...Voice) *MockEngine {
	return &MockEngine{
		voices:  voices,
		changed: make(chan struct{}, 1),
	}
}

// Voices returns the configured voice list.
func (m *MockEngine) Voices(_ context.Context) ([]Voice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.voicesErr != nil {
		return nil, m.voicesErr
	}
	out := make([]Voice, len(m.voices))
	copy(out, m.voices)
	return out, nil
}

// Speak records the utterance text.
func (m *MockEngine) Speak(ctx context.Context, text string, _ Voice) error {
	m.mu.Lock()
	delay := m.speakDelay
	err := m.speakErr
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.spoken = append(m.spoken, text)
	m.mu.Unlock()
	return nil
}

// VoicesChanged implements Notifier.
func (m *MockEngine) VoicesChanged() <-chan struct{} {
	return m.changed
}

// SetVoices replaces the voice list and fires the change signal.
func (m *MockEngine) SetVoices(voices ...Voice) {
	m.mu.Lock()
	m.voices = voices
	m.mu.Unlock()
	select {
	case m.changed <- struct{}{}:
	default:
	}
}

// SetVoicesError makes Voices fail.
func (m *MockEngine) SetVoicesError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.voicesErr = err
}

// SetSpeakError makes Speak fail.
func (m *MockEngine) SetSpeakError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.speakErr = err
}

// SetSpeakDelay makes Speak block for the given duration.
func (m *MockEngine) SetSpeakDelay(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.speakDelay = d
}

// Spoken returns all utterances spoken so far.
func (m *MockEngine) Spoken() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.spoken))
	copy(out, m.spoken)
	return out
}
