package session

import (
	"context"
	"sync"
	"time"
)

// Default store configuration constants.
const (
	defaultSessionTTL    = 30 * time.Minute
	defaultSweepInterval = 5 * time.Minute
)

// Store persists session state for the lifetime of a session. The
// contract mirrors browser session storage: key/value, cleared when the
// session ends.
type Store interface {
	// Load returns the state for id. The second return is false when the
	// session has no recorded state yet.
	Load(ctx context.Context, id string) (State, bool, error)

	// Save writes the state, replacing any previous value.
	Save(ctx context.Context, st State) error

	// Delete removes the session entirely.
	Delete(ctx context.Context, id string) error
}

type entry struct {
	state    State
	lastSeen time.Time
}

// MemoryStore implements Store with an in-process map. Sessions expire
// after a TTL of inactivity, standing in for tab-close clearing.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryStore creates a memory store with configuration options.
func NewMemoryStore(opts ...StoreOption) *MemoryStore {
	s := &MemoryStore{
		entries: make(map[string]entry),
		ttl:     defaultSessionTTL,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load returns the state for id, refreshing its activity timestamp.
func (s *MemoryStore) Load(_ context.Context, id string) (State, bool, error) {
	s.mu.RLock()
	e, ok := s.entries[id]
	s.mu.RUnlock()
	if !ok {
		return State{}, false, nil
	}
	if s.now().Sub(e.lastSeen) > s.ttl {
		s.mu.Lock()
		delete(s.entries, id)
		s.mu.Unlock()
		return State{}, false, nil
	}
	return e.state, true, nil
}

// Save writes the state, replacing any previous value.
func (s *MemoryStore) Save(_ context.Context, st State) error {
	s.mu.Lock()
	s.entries[st.ID] = entry{state: st, lastSeen: s.now()}
	s.mu.Unlock()
	return nil
}

// Delete removes the session entirely.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.entries, id)
	s.mu.Unlock()
	return nil
}

// Len returns the number of live sessions.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Sweep removes expired sessions and returns the number removed.
func (s *MemoryStore) Sweep() int {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, e := range s.entries {
		if now.Sub(e.lastSeen) > s.ttl {
			delete(s.entries, id)
			removed++
		}
	}
	return removed
}

// StartSweeper runs Sweep on an interval until ctx is canceled.
func (s *MemoryStore) StartSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Sweep()
			}
		}
	}()
}
