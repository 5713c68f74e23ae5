// Package session tracks per-session timing state and enforces the
// cooldown between generation requests.
//
// State is explicit and store-backed rather than ambient: callers load,
// decide, and save at defined lifecycle points. The gate itself is a pure
// function of the clock and the last generation time.
package session

import (
	"context"
	"math"
	"time"

	"github.com/metalk/feelings/pkg/metrics"
)

// DefaultCooldown is the minimum wait between accepted generations.
const DefaultCooldown = 5 * time.Second

// State holds the timing state for one session.
type State struct {
	ID             string
	SessionStart   time.Time
	LastGeneration time.Time // zero until the first accepted generation
	AvatarsCreated int
}

// OnCooldown reports whether a generation at now would violate the
// cooldown, given the configured minimum wait.
func (s State) OnCooldown(now time.Time, cooldown time.Duration) bool {
	if s.LastGeneration.IsZero() {
		return false
	}
	return now.Sub(s.LastGeneration) < cooldown
}

// Decision is the outcome of a cooldown check.
type Decision struct {
	Allowed           bool `json:"allowed"`
	RetryAfterSeconds int  `json:"retry_after_seconds,omitempty"`
}

// Gate decides whether a session may start a new generation. It never
// mutates state.
type Gate struct {
	cooldown time.Duration
	now      func() time.Time
}

// NewGate creates a gate with the given options.
func NewGate(opts ...GateOption) *Gate {
	g := &Gate{
		cooldown: DefaultCooldown,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Cooldown returns the configured minimum wait.
func (g *Gate) Cooldown() time.Duration {
	return g.cooldown
}

// CanGenerate is a pure function of the current time and the session's
// last generation time. Absence of prior state means "not on cooldown".
func (g *Gate) CanGenerate(st State) Decision {
	now := g.now()
	if !st.OnCooldown(now, g.cooldown) {
		return Decision{Allowed: true}
	}
	remaining := g.cooldown - now.Sub(st.LastGeneration)
	return Decision{
		Allowed:           false,
		RetryAfterSeconds: int(math.Ceil(remaining.Seconds())),
	}
}

// Manager combines the gate with a store, exposing the session lifecycle
// operations used by the upload path.
type Manager struct {
	gate  *Gate
	store Store
	now   func() time.Time
}

// NewManager creates a manager over the given store.
func NewManager(store Store, opts ...ManagerOption) *Manager {
	m := &Manager{
		gate:  NewGate(),
		store: store,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Gate returns the manager's cooldown gate.
func (m *Manager) Gate() *Gate {
	return m.gate
}

// Initialize creates the session if absent. Idempotent: an existing
// session's start time is never overwritten.
func (m *Manager) Initialize(ctx context.Context, id string) (State, error) {
	st, ok, err := m.store.Load(ctx, id)
	if err != nil {
		return State{}, err
	}
	if ok {
		return st, nil
	}
	st = State{ID: id, SessionStart: m.now()}
	if err := m.store.Save(ctx, st); err != nil {
		return State{}, err
	}
	metrics.RecordSessionStarted()
	return st, nil
}

// CanGenerate checks the cooldown for a session without mutating it.
func (m *Manager) CanGenerate(ctx context.Context, id string) (Decision, error) {
	st, _, err := m.store.Load(ctx, id)
	if err != nil {
		return Decision{}, err
	}
	d := m.gate.CanGenerate(st)
	if !d.Allowed {
		metrics.RecordCooldownRejection()
	}
	return d, nil
}

// RecordGeneration stamps the session's last generation time. Called
// exactly once per accepted generation, after validation succeeds and
// before the pipeline starts, so a slow pipeline still enforces the
// cooldown from request time.
func (m *Manager) RecordGeneration(ctx context.Context, id string) error {
	st, _, err := m.store.Load(ctx, id)
	if err != nil {
		return err
	}
	if st.ID == "" {
		st.ID = id
		st.SessionStart = m.now()
	}
	st.LastGeneration = m.now()
	return m.store.Save(ctx, st)
}

// IncrementCount bumps the session's generation counter. Independent of
// the cooldown check; only rate is limited, not total volume.
func (m *Manager) IncrementCount(ctx context.Context, id string) (int, error) {
	st, _, err := m.store.Load(ctx, id)
	if err != nil {
		return 0, err
	}
	if st.ID == "" {
		st.ID = id
		st.SessionStart = m.now()
	}
	st.AvatarsCreated++
	if err := m.store.Save(ctx, st); err != nil {
		return 0, err
	}
	metrics.RecordAvatarCreated()
	return st.AvatarsCreated, nil
}

// Info returns the session state plus the current cooldown decision.
func (m *Manager) Info(ctx context.Context, id string) (State, Decision, error) {
	st, _, err := m.store.Load(ctx, id)
	if err != nil {
		return State{}, Decision{}, err
	}
	return st, m.gate.CanGenerate(st), nil
}

// Reset clears the session's state entirely.
func (m *Manager) Reset(ctx context.Context, id string) error {
	return m.store.Delete(ctx, id)
}
