package session

import "time"

// GateOption applies a configuration option to the Gate.
type GateOption func(*Gate)

// WithCooldown sets the minimum wait between accepted generations.
func WithCooldown(d time.Duration) GateOption {
	return func(g *Gate) {
		if d > 0 {
			g.cooldown = d
		}
	}
}

// WithGateClock sets the gate's clock. Used by tests.
func WithGateClock(now func() time.Time) GateOption {
	return func(g *Gate) {
		if now != nil {
			g.now = now
		}
	}
}

// ManagerOption applies a configuration option to the Manager.
type ManagerOption func(*Manager)

// WithGate sets the manager's cooldown gate.
func WithGate(g *Gate) ManagerOption {
	return func(m *Manager) {
		if g != nil {
			m.gate = g
		}
	}
}

// WithManagerClock sets the manager's clock. Used by tests.
func WithManagerClock(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// StoreOption applies a configuration option to the MemoryStore.
type StoreOption func(*MemoryStore)

// WithTTL sets how long an idle session survives before being swept.
func WithTTL(ttl time.Duration) StoreOption {
	return func(s *MemoryStore) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithStoreClock sets the store's clock. Used by tests.
func WithStoreClock(now func() time.Time) StoreOption {
	return func(s *MemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}
