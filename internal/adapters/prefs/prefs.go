// Package prefs persists per-session display preferences.
//
// Only the language and high-contrast settings are stored. The uploaded
// photo and the personalized images never touch disk.
package prefs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/metalk/feelings/internal/domain/catalog"
)

// Preferences is the persisted subset of display state.
type Preferences struct {
	Language     catalog.Lang `json:"language"`
	HighContrast bool         `json:"highContrast"`
}

// ErrInvalidLanguage rejects languages outside the supported set.
var ErrInvalidLanguage = errors.New("unsupported language")

// Store is the contract for preference persistence.
type Store interface {
	Get(ctx context.Context, sessionID string) (Preferences, error)
	Put(ctx context.Context, sessionID string, p Preferences) error
	Close() error
}

// SQLiteStore implements Store over a sqlite database file.
type SQLiteStore struct {
	db *sql.DB
}

// Open opens (and if needed creates) the preference database at path.
func Open(ctx context.Context, path string) (*SQLiteStore, error) {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) initSchema(ctx context.Context) error {
	ddl := `
CREATE TABLE IF NOT EXISTS preferences (
    session_id TEXT PRIMARY KEY,
    language TEXT NOT NULL,
    high_contrast INTEGER NOT NULL DEFAULT 0,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`
	_, err := s.db.ExecContext(ctx, ddl)
	return err
}

// Get returns the stored preferences for a session, or defaults when
// none were saved yet.
func (s *SQLiteStore) Get(ctx context.Context, sessionID string) (Preferences, error) {
	p := Defaults()
	var lang string
	var highContrast int
	err := s.db.QueryRowContext(ctx,
		`SELECT language, high_contrast FROM preferences WHERE session_id = ?`,
		sessionID).Scan(&lang, &highContrast)
	if errors.Is(err, sql.ErrNoRows) {
		return p, nil
	}
	if err != nil {
		return p, fmt.Errorf("load preferences: %w", err)
	}

	if catalog.IsSupported(catalog.Lang(lang)) {
		p.Language = catalog.Lang(lang)
	}
	p.HighContrast = highContrast != 0
	return p, nil
}

// Put upserts the preferences for a session.
func (s *SQLiteStore) Put(ctx context.Context, sessionID string, p Preferences) error {
	if !catalog.IsSupported(p.Language) {
		return fmt.Errorf("%w: %s", ErrInvalidLanguage, p.Language)
	}

	highContrast := 0
	if p.HighContrast {
		highContrast = 1
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO preferences(session_id, language, high_contrast, updated_at)
		 VALUES(?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(session_id) DO UPDATE SET
		   language=excluded.language,
		   high_contrast=excluded.high_contrast,
		   updated_at=CURRENT_TIMESTAMP`,
		sessionID, string(p.Language), highContrast)
	if err != nil {
		return fmt.Errorf("save preferences: %w", err)
	}
	return nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Defaults returns the out-of-the-box preferences.
func Defaults() Preferences {
	return Preferences{Language: catalog.LangEnglish}
}

// MemoryStore implements Store in memory. Used by tests and when no
// database path is configured, so it sees the same concurrent handler
// traffic as the sqlite store.
type MemoryStore struct {
	mu    sync.RWMutex
	prefs map[string]Preferences
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{prefs: make(map[string]Preferences)}
}

// Get returns stored preferences or defaults.
func (m *MemoryStore) Get(_ context.Context, sessionID string) (Preferences, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if p, ok := m.prefs[sessionID]; ok {
		return p, nil
	}
	return Defaults(), nil
}

// Put stores the preferences.
func (m *MemoryStore) Put(_ context.Context, sessionID string, p Preferences) error {
	if !catalog.IsSupported(p.Language) {
		return fmt.Errorf("%w: %s", ErrInvalidLanguage, p.Language)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prefs[sessionID] = p
	return nil
}

// Close is a no-op.
func (m *MemoryStore) Close() error { return nil }
