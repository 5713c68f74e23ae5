// Package assets loads reference feeling images by their catalog asset
// identifier.
package assets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotFound indicates the asset identifier resolves to nothing.
var ErrNotFound = errors.New("asset not found")

// Source loads reference image bytes by asset identifier.
type Source interface {
	Load(ctx context.Context, id string) ([]byte, error)
}

// Dir serves assets from a directory on disk. Identifiers are
// slash-separated relative paths from the catalog.
type Dir struct {
	root string
}

// NewDir creates a directory-backed source rooted at root.
func NewDir(root string) *Dir {
	return &Dir{root: root}
}

// Load reads the asset file, rejecting identifiers that escape the root.
func (d *Dir) Load(_ context.Context, id string) ([]byte, error) {
	clean := filepath.Clean(filepath.FromSlash(id))
	if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return nil, fmt.Errorf("invalid asset id %q", id)
	}
	data, err := os.ReadFile(filepath.Join(d.root, clean))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("read asset %s: %w", id, err)
	}
	return data, nil
}

// Memory serves assets from an in-process map. Used by tests.
type Memory map[string][]byte

// Load returns the mapped bytes.
func (m Memory) Load(_ context.Context, id string) ([]byte, error) {
	data, ok := m[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return data, nil
}
