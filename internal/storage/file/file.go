// Package file stores the game snapshot in a single file on disk. Paths ending
// in .yaml or .yml are written as YAML; anything else is JSON.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/cory-johannsen/rngsim/internal/game/state"
	"github.com/cory-johannsen/rngsim/internal/storage"
)

// Format selects the on-disk encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFor picks the encoding for path from its extension.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

// Store reads and atomically replaces one snapshot file.
type Store struct {
	mu     sync.Mutex
	path   string
	format Format
}

// New returns a Store for path, creating its parent directory.
//
// Precondition: path must be non-empty.
// Postcondition: returns a Store or an error if the directory cannot be created.
func New(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("file store: empty path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating snapshot directory: %w", err)
	}
	return &Store{path: path, format: FormatFor(path)}, nil
}

// Path returns the snapshot file location.
func (s *Store) Path() string { return s.path }

// Load reads the snapshot file.
//
// Postcondition: a missing file yields storage.ErrNotFound; an undecodable one
// an error wrapping storage.ErrMalformed.
func (s *Store) Load(_ context.Context) (state.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return state.Snapshot{}, storage.ErrNotFound
		}
		return state.Snapshot{}, fmt.Errorf("reading %s: %w", s.path, err)
	}
	if s.format == FormatYAML {
		return storage.DecodeYAML(data)
	}
	return storage.DecodeJSON(data)
}

// Save writes snap to a temporary file beside the target and renames it into
// place, so readers never observe a partial snapshot.
func (s *Store) Save(ctx context.Context, snap state.Snapshot) error {
	var (
		data []byte
		err  error
	)
	if s.format == FormatYAML {
		data, err = storage.EncodeYAML(snap)
	} else {
		data, err = storage.EncodeJSON(snap)
	}
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return writeAtomic(s.path, data)
}

func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	name := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(name)
		return fmt.Errorf("writing %s: %w", name, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(name)
		return fmt.Errorf("syncing %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return fmt.Errorf("closing %s: %w", name, err)
	}
	if err := os.Chmod(name, 0o644); err != nil {
		os.Remove(name)
		return fmt.Errorf("chmod %s: %w", name, err)
	}
	if err := os.Rename(name, path); err != nil {
		os.Remove(name)
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}
