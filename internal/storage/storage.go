// Package storage defines the persistence boundary for game snapshots. The
// engine depends only on Store; the memory, file, and postgres subpackages
// provide the backends.
package storage

import (
	"context"
	"errors"

	"github.com/cory-johannsen/rngsim/internal/game/state"
)

// ErrNotFound is returned by Load when no snapshot has been saved yet.
var ErrNotFound = errors.New("snapshot not found")

// ErrMalformed is returned by Load when a saved snapshot cannot be decoded.
var ErrMalformed = errors.New("malformed snapshot")

// Store loads and saves a single game snapshot.
//
// Implementations MUST be safe for concurrent use.
type Store interface {
	// Load returns the saved snapshot, ErrNotFound, or an error wrapping
	// ErrMalformed.
	Load(ctx context.Context) (state.Snapshot, error)
	// Save replaces the saved snapshot with snap.
	Save(ctx context.Context, snap state.Snapshot) error
}
