// Package memory provides an in-process snapshot store for tests and
// throwaway sessions.
package memory

import (
	"context"
	"sync"

	"github.com/cory-johannsen/rngsim/internal/game/state"
	"github.com/cory-johannsen/rngsim/internal/storage"
)

// Store keeps the last saved snapshot in memory. Snapshots are stored in
// encoded form so callers can never alias the saved copy.
type Store struct {
	mu    sync.Mutex
	data  []byte
	saves int
	err   error
}

// New returns an empty Store.
func New() *Store {
	return &Store{}
}

// NewWith returns a Store pre-loaded with snap.
func NewWith(snap state.Snapshot) (*Store, error) {
	s := New()
	if err := s.Save(context.Background(), snap); err != nil {
		return nil, err
	}
	s.saves = 0
	return s, nil
}

// Load returns the last saved snapshot or storage.ErrNotFound.
func (s *Store) Load(_ context.Context) (state.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		return state.Snapshot{}, storage.ErrNotFound
	}
	return storage.DecodeJSON(s.data)
}

// Save replaces the stored snapshot.
func (s *Store) Save(_ context.Context, snap state.Snapshot) error {
	data, err := storage.EncodeJSON(snap)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.data = data
	s.saves++
	return nil
}

// SetRaw replaces the stored bytes verbatim, bypassing encoding.
func (s *Store) SetRaw(data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = append([]byte(nil), data...)
}

// FailSaves makes every later Save return err; nil restores normal saving.
func (s *Store) FailSaves(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// Saves returns the number of successful saves.
func (s *Store) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}
