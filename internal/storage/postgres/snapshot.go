package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/rngsim/internal/game/state"
	"github.com/cory-johannsen/rngsim/internal/storage"
)

// DefaultSlot is the save slot used when none is configured.
const DefaultSlot = "default"

// SnapshotStore persists one game snapshot per slot in game_snapshots.
type SnapshotStore struct {
	db   *pgxpool.Pool
	slot string
}

// NewSnapshotStore creates a SnapshotStore for slot backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
// Postcondition: an empty slot selects DefaultSlot.
func NewSnapshotStore(db *pgxpool.Pool, slot string) *SnapshotStore {
	if slot == "" {
		slot = DefaultSlot
	}
	return &SnapshotStore{db: db, slot: slot}
}

// Slot returns the row key this store reads and writes.
func (s *SnapshotStore) Slot() string { return s.slot }

// Load returns the snapshot saved in this slot.
//
// Postcondition: Returns the Snapshot, storage.ErrNotFound if the slot is
// empty, or an error wrapping storage.ErrMalformed if the payload cannot be
// decoded.
func (s *SnapshotStore) Load(ctx context.Context) (state.Snapshot, error) {
	var payload []byte
	err := s.db.QueryRow(ctx,
		`SELECT payload FROM game_snapshots WHERE slot = $1`,
		s.slot,
	).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return state.Snapshot{}, storage.ErrNotFound
		}
		return state.Snapshot{}, fmt.Errorf("querying snapshot: %w", err)
	}
	return storage.DecodeJSON(payload)
}

// Save upserts snap into this slot.
//
// Postcondition: the slot holds snap and updated_at is the current time.
func (s *SnapshotStore) Save(ctx context.Context, snap state.Snapshot) error {
	payload, err := storage.EncodeJSON(snap)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(ctx,
		`INSERT INTO game_snapshots (slot, payload, updated_at)
		 VALUES ($1, $2, NOW())
		 ON CONFLICT (slot) DO UPDATE
		 SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at`,
		s.slot, payload,
	)
	if err != nil {
		return fmt.Errorf("upserting snapshot: %w", err)
	}
	return nil
}

// UpdatedAt returns when this slot was last saved.
//
// Postcondition: Returns storage.ErrNotFound if the slot is empty.
func (s *SnapshotStore) UpdatedAt(ctx context.Context) (time.Time, error) {
	var at time.Time
	err := s.db.QueryRow(ctx,
		`SELECT updated_at FROM game_snapshots WHERE slot = $1`,
		s.slot,
	).Scan(&at)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return time.Time{}, storage.ErrNotFound
		}
		return time.Time{}, fmt.Errorf("querying snapshot time: %w", err)
	}
	return at, nil
}

// Delete removes this slot's snapshot. Deleting an empty slot is not an error.
func (s *SnapshotStore) Delete(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM game_snapshots WHERE slot = $1`, s.slot); err != nil {
		return fmt.Errorf("deleting snapshot: %w", err)
	}
	return nil
}
