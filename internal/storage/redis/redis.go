// Package redis stores the game snapshot as one JSON string key in Redis.
package redis

import (
	"context"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/cory-johannsen/rngsim/internal/config"
	"github.com/cory-johannsen/rngsim/internal/game/state"
	"github.com/cory-johannsen/rngsim/internal/storage"
)

// KeyPrefix namespaces snapshot keys.
const KeyPrefix = "rngsim:snapshot:"

// NewClient connects to the Redis server described by cfg.
//
// Postcondition: Returns a client that answered PING, or a non-nil error.
func NewClient(ctx context.Context, cfg config.RedisConfig) (goredis.UniversalClient, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("pinging redis %s: %w", cfg.Addr, err)
	}
	return rdb, nil
}

// Store persists one snapshot under KeyPrefix+slot.
type Store struct {
	rdb goredis.UniversalClient
	key string
}

// NewStore returns a Store for slot.
//
// Precondition: rdb must be non-nil; slot must be non-empty.
func NewStore(rdb goredis.UniversalClient, slot string) *Store {
	return &Store{rdb: rdb, key: KeyPrefix + slot}
}

// Key returns the Redis key this store uses.
func (s *Store) Key() string { return s.key }

// Load returns the saved snapshot, storage.ErrNotFound, or an error wrapping
// storage.ErrMalformed.
func (s *Store) Load(ctx context.Context) (state.Snapshot, error) {
	data, err := s.rdb.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return state.Snapshot{}, storage.ErrNotFound
		}
		return state.Snapshot{}, fmt.Errorf("reading %s: %w", s.key, err)
	}
	return storage.DecodeJSON(data)
}

// Save overwrites the key with snap. The key never expires.
func (s *Store) Save(ctx context.Context, snap state.Snapshot) error {
	data, err := storage.EncodeJSON(snap)
	if err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("writing %s: %w", s.key, err)
	}
	return nil
}
