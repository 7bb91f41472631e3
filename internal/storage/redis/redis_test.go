package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/rngsim/internal/game/economy"
	"github.com/cory-johannsen/rngsim/internal/game/state"
	"github.com/cory-johannsen/rngsim/internal/storage"
	"github.com/cory-johannsen/rngsim/internal/storage/redis"
	"github.com/cory-johannsen/rngsim/internal/testutil"
)

func TestStore_Key(t *testing.T) {
	assert.Equal(t, "rngsim:snapshot:alpha", redis.NewStore(nil, "alpha").Key())
}

func TestStore_RoundTrip(t *testing.T) {
	rc := testutil.NewRedisContainer(t)
	rdb, err := redis.NewClient(context.Background(), rc.Config)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })

	s := redis.NewStore(rdb, "roundtrip")
	ctx := context.Background()

	_, err = s.Load(ctx)
	require.ErrorIs(t, err, storage.ErrNotFound)

	snap := state.Snapshot{
		Coins:    64,
		Target:   "9",
		Upgrades: economy.DefaultLedger(),
		Stats:    state.Statistics{StartTime: time.Date(2026, 2, 2, 2, 2, 2, 0, time.UTC)},
	}
	require.NoError(t, s.Save(ctx, snap))
	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, snap, got)

	require.NoError(t, rdb.Set(ctx, s.Key(), "garbage", 0).Err())
	_, err = s.Load(ctx)
	assert.ErrorIs(t, err, storage.ErrMalformed)
}
