package postgres_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/rngsim/internal/game/economy"
	"github.com/cory-johannsen/rngsim/internal/game/round"
	"github.com/cory-johannsen/rngsim/internal/game/state"
	"github.com/cory-johannsen/rngsim/internal/storage"
	"github.com/cory-johannsen/rngsim/internal/storage/postgres"
	"github.com/cory-johannsen/rngsim/internal/testutil"
)

func uniqueSlot(prefix string) string {
	return fmt.Sprintf("%s_%d", prefix, time.Now().UnixNano())
}

func makeSnapshot(coins int64) state.Snapshot {
	at := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	return state.Snapshot{
		Coins:  coins,
		Target: "777",
		RollHistory: []round.RollBatch{{
			ID:                  "batch-1",
			Rolls:               []round.RollOutcome{{Number: 12, Timestamp: at}},
			InstanceCountAtTime: 1,
			Timestamp:           at,
		}},
		Upgrades: economy.DefaultLedger(),
		Stats:    state.Statistics{StartTime: at, ManualClicks: 1, TotalNumbersGenerated: 1},
	}
}

func TestNewSnapshotStore_DefaultSlot(t *testing.T) {
	s := postgres.NewSnapshotStore(nil, "")
	assert.Equal(t, postgres.DefaultSlot, s.Slot())
}

func TestSnapshotStore_EmptySlot(t *testing.T) {
	pool := testutil.NewPool(t)
	s := postgres.NewSnapshotStore(pool, uniqueSlot("empty"))

	_, err := s.Load(context.Background())
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = s.UpdatedAt(context.Background())
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSnapshotStore_SaveLoadUpsert(t *testing.T) {
	pool := testutil.NewPool(t)
	s := postgres.NewSnapshotStore(pool, uniqueSlot("game"))
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, makeSnapshot(10)))
	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, makeSnapshot(10), got)
	first, err := s.UpdatedAt(ctx)
	require.NoError(t, err)

	require.NoError(t, s.Save(ctx, makeSnapshot(99)))
	got, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(99), got.Coins)
	second, err := s.UpdatedAt(ctx)
	require.NoError(t, err)
	assert.False(t, second.Before(first))

	var rows int
	require.NoError(t, pool.QueryRow(ctx, `SELECT COUNT(*) FROM game_snapshots WHERE slot = $1`, s.Slot()).Scan(&rows))
	assert.Equal(t, 1, rows)
}

func TestSnapshotStore_SlotsAreIndependent(t *testing.T) {
	pool := testutil.NewPool(t)
	a := postgres.NewSnapshotStore(pool, uniqueSlot("a"))
	b := postgres.NewSnapshotStore(pool, uniqueSlot("b"))
	ctx := context.Background()

	require.NoError(t, a.Save(ctx, makeSnapshot(1)))
	require.NoError(t, b.Save(ctx, makeSnapshot(2)))

	got, err := a.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Coins)

	require.NoError(t, b.Delete(ctx))
	_, err = b.Load(ctx)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = a.Load(ctx)
	assert.NoError(t, err)
}

func TestPool_PingAndStop(t *testing.T) {
	pc := testutil.NewPostgresContainer(t)
	ctx := context.Background()
	require.NoError(t, pc.Pool.Ping(ctx))

	done := make(chan error, 1)
	go func() { done <- pc.Pool.Start() }()
	pc.Pool.Stop()
	pc.Pool.Stop()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("health loop did not stop")
	}
	assert.Error(t, pc.Pool.Ping(ctx), "a stopped pool is closed")
}

func TestPool_Snapshots(t *testing.T) {
	pc := testutil.NewPostgresContainer(t)
	pc.ApplyMigrations(t)
	s := pc.Pool.Snapshots("")
	assert.Equal(t, postgres.DefaultSlot, s.Slot())

	ctx := context.Background()
	require.NoError(t, s.Save(ctx, makeSnapshot(3)))
	snap, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), snap.Coins)
}
