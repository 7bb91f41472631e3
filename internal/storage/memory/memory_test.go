package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/rngsim/internal/game/economy"
	"github.com/cory-johannsen/rngsim/internal/game/state"
	"github.com/cory-johannsen/rngsim/internal/storage"
	"github.com/cory-johannsen/rngsim/internal/storage/memory"
)

func sampleSnapshot() state.Snapshot {
	return state.Snapshot{
		Coins:    120,
		Target:   "42",
		Upgrades: economy.DefaultLedger(),
		Stats: state.Statistics{
			StartTime:    time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
			ManualClicks: 4,
		},
	}
}

func TestStore_EmptyIsNotFound(t *testing.T) {
	_, err := memory.New().Load(context.Background())
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestStore_SaveLoad(t *testing.T) {
	s := memory.New()
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, sampleSnapshot()))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, sampleSnapshot(), got)
	assert.Equal(t, 1, s.Saves())
}

func TestStore_LoadDoesNotAlias(t *testing.T) {
	s, err := memory.NewWith(sampleSnapshot())
	require.NoError(t, err)
	assert.Equal(t, 0, s.Saves())

	first, err := s.Load(context.Background())
	require.NoError(t, err)
	first.Coins = -1
	first.Upgrades.InstanceCount.Level = 99

	second, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, sampleSnapshot(), second)
}

func TestStore_Malformed(t *testing.T) {
	s := memory.New()
	s.SetRaw([]byte(`{"coins": "lots"`))
	_, err := s.Load(context.Background())
	assert.ErrorIs(t, err, storage.ErrMalformed)
}

func TestStore_FailSaves(t *testing.T) {
	s, err := memory.NewWith(sampleSnapshot())
	require.NoError(t, err)
	boom := errors.New("boom")
	s.FailSaves(boom)

	next := sampleSnapshot()
	next.Coins = 1
	assert.ErrorIs(t, s.Save(context.Background(), next), boom)

	got, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(120), got.Coins, "failed save keeps the previous snapshot")
	assert.Equal(t, 0, s.Saves())
}
