package storage_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/rngsim/internal/game/economy"
	"github.com/cory-johannsen/rngsim/internal/game/round"
	"github.com/cory-johannsen/rngsim/internal/game/state"
	"github.com/cory-johannsen/rngsim/internal/storage"
)

func snapshotWithHistory() state.Snapshot {
	at := time.Date(2026, 5, 6, 7, 8, 9, 0, time.UTC)
	return state.Snapshot{
		Coins:  33,
		Target: "42",
		RollHistory: []round.RollBatch{{
			ID:                  "b1",
			Rolls:               []round.RollOutcome{{Number: 42, IsMatch: true, Reward: 11, Timestamp: at}},
			TotalCoins:          11,
			Hits:                1,
			InstanceCountAtTime: 1,
			Timestamp:           at,
		}},
		Upgrades: economy.DefaultLedger(),
		Stats:    state.Statistics{StartTime: at, ManualClicks: 1, TotalHits: 1, TotalCoinsEarned: 11, TotalNumbersGenerated: 1},
	}
}

func TestJSON_FieldNames(t *testing.T) {
	data, err := storage.EncodeJSON(snapshotWithHistory())
	require.NoError(t, err)
	for _, key := range []string{
		`"coins"`, `"target"`, `"rollHistory"`, `"upgrades"`, `"stats"`,
		`"instanceCount"`, `"autoClicker"`, `"coinMultiplier"`, `"speedBurst"`,
		`"isMatch"`, `"instanceCountAtTime"`, `"totalNumbersGenerated"`,
	} {
		assert.Contains(t, string(data), key)
	}

	got, err := storage.DecodeJSON(data)
	require.NoError(t, err)
	assert.Equal(t, snapshotWithHistory(), got)
}

func TestYAML_RoundTrip(t *testing.T) {
	data, err := storage.EncodeYAML(snapshotWithHistory())
	require.NoError(t, err)
	assert.Contains(t, string(data), "rollHistory:")

	got, err := storage.DecodeYAML(data)
	require.NoError(t, err)
	assert.Equal(t, snapshotWithHistory(), got)
}

func TestDecode_Malformed(t *testing.T) {
	_, err := storage.DecodeJSON([]byte("[1,2"))
	assert.ErrorIs(t, err, storage.ErrMalformed)

	_, err = storage.DecodeYAML([]byte("coins: [unterminated"))
	assert.ErrorIs(t, err, storage.ErrMalformed)
}
