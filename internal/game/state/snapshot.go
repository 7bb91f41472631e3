package state

import (
	"time"

	"github.com/cory-johannsen/rngsim/internal/game/economy"
	"github.com/cory-johannsen/rngsim/internal/game/round"
)

// Snapshot is the persisted form of a GameState. Range is deliberately absent:
// it is always re-derived from Target.
type Snapshot struct {
	Coins       int64             `json:"coins" yaml:"coins"`
	Target      string            `json:"target" yaml:"target"`
	RollHistory []round.RollBatch `json:"rollHistory" yaml:"rollHistory"`
	Upgrades    economy.Ledger    `json:"upgrades" yaml:"upgrades"`
	Stats       Statistics        `json:"stats" yaml:"stats"`
}

// Snapshot returns a deep copy of the state suitable for persistence.
func (s *GameState) Snapshot() Snapshot {
	hist := make([]round.RollBatch, len(s.History))
	for i, b := range s.History {
		rolls := make([]round.RollOutcome, len(b.Rolls))
		copy(rolls, b.Rolls)
		b.Rolls = rolls
		hist[i] = b
	}
	return Snapshot{
		Coins:       s.Coins,
		Target:      s.Target,
		RollHistory: hist,
		Upgrades:    s.Upgrades,
		Stats:       s.Stats,
	}
}

// Restore rebuilds a GameState from snap, repairing anything a hand-edited or
// older save could get wrong.
//
// Postcondition: the returned state satisfies every GameState invariant.
func Restore(snap Snapshot, now time.Time, historyLimit int) *GameState {
	s := New(now, historyLimit)
	s.Coins = snap.Coins
	if s.Coins < 0 {
		s.Coins = 0
	}
	s.SetTarget(snap.Target)
	s.Upgrades = snap.Upgrades.Normalize()
	s.Stats = snap.Stats
	if s.Stats.StartTime.IsZero() {
		s.Stats.StartTime = now
	}
	limit := s.limit()
	hist := snap.RollHistory
	if len(hist) > limit {
		hist = hist[:limit]
	}
	s.History = append([]round.RollBatch(nil), hist...)
	return s
}
