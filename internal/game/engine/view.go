package engine

import (
	"time"

	"github.com/cory-johannsen/rngsim/internal/game/economy"
	"github.com/cory-johannsen/rngsim/internal/game/round"
	"github.com/cory-johannsen/rngsim/internal/game/state"
)

// View is a consistent read-only picture of the game for presentation.
// Derived figures are computed on read and never stored.
type View struct {
	Coins        int64
	Target       string
	Range        round.Range
	Upgrades     economy.Ledger
	Stats        state.Statistics
	History      []round.RollBatch
	AutoClicking bool

	BaseReward        int64
	EffectiveReward   int64
	BurstCost         int64
	BurstSize         int
	MultiplierPercent int
	AutoRate          float64
	AutoInterval      time.Duration

	HitRate       float64
	BestHitStreak int
	LargestReward int64
}

// HasTarget reports whether rolls are possible.
func (v View) HasTarget() bool {
	return v.Target != ""
}

// CanBurst reports whether a speed burst is affordable right now.
func (v View) CanBurst() bool {
	return v.HasTarget() && v.Coins >= v.BurstCost
}

// CanAfford reports whether the next level of track is affordable.
func (v View) CanAfford(track economy.Track) bool {
	u, err := v.Upgrades.Get(track)
	return err == nil && v.Coins >= u.Cost
}

// View returns the current game picture.
func (e *Engine) View() View {
	e.mu.Lock()
	snap := e.st.Snapshot()
	current := e.st.Range
	on := e.autoOn
	e.mu.Unlock()

	length := len(snap.Target)
	interval, _ := economy.AutoClickInterval(snap.Upgrades.AutoClicker.Level)
	return View{
		Coins:        snap.Coins,
		Target:       snap.Target,
		Range:        current,
		Upgrades:     snap.Upgrades,
		Stats:        snap.Stats,
		History:      snap.RollHistory,
		AutoClicking: on,

		BaseReward:        economy.BaseReward(length),
		EffectiveReward:   economy.EffectiveReward(length, snap.Upgrades.CoinMultiplier.Level),
		BurstCost:         economy.BurstCost(length),
		BurstSize:         economy.BurstSize(snap.Upgrades.SpeedBurst.Level),
		MultiplierPercent: economy.MultiplierPercent(snap.Upgrades.CoinMultiplier.Level),
		AutoRate:          economy.AutoClickRate(snap.Upgrades.AutoClicker.Level),
		AutoInterval:      interval,

		HitRate:       state.HitRate(snap.Stats),
		BestHitStreak: state.BestHitStreak(snap.RollHistory),
		LargestReward: state.LargestReward(snap.RollHistory),
	}
}
