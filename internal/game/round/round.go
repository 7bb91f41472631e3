// Package round executes one draw round: N draws against the target, each
// scored through the reward curve, grouped into a RollBatch.
package round

import (
	"time"

	"github.com/google/uuid"

	"github.com/cory-johannsen/rngsim/internal/game/economy"
	"github.com/cory-johannsen/rngsim/internal/game/rng"
)

// Range is the inclusive interval numbers are drawn from.
type Range struct {
	Min int64 `json:"min"`
	Max int64 `json:"max"`
}

// Size returns the number of distinct values in the range (the "1 in N" odds).
func (r Range) Size() int64 {
	return r.Max - r.Min + 1
}

// RollOutcome is a single drawn number.
type RollOutcome struct {
	Number    int64     `json:"number" yaml:"number"`
	IsMatch   bool      `json:"isMatch" yaml:"isMatch"`
	Reward    int64     `json:"reward" yaml:"reward"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
}

// RollBatch groups the outcomes of one manual roll, auto tick, or burst step.
//
// Invariant: TotalCoins == sum(Rolls[i].Reward); Hits == count(Rolls[i].IsMatch).
type RollBatch struct {
	ID                  string        `json:"id" yaml:"id"`
	Rolls               []RollOutcome `json:"rolls" yaml:"rolls"`
	TotalCoins          int64         `json:"totalCoins" yaml:"totalCoins"`
	Hits                int           `json:"hits" yaml:"hits"`
	InstanceCountAtTime int           `json:"instanceCountAtTime" yaml:"instanceCountAtTime"`
	IsAuto              bool          `json:"isAuto" yaml:"isAuto"`
	Timestamp           time.Time     `json:"timestamp" yaml:"timestamp"`
}

// LargestReward returns the biggest single reward in the batch.
func (b RollBatch) LargestReward() int64 {
	var best int64
	for _, r := range b.Rolls {
		if r.Reward > best {
			best = r.Reward
		}
	}
	return best
}

// Params is everything a round needs to know about the game at execution time.
type Params struct {
	Range               Range
	Target              int64
	TargetLength        int
	InstanceCount       int
	CoinMultiplierLevel int
	IsAuto              bool
	Now                 time.Time
}

// Execute performs p.InstanceCount draws from src and scores them.
//
// Precondition: src non-nil; p.Range.Min <= p.Range.Max; p.TargetLength >= 1.
// Postcondition: len(result.Rolls) == max(p.InstanceCount, 0), in draw order;
// result.InstanceCountAtTime == p.InstanceCount.
func Execute(src rng.Source, p Params) RollBatch {
	n := p.InstanceCount
	if n < 0 {
		n = 0
	}
	batch := RollBatch{
		ID:                  uuid.New().String(),
		Rolls:               make([]RollOutcome, 0, n),
		InstanceCountAtTime: p.InstanceCount,
		IsAuto:              p.IsAuto,
		Timestamp:           p.Now,
	}
	reward := economy.EffectiveReward(p.TargetLength, p.CoinMultiplierLevel)
	for i := 0; i < n; i++ {
		out := RollOutcome{
			Number:    rng.Draw(src, p.Range.Min, p.Range.Max),
			Timestamp: p.Now,
		}
		if out.Number == p.Target {
			out.IsMatch = true
			out.Reward = reward
			batch.TotalCoins = economy.AddCoins(batch.TotalCoins, reward)
			batch.Hits++
		}
		batch.Rolls = append(batch.Rolls, out)
	}
	return batch
}
