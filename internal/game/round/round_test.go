package round_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/rngsim/internal/game/rng"
	"github.com/cory-johannsen/rngsim/internal/game/round"
)

// valueSource maps desired draws in [0, 99] onto raw 32-bit samples.
type valueSource struct {
	span  uint64
	draws []int64
	i     int
}

func (v *valueSource) Uint32() uint32 {
	d := v.draws[v.i%len(v.draws)]
	v.i++
	// lowest sample whose scaled floor equals d
	return uint32((uint64(d)<<32 + v.span - 1) / v.span)
}

func twoDigitParams(instances, multiplier int) round.Params {
	return round.Params{
		Range:               round.Range{Min: 0, Max: 99},
		Target:              42,
		TargetLength:        2,
		InstanceCount:       instances,
		CoinMultiplierLevel: multiplier,
		Now:                 time.Unix(1_700_000_000, 0),
	}
}

func TestExecute_ScoresMatches(t *testing.T) {
	src := &valueSource{span: 100, draws: []int64{42, 7, 42}}
	b := round.Execute(src, twoDigitParams(3, 1))

	require.Len(t, b.Rolls, 3)
	assert.Equal(t, []int64{42, 7, 42}, []int64{b.Rolls[0].Number, b.Rolls[1].Number, b.Rolls[2].Number})
	assert.True(t, b.Rolls[0].IsMatch)
	assert.False(t, b.Rolls[1].IsMatch)
	assert.Equal(t, int64(11), b.Rolls[0].Reward, "floor(10 * 1.1)")
	assert.Equal(t, int64(0), b.Rolls[1].Reward)
	assert.Equal(t, 2, b.Hits)
	assert.Equal(t, int64(22), b.TotalCoins)
	assert.Equal(t, 3, b.InstanceCountAtTime)
	assert.False(t, b.IsAuto)
	assert.NotEmpty(t, b.ID)
	assert.Equal(t, int64(11), b.LargestReward())
}

func TestExecute_AutoFlagAndIDs(t *testing.T) {
	p := twoDigitParams(1, 1)
	p.IsAuto = true
	src := rng.NewSeededSource(7)
	a := round.Execute(src, p)
	b := round.Execute(src, p)
	assert.True(t, a.IsAuto)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestExecute_ZeroInstances(t *testing.T) {
	b := round.Execute(rng.NewSeededSource(1), twoDigitParams(0, 1))
	assert.Empty(t, b.Rolls)
	assert.Equal(t, 0, b.Hits)
	assert.Equal(t, int64(0), b.TotalCoins)
}

func TestRange_Size(t *testing.T) {
	assert.Equal(t, int64(100), round.Range{Min: 0, Max: 99}.Size())
	assert.Equal(t, int64(10), round.Range{Min: 0, Max: 9}.Size())
}

// Property: batch totals always agree with the individual outcomes.
func TestExecute_Totals_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		digits := rapid.IntRange(1, 2).Draw(rt, "digits")
		max := int64(9)
		if digits == 2 {
			max = 99
		}
		p := round.Params{
			Range:               round.Range{Min: 0, Max: max},
			Target:              rapid.Int64Range(0, max).Draw(rt, "target"),
			TargetLength:        digits,
			InstanceCount:       rapid.IntRange(1, 50).Draw(rt, "instances"),
			CoinMultiplierLevel: rapid.IntRange(0, 20).Draw(rt, "multiplier"),
		}
		b := round.Execute(rng.NewSeededSource(rapid.Uint64().Draw(rt, "seed")), p)

		var coins int64
		hits := 0
		for _, r := range b.Rolls {
			if r.Number < 0 || r.Number > max {
				rt.Fatalf("number %d outside [0,%d]", r.Number, max)
			}
			if r.IsMatch != (r.Number == p.Target) {
				rt.Fatalf("match flag wrong for %d vs %d", r.Number, p.Target)
			}
			coins += r.Reward
			if r.IsMatch {
				hits++
			}
		}
		assert.Len(rt, b.Rolls, p.InstanceCount)
		assert.Equal(rt, coins, b.TotalCoins)
		assert.Equal(rt, hits, b.Hits)
	})
}
