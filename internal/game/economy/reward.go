// Package economy holds the reward curve and the upgrade ledger: every number
// that decides how many coins a hit pays and what the next upgrade costs.
package economy

import (
	"math"
	"math/bits"
)

// baseRewards is the hand-tuned payout for short targets.
var baseRewards = map[int]int64{
	1: 2,
	2: 10,
	3: 50,
	4: 200,
	5: 800,
}

// MinBurstCost is the floor on the price of a speed burst.
const MinBurstCost int64 = 20

// BaseReward returns the coins paid for one hit on a target of length digits.
//
// Postcondition: lengths 1-5 follow the fixed table; longer targets pay
// floor(10^length * 0.1) = 10^(length-1); length < 1 pays 0.
func BaseReward(length int) int64 {
	if length < 1 {
		return 0
	}
	if r, ok := baseRewards[length]; ok {
		return r
	}
	return pow10(length - 1)
}

// EffectiveReward applies the coin multiplier to BaseReward.
//
// Postcondition: returns floor(BaseReward(length) * (1 + level*0.1)), computed
// exactly in integer arithmetic and saturating at math.MaxInt64. A level
// below -10 pays 0.
func EffectiveReward(length, multiplierLevel int) int64 {
	base := BaseReward(length)
	factor := int64(10) + int64(multiplierLevel)
	if base == 0 || factor <= 0 {
		return 0
	}
	hi, lo := bits.Mul64(uint64(base), uint64(factor))
	if hi >= 10 {
		return math.MaxInt64
	}
	q, _ := bits.Div64(hi, lo, 10)
	if q > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(q)
}

// AddCoins returns a+b for non-negative amounts, saturating at math.MaxInt64.
func AddCoins(a, b int64) int64 {
	if a > math.MaxInt64-b {
		return math.MaxInt64
	}
	return a + b
}

// MultiplierPercent returns the reward multiplier for level as a percentage
// (level 1 = 110%).
func MultiplierPercent(multiplierLevel int) int {
	return 100 + 10*multiplierLevel
}

// BurstCost returns the coins debited to trigger a speed burst.
//
// Postcondition: returns max(20, floor(BaseReward(length) * 0.2)).
func BurstCost(length int) int64 {
	c := BaseReward(length) / 5
	if c < MinBurstCost {
		return MinBurstCost
	}
	return c
}

func pow10(n int) int64 {
	v := int64(1)
	for i := 0; i < n; i++ {
		v *= 10
	}
	return v
}

// MaxValue returns 10^digits - 1, the largest number a target of that length
// can hold.
//
// Precondition: 0 <= digits <= 18.
func MaxValue(digits int) int64 {
	return pow10(digits) - 1
}
