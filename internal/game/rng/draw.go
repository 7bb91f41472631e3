package rng

import (
	"fmt"
	"math"
)

// twoTo32 normalizes a 32-bit value into [0, 1).
const twoTo32 = float64(1 << 32)

// Draw returns a uniformly distributed integer in [min, max].
//
// The value is produced by normalizing one 32-bit sample to [0, 1), scaling it
// by the range width, flooring, and offsetting by min.
//
// Precondition: src is non-nil; min <= max.
// Postcondition: min <= result <= max.
func Draw(src Source, min, max int64) int64 {
	if src == nil {
		panic("rng: Draw called with nil source")
	}
	if min > max {
		panic(fmt.Sprintf("rng: Draw called with min %d > max %d", min, max))
	}
	span := float64(max-min) + 1
	offset := int64(math.Floor(float64(src.Uint32()) / twoTo32 * span))
	// float rounding on very wide ranges must not escape the interval
	if offset > max-min {
		offset = max - min
	}
	return min + offset
}
