package state

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cory-johannsen/rngsim/internal/game/round"
)

// HitRate returns totalHits / totalNumbersGenerated as a percentage, or 0
// before anything has been generated.
func HitRate(s Statistics) float64 {
	if s.TotalNumbersGenerated == 0 {
		return 0
	}
	return float64(s.TotalHits) / float64(s.TotalNumbersGenerated) * 100
}

// BestHitStreak returns the largest sum of hits over any run of consecutive
// batches with at least one hit. A batch with no hits breaks the run.
func BestHitStreak(history []round.RollBatch) int {
	best, cur := 0, 0
	for _, b := range history {
		if b.Hits == 0 {
			cur = 0
			continue
		}
		cur += b.Hits
		if cur > best {
			best = cur
		}
	}
	return best
}

// LargestReward returns the biggest single reward in history, or 0.
func LargestReward(history []round.RollBatch) int64 {
	var best int64
	for _, b := range history {
		if r := b.LargestReward(); r > best {
			best = r
		}
	}
	return best
}

// FormatTimePlayed renders elapsed time as "1h 2m 3s", "2m 3s", or "3s".
func FormatTimePlayed(start, now time.Time) string {
	secs := int64(now.Sub(start) / time.Second)
	if secs < 0 {
		secs = 0
	}
	h, m, sec := secs/3600, (secs%3600)/60, secs%60
	switch {
	case h > 0:
		return fmt.Sprintf("%dh %dm %ds", h, m, sec)
	case m > 0:
		return fmt.Sprintf("%dm %ds", m, sec)
	default:
		return fmt.Sprintf("%ds", sec)
	}
}

// FormatNumber zero-pads n to the width of target; with no target it is the
// plain decimal.
func FormatNumber(n int64, target string) string {
	s := strconv.FormatInt(n, 10)
	if pad := len(target) - len(s); pad > 0 {
		return strings.Repeat("0", pad) + s
	}
	return s
}
