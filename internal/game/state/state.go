// Package state holds the GameState aggregate: coins, target, upgrades,
// bounded history, and lifetime statistics, together with the pure
// transitions that change them. State is not safe for concurrent use; the
// engine package serializes access.
package state

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cory-johannsen/rngsim/internal/game/economy"
	"github.com/cory-johannsen/rngsim/internal/game/round"
)

// DefaultHistoryLimit is the number of batches History retains. It is also
// the ceiling: a larger limit is clamped to it.
const DefaultHistoryLimit = 20

// MaxTargetDigits bounds a target so its range fits in an int64.
const MaxTargetDigits = 18

// ErrNoTarget is returned by transitions that need a target when none is set.
var ErrNoTarget = errors.New("no target set")

// Statistics are lifetime counters. All counters are non-decreasing.
type Statistics struct {
	StartTime             time.Time `json:"startTime" yaml:"startTime"`
	ManualClicks          int64     `json:"manualClicks" yaml:"manualClicks"`
	AutoClicks            int64     `json:"autoClicks" yaml:"autoClicks"`
	TotalCoinsEarned      int64     `json:"totalCoinsEarned" yaml:"totalCoinsEarned"`
	UpgradesPurchased     int64     `json:"upgradesPurchased" yaml:"upgradesPurchased"`
	TotalHits             int64     `json:"totalHits" yaml:"totalHits"`
	TotalNumbersGenerated int64     `json:"totalNumbersGenerated" yaml:"totalNumbersGenerated"`
}

// TotalClicks returns manual plus automatic clicks.
func (s Statistics) TotalClicks() int64 {
	return s.ManualClicks + s.AutoClicks
}

// GameState is the aggregate every transition operates on.
//
// Invariant: Range is always RangeFor(len(Target)); Coins >= 0;
// len(History) <= historyLimit, most recent first.
type GameState struct {
	Coins    int64
	Target   string
	Range    round.Range
	Upgrades economy.Ledger
	History  []round.RollBatch
	Stats    Statistics

	historyLimit int
}

// New returns a fresh game started at now.
func New(now time.Time, historyLimit int) *GameState {
	return &GameState{
		Upgrades:     economy.DefaultLedger(),
		Stats:        Statistics{StartTime: now},
		historyLimit: clampHistory(historyLimit),
	}
}

// SanitizeTarget strips every non-digit rune and truncates the result to
// MaxTargetDigits.
func SanitizeTarget(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
			if b.Len() == MaxTargetDigits {
				break
			}
		}
	}
	return b.String()
}

// RangeFor returns [0, 10^digits - 1], or the empty {0, 0} range for no target.
func RangeFor(digits int) round.Range {
	if digits <= 0 {
		return round.Range{}
	}
	return round.Range{Min: 0, Max: economy.MaxValue(digits)}
}

// HasTarget reports whether a target is set.
func (s *GameState) HasTarget() bool {
	return s.Target != ""
}

// TargetValue returns the numeric value of the target.
func (s *GameState) TargetValue() (int64, error) {
	if !s.HasTarget() {
		return 0, ErrNoTarget
	}
	v, err := strconv.ParseInt(s.Target, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing target %q: %w", s.Target, err)
	}
	return v, nil
}

// SetTarget sanitizes raw and makes it the target, re-deriving Range. Coins,
// upgrades, history, and statistics are untouched.
//
// Postcondition: returns the sanitized target now in effect.
func (s *GameState) SetTarget(raw string) string {
	s.Target = SanitizeTarget(raw)
	s.Range = RangeFor(len(s.Target))
	return s.Target
}

// RoundParams captures everything a round reads from the state at this moment.
//
// Postcondition: returns ErrNoTarget when no target is set.
func (s *GameState) RoundParams(isAuto bool, now time.Time) (round.Params, error) {
	target, err := s.TargetValue()
	if err != nil {
		return round.Params{}, err
	}
	return round.Params{
		Range:               s.Range,
		Target:              target,
		TargetLength:        len(s.Target),
		InstanceCount:       s.Upgrades.InstanceCount.Level,
		CoinMultiplierLevel: s.Upgrades.CoinMultiplier.Level,
		IsAuto:              isAuto,
		Now:                 now,
	}, nil
}

// ApplyBatch credits a finished round: coins, counters, and history.
//
// Postcondition: Coins and Stats.TotalCoinsEarned grow by b.TotalCoins;
// ManualClicks or AutoClicks grows by one; b is History[0].
func (s *GameState) ApplyBatch(b round.RollBatch) {
	s.Coins = economy.AddCoins(s.Coins, b.TotalCoins)
	if b.IsAuto {
		s.Stats.AutoClicks++
	} else {
		s.Stats.ManualClicks++
	}
	s.Stats.TotalCoinsEarned = economy.AddCoins(s.Stats.TotalCoinsEarned, b.TotalCoins)
	s.Stats.TotalHits += int64(b.Hits)
	s.Stats.TotalNumbersGenerated += int64(len(b.Rolls))
	s.pushHistory(b)
}

func (s *GameState) pushHistory(b round.RollBatch) {
	limit := s.limit()
	next := make([]round.RollBatch, 0, min(len(s.History)+1, limit))
	next = append(next, b)
	for _, old := range s.History {
		if len(next) == limit {
			break
		}
		next = append(next, old)
	}
	s.History = next
}

func (s *GameState) limit() int {
	return clampHistory(s.historyLimit)
}

func clampHistory(n int) int {
	if n <= 0 || n > DefaultHistoryLimit {
		return DefaultHistoryLimit
	}
	return n
}

// PurchaseUpgrade buys one level of track.
//
// Postcondition: on success coins are debited, the track levels up, and
// Stats.UpgradesPurchased grows by one. On error nothing changes.
func (s *GameState) PurchaseUpgrade(track economy.Track) (economy.Upgrade, error) {
	next, paid, err := s.Upgrades.Purchase(track, s.Coins)
	if err != nil {
		return economy.Upgrade{}, err
	}
	s.Upgrades = next
	s.Coins -= paid
	s.Stats.UpgradesPurchased++
	return next.Get(track)
}

// BurstPlan describes a paid-for speed burst.
type BurstPlan struct {
	Cost   int64
	Rounds int
}

// DebitBurst charges the speed burst price for the current target.
//
// Postcondition: on success coins drop by the burst cost and the plan names
// the number of rounds to schedule. On error nothing changes.
func (s *GameState) DebitBurst() (BurstPlan, error) {
	if !s.HasTarget() {
		return BurstPlan{}, ErrNoTarget
	}
	cost := economy.BurstCost(len(s.Target))
	if s.Coins < cost {
		return BurstPlan{}, fmt.Errorf("%w: burst costs %d, have %d", economy.ErrInsufficientFunds, cost, s.Coins)
	}
	s.Coins -= cost
	return BurstPlan{Cost: cost, Rounds: economy.BurstSize(s.Upgrades.SpeedBurst.Level)}, nil
}
