package httpapi

import (
	"time"

	"github.com/cory-johannsen/rngsim/internal/game/economy"
	"github.com/cory-johannsen/rngsim/internal/game/engine"
	"github.com/cory-johannsen/rngsim/internal/game/round"
)

// StatusResponse is the body of GET /status.
type StatusResponse struct {
	Coins             int64          `json:"coins"`
	Target            string         `json:"target"`
	Range             *round.Range   `json:"range,omitempty"`
	Odds              int64          `json:"odds,omitempty"`
	BaseReward        int64          `json:"baseReward"`
	EffectiveReward   int64          `json:"effectiveReward"`
	MultiplierPercent int            `json:"multiplierPercent"`
	BurstCost         int64          `json:"burstCost"`
	BurstSize         int            `json:"burstSize"`
	AutoClicking      bool           `json:"autoClicking"`
	AutoRate          float64        `json:"autoRate"`
	Upgrades          economy.Ledger `json:"upgrades"`
}

// StatsResponse is the body of GET /stats.
type StatsResponse struct {
	StartTime             time.Time `json:"startTime"`
	SecondsPlayed         int64     `json:"secondsPlayed"`
	TotalClicks           int64     `json:"totalClicks"`
	ManualClicks          int64     `json:"manualClicks"`
	AutoClicks            int64     `json:"autoClicks"`
	TotalNumbersGenerated int64     `json:"totalNumbersGenerated"`
	TotalHits             int64     `json:"totalHits"`
	HitRate               float64   `json:"hitRate"`
	TotalCoinsEarned      int64     `json:"totalCoinsEarned"`
	UpgradesPurchased     int64     `json:"upgradesPurchased"`
	LargestReward         int64     `json:"largestReward"`
	BestHitStreak         int       `json:"bestHitStreak"`
}

// HistoryResponse is the body of GET /history.
type HistoryResponse struct {
	Target  string            `json:"target"`
	Batches []round.RollBatch `json:"batches"`
}

func toStatus(v engine.View) StatusResponse {
	resp := StatusResponse{
		Coins:             v.Coins,
		Target:            v.Target,
		BaseReward:        v.BaseReward,
		EffectiveReward:   v.EffectiveReward,
		MultiplierPercent: v.MultiplierPercent,
		BurstCost:         v.BurstCost,
		BurstSize:         v.BurstSize,
		AutoClicking:      v.AutoClicking,
		AutoRate:          v.AutoRate,
		Upgrades:          v.Upgrades,
	}
	if v.HasTarget() {
		r := v.Range
		resp.Range = &r
		resp.Odds = r.Size()
	}
	return resp
}

func toStats(v engine.View, now time.Time) StatsResponse {
	s := v.Stats
	played := int64(now.Sub(s.StartTime) / time.Second)
	if played < 0 {
		played = 0
	}
	return StatsResponse{
		StartTime:             s.StartTime,
		SecondsPlayed:         played,
		TotalClicks:           s.TotalClicks(),
		ManualClicks:          s.ManualClicks,
		AutoClicks:            s.AutoClicks,
		TotalNumbersGenerated: s.TotalNumbersGenerated,
		TotalHits:             s.TotalHits,
		HitRate:               v.HitRate,
		TotalCoinsEarned:      s.TotalCoinsEarned,
		UpgradesPurchased:     s.UpgradesPurchased,
		LargestReward:         v.LargestReward,
		BestHitStreak:         v.BestHitStreak,
	}
}

func toHistory(v engine.View, limit int) HistoryResponse {
	batches := v.History
	if limit > 0 && limit < len(batches) {
		batches = batches[:limit]
	}
	if batches == nil {
		batches = []round.RollBatch{}
	}
	return HistoryResponse{Target: v.Target, Batches: batches}
}
