package economy

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// ErrInsufficientFunds is returned when a purchase costs more than the balance.
var ErrInsufficientFunds = errors.New("insufficient funds")

// ErrUnknownTrack is returned when an upgrade track name is not recognised.
var ErrUnknownTrack = errors.New("unknown upgrade track")

// Track names one of the four upgrade lines.
type Track string

const (
	TrackInstanceCount  Track = "instanceCount"
	TrackAutoClicker    Track = "autoClicker"
	TrackCoinMultiplier Track = "coinMultiplier"
	TrackSpeedBurst     Track = "speedBurst"
)

// Tracks lists every track in shop order.
var Tracks = []Track{TrackInstanceCount, TrackAutoClicker, TrackCoinMultiplier, TrackSpeedBurst}

var trackAliases = map[string]Track{
	"instancecount":  TrackInstanceCount,
	"instances":      TrackInstanceCount,
	"multiinstance":  TrackInstanceCount,
	"multi":          TrackInstanceCount,
	"autoclicker":    TrackAutoClicker,
	"auto":           TrackAutoClicker,
	"coinmultiplier": TrackCoinMultiplier,
	"multiplier":     TrackCoinMultiplier,
	"coins":          TrackCoinMultiplier,
	"speedburst":     TrackSpeedBurst,
	"burst":          TrackSpeedBurst,
}

// ParseTrack resolves a track name or alias, case-insensitively.
//
// Postcondition: returns the Track or an error wrapping ErrUnknownTrack.
func ParseTrack(name string) (Track, error) {
	key := strings.ToLower(strings.NewReplacer("-", "", "_", "", " ", "").Replace(name))
	if t, ok := trackAliases[key]; ok {
		return t, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTrack, name)
}

// Upgrade is one track's current level and the price of the next level.
type Upgrade struct {
	Level int   `json:"level" yaml:"level"`
	Cost  int64 `json:"cost" yaml:"cost"`
}

// NextCost returns floor(cost * 2.1), saturating at the int64 maximum.
//
// Postcondition: result > cost for every cost >= 1.
func NextCost(cost int64) int64 {
	if cost > math.MaxInt64/21 {
		return math.MaxInt64
	}
	return cost * 21 / 10
}

// Ledger holds the four upgrade tracks.
type Ledger struct {
	InstanceCount  Upgrade `json:"instanceCount" yaml:"instanceCount"`
	AutoClicker    Upgrade `json:"autoClicker" yaml:"autoClicker"`
	CoinMultiplier Upgrade `json:"coinMultiplier" yaml:"coinMultiplier"`
	SpeedBurst     Upgrade `json:"speedBurst" yaml:"speedBurst"`
}

// DefaultLedger returns the baseline ledger of a fresh game.
func DefaultLedger() Ledger {
	return Ledger{
		InstanceCount:  Upgrade{Level: 1, Cost: 25},
		AutoClicker:    Upgrade{Level: 0, Cost: 100},
		CoinMultiplier: Upgrade{Level: 1, Cost: 50},
		SpeedBurst:     Upgrade{Level: 1, Cost: 75},
	}
}

// Get returns the upgrade for track.
func (l Ledger) Get(track Track) (Upgrade, error) {
	p, err := l.slot(track)
	if err != nil {
		return Upgrade{}, err
	}
	return *p, nil
}

func (l *Ledger) slot(track Track) (*Upgrade, error) {
	switch track {
	case TrackInstanceCount:
		return &l.InstanceCount, nil
	case TrackAutoClicker:
		return &l.AutoClicker, nil
	case TrackCoinMultiplier:
		return &l.CoinMultiplier, nil
	case TrackSpeedBurst:
		return &l.SpeedBurst, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownTrack, string(track))
}

// Purchase buys one level of track with the given balance.
//
// Postcondition: on success returns the updated ledger and the price paid; the
// purchased track has level+1 and cost NextCost(cost). On error the receiver is
// unchanged and the returned ledger is the receiver.
func (l Ledger) Purchase(track Track, coins int64) (Ledger, int64, error) {
	next := l
	u, err := next.slot(track)
	if err != nil {
		return l, 0, err
	}
	if coins < u.Cost {
		return l, 0, fmt.Errorf("%w: %s costs %d, have %d", ErrInsufficientFunds, track, u.Cost, coins)
	}
	paid := u.Cost
	u.Level++
	u.Cost = NextCost(u.Cost)
	return next, paid, nil
}

// Normalize restores any track that was never initialised (zero level and zero
// cost) to its baseline and clamps negative values.
func (l Ledger) Normalize() Ledger {
	base := DefaultLedger()
	fix := func(u, def Upgrade) Upgrade {
		if u.Cost <= 0 {
			return def
		}
		if u.Level < 0 {
			u.Level = 0
		}
		return u
	}
	l.InstanceCount = fix(l.InstanceCount, base.InstanceCount)
	if l.InstanceCount.Level < 1 {
		l.InstanceCount.Level = 1
	}
	l.AutoClicker = fix(l.AutoClicker, base.AutoClicker)
	l.CoinMultiplier = fix(l.CoinMultiplier, base.CoinMultiplier)
	l.SpeedBurst = fix(l.SpeedBurst, base.SpeedBurst)
	if l.SpeedBurst.Level < 1 {
		l.SpeedBurst.Level = 1
	}
	return l
}

// AutoClickInterval returns the period of the auto-clicker at level:
// 1000ms / (level * 0.3). ok is false when level is 0.
func AutoClickInterval(level int) (d time.Duration, ok bool) {
	if level <= 0 {
		return 0, false
	}
	return time.Duration(float64(time.Second) / (float64(level) * 0.3)), true
}

// AutoClickRate returns auto-clicks per second at level.
func AutoClickRate(level int) float64 {
	if level <= 0 {
		return 0
	}
	return float64(level) * 0.3
}

// BurstSize returns the number of rounds a speed burst fires at level.
//
// Postcondition: returns 8 + (level-1)*3.
func BurstSize(level int) int {
	return 8 + (level-1)*3
}
