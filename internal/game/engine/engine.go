// Package engine is the single serialized apply-point for game transitions.
// Manual commands, the auto-click ticker, and burst rounds all enter through
// Engine methods, which run under one lock and write every successful
// transition through to the store.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/rngsim/internal/game/economy"
	"github.com/cory-johannsen/rngsim/internal/game/rng"
	"github.com/cory-johannsen/rngsim/internal/game/round"
	"github.com/cory-johannsen/rngsim/internal/game/scheduler"
	"github.com/cory-johannsen/rngsim/internal/game/state"
	"github.com/cory-johannsen/rngsim/internal/storage"
)

// ErrNoTarget is returned by rolls and bursts when no target is set.
var ErrNoTarget = state.ErrNoTarget

// ErrAutoClickerOff is returned by AutoRoll when the auto-clicker is disabled.
var ErrAutoClickerOff = errors.New("auto-clicker is off")

// ErrAutoClickerLocked is returned by ToggleAutoClicker before the first
// auto-clicker level has been bought.
var ErrAutoClickerLocked = errors.New("auto-clicker not purchased")

// DefaultBurstSpacing separates consecutive rounds of a speed burst.
const DefaultBurstSpacing = 50 * time.Millisecond

// DefaultSaveTimeout bounds a single write-through save.
const DefaultSaveTimeout = 2 * time.Second

// Options tunes an Engine. Zero values select the defaults.
type Options struct {
	HistoryLimit int
	BurstSpacing time.Duration
	SaveTimeout  time.Duration
	// Source defaults to rng.NewCryptoSource().
	Source rng.Source
	// Now defaults to time.Now.
	Now func() time.Time
}

func (o Options) withDefaults() Options {
	if o.HistoryLimit <= 0 {
		o.HistoryLimit = state.DefaultHistoryLimit
	}
	if o.BurstSpacing <= 0 {
		o.BurstSpacing = DefaultBurstSpacing
	}
	if o.SaveTimeout <= 0 {
		o.SaveTimeout = DefaultSaveTimeout
	}
	if o.Source == nil {
		o.Source = rng.NewCryptoSource()
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// BurstReceipt describes a speed burst that was paid for and scheduled.
type BurstReceipt struct {
	Cost    int64
	Rounds  int
	Offsets []time.Duration
}

// Engine owns the GameState and serializes every transition on it.
type Engine struct {
	logger *zap.Logger
	store  storage.Store
	sched  *scheduler.Scheduler
	opts   Options
	// ctx is used by timer-driven transitions that have no caller context.
	ctx context.Context

	done      chan struct{}
	closeOnce sync.Once

	mu      sync.Mutex
	st      *state.GameState
	autoOn  bool
	version uint64

	saveMu       sync.Mutex
	savedVersion uint64
}

// Open restores the saved game from store, or starts a fresh one when nothing
// is saved or the saved snapshot is malformed.
//
// Precondition: logger and store must be non-nil.
// Postcondition: on success the loaded or fresh state has been saved once so
// that its start time is persisted. Any other load failure is returned and the
// store is left untouched.
func Open(ctx context.Context, logger *zap.Logger, store storage.Store, opts Options) (*Engine, error) {
	opts = opts.withDefaults()
	e := &Engine{
		logger: logger,
		store:  store,
		sched:  scheduler.New(logger),
		opts:   opts,
		ctx:    context.WithoutCancel(ctx),
		done:   make(chan struct{}),
	}

	now := opts.Now()
	snap, err := e.load(ctx)
	switch {
	case err == nil:
		e.st = state.Restore(snap, now, opts.HistoryLimit)
		logger.Info("game restored",
			zap.Int64("coins", e.st.Coins),
			zap.String("target", e.st.Target),
			zap.Int("history", len(e.st.History)),
		)
	case errors.Is(err, storage.ErrNotFound):
		e.st = state.New(now, opts.HistoryLimit)
		logger.Info("no saved game, starting fresh")
	case errors.Is(err, storage.ErrMalformed):
		e.st = state.New(now, opts.HistoryLimit)
		logger.Warn("saved game malformed, starting fresh", zap.Error(err))
	default:
		e.sched.Close()
		return nil, fmt.Errorf("loading saved game: %w", err)
	}

	e.mu.Lock()
	s, v := e.commitLocked()
	e.mu.Unlock()
	e.persist(ctx, s, v)
	return e, nil
}

func (e *Engine) load(ctx context.Context) (state.Snapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, e.opts.SaveTimeout)
	defer cancel()
	return e.store.Load(ctx)
}

// Start blocks until Close. It lets the Engine run as a lifecycle service so
// that shutdown drains it before the store behind it goes away.
func (e *Engine) Start() error {
	<-e.done
	return nil
}

// Stop is Close.
func (e *Engine) Stop() { e.Close() }

// Close cancels the auto-clicker and waits for scheduled burst rounds to land
// and be saved. It is safe to call more than once.
//
// Precondition: no Engine method is running on the calling goroutine.
func (e *Engine) Close() {
	e.closeOnce.Do(func() {
		e.mu.Lock()
		e.autoOn = false
		e.mu.Unlock()
		e.sched.Close()
		close(e.done)
	})
}

// commitLocked records a successful transition and returns the snapshot to
// persist. Caller holds e.mu.
func (e *Engine) commitLocked() (state.Snapshot, uint64) {
	e.version++
	return e.st.Snapshot(), e.version
}

// persist writes snap unless a newer version has already been written.
func (e *Engine) persist(ctx context.Context, snap state.Snapshot, version uint64) {
	e.saveMu.Lock()
	defer e.saveMu.Unlock()
	if version <= e.savedVersion {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, e.opts.SaveTimeout)
	defer cancel()
	if err := e.store.Save(ctx, snap); err != nil {
		e.logger.Warn("saving game", zap.Uint64("version", version), zap.Error(err))
		return
	}
	e.savedVersion = version
}

// SetTarget sanitizes raw and makes it the target.
//
// Postcondition: returns the digits now in effect; coins, upgrades, history,
// and statistics are unchanged.
func (e *Engine) SetTarget(ctx context.Context, raw string) string {
	e.mu.Lock()
	target := e.st.SetTarget(raw)
	snap, v := e.commitLocked()
	e.mu.Unlock()

	e.logger.Debug("target set", zap.String("target", target))
	e.persist(ctx, snap, v)
	return target
}

// ManualRoll performs one player-initiated round.
//
// Postcondition: returns the recorded batch, or ErrNoTarget with no change.
func (e *Engine) ManualRoll(ctx context.Context) (round.RollBatch, error) {
	return e.roll(ctx, false)
}

// AutoRoll performs one auto-clicker round.
//
// Postcondition: returns ErrAutoClickerOff with no change unless the
// auto-clicker is on and owned.
func (e *Engine) AutoRoll(ctx context.Context) (round.RollBatch, error) {
	return e.roll(ctx, true)
}

func (e *Engine) roll(ctx context.Context, isAuto bool) (round.RollBatch, error) {
	e.mu.Lock()
	if isAuto && (!e.autoOn || e.st.Upgrades.AutoClicker.Level == 0) {
		e.mu.Unlock()
		return round.RollBatch{}, ErrAutoClickerOff
	}
	params, err := e.st.RoundParams(isAuto, e.opts.Now())
	if err != nil {
		e.mu.Unlock()
		return round.RollBatch{}, err
	}
	batch := round.Execute(e.opts.Source, params)
	e.st.ApplyBatch(batch)
	snap, v := e.commitLocked()
	e.mu.Unlock()

	e.logger.Debug("round executed",
		zap.Bool("auto", isAuto),
		zap.Int("draws", len(batch.Rolls)),
		zap.Int("hits", batch.Hits),
		zap.Int64("coins", batch.TotalCoins),
	)
	e.persist(ctx, snap, v)
	return batch, nil
}

// SpeedBurst pays for a burst now and schedules its rounds. Every round is a
// manual roll evaluated against the target and upgrades current when it
// fires, not when the burst was bought.
//
// Postcondition: on success coins are debited exactly once; on error nothing
// changes.
func (e *Engine) SpeedBurst(ctx context.Context) (BurstReceipt, error) {
	e.mu.Lock()
	plan, err := e.st.DebitBurst()
	if err != nil {
		e.mu.Unlock()
		return BurstReceipt{}, err
	}
	offsets, err := e.sched.Burst(plan.Rounds, e.opts.BurstSpacing, e.burstRound)
	if err != nil {
		e.st.Coins += plan.Cost
		e.mu.Unlock()
		return BurstReceipt{}, fmt.Errorf("scheduling burst: %w", err)
	}
	snap, v := e.commitLocked()
	e.mu.Unlock()

	e.logger.Info("speed burst",
		zap.Int64("cost", plan.Cost),
		zap.Int("rounds", plan.Rounds),
	)
	e.persist(ctx, snap, v)
	return BurstReceipt{Cost: plan.Cost, Rounds: plan.Rounds, Offsets: offsets}, nil
}

func (e *Engine) burstRound(step int) {
	if _, err := e.roll(e.ctx, false); err != nil {
		e.logger.Debug("burst round skipped", zap.Int("step", step), zap.Error(err))
	}
}

// PurchaseUpgrade buys one level of track.
//
// Postcondition: on success returns the new upgrade; a running auto-clicker
// is restarted at its new rate. On error nothing changes.
func (e *Engine) PurchaseUpgrade(ctx context.Context, track economy.Track) (economy.Upgrade, error) {
	e.mu.Lock()
	u, err := e.st.PurchaseUpgrade(track)
	if err != nil {
		e.mu.Unlock()
		return economy.Upgrade{}, err
	}
	if track == economy.TrackAutoClicker && e.autoOn {
		e.scheduleAutoLocked()
	}
	coins := e.st.Coins
	snap, v := e.commitLocked()
	e.mu.Unlock()

	e.logger.Info("upgrade purchased",
		zap.String("track", string(track)),
		zap.Int("level", u.Level),
		zap.Int64("next_cost", u.Cost),
		zap.Int64("coins", coins),
	)
	e.persist(ctx, snap, v)
	return u, nil
}

// ToggleAutoClicker flips the session-only auto-clicker switch.
//
// Postcondition: returns the new switch position, or ErrAutoClickerLocked
// with no change when no auto-clicker level is owned.
func (e *Engine) ToggleAutoClicker(ctx context.Context) (bool, error) {
	e.mu.Lock()
	if e.st.Upgrades.AutoClicker.Level == 0 {
		e.mu.Unlock()
		return false, ErrAutoClickerLocked
	}
	e.autoOn = !e.autoOn
	if e.autoOn {
		e.scheduleAutoLocked()
	} else {
		e.sched.StopAuto()
	}
	on := e.autoOn
	snap, v := e.commitLocked()
	e.mu.Unlock()

	e.logger.Info("auto-clicker toggled", zap.Bool("on", on))
	e.persist(ctx, snap, v)
	return on, nil
}

// scheduleAutoLocked (re)starts the auto ticker at the current level's rate.
// Caller holds e.mu.
func (e *Engine) scheduleAutoLocked() {
	interval, ok := economy.AutoClickInterval(e.st.Upgrades.AutoClicker.Level)
	if !ok {
		e.sched.StopAuto()
		return
	}
	if err := e.sched.SetAuto(interval, e.autoTick); err != nil {
		e.logger.Warn("scheduling auto-clicker", zap.Error(err))
	}
}

func (e *Engine) autoTick() {
	if _, err := e.AutoRoll(e.ctx); err != nil {
		e.logger.Debug("auto round skipped", zap.Error(err))
	}
}

// AutoClicking reports whether the auto-clicker is switched on.
func (e *Engine) AutoClicking() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.autoOn
}

// AutoInterval reports the live auto-click period.
func (e *Engine) AutoInterval() (time.Duration, bool) {
	return e.sched.AutoInterval()
}

// Snapshot returns a deep copy of the current persisted form.
func (e *Engine) Snapshot() state.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.st.Snapshot()
}
