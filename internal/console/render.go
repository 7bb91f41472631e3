package console

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/cory-johannsen/rngsim/internal/game/economy"
	"github.com/cory-johannsen/rngsim/internal/game/engine"
	"github.com/cory-johannsen/rngsim/internal/game/round"
	"github.com/cory-johannsen/rngsim/internal/game/state"
)

var trackTitles = map[economy.Track]string{
	economy.TrackInstanceCount:  "Multi-Instance",
	economy.TrackAutoClicker:    "Auto-Clicker",
	economy.TrackCoinMultiplier: "Coin Multiplier",
	economy.TrackSpeedBurst:     "Speed Burst",
}

// TrackTitle returns the shop name of track.
func TrackTitle(track economy.Track) string {
	if t, ok := trackTitles[track]; ok {
		return t
	}
	return string(track)
}

// MultiplierText renders the coin multiplier factor exactly, e.g. "1.1x".
func MultiplierText(level int) string {
	return decimal.New(int64(economy.MultiplierPercent(level)), -2).String() + "x"
}

// AutoRateText renders the auto-clicker speed exactly, e.g. "0.9/sec".
func AutoRateText(level int) string {
	if level < 0 {
		level = 0
	}
	return decimal.New(int64(level)*3, -1).StringFixed(1) + "/sec"
}

// Renderer formats engine views as console text.
type Renderer struct {
	p       Palette
	printer *message.Printer
}

// NewRenderer returns a Renderer styling with p.
func NewRenderer(p Palette) *Renderer {
	return &Renderer{p: p, printer: message.NewPrinter(language.English)}
}

// Count formats n with thousands separators.
func (r *Renderer) Count(n int64) string {
	return r.printer.Sprintf("%d", n)
}

// Prompt is shown before every command.
func (r *Renderer) Prompt(v engine.View) string {
	return r.p.Colorf(BrightCyan, "[%s coins]> ", r.Count(v.Coins))
}

// Banner greets the player.
func (r *Renderer) Banner() string {
	return r.p.Colorize(Bold+BrightYellow, "RNG Simulator") + "\n" +
		r.p.Colorize(Dim, "Pick a target, roll for matches, spend coins on upgrades. Type help for commands.") + "\n"
}

// Target describes the current target, range, and odds.
func (r *Renderer) Target(v engine.View) string {
	if !v.HasTarget() {
		return r.p.Colorize(Yellow, "No target set. Use: target <digits>") + "\n"
	}
	var b strings.Builder
	b.WriteString(r.p.Colorf(BrightYellow, "Target: %s", v.Target))
	b.WriteString("\n")
	fmt.Fprintf(&b, "  Range: %s - %s\n",
		state.FormatNumber(v.Range.Min, v.Target), state.FormatNumber(v.Range.Max, v.Target))
	fmt.Fprintf(&b, "  Base Reward: %s coins (%s with %s)\n",
		r.Count(v.BaseReward), r.Count(v.EffectiveReward), MultiplierText(v.Upgrades.CoinMultiplier.Level))
	fmt.Fprintf(&b, "  Chance: 1 in %s\n", r.Count(v.Range.Size()))
	return b.String()
}

// Batch renders one roll batch on a single line.
func (r *Renderer) Batch(batch round.RollBatch, target string) string {
	var b strings.Builder
	b.WriteString(r.p.Colorize(Dim, batch.Timestamp.Format("15:04:05")))
	if batch.IsAuto {
		b.WriteString(r.p.Colorize(Magenta, " (Auto)"))
	}
	b.WriteString(" ")
	for i, roll := range batch.Rolls {
		if i > 0 {
			b.WriteString(" ")
		}
		num := state.FormatNumber(roll.Number, target)
		if roll.IsMatch {
			b.WriteString(r.p.Colorf(Bold+BrightGreen, "[%s +%s]", num, r.Count(roll.Reward)))
		} else {
			b.WriteString(r.p.Colorf(White, "[%s]", num))
		}
	}
	if batch.Hits > 0 {
		hits := "hits"
		if batch.Hits == 1 {
			hits = "hit"
		}
		b.WriteString(r.p.Colorf(BrightGreen, "  %d %s +%s coins", batch.Hits, hits, r.Count(batch.TotalCoins)))
	}
	b.WriteString("\n")
	return b.String()
}

// Burst confirms a paid speed burst.
func (r *Renderer) Burst(receipt engine.BurstReceipt) string {
	var span time.Duration
	if n := len(receipt.Offsets); n > 0 {
		span = receipt.Offsets[n-1]
	}
	return r.p.Colorf(BrightYellow, "Speed burst! %d rolls over %s (-%s coins)",
		receipt.Rounds, span, r.Count(receipt.Cost)) + "\n"
}

// AutoToggled reports the auto-clicker switch position.
func (r *Renderer) AutoToggled(on bool, level int) string {
	if on {
		return r.p.Colorf(BrightGreen, "Auto-Clicker: ON (Lvl %d, %s)", level, AutoRateText(level)) + "\n"
	}
	return r.p.Colorf(Yellow, "Auto-Clicker: OFF (Lvl %d)", level) + "\n"
}

// AutoReport summarizes auto-clicker rounds since the last report.
func (r *Renderer) AutoReport(rounds int64, v engine.View) string {
	plural := "s"
	if rounds == 1 {
		plural = ""
	}
	return r.p.Colorf(Magenta, "[auto] %d round%s, %s coins", rounds, plural, r.Count(v.Coins)) + "\n"
}

// Purchased confirms an upgrade purchase.
func (r *Renderer) Purchased(track economy.Track, u economy.Upgrade, v engine.View) string {
	return r.p.Colorf(BrightGreen, "Bought %s level %d. Next level costs %s coins.",
		TrackTitle(track), u.Level, r.Count(u.Cost)) + "\n" +
		r.p.Colorize(Dim, "  "+trackEffect(track, v)) + "\n"
}

func trackEffect(track economy.Track, v engine.View) string {
	switch track {
	case economy.TrackInstanceCount:
		return fmt.Sprintf("Numbers per click: %d", v.Upgrades.InstanceCount.Level)
	case economy.TrackAutoClicker:
		return "Speed: " + AutoRateText(v.Upgrades.AutoClicker.Level)
	case economy.TrackCoinMultiplier:
		return "Multiplier: " + MultiplierText(v.Upgrades.CoinMultiplier.Level)
	case economy.TrackSpeedBurst:
		return fmt.Sprintf("Clicks: %d", v.BurstSize)
	}
	return ""
}

// Upgrades renders the shop.
func (r *Renderer) Upgrades(v engine.View) string {
	var b strings.Builder
	b.WriteString(r.p.Colorize(BrightYellow, "Upgrades Shop"))
	b.WriteString("\n")
	for _, track := range economy.Tracks {
		u, _ := v.Upgrades.Get(track)
		price := r.p.Colorf(Dim, "Buy - %s coins", r.Count(u.Cost))
		if v.CanAfford(track) {
			price = r.p.Colorf(BrightGreen, "Buy - %s coins", r.Count(u.Cost))
		}
		fmt.Fprintf(&b, "  %-16s Lvl %-4d %-24s %s\n", TrackTitle(track), u.Level, trackEffect(track, v), price)
	}
	if v.HasTarget() {
		fmt.Fprintf(&b, "  Speed burst trigger: %s coins for %d rolls\n", r.Count(v.BurstCost), v.BurstSize)
	}
	b.WriteString(r.p.Colorize(Dim, "  buy <multi|auto|multiplier|burst>"))
	b.WriteString("\n")
	return b.String()
}

// History renders up to n of the most recent batches, newest first; n <= 0
// renders all of them.
func (r *Renderer) History(v engine.View, n int) string {
	if len(v.History) == 0 {
		return r.p.Colorize(Dim, "No rolls yet. Start generating numbers!") + "\n"
	}
	batches := v.History
	if n > 0 && n < len(batches) {
		batches = batches[:n]
	}
	var b strings.Builder
	b.WriteString(r.p.Colorize(BrightYellow, "Recent Rolls"))
	b.WriteString("\n")
	for _, batch := range batches {
		b.WriteString("  ")
		b.WriteString(r.Batch(batch, v.Target))
	}
	return b.String()
}

// Stats renders the all-time statistics.
func (r *Renderer) Stats(v engine.View, now time.Time) string {
	s := v.Stats
	rows := []struct {
		label string
		value string
	}{
		{"Time Played", state.FormatTimePlayed(s.StartTime, now)},
		{"Total Clicks", r.Count(s.TotalClicks())},
		{"Manual Clicks", r.Count(s.ManualClicks)},
		{"Auto Clicks", r.Count(s.AutoClicks)},
		{"Total Numbers Generated", r.Count(s.TotalNumbersGenerated)},
		{"Total Hits", r.Count(s.TotalHits)},
		{"Hit Rate", decimal.NewFromFloat(v.HitRate).StringFixed(2) + "%"},
		{"Total Coins Earned", r.Count(s.TotalCoinsEarned)},
		{"Upgrades Purchased", r.Count(s.UpgradesPurchased)},
		{"Current Coins", r.Count(v.Coins)},
		{"Largest Reward", r.Count(v.LargestReward)},
		{"Best Hit Streak", r.Count(int64(v.BestHitStreak))},
	}
	var b strings.Builder
	b.WriteString(r.p.Colorize(BrightYellow, "All-Time Statistics"))
	b.WriteString("\n")
	for _, row := range rows {
		fmt.Fprintf(&b, "  %-24s %s\n", row.label+":", r.p.Colorize(BrightWhite, row.value))
	}
	return b.String()
}

// Status renders coins, target, controls, and play time.
func (r *Renderer) Status(v engine.View, now time.Time) string {
	var b strings.Builder
	b.WriteString(r.p.Colorf(Bold+BrightYellow, "%s coins", r.Count(v.Coins)))
	b.WriteString(r.p.Colorf(Dim, "  (played %s)", state.FormatTimePlayed(v.Stats.StartTime, now)))
	b.WriteString("\n")
	b.WriteString(r.Target(v))
	fmt.Fprintf(&b, "  Generate Numbers (%dx)\n", v.Upgrades.InstanceCount.Level)
	fmt.Fprintf(&b, "  Speed Burst (Lvl %d): %s coins\n", v.Upgrades.SpeedBurst.Level, r.Count(v.BurstCost))
	switch {
	case v.Upgrades.AutoClicker.Level == 0:
		b.WriteString(r.p.Colorize(Dim, "  Auto-Clicker: not purchased"))
	case v.AutoClicking:
		b.WriteString(r.p.Colorf(BrightGreen, "  Auto-Clicker: ON (Lvl %d, %s)", v.Upgrades.AutoClicker.Level, AutoRateText(v.Upgrades.AutoClicker.Level)))
	default:
		b.WriteString(r.p.Colorf(Yellow, "  Auto-Clicker: OFF (Lvl %d)", v.Upgrades.AutoClicker.Level))
	}
	b.WriteString("\n")
	return b.String()
}

// Help lists the registry's commands by category.
func (r *Renderer) Help(reg *Registry) string {
	var b strings.Builder
	groups, names := reg.CommandsByCategory()
	for _, name := range names {
		b.WriteString(r.p.Colorize(BrightYellow, strings.ToUpper(name[:1])+name[1:]))
		b.WriteString("\n")
		for _, cmd := range groups[name] {
			usage := cmd.Usage
			if len(cmd.Aliases) > 0 {
				usage += " (" + strings.Join(cmd.Aliases, ", ") + ")"
			}
			fmt.Fprintf(&b, "  %s  %s\n", r.p.Colorf(BrightCyan, "%-28s", usage), cmd.Help)
		}
	}
	return b.String()
}

// Error renders a rejected command.
func (r *Renderer) Error(err error) string {
	var msg string
	switch {
	case errors.Is(err, engine.ErrNoTarget):
		msg = "Set a target first: target <digits>"
	case errors.Is(err, economy.ErrInsufficientFunds):
		msg = "Not enough coins."
	case errors.Is(err, economy.ErrUnknownTrack):
		msg = "Unknown upgrade. Choose one of: multi, auto, multiplier, burst."
	case errors.Is(err, engine.ErrAutoClickerLocked):
		msg = "Buy the Auto-Clicker upgrade first: buy auto"
	case errors.Is(err, engine.ErrAutoClickerOff):
		msg = "The auto-clicker is off."
	default:
		msg = "Error: " + err.Error()
	}
	return r.p.Colorize(Red, msg) + "\n"
}

// NeedCoins explains an unaffordable purchase.
func (r *Renderer) NeedCoins(what string, cost, have int64) string {
	return r.p.Colorf(Red, "Not enough coins: %s costs %s, you have %s.", what, r.Count(cost), r.Count(have)) + "\n"
}
