package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/rngsim/internal/game/economy"
	"github.com/cory-johannsen/rngsim/internal/game/engine"
	"github.com/cory-johannsen/rngsim/internal/game/round"
	"github.com/cory-johannsen/rngsim/internal/game/scheduler"
)

// Game is the set of engine transitions and reads the console drives.
type Game interface {
	SetTarget(ctx context.Context, raw string) string
	ManualRoll(ctx context.Context) (round.RollBatch, error)
	SpeedBurst(ctx context.Context) (engine.BurstReceipt, error)
	PurchaseUpgrade(ctx context.Context, track economy.Track) (economy.Upgrade, error)
	ToggleAutoClicker(ctx context.Context) (bool, error)
	View() engine.View
}

// Options configures a Console.
type Options struct {
	// Color enables ANSI styling.
	Color bool
	// Clock supplies play time and drives auto-clicker reports. When nil,
	// time.Now is used and no reports are printed.
	Clock *scheduler.DisplayClock
}

// HandlerFunc runs one parsed command against the console and reports whether
// the session should end.
type HandlerFunc func(c *Console, ctx context.Context, parsed ParseResult) (quit bool)

// Handlers returns the map from Handler constant to handler function.
// Exported so tests can verify every built-in command is wired.
func Handlers() map[string]HandlerFunc {
	return handlerMap
}

var handlerMap = map[string]HandlerFunc{
	HandlerTarget:   handleTarget,
	HandlerRoll:     handleRoll,
	HandlerBurst:    handleBurst,
	HandlerBuy:      handleBuy,
	HandlerAuto:     handleAuto,
	HandlerUpgrades: handleUpgrades,
	HandlerHistory:  handleHistory,
	HandlerStats:    handleStats,
	HandlerStatus:   handleStatus,
	HandlerHelp:     handleHelp,
	HandlerQuit:     handleQuit,
}

// Console reads commands from in and writes responses to out.
type Console struct {
	logger   *zap.Logger
	game     Game
	registry *Registry
	render   *Renderer
	clock    *scheduler.DisplayClock
	in       io.Reader

	outMu sync.Mutex
	out   io.Writer

	stop     chan struct{}
	stopOnce sync.Once

	// reportedAuto is only touched by the Run goroutine.
	reportedAuto int64
}

// New returns a Console over in and out.
//
// Precondition: logger, game, in and out must be non-nil.
func New(logger *zap.Logger, game Game, in io.Reader, out io.Writer, opts Options) *Console {
	return &Console{
		logger:   logger,
		game:     game,
		registry: DefaultRegistry(),
		render:   NewRenderer(NewPalette(opts.Color)),
		clock:    opts.Clock,
		in:       in,
		out:      out,
		stop:     make(chan struct{}),
	}
}

// Start runs the console until quit, end of input, or Stop.
func (c *Console) Start() error {
	return c.Run(context.Background())
}

// Stop makes a running Run return. It is safe to call more than once.
func (c *Console) Stop() {
	c.stopOnce.Do(func() { close(c.stop) })
}

// Run greets the player, then executes one command per input line.
//
// Postcondition: returns nil on quit, end of input, ctx cancellation or
// Stop; returns the read error if input fails.
func (c *Console) Run(ctx context.Context) error {
	lines := make(chan string)
	readErr := make(chan error, 1)
	done := make(chan struct{})
	defer close(done)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(c.in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-done:
				return
			}
		}
		readErr <- sc.Err()
	}()

	var ticks chan time.Time
	if c.clock != nil {
		ticks = make(chan time.Time, 1)
		c.clock.Subscribe(ticks)
		defer c.clock.Unsubscribe(ticks)
	}

	v := c.game.View()
	c.reportedAuto = v.Stats.AutoClicks
	c.write(c.render.Banner() + c.render.Status(v, c.now()))
	c.write(c.render.Prompt(v))

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-c.stop:
			return nil
		case <-ticks:
			if c.reportAuto() {
				c.write(c.render.Prompt(c.game.View()))
			}
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-readErr:
					if err != nil {
						return fmt.Errorf("reading input: %w", err)
					}
				default:
				}
				c.write("\n")
				return nil
			}
			if c.Execute(ctx, line) {
				return nil
			}
			c.write(c.render.Prompt(c.game.View()))
		}
	}
}

// Execute runs one command line.
//
// Postcondition: returns true when the player asked to quit.
func (c *Console) Execute(ctx context.Context, line string) bool {
	parsed := Parse(line)
	if parsed.Command == "" {
		return false
	}
	cmd, ok := c.registry.Resolve(parsed.Command)
	if !ok {
		c.write(c.render.p.Colorf(Red, "Unknown command %q. Type help for a list.", parsed.Command) + "\n")
		return false
	}
	handler, ok := handlerMap[cmd.Handler]
	if !ok {
		c.logger.Error("command has no handler", zap.String("command", cmd.Name))
		return false
	}
	c.logger.Debug("command", zap.String("command", cmd.Name), zap.Strings("args", parsed.Args))
	return handler(c, ctx, parsed)
}

func (c *Console) write(s string) {
	c.outMu.Lock()
	defer c.outMu.Unlock()
	if _, err := io.WriteString(c.out, s); err != nil {
		c.logger.Debug("console write failed", zap.Error(err))
	}
}

func (c *Console) now() time.Time {
	if c.clock != nil {
		return c.clock.Now()
	}
	return time.Now()
}

// reportAuto prints a summary when auto-clicker rounds ran since the last
// report and returns whether it printed.
func (c *Console) reportAuto() bool {
	v := c.game.View()
	delta := v.Stats.AutoClicks - c.reportedAuto
	c.reportedAuto = v.Stats.AutoClicks
	if delta <= 0 {
		return false
	}
	c.write("\n" + c.render.AutoReport(delta, v))
	return true
}

func handleTarget(c *Console, ctx context.Context, parsed ParseResult) bool {
	if parsed.RawArgs == "" {
		c.write(c.render.Target(c.game.View()))
		return false
	}
	if c.game.SetTarget(ctx, parsed.RawArgs) == "" {
		c.write(c.render.p.Colorize(Yellow, "Target cleared.") + "\n")
		return false
	}
	c.write(c.render.Target(c.game.View()))
	return false
}

func handleRoll(c *Console, ctx context.Context, _ ParseResult) bool {
	batch, err := c.game.ManualRoll(ctx)
	if err != nil {
		c.write(c.render.Error(err))
		return false
	}
	c.write(c.render.Batch(batch, c.game.View().Target))
	return false
}

func handleBurst(c *Console, ctx context.Context, _ ParseResult) bool {
	before := c.game.View()
	receipt, err := c.game.SpeedBurst(ctx)
	switch {
	case errors.Is(err, economy.ErrInsufficientFunds):
		c.write(c.render.NeedCoins("a speed burst", before.BurstCost, before.Coins))
	case err != nil:
		c.write(c.render.Error(err))
	default:
		c.write(c.render.Burst(receipt))
	}
	return false
}

func handleBuy(c *Console, ctx context.Context, parsed ParseResult) bool {
	if parsed.RawArgs == "" {
		c.write(c.render.Upgrades(c.game.View()))
		return false
	}
	track, err := economy.ParseTrack(parsed.RawArgs)
	if err != nil {
		c.write(c.render.Error(err))
		return false
	}
	before := c.game.View()
	u, err := c.game.PurchaseUpgrade(ctx, track)
	switch {
	case errors.Is(err, economy.ErrInsufficientFunds):
		cur, _ := before.Upgrades.Get(track)
		c.write(c.render.NeedCoins(TrackTitle(track), cur.Cost, before.Coins))
	case err != nil:
		c.write(c.render.Error(err))
	default:
		c.write(c.render.Purchased(track, u, c.game.View()))
	}
	return false
}

func handleAuto(c *Console, ctx context.Context, _ ParseResult) bool {
	on, err := c.game.ToggleAutoClicker(ctx)
	if err != nil {
		c.write(c.render.Error(err))
		return false
	}
	v := c.game.View()
	c.reportedAuto = v.Stats.AutoClicks
	c.write(c.render.AutoToggled(on, v.Upgrades.AutoClicker.Level))
	return false
}

func handleUpgrades(c *Console, _ context.Context, _ ParseResult) bool {
	c.write(c.render.Upgrades(c.game.View()))
	return false
}

func handleHistory(c *Console, _ context.Context, parsed ParseResult) bool {
	n := 0
	if len(parsed.Args) > 0 {
		v, err := strconv.Atoi(parsed.Args[0])
		if err != nil || v < 1 {
			c.write(c.render.p.Colorize(Red, "Usage: history [n], n a positive number") + "\n")
			return false
		}
		n = v
	}
	c.write(c.render.History(c.game.View(), n))
	return false
}

func handleStats(c *Console, _ context.Context, _ ParseResult) bool {
	c.write(c.render.Stats(c.game.View(), c.now()))
	return false
}

func handleStatus(c *Console, _ context.Context, _ ParseResult) bool {
	c.write(c.render.Status(c.game.View(), c.now()))
	return false
}

func handleHelp(c *Console, _ context.Context, _ ParseResult) bool {
	c.write(c.render.Help(c.registry))
	return false
}

func handleQuit(c *Console, _ context.Context, _ ParseResult) bool {
	c.write(c.render.p.Colorize(BrightYellow, "Progress saved. Goodbye!") + "\n")
	return true
}
