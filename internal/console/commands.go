// Package console is the line-oriented player shell: it parses commands,
// issues engine transitions, and renders the game as ANSI text.
package console

// Categories for organizing commands.
const (
	CategoryPlay   = "play"
	CategoryShop   = "shop"
	CategoryInfo   = "info"
	CategorySystem = "system"
)

// Handler identifiers mapping commands to console handlers.
const (
	HandlerTarget   = "target"
	HandlerRoll     = "roll"
	HandlerBurst    = "burst"
	HandlerBuy      = "buy"
	HandlerAuto     = "auto"
	HandlerUpgrades = "upgrades"
	HandlerHistory  = "history"
	HandlerStats    = "stats"
	HandlerStatus   = "status"
	HandlerHelp     = "help"
	HandlerQuit     = "quit"
)

// Command defines a player-invocable command.
type Command struct {
	// Name is the canonical command name.
	Name string
	// Aliases are alternate names for this command.
	Aliases []string
	// Usage shows the argument shape, e.g. "target <digits>".
	Usage string
	// Help is the short help text displayed to players.
	Help string
	// Category groups the command in help output.
	Category string
	// Handler maps to a console handler.
	Handler string
}

// BuiltinCommands returns all built-in commands.
func BuiltinCommands() []Command {
	return []Command{
		{Name: "target", Aliases: []string{"t"}, Usage: "target <digits>", Help: "Set the number to match; an argument without digits clears it", Category: CategoryPlay, Handler: HandlerTarget},
		{Name: "roll", Aliases: []string{"r", "click"}, Usage: "roll", Help: "Generate one number per instance", Category: CategoryPlay, Handler: HandlerRoll},
		{Name: "burst", Aliases: []string{"b"}, Usage: "burst", Help: "Pay for a speed burst of rapid rolls", Category: CategoryPlay, Handler: HandlerBurst},
		{Name: "auto", Aliases: []string{"a"}, Usage: "auto", Help: "Switch the auto-clicker on or off", Category: CategoryPlay, Handler: HandlerAuto},
		{Name: "buy", Usage: "buy <upgrade>", Help: "Buy the next level of an upgrade (multi, auto, multiplier, burst)", Category: CategoryShop, Handler: HandlerBuy},
		{Name: "upgrades", Aliases: []string{"u", "shop"}, Usage: "upgrades", Help: "Show the upgrades shop", Category: CategoryShop, Handler: HandlerUpgrades},
		{Name: "history", Aliases: []string{"h"}, Usage: "history [n]", Help: "Show the most recent rolls", Category: CategoryInfo, Handler: HandlerHistory},
		{Name: "stats", Aliases: []string{"s"}, Usage: "stats", Help: "Show all-time statistics", Category: CategoryInfo, Handler: HandlerStats},
		{Name: "status", Aliases: []string{"st"}, Usage: "status", Help: "Show coins, target and odds", Category: CategoryInfo, Handler: HandlerStatus},
		{Name: "help", Aliases: []string{"?"}, Usage: "help", Help: "List commands", Category: CategorySystem, Handler: HandlerHelp},
		{Name: "quit", Aliases: []string{"exit", "q"}, Usage: "quit", Help: "Save and leave the game", Category: CategorySystem, Handler: HandlerQuit},
	}
}
