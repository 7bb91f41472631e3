package console

import "fmt"

// ANSI escape code constants for terminal styling.
const (
	Reset = "\033[0m"
	Bold  = "\033[1m"
	Dim   = "\033[2m"

	Red     = "\033[31m"
	Green   = "\033[32m"
	Yellow  = "\033[33m"
	Magenta = "\033[35m"
	Cyan    = "\033[36m"
	White   = "\033[37m"

	BrightGreen  = "\033[92m"
	BrightYellow = "\033[93m"
	BrightCyan   = "\033[96m"
	BrightWhite  = "\033[97m"
)

// Palette applies ANSI styling when enabled and passes text through otherwise.
type Palette struct {
	enabled bool
}

// NewPalette returns a Palette; color=false renders plain text.
func NewPalette(color bool) Palette {
	return Palette{enabled: color}
}

// Colorize wraps text with the given ANSI color code and a reset suffix.
//
// Precondition: color must be a valid ANSI escape sequence.
// Postcondition: Returns text unchanged when the palette is disabled.
func (p Palette) Colorize(color, text string) string {
	if !p.enabled {
		return text
	}
	return color + text + Reset
}

// Colorf wraps a formatted string with the given ANSI color code.
func (p Palette) Colorf(color, format string, args ...any) string {
	return p.Colorize(color, fmt.Sprintf(format, args...))
}

// StripANSI removes all ANSI escape sequences from a string.
//
// Postcondition: Returns text with all \033[...m sequences removed.
func StripANSI(s string) string {
	result := make([]byte, 0, len(s))
	i := 0
	for i < len(s) {
		if s[i] == '\033' && i+1 < len(s) && s[i+1] == '[' {
			j := i + 2
			for j < len(s) && s[j] != 'm' {
				j++
			}
			if j < len(s) {
				i = j + 1
				continue
			}
		}
		result = append(result, s[i])
		i++
	}
	return string(result)
}
