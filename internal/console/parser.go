package console

import "strings"

// ParseResult holds the parsed command name and arguments from a text line.
type ParseResult struct {
	// Command is the first word of the input, lowercased.
	Command string
	// Args are the remaining words after the command.
	Args []string
	// RawArgs is the raw text after the command.
	RawArgs string
}

// Parse splits a text line into a command and arguments.
//
// Postcondition: Returns a ParseResult. If line is blank, Command is empty.
func Parse(line string) ParseResult {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return ParseResult{}
	}
	line = strings.TrimSpace(line)
	rest := strings.TrimSpace(line[len(fields[0]):])

	var args []string
	if len(fields) > 1 {
		args = fields[1:]
	}
	return ParseResult{
		Command: strings.ToLower(fields[0]),
		Args:    args,
		RawArgs: rest,
	}
}
