package grammar

import (
	"fmt"
	"strings"

	"github.com/duzhanyuan/mech/internal/core"
)

// Prefix marks a built-in command.
const Prefix = ":"

// AnonymousTable is the table written by the anonymous-assignment fallback.
const AnonymousTable = "ans"

// SourceParser reports whether the engine's parser consumes src in full.
type SourceParser interface {
	Consumes(src string) error
}

// UnknownCommandError is returned for a ':' line that matches no keyword.
type UnknownCommandError struct {
	Input string
}

func (e *UnknownCommandError) Error() string {
	return fmt.Sprintf("unknown command %q (type %shelp for commands)", e.Input, Prefix)
}

// SyntaxError is returned when no source attempt consumes the line.
type SyntaxError struct {
	Line string
	Err  error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error: %v", e.Err)
}

func (e *SyntaxError) Unwrap() error { return e.Err }

// Keyword is one entry of the built-in command table.
type Keyword struct {
	names []string
	// arg reports whether the keyword takes exactly one argument.
	arg  bool
	kind Kind
	help string
}

// Keywords is the ordered built-in command table. The first match wins.
var Keywords = []Keyword{
	{names: []string{"quit", "exit"}, kind: Quit, help: "Exit the REPL"},
	{names: []string{"help"}, kind: Help, help: "Show this help message"},
	{names: []string{"pause"}, kind: Pause, help: "Stop stepping the core after new code"},
	{names: []string{"resume"}, kind: Resume, help: "Resume stepping and catch up"},
	{names: []string{"stop"}, kind: Stop, help: "Shut the runtime down"},
	{names: []string{"core"}, kind: PrintCore, help: "Print a summary of the core"},
	{names: []string{"runtime"}, kind: PrintRuntime, help: "Print registered blocks and history"},
	{names: []string{"clear"}, kind: Clear, help: "Replace the core with an empty one"},
	{names: []string{"table"}, arg: true, kind: Table, help: "Show the table with the given name"},
}

// Usage returns the display form and help text of a keyword.
func (k Keyword) Usage() (string, string) {
	usage := Prefix + strings.Join(k.names, " / "+Prefix)
	if k.arg {
		usage += " <name>"
	}
	return usage, k.help
}

// Names returns every spelling of every keyword with its prefix.
func Names() []string {
	var out []string
	for _, k := range Keywords {
		for _, n := range k.names {
			out = append(out, Prefix+n)
		}
	}
	return out
}

// Attempt produces a candidate source text from a line.
type Attempt struct {
	Name      string
	Anonymous bool
	Wrap      func(line string) string
}

// Attempts is the ordered strategy chain tried for non-command input.
var Attempts = []Attempt{
	{Name: "verbatim", Wrap: func(line string) string { return line }},
	{Name: "anonymous", Anonymous: true, Wrap: func(line string) string { return AnonymousTable + " = " + line }},
}

// Parse turns a line into a Command.
func Parse(line string, src SourceParser) (Command, error) {
	line = strings.TrimSpace(line)
	if rest, ok := strings.CutPrefix(line, Prefix); ok {
		return parseKeyword(strings.TrimSpace(rest))
	}
	if line == "" {
		return Command{Kind: Empty}, nil
	}
	return parseSource(line, src)
}

func parseKeyword(rest string) (Command, error) {
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return Command{}, &UnknownCommandError{Input: Prefix + rest}
	}
	for _, k := range Keywords {
		if !matches(k, fields[0]) {
			continue
		}
		if !k.arg {
			if len(fields) != 1 {
				continue
			}
			return Command{Kind: k.kind}, nil
		}
		if len(fields) != 2 {
			continue
		}
		name := strings.TrimPrefix(fields[1], "#")
		return Command{Kind: k.kind, Table: core.HashName(name), Name: name}, nil
	}
	return Command{}, &UnknownCommandError{Input: Prefix + rest}
}

func matches(k Keyword, word string) bool {
	for _, n := range k.names {
		if n == word {
			return true
		}
	}
	return false
}

func parseSource(line string, src SourceParser) (Command, error) {
	var first error
	for _, a := range Attempts {
		text := a.Wrap(line)
		err := src.Consumes(text)
		if err == nil {
			return Command{Kind: Code, Source: text, Anonymous: a.Anonymous}, nil
		}
		if first == nil {
			first = err
		}
	}
	return Command{}, &SyntaxError{Line: line, Err: first}
}
