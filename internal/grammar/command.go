// Package grammar turns one line of REPL input into a Command.
//
// Lines starting with ':' are built-in commands. Any other non-empty line is
// engine source, accepted verbatim or as an anonymous assignment.
package grammar

import (
	"github.com/duzhanyuan/mech/internal/core"
	"github.com/duzhanyuan/mech/internal/runloop"
)

// Kind identifies a Command.
type Kind int

// Command kinds.
const (
	Empty Kind = iota
	Help
	Quit
	Pause
	Resume
	Stop
	PrintCore
	PrintRuntime
	Clear
	Table
	Code
)

var kindNames = map[Kind]string{
	Empty:        "empty",
	Help:         "help",
	Quit:         "quit",
	Pause:        "pause",
	Resume:       "resume",
	Stop:         "stop",
	PrintCore:    "core",
	PrintRuntime: "runtime",
	Clear:        "clear",
	Table:        "table",
	Code:         "code",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Command is the parsed form of one input line.
type Command struct {
	Kind Kind
	// Table and Name are set for Table commands.
	Table core.TableID
	Name  string
	// Source is set for Code commands. It is the text that compiled, which
	// for the anonymous-assignment fallback includes the synthetic prefix.
	Source string
	// Anonymous reports that Source is the anonymous-assignment fallback.
	Anonymous bool
}

// Request maps the command onto the runtime protocol. ok is false for
// commands handled locally (Help, Quit, Empty).
func (c Command) Request() (req runloop.Request, ok bool) {
	switch c.Kind {
	case Pause:
		return runloop.Request{Kind: runloop.RequestPause}, true
	case Resume:
		return runloop.Request{Kind: runloop.RequestResume}, true
	case Stop:
		return runloop.Request{Kind: runloop.RequestStop}, true
	case PrintCore:
		return runloop.Request{Kind: runloop.RequestPrintCore}, true
	case PrintRuntime:
		return runloop.Request{Kind: runloop.RequestPrintRuntime}, true
	case Clear:
		return runloop.Request{Kind: runloop.RequestClear}, true
	case Table:
		return runloop.Request{Kind: runloop.RequestTable, Table: c.Table}, true
	case Code:
		return runloop.Request{Kind: runloop.RequestCode, Source: c.Source}, true
	default:
		return runloop.Request{}, false
	}
}
