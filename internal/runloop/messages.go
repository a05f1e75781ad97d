// Package runloop hosts a runtime core on its own goroutine and exchanges
// requests and responses with it in lockstep.
package runloop

import (
	"fmt"

	"github.com/duzhanyuan/mech/internal/core"
)

// RequestKind identifies a Request.
type RequestKind int

// Request kinds.
const (
	RequestTable RequestKind = iota + 1
	RequestClear
	RequestPrintCore
	RequestPrintRuntime
	RequestPause
	RequestResume
	RequestCode
	RequestStop
)

func (k RequestKind) String() string {
	switch k {
	case RequestTable:
		return "table"
	case RequestClear:
		return "clear"
	case RequestPrintCore:
		return "core"
	case RequestPrintRuntime:
		return "runtime"
	case RequestPause:
		return "pause"
	case RequestResume:
		return "resume"
	case RequestCode:
		return "code"
	case RequestStop:
		return "stop"
	default:
		return fmt.Sprintf("request(%d)", int(k))
	}
}

// Request is sent from the client to the run loop.
type Request struct {
	Kind   RequestKind
	Table  core.TableID
	Source string
}

// ResponseKind identifies a Response.
type ResponseKind int

// Response kinds.
const (
	ResponseTable ResponseKind = iota + 1
	ResponsePause
	ResponseResume
	ResponseClear
	ResponseNewBlocksCompiled
	ResponseText
	ResponseStopped
)

func (k ResponseKind) String() string {
	switch k {
	case ResponseTable:
		return "table"
	case ResponsePause:
		return "pause"
	case ResponseResume:
		return "resume"
	case ResponseClear:
		return "clear"
	case ResponseNewBlocksCompiled:
		return "new-blocks-compiled"
	case ResponseText:
		return "text"
	case ResponseStopped:
		return "stopped"
	default:
		return fmt.Sprintf("response(%d)", int(k))
	}
}

// Response is the run loop's answer to exactly one Request.
type Response struct {
	Kind ResponseKind
	// Table is the snapshot for ResponseTable; nil when no such table exists.
	Table *core.Table
	// Count is the number of blocks compiled for ResponseNewBlocksCompiled.
	Count int
	// Text carries PrintCore and PrintRuntime output.
	Text string
	// Err reports a compile or step failure. The core remains usable.
	Err error
}
