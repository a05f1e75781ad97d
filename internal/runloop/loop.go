package runloop

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/duzhanyuan/mech/internal/core"
)

// Core is the capability the run loop needs from a runtime core.
type Core interface {
	Register(blocks []core.Block)
	Step() error
	Table(id core.TableID) (*core.Table, bool)
}

// Describer is implemented by cores that can list their runtime state.
type Describer interface {
	Describe() string
}

// Compiler turns source text into blocks.
type Compiler interface {
	Compile(src string) ([]core.Block, error)
}

// Factory constructs a fresh, unshared core.
type Factory func() Core

// Option configures a Loop.
type Option func(*Loop)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loop) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// Loop owns a runtime core and serves requests for it.
type Loop struct {
	requests  <-chan Request
	responses chan<- Response
	done      chan struct{}

	newCore  Factory
	compiler Compiler
	logger   *slog.Logger

	core   Core
	paused bool
}

// New creates a connected client and run loop. The caller must start
// Loop.Run on its own goroutine.
func New(newCore Factory, compiler Compiler, opts ...Option) (*Client, *Loop) {
	requests := make(chan Request)
	responses := make(chan Response)
	done := make(chan struct{})

	l := &Loop{
		requests:  requests,
		responses: responses,
		done:      done,
		newCore:   newCore,
		compiler:  compiler,
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(l)
	}
	c := &Client{
		requests:  requests,
		responses: responses,
		done:      done,
	}
	return c, l
}

// Run serves requests until the client closes, a Stop request arrives, or
// ctx is cancelled. It returns an error only if the core panicked or ctx
// ended the loop. The response channel is closed on return.
func (l *Loop) Run(ctx context.Context) error {
	defer close(l.done)
	defer close(l.responses)

	l.core = l.newCore()
	l.logger.Debug("run loop started")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case req, ok := <-l.requests:
			if !ok {
				l.logger.Debug("run loop finished")
				return nil
			}
			resp, err := l.serve(req)
			if err != nil {
				l.logger.Error("runtime terminated", slog.Any("error", err))
				return err
			}
			select {
			case l.responses <- resp:
			case <-ctx.Done():
				return ctx.Err()
			}
			if req.Kind == RequestStop {
				l.logger.Debug("run loop stopped")
				return nil
			}
		}
	}
}

// serve handles one request. A panic inside the core ends the loop.
func (l *Loop) serve(req Request) (resp Response, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("runtime panic handling %s request: %v", req.Kind, r)
		}
	}()
	l.logger.Debug("request", slog.String("kind", req.Kind.String()))
	return l.handle(req), nil
}

func (l *Loop) handle(req Request) Response {
	switch req.Kind {
	case RequestCode:
		blocks, err := l.compiler.Compile(req.Source)
		if err != nil {
			return Response{Kind: ResponseNewBlocksCompiled, Err: err}
		}
		l.core.Register(blocks)
		resp := Response{Kind: ResponseNewBlocksCompiled, Count: len(blocks)}
		if !l.paused {
			resp.Err = l.core.Step()
		}
		return resp

	case RequestTable:
		t, ok := l.core.Table(req.Table)
		if !ok {
			return Response{Kind: ResponseTable}
		}
		return Response{Kind: ResponseTable, Table: t}

	case RequestClear:
		l.core = l.newCore()
		l.paused = false
		return Response{Kind: ResponseClear}

	case RequestPause:
		l.paused = true
		return Response{Kind: ResponsePause}

	case RequestResume:
		l.paused = false
		return Response{Kind: ResponseResume, Err: l.core.Step()}

	case RequestPrintCore:
		return Response{Kind: ResponseText, Text: fmt.Sprint(l.core)}

	case RequestPrintRuntime:
		if d, ok := l.core.(Describer); ok {
			return Response{Kind: ResponseText, Text: d.Describe()}
		}
		return Response{Kind: ResponseText, Text: fmt.Sprintf("%+v", l.core)}

	case RequestStop:
		return Response{Kind: ResponseStopped}

	default:
		return Response{Kind: ResponseText, Err: fmt.Errorf("unsupported request %s", req.Kind)}
	}
}
