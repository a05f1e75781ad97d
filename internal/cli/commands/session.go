package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/chzyer/readline"
	"golang.org/x/sync/errgroup"

	"github.com/duzhanyuan/mech/internal/batch"
	"github.com/duzhanyuan/mech/internal/cli/output"
	"github.com/duzhanyuan/mech/internal/core"
	"github.com/duzhanyuan/mech/internal/grammar"
	"github.com/duzhanyuan/mech/internal/render"
	"github.com/duzhanyuan/mech/internal/runloop"
)

// LineReader supplies REPL input one line at a time. Readline returns
// readline.ErrInterrupt for ^C and io.EOF at end of input.
type LineReader interface {
	Readline() (string, error)
	Close() error
}

// Session is one interactive conversation with a runtime core hosted on its
// own goroutine.
type Session struct {
	cc       *CommandContext
	parser   grammar.SourceParser
	compiler runloop.Compiler
	runner   *batch.Runner
	r        *output.Renderer
	logger   *slog.Logger
	newCore  runloop.Factory
	client   *runloop.Client
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithCoreFactory replaces the factory that builds the session's runtime
// core. The default is cc.NewCore.
func WithCoreFactory(f runloop.Factory) SessionOption {
	return func(s *Session) {
		if f != nil {
			s.newCore = f
		}
	}
}

// NewSession prepares a session for cc. Nothing runs until Run.
func NewSession(cc *CommandContext, opts ...SessionOption) *Session {
	compiler := core.NewCompiler()
	s := &Session{
		cc:       cc,
		parser:   compiler,
		compiler: compiler,
		runner:   cc.NewRunner(),
		r:        cc.Renderer,
		logger:   cc.Logger,
		newCore:  cc.NewCore,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run starts the run loop, preloads paths, then reads lines from in until
// the user quits or input ends. The error is non-nil only for fatal
// failures such as the runtime becoming unavailable; it then carries both
// the run loop's failure and the one seen by the interactive side.
func (s *Session) Run(ctx context.Context, in LineReader, paths []string) error {
	client, loop := runloop.New(s.newCore, s.compiler, runloop.WithLogger(s.logger))
	s.client = client

	var loopErr, sessionErr error
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		loopErr = loop.Run(gctx)
		return loopErr
	})
	g.Go(func() error {
		defer client.Close()
		if sessionErr = s.preload(gctx, paths); sessionErr != nil {
			return sessionErr
		}
		sessionErr = s.interact(in)
		return sessionErr
	})

	s.logger.Debug("session started")
	_ = g.Wait()
	err := errors.Join(sessionErr, loopErr)
	s.logger.Debug("session ended", slog.Any("error", err))
	return err
}

func (s *Session) preload(ctx context.Context, paths []string) error {
	if len(paths) == 0 {
		return nil
	}
	sources, err := batch.LoadSources(paths)
	if err != nil {
		s.r.Error(err)
		return nil
	}
	for _, path := range sources {
		src, err := s.runner.ReadSource(ctx, path)
		if err != nil {
			s.r.Error(err)
			continue
		}
		resp, err := s.client.Exchange(runloop.Request{Kind: runloop.RequestCode, Source: src})
		if err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		if resp.Err != nil {
			s.r.Error(fmt.Errorf("%s: %w", path, resp.Err))
		}
		s.r.Muted(fmt.Sprintf("Loaded %s (%d blocks).", path, resp.Count))
	}
	return nil
}

func (s *Session) interact(in LineReader) error {
	for {
		line, err := in.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}

		quit, err := s.Execute(line)
		if err != nil {
			return err
		}
		if quit {
			return nil
		}
	}
}

// Execute handles one line of input. quit reports that the session should
// end; a non-nil error is fatal.
func (s *Session) Execute(line string) (quit bool, err error) {
	cmd, err := grammar.Parse(line, s.parser)
	if err != nil {
		s.r.Error(err)
		return false, nil
	}

	switch cmd.Kind {
	case grammar.Empty:
		return false, nil
	case grammar.Help:
		printHelp(s.r)
		return false, nil
	case grammar.Quit:
		return true, nil
	}

	req, _ := cmd.Request()
	resp, err := s.client.Exchange(req)
	if err != nil {
		return true, fmt.Errorf("%s: %w", cmd.Kind, err)
	}
	s.logger.Debug("response", slog.String("kind", resp.Kind.String()))

	switch cmd.Kind {
	case grammar.Code:
		s.r.Printf("Compiled %d blocks.\n", resp.Count)
		if resp.Err != nil {
			s.r.Error(resp.Err)
		}
		if cmd.Anonymous && resp.Err == nil {
			return s.show(core.HashName(grammar.AnonymousTable), grammar.AnonymousTable)
		}
	case grammar.Table:
		s.printTable(resp.Table, cmd.Name)
	case grammar.PrintCore, grammar.PrintRuntime:
		s.r.Println(strings.TrimRight(resp.Text, "\n"))
	case grammar.Pause:
		s.r.Muted("Paused.")
	case grammar.Resume:
		if resp.Err != nil {
			s.r.Error(resp.Err)
		}
		s.r.Muted("Resumed.")
	case grammar.Clear:
		s.r.Muted("Cleared.")
	case grammar.Stop:
		s.r.Muted("Runtime stopped.")
		return true, nil
	}
	return false, nil
}

// show fetches and prints one table.
func (s *Session) show(id core.TableID, name string) (bool, error) {
	resp, err := s.client.Exchange(runloop.Request{Kind: runloop.RequestTable, Table: id})
	if err != nil {
		return true, fmt.Errorf("table %s: %w", name, err)
	}
	s.printTable(resp.Table, name)
	return false, nil
}

func (s *Session) printTable(t *core.Table, name string) {
	if t == nil {
		s.r.Printf("No table named %q.\n", name)
		return
	}
	_ = render.Fprint(s.r.Writer(), t)
}

func printHelp(r *output.Renderer) {
	r.Println(r.Styles().Bold.Render("Available commands:"))
	for _, k := range grammar.Keywords {
		usage, help := k.Usage()
		r.Printf("  %-18s %s\n", usage, help)
	}
	r.Println()
	r.Muted("Any other input is compiled as source. A bare expression is stored in the table \"" + grammar.AnonymousTable + "\".")
}
