// Package batch drives the runtime core synchronously over files: run mode
// prints each program's output table, test mode tallies the assertions in
// each program's test table.
package batch

import (
	"io"
	"log/slog"
	"os"

	"github.com/duzhanyuan/mech/internal/runloop"
)

// Extension is the file extension of program sources.
const Extension = ".mec"

// Runner executes program sources against fresh cores.
type Runner struct {
	newCore  runloop.Factory
	compiler runloop.Compiler
	fetcher  Fetcher
	out      io.Writer
	errOut   io.Writer
	logger   *slog.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithOutput sets the writers for program output and error lines.
func WithOutput(out, errOut io.Writer) Option {
	return func(r *Runner) {
		r.out = out
		r.errOut = errOut
	}
}

// WithFetcher replaces the fetcher used for https sources.
func WithFetcher(f Fetcher) Option {
	return func(r *Runner) {
		if f != nil {
			r.fetcher = f
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// New creates a Runner. Every source runs on its own core from newCore.
func New(newCore runloop.Factory, compiler runloop.Compiler, opts ...Option) *Runner {
	r := &Runner{
		newCore:  newCore,
		compiler: compiler,
		fetcher:  NewHTTPFetcher(nil),
		out:      os.Stdout,
		errOut:   os.Stderr,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// execute compiles src on a fresh core and steps it once. The core is
// returned even when compiling or stepping failed, so callers can still
// read whatever tables were produced.
func (r *Runner) execute(name, src string) (runloop.Core, error) {
	c := r.newCore()
	blocks, err := r.compiler.Compile(src)
	if err != nil {
		return c, err
	}
	c.Register(blocks)
	r.logger.Debug("registered blocks", slog.String("source", name), slog.Int("blocks", len(blocks)))
	return c, c.Step()
}
