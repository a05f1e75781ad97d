// Package core provides the data model shared by the client packages and a
// reference runtime core.
//
// The reference core evaluates blocks written in the Starlark dialect. Every
// global a block assigns is published as a table named after the global.
// Stepping the core runs newly registered blocks and then, reactively, every
// block that reads a table changed during the step.
package core

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"go.starlark.net/starlark"
)

// Default construction parameters.
const (
	DefaultCapacity     = 100000
	DefaultHistoryDepth = 100
)

// Option configures a Core.
type Option func(*Core)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Core) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Transaction records the tables changed by one step.
type Transaction struct {
	Step    int
	Changed []string
	Runs    int
}

type registered struct {
	block  Block
	inputs map[string]struct{}
	err    error
}

func (r *registered) writes(name string) bool {
	for _, out := range r.block.Outputs {
		if out == name {
			return true
		}
	}
	return false
}

// Core is the reference runtime core. It is not safe for concurrent use;
// the run loop owns it exclusively.
type Core struct {
	capacity     int
	historyDepth int
	logger       *slog.Logger

	blocks  []*registered
	byID    map[uint64]*registered
	pending []*registered

	globals starlark.StringDict
	tables  map[TableID]*Table
	steps   int
	history []Transaction
}

// NewCore creates an empty core. capacity bounds the block executions of a
// single step; historyDepth bounds the retained transaction history.
func NewCore(capacity, historyDepth int, opts ...Option) *Core {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if historyDepth < 0 {
		historyDepth = 0
	}
	c := &Core{
		capacity:     capacity,
		historyDepth: historyDepth,
		logger:       slog.New(slog.DiscardHandler),
		byID:         make(map[uint64]*registered),
		globals:      make(starlark.StringDict),
		tables:       make(map[TableID]*Table),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Register adds blocks to the core. They run on the next Step. A block
// whose ID is already registered is scheduled again instead of duplicated.
func (c *Core) Register(blocks []Block) {
	for _, b := range blocks {
		if r, ok := c.byID[b.ID]; ok {
			c.pending = append(c.pending, r)
			continue
		}
		r := &registered{block: b, inputs: make(map[string]struct{}, len(b.Inputs))}
		for _, name := range b.Inputs {
			r.inputs[name] = struct{}{}
		}
		c.blocks = append(c.blocks, r)
		c.byID[b.ID] = r
		c.pending = append(c.pending, r)
	}
}

// Step runs pending blocks, then every block reading a changed table, until
// no block is left to run or the capacity is exhausted. Errors from
// individual blocks are joined; the remaining blocks still run.
func (c *Core) Step() error {
	c.steps++
	queue := c.pending
	c.pending = nil

	changedInStep := make(map[string]struct{})
	var errs []error
	runs := 0
	for len(queue) > 0 {
		if runs >= c.capacity {
			errs = append(errs, fmt.Errorf("step %d: capacity of %d block runs exhausted", c.steps, c.capacity))
			break
		}
		r := queue[0]
		queue = queue[1:]
		runs++

		changed, err := c.run(r)
		r.err = err
		if err != nil {
			c.logger.Debug("block failed", slog.String("block", fmt.Sprintf("%x", r.block.ID)), slog.Any("error", err))
			errs = append(errs, err)
		}
		if len(changed) == 0 {
			continue
		}
		for _, name := range changed {
			changedInStep[name] = struct{}{}
		}
		queue = c.schedule(queue, r, changed)
	}

	c.record(Transaction{Step: c.steps, Changed: sortedKeys(changedInStep), Runs: runs})
	c.logger.Debug("step complete", slog.Int("step", c.steps), slog.Int("runs", runs), slog.Int("changed", len(changedInStep)))
	return errors.Join(errs...)
}

// schedule appends every block other than from that reads one of changed
// and is not already queued.
func (c *Core) schedule(queue []*registered, from *registered, changed []string) []*registered {
	queued := make(map[*registered]struct{}, len(queue))
	for _, q := range queue {
		queued[q] = struct{}{}
	}
	for _, r := range c.blocks {
		if r == from {
			continue
		}
		if _, ok := queued[r]; ok {
			continue
		}
		for _, name := range changed {
			if _, ok := r.inputs[name]; ok {
				queue = append(queue, r)
				queued[r] = struct{}{}
				break
			}
		}
	}
	return queue
}

// run executes one block and publishes the tables it changed.
func (c *Core) run(r *registered) ([]string, error) {
	f, err := r.block.file()
	if err != nil {
		return nil, err
	}
	thread := &starlark.Thread{
		Name: blockPath(r.block),
		Print: func(_ *starlark.Thread, msg string) {
			c.logger.Info(msg, slog.String("block", fmt.Sprintf("%x", r.block.ID)))
		},
	}
	execErr := starlark.ExecREPLChunk(f, thread, c.globals)

	var changed []string
	var errs []error
	if execErr != nil {
		errs = append(errs, execErr)
	}
	for _, name := range c.globals.Keys() {
		t, ok, err := tableFromValue(name, c.globals[name])
		if err != nil {
			if r.writes(name) {
				errs = append(errs, err)
			}
			continue
		}
		if !ok {
			continue
		}
		id := HashName(name)
		if prev, ok := c.tables[id]; ok && prev.Equal(t) {
			continue
		}
		c.tables[id] = t
		changed = append(changed, name)
	}
	return changed, errors.Join(errs...)
}

func (c *Core) record(tx Transaction) {
	if c.historyDepth == 0 {
		return
	}
	c.history = append(c.history, tx)
	if over := len(c.history) - c.historyDepth; over > 0 {
		c.history = append([]Transaction(nil), c.history[over:]...)
	}
}

// Table returns the current snapshot of a table.
func (c *Core) Table(id TableID) (*Table, bool) {
	t, ok := c.tables[id]
	return t, ok
}

// History returns the retained transactions, oldest first.
func (c *Core) History() []Transaction {
	out := make([]Transaction, len(c.history))
	copy(out, c.history)
	return out
}

// String summarises the core's state.
func (c *Core) String() string {
	names := make([]string, 0, len(c.tables))
	for _, t := range c.tables {
		names = append(names, "#"+t.Name)
	}
	sort.Strings(names)
	return fmt.Sprintf("Core(blocks: %d, tables: %d [%s], steps: %d, capacity: %d, history: %d/%d)",
		len(c.blocks), len(c.tables), strings.Join(names, " "), c.steps, c.capacity, len(c.history), c.historyDepth)
}

// Describe lists the registered blocks and the recent history.
func (c *Core) Describe() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Runtime: %d blocks, %d pending\n", len(c.blocks), len(c.pending))
	for i, r := range c.blocks {
		status := "ok"
		if r.err != nil {
			status = "error: " + r.err.Error()
		}
		fmt.Fprintf(&sb, "  [%d] %016x in=%v out=%v %s\n", i, r.block.ID, r.block.Inputs, r.block.Outputs, status)
	}
	for _, tx := range c.history {
		fmt.Fprintf(&sb, "  step %d: %d runs, changed %v\n", tx.Step, tx.Runs, tx.Changed)
	}
	return sb.String()
}
