package batch

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/duzhanyuan/mech/internal/core"
)

// Tally counts test assertions across every test file.
type Tally struct {
	Total  int
	Passed int
	Failed int
}

// Add records one assertion.
func (t *Tally) Add(passed bool) {
	t.Total++
	if passed {
		t.Passed++
	} else {
		t.Failed++
	}
}

// OK reports whether no assertion failed.
func (t Tally) OK() bool { return t.Failed == 0 }

// Summary returns the one-line result of a test run.
func (t Tally) Summary() string {
	result := "ok"
	if !t.OK() {
		result = "failed"
	}
	return fmt.Sprintf("test result: %s. total: %d; passed: %d; failed: %d", result, t.Total, t.Passed, t.Failed)
}

// ExitCode maps a tally to the process exit status.
func ExitCode(t Tally) int {
	if t.OK() {
		return 0
	}
	return 1
}

// Test runs every program file directly inside dir and tallies the cells
// of each program's test table. A cell holding false fails; any other
// value passes. A file that cannot be read, compiled or stepped counts as
// one failed assertion.
func (r *Runner) Test(ctx context.Context, dir string) (Tally, error) {
	var tally Tally

	files, err := testFiles(dir)
	if err != nil {
		return tally, fmt.Errorf("list tests: %w", err)
	}

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return tally, err
		}

		src, err := r.ReadSource(ctx, path)
		if err != nil {
			_, _ = fmt.Fprintf(r.errOut, "Error: %v\n", err)
			tally.Add(false)
			continue
		}

		c, err := r.execute(path, src)
		if err != nil {
			_, _ = fmt.Fprintf(r.errOut, "Error: %s: %v\n", path, err)
			tally.Add(false)
		}

		tests, ok := c.Table(core.TestTable)
		if !ok {
			r.logger.Debug("no test table", slog.String("path", path))
			continue
		}
		before := tally
		tests.Cells(func(_, _ int, v core.Value) bool {
			b, isBool := v.AsBool()
			tally.Add(!isBool || b)
			return true
		})
		r.logger.Debug("tested",
			slog.String("path", path),
			slog.Int("passed", tally.Passed-before.Passed),
			slog.Int("failed", tally.Failed-before.Failed))
	}
	return tally, nil
}
