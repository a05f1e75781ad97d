package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/duzhanyuan/mech/internal/core"
)

// Run executes each path on a fresh core and prints every cell of its
// output table, one per line in row-major order. Local files that cannot
// be read are reported and skipped. A failed fetch aborts the whole run.
func (r *Runner) Run(ctx context.Context, paths []string) error {
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return err
		}

		src, err := r.ReadSource(ctx, path)
		switch {
		case err == nil:
		case IsRemote(path):
			return err
		case errors.Is(err, ErrNotSource):
			r.logger.Debug("skipping non-source file", slog.String("path", path))
			continue
		default:
			_, _ = fmt.Fprintf(r.errOut, "Error: %v\n", err)
			continue
		}

		c, err := r.execute(path, src)
		if err != nil {
			_, _ = fmt.Fprintf(r.errOut, "Error: %s: %v\n", path, err)
		}
		out, ok := c.Table(core.OutputTable)
		if !ok {
			r.logger.Debug("no output table", slog.String("path", path))
			continue
		}
		out.Cells(func(_, _ int, v core.Value) bool {
			_, _ = fmt.Fprintln(r.out, v.String())
			return true
		})
	}
	return nil
}
