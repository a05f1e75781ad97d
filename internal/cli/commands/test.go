package commands

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/duzhanyuan/mech/internal/batch"
)

// ErrTestsFailed is returned by the test command when any assertion failed.
// The summary has already been printed.
var ErrTestsFailed = errors.New("tests failed")

// NewTestCommand creates the test command.
func NewTestCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "test",
		Short: "Run the tests in the current directory",
		Long: `Run every .mec file in the current directory (not recursively) and
check its "test" table. A cell holding false is a failed assertion; any
other value passes.

Exits with status 1 when any assertion failed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTests(cmd, ".")
		},
	}
}

func runTests(cmd *cobra.Command, dir string) error {
	cc := NewCommandContext(cmd)
	tally, err := cc.NewRunner().Test(cmd.Context(), dir)
	if err != nil {
		return err
	}

	styles := cc.Renderer.Styles()
	if tally.OK() {
		cc.Renderer.Println(styles.Success.Render(tally.Summary()))
	} else {
		cc.Renderer.Println(styles.Error.Render(tally.Summary()))
	}
	if batch.ExitCode(tally) != 0 {
		return ErrTestsFailed
	}
	return nil
}
