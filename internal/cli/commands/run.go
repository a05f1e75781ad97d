package commands

import (
	"github.com/spf13/cobra"
)

// NewRunCommand creates the run command.
func NewRunCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run <paths...>",
		Short: "Run programs and print their output tables",
		Long: `Run each program on a fresh runtime core and print every cell of its
"output" table, one per line.

Paths starting with https:// are fetched. Local files must end in .mec;
other files are skipped and unreadable files are reported.`,
		Example: `  # Run a local program
  mech run hello.mec

  # Run a remote program
  mech run https://example.com/hello.mec`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc := NewCommandContext(cmd)
			return cc.NewRunner().Run(cmd.Context(), args)
		},
	}
}
