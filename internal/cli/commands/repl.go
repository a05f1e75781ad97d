package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/duzhanyuan/mech/internal/cli/output"
	"github.com/duzhanyuan/mech/internal/grammar"
)

// Prompt is shown before every line of REPL input.
const Prompt = "~> "

// NewREPLCommand creates the repl command.
func NewREPLCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "repl [paths...]",
		Short: "Start an interactive session",
		Long: `Start an interactive session with a fresh runtime core.

Lines starting with ':' are commands (type :help for the list); anything
else is compiled and run. Files and folders given as arguments are loaded
before the first prompt.`,
		Example: `  # Start an empty session
  mech repl

  # Preload every .mec file under ./lib
  mech repl ./lib`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return RunREPL(cmd, args)
		},
	}
}

// RunREPL runs an interactive session on the terminal attached to cmd.
func RunREPL(cmd *cobra.Command, paths []string) error {
	cc := NewCommandContext(cmd)
	if cc.Cfg.Persist != "" {
		cc.Logger.Warn("persistence is not supported, changes stay in memory", "persist", cc.Cfg.Persist)
	}

	historyFile := cc.Cfg.HistoryFile
	if historyFile != "" {
		if err := os.MkdirAll(filepath.Dir(historyFile), 0o750); err != nil {
			cc.Logger.Warn("history disabled", "error", err)
			historyFile = ""
		}
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          cc.Renderer.Styles().Prompt.Render(Prompt),
		HistoryFile:     historyFile,
		AutoComplete:    newCommandCompleter(),
		InterruptPrompt: "^C",
		EOFPrompt:       ":quit",
		Stdout:          cmd.OutOrStdout(),
		Stderr:          cmd.ErrOrStderr(),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	printBanner(cc.Renderer)

	return NewSession(cc).Run(cmd.Context(), rl, paths)
}

// printBanner greets interactive users. Piped output gets no banner.
func printBanner(r *output.Renderer) {
	if !r.IsTTY() {
		return
	}
	r.Banner("MECH")
	r.Muted("Type :help for commands, :quit to exit")
	r.Println()
}

func newCommandCompleter() *readline.PrefixCompleter {
	var items []readline.PrefixCompleterInterface
	for _, name := range grammar.Names() {
		items = append(items, readline.PcItem(name))
	}
	return readline.NewPrefixCompleter(items...)
}
