// Package cli provides the command-line interface for mech.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/duzhanyuan/mech/internal/cli/commands"
	"github.com/duzhanyuan/mech/internal/cli/config"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// ErrNoServer is returned by --serve when no server is linked into the
// binary.
var ErrNoServer = errors.New("no server is linked into this build")

// Server hosts the runtime behind the network interfaces selected by the
// configuration.
type Server interface {
	Serve(ctx context.Context, cfg *config.Config, paths []string) error
}

type unlinkedServer struct{}

func (unlinkedServer) Serve(_ context.Context, cfg *config.Config, _ []string) error {
	return fmt.Errorf("serve on %s (http %s): %w", cfg.WebsocketAddress(), cfg.HTTPAddress(), ErrNoServer)
}

type rootOptions struct {
	server Server
}

// Option configures the root command.
type Option func(*rootOptions)

// WithServer sets the server started by --serve.
func WithServer(s Server) Option {
	return func(o *rootOptions) {
		if s != nil {
			o.server = s
		}
	}
}

// NewRootCmd creates and returns the root command.
func NewRootCmd(opts ...Option) *cobra.Command {
	o := &rootOptions{server: unlinkedServer{}}
	for _, opt := range opts {
		opt(o)
	}

	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "mech [paths...]",
		Short: "The Mech REPL",
		Long: `mech is the terminal client of the Mech runtime.

Without a subcommand it starts an interactive session, first loading the
.mec files found in the given files and folders. Default values for
options are in parentheses.`,
		Version: Version,
		Args:    cobra.ArbitraryArgs,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip config loading for help and completion commands
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			cfg, err := config.LoadConfig(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}

			logger := newLogger(cmd.ErrOrStderr(), cfg.Verbose)
			cmd.SetContext(config.WithLogger(cmd.Context(), logger))

			if cfg.Verbose {
				if configFile := config.GetConfigFileUsed(); configFile != "" {
					_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Using config file: %s\n", configFile)
				}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.GetCurrentConfig()
			if cfg != nil && cfg.Serve {
				return o.server.Serve(cmd.Context(), cfg, args)
			}
			return commands.RunREPL(cmd, args)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
`)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: ./mech.yaml)")
	flags.BoolP("serve", "s", false, "Starts a Mech HTTP and websocket server (false)")
	flags.IntP("port", "p", config.DefaultPort, "Sets the port for the Mech server")
	flags.IntP("http-port", "t", config.DefaultHTTPPort, "Sets the port for the HTTP server")
	flags.StringP("address", "a", config.DefaultAddress, "Sets the address of the server")
	flags.StringP("persist", "r", "", "The path for the file to load from and persist changes")
	flags.BoolP("verbose", "v", false, "Verbose output")

	rootCmd.AddCommand(commands.NewVersionCommand(Version))
	rootCmd.AddCommand(commands.NewREPLCommand())
	rootCmd.AddCommand(commands.NewRunCommand())
	rootCmd.AddCommand(commands.NewTestCommand())
	rootCmd.AddCommand(NewCompletionCommand())

	return rootCmd
}

// newLogger builds the CLI logger: info and above by default, debug output
// with --verbose.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Execute runs the root command and returns the process exit code.
func Execute(opts ...Option) int {
	rootCmd := NewRootCmd(opts...)
	return exitCode(rootCmd.Execute(), rootCmd.ErrOrStderr())
}

func exitCode(err error, stderr io.Writer) int {
	if err == nil {
		return 0
	}
	// The summary line already reported the failure.
	if !errors.Is(err, commands.ErrTestsFailed) {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
	}
	return 1
}

// NewCompletionCommand creates the completion command.
func NewCompletionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for mech.

To load completions:

Bash:
  $ source <(mech completion bash)

Zsh:
  $ mech completion zsh > "${fpath[1]}/_mech"

Fish:
  $ mech completion fish | source

PowerShell:
  PS> mech completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
	return cmd
}
