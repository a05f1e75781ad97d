package commands

import (
	"log/slog"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/duzhanyuan/mech/internal/batch"
	"github.com/duzhanyuan/mech/internal/cli/config"
	"github.com/duzhanyuan/mech/internal/cli/output"
	"github.com/duzhanyuan/mech/internal/core"
	"github.com/duzhanyuan/mech/internal/runloop"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg       *config.Config
	Logger    *slog.Logger
	Renderer  *output.Renderer
	SessionID string
}

// NewCommandContext collects the configuration, logger and renderer for cmd.
// Every invocation gets its own session id, attached to the logger.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	id := uuid.NewString()
	return &CommandContext{
		Cfg:       getConfig(),
		Logger:    config.GetLogger(cmd.Context()).With(slog.String("session", id)),
		Renderer:  output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr()),
		SessionID: id,
	}
}

// NewCore builds a runtime core sized by the configuration.
func (cc *CommandContext) NewCore() runloop.Core {
	return core.NewCore(cc.Cfg.Core.Capacity, cc.Cfg.Core.HistoryDepth, core.WithLogger(cc.Logger))
}

// NewRunner builds a batch runner writing to the command's outputs.
func (cc *CommandContext) NewRunner() *batch.Runner {
	return batch.New(cc.NewCore, core.NewCompiler(),
		batch.WithOutput(cc.Renderer.Writer(), cc.Renderer.ErrWriter()),
		batch.WithLogger(cc.Logger))
}

// getConfig returns the current configuration, or the defaults when none
// was loaded.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	return config.Default()
}
