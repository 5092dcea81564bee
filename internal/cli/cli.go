// Package cli implements the vtable command-line interface.
package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/vtable/pkg/buildinfo"
	"github.com/matzehuels/vtable/pkg/config"
	"github.com/matzehuels/vtable/pkg/errors"
	"github.com/matzehuels/vtable/pkg/observability"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "vtable"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Config is the effective configuration: defaults, then the config
	// file. Per-command flags are applied on top by resolveConfig.
	Config config.Config

	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "vtable renders huge tables through a virtual window",
		Long: `vtable computes which rows of a very large table are visible through a
fixed-height viewport and materializes only those, plus a few rows of
overscan. It can print single windows, sweep the whole table, browse it
interactively in the terminal, or serve windows to a browser over HTTP.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := c.loadConfig(); err != nil {
				// config subcommands must keep working on a broken file
				if !isConfigCommand(cmd) {
					return err
				}
				c.Logger.Warn("using defaults", "err", err)
			}
			observability.SetTableHooks(newLogHooks(c.Logger))
			observability.SetScrollHooks(newLogHooks(c.Logger))
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/vtable/config.toml)")

	root.AddCommand(c.windowCommand())
	root.AddCommand(c.sweepCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the config file into c.Config. Without --config the
// default path is used and a missing file is fine.
func (c *CLI) loadConfig() error {
	path := c.configPath
	if path == "" {
		p, err := config.Path()
		if err != nil {
			c.Logger.Debug("no config path", "err", err)
			return nil
		}
		path = p
	}
	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	c.Config = cfg
	c.Logger.Debug("config loaded", "path", path, "rows", cfg.Rows, "overscan", cfg.Overscan)
	return nil
}

func isConfigCommand(cmd *cobra.Command) bool {
	for ; cmd != nil; cmd = cmd.Parent() {
		if cmd.Name() == "config" && cmd.Parent() != nil && cmd.Parent().Parent() == nil {
			return true
		}
	}
	return false
}

// ExitCode maps a command error to a process exit status: 130 after an
// interrupt, 2 for rejected table geometry or input, 1 otherwise.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case stderrors.Is(err, context.Canceled):
		return 130 // Standard shell convention for SIGINT
	case errors.IsPrecondition(err),
		errors.Is(err, errors.ErrCodeInvalidInput),
		errors.Is(err, errors.ErrCodeInvalidConfig):
		return 2
	}
	return 1
}
