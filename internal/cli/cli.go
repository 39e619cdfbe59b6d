// Package cli implements the rasterd command-line interface.
//
// Two commands cover both ways of running the gateway:
//   - serve: run the long-lived HTTP rendering service
//   - render: convert a single diagram document from the command line
//
// All commands support --verbose (-v) for debug-level logging and --config
// for an optional TOML configuration file. Environment variables override
// file values.
package cli

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/rasterd/pkg/buildinfo"
	"github.com/matzehuels/rasterd/pkg/config"
)

// appName is the application name used for display.
const appName = "rasterd"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Rasterd converts diagram documents to SVG and PNG",
		Long:         `Rasterd is a rendering gateway: it converts diagram documents to SVG via an external conversion service, applies font substitution, and rasterizes the result with a headless browser.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "path to TOML configuration file")

	root.AddCommand(c.serveCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.versionCommand())

	return root
}

// loadConfig resolves the effective configuration for a command invocation.
func (c *CLI) loadConfig() (config.Config, error) {
	return config.Load(c.configPath)
}
