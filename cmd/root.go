package cmd

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/teemow/calendar-mcp/internal/config"
	"github.com/teemow/calendar-mcp/internal/logging"
)

// rootCmd represents the base command for the calendar-mcp application
var rootCmd = newRootCmd()

var configFile string

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calendar-mcp",
		Short: "Answers natural-language questions about Google Calendar",
		Long: `calendar-mcp turns questions such as "what's on tomorrow?" or
"meetings next week" into Google Calendar lookups.

It can run as:
  - An MCP (Model Context Protocol) server for AI assistants (serve)
  - A one-shot query parser for debugging (parse)`,
		SilenceUsage: true,
		Version:      version,
	}
	cmd.SetVersionTemplate(`{{printf "calendar-mcp version %s\n" .Version}}`)

	cmd.PersistentFlags().StringVar(&configFile, "config", "",
		"Path to a config file (default: calendar-mcp.yaml in . or $HOME/.config/calendar-mcp)")

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newParseCmd())
	cmd.AddCommand(newAuthCmd())
	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newGenerateDocsCmd())
	return cmd
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the configuration selected by --config, falling back to
// CALENDAR_MCP_CONFIG.
func loadConfig() (*config.Config, error) {
	path := configFile
	if path == "" {
		path = os.Getenv("CALENDAR_MCP_CONFIG")
	}
	return config.Load(path)
}

// setupLogger builds the process logger from cfg and installs it as the slog
// default. Logs always go to stderr so stdout stays free for the stdio
// transport and command output.
func setupLogger(cfg *config.Config, debug bool) (*slog.Logger, io.Closer, error) {
	level := cfg.Log.Level
	if debug {
		level = "debug"
	}
	logger, closer, err := logging.Setup(logging.Options{
		Level:  level,
		Format: cfg.Log.Format,
		File:   cfg.Log.File,
	})
	if err != nil {
		return nil, nil, err
	}
	slog.SetDefault(logger)
	return logger, closer, nil
}
