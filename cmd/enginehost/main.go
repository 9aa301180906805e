// enginehost stages an engine's assets, negotiates a drawing surface and
// runs the engine in the terminal or over SSH.
//
// Usage:
//
//	enginehost stage          - Copy the asset tree into the resource directory
//	enginehost configs        - List display configurations and the chosen one
//	enginehost engines        - List registered engines
//	enginehost run            - Run the engine in this terminal
//	enginehost serve          - Serve the engine over SSH
//	enginehost history        - Show the staging and negotiation journal
//
// Global flags:
//
//	--config <path>     - Config file (default search: ~/.enginehost/config.yaml, ./enginehost.yaml)
//	--log-level <level> - debug, info, warn, error
//	--db <path>         - Journal database path
//	--fps <rate>        - Frame rate
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/enginehost/internal/config"

	// Import engines to register them
	_ "github.com/vovakirdan/enginehost/internal/engine/luaengine"
)

var (
	// Global flags
	flagConfig   string
	flagLogLevel string
	flagDBPath   string
	flagFPS      int

	// Resolved by the root command before any subcommand runs
	cfg    config.Config
	logger *log.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "enginehost",
	Short: "Host a native-style engine in your terminal",
	Long: `enginehost is the platform shell for an engine: it stages the engine's
assets into a writable resource directory, negotiates a drawing surface
and drives the engine's lifecycle, frames and touch input.

Available commands:
  stage    - Stage the asset tree
  configs  - Show the display configurations and which one is chosen
  engines  - List registered engines
  run      - Run the engine in this terminal
  serve    - Serve the engine over SSH
  history  - Show the journal

Examples:
  enginehost stage --source ./game.apk --prefix assets
  enginehost configs --strategy translucent
  enginehost run --engine lua
  enginehost serve --ssh :2222
  enginehost history --limit 20`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to config file")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Path to journal database")
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 0, "Frame rate (frames per second)")

	rootCmd.AddCommand(stageCmd)
	rootCmd.AddCommand(configsCmd)
	rootCmd.AddCommand(enginesCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(historyCmd)
}

// setup loads the configuration, applies global flags over it and builds
// the logger.
func setup(cmd *cobra.Command, _ []string) error {
	loaded, err := config.Load(flagConfig)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		loaded.Log.Level = flagLogLevel
	}
	if flags.Changed("db") {
		loaded.Storage.Path = flagDBPath
	}
	if flags.Changed("fps") {
		loaded.Engine.TickRate = flagFPS
	}
	if err := loaded.Validate(); err != nil {
		return err
	}
	cfg = loaded

	logger = log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "enginehost",
		Level:           cfg.LogLevel(),
	})
	if cfg.Path != "" {
		logger.Debug("config loaded", "path", cfg.Path)
	}
	return nil
}
