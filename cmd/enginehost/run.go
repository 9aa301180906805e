package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/enginehost/internal/engine"
	"github.com/vovakirdan/enginehost/internal/host"
	"github.com/vovakirdan/enginehost/internal/platform/tui"
)

var (
	flagEngine    string
	flagRunSource string
	flagNoStage   bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the engine in this terminal",
	Long: `Stage the assets, start the engine and present it full screen.
Each terminal cell is one surface pixel; the bottom row is the status bar.

Controls:
  Mouse      - Touch (press, drag, release)
  ?          - Toggle help
  Ctrl+S     - Save the current frame under <root>/user/screenshots
  Q/Ctrl+C   - Quit

Losing terminal focus releases the surface; regaining it negotiates a new
one and resizes the engine.

Examples:
  enginehost run
  enginehost run --engine trace
  enginehost run --source ./game.apk --fps 30
  enginehost run --no-stage`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVar(&flagEngine, "engine", "", "Engine to run (default from config)")
	runCmd.Flags().StringVar(&flagRunSource, "source", "", "Asset directory or zip archive")
	runCmd.Flags().BoolVar(&flagNoStage, "no-stage", false, "Reuse the already staged resource tree")
}

func runRun(cmd *cobra.Command, _ []string) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("run needs a terminal; use 'enginehost serve' for remote sessions")
	}
	if cmd.Flags().Changed("source") {
		cfg.Assets.Source = flagRunSource
	}

	name, err := engineName(flagEngine)
	if err != nil {
		return fmt.Errorf("selecting engine: %w", err)
	}

	opts, err := hostOptions()
	if err != nil {
		return fmt.Errorf("configuring host: %w", err)
	}

	display, err := newDisplay()
	if err != nil {
		return fmt.Errorf("reading display configurations: %w", err)
	}
	opts.Display = display

	if flagNoStage {
		opts.Staged = true
	} else {
		src, sourceName, closeSource, srcErr := openSource()
		if srcErr != nil {
			return fmt.Errorf("opening asset source: %w", srcErr)
		}
		defer closeSource()
		opts.Source = src
		opts.SourceName = sourceName
	}

	store := openJournal()
	if store != nil {
		defer store.Close()
	}
	opts.Journal = journalOf(store)

	eng, err := engine.Create(name, logger)
	if err != nil {
		return fmt.Errorf("creating engine: %w", err)
	}
	opts.Engine = eng

	h, err := host.New(opts)
	if err != nil {
		return fmt.Errorf("creating host: %w", err)
	}

	if w, hgt, sizeErr := term.GetSize(int(os.Stdout.Fd())); sizeErr == nil {
		logger.Debug("terminal size", "width", w, "height", hgt)
	}

	// The program owns the terminal, so logs go to a file while it runs.
	if err := opts.Layout.Prepare(); err != nil {
		return fmt.Errorf("preparing resource root: %w", err)
	}
	logPath := filepath.Join(opts.Layout.Root, "enginehost.log")
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer logFile.Close()
	logger.SetOutput(logFile)
	defer logger.SetOutput(os.Stderr)

	screenshots := filepath.Join(opts.Layout.UserDir(), "screenshots")
	err = tui.Run(h, cfg.Timing(), screenshots)
	if errors.Is(err, host.ErrNotBootstrapped) {
		err = fmt.Errorf("engine did not start: %w", err)
	}
	if err != nil {
		return fmt.Errorf("running engine: %w", err)
	}
	return nil
}
