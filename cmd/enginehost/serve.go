package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/enginehost/internal/assets"
	"github.com/vovakirdan/enginehost/internal/host"
	"github.com/vovakirdan/enginehost/internal/platform/tui"
)

var (
	flagSSHAddr     string
	flagHostKey     string
	flagServeEngine string
	flagMaxSessions int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the engine over SSH",
	Long: `Stage the assets once, then start an SSH server where every connection
gets its own engine and its own negotiated surface. Sessions share the
staged resource directory and the journal.

Host key handling:
  - If --host-key is provided, uses that key file
  - Otherwise uses ssh.host_key_path from the config, generating it if missing

Examples:
  enginehost serve                           # Listen on the configured address
  enginehost serve --ssh :2222               # Listen on port 2222
  enginehost serve --max-sessions 4

Users can connect with:
  ssh -t localhost -p 23235`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", "", "SSH server address (host:port)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file")
	serveCmd.Flags().StringVar(&flagServeEngine, "engine", "", "Engine each session runs")
	serveCmd.Flags().IntVar(&flagMaxSessions, "max-sessions", -1, "Concurrent session limit (0 = unlimited)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	if flags.Changed("ssh") {
		cfg.SSH.Addr = flagSSHAddr
	}
	if flags.Changed("host-key") {
		cfg.SSH.HostKeyPath = flagHostKey
	}
	if flags.Changed("max-sessions") {
		cfg.SSH.MaxSessions = flagMaxSessions
	}

	name, err := engineName(flagServeEngine)
	if err != nil {
		return fmt.Errorf("selecting engine: %w", err)
	}

	opts, err := hostOptions()
	if err != nil {
		return fmt.Errorf("configuring host: %w", err)
	}

	specs, err := cfg.Display.Candidates()
	if err != nil {
		return fmt.Errorf("reading display configurations: %w", err)
	}

	store := openJournal()
	if store != nil {
		defer store.Close()
	}
	opts.Journal = journalOf(store)

	if err := opts.Layout.Prepare(); err != nil {
		return fmt.Errorf("preparing destination: %w", err)
	}
	src, sourceName, closeSource, err := openSource()
	if err != nil {
		return fmt.Errorf("opening asset source: %w", err)
	}
	opts.Source = src
	opts.SourceName = sourceName

	// Sessions only read the staged tree; the source is done after this.
	report, err := host.Stage(opts)
	closeSource()
	var partial *assets.PartialFailure
	if err != nil && (!errors.As(err, &partial) || cfg.Assets.Strict) {
		return fmt.Errorf("staging assets: %w", err)
	}
	logger.Info("assets staged", "source", sourceName, "files", report.Files, "skipped", len(report.Skipped))

	hostKey, err := expandHome(cfg.SSH.HostKeyPath)
	if err != nil {
		return fmt.Errorf("resolving host key path: %w", err)
	}

	server, err := tui.NewSSHServer(tui.SSHServerConfig{
		Address:     cfg.SSH.Addr,
		HostKeyPath: hostKey,
		IdleTimeout: cfg.SSH.IdleTimeout,
		MaxSessions: cfg.SSH.MaxSessions,
		Engine:      name,
		Layout:      opts.Layout,
		Candidates:  specs,
		Selection:   opts.Selection,
		Timing:      cfg.Timing(),
		Journal:     opts.Journal,
	}, logger)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	fmt.Printf("Serving %s on %s\n", name, server.Addr())
	fmt.Println("Press Ctrl+C to stop")

	if err := server.ListenAndServe(); err != nil {
		return fmt.Errorf("serving: %w", err)
	}
	return nil
}
