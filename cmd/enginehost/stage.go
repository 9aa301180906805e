package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/enginehost/internal/assets"
	"github.com/vovakirdan/enginehost/internal/host"
)

var (
	flagSource string
	flagPrefix string
	flagDest   string
	flagStrict bool
	flagTypes  bool
)

var stageCmd = &cobra.Command{
	Use:   "stage",
	Short: "Stage the asset tree into the resource directory",
	Long: `Copy every asset into <root>/res, creating <root>/user alongside it.
Existing files are overwritten, so staging again refreshes the tree.

Entries whose name contains a dot are copied as files; everything else is
treated as a directory. Pass --by-type to ask the source instead.

Examples:
  enginehost stage                                   # Stage the embedded demo
  enginehost stage --source ./game.apk --prefix assets
  enginehost stage --source ./assets --dest /tmp/eh --strict`,
	RunE: runStage,
}

func init() {
	stageCmd.Flags().StringVar(&flagSource, "source", "", "Asset directory or zip archive (default: embedded demo)")
	stageCmd.Flags().StringVar(&flagPrefix, "prefix", "", "Subtree of the source to stage")
	stageCmd.Flags().StringVar(&flagDest, "dest", "", "Destination root")
	stageCmd.Flags().BoolVar(&flagStrict, "strict", false, "Exit non-zero if any entry is skipped")
	stageCmd.Flags().BoolVar(&flagTypes, "by-type", false, "Classify entries by their type instead of their name")
}

func runStage(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	if flags.Changed("source") {
		cfg.Assets.Source = flagSource
	}
	if flags.Changed("prefix") {
		cfg.Assets.Prefix = flagPrefix
	}
	if flags.Changed("dest") {
		cfg.Assets.Root = flagDest
	}
	if flags.Changed("strict") {
		cfg.Assets.Strict = flagStrict
	}
	if flagTypes {
		cfg.Assets.Classify = assets.ByType.String()
	}

	opts, err := hostOptions()
	if err != nil {
		return fmt.Errorf("configuring staging: %w", err)
	}

	src, name, closeSource, err := openSource()
	if err != nil {
		return fmt.Errorf("opening asset source: %w", err)
	}
	defer closeSource()

	store := openJournal()
	if store != nil {
		defer store.Close()
	}

	opts.Source = src
	opts.SourceName = name
	opts.Journal = journalOf(store)

	if err := opts.Layout.Prepare(); err != nil {
		return fmt.Errorf("preparing destination: %w", err)
	}
	report, err := host.Stage(opts)

	fmt.Printf("Staged %s into %s\n", name, report.Dest)
	fmt.Printf("  Files:   %d\n", report.Files)
	fmt.Printf("  Bytes:   %d\n", report.Bytes)
	fmt.Printf("  Dirs:    %d\n", report.Dirs)
	fmt.Printf("  Skipped: %d\n", len(report.Skipped))
	fmt.Printf("  Took:    %s\n", report.Duration)
	for _, skipped := range report.Skipped {
		fmt.Printf("    - %v\n", skipped)
	}

	var partial *assets.PartialFailure
	switch {
	case err == nil:
	case errors.As(err, &partial) && !cfg.Assets.Strict:
		fmt.Println()
		fmt.Println("Some entries were skipped; the engine will run without them.")
	default:
		return fmt.Errorf("staging assets: %w", err)
	}
	return nil
}
