package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vovakirdan/enginehost/internal/assets"
	"github.com/vovakirdan/enginehost/internal/assets/bundle"
	"github.com/vovakirdan/enginehost/internal/engine"
	"github.com/vovakirdan/enginehost/internal/host"
	"github.com/vovakirdan/enginehost/internal/storage"
	"github.com/vovakirdan/enginehost/internal/surface"
)

// demoSource names the embedded asset tree in logs and the journal.
const demoSource = "embedded:demo"

// openSource opens the configured asset source, or the embedded demo tree
// when none is configured. The returned close func is never nil.
func openSource() (assets.Source, string, func(), error) {
	if cfg.Assets.Source == "" {
		return assets.NewFSSource(bundle.FS()), demoSource, func() {}, nil
	}
	src, err := assets.OpenSource(cfg.Assets.Source, cfg.Assets.Prefix)
	if err != nil {
		return nil, "", nil, err
	}
	name := cfg.Assets.Source
	if cfg.Assets.Prefix != "" {
		name += "!" + cfg.Assets.Prefix
	}
	return src, name, func() { _ = src.Close() }, nil
}

// openJournal opens the journal database. It returns nil, without error,
// when the journal is disabled; a journal that cannot be opened is logged
// and skipped so the engine still runs.
func openJournal() *storage.Store {
	if cfg.Storage.Disabled {
		return nil
	}
	store, err := storage.Open(cfg.Storage.Path)
	if err != nil {
		logger.Warn("could not open journal database", "path", cfg.Storage.Path, "error", err)
		return nil
	}
	return store
}

// journalOf converts a possibly nil store into a host.Journal.
func journalOf(store *storage.Store) host.Journal {
	if store == nil {
		return nil
	}
	return store
}

// hostOptions builds host options from the configuration. The engine,
// display and journal are left for the caller.
func hostOptions() (host.Options, error) {
	layout, err := assets.NewLayout(cfg.Assets.Root)
	if err != nil {
		return host.Options{}, err
	}
	classifier, err := cfg.Assets.Classifier()
	if err != nil {
		return host.Options{}, err
	}
	selection, err := cfg.Surface.Selection()
	if err != nil {
		return host.Options{}, err
	}
	return host.Options{
		Layout:     layout,
		Classifier: classifier,
		Strict:     cfg.Assets.Strict,
		Selection:  selection,
		Logger:     logger,
	}, nil
}

// newDisplay creates the software display from the configured candidates.
func newDisplay() (*surface.SoftwareDisplay, error) {
	specs, err := cfg.Display.Candidates()
	if err != nil {
		return nil, err
	}
	return surface.NewSoftwareDisplay(specs), nil
}

// engineName returns name, or the configured engine when name is empty.
func engineName(name string) (string, error) {
	if name == "" {
		name = cfg.Engine.Name
	}
	if !engine.Exists(name) {
		return "", fmt.Errorf("%w: %q (run 'enginehost engines')", engine.ErrUnknownEngine, name)
	}
	return name, nil
}

// expandHome expands a leading ~ in path.
func expandHome(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot get home directory: %w", err)
	}
	return filepath.Join(home, path[1:]), nil
}
