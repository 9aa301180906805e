package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vovakirdan/enginehost/internal/assets"
	"github.com/vovakirdan/enginehost/internal/storage"
)

// execute runs the root command with args.
func execute(t *testing.T, args ...string) error {
	t.Helper()
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

func TestStageReturnsErrors(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(home)

	dbPath := filepath.Join(home, "journal.db")
	dest := filepath.Join(home, "staged")

	// An unreadable source fails before anything is opened.
	err := execute(t, "stage", "--log-level", "error", "--db", dbPath,
		"--source", filepath.Join(home, "missing"), "--dest", dest)
	if err == nil || !strings.Contains(err.Error(), "opening asset source") {
		t.Fatalf("stage with missing source error = %v, expected an opening error", err)
	}

	// An extensionless file is treated as a directory and fails to list.
	src := filepath.Join(home, "src")
	if err := os.MkdirAll(src, 0o755); err != nil {
		t.Fatal(err)
	}
	for name, content := range map[string]string{"main.lua": "-- main", "README": "docs"} {
		if err := os.WriteFile(filepath.Join(src, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	err = execute(t, "stage", "--log-level", "error", "--db", dbPath,
		"--source", src, "--dest", dest, "--strict")
	var partial *assets.PartialFailure
	if !errors.As(err, &partial) {
		t.Fatalf("stage --strict error = %v, expected PartialFailure", err)
	}

	// The command returned instead of exiting, so the journal was
	// written and closed.
	store, err := storage.Open(dbPath)
	if err != nil {
		t.Fatalf("storage.Open() failed: %v", err)
	}
	defer store.Close()

	runs, err := store.RecentStageRuns(10)
	if err != nil {
		t.Fatalf("RecentStageRuns() failed: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("RecentStageRuns() = %d runs, expected 1", len(runs))
	}
	if runs[0].Files != 1 || runs[0].Skipped != 1 {
		t.Errorf("stage run files/skipped = %d/%d, expected 1/1", runs[0].Files, runs[0].Skipped)
	}
	if _, err := os.Stat(filepath.Join(dest, "res", "main.lua")); err != nil {
		t.Errorf("main.lua not staged: %v", err)
	}
}
