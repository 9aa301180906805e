package assets

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
)

// Report summarizes one staging pass.
type Report struct {
	Dest     string
	Files    int   // Leaf files copied
	Bytes    int64 // Bytes written
	Dirs     int   // Directories descended into
	Skipped  []error
	Started  time.Time
	Duration time.Duration
}

// Stager copies an asset tree into a writable directory.
// It is not safe to run two passes against the same destination concurrently.
type Stager struct {
	classifier Classifier
	logger     *log.Logger
}

// NewStager creates a stager. A nil logger uses log.Default().
func NewStager(logger *log.Logger, classifier Classifier) *Stager {
	if logger == nil {
		logger = log.Default()
	}
	return &Stager{
		classifier: classifier,
		logger:     logger.WithPrefix("stager"),
	}
}

// StageLayout prepares the layout and stages src into its res directory.
func (s *Stager) StageLayout(src Source, layout Layout) (Report, error) {
	if err := layout.Prepare(); err != nil {
		return Report{Dest: layout.ResDir()}, err
	}
	return s.Stage(src, layout.ResDir())
}

// Stage mirrors src under destRoot. Every leaf is re-copied on every pass and
// existing destination files are truncated.
//
// Entries that cannot be listed or copied are logged and skipped; if any were
// skipped the returned error is a *PartialFailure and the report still
// describes everything that was staged.
func (s *Stager) Stage(src Source, destRoot string) (Report, error) {
	report := Report{Dest: destRoot, Started: time.Now()}
	s.logger.Debug("staging started", "dest", destRoot, "classifier", s.classifier)

	s.walk(src, nil, destRoot, &report)

	report.Duration = time.Since(report.Started)
	s.logger.Info("staging finished",
		"dest", destRoot,
		"files", report.Files,
		"bytes", report.Bytes,
		"skipped", len(report.Skipped),
		"duration", report.Duration,
	)

	if len(report.Skipped) > 0 {
		return report, &PartialFailure{Errors: report.Skipped}
	}
	return report, nil
}

// walk stages the directory identified by segments.
func (s *Stager) walk(src Source, segments []string, destRoot string, report *Report) {
	dir := Entry{Segments: segments}
	names, err := src.List(dir.Path())
	if err != nil {
		lerr := &ListingError{Path: dir.Path(), Err: err}
		s.logger.Warn("listing failed, skipping subtree", "path", dir.Path(), "error", err)
		report.Skipped = append(report.Skipped, lerr)
		return
	}

	for _, name := range names {
		entry := s.classifier.classify(src, segments, name)
		if entry.Leaf {
			s.copyLeaf(src, entry, destRoot, report)
			continue
		}
		report.Dirs++
		s.walk(src, entry.Segments, destRoot, report)
	}
}

// copyLeaf copies one file, creating its parent directories.
func (s *Stager) copyLeaf(src Source, entry Entry, destRoot string, report *Report) {
	dest := entry.Dest(destRoot)
	n, err := copyFile(src, entry.Path(), dest)
	if err != nil {
		cerr := &CopyError{Path: entry.Path(), Dest: dest, Err: err}
		s.logger.Warn("copy failed, skipping file", "path", entry.Path(), "error", err)
		report.Skipped = append(report.Skipped, cerr)
		return
	}
	report.Files++
	report.Bytes += n
	s.logger.Debug("copied", "path", entry.Path(), "bytes", n)
}

func copyFile(src Source, name, dest string) (int64, error) {
	in, err := src.Open(name)
	if err != nil {
		return 0, fmt.Errorf("open source: %w", err)
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return 0, fmt.Errorf("create parent: %w", err)
	}

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, fmt.Errorf("create destination: %w", err)
	}

	n, err := io.Copy(out, in)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		// No half-written files left behind.
		os.Remove(dest)
		return 0, err
	}
	return n, nil
}
