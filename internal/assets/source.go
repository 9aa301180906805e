// Package assets stages a packaged, read-only asset tree into a writable
// directory so the engine can open resources by ordinary filesystem path.
package assets

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
)

// Source is a read-only hierarchical asset tree.
// It mirrors what a packaged asset manager offers: a directory listing that
// returns bare names, and a way to open a leaf by its relative path.
// Paths are slash-separated and relative to the root; "" is the root.
type Source interface {
	// List returns the names of the entries directly under dir.
	List(dir string) ([]string, error)

	// Open opens the named leaf for reading.
	Open(name string) (io.ReadCloser, error)
}

// TypedSource is implemented by sources that can answer authoritatively
// whether an entry is a directory.
type TypedSource interface {
	Source
	IsDir(name string) (bool, error)
}

// FSSource adapts an fs.FS (embedded bundle, os.DirFS, zip archive) to Source.
type FSSource struct {
	fsys   fs.FS
	closer io.Closer
}

// NewFSSource wraps fsys as an asset source.
func NewFSSource(fsys fs.FS) *FSSource {
	return &FSSource{fsys: fsys}
}

// OpenSource opens a directory or a zip archive (APK-style) as an asset
// source. If prefix is non-empty, only the subtree under prefix is exposed.
func OpenSource(location, prefix string) (*FSSource, error) {
	info, err := os.Stat(location)
	if err != nil {
		return nil, fmt.Errorf("assets: cannot stat source %s: %w", location, err)
	}

	var (
		fsys   fs.FS
		closer io.Closer
	)
	if info.IsDir() {
		fsys = os.DirFS(location)
	} else {
		zr, err := zip.OpenReader(location)
		if err != nil {
			return nil, fmt.Errorf("assets: cannot open archive %s: %w", location, err)
		}
		fsys = zr
		closer = zr
	}

	if prefix != "" {
		sub, err := fs.Sub(fsys, path.Clean(prefix))
		if err != nil {
			if closer != nil {
				closer.Close()
			}
			return nil, fmt.Errorf("assets: invalid prefix %q: %w", prefix, err)
		}
		fsys = sub
	}

	return &FSSource{fsys: fsys, closer: closer}, nil
}

// List implements Source.
func (s *FSSource) List(dir string) ([]string, error) {
	entries, err := fs.ReadDir(s.fsys, fsPath(dir))
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names, nil
}

// Open implements Source.
func (s *FSSource) Open(name string) (io.ReadCloser, error) {
	return s.fsys.Open(fsPath(name))
}

// IsDir implements TypedSource.
func (s *FSSource) IsDir(name string) (bool, error) {
	info, err := fs.Stat(s.fsys, fsPath(name))
	if err != nil {
		return false, err
	}
	return info.IsDir(), nil
}

// Close releases the underlying archive, if any.
func (s *FSSource) Close() error {
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}

// fsPath maps the root ("") to fs.FS's ".".
func fsPath(name string) string {
	if name == "" {
		return "."
	}
	return name
}

var _ TypedSource = (*FSSource)(nil)
