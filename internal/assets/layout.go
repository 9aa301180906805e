package assets

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	resDirName  = "res"
	userDirName = "user"
)

// Layout is the writable directory tree handed to the engine:
// <Root>/res mirrors the asset tree, <Root>/user holds runtime-written data.
type Layout struct {
	Root string
}

// NewLayout returns a Layout rooted at root, expanding a leading ~.
func NewLayout(root string) (Layout, error) {
	if root != "" && root[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return Layout{}, fmt.Errorf("assets: cannot expand home directory: %w", err)
		}
		root = filepath.Join(home, root[1:])
	}
	if root == "" {
		return Layout{}, fmt.Errorf("assets: empty destination root")
	}
	return Layout{Root: root}, nil
}

// ResDir is the staged resource directory.
func (l Layout) ResDir() string {
	return filepath.Join(l.Root, resDirName)
}

// UserDir is the engine's writable data directory.
func (l Layout) UserDir() string {
	return filepath.Join(l.Root, userDirName)
}

// Prepare creates the root, res and user directories. Safe to repeat.
func (l Layout) Prepare() error {
	for _, dir := range []string{l.Root, l.ResDir(), l.UserDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("assets: cannot create directory %s: %w", dir, err)
		}
	}
	return nil
}
