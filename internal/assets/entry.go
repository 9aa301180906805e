package assets

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"
)

// Entry is one item of an asset listing: its path from the source root and
// whether it is treated as a leaf file or as a directory to descend into.
type Entry struct {
	Segments []string
	Leaf     bool
}

// Path returns the slash-separated source path.
func (e Entry) Path() string {
	return path.Join(e.Segments...)
}

// Name returns the last path segment.
func (e Entry) Name() string {
	if len(e.Segments) == 0 {
		return ""
	}
	return e.Segments[len(e.Segments)-1]
}

// Dest returns the destination path of the entry under root.
func (e Entry) Dest(root string) string {
	return filepath.Join(append([]string{root}, e.Segments...)...)
}

// Classifier decides whether a listed entry is a leaf file.
type Classifier int

const (
	// DotHeuristic treats any name containing '.' as a leaf file.
	// A directory named "maps.v2" is therefore copied as a file (and fails),
	// and a file named "LICENSE" is descended into as a directory (and fails
	// to list). Both are reported as skipped entries.
	DotHeuristic Classifier = iota

	// ByType asks the source for the entry type when it implements
	// TypedSource and falls back to DotHeuristic otherwise.
	ByType
)

// String returns the config name of the classifier.
func (c Classifier) String() string {
	switch c {
	case DotHeuristic:
		return "heuristic"
	case ByType:
		return "type"
	default:
		return "unknown"
	}
}

// ParseClassifier maps a config name to a Classifier.
// The empty string selects DotHeuristic.
func ParseClassifier(name string) (Classifier, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "heuristic", "dot":
		return DotHeuristic, nil
	case "type":
		return ByType, nil
	default:
		return DotHeuristic, fmt.Errorf("assets: unknown classifier %q", name)
	}
}

// classify builds the Entry for name listed under parent.
func (c Classifier) classify(src Source, parent []string, name string) Entry {
	segments := make([]string, len(parent)+1)
	copy(segments, parent)
	segments[len(parent)] = name
	e := Entry{Segments: segments}

	if c == ByType {
		if typed, ok := src.(TypedSource); ok {
			if dir, err := typed.IsDir(e.Path()); err == nil {
				e.Leaf = !dir
				return e
			}
		}
	}

	e.Leaf = strings.Contains(name, ".")
	return e
}
