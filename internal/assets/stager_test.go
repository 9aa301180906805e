package assets

import (
	"archive/zip"
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/enginehost/internal/assets/bundle"
)

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

func readFile(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile(%s) failed: %v", path, err)
	}
	return data
}

func TestStageScenario(t *testing.T) {
	bytes1 := []byte{0x89, 'P', 'N', 'G', 0, 1, 2}
	bytes2 := []byte("level data")
	src := NewFSSource(fstest.MapFS{
		"a.png":     {Data: bytes1},
		"sub/b.dat": {Data: bytes2},
	})

	layout := Layout{Root: t.TempDir()}
	stager := NewStager(quietLogger(), DotHeuristic)

	report, err := stager.StageLayout(src, layout)
	if err != nil {
		t.Fatalf("StageLayout() failed: %v", err)
	}

	if got := readFile(t, filepath.Join(layout.Root, "res", "a.png")); !bytes.Equal(got, bytes1) {
		t.Errorf("res/a.png = %v, expected %v", got, bytes1)
	}
	if got := readFile(t, filepath.Join(layout.Root, "res", "sub", "b.dat")); !bytes.Equal(got, bytes2) {
		t.Errorf("res/sub/b.dat = %q, expected %q", got, bytes2)
	}

	if report.Files != 2 {
		t.Errorf("Files = %d, expected 2", report.Files)
	}
	if report.Bytes != int64(len(bytes1)+len(bytes2)) {
		t.Errorf("Bytes = %d, expected %d", report.Bytes, len(bytes1)+len(bytes2))
	}
	if report.Dirs != 1 {
		t.Errorf("Dirs = %d, expected 1", report.Dirs)
	}

	info, err := os.Stat(layout.UserDir())
	if err != nil || !info.IsDir() {
		t.Errorf("user directory not created: %v", err)
	}
}

func TestStageCopyFidelity(t *testing.T) {
	tree := fstest.MapFS{
		"main.lua":               {Data: []byte("print('hi')")},
		"textures/hero.png":      {Data: bytes.Repeat([]byte{0xAB}, 4096)},
		"textures/ui/button.png": {Data: []byte{1, 2, 3}},
		"sounds/music/theme.ogg": {Data: []byte("OggS")},
		"empty.bin":              {Data: nil},
	}

	dest := t.TempDir()
	if _, err := NewStager(quietLogger(), DotHeuristic).Stage(NewFSSource(tree), dest); err != nil {
		t.Fatalf("Stage() failed: %v", err)
	}

	for name, file := range tree {
		got := readFile(t, filepath.Join(dest, filepath.FromSlash(name)))
		if !bytes.Equal(got, file.Data) {
			t.Errorf("%s: content mismatch (%d bytes, expected %d)", name, len(got), len(file.Data))
		}
	}
}

func TestStageIdempotent(t *testing.T) {
	tree := fstest.MapFS{
		"a.txt":       {Data: []byte("alpha")},
		"dir/b.txt":   {Data: []byte("bravo")},
		"dir/c/d.txt": {Data: []byte("delta")},
	}
	src := NewFSSource(tree)
	dest := t.TempDir()
	stager := NewStager(quietLogger(), DotHeuristic)

	first, err := stager.Stage(src, dest)
	if err != nil {
		t.Fatalf("first Stage() failed: %v", err)
	}
	snapshot := snapshotDir(t, dest)

	second, err := stager.Stage(src, dest)
	if err != nil {
		t.Fatalf("second Stage() failed: %v", err)
	}

	// Every pass re-copies everything.
	if second.Files != first.Files {
		t.Errorf("second pass copied %d files, expected %d", second.Files, first.Files)
	}

	again := snapshotDir(t, dest)
	if len(again) != len(snapshot) {
		t.Fatalf("file count changed: %d vs %d", len(again), len(snapshot))
	}
	for path, data := range snapshot {
		if again[path] != data {
			t.Errorf("%s changed after second pass", path)
		}
	}
}

func TestStageTruncatesExistingFiles(t *testing.T) {
	dest := t.TempDir()
	existing := filepath.Join(dest, "config.ini")
	if err := os.WriteFile(existing, []byte("a much longer stale content"), 0o644); err != nil {
		t.Fatal(err)
	}

	src := NewFSSource(fstest.MapFS{"config.ini": {Data: []byte("new")}})
	if _, err := NewStager(quietLogger(), DotHeuristic).Stage(src, dest); err != nil {
		t.Fatalf("Stage() failed: %v", err)
	}

	if got := string(readFile(t, existing)); got != "new" {
		t.Errorf("config.ini = %q, expected %q", got, "new")
	}
}

// The dot heuristic classifies by name only. These cases pin down its known
// misclassifications rather than correcting them.
func TestStageDotHeuristicMisclassification(t *testing.T) {
	tree := fstest.MapFS{
		"maps.v2/level1.map": {Data: []byte("dotted directory content")},
		"LICENSE":            {Data: []byte("dotless file")},
		"ok.txt":             {Data: []byte("fine")},
	}
	dest := t.TempDir()

	report, err := NewStager(quietLogger(), DotHeuristic).Stage(NewFSSource(tree), dest)

	var partial *PartialFailure
	if !errors.As(err, &partial) {
		t.Fatalf("Stage() error = %v, expected *PartialFailure", err)
	}

	var copyErr *CopyError
	if !errors.As(err, &copyErr) || copyErr.Path != "maps.v2" {
		t.Errorf("expected CopyError for directory maps.v2, got %v", err)
	}
	var listErr *ListingError
	if !errors.As(err, &listErr) || listErr.Path != "LICENSE" {
		t.Errorf("expected ListingError for file LICENSE, got %v", err)
	}
	if len(report.Skipped) != 2 {
		t.Errorf("Skipped = %d, expected 2", len(report.Skipped))
	}

	// The directory's contents are not staged and no partial file is left.
	if _, err := os.Stat(filepath.Join(dest, "maps.v2")); !os.IsNotExist(err) {
		t.Errorf("maps.v2 should not exist at destination, stat err = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dest, "LICENSE")); !os.IsNotExist(err) {
		t.Errorf("LICENSE should not exist at destination, stat err = %v", err)
	}

	// Siblings are still staged.
	if got := string(readFile(t, filepath.Join(dest, "ok.txt"))); got != "fine" {
		t.Errorf("ok.txt = %q, expected %q", got, "fine")
	}
}

func TestStageByTypeClassifier(t *testing.T) {
	tree := fstest.MapFS{
		"maps.v2/level1.map": {Data: []byte("map")},
		"LICENSE":            {Data: []byte("MIT")},
	}
	dest := t.TempDir()

	report, err := NewStager(quietLogger(), ByType).Stage(NewFSSource(tree), dest)
	if err != nil {
		t.Fatalf("Stage() failed: %v", err)
	}
	if report.Files != 2 {
		t.Errorf("Files = %d, expected 2", report.Files)
	}
	if got := string(readFile(t, filepath.Join(dest, "maps.v2", "level1.map"))); got != "map" {
		t.Errorf("maps.v2/level1.map = %q, expected %q", got, "map")
	}
	if got := string(readFile(t, filepath.Join(dest, "LICENSE"))); got != "MIT" {
		t.Errorf("LICENSE = %q, expected %q", got, "MIT")
	}
}

// failingSource wraps a Source and fails selected operations.
type failingSource struct {
	Source
	failList map[string]bool
	failOpen map[string]bool
}

func (f failingSource) List(dir string) ([]string, error) {
	if f.failList[dir] {
		return nil, errors.New("listing refused")
	}
	return f.Source.List(dir)
}

func (f failingSource) Open(name string) (io.ReadCloser, error) {
	if f.failOpen[name] {
		return nil, errors.New("open refused")
	}
	return f.Source.Open(name)
}

func TestStageSkipsFailuresAndContinues(t *testing.T) {
	src := failingSource{
		Source: NewFSSource(fstest.MapFS{
			"a.txt":        {Data: []byte("a")},
			"b.txt":        {Data: []byte("b")},
			"locked/c.txt": {Data: []byte("c")},
			"open/d.txt":   {Data: []byte("d")},
		}),
		failList: map[string]bool{"locked": true},
		failOpen: map[string]bool{"a.txt": true},
	}
	dest := t.TempDir()

	report, err := NewStager(quietLogger(), DotHeuristic).Stage(src, dest)
	if err == nil {
		t.Fatal("Stage() should report a partial failure")
	}
	if report.Files != 2 {
		t.Errorf("Files = %d, expected 2 (b.txt, open/d.txt)", report.Files)
	}
	if _, err := os.Stat(filepath.Join(dest, "open", "d.txt")); err != nil {
		t.Errorf("open/d.txt missing: %v", err)
	}
	if !strings.Contains(err.Error(), "2 entries skipped") {
		t.Errorf("error %q should mention 2 skipped entries", err)
	}
}

func TestStageRootListingFailure(t *testing.T) {
	src := failingSource{
		Source:   NewFSSource(fstest.MapFS{"a.txt": {Data: []byte("a")}}),
		failList: map[string]bool{"": true},
	}

	report, err := NewStager(quietLogger(), DotHeuristic).Stage(src, t.TempDir())
	var listErr *ListingError
	if !errors.As(err, &listErr) {
		t.Fatalf("Stage() error = %v, expected ListingError", err)
	}
	if report.Files != 0 {
		t.Errorf("Files = %d, expected 0", report.Files)
	}
}

func TestOpenSourceZipArchive(t *testing.T) {
	archive := filepath.Join(t.TempDir(), "app.apk")
	f, err := os.Create(archive)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)
	for name, body := range map[string]string{
		"assets/main.lua":     "tick = nil",
		"assets/gfx/logo.png": "png",
		"classes.dex":         "dex",
	} {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	f.Close()

	src, err := OpenSource(archive, "assets")
	if err != nil {
		t.Fatalf("OpenSource() failed: %v", err)
	}
	defer src.Close()

	dest := t.TempDir()
	report, err := NewStager(quietLogger(), DotHeuristic).Stage(src, dest)
	if err != nil {
		t.Fatalf("Stage() failed: %v", err)
	}
	if report.Files != 2 {
		t.Errorf("Files = %d, expected 2", report.Files)
	}
	if got := string(readFile(t, filepath.Join(dest, "gfx", "logo.png"))); got != "png" {
		t.Errorf("gfx/logo.png = %q, expected %q", got, "png")
	}
	if _, err := os.Stat(filepath.Join(dest, "classes.dex")); !os.IsNotExist(err) {
		t.Error("files outside the prefix must not be staged")
	}
}

func TestOpenSourceDirectory(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "fonts"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "fonts", "mono.ttf"), []byte("ttf"), 0o644); err != nil {
		t.Fatal(err)
	}

	src, err := OpenSource(root, "")
	if err != nil {
		t.Fatalf("OpenSource() failed: %v", err)
	}
	dest := t.TempDir()
	if _, err := NewStager(quietLogger(), DotHeuristic).Stage(src, dest); err != nil {
		t.Fatalf("Stage() failed: %v", err)
	}
	if got := string(readFile(t, filepath.Join(dest, "fonts", "mono.ttf"))); got != "ttf" {
		t.Errorf("fonts/mono.ttf = %q, expected %q", got, "ttf")
	}
}

func TestStageDemoBundle(t *testing.T) {
	layout := Layout{Root: t.TempDir()}
	if _, err := NewStager(quietLogger(), DotHeuristic).StageLayout(NewFSSource(bundle.FS()), layout); err != nil {
		t.Fatalf("StageLayout() failed: %v", err)
	}
	for _, name := range []string{"main.lua", "lib/util.lua", "data/banner.txt"} {
		if _, err := os.Stat(filepath.Join(layout.ResDir(), filepath.FromSlash(name))); err != nil {
			t.Errorf("%s not staged: %v", name, err)
		}
	}
}

func TestParseClassifier(t *testing.T) {
	tests := []struct {
		in       string
		expected Classifier
		wantErr  bool
	}{
		{"", DotHeuristic, false},
		{"heuristic", DotHeuristic, false},
		{"TYPE", ByType, false},
		{"magic", DotHeuristic, true},
	}

	for _, tc := range tests {
		got, err := ParseClassifier(tc.in)
		if (err != nil) != tc.wantErr {
			t.Errorf("ParseClassifier(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
		}
		if got != tc.expected {
			t.Errorf("ParseClassifier(%q) = %v, expected %v", tc.in, got, tc.expected)
		}
	}
}

func snapshotDir(t *testing.T, root string) map[string]string {
	t.Helper()
	files := make(map[string]string)
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, _ := filepath.Rel(root, path)
		files[rel] = string(readFile(t, path))
		return nil
	})
	if err != nil {
		t.Fatalf("walk %s: %v", root, err)
	}
	return files
}
