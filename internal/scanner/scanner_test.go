package scanner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steveyegge/doclife/internal/classify"
	"github.com/steveyegge/doclife/internal/types"
)

// writeTree creates files (relative path -> content) under a fresh temp dir.
func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	}
	return root
}

func paths(files []types.DiscoveredFile) []string {
	out := make([]string, 0, len(files))
	for _, f := range files {
		out = append(out, f.Path)
	}
	return out
}

func TestScan_OrderAndClassification(t *testing.T) {
	root := writeTree(t, map[string]string{
		"README.md":           "# Demo\n",
		"b.txt":               "x\n",
		"a.go":                "package a\n",
		"src/z.py":            "# c\nx = 1\n",
		"src/lib/util.py":     "y = 2\n",
		"docs/guide.md":       "guide\n",
		"tests/test_thing.py": "def test(): pass\n",
	})

	inv, err := New().Scan(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"docs/guide.md",
		"src/lib/util.py",
		"src/z.py",
		"tests/test_thing.py",
		"README.md",
		"a.go",
		"b.txt",
	}, paths(inv.Files))
	assert.Equal(t, []string{"docs", "src", "src/lib", "tests"}, inv.Directories)

	counts := inv.Count()
	assert.Equal(t, 1, counts[types.CategoryReadme])
	assert.Equal(t, 1, counts[types.CategoryMarkdownDoc])
	assert.Equal(t, 3, counts[types.CategorySourceCode])
	assert.Equal(t, 1, counts[types.CategoryTestFile])
	assert.Equal(t, 1, counts[types.CategoryOther])
	assert.Equal(t, 0, counts[types.CategoryAPISpec])

	// every code file is sampled, in walk order
	require.Len(t, inv.Samples, 4)
	assert.Equal(t, "src/lib/util.py", inv.Samples[0].Path)
	assert.Equal(t, 50, inv.Samples[1].CoveragePercent())
}

func TestScan_Deterministic(t *testing.T) {
	root := writeTree(t, map[string]string{
		"README.md": "# x\n",
		"a/b/c.go":  "package c\n",
		"a/d.md":    "d\n",
		"e.rs":      "fn main() {}\n",
	})

	s := New()
	first, err := s.Scan(context.Background(), root)
	require.NoError(t, err)
	second, err := s.Scan(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, paths(first.Files), paths(second.Files))
	assert.Equal(t, first.Samples, second.Samples)
}

func TestScan_SampleCap(t *testing.T) {
	files := map[string]string{}
	for _, name := range []string{"a.go", "b.go", "c.go", "d.go", "e.go"} {
		files[name] = "// doc\npackage x\n"
	}
	root := writeTree(t, files)

	s := New()
	s.SampleCap = 3
	inv, err := s.Scan(context.Background(), root)
	require.NoError(t, err)

	assert.Len(t, inv.Files, 5)
	require.Len(t, inv.Samples, 3)
	assert.Equal(t, "a.go", inv.Samples[0].Path)
	assert.Equal(t, "c.go", inv.Samples[2].Path)
}

func TestScan_SymlinkCycle(t *testing.T) {
	root := writeTree(t, map[string]string{
		"pkg/a.go": "package pkg\n",
	})
	if err := os.Symlink(root, filepath.Join(root, "pkg", "loop")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	inv, err := New().Scan(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, []string{"pkg/a.go"}, paths(inv.Files))
}

func TestScan_BrokenSymlinkIsWarning(t *testing.T) {
	root := writeTree(t, map[string]string{"a.md": "a\n"})
	if err := os.Symlink(filepath.Join(root, "missing"), filepath.Join(root, "dangling")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	inv, err := New().Scan(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, []string{"a.md"}, paths(inv.Files))
	require.Len(t, inv.Warnings, 1)
	assert.Equal(t, "dangling", inv.Warnings[0].Path)
}

func TestScan_UnreadableDirectoryIsWarning(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission checks do not apply to root")
	}
	root := writeTree(t, map[string]string{
		"ok.md":          "ok\n",
		"secret/key.txt": "k\n",
	})
	secret := filepath.Join(root, "secret")
	require.NoError(t, os.Chmod(secret, 0000))
	defer func() { _ = os.Chmod(secret, 0755) }()

	inv, err := New().Scan(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, []string{"ok.md"}, paths(inv.Files))
	require.Len(t, inv.Warnings, 1)
	assert.Equal(t, "secret", inv.Warnings[0].Path)
}

func TestScan_Excludes(t *testing.T) {
	root := writeTree(t, map[string]string{
		".git/config":           "x\n",
		"node_modules/m/x.js":   "x\n",
		".doclife/reports/r.md": "r\n",
		"keep.md":               "k\n",
		"gen.pb.go":             "package x\n",
	})

	s := New()
	s.ExcludePaths = append(s.ExcludePaths, "*.pb.go")
	inv, err := s.Scan(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, []string{"keep.md"}, paths(inv.Files))
}

func TestScan_FreshnessStamp(t *testing.T) {
	root := writeTree(t, map[string]string{
		"README.md": "# x\n\n**Last Updated:** 2024-02-03\n",
	})

	inv, err := New().Scan(context.Background(), root)
	require.NoError(t, err)

	require.Len(t, inv.Files, 1)
	require.NotNil(t, inv.Files[0].FreshnessStamp)
	assert.Equal(t, "2024-02-03", inv.Files[0].FreshnessStamp.Format("2006-01-02"))
	assert.Equal(t, 3, inv.Files[0].SizeLines)
}

func TestScan_RootErrors(t *testing.T) {
	_, err := New().Scan(context.Background(), filepath.Join(t.TempDir(), "nope"))
	assert.True(t, errors.Is(err, ErrRootUnreadable))

	file := filepath.Join(t.TempDir(), "f.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))
	_, err = New().Scan(context.Background(), file)
	assert.True(t, errors.Is(err, ErrRootUnreadable))
}

func TestScan_Timestamp(t *testing.T) {
	root := writeTree(t, map[string]string{"a.md": "a\n"})
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	s := New()
	s.Now = func() time.Time { return fixed }
	inv, err := s.Scan(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, fixed, inv.ScannedAt)
}

func TestMatchesPattern(t *testing.T) {
	tests := []struct {
		name    string
		relPath string
		pattern string
		isDir   bool
		want    bool
	}{
		{name: "dir at root", relPath: "vendor", pattern: "vendor/", isDir: true, want: true},
		{name: "nested dir", relPath: "src/vendor", pattern: "vendor/", isDir: true, want: true},
		{name: "file inside dir", relPath: "vendor/a.go", pattern: "vendor/", want: true},
		{name: "similar name", relPath: "vendorized", pattern: "vendor/", isDir: true, want: false},
		{name: "glob", relPath: "a/b.pb.go", pattern: "*.pb.go", want: true},
		{name: "glob miss", relPath: "a/b.go", pattern: "*.pb.go", want: false},
		{name: "exact", relPath: "build/out", pattern: "build", want: true},
		{name: "exact miss", relPath: "builds", pattern: "build", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, matchesPattern(tt.relPath, tt.pattern, tt.isDir))
		})
	}
}

func TestScan_SymlinkAliasKeepsRealPath(t *testing.T) {
	root := writeTree(t, map[string]string{
		"docs/guide.md": "guide\n",
	})
	if err := os.Symlink(filepath.Join(root, "docs"), filepath.Join(root, "a-docs")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	inv, err := New().Scan(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, []string{"docs/guide.md"}, paths(inv.Files))
	assert.Equal(t, []string{"docs"}, inv.Directories)
}

func TestScan_SymlinkToOutsideDirectoryIsWalked(t *testing.T) {
	outside := writeTree(t, map[string]string{"shared.md": "s\n"})
	root := writeTree(t, map[string]string{"z/local.md": "l\n"})
	if err := os.Symlink(outside, filepath.Join(root, "a-shared")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	inv, err := New().Scan(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, []string{"z/local.md", "a-shared/shared.md"}, paths(inv.Files))
}

func TestScan_SkipsFamiliesWithoutCommentSyntax(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a.cob": "       IDENTIFICATION DIVISION.\n",
		"b.py":  "# doc\nx = 1\n",
	})

	s := New()
	s.Classifier = classify.New(map[string]types.LanguageFamily{
		".cob": types.LanguageFamily("cobol"),
		".py":  types.FamilyPython,
	})
	inv, err := s.Scan(context.Background(), root)
	require.NoError(t, err)

	require.Len(t, inv.Files, 2)
	assert.Equal(t, types.CategorySourceCode, inv.Files[0].Category)
	assert.Equal(t, 1, inv.Files[0].SizeLines)
	require.Len(t, inv.Samples, 1)
	assert.Equal(t, "b.py", inv.Samples[0].Path)
}

func TestScan_LineCountsForUnsampledFiles(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a.go":      "package a\n\nfunc A() {}\n",
		"b.go":      "package b\n",
		"blob.bin":  "\x00\x01\x02\n\n\n",
		"notes.txt": "one\ntwo\nthree",
	})

	s := New()
	s.SampleCap = 1
	inv, err := s.Scan(context.Background(), root)
	require.NoError(t, err)

	lines := map[string]int{}
	for _, f := range inv.Files {
		lines[f.Path] = f.SizeLines
	}
	assert.Equal(t, map[string]int{"a.go": 3, "b.go": 1, "blob.bin": 0, "notes.txt": 3}, lines)
	require.Len(t, inv.Samples, 1)
	assert.Equal(t, 3, inv.Samples[0].TotalLineCount)
}
