// Package scanner walks a source tree and builds the inventory for a discovery pass.
//
// The walk is depth-first in lexical order (subdirectories, then files), so
// two scans of an unchanged tree produce the same ordered inventory. Symlinked
// directories are followed once, after the real tree: canonical paths already
// visited are skipped.
package scanner

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/steveyegge/doclife/internal/classify"
	"github.com/steveyegge/doclife/internal/coverage"
	"github.com/steveyegge/doclife/internal/freshness"
	"github.com/steveyegge/doclife/internal/types"
)

// DefaultSampleCap is the number of code files routed to the coverage estimator.
const DefaultSampleCap = 100

const (
	// binarySniffLen bytes are checked for NUL to spot binary files
	binarySniffLen = 8000
	readBufferSize = 64 * 1024
)

// ErrRootUnreadable is returned when the scan root itself cannot be read.
var ErrRootUnreadable = errors.New("scan root unreadable")

// DefaultExcludePaths are skipped unless the caller overrides them.
func DefaultExcludePaths() []string {
	return []string{
		".git/",
		".doclife/",
		"node_modules/",
		"vendor/",
	}
}

// Inventory is everything one scan learned about a tree. It is built once
// per pass and handed to each later stage.
type Inventory struct {
	Root      string
	ScannedAt time.Time

	Files   []types.DiscoveredFile
	Samples []types.CoverageSample

	// Directories holds every visited directory, relative and slash-separated
	Directories []string

	Warnings []types.ScanWarning
}

// FilesIn returns the files whose category is one of cats, in scan order.
func (inv *Inventory) FilesIn(cats ...types.Category) []types.DiscoveredFile {
	var out []types.DiscoveredFile
	for _, f := range inv.Files {
		for _, c := range cats {
			if f.Category == c {
				out = append(out, f)
				break
			}
		}
	}
	return out
}

// Count returns the number of files per category.
func (inv *Inventory) Count() map[types.Category]int {
	counts := make(map[types.Category]int, len(types.AllCategories))
	for _, c := range types.AllCategories {
		counts[c] = 0
	}
	for _, f := range inv.Files {
		counts[f.Category]++
	}
	return counts
}

// Scanner walks trees. Configure it, then call Scan.
type Scanner struct {
	// SampleCap bounds how many code files are sampled for coverage (first N in walk order)
	SampleCap int

	// ExcludePaths are skipped (see matchesPattern for the pattern forms)
	ExcludePaths []string

	Classifier *classify.Classifier

	// Now supplies the scan timestamp (tests override it)
	Now func() time.Time
}

// New creates a scanner with default settings.
func New() *Scanner {
	return &Scanner{
		SampleCap:    DefaultSampleCap,
		ExcludePaths: DefaultExcludePaths(),
		Classifier:   classify.New(nil),
		Now:          time.Now,
	}
}

// walk carries the state of a single scan.
type walk struct {
	s       *Scanner
	inv     *Inventory
	visited map[string]bool

	// aliases are symlinked directories, walked after every real directory
	aliases []pendingDir
}

type pendingDir struct {
	abs string
	rel string
}

// Scan walks root and returns its inventory. Unreadable entries become
// warnings; only an unreadable root is an error.
func (s *Scanner) Scan(ctx context.Context, root string) (*Inventory, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("invalid root path %q: %w", root, err)
	}

	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRootUnreadable, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrRootUnreadable, absRoot)
	}
	if _, err := os.ReadDir(absRoot); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRootUnreadable, err)
	}

	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	if s.Classifier == nil {
		s.Classifier = classify.New(nil)
	}

	w := &walk{
		s: s,
		inv: &Inventory{
			Root:      absRoot,
			ScannedAt: now(),
		},
		visited: make(map[string]bool),
	}

	if err := w.dir(ctx, absRoot, "."); err != nil {
		return nil, err
	}
	// A directory reached through an alias keeps its real path when the real
	// directory is also in the tree.
	for len(w.aliases) > 0 {
		next := w.aliases[0]
		w.aliases = w.aliases[1:]
		if err := w.dir(ctx, next.abs, next.rel); err != nil {
			return nil, err
		}
	}
	return w.inv, nil
}

// dir visits one directory: subdirectories first, then files, each in lexical order.
// Symlinked subdirectories are queued until the real tree has been walked.
func (w *walk) dir(ctx context.Context, absDir, relDir string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	canonical, err := filepath.EvalSymlinks(absDir)
	if err != nil {
		w.warn(relDir, err)
		return nil
	}
	if w.visited[canonical] {
		slog.Debug("skipping already visited directory", "path", relDir, "canonical", canonical)
		return nil
	}
	w.visited[canonical] = true

	entries, err := os.ReadDir(absDir)
	if err != nil {
		w.warn(relDir, err)
		return nil
	}
	if relDir != "." {
		w.inv.Directories = append(w.inv.Directories, relDir)
	}

	var dirs, links, files []string
	for _, entry := range entries {
		name := entry.Name()
		rel := joinRel(relDir, name)
		absPath := filepath.Join(absDir, name)

		isDir := entry.IsDir()
		isRegular := entry.Type().IsRegular()
		isLink := entry.Type()&fs.ModeSymlink != 0
		if isLink {
			target, err := os.Stat(absPath)
			if err != nil {
				w.warn(rel, fmt.Errorf("broken symlink: %w", err))
				continue
			}
			isDir = target.IsDir()
			isRegular = target.Mode().IsRegular()
		}

		if w.s.shouldExclude(rel, isDir) {
			continue
		}

		switch {
		case isDir && isLink:
			links = append(links, name)
		case isDir:
			dirs = append(dirs, name)
		case isRegular:
			files = append(files, name)
		}
	}
	sort.Strings(dirs)
	sort.Strings(links)
	sort.Strings(files)

	for _, name := range dirs {
		if err := w.dir(ctx, filepath.Join(absDir, name), joinRel(relDir, name)); err != nil {
			return err
		}
	}
	for _, name := range links {
		w.aliases = append(w.aliases, pendingDir{abs: filepath.Join(absDir, name), rel: joinRel(relDir, name)})
	}
	for _, name := range files {
		w.file(filepath.Join(absDir, name), joinRel(relDir, name))
	}
	return nil
}

// file classifies one regular file and samples it for coverage when eligible.
// Only documents are read whole; other files are streamed.
func (w *walk) file(absPath, rel string) {
	f, err := os.Open(absPath)
	if err != nil {
		w.warn(rel, err)
		return
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		w.warn(rel, err)
		return
	}

	result := w.s.Classifier.Classify(rel)
	df := types.DiscoveredFile{
		Path:           rel,
		Category:       result.Category,
		LanguageFamily: result.Family,
		ModifiedAt:     info.ModTime(),
	}

	r := bufio.NewReaderSize(f, readBufferSize)
	head, err := r.Peek(binarySniffLen)
	if err != nil && !errors.Is(err, io.EOF) {
		w.warn(rel, err)
		return
	}

	var sample *types.CoverageSample
	switch {
	case bytes.IndexByte(head, 0) >= 0:
		// binary: no lines, no stamp, no sample
	case df.Category.IsDocumentation():
		data, err := io.ReadAll(r)
		if err != nil {
			w.warn(rel, err)
			return
		}
		text := string(data)
		df.SizeLines = countLines(text)
		if stamp, ok := freshness.Parse(text); ok {
			df.FreshnessStamp = &stamp
		}
	case w.shouldSample(df):
		est, err := coverage.Estimate(r, df.LanguageFamily)
		if err != nil {
			w.warn(rel, err)
			return
		}
		est.Path = rel
		df.SizeLines = est.TotalLineCount
		sample = &est
	default:
		n, err := countReaderLines(r)
		if err != nil {
			w.warn(rel, err)
			return
		}
		df.SizeLines = n
	}

	w.inv.Files = append(w.inv.Files, df)
	if sample != nil {
		w.inv.Samples = append(w.inv.Samples, *sample)
	}
}

// shouldSample routes code files with a known comment syntax to the
// estimator until the cap is reached.
func (w *walk) shouldSample(f types.DiscoveredFile) bool {
	return f.Category.IsCode() &&
		coverage.Supported(f.LanguageFamily) &&
		len(w.inv.Samples) < w.s.SampleCap
}

func (w *walk) warn(rel string, err error) {
	slog.Warn("skipping unreadable path", "path", rel, "error", err)
	w.inv.Warnings = append(w.inv.Warnings, types.ScanWarning{Path: rel, Message: err.Error()})
}

// shouldExclude checks a relative path against the exclude patterns.
func (s *Scanner) shouldExclude(relPath string, isDir bool) bool {
	for _, pattern := range s.ExcludePaths {
		if matchesPattern(relPath, pattern, isDir) {
			return true
		}
	}
	return false
}

// matchesPattern checks if a path matches an exclude pattern.
// Forms: "dir/" matches that directory at any depth, "*.ext" globs the base
// name, anything else matches the exact relative path or its subtree.
func matchesPattern(relPath, pattern string, isDir bool) bool {
	if strings.HasSuffix(pattern, "/") {
		name := strings.TrimSuffix(pattern, "/")
		if isDir && (relPath == name || strings.HasSuffix(relPath, "/"+name)) {
			return true
		}
		return strings.HasPrefix(relPath, pattern) || strings.Contains(relPath, "/"+pattern)
	}

	if strings.Contains(pattern, "*") {
		matched, _ := path.Match(pattern, path.Base(relPath))
		return matched
	}

	return relPath == pattern || strings.HasPrefix(relPath, pattern+"/")
}

func joinRel(dir, name string) string {
	if dir == "." {
		return name
	}
	return dir + "/" + name
}

// countReaderLines counts lines the way countLines does without holding the content.
func countReaderLines(r io.Reader) (int, error) {
	buf := make([]byte, readBufferSize)
	n := 0
	var last byte
	seen := false
	for {
		k, err := r.Read(buf)
		if k > 0 {
			n += bytes.Count(buf[:k], []byte{'\n'})
			last = buf[k-1]
			seen = true
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return 0, err
		}
	}
	if seen && last != '\n' {
		n++
	}
	return n, nil
}

func countLines(text string) int {
	if text == "" {
		return 0
	}
	n := strings.Count(text, "\n")
	if !strings.HasSuffix(text, "\n") {
		n++
	}
	return n
}
