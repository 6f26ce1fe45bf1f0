// Package scaffold creates and maintains per-project documentation skeletons.
//
// Each project lives in its own directory under the projects directory, with
// its manifest at .doclife/manifest.yaml. Every initialized project is
// appended to a shared index file that is never rewritten.
package scaffold

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/steveyegge/doclife/internal/freshness"
	"github.com/steveyegge/doclife/internal/gaps"
	"github.com/steveyegge/doclife/internal/types"
)

var (
	// ErrAlreadyExists is returned by Init when the project directory is present.
	ErrAlreadyExists = errors.New("project already exists")

	// ErrNotFound is returned when a project was never initialized.
	ErrNotFound = errors.New("project not found")

	ErrUnknownTemplateSet = errors.New("unknown template set")
	ErrInvalidScope       = errors.New("invalid refresh scope")
	ErrInvalidName        = errors.New("invalid project name")
)

const (
	// DefaultIndexFile is the shared project index inside the projects directory.
	DefaultIndexFile = "PROJECT_INDEX.md"

	metaDir      = ".doclife"
	manifestFile = "manifest.yaml"
	initReport   = "INIT_REPORT.md"
	indexHeader  = "# Project Index\n\nEvery documented project, in the order it was created.\n\n"
)

// Scaffolder initializes and refreshes projects under ProjectsDir.
type Scaffolder struct {
	ProjectsDir string
	IndexFile   string

	// FreshnessThreshold is the age after which a tracked document is stale
	FreshnessThreshold time.Duration

	// LinkCacheSize bounds the link validator cache used by Refresh (0 = default)
	LinkCacheSize int

	// Now supplies the current time (tests override it)
	Now func() time.Time
}

// New creates a scaffolder with default settings.
func New(projectsDir string) *Scaffolder {
	return &Scaffolder{
		ProjectsDir:        projectsDir,
		IndexFile:          DefaultIndexFile,
		FreshnessThreshold: gaps.DefaultFreshnessDays * 24 * time.Hour,
		Now:                time.Now,
	}
}

func (s *Scaffolder) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// ProjectDir is the directory for the project called name.
func (s *Scaffolder) ProjectDir(name string) string {
	return filepath.Join(s.ProjectsDir, Slugify(name))
}

// IndexPath is the shared project index file.
func (s *Scaffolder) IndexPath() string {
	index := s.IndexFile
	if index == "" {
		index = DefaultIndexFile
	}
	return filepath.Join(s.ProjectsDir, index)
}

// Init creates the project called name from the named template set. It never
// overwrites: an existing project directory fails with ErrAlreadyExists. The
// skeleton is built in a staging directory and renamed into place, so a
// failure leaves no partial project behind.
func (s *Scaffolder) Init(ctx context.Context, name, setName string) (*types.ProjectManifest, error) {
	slug := Slugify(name)
	if slug == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if setName == "" {
		setName = DefaultTemplateSet
	}
	set, err := LookupTemplateSet(setName)
	if err != nil {
		return nil, err
	}

	dir := filepath.Join(s.ProjectsDir, slug)
	if _, err := os.Lstat(dir); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyExists, dir)
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("checking project directory: %w", err)
	}

	if err := os.MkdirAll(s.ProjectsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create projects directory: %w", err)
	}

	staging := filepath.Join(s.ProjectsDir, fmt.Sprintf(".%s.staging-%s", slug, uuid.New().String()))
	if err := os.Mkdir(staging, 0755); err != nil {
		return nil, fmt.Errorf("failed to create staging directory: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = os.RemoveAll(staging)
		}
	}()

	now := s.now()
	vars := Vars{Name: name, Slug: slug, Date: now}

	manifest := &types.ProjectManifest{
		Name:        name,
		Slug:        slug,
		TemplateSet: set.Name,
		CreatedAt:   now.UTC(),
	}
	for _, f := range set.Files {
		manifest.RequiredDocs = append(manifest.RequiredDocs, f.Target)
	}
	manifest.IndexEntry = fmt.Sprintf("- [%s](%s/README.md) | template: %s | created: %s",
		name, slug, set.Name, now.Format(freshness.DateLayout))
	if err := manifest.Validate(); err != nil {
		return nil, fmt.Errorf("invalid manifest: %w", err)
	}

	if err := s.build(ctx, staging, set, vars, manifest); err != nil {
		return nil, err
	}

	if err := os.Rename(staging, dir); err != nil {
		if _, statErr := os.Lstat(dir); statErr == nil {
			return nil, fmt.Errorf("%w: %s", ErrAlreadyExists, dir)
		}
		return nil, fmt.Errorf("failed to move project into place: %w", err)
	}
	committed = true

	if err := s.appendIndex(manifest.IndexEntry); err != nil {
		if rmErr := os.RemoveAll(dir); rmErr != nil {
			slog.Warn("failed to roll back project directory", "path", dir, "error", rmErr)
		}
		return nil, err
	}
	return manifest, nil
}

// build writes the skeleton, rendered templates, manifest and init report into dir.
func (s *Scaffolder) build(ctx context.Context, dir string, set TemplateSet, vars Vars, manifest *types.ProjectManifest) error {
	for _, d := range append([]string{metaDir}, set.Dirs...) {
		if err := os.MkdirAll(filepath.Join(dir, filepath.FromSlash(d)), 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", d, err)
		}
	}

	for _, f := range set.Files {
		if err := ctx.Err(); err != nil {
			return err
		}
		content, err := Render(f, vars)
		if err != nil {
			return err
		}
		target := filepath.Join(dir, filepath.FromSlash(f.Target))
		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return fmt.Errorf("failed to create directory for %s: %w", f.Target, err)
		}
		if err := os.WriteFile(target, []byte(content), 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", f.Target, err)
		}
	}

	data, err := yaml.Marshal(manifest)
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, metaDir, manifestFile), data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}

	report := renderInitReport(manifest, set)
	if err := os.WriteFile(filepath.Join(dir, metaDir, initReport), []byte(report), 0644); err != nil {
		return fmt.Errorf("failed to write init report: %w", err)
	}
	return nil
}

func renderInitReport(m *types.ProjectManifest, set TemplateSet) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s: Documentation Initialized\n\n", m.Name)
	fmt.Fprintf(&b, "- **Created:** %s\n", m.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "- **Template set:** %s\n\n", set.Name)

	b.WriteString("## Created Files\n\n")
	for _, doc := range m.RequiredDocs {
		fmt.Fprintf(&b, "- `%s`\n", doc)
	}

	b.WriteString("\n## Documentation Checklist\n\n")
	for _, doc := range m.RequiredDocs {
		fmt.Fprintf(&b, "- [ ] Replace the placeholder sections in `%s`\n", doc)
	}
	b.WriteString("- [ ] Link the README from the team's service catalog\n")
	fmt.Fprintf(&b, "- [ ] Run `doclife update %s` after the first release\n", m.Slug)
	return b.String()
}

// appendIndex adds one line to the shared index, creating it with a header.
func (s *Scaffolder) appendIndex(entry string) error {
	f, err := os.OpenFile(s.IndexPath(), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open project index: %w", err)
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat project index: %w", err)
	}
	line := entry + "\n"
	if info.Size() == 0 {
		line = indexHeader + line
	}
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("failed to append to project index: %w", err)
	}
	return nil
}

// ReadIndex returns the index entries in the order they were appended.
func (s *Scaffolder) ReadIndex() ([]string, error) {
	f, err := os.Open(s.IndexPath())
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open project index: %w", err)
	}
	defer func() { _ = f.Close() }()

	var entries []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "- ") {
			entries = append(entries, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read project index: %w", err)
	}
	return entries, nil
}

// LoadManifest reads the manifest of the project called name.
func (s *Scaffolder) LoadManifest(name string) (*types.ProjectManifest, error) {
	dir := s.ProjectDir(name)
	data, err := os.ReadFile(filepath.Join(dir, metaDir, manifestFile))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s (run 'doclife init %s' first)", ErrNotFound, name, name)
	}
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	var m types.ProjectManifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("invalid manifest in %s: %w", dir, err)
	}
	return &m, nil
}
