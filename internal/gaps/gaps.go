// Package gaps finds missing and stale documentation in a scanned tree.
package gaps

import (
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/steveyegge/doclife/internal/freshness"
	"github.com/steveyegge/doclife/internal/scanner"
	"github.com/steveyegge/doclife/internal/types"
)

// DefaultFreshnessDays is the default age after which a document is stale.
const DefaultFreshnessDays = 30

// RequiredDoc names a document every project is expected to carry.
type RequiredDoc struct {
	// Name identifies the requirement (e.g. "readme")
	Name string `yaml:"name" validate:"required"`

	// Expected is the path reported when the document is missing
	Expected string `yaml:"expected" validate:"required"`

	// Patterns are case-insensitive globs; without a "/" they match the base
	// name at any depth, with a "/" they match the whole relative path
	Patterns []string `yaml:"patterns" validate:"min=1,dive,required"`

	// RootOnly restricts matches to files at the scan root
	RootOnly bool `yaml:"root_only"`
}

// DefaultRequiredDocs is the baseline required set.
func DefaultRequiredDocs() []RequiredDoc {
	return []RequiredDoc{
		{Name: "readme", Expected: "README.md", Patterns: []string{"readme*", "*.readme"}, RootOnly: true},
		{Name: "architecture", Expected: "docs/ARCHITECTURE.md", Patterns: []string{"architecture*"}},
		{Name: "api", Expected: "docs/API.md", Patterns: []string{"api.md", "api-*.md", "api_*.md", "openapi.*", "swagger.*"}},
		{Name: "contributing", Expected: "CONTRIBUTING.md", Patterns: []string{"contributing*"}},
		{Name: "changelog", Expected: "CHANGELOG.md", Patterns: []string{"changelog*", "history*", "changes*"}},
	}
}

// DefaultDocDirectories are the conventional documentation directory names.
func DefaultDocDirectories() []string {
	return []string{"docs", "doc", "documentation", "wiki"}
}

// Detector evaluates an inventory against the required-doc rules.
type Detector struct {
	RequiredDocs       []RequiredDoc
	DocDirectories     []string
	FreshnessThreshold time.Duration
}

// NewDetector creates a detector with the baseline rules.
func NewDetector() *Detector {
	return &Detector{
		RequiredDocs:       DefaultRequiredDocs(),
		DocDirectories:     DefaultDocDirectories(),
		FreshnessThreshold: DefaultFreshnessDays * 24 * time.Hour,
	}
}

// Detect returns every gap in inv. Staleness is judged against inv.ScannedAt
// for all documentation files. Never fails; no gaps is a valid outcome.
func (d *Detector) Detect(inv *scanner.Inventory) []types.Gap {
	var gaps []types.Gap

	gaps = append(gaps, d.Missing(inv.Files)...)

	if !d.hasDocDirectory(inv.Directories) {
		gaps = append(gaps, types.Gap{
			Kind:   types.GapNoDocDirectory,
			Detail: fmt.Sprintf("no documentation directory found (looked for %s)", strings.Join(d.DocDirectories, ", ")),
		})
	}

	counts := inv.Count()
	if counts[types.CategorySourceCode] > 0 && counts[types.CategoryAPISpec] == 0 {
		gaps = append(gaps, types.Gap{
			Kind: types.GapNoAPISpec,
			Detail: fmt.Sprintf("%d source files but no API specification (OpenAPI, Swagger or GraphQL)",
				counts[types.CategorySourceCode]),
		})
	}

	gaps = append(gaps, d.Outdated(inv.FilesIn(types.CategoryReadme, types.CategoryMarkdownDoc, types.CategoryAPISpec), inv.ScannedAt)...)

	if len(gaps) == 0 {
		slog.Info("no gaps identified", "root", inv.Root)
	}
	return gaps
}

// Missing returns one gap per required document with no matching file.
func (d *Detector) Missing(files []types.DiscoveredFile) []types.Gap {
	var gaps []types.Gap
	for _, req := range d.RequiredDocs {
		if Find(req, files) != nil {
			continue
		}
		gaps = append(gaps, types.Gap{
			Kind:        types.GapMissingRequiredDoc,
			SubjectPath: req.Expected,
			Detail:      fmt.Sprintf("required %s document not found", req.Name),
		})
	}
	return gaps
}

// Outdated returns a gap for each file last updated longer ago than the threshold.
func (d *Detector) Outdated(files []types.DiscoveredFile, now time.Time) []types.Gap {
	var gaps []types.Gap
	for _, f := range files {
		if !IsStale(f, now, d.FreshnessThreshold) {
			continue
		}
		last := f.LastUpdated()
		gaps = append(gaps, types.Gap{
			Kind:        types.GapOutdated,
			SubjectPath: f.Path,
			Detail: fmt.Sprintf("last updated %s (%d days ago, threshold %d days)",
				last.Format(freshness.DateLayout),
				freshness.Days(freshness.Age(last, now)),
				freshness.Days(d.FreshnessThreshold)),
		})
	}
	return gaps
}

// IsStale reports whether f is older than threshold at now.
func IsStale(f types.DiscoveredFile, now time.Time, threshold time.Duration) bool {
	return freshness.Age(f.LastUpdated(), now) > threshold
}

// Find returns the first file satisfying req, or nil.
func Find(req RequiredDoc, files []types.DiscoveredFile) *types.DiscoveredFile {
	for i := range files {
		if matches(req, files[i].Path) {
			return &files[i]
		}
	}
	return nil
}

func matches(req RequiredDoc, relPath string) bool {
	lower := strings.ToLower(relPath)
	if req.RootOnly && strings.Contains(lower, "/") {
		return false
	}
	base := path.Base(lower)
	for _, pattern := range req.Patterns {
		pattern = strings.ToLower(pattern)
		target := base
		if strings.Contains(pattern, "/") {
			target = lower
		}
		if ok, _ := path.Match(pattern, target); ok {
			return true
		}
	}
	return false
}

// hasDocDirectory checks top-level directories against the conventional names.
func (d *Detector) hasDocDirectory(dirs []string) bool {
	for _, dir := range dirs {
		if strings.Contains(dir, "/") {
			continue
		}
		for _, name := range d.DocDirectories {
			if strings.EqualFold(dir, name) {
				return true
			}
		}
	}
	return false
}
