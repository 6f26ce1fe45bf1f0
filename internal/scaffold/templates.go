package scaffold

import (
	"embed"
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/steveyegge/doclife/internal/freshness"
	"github.com/steveyegge/doclife/internal/types"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Placeholders substituted in every template.
const (
	PlaceholderName = "{Project Name}"
	PlaceholderSlug = "{project-name}"
	PlaceholderDate = "{DATE}"
)

// TemplateFile maps one embedded template to its place in a project.
type TemplateFile struct {
	Template string
	Target   string
}

// TemplateSet is a named group of templates and the skeleton directories they need.
type TemplateSet struct {
	Name        string
	Description string
	Dirs        []string
	Files       []TemplateFile
}

// DefaultTemplateSet is used when init is not given a set.
const DefaultTemplateSet = "standard"

var templateSets = []TemplateSet{
	{
		Name:        "standard",
		Description: "README, changelog, architecture, API reference, contributing/development/deployment guides and a first decision record",
		Dirs:        []string{"docs/architecture", "docs/api", "docs/guides", "docs/decisions"},
		Files: []TemplateFile{
			{Template: "README.md.tmpl", Target: "README.md"},
			{Template: "CHANGELOG.md.tmpl", Target: "CHANGELOG.md"},
			{Template: "ARCHITECTURE.md.tmpl", Target: "docs/architecture/ARCHITECTURE.md"},
			{Template: "API.md.tmpl", Target: "docs/api/API.md"},
			{Template: "CONTRIBUTING.md.tmpl", Target: "docs/guides/CONTRIBUTING.md"},
			{Template: "DEVELOPMENT.md.tmpl", Target: "docs/guides/DEVELOPMENT.md"},
			{Template: "DEPLOYMENT.md.tmpl", Target: "docs/guides/DEPLOYMENT.md"},
			{Template: "ADR-0001.md.tmpl", Target: "docs/decisions/ADR-0001-record-architecture-decisions.md"},
		},
	},
	{
		Name:        "minimal",
		Description: "README, changelog and architecture overview",
		Dirs:        []string{"docs/architecture"},
		Files: []TemplateFile{
			{Template: "README-minimal.md.tmpl", Target: "README.md"},
			{Template: "CHANGELOG.md.tmpl", Target: "CHANGELOG.md"},
			{Template: "ARCHITECTURE.md.tmpl", Target: "docs/architecture/ARCHITECTURE.md"},
		},
	},
}

// TemplateSets lists the available sets.
func TemplateSets() []TemplateSet {
	out := make([]TemplateSet, len(templateSets))
	copy(out, templateSets)
	return out
}

// LookupTemplateSet finds a set by name.
func LookupTemplateSet(name string) (TemplateSet, error) {
	for _, set := range templateSets {
		if set.Name == name {
			return set, nil
		}
	}
	return TemplateSet{}, fmt.Errorf("%w: %q", ErrUnknownTemplateSet, name)
}

// fileFor returns the template that produces target, if the set has one.
func (s TemplateSet) fileFor(target string) (TemplateFile, bool) {
	for _, f := range s.Files {
		if f.Target == target {
			return f, true
		}
	}
	return TemplateFile{}, false
}

// Vars are the values substituted into templates.
type Vars struct {
	Name string
	Slug string
	Date time.Time
}

// replacer substitutes all placeholders in one pass, so values that happen
// to contain placeholder text are never expanded again.
func (v Vars) replacer() *strings.Replacer {
	return strings.NewReplacer(
		PlaceholderName, v.Name,
		PlaceholderSlug, v.Slug,
		PlaceholderDate, v.Date.Format(freshness.DateLayout),
	)
}

// Substitute replaces the placeholders in text.
func Substitute(text string, v Vars) string {
	return v.replacer().Replace(text)
}

// Render reads an embedded template and substitutes v into it.
func Render(tf TemplateFile, v Vars) (string, error) {
	data, err := templateFS.ReadFile(path.Join("templates", tf.Template))
	if err != nil {
		return "", fmt.Errorf("reading template %s: %w", tf.Template, err)
	}
	return Substitute(string(data), v), nil
}

var slugInvalid = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases name and joins its words with hyphens:
// "Payments API v2" becomes "payments-api-v2".
func Slugify(name string) string {
	return strings.Trim(slugInvalid.ReplaceAllString(strings.ToLower(name), "-"), "-")
}

// ScopeOf returns the refresh scope a project document belongs to. Documents
// outside the known layout are only refreshed with ScopeAll.
func ScopeOf(rel string) types.RefreshScope {
	lower := strings.ToLower(rel)
	base := path.Base(lower)
	switch {
	case !strings.Contains(lower, "/") && (strings.HasPrefix(base, "readme") || strings.HasPrefix(base, "changelog")):
		return types.ScopeReadme
	case strings.HasPrefix(lower, "docs/api/"):
		return types.ScopeAPI
	case strings.HasPrefix(lower, "docs/architecture/"), strings.HasPrefix(lower, "docs/decisions/"):
		return types.ScopeArchitecture
	case strings.HasPrefix(lower, "docs/guides/"):
		return types.ScopeGuides
	}
	return types.ScopeAll
}
