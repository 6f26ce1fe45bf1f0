package scaffold

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/steveyegge/doclife/internal/freshness"
	"github.com/steveyegge/doclife/internal/gaps"
	"github.com/steveyegge/doclife/internal/links"
	"github.com/steveyegge/doclife/internal/report"
	"github.com/steveyegge/doclife/internal/scanner"
	"github.com/steveyegge/doclife/internal/types"
)

const updatesDir = ".doclife/updates"

// ProjectStatus describes where a project is in its lifecycle.
type ProjectStatus struct {
	Name      string
	State     types.ProjectState
	Manifest  *types.ProjectManifest
	CheckedAt time.Time

	// Stale and Missing list tracked documents needing attention
	Stale   []string
	Missing []string
}

// Status reports the state of the project called name. A project that was
// never initialized is StateNotInitialized, not an error. A project whose docs
// are all current is StateInitialized until its first refresh, then StateFresh.
func (s *Scaffolder) Status(name string) (*ProjectStatus, error) {
	return s.status(name, false)
}

func (s *Scaffolder) status(name string, refreshing bool) (*ProjectStatus, error) {
	status := &ProjectStatus{Name: name, CheckedAt: s.now()}

	if _, err := os.Stat(s.ProjectDir(name)); errors.Is(err, os.ErrNotExist) {
		status.State = types.StateNotInitialized
		return status, nil
	}
	m, err := s.LoadManifest(name)
	if err != nil {
		return nil, err
	}
	status.Manifest = m

	dir := s.ProjectDir(name)
	for _, doc := range m.RequiredDocs {
		f, ok, err := readTracked(dir, doc)
		if err != nil {
			return nil, err
		}
		switch {
		case !ok:
			status.Missing = append(status.Missing, doc)
		case gaps.IsStale(f, status.CheckedAt, s.FreshnessThreshold):
			status.Stale = append(status.Stale, doc)
		}
	}

	switch {
	case len(status.Stale) > 0 || len(status.Missing) > 0:
		status.State = types.StateStale
	case refreshing || s.wasRefreshed(dir):
		status.State = types.StateFresh
	default:
		status.State = types.StateInitialized
	}
	return status, nil
}

// wasRefreshed reports whether an update has ever been written for the project.
func (s *Scaffolder) wasRefreshed(projectDir string) bool {
	info, err := os.Stat(filepath.Join(projectDir, filepath.FromSlash(updatesDir)))
	return err == nil && info.IsDir()
}

// readTracked loads the freshness facts for one tracked document. ok is false
// when the document does not exist.
func readTracked(projectDir, rel string) (types.DiscoveredFile, bool, error) {
	p := filepath.Join(projectDir, filepath.FromSlash(rel))
	info, err := os.Stat(p)
	if errors.Is(err, os.ErrNotExist) {
		return types.DiscoveredFile{}, false, nil
	}
	if err != nil {
		return types.DiscoveredFile{}, false, fmt.Errorf("checking %s: %w", rel, err)
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return types.DiscoveredFile{}, false, fmt.Errorf("reading %s: %w", rel, err)
	}

	f := types.DiscoveredFile{Path: rel, Category: types.CategoryMarkdownDoc, ModifiedAt: info.ModTime()}
	if stamp, ok := freshness.Parse(string(data)); ok {
		f.FreshnessStamp = &stamp
	}
	return f, true, nil
}

// Refresh re-validates an initialized project within scope. It rewrites the
// freshness stamp of outdated tracked documents and nothing else; every other
// change is returned as a proposed edit and written to a reviewable script.
func (s *Scaffolder) Refresh(ctx context.Context, name string, scope types.RefreshScope) (*types.UpdateSummary, error) {
	if scope == "" {
		scope = types.ScopeAll
	}
	if !scope.IsValid() {
		return nil, fmt.Errorf("%w: %q (use all, api, architecture, readme or guides)", ErrInvalidScope, scope)
	}

	before, err := s.Status(name)
	if err != nil {
		return nil, err
	}
	if before.State == types.StateNotInitialized {
		return nil, fmt.Errorf("%w: %s (run 'doclife init %s' first)", ErrNotFound, name, name)
	}
	m := before.Manifest
	dir := s.ProjectDir(name)
	now := before.CheckedAt

	summary := &types.UpdateSummary{
		Project:     m.Name,
		Scope:       scope,
		RefreshedAt: now,
		StateBefore: before.State,
		Restamped:   []string{},
		Gaps:        []types.Gap{},
		BrokenLinks: []types.BrokenLink{},
		Edits:       []types.ProposedEdit{},
	}

	set, setErr := LookupTemplateSet(m.TemplateSet)
	vars := Vars{Name: m.Name, Slug: m.Slug, Date: now}
	detector := gaps.NewDetector()
	detector.FreshnessThreshold = s.FreshnessThreshold

	for _, doc := range m.RequiredDocs {
		if !scope.Includes(ScopeOf(doc)) {
			continue
		}
		f, ok, err := readTracked(dir, doc)
		if err != nil {
			return nil, err
		}

		if !ok {
			summary.Gaps = append(summary.Gaps, types.Gap{
				Kind:        types.GapMissingRequiredDoc,
				SubjectPath: doc,
				Detail:      "tracked document was removed",
			})
			edit := types.ProposedEdit{Kind: types.EditCreateFile, Path: doc, Reason: "recreate missing tracked document from template"}
			if setErr == nil {
				if tf, found := set.fileFor(doc); found {
					if edit.Content, err = Render(tf, vars); err != nil {
						return nil, err
					}
				}
			}
			summary.Edits = append(summary.Edits, edit)
			continue
		}

		outdated := detector.Outdated([]types.DiscoveredFile{f}, now)
		if len(outdated) == 0 {
			continue
		}
		summary.Gaps = append(summary.Gaps, outdated...)
		if err := restamp(filepath.Join(dir, filepath.FromSlash(doc)), now); err != nil {
			return nil, err
		}
		summary.Restamped = append(summary.Restamped, doc)
	}

	broken, err := s.validateLinks(ctx, dir, scope)
	if err != nil {
		return nil, err
	}
	summary.BrokenLinks = broken
	for _, l := range broken {
		summary.Edits = append(summary.Edits, types.ProposedEdit{
			Kind:   types.EditReviewLink,
			Path:   l.SourceDoc,
			Reason: fmt.Sprintf("line %d: %s (%s)", l.Line, l.TargetReference, l.Reason),
		})
	}

	after, err := s.status(name, true)
	if err != nil {
		return nil, err
	}
	summary.StateAfter = after.State

	if err := s.writeUpdateArtifacts(dir, summary); err != nil {
		return nil, err
	}
	return summary, nil
}

// validateLinks checks the links of every document in the project within scope.
func (s *Scaffolder) validateLinks(ctx context.Context, dir string, scope types.RefreshScope) ([]types.BrokenLink, error) {
	inv, err := scanner.New().Scan(ctx, dir)
	if err != nil {
		return nil, fmt.Errorf("scanning project: %w", err)
	}
	var docs []types.DiscoveredFile
	for _, f := range inv.FilesIn(types.CategoryReadme, types.CategoryMarkdownDoc) {
		if scope.Includes(ScopeOf(f.Path)) {
			docs = append(docs, f)
		}
	}

	v, err := links.New(dir, s.LinkCacheSize)
	if err != nil {
		return nil, err
	}
	broken := v.Validate(docs)
	if broken == nil {
		broken = []types.BrokenLink{}
	}
	return broken, nil
}

// restamp rewrites only the freshness stamp of the file at p.
func restamp(p string, now time.Time) error {
	info, err := os.Stat(p)
	if err != nil {
		return fmt.Errorf("checking %s: %w", p, err)
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return fmt.Errorf("reading %s: %w", p, err)
	}
	updated := freshness.Restamp(string(data), now)
	if err := os.WriteFile(p, []byte(updated), info.Mode().Perm()); err != nil {
		return fmt.Errorf("restamping %s: %w", p, err)
	}
	return nil
}

// writeUpdateArtifacts writes the update report and the apply-changes script
// under the project's .doclife/updates directory and records their paths.
func (s *Scaffolder) writeUpdateArtifacts(dir string, summary *types.UpdateSummary) error {
	out := filepath.Join(dir, filepath.FromSlash(updatesDir))
	if err := os.MkdirAll(out, 0755); err != nil {
		return fmt.Errorf("failed to create updates directory: %w", err)
	}
	stamp := summary.RefreshedAt.UTC().Format(report.TimestampLayout)

	reportPath, err := createUnique(out, "UPDATE_REPORT-"+stamp, ".md", []byte(RenderUpdateReport(summary)), 0644)
	if err != nil {
		return err
	}
	summary.ReportPath = reportPath

	scriptPath, err := createUnique(out, "apply-changes-"+stamp, ".sh", []byte(RenderScript(summary.Project, summary.Edits)), 0755)
	if err != nil {
		return err
	}
	summary.ScriptPath = scriptPath
	return nil
}

// createUnique writes data to dir/stem+ext, adding a numeric suffix instead of
// overwriting an existing file.
func createUnique(dir, stem, ext string, data []byte, perm os.FileMode) (string, error) {
	for n := 0; n < 1000; n++ {
		name := stem + ext
		if n > 0 {
			name = fmt.Sprintf("%s-%d%s", stem, n, ext)
		}
		p := filepath.Join(dir, name)
		f, err := os.OpenFile(p, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
		if errors.Is(err, os.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("failed to create %s: %w", name, err)
		}
		if _, err := f.Write(data); err != nil {
			_ = f.Close()
			_ = os.Remove(p)
			return "", fmt.Errorf("failed to write %s: %w", name, err)
		}
		if err := f.Close(); err != nil {
			return "", fmt.Errorf("failed to close %s: %w", name, err)
		}
		// O_CREATE permissions are filtered by the umask
		if err := os.Chmod(p, perm); err != nil {
			return "", fmt.Errorf("failed to set permissions on %s: %w", name, err)
		}
		return p, nil
	}
	return "", fmt.Errorf("too many files named %s in %s", stem, dir)
}

// RenderUpdateReport renders the human-readable outcome of a refresh.
func RenderUpdateReport(u *types.UpdateSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s: Documentation Update\n\n", u.Project)
	fmt.Fprintf(&b, "- **Refreshed at:** %s\n", u.RefreshedAt.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "- **Scope:** %s\n", u.Scope)
	fmt.Fprintf(&b, "- **State:** %s -> %s\n\n", u.StateBefore, u.StateAfter)

	b.WriteString("## Restamped\n\n")
	if len(u.Restamped) == 0 {
		b.WriteString("No outdated documents in scope.\n")
	}
	for _, p := range u.Restamped {
		fmt.Fprintf(&b, "- `%s`\n", p)
	}

	b.WriteString("\n## Findings\n\n")
	if len(u.Gaps) == 0 && len(u.BrokenLinks) == 0 {
		b.WriteString("No gaps identified.\n")
	}
	for _, g := range u.Gaps {
		fmt.Fprintf(&b, "- %s `%s`: %s\n", g.Kind, g.SubjectPath, g.Detail)
	}
	for _, l := range u.BrokenLinks {
		fmt.Fprintf(&b, "- broken link in `%s` line %d: `%s` (%s)\n", l.SourceDoc, l.Line, l.TargetReference, l.Reason)
	}

	b.WriteString("\n## Proposed Changes\n\n")
	if len(u.Edits) == 0 {
		b.WriteString("None.\n")
	} else {
		b.WriteString("Review and run the generated `apply-changes` script next to this report.\n\n")
	}
	for _, e := range u.Edits {
		fmt.Fprintf(&b, "- %s `%s`: %s\n", e.Kind, e.Path, e.Reason)
	}
	return b.String()
}
