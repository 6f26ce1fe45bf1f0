package gaps

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steveyegge/doclife/internal/scanner"
	"github.com/steveyegge/doclife/internal/types"
)

var scanTime = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

func file(p string, cat types.Category, modified time.Time) types.DiscoveredFile {
	return types.DiscoveredFile{Path: p, Category: cat, ModifiedAt: modified}
}

func kinds(gaps []types.Gap) map[types.GapKind]int {
	out := map[types.GapKind]int{}
	for _, g := range gaps {
		out[g.Kind]++
	}
	return out
}

func TestDetect_EmptyTree(t *testing.T) {
	inv := &scanner.Inventory{Root: "/x", ScannedAt: scanTime}

	gaps := NewDetector().Detect(inv)

	k := kinds(gaps)
	assert.Equal(t, 1, k[types.GapNoDocDirectory])
	assert.Equal(t, len(DefaultRequiredDocs()), k[types.GapMissingRequiredDoc])
	assert.Equal(t, 0, k[types.GapNoAPISpec])
	for _, g := range gaps {
		require.NoError(t, g.Validate())
	}
}

func TestDetect_MissingRequiredDocsNameExpectedFile(t *testing.T) {
	inv := &scanner.Inventory{
		ScannedAt: scanTime,
		Files: []types.DiscoveredFile{
			file("README.md", types.CategoryReadme, scanTime),
			file("docs/architecture.md", types.CategoryMarkdownDoc, scanTime),
			file("HISTORY.md", types.CategoryMarkdownDoc, scanTime),
		},
		Directories: []string{"docs"},
	}

	gaps := NewDetector().Detect(inv)

	var missing []string
	for _, g := range gaps {
		if g.Kind == types.GapMissingRequiredDoc {
			missing = append(missing, g.SubjectPath)
		}
	}
	assert.Equal(t, []string{"docs/API.md", "CONTRIBUTING.md"}, missing)
	assert.Equal(t, 0, kinds(gaps)[types.GapNoDocDirectory])
}

func TestDetect_NestedReadmeDoesNotSatisfyRoot(t *testing.T) {
	d := NewDetector()
	gaps := d.Missing([]types.DiscoveredFile{file("pkg/README.md", types.CategoryReadme, scanTime)})

	require.NotEmpty(t, gaps)
	assert.Equal(t, "README.md", gaps[0].SubjectPath)
}

func TestDetect_NoAPISpecOnlyWithSource(t *testing.T) {
	withSource := &scanner.Inventory{
		ScannedAt: scanTime,
		Files:     []types.DiscoveredFile{file("src/a.py", types.CategorySourceCode, scanTime)},
	}
	assert.Equal(t, 1, kinds(NewDetector().Detect(withSource))[types.GapNoAPISpec])

	withSpec := &scanner.Inventory{
		ScannedAt: scanTime,
		Files: []types.DiscoveredFile{
			file("src/a.py", types.CategorySourceCode, scanTime),
			file("openapi.yaml", types.CategoryAPISpec, scanTime),
		},
	}
	assert.Equal(t, 0, kinds(NewDetector().Detect(withSpec))[types.GapNoAPISpec])
}

func TestDetect_NestedDocsDirectoryDoesNotCount(t *testing.T) {
	inv := &scanner.Inventory{ScannedAt: scanTime, Directories: []string{"pkg", "pkg/docs"}}

	assert.Equal(t, 1, kinds(NewDetector().Detect(inv))[types.GapNoDocDirectory])
}

func TestDetect_DocDirectoryBehindAlias(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "docs"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "docs", "guide.md"), []byte("guide\n"), 0644))
	if err := os.Symlink(filepath.Join(root, "docs"), filepath.Join(root, "a-docs")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	inv, err := scanner.New().Scan(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, 0, kinds(NewDetector().Detect(inv))[types.GapNoDocDirectory])
}

func TestOutdated(t *testing.T) {
	stamp := scanTime.AddDate(0, 0, -5)
	fresh := file("docs/fresh.md", types.CategoryMarkdownDoc, scanTime.AddDate(0, 0, -10))
	stale := file("docs/stale.md", types.CategoryMarkdownDoc, scanTime.AddDate(0, 0, -45))
	stampedFresh := file("docs/stamped.md", types.CategoryMarkdownDoc, scanTime.AddDate(0, -6, 0))
	stampedFresh.FreshnessStamp = &stamp

	d := NewDetector()
	gaps := d.Outdated([]types.DiscoveredFile{fresh, stale, stampedFresh}, scanTime)

	require.Len(t, gaps, 1)
	assert.Equal(t, types.GapOutdated, gaps[0].Kind)
	assert.Equal(t, "docs/stale.md", gaps[0].SubjectPath)
	assert.Contains(t, gaps[0].Detail, "45 days ago")
}

func TestDetect_OutdatedSkipsCode(t *testing.T) {
	old := scanTime.AddDate(-1, 0, 0)
	inv := &scanner.Inventory{
		ScannedAt: scanTime,
		Files: []types.DiscoveredFile{
			file("main.go", types.CategorySourceCode, old),
			file("README.md", types.CategoryReadme, old),
		},
	}

	var outdated []string
	for _, g := range NewDetector().Detect(inv) {
		if g.Kind == types.GapOutdated {
			outdated = append(outdated, g.SubjectPath)
		}
	}
	assert.Equal(t, []string{"README.md"}, outdated)
}

func TestMatches(t *testing.T) {
	req := RequiredDoc{Name: "api", Expected: "docs/API.md", Patterns: []string{"api.md", "docs/reference/*.md"}}

	assert.True(t, matches(req, "API.md"))
	assert.True(t, matches(req, "deep/nested/api.md"))
	assert.True(t, matches(req, "docs/reference/endpoints.md"))
	assert.False(t, matches(req, "docs/apis.md"))
}
