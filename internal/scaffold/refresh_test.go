package scaffold

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steveyegge/doclife/internal/types"
)

func initProject(t *testing.T, set string) *Scaffolder {
	t.Helper()
	s := newScaffolder(t)
	_, err := s.Init(context.Background(), "demo", set)
	require.NoError(t, err)
	return s
}

func readFile(t *testing.T, p string) string {
	t.Helper()
	data, err := os.ReadFile(p)
	require.NoError(t, err)
	return string(data)
}

func TestStatus(t *testing.T) {
	s := newScaffolder(t)

	st, err := s.Status("demo")
	require.NoError(t, err)
	assert.Equal(t, types.StateNotInitialized, st.State)

	_, err = s.Init(context.Background(), "demo", "minimal")
	require.NoError(t, err)

	st, err = s.Status("demo")
	require.NoError(t, err)
	assert.Equal(t, types.StateInitialized, st.State)
	assert.Empty(t, st.Stale)

	s.Now = func() time.Time { return created.AddDate(0, 0, 45) }
	st, err = s.Status("demo")
	require.NoError(t, err)
	assert.Equal(t, types.StateStale, st.State)
	assert.Len(t, st.Stale, 3)
}

func TestStatus_FreshOnlyAfterRefresh(t *testing.T) {
	s := initProject(t, "minimal")
	ctx := context.Background()

	st, err := s.Status("demo")
	require.NoError(t, err)
	assert.Equal(t, types.StateInitialized, st.State)

	_, err = s.Refresh(ctx, "demo", types.ScopeAll)
	require.NoError(t, err)
	st, err = s.Status("demo")
	require.NoError(t, err)
	assert.Equal(t, types.StateFresh, st.State)

	// aging past the threshold makes a refreshed project stale again
	s.Now = func() time.Time { return created.AddDate(0, 0, 45) }
	st, err = s.Status("demo")
	require.NoError(t, err)
	assert.Equal(t, types.StateStale, st.State)

	_, err = s.Refresh(ctx, "demo", types.ScopeAll)
	require.NoError(t, err)
	st, err = s.Status("demo")
	require.NoError(t, err)
	assert.Equal(t, types.StateFresh, st.State)
}

func TestRefresh_NotFound(t *testing.T) {
	s := newScaffolder(t)

	_, err := s.Refresh(context.Background(), "ghost", types.ScopeAll)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.NoDirExists(t, s.ProjectDir("ghost"))
}

func TestRefresh_InvalidScope(t *testing.T) {
	s := initProject(t, "minimal")

	_, err := s.Refresh(context.Background(), "demo", types.RefreshScope("everything"))

	assert.True(t, errors.Is(err, ErrInvalidScope))
}

func TestRefresh_FreshProjectChangesNothing(t *testing.T) {
	s := initProject(t, "standard")
	dir := s.ProjectDir("demo")
	readmeBefore := readFile(t, filepath.Join(dir, "README.md"))

	u, err := s.Refresh(context.Background(), "demo", types.ScopeAll)
	require.NoError(t, err)

	assert.Equal(t, types.StateInitialized, u.StateBefore)
	assert.Equal(t, types.StateFresh, u.StateAfter)
	assert.Empty(t, u.Restamped)
	assert.Empty(t, u.BrokenLinks)
	assert.Empty(t, u.Edits)
	assert.Equal(t, readmeBefore, readFile(t, filepath.Join(dir, "README.md")))
	assert.Contains(t, readFile(t, u.ScriptPath), "Nothing to apply.")
}

func TestRefresh_RestampsOutdatedDocs(t *testing.T) {
	s := initProject(t, "standard")
	dir := s.ProjectDir("demo")
	apiPath := filepath.Join(dir, "docs", "api", "API.md")
	original := readFile(t, apiPath)

	later := created.AddDate(0, 0, 45)
	s.Now = func() time.Time { return later }

	u, err := s.Refresh(context.Background(), "demo", types.ScopeAll)
	require.NoError(t, err)

	assert.Equal(t, types.StateStale, u.StateBefore)
	assert.Equal(t, types.StateFresh, u.StateAfter)
	assert.Len(t, u.Restamped, 8)
	for _, g := range u.Gaps {
		assert.Equal(t, types.GapOutdated, g.Kind)
	}

	// only the stamp changed
	updated := readFile(t, apiPath)
	assert.Equal(t, strings.Replace(original, "2026-01-10", "2026-02-24", 1), updated)

	assert.FileExists(t, u.ReportPath)
	assert.Contains(t, readFile(t, u.ReportPath), "stale -> fresh")
	info, err := os.Stat(u.ScriptPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0755), info.Mode().Perm())
}

func TestRefresh_ScopeLimitsRestamping(t *testing.T) {
	s := initProject(t, "standard")
	s.Now = func() time.Time { return created.AddDate(0, 0, 45) }

	u, err := s.Refresh(context.Background(), "demo", types.ScopeAPI)
	require.NoError(t, err)

	assert.Equal(t, []string{"docs/api/API.md"}, u.Restamped)
	assert.Equal(t, types.StateStale, u.StateAfter)
}

func TestRefresh_ProposesEditsWithoutApplyingThem(t *testing.T) {
	s := initProject(t, "standard")
	dir := s.ProjectDir("demo")
	ctx := context.Background()

	deployment := filepath.Join(dir, "docs", "guides", "DEPLOYMENT.md")
	require.NoError(t, os.Remove(deployment))
	readme := filepath.Join(dir, "README.md")
	require.NoError(t, os.WriteFile(readme, []byte(readFile(t, readme)+"\nSee [runbook](docs/runbook.md).\n"), 0644))

	u, err := s.Refresh(ctx, "demo", types.ScopeAll)
	require.NoError(t, err)

	assert.NoFileExists(t, deployment)
	assert.Equal(t, types.StateStale, u.StateAfter)
	require.Len(t, u.Edits, 2)

	create := u.Edits[0]
	assert.Equal(t, types.EditCreateFile, create.Kind)
	assert.Equal(t, "docs/guides/DEPLOYMENT.md", create.Path)
	assert.Contains(t, create.Content, "# demo Deployment Guide")

	review := u.Edits[1]
	assert.Equal(t, types.EditReviewLink, review.Kind)
	assert.Equal(t, "README.md", review.Path)
	assert.Contains(t, review.Reason, "docs/runbook.md")

	script := readFile(t, u.ScriptPath)
	assert.Contains(t, script, "cat > 'docs/guides/DEPLOYMENT.md' <<'DOCLIFE_EOF'")
	assert.Contains(t, script, "# review_link README.md")

	// the interactive front end applies accepted create edits
	require.NoError(t, ApplyEdit(dir, create))
	assert.FileExists(t, deployment)
	err = ApplyEdit(dir, create)
	assert.True(t, errors.Is(err, os.ErrExist))
	assert.True(t, errors.Is(ApplyEdit(dir, review), ErrNotApplicable))

	st, err := s.Status("demo")
	require.NoError(t, err)
	assert.Equal(t, types.StateFresh, st.State)
}

func TestRenderScript(t *testing.T) {
	edits := []types.ProposedEdit{
		{Kind: types.EditCreateFile, Path: "docs/it's.md", Content: "line\nDOCLIFE_EOF\nmore"},
		{Kind: types.EditReviewLink, Path: "README.md", Reason: "line 3: ./x.md\n(file_not_found)"},
	}

	script := RenderScript("demo", edits)

	assert.True(t, strings.HasPrefix(script, "#!/bin/sh\n"))
	assert.Contains(t, script, "mkdir -p 'docs'")
	assert.Contains(t, script, `cat > 'docs/it'\''s.md' <<'DOCLIFE_EOF_1'`)
	assert.Contains(t, script, "more\nDOCLIFE_EOF_1\n")
	assert.Contains(t, script, "# review_link README.md: line 3: ./x.md (file_not_found)")
	assert.NotContains(t, script, "Nothing to apply.")
}

func TestApplyEdit_RejectsEscapes(t *testing.T) {
	dir := t.TempDir()

	for _, p := range []string{"../outside.md", "/etc/passwd", "docs/../../x.md"} {
		err := ApplyEdit(dir, types.ProposedEdit{Kind: types.EditCreateFile, Path: p, Content: "x"})
		assert.Error(t, err, p)
	}
}
