package scaffold

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/steveyegge/doclife/internal/types"
)

// ErrNotApplicable is returned by ApplyEdit for edits that need a human.
var ErrNotApplicable = errors.New("edit requires manual review")

const heredocMarker = "DOCLIFE_EOF"

// RenderScript renders edits as a POSIX shell script. The script expects to
// live in <project>/.doclife/updates and changes into the project directory
// before doing anything. It only creates files that do not exist yet; link
// reviews are listed as comments.
func RenderScript(project string, edits []types.ProposedEdit) string {
	var b strings.Builder
	b.WriteString("#!/bin/sh\n")
	fmt.Fprintf(&b, "# Proposed documentation changes for %s.\n", project)
	b.WriteString("# Review every change below before running this script.\n")
	b.WriteString("set -eu\n")
	b.WriteString("cd \"$(dirname \"$0\")/../..\"\n\n")

	applied := 0
	for _, e := range edits {
		switch e.Kind {
		case types.EditCreateFile:
			applied++
			fmt.Fprintf(&b, "# %s: %s\n", e.Kind, oneLine(e.Reason))
			if dir := filepath.ToSlash(filepath.Dir(filepath.FromSlash(e.Path))); dir != "." {
				fmt.Fprintf(&b, "mkdir -p %s\n", shellQuote(dir))
			}
			marker := heredocFor(e.Content)
			fmt.Fprintf(&b, "if [ ! -e %s ]; then\n", shellQuote(e.Path))
			fmt.Fprintf(&b, "cat > %s <<'%s'\n", shellQuote(e.Path), marker)
			b.WriteString(e.Content)
			if e.Content != "" && !strings.HasSuffix(e.Content, "\n") {
				b.WriteString("\n")
			}
			fmt.Fprintf(&b, "%s\n", marker)
			fmt.Fprintf(&b, "echo %s\n", shellQuote("created "+e.Path))
			b.WriteString("fi\n\n")
		default:
			fmt.Fprintf(&b, "# %s %s: %s\n\n", e.Kind, e.Path, oneLine(e.Reason))
		}
	}

	if applied == 0 {
		b.WriteString("echo 'Nothing to apply.'\n")
	}
	return b.String()
}

// heredocFor picks a delimiter that no line of content equals.
func heredocFor(content string) string {
	lines := make(map[string]bool)
	for _, l := range strings.Split(content, "\n") {
		lines[l] = true
	}
	marker := heredocMarker
	for n := 1; lines[marker]; n++ {
		marker = fmt.Sprintf("%s_%d", heredocMarker, n)
	}
	return marker
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// ApplyEdit applies one create-file edit inside projectDir. Existing files
// are never overwritten and paths may not leave the project.
func ApplyEdit(projectDir string, e types.ProposedEdit) error {
	if e.Kind != types.EditCreateFile {
		return fmt.Errorf("%w: %s %s", ErrNotApplicable, e.Kind, e.Path)
	}
	clean := filepath.Clean(filepath.FromSlash(e.Path))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return fmt.Errorf("refusing to write outside the project: %s", e.Path)
	}

	target := filepath.Join(projectDir, clean)
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", e.Path, err)
	}
	f, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if errors.Is(err, os.ErrExist) {
		return fmt.Errorf("%s: %w", e.Path, os.ErrExist)
	}
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", e.Path, err)
	}
	if _, err := f.WriteString(e.Content); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write %s: %w", e.Path, err)
	}
	return f.Close()
}
