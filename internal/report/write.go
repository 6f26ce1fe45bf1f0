package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/mod/modfile"

	"github.com/steveyegge/doclife/internal/types"
)

// TimestampLayout is used in artifact names. It sorts lexically and is safe
// on every filesystem.
const TimestampLayout = "20060102T150405Z"

// maxSuffix bounds the collision search for artifact names.
const maxSuffix = 1000

// Artifacts are the paths written for one report.
type Artifacts struct {
	Markdown string
	JSON     string
}

// WriteArtifacts writes r into dir as discovery-report-<timestamp>.md plus a
// sibling .json. Existing reports are never overwritten: a colliding name gets
// a numeric suffix. Each file is written to a temp file first and hard-linked
// into place, so a failed write leaves no partial report behind.
func WriteArtifacts(dir string, r *types.DiscoveryReport) (*Artifacts, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create report directory: %w", err)
	}

	md := []byte(RenderMarkdown(r))
	js, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode report: %w", err)
	}

	mdTmp, err := writeTemp(dir, md)
	if err != nil {
		return nil, err
	}
	defer func() { _ = os.Remove(mdTmp) }()
	jsTmp, err := writeTemp(dir, js)
	if err != nil {
		return nil, err
	}
	defer func() { _ = os.Remove(jsTmp) }()

	stem := "discovery-report-" + r.ScanTimestamp.UTC().Format(TimestampLayout)
	for n := 0; n < maxSuffix; n++ {
		base := stem
		if n > 0 {
			base = fmt.Sprintf("%s-%d", stem, n)
		}
		a := &Artifacts{
			Markdown: filepath.Join(dir, base+".md"),
			JSON:     filepath.Join(dir, base+".json"),
		}

		if err := os.Link(mdTmp, a.Markdown); err != nil {
			if errors.Is(err, os.ErrExist) {
				continue
			}
			return nil, fmt.Errorf("failed to write report: %w", err)
		}
		if err := os.Link(jsTmp, a.JSON); err != nil {
			_ = os.Remove(a.Markdown)
			if errors.Is(err, os.ErrExist) {
				continue
			}
			return nil, fmt.Errorf("failed to write report: %w", err)
		}
		return a, nil
	}
	return nil, fmt.Errorf("too many reports named %s in %s", stem, dir)
}

func writeTemp(dir string, data []byte) (string, error) {
	f, err := os.CreateTemp(dir, ".report-*.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	name := f.Name()
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(name)
		return "", fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(name)
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(name, 0644); err != nil {
		_ = os.Remove(name)
		return "", fmt.Errorf("failed to set report permissions: %w", err)
	}
	return name, nil
}

// DetectProjectName names the project at root: the go.mod module path, then
// the package.json name, then the directory's base name.
func DetectProjectName(root string) string {
	if data, err := os.ReadFile(filepath.Join(root, "go.mod")); err == nil {
		if path := modfile.ModulePath(data); path != "" {
			return path
		}
	}
	if data, err := os.ReadFile(filepath.Join(root, "package.json")); err == nil {
		var pkg struct {
			Name string `json:"name"`
		}
		if json.Unmarshal(data, &pkg) == nil && pkg.Name != "" {
			return pkg.Name
		}
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return filepath.Base(root)
	}
	return filepath.Base(abs)
}
