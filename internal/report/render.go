package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/steveyegge/doclife/internal/types"
)

// gapOrder fixes the section order of gaps in rendered reports.
var gapOrder = []types.GapKind{
	types.GapMissingRequiredDoc,
	types.GapNoDocDirectory,
	types.GapNoAPISpec,
	types.GapOutdated,
}

func gapTitle(k types.GapKind) string {
	switch k {
	case types.GapMissingRequiredDoc:
		return "Missing required documents"
	case types.GapNoDocDirectory:
		return "No documentation directory"
	case types.GapNoAPISpec:
		return "No API specification"
	case types.GapOutdated:
		return "Outdated documents"
	default:
		return string(k)
	}
}

// RenderMarkdown renders the full human-readable report.
func RenderMarkdown(r *types.DiscoveryReport) string {
	var b strings.Builder
	s := r.Summary

	title := "Documentation Discovery Report"
	if r.ProjectName != "" {
		title += ": " + r.ProjectName
	}
	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "- **Scan root:** `%s`\n", r.ScanRoot)
	fmt.Fprintf(&b, "- **Scanned at:** %s\n", r.ScanTimestamp.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "- **Report ID:** %s\n\n", r.ID)

	b.WriteString("## Summary\n\n")
	b.WriteString("| Category | Files |\n|---|---:|\n")
	for _, c := range types.AllCategories {
		fmt.Fprintf(&b, "| %s | %d |\n", c.Label(), s.ByCategory[c])
	}
	fmt.Fprintf(&b, "| **Total** | **%d** |\n\n", s.TotalFiles)

	b.WriteString("## Inline Documentation Coverage\n\n")
	if s.SampledFiles == 0 {
		b.WriteString("No source files were sampled.\n\n")
	} else {
		fmt.Fprintf(&b, "Sampled %d source files. Average comment coverage: **%d%%**. ", s.SampledFiles, s.AverageCoverage)
		fmt.Fprintf(&b, "Files with structured doc blocks: %d.\n\n", s.DocBlockFiles)
		b.WriteString("| File | Comment lines | Total lines | Coverage | Doc block |\n|---|---:|---:|---:|:---:|\n")
		for _, sample := range r.CoverageSamples {
			block := ""
			if sample.HasStructuredDocBlock {
				block = "yes"
			}
			fmt.Fprintf(&b, "| `%s` | %d | %d | %d%% | %s |\n",
				sample.Path, sample.CommentLineCount, sample.TotalLineCount, sample.CoveragePercent(), block)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Gaps\n\n")
	if len(r.Gaps) == 0 {
		b.WriteString("No gaps identified.\n\n")
	}
	for _, kind := range gapOrder {
		if s.GapsByKind[kind] == 0 {
			continue
		}
		fmt.Fprintf(&b, "### %s (%d)\n\n", gapTitle(kind), s.GapsByKind[kind])
		for _, g := range r.Gaps {
			if g.Kind != kind {
				continue
			}
			if g.SubjectPath != "" {
				fmt.Fprintf(&b, "- `%s`: %s\n", g.SubjectPath, g.Detail)
			} else {
				fmt.Fprintf(&b, "- %s\n", g.Detail)
			}
		}
		b.WriteString("\n")
	}

	b.WriteString("## Broken Links\n\n")
	if len(r.BrokenLinks) == 0 {
		b.WriteString("No broken links found.\n\n")
	} else {
		b.WriteString("| Document | Line | Target | Reason |\n|---|---:|---|---|\n")
		for _, l := range r.BrokenLinks {
			fmt.Fprintf(&b, "| `%s` | %d | `%s` | %s |\n", l.SourceDoc, l.Line, l.TargetReference, l.Reason)
		}
		b.WriteString("\n")
	}

	if len(r.Warnings) > 0 {
		b.WriteString("## Warnings\n\n")
		for _, w := range r.Warnings {
			fmt.Fprintf(&b, "- `%s`: %s\n", w.Path, w.Message)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Recommendations\n\n")
	if len(r.Recommendations) == 0 {
		b.WriteString("Documentation looks complete. No action needed.\n")
	}
	for i, rec := range r.Recommendations {
		fmt.Fprintf(&b, "%d. %s\n", i+1, rec)
	}
	return b.String()
}

// Terse renders the short plain-text summary printed after a pass.
func Terse(r *types.DiscoveryReport) string {
	s := r.Summary
	var b strings.Builder
	fmt.Fprintf(&b, "Files: %d (", s.TotalFiles)
	for i, c := range types.AllCategories {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s %d", strings.ToLower(c.Label()), s.ByCategory[c])
	}
	b.WriteString(")\n")
	fmt.Fprintf(&b, "Coverage: %d%% average over %d sampled files\n", s.AverageCoverage, s.SampledFiles)
	fmt.Fprintf(&b, "Gaps: %d  Broken links: %d  Warnings: %d\n", len(r.Gaps), s.BrokenLinks, s.Warnings)
	return b.String()
}
