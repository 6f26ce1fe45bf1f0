// Package report turns the outputs of a discovery pass into a DiscoveryReport
// and writes it as Markdown and JSON artifacts.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/steveyegge/doclife/internal/types"
)

// LowCoverageThreshold is the average coverage percentage below which a
// recommendation to document code is emitted.
const LowCoverageThreshold = 20

// Input is everything a pass collected. Slices are copied into the report as-is.
type Input struct {
	Root        string
	ProjectName string
	ScannedAt   time.Time
	Files       []types.DiscoveredFile
	Samples     []types.CoverageSample
	Gaps        []types.Gap
	BrokenLinks []types.BrokenLink
	Warnings    []types.ScanWarning
}

// Synthesize builds the report for one pass.
func Synthesize(in Input) *types.DiscoveryReport {
	r := &types.DiscoveryReport{
		ID:              uuid.New().String(),
		ProjectName:     in.ProjectName,
		ScanRoot:        in.Root,
		ScanTimestamp:   in.ScannedAt,
		Files:           nonNil(in.Files),
		CoverageSamples: nonNil(in.Samples),
		Gaps:            nonNil(in.Gaps),
		BrokenLinks:     nonNil(in.BrokenLinks),
		Warnings:        in.Warnings,
	}
	r.Summary = Summarize(r)
	r.Recommendations = Recommend(r)
	return r
}

// Summarize computes the aggregate counts for r.
func Summarize(r *types.DiscoveryReport) types.ReportSummary {
	s := types.ReportSummary{
		TotalFiles:   len(r.Files),
		ByCategory:   make(map[types.Category]int, len(types.AllCategories)),
		SampledFiles: len(r.CoverageSamples),
		GapsByKind:   make(map[types.GapKind]int),
		BrokenLinks:  len(r.BrokenLinks),
		Warnings:     len(r.Warnings),
	}
	for _, c := range types.AllCategories {
		s.ByCategory[c] = 0
	}
	for _, f := range r.Files {
		s.ByCategory[f.Category]++
	}
	s.AverageCoverage = AverageCoverage(r.CoverageSamples)
	for _, sample := range r.CoverageSamples {
		if sample.HasStructuredDocBlock {
			s.DocBlockFiles++
		}
	}
	for _, g := range r.Gaps {
		s.GapsByKind[g.Kind]++
	}
	return s
}

// AverageCoverage is the floor of the mean coverage percentage; 0 with no samples.
func AverageCoverage(samples []types.CoverageSample) int {
	if len(samples) == 0 {
		return 0
	}
	total := 0
	for _, s := range samples {
		total += s.CoveragePercent()
	}
	return total / len(samples)
}

// Recommend derives the fixed-rule recommendations for r.
func Recommend(r *types.DiscoveryReport) []string {
	recs := []string{}
	s := r.Summary

	if s.GapsByKind[types.GapMissingRequiredDoc] > 0 {
		var names []string
		for _, g := range r.Gaps {
			if g.Kind == types.GapMissingRequiredDoc {
				names = append(names, g.SubjectPath)
			}
		}
		recs = append(recs, fmt.Sprintf("Add missing required docs: %s", strings.Join(names, ", ")))
	}
	if s.GapsByKind[types.GapNoDocDirectory] > 0 {
		recs = append(recs, "Create a docs/ directory to hold long-form documentation")
	}
	if s.GapsByKind[types.GapNoAPISpec] > 0 {
		recs = append(recs, "Add an API specification (OpenAPI, Swagger or GraphQL schema)")
	}
	if n := s.GapsByKind[types.GapOutdated]; n > 0 {
		recs = append(recs, fmt.Sprintf("Review and refresh %d outdated %s", n, plural(n, "document", "documents")))
	}
	if s.BrokenLinks > 0 {
		recs = append(recs, fmt.Sprintf("Fix %d broken %s", s.BrokenLinks, plural(s.BrokenLinks, "link", "links")))
	}
	if s.SampledFiles > 0 && s.AverageCoverage < LowCoverageThreshold {
		recs = append(recs, fmt.Sprintf("Improve inline documentation: average comment coverage is %d%% (target %d%%)",
			s.AverageCoverage, LowCoverageThreshold))
	}
	if s.Warnings > 0 {
		recs = append(recs, fmt.Sprintf("Check permissions on %d unreadable %s", s.Warnings, plural(s.Warnings, "path", "paths")))
	}
	return recs
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
