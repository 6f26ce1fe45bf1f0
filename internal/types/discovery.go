package types

import (
	"fmt"
	"time"
)

// Category is the documentation classification assigned to a scanned file.
type Category string

const (
	CategoryReadme      Category = "readme"
	CategoryMarkdownDoc Category = "markdown_doc"
	CategoryAPISpec     Category = "api_spec"
	CategorySourceCode  Category = "source_code"
	CategoryTestFile    Category = "test_file"
	CategoryOther       Category = "other"
)

// AllCategories lists every category in tie-break precedence order.
var AllCategories = []Category{
	CategoryReadme,
	CategoryAPISpec,
	CategoryTestFile,
	CategoryMarkdownDoc,
	CategorySourceCode,
	CategoryOther,
}

// IsDocumentation reports whether files of this category are tracked documents
// (subject to freshness checks).
func (c Category) IsDocumentation() bool {
	return c == CategoryReadme || c == CategoryMarkdownDoc || c == CategoryAPISpec
}

// IsCode reports whether files of this category are routed to the coverage estimator.
func (c Category) IsCode() bool {
	return c == CategorySourceCode || c == CategoryTestFile
}

// IsLinkSource reports whether files of this category are scanned for cross-references.
func (c Category) IsLinkSource() bool {
	return c == CategoryReadme || c == CategoryMarkdownDoc
}

// Label returns a human-readable name for reports.
func (c Category) Label() string {
	switch c {
	case CategoryReadme:
		return "Readme"
	case CategoryMarkdownDoc:
		return "Markdown doc"
	case CategoryAPISpec:
		return "API spec"
	case CategorySourceCode:
		return "Source code"
	case CategoryTestFile:
		return "Test file"
	default:
		return "Other"
	}
}

// LanguageFamily identifies the comment conventions of a source file.
// Empty for files that are not source code.
type LanguageFamily string

const (
	FamilyNone       LanguageFamily = ""
	FamilyGo         LanguageFamily = "go"
	FamilyC          LanguageFamily = "c"
	FamilyJava       LanguageFamily = "java"
	FamilyJavaScript LanguageFamily = "javascript"
	FamilyCSharp     LanguageFamily = "csharp"
	FamilyRust       LanguageFamily = "rust"
	FamilyPython     LanguageFamily = "python"
	FamilyRuby       LanguageFamily = "ruby"
	FamilyShell      LanguageFamily = "shell"
	FamilyPHP        LanguageFamily = "php"
	FamilyLua        LanguageFamily = "lua"
	FamilySQL        LanguageFamily = "sql"
	FamilyHaskell    LanguageFamily = "haskell"
	FamilyElixir     LanguageFamily = "elixir"
)

// DiscoveredFile is one regular file found during a discovery pass.
// Path is relative to the scan root and slash-separated.
type DiscoveredFile struct {
	Path           string         `json:"path"`
	Category       Category       `json:"category"`
	LanguageFamily LanguageFamily `json:"language_family,omitempty"`
	SizeLines      int            `json:"size_lines"`
	ModifiedAt     time.Time      `json:"modified_at"`

	// FreshnessStamp is the "Last Updated" date found in a document, if any.
	FreshnessStamp *time.Time `json:"freshness_stamp,omitempty"`
}

// LastUpdated returns the freshness stamp when present, else the file's mtime.
func (f DiscoveredFile) LastUpdated() time.Time {
	if f.FreshnessStamp != nil {
		return *f.FreshnessStamp
	}
	return f.ModifiedAt
}

// CoverageSample is the documentation density measured for one source file.
type CoverageSample struct {
	Path                  string         `json:"path"`
	LanguageFamily        LanguageFamily `json:"language_family"`
	CommentLineCount      int            `json:"comment_line_count"`
	TotalLineCount        int            `json:"total_line_count"`
	HasStructuredDocBlock bool           `json:"has_structured_doc_block"`
}

// CoveragePercent is floor(comment lines * 100 / total lines); 0 for empty files.
func (s CoverageSample) CoveragePercent() int {
	if s.TotalLineCount == 0 {
		return 0
	}
	return s.CommentLineCount * 100 / s.TotalLineCount
}

// GapKind classifies a documentation gap.
type GapKind string

const (
	GapMissingRequiredDoc GapKind = "missing_required_doc"
	GapNoDocDirectory     GapKind = "no_doc_directory"
	GapNoAPISpec          GapKind = "no_api_spec"
	GapOutdated           GapKind = "outdated"
)

// IsValid checks if the gap kind value is valid
func (k GapKind) IsValid() bool {
	switch k {
	case GapMissingRequiredDoc, GapNoDocDirectory, GapNoAPISpec, GapOutdated:
		return true
	}
	return false
}

// Gap is a missing or stale piece of documentation.
type Gap struct {
	Kind        GapKind `json:"kind"`
	SubjectPath string  `json:"subject_path,omitempty"`
	Detail      string  `json:"detail"`
}

// Validate checks that the gap is well formed
func (g Gap) Validate() error {
	if !g.Kind.IsValid() {
		return fmt.Errorf("invalid gap kind: %s", g.Kind)
	}
	if g.Kind == GapMissingRequiredDoc && g.SubjectPath == "" {
		return fmt.Errorf("missing_required_doc gap requires a subject path")
	}
	return nil
}

// LinkFailure explains why a cross-reference could not be resolved.
type LinkFailure string

const (
	LinkFileNotFound LinkFailure = "file_not_found"
	LinkDirNotFound  LinkFailure = "dir_not_found"
)

// BrokenLink is a relative reference in a document whose target does not exist.
type BrokenLink struct {
	SourceDoc       string      `json:"source_doc"`
	TargetReference string      `json:"target_reference"`
	Reason          LinkFailure `json:"reason"`
	Line            int         `json:"line,omitempty"`
}

// ScanWarning records a path the scanner could not read. Never fatal.
type ScanWarning struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

func (w ScanWarning) String() string {
	return fmt.Sprintf("%s: %s", w.Path, w.Message)
}

// ReportSummary holds the aggregate counts shown at the top of a report.
type ReportSummary struct {
	TotalFiles      int              `json:"total_files"`
	ByCategory      map[Category]int `json:"by_category"`
	SampledFiles    int              `json:"sampled_files"`
	AverageCoverage int              `json:"average_coverage"`
	DocBlockFiles   int              `json:"doc_block_files"`
	GapsByKind      map[GapKind]int  `json:"gaps_by_kind"`
	BrokenLinks     int              `json:"broken_links"`
	Warnings        int              `json:"warnings"`
}

// DiscoveryReport is the immutable artifact produced by one discovery pass.
type DiscoveryReport struct {
	ID              string           `json:"id"`
	ProjectName     string           `json:"project_name"`
	ScanRoot        string           `json:"scan_root"`
	ScanTimestamp   time.Time        `json:"scan_timestamp"`
	Summary         ReportSummary    `json:"summary"`
	Files           []DiscoveredFile `json:"files"`
	CoverageSamples []CoverageSample `json:"coverage_samples"`
	Gaps            []Gap            `json:"gaps"`
	BrokenLinks     []BrokenLink     `json:"broken_links"`
	Warnings        []ScanWarning    `json:"warnings,omitempty"`
	Recommendations []string         `json:"recommendations"`
}
