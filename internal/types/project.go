package types

import (
	"fmt"
	"time"
)

// ProjectManifest describes a scaffolded project. It is written once at
// init time and its IndexEntry is appended to the shared project index.
type ProjectManifest struct {
	Name         string    `yaml:"name" json:"name"`
	Slug         string    `yaml:"slug" json:"slug"`
	TemplateSet  string    `yaml:"template_set" json:"template_set"`
	CreatedAt    time.Time `yaml:"created_at" json:"created_at"`
	RequiredDocs []string  `yaml:"required_docs" json:"required_docs"`
	IndexEntry   string    `yaml:"index_entry" json:"index_entry"`
}

// Validate checks if the manifest has valid field values
func (m *ProjectManifest) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("name is required")
	}
	if m.Slug == "" {
		return fmt.Errorf("slug is required")
	}
	if len(m.RequiredDocs) == 0 {
		return fmt.Errorf("manifest for %s lists no required docs", m.Name)
	}
	return nil
}

// ProjectState is the documentation lifecycle state of a project.
//
// NotInitialized -> Initialized -> (Stale <-> Fresh). There is no deleted state.
type ProjectState string

const (
	StateNotInitialized ProjectState = "not_initialized"
	StateInitialized    ProjectState = "initialized"
	StateStale          ProjectState = "stale"
	StateFresh          ProjectState = "fresh"
)

// RefreshScope limits which documents a refresh touches.
type RefreshScope string

const (
	ScopeAll          RefreshScope = "all"
	ScopeAPI          RefreshScope = "api"
	ScopeArchitecture RefreshScope = "architecture"
	ScopeReadme       RefreshScope = "readme"
	ScopeGuides       RefreshScope = "guides"
)

// IsValid checks if the scope value is valid
func (s RefreshScope) IsValid() bool {
	switch s {
	case ScopeAll, ScopeAPI, ScopeArchitecture, ScopeReadme, ScopeGuides:
		return true
	}
	return false
}

// Includes reports whether a document belonging to docScope is covered by s.
func (s RefreshScope) Includes(docScope RefreshScope) bool {
	return s == ScopeAll || s == docScope
}

// EditKind is the type of change a refresh proposes.
type EditKind string

const (
	EditCreateFile EditKind = "create_file"
	EditReviewLink EditKind = "review_link"
)

// ProposedEdit is one change a refresh suggests but never applies by itself.
type ProposedEdit struct {
	Kind    EditKind `json:"kind"`
	Path    string   `json:"path"`
	Reason  string   `json:"reason"`
	Content string   `json:"content,omitempty"`
}

// UpdateSummary is the outcome of refreshing a project.
type UpdateSummary struct {
	Project     string         `json:"project"`
	Scope       RefreshScope   `json:"scope"`
	RefreshedAt time.Time      `json:"refreshed_at"`
	StateBefore ProjectState   `json:"state_before"`
	StateAfter  ProjectState   `json:"state_after"`
	Restamped   []string       `json:"restamped"`
	Gaps        []Gap          `json:"gaps"`
	BrokenLinks []BrokenLink   `json:"broken_links"`
	Edits       []ProposedEdit `json:"edits"`
	ReportPath  string         `json:"report_path"`
	ScriptPath  string         `json:"script_path"`
}
