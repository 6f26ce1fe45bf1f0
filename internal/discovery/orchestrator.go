// Package discovery runs a discovery pass: scan, detect gaps, validate links,
// synthesize the report and persist it.
package discovery

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/steveyegge/doclife/internal/config"
	"github.com/steveyegge/doclife/internal/history"
	"github.com/steveyegge/doclife/internal/links"
	"github.com/steveyegge/doclife/internal/report"
	"github.com/steveyegge/doclife/internal/types"
)

// Result is the outcome of one pass.
type Result struct {
	Report    *types.DiscoveryReport
	Artifacts *report.Artifacts

	// HistoryRecorded is false when history is disabled or recording failed
	HistoryRecorded bool

	StartedAt   time.Time
	CompletedAt time.Time
}

// Duration is how long the pass took.
func (r *Result) Duration() time.Duration {
	return r.CompletedAt.Sub(r.StartedAt)
}

// Orchestrator coordinates a discovery pass:
// - Scans the tree once into an inventory
// - Runs gap detection and link validation over that inventory
// - Synthesizes and writes the report
// - Records the run in the history database
type Orchestrator struct {
	config *config.Config
}

// NewOrchestrator creates an orchestrator. A nil config uses the defaults.
func NewOrchestrator(cfg *config.Config) *Orchestrator {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Orchestrator{config: cfg}
}

// Analyze runs the pipeline and returns the report without writing anything.
// Only an unreadable root is an error; findings are report content.
func (o *Orchestrator) Analyze(ctx context.Context, rootDir string) (*types.DiscoveryReport, error) {
	inv, err := o.config.NewScanner().Scan(ctx, rootDir)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", rootDir, err)
	}

	found := o.config.NewDetector().Detect(inv)

	validator, err := links.New(inv.Root, o.config.LinkCacheSize)
	if err != nil {
		return nil, err
	}
	broken := validator.Validate(inv.Files)

	return report.Synthesize(report.Input{
		Root:        inv.Root,
		ProjectName: report.DetectProjectName(inv.Root),
		ScannedAt:   inv.ScannedAt,
		Files:       inv.Files,
		Samples:     inv.Samples,
		Gaps:        found,
		BrokenLinks: broken,
		Warnings:    inv.Warnings,
	}), nil
}

// Run analyzes rootDir, writes the report artifacts and records the run.
// History failures are logged, never returned.
func (o *Orchestrator) Run(ctx context.Context, rootDir string) (*Result, error) {
	result := &Result{StartedAt: time.Now()}

	r, err := o.Analyze(ctx, rootDir)
	if err != nil {
		return nil, err
	}
	result.Report = r

	artifacts, err := report.WriteArtifacts(resolve(r.ScanRoot, o.config.ReportDir), r)
	if err != nil {
		return nil, fmt.Errorf("writing report: %w", err)
	}
	result.Artifacts = artifacts

	if o.config.HistoryEnabled {
		if err := o.recordHistory(ctx, r, artifacts.Markdown); err != nil {
			slog.Warn("failed to record discovery run", "id", r.ID, "error", err)
		} else {
			result.HistoryRecorded = true
		}
	}

	result.CompletedAt = time.Now()
	return result, nil
}

func (o *Orchestrator) recordHistory(ctx context.Context, r *types.DiscoveryReport, reportPath string) error {
	store, err := history.Open(resolve(r.ScanRoot, o.config.HistoryDB))
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()
	return store.RecordRun(ctx, history.RunFromReport(r, reportPath))
}

// resolve makes p absolute against root unless it already is.
func resolve(root, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}

// HistoryPath is where runs for root are recorded under cfg.
func HistoryPath(cfg *config.Config, root string) (string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("invalid root path %q: %w", root, err)
	}
	return resolve(abs, cfg.HistoryDB), nil
}
