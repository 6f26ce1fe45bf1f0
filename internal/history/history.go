// Package history records discovery passes in a local SQLite database so
// trends can be compared across runs.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/steveyegge/doclife/internal/types"
)

// DefaultPath is the history database location relative to the scan root.
const DefaultPath = ".doclife/history.db"

// timeLayout is fixed-width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Run is one recorded discovery pass.
type Run struct {
	ID              string
	ScanRoot        string
	ProjectName     string
	ScannedAt       time.Time
	TotalFiles      int
	SampledFiles    int
	AverageCoverage int
	Gaps            int
	BrokenLinks     int
	Warnings        int
	ReportPath      string
}

// RunFromReport converts a report (and where it was written) into a Run.
func RunFromReport(r *types.DiscoveryReport, reportPath string) Run {
	return Run{
		ID:              r.ID,
		ScanRoot:        r.ScanRoot,
		ProjectName:     r.ProjectName,
		ScannedAt:       r.ScanTimestamp,
		TotalFiles:      r.Summary.TotalFiles,
		SampledFiles:    r.Summary.SampledFiles,
		AverageCoverage: r.Summary.AverageCoverage,
		Gaps:            len(r.Gaps),
		BrokenLinks:     r.Summary.BrokenLinks,
		Warnings:        r.Summary.Warnings,
		ReportPath:      reportPath,
	}
}

// Store is the SQLite-backed run log.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the history database at path.
// ":memory:" gives a private in-memory database.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// a single connection keeps an in-memory database alive and serializes writers
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// RecordRun appends one run.
func (s *Store) RecordRun(ctx context.Context, run Run) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (
			id, scan_root, project_name, scanned_at, total_files, sampled_files,
			average_coverage, gaps, broken_links, warnings, report_path
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID, run.ScanRoot, run.ProjectName, run.ScannedAt.UTC().Format(timeLayout),
		run.TotalFiles, run.SampledFiles, run.AverageCoverage, run.Gaps,
		run.BrokenLinks, run.Warnings, run.ReportPath,
	)
	if err != nil {
		return fmt.Errorf("failed to record run %s: %w", run.ID, err)
	}
	return nil
}

// RecentRuns returns up to limit runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, scan_root, project_name, scanned_at, total_files, sampled_files,
		       average_coverage, gaps, broken_links, warnings, report_path
		FROM runs
		ORDER BY scanned_at DESC, seq DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []Run
	for rows.Next() {
		var run Run
		var scannedAt string
		err := rows.Scan(
			&run.ID,
			&run.ScanRoot,
			&run.ProjectName,
			&scannedAt,
			&run.TotalFiles,
			&run.SampledFiles,
			&run.AverageCoverage,
			&run.Gaps,
			&run.BrokenLinks,
			&run.Warnings,
			&run.ReportPath,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		run.ScannedAt, err = time.Parse(timeLayout, scannedAt)
		if err != nil {
			return nil, fmt.Errorf("invalid scanned_at for run %s: %w", run.ID, err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}
	return runs, nil
}
