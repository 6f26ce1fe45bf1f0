package history

const schema = `
-- One row per discovery pass. Timestamps are fixed-width UTC text.
CREATE TABLE IF NOT EXISTS runs (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    id TEXT NOT NULL UNIQUE,
    scan_root TEXT NOT NULL,
    project_name TEXT NOT NULL DEFAULT '',
    scanned_at TEXT NOT NULL,
    total_files INTEGER NOT NULL DEFAULT 0,
    sampled_files INTEGER NOT NULL DEFAULT 0,
    average_coverage INTEGER NOT NULL DEFAULT 0 CHECK(average_coverage >= 0 AND average_coverage <= 100),
    gaps INTEGER NOT NULL DEFAULT 0,
    broken_links INTEGER NOT NULL DEFAULT 0,
    warnings INTEGER NOT NULL DEFAULT 0,
    report_path TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_runs_scanned_at ON runs(scanned_at);
`
