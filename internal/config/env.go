package config

import (
	"fmt"
	"os"
	"strconv"
)

// ApplyEnv overrides c from environment variables.
//
// Environment variables:
//   - DOCLIFE_SAMPLE_CAP: Code files sampled for coverage (default: 100)
//   - DOCLIFE_FRESHNESS_DAYS: Age in days before a doc is outdated (default: 30)
//   - DOCLIFE_REPORT_DIR: Report output directory (default: .doclife/reports)
//   - DOCLIFE_PROJECTS_DIR: Scaffolded projects directory (default: projects)
//   - DOCLIFE_HISTORY_DB: Run history database (default: .doclife/history.db)
//   - DOCLIFE_HISTORY_ENABLED: Record discovery runs (default: true)
//
// Returns an error if any environment variable has an invalid value.
func (c *Config) ApplyEnv() error {
	if err := parseEnvInt("DOCLIFE_SAMPLE_CAP", &c.SampleCap); err != nil {
		return err
	}
	if err := parseEnvInt("DOCLIFE_FRESHNESS_DAYS", &c.FreshnessDays); err != nil {
		return err
	}
	if err := parseEnvString("DOCLIFE_REPORT_DIR", &c.ReportDir); err != nil {
		return err
	}
	if err := parseEnvString("DOCLIFE_PROJECTS_DIR", &c.ProjectsDir); err != nil {
		return err
	}
	if err := parseEnvString("DOCLIFE_HISTORY_DB", &c.HistoryDB); err != nil {
		return err
	}
	return parseEnvBool("DOCLIFE_HISTORY_ENABLED", &c.HistoryEnabled)
}

// parseEnvInt parses an int from an environment variable
func parseEnvInt(key string, dest *int) error {
	value := os.Getenv(key)
	if value == "" {
		return nil // Use default
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	*dest = parsed
	return nil
}

// parseEnvBool parses a bool from an environment variable
func parseEnvBool(key string, dest *bool) error {
	value := os.Getenv(key)
	if value == "" {
		return nil // Use default
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	*dest = parsed
	return nil
}

// parseEnvString parses a string from an environment variable
func parseEnvString(key string, dest *string) error {
	value := os.Getenv(key)
	if value == "" {
		return nil // Use default
	}
	*dest = value
	return nil
}
