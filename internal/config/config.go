// Package config loads doclife settings from .doclife.yaml and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/steveyegge/doclife/internal/classify"
	"github.com/steveyegge/doclife/internal/gaps"
	"github.com/steveyegge/doclife/internal/scanner"
	"github.com/steveyegge/doclife/internal/types"
)

// DefaultFile is looked up in the working directory when no --config is given.
const DefaultFile = ".doclife.yaml"

// Config holds all doclife settings.
type Config struct {
	// SampleCap bounds how many code files are sampled for coverage
	// Default: 100
	SampleCap int `yaml:"sample_cap" validate:"min=1,max=100000"`

	// FreshnessDays is the age after which a tracked document is outdated
	// Default: 30
	FreshnessDays int `yaml:"freshness_days" validate:"min=1,max=3650"`

	// ReportDir is where discovery reports are written, relative to the scan root
	// unless absolute
	// Default: .doclife/reports
	ReportDir string `yaml:"report_dir" validate:"required"`

	// ProjectsDir holds scaffolded projects and the project index
	// Default: projects
	ProjectsDir string `yaml:"projects_dir" validate:"required"`

	// IndexFile is the project index file name inside ProjectsDir
	// Default: PROJECT_INDEX.md
	IndexFile string `yaml:"index_file" validate:"required"`

	// HistoryDB is the run history database, relative to the scan root unless absolute
	// Default: .doclife/history.db
	HistoryDB string `yaml:"history_db" validate:"required"`

	// HistoryEnabled controls whether discovery runs are recorded
	// Default: true
	HistoryEnabled bool `yaml:"history_enabled"`

	// LinkCacheSize bounds the link validator's path-existence cache (0 = default)
	LinkCacheSize int `yaml:"link_cache_size" validate:"min=0"`

	ExcludePaths   []string           `yaml:"exclude_paths" validate:"dive,required"`
	DocDirectories []string           `yaml:"doc_directories" validate:"min=1,dive,required"`
	RequiredDocs   []gaps.RequiredDoc `yaml:"required_docs" validate:"min=1,dive"`

	// SourceExtensions adds to (or overrides) the built-in extension table
	SourceExtensions map[string]types.LanguageFamily `yaml:"source_extensions"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		SampleCap:      scanner.DefaultSampleCap,
		FreshnessDays:  gaps.DefaultFreshnessDays,
		ReportDir:      ".doclife/reports",
		ProjectsDir:    "projects",
		IndexFile:      "PROJECT_INDEX.md",
		HistoryDB:      ".doclife/history.db",
		HistoryEnabled: true,
		ExcludePaths:   scanner.DefaultExcludePaths(),
		DocDirectories: gaps.DefaultDocDirectories(),
		RequiredDocs:   gaps.DefaultRequiredDocs(),
	}
}

// Load reads the config file at path over the defaults, then applies
// environment overrides. A missing file is only an error when explicit is set
// (the user named it with --config).
func Load(path string, explicit bool) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
		// defaults
	default:
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

var (
	validatorInstance *validator.Validate
	validatorOnce     sync.Once
)

func getValidator() *validator.Validate {
	validatorOnce.Do(func() {
		validatorInstance = validator.New()
	})
	return validatorInstance
}

// Validate checks field ranges and the cross-field rules tags cannot express.
func (c *Config) Validate() error {
	if err := getValidator().Struct(c); err != nil {
		return err
	}

	seen := make(map[string]bool)
	for _, req := range c.RequiredDocs {
		name := strings.ToLower(req.Name)
		if seen[name] {
			return fmt.Errorf("required doc %q listed twice", req.Name)
		}
		seen[name] = true
	}

	for ext, family := range c.SourceExtensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("source extension %q must start with a dot", ext)
		}
		if family == types.FamilyNone {
			return fmt.Errorf("source extension %q has no language family", ext)
		}
	}
	return nil
}

// FreshnessThreshold is FreshnessDays as a duration.
func (c *Config) FreshnessThreshold() time.Duration {
	return time.Duration(c.FreshnessDays) * 24 * time.Hour
}

// Extensions is the built-in extension table merged with SourceExtensions.
func (c *Config) Extensions() map[string]types.LanguageFamily {
	ext := classify.DefaultExtensions()
	for k, v := range c.SourceExtensions {
		ext[strings.ToLower(k)] = v
	}
	return ext
}

// NewScanner builds a scanner from the config.
func (c *Config) NewScanner() *scanner.Scanner {
	s := scanner.New()
	s.SampleCap = c.SampleCap
	s.ExcludePaths = c.ExcludePaths
	s.Classifier = classify.New(c.Extensions())
	return s
}

// NewDetector builds a gap detector from the config.
func (c *Config) NewDetector() *gaps.Detector {
	d := gaps.NewDetector()
	d.RequiredDocs = c.RequiredDocs
	d.DocDirectories = c.DocDirectories
	d.FreshnessThreshold = c.FreshnessThreshold()
	return d
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{SampleCap: %d, FreshnessDays: %d, ReportDir: %s, ProjectsDir: %s, "+
			"HistoryDB: %s, HistoryEnabled: %t, RequiredDocs: %d}",
		c.SampleCap, c.FreshnessDays, c.ReportDir, c.ProjectsDir,
		c.HistoryDB, c.HistoryEnabled, len(c.RequiredDocs),
	)
}
