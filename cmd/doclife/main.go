package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/steveyegge/doclife/internal/config"
	"github.com/steveyegge/doclife/internal/scaffold"
)

var (
	configPath string
	verbose    bool

	// cfg is loaded once before any subcommand runs
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "doclife",
	Short: "Audit and bootstrap project documentation",
	Long: `doclife scans a source tree, classifies the documentation it finds,
measures inline comment coverage and staleness, validates cross-references,
and writes a timestamped discovery report.

It also scaffolds baseline documentation for new projects from templates
and keeps it fresh over time.

Configuration is read from .doclife.yaml in the current directory (or --config)
and can be overridden with DOCLIFE_* environment variables.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

		path := configPath
		explicit := path != ""
		if !explicit {
			path = config.DefaultFile
		}
		loaded, err := config.Load(path, explicit)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
		slog.Debug("configuration loaded", "config", cfg.String())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default .doclife.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

// newScaffolder builds a scaffolder from the loaded configuration.
func newScaffolder() *scaffold.Scaffolder {
	s := scaffold.New(cfg.ProjectsDir)
	s.IndexFile = cfg.IndexFile
	s.FreshnessThreshold = cfg.FreshnessThreshold()
	s.LinkCacheSize = cfg.LinkCacheSize
	return s
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
