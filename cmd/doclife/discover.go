package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/steveyegge/doclife/internal/discovery"
	"github.com/steveyegge/doclife/internal/report"
)

var (
	discoverSampleCap     int
	discoverFreshnessDays int
	discoverReportDir     string
	discoverNoHistory     bool
)

var discoverCmd = &cobra.Command{
	Use:   "discover [root]",
	Short: "Scan a tree and write a documentation discovery report",
	Long: `Scan a source tree and report on its documentation.

A discovery pass:
- Classifies every file (readme, markdown doc, API spec, source, test, other)
- Samples source files for inline comment coverage
- Finds missing required docs, a missing docs directory, a missing API spec
  and documents older than the freshness threshold
- Validates relative links in markdown documents

Findings never fail the command. It exits non-zero only when the root
cannot be read. Each run writes a new report; earlier reports are kept.

Examples:
  doclife discover                         # Scan the current directory
  doclife discover ~/src/payments          # Scan another tree
  doclife discover --sample-cap=500        # Sample more source files
  doclife discover --freshness-days=90     # Allow older docs
  doclife discover --no-history            # Do not record the run`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		root := "."
		if len(args) > 0 {
			root = args[0]
		}

		if cmd.Flags().Changed("sample-cap") {
			cfg.SampleCap = discoverSampleCap
		}
		if cmd.Flags().Changed("freshness-days") {
			cfg.FreshnessDays = discoverFreshnessDays
		}
		if discoverReportDir != "" {
			cfg.ReportDir = discoverReportDir
		}
		if discoverNoHistory {
			cfg.HistoryEnabled = false
		}
		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		gray := color.New(color.FgHiBlack).SprintFunc()
		cyan := color.New(color.FgCyan).SprintFunc()
		fmt.Printf("%s Scanning %s\n", gray("→"), cyan(root))

		result, err := discovery.NewOrchestrator(cfg).Run(ctx, root)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		printDiscoverySummary(result)
	},
}

func init() {
	rootCmd.AddCommand(discoverCmd)
	discoverCmd.Flags().IntVar(&discoverSampleCap, "sample-cap", 100, "Maximum source files sampled for coverage")
	discoverCmd.Flags().IntVar(&discoverFreshnessDays, "freshness-days", 30, "Age in days after which a document is outdated")
	discoverCmd.Flags().StringVar(&discoverReportDir, "report-dir", "", "Directory for report artifacts (default .doclife/reports under the root)")
	discoverCmd.Flags().BoolVar(&discoverNoHistory, "no-history", false, "Do not record this run in the history database")
}

func printDiscoverySummary(result *discovery.Result) {
	green := color.New(color.FgGreen).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	gray := color.New(color.FgHiBlack).SprintFunc()

	r := result.Report

	title := "Discovery complete"
	if r.ProjectName != "" {
		title += ": " + r.ProjectName
	}
	fmt.Printf("\n%s %s\n\n", green("✓"), title)

	for _, line := range strings.Split(strings.TrimRight(report.Terse(r), "\n"), "\n") {
		fmt.Printf("  %s\n", line)
	}
	fmt.Printf("  Duration: %s\n", cyan(result.Duration().Round(time.Millisecond).String()))

	if len(r.Warnings) > 0 {
		fmt.Printf("\n%s %d paths could not be read:\n", yellow("⚠"), len(r.Warnings))
		for _, w := range r.Warnings {
			fmt.Printf("  - %s\n", gray(w.String()))
		}
	}

	if len(r.Recommendations) > 0 {
		fmt.Printf("\n%s Recommendations:\n", yellow("⚠"))
		for _, rec := range r.Recommendations {
			fmt.Printf("  - %s\n", rec)
		}
	} else {
		fmt.Printf("\n%s No gaps identified\n", green("✓"))
	}

	fmt.Printf("\n%s Report: %s\n", gray("→"), result.Artifacts.Markdown)
	fmt.Printf("%s Data:   %s\n", gray("→"), gray(result.Artifacts.JSON))
	if result.HistoryRecorded {
		fmt.Printf("%s %s\n", gray("→"), gray("doclife history   # Compare with earlier runs"))
	}
}
