package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/steveyegge/doclife/internal/discovery"
	"github.com/steveyegge/doclife/internal/history"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history [root]",
	Short: "Show recent discovery runs for a tree",
	Long: `List recorded discovery passes, newest first, so coverage and gap
counts can be compared over time.

Examples:
  doclife history                 # Runs for the current directory
  doclife history ~/src/payments  # Runs for another tree
  doclife history --limit=50`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		root := "."
		if len(args) > 0 {
			root = args[0]
		}
		dbPath, err := discovery.HistoryPath(cfg, root)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		yellow := color.New(color.FgYellow).SprintFunc()
		cyan := color.New(color.FgCyan).SprintFunc()
		gray := color.New(color.FgHiBlack).SprintFunc()

		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			fmt.Printf("%s No discovery runs recorded for %s\n", yellow("⚠"), root)
			fmt.Printf("%s %s\n", gray("→"), gray("doclife discover"))
			return
		}

		store, err := history.Open(dbPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = store.Close() }()

		runs, err := store.RecentRuns(ctx, historyLimit)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("\n%s (%d runs)\n\n", cyan("Discovery history"), len(runs))
		fmt.Printf("  %-20s %6s %8s %5s %6s\n", "SCANNED", "FILES", "COVERAGE", "GAPS", "LINKS")
		for _, r := range runs {
			fmt.Printf("  %-20s %6d %7d%% %5d %6d\n",
				r.ScannedAt.Local().Format("2006-01-02 15:04:05"),
				r.TotalFiles, r.AverageCoverage, r.Gaps, r.BrokenLinks)
		}
		fmt.Println()
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVar(&historyLimit, "limit", 10, "Maximum number of runs to show")
}
