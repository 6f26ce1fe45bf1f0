package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/steveyegge/doclife/internal/types"
)

var statusCmd = &cobra.Command{
	Use:   "status <name>",
	Short: "Show the documentation lifecycle state of a project",
	Long: `Show whether a scaffolded project is fresh or stale.

A project is stale when any tracked document is missing or its "Last Updated"
stamp is older than the freshness threshold.

Examples:
  doclife status "Payments API"
  doclife status tools --config=team.yaml`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		st, err := newScaffolder().Status(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		green := color.New(color.FgGreen).SprintFunc()
		yellow := color.New(color.FgYellow).SprintFunc()
		cyan := color.New(color.FgCyan).SprintFunc()
		gray := color.New(color.FgHiBlack).SprintFunc()

		switch st.State {
		case types.StateNotInitialized:
			fmt.Printf("%s %s is not initialized\n", yellow("⚠"), st.Name)
			fmt.Printf("%s %s\n", gray("→"), gray(fmt.Sprintf("doclife init %q", st.Name)))
			return
		case types.StateFresh, types.StateInitialized:
			fmt.Printf("%s %s is %s\n", green("✓"), st.Manifest.Name, green(string(st.State)))
		default:
			fmt.Printf("%s %s is %s\n", yellow("⚠"), st.Manifest.Name, yellow(string(st.State)))
		}

		fmt.Printf("  Template: %s\n", cyan(st.Manifest.TemplateSet))
		fmt.Printf("  Created: %s\n", cyan(st.Manifest.CreatedAt.Format("2006-01-02")))
		fmt.Printf("  Tracked: %d documents\n", len(st.Manifest.RequiredDocs))
		for _, doc := range st.Stale {
			fmt.Printf("    %s %s (outdated)\n", yellow("⚠"), doc)
		}
		for _, doc := range st.Missing {
			fmt.Printf("    %s %s (missing)\n", yellow("⚠"), doc)
		}
		if st.State == types.StateStale {
			fmt.Printf("\n%s %s\n", gray("→"), gray(fmt.Sprintf("doclife update %q", st.Name)))
		}
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
