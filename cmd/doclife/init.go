package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/steveyegge/doclife/internal/scaffold"
)

var initTemplate string

var initCmd = &cobra.Command{
	Use:   "init <name>",
	Short: "Scaffold baseline documentation for a new project",
	Long: `Create a documentation skeleton for a new project from a template set.

The project is created under the projects directory (default ./projects) in a
directory named after the project slug. Every generated document carries a
"Last Updated" stamp, and the project is appended to the shared project index.

Initializing a project that already exists fails and changes nothing.

Examples:
  doclife init "Payments API"                  # Standard template set
  doclife init tools --template=minimal        # README, CHANGELOG, architecture only
  doclife templates                            # List template sets`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		name := args[0]

		s := newScaffolder()
		manifest, err := s.Init(ctx, name, initTemplate)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		green := color.New(color.FgGreen).SprintFunc()
		cyan := color.New(color.FgCyan).SprintFunc()
		gray := color.New(color.FgHiBlack).SprintFunc()

		dir := s.ProjectDir(name)
		fmt.Printf("\n%s Initialized %s\n\n", green("✓"), manifest.Name)
		fmt.Printf("  Directory: %s\n", cyan(dir))
		fmt.Printf("  Template: %s\n", cyan(manifest.TemplateSet))
		fmt.Printf("  Documents:\n")
		for _, doc := range manifest.RequiredDocs {
			fmt.Printf("    %s\n", doc)
		}
		fmt.Printf("  Index: %s\n", cyan(s.IndexPath()))

		fmt.Printf("\n%s Next: fill in %s\n", gray("→"), filepath.Join(dir, ".doclife", "INIT_REPORT.md"))
		fmt.Printf("%s %s\n", gray("→"), gray(fmt.Sprintf("doclife status %q   # Check freshness later", name)))
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().StringVarP(&initTemplate, "template", "t", scaffold.DefaultTemplateSet, "Template set to use (see 'doclife templates')")
}
