package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/steveyegge/doclife/internal/scaffold"
)

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List available template sets",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cyan := color.New(color.FgCyan).SprintFunc()
		gray := color.New(color.FgHiBlack).SprintFunc()

		for _, set := range scaffold.TemplateSets() {
			name := set.Name
			if name == scaffold.DefaultTemplateSet {
				name += " (default)"
			}
			fmt.Printf("%s\n  %s\n", cyan(name), set.Description)
			for _, f := range set.Files {
				fmt.Printf("    %s\n", gray(f.Target))
			}
			fmt.Println()
		}
	},
}

func init() {
	rootCmd.AddCommand(templatesCmd)
}
