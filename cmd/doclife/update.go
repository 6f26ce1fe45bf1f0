package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/steveyegge/doclife/internal/scaffold"
	"github.com/steveyegge/doclife/internal/types"
)

var (
	updateScope       string
	updateInteractive bool
)

var updateCmd = &cobra.Command{
	Use:   "update <name>",
	Short: "Refresh the documentation of an existing project",
	Long: `Re-validate a scaffolded project and refresh outdated documents.

An update:
- Rewrites the "Last Updated" stamp of tracked documents that are outdated
- Proposes missing documents and lists broken links for review
- Writes UPDATE_REPORT and apply-changes script under .doclife/updates

Proposed changes are never applied automatically. Review the script, or use
--interactive to confirm each new document one at a time.

Scopes: all, api, architecture, readme, guides

Examples:
  doclife update "Payments API"                 # Refresh everything
  doclife update tools --scope=api              # Only API docs
  doclife update tools --interactive            # Confirm proposed files`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		name := args[0]

		s := newScaffolder()
		summary, err := s.Refresh(ctx, name, types.RefreshScope(updateScope))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		printUpdateSummary(summary)

		if !updateInteractive || countApplicable(summary.Edits) == 0 {
			return
		}

		rl, err := readline.NewEx(&readline.Config{
			Prompt:          "> ",
			InterruptPrompt: "^C",
			EOFPrompt:       "exit",
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to initialize readline: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = rl.Close() }()

		applied, err := confirmEdits(rl, os.Stdout, s.ProjectDir(name), summary.Edits)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		green := color.New(color.FgGreen).SprintFunc()
		fmt.Printf("\n%s Applied %d of %d proposed files\n", green("✓"), applied, countApplicable(summary.Edits))
		if st, err := s.Status(name); err == nil {
			fmt.Printf("  State: %s\n", st.State)
		}
	},
}

func init() {
	rootCmd.AddCommand(updateCmd)
	updateCmd.Flags().StringVar(&updateScope, "scope", string(types.ScopeAll), "Limit the refresh to all, api, architecture, readme or guides")
	updateCmd.Flags().BoolVarP(&updateInteractive, "interactive", "i", false, "Confirm and apply proposed new files one at a time")
}

func printUpdateSummary(u *types.UpdateSummary) {
	green := color.New(color.FgGreen).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()
	gray := color.New(color.FgHiBlack).SprintFunc()

	fmt.Printf("\n%s Refreshed %s (scope: %s)\n\n", green("✓"), u.Project, u.Scope)
	fmt.Printf("  State: %s -> %s\n", u.StateBefore, cyan(string(u.StateAfter)))
	fmt.Printf("  Restamped: %s\n", cyan(fmt.Sprintf("%d", len(u.Restamped))))
	for _, p := range u.Restamped {
		fmt.Printf("    %s\n", gray(p))
	}

	if len(u.Edits) > 0 {
		fmt.Printf("\n%s %d proposed changes:\n", yellow("⚠"), len(u.Edits))
		for _, e := range u.Edits {
			fmt.Printf("  - %s %s: %s\n", e.Kind, e.Path, e.Reason)
		}
	}

	fmt.Printf("\n%s Report: %s\n", gray("→"), u.ReportPath)
	fmt.Printf("%s Script: %s\n", gray("→"), u.ScriptPath)
}

// prompter is the subset of *readline.Instance used for confirmations.
type prompter interface {
	Readline() (string, error)
	SetPrompt(prompt string)
}

// confirmEdits asks about each create edit and applies the accepted ones.
// Ctrl-D stops asking; Ctrl-C skips the current edit.
func confirmEdits(p prompter, out io.Writer, projectDir string, edits []types.ProposedEdit) (int, error) {
	applied := 0
	for _, e := range edits {
		if e.Kind != types.EditCreateFile {
			continue
		}
		p.SetPrompt(fmt.Sprintf("Apply %s %s? [y/N] ", e.Kind, e.Path))
		line, err := p.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			return applied, nil
		}
		if err != nil {
			return applied, fmt.Errorf("reading answer: %w", err)
		}

		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
		default:
			continue
		}

		err = scaffold.ApplyEdit(projectDir, e)
		if errors.Is(err, os.ErrExist) {
			_, _ = fmt.Fprintf(out, "  skipped %s: already exists\n", e.Path)
			continue
		}
		if err != nil {
			return applied, err
		}
		_, _ = fmt.Fprintf(out, "  created %s\n", e.Path)
		applied++
	}
	return applied, nil
}

func countApplicable(edits []types.ProposedEdit) int {
	n := 0
	for _, e := range edits {
		if e.Kind == types.EditCreateFile {
			n++
		}
	}
	return n
}
