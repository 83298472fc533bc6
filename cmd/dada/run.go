package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"dada/internal/diagfmt"
	"dada/internal/loader"
)

// runCmd implements spec.md §6's literal CLI contract: "A driver accepts
// `run <file>`; exit 0 on success, nonzero on reported errors." There is
// no Dada runtime in scope (spec.md §1's Non-goals), so "running" a
// program means checking it end to end — parse, lower, check where-clauses
// — and reporting whatever diagnostics surface.
var runCmd = &cobra.Command{
	Use:   "run [flags] <file.dada|directory>",
	Short: "Check a program and report success or failure (no execution)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runRun,
}

func init() {
	runCmd.Flags().String("ui", "auto", "progress UI (auto|on|off)")
	runCmd.Flags().Int("jobs", 0, "max parallel workers (0=auto)")
}

func runRun(cmd *cobra.Command, args []string) error {
	target, err := resolveCheckTarget(args)
	if err != nil {
		return err
	}

	uiValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return err
	}
	uiModeValue, err := readUIMode(uiValue)
	if err != nil {
		return err
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	colorFlag, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return err
	}

	results, fileSet, _, _, err := runCheckAll(cmd.Context(), target, loader.Options{
		MaxDiagnostics: maxDiagnostics,
		Jobs:           jobs,
	}, shouldUseTUI(uiModeValue))
	if err != nil {
		return err
	}

	useColor := colorFlag == "on" || (colorFlag == "auto" && isTerminal(os.Stdout))
	opts := diagfmt.PrettyOpts{Color: useColor, Context: 2, ShowNotes: true}

	errCount := 0
	for _, r := range results {
		if r.Bag == nil {
			continue
		}
		r.Bag.Sort()
		if r.Bag.Len() > 0 {
			diagfmt.Pretty(os.Stdout, r.Bag, fileSet, opts)
		}
		if r.Bag.HasErrors() {
			errCount++
		}
	}
	if errCount > 0 {
		return fmt.Errorf("%d file(s) reported errors", errCount)
	}
	return nil
}
