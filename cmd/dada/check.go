package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"dada/internal/diagfmt"
	"dada/internal/loader"
	"dada/internal/project"
	"dada/internal/source"
	"dada/internal/symir"
	"dada/internal/trace"
	"dada/internal/ui"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] [file.dada|directory]",
	Short: "Check permissions and types without emitting WASM",
	Long: `Check parses, lowers, and runs where-clause checking over every *.dada
file under the given path (or the current directory's dada.toml package
root), reporting diagnostics but producing no WASM output.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().String("ui", "auto", "progress UI (auto|on|off)")
	checkCmd.Flags().Int("jobs", 0, "max parallel workers (0=auto)")
	checkCmd.Flags().String("cache", "dada", "on-disk cache app name (empty disables the cache)")
}

func runCheck(cmd *cobra.Command, args []string) error {
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
	cacheApp, err := cmd.Flags().GetString("cache")
	if err != nil {
		return fmt.Errorf("failed to get cache flag: %w", err)
	}
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}
	colorFlag, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return err
	}

	span := trace.Begin(trace.FromContext(cmd.Context()), trace.ScopeDriver, "check", 0)
	defer span.End("")

	results, fileSet, _, _, err := runCheckAll(cmd.Context(), target, loader.Options{
		MaxDiagnostics: maxDiagnostics,
		Jobs:           jobs,
		DiskCacheApp:   cacheApp,
	}, shouldUseTUI(uiModeValue))
	if err != nil {
		return err
	}

	useColor := colorFlag == "on" || (colorFlag == "auto" && isTerminal(os.Stdout))
	opts := diagfmt.PrettyOpts{Color: useColor, Context: 2, ShowNotes: true}

	errCount, warnCount := 0, 0
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
		if r.Bag.HasWarnings() {
			warnCount++
		}
	}

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "checked %d file(s): %d with errors, %d with warnings\n",
			len(results), errCount, warnCount)
	}
	if errCount > 0 {
		return fmt.Errorf("%d file(s) failed to check", errCount)
	}
	return nil
}

// resolveCheckTarget turns an optional CLI argument into a directory to
// walk: an explicit directory is used as-is, an explicit file's parent
// directory is used, and no argument falls back to the dada.toml package
// root (or the current directory if there is none).
func resolveCheckTarget(args []string) (string, error) {
	if len(args) == 0 {
		if root, ok, err := project.FindProjectRoot("."); err != nil {
			return "", err
		} else if ok {
			return root, nil
		}
		return ".", nil
	}
	path := args[0]
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("failed to stat path: %w", err)
	}
	if info.IsDir() {
		return path, nil
	}
	return filepath.Dir(path), nil
}

// runCheckAll drives loader.CheckAll to completion, optionally driving a
// bubbletea progress model off its event channel while the check runs.
func runCheckAll(ctx context.Context, dir string, opts loader.Options, useTUI bool) ([]loader.FileResult, *source.FileSet, *symir.Arena, *source.Interner, error) {
	files, err := loader.ListSourceFiles(dir)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	fileSet, results, events, arena, interner, err := loader.CheckAll(ctx, dir, opts)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	if useTUI && len(files) > 0 {
		model := ui.NewProgressModel("dada check", files, events)
		program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
		if _, runErr := program.Run(); runErr != nil {
			return nil, nil, nil, nil, runErr
		}
	} else {
		for range events {
			// drain without rendering
		}
	}

	return results, fileSet, arena, interner, nil
}
