package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"dada/internal/diagfmt"
	"dada/internal/loader"
	"dada/internal/objectir"
	"dada/internal/project"
	"dada/internal/source"
	"dada/internal/symir"
	"dada/internal/wasmgen"
)

var buildCmd = &cobra.Command{
	Use:   "build [flags] [file.dada|directory]",
	Short: "Check a package and emit its WASM module",
	Long: `Build checks every *.dada file under the given path (or the current
directory's dada.toml package root) and, if nothing reported an error,
emits a WASM module with one exported function per declared signature.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().String("ui", "auto", "progress UI (auto|on|off)")
	buildCmd.Flags().Int("jobs", 0, "max parallel workers (0=auto)")
	buildCmd.Flags().String("cache", "dada", "on-disk cache app name (empty disables the cache)")
	buildCmd.Flags().StringP("output", "o", "", "output .wasm path (default: <package-name>.wasm)")
}

func runBuild(cmd *cobra.Command, args []string) error {
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
	colorFlag, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return err
	}
	outputFlag, err := cmd.Flags().GetString("output")
	if err != nil {
		return fmt.Errorf("failed to get output flag: %w", err)
	}

	results, fileSet, arena, interner, err := runCheckAll(cmd.Context(), target, loader.Options{
		MaxDiagnostics: maxDiagnostics,
		Jobs:           jobs,
		DiskCacheApp:   cacheApp,
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
		return fmt.Errorf("%d file(s) failed to check; refusing to emit WASM", errCount)
	}

	mod := buildObjectModule(arena, interner, results)
	wasmBytes := wasmgen.EmitModule(mod)

	outPath := outputFlag
	if outPath == "" {
		outPath = defaultOutputPath(target)
	}
	if err := os.WriteFile(outPath, wasmBytes, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", outPath, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes, %d function(s))\n", outPath, len(wasmBytes), len(mod.Funcs))
	return nil
}

// buildObjectModule assembles an objectir.Module from every signature a
// clean check run produced. Body-to-object-IR lowering is a separate,
// not-yet-built pass (see internal/lower's package doc): each function's
// entry is left unset, which wasmgen/lower.go already treats as a body of
// no instructions — an honest placeholder for "this signature typechecks,
// its body has not been lowered yet" rather than fabricated codegen.
func buildObjectModule(arena *symir.Arena, interner *source.Interner, results []loader.FileResult) *objectir.Module {
	mod := objectir.NewModule(arena)
	for _, r := range results {
		for i, sigID := range r.Signatures {
			sig := arena.Signature(sigID)
			name := fmt.Sprintf("fn%d", int(sigID))
			if i < len(r.Names) {
				if s, ok := interner.Lookup(r.Names[i]); ok {
					name = s
				}
			}
			f := objectir.NewFunc(name)
			f.NumParams = len(sig.InputTys)
			f.ResultTy = objectir.ObjectTy{Ty: sig.OutputTy}
			mod.AddFunc(f)
		}
	}
	return mod
}

// defaultOutputPath names the emitted module after the dada.toml package,
// falling back to the target directory's base name.
func defaultOutputPath(target string) string {
	if root, ok, err := project.FindProjectRoot(target); err == nil && ok {
		if manifest, err := project.LoadManifest(filepath.Join(root, project.ManifestName)); err == nil && manifest.Name != "" {
			return manifest.Name + ".wasm"
		}
	}
	base := filepath.Base(filepath.Clean(target))
	if base == "." || base == "" {
		base = "a"
	}
	return base + ".wasm"
}
