package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/oxhq/codeframe/internal/config"
	"github.com/oxhq/codeframe/internal/ignorefile"
	"github.com/oxhq/codeframe/internal/orchestrator"
	"github.com/oxhq/codeframe/internal/registry"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	var (
		configPath   string
		ignorePath   string
		workers      int
		includeGlobs []string
		excludeGlobs []string
	)

	root := &cobra.Command{
		Use:          "codeframe <input-path> <output-path>",
		Short:        "Extract a structural summary from a directory of source files",
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, posArgs []string) error {
			inputPath, outputPath := posArgs[0], posArgs[1]

			if configPath == "" {
				configPath = config.FileName
			}
			if ignorePath == "" {
				ignorePath = ignorefile.FileName
			}

			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			ignore, err := ignorefile.Load(ignorePath)
			if err != nil {
				return err
			}

			reg := registry.Build(cfg.AnalyzerEnabled)

			outFile, err := os.Create(outputPath)
			if err != nil {
				return fmt.Errorf("codeframe: output path %s: %w", outputPath, err)
			}
			defer outFile.Close()

			logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
			logger.Info("starting run", "input", inputPath, "output", outputPath)

			err = orchestrator.Run(cmd.Context(), outFile, orchestrator.Options{
				InputPath:    inputPath,
				Config:       cfg,
				Registry:     reg,
				Ignore:       ignore,
				IncludeGlobs: includeGlobs,
				ExcludeGlobs: excludeGlobs,
				Workers:      workers,
			})
			if err != nil {
				logger.Error("run failed", "error", err)
			}
			return err
		},
	}

	root.Flags().StringVar(&configPath, "config", "", "path to codeframe-config.yml (default: working directory)")
	root.Flags().StringVar(&ignorePath, "ignore-file", "", "path to .ignore (default: working directory)")
	root.Flags().IntVar(&workers, "workers", 0, "number of concurrent file workers (default: number of CPUs)")
	root.Flags().StringSliceVar(&includeGlobs, "include", nil, "glob patterns a file must match to be analyzed")
	root.Flags().StringSliceVar(&excludeGlobs, "exclude", nil, "glob patterns that exclude a file from analysis")

	root.SetArgs(args)

	if err := root.Execute(); err != nil {
		if isUsageError(root, args) {
			return 2
		}
		return 1
	}
	return 0
}

// isUsageError reports whether Execute's error came from argument parsing
// rather than a run failure (missing input path etc.), which exits 1
// instead of 2 per spec.md §6's exit-code contract.
func isUsageError(cmd *cobra.Command, args []string) bool {
	if err := cmd.ParseFlags(args); err != nil {
		return true
	}
	return cmd.ValidateArgs(cmd.Flags().Args()) != nil
}
