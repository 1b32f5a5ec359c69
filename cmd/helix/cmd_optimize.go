package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cyber-boost/helix-sub000/internal/compiler"
	"github.com/cyber-boost/helix-sub000/internal/herr"
	"github.com/cyber-boost/helix-sub000/internal/optimizer"
)

var (
	optimizeOutput string
	optimizeLevel  int
)

var optimizeCmd = &cobra.Command{
	Use:   "optimize <path.hlxb>",
	Short: "Re-run the optimizer over a compiled binary at a new level",
	Args:  cobra.ExactArgs(1),
	RunE:  runOptimize,
}

func init() {
	optimizeCmd.Flags().StringVarP(&optimizeOutput, "output", "o", "", "output path (default: overwrite input)")
	optimizeCmd.Flags().IntVar(&optimizeLevel, "level", 3, "optimization level 0-3")
}

func runOptimize(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return herr.IoErr(err, "failed to read "+args[0])
	}

	logger.Info("optimizing binary", zap.String("path", args[0]), zap.Int("level", optimizeLevel))

	out, stats, err := compiler.Optimize(data, optimizer.Level(optimizeLevel))
	if err != nil {
		return err
	}
	logger.Debug("optimizer stats",
		zap.Int("strings_deduped", stats.StringsDeduped),
		zap.Int("constants_folded", stats.ConstantsFolded),
		zap.Int("declarations_pruned", stats.DeclarationsPruned),
		zap.Int("declarations_inlined", stats.DeclarationsInlined),
		zap.Int("steps_merged", stats.StepsMerged))

	dest := optimizeOutput
	if dest == "" {
		dest = args[0]
	}
	if err := os.WriteFile(dest, out, 0o644); err != nil {
		return herr.IoErr(err, "failed to write "+dest)
	}

	fmt.Printf("optimized %s -> %s at level %d\n", args[0], dest, optimizeLevel)
	fmt.Printf("  strings deduped: %d, constants folded: %d, declarations pruned: %d, declarations inlined: %d, steps merged: %d\n",
		stats.StringsDeduped, stats.ConstantsFolded, stats.DeclarationsPruned, stats.DeclarationsInlined, stats.StepsMerged)
	return nil
}
