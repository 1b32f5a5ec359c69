package main

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cyber-boost/helix-sub000/internal/binary"
	"github.com/cyber-boost/helix-sub000/internal/bundler"
	"github.com/cyber-boost/helix-sub000/internal/compiler"
	"github.com/cyber-boost/helix-sub000/internal/herr"
	"github.com/cyber-boost/helix-sub000/internal/optimizer"
)

var (
	bundleOutput    string
	bundleInclude   []string
	bundleExclude   []string
	bundleTreeShake bool
	bundleOptLevel  int
	bundleCompress  string
)

var bundleCmd = &cobra.Command{
	Use:   "bundle <dir>",
	Short: "Merge a directory of HELIX sources into one compiled binary",
	Args:  cobra.ExactArgs(1),
	RunE:  runBundle,
}

func init() {
	bundleCmd.Flags().StringVarP(&bundleOutput, "output", "o", "bundle.hlxb", "output path")
	bundleCmd.Flags().StringArrayVar(&bundleInclude, "include", nil, "glob patterns to include (default: *.hlx)")
	bundleCmd.Flags().StringArrayVar(&bundleExclude, "exclude", nil, "glob patterns to exclude")
	bundleCmd.Flags().BoolVar(&bundleTreeShake, "tree-shake", false, "prune unreachable declarations")
	bundleCmd.Flags().IntVar(&bundleOptLevel, "opt-level", -1, "optimization level 0-3 (default: config's default_optimize_level)")
	bundleCmd.Flags().StringVar(&bundleCompress, "compress", "", "compression kind: none, gzip, zstd (default: config's default_compression)")
}

func runBundle(cmd *cobra.Command, args []string) error {
	level := cfg.DefaultOptimizeLevel
	if bundleOptLevel >= 0 {
		level = optimizer.Level(bundleOptLevel)
	}

	logger.Info("bundling directory", zap.String("dir", args[0]), zap.Bool("tree_shake", bundleTreeShake))

	res, err := bundler.Bundle(cmd.Context(), bundler.Options{
		Dir:        args[0],
		Include:    bundleInclude,
		Exclude:    bundleExclude,
		TreeShake:  bundleTreeShake,
		OptimizeAt: level,
	})
	if err != nil {
		return err
	}
	logger.Debug("bundle source files", zap.Strings("files", res.Files))

	compress := cfg.DefaultCompression
	if bundleCompress != "" {
		k, err := parseCompressionKind(bundleCompress)
		if err != nil {
			return err
		}
		compress = k
	}

	meta := binary.Metadata{
		CreatedAtUnix:     time.Now().Unix(),
		CompilerVersion:   compiler.CompilerVersion,
		SourcePlatform:    runtime.GOOS + "/" + runtime.GOARCH,
		OptimizationLevel: uint8(level),
	}

	data, err := binary.Serialize(res.IR, meta, compress)
	if err != nil {
		return err
	}

	if err := os.WriteFile(bundleOutput, data, 0o644); err != nil {
		return herr.IoErr(err, "failed to write "+bundleOutput)
	}

	fmt.Printf("bundled %d file(s) -> %s (%d bytes)\n", len(res.Files), bundleOutput, len(data))
	fmt.Printf("  strings deduped: %d, constants folded: %d, declarations pruned: %d\n",
		res.Stats.StringsDeduped, res.Stats.ConstantsFolded, res.Stats.DeclarationsPruned)
	logger.Info("bundle written",
		zap.String("output", bundleOutput),
		zap.Int("files", len(res.Files)),
		zap.Int("bytes", len(data)))
	return nil
}
