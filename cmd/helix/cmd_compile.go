package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cyber-boost/helix-sub000/internal/binary"
	"github.com/cyber-boost/helix-sub000/internal/cache"
	"github.com/cyber-boost/helix-sub000/internal/compiler"
	"github.com/cyber-boost/helix-sub000/internal/herr"
	"github.com/cyber-boost/helix-sub000/internal/optimizer"
)

var (
	compileOutput      string
	compileOptLevel    int
	compileCompress    string
	compileNoCache     bool
	compileDebug       bool
)

var compileCmd = &cobra.Command{
	Use:   "compile <path.hlx>",
	Short: "Compile a HELIX source file to the hlxb binary format",
	Args:  cobra.ExactArgs(1),
	RunE:  runCompile,
}

func init() {
	compileCmd.Flags().StringVarP(&compileOutput, "output", "o", "", "output path (default: input path with .hlxb extension)")
	compileCmd.Flags().IntVar(&compileOptLevel, "opt-level", -1, "optimization level 0-3 (default: config's default_optimize_level)")
	compileCmd.Flags().StringVar(&compileCompress, "compress", "", "compression kind: none, gzip, zstd (default: config's default_compression)")
	compileCmd.Flags().BoolVar(&compileNoCache, "no-cache", false, "bypass the compile cache")
	compileCmd.Flags().BoolVar(&compileDebug, "debug-info", false, "embed the source path as debug info")
}

func runCompile(cmd *cobra.Command, args []string) error {
	srcPath := args[0]
	src, err := os.ReadFile(srcPath)
	if err != nil {
		return herr.IoErr(err, "failed to read "+srcPath)
	}

	level := cfg.DefaultOptimizeLevel
	if compileOptLevel >= 0 {
		level = optimizer.Level(compileOptLevel)
	}

	compress := cfg.DefaultCompression
	if compileCompress != "" {
		k, err := parseCompressionKind(compileCompress)
		if err != nil {
			return err
		}
		compress = k
	}

	opts := compiler.CompileOptions{
		Level:        level,
		Compress:     compress,
		CreatedAt:    time.Now().Unix(),
		Platform:     runtime.GOOS + "/" + runtime.GOARCH,
		SourcePath:   srcPath,
		HasDebugInfo: compileDebug,
	}

	var cacheKey string
	if !compileNoCache {
		dir, err := cfg.ResolveCacheDir()
		if err != nil {
			return err
		}
		c := cache.New(dir)
		opts.Cache = c
		cacheKey = cache.Key(src, level)
		logger.Debug("cache lookup", zap.String("key", cacheKey), zap.Bool("hit", c.Has(cacheKey)))
	}

	logger.Info("compiling source",
		zap.String("path", srcPath),
		zap.Int("opt_level", int(level)),
		zap.Bool("cache_enabled", !compileNoCache))

	data, err := compiler.Compile(string(src), opts)
	if err != nil {
		logger.Error("compile failed", zap.String("path", srcPath), zap.Error(err))
		return err
	}

	out := compileOutput
	if out == "" {
		out = withExt(srcPath, ".hlxb")
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return herr.IoErr(err, "failed to write "+out)
	}

	logger.Info("compiled binary written", zap.String("output", out), zap.Int("bytes", len(data)))
	fmt.Printf("compiled %s -> %s (%d bytes)\n", srcPath, out, len(data))
	return nil
}

func parseCompressionKind(s string) (binary.CompressionKind, error) {
	switch s {
	case "none":
		return binary.CompressionNone, nil
	case "gzip":
		return binary.CompressionGzip, nil
	case "zstd":
		return binary.CompressionZstd, nil
	default:
		return 0, herr.InvalidInputErr("unknown compression kind: "+s, "use one of: none, gzip, zstd")
	}
}

func withExt(path, ext string) string {
	trimmed := path[:len(path)-len(filepath.Ext(path))]
	return trimmed + ext
}
