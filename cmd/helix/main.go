// Command helix is the HELIX compiler and operator-engine CLI: compile,
// decompile, validate, bundle, info, diff, optimize, exec, and init.
//
// Command implementations are split across cmd_*.go files, mirroring the
// teacher CLI's one-file-per-command-group layout.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cyber-boost/helix-sub000/internal/config"
	"github.com/cyber-boost/helix-sub000/internal/herr"
	"github.com/cyber-boost/helix-sub000/internal/logging"
)

var (
	verbose   bool
	workspace string
	timeout   time.Duration

	logger *zap.Logger
	cfg    *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "helix",
	Short: "HELIX — compiler and operator engine for the HELIX agent DSL",
	Long: `helix compiles .hlx source into the hlxb binary format, bundles
a directory of sources into one binary, inspects and diffs compiled
binaries, and runs the operator engine directly from the command line.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		ws := workspace
		if ws == "" {
			ws, _ = os.Getwd()
		} else if abs, err := filepath.Abs(ws); err == nil {
			ws = abs
		}
		workspace = ws

		if err := logging.Initialize(ws); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to initialize file logging: %v\n", err)
		}

		loaded, err := config.Load(ws)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded

		logger.Debug("workspace resolved",
			zap.String("workspace", ws),
			zap.String("cache_dir", cfg.CacheDir),
			zap.Int("default_optimize_level", int(cfg.DefaultOptimizeLevel)))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", "", "workspace directory (default: current directory)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 2*time.Minute, "operation timeout")

	rootCmd.AddCommand(
		compileCmd,
		decompileCmd,
		validateCmd,
		bundleCmd,
		infoCmd,
		diffCmd,
		optimizeCmd,
		execCmd,
		initCmd,
	)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if he, ok := err.(*herr.Error); ok {
			os.Exit(he.Kind.ExitCode())
		}
		os.Exit(1)
	}
}
