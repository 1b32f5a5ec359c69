package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cyber-boost/helix-sub000/internal/compiler"
	"github.com/cyber-boost/helix-sub000/internal/herr"
)

var diffCmd = &cobra.Command{
	Use:   "diff <a.hlxb> <b.hlxb>",
	Short: "Show field-level differences between two compiled binaries",
	Args:  cobra.ExactArgs(2),
	RunE:  runDiff,
}

func runDiff(cmd *cobra.Command, args []string) error {
	a, err := os.ReadFile(args[0])
	if err != nil {
		return herr.IoErr(err, "failed to read "+args[0])
	}
	b, err := os.ReadFile(args[1])
	if err != nil {
		return herr.IoErr(err, "failed to read "+args[1])
	}

	logger.Info("diffing binaries", zap.String("a", args[0]), zap.String("b", args[1]))

	report, err := compiler.Diff(a, b)
	if err != nil {
		return err
	}

	if report.Identical {
		logger.Debug("diff result", zap.Bool("identical", true))
		fmt.Println("identical")
		return nil
	}
	logger.Debug("diff result",
		zap.Bool("identical", false),
		zap.Int("metadata_changed", len(report.MetadataChanged)),
		zap.Int("stats_changed", len(report.StatsChanged)))

	if len(report.MetadataChanged) > 0 {
		fmt.Printf("metadata changed: %s\n", strings.Join(report.MetadataChanged, ", "))
	}
	for _, line := range report.StatsChanged {
		fmt.Printf("stats changed: %s\n", line)
	}
	if report.SourceDiff != "" {
		fmt.Println(report.SourceDiff)
	}
	return nil
}
