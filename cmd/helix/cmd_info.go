package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cyber-boost/helix-sub000/internal/compiler"
	"github.com/cyber-boost/helix-sub000/internal/herr"
)

var infoCmd = &cobra.Command{
	Use:   "info <path.hlxb>",
	Short: "Print symbol-table statistics and metadata for a compiled binary",
	Args:  cobra.ExactArgs(1),
	RunE:  runInfo,
}

func runInfo(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return herr.IoErr(err, "failed to read "+args[0])
	}

	logger.Debug("inspecting binary", zap.String("path", args[0]))

	info, err := compiler.Inspect(data)
	if err != nil {
		return err
	}

	created := time.Unix(info.Metadata.CreatedAtUnix, 0).UTC().Format(time.RFC3339)
	fmt.Printf("compiler version:   %s\n", info.Metadata.CompilerVersion)
	fmt.Printf("created:            %s\n", created)
	fmt.Printf("platform:           %s\n", info.Metadata.SourcePlatform)
	fmt.Printf("optimization level: %d\n", info.Metadata.OptimizationLevel)
	if info.Metadata.SourcePath != "" {
		fmt.Printf("source path:        %s\n", info.Metadata.SourcePath)
	}
	fmt.Println()
	fmt.Printf("agents:             %d\n", info.Stats.Agents)
	fmt.Printf("workflows:          %d\n", info.Stats.Workflows)
	fmt.Printf("contexts:           %d\n", info.Stats.Contexts)
	fmt.Printf("crews:              %d\n", info.Stats.Crews)
	fmt.Printf("unique strings:     %d\n", info.Stats.UniqueStrings)
	fmt.Printf("total bytes:        %d\n", info.Stats.TotalBytes)
	return nil
}
