package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cyber-boost/helix-sub000/internal/compiler"
	"github.com/cyber-boost/helix-sub000/internal/herr"
)

var decompileOutput string

var decompileCmd = &cobra.Command{
	Use:   "decompile <path.hlxb>",
	Short: "Recover canonical HELIX source from a compiled binary",
	Args:  cobra.ExactArgs(1),
	RunE:  runDecompile,
}

func init() {
	decompileCmd.Flags().StringVarP(&decompileOutput, "output", "o", "", "output path (default: stdout)")
}

func runDecompile(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return herr.IoErr(err, "failed to read "+args[0])
	}

	logger.Info("decompiling binary", zap.String("path", args[0]), zap.Int("bytes", len(data)))

	src, err := compiler.Decompile(data)
	if err != nil {
		logger.Error("decompile failed", zap.String("path", args[0]), zap.Error(err))
		return err
	}

	if decompileOutput == "" {
		fmt.Print(src)
		return nil
	}
	if err := os.WriteFile(decompileOutput, []byte(src), 0o644); err != nil {
		return herr.IoErr(err, "failed to write "+decompileOutput)
	}
	fmt.Printf("decompiled %s -> %s\n", args[0], decompileOutput)
	return nil
}
