package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cyber-boost/helix-sub000/internal/herr"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Scaffold a new HELIX project with a template source file",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runInit,
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite an existing main.hlx")
}

const templateSource = `project {
  version = "0.1.0"
}

agent "assistant" {
  model = "gpt-4"
  role = "assistant"
  temperature = 0.7
}

workflow "main" {
  process = "sequential"
}
`

func runInit(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return herr.IoErr(err, "failed to create "+dir)
	}

	path := filepath.Join(dir, "main.hlx")
	if !initForce {
		if _, err := os.Stat(path); err == nil {
			return herr.New(herr.InvalidInput, path+" already exists (use --force to overwrite)")
		}
	}

	if err := os.WriteFile(path, []byte(templateSource), 0o644); err != nil {
		return herr.IoErr(err, "failed to write "+path)
	}

	logger.Info("scaffolded project", zap.String("path", path), zap.Bool("forced", initForce))
	fmt.Printf("initialized HELIX project at %s\n", path)
	return nil
}
