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

var validateCmd = &cobra.Command{
	Use:   "validate <path.hlx|path.hlxb>",
	Short: "Validate a HELIX source file or compiled binary",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return herr.IoErr(err, "failed to read "+path)
	}

	var rep compiler.ValidationReport
	if strings.HasSuffix(path, ".hlxb") {
		rep, err = compiler.ValidateBinary(data)
		if err != nil {
			return err
		}
	} else {
		rep = compiler.Validate(string(data))
	}

	if rep.Valid() {
		logger.Info("validation passed", zap.String("path", path))
		fmt.Printf("%s: valid\n", path)
		return nil
	}

	logger.Warn("validation failed", zap.String("path", path), zap.Int("error_count", len(rep.Errors)))
	fmt.Printf("%s: %d error(s)\n", path, len(rep.Errors))
	for _, e := range rep.Errors {
		fmt.Printf("  %s\n", e.Error())
	}
	return herr.New(herr.Validation, fmt.Sprintf("%d validation error(s) in %s", len(rep.Errors), path))
}
