package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cyber-boost/helix-sub000/internal/operators"
)

var execCmd = &cobra.Command{
	Use:   "exec <operator> [params_json]",
	Short: "Run an operator directly against a fresh engine instance",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runExec,
}

func runExec(cmd *cobra.Command, args []string) error {
	name := args[0]
	params := ""
	if len(args) == 2 {
		params = args[1]
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	logger.Info("executing operator", zap.String("operator", name))

	engine := operators.NewEngine()
	out, err := engine.Execute(ctx, name, params)
	if err != nil {
		logger.Error("operator execution failed", zap.String("operator", name), zap.Error(err))
		return err
	}

	data, err := out.MarshalJSON()
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
