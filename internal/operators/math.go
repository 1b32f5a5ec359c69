package operators

import (
	"context"
	"fmt"

	"github.com/cyber-boost/helix-sub000/internal/calc"
	"github.com/cyber-boost/helix-sub000/internal/herr"
	"github.com/cyber-boost/helix-sub000/pkg/value"
)

// mathCalc implements `calc`: {"source":"reproducibility { ... }"} runs the
// calc mini-DSL and returns its final environment as an Object.
func mathCalc(_ context.Context, _ *Engine, params map[string]value.Value) (value.Value, error) {
	src, err := requireString(params, "source")
	if err != nil {
		return value.Null(), err
	}
	return calc.Eval(src)
}

// mathEval implements `eval`: sugar that wraps the given expression in a
// synthetic `reproducibility { result = <expr> }` block, runs it through
// the same calc engine, and returns the "result" binding widened to
// Number (0 if the expression produced no "result" binding at all).
func mathEval(ctx context.Context, e *Engine, params map[string]value.Value) (value.Value, error) {
	expr, err := requireString(params, "expression")
	if err != nil {
		return value.Null(), err
	}

	wrapped := fmt.Sprintf("reproducibility { result = %s }", expr)
	out, err := calc.Eval(wrapped)
	if err != nil {
		return value.Null(), herr.Wrap(herr.Execution, err, "eval: failed to evaluate expression")
	}

	fields, ok := out.AsObject()
	if !ok {
		return value.Number(0), nil
	}
	result, ok := fields["result"]
	if !ok {
		return value.Number(0), nil
	}
	return result, nil
}
