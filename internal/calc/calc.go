// Package calc implements the reproducibility { } mini-DSL consumed by the
// operator engine's math category: a tiny expression language of integer
// assignments evaluated once in source order, with signed 64-bit wrapping
// arithmetic.
package calc

import (
	"github.com/cyber-boost/helix-sub000/internal/herr"
	"github.com/cyber-boost/helix-sub000/pkg/value"
)

// Eval parses and evaluates a `reproducibility { ident = expr ... }` block,
// returning the final environment widened to a value.Object (every int64
// binding becomes a Number).
func Eval(source string) (value.Value, error) {
	toks, err := lex(source)
	if err != nil {
		return value.Null(), err
	}
	block, err := parseBlock(toks)
	if err != nil {
		return value.Null(), err
	}
	return run(block)
}

func run(block *blockNode) (value.Value, error) {
	env := make(map[string]int64, len(block.assigns))
	for _, a := range block.assigns {
		n, err := evalExpr(a.expr, env)
		if err != nil {
			return value.Null(), err
		}
		env[a.name] = n
	}

	fields := make(map[string]value.Value, len(env))
	for k, v := range env {
		fields[k] = value.Number(float64(v))
	}
	return value.Object(fields), nil
}

func evalExpr(e expr, env map[string]int64) (int64, error) {
	switch n := e.(type) {
	case *numberLit:
		return n.v, nil
	case *identRef:
		v, ok := env[n.name]
		if !ok {
			return 0, herr.New(herr.InvalidInput, "calc: forward or undeclared reference to '"+n.name+"'")
		}
		return v, nil
	case *modRef:
		v, ok := env[n.name]
		if !ok {
			return 0, herr.New(herr.InvalidInput, "calc: forward or undeclared reference to '"+n.name+"'")
		}
		if n.mod == 0 {
			return 0, herr.New(herr.InvalidInput, "calc: modulus by zero")
		}
		m := v % n.mod
		if m < 0 {
			m += n.mod
		}
		return m, nil
	case *binary:
		l, err := evalExpr(n.left, env)
		if err != nil {
			return 0, err
		}
		r, err := evalExpr(n.right, env)
		if err != nil {
			return 0, err
		}
		switch n.op {
		case '+':
			return l + r, nil
		case '-':
			return l - r, nil
		case '*':
			return l * r, nil
		}
	}
	return 0, herr.New(herr.InvalidInput, "calc: malformed expression")
}
