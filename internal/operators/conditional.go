package operators

import (
	"context"

	"github.com/cyber-boost/helix-sub000/internal/herr"
	"github.com/cyber-boost/helix-sub000/pkg/value"
)

// conditionalIf implements `if`: {"condition":bool,"then":v,"else":v}.
func conditionalIf(_ context.Context, _ *Engine, params map[string]value.Value) (value.Value, error) {
	cond, ok := params["condition"].AsBool()
	if !ok {
		return value.Null(), herr.New(herr.InvalidParameters, "if: condition must be a bool")
	}
	if cond {
		return params["then"], nil
	}
	return params["else"], nil
}

// conditionalSwitch implements `switch`: {"value":v,"cases":{k:v,...},"default":v}.
// The case map's keys are matched against value's string rendering.
func conditionalSwitch(_ context.Context, _ *Engine, params map[string]value.Value) (value.Value, error) {
	subject, ok := params["value"]
	if !ok {
		return value.Null(), herr.New(herr.InvalidParameters, "switch: missing 'value'")
	}
	cases, ok := params["cases"].AsObject()
	if !ok {
		return value.Null(), herr.New(herr.InvalidParameters, "switch: 'cases' must be an object")
	}
	if result, ok := cases[subject.String()]; ok {
		return result, nil
	}
	if def, ok := params["default"]; ok {
		return def, nil
	}
	return value.Null(), nil
}

// conditionalLoop implements `loop`: {"count":N,"value":v} repeats value N
// times into an array. N must be a non-negative number; a fractional N is
// truncated toward zero.
func conditionalLoop(_ context.Context, _ *Engine, params map[string]value.Value) (value.Value, error) {
	n, ok := params["count"].AsNumber()
	if !ok || n < 0 {
		return value.Null(), herr.New(herr.InvalidParameters, "loop: 'count' must be a non-negative number")
	}
	item := params["value"]
	out := make([]value.Value, int(n))
	for i := range out {
		out[i] = item
	}
	return value.Array(out), nil
}

// conditionalFilter implements `filter`: {"items":[...],"equals":v} keeps
// only elements equal (by string rendering) to "equals".
func conditionalFilter(_ context.Context, _ *Engine, params map[string]value.Value) (value.Value, error) {
	items, ok := params["items"].AsArray()
	if !ok {
		return value.Null(), herr.New(herr.InvalidParameters, "filter: 'items' must be an array")
	}
	target := params["equals"].String()
	var out []value.Value
	for _, it := range items {
		if it.String() == target {
			out = append(out, it)
		}
	}
	return value.Array(out), nil
}

// conditionalMap implements `map`: {"items":[...],"prefix":"..","suffix":".."}
// — a deliberately simple string-transform map, since the engine has no
// user-defined function values to apply (HELIX has no user-defined
// functions; see the compiler's own non-goals).
func conditionalMap(_ context.Context, _ *Engine, params map[string]value.Value) (value.Value, error) {
	items, ok := params["items"].AsArray()
	if !ok {
		return value.Null(), herr.New(herr.InvalidParameters, "map: 'items' must be an array")
	}
	prefix := optionalString(params, "prefix", "")
	suffix := optionalString(params, "suffix", "")
	out := make([]value.Value, len(items))
	for i, it := range items {
		out[i] = value.String(prefix + it.String() + suffix)
	}
	return value.Array(out), nil
}

// conditionalReduce implements `reduce`: {"items":[...],"op":"sum"|"concat","initial":v}.
func conditionalReduce(_ context.Context, _ *Engine, params map[string]value.Value) (value.Value, error) {
	items, ok := params["items"].AsArray()
	if !ok {
		return value.Null(), herr.New(herr.InvalidParameters, "reduce: 'items' must be an array")
	}
	op := optionalString(params, "op", "sum")

	switch op {
	case "sum":
		total, _ := params["initial"].AsNumber()
		for _, it := range items {
			n, ok := it.AsNumber()
			if !ok {
				return value.Null(), herr.New(herr.InvalidParameters, "reduce: sum requires numeric items")
			}
			total += n
		}
		return value.Number(total), nil
	case "concat":
		acc := optionalString(params, "initial", "")
		for _, it := range items {
			acc += it.String()
		}
		return value.String(acc), nil
	default:
		return value.Null(), herr.New(herr.InvalidParameters, "reduce: unknown op '"+op+"'")
	}
}
