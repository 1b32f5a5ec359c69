package operators

import (
	"context"

	"github.com/cyber-boost/helix-sub000/pkg/value"
)

// Category classifies an operator into one of the five fixed sub-engines.
// Modeled as a closed enum rather than an open trait-object set, so
// dispatch is exhaustive and new operators can only land in a category
// this package already knows how to route.
type Category int

const (
	CategoryFundamental Category = iota
	CategoryConditional
	CategoryString
	CategoryMath
	CategoryValidation
)

func (c Category) String() string {
	switch c {
	case CategoryFundamental:
		return "fundamental"
	case CategoryConditional:
		return "conditional"
	case CategoryString:
		return "string"
	case CategoryMath:
		return "math"
	case CategoryValidation:
		return "validation"
	default:
		return "unknown"
	}
}

// Handler is the uniform shape of every operator: a name is already
// resolved by the time a Handler runs, so it only sees its parsed params
// and the engine instance it may read shared state from.
type Handler func(ctx context.Context, e *Engine, params map[string]value.Value) (value.Value, error)

type entry struct {
	category Category
	handler  Handler
}

// Registry maps an operator name to its category and handler. Built once
// at engine construction and never mutated afterward, so lookups require
// no locking regardless of how many goroutines call Execute concurrently.
type Registry struct {
	ops map[string]entry
}

// newRegistry builds the fixed, complete operator table: fundamental,
// conditional, string, math, and validation categories.
func newRegistry() *Registry {
	r := &Registry{ops: make(map[string]entry)}
	r.register(CategoryFundamental, map[string]Handler{
		"var":    fundamentalVar,
		"date":   fundamentalDate,
		"file":   fundamentalFile,
		"json":   fundamentalJSON,
		"query":  fundamentalQuery,
		"base64": fundamentalBase64,
		"uuid":   fundamentalUUID,
		"env":    fundamentalEnv,
		"memory": fundamentalMemory,
	})
	r.register(CategoryConditional, map[string]Handler{
		"if":     conditionalIf,
		"switch": conditionalSwitch,
		"loop":   conditionalLoop,
		"filter": conditionalFilter,
		"map":    conditionalMap,
		"reduce": conditionalReduce,
	})
	r.register(CategoryString, map[string]Handler{
		"concat":  stringConcat,
		"split":   stringSplit,
		"replace": stringReplace,
		"trim":    stringTrim,
		"upper":   stringUpper,
		"lower":   stringLower,
		"hash":    stringHash,
		"format":  stringFormat,
	})
	r.register(CategoryMath, map[string]Handler{
		"calc": mathCalc,
		"eval": mathEval,
	})
	r.register(CategoryValidation, map[string]Handler{
		"validate": validationValidate,
		"schema":   validationSchema,
	})
	return r
}

func (r *Registry) register(cat Category, handlers map[string]Handler) {
	for name, h := range handlers {
		r.ops[name] = entry{category: cat, handler: h}
	}
}

// Names returns every registered operator name, including the fundamental
// sub-engine's extra cross-cutting names (`env`, `memory`). Names are
// stored without the `@` prefix; Execute strips a leading `@`, so both
// forms reach the same handler.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.ops))
	for name := range r.ops {
		out = append(out, name)
	}
	return out
}
