// Package validation implements the schema-driven validation sub-engine
// backing the operator engine's `validate`/`schema` operators: a fixed set
// of rule kinds is applied to every declared field, errors are collected
// rather than short-circuited, and fields present in data but absent from
// schema produce warnings instead of errors.
package validation

import (
	"fmt"
	"sort"

	"github.com/cyber-boost/helix-sub000/internal/herr"
	"github.com/cyber-boost/helix-sub000/pkg/value"
)

// Error is a single rule failure on a single field.
type Error struct {
	Field   string
	Rule    string
	Message string
	Value   *value.Value
	Context string
}

// Warning flags a field present in data but undeclared in the schema.
type Warning struct {
	Field   string
	Message string
}

// Result is the outcome of validating one data object against one schema.
type Result struct {
	IsValid  bool
	Errors   []Error
	Warnings []Warning
}

// CustomFunc is a host-registered callback for the "custom" rule kind. It
// reports whether v satisfies the callback's rule, plus a failure message
// used when it does not.
type CustomFunc func(v value.Value) (bool, string)

// Engine runs schema validation. Registered once per host, reused across
// calls; carries no per-call mutable state.
type Engine struct {
	custom map[string]CustomFunc
}

// NewEngine returns an Engine with no custom rules registered.
func NewEngine() *Engine {
	return &Engine{custom: make(map[string]CustomFunc)}
}

// RegisterCustom adds a named callback usable by a {"rule":"custom","name":name}
// rule spec.
func (e *Engine) RegisterCustom(name string, fn CustomFunc) {
	e.custom[name] = fn
}

// Validate parses schemaValue into a Schema and evaluates it against
// dataValue. Both must be Objects.
func (e *Engine) Validate(schemaValue, dataValue value.Value) (Result, error) {
	schema, err := ParseSchema(schemaValue)
	if err != nil {
		return Result{}, err
	}
	data, ok := dataValue.AsObject()
	if !ok {
		return Result{}, herr.New(herr.InvalidInput, "validation: data must be a JSON object")
	}
	return e.evaluate(schema, data), nil
}

func (e *Engine) evaluate(schema Schema, data map[string]value.Value) Result {
	var result Result

	fieldNames := make([]string, 0, len(schema))
	for name := range schema {
		fieldNames = append(fieldNames, name)
	}
	sort.Strings(fieldNames)

	for _, field := range fieldNames {
		v, present := data[field]
		for _, rule := range schema[field] {
			errs := e.applyRule(field, rule, v, present)
			result.Errors = append(result.Errors, errs...)
		}
	}

	dataNames := make([]string, 0, len(data))
	for name := range data {
		dataNames = append(dataNames, name)
	}
	sort.Strings(dataNames)
	for _, name := range dataNames {
		if _, declared := schema[name]; !declared {
			result.Warnings = append(result.Warnings, Warning{
				Field:   name,
				Message: fmt.Sprintf("field %q is not declared in the schema", name),
			})
		}
	}

	result.IsValid = len(result.Errors) == 0
	return result
}
