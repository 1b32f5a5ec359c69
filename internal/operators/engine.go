package operators

import (
	"context"
	"strings"
	"sync"

	"github.com/cyber-boost/helix-sub000/internal/herr"
	"github.com/cyber-boost/helix-sub000/pkg/value"
)

// Engine is a handle-scoped operator runtime: its registry is immutable
// once built, and its variable/memory stores are owned by this instance,
// never accessed through package-level globals. Callers construct one
// Engine per session (or per test) via NewEngine.
type Engine struct {
	registry *Registry

	varMu sync.RWMutex
	vars  map[string]value.Value

	memMu  sync.RWMutex
	memory map[string]value.Value
}

// NewEngine constructs an Engine with empty variable and memory stores.
func NewEngine() *Engine {
	return &Engine{
		registry: newRegistry(),
		vars:     make(map[string]value.Value),
		memory:   make(map[string]value.Value),
	}
}

// Execute parses paramsJSON and dispatches to the operator named by name.
// A leading '@' is stripped before lookup, so "@var" and "var" resolve to
// the same handler; an empty or all-stripped name, or one not present in
// the registry, is an UnknownOperator error.
func (e *Engine) Execute(ctx context.Context, name, paramsJSON string) (value.Value, error) {
	lookup := strings.TrimPrefix(name, "@")

	ent, ok := e.registry.ops[lookup]
	if !ok {
		return value.Null(), herr.UnknownOperatorErr(name)
	}

	params, err := ParseParams(paramsJSON)
	if err != nil {
		return value.Null(), err
	}

	if err := ctx.Err(); err != nil {
		return value.Null(), herr.CancelledErr(name)
	}

	return ent.handler(ctx, e, params)
}

// getVar reads a variable under the reader lock.
func (e *Engine) getVar(name string) (value.Value, bool) {
	e.varMu.RLock()
	defer e.varMu.RUnlock()
	v, ok := e.vars[name]
	return v, ok
}

// setVar writes a variable under the exclusive writer lock.
func (e *Engine) setVar(name string, v value.Value) {
	e.varMu.Lock()
	defer e.varMu.Unlock()
	e.vars[name] = v
}

func (e *Engine) getMemory(name string) (value.Value, bool) {
	e.memMu.RLock()
	defer e.memMu.RUnlock()
	v, ok := e.memory[name]
	return v, ok
}

func (e *Engine) setMemory(name string, v value.Value) {
	e.memMu.Lock()
	defer e.memMu.Unlock()
	e.memory[name] = v
}
