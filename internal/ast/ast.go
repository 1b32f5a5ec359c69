// Package ast defines the declaration AST produced by internal/parser from
// HELIX source text.
package ast

import "github.com/cyber-boost/helix-sub000/pkg/value"

// DeclKind identifies which top-level (or workflow-scoped) construct a
// Decl represents.
type DeclKind string

const (
	KindProject  DeclKind = "project"
	KindAgent    DeclKind = "agent"
	KindWorkflow DeclKind = "workflow"
	KindContext  DeclKind = "context"
	KindCrew     DeclKind = "crew"
	KindMemory   DeclKind = "memory"
	KindPipeline DeclKind = "pipeline"
	KindStep     DeclKind = "step"
	KindRetry    DeclKind = "retry"
	KindTrigger  DeclKind = "trigger"
)

// Pos is a source location used for diagnostics.
type Pos struct {
	Line   int
	Column int
}

// Field is a single key-value assignment inside a declaration body. Key may
// be dotted (e.g. "workflow.step.agent") when the source used chained
// identifiers on the left-hand side of an assignment.
type Field struct {
	Key   string
	Value value.Value
	Pos   Pos
}

// Decl is a declaration: a name, a flat list of key-value fields, and any
// nested blocks (e.g. a workflow's step/retry/trigger sub-blocks, or a
// project's nested fields expressed as blocks rather than dotted keys).
type Decl struct {
	Kind     DeclKind
	Name     string
	Fields   []Field
	Children []*Decl
	Pos      Pos
}

// Field looks up the first field with the given key, returning ok=false if
// absent.
func (d *Decl) Field(key string) (value.Value, bool) {
	for _, f := range d.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return value.Null(), false
}

// ChildrenOf returns the immediate children of the given kind, in source
// order.
func (d *Decl) ChildrenOf(kind DeclKind) []*Decl {
	var out []*Decl
	for _, c := range d.Children {
		if c.Kind == kind {
			out = append(out, c)
		}
	}
	return out
}

// File is the parse result for one HELIX source file: an ordered list of
// top-level declarations plus any non-fatal parse errors recovered from.
type File struct {
	Decls []*Decl
}

// DeclsOf returns top-level declarations of the given kind, in source order.
func (f *File) DeclsOf(kind DeclKind) []*Decl {
	var out []*Decl
	for _, d := range f.Decls {
		if d.Kind == kind {
			out = append(out, d)
		}
	}
	return out
}
