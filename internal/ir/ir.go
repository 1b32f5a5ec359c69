// Package ir defines the flattened, symbol-indexed intermediate
// representation the optimizer and binary serializer share: a single
// interned string pool plus four parallel symbol sequences
// (agents, workflows, contexts, crews), with memory and pipeline
// declarations carried alongside for serialization but not referenced by
// the cross-reference resolver.
package ir

import "github.com/cyber-boost/helix-sub000/pkg/value"

// SymbolKind identifies which of the four core symbol sequences a Ref
// points into.
type SymbolKind int

const (
	SymAgent SymbolKind = iota
	SymWorkflow
	SymContext
	SymCrew
)

func (k SymbolKind) String() string {
	switch k {
	case SymAgent:
		return "agent"
	case SymWorkflow:
		return "workflow"
	case SymContext:
		return "context"
	case SymCrew:
		return "crew"
	default:
		return "unknown"
	}
}

// Ref is a resolved cross-reference: a (symbol_kind, index) pair.
type Ref struct {
	Kind  SymbolKind
	Index int
}

// Agent is the IR form of an `agent` declaration.
type Agent struct {
	NameIdx        int
	ModelIdx       int
	RoleIdx        int
	Temperature    float32
	HasTemperature bool
	Capabilities   []int // pool indices
	Tools          []int // pool indices
}

// Step is the IR form of a workflow-scoped `step` sub-block.
type Step struct {
	NameIdx   int
	Agent     Ref
	HasAgent  bool
	DependsOn []int // indices into the enclosing Workflow.Steps
}

// Retry is the IR form of a workflow-scoped `retry` sub-block.
type Retry struct {
	NameIdx     int
	BackoffIdx  int
	HasBackoff  bool
	MaxAttempts int64
	HasMax      bool
}

// Trigger is the IR form of a workflow-scoped `trigger` sub-block.
type Trigger struct {
	NameIdx int
	KindIdx int
	HasKind bool
}

// Workflow is the IR form of a `workflow` declaration. A workflow may
// optionally name a context it reads/writes and a crew it delegates
// parallel or graph-process steps to; both are plain name references
// resolved to symbol indices at build time, the same as a step's agent.
type Workflow struct {
	NameIdx    int
	ProcessIdx int
	HasProcess bool
	Context    Ref
	HasContext bool
	Crew       Ref
	HasCrew    bool
	Steps      []Step
	Retries    []Retry
	Triggers   []Trigger
}

// IsTriggerRoot reports whether this workflow carries any trigger whose
// kind is not "manual", the optimizer's dead-declaration-elimination and
// bundler tree-shaking root-set condition.
func (w Workflow) IsTriggerRoot(pool *Pool) bool {
	for _, t := range w.Triggers {
		if !t.HasKind {
			continue
		}
		if pool.Get(t.KindIdx) != "manual" {
			return true
		}
	}
	return false
}

// Context is the IR form of a `context` declaration. Fields are carried
// as a generic value map; context bodies are not otherwise schema-constrained.
type Context struct {
	NameIdx int
	Fields  map[string]value.Value
}

// Crew is the IR form of a `crew` declaration.
type Crew struct {
	NameIdx int
	Agents  []Ref
}

// Memory is the IR form of a `memory` declaration.
type Memory struct {
	NameIdx int
	Fields  map[string]value.Value
}

// PipelineEdge is one edge of a pipeline's step DAG, referencing step
// indices within the pipeline's target workflow.
type PipelineEdge struct {
	From int
	To   int
}

// Pipeline is the IR form of a `pipeline` declaration.
type Pipeline struct {
	NameIdx  int
	Workflow Ref
	Edges    []PipelineEdge
}

// IR is the complete compiled representation of one HELIX source unit.
type IR struct {
	Pool      *Pool
	Agents    []Agent
	Workflows []Workflow
	Contexts  []Context
	Crews     []Crew
	Memories  []Memory
	Pipelines []Pipeline
}

// Stats is the report exposed to the CLI `info` command.
type Stats struct {
	TotalStrings  int
	UniqueStrings int
	TotalBytes    int
	Agents        int
	Workflows     int
	Contexts      int
	Crews         int
}

// Stats computes the current statistics snapshot. totalStrings is threaded
// through from the builder since the IR itself only retains the
// deduplicated pool.
func (ir *IR) Stats(totalStrings int) Stats {
	return Stats{
		TotalStrings:  totalStrings,
		UniqueStrings: ir.Pool.Len(),
		TotalBytes:    ir.Pool.TotalBytes(),
		Agents:        len(ir.Agents),
		Workflows:     len(ir.Workflows),
		Contexts:      len(ir.Contexts),
		Crews:         len(ir.Crews),
	}
}
