package ir

import (
	"fmt"

	"github.com/cyber-boost/helix-sub000/internal/ast"
	"github.com/cyber-boost/helix-sub000/internal/herr"
	"github.com/cyber-boost/helix-sub000/pkg/value"
)

// Build transforms a validated AST into IR. Cross-references are resolved
// to (symbol_kind, index) pairs; an unresolved reference at this stage is
// a fatal error (the validator should already have caught it, this is
// defense-in-depth, the validator should already have caught it). totalStrings counts every interning
// call made while building, including repeats, for the info stats report.
func Build(f *ast.File) (*IR, int, error) {
	b := &builder{file: f, ir: &IR{Pool: NewPool()}}
	return b.run()
}

type builder struct {
	file *ast.File
	ir   *IR

	agentIdx    map[string]int
	workflowIdx map[string]int
	contextIdx  map[string]int
	crewIdx     map[string]int

	totalStrings int
}

func (b *builder) intern(s string) int {
	b.totalStrings++
	return b.ir.Pool.Intern(s)
}

func (b *builder) run() (*IR, int, error) {
	b.indexNames()

	for _, d := range b.file.DeclsOf(ast.KindAgent) {
		if err := b.buildAgent(d); err != nil {
			return nil, 0, err
		}
	}
	for _, d := range b.file.DeclsOf(ast.KindContext) {
		b.buildContext(d)
	}
	for _, d := range b.file.DeclsOf(ast.KindCrew) {
		if err := b.buildCrew(d); err != nil {
			return nil, 0, err
		}
	}
	for _, d := range b.file.DeclsOf(ast.KindWorkflow) {
		if err := b.buildWorkflow(d); err != nil {
			return nil, 0, err
		}
	}
	for _, d := range b.file.DeclsOf(ast.KindMemory) {
		b.buildMemory(d)
	}
	for _, d := range b.file.DeclsOf(ast.KindPipeline) {
		if err := b.buildPipeline(d); err != nil {
			return nil, 0, err
		}
	}

	return b.ir, b.totalStrings, nil
}

func (b *builder) indexNames() {
	b.agentIdx = map[string]int{}
	for i, d := range b.file.DeclsOf(ast.KindAgent) {
		b.agentIdx[d.Name] = i
	}
	b.workflowIdx = map[string]int{}
	for i, d := range b.file.DeclsOf(ast.KindWorkflow) {
		b.workflowIdx[d.Name] = i
	}
	b.contextIdx = map[string]int{}
	for i, d := range b.file.DeclsOf(ast.KindContext) {
		b.contextIdx[d.Name] = i
	}
	b.crewIdx = map[string]int{}
	for i, d := range b.file.DeclsOf(ast.KindCrew) {
		b.crewIdx[d.Name] = i
	}
}

func (b *builder) resolveAgent(name string) (Ref, error) {
	idx, ok := b.agentIdx[name]
	if !ok {
		return Ref{}, herr.New(herr.Validation, fmt.Sprintf("unresolved agent reference %q survived validation", name))
	}
	return Ref{Kind: SymAgent, Index: idx}, nil
}

func (b *builder) resolveContext(name string) (Ref, error) {
	idx, ok := b.contextIdx[name]
	if !ok {
		return Ref{}, herr.New(herr.Validation, fmt.Sprintf("unresolved context reference %q survived validation", name))
	}
	return Ref{Kind: SymContext, Index: idx}, nil
}

func (b *builder) resolveCrew(name string) (Ref, error) {
	idx, ok := b.crewIdx[name]
	if !ok {
		return Ref{}, herr.New(herr.Validation, fmt.Sprintf("unresolved crew reference %q survived validation", name))
	}
	return Ref{Kind: SymCrew, Index: idx}, nil
}

func (b *builder) buildAgent(d *ast.Decl) error {
	a := Agent{NameIdx: b.intern(d.Name)}
	if v, ok := d.Field("model"); ok {
		s, _ := v.AsString()
		a.ModelIdx = b.intern(s)
	}
	if v, ok := d.Field("role"); ok {
		s, _ := v.AsString()
		a.RoleIdx = b.intern(s)
	}
	if v, ok := d.Field("temperature"); ok {
		n, _ := v.AsNumber()
		a.Temperature = float32(n)
		a.HasTemperature = true
	}
	if v, ok := d.Field("capabilities"); ok {
		items, _ := v.AsArray()
		for _, it := range items {
			s, _ := it.AsString()
			a.Capabilities = append(a.Capabilities, b.intern(s))
		}
	}
	if v, ok := d.Field("tools"); ok {
		items, _ := v.AsArray()
		for _, it := range items {
			s, _ := it.AsString()
			a.Tools = append(a.Tools, b.intern(s))
		}
	}
	b.ir.Agents = append(b.ir.Agents, a)
	return nil
}

func (b *builder) buildContext(d *ast.Decl) {
	c := Context{NameIdx: b.intern(d.Name), Fields: map[string]value.Value{}}
	for _, f := range d.Fields {
		c.Fields[f.Key] = f.Value
	}
	b.ir.Contexts = append(b.ir.Contexts, c)
}

func (b *builder) buildCrew(d *ast.Decl) error {
	c := Crew{NameIdx: b.intern(d.Name)}
	if v, ok := d.Field("agents"); ok {
		items, _ := v.AsArray()
		for _, it := range items {
			name, _ := it.AsString()
			ref, err := b.resolveAgent(name)
			if err != nil {
				return err
			}
			c.Agents = append(c.Agents, ref)
		}
	}
	b.ir.Crews = append(b.ir.Crews, c)
	return nil
}

func (b *builder) buildWorkflow(d *ast.Decl) error {
	w := Workflow{NameIdx: b.intern(d.Name)}
	if v, ok := d.Field("process"); ok {
		s, _ := v.AsString()
		w.ProcessIdx = b.intern(s)
		w.HasProcess = true
	}
	if v, ok := d.Field("context"); ok {
		name, _ := v.AsString()
		ref, err := b.resolveContext(name)
		if err != nil {
			return err
		}
		w.Context = ref
		w.HasContext = true
	}
	if v, ok := d.Field("crew"); ok {
		name, _ := v.AsString()
		ref, err := b.resolveCrew(name)
		if err != nil {
			return err
		}
		w.Crew = ref
		w.HasCrew = true
	}

	stepIdx := map[string]int{}
	for i, s := range d.ChildrenOf(ast.KindStep) {
		stepIdx[s.Name] = i
	}

	for _, s := range d.ChildrenOf(ast.KindStep) {
		step := Step{NameIdx: b.intern(s.Name)}
		if av, ok := s.Field("agent"); ok {
			name, _ := av.AsString()
			ref, err := b.resolveAgent(name)
			if err != nil {
				return err
			}
			step.Agent = ref
			step.HasAgent = true
		}
		if dv, ok := s.Field("depends_on"); ok {
			items, _ := dv.AsArray()
			for _, it := range items {
				name, _ := it.AsString()
				idx, ok := stepIdx[name]
				if !ok {
					return herr.New(herr.Validation, fmt.Sprintf("unresolved step reference %q survived validation", name))
				}
				step.DependsOn = append(step.DependsOn, idx)
			}
		}
		w.Steps = append(w.Steps, step)
	}

	for _, r := range d.ChildrenOf(ast.KindRetry) {
		retry := Retry{NameIdx: b.intern(r.Name)}
		if bv, ok := r.Field("backoff"); ok {
			s, _ := bv.AsString()
			retry.BackoffIdx = b.intern(s)
			retry.HasBackoff = true
		}
		if mv, ok := r.Field("max_attempts"); ok {
			n, _ := mv.AsNumber()
			retry.MaxAttempts = int64(n)
			retry.HasMax = true
		}
		w.Retries = append(w.Retries, retry)
	}

	for _, t := range d.ChildrenOf(ast.KindTrigger) {
		trig := Trigger{NameIdx: b.intern(t.Name)}
		if kv, ok := t.Field("kind"); ok {
			s, _ := kv.AsString()
			trig.KindIdx = b.intern(s)
			trig.HasKind = true
		}
		w.Triggers = append(w.Triggers, trig)
	}

	b.ir.Workflows = append(b.ir.Workflows, w)
	return nil
}

func (b *builder) buildMemory(d *ast.Decl) {
	m := Memory{NameIdx: b.intern(d.Name), Fields: map[string]value.Value{}}
	for _, f := range d.Fields {
		m.Fields[f.Key] = f.Value
	}
	b.ir.Memories = append(b.ir.Memories, m)
}

func (b *builder) buildPipeline(d *ast.Decl) error {
	p := Pipeline{NameIdx: b.intern(d.Name)}
	wfName := ""
	if v, ok := d.Field("workflow"); ok {
		wfName, _ = v.AsString()
	}
	wfIdx, ok := b.workflowIdx[wfName]
	if !ok {
		return herr.New(herr.Validation, fmt.Sprintf("unresolved workflow reference %q survived validation", wfName))
	}
	p.Workflow = Ref{Kind: SymWorkflow, Index: wfIdx}

	targetWorkflow := b.file.DeclsOf(ast.KindWorkflow)[wfIdx]
	stepIdx := map[string]int{}
	for i, s := range targetWorkflow.ChildrenOf(ast.KindStep) {
		stepIdx[s.Name] = i
	}

	if v, ok := d.Field("edges"); ok {
		edges, _ := v.AsArray()
		for _, e := range edges {
			pair, _ := e.AsArray()
			if len(pair) != 2 {
				continue
			}
			from, _ := pair[0].AsString()
			to, _ := pair[1].AsString()
			fromIdx, fok := stepIdx[from]
			toIdx, tok := stepIdx[to]
			if !fok || !tok {
				return herr.New(herr.Validation, "unresolved pipeline edge step survived validation")
			}
			p.Edges = append(p.Edges, PipelineEdge{From: fromIdx, To: toIdx})
		}
	}

	b.ir.Pipelines = append(b.ir.Pipelines, p)
	return nil
}
