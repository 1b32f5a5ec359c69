// Package validator enforces cross-reference integrity, required-field
// presence, and enum domain checks over a parsed HELIX AST.
// The validator is pure: no I/O, no mutation beyond building its report.
package validator

import (
	"fmt"
	"regexp"

	"github.com/cyber-boost/helix-sub000/internal/ast"
	"github.com/cyber-boost/helix-sub000/internal/herr"
)

var semverShape = regexp.MustCompile(`^\d+\.\d+\.\d+$`)

// ProcessKinds is the closed vocabulary for a workflow's `process` field.
var ProcessKinds = map[string]bool{"sequential": true, "parallel": true, "graph": true}

// RetryBackoffs is the closed vocabulary for a retry block's `backoff` field.
var RetryBackoffs = map[string]bool{"fixed": true, "linear": true, "exponential": true}

// TriggerKinds is the closed vocabulary for a trigger block's `kind` field.
// "manual" is the sentinel that excludes a workflow from the optimizer's
// trigger-root reachability set.
var TriggerKinds = map[string]bool{"manual": true, "schedule": true, "webhook": true, "event": true}

// Report is the validator's output: a validated AST is simply the input
// File, confirmed free of the errors below.
type Report struct {
	Errors []*herr.Error
}

// Valid reports whether the File has zero errors.
func (r Report) Valid() bool { return len(r.Errors) == 0 }

// Validate runs every rule against f and collects every
// violation rather than stopping at the first.
func Validate(f *ast.File) Report {
	v := &validation{file: f}
	v.checkProjects()
	v.checkAgents()
	v.checkWorkflows()
	v.checkCrews()
	v.checkPipelines()
	return Report{Errors: v.errs}
}

type validation struct {
	file *ast.File
	errs []*herr.Error
}

func (v *validation) fail(field, rule, message string) {
	v.errs = append(v.errs, herr.ValidationErr(field, rule, message))
}

func (v *validation) failValue(field, rule, message string, value interface{}) {
	v.errs = append(v.errs, herr.ValidationErrValue(field, rule, message, value))
}

func (v *validation) checkProjects() {
	for _, p := range v.file.DeclsOf(ast.KindProject) {
		ver, ok := p.Field("version")
		if !ok {
			v.fail("project.version", "required", "project declaration missing required field 'version'")
			continue
		}
		s, isStr := ver.AsString()
		if !isStr || !semverShape.MatchString(s) {
			v.failValue("project.version", "format", "project.version must look like a dotted semver (e.g. 1.0.0)", s)
		}
	}
}

func (v *validation) checkAgents() {
	for _, a := range v.file.DeclsOf(ast.KindAgent) {
		if _, ok := a.Field("model"); !ok {
			v.fail("agent.model", "required", fmt.Sprintf("agent %q missing required field 'model'", a.Name))
		}
		if _, ok := a.Field("role"); !ok {
			v.fail("agent.role", "required", fmt.Sprintf("agent %q missing required field 'role'", a.Name))
		}
		if tv, ok := a.Field("temperature"); ok {
			n, isNum := tv.AsNumber()
			if !isNum || n < 0.0 || n > 2.0 {
				v.failValue("agent.temperature", "range", fmt.Sprintf("agent %q temperature must be in [0.0, 2.0]", a.Name), n)
			}
		}
	}
}

func (v *validation) agentNames() map[string]bool {
	names := map[string]bool{}
	for _, a := range v.file.DeclsOf(ast.KindAgent) {
		names[a.Name] = true
	}
	return names
}

func (v *validation) contextNames() map[string]bool {
	names := map[string]bool{}
	for _, c := range v.file.DeclsOf(ast.KindContext) {
		names[c.Name] = true
	}
	return names
}

func (v *validation) crewNames() map[string]bool {
	names := map[string]bool{}
	for _, c := range v.file.DeclsOf(ast.KindCrew) {
		names[c.Name] = true
	}
	return names
}

func (v *validation) checkWorkflows() {
	agents := v.agentNames()
	contexts := v.contextNames()
	crews := v.crewNames()
	for _, wf := range v.file.DeclsOf(ast.KindWorkflow) {
		if proc, ok := wf.Field("process"); ok {
			s, _ := proc.AsString()
			if !ProcessKinds[s] {
				v.failValue("workflow.process", "enum", fmt.Sprintf("workflow %q has unknown process kind %q", wf.Name, s), s)
			}
		}
		if ctx, ok := wf.Field("context"); ok {
			name, _ := ctx.AsString()
			if !contexts[name] {
				v.failValue("workflow.context", "reference", fmt.Sprintf("unresolved context '%s' in workflow %q", name, wf.Name), name)
			}
		}
		if cr, ok := wf.Field("crew"); ok {
			name, _ := cr.AsString()
			if !crews[name] {
				v.failValue("workflow.crew", "reference", fmt.Sprintf("unresolved crew '%s' in workflow %q", name, wf.Name), name)
			}
		}

		stepNames := map[string]bool{}
		for _, s := range wf.ChildrenOf(ast.KindStep) {
			stepNames[s.Name] = true
		}

		for _, s := range wf.ChildrenOf(ast.KindStep) {
			agentVal, ok := s.Field("agent")
			if ok {
				name, _ := agentVal.AsString()
				if !agents[name] {
					v.failValue("workflow.step.agent", "reference", fmt.Sprintf("unresolved agent '%s'", name), name)
				}
			}
			if depsVal, ok := s.Field("depends_on"); ok {
				deps, _ := depsVal.AsArray()
				for _, d := range deps {
					name, _ := d.AsString()
					if name == s.Name || !stepNames[name] {
						v.failValue("workflow.step.depends_on", "reference", fmt.Sprintf("step %q depends on unresolved sibling step '%s'", s.Name, name), name)
					}
				}
			}
		}

		for _, r := range wf.ChildrenOf(ast.KindRetry) {
			if bv, ok := r.Field("backoff"); ok {
				s, _ := bv.AsString()
				if !RetryBackoffs[s] {
					v.failValue("workflow.retry.backoff", "enum", fmt.Sprintf("retry %q has unknown backoff kind %q", r.Name, s), s)
				}
			}
		}

		for _, t := range wf.ChildrenOf(ast.KindTrigger) {
			if kv, ok := t.Field("kind"); ok {
				s, _ := kv.AsString()
				if !TriggerKinds[s] {
					v.failValue("workflow.trigger.kind", "enum", fmt.Sprintf("trigger %q has unknown kind %q", t.Name, s), s)
				}
			}
		}
	}
}

func (v *validation) checkCrews() {
	agents := v.agentNames()
	for _, c := range v.file.DeclsOf(ast.KindCrew) {
		membersVal, ok := c.Field("agents")
		if !ok {
			continue
		}
		members, _ := membersVal.AsArray()
		for _, m := range members {
			name, _ := m.AsString()
			if !agents[name] {
				v.failValue("crew.agents", "reference", fmt.Sprintf("unresolved agent '%s' in crew %q", name, c.Name), name)
			}
		}
	}
}

// checkPipelines enforces that a pipeline's edges form a DAG over the
// steps of the workflow it names, and that every edge endpoint is a
// declared step.
func (v *validation) checkPipelines() {
	workflowSteps := map[string]map[string]bool{}
	for _, wf := range v.file.DeclsOf(ast.KindWorkflow) {
		steps := map[string]bool{}
		for _, s := range wf.ChildrenOf(ast.KindStep) {
			steps[s.Name] = true
		}
		workflowSteps[wf.Name] = steps
	}

	for _, p := range v.file.DeclsOf(ast.KindPipeline) {
		wfVal, ok := p.Field("workflow")
		if !ok {
			v.fail("pipeline.workflow", "required", fmt.Sprintf("pipeline %q missing required field 'workflow'", p.Name))
			continue
		}
		wfName, _ := wfVal.AsString()
		steps, ok := workflowSteps[wfName]
		if !ok {
			v.failValue("pipeline.workflow", "reference", fmt.Sprintf("pipeline %q references unresolved workflow '%s'", p.Name, wfName), wfName)
			continue
		}

		edgesVal, ok := p.Field("edges")
		if !ok {
			continue
		}
		edgesRaw, _ := edgesVal.AsArray()

		adj := map[string][]string{}
		for _, e := range edgesRaw {
			pair, isArr := e.AsArray()
			if !isArr || len(pair) != 2 {
				v.fail("pipeline.edges", "format", fmt.Sprintf("pipeline %q has a malformed edge, expected [from, to]", p.Name))
				continue
			}
			from, _ := pair[0].AsString()
			to, _ := pair[1].AsString()
			if !steps[from] {
				v.failValue("pipeline.edges", "reference", fmt.Sprintf("pipeline %q edge references unresolved step '%s'", p.Name, from), from)
			}
			if !steps[to] {
				v.failValue("pipeline.edges", "reference", fmt.Sprintf("pipeline %q edge references unresolved step '%s'", p.Name, to), to)
			}
			adj[from] = append(adj[from], to)
		}

		if cyclePath, found := findCycle(adj); found {
			v.fail("pipeline.edges", "cycle", fmt.Sprintf("pipeline %q has a cycle: %v", p.Name, cyclePath))
		}
	}
}

// findCycle runs depth-first search with a recursion stack to detect a
// cycle in adj; it returns the path that closed the cycle.
func findCycle(adj map[string][]string) ([]string, bool) {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := map[string]int{}
	var path []string

	var visit func(node string) bool
	visit = func(node string) bool {
		color[node] = gray
		path = append(path, node)
		for _, next := range adj[node] {
			switch color[next] {
			case gray:
				path = append(path, next)
				return true
			case white:
				if visit(next) {
					return true
				}
			}
		}
		color[node] = black
		path = path[:len(path)-1]
		return false
	}

	for node := range adj {
		if color[node] == white {
			if visit(node) {
				return path, true
			}
		}
	}
	return nil, false
}
