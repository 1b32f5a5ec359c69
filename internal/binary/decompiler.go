package binary

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/cyber-boost/helix-sub000/internal/ir"
	"github.com/cyber-boost/helix-sub000/pkg/value"
)

// Decompile walks a loaded IR and emits canonical HELIX source: 4-space
// indent, declarations in IR order, minimal string escaping. It is not
// required to reproduce the original source byte-for-byte, only to
// round-trip: parsing the output must yield an equivalent IR.
func Decompile(v *ir.IR) string {
	var b strings.Builder

	for _, a := range v.Agents {
		writeAgent(&b, v, a)
	}
	for _, c := range v.Contexts {
		writeContext(&b, v, c)
	}
	for _, c := range v.Crews {
		writeCrew(&b, v, c)
	}
	for _, wf := range v.Workflows {
		writeWorkflow(&b, v, wf)
	}
	for _, m := range v.Memories {
		writeMemory(&b, v, m)
	}
	for _, p := range v.Pipelines {
		writePipeline(&b, v, p)
	}

	return b.String()
}

func writeAgent(b *strings.Builder, v *ir.IR, a ir.Agent) {
	fmt.Fprintf(b, "agent %s {\n", quote(v.Pool.Get(a.NameIdx)))
	fmt.Fprintf(b, "    model = %s\n", quote(v.Pool.Get(a.ModelIdx)))
	fmt.Fprintf(b, "    role = %s\n", quote(v.Pool.Get(a.RoleIdx)))
	if a.HasTemperature {
		fmt.Fprintf(b, "    temperature = %s\n", formatNumber(float64(a.Temperature)))
	}
	if len(a.Capabilities) > 0 {
		fmt.Fprintf(b, "    capabilities = %s\n", stringArray(v, a.Capabilities))
	}
	if len(a.Tools) > 0 {
		fmt.Fprintf(b, "    tools = %s\n", stringArray(v, a.Tools))
	}
	b.WriteString("}\n\n")
}

func writeContext(b *strings.Builder, v *ir.IR, c ir.Context) {
	fmt.Fprintf(b, "context %s {\n", quote(v.Pool.Get(c.NameIdx)))
	writeFields(b, c.Fields, "    ")
	b.WriteString("}\n\n")
}

func writeMemory(b *strings.Builder, v *ir.IR, m ir.Memory) {
	fmt.Fprintf(b, "memory %s {\n", quote(v.Pool.Get(m.NameIdx)))
	writeFields(b, m.Fields, "    ")
	b.WriteString("}\n\n")
}

func writeCrew(b *strings.Builder, v *ir.IR, c ir.Crew) {
	fmt.Fprintf(b, "crew %s {\n", quote(v.Pool.Get(c.NameIdx)))
	names := make([]int, len(c.Agents))
	for i, ref := range c.Agents {
		names[i] = v.Agents[ref.Index].NameIdx
	}
	fmt.Fprintf(b, "    agents = %s\n", stringArray(v, names))
	b.WriteString("}\n\n")
}

func writeWorkflow(b *strings.Builder, v *ir.IR, wf ir.Workflow) {
	fmt.Fprintf(b, "workflow %s {\n", quote(v.Pool.Get(wf.NameIdx)))
	if wf.HasProcess {
		fmt.Fprintf(b, "    process = %s\n", quote(v.Pool.Get(wf.ProcessIdx)))
	}
	if wf.HasContext {
		fmt.Fprintf(b, "    context = %s\n", quote(v.Pool.Get(v.Contexts[wf.Context.Index].NameIdx)))
	}
	if wf.HasCrew {
		fmt.Fprintf(b, "    crew = %s\n", quote(v.Pool.Get(v.Crews[wf.Crew.Index].NameIdx)))
	}
	for _, s := range wf.Steps {
		fmt.Fprintf(b, "    step %s {\n", quote(v.Pool.Get(s.NameIdx)))
		if s.HasAgent {
			fmt.Fprintf(b, "        agent = %s\n", quote(v.Pool.Get(v.Agents[s.Agent.Index].NameIdx)))
		}
		if len(s.DependsOn) > 0 {
			deps := make([]int, len(s.DependsOn))
			for i, idx := range s.DependsOn {
				deps[i] = wf.Steps[idx].NameIdx
			}
			fmt.Fprintf(b, "        depends_on = %s\n", stringArray(v, deps))
		}
		b.WriteString("    }\n")
	}
	for _, rt := range wf.Retries {
		fmt.Fprintf(b, "    retry %s {\n", quote(v.Pool.Get(rt.NameIdx)))
		if rt.HasBackoff {
			fmt.Fprintf(b, "        backoff = %s\n", quote(v.Pool.Get(rt.BackoffIdx)))
		}
		if rt.HasMax {
			fmt.Fprintf(b, "        max_attempts = %d\n", rt.MaxAttempts)
		}
		b.WriteString("    }\n")
	}
	for _, t := range wf.Triggers {
		fmt.Fprintf(b, "    trigger %s {\n", quote(v.Pool.Get(t.NameIdx)))
		if t.HasKind {
			fmt.Fprintf(b, "        kind = %s\n", quote(v.Pool.Get(t.KindIdx)))
		}
		b.WriteString("    }\n")
	}
	b.WriteString("}\n\n")
}

func writePipeline(b *strings.Builder, v *ir.IR, p ir.Pipeline) {
	fmt.Fprintf(b, "pipeline %s {\n", quote(v.Pool.Get(p.NameIdx)))
	fmt.Fprintf(b, "    workflow = %s\n", quote(v.Pool.Get(v.Workflows[p.Workflow.Index].NameIdx)))
	if len(p.Edges) > 0 {
		wf := v.Workflows[p.Workflow.Index]
		var edges []string
		for _, e := range p.Edges {
			edges = append(edges, fmt.Sprintf("[%s, %s]", quote(v.Pool.Get(wf.Steps[e.From].NameIdx)), quote(v.Pool.Get(wf.Steps[e.To].NameIdx))))
		}
		fmt.Fprintf(b, "    edges = [%s]\n", strings.Join(edges, ", "))
	}
	b.WriteString("}\n\n")
}

// writeFields emits a sorted-key field list so output is deterministic
// despite Go's randomized map iteration order.
func writeFields(b *strings.Builder, fields map[string]value.Value, indent string) {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(b, "%s%s = %s\n", indent, k, literal(fields[k]))
	}
}

func literal(v value.Value) string {
	switch v.Kind() {
	case value.KindString:
		s, _ := v.AsString()
		return quote(s)
	case value.KindNumber:
		n, _ := v.AsNumber()
		return formatNumber(n)
	case value.KindBool:
		bv, _ := v.AsBool()
		return strconv.FormatBool(bv)
	case value.KindArray:
		items, _ := v.AsArray()
		parts := make([]string, len(items))
		for i, it := range items {
			parts[i] = literal(it)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case value.KindObject:
		obj, _ := v.AsObject()
		keys := make([]string, 0, len(obj))
		for k := range obj {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = fmt.Sprintf("%s = %s", k, literal(obj[k]))
		}
		return "{ " + strings.Join(parts, " ") + " }"
	default:
		return "null"
	}
}

func stringArray(v *ir.IR, idxs []int) string {
	parts := make([]string, len(idxs))
	for i, idx := range idxs {
		parts[i] = quote(v.Pool.Get(idx))
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func formatNumber(n float64) string {
	return strconv.FormatFloat(n, 'g', -1, 64)
}

// quote wraps s in double quotes, escaping the characters the lexer's
// string grammar recognizes as escape sequences.
func quote(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
