package binary

import (
	"encoding/json"

	"github.com/cyber-boost/helix-sub000/internal/herr"
	"github.com/cyber-boost/helix-sub000/internal/ir"
	"github.com/cyber-boost/helix-sub000/pkg/value"
)

// encodeAgents writes the Agents section payload: u32 count, then per
// agent name/model/role pool indices, temperature, and capability/tool
// index arrays.
func encodeAgents(w *binWriter, agents []ir.Agent) {
	w.WriteU32(uint32(len(agents)))
	for _, a := range agents {
		w.WriteU32(uint32(a.NameIdx))
		w.WriteU32(uint32(a.ModelIdx))
		w.WriteU32(uint32(a.RoleIdx))
		w.WriteU8(boolByte(a.HasTemperature))
		w.WriteF32(a.Temperature)
		w.WriteU32Array(toU32(a.Capabilities))
		w.WriteU32Array(toU32(a.Tools))
	}
}

func decodeAgents(r *binReader) ([]ir.Agent, error) {
	n, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	out := make([]ir.Agent, n)
	for i := range out {
		nameIdx, err := r.ReadU32()
		if err != nil {
			return nil, err
		}
		modelIdx, err := r.ReadU32()
		if err != nil {
			return nil, err
		}
		roleIdx, err := r.ReadU32()
		if err != nil {
			return nil, err
		}
		hasTemp, err := r.ReadU8()
		if err != nil {
			return nil, err
		}
		temp, err := r.ReadF32()
		if err != nil {
			return nil, err
		}
		caps, err := r.ReadU32Array()
		if err != nil {
			return nil, err
		}
		tools, err := r.ReadU32Array()
		if err != nil {
			return nil, err
		}
		out[i] = ir.Agent{
			NameIdx:        int(nameIdx),
			ModelIdx:       int(modelIdx),
			RoleIdx:        int(roleIdx),
			HasTemperature: hasTemp != 0,
			Temperature:    temp,
			Capabilities:   toInt(caps),
			Tools:          toInt(tools),
		}
	}
	return out, nil
}

// encodeWorkflows writes the Workflows section payload, including each
// step's depends_on list, each retry's backoff, and each trigger's kind.
func encodeWorkflows(w *binWriter, workflows []ir.Workflow) {
	w.WriteU32(uint32(len(workflows)))
	for _, wf := range workflows {
		w.WriteU32(uint32(wf.NameIdx))
		w.WriteU8(boolByte(wf.HasProcess))
		w.WriteU32(uint32(wf.ProcessIdx))
		w.WriteU8(boolByte(wf.HasContext))
		w.WriteI32(int32(wf.Context.Index))
		w.WriteU8(boolByte(wf.HasCrew))
		w.WriteI32(int32(wf.Crew.Index))

		w.WriteU32(uint32(len(wf.Steps)))
		for _, s := range wf.Steps {
			w.WriteU32(uint32(s.NameIdx))
			w.WriteU8(boolByte(s.HasAgent))
			w.WriteI32(int32(s.Agent.Index))
			w.WriteU32Array(toU32(s.DependsOn))
		}

		w.WriteU32(uint32(len(wf.Retries)))
		for _, rt := range wf.Retries {
			w.WriteU32(uint32(rt.NameIdx))
			w.WriteU8(boolByte(rt.HasBackoff))
			w.WriteU32(uint32(rt.BackoffIdx))
			w.WriteU8(boolByte(rt.HasMax))
			w.WriteI64(rt.MaxAttempts)
		}

		w.WriteU32(uint32(len(wf.Triggers)))
		for _, t := range wf.Triggers {
			w.WriteU32(uint32(t.NameIdx))
			w.WriteU8(boolByte(t.HasKind))
			w.WriteU32(uint32(t.KindIdx))
		}
	}
}

func decodeWorkflows(r *binReader) ([]ir.Workflow, error) {
	n, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	out := make([]ir.Workflow, n)
	for i := range out {
		nameIdx, err := r.ReadU32()
		if err != nil {
			return nil, err
		}
		hasProcess, err := r.ReadU8()
		if err != nil {
			return nil, err
		}
		processIdx, err := r.ReadU32()
		if err != nil {
			return nil, err
		}
		hasContext, err := r.ReadU8()
		if err != nil {
			return nil, err
		}
		contextIdx, err := r.ReadI32()
		if err != nil {
			return nil, err
		}
		hasCrew, err := r.ReadU8()
		if err != nil {
			return nil, err
		}
		crewIdx, err := r.ReadI32()
		if err != nil {
			return nil, err
		}

		wf := ir.Workflow{
			NameIdx:    int(nameIdx),
			HasProcess: hasProcess != 0,
			ProcessIdx: int(processIdx),
			HasContext: hasContext != 0,
			HasCrew:    hasCrew != 0,
		}
		if wf.HasContext {
			wf.Context = ir.Ref{Kind: ir.SymContext, Index: int(contextIdx)}
		}
		if wf.HasCrew {
			wf.Crew = ir.Ref{Kind: ir.SymCrew, Index: int(crewIdx)}
		}

		stepCount, err := r.ReadU32()
		if err != nil {
			return nil, err
		}
		wf.Steps = make([]ir.Step, stepCount)
		for j := range wf.Steps {
			sNameIdx, err := r.ReadU32()
			if err != nil {
				return nil, err
			}
			hasAgent, err := r.ReadU8()
			if err != nil {
				return nil, err
			}
			agentIdx, err := r.ReadI32()
			if err != nil {
				return nil, err
			}
			deps, err := r.ReadU32Array()
			if err != nil {
				return nil, err
			}
			s := ir.Step{NameIdx: int(sNameIdx), HasAgent: hasAgent != 0, DependsOn: toInt(deps)}
			if s.HasAgent {
				s.Agent = ir.Ref{Kind: ir.SymAgent, Index: int(agentIdx)}
			}
			wf.Steps[j] = s
		}

		retryCount, err := r.ReadU32()
		if err != nil {
			return nil, err
		}
		wf.Retries = make([]ir.Retry, retryCount)
		for j := range wf.Retries {
			rNameIdx, err := r.ReadU32()
			if err != nil {
				return nil, err
			}
			hasBackoff, err := r.ReadU8()
			if err != nil {
				return nil, err
			}
			backoffIdx, err := r.ReadU32()
			if err != nil {
				return nil, err
			}
			hasMax, err := r.ReadU8()
			if err != nil {
				return nil, err
			}
			maxAttempts, err := r.ReadI64()
			if err != nil {
				return nil, err
			}
			wf.Retries[j] = ir.Retry{
				NameIdx:     int(rNameIdx),
				HasBackoff:  hasBackoff != 0,
				BackoffIdx:  int(backoffIdx),
				HasMax:      hasMax != 0,
				MaxAttempts: maxAttempts,
			}
		}

		triggerCount, err := r.ReadU32()
		if err != nil {
			return nil, err
		}
		wf.Triggers = make([]ir.Trigger, triggerCount)
		for j := range wf.Triggers {
			tNameIdx, err := r.ReadU32()
			if err != nil {
				return nil, err
			}
			hasKind, err := r.ReadU8()
			if err != nil {
				return nil, err
			}
			kindIdx, err := r.ReadU32()
			if err != nil {
				return nil, err
			}
			wf.Triggers[j] = ir.Trigger{NameIdx: int(tNameIdx), HasKind: hasKind != 0, KindIdx: int(kindIdx)}
		}

		out[i] = wf
	}
	return out, nil
}

// encodeFieldMap writes name_idx then a JSON-encoded field map, reusing
// Value's own JSON round-trip rather than inventing a second wire form
// for arbitrary context/memory field values.
func encodeFieldMap(w *binWriter, nameIdx int, fields map[string]value.Value) error {
	w.WriteU32(uint32(nameIdx))
	raw, err := json.Marshal(value.Object(fields))
	if err != nil {
		return herr.IoErr(err, "failed to encode field map")
	}
	w.WriteBytes(raw)
	return nil
}

func decodeFieldMap(r *binReader) (int, map[string]value.Value, error) {
	nameIdx, err := r.ReadU32()
	if err != nil {
		return 0, nil, err
	}
	raw, err := r.ReadBytes()
	if err != nil {
		return 0, nil, err
	}
	var v value.Value
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, nil, herr.CorruptErr(r.Offset(), "malformed field map json")
	}
	obj, _ := v.AsObject()
	return int(nameIdx), obj, nil
}

func encodeContexts(w *binWriter, contexts []ir.Context) error {
	w.WriteU32(uint32(len(contexts)))
	for _, c := range contexts {
		if err := encodeFieldMap(w, c.NameIdx, c.Fields); err != nil {
			return err
		}
	}
	return nil
}

func decodeContexts(r *binReader) ([]ir.Context, error) {
	n, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	out := make([]ir.Context, n)
	for i := range out {
		nameIdx, fields, err := decodeFieldMap(r)
		if err != nil {
			return nil, err
		}
		out[i] = ir.Context{NameIdx: nameIdx, Fields: fields}
	}
	return out, nil
}

func encodeMemory(w *binWriter, mems []ir.Memory) error {
	w.WriteU32(uint32(len(mems)))
	for _, m := range mems {
		if err := encodeFieldMap(w, m.NameIdx, m.Fields); err != nil {
			return err
		}
	}
	return nil
}

func decodeMemory(r *binReader) ([]ir.Memory, error) {
	n, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	out := make([]ir.Memory, n)
	for i := range out {
		nameIdx, fields, err := decodeFieldMap(r)
		if err != nil {
			return nil, err
		}
		out[i] = ir.Memory{NameIdx: nameIdx, Fields: fields}
	}
	return out, nil
}

func encodeCrews(w *binWriter, crews []ir.Crew) {
	w.WriteU32(uint32(len(crews)))
	for _, c := range crews {
		w.WriteU32(uint32(c.NameIdx))
		idxs := make([]uint32, len(c.Agents))
		for i, ref := range c.Agents {
			idxs[i] = uint32(ref.Index)
		}
		w.WriteU32Array(idxs)
	}
}

func decodeCrews(r *binReader) ([]ir.Crew, error) {
	n, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	out := make([]ir.Crew, n)
	for i := range out {
		nameIdx, err := r.ReadU32()
		if err != nil {
			return nil, err
		}
		idxs, err := r.ReadU32Array()
		if err != nil {
			return nil, err
		}
		agents := make([]ir.Ref, len(idxs))
		for j, idx := range idxs {
			agents[j] = ir.Ref{Kind: ir.SymAgent, Index: int(idx)}
		}
		out[i] = ir.Crew{NameIdx: int(nameIdx), Agents: agents}
	}
	return out, nil
}

func encodePipelines(w *binWriter, pipelines []ir.Pipeline) {
	w.WriteU32(uint32(len(pipelines)))
	for _, p := range pipelines {
		w.WriteU32(uint32(p.NameIdx))
		w.WriteU32(uint32(p.Workflow.Index))
		w.WriteU32(uint32(len(p.Edges)))
		for _, e := range p.Edges {
			w.WriteU32(uint32(e.From))
			w.WriteU32(uint32(e.To))
		}
	}
}

func decodePipelines(r *binReader) ([]ir.Pipeline, error) {
	n, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	out := make([]ir.Pipeline, n)
	for i := range out {
		nameIdx, err := r.ReadU32()
		if err != nil {
			return nil, err
		}
		workflowIdx, err := r.ReadU32()
		if err != nil {
			return nil, err
		}
		edgeCount, err := r.ReadU32()
		if err != nil {
			return nil, err
		}
		edges := make([]ir.PipelineEdge, edgeCount)
		for j := range edges {
			from, err := r.ReadU32()
			if err != nil {
				return nil, err
			}
			to, err := r.ReadU32()
			if err != nil {
				return nil, err
			}
			edges[j] = ir.PipelineEdge{From: int(from), To: int(to)}
		}
		out[i] = ir.Pipeline{
			NameIdx:  int(nameIdx),
			Workflow: ir.Ref{Kind: ir.SymWorkflow, Index: int(workflowIdx)},
			Edges:    edges,
		}
	}
	return out, nil
}

func boolByte(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

func toU32(in []int) []uint32 {
	out := make([]uint32, len(in))
	for i, v := range in {
		out[i] = uint32(v)
	}
	return out
}

func toInt(in []uint32) []int {
	if len(in) == 0 {
		return nil
	}
	out := make([]int, len(in))
	for i, v := range in {
		out[i] = int(v)
	}
	return out
}
