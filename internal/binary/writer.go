package binary

import (
	"github.com/cyber-boost/helix-sub000/internal/herr"
	"github.com/cyber-boost/helix-sub000/internal/ir"
)

// Serialize encodes v into a hlxb byte stream: header, metadata, symbol
// table, sections in fixed order, trailing checksum. compress selects the
// compression kind applied to every section whose encoded payload is
// non-empty; CompressionNone leaves sections uncompressed.
func Serialize(v *ir.IR, meta Metadata, compress CompressionKind) ([]byte, error) {
	w := &binWriter{}

	w.buf.Write(Magic[:])
	w.WriteU32(CurrentVersion)
	w.WriteU32(headerFlags(meta, compress))

	writeMetadata(w, meta)
	writeSymbolTable(w, v)

	for _, st := range sectionOrder {
		payload, err := encodeSectionPayload(st, v)
		if err != nil {
			return nil, err
		}
		if err := writeSection(w, st, payload, compress); err != nil {
			return nil, err
		}
	}

	sum := checksum(w.Bytes())
	w.WriteU32(sum)

	return w.Bytes(), nil
}

func headerFlags(meta Metadata, compress CompressionKind) uint32 {
	var flags uint32
	if compress != CompressionNone {
		flags |= FlagCompressed
	}
	if meta.SourcePath != "" {
		flags |= FlagHasDebugInfo
	}
	return flags
}

func writeMetadata(w *binWriter, meta Metadata) {
	w.WriteI64(meta.CreatedAtUnix)
	w.WriteString(meta.CompilerVersion)
	w.WriteString(meta.SourcePlatform)
	w.WriteU8(meta.OptimizationLevel)
	w.WriteString(meta.SourcePath)
}

// writeSymbolTable emits the interned string pool followed by a per-kind
// index list naming every declared symbol's pool index, independent of
// the fuller section payloads that follow.
func writeSymbolTable(w *binWriter, v *ir.IR) {
	strs := v.Pool.Strings()
	w.WriteU32(uint32(len(strs)))
	for _, s := range strs {
		w.WriteString(s)
	}

	agentNames := make([]uint32, len(v.Agents))
	for i, a := range v.Agents {
		agentNames[i] = uint32(a.NameIdx)
	}
	w.WriteU32Array(agentNames)

	workflowNames := make([]uint32, len(v.Workflows))
	for i, wf := range v.Workflows {
		workflowNames[i] = uint32(wf.NameIdx)
	}
	w.WriteU32Array(workflowNames)

	contextNames := make([]uint32, len(v.Contexts))
	for i, c := range v.Contexts {
		contextNames[i] = uint32(c.NameIdx)
	}
	w.WriteU32Array(contextNames)

	crewNames := make([]uint32, len(v.Crews))
	for i, c := range v.Crews {
		crewNames[i] = uint32(c.NameIdx)
	}
	w.WriteU32Array(crewNames)
}

func encodeSectionPayload(st SectionType, v *ir.IR) ([]byte, error) {
	pw := &binWriter{}
	switch st {
	case SectionAgents:
		encodeAgents(pw, v.Agents)
	case SectionWorkflows:
		encodeWorkflows(pw, v.Workflows)
	case SectionContexts:
		if err := encodeContexts(pw, v.Contexts); err != nil {
			return nil, err
		}
	case SectionCrews:
		encodeCrews(pw, v.Crews)
	case SectionMemory:
		if err := encodeMemory(pw, v.Memories); err != nil {
			return nil, err
		}
	case SectionPipelines:
		encodePipelines(pw, v.Pipelines)
	case SectionMetadataExtra:
		// Reserved escape hatch for forward-compatible extension fields;
		// nothing populates it yet, so it always encodes as empty.
		pw.WriteU32(0)
	default:
		return nil, herr.New(herr.InvalidInput, "unknown section type during encode")
	}
	return pw.Bytes(), nil
}

// writeSection writes one section header followed by its (possibly
// compressed) payload.
func writeSection(w *binWriter, st SectionType, payload []byte, compress CompressionKind) error {
	compressed, err := compressPayload(payload, compress)
	if err != nil {
		return err
	}
	w.WriteU8(uint8(st))
	w.WriteU32(uint32(len(payload)))
	w.WriteU8(uint8(compress))
	w.WriteU32(uint32(len(compressed)))
	w.buf.Write(compressed)
	return nil
}
