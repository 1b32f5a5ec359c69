package binary

import (
	"hash/crc32"

	"github.com/cyber-boost/helix-sub000/internal/herr"
	"github.com/cyber-boost/helix-sub000/internal/ir"
)

// Load decodes a hlxb byte stream back into an IR and the metadata block
// that travelled with it. Magic and version are checked first; the
// checksum is verified last, against every byte preceding it, so a
// corrupted file still reports a meaningful parse error before failing on
// checksum if the corruption also broke framing.
func Load(data []byte) (*ir.IR, Metadata, error) {
	if len(data) < 4+4+4+4 {
		return nil, Metadata{}, herr.CorruptErr(0, "file too short to contain a hlxb header")
	}

	var magic [4]byte
	copy(magic[:], data[:4])
	if magic != Magic {
		return nil, Metadata{}, herr.CorruptErr(0, "bad magic: not a hlxb file")
	}

	r := newBinReader(data)
	r.off = 4

	version, err := r.ReadU32()
	if err != nil {
		return nil, Metadata{}, err
	}
	if version > CurrentVersion {
		return nil, Metadata{}, herr.UnsupportedVersionErr(version, CurrentVersion)
	}

	if _, err := r.ReadU32(); err != nil { // flags: informational only on load
		return nil, Metadata{}, err
	}

	meta, err := readMetadata(r)
	if err != nil {
		return nil, Metadata{}, err
	}

	pool, agentNames, workflowNames, contextNames, crewNames, err := readSymbolTable(r)
	if err != nil {
		return nil, Metadata{}, err
	}
	_ = agentNames
	_ = workflowNames
	_ = contextNames
	_ = crewNames

	v := &ir.IR{Pool: pool}

	for _, want := range sectionOrder {
		got, compress, payload, err := readSectionHeader(r)
		if err != nil {
			return nil, Metadata{}, err
		}
		if got != want {
			return nil, Metadata{}, herr.CorruptErr(r.Offset(), "section order or type tag mismatch")
		}
		raw, err := decompressPayload(payload.compressed, compress, payload.uncompressedSize)
		if err != nil {
			return nil, Metadata{}, err
		}
		if err := decodeSectionInto(v, want, raw); err != nil {
			return nil, Metadata{}, err
		}
	}

	sumOff := r.Offset()
	wantSum, err := r.ReadU32()
	if err != nil {
		return nil, Metadata{}, err
	}
	gotSum := crc32.ChecksumIEEE(data[:sumOff])
	if gotSum != wantSum {
		return nil, Metadata{}, herr.CorruptErr(sumOff, "checksum mismatch")
	}

	return v, meta, nil
}

func readMetadata(r *binReader) (Metadata, error) {
	createdAt, err := r.ReadI64()
	if err != nil {
		return Metadata{}, err
	}
	compilerVersion, err := r.ReadString()
	if err != nil {
		return Metadata{}, err
	}
	platform, err := r.ReadString()
	if err != nil {
		return Metadata{}, err
	}
	optLevel, err := r.ReadU8()
	if err != nil {
		return Metadata{}, err
	}
	sourcePath, err := r.ReadString()
	if err != nil {
		return Metadata{}, err
	}
	return Metadata{
		CreatedAtUnix:     createdAt,
		CompilerVersion:   compilerVersion,
		SourcePlatform:    platform,
		OptimizationLevel: optLevel,
		SourcePath:        sourcePath,
	}, nil
}

func readSymbolTable(r *binReader) (pool *ir.Pool, agentNames, workflowNames, contextNames, crewNames []uint32, err error) {
	poolLen, err := r.ReadU32()
	if err != nil {
		return nil, nil, nil, nil, nil, err
	}
	pool = ir.NewPool()
	for i := uint32(0); i < poolLen; i++ {
		s, err := r.ReadString()
		if err != nil {
			return nil, nil, nil, nil, nil, err
		}
		pool.Intern(s)
	}

	agentNames, err = r.ReadU32Array()
	if err != nil {
		return nil, nil, nil, nil, nil, err
	}
	workflowNames, err = r.ReadU32Array()
	if err != nil {
		return nil, nil, nil, nil, nil, err
	}
	contextNames, err = r.ReadU32Array()
	if err != nil {
		return nil, nil, nil, nil, nil, err
	}
	crewNames, err = r.ReadU32Array()
	if err != nil {
		return nil, nil, nil, nil, nil, err
	}
	return pool, agentNames, workflowNames, contextNames, crewNames, nil
}

type sectionPayload struct {
	uncompressedSize uint32
	compressed       []byte
}

func readSectionHeader(r *binReader) (SectionType, CompressionKind, sectionPayload, error) {
	tag, err := r.ReadU8()
	if err != nil {
		return 0, 0, sectionPayload{}, err
	}
	st := SectionType(tag)
	if st > SectionMetadataExtra {
		return 0, 0, sectionPayload{}, herr.CorruptErr(r.Offset(), "unknown section type tag")
	}

	uncompressedSize, err := r.ReadU32()
	if err != nil {
		return 0, 0, sectionPayload{}, err
	}
	compressTag, err := r.ReadU8()
	if err != nil {
		return 0, 0, sectionPayload{}, err
	}
	if compressTag > uint8(CompressionZstd) {
		return 0, 0, sectionPayload{}, herr.CorruptErr(r.Offset(), "unknown compression kind tag")
	}
	compress := CompressionKind(compressTag)

	compressedSize, err := r.ReadU32()
	if err != nil {
		return 0, 0, sectionPayload{}, err
	}
	if err := r.need(int(compressedSize)); err != nil {
		return 0, 0, sectionPayload{}, err
	}
	buf := make([]byte, compressedSize)
	copy(buf, r.data[r.off:r.off+int64(compressedSize)])
	r.off += int64(compressedSize)

	return st, compress, sectionPayload{uncompressedSize: uncompressedSize, compressed: buf}, nil
}

func decodeSectionInto(v *ir.IR, st SectionType, raw []byte) error {
	r := newBinReader(raw)
	var err error
	switch st {
	case SectionAgents:
		v.Agents, err = decodeAgents(r)
	case SectionWorkflows:
		v.Workflows, err = decodeWorkflows(r)
	case SectionContexts:
		v.Contexts, err = decodeContexts(r)
	case SectionCrews:
		v.Crews, err = decodeCrews(r)
	case SectionMemory:
		v.Memories, err = decodeMemory(r)
	case SectionPipelines:
		v.Pipelines, err = decodePipelines(r)
	case SectionMetadataExtra:
		_, err = r.ReadU32() // reserved, always zero today
	default:
		return herr.CorruptErr(0, "unknown section type during decode")
	}
	return err
}
