// Package binary implements the hlxb container: a compact, versioned,
// optionally per-section-compressed serialization of a compiled IR, with
// a trailing checksum guarding the whole file and a decompiler that
// recovers canonical HELIX source from a loaded binary.
package binary

// Magic is the fixed 4-byte tag every hlxb file opens with.
var Magic = [4]byte{'H', 'L', 'X', 'B'}

// CurrentVersion is the format version this package writes. Loaders
// reject anything greater.
const CurrentVersion uint32 = 1

// Flag bits in the header's flags word.
const (
	FlagCompressed  uint32 = 1 << 0
	FlagSigned      uint32 = 1 << 1
	FlagHasDebugInfo uint32 = 1 << 2
)

// CompressionKind tags how a section's payload bytes were encoded.
// Serialized as a single byte; an unknown value on load is a hard error,
// never silently treated as None.
type CompressionKind uint8

const (
	CompressionNone CompressionKind = iota
	CompressionGzip
	CompressionZstd
)

func (c CompressionKind) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionGzip:
		return "gzip"
	case CompressionZstd:
		return "zstd"
	default:
		return "unknown"
	}
}

// Metadata is the length-prefixed field block following the header.
// Callers supply it; this package never reads the wall clock or the
// runtime environment itself, so serialization stays a pure function of
// its inputs.
type Metadata struct {
	CreatedAtUnix      int64
	CompilerVersion    string
	SourcePlatform     string
	OptimizationLevel  uint8
	SourcePath         string // empty when the binary carries no debug info
}

// SectionType is the closed, u8-serialized tag for each of a binary's
// ordered data sections. An unrecognized tag on load is Corrupt, never a
// silently-skipped section.
type SectionType uint8

const (
	SectionAgents SectionType = iota
	SectionWorkflows
	SectionContexts
	SectionCrews
	SectionMemory
	SectionPipelines
	SectionMetadataExtra
)

func (s SectionType) String() string {
	switch s {
	case SectionAgents:
		return "agents"
	case SectionWorkflows:
		return "workflows"
	case SectionContexts:
		return "contexts"
	case SectionCrews:
		return "crews"
	case SectionMemory:
		return "memory"
	case SectionPipelines:
		return "pipelines"
	case SectionMetadataExtra:
		return "metadata_extra"
	default:
		return "unknown"
	}
}

// sectionOrder is the fixed emission and decode order for every hlxb file.
var sectionOrder = []SectionType{
	SectionAgents,
	SectionWorkflows,
	SectionContexts,
	SectionCrews,
	SectionMemory,
	SectionPipelines,
	SectionMetadataExtra,
}
