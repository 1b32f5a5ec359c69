// Package compiler wires the lexer, parser, validator, IR builder,
// optimizer, and hlxb binary format into the CLI entry points: compile,
// decompile, validate, info, diff, and optimize. Each function here is a
// thin, pure-Go composition of the packages below it — no entry point
// does I/O beyond what its caller already handed it, except Compile,
// whose cache parameter is optional.
package compiler

import (
	"fmt"

	"github.com/cyber-boost/helix-sub000/internal/binary"
	"github.com/cyber-boost/helix-sub000/internal/cache"
	"github.com/cyber-boost/helix-sub000/internal/herr"
	"github.com/cyber-boost/helix-sub000/internal/ir"
	"github.com/cyber-boost/helix-sub000/internal/optimizer"
	"github.com/cyber-boost/helix-sub000/internal/parser"
	"github.com/cyber-boost/helix-sub000/internal/validator"
)

// CompilerVersion is stamped into every binary's Metadata.
const CompilerVersion = "helix-1.0"

// CompileOptions configures a single compile invocation.
type CompileOptions struct {
	Level       optimizer.Level
	Compress    binary.CompressionKind
	Cache       *cache.Cache // nil disables caching
	CreatedAt   int64        // caller-supplied clock reading; binary.Serialize never reads the wall clock itself
	Platform    string
	SourcePath  string // recorded in Metadata only when HasDebugInfo is set
	HasDebugInfo bool
}

// Compile parses, validates, builds, optimizes, and serializes src,
// consulting and populating opts.Cache when set. The cache key covers
// the source bytes and the optimization level only: a cached entry is
// returned as-is for any later request with the same source and level,
// whatever compression kind, timestamp, platform or source path that
// request carries.
func Compile(src string, opts CompileOptions) ([]byte, error) {
	if opts.Cache != nil {
		key := cache.Key([]byte(src), opts.Level)
		if data, ok, err := opts.Cache.Get(key); err != nil {
			return nil, err
		} else if ok {
			return data, nil
		}
	}

	v, err := BuildIR(src)
	if err != nil {
		return nil, err
	}

	optimized, _, err := optimizer.Optimize(v, opts.Level)
	if err != nil {
		return nil, err
	}

	meta := binary.Metadata{
		CreatedAtUnix:     opts.CreatedAt,
		CompilerVersion:   CompilerVersion,
		SourcePlatform:    opts.Platform,
		OptimizationLevel: uint8(opts.Level),
	}
	if opts.HasDebugInfo {
		meta.SourcePath = opts.SourcePath
	}

	data, err := binary.Serialize(optimized, meta, opts.Compress)
	if err != nil {
		return nil, err
	}

	if opts.Cache != nil {
		key := cache.Key([]byte(src), opts.Level)
		if err := opts.Cache.Put(key, data); err != nil {
			return nil, err
		}
	}
	return data, nil
}

// BuildIR runs parse → validate → build over src without optimizing or
// serializing, the shared front half of Compile and Validate.
func BuildIR(src string) (*ir.IR, error) {
	res := parser.Parse(src)
	if len(res.Errors) > 0 {
		return nil, res.Errors[0]
	}

	rep := validator.Validate(res.File)
	if !rep.Valid() {
		return nil, rep.Errors[0]
	}

	built, _, err := ir.Build(res.File)
	if err != nil {
		return nil, err
	}
	return built, nil
}

// Decompile loads an hlxb binary and recovers its canonical HELIX source.
func Decompile(data []byte) (string, error) {
	v, _, err := binary.Load(data)
	if err != nil {
		return "", err
	}
	return binary.Decompile(v), nil
}

// ValidationReport is the outcome of Validate: the combined parse and
// semantic-validation errors found in source text, independent of
// whether it originated from a .hlx file or a decompiled .hlxb one.
type ValidationReport struct {
	Errors []*herr.Error
}

// Valid reports whether source is free of parse and validation errors.
func (r ValidationReport) Valid() bool { return len(r.Errors) == 0 }

// Validate runs the parser and validator over src and collects every
// error from both stages, rather than stopping at the first parse
// failure — a source file with a validation-relevant typo later in the
// file still gets its earlier parse errors reported alongside it when
// the parser's error-recovery lets it continue.
func Validate(src string) ValidationReport {
	res := parser.Parse(src)
	if len(res.Errors) > 0 {
		// A fatal lexer/parser error means there is no File to validate.
		if res.File == nil || len(res.File.Decls) == 0 {
			return ValidationReport{Errors: res.Errors}
		}
	}
	rep := validator.Validate(res.File)
	errs := append(append([]*herr.Error{}, res.Errors...), rep.Errors...)
	return ValidationReport{Errors: errs}
}

// ValidateBinary decompiles data back to source and re-validates it,
// the only meaningful notion of "validating a binary" once a hlxb file
// has already passed Compile's own validation pass once.
func ValidateBinary(data []byte) (ValidationReport, error) {
	src, err := Decompile(data)
	if err != nil {
		return ValidationReport{}, err
	}
	return Validate(src), nil
}

// Optimize re-runs the optimizer over an already-compiled binary at a
// new level and re-serializes it: a compressed input comes back zstd-
// compressed and an uncompressed one uncompressed (see
// inferredCompression), so a gzip-compressed input does not keep gzip.
func Optimize(data []byte, level optimizer.Level) ([]byte, optimizer.Stats, error) {
	v, meta, err := binary.Load(data)
	if err != nil {
		return nil, optimizer.Stats{}, err
	}

	optimized, stats, err := optimizer.Optimize(v, level)
	if err != nil {
		return nil, optimizer.Stats{}, err
	}

	meta.OptimizationLevel = uint8(level)
	compress := inferredCompression(data)
	out, err := binary.Serialize(optimized, meta, compress)
	if err != nil {
		return nil, optimizer.Stats{}, err
	}
	return out, stats, nil
}

// inferredCompression picks the compression kind Optimize re-serializes
// with from the binary's header flags alone, since Load discards each
// section's kind after decompressing it. The flags only record whether
// the binary is compressed, not which kind its sections use.
func inferredCompression(data []byte) binary.CompressionKind {
	const flagsOffset = 4 + 4 // magic + version
	if len(data) < flagsOffset+4 {
		return binary.CompressionNone
	}
	flags := uint32(data[flagsOffset]) | uint32(data[flagsOffset+1])<<8 |
		uint32(data[flagsOffset+2])<<16 | uint32(data[flagsOffset+3])<<24
	if flags&binary.FlagCompressed == 0 {
		return binary.CompressionNone
	}
	// FlagCompressed alone doesn't distinguish gzip from zstd; default to
	// zstd, this package's own default compression kind, rather than
	// guessing wrong and silently corrupting re-serialization.
	return binary.CompressionZstd
}

// Info is the stats record the `info` CLI entry point returns.
type Info struct {
	Stats    ir.Stats
	Metadata binary.Metadata
}

// Inspect loads data and reports its symbol-table statistics and
// metadata. TotalStrings reflects the pool's unique-string count rather
// than the original pre-dedup interning count: that count is a build-
// time-only statistic internal/ir discards once the pool is built, and
// a loaded binary's pool holds only the final deduplicated pool.
func Inspect(data []byte) (Info, error) {
	v, meta, err := binary.Load(data)
	if err != nil {
		return Info{}, err
	}
	unique := v.Pool.Len()
	return Info{Stats: v.Stats(unique), Metadata: meta}, nil
}

// DiffReport is the field-level comparison of two compiled binaries.
type DiffReport struct {
	MetadataChanged []string
	StatsChanged    []string
	SourceDiff      string // unified diff of the two binaries' decompiled source
	Identical       bool
}

// Diff decompiles both binaries and compares their metadata, symbol
// statistics, and canonical source text.
func Diff(a, b []byte) (DiffReport, error) {
	infoA, err := Inspect(a)
	if err != nil {
		return DiffReport{}, err
	}
	infoB, err := Inspect(b)
	if err != nil {
		return DiffReport{}, err
	}

	var metaChanged, statsChanged []string
	if infoA.Metadata.CompilerVersion != infoB.Metadata.CompilerVersion {
		metaChanged = append(metaChanged, "compiler_version")
	}
	if infoA.Metadata.OptimizationLevel != infoB.Metadata.OptimizationLevel {
		metaChanged = append(metaChanged, "optimization_level")
	}
	if infoA.Metadata.SourcePlatform != infoB.Metadata.SourcePlatform {
		metaChanged = append(metaChanged, "source_platform")
	}
	if infoA.Metadata.SourcePath != infoB.Metadata.SourcePath {
		metaChanged = append(metaChanged, "source_path")
	}

	if infoA.Stats.Agents != infoB.Stats.Agents {
		statsChanged = append(statsChanged, fmt.Sprintf("agents: %d -> %d", infoA.Stats.Agents, infoB.Stats.Agents))
	}
	if infoA.Stats.Workflows != infoB.Stats.Workflows {
		statsChanged = append(statsChanged, fmt.Sprintf("workflows: %d -> %d", infoA.Stats.Workflows, infoB.Stats.Workflows))
	}
	if infoA.Stats.Contexts != infoB.Stats.Contexts {
		statsChanged = append(statsChanged, fmt.Sprintf("contexts: %d -> %d", infoA.Stats.Contexts, infoB.Stats.Contexts))
	}
	if infoA.Stats.Crews != infoB.Stats.Crews {
		statsChanged = append(statsChanged, fmt.Sprintf("crews: %d -> %d", infoA.Stats.Crews, infoB.Stats.Crews))
	}
	if infoA.Stats.UniqueStrings != infoB.Stats.UniqueStrings {
		statsChanged = append(statsChanged, fmt.Sprintf("unique_strings: %d -> %d", infoA.Stats.UniqueStrings, infoB.Stats.UniqueStrings))
	}

	srcA, err := Decompile(a)
	if err != nil {
		return DiffReport{}, err
	}
	srcB, err := Decompile(b)
	if err != nil {
		return DiffReport{}, err
	}

	diffText, err := unifiedSourceDiff(srcA, srcB)
	if err != nil {
		return DiffReport{}, err
	}

	return DiffReport{
		MetadataChanged: metaChanged,
		StatsChanged:    statsChanged,
		SourceDiff:      diffText,
		Identical:       len(metaChanged) == 0 && len(statsChanged) == 0 && diffText == "",
	}, nil
}
