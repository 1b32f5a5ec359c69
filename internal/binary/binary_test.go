package binary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyber-boost/helix-sub000/internal/ir"
	"github.com/cyber-boost/helix-sub000/internal/parser"
)

func buildFrom(t *testing.T, src string) *ir.IR {
	t.Helper()
	res := parser.Parse(src)
	require.Empty(t, res.Errors)
	irv, _, err := ir.Build(res.File)
	require.NoError(t, err)
	return irv
}

func testMeta() Metadata {
	return Metadata{
		CreatedAtUnix:     1700000000,
		CompilerVersion:   "0.1.0-test",
		SourcePlatform:    "linux/amd64",
		OptimizationLevel: 2,
		SourcePath:        "testdata/minimal.hlx",
	}
}

func TestSerializeLoadRoundTrip(t *testing.T) {
	v := buildFrom(t, `
agent "a" { model = "gpt-4" role = "assistant" temperature = 0.7 }
workflow "w" {
	trigger "t" { kind = "schedule" }
	step "s1" { agent = "a" }
	step "s2" { agent = "a" depends_on = ["s1"] }
}
`)
	data, err := Serialize(v, testMeta(), CompressionNone)
	require.NoError(t, err)

	loaded, meta, err := Load(data)
	require.NoError(t, err)

	require.Len(t, loaded.Agents, 1)
	assert.Equal(t, "gpt-4", loaded.Pool.Get(loaded.Agents[0].ModelIdx))
	assert.True(t, loaded.Agents[0].HasTemperature)
	assert.InDelta(t, 0.7, loaded.Agents[0].Temperature, 0.0001)

	require.Len(t, loaded.Workflows, 1)
	require.Len(t, loaded.Workflows[0].Steps, 2)
	require.Len(t, loaded.Workflows[0].Steps[1].DependsOn, 1)
	assert.Equal(t, 0, loaded.Workflows[0].Steps[1].DependsOn[0])

	assert.Equal(t, testMeta(), meta)
}

func TestSerializeLoadRoundTripWithGzip(t *testing.T) {
	v := buildFrom(t, `
agent "a1" { model = "m" role = "r" }
agent "a2" { model = "m" role = "r" }
crew "team" { agents = ["a1", "a2"] }
`)
	data, err := Serialize(v, testMeta(), CompressionGzip)
	require.NoError(t, err)
	loaded, _, err := Load(data)
	require.NoError(t, err)
	require.Len(t, loaded.Crews, 1)
	require.Len(t, loaded.Crews[0].Agents, 2)
}

func TestSerializeLoadRoundTripWithZstd(t *testing.T) {
	v := buildFrom(t, `context "c1" { ttl = 300 enabled = true }`)
	data, err := Serialize(v, testMeta(), CompressionZstd)
	require.NoError(t, err)
	loaded, _, err := Load(data)
	require.NoError(t, err)
	require.Len(t, loaded.Contexts, 1)
	ttl, ok := loaded.Contexts[0].Fields["ttl"].AsNumber()
	require.True(t, ok)
	assert.Equal(t, 300.0, ttl)
}

func TestLoadRejectsBadMagic(t *testing.T) {
	v := buildFrom(t, `agent "a" { model = "m" role = "r" }`)
	data, err := Serialize(v, testMeta(), CompressionNone)
	require.NoError(t, err)
	data[0] = 'X'
	_, _, err = Load(data)
	require.Error(t, err)
}

func TestLoadRejectsFutureVersion(t *testing.T) {
	v := buildFrom(t, `agent "a" { model = "m" role = "r" }`)
	data, err := Serialize(v, testMeta(), CompressionNone)
	require.NoError(t, err)
	data[4] = 99
	_, _, err = Load(data)
	require.Error(t, err)
}

func TestLoadDetectsChecksumMismatch(t *testing.T) {
	v := buildFrom(t, `
agent "a" { model = "m" role = "r" }
context "c1" { ttl = 300 }
`)
	data, err := Serialize(v, testMeta(), CompressionNone)
	require.NoError(t, err)

	// Flip a byte in the middle of the file (past the symbol table, inside
	// the section data), away from the checksum tail.
	mid := len(data) / 2
	data[mid] ^= 0xFF

	_, _, err = Load(data)
	require.Error(t, err)
}

func TestDecompileRoundTripsAsIR(t *testing.T) {
	src := `
agent "a" { model = "gpt-4" role = "assistant" }
context "c1" { ttl = 300 }
crew "team" { agents = ["a"] }
workflow "w" {
	process = "sequential"
	context = "c1"
	crew = "team"
	trigger "t" { kind = "schedule" }
	step "s1" { agent = "a" }
	step "s2" { agent = "a" depends_on = ["s1"] }
	retry "r" { backoff = "exponential" max_attempts = 3 }
}
pipeline "p" {
	workflow = "w"
	edges = [["s1", "s2"]]
}
`
	original := buildFrom(t, src)
	decompiled := Decompile(original)

	res := parser.Parse(decompiled)
	require.Empty(t, res.Errors)
	reparsed, _, err := ir.Build(res.File)
	require.NoError(t, err)

	require.Len(t, reparsed.Agents, len(original.Agents))
	require.Len(t, reparsed.Workflows, len(original.Workflows))
	require.Len(t, reparsed.Contexts, len(original.Contexts))
	require.Len(t, reparsed.Crews, len(original.Crews))
	require.Len(t, reparsed.Pipelines, len(original.Pipelines))

	assert.Equal(t, original.Pool.Get(original.Agents[0].NameIdx), reparsed.Pool.Get(reparsed.Agents[0].NameIdx))
	assert.Equal(t, original.Pool.Get(original.Agents[0].ModelIdx), reparsed.Pool.Get(reparsed.Agents[0].ModelIdx))

	origWF, reWF := original.Workflows[0], reparsed.Workflows[0]
	assert.Equal(t, len(origWF.Steps), len(reWF.Steps))
	assert.Equal(t, origWF.Steps[1].DependsOn, reWF.Steps[1].DependsOn)
	assert.True(t, reWF.HasContext)
	assert.True(t, reWF.HasCrew)
	require.Len(t, reparsed.Pipelines[0].Edges, 1)
	assert.Equal(t, 0, reparsed.Pipelines[0].Edges[0].From)
	assert.Equal(t, 1, reparsed.Pipelines[0].Edges[0].To)
}

func TestSerializeDeterministicForSameInput(t *testing.T) {
	v1 := buildFrom(t, `agent "a" { model = "m" role = "r" }`)
	v2 := buildFrom(t, `agent "a" { model = "m" role = "r" }`)
	data1, err := Serialize(v1, testMeta(), CompressionNone)
	require.NoError(t, err)
	data2, err := Serialize(v2, testMeta(), CompressionNone)
	require.NoError(t, err)
	assert.Equal(t, data1, data2)
}

func TestMinimalBinarySizeBudget(t *testing.T) {
	v := buildFrom(t, `
agent "simple-assistant" { model = "gpt-4" role = "assistant" }
workflow "w" {
	step "s1" { agent = "simple-assistant" }
}
`)
	data, err := Serialize(v, testMeta(), CompressionNone)
	require.NoError(t, err)
	assert.Less(t, len(data), 2048)
}
