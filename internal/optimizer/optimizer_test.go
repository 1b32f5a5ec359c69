package optimizer

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

func TestOptimizeRejectsOutOfRangeLevel(t *testing.T) {
	v := buildFrom(t, `agent "a" { model = "m" role = "r" }`)
	_, _, err := Optimize(v, Level(-1))
	require.Error(t, err)
	_, _, err = Optimize(v, Level(4))
	require.Error(t, err)
}

func TestOptimizeLevelZeroIsNoop(t *testing.T) {
	v := buildFrom(t, `agent "a" { model = "m" role = "r" }`)
	out, stats, err := Optimize(v, Zero)
	require.NoError(t, err)
	assert.Same(t, v, out)
	assert.Equal(t, Stats{}, stats)
}

func TestDedupStringsNoopOnFreshBuild(t *testing.T) {
	v := buildFrom(t, `
agent "a1" { model = "gpt-4" role = "r" }
agent "a2" { model = "gpt-4" role = "r" }
`)
	before := v.Pool.Len()
	_, stats, err := Optimize(v, One)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.StringsDeduped)
	assert.Equal(t, before, v.Pool.Len())
}

func TestDedupStringsCompactsOrphanedEntries(t *testing.T) {
	v := buildFrom(t, `
agent "keep-me" { model = "m" role = "r" }
agent "drop-me" { model = "m" role = "r" }
workflow "w" {
	trigger "t" { kind = "schedule" }
	step "s1" { agent = "keep-me" }
}
`)
	before := v.Pool.Len()
	_, stats, err := Optimize(v, Two)
	require.NoError(t, err)
	require.Len(t, v.Agents, 1)
	assert.Equal(t, "keep-me", v.Pool.Get(v.Agents[0].NameIdx))
	assert.Greater(t, stats.StringsDeduped, 0)
	assert.Less(t, v.Pool.Len(), before)
}

func TestFoldConstantsAlwaysZero(t *testing.T) {
	v := buildFrom(t, `agent "a" { model = "m" role = "r" }`)
	_, stats, err := Optimize(v, One)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.ConstantsFolded)
}

func TestPruneUnreachableDropsOrphanAgent(t *testing.T) {
	v := buildFrom(t, `
agent "used" { model = "m" role = "r" }
agent "unused" { model = "m" role = "r" }
workflow "w" {
	trigger "t" { kind = "schedule" }
	step "s1" { agent = "used" }
}
`)
	out, stats, err := Optimize(v, Two)
	require.NoError(t, err)
	require.Len(t, out.Agents, 1)
	assert.Equal(t, "used", out.Pool.Get(out.Agents[0].NameIdx))
	assert.Equal(t, 0, out.Workflows[0].Steps[0].Agent.Index)
	assert.Equal(t, 1, stats.DeclarationsPruned)
}

func TestPruneUnreachableKeepsManualTriggerWorkflowDeclarationsAlone(t *testing.T) {
	v := buildFrom(t, `
agent "a" { model = "m" role = "r" }
workflow "manual" {
	trigger "t" { kind = "manual" }
	step "s1" { agent = "a" }
}
`)
	out, _, err := Optimize(v, Two)
	require.NoError(t, err)
	// a manual-only workflow is not a trigger root, so its agent is unreachable
	assert.Empty(t, out.Agents)
	require.Len(t, out.Workflows, 1)
}

func TestPruneUnreachableKeepsCrewMembers(t *testing.T) {
	v := buildFrom(t, `
agent "a1" { model = "m" role = "r" }
agent "a2" { model = "m" role = "r" }
crew "team" { agents = ["a1", "a2"] }
workflow "w" {
	trigger "t" { kind = "event" }
	crew = "team"
}
`)
	out, _, err := Optimize(v, Two)
	require.NoError(t, err)
	require.Len(t, out.Agents, 2)
	require.Len(t, out.Crews, 1)
	require.Len(t, out.Crews[0].Agents, 2)
}

func TestNormalizeFieldsLowercasesEnums(t *testing.T) {
	v := buildFrom(t, `
workflow "w" {
	process = "Sequential"
	retry "r" { backoff = "Fixed" }
	trigger "t" { kind = "Schedule" }
}
`)
	out, stats, err := Optimize(v, Two)
	require.NoError(t, err)
	w := out.Workflows[0]
	assert.Equal(t, "sequential", out.Pool.Get(w.ProcessIdx))
	assert.Equal(t, "fixed", out.Pool.Get(w.Retries[0].BackoffIdx))
	assert.Equal(t, "schedule", out.Pool.Get(w.Triggers[0].KindIdx))
	assert.Equal(t, 3, stats.FieldsNormalized)
}

func TestInlineSingleUseContext(t *testing.T) {
	v := buildFrom(t, `
context "c1" { ttl = 5m }
workflow "w" {
	context = "c1"
	trigger "t" { kind = "schedule" }
}
`)
	out, stats, err := Optimize(v, Three)
	require.NoError(t, err)
	assert.False(t, out.Workflows[0].HasContext)
	assert.Empty(t, out.Contexts)
	assert.Equal(t, 1, stats.DeclarationsInlined)
}

func TestInlineSkipsMultiUseContext(t *testing.T) {
	v := buildFrom(t, `
context "shared" { ttl = 5m }
workflow "w1" { context = "shared" trigger "t" { kind = "schedule" } }
workflow "w2" { context = "shared" trigger "t" { kind = "event" } }
`)
	out, stats, err := Optimize(v, Three)
	require.NoError(t, err)
	assert.True(t, out.Workflows[0].HasContext)
	assert.True(t, out.Workflows[1].HasContext)
	require.Len(t, out.Contexts, 1)
	assert.Equal(t, 0, stats.DeclarationsInlined)
}

func TestMergeAdjacentStepsSameAgentNoDeps(t *testing.T) {
	v := buildFrom(t, `
agent "a" { model = "m" role = "r" }
workflow "w" {
	trigger "t" { kind = "schedule" }
	step "s1" { agent = "a" }
	step "s2" { agent = "a" }
	step "s3" { agent = "a" }
}
`)
	out, stats, err := Optimize(v, Three)
	require.NoError(t, err)
	require.Len(t, out.Workflows[0].Steps, 1)
	assert.Equal(t, 2, stats.StepsMerged)
}

func TestMergeAdjacentStepsNeverMergesAcrossDependsOn(t *testing.T) {
	v := buildFrom(t, `
agent "a" { model = "m" role = "r" }
workflow "w" {
	trigger "t" { kind = "schedule" }
	step "s1" { agent = "a" }
	step "s2" { agent = "a" depends_on = ["s1"] }
}
`)
	out, stats, err := Optimize(v, Three)
	require.NoError(t, err)
	require.Len(t, out.Workflows[0].Steps, 2)
	assert.Equal(t, 0, stats.StepsMerged)
	require.Len(t, out.Workflows[0].Steps[1].DependsOn, 1)
	assert.Equal(t, 0, out.Workflows[0].Steps[1].DependsOn[0])
}

func TestMergeAdjacentStepsRemapsPipelineEdges(t *testing.T) {
	v := buildFrom(t, `
agent "a" { model = "m" role = "r" }
workflow "w" {
	trigger "t" { kind = "schedule" }
	step "s1" { agent = "a" }
	step "s2" { agent = "a" }
	step "s3" { agent = "a" }
}
pipeline "p" {
	workflow = "w"
	edges = [["s1", "s3"]]
}
`)
	out, stats, err := Optimize(v, Three)
	require.NoError(t, err)
	require.Len(t, out.Workflows[0].Steps, 1)
	assert.Equal(t, 2, stats.StepsMerged)
	require.Len(t, out.Pipelines[0].Edges, 1)
	assert.Equal(t, 0, out.Pipelines[0].Edges[0].From)
	assert.Equal(t, 0, out.Pipelines[0].Edges[0].To)
}

func TestMergeAdjacentStepsDifferentAgentNotMerged(t *testing.T) {
	v := buildFrom(t, `
agent "a1" { model = "m" role = "r" }
agent "a2" { model = "m" role = "r" }
workflow "w" {
	trigger "t" { kind = "schedule" }
	step "s1" { agent = "a1" }
	step "s2" { agent = "a2" }
}
`)
	out, stats, err := Optimize(v, Three)
	require.NoError(t, err)
	require.Len(t, out.Workflows[0].Steps, 2)
	assert.Equal(t, 0, stats.StepsMerged)
}

func TestOptimizeLevelGatingIsMonotone(t *testing.T) {
	v := buildFrom(t, `
context "c1" { ttl = 5m }
agent "a" { model = "M" role = "r" }
workflow "w" {
	process = "Sequential"
	context = "c1"
	trigger "t" { kind = "schedule" }
	step "s1" { agent = "a" }
	step "s2" { agent = "a" }
}
`)
	_, stats1, err := Optimize(v, One)
	require.NoError(t, err)
	assert.Equal(t, 0, stats1.DeclarationsPruned)
	assert.Equal(t, 0, stats1.FieldsNormalized)
	assert.Equal(t, 0, stats1.DeclarationsInlined)
	assert.Equal(t, 0, stats1.StepsMerged)

	v2 := buildFrom(t, `
context "c1" { ttl = 5m }
agent "a" { model = "M" role = "r" }
workflow "w" {
	process = "Sequential"
	context = "c1"
	trigger "t" { kind = "schedule" }
	step "s1" { agent = "a" }
	step "s2" { agent = "a" }
}
`)
	out, stats3, err := Optimize(v2, Three)
	require.NoError(t, err)
	assert.Greater(t, stats3.FieldsNormalized, 0)
	assert.Equal(t, 1, stats3.DeclarationsInlined)
	assert.Equal(t, 1, stats3.StepsMerged)
	require.Len(t, out.Workflows[0].Steps, 1)
}
