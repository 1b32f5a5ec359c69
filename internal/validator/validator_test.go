package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyber-boost/helix-sub000/internal/parser"
)

func parseOK(t *testing.T, src string) *parser.Result {
	t.Helper()
	res := parser.Parse(src)
	require.Empty(t, res.Errors)
	return &res
}

func TestValidateMinimalPasses(t *testing.T) {
	res := parseOK(t, `
project { version = "1.0.0" }
agent "simple-assistant" { model = "gpt-4" role = "assistant" }
workflow "w" {
	step "s1" { agent = "simple-assistant" }
}
`)
	rep := Validate(res.File)
	assert.True(t, rep.Valid())
}

func TestValidateMissingProjectVersion(t *testing.T) {
	res := parseOK(t, `project { name = "x" }`)
	rep := Validate(res.File)
	require.Len(t, rep.Errors, 1)
	assert.Equal(t, "project.version", rep.Errors[0].Field)
	assert.Equal(t, "required", rep.Errors[0].Rule)
}

func TestValidateBadSemver(t *testing.T) {
	res := parseOK(t, `project { version = "v1" }`)
	rep := Validate(res.File)
	require.Len(t, rep.Errors, 1)
	assert.Equal(t, "format", rep.Errors[0].Rule)
}

func TestValidateAgentMissingFields(t *testing.T) {
	res := parseOK(t, `agent "a" { }`)
	rep := Validate(res.File)
	require.Len(t, rep.Errors, 2)
}

func TestValidateAgentTemperatureOutOfRange(t *testing.T) {
	res := parseOK(t, `agent "a" { model = "gpt-4" role = "r" temperature = 3.0 }`)
	rep := Validate(res.File)
	require.Len(t, rep.Errors, 1)
	assert.Equal(t, "agent.temperature", rep.Errors[0].Field)
}

func TestValidateUnresolvedStepAgent(t *testing.T) {
	res := parseOK(t, `
workflow "w" {
	step "s1" { agent = "ghost" }
}
`)
	rep := Validate(res.File)
	require.Len(t, rep.Errors, 1)
	assert.Equal(t, "workflow.step.agent", rep.Errors[0].Field)
	assert.Equal(t, "reference", rep.Errors[0].Rule)
	assert.Equal(t, "unresolved agent 'ghost'", rep.Errors[0].Message)
}

func TestValidateUnresolvedDependsOn(t *testing.T) {
	res := parseOK(t, `
agent "a" { model = "m" role = "r" }
workflow "w" {
	step "s1" { agent = "a" depends_on = ["missing"] }
}
`)
	rep := Validate(res.File)
	require.Len(t, rep.Errors, 1)
	assert.Equal(t, "workflow.step.depends_on", rep.Errors[0].Field)
}

func TestValidateCrewUnresolvedAgent(t *testing.T) {
	res := parseOK(t, `crew "c" { agents = ["ghost"] }`)
	rep := Validate(res.File)
	require.Len(t, rep.Errors, 1)
	assert.Equal(t, "crew.agents", rep.Errors[0].Field)
}

func TestValidateEnumFields(t *testing.T) {
	res := parseOK(t, `
workflow "w" {
	process = "weird"
	trigger "t" { kind = "bogus" }
	retry "r" { backoff = "nope" }
}
`)
	rep := Validate(res.File)
	require.Len(t, rep.Errors, 3)
}

func TestValidatePipelineCycleDetected(t *testing.T) {
	res := parseOK(t, `
agent "a" { model = "m" role = "r" }
workflow "w" {
	step "s1" { agent = "a" }
	step "s2" { agent = "a" }
}
pipeline "p" {
	workflow = "w"
	edges = [["s1", "s2"], ["s2", "s1"]]
}
`)
	rep := Validate(res.File)
	require.Len(t, rep.Errors, 1)
	assert.Equal(t, "cycle", rep.Errors[0].Rule)
}

func TestValidatePipelineAcyclicPasses(t *testing.T) {
	res := parseOK(t, `
agent "a" { model = "m" role = "r" }
workflow "w" {
	step "s1" { agent = "a" }
	step "s2" { agent = "a" }
}
pipeline "p" {
	workflow = "w"
	edges = [["s1", "s2"]]
}
`)
	rep := Validate(res.File)
	assert.True(t, rep.Valid())
}

func TestValidateWorkflowContextAndCrewReferences(t *testing.T) {
	res := parseOK(t, `
context "c1" { ttl = 5m }
crew "team" { agents = [] }
workflow "w" {
	context = "c1"
	crew = "team"
}
`)
	rep := Validate(res.File)
	assert.True(t, rep.Valid())
}

func TestValidateWorkflowUnresolvedContextAndCrew(t *testing.T) {
	res := parseOK(t, `
workflow "w" {
	context = "ghost-context"
	crew = "ghost-crew"
}
`)
	rep := Validate(res.File)
	require.Len(t, rep.Errors, 2)
}

func TestValidatePipelineUnresolvedWorkflow(t *testing.T) {
	res := parseOK(t, `pipeline "p" { workflow = "ghost" }`)
	rep := Validate(res.File)
	require.Len(t, rep.Errors, 1)
	assert.Equal(t, "reference", rep.Errors[0].Rule)
}
