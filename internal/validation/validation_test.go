package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyber-boost/helix-sub000/pkg/value"
)

func mustParseValue(t *testing.T, src string) value.Value {
	t.Helper()
	var v value.Value
	require.NoError(t, v.UnmarshalJSON([]byte(src)))
	return v
}

func TestValidateEndToEndScenario(t *testing.T) {
	e := NewEngine()
	schema := mustParseValue(t, `{"name": ["required", "string"], "age": ["number"]}`)
	data := mustParseValue(t, `{"age": 30}`)

	res, err := e.Validate(schema, data)
	require.NoError(t, err)

	assert.False(t, res.IsValid)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "name", res.Errors[0].Field)
	assert.Equal(t, "required", res.Errors[0].Rule)
}

func TestValidatePassesWhenAllRulesSatisfied(t *testing.T) {
	e := NewEngine()
	schema := mustParseValue(t, `{"name": ["required", "string"], "age": ["number"]}`)
	data := mustParseValue(t, `{"name": "ada", "age": 30}`)

	res, err := e.Validate(schema, data)
	require.NoError(t, err)
	assert.True(t, res.IsValid)
	assert.Empty(t, res.Errors)
}

func TestValidateUnknownFieldProducesWarningNotError(t *testing.T) {
	e := NewEngine()
	schema := mustParseValue(t, `{"name": ["required"]}`)
	data := mustParseValue(t, `{"name": "ada", "extra": 1}`)

	res, err := e.Validate(schema, data)
	require.NoError(t, err)
	assert.True(t, res.IsValid)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, "extra", res.Warnings[0].Field)
}

func TestValidateStringLengthBounds(t *testing.T) {
	e := NewEngine()
	schema := mustParseValue(t, `{"name": [{"rule":"string_length","min":3,"max":5}]}`)
	data := mustParseValue(t, `{"name": "ab"}`)

	res, err := e.Validate(schema, data)
	require.NoError(t, err)
	assert.False(t, res.IsValid)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "string_length", res.Errors[0].Rule)
}

func TestValidateNumericRangeAndRange(t *testing.T) {
	e := NewEngine()
	schema := mustParseValue(t, `{"age": [{"rule":"numeric_range","min":0,"max":120}], "score": [{"rule":"range","min":0,"max":100}]}`)
	data := mustParseValue(t, `{"age": 200, "score": 150}`)

	res, err := e.Validate(schema, data)
	require.NoError(t, err)
	assert.False(t, res.IsValid)
	assert.Len(t, res.Errors, 2)
}

func TestValidatePatternEnumEmail(t *testing.T) {
	e := NewEngine()
	schema := mustParseValue(t, `{
		"code": [{"rule":"pattern","pattern":"^[A-Z]{3}$"}],
		"level": [{"rule":"enum","values":["low","medium","high"]}],
		"contact": ["email"]
	}`)
	data := mustParseValue(t, `{"code": "abc", "level": "extreme", "contact": "not-an-email"}`)

	res, err := e.Validate(schema, data)
	require.NoError(t, err)
	assert.False(t, res.IsValid)
	assert.Len(t, res.Errors, 3)
}

func TestValidateIPv4AndIPv6(t *testing.T) {
	e := NewEngine()
	schema := mustParseValue(t, `{"v4": ["ipv4"], "v6": ["ipv6"]}`)
	data := mustParseValue(t, `{"v4": "10.0.0.1", "v6": "::1"}`)

	res, err := e.Validate(schema, data)
	require.NoError(t, err)
	assert.True(t, res.IsValid)
}

func TestValidateDateFormat(t *testing.T) {
	e := NewEngine()
	schema := mustParseValue(t, `{"created": [{"rule":"date_format","format":"2006-01-02"}]}`)
	data := mustParseValue(t, `{"created": "2026-07-31"}`)

	res, err := e.Validate(schema, data)
	require.NoError(t, err)
	assert.True(t, res.IsValid)
}

func TestValidateNestedObjectRule(t *testing.T) {
	e := NewEngine()
	schema := mustParseValue(t, `{
		"address": [{"rule":"object","schema":{"city":["required"]}}]
	}`)
	data := mustParseValue(t, `{"address": {}}`)

	res, err := e.Validate(schema, data)
	require.NoError(t, err)
	assert.False(t, res.IsValid)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "address.city", res.Errors[0].Field)
}

func TestValidateArrayItemsRule(t *testing.T) {
	e := NewEngine()
	schema := mustParseValue(t, `{
		"tags": [{"rule":"array_items","rules":["string"]}]
	}`)
	data := mustParseValue(t, `{"tags": ["a", 2, "c"]}`)

	res, err := e.Validate(schema, data)
	require.NoError(t, err)
	assert.False(t, res.IsValid)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "tags[1]", res.Errors[0].Field)
}

func TestValidateCustomRule(t *testing.T) {
	e := NewEngine()
	e.RegisterCustom("even", func(v value.Value) (bool, string) {
		n, ok := v.AsNumber()
		if !ok || int64(n)%2 != 0 {
			return false, "must be even"
		}
		return true, ""
	})
	schema := mustParseValue(t, `{"count": [{"rule":"custom","name":"even"}]}`)
	data := mustParseValue(t, `{"count": 3}`)

	res, err := e.Validate(schema, data)
	require.NoError(t, err)
	assert.False(t, res.IsValid)
	assert.Equal(t, "must be even", res.Errors[0].Message)
}

func TestValidateUnregisteredCustomRuleFails(t *testing.T) {
	e := NewEngine()
	schema := mustParseValue(t, `{"count": [{"rule":"custom","name":"missing"}]}`)
	data := mustParseValue(t, `{"count": 3}`)

	res, err := e.Validate(schema, data)
	require.NoError(t, err)
	assert.False(t, res.IsValid)
}
