package calc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvalEndToEndScenario(t *testing.T) {
	out, err := Eval(`reproducibility { a = 2  b = 3  c = a x b  d = @c #4 }`)
	require.NoError(t, err)
	fields, ok := out.AsObject()
	require.True(t, ok)

	assert.Len(t, fields, 4)
	for name, want := range map[string]float64{"a": 2, "b": 3, "c": 6, "d": 2} {
		n, ok := fields[name].AsNumber()
		require.True(t, ok, "field %q should be a number", name)
		assert.Equal(t, want, n)
	}
}

func TestEvalAdditionAndSubtraction(t *testing.T) {
	out, err := Eval(`reproducibility { a = 10  b = 3  c = a - b  d = c + 5 }`)
	require.NoError(t, err)
	fields, _ := out.AsObject()
	n, _ := fields["d"].AsNumber()
	assert.Equal(t, 12.0, n)
}

func TestEvalParenthesization(t *testing.T) {
	out, err := Eval(`reproducibility { a = 2  b = 3  c = 4  d = (a + b) x c }`)
	require.NoError(t, err)
	fields, _ := out.AsObject()
	n, _ := fields["d"].AsNumber()
	assert.Equal(t, 20.0, n)
}

func TestEvalAsteriskIsMultiplySameAsX(t *testing.T) {
	out, err := Eval(`reproducibility { a = 5  b = 4  c = a * b }`)
	require.NoError(t, err)
	fields, _ := out.AsObject()
	n, _ := fields["c"].AsNumber()
	assert.Equal(t, 20.0, n)
}

func TestEvalForwardReferenceIsError(t *testing.T) {
	_, err := Eval(`reproducibility { a = b  b = 1 }`)
	require.Error(t, err)
}

func TestEvalUndeclaredReferenceIsError(t *testing.T) {
	_, err := Eval(`reproducibility { a = ghost }`)
	require.Error(t, err)
}

func TestEvalModulusByZeroIsError(t *testing.T) {
	_, err := Eval(`reproducibility { a = 5  b = @a #0 }`)
	require.Error(t, err)
}

func TestEvalMissingOpeningKeywordIsError(t *testing.T) {
	_, err := Eval(`{ a = 1 }`)
	require.Error(t, err)
}

func TestEvalUnterminatedBlockIsError(t *testing.T) {
	_, err := Eval(`reproducibility { a = 1`)
	require.Error(t, err)
}

func TestEvalWrapsOnSigned64Overflow(t *testing.T) {
	// 2^63 - 1 (max int64) plus 1 wraps to the minimum int64.
	out, err := Eval(`reproducibility { a = 9223372036854775807  b = a + 1 }`)
	require.NoError(t, err)
	fields, _ := out.AsObject()
	n, _ := fields["b"].AsNumber()
	assert.Equal(t, float64(int64(-9223372036854775808)), n)
}

func TestEvalModulusNormalizesToNonNegative(t *testing.T) {
	out, err := Eval(`reproducibility { a = 0  b = a - 7  c = @b #4 }`)
	require.NoError(t, err)
	fields, _ := out.AsObject()
	n, _ := fields["c"].AsNumber()
	assert.Equal(t, 1.0, n)
}
