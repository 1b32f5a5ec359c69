package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kinds(t *testing.T, src string) []TokenKind {
	t.Helper()
	toks, err := Tokenize(src)
	require.NoError(t, err)
	ks := make([]TokenKind, len(toks))
	for i, tok := range toks {
		ks[i] = tok.Kind
	}
	return ks
}

func TestTokenizeBraces(t *testing.T) {
	ks := kinds(t, `agent "x" { model = "gpt-4" }`)
	assert.Equal(t, []TokenKind{TokenIdent, TokenString, TokenLBrace, TokenIdent, TokenAssign, TokenString, TokenRBrace, TokenEOF}, ks)
}

func TestTokenizeComment(t *testing.T) {
	toks, err := Tokenize("# a comment\nagent")
	require.NoError(t, err)
	require.Len(t, toks, 2)
	assert.Equal(t, TokenIdent, toks[0].Kind)
	assert.Equal(t, 2, toks[0].Line)
}

func TestTokenizeEscapes(t *testing.T) {
	toks, err := Tokenize(`"line\nbreak\ttab\"quote"`)
	require.NoError(t, err)
	assert.Equal(t, "line\nbreak\ttab\"quote", toks[0].Text)
}

func TestTokenizeDuration(t *testing.T) {
	toks, err := Tokenize("5m")
	require.NoError(t, err)
	assert.Equal(t, TokenDuration, toks[0].Kind)
	assert.Equal(t, float64(300), toks[0].Num)
}

func TestTokenizeDurationHours(t *testing.T) {
	toks, err := Tokenize("2h")
	require.NoError(t, err)
	assert.Equal(t, float64(7200), toks[0].Num)
}

func TestTokenizeNegativeNumber(t *testing.T) {
	toks, err := Tokenize("-1.5")
	require.NoError(t, err)
	assert.Equal(t, TokenNumber, toks[0].Kind)
	assert.Equal(t, -1.5, toks[0].Num)
}

func TestTokenizeBoolAndNull(t *testing.T) {
	ks := kinds(t, "true false null")
	assert.Equal(t, []TokenKind{TokenBool, TokenBool, TokenNull, TokenEOF}, ks)
}

func TestTokenizeUnterminatedString(t *testing.T) {
	_, err := Tokenize(`"unterminated`)
	require.Error(t, err)
}

func TestTokenizeIdentifierWithHyphen(t *testing.T) {
	toks, err := Tokenize("simple-assistant")
	require.NoError(t, err)
	assert.Equal(t, "simple-assistant", toks[0].Text)
}

func TestTokenizeDottedReference(t *testing.T) {
	ks := kinds(t, "workflow.step.agent")
	assert.Equal(t, []TokenKind{TokenIdent, TokenDot, TokenIdent, TokenDot, TokenIdent, TokenEOF}, ks)
}

func TestTokenizeArray(t *testing.T) {
	ks := kinds(t, `["a", "b"]`)
	assert.Equal(t, []TokenKind{TokenLBracket, TokenString, TokenComma, TokenString, TokenRBracket, TokenEOF}, ks)
}
