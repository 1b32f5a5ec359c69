package calc

import (
	"strconv"
	"strings"

	"github.com/cyber-boost/helix-sub000/internal/herr"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokNumber
	tokPlus
	tokMinus
	tokMul // 'x' or '*'
	tokMod // '#'
	tokAt  // '@'
	tokAssign
	tokLParen
	tokRParen
	tokLBrace
	tokRBrace
)

type token struct {
	kind tokenKind
	text string
	num  int64
}

func lex(src string) ([]token, error) {
	var toks []token
	r := []rune(src)
	i := 0
	for i < len(r) {
		c := r[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '{':
			toks = append(toks, token{kind: tokLBrace})
			i++
		case c == '}':
			toks = append(toks, token{kind: tokRBrace})
			i++
		case c == '(':
			toks = append(toks, token{kind: tokLParen})
			i++
		case c == ')':
			toks = append(toks, token{kind: tokRParen})
			i++
		case c == '=':
			toks = append(toks, token{kind: tokAssign})
			i++
		case c == '+':
			toks = append(toks, token{kind: tokPlus})
			i++
		case c == '-':
			toks = append(toks, token{kind: tokMinus})
			i++
		case c == '*':
			toks = append(toks, token{kind: tokMul})
			i++
		case c == '#':
			toks = append(toks, token{kind: tokMod})
			i++
		case c == '@':
			toks = append(toks, token{kind: tokAt})
			i++
		case c >= '0' && c <= '9':
			start := i
			for i < len(r) && r[i] >= '0' && r[i] <= '9' {
				i++
			}
			n, err := strconv.ParseInt(string(r[start:i]), 10, 64)
			if err != nil {
				return nil, herr.New(herr.InvalidInput, "calc: malformed number literal")
			}
			toks = append(toks, token{kind: tokNumber, num: n})
		case isIdentStart(c):
			start := i
			for i < len(r) && isIdentPart(r[i]) {
				i++
			}
			word := string(r[start:i])
			if word == "x" {
				toks = append(toks, token{kind: tokMul, text: word})
			} else {
				toks = append(toks, token{kind: tokIdent, text: word})
			}
		default:
			return nil, herr.New(herr.InvalidInput, "calc: unexpected character '"+string(c)+"'")
		}
	}
	toks = append(toks, token{kind: tokEOF})
	return toks, nil
}

func isIdentStart(c rune) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c rune) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

// stripKeyword reports whether toks opens with the reproducibility block
// keyword followed by '{', consuming both on success.
func stripKeyword(toks []token) ([]token, error) {
	if len(toks) < 2 || toks[0].kind != tokIdent || strings.ToLower(toks[0].text) != "reproducibility" {
		return nil, herr.New(herr.InvalidInput, "calc: source must open with a reproducibility block")
	}
	if toks[1].kind != tokLBrace {
		return nil, herr.New(herr.InvalidInput, "calc: expected '{' after reproducibility")
	}
	return toks[2:], nil
}
