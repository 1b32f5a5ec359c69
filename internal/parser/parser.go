// Package parser turns a token stream from internal/lexer into an
// internal/ast.File. One parse invocation may surface multiple
// non-fatal errors: on a malformed statement the parser skips to the next
// source line and continues. Unbalanced braces, an unterminated string (a
// lexer-level failure), and an unknown top-level keyword are fatal.
package parser

import (
	"fmt"

	"github.com/cyber-boost/helix-sub000/internal/ast"
	"github.com/cyber-boost/helix-sub000/internal/herr"
	"github.com/cyber-boost/helix-sub000/internal/lexer"
	"github.com/cyber-boost/helix-sub000/pkg/value"
)

var topLevelKinds = map[string]ast.DeclKind{
	"project":  ast.KindProject,
	"agent":    ast.KindAgent,
	"workflow": ast.KindWorkflow,
	"context":  ast.KindContext,
	"crew":     ast.KindCrew,
	"memory":   ast.KindMemory,
	"pipeline": ast.KindPipeline,
}

var subBlockKinds = map[string]ast.DeclKind{
	"step":    ast.KindStep,
	"retry":   ast.KindRetry,
	"trigger": ast.KindTrigger,
}

// Result is the outcome of a Parse call: the (possibly partial) File and
// every recovered-from error, in source order. A fatal error short-
// circuits parsing and is the sole element of Errors.
type Result struct {
	File   *ast.File
	Errors []*herr.Error
}

// Parser consumes a pre-tokenized HELIX source.
type Parser struct {
	toks []lexer.Token
	pos  int
}

// Parse tokenizes and parses src in one call.
func Parse(src string) Result {
	toks, err := lexer.Tokenize(src)
	if err != nil {
		he, _ := err.(*herr.Error)
		return Result{File: &ast.File{}, Errors: []*herr.Error{he}}
	}
	p := &Parser{toks: toks}
	return p.parseFile()
}

func (p *Parser) cur() lexer.Token  { return p.toks[p.pos] }
func (p *Parser) atEOF() bool       { return p.cur().Kind == lexer.TokenEOF }
func (p *Parser) advance() lexer.Token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) parseFile() Result {
	f := &ast.File{}
	var errs []*herr.Error

	for !p.atEOF() {
		tok := p.cur()
		if tok.Kind != lexer.TokenIdent {
			errs = append(errs, herr.ParseErr(tok.Line, tok.Column, tok.Text,
				fmt.Sprintf("expected a top-level declaration, found %s", tok.Kind)))
			p.skipToNextLine(tok.Line)
			continue
		}
		kind, ok := topLevelKinds[tok.Text]
		if !ok {
			// Unknown top-level keyword is fatal.
			return Result{File: f, Errors: []*herr.Error{herr.ParseErrSuggest(
				tok.Line, tok.Column, tok.Text,
				fmt.Sprintf("unknown top-level keyword %q", tok.Text),
				"expected one of project, agent, workflow, context, crew, memory, pipeline")}}
		}

		decl, declErrs, fatal := p.parseDecl(kind, subBlockKinds)
		errs = append(errs, declErrs...)
		if fatal != nil {
			return Result{File: f, Errors: []*herr.Error{fatal}}
		}
		if decl != nil {
			f.Decls = append(f.Decls, decl)
		}
	}

	return Result{File: f, Errors: errs}
}

// parseDecl parses `kind ["name"] { body }`. allowedBlocks names the nested
// block keywords valid inside this declaration's body (e.g. step/retry/
// trigger inside a workflow); nil means no nested blocks are expected,
// only dotted/plain field assignments.
func (p *Parser) parseDecl(kind ast.DeclKind, allowedBlocks map[string]ast.DeclKind) (*ast.Decl, []*herr.Error, *herr.Error) {
	head := p.advance() // the kind keyword
	decl := &ast.Decl{Kind: kind, Pos: ast.Pos{Line: head.Line, Column: head.Column}}

	if p.cur().Kind == lexer.TokenString {
		decl.Name = p.advance().Text
	} else if p.cur().Kind == lexer.TokenIdent {
		decl.Name = p.advance().Text
	}

	if p.cur().Kind != lexer.TokenLBrace {
		t := p.cur()
		return decl, nil, herr.ParseErrSuggest(t.Line, t.Column, t.Text,
			"expected '{' to open declaration body", "add an opening brace")
	}
	p.advance() // consume '{'

	var errs []*herr.Error
	for {
		if p.atEOF() {
			t := p.cur()
			return decl, errs, herr.ParseErr(t.Line, t.Column, decl.Name, "unbalanced braces: unexpected end of file")
		}
		if p.cur().Kind == lexer.TokenRBrace {
			p.advance()
			return decl, errs, nil
		}

		tok := p.cur()
		if tok.Kind != lexer.TokenIdent {
			errs = append(errs, herr.ParseErr(tok.Line, tok.Column, tok.Text, "expected a field or nested block"))
			p.skipToNextLine(tok.Line)
			continue
		}

		// Nested block: `ident ["name"] {`.
		if childKind, ok := allowedBlocks[tok.Text]; ok && p.peekIsBlockStart(1) {
			child, childErrs, fatal := p.parseDecl(childKind, nil)
			errs = append(errs, childErrs...)
			if fatal != nil {
				return decl, errs, fatal
			}
			decl.Children = append(decl.Children, child)
			continue
		}

		field, err := p.parseField()
		if err != nil {
			errs = append(errs, err)
			p.skipToNextLine(tok.Line)
			continue
		}
		decl.Fields = append(decl.Fields, field)
	}
}

// peekIsBlockStart reports whether, starting offset tokens ahead of the
// current identifier, the statement is `["name"] {` rather than `= value`.
func (p *Parser) peekIsBlockStart(offset int) bool {
	idx := p.pos + offset
	if idx >= len(p.toks) {
		return false
	}
	if p.toks[idx].Kind == lexer.TokenLBrace {
		return true
	}
	if p.toks[idx].Kind == lexer.TokenString || p.toks[idx].Kind == lexer.TokenIdent {
		idx2 := idx + 1
		return idx2 < len(p.toks) && p.toks[idx2].Kind == lexer.TokenLBrace
	}
	return false
}

func (p *Parser) parseField() (ast.Field, error) {
	start := p.cur()
	key := p.advance().Text
	for p.cur().Kind == lexer.TokenDot {
		p.advance()
		if p.cur().Kind != lexer.TokenIdent {
			t := p.cur()
			return ast.Field{}, herr.ParseErr(t.Line, t.Column, key, "expected identifier after '.'")
		}
		key += "." + p.advance().Text
	}

	if p.cur().Kind != lexer.TokenAssign {
		t := p.cur()
		return ast.Field{}, herr.ParseErrSuggest(t.Line, t.Column, key,
			"expected '=' after field name", "did you forget an assignment?")
	}
	p.advance()

	val, err := p.parseValue()
	if err != nil {
		return ast.Field{}, err
	}
	return ast.Field{Key: key, Value: val, Pos: ast.Pos{Line: start.Line, Column: start.Column}}, nil
}

func (p *Parser) parseValue() (value.Value, error) {
	tok := p.cur()
	switch tok.Kind {
	case lexer.TokenString:
		p.advance()
		return value.String(tok.Text), nil
	case lexer.TokenNumber:
		p.advance()
		return value.Number(tok.Num), nil
	case lexer.TokenDuration:
		p.advance()
		return value.Number(tok.Num), nil
	case lexer.TokenBool:
		p.advance()
		return value.Bool(tok.Bool), nil
	case lexer.TokenNull:
		p.advance()
		return value.Null(), nil
	case lexer.TokenLBracket:
		return p.parseArray()
	case lexer.TokenLBrace:
		return p.parseObject()
	default:
		return value.Null(), herr.ParseErr(tok.Line, tok.Column, tok.Text, fmt.Sprintf("expected a value, found %s", tok.Kind))
	}
}

func (p *Parser) parseArray() (value.Value, error) {
	p.advance() // '['
	var items []value.Value
	for {
		if p.cur().Kind == lexer.TokenRBracket {
			p.advance()
			return value.Array(items), nil
		}
		if p.atEOF() {
			t := p.cur()
			return value.Null(), herr.ParseErr(t.Line, t.Column, "array", "unbalanced braces: unterminated array")
		}
		v, err := p.parseValue()
		if err != nil {
			return value.Null(), err
		}
		items = append(items, v)
		if p.cur().Kind == lexer.TokenComma {
			p.advance()
		}
	}
}

func (p *Parser) parseObject() (value.Value, error) {
	p.advance() // '{'
	fields := map[string]value.Value{}
	for {
		if p.cur().Kind == lexer.TokenRBrace {
			p.advance()
			return value.Object(fields), nil
		}
		if p.atEOF() {
			t := p.cur()
			return value.Null(), herr.ParseErr(t.Line, t.Column, "object", "unbalanced braces: unterminated object")
		}
		f, err := p.parseField()
		if err != nil {
			return value.Null(), err
		}
		fields[f.Key] = f.Value
		if p.cur().Kind == lexer.TokenComma {
			p.advance()
		}
	}
}

// skipToNextLine advances past tokens until the line number increases past
// fromLine (or EOF), the error-recovery strategy for malformed statements.
func (p *Parser) skipToNextLine(fromLine int) {
	for !p.atEOF() && p.cur().Line <= fromLine {
		p.advance()
	}
}
