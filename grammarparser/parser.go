// Package grammarparser is a hand-written backtracking recursive-descent
// parser for the Polygen grammar language itself; its productions are
// not memoized. It mirrors the
// mark/reset recursive-descent shape of a bootstrapped PEG parser:
// every production is a method that either returns a node and leaves
// the cursor advanced, or returns nil/false and leaves the cursor
// exactly where it found it.
package grammarparser

import (
	"github.com/polygen/polygen/ast"
	"github.com/polygen/polygen/errors"
	"github.com/polygen/polygen/lexer"
	"github.com/polygen/polygen/source"
)

// Parser holds the mutable cursor state for a single parse. It is not
// safe for concurrent or repeated use; call New per grammar file.
type Parser struct {
	q       *source.Queue
	lex     *lexer.Lexer
	tok     *lexer.Token // current lookahead, nil until primed
	tokPos  int          // queue offset at which lexing of tok began
	bag     *errors.Bag
	furthest *lexer.Token // deepest lookahead reached, for error messages
}

// New creates a parser over src.
func New(src *source.Source) *Parser {
	q := source.NewQueue()
	q.Append(src)
	return &Parser{q: q, lex: lexer.New(), bag: errors.NewBag()}
}

// Parse parses a full grammar file into a RawGrammar. Errors are
// returned as a *errors.Bag; a non-nil Bag with HasErrors() true means
// parsing failed and the returned grammar, if any, is not usable.
func Parse(name string, content []byte) (*ast.RawGrammar, *errors.Bag) {
	p := New(source.New(name, content))
	p.advance()
	g := p.parseGrammar()
	if g == nil && !p.bag.HasErrors() {
		p.fail(errors.Syntax, "empty or unparsable grammar")
	}
	return g, p.bag
}

// --- cursor primitives ---

func (p *Parser) advance() {
	for {
		start := p.q.Pos()
		tok, err := p.lex.Next(p.q)
		if err != nil {
			p.bag.Add(err.(*errors.Error))
			// skip one byte and retry so one bad char doesn't abort the
			// whole parse; the grammar is still unusable but callers get
			// more than one diagnostic.
			p.q.Skip(1)
			continue
		}
		p.tok = tok
		p.tokPos = start
		if p.furthest == nil || tok.Line() > p.furthest.Line() ||
			(tok.Line() == p.furthest.Line() && tok.Col() > p.furthest.Col()) {
			p.furthest = tok
		}
		return
	}
}

// mark returns an opaque cursor snapshot for backtracking: the offset at
// which the current lookahead was lexed, so reset(mark) re-lexes that
// same token as the lookahead.
func (p *Parser) mark() int {
	return p.tokPos
}

func (p *Parser) reset(pos int) {
	p.q.Seek(pos)
	p.advance()
}

func (p *Parser) at(t int) bool {
	return p.tok.Type() == t
}

func (p *Parser) atEof() bool {
	return p.tok.Type() == lexer.EofTokenType || p.tok.Type() == lexer.EoiTokenType
}

// accept consumes the current token if it matches t, returning its text.
func (p *Parser) accept(t int) (string, bool) {
	if !p.at(t) {
		return "", false
	}
	text := p.tok.Text()
	p.advance()
	return text, true
}

func (p *Parser) expect(t int) (string, bool) {
	text, ok := p.accept(t)
	if !ok {
		p.fail(errors.Syntax, "expected %s, got %s %q", lexer.TypeName(t), p.tok.TypeName(), p.tok.Text())
	}
	return text, ok
}

func (p *Parser) pos() *ast.ParseInfo {
	return &ast.ParseInfo{File: p.tok.SourceName(), LineNo: p.tok.Line(), ColBegin: p.tok.Col()}
}

func (p *Parser) fail(kind errors.Kind, msg string, params ...interface{}) {
	p.bag.AddPos(p.tok, kind, msg, params...)
}

// --- grammar / entity level ---

func (p *Parser) parseGrammar() *ast.RawGrammar {
	info := p.pos()
	var entities []ast.Entity
	for !p.atEof() {
		e := p.parseEntity()
		if e == nil {
			if !p.atEof() {
				p.fail(errors.Syntax, "unexpected token %s %q", p.tok.TypeName(), p.tok.Text())
				p.advance() // avoid an infinite loop on unrecoverable input
			}
			continue
		}
		entities = append(entities, AsEntities(e)...)
	}
	if entities == nil {
		return nil
	}
	return &ast.RawGrammar{Entities: entities, Info: info}
}

func (p *Parser) parseEntity() ast.Entity {
	if p.at(lexer.At) {
		if d := p.parseDirective(); d != nil {
			return d
		}
		return nil
	}
	if p.at(lexer.Dollar) {
		if m := p.parseTopLevelMetaRule(); m != nil {
			return m
		}
		return nil
	}
	if p.at(lexer.Ident) {
		if r := p.parseRule(); r != nil {
			return r
		}
	}
	return nil
}

func (p *Parser) parseRule() *ast.Rule {
	mark := p.mark()
	info := p.pos()
	id, ok := p.accept(lexer.Ident)
	if !ok {
		return nil
	}
	if _, ok := p.accept(lexer.Arrow); !ok {
		p.reset(mark)
		return nil
	}
	expr := p.parseExpr()
	if expr == nil {
		p.fail(errors.Syntax, "expected expression in rule %q", id)
		return nil
	}
	return &ast.Rule{ID: id, Expr: expr, Info: info}
}

// parseTopLevelMetaRule parses `$name { body }`; a bare `$name` with no
// following brace is not valid at top level (that form only makes
// sense as an Alt-trailing reference) and is rejected.
func (p *Parser) parseTopLevelMetaRule() *ast.MetaRule {
	mark := p.mark()
	info := p.pos()
	if _, ok := p.accept(lexer.Dollar); !ok {
		return nil
	}
	id, ok := p.accept(lexer.Ident)
	if !ok {
		p.reset(mark)
		return nil
	}
	body, ok := p.parseMetaBody()
	if !ok {
		p.reset(mark)
		return nil
	}
	return &ast.MetaRule{ID: id, Body: body, Info: info}
}
