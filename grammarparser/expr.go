package grammarparser

import (
	"strconv"

	"github.com/polygen/polygen/ast"
	"github.com/polygen/polygen/errors"
	"github.com/polygen/polygen/lexer"
)

// parseExpr: Alt ('/' Alt)*
func (p *Parser) parseExpr() *ast.Expr {
	info := p.pos()
	first := p.parseAlt()
	if first == nil {
		return nil
	}
	alts := []*ast.Alt{first}
	for {
		mark := p.mark()
		if _, ok := p.accept(lexer.Slash); !ok {
			break
		}
		alt := p.parseAlt()
		if alt == nil {
			p.reset(mark)
			break
		}
		alts = append(alts, alt)
	}
	return &ast.Expr{Alts: alts, Info: info}
}

// parseAlt: Part+ (InlineMetaRule | MetaRef)?
func (p *Parser) parseAlt() *ast.Alt {
	info := p.pos()
	var items []*ast.NamedItem
	for {
		item := p.parsePart()
		if item == nil {
			break
		}
		items = append(items, item)
	}
	if items == nil {
		return nil
	}

	alt := &ast.Alt{Items: items, Info: info}

	if p.at(lexer.Dollar) {
		mark := p.mark()
		p.accept(lexer.Dollar)
		if body, ok := p.parseMetaBody(); ok {
			alt.Meta = &ast.MetaRule{Body: body, Info: info}
		} else if id, ok := p.accept(lexer.Ident); ok && !p.at(lexer.LBrace) {
			alt.MetaRef = &ast.MetaRef{ID: id, Info: info}
		} else if ok {
			// `$name { ... }` is a top-level metarule, not a reference.
			p.reset(mark)
		} else {
			p.fail(errors.Syntax, "expected metarule body or name after '$'")
			p.reset(mark)
		}
	}

	return alt
}

// parsePart: Cut? (MetaName ':')? Lookahead? Primary Quantifier?
func (p *Parser) parsePart() *ast.NamedItem {
	mark := p.mark()
	info := p.pos()

	cut := false
	if _, ok := p.accept(lexer.Caret); ok {
		cut = true
	}

	metaName := p.tryParseMetaNamePrefix()
	metaNameExplicit := metaName != ""

	lookahead := ast.NoLookahead
	if _, ok := p.accept(lexer.Amp); ok {
		lookahead = ast.AndLookahead
	} else if _, ok := p.accept(lexer.Bang); ok {
		lookahead = ast.NotLookahead
	}

	primary := p.parsePrimary()
	if primary == nil {
		if cut || metaName != "" || lookahead != ast.NoLookahead {
			p.fail(errors.Syntax, "expected an item after cut/metaname/lookahead prefix")
		}
		p.reset(mark)
		return nil
	}

	item := p.applyQuantifier(primary)

	if lookahead != ast.NoLookahead && metaName != "" {
		p.bag.AddPos(info, errors.Semantic, "predicate items may not carry a metaname")
	}

	return &ast.NamedItem{
		MetaName: metaName, MetaNameExplicit: metaNameExplicit,
		Cut: cut, Lookahead: lookahead, Item: item, Info: info,
	}
}

// tryParseMetaNamePrefix speculatively parses `(Identifier|'_') ':'`,
// backtracking if no colon follows (so a bare identifier primary is
// not mistaken for a metaname binding).
func (p *Parser) tryParseMetaNamePrefix() string {
	mark := p.mark()
	id, ok := p.accept(lexer.Ident)
	if !ok {
		return ""
	}
	if _, ok := p.accept(lexer.Colon); !ok {
		p.reset(mark)
		return ""
	}
	return id
}

// parsePrimary: Identifier (not followed by '<-') | '(' Expr ')' |
// StringLit | Class | AnyChar
func (p *Parser) parsePrimary() ast.Item {
	if p.at(lexer.Ident) {
		mark := p.mark()
		info := p.pos()
		id, _ := p.accept(lexer.Ident)
		if p.at(lexer.Arrow) {
			p.reset(mark)
			return nil
		}
		return &ast.Ident{Name: id, Info: info}
	}

	if _, ok := p.accept(lexer.LParen); ok {
		info := p.pos()
		expr := p.parseExpr()
		if expr == nil {
			p.fail(errors.Syntax, "expected expression after '('")
			return nil
		}
		if _, ok := p.expect(lexer.RParen); !ok {
			return nil
		}
		return &ast.SubExpr{Expr: expr, Info: info}
	}

	if lit := p.parseLiteral(); lit != nil {
		return lit
	}

	if class := p.parseClass(); class != nil {
		return class
	}

	if _, ok := p.accept(lexer.Dot); ok {
		return &ast.AnyChar{Info: p.pos()}
	}

	return nil
}

// applyQuantifier: Quantifier? = ('?' | '*' | '+' | Repetition)?
func (p *Parser) applyQuantifier(base ast.Item) ast.Item {
	info := p.pos()
	if _, ok := p.accept(lexer.Question); ok {
		return &ast.ZeroOrOne{Item: base, Info: info}
	}
	if _, ok := p.accept(lexer.Star); ok {
		return &ast.ZeroOrMore{Item: base, Info: info}
	}
	if _, ok := p.accept(lexer.Plus); ok {
		return &ast.OneOrMore{Item: base, Info: info}
	}
	if rep := p.tryParseRepetition(base, info); rep != nil {
		return rep
	}
	return base
}

// tryParseRepetition: '{' Number (',' Number?)? '}'
func (p *Parser) tryParseRepetition(base ast.Item, info *ast.ParseInfo) *ast.Repetition {
	mark := p.mark()
	if _, ok := p.accept(lexer.LBrace); !ok {
		return nil
	}
	loText, ok := p.accept(lexer.Number)
	if !ok {
		p.reset(mark)
		return nil
	}
	lo, _ := strconv.Atoi(loText)
	hi := lo

	if _, ok := p.accept(lexer.Comma); ok {
		if hiText, ok := p.accept(lexer.Number); ok {
			hi, _ = strconv.Atoi(hiText)
		} else {
			hi = -1 // unbounded: {lo,}
		}
	}

	if _, ok := p.accept(lexer.RBrace); !ok {
		p.reset(mark)
		return nil
	}

	return &ast.Repetition{Item: base, Lo: lo, Hi: hi, Info: info}
}
