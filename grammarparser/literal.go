package grammarparser

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/polygen/polygen/ast"
	"github.com/polygen/polygen/errors"
	"github.com/polygen/polygen/lexer"
)

// --- raw scanning helpers ---
//
// Literals, classes, and metarule/backend bodies are not pre-tokenized
// by the structural lexer (see lexer package doc): by the time a
// production below detects the opening delimiter token, the queue
// cursor is already positioned exactly one rune past that delimiter
// (matching it was the whole job of that token), so scanning continues
// directly against p.q and resyncs the lookahead token with p.advance()
// once the matching closing delimiter has been consumed raw.

// parseMetaBody scans a `{ ... }` body where `\}` is the only escape,
// assuming the current token is LBrace (queue cursor sits right after
// the opening brace).
func (p *Parser) parseMetaBody() (string, bool) {
	if !p.at(lexer.LBrace) {
		return "", false
	}

	var buf strings.Builder
	for {
		r, ok := p.q.NextRune()
		if !ok {
			p.fail(errors.Lexical, "unterminated metarule body")
			return "", false
		}
		if r == '\\' {
			r2, ok := p.q.NextRune()
			if ok && r2 == '}' {
				buf.WriteRune('}')
				continue
			}
			buf.WriteRune('\\')
			if ok {
				buf.WriteRune(r2)
			}
			continue
		}
		if r == '}' {
			break
		}
		buf.WriteRune(r)
	}

	p.advance()
	return buf.String(), true
}

// parseStringLiteralText scans a quoted literal (used for both @include
// paths and String items) and returns its decoded text.
func (p *Parser) parseStringLiteralText() (string, bool) {
	lit := p.parseLiteral()
	if lit == nil {
		return "", false
	}
	return string(lit.Chars), true
}

func (p *Parser) parseLiteral() *ast.StringLit {
	var quote rune
	if p.at(lexer.DQuote) {
		quote = '"'
	} else if p.at(lexer.SQuote) {
		quote = '\''
	} else {
		return nil
	}
	info := p.pos()

	var chars []rune
	for {
		r, _, ok := p.q.PeekRune()
		if !ok {
			p.fail(errors.Lexical, "unterminated string literal")
			return nil
		}
		if r == quote {
			p.q.NextRune()
			break
		}
		if r == '\\' {
			p.q.NextRune()
			decoded, err := p.decodeEscape()
			if err != nil {
				p.bag.Add(err)
				return nil
			}
			chars = append(chars, decoded)
			continue
		}
		p.q.NextRune()
		chars = append(chars, r)
	}

	p.advance()
	return &ast.StringLit{Chars: chars, Info: info}
}

// decodeEscape decodes the escape sequence following a backslash the
// caller has already consumed: \n \r \t \' \" \[ \] \\, octal \ooo /
// \oo (first digit 0-2), and \uHHHH (case-insensitive hex).
func (p *Parser) decodeEscape() (rune, *errors.Error) {
	r, _, ok := p.q.PeekRune()
	if !ok {
		return 0, errors.FormatPos(p.tok, errors.Lexical, "unterminated escape sequence")
	}

	switch r {
	case 'n':
		p.q.NextRune()
		return '\n', nil
	case 'r':
		p.q.NextRune()
		return '\r', nil
	case 't':
		p.q.NextRune()
		return '\t', nil
	case '\'', '"', '[', ']', '\\':
		p.q.NextRune()
		return r, nil
	case 'u', 'U':
		p.q.NextRune()
		hex := p.readRunes(4, isHexDigit)
		if len(hex) != 4 {
			return 0, errors.FormatPos(p.tok, errors.Lexical, "malformed \\u escape")
		}
		v, e := strconv.ParseInt(string(hex), 16, 32)
		if e != nil {
			return 0, errors.FormatPos(p.tok, errors.Lexical, "malformed \\u escape: %v", e)
		}
		return rune(v), nil
	case '0', '1', '2':
		digits := p.readRunes(3, isOctalDigit)
		v, e := strconv.ParseInt(string(digits), 8, 32)
		if e != nil {
			return 0, errors.FormatPos(p.tok, errors.Lexical, "malformed octal escape: %v", e)
		}
		return rune(v), nil
	default:
		return 0, errors.FormatPos(p.tok, errors.Lexical, "unknown escape sequence \\%c", r)
	}
}

func isHexDigit(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

func isOctalDigit(r rune) bool {
	return r >= '0' && r <= '7'
}

// readRunes greedily consumes up to max runes satisfying pred, without
// consuming the rune that breaks the run.
func (p *Parser) readRunes(max int, pred func(rune) bool) []rune {
	var out []rune
	for len(out) < max {
		r, size, ok := p.q.PeekRune()
		if !ok || !pred(r) {
			break
		}
		p.q.Skip(size)
		out = append(out, r)
	}
	return out
}

// --- character classes ---
//
// [0-9_-] must parse as {0..9} ∪ {_} ∪ {-}, closing at the first
// unescaped ']'. A '-' is a range operator only when both a
// preceding char and a following non-']' char surround it; a '-'
// immediately before the closing ']' is itself a literal member.

func (p *Parser) parseClass() *ast.Class {
	if !p.at(lexer.LBracket) {
		return nil
	}
	info := p.pos()

	var ranges []ast.Range
	for {
		r, _, ok := p.q.PeekRune()
		if !ok {
			p.fail(errors.Lexical, "unterminated character class")
			return nil
		}
		if r == ']' {
			p.q.NextRune()
			break
		}

		begin, err := p.readClassChar()
		if err != nil {
			p.bag.Add(err)
			return nil
		}

		next, _, ok := p.q.PeekRune()
		if ok && next == '-' {
			afterDash, hasAfter := p.peekAfterDash()
			if hasAfter && afterDash != ']' {
				p.q.NextRune() // consume '-'
				end, err := p.readClassChar()
				if err != nil {
					p.bag.Add(err)
					return nil
				}
				ranges = append(ranges, ast.Range{Begin: begin, End: end})
				continue
			}
		}
		ranges = append(ranges, ast.Range{Begin: begin, End: -1})
	}

	p.advance()
	return &ast.Class{Ranges: ranges, Info: info}
}

// peekAfterDash looks one rune past a '-' it does not consume, to
// decide whether the dash is a range operator or a trailing literal.
func (p *Parser) peekAfterDash() (rune, bool) {
	_, dashSize, ok := p.q.PeekRune()
	if !ok {
		return 0, false
	}
	content, pos := p.q.ContentPos()
	pos += dashSize
	if pos >= len(content) {
		return 0, false
	}
	r, _ := utf8.DecodeRune(content[pos:])
	return r, true
}

func (p *Parser) readClassChar() (rune, *errors.Error) {
	r, _, ok := p.q.PeekRune()
	if !ok {
		return 0, errors.FormatPos(p.tok, errors.Lexical, "unterminated character class")
	}
	if r == '\\' {
		p.q.NextRune()
		return p.decodeEscape()
	}
	p.q.NextRune()
	return r, nil
}
