// Package lexer tokenizes Polygen grammar text. Structural tokens
// (identifiers, operators, punctuation) are matched by regexp capturing
// groups, following the teacher's one-regex-many-types convention;
// context-sensitive runs of text that the regexp approach cannot safely
// bound — quoted literals, character classes, and metarule/backend
// bodies, all of which use a "\}"/"\]" style escape rather than regular
// nesting — are scanned rune-by-rune by the grammar parser directly
// against the shared source.Queue instead of being pre-tokenized here.
package lexer

import (
	"fmt"
	"regexp"

	"github.com/polygen/polygen/errors"
	"github.com/polygen/polygen/source"
)

// Token types for structural lexemes. Literal/class/body content is not
// tokenized here (see package doc).
const (
	Ident = iota + 1
	Arrow    // <-
	Slash    // /
	Star     // *
	Plus     // +
	Question // ?
	LParen
	RParen
	LBrace   // {
	RBrace   // }
	LBracket // [
	RBracket // ]
	Caret    // ^  (cut)
	Amp      // &  (and-predicate)
	Bang     // !  (not-predicate)
	Comma
	Dot    // .  (any char)
	At     // @
	Dollar // $
	Number // bare digits, used by repetition bounds
	DQuote // "  opens/closes a string literal, content raw-scanned
	SQuote // '  opens/closes a string literal, content raw-scanned
	Colon  // :  explicit metaname binding
)

var typeNames = map[int]string{
	Ident: "identifier", Arrow: "'<-'", Slash: "'/'", Star: "'*'", Plus: "'+'",
	Question: "'?'", LParen: "'('", RParen: "')'", LBrace: "'{'", RBrace: "'}'",
	LBracket: "'['", RBracket: "']'", Caret: "'^'", Amp: "'&'", Bang: "'!'",
	Comma: "','", Dot: "'.'", At: "'@'", Dollar: "'$'", Number: "number",
	DQuote: "'\"'", SQuote: "\"'\"", Colon: "':'",
}

func TypeName(t int) string {
	if n, ok := typeNames[t]; ok {
		return n
	}
	return fmt.Sprintf("token(%d)", t)
}

// tokenRe has one capturing group per structural token type, in the
// same order as the constants above, plus a leading alternative for
// insignificant lexemes (whitespace and # comments) that matches with
// no captured group.
var tokenRe = regexp.MustCompile(
	`\A(?:` +
		`[ \t\r\n]+|#[^\n]*` + // insignificant, group 0 (no capture)
		`|([A-Za-z_][A-Za-z0-9_]*)` + // 1: Ident
		`|(<-)` + // 2: Arrow
		`|(/)` + // 3: Slash
		`|(\*)` + // 4: Star
		`|(\+)` + // 5: Plus
		`|(\?)` + // 6: Question
		`|(\()` + // 7: LParen
		`|(\))` + // 8: RParen
		`|(\{)` + // 9: LBrace
		`|(\})` + // 10: RBrace
		`|(\[)` + // 11: LBracket
		`|(\])` + // 12: RBracket
		`|(\^)` + // 13: Caret
		`|(&)` + // 14: Amp
		`|(!)` + // 15: Bang
		`|(,)` + // 16: Comma
		`|(\.)` + // 17: Dot
		`|(@)` + // 18: At
		`|(\$)` + // 19: Dollar
		`|([0-9]+)` + // 20: Number
		`|(")` + // 21: DQuote
		`|(')` + // 22: SQuote
		`|(:)` + // 23: Colon
		`)`)

var groupTypes = []int{Ident, Arrow, Slash, Star, Plus, Question, LParen, RParen,
	LBrace, RBrace, LBracket, RBracket, Caret, Amp, Bang, Comma, Dot, At, Dollar, Number,
	DQuote, SQuote, Colon}

// Lexer is immutable and stateless; all mutable state lives in the
// source.Queue passed to Next.
type Lexer struct{}

func New() *Lexer { return &Lexer{} }

// Next fetches the next structural token, skipping whitespace and
// comments. Returns an EOF/EOI sentinel token, never an error, once the
// queue is drained. A lexical error is returned without consuming input.
func (l *Lexer) Next(q *source.Queue) (*Token, error) {
	for {
		content, pos := q.ContentPos()
		if len(content)-pos <= 0 {
			src := q.Source()
			if src == nil {
				return EoiToken(), nil
			}
			tok := EofToken(src)
			q.NextSource()
			return tok, nil
		}

		match := tokenRe.FindSubmatchIndex(content[pos:])
		if len(match) == 0 {
			r, _, _ := q.PeekRune()
			line, col := q.LineCol(pos)
			return nil, errors.New(errors.Lexical,
				fmt.Sprintf("unexpected character %q", r), q.Source().Name(), line, col)
		}

		whole := match[1]
		captured := false
		for gi, typ := range groupTypes {
			lo, hi := match[2+gi*2], match[2+gi*2+1]
			if lo < 0 {
				continue
			}
			captured = true
			startPos := pos + lo
			sp := source.NewPos(q.Source(), startPos)
			text := string(content[pos+lo : pos+hi])
			q.Skip(whole)
			return NewToken(typ, TypeName(typ), text, sp), nil
		}

		if !captured {
			// insignificant lexeme (whitespace/comment): consume and retry
			q.Skip(whole)
			continue
		}
	}
}
