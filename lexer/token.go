package lexer

import (
	"github.com/polygen/polygen/source"
)

// Token is a single lexeme with its origin.
type Token struct {
	typ       int
	typeName  string
	text      string
	src       *source.Source
	line, col int
}

func (t *Token) Type() int           { return t.typ }
func (t *Token) TypeName() string    { return t.typeName }
func (t *Token) Text() string        { return t.text }
func (t *Token) Source() *source.Source { return t.src }
func (t *Token) Line() int           { return t.line }
func (t *Token) Col() int            { return t.col }

func (t *Token) SourceName() string {
	if t.src == nil {
		return ""
	}
	return t.src.Name()
}

func NewToken(typ int, typeName, text string, pos source.Pos) *Token {
	return &Token{typ, typeName, text, pos.Source(), pos.Line(), pos.Col()}
}

const (
	EofTokenType    = -2
	EoiTokenType    = -3
	ErrorTokenType  = -4
	EofTokenName    = "-end-of-file-"
	EoiTokenName    = "-end-of-input-"
	ErrorTokenName  = "-error-"
)

func EofToken(s *source.Source) *Token {
	line, col := 0, 0
	if s != nil {
		line, col = s.LineCol(s.Len())
	}
	return &Token{typ: EofTokenType, typeName: EofTokenName, src: s, line: line, col: col}
}

func EoiToken() *Token {
	return &Token{typ: EoiTokenType, typeName: EoiTokenName}
}
