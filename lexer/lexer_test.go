package lexer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polygen/polygen/lexer"
	"github.com/polygen/polygen/source"
)

func scan(t *testing.T, text string) []*lexer.Token {
	t.Helper()
	q := source.NewQueue()
	q.Append(source.New("t.peg", []byte(text)))
	l := lexer.New()

	var toks []*lexer.Token
	for {
		tok, err := l.Next(q)
		require.NoError(t, err)
		if tok.Type() == lexer.EofTokenType || tok.Type() == lexer.EoiTokenType {
			break
		}
		toks = append(toks, tok)
	}
	return toks
}

func TestSkipsWhitespaceAndComments(t *testing.T) {
	toks := scan(t, "  Foo   # a comment\n  <-  ")
	require.Len(t, toks, 2)
	assert.Equal(t, lexer.Ident, toks[0].Type())
	assert.Equal(t, "Foo", toks[0].Text())
	assert.Equal(t, lexer.Arrow, toks[1].Type())
}

func TestStructuralPunctuation(t *testing.T) {
	toks := scan(t, "^&!{},.@$:()[]*+?/")
	wantTypes := []int{
		lexer.Caret, lexer.Amp, lexer.Bang, lexer.LBrace, lexer.RBrace, lexer.Comma,
		lexer.Dot, lexer.At, lexer.Dollar, lexer.Colon, lexer.LParen, lexer.RParen,
		lexer.LBracket, lexer.RBracket, lexer.Star, lexer.Plus, lexer.Question, lexer.Slash,
	}
	require.Len(t, toks, len(wantTypes))
	for i, want := range wantTypes {
		assert.Equal(t, want, toks[i].Type(), "token %d", i)
	}
}

func TestUnexpectedCharacterIsLexicalError(t *testing.T) {
	q := source.NewQueue()
	q.Append(source.New("t.peg", []byte("%")))
	l := lexer.New()

	_, err := l.Next(q)
	require.Error(t, err)
}
