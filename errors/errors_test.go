package errors_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/polygen/polygen/errors"
)

type fakePos struct {
	name      string
	line, col int
}

func (f fakePos) SourceName() string { return f.name }
func (f fakePos) Line() int          { return f.line }
func (f fakePos) Col() int           { return f.col }

func TestFormatPos(t *testing.T) {
	e := errors.FormatPos(fakePos{"grammar.peg", 3, 5}, errors.Semantic, "unresolved reference %q", "Foo")
	assert.Equal(t, "grammar.peg:3:5: semantic error: unresolved reference \"Foo\"", e.Error())
}

func TestBagHasErrors(t *testing.T) {
	bag := errors.NewBag()
	assert.False(t, bag.HasErrors())

	bag.Addf(errors.Syntax, "unexpected token")
	assert.True(t, bag.HasErrors())
	assert.Len(t, bag.Errors(), 1)
}

func TestBagMerge(t *testing.T) {
	a := errors.NewBag()
	a.Addf(errors.Lexical, "bad char")
	b := errors.NewBag()
	b.Addf(errors.Include, "cycle")

	a.Merge(b)
	assert.Len(t, a.Errors(), 2)
}
