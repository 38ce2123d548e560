package grammarparser_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"

	"github.com/polygen/polygen/ast"
	"github.com/polygen/polygen/grammarparser"
)

// roundTripOpts ignores ParseInfo (positions necessarily differ once
// the grammar has been reformatted by Unparse) and Grammar's unexported
// lazy rule index, which Parse never populates.
var roundTripOpts = []cmp.Option{
	cmpopts.IgnoreTypes(&ast.ParseInfo{}),
	cmpopts.IgnoreUnexported(ast.Grammar{}),
}

// assertRoundTrips is spec §8's parser round-trip property: for any
// grammar accepted by the parser, emitting it back to text and
// reparsing yields a structurally equal AST.
func assertRoundTrips(t *testing.T, src string) {
	t.Helper()

	first, bag := grammarparser.Parse("first.peg", []byte(src))
	require.False(t, bag.HasErrors(), "unexpected errors parsing %q: %s", src, bag.Error())

	unparsed := grammarparser.Unparse(first)

	second, bag := grammarparser.Parse("second.peg", []byte(unparsed))
	require.False(t, bag.HasErrors(), "unexpected errors reparsing unparsed text %q: %s", unparsed, bag.Error())

	if diff := cmp.Diff(first, second, roundTripOpts...); diff != "" {
		t.Errorf("round trip mismatch for %q\nunparsed as: %s\ndiff (-original +reparsed):\n%s", src, unparsed, diff)
	}
}

func TestRoundTripMinimalNumberGrammar(t *testing.T) {
	assertRoundTrips(t, `
		@entry Number
		Number <- Digit+ $int
		Digit  <- [0-9]
		$int { return join(digits) }
	`)
}

func TestRoundTripChoiceAndSubExpr(t *testing.T) {
	assertRoundTrips(t, `
		Primary <- MethodInvocation / FieldAccess / This
		MethodInvocation <- Primary '.' Ident ('(' Args? ')')
		FieldAccess <- Primary '.' Ident
		This <- "this"
		Ident <- [a-zA-Z_][a-zA-Z0-9_]*
		Args <- Ident (',' Ident)*
	`)
}

func TestRoundTripCutLookaheadAndMetaNames(t *testing.T) {
	assertRoundTrips(t, `
		@entry Escape
		Escape <- '\\' ^ 'n'
		Guarded <- &Digit !Letter value:Digit
		Digit  <- [0-9]
		Letter <- [a-zA-Z]
	`)
}

func TestRoundTripRepetitionBounds(t *testing.T) {
	assertRoundTrips(t, `
		Fixed    <- Digit{3}
		Bounded  <- Digit{2,4}
		Unbounded <- Digit{1,}
		Digit <- [0-9]
	`)
}

func TestRoundTripIgnoreDirectiveAndMetaRef(t *testing.T) {
	assertRoundTrips(t, `
		@entry Pair
		@ignore { Sep }
		Pair <- Number Sep Number $pair
		Number <- [0-9]+
		Sep <- ','
		$pair { return [number, number1] }
	`)
}

func TestRoundTripClassWithTrailingDash(t *testing.T) {
	assertRoundTrips(t, `Ident <- [0-9_-]+`)
}

func TestRoundTripBackendDefAndInclude(t *testing.T) {
	assertRoundTrips(t, `
		@include "common.peg"
		@backend.go { package parser }
		Greeting <- "hello"
	`)
}
