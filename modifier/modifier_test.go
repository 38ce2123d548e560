package modifier_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polygen/polygen/ast"
	"github.com/polygen/polygen/modifier"
	"github.com/polygen/polygen/preprocessor"
)

type fakeFS map[string]string

func (fs fakeFS) ReadFile(path string) ([]byte, error) {
	if content, ok := fs[path]; ok {
		return []byte(content), nil
	}
	return nil, errNotFound(path)
}

type errNotFound string

func (e errNotFound) Error() string { return "no such file: " + string(e) }

func run(t *testing.T, src string) *ast.Grammar {
	t.Helper()
	fs := fakeFS{"g.peg": src}
	g, bag := preprocessor.Process(fs, "g.peg", nil, "")
	require.False(t, bag.HasErrors(), bag.Error())
	g, bag = modifier.Run(g, modifier.DefaultOptions())
	require.False(t, bag.HasErrors(), bag.Error())
	return g
}

func firstAlt(t *testing.T, g *ast.Grammar, ruleID string) *ast.Alt {
	t.Helper()
	rule := g.RuleByID(ruleID)
	require.NotNil(t, rule, "rule %q not found", ruleID)
	require.NotEmpty(t, rule.Expr.Alts)
	return rule.Expr.Alts[0]
}

func TestMetaNameDeducedFromQuantifiedIdent(t *testing.T) {
	g := run(t, `
		@entry Number
		Number <- Digit+
		Digit <- [0-9]
	`)

	alt := firstAlt(t, g, "Number")
	require.Len(t, alt.Items, 1)
	assert.Equal(t, "digit", alt.Items[0].MetaName)
}

func TestMetaNameDuplicatesGetSuffixed(t *testing.T) {
	g := run(t, `
		@entry Pair
		Pair <- Digit Digit
		Digit <- [0-9]
	`)

	alt := firstAlt(t, g, "Pair")
	require.Len(t, alt.Items, 2)
	assert.Equal(t, "digit", alt.Items[0].MetaName)
	assert.Equal(t, "digit1", alt.Items[1].MetaName)
}

func TestIndirectLeftRecursionMarksWholeCycle(t *testing.T) {
	g := run(t, `
		@entry Expr
		Expr <- Term
		Term <- Expr '+' Factor / Factor
		Factor <- '1'
	`)

	expr, term, factor := g.RuleByID("Expr"), g.RuleByID("Term"), g.RuleByID("Factor")
	require.NotNil(t, expr)
	require.NotNil(t, term)
	require.NotNil(t, factor)

	assert.True(t, expr.LeftRecursive)
	assert.True(t, term.LeftRecursive)
	assert.False(t, factor.LeftRecursive)

	heads := 0
	if expr.HeadRule {
		heads++
	}
	if term.HeadRule {
		heads++
	}
	assert.Equal(t, 1, heads, "exactly one rule in the cycle should be the head rule")

	growAlt := term.Expr.Alts[0]
	seedAlt := term.Expr.Alts[1]
	assert.True(t, growAlt.Grower, "Expr '+' Factor grows through the cycle")
	assert.False(t, seedAlt.Grower, "Factor alone seeds the recursion")
}

func TestCutMaskingIsReportedAsUnreachable(t *testing.T) {
	fs := fakeFS{"g.peg": `
		@entry Char
		Char <- '\\' ^ 'n' / '\\' 'r'
	`}
	g, bag := preprocessor.Process(fs, "g.peg", nil, "")
	require.False(t, bag.HasErrors(), bag.Error())

	_, bag = modifier.Run(g, modifier.DefaultOptions())
	require.True(t, bag.HasErrors())
	assert.Contains(t, bag.Error(), "unreachable alternative after cut")
}

func TestIgnoredRuleDropsFromReturnTuple(t *testing.T) {
	g := run(t, `
		@entry Program
		@ignore { Whitespace }
		Whitespace <- ' '+
		Program <- Whitespace Number Whitespace Number
		Number <- [0-9]+
	`)

	alt := firstAlt(t, g, "Program")
	assert.Equal(t, []string{"number", "number1"}, alt.ReturnTuple())
}

func TestClassRangesAreMergedAndSorted(t *testing.T) {
	g := run(t, `
		@entry Foo
		Foo <- [a-cb-d]
	`)

	alt := firstAlt(t, g, "Foo")
	require.Len(t, alt.Items, 1)
	class, ok := alt.Items[0].Item.(*ast.Class)
	require.True(t, ok)
	assert.Equal(t, []ast.Range{{Begin: 'a', End: 'd'}}, class.Ranges)
}

func TestUndefinedRuleReferenceIsReported(t *testing.T) {
	fs := fakeFS{"g.peg": `
		@entry Program
		Program <- Missing
	`}
	g, bag := preprocessor.Process(fs, "g.peg", nil, "")
	require.False(t, bag.HasErrors(), bag.Error())

	_, bag = modifier.Run(g, modifier.DefaultOptions())
	require.True(t, bag.HasErrors())
	assert.Contains(t, bag.Error(), "undefined rule")
}

func TestMissingEntryIsReported(t *testing.T) {
	fs := fakeFS{"g.peg": `Program <- 'x'`}
	g, bag := preprocessor.Process(fs, "g.peg", nil, "")
	require.False(t, bag.HasErrors(), bag.Error())

	_, bag = modifier.Run(g, modifier.DefaultOptions())
	require.True(t, bag.HasErrors())
	assert.Contains(t, bag.Error(), "no entry rule")
}

func TestUnreachableRuleIsReported(t *testing.T) {
	fs := fakeFS{"g.peg": `
		@entry Program
		Program <- 'x'
		Orphan <- 'y'
	`}
	g, bag := preprocessor.Process(fs, "g.peg", nil, "")
	require.False(t, bag.HasErrors(), bag.Error())

	_, bag = modifier.Run(g, modifier.DefaultOptions())
	require.True(t, bag.HasErrors())
	assert.Contains(t, bag.Error(), `"Orphan" is unreachable`)
}

func TestSubExprIsDesugaredIntoSyntheticRule(t *testing.T) {
	g := run(t, `
		@entry List
		List <- ('a' 'b')+
	`)

	rule := g.RuleByID("List")
	require.NotNil(t, rule)
	alt := rule.Expr.Alts[0]
	require.Len(t, alt.Items, 1)

	oneOrMore, ok := alt.Items[0].Item.(*ast.OneOrMore)
	require.True(t, ok)
	ref, ok := oneOrMore.Item.(*ast.Ident)
	require.True(t, ok)

	synth := g.RuleByID(ref.Name)
	require.NotNil(t, synth)
	assert.True(t, synth.Synthetic)
	assert.Equal(t, "List__GEN_1", synth.ID)
}

func TestStrictAnyCharCollectsGrammarAlphabetIntoSyntheticClass(t *testing.T) {
	fs := fakeFS{"g.peg": `
		@entry Line
		Line <- 'a' . 'b'
	`}
	g, bag := preprocessor.Process(fs, "g.peg", nil, "")
	require.False(t, bag.HasErrors(), bag.Error())

	opts := modifier.DefaultOptions()
	opts.AnyCharStrict = true
	g, bag = modifier.Run(g, opts)
	require.False(t, bag.HasErrors(), bag.Error())

	alt := firstAlt(t, g, "Line")
	require.Len(t, alt.Items, 3)

	ref, ok := alt.Items[1].Item.(*ast.Ident)
	require.True(t, ok, "strict '.' should be replaced by a reference, got %T", alt.Items[1].Item)
	assert.Equal(t, "AnyChar__GEN", ref.Name)

	gen := g.RuleByID("AnyChar__GEN")
	require.NotNil(t, gen)
	assert.True(t, gen.Synthetic)
	class, ok := gen.Expr.Alts[0].Items[0].Item.(*ast.Class)
	require.True(t, ok)
	assert.Equal(t, []ast.Range{{Begin: 'a', End: 'b'}}, class.Ranges)
}

func TestPermissiveAnyCharLeavesWildcardAlone(t *testing.T) {
	g := run(t, `
		@entry Line
		Line <- 'a' . 'b'
	`)

	alt := firstAlt(t, g, "Line")
	require.Len(t, alt.Items, 3)
	_, ok := alt.Items[1].Item.(*ast.AnyChar)
	assert.True(t, ok)
	assert.Nil(t, g.RuleByID("AnyChar__GEN"))
}
