package grammarparser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polygen/polygen/ast"
	"github.com/polygen/polygen/grammarparser"
)

func parse(t *testing.T, text string) *ast.RawGrammar {
	t.Helper()
	g, bag := grammarparser.Parse("t.peg", []byte(text))
	require.False(t, bag.HasErrors(), "unexpected errors: %s", bag.Error())
	require.NotNil(t, g)
	return g
}

func rulesOf(g *ast.RawGrammar) []*ast.Rule {
	var out []*ast.Rule
	for _, e := range g.Entities {
		if r, ok := e.(*ast.Rule); ok {
			out = append(out, r)
		}
	}
	return out
}

func TestMinimalNumberGrammar(t *testing.T) {
	g := parse(t, `Number <- [0-9]+`)
	rules := rulesOf(g)
	require.Len(t, rules, 1)
	assert.Equal(t, "Number", rules[0].ID)

	expr := rules[0].Expr
	require.Len(t, expr.Alts, 1)
	require.Len(t, expr.Alts[0].Items, 1)

	rep, ok := expr.Alts[0].Items[0].Item.(*ast.OneOrMore)
	require.True(t, ok)
	class, ok := rep.Item.(*ast.Class)
	require.True(t, ok)
	require.Len(t, class.Ranges, 1)
	assert.Equal(t, rune('0'), class.Ranges[0].Begin)
	assert.Equal(t, rune('9'), class.Ranges[0].End)
}

func TestClassTrailingDashIsLiteralMember(t *testing.T) {
	g := parse(t, `Ident <- [0-9_-]+`)
	rules := rulesOf(g)
	rep := rules[0].Expr.Alts[0].Items[0].Item.(*ast.OneOrMore)
	class := rep.Item.(*ast.Class)

	require.Len(t, class.Ranges, 3)
	assert.Equal(t, ast.Range{Begin: '0', End: '9'}, class.Ranges[0])
	assert.Equal(t, ast.Range{Begin: '_', End: -1}, class.Ranges[1])
	assert.Equal(t, ast.Range{Begin: '-', End: -1}, class.Ranges[2])
	assert.True(t, class.Ranges[1].IsSingle())
}

func TestIndirectLeftRecursionGrammarParses(t *testing.T) {
	g := parse(t, `
		A <- B 'x' / 'y'
		B <- A 'z' / 'w'
	`)
	rules := rulesOf(g)
	require.Len(t, rules, 2)
	assert.Equal(t, "A", rules[0].ID)
	assert.Equal(t, "B", rules[1].ID)
	require.Len(t, rules[0].Expr.Alts, 2)

	ident, ok := rules[0].Expr.Alts[0].Items[0].Item.(*ast.Ident)
	require.True(t, ok)
	assert.Equal(t, "B", ident.Name)
}

func TestCutMasksSiblingAlternative(t *testing.T) {
	g := parse(t, `Char <- '\\' ^ 'n' / '\\' 'r'`)
	rules := rulesOf(g)
	alt := rules[0].Expr.Alts[0]
	require.Len(t, alt.Items, 2)
	assert.False(t, alt.Items[0].Cut)
	assert.True(t, alt.Items[1].Cut)
}

func TestIgnorePropagationDirectiveSyntax(t *testing.T) {
	g := parse(t, `
		@ignore { Whitespace, Comment }
		Whitespace <- ' '+
		Comment <- '#' .*
	`)
	var ign *ast.IgnoreDirective
	for _, e := range g.Entities {
		if d, ok := e.(*ast.IgnoreDirective); ok {
			ign = d
		}
	}
	require.NotNil(t, ign)
	assert.Equal(t, []string{"Whitespace", "Comment"}, ign.IDs)
}

func TestToplevelQuerySyntax(t *testing.T) {
	g := parse(t, `
		@toplevel {
			Program <- Statement*
		}
	`)
	var query *ast.ToplevelQuery
	for _, e := range g.Entities {
		if q, ok := e.(*ast.ToplevelQuery); ok {
			query = q
		}
	}
	require.NotNil(t, query)
	require.Len(t, query.Sub.Rules, 1)
	assert.Equal(t, "Program", query.Sub.Rules[0].ID)
}

func TestBareEntryBindsToFollowingRule(t *testing.T) {
	g := parse(t, `
		@entry
		Number <- [0-9]+
	`)
	var entry *ast.EntryDirective
	var rule *ast.Rule
	for _, e := range g.Entities {
		switch v := e.(type) {
		case *ast.EntryDirective:
			entry = v
		case *ast.Rule:
			rule = v
		}
	}
	require.NotNil(t, entry)
	require.NotNil(t, rule)
	assert.Equal(t, "Number", entry.ID)
	assert.Equal(t, "Number", rule.ID)
}

func TestExplicitMetaNameBinding(t *testing.T) {
	g := parse(t, `Pair <- key:Ident '=' value:Ident`)
	items := rulesOf(g)[0].Expr.Alts[0].Items
	require.Len(t, items, 3)
	assert.Equal(t, "key", items[0].MetaName)
	assert.Equal(t, "", items[1].MetaName)
	assert.Equal(t, "value", items[2].MetaName)
}

func TestBackendDefAndQueryAreDistinct(t *testing.T) {
	g := parse(t, `
		@backend.go { func parse() {\} }
		@backend(go) {
			Entry <- 'x'
		}
	`)
	var def *ast.BackendDef
	var query *ast.BackendQuery
	for _, e := range g.Entities {
		switch v := e.(type) {
		case *ast.BackendDef:
			def = v
		case *ast.BackendQuery:
			query = v
		}
	}
	require.NotNil(t, def)
	require.NotNil(t, query)
	assert.Equal(t, "go", def.Name)
	assert.Equal(t, " func parse() {} ", def.Body)
	assert.Equal(t, "go", query.Name)
	require.Len(t, query.Sub.Rules, 1)
}

func TestNestedToplevelQueryIsRejected(t *testing.T) {
	_, bag := grammarparser.Parse("t.peg", []byte(`
		@toplevel {
			@toplevel {
				Inner <- 'x'
			}
			Outer <- 'y'
		}
	`))
	require.True(t, bag.HasErrors())
}

func TestQuantifiersAndRepetition(t *testing.T) {
	g := parse(t, `R <- 'a'? 'b'* 'c'+ 'd'{2} 'e'{1,3} 'f'{4,}`)
	items := rulesOf(g)[0].Expr.Alts[0].Items
	require.Len(t, items, 6)

	_, ok := items[0].Item.(*ast.ZeroOrOne)
	assert.True(t, ok)
	_, ok = items[1].Item.(*ast.ZeroOrMore)
	assert.True(t, ok)
	_, ok = items[2].Item.(*ast.OneOrMore)
	assert.True(t, ok)

	rep, ok := items[3].Item.(*ast.Repetition)
	require.True(t, ok)
	assert.Equal(t, 2, rep.Lo)
	assert.Equal(t, 2, rep.Hi)

	rep = items[4].Item.(*ast.Repetition)
	assert.Equal(t, 1, rep.Lo)
	assert.Equal(t, 3, rep.Hi)

	rep = items[5].Item.(*ast.Repetition)
	assert.Equal(t, 4, rep.Lo)
	assert.Equal(t, -1, rep.Hi)
}

func TestLookaheadPredicates(t *testing.T) {
	g := parse(t, `R <- &'a' !'b' 'c'`)
	items := rulesOf(g)[0].Expr.Alts[0].Items
	require.Len(t, items, 3)
	assert.Equal(t, ast.AndLookahead, items[0].Lookahead)
	assert.Equal(t, ast.NotLookahead, items[1].Lookahead)
	assert.Equal(t, ast.NoLookahead, items[2].Lookahead)
}

func TestInlineMetaRuleAttachesToAlt(t *testing.T) {
	g := parse(t, `Sum <- left:Number '+' right:Number $ { return left + right }`)
	alt := rulesOf(g)[0].Expr.Alts[0]
	require.NotNil(t, alt.Meta)
	assert.Equal(t, " return left + right ", alt.Meta.Body)
}

func TestMetaRuleReferenceAttachesToAlt(t *testing.T) {
	g := parse(t, `
		$sum { return left + right }
		Sum <- left:Number '+' right:Number $sum
	`)
	var rule *ast.Rule
	for _, e := range g.Entities {
		if r, ok := e.(*ast.Rule); ok {
			rule = r
		}
	}
	require.NotNil(t, rule)
	require.NotNil(t, rule.Expr.Alts[0].MetaRef)
	assert.Equal(t, "sum", rule.Expr.Alts[0].MetaRef.ID)
}

func TestIncludeDirectiveSyntax(t *testing.T) {
	g := parse(t, `@include "common.peg"`)
	var inc *ast.IncludeDirective
	for _, e := range g.Entities {
		if d, ok := e.(*ast.IncludeDirective); ok {
			inc = d
		}
	}
	require.NotNil(t, inc)
	assert.Equal(t, "common.peg", inc.Path)
}

func TestSubExpressionGrouping(t *testing.T) {
	g := parse(t, `R <- ('a' 'b')+ 'c'`)
	items := rulesOf(g)[0].Expr.Alts[0].Items
	require.Len(t, items, 2)

	rep, ok := items[0].Item.(*ast.OneOrMore)
	require.True(t, ok)
	sub, ok := rep.Item.(*ast.SubExpr)
	require.True(t, ok)
	require.Len(t, sub.Expr.Alts, 1)
	require.Len(t, sub.Expr.Alts[0].Items, 2)
}

func TestAnyCharAndStringEscape(t *testing.T) {
	g := parse(t, `R <- . "\n\tA"`)
	items := rulesOf(g)[0].Expr.Alts[0].Items
	_, ok := items[0].Item.(*ast.AnyChar)
	assert.True(t, ok)

	lit, ok := items[1].Item.(*ast.StringLit)
	require.True(t, ok)
	assert.Equal(t, []rune{'\n', '\t', 'A'}, lit.Chars)
}

func TestUnexpectedTokenIsSyntaxError(t *testing.T) {
	_, bag := grammarparser.Parse("t.peg", []byte(`R <- 'a' / `))
	assert.True(t, bag.HasErrors())
}
