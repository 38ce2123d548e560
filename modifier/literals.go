package modifier

import "github.com/polygen/polygen/ast"

// expandLiterals is pass 3: a multi-char String becomes the sequence of
// its Chars within the containing Alt; a single-char String becomes a
// Char. A literal wrapped in a lookahead predicate is left intact — a
// predicate probes the whole literal at one position without consuming
// it, which exploding into per-char predicates would not preserve, so
// the emitter matches a predicate-wrapped StringLit as one unit.
func expandLiterals(g *ast.Grammar) {
	for _, rule := range g.Rules {
		if rule.Expr == nil {
			continue
		}
		expandExprLiterals(rule.Expr)
	}
}

// expandExprLiterals recurses into sub-expressions before exploding
// this level's own items, so a literal nested inside `(...)` is already
// in CharLit form by the time the desugaring pass hoists that
// sub-expression into its own rule.
func expandExprLiterals(expr *ast.Expr) {
	for _, alt := range expr.Alts {
		for _, it := range alt.Items {
			expandNestedLiterals(it.Item)
		}
		alt.Items = expandAltLiterals(alt.Items)
	}
}

func expandNestedLiterals(item ast.Item) {
	switch v := item.(type) {
	case *ast.SubExpr:
		expandExprLiterals(v.Expr)
	case *ast.ZeroOrOne:
		expandNestedLiterals(v.Item)
	case *ast.ZeroOrMore:
		expandNestedLiterals(v.Item)
	case *ast.OneOrMore:
		expandNestedLiterals(v.Item)
	case *ast.Repetition:
		expandNestedLiterals(v.Item)
	}
}

func expandAltLiterals(items []*ast.NamedItem) []*ast.NamedItem {
	var out []*ast.NamedItem
	for _, it := range items {
		lit, ok := it.Item.(*ast.StringLit)
		if !ok || it.Lookahead != ast.NoLookahead || len(lit.Chars) == 0 {
			out = append(out, it)
			continue
		}

		if len(lit.Chars) == 1 {
			it.Item = &ast.CharLit{Value: lit.Chars[0], Info: lit.Info}
			out = append(out, it)
			continue
		}

		for i, c := range lit.Chars {
			if i == 0 {
				it.Item = &ast.CharLit{Value: c, Info: lit.Info}
				out = append(out, it)
				continue
			}
			// Later chars of an exploded literal carry none of the
			// original item's own metaname/cut; the first char already
			// claimed that role for the whole literal.
			out = append(out, &ast.NamedItem{
				MetaName: "_", Item: &ast.CharLit{Value: c, Info: lit.Info}, Info: lit.Info,
			})
		}
	}
	return out
}
