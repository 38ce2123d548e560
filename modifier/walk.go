package modifier

import "github.com/polygen/polygen/ast"

// forEachNamedItem visits every NamedItem in every Alt of every Rule,
// in source order, recursing into any Alts nested inside a parenthesised
// sub-expression so early passes (sanity checking) see violations no
// matter how deeply they're nested. Passes that run after desugaring
// never have nesting left to recurse into, so the recursion is a no-op
// for them. fn may mutate the NamedItem in place.
func forEachNamedItem(g *ast.Grammar, fn func(rule *ast.Rule, alt *ast.Alt, it *ast.NamedItem)) {
	for _, rule := range g.Rules {
		if rule.Expr == nil {
			continue
		}
		forEachNamedItemInExpr(rule, rule.Expr, fn)
	}
}

func forEachNamedItemInExpr(rule *ast.Rule, expr *ast.Expr, fn func(rule *ast.Rule, alt *ast.Alt, it *ast.NamedItem)) {
	for _, alt := range expr.Alts {
		for _, it := range alt.Items {
			fn(rule, alt, it)
			forEachNestedExpr(it.Item, func(nested *ast.Expr) {
				forEachNamedItemInExpr(rule, nested, fn)
			})
		}
	}
}

func forEachNestedExpr(item ast.Item, fn func(*ast.Expr)) {
	switch v := item.(type) {
	case *ast.SubExpr:
		fn(v.Expr)
	case *ast.ZeroOrOne:
		forEachNestedExpr(v.Item, fn)
	case *ast.ZeroOrMore:
		forEachNestedExpr(v.Item, fn)
	case *ast.OneOrMore:
		forEachNestedExpr(v.Item, fn)
	case *ast.Repetition:
		forEachNestedExpr(v.Item, fn)
	}
}

// walkItems visits every Item reachable from every NamedItem, including
// recursively into SubExpr/quantifier wrappers, replacing each with
// fn's return value. Used by early passes that still see SubExpr nodes
// (desugar has not necessarily run yet).
func walkItems(g *ast.Grammar, fn func(ast.Item) ast.Item) {
	forEachNamedItem(g, func(_ *ast.Rule, _ *ast.Alt, it *ast.NamedItem) {
		it.Item = walkItem(it.Item, fn)
	})
}

func walkItem(item ast.Item, fn func(ast.Item) ast.Item) ast.Item {
	switch v := item.(type) {
	case *ast.SubExpr:
		for _, alt := range v.Expr.Alts {
			for _, it := range alt.Items {
				it.Item = walkItem(it.Item, fn)
			}
		}
	case *ast.ZeroOrOne:
		v.Item = walkItem(v.Item, fn)
	case *ast.ZeroOrMore:
		v.Item = walkItem(v.Item, fn)
	case *ast.OneOrMore:
		v.Item = walkItem(v.Item, fn)
	case *ast.Repetition:
		v.Item = walkItem(v.Item, fn)
	}
	return fn(item)
}

// innerItem returns the item a quantifier wraps, or nil if item is not
// a quantifier.
func innerItem(item ast.Item) (ast.Item, bool) {
	switch v := item.(type) {
	case *ast.ZeroOrOne:
		return v.Item, true
	case *ast.ZeroOrMore:
		return v.Item, true
	case *ast.OneOrMore:
		return v.Item, true
	case *ast.Repetition:
		return v.Item, true
	}
	return nil, false
}

func setInnerItem(item ast.Item, inner ast.Item) {
	switch v := item.(type) {
	case *ast.ZeroOrOne:
		v.Item = inner
	case *ast.ZeroOrMore:
		v.Item = inner
	case *ast.OneOrMore:
		v.Item = inner
	case *ast.Repetition:
		v.Item = inner
	}
}
