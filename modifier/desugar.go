package modifier

import "github.com/polygen/polygen/ast"

// desugar is pass 5: a parenthesised sub-expression — bare, or wrapped
// in a single quantifier — is hoisted into a fresh synthetic Rule named
// "<ParentRule>__GEN_<n>" via the grammar-scoped Counter, and replaced
// in place by an Ident referencing it (the quantifier, if any, now
// wraps that Ident instead of the SubExpr). The grammar's own syntax
// allows only one quantifier layer per Part, so a quantifier ever
// wrapping a composite can only mean a quantifier wrapping a SubExpr —
// there is no other shape to desugar here.
func desugar(g *ast.Grammar, counter *Counter) {
	for _, rule := range g.Rules {
		if rule.Expr == nil {
			continue
		}
		desugarExpr(rule.Expr, rule.ID, g, counter)
	}
}

func desugarExpr(expr *ast.Expr, parentID string, g *ast.Grammar, counter *Counter) {
	for _, alt := range expr.Alts {
		for _, it := range alt.Items {
			it.Item = desugarItem(it.Item, parentID, g, counter)
		}
	}
}

func desugarItem(item ast.Item, parentID string, g *ast.Grammar, counter *Counter) ast.Item {
	switch v := item.(type) {
	case *ast.SubExpr:
		return promote(v.Expr, parentID, g, counter, nil)

	case *ast.ZeroOrOne:
		if sub, ok := v.Item.(*ast.SubExpr); ok {
			info := v.Info
			return promote(sub.Expr, parentID, g, counter, func(ref ast.Item) ast.Item {
				return &ast.ZeroOrOne{Item: ref, Info: info}
			})
		}

	case *ast.ZeroOrMore:
		if sub, ok := v.Item.(*ast.SubExpr); ok {
			info := v.Info
			return promote(sub.Expr, parentID, g, counter, func(ref ast.Item) ast.Item {
				return &ast.ZeroOrMore{Item: ref, Info: info}
			})
		}

	case *ast.OneOrMore:
		if sub, ok := v.Item.(*ast.SubExpr); ok {
			info := v.Info
			return promote(sub.Expr, parentID, g, counter, func(ref ast.Item) ast.Item {
				return &ast.OneOrMore{Item: ref, Info: info}
			})
		}

	case *ast.Repetition:
		if sub, ok := v.Item.(*ast.SubExpr); ok {
			lo, hi, info := v.Lo, v.Hi, v.Info
			return promote(sub.Expr, parentID, g, counter, func(ref ast.Item) ast.Item {
				return &ast.Repetition{Item: ref, Lo: lo, Hi: hi, Info: info}
			})
		}
	}
	return item
}

// promote hoists expr into a new synthetic rule rooted at parentID,
// recursively desugaring its own body first (so a nested SubExpr gets
// its own synthetic rule parented on the new rule, not the outer one),
// appends the rule to g, and returns an Ident referencing it, optionally
// wrapped by wrap.
func promote(expr *ast.Expr, parentID string, g *ast.Grammar, counter *Counter, wrap func(ast.Item) ast.Item) ast.Item {
	name := counter.Next(parentID)
	desugarExpr(expr, name, g, counter)

	rule := &ast.Rule{ID: name, Expr: expr, Synthetic: true, Info: expr.Info}
	g.Rules = append(g.Rules, rule)

	ref := ast.Item(&ast.Ident{Name: name, Info: expr.Info})
	if wrap != nil {
		return wrap(ref)
	}
	return ref
}
