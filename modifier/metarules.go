package modifier

import (
	"github.com/polygen/polygen/ast"
	"github.com/polygen/polygen/errors"
)

// resolveMetaRules is pass 2: pair each Alt's MetaRef with the named
// MetaRule it refers to (an inline `$ { body }` already carries its own
// anonymous MetaRule and needs no lookup). Reports an undefined
// reference or an unused named metarule.
func resolveMetaRules(g *ast.Grammar, bag *errors.Bag) {
	for _, rule := range g.Rules {
		if rule.Expr == nil {
			continue
		}
		for _, alt := range rule.Expr.Alts {
			if alt.MetaRef == nil {
				continue
			}
			target := g.MetaRuleByID(alt.MetaRef.ID)
			if target == nil {
				bag.AddPos(alt.MetaRef.Info, errors.Semantic,
					"undefined metarule %q", alt.MetaRef.ID)
				continue
			}
			target.Used++
			alt.Meta = target
		}
	}

	for _, m := range g.MetaRules {
		if m.ID != "" && m.Used == 0 {
			bag.AddPos(m.Info, errors.Semantic, "unused metarule %q", m.ID)
		}
	}
}
