package modifier

import (
	"github.com/polygen/polygen/ast"
	"github.com/polygen/polygen/errors"
)

// resolveIdentifiers is pass 8: every Ident left standing after
// desugaring must name a rule that exists. Synthetic rules created by
// pass 5 are always resolvable by construction; this pass catches
// references the grammar's author wrote to an id that was never
// defined.
func resolveIdentifiers(g *ast.Grammar, bag *errors.Bag) {
	g.Index()
	forEachNamedItem(g, func(rule *ast.Rule, alt *ast.Alt, it *ast.NamedItem) {
		id, ok := underlying(it.Item).(*ast.Ident)
		if !ok {
			return
		}
		if g.RuleByID(id.Name) == nil {
			bag.AddPos(id.Info, errors.Semantic,
				"undefined rule %q referenced from %q", id.Name, rule.ID)
		}
	})
}
