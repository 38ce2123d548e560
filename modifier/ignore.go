package modifier

import "github.com/polygen/polygen/ast"

// applyIgnore is pass 7: a reference to a rule the grammar marked
// `@ignore` drops out of its Alt's return tuple, unless the author
// overrode that with an explicit `name:Primary` binding — an explicit
// binding is a deliberate request to keep the value, and wins.
func applyIgnore(g *ast.Grammar) {
	g.Index()
	forEachNamedItem(g, func(rule *ast.Rule, alt *ast.Alt, it *ast.NamedItem) {
		if it.MetaNameExplicit {
			return
		}
		id, ok := underlying(it.Item).(*ast.Ident)
		if !ok {
			return
		}
		ref := g.RuleByID(id.Name)
		if ref != nil && ref.Ignore {
			it.MetaName = "_"
		}
	})
}
