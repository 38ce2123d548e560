package modifier

import (
	"github.com/polygen/polygen/ast"
	"github.com/polygen/polygen/errors"
)

// sanityCheck is pass 1: Range ordering, Repetition bounds, literal
// escape correctness (already enforced by the grammar parser itself,
// which never produces an unresolved escape — see grammarparser's
// decodeEscape), and the absence of metanames on predicates.
func sanityCheck(g *ast.Grammar, bag *errors.Bag) {
	forEachNamedItem(g, func(rule *ast.Rule, alt *ast.Alt, it *ast.NamedItem) {
		if it.Lookahead != ast.NoLookahead && it.MetaNameExplicit {
			bag.AddPos(it.Info, errors.Semantic,
				"predicate item in rule %q may not carry a metaname", rule.ID)
		}

		if rep, ok := it.Item.(*ast.Repetition); ok {
			if rep.Lo < 0 || (rep.Hi >= 0 && rep.Hi < rep.Lo) {
				bag.AddPos(rep.Info, errors.Semantic,
					"invalid repetition bounds {%d,%d}", rep.Lo, rep.Hi)
			}
		}

		// underlying() so a reversed class survives any quantifier
		// wrapping it (e.g. "[z-a]+") instead of escaping this check and
		// surfacing later, less precisely, as "empty character class"
		// once mergeRanges silently drops it.
		if cls, ok := underlying(it.Item).(*ast.Class); ok {
			for _, r := range cls.Ranges {
				if !r.IsSingle() && r.Begin > r.End {
					bag.AddPos(cls.Info, errors.Semantic,
						"reversed character range %q-%q", r.Begin, r.End)
				}
			}
		}
	})
}
