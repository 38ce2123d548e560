package modifier

import (
	"fmt"
	"strings"

	"github.com/polygen/polygen/ast"
)

// deduceMetaNames is pass 6: every non-ignored item that the grammar
// author did not bind with an explicit `name:Primary` gets a metaname
// deduced from what it matches — the lowercased id of the rule an Ident
// refers to, numbered if that base repeats within the same Alt, or
// "_<n>" (an anonymous positional slot) for a terminal or a reference
// to a synthetic rule, since neither has an author-chosen id worth
// surfacing.
func deduceMetaNames(g *ast.Grammar) {
	g.Index()
	forEachNamedItemByAlt(g, func(alt *ast.Alt) {
		baseCounts := map[string]int{}
		anon := 0
		for _, it := range alt.Items {
			if it.Ignore() || it.MetaName != "" {
				continue
			}

			base, isAnon := metaBase(underlying(it.Item), g)
			if isAnon {
				anon++
				it.MetaName = fmt.Sprintf("_%d", anon)
				continue
			}

			baseCounts[base]++
			if n := baseCounts[base]; n == 1 {
				it.MetaName = base
			} else {
				it.MetaName = fmt.Sprintf("%s%d", base, n-1)
			}
		}
	})
}

func forEachNamedItemByAlt(g *ast.Grammar, fn func(alt *ast.Alt)) {
	for _, rule := range g.Rules {
		if rule.Expr == nil {
			continue
		}
		for _, alt := range rule.Expr.Alts {
			fn(alt)
		}
	}
}

// underlying strips any quantifier wrapper to find the primary the
// quantifier applies to.
func underlying(item ast.Item) ast.Item {
	for {
		inner, ok := innerItem(item)
		if !ok {
			return item
		}
		item = inner
	}
}

func metaBase(item ast.Item, g *ast.Grammar) (base string, anonymous bool) {
	id, ok := item.(*ast.Ident)
	if !ok {
		return "", true
	}
	rule := g.RuleByID(id.Name)
	if rule != nil && rule.Synthetic {
		return "", true
	}
	return strings.ToLower(id.Name), false
}
