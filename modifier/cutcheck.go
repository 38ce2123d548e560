package modifier

import (
	"fmt"

	"github.com/polygen/polygen/ast"
	"github.com/polygen/polygen/errors"
)

// checkCutPlacement is pass 11: once an Alt commits via `^`, no later
// alternative that starts with the same shape of items up to the cut
// point can ever be tried — ordered choice already picked the cut
// alternative and won't backtrack into it. "Same shape" compares item
// *types* position by position, not literal values: two distinct
// single-char literals are still the same shape (a CharLit next to a
// CharLit), because after pass 3's literal expansion that's exactly the
// granularity at which backtracking would have distinguished them, and
// the original two alternatives read the same by a human before
// expansion too.
func checkCutPlacement(g *ast.Grammar, bag *errors.Bag) {
	for _, rule := range g.Rules {
		if rule.Expr == nil {
			continue
		}
		alts := rule.Expr.Alts
		for i, alt := range alts {
			cut := cutIndex(alt)
			if cut < 0 {
				continue
			}
			prefix := itemTags(alt.Items[:cut+1])
			for _, other := range alts[i+1:] {
				if len(other.Items) < len(prefix) {
					continue
				}
				if tagsEqual(itemTags(other.Items[:len(prefix)]), prefix) {
					bag.AddPos(other.Info, errors.Semantic,
						"unreachable alternative after cut in rule %q", rule.ID)
				}
			}
		}
	}
}

func cutIndex(alt *ast.Alt) int {
	for i, it := range alt.Items {
		if it.Cut {
			return i
		}
	}
	return -1
}

func itemTags(items []*ast.NamedItem) []string {
	tags := make([]string, len(items))
	for i, it := range items {
		tags[i] = fmt.Sprintf("%T", it.Item)
	}
	return tags
}

func tagsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
