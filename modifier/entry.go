package modifier

import (
	"github.com/polygen/polygen/ast"
	"github.com/polygen/polygen/errors"
	"github.com/polygen/polygen/internal/ints"
)

// enforceEntry is pass 10: a grammar must end up with exactly one entry
// rule (the preprocessor already applied any `@entry` directive) and
// every rule must be reachable from it — an unreachable rule is either
// dead weight or a typo in some other rule's reference, and either way
// the emitter has no use for it.
func enforceEntry(g *ast.Grammar, bag *errors.Bag) {
	g.Index()

	var entries []*ast.Rule
	for _, r := range g.Rules {
		if r.Entry {
			entries = append(entries, r)
		}
	}

	switch len(entries) {
	case 0:
		bag.AddPos(g.Info, errors.Semantic, "grammar has no entry rule")
		return
	case 1:
		// fallthrough to reachability
	default:
		for _, r := range entries[1:] {
			bag.AddPos(r.Info, errors.Semantic, "rule %q: grammar already has an entry rule", r.ID)
		}
		return
	}

	reachable := reachableFrom(entries[0], g)
	for _, r := range g.Rules {
		if !reachable[r.ID] {
			bag.AddPos(r.Info, errors.Semantic, "rule %q is unreachable from the entry rule", r.ID)
		}
	}
}

// reachableFrom is a breadth-first walk of the rule-reference graph. The
// worklist holds rule indices rather than ids — the same dense
// int-per-rule numbering analyzeLeftRecursion builds for its SCC pass —
// so the walk can use internal/ints' Queue, a plain ring-buffer FIFO of
// ints, instead of boxing every pending id as a string.
func reachableFrom(entry *ast.Rule, g *ast.Grammar) map[string]bool {
	n := len(g.Rules)
	idOf := make(map[string]int, n)
	for i, r := range g.Rules {
		idOf[r.ID] = i
	}

	seenIdx := make([]bool, n)
	entryIdx := idOf[entry.ID]
	seenIdx[entryIdx] = true
	pending := ints.NewQueue(entryIdx)

	for !pending.IsEmpty() {
		rule := g.Rules[pending.Head()]
		if rule.Expr == nil {
			continue
		}
		for _, alt := range rule.Expr.Alts {
			for _, it := range alt.Items {
				ref, ok := underlying(it.Item).(*ast.Ident)
				if !ok {
					continue
				}
				w, ok := idOf[ref.Name]
				if !ok || seenIdx[w] {
					continue
				}
				seenIdx[w] = true
				pending.Append(w)
			}
		}
	}

	seen := make(map[string]bool, n)
	for i, r := range g.Rules {
		if seenIdx[i] {
			seen[r.ID] = true
		}
	}
	return seen
}
