package modifier

import (
	"github.com/polygen/polygen/ast"
	"github.com/polygen/polygen/internal/ints"
)

// analyzeLeftRecursion is pass 9: a Tarjan SCC over the graph whose
// edge set is "rule R's Alt has a leftmost item that is (after
// unwrapping any quantifier) an Ident referencing rule S" — S is an
// edge from R. Left recursion, direct or indirect, shows up as a
// nontrivial SCC (or a size-1 SCC with a self-edge). This only looks at
// each Alt's leftmost item, not at whether earlier items in some other
// position could also recurse through an epsilon-producing prefix; the
// grammars this module accepts don't have nullable rules, so the
// simplification costs nothing in practice (see DESIGN.md).
//
// Every rule in a recursive SCC gets LeftRecursive set; one rule per
// SCC — the first one Tarjan closes, an arbitrary but deterministic
// choice — is marked HeadRule, the rule the emitter compiles with the
// Warth/Douglass seed-and-grow loop. Within a left-recursive rule, an
// Alt whose leftmost edge stays inside the SCC is marked Grower; the
// rest are seeds.
func analyzeLeftRecursion(g *ast.Grammar) {
	g.Index()
	n := len(g.Rules)
	idOf := make(map[string]int, n)
	for i, r := range g.Rules {
		idOf[r.ID] = i
	}

	edges := make([][]int, n)
	for v, r := range g.Rules {
		edges[v] = leftEdges(r, idOf)
	}

	index := make([]int, n)
	low := make([]int, n)
	for i := range index {
		index[i] = -1
	}
	onStack := ints.NewSet()
	var stack []int
	counter := 0
	var sccs [][]int

	var strongconnect func(v int)
	strongconnect = func(v int) {
		index[v] = counter
		low[v] = counter
		counter++
		stack = append(stack, v)
		onStack.Add(v)

		for _, w := range edges[v] {
			if index[w] == -1 {
				strongconnect(w)
				if low[w] < low[v] {
					low[v] = low[w]
				}
			} else if onStack.Contains(w) {
				if index[w] < low[v] {
					low[v] = index[w]
				}
			}
		}

		if low[v] == index[v] {
			var scc []int
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack.Remove(w)
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, scc)
		}
	}

	for v := 0; v < n; v++ {
		if index[v] == -1 {
			strongconnect(v)
		}
	}

	for _, scc := range sccs {
		recursive := len(scc) > 1
		if len(scc) == 1 {
			for _, w := range edges[scc[0]] {
				if w == scc[0] {
					recursive = true
					break
				}
			}
		}
		if !recursive {
			continue
		}

		inSCC := ints.NewSet(scc...)
		for i, v := range scc {
			rule := g.Rules[v]
			rule.LeftRecursive = true
			rule.HeadRule = i == 0
			markGrowers(rule, idOf, inSCC)
		}
	}
}

func leftEdges(rule *ast.Rule, idOf map[string]int) []int {
	if rule.Expr == nil {
		return nil
	}
	var out []int
	for _, alt := range rule.Expr.Alts {
		if w, ok := leftTarget(alt, idOf); ok {
			out = append(out, w)
		}
	}
	return out
}

func leftTarget(alt *ast.Alt, idOf map[string]int) (int, bool) {
	if len(alt.Items) == 0 {
		return 0, false
	}
	id, ok := underlying(alt.Items[0].Item).(*ast.Ident)
	if !ok {
		return 0, false
	}
	w, ok := idOf[id.Name]
	return w, ok
}

func markGrowers(rule *ast.Rule, idOf map[string]int, inSCC *ints.Set) {
	for _, alt := range rule.Expr.Alts {
		if w, ok := leftTarget(alt, idOf); ok && inSCC.Contains(w) {
			alt.Grower = true
		}
	}
}
