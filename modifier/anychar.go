package modifier

import (
	"github.com/polygen/polygen/ast"
	"github.com/polygen/polygen/errors"
)

// anyCharGenRuleID names the synthetic class rule createAnyCharRule
// introduces for strict mode, mirroring the original's
// CreateAnyChar.rule_id ("AnyChar__GEN").
const anyCharGenRuleID = "AnyChar__GEN"

// createAnyCharRule is the supplemented any-char strictness pass
// (SPEC_FULL.md; grounded on the original's CreateAnyChar). Permissive
// mode (the default) leaves every `.` alone. Strict mode gives `.`
// Ford's formal PEG reading — "a character class containing all of the
// terminals in [the alphabet]" — by collecting every literal character
// appearing anywhere in the grammar into one synthetic class rule and
// replacing each `.` with a reference to it, rather than leaving
// strictness to mean something at the matcher level.
func createAnyCharRule(g *ast.Grammar, strict bool, bag *errors.Bag) {
	if !strict {
		return
	}

	hasAnyChar := false
	seen := map[rune]bool{}
	var ranges []ast.Range

	walkItems(g, func(it ast.Item) ast.Item {
		switch v := it.(type) {
		case *ast.AnyChar:
			hasAnyChar = true
		case *ast.CharLit:
			collectChar(seen, &ranges, v.Value)
		case *ast.StringLit:
			for _, c := range v.Chars {
				collectChar(seen, &ranges, c)
			}
		}
		return it
	})

	// Nothing in the grammar uses `.`, so there's nothing to rewrite —
	// and adding the rule anyway would leave it unreachable, tripping
	// the entry pass's reachability check for no reason.
	if !hasAnyChar {
		return
	}

	merged := mergeRanges(ranges)
	info := g.Info
	if len(merged) == 0 {
		bag.AddPos(info, errors.Semantic,
			"strict any-char mode requires at least one literal character elsewhere in the grammar")
		return
	}

	rule := &ast.Rule{
		ID: anyCharGenRuleID,
		Expr: &ast.Expr{Alts: []*ast.Alt{{
			Items: []*ast.NamedItem{{
				Item: &ast.Class{Ranges: merged, Info: info},
				Info: info,
			}},
		}},
			Info: info,
		},
		Synthetic: true,
		Info:      info,
	}
	g.Rules = append(g.Rules, rule)

	walkItems(g, func(it ast.Item) ast.Item {
		if _, ok := it.(*ast.AnyChar); ok {
			return &ast.Ident{Name: anyCharGenRuleID, Info: info}
		}
		return it
	})
}

func collectChar(seen map[rune]bool, ranges *[]ast.Range, c rune) {
	if seen[c] {
		return
	}
	seen[c] = true
	*ranges = append(*ranges, ast.Range{Begin: c, End: -1})
}
