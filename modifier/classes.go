package modifier

import (
	"sort"

	"github.com/polygen/polygen/ast"
	"github.com/polygen/polygen/errors"
)

// normalizeClasses is pass 4: sort a class's ranges and merge any that
// overlap or touch, so the emitter can compile a class to a single
// sorted comparison ladder instead of re-deriving that at codegen time.
// Reversed ranges are already flagged by sanityCheck; this pass skips
// them rather than re-reporting.
func normalizeClasses(g *ast.Grammar, bag *errors.Bag) {
	walkItems(g, func(it ast.Item) ast.Item {
		c, ok := it.(*ast.Class)
		if !ok {
			return it
		}
		c.Ranges = mergeRanges(c.Ranges)
		if len(c.Ranges) == 0 {
			bag.AddPos(c.Info, errors.Semantic, "empty character class")
		}
		return c
	})
}

func mergeRanges(ranges []ast.Range) []ast.Range {
	valid := make([]ast.Range, 0, len(ranges))
	for _, r := range ranges {
		if !r.IsSingle() && r.Begin > r.End {
			continue
		}
		if r.IsSingle() {
			r.End = r.Begin
		}
		valid = append(valid, r)
	}
	if len(valid) == 0 {
		return nil
	}

	sort.Slice(valid, func(i, j int) bool {
		if valid[i].Begin != valid[j].Begin {
			return valid[i].Begin < valid[j].Begin
		}
		return valid[i].End < valid[j].End
	})

	merged := []ast.Range{valid[0]}
	for _, r := range valid[1:] {
		last := &merged[len(merged)-1]
		if r.Begin <= last.End+1 {
			if r.End > last.End {
				last.End = r.End
			}
			continue
		}
		merged = append(merged, r)
	}

	for i := range merged {
		if merged[i].Begin == merged[i].End {
			merged[i].End = -1
		}
	}
	return merged
}
