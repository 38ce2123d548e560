// Package modifier runs the ordered battery of tree-rewriting passes
// that turn a preprocessor's flattened ast.Grammar into the normalised
// form the emitter consumes: every Alt reduced to simple primaries and
// references, metanames deduced, left recursion analysed, cut placement
// verified. Each pass is total: it either leaves the tree unusable and
// records diagnostics in the shared Bag, or hands a well-formed tree to
// the next pass.
package modifier

import (
	"dario.cat/mergo"

	"github.com/polygen/polygen/ast"
	"github.com/polygen/polygen/errors"
)

// PassOptions is the per-pass configuration every modifier pass accepts,
// generalized from the original's ModifierRegistry schema (every
// modifier has at least an `_enabled` option there).
type PassOptions struct {
	Enabled bool
}

// Options is the full modifier configuration: whether each pass runs,
// plus the supplemented any-char strictness option (see SPEC_FULL.md;
// grounded on the original's CreateAnyChar(strict) modifier option).
type Options struct {
	AnyCharStrict bool
	Passes        map[string]PassOptions
}

// Pass names, usable as keys into Options.Passes. The polygen CLI always
// runs DefaultOptions; its -d flags set backend options, not pass keys.
const (
	PassSanity       = "sanity"
	PassMetaRules    = "meta-rules"
	PassLiterals     = "literals"
	PassClasses      = "classes"
	PassAnyChar      = "any-char"
	PassDesugar      = "desugar"
	PassMetaNames    = "meta-names"
	PassIgnore       = "ignore"
	PassResolve      = "resolve"
	PassLeftRecur    = "left-recursion"
	PassEntry        = "entry"
	PassCutPlacement = "cut-placement"
)

var allPasses = []string{
	PassSanity, PassMetaRules, PassLiterals, PassClasses, PassAnyChar, PassDesugar,
	PassMetaNames, PassIgnore, PassResolve, PassLeftRecur, PassEntry,
	PassCutPlacement,
}

// DefaultOptions enables every pass, with the permissive any-char
// matcher (matching the original CreateAnyChar's default).
func DefaultOptions() Options {
	passes := make(map[string]PassOptions, len(allPasses))
	for _, name := range allPasses {
		passes[name] = PassOptions{Enabled: true}
	}
	return Options{AnyCharStrict: false, Passes: passes}
}

// MergeOptions layers overrides onto base (e.g. file-level config
// merged with -d CLI overrides), using field-by-field override
// semantics via mergo — the same tool used by cmd/polygen for flag/file
// precedence (see SPEC_FULL.md DOMAIN STACK).
func MergeOptions(base Options, overrides Options) (Options, error) {
	merged := base
	if err := mergo.Merge(&merged, &overrides, mergo.WithOverride); err != nil {
		return base, err
	}
	return merged, nil
}

func (o Options) enabled(pass string) bool {
	if o.Passes == nil {
		return true
	}
	p, ok := o.Passes[pass]
	if !ok {
		return true
	}
	return p.Enabled
}

// Run executes every pass in spec order against g, mutating it in
// place, and returns the (possibly unusable, if bag.HasErrors()) result
// together with every diagnostic collected along the way. Every pass,
// desugaring and identifier resolution included, is skipped when
// opts.Passes marks it disabled, mirroring the original's per-modifier
// `_enabled` option.
func Run(g *ast.Grammar, opts Options) (*ast.Grammar, *errors.Bag) {
	bag := errors.NewBag()
	g.Index()

	counter := NewCounter()

	runPass(bag, opts, PassSanity, func() { sanityCheck(g, bag) })
	runPass(bag, opts, PassMetaRules, func() { resolveMetaRules(g, bag) })
	runPass(bag, opts, PassLiterals, func() { expandLiterals(g) })
	runPass(bag, opts, PassClasses, func() { normalizeClasses(g, bag) })
	runPass(bag, opts, PassAnyChar, func() { createAnyCharRule(g, opts.AnyCharStrict, bag); g.Index() })
	runPass(bag, opts, PassDesugar, func() { desugar(g, counter); g.Index() })
	runPass(bag, opts, PassMetaNames, func() { deduceMetaNames(g) })
	runPass(bag, opts, PassIgnore, func() { applyIgnore(g) })
	runPass(bag, opts, PassResolve, func() { resolveIdentifiers(g, bag) })
	runPass(bag, opts, PassLeftRecur, func() { analyzeLeftRecursion(g) })
	runPass(bag, opts, PassEntry, func() { enforceEntry(g, bag) })
	runPass(bag, opts, PassCutPlacement, func() { checkCutPlacement(g, bag) })

	return g, bag
}

func runPass(bag *errors.Bag, opts Options, name string, fn func()) {
	if !opts.enabled(name) {
		return
	}
	fn()
}

