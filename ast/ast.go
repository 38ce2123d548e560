// Package ast defines the Polygen grammar AST: a sum type of node
// variants held in a grammar-scoped arena rather than a linked tree.
// Nodes carry no parent pointers; cross-references (rule lookups,
// metarule lookups) are plain identifiers resolved by index lookup into
// the owning Grammar, and passes rebuild or replace nodes rather than
// mutating shared structure in place.
package ast

// ParseInfo is the optional diagnostic origin every node may carry.
type ParseInfo struct {
	File     string
	LineNo   int
	ColBegin int
	ColEnd   int
}

// SourceName, Line and Col let *ParseInfo satisfy errors.SourcePos
// without this package importing errors (ast stays dependency-free so
// every other package can import it freely).
func (p *ParseInfo) SourceName() string {
	if p == nil {
		return ""
	}
	return p.File
}

func (p *ParseInfo) Line() int {
	if p == nil {
		return 0
	}
	return p.LineNo
}

func (p *ParseInfo) Col() int {
	if p == nil {
		return 0
	}
	return p.ColBegin
}

// Grammar is the top-level container: an ordered list of rules, an
// ordered list of metarules, and any directives the preprocessor did
// not consume (backend definitions survive to the emitter).
type Grammar struct {
	Rules      []*Rule
	MetaRules  []*MetaRule
	Directives []Directive
	Info       *ParseInfo

	// ruleIndex maps a rule id to its index in Rules, built lazily by
	// Index and invalidated by any mutation of Rules.
	ruleIndex map[string]int
}

// Index (re)builds the id-to-rule lookup table. Call after any
// structural change to Rules before using RuleByID.
func (g *Grammar) Index() {
	g.ruleIndex = make(map[string]int, len(g.Rules))
	for i, r := range g.Rules {
		g.ruleIndex[r.ID] = i
	}
}

// RuleByID returns the rule named id, or nil if none exists. Index must
// have been called since the last structural change.
func (g *Grammar) RuleByID(id string) *Rule {
	if g.ruleIndex == nil {
		g.Index()
	}
	if i, ok := g.ruleIndex[id]; ok {
		return g.Rules[i]
	}
	return nil
}

// EntryRule returns the rule with Entry set, or nil.
func (g *Grammar) EntryRule() *Rule {
	for _, r := range g.Rules {
		if r.Entry {
			return r
		}
	}
	return nil
}

// MetaRuleByID returns the metarule named id, or nil.
func (g *Grammar) MetaRuleByID(id string) *MetaRule {
	for _, m := range g.MetaRules {
		if m.ID == id {
			return m
		}
	}
	return nil
}

// Rule is a named production.
type Rule struct {
	ID     string
	Expr   *Expr
	Entry  bool
	Ignore bool

	// Synthetic is true for rules introduced by the modifier's
	// desugaring pass rather than written by the grammar's author.
	Synthetic bool

	// LeftRecursive and HeadRule are filled in by the left-recursion
	// analysis pass.
	LeftRecursive bool
	HeadRule      bool

	Info *ParseInfo
}

func (*Rule) entity()     {}
func (*MetaRule) entity() {}

// Expr is an ordered choice of alternatives.
type Expr struct {
	Alts []*Alt
	Info *ParseInfo
}

// Alt is a sequence of parts, with an optional attached semantic
// action (either an inline MetaRule or a reference to a named one).
type Alt struct {
	Items   []*NamedItem
	Meta    *MetaRule // non-nil if this Alt carries an inline `$ { ... }`
	MetaRef *MetaRef  // non-nil if this Alt references a named metarule

	// Grower is set by the left-recursion pass: true if this Alt must be
	// compiled as a "grow" alternative rather than a "seed" alternative
	// of a left-recursive head rule (Warth/Douglass seed-and-grow).
	Grower bool

	Info *ParseInfo
}

// ReturnTuple is the ordered list of metanames of non-ignored items.
func (a *Alt) ReturnTuple() []string {
	var names []string
	for _, it := range a.Items {
		if it.Ignore() {
			continue
		}
		names = append(names, it.MetaName)
	}
	return names
}

// NamedItem is one part of an Alt.
type NamedItem struct {
	MetaName string // "" if not yet deduced; "_" marks an explicit ignore

	// MetaNameExplicit is true when the grammar author wrote a
	// `name:Primary` binding (including `_:Primary`), as opposed to a
	// name later deduced by the modifier's metaname pass.
	MetaNameExplicit bool

	Cut       bool
	Lookahead LookaheadKind
	Item      Item
	Info      *ParseInfo
}

type LookaheadKind int

const (
	NoLookahead LookaheadKind = iota
	AndLookahead
	NotLookahead
)

// Ignore reports whether this item is excluded from its Alt's return
// tuple: either explicitly marked "_" or wrapped in a predicate.
func (n *NamedItem) Ignore() bool {
	return n.MetaName == "_" || n.Lookahead != NoLookahead
}

// Item is the tagged union of matchable primaries and quantified/
// predicate-wrapped forms. Each concrete type below implements item()
// as an unexported marker so the set is closed to this package.
type Item interface {
	item()
}

type Ident struct {
	Name string
	Info *ParseInfo
}

// SubExpr is a parenthesised expression used as an Item; the modifier's
// desugaring pass replaces every occurrence with a reference to a fresh
// synthetic Rule before emission.
type SubExpr struct {
	Expr *Expr
	Info *ParseInfo
}

type StringLit struct {
	Chars []rune
	Info  *ParseInfo
}

type CharLit struct {
	Value rune
	Info  *ParseInfo
}

type Class struct {
	Ranges []Range
	Info   *ParseInfo
}

// Range is a single char or, when End is non-negative, an inclusive
// range. A single char is represented with End == -1.
type Range struct {
	Begin rune
	End   rune
}

func (r Range) IsSingle() bool { return r.End < 0 }

// AnyChar matches a single input unit. Strict selects a full Unicode
// scalar value; permissive (the default) matches a single raw byte,
// mirroring the two any-char matchers the original backend emits.
type AnyChar struct {
	Strict bool
	Info   *ParseInfo
}

type ZeroOrOne struct {
	Item Item
	Info *ParseInfo
}

type ZeroOrMore struct {
	Item Item
	Info *ParseInfo
}

type OneOrMore struct {
	Item Item
	Info *ParseInfo
}

// Repetition is {lo} or {lo,hi}; Hi == -1 means unbounded ({lo,}).
type Repetition struct {
	Item Item
	Lo   int
	Hi   int
	Info *ParseInfo
}

func (*Ident) item()      {}
func (*SubExpr) item()    {}
func (*StringLit) item()  {}
func (*CharLit) item()    {}
func (*Class) item()      {}
func (*AnyChar) item()    {}
func (*ZeroOrOne) item()  {}
func (*ZeroOrMore) item() {}
func (*OneOrMore) item()  {}
func (*Repetition) item() {}

// MetaRule is a semantic action body. ID is "" for an anonymous,
// inline-attached metarule.
type MetaRule struct {
	ID   string
	Body string
	Info *ParseInfo

	// Used counts how many Alts reference this metarule; the modifier's
	// unused-metarule check flags MetaRules with Used == 0 that also
	// have a non-empty ID (anonymous inline bodies are always "used" by
	// construction).
	Used int
}

// MetaRef is a named reference to a MetaRule, as attached to an Alt.
type MetaRef struct {
	ID   string
	Info *ParseInfo
}

// Directive is the tagged union of preprocessor entities. Each variant
// implements directive() as an unexported marker.
type Directive interface {
	directive()
	entity()
}

type IncludeDirective struct {
	Path string
	Info *ParseInfo
}

type EntryDirective struct {
	ID   string
	Info *ParseInfo
}

type IgnoreDirective struct {
	IDs  []string
	Info *ParseInfo
}

// ToplevelQuery inlines Sub's entities only when the enclosing file is
// the preprocessor's top file.
type ToplevelQuery struct {
	Sub  *Grammar
	Info *ParseInfo
}

// BackendQuery inlines Sub's entities only when Name equals the
// configured backend.
type BackendQuery struct {
	Name string
	Sub  *Grammar
	Info *ParseInfo
}

// BackendDef carries an opaque `@backend.<name> { body }` fragment
// through preprocessing untouched, for the emitter/postprocessor.
type BackendDef struct {
	Name string
	Body string
	Info *ParseInfo
}

func (*IncludeDirective) directive() {}
func (*EntryDirective) directive()   {}
func (*IgnoreDirective) directive()  {}
func (*ToplevelQuery) directive()    {}
func (*BackendQuery) directive()     {}
func (*BackendDef) directive()       {}

func (*IncludeDirective) entity() {}
func (*EntryDirective) entity()   {}
func (*IgnoreDirective) entity()  {}
func (*ToplevelQuery) entity()    {}
func (*BackendQuery) entity()     {}
func (*BackendDef) entity()       {}

// Entity is the sum of everything that can appear, in lexical order, at
// grammar top level: a Rule, a named MetaRule, or a Directive. The
// grammar parser produces a RawGrammar holding one flat Entities list
// so the preprocessor can resolve @include/@toplevel/@backend in place,
// preserving relative order; the preprocessor then buckets the result
// into a Grammar's typed Rules/MetaRules/Directives slices.
type Entity interface {
	entity()
}

// RawGrammar is the grammar parser's direct output: entities in
// lexical order, before any preprocessing.
type RawGrammar struct {
	Entities []Entity
	Info     *ParseInfo
}

// Bucket sorts a flat entity list into a Grammar's typed slices, in the
// order encountered. Used both by the grammar parser (for a query
// body's own sub-grammar) and by the preprocessor (for the final,
// fully-resolved entity stream).
func Bucket(entities []Entity) *Grammar {
	g := &Grammar{}
	for _, e := range entities {
		switch v := e.(type) {
		case *Rule:
			g.Rules = append(g.Rules, v)
		case *MetaRule:
			g.MetaRules = append(g.MetaRules, v)
		case Directive:
			g.Directives = append(g.Directives, v)
		}
	}
	return g
}
