package emit

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/polygen/polygen/ast"
	"github.com/polygen/polygen/backend"
)

// GoBackend renders a normalised grammar as a Go packrat recognizer.
// It is the one concrete Backend this module ships — grounded on the
// original's Python backend (backend/python/backend.py)'s per-Item-kind
// visit methods, head-rule seed/grow dispatch table and return-tuple
// construction, recast into a language this module's own pipeline is
// written in rather than the original's target.
type GoBackend struct{}

func NewGoBackend() *GoBackend { return &GoBackend{} }

func (GoBackend) Descriptor() backend.Descriptor {
	return backend.Descriptor{
		Name:     "go",
		Language: "Go",
		Version:  "0.1.0",
		Files:    []string{"parser.go.in"},
		Options: map[string]backend.OptionSpec{
			"package": {Type: backend.String, Default: "parser"},
		},
	}
}

// Generate walks g and fills in the "header", "entry" and "rules"
// directives a `parser.go.in` skeleton declares placeholders for.
func (gb *GoBackend) Generate(e *Emitter, g *ast.Grammar, opts map[string]interface{}) error {
	entry := g.EntryRule()
	if entry == nil {
		return fmt.Errorf("go backend: grammar has no entry rule")
	}

	pkg := "parser"
	if v, ok := opts["package"].(string); ok && v != "" {
		pkg = v
	}

	e.Directive("header", func() {
		e.Putf("package %s", pkg)
		e.EmptyLine()
		e.Put(`import "fmt"`)
	})

	e.Directive("entry", func() {
		e.Putf("const entryRule = %q", entry.ID)
		e.Put("func (p *Parser) Parse() (*Result, error) {")
		e.Indent(func() {
			e.Putf("result, ok := p.rule_%s()", entry.ID)
			e.Put("if !ok {")
			e.Indent(func() { e.Putf(`return nil, fmt.Errorf("parse failed at position %%d", p.pos)`) })
			e.Put("}")
			e.Put("return result, nil")
		})
		e.Put("}")
	})

	e.Directive("rules", func() {
		for i, rule := range g.Rules {
			if i > 0 {
				e.EmptyLine()
			}
			gb.emitRule(e, rule)
		}
	})

	return nil
}

// emitRule is pass-through packrat memoization wrapping either a
// straight-line alternative try-in-order (`visit_Expr`'s non-head
// branch) or, for a left-recursive head rule, the seed-and-grow loop
// (`visit_Expr`'s head branch).
func (gb *GoBackend) emitRule(e *Emitter, rule *ast.Rule) {
	e.Putf("// %s", ruleComment(rule))
	e.Putf("func (p *Parser) rule_%s() (*Result, bool) {", rule.ID)
	e.Indent(func() {
		e.Putf("if m, ok := p.memo(%q, p.pos); ok {", rule.ID)
		e.Indent(func() { e.Put("return m.Value, m.Value != nil") })
		e.Put("}")
		e.Put("start := p.pos")

		if rule.LeftRecursive && rule.HeadRule {
			gb.emitSeedAndGrow(e, rule)
		} else {
			gb.emitOrderedChoice(e, rule)
		}
	})
	e.Put("}")
}

func (gb *GoBackend) emitOrderedChoice(e *Emitter, rule *ast.Rule) {
	e.Putf("p.memoize(%q, start, nil)", rule.ID)
	for i := range rule.Expr.Alts {
		altFn := fmt.Sprintf("rule_%s_alt%d", rule.ID, i+1)
		e.Putf("if v, ok := p.%s(); ok {", altFn)
		e.Indent(func() {
			e.Putf("p.memoize(%q, start, v)", rule.ID)
			e.Put("return v, true")
		})
		e.Put("}")
		e.Put("p.pos = start")
	}
	e.Put("return nil, false")

	for i, alt := range rule.Expr.Alts {
		e.EmptyLine()
		gb.emitAlt(e, rule, alt, fmt.Sprintf("rule_%s_alt%d", rule.ID, i+1))
	}
}

// emitSeedAndGrow implements spec §4.4's Warth/Douglass contract:
// memoise NoMatch first, then iteratively re-evaluate the rule body,
// accepting a result only while it strictly advances the input
// pointer, stopping when growth halts.
func (gb *GoBackend) emitSeedAndGrow(e *Emitter, rule *ast.Rule) {
	e.Putf("p.memoize(%q, start, nil)", rule.ID) // seed: NoMatch
	e.Put("var best *Result")
	e.Put("bestPos := start")
	e.Put("for {")
	e.Indent(func() {
		e.Put("p.pos = start")
		e.Putf("v, ok := p.rule_%s_body()", rule.ID)
		e.Put("if !ok || p.pos <= bestPos {")
		e.Indent(func() { e.Put("break") })
		e.Put("}")
		e.Put("best, bestPos = v, p.pos")
		e.Putf("p.memoize(%q, start, best)", rule.ID)
	})
	e.Put("}")
	e.Put("p.pos = bestPos")
	e.Put("return best, best != nil")

	e.EmptyLine()
	e.Putf("func (p *Parser) rule_%s_body() (*Result, bool) {", rule.ID)
	e.Indent(func() {
		for i := range rule.Expr.Alts {
			altFn := fmt.Sprintf("rule_%s_alt%d", rule.ID, i+1)
			e.Putf("if v, ok := p.%s(); ok {", altFn)
			e.Indent(func() { e.Put("return v, true") })
			e.Put("}")
		}
		e.Put("return nil, false")
	})
	e.Put("}")

	for i, alt := range rule.Expr.Alts {
		e.EmptyLine()
		gb.emitAlt(e, rule, alt, fmt.Sprintf("rule_%s_alt%d", rule.ID, i+1))
	}
}

// emitAlt compiles one Alt into an and-chain of item matches, committing
// on cut (spec §4.4: a cut clears backtracking for the enclosing
// choice; a later failure reports at the cut point instead of trying
// sibling alternatives) and building the return-tuple/metarule call at
// the end.
func (gb *GoBackend) emitAlt(e *Emitter, rule *ast.Rule, alt *ast.Alt, altFn string) {
	e.Putf("func (p *Parser) %s() (*Result, bool) {", altFn)
	e.Indent(func() {
		e.Put("pos := p.pos")
		e.Put("committed := false")

		var vars []string
		for _, it := range alt.Items {
			gb.emitItem(e, it, &vars)
		}

		if alt.Meta != nil {
			e.Put("_ = pos")
			e.Put("value := func() interface{} {")
			e.Indent(func() { e.PutRaw(Reindent(alt.Meta.Body, 0) + "\n") })
			e.Put("}()")
			e.Put("return &Result{Value: value, Pos: p.pos}, true")
		} else {
			e.Putf("return &Result{Value: []interface{}{%s}, Pos: p.pos}, true", strings.Join(vars, ", "))
		}
	})
	e.Put("}")
}

// emitItem matches one Item and, for an item that contributes to its
// Alt's return tuple, binds its metaname to the matched *value* (not
// the raw *Result) so a $metarule body sees the metaname as a plain
// local, per spec §4.4.
func (gb *GoBackend) emitItem(e *Emitter, it *ast.NamedItem, vars *[]string) {
	expr := gb.matchExpr(it.Item)
	resVar := fmt.Sprintf("_r%d", len(*vars))

	switch it.Lookahead {
	case ast.AndLookahead:
		e.Putf("if !p.peek(func() bool { _, ok := %s; return ok }) {", expr)
	case ast.NotLookahead:
		e.Putf("if p.peek(func() bool { _, ok := %s; return ok }) {", expr)
	case ast.NoLookahead:
		if it.Ignore() {
			e.Putf("_, ok := %s", expr)
		} else {
			e.Putf("%s, ok := %s", resVar, expr)
		}
		e.Put("if !ok {")
	}

	e.Indent(func() {
		e.Put("if committed {")
		e.Indent(func() { e.Putf("p.reportCut(pos, %q)", "alternative committed by cut") })
		e.Put("}")
		e.Put("p.pos = pos")
		e.Put("return nil, false")
	})
	e.Put("}")

	if it.Lookahead == ast.NoLookahead && !it.Ignore() {
		varName := goVarName(it.MetaName, len(*vars))
		e.Putf("%s := %s.Value", varName, resVar)
		*vars = append(*vars, varName)
	}
	if it.Cut {
		e.Put("committed = true")
	}
}

// matchExpr renders the call expression that matches one Item,
// returning (value, ok) the way every generated matcher does.
func (gb *GoBackend) matchExpr(item ast.Item) string {
	switch v := item.(type) {
	case *ast.Ident:
		return fmt.Sprintf("p.rule_%s()", v.Name)
	case *ast.CharLit:
		return fmt.Sprintf("p.matchChar(%s)", strconv.QuoteRune(v.Value))
	case *ast.StringLit:
		return fmt.Sprintf("p.matchString(%s)", strconv.Quote(string(v.Chars)))
	case *ast.Class:
		return fmt.Sprintf("p.matchClass(%s)", classLiteral(v))
	case *ast.AnyChar:
		return fmt.Sprintf("p.matchAny(%t)", v.Strict)
	case *ast.ZeroOrOne:
		return fmt.Sprintf("p.zeroOrOne(func() (*Result, bool) { return %s })", gb.matchExpr(v.Item))
	case *ast.ZeroOrMore:
		return fmt.Sprintf("p.repeatMatch(func() (*Result, bool) { return %s }, 0, -1)", gb.matchExpr(v.Item))
	case *ast.OneOrMore:
		return fmt.Sprintf("p.repeatMatch(func() (*Result, bool) { return %s }, 1, -1)", gb.matchExpr(v.Item))
	case *ast.Repetition:
		return fmt.Sprintf("p.repeatMatch(func() (*Result, bool) { return %s }, %d, %d)", gb.matchExpr(v.Item), v.Lo, v.Hi)
	default:
		return fmt.Sprintf("p.fail(%q)", fmt.Sprintf("unsupported item %T", item))
	}
}

func classLiteral(c *ast.Class) string {
	parts := make([]string, len(c.Ranges))
	for i, r := range c.Ranges {
		end := r.End
		if r.IsSingle() {
			end = r.Begin
		}
		parts[i] = fmt.Sprintf("{%s, %s}", strconv.QuoteRune(r.Begin), strconv.QuoteRune(end))
	}
	return "[]Range{" + strings.Join(parts, ", ") + "}"
}

func goVarName(metaName string, index int) string {
	if metaName == "" || metaName == "_" {
		return fmt.Sprintf("_v%d", index)
	}
	return metaName
}

func ruleComment(rule *ast.Rule) string {
	if rule.LeftRecursive {
		if rule.HeadRule {
			return rule.ID + " (left-recursive, head)"
		}
		return rule.ID + " (left-recursive)"
	}
	return rule.ID
}
