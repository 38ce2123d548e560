package grammarparser

import (
	"fmt"
	"strings"

	"github.com/polygen/polygen/ast"
)

// Unparse renders a RawGrammar back to grammar source text. It is the
// inverse of Parse: Parse(name, []byte(Unparse(raw))) is expected to
// reproduce a structurally equal RawGrammar, modulo ParseInfo (spec §8's
// parser round-trip property). Formatting is not preserved — only
// enough syntax to make every entity, item, and literal reparse to the
// same value.
func Unparse(raw *ast.RawGrammar) string {
	var b strings.Builder
	for _, e := range raw.Entities {
		writeEntity(&b, e)
		b.WriteByte('\n')
	}
	return b.String()
}

// UnparseGrammar renders an already-bucketed Grammar's body, for a
// @toplevel/@backend query's Sub. Bucketing is order-preserving within
// each of Directives/Rules/MetaRules but discards the original
// interleaving across those three kinds, so any fixed order here
// reparses (and re-buckets) back to the same three slices.
func UnparseGrammar(g *ast.Grammar) string {
	var b strings.Builder
	for _, d := range g.Directives {
		writeDirective(&b, d)
		b.WriteByte('\n')
	}
	for _, r := range g.Rules {
		writeRule(&b, r)
		b.WriteByte('\n')
	}
	for _, m := range g.MetaRules {
		writeMetaRule(&b, m)
		b.WriteByte('\n')
	}
	return b.String()
}

func writeEntity(b *strings.Builder, e ast.Entity) {
	switch v := e.(type) {
	case *ast.Rule:
		writeRule(b, v)
	case *ast.MetaRule:
		writeMetaRule(b, v)
	case ast.Directive:
		writeDirective(b, v)
	}
}

func writeRule(b *strings.Builder, r *ast.Rule) {
	b.WriteString(r.ID)
	b.WriteString(" <- ")
	b.WriteString(unparseExpr(r.Expr))
}

// Body is captured raw, byte for byte, between the braces (see
// parseMetaBody) — any whitespace it holds is part of its value, so
// the brace characters are written flush against it rather than with
// inserted padding that would change the reparsed Body string.
func writeMetaRule(b *strings.Builder, m *ast.MetaRule) {
	b.WriteString("$")
	b.WriteString(m.ID)
	b.WriteString(" {")
	b.WriteString(escapeMetaBody(m.Body))
	b.WriteString("}")
}

func writeDirective(b *strings.Builder, d ast.Directive) {
	switch v := d.(type) {
	case *ast.IncludeDirective:
		b.WriteString("@include ")
		b.WriteString(quoteString([]rune(v.Path)))
	case *ast.EntryDirective:
		b.WriteString("@entry ")
		b.WriteString(v.ID)
	case *ast.IgnoreDirective:
		b.WriteString("@ignore { ")
		b.WriteString(strings.Join(v.IDs, ", "))
		b.WriteString(" }")
	case *ast.ToplevelQuery:
		b.WriteString("@toplevel { ")
		b.WriteString(UnparseGrammar(v.Sub))
		b.WriteString(" }")
	case *ast.BackendQuery:
		b.WriteString("@backend(")
		b.WriteString(v.Name)
		b.WriteString(") { ")
		b.WriteString(UnparseGrammar(v.Sub))
		b.WriteString(" }")
	case *ast.BackendDef:
		b.WriteString("@backend.")
		b.WriteString(v.Name)
		b.WriteString(" {")
		b.WriteString(escapeMetaBody(v.Body))
		b.WriteString("}")
	}
}

func unparseExpr(e *ast.Expr) string {
	alts := make([]string, len(e.Alts))
	for i, a := range e.Alts {
		alts[i] = unparseAlt(a)
	}
	return strings.Join(alts, " / ")
}

func unparseAlt(a *ast.Alt) string {
	items := make([]string, len(a.Items))
	for i, it := range a.Items {
		items[i] = unparseNamedItem(it)
	}
	out := strings.Join(items, " ")
	switch {
	case a.Meta != nil:
		out += " ${" + escapeMetaBody(a.Meta.Body) + "}"
	case a.MetaRef != nil:
		out += " $" + a.MetaRef.ID
	}
	return out
}

func unparseNamedItem(it *ast.NamedItem) string {
	var b strings.Builder
	if it.Cut {
		b.WriteString("^ ")
	}
	if it.MetaNameExplicit {
		b.WriteString(it.MetaName)
		b.WriteString(":")
	}
	switch it.Lookahead {
	case ast.AndLookahead:
		b.WriteString("&")
	case ast.NotLookahead:
		b.WriteString("!")
	}
	b.WriteString(unparseItemValue(it.Item))
	return b.String()
}

func unparseItemValue(item ast.Item) string {
	switch v := item.(type) {
	case *ast.Ident:
		return v.Name
	case *ast.SubExpr:
		return "(" + unparseExpr(v.Expr) + ")"
	case *ast.StringLit:
		return quoteString(v.Chars)
	case *ast.CharLit:
		return quoteString([]rune{v.Value})
	case *ast.Class:
		return quoteClass(v.Ranges)
	case *ast.AnyChar:
		return "."
	case *ast.ZeroOrOne:
		return unparseItemValue(v.Item) + "?"
	case *ast.ZeroOrMore:
		return unparseItemValue(v.Item) + "*"
	case *ast.OneOrMore:
		return unparseItemValue(v.Item) + "+"
	case *ast.Repetition:
		return unparseItemValue(v.Item) + repetitionSuffix(v.Lo, v.Hi)
	default:
		return ""
	}
}

func repetitionSuffix(lo, hi int) string {
	switch {
	case hi == lo:
		return fmt.Sprintf("{%d}", lo)
	case hi == -1:
		return fmt.Sprintf("{%d,}", lo)
	default:
		return fmt.Sprintf("{%d,%d}", lo, hi)
	}
}

func quoteString(chars []rune) string {
	var b strings.Builder
	b.WriteByte('\'')
	for _, r := range chars {
		b.WriteString(escapeStringRune(r))
	}
	b.WriteByte('\'')
	return b.String()
}

func escapeStringRune(r rune) string {
	switch r {
	case '\\':
		return `\\`
	case '\'':
		return `\'`
	case '\n':
		return `\n`
	case '\r':
		return `\r`
	case '\t':
		return `\t`
	}
	if r < 0x20 || r == 0x7f {
		return fmt.Sprintf("\\u%04x", r)
	}
	return string(r)
}

// quoteClass renders a Class's Ranges back into "[...]" form. Ranges
// come only from Parse's own scan (see parseClass), so a singleton '-'
// range always sits exactly where the original source had a literal,
// unescaped dash; writing it back in the same position and relying on
// the same "a dash directly before ']' or not followed by another
// range-eligible char is literal" rule reproduces it, since decodeEscape
// has no '\-' escape to fall back on.
func quoteClass(ranges []ast.Range) string {
	var b strings.Builder
	b.WriteByte('[')
	for _, r := range ranges {
		b.WriteString(escapeClassRune(r.Begin))
		if !r.IsSingle() {
			b.WriteByte('-')
			b.WriteString(escapeClassRune(r.End))
		}
	}
	b.WriteByte(']')
	return b.String()
}

func escapeClassRune(r rune) string {
	switch r {
	case '\\':
		return `\\`
	case ']':
		return `\]`
	case '\n':
		return `\n`
	case '\r':
		return `\r`
	case '\t':
		return `\t`
	}
	if r < 0x20 || r == 0x7f {
		return fmt.Sprintf("\\u%04x", r)
	}
	return string(r)
}

// escapeMetaBody re-escapes a decoded metarule/backend-def body for
// re-embedding in a `{ ... }` shell: parseMetaBody's only escape is
// `\}`, so every other byte round-trips unchanged and only a literal
// '}' needs re-escaping.
func escapeMetaBody(body string) string {
	return strings.ReplaceAll(body, "}", `\}`)
}
