// Package emit walks a normalised ast.Grammar and renders target-
// language source into named fragments, one per skeleton directive
// (`header`, `state_type`, `rules`, `entry`, ...), later substituted in
// by the postprocess package. A Backend supplies the templates; Emitter
// supplies the buffering/indentation plumbing every backend shares.
package emit

import (
	"fmt"
	"strings"
)

// Emitter buffers output per named directive, the same "redirect put()
// calls into whichever stream is current" shape as the original's
// CodeGeneratorBase.directive/put context manager, recast as an
// explicit Go method (Directive) instead of a context manager.
type Emitter struct {
	buffers map[string]*strings.Builder
	order   []string
	current string
	indent  int
}

func NewEmitter() *Emitter {
	return &Emitter{buffers: map[string]*strings.Builder{}}
}

// Directive redirects every Put/EmptyLine/Indent call made inside fn
// into the named fragment's buffer, restoring whatever directive was
// current beforehand — directives can nest (a rule's "body" fragment
// assembling while "grow_rules" accumulates in parallel, as the Python
// backend does for left-recursive rule dispatch tables).
func (e *Emitter) Directive(name string, fn func()) {
	prev := e.current
	e.current = name
	if _, ok := e.buffers[name]; !ok {
		e.buffers[name] = &strings.Builder{}
		e.order = append(e.order, name)
	}
	fn()
	e.current = prev
}

// Indent increases the indentation level for every Put call inside fn.
func (e *Emitter) Indent(fn func()) {
	e.indent++
	fn()
	e.indent--
}

// Put writes one indented line, terminated by a newline, to the current
// directive's buffer. args are concatenated with fmt.Sprint semantics.
func (e *Emitter) Put(args ...interface{}) {
	buf := e.buf()
	buf.WriteString(strings.Repeat("\t", e.indent))
	fmt.Fprint(buf, args...)
	buf.WriteByte('\n')
}

// Putf is Put with Sprintf-style formatting.
func (e *Emitter) Putf(format string, args ...interface{}) {
	e.Put(fmt.Sprintf(format, args...))
}

// PutRaw writes s verbatim (no indentation, no trailing newline) — used
// for inserting an already-indented multi-line block, such as a
// metarule body normalised by Reindent.
func (e *Emitter) PutRaw(s string) {
	e.buf().WriteString(s)
}

// EmptyLine writes a bare newline, unindented.
func (e *Emitter) EmptyLine() {
	e.buf().WriteByte('\n')
}

func (e *Emitter) buf() *strings.Builder {
	if e.current == "" {
		panic("emit: Put called outside of Directive")
	}
	b, ok := e.buffers[e.current]
	if !ok {
		panic("emit: unknown directive " + e.current)
	}
	return b
}

// Fragment returns the accumulated text for one named directive, or ""
// if that directive was never opened.
func (e *Emitter) Fragment(name string) string {
	b, ok := e.buffers[name]
	if !ok {
		return ""
	}
	return b.String()
}

// Fragments returns every directive's accumulated text, keyed by name.
func (e *Emitter) Fragments() map[string]string {
	out := make(map[string]string, len(e.buffers))
	for name, b := range e.buffers {
		out[name] = b.String()
	}
	return out
}

// Reindent shifts every line of body by level tab stops, stripping a
// common leading-whitespace prefix first — the same normalisation the
// original's `polygen.utility.reindent` applies to a metarule body
// before splicing it into generated code at the rule's own indentation.
func Reindent(body string, level int) string {
	lines := strings.Split(strings.Trim(body, "\n"), "\n")
	prefix := commonIndent(lines)
	pad := strings.Repeat("\t", level)

	out := make([]string, len(lines))
	for i, line := range lines {
		trimmed := strings.TrimPrefix(line, prefix)
		if trimmed == "" {
			out[i] = ""
			continue
		}
		out[i] = pad + trimmed
	}
	return strings.Join(out, "\n")
}

func commonIndent(lines []string) string {
	var prefix string
	set := false
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		indent := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
		if !set {
			prefix = indent
			set = true
			continue
		}
		prefix = commonPrefix(prefix, indent)
	}
	return prefix
}

func commonPrefix(a, b string) string {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return a[:i]
		}
	}
	return a[:n]
}
