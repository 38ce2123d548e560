// Package errors defines the diagnostic types shared by every pipeline
// stage: a typed Error carrying an origin and a Bag that batches
// diagnostics produced by a single stage run.
package errors

import (
	"fmt"
	"strings"
)

// Kind classifies a diagnostic per the error kinds named in the
// specification.
type Kind int

const (
	Lexical Kind = iota
	Syntax
	Include
	Semantic
	Backend
)

func (k Kind) String() string {
	switch k {
	case Lexical:
		return "lexical error"
	case Syntax:
		return "syntax error"
	case Include:
		return "include error"
	case Semantic:
		return "semantic error"
	case Backend:
		return "backend error"
	default:
		return "error"
	}
}

// SourcePos is satisfied by any node or token that carries an origin.
type SourcePos interface {
	SourceName() string
	Line() int
	Col() int
}

// Error is a single diagnostic, optionally positioned.
type Error struct {
	Kind       Kind
	Message    string
	SourceName string
	Line, Col  int
}

func New(kind Kind, msg, name string, line, col int) *Error {
	return &Error{kind, msg, name, line, col}
}

func (e *Error) Error() string {
	if e.SourceName == "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s:%d:%d: %s: %s", e.SourceName, e.Line, e.Col, e.Kind, e.Message)
}

// Format builds an unpositioned diagnostic, fmt.Sprintf-ing msg against
// params when any are supplied.
func Format(kind Kind, msg string, params ...interface{}) *Error {
	if len(params) > 0 {
		msg = fmt.Sprintf(msg, params...)
	}
	return New(kind, msg, "", 0, 0)
}

// FormatPos builds a diagnostic positioned at pos.
func FormatPos(pos SourcePos, kind Kind, msg string, params ...interface{}) *Error {
	if len(params) > 0 {
		msg = fmt.Sprintf(msg, params...)
	}
	if pos == nil {
		return New(kind, msg, "", 0, 0)
	}
	return New(kind, msg, pos.SourceName(), pos.Line(), pos.Col())
}

// Bag accumulates diagnostics produced while running one pipeline
// stage. A stage may not proceed to the next one while its Bag holds a
// hard error (everything currently raised is treated as hard; there is
// no separate warning severity in the core pipeline).
type Bag struct {
	errs []*Error
}

func NewBag() *Bag {
	return &Bag{}
}

func (b *Bag) Add(e *Error) {
	if e != nil {
		b.errs = append(b.errs, e)
	}
}

func (b *Bag) Addf(kind Kind, msg string, params ...interface{}) {
	b.Add(Format(kind, msg, params...))
}

func (b *Bag) AddPos(pos SourcePos, kind Kind, msg string, params ...interface{}) {
	b.Add(FormatPos(pos, kind, msg, params...))
}

func (b *Bag) Errors() []*Error {
	return b.errs
}

func (b *Bag) HasErrors() bool {
	return len(b.errs) > 0
}

func (b *Bag) Error() string {
	lines := make([]string, len(b.errs))
	for i, e := range b.errs {
		lines[i] = e.Error()
	}
	return strings.Join(lines, "\n")
}

// Merge appends other's diagnostics to b.
func (b *Bag) Merge(other *Bag) {
	if other == nil {
		return
	}
	b.errs = append(b.errs, other.errs...)
}
