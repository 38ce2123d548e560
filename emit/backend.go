package emit

import (
	"github.com/polygen/polygen/ast"
	"github.com/polygen/polygen/backend"
)

// Backend renders a normalised grammar into an Emitter's named
// fragments. Descriptor announces the backend's identity, expected
// skeleton files and typed option schema to the CLI and the
// equivalency harness; Generate does the actual walk.
type Backend interface {
	Descriptor() backend.Descriptor
	Generate(e *Emitter, g *ast.Grammar, opts map[string]interface{}) error
}
