// Package postprocess substitutes `@backend.<name> { ... }` placeholders
// in a skeleton file with the fragments an emit.Emitter produced, the
// same line-oriented directive substitution the original's
// generator/preprocessor.py applies, recast around this module's own
// directive syntax (spec §4.5/§6) rather than the original's `%% name
// %%` markers.
package postprocess

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/polygen/polygen/internal/bmap"
)

// directiveRE matches one `@backend.<name> { body }` line, capturing the
// line's leading whitespace (reapplied to every non-empty line of the
// replacement, the same indentation-preserving insert the original's
// `insert()` helper performs) and the directive name.
var directiveRE = regexp.MustCompile(`^(\s*)@backend\.(\w+)\s*\{[^}]*\}\s*$`)

// DuplicateDirectiveError reports a `@backend.<name>` placeholder that
// appears more than once in the same skeleton — spec §4.5 calls this a
// known limitation this module rejects outright rather than silently
// keeping only the first or last occurrence.
type DuplicateDirectiveError struct {
	Name string
	Line int
}

func (e *DuplicateDirectiveError) Error() string {
	return fmt.Sprintf("line %d: directive %q already appeared earlier in this skeleton", e.Line, e.Name)
}

// Process walks skeleton line by line, replacing every recognised
// `@backend.<name>` placeholder with fragments[name]. A name absent from
// fragments is left unchanged rather than erroring — the skeleton may
// carry placeholders a particular backend invocation has no use for, and
// guessing at an empty substitution (as the original does) would hide a
// genuine emitter bug behind quiet empty output.
func Process(skeleton string, fragments map[string]string) (string, error) {
	lines := strings.Split(skeleton, "\n")
	// seen tracks directive names already substituted. A skeleton's
	// directive set is small and fixed once parsed, never shrinks, and
	// is checked once per line — exactly the shape bmap.BMap is built
	// for, so the duplicate check reuses it instead of a plain map.
	seen := bmap.New[int](8)
	var out strings.Builder

	for i, line := range lines {
		m := directiveRE.FindStringSubmatch(line)
		if m == nil {
			out.WriteString(line)
		} else {
			prefix, name := m[1], m[2]
			nameBytes := []byte(name)
			if _, ok := seen.Get(nameBytes); ok {
				return "", &DuplicateDirectiveError{Name: name, Line: i + 1}
			}
			seen.Set(nameBytes, i+1)

			body, ok := fragments[name]
			if !ok {
				out.WriteString(line)
			} else {
				insert(&out, body, prefix)
			}
		}
		if i < len(lines)-1 {
			out.WriteByte('\n')
		}
	}

	return out.String(), nil
}

// insert writes body into out, prepending prefix to every non-empty
// line — mirroring the original's insert() line-prefixing, minus its
// trailing `ending` parameter (this module's directives don't carry one).
func insert(out *strings.Builder, body, prefix string) {
	body = strings.TrimSuffix(body, "\n")
	if body == "" {
		return
	}
	for i, line := range strings.Split(body, "\n") {
		if i > 0 {
			out.WriteByte('\n')
		}
		if strings.TrimSpace(line) != "" {
			out.WriteString(prefix)
		}
		out.WriteString(line)
	}
}
