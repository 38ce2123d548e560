package preprocessor_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polygen/polygen/ast"
	"github.com/polygen/polygen/preprocessor"
)

type fakeFS map[string]string

func (fs fakeFS) ReadFile(path string) ([]byte, error) {
	if content, ok := fs[path]; ok {
		return []byte(content), nil
	}
	return nil, errNotFound(path)
}

type errNotFound string

func (e errNotFound) Error() string { return "no such file: " + string(e) }

func idsOf(rules []*ast.Rule) []string {
	var out []string
	for _, r := range rules {
		out = append(out, r.ID)
	}
	return out
}

func TestIncludeSplicesInPlace(t *testing.T) {
	fs := fakeFS{
		"main.peg": `
			First <- 'a'
			@include "common.peg"
			Last <- 'z'
		`,
		"common.peg": `Middle <- 'm'`,
	}

	g, bag := preprocessor.Process(fs, "main.peg", nil, "")
	require.False(t, bag.HasErrors(), bag.Error())
	assert.Equal(t, []string{"First", "Middle", "Last"}, idsOf(g.Rules))
}

func TestCyclicIncludeIsReported(t *testing.T) {
	fs := fakeFS{
		"a.peg": `@include "b.peg"` + "\n" + `A <- 'a'`,
		"b.peg": `@include "a.peg"` + "\n" + `B <- 'b'`,
	}

	_, bag := preprocessor.Process(fs, "a.peg", nil, "")
	require.True(t, bag.HasErrors())
	assert.Contains(t, bag.Error(), "cyclic include")
}

func TestMissingIncludeIsReported(t *testing.T) {
	fs := fakeFS{
		"main.peg": `@include "missing.peg"`,
	}

	_, bag := preprocessor.Process(fs, "main.peg", nil, "")
	require.True(t, bag.HasErrors())
	assert.Contains(t, bag.Error(), "not found")
}

func TestToplevelQueryOnlyAppliesToTopFile(t *testing.T) {
	fs := fakeFS{
		"main.peg": `
			@include "lib.peg"
			@toplevel {
				@entry
				Main <- 'm'
			}
		`,
		"lib.peg": `
			@toplevel {
				@entry
				Lib <- 'l'
			}
			Helper <- 'h'
		`,
	}

	g, bag := preprocessor.Process(fs, "main.peg", nil, "")
	require.False(t, bag.HasErrors(), bag.Error())
	assert.Equal(t, []string{"Helper", "Main"}, idsOf(g.Rules))
	assert.True(t, g.RuleByID("Main").Entry)
}

func TestBackendQuerySelectsByName(t *testing.T) {
	fs := fakeFS{
		"main.peg": `
			@backend(go) {
				GoOnly <- 'g'
			}
			@backend(python) {
				PyOnly <- 'p'
			}
		`,
	}

	g, bag := preprocessor.Process(fs, "main.peg", nil, "go")
	require.False(t, bag.HasErrors(), bag.Error())
	assert.Equal(t, []string{"GoOnly"}, idsOf(g.Rules))
}

func TestBackendDefIsRetainedUntouched(t *testing.T) {
	fs := fakeFS{
		"main.peg": `@backend.go { package main }`,
	}

	g, bag := preprocessor.Process(fs, "main.peg", nil, "go")
	require.False(t, bag.HasErrors(), bag.Error())
	require.Len(t, g.Directives, 1)
	def, ok := g.Directives[0].(*ast.BackendDef)
	require.True(t, ok)
	assert.Equal(t, " package main ", def.Body)
}

func TestIgnoreDirectiveMarksRules(t *testing.T) {
	fs := fakeFS{
		"main.peg": `
			@ignore { Whitespace }
			Whitespace <- ' '+
			Program <- Whitespace* 'x'
		`,
	}

	g, bag := preprocessor.Process(fs, "main.peg", nil, "")
	require.False(t, bag.HasErrors(), bag.Error())
	assert.True(t, g.RuleByID("Whitespace").Ignore)
	assert.False(t, g.RuleByID("Program").Ignore)
}

func TestUnknownEntryIdIsReported(t *testing.T) {
	fs := fakeFS{
		"main.peg": `
			@entry NoSuchRule
			Program <- 'x'
		`,
	}

	_, bag := preprocessor.Process(fs, "main.peg", nil, "")
	require.True(t, bag.HasErrors())
	assert.Contains(t, bag.Error(), "unknown rule")
}

func TestDuplicateEntryIsReported(t *testing.T) {
	fs := fakeFS{
		"main.peg": `
			@entry A
			@entry B
			A <- 'a'
			B <- 'b'
		`,
	}

	_, bag := preprocessor.Process(fs, "main.peg", nil, "")
	require.True(t, bag.HasErrors())
	assert.Contains(t, bag.Error(), "duplicate @entry")
}

func TestLookupDirsResolveInclude(t *testing.T) {
	fs := fakeFS{
		"main.peg":     `@include "shared.peg"`,
		"vendor/shared.peg": `Shared <- 's'`,
	}

	g, bag := preprocessor.Process(fs, "main.peg", []string{"vendor"}, "")
	require.False(t, bag.HasErrors(), bag.Error())
	assert.Equal(t, []string{"Shared"}, idsOf(g.Rules))
}
