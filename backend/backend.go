// Package backend declares the two contracts an equivalency test runner
// and the generator CLI need to address a code-generation backend
// without depending on emit (which walks an ast.Grammar) or on any
// concrete target language: a typed option Descriptor the CLI validates
// `-d key=value` flags against, and a Runner that compiles and executes
// the language the backend targets. Per spec §1/§6, per-backend
// skeleton templates and the equivalency harness itself are out of
// scope for the core pipeline; only the interfaces they plug into live
// here.
package backend

import "fmt"

// OptionType is the type a backend declares for one of its -d options,
// generalised from the original generator/config.py's Option, which
// only ever saw bool/int/str/choice values in practice.
type OptionType int

const (
	Bool OptionType = iota
	Int
	String
	Choice
)

// OptionSpec is one backend-declared option: its type, default, and
// (for Choice) the allowed values.
type OptionSpec struct {
	Type    OptionType
	Default interface{}
	Choices []string
}

// Validate checks that a raw "-d key=value" string value is acceptable
// for this option, returning the typed value (bool, int, or string).
func (o OptionSpec) Validate(name, raw string) (interface{}, error) {
	switch o.Type {
	case Bool:
		switch raw {
		case "true", "1":
			return true, nil
		case "false", "0":
			return false, nil
		default:
			return nil, fmt.Errorf("option %q: %q is not a bool", name, raw)
		}
	case Int:
		var n int
		if _, err := fmt.Sscanf(raw, "%d", &n); err != nil {
			return nil, fmt.Errorf("option %q: %q is not an int", name, raw)
		}
		return n, nil
	case Choice:
		for _, c := range o.Choices {
			if raw == c {
				return raw, nil
			}
		}
		return nil, fmt.Errorf("option %q: %q is not one of %v", name, raw, o.Choices)
	default:
		return raw, nil
	}
}

// Descriptor announces one backend: its identity, the skeleton files it
// expects the CLI to supply (per spec §1, templates themselves are out
// of scope here — only their filenames need to be known), and its typed
// option schema (SPEC_FULL.md SUPPLEMENTED MODULES #3).
type Descriptor struct {
	Name     string
	Language string
	Version  string
	Files    []string
	Options  map[string]OptionSpec
}

// ValidateOptions checks a full "-d key=value" set against this
// backend's option schema, returning the typed values or every
// validation error collected (an unknown key is also an error).
func (d Descriptor) ValidateOptions(raw map[string]string) (map[string]interface{}, []error) {
	typed := make(map[string]interface{}, len(raw))
	var errs []error
	for key, value := range raw {
		spec, ok := d.Options[key]
		if !ok {
			errs = append(errs, fmt.Errorf("backend %q: unknown option %q", d.Name, key))
			continue
		}
		v, err := spec.Validate(key, value)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		typed[key] = v
	}
	return typed, errs
}

// Runner compiles a generated parser and exercises it against one
// input file, for the `polygen test` equivalency suite (spec §6's
// "Backend descriptor. Named set of templates + a Runner interface").
type Runner interface {
	// Compile builds (or otherwise prepares) the generated parser found
	// in dir.
	Compile(dir string) error
	// Run executes the compiled parser against inputPath, returning its
	// stdout and exit code.
	Run(inputPath string) (stdout string, exitCode int, err error)
	// Cleanup releases any resources Compile/Run allocated.
	Cleanup() error
}
