// Package check validates whole-program properties after desugaring.
package check

import (
	"fmt"

	"lume/frontend-go/pkg/ast"
	"lume/frontend-go/pkg/diagnostics"
)

// EntryNames are the fixed entry-point names tried after the configured one.
type EntryNames struct {
	Default string
	Legacy  string
}

// DefaultEntryNames holds the current and the legacy runtime entry names.
var DefaultEntryNames = EntryNames{Default: "main", Legacy: "Main"}

// EntryErrorKind enumerates entry-point failures.
type EntryErrorKind int

const (
	EntryNotFound EntryErrorKind = iota
	EntryMultiple
	EntryMultipleRules
	EntryArguments
)

func (k EntryErrorKind) String() string {
	switch k {
	case EntryNotFound:
		return "not-found"
	case EntryMultiple:
		return "multiple"
	case EntryMultipleRules:
		return "multiple-rules"
	case EntryArguments:
		return "arguments"
	default:
		return fmt.Sprintf("EntryErrorKind(%d)", int(k))
	}
}

// EntryError describes why a program has no usable entry point. Names holds
// the missing name for EntryNotFound and the present candidates, in priority
// order, for EntryMultiple.
type EntryError struct {
	Kind  EntryErrorKind
	Names []string
}

func (e *EntryError) Error() string {
	switch e.Kind {
	case EntryNotFound:
		return fmt.Sprintf("File has no '%s' definition", e.name(0))
	case EntryMultiple:
		switch len(e.Names) {
		case 2:
			return fmt.Sprintf("File has both '%s' and '%s' definitions", e.Names[0], e.Names[1])
		case 3:
			return fmt.Sprintf("File has '%s', '%s' and '%s' definitions", e.Names[0], e.Names[1], e.Names[2])
		default:
			return fmt.Sprintf("File has multiple entry point definitions %q", e.Names)
		}
	case EntryMultipleRules:
		return "Main definition can't have more than one rule"
	case EntryArguments:
		return "Main definition can't have any arguments"
	default:
		return "invalid entry point"
	}
}

func (e *EntryError) name(i int) string {
	if i < len(e.Names) {
		return e.Names[i]
	}
	return ""
}

// Is matches another *EntryError of the same kind, so callers can test with
// errors.Is(err, &check.EntryError{Kind: check.EntryArguments}).
func (e *EntryError) Is(target error) bool {
	other, ok := target.(*EntryError)
	return ok && other.Kind == e.Kind
}

// HasEntrypoint picks the program's entry point from the configured name,
// then names.Default, then names.Legacy. Every problem found is recorded in
// book.Diagnostics; the returned bool is false when no usable entry point
// exists. When several candidates are present the highest-priority one is
// still used after recording the ambiguity.
func HasEntrypoint(book *ast.Book, names EntryNames) (string, bool) {
	if book.Diagnostics == nil {
		book.Diagnostics = diagnostics.NewSink()
	}
	candidates := possibleEntryPoints(book, names)

	switch len(candidates) {
	case 0:
		missing := names.Default
		if book.Entrypoint != "" {
			missing = book.Entrypoint
		}
		book.Diagnostics.Error(&EntryError{Kind: EntryNotFound, Names: []string{missing}})
		return "", false
	case 1:
		name, err := ValidateEntryPoint(candidates[0])
		if err != nil {
			book.Diagnostics.Error(err)
			return "", false
		}
		return name, true
	default:
		entry, err := ValidateEntryPoint(candidates[0])
		found := make([]string, len(candidates))
		for i, def := range candidates {
			found[i] = def.Name
		}
		book.Diagnostics.Error(&EntryError{Kind: EntryMultiple, Names: found})
		if err != nil {
			book.Diagnostics.Error(err)
			return "", false
		}
		return entry, true
	}
}

// ValidateEntryPoint checks that def can start a program: a single rule that
// takes no arguments.
func ValidateEntryPoint(def *ast.Definition) (string, error) {
	if len(def.Rules) > 1 {
		return "", &EntryError{Kind: EntryMultipleRules}
	}
	if len(def.Rules) == 1 && def.Rules[0] != nil && def.Rules[0].Arity() > 0 {
		return "", &EntryError{Kind: EntryArguments}
	}
	return def.Name, nil
}

// possibleEntryPoints returns the present candidates in priority order. A
// configured name equal to one of the fixed names is looked up once.
func possibleEntryPoints(book *ast.Book, names EntryNames) []*ast.Definition {
	order := []string{book.Entrypoint, names.Default, names.Legacy}
	seen := make(map[string]struct{}, len(order))
	var out []*ast.Definition
	for _, name := range order {
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		if def, ok := book.Get(name); ok {
			out = append(out, def)
		}
	}
	return out
}
