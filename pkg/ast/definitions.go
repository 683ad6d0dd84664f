package ast

import (
	"fmt"
	"sort"

	"lume/frontend-go/pkg/diagnostics"
)

// Rule is one clause of a definition.
type Rule struct {
	Patterns []Pattern `json:"patterns"`
	Body     Term      `json:"body"`
}

func NewRule(patterns []Pattern, body Term) *Rule {
	return &Rule{Patterns: patterns, Body: body}
}

// Arity reports how many arguments the rule takes.
func (r *Rule) Arity() int { return len(r.Patterns) }

// Definition is a named function. More than one rule means the definition
// matches on its arguments clause by clause.
type Definition struct {
	Name  string  `json:"name"`
	Rules []*Rule `json:"rules"`
}

func NewDefinition(name string, rules []*Rule) *Definition {
	return &Definition{Name: name, Rules: rules}
}

// Book is the whole-program container handed from pass to pass.
type Book struct {
	Defs map[string]*Definition
	// Order lists definition names in insertion order.
	Order []string
	// Entrypoint is the user-configured entry name; empty when unset.
	Entrypoint  string
	Diagnostics *diagnostics.Sink
}

// NewBook returns an empty program with a fresh diagnostics sink.
func NewBook() *Book {
	return &Book{
		Defs:        make(map[string]*Definition),
		Diagnostics: diagnostics.NewSink(),
	}
}

// AddDefinition inserts def, rejecting duplicate names.
func (b *Book) AddDefinition(def *Definition) error {
	if def == nil {
		return fmt.Errorf("ast: nil definition")
	}
	if def.Name == "" {
		return fmt.Errorf("ast: definition name must be provided")
	}
	if _, exists := b.Defs[def.Name]; exists {
		return fmt.Errorf("ast: duplicate definition %q", def.Name)
	}
	b.Defs[def.Name] = def
	b.Order = append(b.Order, def.Name)
	return nil
}

// Get looks up a definition by name.
func (b *Book) Get(name string) (*Definition, bool) {
	if b == nil || name == "" {
		return nil, false
	}
	def, ok := b.Defs[name]
	return def, ok && def != nil
}

// Definitions returns the definitions in insertion order. Entries placed in
// Defs directly, without going through AddDefinition, follow sorted by name.
func (b *Book) Definitions() []*Definition {
	out := make([]*Definition, 0, len(b.Defs))
	seen := make(map[string]struct{}, len(b.Order))
	for _, name := range b.Order {
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		if def, ok := b.Defs[name]; ok && def != nil {
			out = append(out, def)
		}
	}
	var rest []string
	for name, def := range b.Defs {
		if _, ok := seen[name]; !ok && def != nil {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	for _, name := range rest {
		out = append(out, b.Defs[name])
	}
	return out
}
