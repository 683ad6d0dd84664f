package ast

import "lume/frontend-go/pkg/stackguard"

type Pattern interface {
	Node
	patternNode()
}

type patternMarker struct{}

func (patternMarker) patternNode() {}

// PVar binds the matched value. An empty Name is a wildcard.
type PVar struct {
	nodeImpl
	patternMarker

	Name string `json:"name,omitempty"`
}

func NewPVar(name string) *PVar {
	return &PVar{nodeImpl: newNodeImpl(NodePVar), Name: name}
}

type PCtr struct {
	nodeImpl
	patternMarker

	Name string    `json:"name"`
	Args []Pattern `json:"args,omitempty"`
}

func NewPCtr(name string, args []Pattern) *PCtr {
	return &PCtr{nodeImpl: newNodeImpl(NodePCtr), Name: name, Args: args}
}

type PNum struct {
	nodeImpl
	patternMarker

	Value int64 `json:"value"`
}

func NewPNum(value int64) *PNum {
	return &PNum{nodeImpl: newNodeImpl(NodePNum), Value: value}
}

type PTup struct {
	nodeImpl
	patternMarker

	Elements []Pattern `json:"elements"`
}

func NewPTup(elements []Pattern) *PTup {
	return &PTup{nodeImpl: newNodeImpl(NodePTup), Elements: elements}
}

// PatternBinds returns the names bound by p, left to right.
func PatternBinds(p Pattern) []string {
	var out []string
	collectPatternBinds(stackguard.New(), p, &out)
	return out
}

// PatternBindsName reports whether p binds name anywhere.
func PatternBindsName(p Pattern, name string) bool {
	for _, bound := range PatternBinds(p) {
		if bound == name {
			return true
		}
	}
	return false
}

func collectPatternBinds(g *stackguard.Guard, p Pattern, out *[]string) {
	switch pat := p.(type) {
	case *PVar:
		if pat.Name != "" {
			*out = append(*out, pat.Name)
		}
	case *PCtr:
		g.Do(func() {
			for _, arg := range pat.Args {
				collectPatternBinds(g, arg, out)
			}
		})
	case *PTup:
		g.Do(func() {
			for _, el := range pat.Elements {
				collectPatternBinds(g, el, out)
			}
		})
	}
}

// RenamePatternVar rewrites every binder of from in p to to.
func RenamePatternVar(p Pattern, from, to string) {
	renamePatternVar(stackguard.New(), p, from, to)
}

func renamePatternVar(g *stackguard.Guard, p Pattern, from, to string) {
	switch pat := p.(type) {
	case *PVar:
		if pat.Name == from {
			pat.Name = to
		}
	case *PCtr:
		g.Do(func() {
			for _, arg := range pat.Args {
				renamePatternVar(g, arg, from, to)
			}
		})
	case *PTup:
		g.Do(func() {
			for _, el := range pat.Elements {
				renamePatternVar(g, el, from, to)
			}
		})
	}
}

func clonePattern(g *stackguard.Guard, p Pattern) Pattern {
	switch pat := p.(type) {
	case nil:
		return nil
	case *PVar:
		return NewPVar(pat.Name)
	case *PNum:
		return NewPNum(pat.Value)
	case *PCtr:
		return stackguard.Call(g, func() Pattern {
			return NewPCtr(pat.Name, clonePatterns(g, pat.Args))
		})
	case *PTup:
		return stackguard.Call(g, func() Pattern {
			return NewPTup(clonePatterns(g, pat.Elements))
		})
	default:
		return p
	}
}

func clonePatterns(g *stackguard.Guard, ps []Pattern) []Pattern {
	if ps == nil {
		return nil
	}
	out := make([]Pattern, len(ps))
	for i, p := range ps {
		out[i] = clonePattern(g, p)
	}
	return out
}

func patternsEqual(g *stackguard.Guard, a, b Pattern) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.NodeType() != b.NodeType() {
		return false
	}
	switch pa := a.(type) {
	case *PVar:
		return pa.Name == b.(*PVar).Name
	case *PNum:
		return pa.Value == b.(*PNum).Value
	case *PCtr:
		pb := b.(*PCtr)
		if pa.Name != pb.Name || len(pa.Args) != len(pb.Args) {
			return false
		}
		return stackguard.Call(g, func() bool {
			for i := range pa.Args {
				if !patternsEqual(g, pa.Args[i], pb.Args[i]) {
					return false
				}
			}
			return true
		})
	case *PTup:
		pb := b.(*PTup)
		if len(pa.Elements) != len(pb.Elements) {
			return false
		}
		return stackguard.Call(g, func() bool {
			for i := range pa.Elements {
				if !patternsEqual(g, pa.Elements[i], pb.Elements[i]) {
					return false
				}
			}
			return true
		})
	}
	return false
}
