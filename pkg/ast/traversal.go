package ast

import "lume/frontend-go/pkg/stackguard"

// ChildSlots returns pointers to the direct child terms of t, in source
// order. Writing through a slot replaces that child in place.
func ChildSlots(t Term) []*Term {
	switch n := t.(type) {
	case *Lam:
		return []*Term{&n.Body}
	case *App:
		return []*Term{&n.Fun, &n.Arg}
	case *Use:
		return []*Term{&n.Value, &n.Next}
	case *Let:
		return []*Term{&n.Value, &n.Next}
	case *Tup:
		slots := make([]*Term, len(n.Elements))
		for i := range n.Elements {
			slots[i] = &n.Elements[i]
		}
		return slots
	case *Opr:
		return []*Term{&n.Left, &n.Right}
	case *Mat:
		slots := make([]*Term, 0, len(n.Arms)+1)
		slots = append(slots, &n.Arg)
		for _, arm := range n.Arms {
			if arm != nil {
				slots = append(slots, &arm.Body)
			}
		}
		return slots
	default:
		return nil
	}
}

// Children returns the direct child terms of t.
func Children(t Term) []Term {
	slots := ChildSlots(t)
	if len(slots) == 0 {
		return nil
	}
	out := make([]Term, 0, len(slots))
	for _, slot := range slots {
		if *slot != nil {
			out = append(out, *slot)
		}
	}
	return out
}

// Walk visits t and its descendants in pre-order. Returning false from visit
// skips the children of the visited node.
func Walk(t Term, visit func(Term) bool) {
	walk(stackguard.New(), t, visit)
}

func walk(g *stackguard.Guard, t Term, visit func(Term) bool) {
	if t == nil || !visit(t) {
		return
	}
	g.Do(func() {
		for _, child := range Children(t) {
			walk(g, child, visit)
		}
	})
}

// Clone returns a deep copy of t that shares no nodes with it.
func Clone(t Term) Term {
	return clone(stackguard.New(), t)
}

func clone(g *stackguard.Guard, t Term) Term {
	switch n := t.(type) {
	case nil:
		return nil
	case *Var:
		return NewVar(n.Name)
	case *Ref:
		return NewRef(n.Name)
	case *Era:
		return NewEra()
	case *Num:
		return NewNum(n.Value)
	case *Str:
		return NewStr(n.Value)
	}
	return stackguard.Call(g, func() Term {
		switch n := t.(type) {
		case *Lam:
			return NewLam(n.Name, clone(g, n.Body))
		case *App:
			return NewApp(clone(g, n.Fun), clone(g, n.Arg))
		case *Use:
			return NewUse(n.Name, clone(g, n.Value), clone(g, n.Next))
		case *Let:
			return NewLet(clonePattern(g, n.Pattern), clone(g, n.Value), clone(g, n.Next))
		case *Tup:
			elements := make([]Term, len(n.Elements))
			for i, el := range n.Elements {
				elements[i] = clone(g, el)
			}
			return NewTup(elements)
		case *Opr:
			return NewOpr(n.Op, clone(g, n.Left), clone(g, n.Right))
		case *Mat:
			arms := make([]*MatchArm, 0, len(n.Arms))
			for _, arm := range n.Arms {
				if arm == nil {
					continue
				}
				fields := append([]string(nil), arm.Fields...)
				arms = append(arms, NewMatchArm(arm.Ctor, fields, clone(g, arm.Body)))
			}
			return NewMat(clone(g, n.Arg), arms)
		default:
			return t
		}
	})
}

// Equal reports whether a and b have the same structure and contents.
func Equal(a, b Term) bool {
	return equal(stackguard.New(), a, b)
}

func equal(g *stackguard.Guard, a, b Term) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.NodeType() != b.NodeType() {
		return false
	}
	switch x := a.(type) {
	case *Var:
		return x.Name == b.(*Var).Name
	case *Ref:
		return x.Name == b.(*Ref).Name
	case *Era:
		return true
	case *Num:
		return x.Value == b.(*Num).Value
	case *Str:
		return x.Value == b.(*Str).Value
	case *Lam:
		if x.Name != b.(*Lam).Name {
			return false
		}
	case *Use:
		if x.Name != b.(*Use).Name {
			return false
		}
	case *Let:
		if !patternsEqual(g, x.Pattern, b.(*Let).Pattern) {
			return false
		}
	case *Tup:
		if len(x.Elements) != len(b.(*Tup).Elements) {
			return false
		}
	case *Opr:
		if x.Op != b.(*Opr).Op {
			return false
		}
	case *Mat:
		y := b.(*Mat)
		if len(x.Arms) != len(y.Arms) {
			return false
		}
		for i := range x.Arms {
			if !armHeadsEqual(x.Arms[i], y.Arms[i]) {
				return false
			}
		}
	}
	as, bs := ChildSlots(a), ChildSlots(b)
	if len(as) != len(bs) {
		return false
	}
	return stackguard.Call(g, func() bool {
		for i := range as {
			if !equal(g, *as[i], *bs[i]) {
				return false
			}
		}
		return true
	})
}

func armHeadsEqual(a, b *MatchArm) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Ctor != b.Ctor || len(a.Fields) != len(b.Fields) {
		return false
	}
	for i := range a.Fields {
		if a.Fields[i] != b.Fields[i] {
			return false
		}
	}
	return true
}

// FreeVars returns the names referenced by Var nodes in t that no enclosing
// binder inside t captures.
func FreeVars(t Term) map[string]struct{} {
	out := make(map[string]struct{})
	freeVars(stackguard.New(), t, map[string]int{}, out)
	return out
}

func freeVars(g *stackguard.Guard, t Term, bound map[string]int, out map[string]struct{}) {
	bindAll := func(names []string) {
		for _, name := range names {
			if name != "" {
				bound[name]++
			}
		}
	}
	unbindAll := func(names []string) {
		for _, name := range names {
			if name == "" {
				continue
			}
			if bound[name]--; bound[name] == 0 {
				delete(bound, name)
			}
		}
	}
	scoped := func(names []string, body Term) {
		bindAll(names)
		freeVars(g, body, bound, out)
		unbindAll(names)
	}

	switch n := t.(type) {
	case nil:
		return
	case *Var:
		if _, ok := bound[n.Name]; !ok {
			out[n.Name] = struct{}{}
		}
		return
	case *Lam:
		g.Do(func() { scoped([]string{n.Name}, n.Body) })
	case *Use:
		g.Do(func() {
			freeVars(g, n.Value, bound, out)
			scoped([]string{n.Name}, n.Next)
		})
	case *Let:
		g.Do(func() {
			freeVars(g, n.Value, bound, out)
			scoped(PatternBinds(n.Pattern), n.Next)
		})
	case *Mat:
		g.Do(func() {
			freeVars(g, n.Arg, bound, out)
			for _, arm := range n.Arms {
				if arm != nil {
					scoped(arm.Fields, arm.Body)
				}
			}
		})
	default:
		g.Do(func() {
			for _, child := range Children(t) {
				freeVars(g, child, bound, out)
			}
		})
	}
}
