package ast

import (
	"fmt"

	"lume/frontend-go/pkg/stackguard"
)

// Subst replaces every free occurrence of name in t with its own deep copy of
// value and returns the rewritten term. t is rewritten in place; the returned
// root differs from t only when t itself is the variable being replaced.
//
// Binders that re-bind name hide their scope from the substitution. Binders
// that would capture a free variable of value are renamed.
func Subst(t Term, name string, value Term) Term {
	if name == "" {
		return t
	}
	s := &substituter{
		guard:     stackguard.New(),
		name:      name,
		value:     value,
		valueFree: FreeVars(value),
		renames:   make(map[string][]string),
	}
	if len(s.valueFree) > 0 {
		s.occurs = make(map[Term]bool)
		s.used = make(map[string]struct{})
		s.counters = make(map[string]int)
		for v := range s.valueFree {
			s.used[v] = struct{}{}
		}
		s.used[name] = struct{}{}
		s.scan(t)
	}
	s.subst(&t, true)
	return t
}

type substituter struct {
	guard     *stackguard.Guard
	name      string
	value     Term
	valueFree map[string]struct{}

	// occurs records, for the body of every binder, whether name occurs
	// free in it. Only filled when value has free variables.
	occurs   map[Term]bool
	used     map[string]struct{}
	counters map[string]int

	// renames holds the binder renames in scope, innermost last. An entry
	// equal to its key shadows an outer rename.
	renames map[string][]string
}

// scan walks t once, collecting every name in use and the free occurrences
// of name per binder body. It reports whether name occurs free in t.
func (s *substituter) scan(t Term) bool {
	switch n := t.(type) {
	case nil:
		return false
	case *Var:
		s.use(n.Name)
		return n.Name == s.name
	case *Ref, *Era, *Num, *Str:
		return false
	}
	var found bool
	s.guard.Do(func() { found = s.scanCompound(t) })
	return found
}

func (s *substituter) scanCompound(t Term) bool {
	switch n := t.(type) {
	case *Lam:
		s.use(n.Name)
		return s.scanScope(n.Body, n.Name == s.name)
	case *Use:
		s.use(n.Name)
		inValue := s.scan(n.Value)
		inNext := s.scanScope(n.Next, n.Name == s.name)
		return inValue || inNext
	case *Let:
		for _, bound := range PatternBinds(n.Pattern) {
			s.use(bound)
		}
		inValue := s.scan(n.Value)
		inNext := s.scanScope(n.Next, PatternBindsName(n.Pattern, s.name))
		return inValue || inNext
	case *Mat:
		found := s.scan(n.Arg)
		for _, arm := range n.Arms {
			if arm == nil {
				continue
			}
			for _, field := range arm.Fields {
				s.use(field)
			}
			if s.scanScope(arm.Body, arm.Binds(s.name)) {
				found = true
			}
		}
		return found
	default:
		found := false
		for _, child := range Children(t) {
			if s.scan(child) {
				found = true
			}
		}
		return found
	}
}

func (s *substituter) scanScope(body Term, shadowed bool) bool {
	occurs := s.scan(body) && !shadowed
	s.occurs[body] = occurs
	return occurs
}

func (s *substituter) use(name string) {
	if name != "" {
		s.used[name] = struct{}{}
	}
}

// subst rewrites the term in slot. With replace unset only pending binder
// renames are applied, as inside a scope that re-binds name.
func (s *substituter) subst(slot *Term, replace bool) {
	if !replace && len(s.renames) == 0 {
		return
	}
	switch n := (*slot).(type) {
	case nil, *Ref, *Era, *Num, *Str:
		return
	case *Var:
		if replace && n.Name == s.name {
			*slot = Clone(s.value)
			return
		}
		if target, ok := s.renamed(n.Name); ok {
			n.Name = target
		}
	case *Lam:
		s.guard.Do(func() {
			s.scope(&n.Name, &n.Body, replace && n.Name != s.name)
		})
	case *Use:
		s.guard.Do(func() {
			s.subst(&n.Value, replace)
			s.scope(&n.Name, &n.Next, replace && n.Name != s.name)
		})
	case *Let:
		s.guard.Do(func() {
			s.subst(&n.Value, replace)
			inner := replace && !PatternBindsName(n.Pattern, s.name)
			var opened []string
			seen := make(map[string]struct{})
			for _, bound := range PatternBinds(n.Pattern) {
				if _, dup := seen[bound]; dup {
					continue
				}
				seen[bound] = struct{}{}
				target := s.target(bound, n.Next, inner)
				if target != bound {
					RenamePatternVar(n.Pattern, bound, target)
				}
				if s.enter(bound, target) {
					opened = append(opened, bound)
				}
			}
			s.subst(&n.Next, inner)
			s.leave(opened...)
		})
	case *Mat:
		s.guard.Do(func() {
			s.subst(&n.Arg, replace)
			for _, arm := range n.Arms {
				if arm == nil {
					continue
				}
				inner := replace && !arm.Binds(s.name)
				var opened []string
				for i, field := range arm.Fields {
					target := s.target(field, arm.Body, inner)
					arm.Fields[i] = target
					if s.enter(field, target) {
						opened = append(opened, field)
					}
				}
				s.subst(&arm.Body, inner)
				s.leave(opened...)
			}
		})
	default:
		s.guard.Do(func() {
			for _, child := range ChildSlots(*slot) {
				s.subst(child, replace)
			}
		})
	}
}

// scope handles a single-name binder over body.
func (s *substituter) scope(binder *string, body *Term, replace bool) {
	old := *binder
	target := s.target(old, *body, replace)
	*binder = target
	opened := s.enter(old, target)
	s.subst(body, replace)
	if opened {
		s.leave(old)
	}
}

// target picks the name binder should carry: a fresh one when it would
// capture a free variable of the value inside body, itself otherwise.
func (s *substituter) target(binder string, body Term, replace bool) string {
	if !replace || binder == "" {
		return binder
	}
	if _, free := s.valueFree[binder]; !free {
		return binder
	}
	if !s.occurs[body] {
		return binder
	}
	return s.fresh(binder)
}

func (s *substituter) fresh(base string) string {
	for {
		s.counters[base]++
		candidate := fmt.Sprintf("%s%%%d", base, s.counters[base])
		if _, taken := s.used[candidate]; !taken {
			s.used[candidate] = struct{}{}
			return candidate
		}
	}
}

// enter opens the scope of binder renamed to target. It reports whether an
// entry was pushed; identity entries are only needed to hide an outer rename.
func (s *substituter) enter(binder, target string) bool {
	if binder == "" {
		return false
	}
	if binder == target {
		if _, renamed := s.renames[binder]; !renamed {
			return false
		}
	}
	s.renames[binder] = append(s.renames[binder], target)
	return true
}

func (s *substituter) leave(binders ...string) {
	for _, binder := range binders {
		stack := s.renames[binder]
		if len(stack) <= 1 {
			delete(s.renames, binder)
			continue
		}
		s.renames[binder] = stack[:len(stack)-1]
	}
}

func (s *substituter) renamed(name string) (string, bool) {
	stack := s.renames[name]
	if len(stack) == 0 {
		return "", false
	}
	target := stack[len(stack)-1]
	return target, target != name
}
