package ast

import (
	"strconv"
	"strings"

	"lume/frontend-go/pkg/stackguard"
)

// String renders t in surface syntax.
func String(t Term) string {
	p := &printer{guard: stackguard.New()}
	p.term(t)
	return p.b.String()
}

// PatternString renders p in surface syntax.
func PatternString(p Pattern) string {
	pr := &printer{guard: stackguard.New()}
	pr.pattern(p)
	return pr.b.String()
}

// String renders every rule of the definition, one per line.
func (d *Definition) String() string {
	if d == nil {
		return ""
	}
	lines := make([]string, 0, len(d.Rules))
	for _, rule := range d.Rules {
		if rule == nil {
			continue
		}
		var b strings.Builder
		b.WriteString(d.Name)
		for _, pat := range rule.Patterns {
			b.WriteByte(' ')
			b.WriteString(PatternString(pat))
		}
		b.WriteString(" = ")
		b.WriteString(String(rule.Body))
		lines = append(lines, b.String())
	}
	return strings.Join(lines, "\n")
}

// String renders the whole program in definition order.
func (b *Book) String() string {
	defs := b.Definitions()
	parts := make([]string, 0, len(defs))
	for _, def := range defs {
		parts = append(parts, def.String())
	}
	return strings.Join(parts, "\n\n")
}

type printer struct {
	guard *stackguard.Guard
	b     strings.Builder
}

func (p *printer) term(t Term) {
	switch n := t.(type) {
	case nil:
		p.b.WriteString("<nil>")
	case *Var:
		p.b.WriteString(n.Name)
	case *Ref:
		p.b.WriteString(n.Name)
	case *Era:
		p.b.WriteString("*")
	case *Num:
		p.b.WriteString(strconv.FormatInt(n.Value, 10))
	case *Str:
		p.b.WriteString(strconv.Quote(n.Value))
	default:
		p.guard.Do(func() { p.compound(t) })
	}
}

func (p *printer) compound(t Term) {
	switch n := t.(type) {
	case *Lam:
		p.b.WriteString("λ")
		p.binder(n.Name)
		p.b.WriteByte(' ')
		p.term(n.Body)
	case *App:
		var args []Term
		fun := Term(n)
		for {
			app, ok := fun.(*App)
			if !ok {
				break
			}
			args = append(args, app.Arg)
			fun = app.Fun
		}
		p.b.WriteByte('(')
		p.term(fun)
		for i := len(args) - 1; i >= 0; i-- {
			p.b.WriteByte(' ')
			p.term(args[i])
		}
		p.b.WriteByte(')')
	case *Use:
		p.b.WriteString("use ")
		p.binder(n.Name)
		p.b.WriteString(" = ")
		p.term(n.Value)
		p.b.WriteString("; ")
		p.term(n.Next)
	case *Let:
		p.b.WriteString("let ")
		p.pattern(n.Pattern)
		p.b.WriteString(" = ")
		p.term(n.Value)
		p.b.WriteString("; ")
		p.term(n.Next)
	case *Tup:
		p.b.WriteByte('(')
		for i, el := range n.Elements {
			if i > 0 {
				p.b.WriteString(", ")
			}
			p.term(el)
		}
		p.b.WriteByte(')')
	case *Opr:
		p.b.WriteByte('(')
		p.b.WriteString(string(n.Op))
		p.b.WriteByte(' ')
		p.term(n.Left)
		p.b.WriteByte(' ')
		p.term(n.Right)
		p.b.WriteByte(')')
	case *Mat:
		p.b.WriteString("match ")
		p.term(n.Arg)
		p.b.WriteString(" {")
		for i, arm := range n.Arms {
			if arm == nil {
				continue
			}
			if i > 0 {
				p.b.WriteByte(';')
			}
			p.b.WriteByte(' ')
			p.b.WriteString(arm.Ctor)
			for _, field := range arm.Fields {
				p.b.WriteByte(' ')
				p.binder(field)
			}
			p.b.WriteString(": ")
			p.term(arm.Body)
		}
		p.b.WriteString(" }")
	}
}

func (p *printer) binder(name string) {
	if name == "" {
		p.b.WriteByte('*')
		return
	}
	p.b.WriteString(name)
}

func (p *printer) pattern(pat Pattern) {
	switch n := pat.(type) {
	case nil:
		p.b.WriteString("<nil>")
	case *PVar:
		p.binder(n.Name)
	case *PNum:
		p.b.WriteString(strconv.FormatInt(n.Value, 10))
	case *PCtr:
		if len(n.Args) == 0 {
			p.b.WriteString(n.Name)
			return
		}
		p.guard.Do(func() {
			p.b.WriteByte('(')
			p.b.WriteString(n.Name)
			for _, arg := range n.Args {
				p.b.WriteByte(' ')
				p.pattern(arg)
			}
			p.b.WriteByte(')')
		})
	case *PTup:
		p.guard.Do(func() {
			p.b.WriteByte('(')
			for i, el := range n.Elements {
				if i > 0 {
					p.b.WriteString(", ")
				}
				p.pattern(el)
			}
			p.b.WriteByte(')')
		})
	}
}
