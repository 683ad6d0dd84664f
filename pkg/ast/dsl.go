package ast

// Term helpers.

func V(name string) *Var {
	return NewVar(name)
}

func R(name string) *Ref {
	return NewRef(name)
}

func N(value int64) *Num {
	return NewNum(value)
}

func S(value string) *Str {
	return NewStr(value)
}

func L(name string, body Term) *Lam {
	return NewLam(name, body)
}

// A applies fun to args left to right: A(f, a, b) is ((f a) b).
func A(fun Term, args ...Term) Term {
	out := fun
	for _, arg := range args {
		out = NewApp(out, arg)
	}
	return out
}

func UseIn(name string, value, next Term) *Use {
	return NewUse(name, value, next)
}

func LetIn(pattern Pattern, value, next Term) *Let {
	return NewLet(pattern, value, next)
}

func T(elements ...Term) *Tup {
	return NewTup(elements)
}

func Op(op Operator, left, right Term) *Opr {
	return NewOpr(op, left, right)
}

func Match(arg Term, arms ...*MatchArm) *Mat {
	return NewMat(arg, arms)
}

func Arm(ctor string, fields []string, body Term) *MatchArm {
	return NewMatchArm(ctor, fields, body)
}

// Pattern helpers.

func PV(name string) *PVar {
	return NewPVar(name)
}

func PC(name string, args ...Pattern) *PCtr {
	return NewPCtr(name, args)
}

func PT(elements ...Pattern) *PTup {
	return NewPTup(elements)
}

// Definition helpers.

func Def(name string, rules ...*Rule) *Definition {
	return NewDefinition(name, rules)
}

func Rl(body Term, patterns ...Pattern) *Rule {
	return NewRule(patterns, body)
}

// BookOf builds a program from defs, panicking on duplicate names.
func BookOf(defs ...*Definition) *Book {
	book := NewBook()
	for _, def := range defs {
		if err := book.AddDefinition(def); err != nil {
			panic(err)
		}
	}
	return book
}
