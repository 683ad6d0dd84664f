package ast

import "testing"

func TestStringRendersSurfaceSyntax(t *testing.T) {
	cases := []struct {
		term Term
		want string
	}{
		{A(L("x", V("x")), L("x", V("x")), L("x", V("x"))), "(λx x λx x λx x)"},
		{UseIn("id", L("x", V("x")), A(V("id"), V("id"))), "use id = λx x; (id id)"},
		{UseIn("", N(1), NewEra()), "use * = 1; *"},
		{LetIn(PT(PV("a"), PV("")), T(N(1), S("b")), V("a")), `let (a, *) = (1, "b"); a`},
		{Op(OpAdd, N(1), V("y")), "(+ 1 y)"},
		{L("", N(0)), "λ* 0"},
		{Match(V("l"), Arm("Nil", nil, N(0)), Arm("Cons", []string{"h", ""}, V("h"))), "match l { Nil: 0; Cons h *: h }"},
	}
	for _, tc := range cases {
		if got := String(tc.term); got != tc.want {
			t.Fatalf("String = %q, want %q", got, tc.want)
		}
	}
}

func TestDefinitionString(t *testing.T) {
	def := Def("len",
		Rl(N(0), PC("Nil")),
		Rl(Op(OpAdd, N(1), A(R("len"), V("t"))), PC("Cons", PV(""), PV("t"))),
	)
	want := "len Nil = 0\nlen (Cons * t) = (+ 1 (len t))"
	if got := def.String(); got != want {
		t.Fatalf("Definition.String = %q, want %q", got, want)
	}
}
