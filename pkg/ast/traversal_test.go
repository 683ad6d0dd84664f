package ast

import (
	"reflect"
	"sort"
	"testing"
)

func TestChildSlotsReplaceInPlace(t *testing.T) {
	app := NewApp(V("f"), V("x"))
	slots := ChildSlots(app)
	if len(slots) != 2 {
		t.Fatalf("expected 2 slots, got %d", len(slots))
	}
	*slots[1] = N(4)
	if !Equal(app, NewApp(V("f"), N(4))) {
		t.Fatalf("slot write not visible: %s", String(app))
	}
}

func TestChildrenPerVariant(t *testing.T) {
	cases := []struct {
		name string
		term Term
		want int
	}{
		{"var", V("x"), 0},
		{"ref", R("main"), 0},
		{"era", NewEra(), 0},
		{"num", N(1), 0},
		{"str", S("s"), 0},
		{"lam", L("x", V("x")), 1},
		{"app", NewApp(V("f"), V("x")), 2},
		{"use", UseIn("x", N(1), V("x")), 2},
		{"let", LetIn(PV("x"), N(1), V("x")), 2},
		{"tup", T(N(1), N(2), N(3)), 3},
		{"opr", Op(OpMul, N(1), N(2)), 2},
		{"mat", Match(V("l"), Arm("Nil", nil, N(0)), Arm("Cons", []string{"h", "t"}, V("h"))), 3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := len(Children(tc.term)); got != tc.want {
				t.Fatalf("Children = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestCloneIsDeepAndEqual(t *testing.T) {
	var orig Term = LetIn(PT(PV("a"), PC("Pair", PV("b"), PV(""))), T(N(1), S("s")),
		Match(V("a"), Arm("Some", []string{"v"}, UseIn("", V("v"), L("z", NewEra())))))
	dup := Clone(orig)
	if !Equal(orig, dup) {
		t.Fatalf("clone differs: %s vs %s", String(orig), String(dup))
	}
	dup.(*Let).Pattern.(*PTup).Elements[0].(*PVar).Name = "changed"
	dup.(*Let).Next.(*Mat).Arms[0].Fields[0] = "w"
	if PatternString(orig.(*Let).Pattern) != "(a, (Pair b *))" {
		t.Fatalf("pattern shared between clone and original: %s", PatternString(orig.(*Let).Pattern))
	}
	if orig.(*Let).Next.(*Mat).Arms[0].Fields[0] != "v" {
		t.Fatalf("arm fields shared between clone and original")
	}
}

func TestEqualDistinguishesBinders(t *testing.T) {
	if Equal(L("x", V("x")), L("y", V("y"))) {
		t.Fatalf("Equal ignores binder names")
	}
	if Equal(UseIn("", N(1), N(2)), UseIn("a", N(1), N(2))) {
		t.Fatalf("Equal ignores use names")
	}
	if !Equal(nil, nil) || Equal(nil, N(1)) {
		t.Fatalf("Equal mishandles nil")
	}
}

func TestFreeVars(t *testing.T) {
	term := A(L("x", A(V("x"), V("y"))),
		UseIn("u", V("z"), V("u")),
		LetIn(PT(PV("p"), PV("q")), V("w"), T(V("p"), V("q"), V("r"))),
		Match(V("m"), Arm("Cons", []string{"h", "t"}, A(V("h"), V("k")))),
	)
	var got []string
	for name := range FreeVars(term) {
		got = append(got, name)
	}
	sort.Strings(got)
	want := []string{"k", "m", "r", "w", "y", "z"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("FreeVars = %v, want %v", got, want)
	}
}

func TestWalkSkipsChildren(t *testing.T) {
	term := T(L("x", V("x")), V("y"))
	var seen []NodeType
	Walk(term, func(n Term) bool {
		seen = append(seen, n.NodeType())
		return n.NodeType() != NodeLam
	})
	want := []NodeType{NodeTup, NodeLam, NodeVar}
	if !reflect.DeepEqual(seen, want) {
		t.Fatalf("Walk visited %v, want %v", seen, want)
	}
}

func TestPatternBinds(t *testing.T) {
	pat := PC("Node", PV("l"), PT(PV("k"), PV("")), NewPNum(3), PV("r"))
	got := PatternBinds(pat)
	want := []string{"l", "k", "r"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("PatternBinds = %v, want %v", got, want)
	}
	if !PatternBindsName(pat, "k") || PatternBindsName(pat, "x") {
		t.Fatalf("PatternBindsName mismatch")
	}
}

func TestBookPreservesOrderAndRejectsDuplicates(t *testing.T) {
	book := BookOf(Def("b", Rl(N(1))), Def("a", Rl(N(2))))
	if err := book.AddDefinition(Def("a", Rl(N(3)))); err == nil {
		t.Fatalf("expected duplicate definition error")
	}
	book.Defs["c"] = Def("c", Rl(N(4)))
	var names []string
	for _, def := range book.Definitions() {
		names = append(names, def.Name)
	}
	if want := []string{"b", "a", "c"}; !reflect.DeepEqual(names, want) {
		t.Fatalf("Definitions order = %v, want %v", names, want)
	}
}
