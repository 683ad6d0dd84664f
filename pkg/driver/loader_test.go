package driver

import (
	"strings"
	"testing"

	"lume/frontend-go/pkg/ast"
)

const sampleProgram = `
entrypoint: start
definitions:
  - name: start
    rules:
      - body:
          type: Use
          name: id
          value: {type: Lam, name: x, body: x}
          next:
            type: App
            fun: {type: App, fun: id, arg: id}
            arg: id
  - name: len
    rules:
      - patterns: [{type: PCtr, name: Nil}]
        body: 0
      - patterns:
          - type: PCtr
            name: Cons
            args: ["*", t]
        body:
          type: Opr
          op: "+"
          left: 1
          right: {type: App, fun: {type: Ref, name: len}, arg: t}
  - name: misc
    rules:
      - patterns: [n, 3]
        body:
          type: Let
          pattern: {type: PTup, elements: [a, "*"]}
          value: {type: Tup, elements: [{type: Str, value: hi}, {type: Era}]}
          next:
            type: Mat
            arg: n
            arms:
              - {ctor: Nil, body: {type: Num, value: 0}}
              - {ctor: Cons, fields: [h, "*"], body: {type: Use, value: h, next: a}}
`

func TestParseProgram(t *testing.T) {
	book, err := ParseProgram([]byte(sampleProgram), "sample.yml")
	if err != nil {
		t.Fatalf("ParseProgram: %v", err)
	}
	if book.Entrypoint != "start" {
		t.Fatalf("entrypoint = %q, want start", book.Entrypoint)
	}
	if got := strings.Join(book.Order, ","); got != "start,len,misc" {
		t.Fatalf("order = %s", got)
	}
	want := map[string]string{
		"start": "start = use id = λx x; (id id id)",
		"len":   "len Nil = 0\nlen (Cons * t) = (+ 1 (len t))",
		"misc":  `misc n 3 = let (a, *) = ("hi", *); match n { Nil: 0; Cons h *: use * = h; a }`,
	}
	for name, text := range want {
		if got := mustGet(t, book, name).String(); got != text {
			t.Fatalf("%s =\n%s\nwant\n%s", name, got, text)
		}
	}
	if book.Diagnostics == nil {
		t.Fatalf("expected a diagnostics sink on the book")
	}
}

func TestParseProgramShorthands(t *testing.T) {
	book, err := ParseProgram([]byte(`
definitions:
  - name: main
    rules:
      - body: {type: Lam, name: "*", body: "*"}
`), "short.yml")
	if err != nil {
		t.Fatalf("ParseProgram: %v", err)
	}
	body := mustGet(t, book, "main").Rules[0].Body
	lam, ok := body.(*ast.Lam)
	if !ok || lam.Name != "" {
		t.Fatalf("expected an erased lambda, got %s", ast.String(body))
	}
	if _, ok := lam.Body.(*ast.Era); !ok {
		t.Fatalf("expected era body, got %T", lam.Body)
	}
}

func TestParseProgramErrors(t *testing.T) {
	cases := []struct {
		name   string
		source string
		want   string
	}{
		{"empty", "", "is empty"},
		{"unknown key", "defs: []\n", "defs"},
		{"missing name", "definitions:\n  - rules: [{body: 1}]\n", "definitions[0] missing name"},
		{"no rules", "definitions:\n  - name: f\n", `definition "f" has no rules`},
		{"missing body", "definitions:\n  - name: f\n    rules: [{patterns: [x]}]\n", "missing body"},
		{"unknown term", "definitions:\n  - name: f\n    rules: [{body: {type: loop}}]\n", `unsupported term type "loop"`},
		{"untagged term", "definitions:\n  - name: f\n    rules: [{body: {name: x}}]\n", "term missing type"},
		{"lam without body", "definitions:\n  - name: f\n    rules: [{body: {type: Lam, name: x}}]\n", "Lam missing body"},
		{"var without name", "definitions:\n  - name: f\n    rules: [{body: {type: Var}}]\n", "Var missing name"},
		{"fractional number", "definitions:\n  - name: f\n    rules: [{body: {type: Num, value: 1.5}}]\n", "not an integer"},
		{"number overflows", "definitions:\n  - name: f\n    rules: [{body: {type: Num, value: 18446744073709551615}}]\n", "value 18446744073709551615 is out of range"},
		{"bare number overflows", "definitions:\n  - name: f\n    rules: [{body: 18446744073709551615}]\n", "number 18446744073709551615 is out of range"},
		{"bad pattern", "definitions:\n  - name: f\n    rules: [{patterns: [[1]], body: 1}]\n", "pattern 0"},
		{
			"duplicate definition",
			"definitions:\n  - name: f\n    rules: [{body: 1}]\n  - name: f\n    rules: [{body: 2}]\n",
			"duplicate",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseProgram([]byte(tc.source), "bad.yml")
			if err == nil {
				t.Fatalf("expected error containing %q", tc.want)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error = %v, want substring %q", err, tc.want)
			}
			if !strings.HasPrefix(err.Error(), "loader: ") {
				t.Fatalf("error %q missing loader prefix", err)
			}
		})
	}
}

func TestLoadProgramFromDisk(t *testing.T) {
	path := writeFile(t, t.TempDir(), "prog.yml", sampleProgram)
	book, err := LoadProgram(path)
	if err != nil {
		t.Fatalf("LoadProgram: %v", err)
	}
	if len(book.Defs) != 3 {
		t.Fatalf("expected 3 definitions, got %d", len(book.Defs))
	}
}

func TestParseProgramDeepNesting(t *testing.T) {
	const depth = 2000
	var b strings.Builder
	b.WriteString("definitions:\n  - name: main\n    rules:\n      - body: ")
	for i := 0; i < depth; i++ {
		b.WriteString("{type: Lam, name: x, body: ")
	}
	b.WriteString("x")
	b.WriteString(strings.Repeat("}", depth))
	b.WriteString("\n")

	book, err := ParseProgram([]byte(b.String()), "deep.yml")
	if err != nil {
		t.Fatalf("ParseProgram: %v", err)
	}
	count := 0
	ast.Walk(mustGet(t, book, "main").Rules[0].Body, func(ast.Term) bool {
		count++
		return true
	})
	if count != depth+1 {
		t.Fatalf("walked %d nodes, want %d", count, depth+1)
	}
}

func mustGet(t *testing.T, book *ast.Book, name string) *ast.Definition {
	t.Helper()
	def, ok := book.Get(name)
	if !ok {
		t.Fatalf("definition %q not found", name)
	}
	return def
}
