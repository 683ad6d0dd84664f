package check

import (
	"fmt"

	"lume/frontend-go/pkg/ast"
	"lume/frontend-go/pkg/diagnostics"
)

// ArityError reports a rule whose argument count differs from the first rule
// of its definition.
type ArityError struct {
	Rule int
	Want int
	Got  int
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("rule %d takes %d arguments, expected %d", e.Rule, e.Got, e.Want)
}

// CheckArity records a definition error for every rule that disagrees with
// the arity of its definition's first rule.
func CheckArity(book *ast.Book) {
	if book.Diagnostics == nil {
		book.Diagnostics = diagnostics.NewSink()
	}
	for _, def := range book.Definitions() {
		want := -1
		for i, rule := range def.Rules {
			if rule == nil {
				continue
			}
			if want < 0 {
				want = rule.Arity()
				continue
			}
			if got := rule.Arity(); got != want {
				book.Diagnostics.DefinitionError(def.Name, &ArityError{Rule: i, Want: want, Got: got})
			}
		}
	}
}
