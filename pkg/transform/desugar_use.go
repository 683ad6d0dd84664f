// Package transform holds tree rewrites applied to rule bodies before code
// generation.
package transform

import (
	"context"

	"golang.org/x/sync/errgroup"

	"lume/frontend-go/pkg/ast"
	"lume/frontend-go/pkg/stackguard"
)

// DesugarUse inlines every named use binding in every rule body of book.
//
//	use id = λx x
//	(id id id)
//
// becomes
//
//	(λx x λx x λx x)
//
// Anonymous use bindings are kept as they are.
func DesugarUse(book *ast.Book, opts ...stackguard.Option) {
	if book == nil {
		return
	}
	for _, def := range book.Definitions() {
		for _, rule := range def.Rules {
			if rule != nil {
				DesugarUseTerm(&rule.Body, opts...)
			}
		}
	}
}

// DesugarUseParallel rewrites rule bodies concurrently, at most workers at a
// time (no limit when workers <= 0). The result is the same as DesugarUse; the
// only error returned is the context's.
func DesugarUseParallel(ctx context.Context, book *ast.Book, workers int, opts ...stackguard.Option) error {
	if book == nil {
		return nil
	}
	group, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		group.SetLimit(workers)
	}
	for _, def := range book.Definitions() {
		for _, rule := range def.Rules {
			if rule == nil {
				continue
			}
			if err := ctx.Err(); err != nil {
				_ = group.Wait()
				return err
			}
			rule := rule
			group.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				DesugarUseTerm(&rule.Body, opts...)
				return nil
			})
		}
	}
	return group.Wait()
}

// DesugarUseTerm rewrites the term held in slot, children first.
func DesugarUseTerm(slot *ast.Term, opts ...stackguard.Option) {
	desugarUse(stackguard.New(opts...), slot)
}

func desugarUse(g *stackguard.Guard, slot *ast.Term) {
	if slot == nil || *slot == nil {
		return
	}
	g.Do(func() {
		for _, child := range ast.ChildSlots(*slot) {
			desugarUse(g, child)
		}
	})

	if use, ok := (*slot).(*ast.Use); ok && use.HasName() {
		next := use.Next
		use.Next = nil
		*slot = ast.Subst(next, use.Name, use.Value)
	}
}
