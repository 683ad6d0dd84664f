// Package stackguard lets deep recursive tree walks run without exhausting a
// goroutine stack.
//
// A Guard counts nested Do calls. While the current segment has headroom the
// continuation runs inline; once the segment is full the continuation runs on
// a fresh goroutine, with a fresh stack, and the caller blocks until it is
// done. Results and side effects are the same as plain recursion.
package stackguard

// DefaultSegment is the number of nested frames run on one goroutine before
// the guard hands off to a new one.
const DefaultSegment = 512

// Guard tracks recursion depth for a single logical traversal. A Guard is not
// safe for concurrent use by independent traversals; give each its own.
type Guard struct {
	segment  int
	depth    int
	total    int
	maxTotal int
	handoffs int
}

// Option configures a Guard.
type Option func(*Guard)

// WithSegment sets how many nested frames run on one goroutine.
func WithSegment(n int) Option {
	return func(g *Guard) {
		if n > 0 {
			g.segment = n
		}
	}
}

// New returns a guard ready for use.
func New(opts ...Option) *Guard {
	g := &Guard{segment: DefaultSegment}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Do runs fn as one more level of recursion.
func (g *Guard) Do(fn func()) {
	if g == nil {
		fn()
		return
	}
	g.total++
	if g.total > g.maxTotal {
		g.maxTotal = g.total
	}
	defer func() { g.total-- }()

	if g.depth < g.segment {
		g.depth++
		defer func() { g.depth-- }()
		fn()
		return
	}

	saved := g.depth
	g.depth = 1
	g.handoffs++
	defer func() { g.depth = saved }()
	if p := runOnFreshStack(fn); p != nil {
		panic(p.value)
	}
}

// Depth reports the current nesting level across all segments.
func (g *Guard) Depth() int {
	if g == nil {
		return 0
	}
	return g.total
}

// MaxDepth reports the deepest nesting level seen so far.
func (g *Guard) MaxDepth() int {
	if g == nil {
		return 0
	}
	return g.maxTotal
}

// Handoffs reports how many times a continuation moved to a new goroutine.
func (g *Guard) Handoffs() int {
	if g == nil {
		return 0
	}
	return g.handoffs
}

// Call runs fn through g and returns its result unchanged.
func Call[T any](g *Guard, fn func() T) T {
	var out T
	g.Do(func() { out = fn() })
	return out
}

type recovered struct {
	value any
}

func runOnFreshStack(fn func()) *recovered {
	done := make(chan *recovered, 1)
	go func() {
		var p *recovered
		defer func() {
			if r := recover(); r != nil {
				p = &recovered{value: r}
			}
			done <- p
		}()
		fn()
	}()
	return <-done
}
