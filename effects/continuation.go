package effects

type arrow = func(any) Eff[any]

// arrs is a persistent catenable queue of arrows: a leaf holds one arrow,
// an inner node the concatenation of left and right. A leaf may also carry
// the on-abandon action that applies while it has not been passed.
type arrs struct {
	f           arrow
	abandon     func() Last
	left, right *arrs
}

// viewl splits off the first leaf, rotating left spines into right spines
// as it goes so that repeated views are amortized O(1).
func (q *arrs) viewl() (*arrs, *arrs) {
	for q.f == nil {
		l := q.left
		if l.f != nil {
			return l, q.right
		}
		q = &arrs{left: l.left, right: &arrs{left: l.right, right: q.right}}
	}
	return q, nil
}

// Continuation is the rest of a computation after an effect: a sequence of
// arrows applied left to right. It also knows the on-abandon actions of the
// computations it has not finished yet, for interpreters that discard it
// instead of resuming it.
//
// The zero Continuation is the identity.
type Continuation struct {
	q *arrs
}

// Lift makes a single-arrow continuation.
func Lift(f func(any) Eff[any]) Continuation {
	return Continuation{q: &arrs{f: f}}
}

// delegate makes a single-arrow continuation that stands for another one,
// reporting abandon as its on-abandon action.
func delegate(f func(any) Eff[any], abandon func() Last) Continuation {
	return Continuation{q: &arrs{f: f, abandon: abandon}}
}

func identity() Continuation {
	return Lift(passThrough)
}

func passThrough(x any) Eff[any] {
	return Pure[any](x)
}

// Append adds f after the last arrow in O(1).
func (c Continuation) Append(f func(any) Eff[any]) Continuation {
	return c.Concat(Lift(f))
}

// Concat runs c, then next.
func (c Continuation) Concat(next Continuation) Continuation {
	switch {
	case c.q == nil:
		return next
	case next.q == nil:
		return c
	}
	return Continuation{q: &arrs{left: c.q, right: next.q}}
}

// WithOnAbandon registers l for the part of the computation c has left.
// Once every arrow of c has been applied l no longer applies.
func (c Continuation) WithOnAbandon(l Last) Continuation {
	if l.IsNone() {
		return c
	}
	return c.Concat(delegate(passThrough, func() Last { return l }))
}

// OnAbandon returns the action to attach to a result when an interpreter
// drops this continuation without resuming it.
func (c Continuation) OnAbandon() Last {
	var out Last
	if c.q == nil {
		return out
	}
	stack := []*arrs{c.q}
	for len(stack) > 0 {
		q := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if q.f != nil {
			if q.abandon != nil {
				out = out.Then(q.abandon())
			}
			continue
		}
		stack = append(stack, q.right, q.left)
	}
	return out
}

// Apply resumes the continuation with x. Arrows are applied iteratively
// while they return pure values; the first suspended result gets the
// remaining arrows spliced onto its own continuation.
func (c Continuation) Apply(x any) Eff[any] {
	if c.q == nil {
		return Pure[any](x)
	}
	var acc Last
	q := c.q
	for {
		leaf, rest := q.viewl()
		r := leaf.f(x)
		if rest == nil {
			return AddLast(r, acc)
		}
		if r.n.kind == pureKind {
			acc = acc.Then(r.n.last)
			x = r.n.value
			q = rest
			continue
		}
		r.n.k = r.n.k.Concat(Continuation{q: rest})
		return AddLast(r, acc)
	}
}
