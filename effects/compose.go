package effects

// Bind sequences m with f. Binding a pure value suspends on NoEffect so
// that f runs during interpretation, never at construction.
func Bind[A, B any](m Eff[A], f func(A) Eff[B]) Eff[B] {
	g := func(x any) Eff[any] {
		return Erase(f(Coerce[A](x)))
	}
	n := m.n
	if n.kind == pureKind {
		return Eff[B]{n: node{kind: impureKind, effect: NoEffect{Value: n.value}, k: Lift(g), last: n.last}}
	}
	n.k = n.k.Append(g)
	return Eff[B]{n: n}
}

// Map transforms the value of m.
func Map[A, B any](m Eff[A], f func(A) B) Eff[B] {
	return Bind(m, func(a A) Eff[B] {
		return Pure(f(a))
	})
}

// Then runs m for its effects and continues with next.
func Then[A, B any](m Eff[A], next Eff[B]) Eff[B] {
	return Bind(m, func(A) Eff[B] {
		return next
	})
}

// As replaces the value of m with b.
func As[A, B any](m Eff[A], b B) Eff[B] {
	return Map(m, func(A) B {
		return b
	})
}

// Void discards the value of m.
func Void[A any](m Eff[A]) Eff[struct{}] {
	return As(m, struct{}{})
}

// Defer builds the computation only when it is interpreted.
func Defer[A any](f func() Eff[A]) Eff[A] {
	return Bind(Unit(), func(struct{}) Eff[A] {
		return f()
	})
}

// Pair holds the two results of Zip.
type Pair[A, B any] struct {
	First  A
	Second B
}

// Combine runs a and b as independent computations and joins their values.
// The pending effects of two suspended sides always form one batch. While
// the merged batch stays within BatchMergeThreshold the sides are resumed
// together and their later rounds are batched too. Past it the batch is
// concatenated without copying and, once its results are in, a is resumed
// before b, so a long chain of Combine neither copies its batch per step
// nor nests its joins.
func Combine[A, B, C any](a Eff[A], b Eff[B], f func(A, B) C) Eff[C] {
	switch {
	case a.n.kind == pureKind && b.n.kind == pureKind:
		out := Pure(f(Coerce[A](a.n.value), Coerce[B](b.n.value)))
		out.n.last = a.n.last.Then(b.n.last)
		return out
	case a.n.kind == pureKind:
		av := Coerce[A](a.n.value)
		return AddLast(Map(b, func(bv B) C { return f(av, bv) }), a.n.last)
	case b.n.kind == pureKind:
		bv := Coerce[B](b.n.value)
		return AddLast(Map(a, func(av A) C { return f(av, bv) }), b.n.last)
	}

	joined := func(xs []any) C {
		return f(Coerce[A](xs[0]), Coerce[B](xs[1]))
	}
	if width(a.n)+width(b.n) > BatchMergeThreshold() {
		return Map(merge(a.n, b.n), joined)
	}
	return Map(sequence([]Eff[any]{Erase(a), Erase(b)}), joined)
}

// Zip pairs the values of two independent computations.
func Zip[A, B any](a Eff[A], b Eff[B]) Eff[Pair[A, B]] {
	return Combine(a, b, func(av A, bv B) Pair[A, B] {
		return Pair[A, B]{First: av, Second: bv}
	})
}

// Traverse applies f to every element and runs the resulting computations
// as one batch. Results keep the order of xs.
func Traverse[A, B any](xs []A, f func(A) Eff[B]) Eff[[]B] {
	es := make([]Eff[any], len(xs))
	for i, x := range xs {
		es[i] = Erase(f(x))
	}
	return Map(sequence(es), castAll[B])
}

// Sequence runs independent computations as one batch.
func Sequence[A any](es []Eff[A]) Eff[[]A] {
	erased := make([]Eff[any], len(es))
	for i, e := range es {
		erased[i] = Erase(e)
	}
	return Map(sequence(erased), castAll[A])
}

func castAll[A any](xs []any) []A {
	out := make([]A, len(xs))
	for i, x := range xs {
		out[i] = Coerce[A](x)
	}
	return out
}

func width(n node) int {
	switch n.kind {
	case impureKind:
		return 1
	case impureApKind:
		return n.batch.width
	default:
		return 0
	}
}

func ropeOf(n node) *effectRope {
	if n.kind == impureKind {
		return leafRope([]Effect{n.effect})
	}
	return n.batch
}

// suspendOn resumes the continuation of a suspended node with the results
// of its effects during interpretation, not here.
func suspendOn(n node, xs []any) Eff[any] {
	if n.kind == impureKind {
		return Impure[any](NoEffect{Value: xs[0]}, n.k)
	}
	return Impure[any](NoEffect{Value: xs}, n.k)
}

// merge batches the effects of two suspended nodes. Its join binds the
// resumed sides in order, so a chain of merges unwinds through the
// continuation queue instead of the stack.
func merge(a, b node) Eff[[]any] {
	wa, wb := width(a), width(b)
	join := func(x any) Eff[any] {
		xs := CoerceBatch(x, wa+wb)
		left, right := xs[:wa:wa], xs[wa:]
		return Bind(suspendOn(a, left), func(av any) Eff[any] {
			return Erase(Map(suspendOn(b, right), func(bv any) []any {
				return []any{av, bv}
			}))
		})
	}
	return Eff[[]any]{n: node{
		kind:  impureApKind,
		batch: concatRope(ropeOf(a), ropeOf(b)),
		k: delegate(join, func() Last {
			return a.k.OnAbandon().Then(b.k.OnAbandon())
		}),
		last: a.last.Then(b.last),
	}}
}

type pending struct {
	kind  kind
	value any
	width int
	k     Continuation
}

// sequence flattens the pending effects of es into a single batch. Its join
// resumes every element and sequences the continued computations again, so
// each round of dependent effects becomes one flat batch.
func sequence(es []Eff[any]) Eff[[]any] {
	var (
		last    Last
		batch   []Effect
		waiting []Continuation
	)
	steps := make([]pending, len(es))
	for i, e := range es {
		n := e.n
		last = last.Then(n.last)
		steps[i] = pending{kind: n.kind, value: n.value, k: n.k}
		switch n.kind {
		case impureKind:
			batch = append(batch, n.effect)
			steps[i].width = 1
			waiting = append(waiting, n.k)
		case impureApKind:
			batch = append(batch, n.batch.effects()...)
			steps[i].width = n.batch.width
			waiting = append(waiting, n.k)
		}
	}

	if len(batch) == 0 {
		values := make([]any, len(steps))
		for i, s := range steps {
			values[i] = s.value
		}
		out := Pure(values)
		out.n.last = last
		return out
	}

	arity := len(batch)
	join := func(x any) Eff[any] {
		xs := CoerceBatch(x, arity)
		next := make([]Eff[any], len(steps))
		off := 0
		for i, s := range steps {
			switch s.kind {
			case pureKind:
				next[i] = Pure(s.value)
			case impureKind:
				next[i] = s.k.Apply(xs[off])
			case impureApKind:
				next[i] = s.k.Apply(xs[off : off+s.width : off+s.width])
			}
			off += s.width
		}
		return Erase(sequence(next))
	}
	return Eff[[]any]{n: node{
		kind:  impureApKind,
		batch: leafRope(batch),
		k: delegate(join, func() Last {
			var l Last
			for _, k := range waiting {
				l = l.Then(k.OnAbandon())
			}
			return l
		}),
		last: last,
	}}
}
