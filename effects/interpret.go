package effects

// Loop interprets the effects of one family while threading a state S.
//
// Each callback returns the next computation and a resume flag. When resume
// is true the loop keeps interpreting next with the returned state; when it
// is false next is the final computation and interpretation of this segment
// ends. A callback that drops its continuation should attach k.OnAbandon()
// to the final computation.
type Loop[S any] interface {
	OnPure(a any, s S) (next Eff[any], s2 S, resume bool)
	OnEffect(e Effect, k Continuation, s S) (next Eff[any], s2 S, resume bool)
	// OnApplicativeEffect receives the family members of a batch, in batch
	// order. k expects a []any with one result per member.
	OnApplicativeEffect(es []Effect, k Continuation, s S) (next Eff[any], s2 S, resume bool)
}

// StatelessLoop is a Loop without state.
type StatelessLoop interface {
	OnPure(a any) (next Eff[any], resume bool)
	OnEffect(e Effect, k Continuation) (next Eff[any], resume bool)
	OnApplicativeEffect(es []Effect, k Continuation) (next Eff[any], resume bool)
}

// NoEffectHandler is implemented by loops that resume continuations with
// known values themselves, typically to guard the continuation. It sees
// NoEffect suspensions and the results another interpreter hands back after
// a foreign effect. v is the known value, or a []any when a whole batch was
// known.
type NoEffectHandler[S any] interface {
	OnNoEffect(v any, k Continuation, s S) (next Eff[any], s2 S, resume bool)
}

// StatelessNoEffectHandler is NoEffectHandler for a StatelessLoop.
type StatelessNoEffectHandler interface {
	OnNoEffect(v any, k Continuation) (next Eff[any], resume bool)
}

type statelessLoop struct {
	loop StatelessLoop
}

func (l statelessLoop) OnNoEffect(v any, k Continuation, s struct{}) (Eff[any], struct{}, bool) {
	if h, ok := l.loop.(StatelessNoEffectHandler); ok {
		next, resume := h.OnNoEffect(v, k)
		return next, s, resume
	}
	return k.Apply(v), s, true
}

func (l statelessLoop) OnPure(a any, s struct{}) (Eff[any], struct{}, bool) {
	next, resume := l.loop.OnPure(a)
	return next, s, resume
}

func (l statelessLoop) OnEffect(e Effect, k Continuation, s struct{}) (Eff[any], struct{}, bool) {
	next, resume := l.loop.OnEffect(e, k)
	return next, s, resume
}

func (l statelessLoop) OnApplicativeEffect(es []Effect, k Continuation, s struct{}) (Eff[any], struct{}, bool) {
	next, resume := l.loop.OnApplicativeEffect(es, k)
	return next, s, resume
}

// lastLoop interprets attached Last actions. Their values are discarded, so
// reaching a pure value ends the action without consulting the loop.
type lastLoop[S any] struct {
	Loop[S]
}

func (l lastLoop[S]) OnPure(_ any, s S) (Eff[any], S, bool) {
	return Erase(Unit()), s, false
}

func (l lastLoop[S]) OnNoEffect(v any, k Continuation, s S) (Eff[any], S, bool) {
	return resolveNoEffect(l.Loop, v, k, s)
}

func resolveNoEffect[S any](loop Loop[S], v any, k Continuation, s S) (Eff[any], S, bool) {
	if h, ok := loop.(NoEffectHandler[S]); ok {
		return h.OnNoEffect(v, k, s)
	}
	return k.Apply(v), s, true
}

// InterpretStatelessLoop is InterpretLoop for a StatelessLoop.
func InterpretStatelessLoop(e Eff[any], family Family, loop StatelessLoop) Eff[any] {
	return InterpretLoop(e, family, statelessLoop{loop: loop}, struct{}{})
}

// InterpretLoop runs loop over every effect of family in e, starting from
// state s. NoEffect is resolved inline unless the loop is a
// NoEffectHandler. Effects of other families are
// suspended again in the result, with a continuation that re-enters the
// loop with the state reached so far. In a batch the family members go to
// OnApplicativeEffect and the remaining members are suspended once those
// results are in. Attached Last actions are interpreted by the same loop.
//
// The loop is iterative: a chain of resumptions does not grow the stack.
func InterpretLoop[S any](e Eff[any], family Family, loop Loop[S], s S) Eff[any] {
	for {
		n := e.n
		switch n.kind {
		case pureKind:
			next, s2, resume := loop.OnPure(n.value, s)
			if !resume {
				return AddLast(next, interpretLast(n.last, family, loop, s))
			}
			e, s = AddLast(next, n.last), s2

		case impureKind:
			if ne, ok := n.effect.(NoEffect); ok {
				next, s2, resume := resolveNoEffect(loop, ne.Value, n.k, s)
				if !resume {
					return AddLast(next, interpretLast(n.last, family, loop, s))
				}
				e, s = AddLast(next, n.last), s2
				continue
			}
			if n.effect.Family() != family {
				return Eff[any]{n: node{
					kind:   impureKind,
					effect: n.effect,
					k:      reenter(n.k, family, loop, s),
					last:   interpretLast(n.last, family, loop, s),
				}}
			}
			next, s2, resume := loop.OnEffect(n.effect, handedOver(n.k, family, loop, s), s)
			if !resume {
				return AddLast(next, interpretLast(n.last, family, loop, s))
			}
			e, s = AddLast(next, n.last), s2

		case impureApKind:
			own, foreign := partition(n.batch.effects(), family)
			switch {
			case own.empty() && foreign.empty():
				next, s2, resume := resolveNoEffect(loop, own.fill(nil), n.k, s)
				if !resume {
					return AddLast(next, interpretLast(n.last, family, loop, s))
				}
				e, s = AddLast(next, n.last), s2
				continue
			case own.empty():
				k := delegate(func(x any) Eff[any] {
					return n.k.Apply(foreign.fill(CoerceBatch(x, len(foreign.effects))))
				}, n.k.OnAbandon)
				return Eff[any]{n: node{
					kind:  impureApKind,
					batch: leafRope(foreign.effects),
					k:     reenter(k, family, loop, s),
					last:  interpretLast(n.last, family, loop, s),
				}}
			}

			k := delegate(func(x any) Eff[any] {
				values := own.fill(CoerceBatch(x, len(own.effects)))
				if foreign.empty() {
					return n.k.Apply(values)
				}
				rest := foreign.withKnown(values)
				return Eff[any]{n: node{
					kind:  impureApKind,
					batch: leafRope(rest.effects),
					k: delegate(func(y any) Eff[any] {
						return n.k.Apply(rest.fill(CoerceBatch(y, len(rest.effects))))
					}, n.k.OnAbandon),
				}}
			}, func() Last {
				return interpretLast(n.k.OnAbandon(), family, loop, s)
			})
			next, s2, resume := loop.OnApplicativeEffect(own.effects, k, s)
			if !resume {
				return AddLast(next, interpretLast(n.last, family, loop, s))
			}
			e, s = AddLast(next, n.last), s2
		}
	}
}

// reenter resumes k and interprets what follows with the state reached so
// far. The result comes back as a known value, so a NoEffectHandler guards
// the resumption.
func reenter[S any](k Continuation, family Family, loop Loop[S], s S) Continuation {
	return delegate(func(x any) Eff[any] {
		return InterpretLoop(Impure[any](NoEffect{Value: x}, k), family, loop, s)
	}, func() Last {
		return interpretLast(k.OnAbandon(), family, loop, s)
	})
}

// handedOver is k as a loop callback sees it: resuming it is resuming k,
// abandoning it yields the interpreted on-abandon actions of k.
func handedOver[S any](k Continuation, family Family, loop Loop[S], s S) Continuation {
	return delegate(k.Apply, func() Last {
		return interpretLast(k.OnAbandon(), family, loop, s)
	})
}

func interpretLast[S any](l Last, family Family, loop Loop[S], s S) Last {
	if l.IsNone() {
		return l
	}
	action := l.action
	return LastEff(func() Eff[struct{}] {
		return Void(InterpretLoop(Erase(action()), family, lastLoop[S]{Loop: loop}, s))
	})
}

// slots tracks which positions of a batch a subset of its effects fills.
// known holds the values already resolved for the other positions.
type slots struct {
	effects []Effect
	index   []int
	known   []any
}

func (sl slots) empty() bool {
	return len(sl.effects) == 0
}

func (sl slots) fill(xs []any) []any {
	values := make([]any, len(sl.known))
	copy(values, sl.known)
	for i, idx := range sl.index {
		values[idx] = xs[i]
	}
	return values
}

func (sl slots) withKnown(known []any) slots {
	sl.known = known
	return sl
}

func partition(batch []Effect, family Family) (own slots, foreign slots) {
	known := make([]any, len(batch))
	for i, e := range batch {
		if ne, ok := e.(NoEffect); ok {
			known[i] = ne.Value
			continue
		}
		if e.Family() == family {
			own.effects = append(own.effects, e)
			own.index = append(own.index, i)
		} else {
			foreign.effects = append(foreign.effects, e)
			foreign.index = append(foreign.index, i)
		}
	}
	own.known, foreign.known = known, known
	return own, foreign
}

// InterceptNat rewrites every effect of family in e with nat, in the order
// the effects are reached. The rewrite is lazy: later effects are rewritten
// as the continuation is resumed.
func InterceptNat[A any](e Eff[A], family Family, nat func(Effect) Effect) Eff[A] {
	return Typed[A](interceptNat(Erase(e), family, nat))
}

func interceptNat(e Eff[any], family Family, nat func(Effect) Effect) Eff[any] {
	n := e.n
	n.last = interceptLast(n.last, family, nat)
	if n.kind == pureKind {
		return Eff[any]{n: n}
	}

	switch n.kind {
	case impureKind:
		if n.effect.Family() == family {
			n.effect = nat(n.effect)
		}
	case impureApKind:
		batch := make([]Effect, n.batch.width)
		for i, be := range n.batch.effects() {
			if be.Family() == family {
				be = nat(be)
			}
			batch[i] = be
		}
		n.batch = leafRope(batch)
	}

	k := n.k
	n.k = delegate(func(x any) Eff[any] {
		return interceptNat(k.Apply(x), family, nat)
	}, func() Last {
		return interceptLast(k.OnAbandon(), family, nat)
	})
	return Eff[any]{n: n}
}

func interceptLast(l Last, family Family, nat func(Effect) Effect) Last {
	if l.IsNone() {
		return l
	}
	action := l.action
	return LastEff(func() Eff[struct{}] {
		return InterceptNat(action(), family, nat)
	})
}
