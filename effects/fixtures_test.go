package effects_test

import (
	"github.com/on-the-ground/effstack/effects"
)

const (
	askFamily   effects.Family = "test_family_ask"
	tickFamily  effects.Family = "test_family_tick"
	abortFamily effects.Family = "test_family_abort"
)

// ask yields the environment plus offset.
type ask struct {
	offset int
}

func (ask) Family() effects.Family { return askFamily }

func askFor(offset int) effects.Eff[int] {
	return effects.Send[int](ask{offset: offset})
}

type askLoop struct {
	env int
}

func (l askLoop) OnPure(a any) (effects.Eff[any], bool) {
	return effects.Pure(a), false
}

func (l askLoop) OnEffect(e effects.Effect, k effects.Continuation) (effects.Eff[any], bool) {
	return k.Apply(l.env + e.(ask).offset), true
}

func (l askLoop) OnApplicativeEffect(es []effects.Effect, k effects.Continuation) (effects.Eff[any], bool) {
	xs := make([]any, len(es))
	for i, e := range es {
		xs[i] = l.env + e.(ask).offset
	}
	return k.Apply(xs), true
}

func runAsk[A any](e effects.Eff[A], env int) effects.Eff[A] {
	return effects.Typed[A](effects.InterpretStatelessLoop(effects.Erase(e), askFamily, askLoop{env: env}))
}

// tick yields how many ticks happened before it.
type tick struct{}

func (tick) Family() effects.Family { return tickFamily }

type counted[A any] struct {
	value A
	ticks int
}

type tickLoop[A any] struct{}

func (tickLoop[A]) OnPure(a any, s int) (effects.Eff[any], int, bool) {
	return effects.Erase(effects.Pure(counted[A]{value: effects.Coerce[A](a), ticks: s})), s, false
}

func (tickLoop[A]) OnEffect(_ effects.Effect, k effects.Continuation, s int) (effects.Eff[any], int, bool) {
	return k.Apply(s), s + 1, true
}

func (tickLoop[A]) OnApplicativeEffect(es []effects.Effect, k effects.Continuation, s int) (effects.Eff[any], int, bool) {
	xs := make([]any, len(es))
	for i := range es {
		xs[i] = s
		s++
	}
	return k.Apply(xs), s, true
}

func runTick[A any](e effects.Eff[A]) effects.Eff[counted[A]] {
	return effects.Typed[counted[A]](effects.InterpretLoop(effects.Erase(e), tickFamily, tickLoop[A]{}, 0))
}

// abort stops the computation.
type abort struct{}

func (abort) Family() effects.Family { return abortFamily }

type maybe[A any] struct {
	value A
	ok    bool
}

type abortLoop[A any] struct{}

func (abortLoop[A]) OnPure(a any) (effects.Eff[any], bool) {
	return effects.Erase(effects.Pure(maybe[A]{value: effects.Coerce[A](a), ok: true})), false
}

func (abortLoop[A]) OnEffect(_ effects.Effect, k effects.Continuation) (effects.Eff[any], bool) {
	return effects.AddLast(effects.Erase(effects.Pure(maybe[A]{})), k.OnAbandon()), false
}

func (abortLoop[A]) OnApplicativeEffect(_ []effects.Effect, k effects.Continuation) (effects.Eff[any], bool) {
	return effects.AddLast(effects.Erase(effects.Pure(maybe[A]{})), k.OnAbandon()), false
}

func runAbort[A any](e effects.Eff[A]) effects.Eff[maybe[A]] {
	return effects.Typed[maybe[A]](effects.InterpretStatelessLoop(effects.Erase(e), abortFamily, abortLoop[A]{}))
}
