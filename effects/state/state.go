// Package state threads a single value of type S through a computation.
//
// One computation carries one state type: Get and Put of different types
// in the same computation are interpreted by the same Run and fail the
// type check.
package state

import (
	"github.com/on-the-ground/effstack/effects"
	effectmodel "github.com/on-the-ground/effstack/effects/internal/model"
)

const Family = effectmodel.FamilyState

// Payload is one of Load, Store or Modify.
type Payload interface {
	effects.Effect
	apply(s any) (result any, next any)
}

// Load reads the state.
type Load struct{}

// Store replaces the state.
type Store struct {
	New any
}

// Modify replaces the state with f applied to it.
type Modify struct {
	f func(any) any
}

func (Load) Family() effects.Family   { return Family }
func (Store) Family() effects.Family  { return Family }
func (Modify) Family() effects.Family { return Family }

func (Load) apply(s any) (any, any)     { return s, s }
func (p Store) apply(any) (any, any)    { return struct{}{}, p.New }
func (p Modify) apply(s any) (any, any) { return struct{}{}, p.f(s) }

func Get[S any]() effects.Eff[S] {
	return effects.Send[S](Load{})
}

func Put[S any](s S) effects.Eff[struct{}] {
	return effects.Send[struct{}](Store{New: s})
}

func Update[S any](f func(S) S) effects.Eff[struct{}] {
	return effects.Send[struct{}](Modify{f: func(s any) any {
		return f(effects.Coerce[S](s))
	}})
}

type loop[S, A any] struct{}

func step(e effects.Effect, s any) (any, any) {
	return e.(Payload).apply(s)
}

func (loop[S, A]) OnPure(a any, s any) (effects.Eff[any], any, bool) {
	out := effects.Pair[A, S]{First: effects.Coerce[A](a), Second: effects.Coerce[S](s)}
	return effects.Erase(effects.Pure(out)), s, false
}

func (loop[S, A]) OnEffect(e effects.Effect, k effects.Continuation, s any) (effects.Eff[any], any, bool) {
	x, s := step(e, s)
	return k.Apply(x), s, true
}

// OnApplicativeEffect applies the members of a batch in batch order.
func (loop[S, A]) OnApplicativeEffect(es []effects.Effect, k effects.Continuation, s any) (effects.Eff[any], any, bool) {
	xs := make([]any, len(es))
	for i, e := range es {
		xs[i], s = step(e, s)
	}
	return k.Apply(xs), s, true
}

// Run removes the State family from e, starting from init. The result pairs
// the value of e with the final state. Nothing runs before the result is
// interpreted.
func Run[S, A any](init S, e effects.Eff[A]) effects.Eff[effects.Pair[A, S]] {
	return effects.Defer(func() effects.Eff[effects.Pair[A, S]] {
		return effects.Typed[effects.Pair[A, S]](effects.InterpretLoop(effects.Erase(e), Family, loop[S, A]{}, any(init)))
	})
}

// Eval is Run without the final state.
func Eval[S, A any](init S, e effects.Eff[A]) effects.Eff[A] {
	return effects.Map(Run(init, e), func(p effects.Pair[A, S]) A {
		return p.First
	})
}

// Exec is Run without the value.
func Exec[S, A any](init S, e effects.Eff[A]) effects.Eff[S] {
	return effects.Map(Run(init, e), func(p effects.Pair[A, S]) S {
		return p.Second
	})
}
