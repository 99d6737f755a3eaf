package safe

import (
	"errors"

	"github.com/on-the-ground/effstack/effects"
	"github.com/on-the-ground/effstack/shared/helper"
)

// reraise sends finalizer failures on to the enclosing Safe interpreter.
func reraise(failed []error) effects.Eff[struct{}] {
	if len(failed) == 0 {
		return effects.Unit()
	}
	return effects.Void(effects.Traverse(failed, FinalizerException))
}

// attemptLoop turns primary failures into an Outcome and leaves finalizer
// failures to the enclosing interpreter.
type attemptLoop[A any] struct{}

func (attemptLoop[A]) failed(err error) effects.Eff[any] {
	return effects.Erase(effects.Pure(Outcome[A]{Err: err}))
}

func (attemptLoop[A]) OnPure(a any) (effects.Eff[any], bool) {
	return effects.Erase(effects.Pure(Outcome[A]{Value: effects.Coerce[A](a)})), false
}

func (l attemptLoop[A]) OnNoEffect(v any, k effects.Continuation) (effects.Eff[any], bool) {
	next, err := resume(k, v)
	if err != nil {
		return effects.AddLast(l.failed(err), k.OnAbandon()), false
	}
	return next, true
}

// later attempts the rest of the computation once the enclosing
// interpreter has taken the finalizer failures.
func (l attemptLoop[A]) later(failed []error, v any, k effects.Continuation) effects.Eff[any] {
	return effects.Erase(effects.Then(reraise(failed), effects.Defer(func() effects.Eff[Outcome[A]] {
		next, err := resume(k, v)
		if err != nil {
			return effects.Typed[Outcome[A]](l.failed(err))
		}
		return attempt[A](next)
	})))
}

func (l attemptLoop[A]) OnEffect(e effects.Effect, k effects.Continuation) (effects.Eff[any], bool) {
	switch p := e.(type) {
	case EvaluateValue:
		v, err := p.Evaluate()
		if err != nil {
			return effects.AddLast(l.failed(err), k.OnAbandon()), false
		}
		return l.OnNoEffect(v, k)
	case FailedValue:
		return effects.AddLast(l.failed(p.Err), k.OnAbandon()), false
	case FailedFinalizer:
		return l.later([]error{p.Err}, struct{}{}, k), false
	default:
		panic(unexpected(e))
	}
}

func (l attemptLoop[A]) OnApplicativeEffect(es []effects.Effect, k effects.Continuation) (effects.Eff[any], bool) {
	results, failed, primary := evaluateAll(es)
	switch {
	case primary != nil:
		out := effects.Then(reraise(failed), effects.Typed[Outcome[A]](l.failed(primary)))
		return effects.AddLast(effects.Erase(out), k.OnAbandon()), false
	case len(failed) > 0:
		return l.later(failed, results, k), false
	default:
		return l.OnNoEffect(results, k)
	}
}

func attempt[A any](e effects.Eff[any]) effects.Eff[Outcome[A]] {
	return effects.Typed[Outcome[A]](effects.InterpretStatelessLoop(e, Family, attemptLoop[A]{}))
}

// Attempt catches the primary failure of action as a value. Finalizer
// failures are not primary and stay visible to the enclosing interpreter.
func Attempt[A any](action effects.Eff[A]) effects.Eff[Outcome[A]] {
	return attempt[A](effects.Erase(action))
}

// finallyLoop runs last exactly once, after action produced its value or
// failed, without letting a failure of last replace the primary failure.
type finallyLoop[A any] struct {
	last effects.Eff[struct{}]
}

// finish runs last, records its failure as a finalizer failure, then
// continues with then.
func (l finallyLoop[A]) finish(then effects.Eff[A]) effects.Eff[any] {
	return effects.Erase(effects.Bind(Attempt(l.last), func(o Outcome[struct{}]) effects.Eff[A] {
		if o.Err != nil {
			return effects.Then(FinalizerException(o.Err), then)
		}
		return then
	}))
}

func (l finallyLoop[A]) failed(err error) effects.Eff[any] {
	return l.finish(Exception[A](err))
}

func (l finallyLoop[A]) OnPure(a any) (effects.Eff[any], bool) {
	return l.finish(effects.Pure(effects.Coerce[A](a))), false
}

func (l finallyLoop[A]) OnNoEffect(v any, k effects.Continuation) (effects.Eff[any], bool) {
	next, err := resume(k, v)
	if err != nil {
		return effects.AddLast(l.failed(err), k.OnAbandon()), false
	}
	return next, true
}

func (l finallyLoop[A]) later(failed []error, v any, k effects.Continuation) effects.Eff[any] {
	return effects.Erase(effects.Then(reraise(failed), effects.Defer(func() effects.Eff[A] {
		next, err := resume(k, v)
		if err != nil {
			return effects.Typed[A](l.failed(err))
		}
		return thenFinally[A](next, l.last)
	})))
}

func (l finallyLoop[A]) OnEffect(e effects.Effect, k effects.Continuation) (effects.Eff[any], bool) {
	switch p := e.(type) {
	case EvaluateValue:
		v, err := p.Evaluate()
		if err != nil {
			return effects.AddLast(l.failed(err), k.OnAbandon()), false
		}
		return l.OnNoEffect(v, k)
	case FailedValue:
		return effects.AddLast(l.failed(p.Err), k.OnAbandon()), false
	case FailedFinalizer:
		return l.later([]error{p.Err}, struct{}{}, k), false
	default:
		panic(unexpected(e))
	}
}

func (l finallyLoop[A]) OnApplicativeEffect(es []effects.Effect, k effects.Continuation) (effects.Eff[any], bool) {
	results, failed, primary := evaluateAll(es)
	switch {
	case primary != nil:
		out := effects.Then(reraise(failed), effects.Typed[A](l.failed(primary)))
		return effects.AddLast(effects.Erase(out), k.OnAbandon()), false
	case len(failed) > 0:
		return l.later(failed, results, k), false
	default:
		return l.OnNoEffect(results, k)
	}
}

func thenFinally[A any](action effects.Eff[any], last effects.Eff[struct{}]) effects.Eff[A] {
	return effects.Typed[A](effects.InterpretStatelessLoop(action, Family, finallyLoop[A]{last: last}))
}

// ThenFinally runs last once action has produced its value or failed.
// A failure of action is raised again after last ran; a failure of last is
// recorded as a finalizer failure and never replaces it.
func ThenFinally[A any](action effects.Eff[A], last effects.Eff[struct{}]) effects.Eff[A] {
	return thenFinally[A](effects.Erase(action), last)
}

// Bracket acquires a resource, uses it in step and always releases it.
// The release runs even when step fails while being built.
func Bracket[A, B, C any](
	acquire effects.Eff[A],
	step func(A) effects.Eff[B],
	release func(A) effects.Eff[C],
) effects.Eff[B] {
	return effects.Bind(acquire, func(a A) effects.Eff[B] {
		use := effects.Defer(func() effects.Eff[B] { return step(a) })
		free := effects.Defer(func() effects.Eff[struct{}] { return effects.Void(release(a)) })
		return ThenFinally(use, free)
	})
}

// CatchThrowable maps the value of action with pureValue, or handles its
// primary failure with onErr.
func CatchThrowable[A, B any](
	action effects.Eff[A],
	pureValue func(A) B,
	onErr func(error) effects.Eff[B],
) effects.Eff[B] {
	return effects.Bind(Attempt(action), func(o Outcome[A]) effects.Eff[B] {
		if o.Err != nil {
			return onErr(o.Err)
		}
		return effects.Pure(pureValue(o.Value))
	})
}

func id[A any](a A) A { return a }

// Otherwise falls back to fallback when action fails.
func Otherwise[A any](action effects.Eff[A], fallback effects.Eff[A]) effects.Eff[A] {
	return CatchThrowable(action, id[A], func(error) effects.Eff[A] {
		return fallback
	})
}

// WhenFailed handles the primary failure of action with onErr.
func WhenFailed[A any](action effects.Eff[A], onErr func(error) effects.Eff[A]) effects.Eff[A] {
	return CatchThrowable(action, id[A], onErr)
}

// IgnoreException discards the value of action and swallows failures of
// error type E. Other failures propagate.
func IgnoreException[E error, A any](action effects.Eff[A]) effects.Eff[struct{}] {
	return ignoreWhen(action, func(err error) bool {
		var target E
		return errors.As(err, &target)
	})
}

// IgnoreErr discards the value of action and swallows failures matching
// target with errors.Is. Other failures propagate.
func IgnoreErr[A any](action effects.Eff[A], target error) effects.Eff[struct{}] {
	return ignoreWhen(action, func(err error) bool {
		return errors.Is(err, target)
	})
}

func ignoreWhen[A any](action effects.Eff[A], ignored func(error) bool) effects.Eff[struct{}] {
	return CatchThrowable(action, func(A) struct{} { return struct{}{} }, func(err error) effects.Eff[struct{}] {
		if ignored(err) {
			return effects.Unit()
		}
		return Exception[struct{}](err)
	})
}

// Retry runs action up to attempts times until it succeeds. The last
// failure is raised wrapped in helper.ErrMaxAttempts.
func Retry[A any](action effects.Eff[A], attempts int) effects.Eff[A] {
	var try func(n int) effects.Eff[A]
	try = func(n int) effects.Eff[A] {
		return WhenFailed(action, func(err error) effects.Eff[A] {
			if n >= attempts {
				return Exception[A](helper.MaxAttemptsError(n, err))
			}
			return try(n + 1)
		})
	}
	return try(1)
}
