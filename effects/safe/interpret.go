package safe

import (
	"fmt"

	"github.com/benbjohnson/immutable"
	"github.com/on-the-ground/effstack/effects"
	"go.uber.org/zap"
)

type finalizers = *immutable.List[error]

func record(s finalizers, err error) finalizers {
	effects.Logger().Debug("finalizer failed", zap.Error(err), zap.Int("failures", s.Len()+1))
	return s.Append(err)
}

func toSlice(s finalizers) []error {
	out := make([]error, 0, s.Len())
	itr := s.Iterator()
	for !itr.Done() {
		_, err := itr.Next()
		out = append(out, err)
	}
	return out
}

func unexpected(e effects.Effect) error {
	return fmt.Errorf("%w: unexpected safe payload %T", effects.ErrImpossibleState, e)
}

// evaluateAll runs every member of a batch. Values land at their batch
// position; the first failure in batch order is primary.
func evaluateAll(es []effects.Effect) (results []any, failed []error, primary error) {
	results = make([]any, len(es))
	for i, e := range es {
		switch p := e.(type) {
		case FailedFinalizer:
			failed = append(failed, p.Err)
			results[i] = struct{}{}
		case FailedValue:
			if primary == nil {
				primary = p.Err
			}
		case EvaluateValue:
			v, err := p.Evaluate()
			if err != nil {
				if primary == nil {
					primary = err
				}
				continue
			}
			results[i] = v
		default:
			panic(unexpected(e))
		}
	}
	return results, failed, primary
}

// runLoop removes the Safe family, threading the finalizer failures.
type runLoop[A any] struct{}

func (runLoop[A]) done(o Outcome[A], s finalizers) effects.Eff[any] {
	return effects.Erase(effects.Pure(Result[A]{Outcome: o, Finalizers: toSlice(s)}))
}

func (l runLoop[A]) failed(err error, s finalizers) effects.Eff[any] {
	return l.done(Outcome[A]{Err: err}, s)
}

func (l runLoop[A]) OnPure(a any, s finalizers) (effects.Eff[any], finalizers, bool) {
	return l.done(Outcome[A]{Value: effects.Coerce[A](a)}, s), s, false
}

func (l runLoop[A]) OnNoEffect(v any, k effects.Continuation, s finalizers) (effects.Eff[any], finalizers, bool) {
	next, err := resume(k, v)
	if err != nil {
		return effects.AddLast(l.failed(err, s), k.OnAbandon()), s, false
	}
	return next, s, true
}

func (l runLoop[A]) OnEffect(e effects.Effect, k effects.Continuation, s finalizers) (effects.Eff[any], finalizers, bool) {
	switch p := e.(type) {
	case EvaluateValue:
		v, err := p.Evaluate()
		if err != nil {
			return effects.AddLast(l.failed(err, s), k.OnAbandon()), s, false
		}
		return l.OnNoEffect(v, k, s)
	case FailedValue:
		return effects.AddLast(l.failed(p.Err, s), k.OnAbandon()), s, false
	case FailedFinalizer:
		return l.OnNoEffect(struct{}{}, k, record(s, p.Err))
	default:
		panic(unexpected(e))
	}
}

func (l runLoop[A]) OnApplicativeEffect(es []effects.Effect, k effects.Continuation, s finalizers) (effects.Eff[any], finalizers, bool) {
	results, failed, primary := evaluateAll(es)
	for _, err := range failed {
		s = record(s, err)
	}
	if primary != nil {
		return effects.AddLast(l.failed(primary, s), k.OnAbandon()), s, false
	}
	return l.OnNoEffect(results, k, s)
}

func runSafe[A any](e effects.Eff[A]) effects.Eff[Result[A]] {
	return effects.Typed[Result[A]](effects.InterpretLoop(
		effects.Erase(e),
		Family,
		runLoop[A]{},
		immutable.NewList[error](),
	))
}

// RunSafe removes the Safe family from e. The result carries either the
// value or the primary failure, and every finalizer failure in order.
// Panics from protected code and from resuming the computation are caught.
func RunSafe[A any](e effects.Eff[A]) effects.Eff[Result[A]] {
	return runSafe(e)
}

// ExecSafe is RunSafe without the finalizer failures.
func ExecSafe[A any](e effects.Eff[A]) effects.Eff[Outcome[A]] {
	return effects.Map(runSafe(e), func(r Result[A]) Outcome[A] {
		return r.Outcome
	})
}

// AttemptSafe reports the outcome of e together with its finalizer
// failures, as a step of a larger computation: every Safe effect of e is
// handled, so nothing is raised to an enclosing Safe interpreter.
func AttemptSafe[A any](e effects.Eff[A]) effects.Eff[Result[A]] {
	return runSafe(e)
}
