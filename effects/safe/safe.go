// Package safe provides the Safe effect: exception-safe evaluation with
// guaranteed finalizers and accumulation of finalizer failures.
//
// Failures are either errors returned by a protected function or panics
// raised while evaluating it or while resuming the computation after it.
// A finalizer failure never replaces the primary failure: it is collected
// next to it.
package safe

import (
	"errors"

	"github.com/on-the-ground/effstack/effects"
	effectmodel "github.com/on-the-ground/effstack/effects/internal/model"
	"github.com/on-the-ground/effstack/shared/helper"
	"go.uber.org/multierr"
)

// Family is the effect family of the Safe effect.
const Family = effectmodel.FamilySafe

// ErrNilException is raised in place of a nil error passed to Exception.
var ErrNilException = errors.New("nil exception")

// Payload is one of EvaluateValue, FailedValue or FailedFinalizer.
type Payload interface {
	effects.Effect
	isSafePayload()
}

// EvaluateValue defers a computation that may fail.
type EvaluateValue struct {
	thunk func() (any, error)
}

// FailedValue raises a primary failure.
type FailedValue struct {
	Err error
}

// FailedFinalizer records a finalizer failure. It does not stop the
// computation, which resumes with struct{}{}.
type FailedFinalizer struct {
	Err error
}

func (EvaluateValue) Family() effects.Family   { return Family }
func (FailedValue) Family() effects.Family     { return Family }
func (FailedFinalizer) Family() effects.Family { return Family }

func (EvaluateValue) isSafePayload()   {}
func (FailedValue) isSafePayload()     {}
func (FailedFinalizer) isSafePayload() {}

// Evaluate forces the deferred computation. Returned errors and panics are
// both reported as the error.
func (v EvaluateValue) Evaluate() (res any, err error) {
	defer recoverFailure(&err)
	return v.thunk()
}

// recoverFailure turns a panic into *err. Impossible-state panics are
// raised again: they report a broken runtime, not a failed computation.
func recoverFailure(err *error) {
	r := recover()
	if r == nil {
		return
	}
	if rerr, ok := r.(error); ok && errors.Is(rerr, effects.ErrImpossibleState) {
		panic(r)
	}
	*err = helper.PanicError{Value: r}
}

// resume applies k to x inside the failure boundary.
func resume(k effects.Continuation, x any) (next effects.Eff[any], err error) {
	defer recoverFailure(&err)
	return k.Apply(x), nil
}

// Protect defers f. An error or a panic from f is a primary failure.
func Protect[A any](f func() (A, error)) effects.Eff[A] {
	return effects.Send[A](EvaluateValue{thunk: func() (any, error) {
		a, err := f()
		return a, err
	}})
}

// Eval defers f. A panic from f is a primary failure.
func Eval[A any](f func() A) effects.Eff[A] {
	return effects.Send[A](EvaluateValue{thunk: func() (any, error) {
		return f(), nil
	}})
}

// Exception fails with err. A nil err fails with ErrNilException.
func Exception[A any](err error) effects.Eff[A] {
	if err == nil {
		err = ErrNilException
	}
	return effects.Send[A](FailedValue{Err: err})
}

// FinalizerException records err as a finalizer failure and continues.
func FinalizerException(err error) effects.Eff[struct{}] {
	return effects.Send[struct{}](FailedFinalizer{Err: err})
}

// Outcome is either a value or the primary failure.
type Outcome[A any] struct {
	Value A
	Err   error
}

func (o Outcome[A]) Get() (A, error) {
	return o.Value, o.Err
}

func (o Outcome[A]) Failed() bool {
	return o.Err != nil
}

// Result is an Outcome plus the finalizer failures collected on the way, in
// the order they happened. Finalizers is never nil.
type Result[A any] struct {
	Outcome[A]
	Finalizers []error
}

// FinalizerError combines the finalizer failures into one error, or nil.
func (r Result[A]) FinalizerError() error {
	return multierr.Combine(r.Finalizers...)
}
