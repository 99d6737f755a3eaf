package effects

import (
	"errors"
	"fmt"

	"github.com/on-the-ground/effstack/shared/helper"
)

var (
	// ErrImpossibleState marks a broken runtime invariant. It is raised as a
	// panic and is never converted into a recoverable failure.
	ErrImpossibleState = errors.New("impossible state")

	// ErrUnhandledEffect is raised when a computation reaches the base
	// interpreter with an effect no interpreter removed.
	ErrUnhandledEffect = fmt.Errorf("%w: unhandled effect", ErrImpossibleState)
)

// Coerce recovers a typed value from an erased one.
// A mismatch means the computation was assembled incorrectly and panics.
func Coerce[A any](v any) A {
	a, err := helper.Cast[A](v)
	if err != nil {
		panic(fmt.Errorf("%w: %w", ErrImpossibleState, err))
	}
	return a
}

// CoerceBatch recovers the result slice handed to a batch continuation and
// checks it against the batch arity fixed at construction.
func CoerceBatch(v any, arity int) []any {
	xs := Coerce[[]any](v)
	if len(xs) != arity {
		panic(fmt.Errorf("%w: batch of %d resumed with %d results", ErrImpossibleState, arity, len(xs)))
	}
	return xs
}

func unhandled(e Effect) error {
	return fmt.Errorf("%w: family: %v, effect: %T", ErrUnhandledEffect, e.Family(), e)
}
