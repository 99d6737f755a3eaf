package helper

import (
	"errors"
	"fmt"
)

var (
	ErrMaxAttempts    = fmt.Errorf("max attempts reached")
	ErrUnexpectedType = errors.New("unexpected type")
)

// GetTypedValueOf2 asserts the result of a lookup to T with Cast. A value
// of another type is reported as not found.
func GetTypedValueOf2[T any](getFn func() (any, bool)) (T, bool) {
	var zero T
	raw, ok := getFn()
	if !ok {
		return zero, false
	}
	res, err := Cast[T](raw)
	if err != nil {
		return zero, false
	}
	return res, true
}

// Cast asserts v to T. A nil v yields the zero value of T, so erased
// results of interface or pointer type survive the round trip.
func Cast[T any](v any) (T, error) {
	var zero T
	if v == nil {
		return zero, nil
	}
	val, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("%w: got %T, want %T", ErrUnexpectedType, v, zero)
	}
	return val, nil
}

// MaxAttemptsError reports that attempts ran out, keeping the last cause.
func MaxAttemptsError(attempts int, cause error) error {
	return fmt.Errorf("%w: %d, %w", ErrMaxAttempts, attempts, cause)
}
