package helper

import (
	"errors"
	"fmt"
)

// PanicError carries a value recovered from a panic.
type PanicError struct {
	Value any
}

func (e PanicError) Error() string {
	return fmt.Sprintf("recovered from panic: %v", e.Value)
}

func (e PanicError) Unwrap() error {
	err, _ := e.Value.(error)
	return err
}

// Recover turns a panic into an error stored in *err, joined with any error
// already there. It must be called directly by a deferred statement.
func Recover(err *error) {
	r := recover()
	if r == nil {
		return
	}

	perr := PanicError{
		Value: r,
	}
	if *err == nil {
		*err = perr
		return
	}
	*err = errors.Join(*err, perr)
}
