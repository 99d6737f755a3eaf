package helper_test

import (
	"errors"
	"testing"

	"github.com/on-the-ground/effstack/shared/helper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCast(t *testing.T) {
	v, err := helper.Cast[int](42)
	require.NoError(t, err)
	assert.Equal(t, 42, v)

	var nilErr error
	e, err := helper.Cast[error](nilErr)
	require.NoError(t, err)
	assert.Nil(t, e)

	_, err = helper.Cast[string](42)
	assert.ErrorIs(t, err, helper.ErrUnexpectedType)
}

func TestGetTypedValueOf2(t *testing.T) {
	got, ok := helper.GetTypedValueOf2[int](func() (any, bool) { return 7, true })
	assert.True(t, ok)
	assert.Equal(t, 7, got)

	_, ok = helper.GetTypedValueOf2[int](func() (any, bool) { return "7", true })
	assert.False(t, ok)

	_, ok = helper.GetTypedValueOf2[int](func() (any, bool) { return nil, false })
	assert.False(t, ok)

	e, ok := helper.GetTypedValueOf2[error](func() (any, bool) { return nil, true })
	assert.True(t, ok)
	assert.Nil(t, e)
}

func TestRecover(t *testing.T) {
	boom := errors.New("boom")

	run := func(fn func()) (err error) {
		defer helper.Recover(&err)
		fn()
		return nil
	}

	err := run(func() { panic(boom) })
	var perr helper.PanicError
	require.ErrorAs(t, err, &perr)
	assert.ErrorIs(t, err, boom)

	err = run(func() { panic("not an error") })
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "not an error", perr.Value)

	assert.NoError(t, run(func() {}))
}

func TestMaxAttemptsError(t *testing.T) {
	cause := errors.New("cause")
	err := helper.MaxAttemptsError(3, cause)
	assert.ErrorIs(t, err, helper.ErrMaxAttempts)
	assert.ErrorIs(t, err, cause)
}
