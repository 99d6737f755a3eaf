package safe_test

import (
	"errors"
	"testing"

	"github.com/on-the-ground/effstack/effects"
	"github.com/on-the-ground/effstack/effects/safe"
	"github.com/on-the-ground/effstack/effects/state"
	"github.com/on-the-ground/effstack/shared/helper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	errUse   = errors.New("use failed")
	errClose = errors.New("close failed")
	errE2    = errors.New("e2")
	errE3    = errors.New("e3")
)

type categoryError struct {
	code int
}

func (e *categoryError) Error() string { return "category error" }

func run[A any](e effects.Eff[A]) safe.Result[A] {
	return effects.Run(safe.RunSafe(e))
}

func fails[A any](err error) func() (A, error) {
	return func() (A, error) {
		var zero A
		return zero, err
	}
}

func TestProtect(t *testing.T) {
	res := run(safe.Protect(fails[int](errUse)))
	assert.ErrorIs(t, res.Err, errUse)
	assert.Empty(t, res.Finalizers)
	assert.NotNil(t, res.Finalizers)

	res = run(safe.Protect(func() (int, error) { return 7, nil }))
	require.NoError(t, res.Err)
	assert.Equal(t, 7, res.Value)
}

func TestEval_PanicIsPrimaryFailure(t *testing.T) {
	res := run(safe.Eval(func() int { panic("boom") }))

	var perr helper.PanicError
	require.ErrorAs(t, res.Err, &perr)
	assert.Equal(t, "boom", perr.Value)
}

func TestEval_IsLazy(t *testing.T) {
	calls := 0
	e := safe.Eval(func() int { calls++; return calls })
	assert.Equal(t, 0, calls)

	assert.Equal(t, 1, run(e).Value)
	assert.Equal(t, 2, run(e).Value)
}

func TestRunSafe_PanicInBind(t *testing.T) {
	e := effects.Bind(safe.Eval(func() int { return 1 }), func(int) effects.Eff[int] {
		panic(errUse)
	})
	res := run(e)
	assert.ErrorIs(t, res.Err, errUse)
}

func TestRunSafe_ImpossibleStateIsNotCaught(t *testing.T) {
	e := effects.Bind(safe.Eval(func() int { return 1 }), func(int) effects.Eff[int] {
		panic(effects.ErrImpossibleState)
	})
	assert.PanicsWithError(t, effects.ErrImpossibleState.Error(), func() {
		run(e)
	})
}

func TestRunSafe_ExceptionStopsTheComputation(t *testing.T) {
	reached := false
	e := effects.Bind(safe.Exception[int](errUse), func(int) effects.Eff[int] {
		reached = true
		return effects.Pure(1)
	})
	res := run(e)
	assert.ErrorIs(t, res.Err, errUse)
	assert.False(t, reached)
}

func TestException_NilStillFails(t *testing.T) {
	res := run(safe.Exception[int](nil))
	assert.True(t, res.Failed())
	assert.ErrorIs(t, res.Err, safe.ErrNilException)

	o := effects.Run(safe.RunSafe(safe.Attempt(safe.Exception[string](nil))))
	assert.ErrorIs(t, o.Value.Err, safe.ErrNilException)
}

func TestRunSafe_FinalizerExceptionContinues(t *testing.T) {
	e := effects.Then(safe.FinalizerException(errClose), effects.Then(safe.FinalizerException(errE2), effects.Pure(3)))
	res := run(e)
	require.NoError(t, res.Err)
	assert.Equal(t, 3, res.Value)
	assert.Equal(t, []error{errClose, errE2}, res.Finalizers)
	assert.ErrorIs(t, res.FinalizerError(), errClose)
	assert.ErrorIs(t, res.FinalizerError(), errE2)
}

func TestExecSafe(t *testing.T) {
	e := effects.Then(safe.FinalizerException(errClose), safe.Exception[int](errUse))
	out := effects.Run(safe.ExecSafe(e))
	assert.True(t, out.Failed())
	_, err := out.Get()
	assert.ErrorIs(t, err, errUse)
}

func TestAttemptSafe(t *testing.T) {
	e := effects.Then(safe.FinalizerException(errClose), effects.Pure("ok"))
	res := effects.Run(safe.AttemptSafe(e))
	require.NoError(t, res.Err)
	assert.Equal(t, "ok", res.Value)
	assert.Equal(t, []error{errClose}, res.Finalizers)
}

func TestRunSafe_BatchFirstFailureWins(t *testing.T) {
	executed := make([]bool, 3)
	branch := func(i int, err error) effects.Eff[int] {
		return safe.Protect(func() (int, error) {
			executed[i] = true
			return i, err
		})
	}
	e := effects.Sequence([]effects.Eff[int]{
		branch(0, nil),
		branch(1, errE2),
		branch(2, errE3),
	})
	require.Len(t, e.Effects(), 3)

	res := run(e)
	assert.ErrorIs(t, res.Err, errE2)
	assert.NotErrorIs(t, res.Err, errE3)
	assert.Equal(t, []bool{true, true, true}, executed)
}

func TestRunSafe_BatchValues(t *testing.T) {
	e := effects.Zip(safe.Eval(func() int { return 1 }), safe.Eval(func() string { return "a" }))
	res := run(e)
	require.NoError(t, res.Err)
	assert.Equal(t, effects.Pair[int, string]{First: 1, Second: "a"}, res.Value)
}

func TestRunSafe_OnAbandon(t *testing.T) {
	abandoned := 0
	onAbandon := effects.LastAction(func() { abandoned++ })

	failing := effects.OnAbandon(effects.Bind(safe.Exception[int](errUse), func(x int) effects.Eff[int] {
		return effects.Pure(x + 1)
	}), onAbandon)
	res := run(failing)
	assert.ErrorIs(t, res.Err, errUse)
	assert.Equal(t, 1, abandoned)

	succeeding := effects.OnAbandon(effects.Bind(safe.Eval(func() int { return 1 }), func(x int) effects.Eff[int] {
		return effects.Pure(x + 1)
	}), onAbandon)
	res = run(succeeding)
	require.NoError(t, res.Err)
	assert.Equal(t, 2, res.Value)
	assert.Equal(t, 1, abandoned)
}

func TestRunSafe_LastActionRunsOnceAtTheEnd(t *testing.T) {
	var trace []string
	e := effects.AddLast(
		safe.Eval(func() int { trace = append(trace, "body"); return 1 }),
		effects.LastAction(func() { trace = append(trace, "last") }),
	)
	e = effects.Bind(e, func(x int) effects.Eff[int] {
		return safe.Eval(func() int { trace = append(trace, "after"); return x + 1 })
	})

	res := run(e)
	require.NoError(t, res.Err)
	assert.Equal(t, 2, res.Value)
	assert.Equal(t, []string{"body", "after", "last"}, trace)
}

func panicsAfterGet(abandoned *int) effects.Eff[int] {
	e := effects.Bind(state.Get[int](), func(int) effects.Eff[int] {
		panic("boom in continuation")
	})
	return effects.OnAbandon(e, effects.LastAction(func() { *abandoned++ }))
}

func requirePanicError(t *testing.T, err error) {
	t.Helper()
	var perr helper.PanicError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "boom in continuation", perr.Value)
}

func TestRunSafe_PanicResumingAfterForeignEffect(t *testing.T) {
	abandoned := 0
	res := effects.Run(state.Eval(0, safe.RunSafe(panicsAfterGet(&abandoned))))
	requirePanicError(t, res.Err)
	assert.Equal(t, 1, abandoned)

	res = effects.Run(safe.RunSafe(state.Eval(0, panicsAfterGet(&abandoned))))
	requirePanicError(t, res.Err)
}

func TestRunSafe_PanicResumingAfterForeignBatch(t *testing.T) {
	e := effects.Bind(effects.Zip(state.Get[int](), state.Get[int]()), func(effects.Pair[int, int]) effects.Eff[int] {
		panic("boom in continuation")
	})
	res := effects.Run(state.Eval(0, safe.RunSafe(e)))
	requirePanicError(t, res.Err)
}

func TestAttempt_PanicResumingAfterForeignEffect(t *testing.T) {
	abandoned := 0
	res := effects.Run(state.Eval(0, safe.RunSafe(safe.Attempt(panicsAfterGet(&abandoned)))))
	require.NoError(t, res.Err)
	requirePanicError(t, res.Value.Err)
	assert.Equal(t, 1, abandoned)
}

func TestThenFinally_PanicResumingAfterForeignEffect(t *testing.T) {
	abandoned, released := 0, 0
	release := safe.Eval(func() struct{} { released++; return struct{}{} })
	res := effects.Run(state.Eval(0, safe.RunSafe(safe.ThenFinally(panicsAfterGet(&abandoned), release))))
	requirePanicError(t, res.Err)
	assert.Equal(t, 1, released)
	assert.Equal(t, 1, abandoned)
	assert.Empty(t, res.Finalizers)
}
