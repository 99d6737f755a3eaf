// Package task runs asynchronous work as an effect.
//
// A single task runs on the interpreting goroutine. The tasks of a batch
// run concurrently and are joined before the computation resumes. Task
// failures are raised as Safe failures, so an interpreted computation still
// needs safe.RunSafe.
package task

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/on-the-ground/effstack/effects"
	effectmodel "github.com/on-the-ground/effstack/effects/internal/model"
	"github.com/on-the-ground/effstack/effects/memo"
	"github.com/on-the-ground/effstack/effects/safe"
	"github.com/on-the-ground/effstack/shared/helper"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const Family = effectmodel.FamilyTask

// TaskPayload is an asynchronous operation with an erased result.
type TaskPayload struct {
	run func(context.Context) (any, error)
}

func (TaskPayload) Family() effects.Family {
	return Family
}

// call runs the task unless ctx is already done. A panic is returned as a
// helper.PanicError.
func (p TaskPayload) call(ctx context.Context) (res any, err error) {
	defer helper.Recover(&err)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return p.run(ctx)
}

// outcome is what a task resumes its computation with.
type outcome struct {
	value any
	err   error
}

// Async sends fn as a task. A failure of fn is raised with safe.Exception
// where the task was sent, so enclosing Safe combinators observe it.
func Async[A any](fn func(context.Context) (A, error)) effects.Eff[A] {
	sent := effects.Send[outcome](TaskPayload{run: func(ctx context.Context) (any, error) {
		return fn(ctx)
	}})
	return effects.Bind(sent, func(o outcome) effects.Eff[A] {
		if o.err != nil {
			return safe.Exception[A](o.err)
		}
		return effects.Pure(effects.Coerce[A](o.value))
	})
}

type taskLoop struct {
	ctx context.Context
	cfg effects.ScopeConfig
}

func (l taskLoop) OnPure(a any) (effects.Eff[any], bool) {
	return effects.Pure(a), false
}

func (l taskLoop) OnEffect(e effects.Effect, k effects.Continuation) (effects.Eff[any], bool) {
	v, err := e.(TaskPayload).call(l.ctx)
	return k.Apply(outcome{value: v, err: err}), true
}

func (l taskLoop) OnApplicativeEffect(es []effects.Effect, k effects.Continuation) (effects.Eff[any], bool) {
	batchID := uuid.New()
	started := time.Now()
	effects.Logger().Debug("task batch started",
		zap.Stringer("batch", batchID),
		zap.Int("tasks", len(es)),
		zap.Int("maxConcurrency", l.cfg.MaxConcurrency),
	)

	results := make([]any, len(es))
	var failures atomic.Int32

	var g errgroup.Group
	g.SetLimit(l.cfg.MaxConcurrency)
	for i, e := range es {
		p := e.(TaskPayload)
		g.Go(func() error {
			v, err := p.call(l.ctx)
			results[i] = outcome{value: v, err: err}
			if err != nil {
				failures.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()

	effects.Logger().Debug("task batch joined",
		zap.Stringer("batch", batchID),
		zap.Duration("elapsed", effects.Since(started).Duration()),
		zap.Int32("failed", failures.Load()),
	)
	return k.Apply(results), true
}

// Interpret removes the Task family from e. Each batch runs at most
// cfg.MaxConcurrency tasks at a time and every task of a batch runs to
// completion before the computation resumes, so the Safe interpreter sees
// the first failure in batch order. Nothing runs before the result is
// interpreted.
func Interpret[A any](ctx context.Context, e effects.Eff[A], cfg effects.ScopeConfig) effects.Eff[A] {
	cfg = effects.NewScopeConfig(cfg.MaxConcurrency)
	loop := taskLoop{ctx: ctx, cfg: cfg}
	return effects.Defer(func() effects.Eff[A] {
		return effects.Typed[A](effects.InterpretStatelessLoop(effects.Erase(e), Family, loop))
	})
}

// SequenceCached memoizes task results. Failed tasks are not cached.
type SequenceCached struct{}

var _ memo.SequenceCached = SequenceCached{}

func (SequenceCached) Family() effects.Family { return Family }

func (SequenceCached) Apply(cache memo.Cache, key memo.Key, e effects.Effect) effects.Effect {
	p := e.(TaskPayload)
	return TaskPayload{run: func(ctx context.Context) (any, error) {
		if v, ok := cache.Get(key); ok {
			return v, nil
		}
		v, err := p.call(ctx)
		if err != nil {
			return nil, err
		}
		cache.Put(key, v)
		return v, nil
	}}
}

// Memoize caches the task results and the result of e under id.
func Memoize[A any](e effects.Eff[A], cache memo.Cache, id string) effects.Eff[A] {
	return memo.MemoizeEffect(e, cache, id, SequenceCached{})
}
