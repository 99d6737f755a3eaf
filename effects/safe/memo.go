package safe

import (
	"github.com/on-the-ground/effstack/effects"
	"github.com/on-the-ground/effstack/effects/memo"
)

// SequenceCached memoizes evaluated values. Failures are not cached, so a
// failed evaluation runs again on the next attempt.
type SequenceCached struct{}

var _ memo.SequenceCached = SequenceCached{}

func (SequenceCached) Family() effects.Family { return Family }

func (SequenceCached) Apply(cache memo.Cache, key memo.Key, e effects.Effect) effects.Effect {
	ev, ok := e.(EvaluateValue)
	if !ok {
		return e
	}
	return EvaluateValue{thunk: func() (any, error) {
		if v, ok := cache.Get(key); ok {
			return v, nil
		}
		v, err := ev.Evaluate()
		if err != nil {
			return nil, err
		}
		cache.Put(key, v)
		return v, nil
	}}
}

// Memoize caches the evaluated values and the result of e under id.
func Memoize[A any](e effects.Eff[A], cache memo.Cache, id string) effects.Eff[A] {
	return memo.MemoizeEffect(e, cache, id, SequenceCached{})
}
