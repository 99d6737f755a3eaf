// Package memo replays the effects of a computation from a cache.
//
// MemoizeEffect numbers every occurrence of one effect family in the order
// it is reached and lets the family's SequenceCached capability consult and
// fill the cache slot of that occurrence. The final value is stored under
// the whole-result slot; a later run with the same id returns it without
// running anything.
package memo

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/on-the-ground/effstack/effects"
	"github.com/on-the-ground/effstack/shared/helper"
	"go.uber.org/zap"
)

// WholeResult is the sequence position of the whole-result slot.
const WholeResult = -1

// Key addresses one cache slot: the occurrence Seq of a memoized
// computation ID.
type Key struct {
	ID  string
	Seq int
}

// Whole is the whole-result slot of id.
func Whole(id string) Key {
	return Key{ID: id, Seq: WholeResult}
}

func (k Key) String() string {
	if k.Seq == WholeResult {
		return k.ID + "/*"
	}
	return fmt.Sprintf("%s/%d", k.ID, k.Seq)
}

// Cache stores the results of memoized effects. It is the only mutable
// structure shared between runs; its lifecycle belongs to the caller.
type Cache interface {
	Get(key Key) (any, bool)
	Put(key Key, value any)
	// Reset drops every slot of id.
	Reset(id string)
	Clear()
}

// SequenceCached is the memoization capability of an effect family.
// Apply returns the effect to send in place of e for the slot key: one that
// answers from the cache on a hit and fills the cache on a miss.
type SequenceCached interface {
	Family() effects.Family
	Apply(cache Cache, key Key, e effects.Effect) effects.Effect
}

// NewKey mints a fresh computation id.
func NewKey() string {
	return uuid.NewString()
}

// MemoizeEffect caches e under id. The cache is consulted when the result
// runs, not when it is built.
func MemoizeEffect[A any](e effects.Eff[A], cache Cache, id string, cached SequenceCached) effects.Eff[A] {
	return effects.Defer(func() effects.Eff[A] {
		whole := Whole(id)
		v, ok := helper.GetTypedValueOf2[A](func() (any, bool) {
			return cache.Get(whole)
		})
		if ok {
			effects.Logger().Debug("memo hit", zap.Stringer("key", whole))
			return effects.Pure(v)
		}
		effects.Logger().Debug("memo miss", zap.Stringer("key", whole))

		seq := 0
		intercepted := effects.InterceptNat(e, cached.Family(), func(eff effects.Effect) effects.Effect {
			key := Key{ID: id, Seq: seq}
			seq++
			return cached.Apply(cache, key, eff)
		})
		return effects.Map(intercepted, func(a A) A {
			cache.Put(whole, a)
			return a
		})
	})
}
