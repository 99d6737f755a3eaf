package memo

import (
	"strconv"
	"sync"

	"github.com/cespare/xxhash/v2"
	ristretto "github.com/dgraph-io/ristretto/v2"
	"github.com/on-the-ground/effstack/effects"
	"go.uber.org/zap"
)

// RistrettoConfig sizes a RistrettoCache. Every slot costs 1.
type RistrettoConfig struct {
	NumCounters int64
	MaxCost     int64
	BufferItems int64
}

func DefaultRistrettoConfig() RistrettoConfig {
	return RistrettoConfig{
		NumCounters: 1e5,
		MaxCost:     1e4,
		BufferItems: 64,
	}
}

// RistrettoCache is a bounded Cache. Slots may be evicted under pressure,
// in which case the effect runs again. Slots are addressed by the xxhash of
// their key and keep the key, so two keys sharing a hash never read each
// other's value.
type RistrettoCache struct {
	cache *ristretto.Cache[uint64, slot]

	mu   sync.Mutex
	byID map[string]map[uint64]struct{}
}

var _ Cache = (*RistrettoCache)(nil)

type slot struct {
	key   Key
	value any
}

func NewRistrettoCache(cfg RistrettoConfig) (*RistrettoCache, error) {
	cache, err := ristretto.NewCache(&ristretto.Config[uint64, slot]{
		NumCounters: cfg.NumCounters,
		MaxCost:     cfg.MaxCost,
		BufferItems: cfg.BufferItems,

		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, err
	}
	return &RistrettoCache{cache: cache, byID: map[string]map[uint64]struct{}{}}, nil
}

func hashKey(key Key) uint64 {
	d := xxhash.New()
	_, _ = d.WriteString(key.ID)
	_, _ = d.Write([]byte{0})
	_, _ = d.WriteString(strconv.Itoa(key.Seq))
	return d.Sum64()
}

func (r *RistrettoCache) Get(key Key) (any, bool) {
	s, ok := r.cache.Get(hashKey(key))
	if !ok || s.key != key {
		return nil, false
	}
	return s.value, true
}

func (r *RistrettoCache) Put(key Key, value any) {
	h := hashKey(key)
	if !r.cache.Set(h, slot{key: key, value: value}, 1) {
		effects.Logger().Debug("memo slot dropped", zap.Stringer("key", key))
		return
	}
	r.cache.Wait()

	r.mu.Lock()
	defer r.mu.Unlock()
	hs, ok := r.byID[key.ID]
	if !ok {
		hs = map[uint64]struct{}{}
		r.byID[key.ID] = hs
	}
	hs[h] = struct{}{}
}

func (r *RistrettoCache) Reset(id string) {
	r.mu.Lock()
	hs := r.byID[id]
	delete(r.byID, id)
	r.mu.Unlock()

	for h := range hs {
		r.cache.Del(h)
	}
}

func (r *RistrettoCache) Clear() {
	r.mu.Lock()
	r.byID = map[string]map[uint64]struct{}{}
	r.mu.Unlock()
	r.cache.Clear()
}

func (r *RistrettoCache) Close() {
	r.cache.Close()
}
