package memo

import (
	"sync"
	"sync/atomic"
)

// TrieCache keeps slots in two generations of nested maps, id then seq.
// When the head generation holds maxSize slots the older generation is
// dropped and becomes the new, empty head. Lookups fall back to the older
// generation, so a slot survives at least maxSize later writes.
type TrieCache struct {
	mu      sync.Mutex
	memos   [2]*sync.Map
	headIdx atomic.Uint32
	size    atomic.Uint32
	maxSize uint32
}

var _ Cache = (*TrieCache)(nil)

func NewTrieCache(maxSize uint32) *TrieCache {
	if maxSize == 0 {
		panic("maxSize should be greater than 0")
	}
	return &TrieCache{
		memos:   [2]*sync.Map{{}, {}},
		maxSize: maxSize,
	}
}

func (t *TrieCache) generations() (head, tail *sync.Map) {
	t.mu.Lock()
	defer t.mu.Unlock()
	idx := t.headIdx.Load()
	return t.memos[idx], t.memos[1-idx]
}

func (t *TrieCache) Get(key Key) (any, bool) {
	head, tail := t.generations()
	for _, m := range []*sync.Map{head, tail} {
		seqs, ok := m.Load(key.ID)
		if !ok {
			continue
		}
		if v, ok := seqs.(*sync.Map).Load(key.Seq); ok {
			return v, true
		}
	}
	return nil, false
}

func (t *TrieCache) Put(key Key, value any) {
	t.mu.Lock()
	if t.size.Load() >= t.maxSize {
		next := 1 - t.headIdx.Load()
		t.memos[next] = &sync.Map{}
		t.headIdx.Store(next)
		t.size.Store(0)
	}
	head := t.memos[t.headIdx.Load()]
	t.size.Add(1)
	t.mu.Unlock()

	seqs, _ := head.LoadOrStore(key.ID, &sync.Map{})
	seqs.(*sync.Map).Store(key.Seq, value)
}

func (t *TrieCache) Reset(id string) {
	head, tail := t.generations()
	head.Delete(id)
	tail.Delete(id)
}

func (t *TrieCache) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.memos = [2]*sync.Map{{}, {}}
	t.size.Store(0)
}
