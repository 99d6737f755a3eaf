package effects

import "sync"

// effectRope is a batch of effects. Concatenation shares both halves, and
// the flat slice of a concatenation is built once, on first use.
type effectRope struct {
	left, right *effectRope
	leaf        []Effect
	width       int

	once sync.Once
	flat []Effect
}

func leafRope(es []Effect) *effectRope {
	return &effectRope{leaf: es, width: len(es)}
}

func concatRope(a, b *effectRope) *effectRope {
	return &effectRope{left: a, right: b, width: a.width + b.width}
}

// effects returns the batch in order. Callers must not modify it.
func (r *effectRope) effects() []Effect {
	if r.left == nil {
		return r.leaf
	}
	r.once.Do(func() {
		flat := make([]Effect, 0, r.width)
		stack := []*effectRope{r}
		for len(stack) > 0 {
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if top.left == nil {
				flat = append(flat, top.leaf...)
				continue
			}
			stack = append(stack, top.right, top.left)
		}
		r.flat = flat
	})
	return r.flat
}
