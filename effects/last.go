package effects

// Last is an optional action run once when a computation has produced its
// final value. Actions combine sequentially and survive every composition.
type Last struct {
	action func() Eff[struct{}]
}

// LastEff defers action to the end of the computation it is attached to.
func LastEff(action func() Eff[struct{}]) Last {
	return Last{action: action}
}

// LastAction defers a plain function to the end of the computation.
func LastAction(fn func()) Last {
	return LastEff(func() Eff[struct{}] {
		fn()
		return Unit()
	})
}

func (l Last) IsNone() bool {
	return l.action == nil
}

// Then runs l first and next afterwards.
func (l Last) Then(next Last) Last {
	switch {
	case l.action == nil:
		return next
	case next.action == nil:
		return l
	}
	first, second := l.action, next.action
	return Last{action: func() Eff[struct{}] {
		return Then(first(), Defer(second))
	}}
}

// Eff returns the action as a computation, or Unit when there is none.
func (l Last) Eff() Eff[struct{}] {
	if l.action == nil {
		return Unit()
	}
	return l.action()
}
