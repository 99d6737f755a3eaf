package effects

import (
	effectmodel "github.com/on-the-ground/effstack/effects/internal/model"
)

// Family names a set of related effects handled by one interpreter.
type Family = effectmodel.Family

// Effect is an immutable request a computation makes of its interpreter.
// The family tag is the capability check used to recover the concrete
// payload type at interpretation time.
type Effect interface {
	Family() Family
}

// NoEffect is the trivial effect: its result is already known.
// Every interpreter resolves it inline.
type NoEffect struct {
	Value any
}

func (NoEffect) Family() Family {
	return effectmodel.FamilyNoEffect
}
