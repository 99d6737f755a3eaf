package effects

type kind uint8

const (
	pureKind kind = iota
	impureKind
	impureApKind
)

func (k kind) String() string {
	switch k {
	case pureKind:
		return "pure"
	case impureKind:
		return "impure"
	case impureApKind:
		return "impure_ap"
	default:
		return "unknown"
	}
}

type node struct {
	kind   kind
	value  any
	effect Effect
	batch  *effectRope
	k      Continuation
	last   Last
}

// Eff is a suspended computation producing an A. It is one of
//   - pure: a known value,
//   - impure: one pending effect and the continuation consuming its result,
//   - impure_ap: a batch of mutually independent effects and the
//     continuation consuming all of their results, in batch order.
//
// Every variant carries an optional Last action. Eff values are immutable
// and may be interpreted any number of times.
type Eff[A any] struct {
	n node
}

// Pure lifts a value into a computation with no effects.
func Pure[A any](a A) Eff[A] {
	return Eff[A]{n: node{kind: pureKind, value: a}}
}

// Unit is Pure(struct{}{}).
func Unit() Eff[struct{}] {
	return Pure(struct{}{})
}

// Send suspends on a single effect whose result is the computation's value.
func Send[A any](e Effect) Eff[A] {
	return Impure[A](e, identity())
}

// Impure suspends on e and resumes with k.
func Impure[A any](e Effect, k Continuation) Eff[A] {
	return Eff[A]{n: node{kind: impureKind, effect: e, k: k}}
}

// ImpureAp suspends on a batch of independent effects. k receives a []any
// holding one result per effect, in batch order.
func ImpureAp[A any](es []Effect, k Continuation) Eff[A] {
	if len(es) == 0 {
		return Typed[A](k.Apply([]any{}))
	}
	batch := make([]Effect, len(es))
	copy(batch, es)
	return Eff[A]{n: node{kind: impureApKind, batch: leafRope(batch), k: k}}
}

// Erase forgets the result type.
func Erase[A any](e Eff[A]) Eff[any] {
	return Eff[any]{n: e.n}
}

// Typed restores the result type of an erased computation. The value is
// checked when it is produced, not here.
func Typed[A any](e Eff[any]) Eff[A] {
	return Eff[A]{n: e.n}
}

// IsPure reports whether the computation has no pending effect.
func (e Eff[A]) IsPure() bool {
	return e.n.kind == pureKind
}

// Effects lists the pending effects of the outermost suspension.
func (e Eff[A]) Effects() []Effect {
	switch e.n.kind {
	case impureKind:
		return []Effect{e.n.effect}
	case impureApKind:
		batch := e.n.batch.effects()
		out := make([]Effect, len(batch))
		copy(out, batch)
		return out
	default:
		return nil
	}
}

// Last returns the action attached to the outermost node.
func (e Eff[A]) Last() Last {
	return e.n.last
}

func (e Eff[A]) String() string {
	return "Eff(" + e.n.kind.String() + ")"
}

// AddLast attaches l to run after any action already attached.
func AddLast[A any](e Eff[A], l Last) Eff[A] {
	if l.IsNone() {
		return e
	}
	e.n.last = e.n.last.Then(l)
	return e
}

// OnAbandon registers l to run if an interpreter discards the rest of e
// without resuming it. A pure computation cannot be abandoned.
func OnAbandon[A any](e Eff[A], l Last) Eff[A] {
	if e.n.kind == pureKind {
		return e
	}
	e.n.k = e.n.k.WithOnAbandon(l)
	return e
}
