package effects

// Run interprets a computation whose effects have all been handled. It
// resolves NoEffect suspensions, runs the attached Last actions once the
// value is known and returns the value.
//
// Run panics with ErrUnhandledEffect if any other effect remains.
func Run[A any](e Eff[A]) A {
	n := e.n
	for {
		switch n.kind {
		case pureKind:
			if !n.last.IsNone() {
				Run(n.last.action())
			}
			return Coerce[A](n.value)

		case impureKind:
			ne, ok := n.effect.(NoEffect)
			if !ok {
				panic(unhandled(n.effect))
			}
			n = AddLast(n.k.Apply(ne.Value), n.last).n

		case impureApKind:
			batch := n.batch.effects()
			values := make([]any, len(batch))
			for i, be := range batch {
				ne, ok := be.(NoEffect)
				if !ok {
					panic(unhandled(be))
				}
				values[i] = ne.Value
			}
			n = AddLast(n.k.Apply(values), n.last).n
		}
	}
}
