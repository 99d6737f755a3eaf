// Package effects provides an extensible effects runtime for Go.
//
// A computation of type Eff[A] describes a program that produces an A while
// requesting effects from interpreters it does not know about. Effects from
// independent families (failure handling, tasks, state, logging, ...) are
// mixed freely in one computation and removed one family at a time by
// interpreters, until Run produces the value.
//
// # Computations
//
// Eff has three shapes:
//   - pure: the value is known,
//   - impure: one effect is pending, followed by a continuation,
//   - impure_ap: a batch of independent effects is pending, followed by a
//     continuation that receives all of their results.
//
// Bind builds the monadic shape, Combine, Zip, Traverse and Sequence build
// batches. Interpreters may run batch members concurrently.
//
// # Interpreters
//
// An interpreter implements Loop or StatelessLoop for its family and calls
// InterpretLoop. Effects of other families pass through untouched, so
// interpreters compose in any order:
//
//	out := effects.Run(safe.RunSafe(task.Interpret(ctx, program, cfg)))
//
// # Last actions
//
// A Last action attached with AddLast runs once, after the computation has
// produced its value. OnAbandon registers an action for interpreters that
// drop the rest of a computation, such as a failure short-circuit.
package effects
