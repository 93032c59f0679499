// Package engine simulates automaton definitions on input sequences.
//
// Every entry point is a pure function of (definition, input, options): no
// engine keeps state between calls, and each call owns its frontier,
// worklist, stack and tape. Definitions are only read, so one definition
// may be simulated from many goroutines at once.
//
// # Models
//
//   - RunDFA steps a single state and rejects on a missing transition.
//   - RunNFA tracks a frontier of states, closing it under ε-transitions
//     after every symbol (EpsilonClosure).
//   - RunPDA searches the (state, position, stack) configuration space
//     depth-first with an explicit worklist, accepting as soon as an accept
//     state is entered with the input exhausted.
//   - RunTM steps a deterministic machine over a half-infinite tape until
//     no transition applies.
//
// # Termination
//
// Finite automata always halt and answer Accepted or Rejected. A pushdown
// search can grow its stack forever on ε-moves and a Turing machine can
// loop, so both are bounded by Options and answer Inconclusive, with an
// error wrapping automaton.ErrResourceExhausted or automaton.ErrStepLimit,
// when a ceiling is hit. Cancelling the context has the same effect.
//
// # Usage
//
//	input := automaton.Symbols("aabb")
//	res := engine.Simulate(ctx, machine, input, engine.NewOptions(engine.WithMaxSteps(10_000)))
//	if res.Verdict == engine.Inconclusive {
//	    // res.Err says which limit was hit
//	}
package engine
