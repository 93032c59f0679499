package engine

import (
	"context"

	"github.com/dshills/automata/internal/automaton"
)

// RunTM runs m on input until no transition applies and reports whether it
// halted in an accept state, along with the number of transitions taken.
//
// The tape starts as the input followed by one blank and only grows to the
// right. A left move on cell 0 leaves the head on cell 0. Taking more than
// opts.MaxSteps transitions yields Inconclusive and a *automaton.LimitError.
func RunTM(ctx context.Context, m *automaton.TM, input []automaton.Symbol, opts Options) (Verdict, int, error) {
	opts = opts.withDefaults()

	tape := make([]automaton.Symbol, len(input), len(input)+1)
	copy(tape, input)
	tape = append(tape, m.Blank)
	head := 0
	state := m.Start

	for steps := 0; ; steps++ {
		if steps%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return Inconclusive, steps, err
			}
		}
		if opts.Trace != nil {
			opts.Trace(Configuration{State: state, Tape: tape, Head: head})
		}

		read := m.Blank
		if head < len(tape) {
			read = tape[head]
		}
		mv, ok := m.Move(state, read)
		if !ok {
			return verdictOf(m.Accept.Has(state)), steps, nil
		}
		if steps >= opts.MaxSteps {
			return Inconclusive, steps, &automaton.LimitError{Kind: automaton.KindTM, Limit: opts.MaxSteps}
		}

		tape[head] = mv.Write
		state = mv.To
		switch mv.Move {
		case automaton.Right:
			head++
			if head >= len(tape) {
				tape = append(tape, m.Blank)
			}
		case automaton.Left:
			if head > 0 {
				head--
			}
		}
	}
}
