package engine

import (
	"context"
	"fmt"

	"github.com/dshills/automata/internal/automaton"
)

// Verdict is the outcome of a simulation.
type Verdict uint8

const (
	// Rejected means the machine definitely does not accept the input.
	Rejected Verdict = iota
	// Accepted means the machine accepts the input.
	Accepted
	// Inconclusive means the run was aborted by a limit or cancellation.
	Inconclusive
)

// String returns the human-readable verdict.
func (v Verdict) String() string {
	switch v {
	case Accepted:
		return "Accepted"
	case Rejected:
		return "Rejected"
	case Inconclusive:
		return "Inconclusive"
	default:
		return "Unknown"
	}
}

// ParseVerdict parses "accepted", "rejected" or "inconclusive".
func ParseVerdict(s string) (Verdict, error) {
	switch s {
	case "accepted", "Accepted", "accept", "true":
		return Accepted, nil
	case "rejected", "Rejected", "reject", "false":
		return Rejected, nil
	case "inconclusive", "Inconclusive":
		return Inconclusive, nil
	default:
		return Rejected, fmt.Errorf("unknown verdict %q", s)
	}
}

func verdictOf(accepted bool) Verdict {
	if accepted {
		return Accepted
	}
	return Rejected
}

// Result is the outcome of Simulate.
type Result struct {
	Verdict Verdict
	// Steps counts symbols consumed (DFA, NFA), configurations explored
	// (PDA) or transitions taken (TM).
	Steps int
	// Err is set when Verdict is Inconclusive.
	Err error
}

// Simulate runs any machine kind on input.
func Simulate(ctx context.Context, m automaton.Machine, input []automaton.Symbol, opts Options) Result {
	switch mm := m.(type) {
	case *automaton.DFA:
		return Result{Verdict: verdictOf(RunDFA(mm, input)), Steps: len(input)}
	case *automaton.NFA:
		return Result{Verdict: verdictOf(RunNFA(mm, input)), Steps: len(input)}
	case *automaton.PDA:
		v, n, err := RunPDA(ctx, mm, input, opts)
		return Result{Verdict: v, Steps: n, Err: err}
	case *automaton.TM:
		v, n, err := RunTM(ctx, mm, input, opts)
		return Result{Verdict: v, Steps: n, Err: err}
	default:
		return Result{Verdict: Inconclusive, Err: fmt.Errorf("%w: %T", automaton.ErrUnknownKind, m)}
	}
}
