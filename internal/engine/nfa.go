package engine

import "github.com/dshills/automata/internal/automaton"

// EpsilonClosure returns every state reachable from states using only
// ε-transitions, states included. The argument is not modified.
func EpsilonClosure(m *automaton.NFA, states automaton.StateSet) automaton.StateSet {
	closure := states.Clone()
	pending := make([]automaton.State, 0, len(states))
	for s := range states {
		pending = append(pending, s)
	}
	for len(pending) > 0 {
		s := pending[len(pending)-1]
		pending = pending[:len(pending)-1]
		for _, next := range m.Targets(s, automaton.Epsilon) {
			if closure.Add(next) {
				pending = append(pending, next)
			}
		}
	}
	return closure
}

// RunNFA reports whether m accepts input by tracking the set of states the
// machine could be in.
func RunNFA(m *automaton.NFA, input []automaton.Symbol) bool {
	frontier := EpsilonClosure(m, automaton.NewStateSet(m.Start))
	for _, sym := range input {
		next := make(automaton.StateSet)
		for s := range frontier {
			for _, t := range m.Targets(s, sym) {
				next.Add(t)
			}
		}
		if len(next) == 0 {
			return false
		}
		frontier = EpsilonClosure(m, next)
	}
	return frontier.Intersects(m.Accept)
}
