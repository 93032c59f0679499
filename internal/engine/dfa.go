package engine

import "github.com/dshills/automata/internal/automaton"

// RunDFA reports whether m accepts input. A missing transition rejects
// immediately.
func RunDFA(m *automaton.DFA, input []automaton.Symbol) bool {
	state := m.Start
	for _, sym := range input {
		next, ok := m.Next(state, sym)
		if !ok {
			return false
		}
		state = next
	}
	return m.Accept.Has(state)
}
