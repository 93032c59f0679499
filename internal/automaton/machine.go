// Package automaton defines the immutable descriptions of the machines the
// simulation engines run: deterministic and nondeterministic finite
// automata, pushdown automata and Turing machines.
//
// A definition is built once (normally by the loader), validated, and then
// only read. Engines never mutate it, so one definition may be shared by any
// number of concurrent simulations.
package automaton

import (
	"fmt"
	"strings"
)

// Kind identifies a machine model.
type Kind uint8

const (
	// KindUnknown is the zero value.
	KindUnknown Kind = iota
	// KindDFA is a deterministic finite automaton.
	KindDFA
	// KindNFA is a nondeterministic finite automaton with ε-transitions.
	KindNFA
	// KindPDA is a nondeterministic pushdown automaton.
	KindPDA
	// KindTM is a single-tape Turing machine.
	KindTM
)

// String returns the short lower-case name of the kind.
func (k Kind) String() string {
	switch k {
	case KindDFA:
		return "dfa"
	case KindNFA:
		return "nfa"
	case KindPDA:
		return "pda"
	case KindTM:
		return "tm"
	default:
		return "unknown"
	}
}

// Title returns the display name used in battery output.
func (k Kind) Title() string {
	switch k {
	case KindDFA:
		return "DFA"
	case KindNFA:
		return "NFA"
	case KindPDA:
		return "PDA"
	case KindTM:
		return "Turing Machine"
	default:
		return "Unknown"
	}
}

// ParseKind parses a kind name such as "dfa" or "Turing".
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "dfa":
		return KindDFA, nil
	case "nfa", "enfa", "ε-nfa":
		return KindNFA, nil
	case "pda":
		return KindPDA, nil
	case "tm", "turing", "turing machine":
		return KindTM, nil
	default:
		return KindUnknown, fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// Machine is implemented by every definition kind.
type Machine interface {
	// Kind returns the machine model.
	Kind() Kind
	// Definition returns the fields shared by all kinds.
	Definition() *Header
	// Validate checks the definition's invariants.
	Validate() error
}

// Header holds the fields every machine kind shares.
type Header struct {
	Name     string
	States   StateSet
	Alphabet SymbolSet
	Start    State
	Accept   StateSet
}

// NewHeader returns a header with empty sets.
func NewHeader(name string) Header {
	return Header{
		Name:     name,
		States:   make(StateSet),
		Alphabet: make(SymbolSet),
		Accept:   make(StateSet),
	}
}

// Validate checks Start ∈ States and Accept ⊆ States.
func (h *Header) Validate() error {
	if len(h.States) == 0 {
		return &ValidationError{Field: "States", Message: "no states declared"}
	}
	if h.Start == "" {
		return &ValidationError{Field: "Start", Message: "no start state"}
	}
	if !h.States.Has(h.Start) {
		return &ValidationError{Field: "Start", Value: string(h.Start), Message: "not a declared state"}
	}
	for _, s := range h.Accept.Sorted() {
		if !h.States.Has(s) {
			return &ValidationError{Field: "Accept", Value: string(s), Message: "not a declared state"}
		}
	}
	for sym := range h.Alphabet {
		if sym == Epsilon {
			return &ValidationError{Field: "Alphabet", Message: "the empty symbol cannot be an input symbol"}
		}
		if !IsSingleSymbol(string(sym)) {
			return &ValidationError{Field: "Alphabet", Value: string(sym), Message: "symbol must be a single character"}
		}
	}
	return nil
}

func (h *Header) checkState(field string, s State) error {
	if !h.States.Has(s) {
		return &ValidationError{Field: field, Value: string(s), Message: "not a declared state"}
	}
	return nil
}

// checkInput accepts ε or a declared input symbol. An empty alphabet
// declaration disables the check.
func (h *Header) checkInput(field string, s Symbol) error {
	if s == Epsilon || len(h.Alphabet) == 0 || h.Alphabet.Has(s) {
		return nil
	}
	return &ValidationError{Field: field, Value: string(s), Message: "not in the input alphabet"}
}

// Step is the guard of a finite-automaton transition.
type Step struct {
	From State
	On   Symbol
}

// DFA is a deterministic finite automaton. The transition function may be
// partial: a missing entry rejects the input.
type DFA struct {
	Header
	Delta *Relation[Step, State]
}

// NewDFA returns an empty DFA definition.
func NewDFA(name string) *DFA {
	return &DFA{Header: NewHeader(name), Delta: NewRelation[Step, State]()}
}

// Kind implements Machine.
func (m *DFA) Kind() Kind { return KindDFA }

// Definition implements Machine.
func (m *DFA) Definition() *Header { return &m.Header }

// Next returns the successor of (from, on), if defined.
func (m *DFA) Next(from State, on Symbol) (State, bool) {
	targets := m.Delta.Lookup(Step{From: from, On: on})
	if len(targets) == 0 {
		return "", false
	}
	return targets[0], true
}

// Validate implements Machine.
func (m *DFA) Validate() error {
	if err := m.Header.Validate(); err != nil {
		return err
	}
	for _, g := range m.Delta.Guards() {
		if g.On == Epsilon {
			return &ValidationError{Field: "Transitions", Value: string(g.From), Message: "a DFA cannot have ε-transitions"}
		}
		if err := m.checkState("Transitions", g.From); err != nil {
			return err
		}
		if err := m.checkInput("Transitions", g.On); err != nil {
			return err
		}
		targets := m.Delta.Lookup(g)
		if len(targets) > 1 {
			return &ValidationError{
				Field:   "Transitions",
				Value:   fmt.Sprintf("%s,%s", g.From, g.On),
				Message: "more than one target; the machine is not deterministic",
			}
		}
		if err := m.checkState("Transitions", targets[0]); err != nil {
			return err
		}
	}
	return nil
}

// NFA is a nondeterministic finite automaton with ε-transitions.
type NFA struct {
	Header
	Delta *Relation[Step, State]
}

// NewNFA returns an empty NFA definition.
func NewNFA(name string) *NFA {
	return &NFA{Header: NewHeader(name), Delta: NewRelation[Step, State]()}
}

// Kind implements Machine.
func (m *NFA) Kind() Kind { return KindNFA }

// Definition implements Machine.
func (m *NFA) Definition() *Header { return &m.Header }

// Targets returns the states reachable from `from` on `on` (ε included).
func (m *NFA) Targets(from State, on Symbol) []State {
	return m.Delta.Lookup(Step{From: from, On: on})
}

// Validate implements Machine.
func (m *NFA) Validate() error {
	if err := m.Header.Validate(); err != nil {
		return err
	}
	for _, g := range m.Delta.Guards() {
		if err := m.checkState("Transitions", g.From); err != nil {
			return err
		}
		if err := m.checkInput("Transitions", g.On); err != nil {
			return err
		}
		for _, t := range m.Delta.Lookup(g) {
			if err := m.checkState("Transitions", t); err != nil {
				return err
			}
		}
	}
	return nil
}

// DefaultBottom is the stack marker a PDA starts with.
const DefaultBottom Symbol = "$"

// StackStep is the guard of a pushdown transition. On and Top may each be
// Epsilon, in which case the transition does not consume from that side.
type StackStep struct {
	From State
	On   Symbol
	Top  Symbol
}

// Word is a sequence of symbols stored in written order.
type Word string

// Symbols splits the word into its symbols.
func (w Word) Symbols() []Symbol {
	return Symbols(string(w))
}

// StackMove is the effect of a pushdown transition: enter To and push Push
// so that its first symbol ends up on top.
type StackMove struct {
	To   State
	Push Word
}

// PDA is a nondeterministic pushdown automaton accepting by final state.
type PDA struct {
	Header
	StackAlphabet SymbolSet
	Bottom        Symbol
	Delta         *Relation[StackStep, StackMove]
}

// NewPDA returns an empty PDA definition with the default bottom marker.
func NewPDA(name string) *PDA {
	return &PDA{
		Header:        NewHeader(name),
		StackAlphabet: make(SymbolSet),
		Bottom:        DefaultBottom,
		Delta:         NewRelation[StackStep, StackMove](),
	}
}

// Kind implements Machine.
func (m *PDA) Kind() Kind { return KindPDA }

// Definition implements Machine.
func (m *PDA) Definition() *Header { return &m.Header }

// Moves returns the moves enabled by a guard.
func (m *PDA) Moves(g StackStep) []StackMove {
	return m.Delta.Lookup(g)
}

// Validate implements Machine.
func (m *PDA) Validate() error {
	if err := m.Header.Validate(); err != nil {
		return err
	}
	if m.Bottom == Epsilon {
		return &ValidationError{Field: "StackStart", Message: "bottom marker cannot be empty"}
	}
	checkStack := func(s Symbol) error {
		if s == Epsilon || len(m.StackAlphabet) == 0 || m.StackAlphabet.Has(s) || s == m.Bottom {
			return nil
		}
		return &ValidationError{Field: "Transitions", Value: string(s), Message: "not in the stack alphabet"}
	}
	for _, g := range m.Delta.Guards() {
		if err := m.checkState("Transitions", g.From); err != nil {
			return err
		}
		if err := m.checkInput("Transitions", g.On); err != nil {
			return err
		}
		if err := checkStack(g.Top); err != nil {
			return err
		}
		for _, mv := range m.Delta.Lookup(g) {
			if err := m.checkState("Transitions", mv.To); err != nil {
				return err
			}
			for _, s := range mv.Push.Symbols() {
				if err := checkStack(s); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// Direction is a head movement.
type Direction uint8

const (
	// Left moves the head one cell towards the start of the tape.
	Left Direction = iota + 1
	// Right moves the head one cell towards the end of the tape.
	Right
)

// String returns "L" or "R".
func (d Direction) String() string {
	switch d {
	case Left:
		return "L"
	case Right:
		return "R"
	default:
		return "?"
	}
}

// ParseDirection parses "L" or "R" (case-insensitive).
func ParseDirection(s string) (Direction, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "L":
		return Left, true
	case "R":
		return Right, true
	default:
		return 0, false
	}
}

// DefaultBlank is the blank tape symbol.
const DefaultBlank Symbol = "_"

// TapeStep is the guard of a Turing-machine transition.
type TapeStep struct {
	From State
	Read Symbol
}

// TapeMove is the effect of a Turing-machine transition.
type TapeMove struct {
	To    State
	Write Symbol
	Move  Direction
}

// TM is a deterministic single-tape Turing machine over a half-infinite
// tape. It halts when no transition is defined for the current state and
// symbol, and accepts iff it halts in an accept state.
type TM struct {
	Header
	TapeAlphabet SymbolSet
	Blank        Symbol
	Delta        *Relation[TapeStep, TapeMove]
}

// NewTM returns an empty TM definition with the default blank.
func NewTM(name string) *TM {
	return &TM{
		Header:       NewHeader(name),
		TapeAlphabet: make(SymbolSet),
		Blank:        DefaultBlank,
		Delta:        NewRelation[TapeStep, TapeMove](),
	}
}

// Kind implements Machine.
func (m *TM) Kind() Kind { return KindTM }

// Definition implements Machine.
func (m *TM) Definition() *Header { return &m.Header }

// Move returns the transition for (from, read), if defined.
func (m *TM) Move(from State, read Symbol) (TapeMove, bool) {
	moves := m.Delta.Lookup(TapeStep{From: from, Read: read})
	if len(moves) == 0 {
		return TapeMove{}, false
	}
	return moves[0], true
}

// Validate implements Machine.
func (m *TM) Validate() error {
	if err := m.Header.Validate(); err != nil {
		return err
	}
	if m.Blank == Epsilon {
		return &ValidationError{Field: "Blank", Message: "blank symbol cannot be empty"}
	}
	if m.Alphabet.Has(m.Blank) {
		return &ValidationError{Field: "Alphabet", Value: string(m.Blank), Message: "the blank cannot be an input symbol"}
	}
	checkTape := func(s Symbol) error {
		if s == Epsilon {
			return &ValidationError{Field: "Transitions", Message: "tape symbols cannot be empty"}
		}
		if len(m.TapeAlphabet) == 0 || m.TapeAlphabet.Has(s) || m.Alphabet.Has(s) || s == m.Blank {
			return nil
		}
		return &ValidationError{Field: "Transitions", Value: string(s), Message: "not in the tape alphabet"}
	}
	for _, g := range m.Delta.Guards() {
		if err := m.checkState("Transitions", g.From); err != nil {
			return err
		}
		if err := checkTape(g.Read); err != nil {
			return err
		}
		moves := m.Delta.Lookup(g)
		if len(moves) > 1 {
			return &ValidationError{
				Field:   "Transitions",
				Value:   fmt.Sprintf("%s,%s", g.From, g.Read),
				Message: "more than one move; the machine is not deterministic",
			}
		}
		mv := moves[0]
		if err := m.checkState("Transitions", mv.To); err != nil {
			return err
		}
		if err := checkTape(mv.Write); err != nil {
			return err
		}
		if mv.Move != Left && mv.Move != Right {
			return &ValidationError{Field: "Transitions", Value: mv.Move.String(), Message: "direction must be L or R"}
		}
	}
	return nil
}
