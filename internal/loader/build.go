package loader

import (
	"fmt"
	"strings"

	"github.com/dshills/automata/internal/automaton"
)

// rawDefinition is the format-neutral form every decoder produces.
// Transition records keep the comma-separated layout of the text format.
type rawDefinition struct {
	Kind          string   `toml:"kind" yaml:"kind"`
	Name          string   `toml:"name" yaml:"name"`
	States        []string `toml:"states" yaml:"states"`
	Alphabet      []string `toml:"alphabet" yaml:"alphabet"`
	Start         string   `toml:"start" yaml:"start"`
	Accept        []string `toml:"accept" yaml:"accept"`
	Transitions   []string `toml:"transitions" yaml:"transitions"`
	StackAlphabet []string `toml:"stack_alphabet" yaml:"stack_alphabet"`
	StackStart    string   `toml:"stack_start" yaml:"stack_start"`
	TapeAlphabet  []string `toml:"tape_alphabet" yaml:"tape_alphabet"`
	Blank         string   `toml:"blank" yaml:"blank"`

	startLines []string
}

// Field counts of a transition record per kind.
const (
	dfaFields    = 3
	nfaMinFields = 3
	pdaFields    = 5
	tmFields     = 5
)

func build(raw *rawDefinition, kind automaton.Kind) (automaton.Machine, error) {
	switch kind {
	case automaton.KindDFA:
		m := automaton.NewDFA(raw.Name)
		fillHeader(&m.Header, raw)
		return m, eachRecord(raw, kind, func(line int, text string, f []string) error {
			if len(f) != dfaFields {
				return malformed(kind, line, text, fmt.Sprintf("want %d fields (src, symbol, dst), got %d", dfaFields, len(f)))
			}
			m.Delta.Add(automaton.Step{From: automaton.State(f[0]), On: symbol(f[1])}, automaton.State(f[2]))
			return nil
		})

	case automaton.KindNFA:
		m := automaton.NewNFA(raw.Name)
		fillHeader(&m.Header, raw)
		return m, eachRecord(raw, kind, func(line int, text string, f []string) error {
			if len(f) < nfaMinFields {
				return malformed(kind, line, text, fmt.Sprintf("want at least %d fields (src, symbol, dst...), got %d", nfaMinFields, len(f)))
			}
			g := automaton.Step{From: automaton.State(f[0]), On: symbol(f[1])}
			for _, dst := range f[2:] {
				if dst == "" {
					return malformed(kind, line, text, "empty destination state")
				}
				m.Delta.Add(g, automaton.State(dst))
			}
			return nil
		})

	case automaton.KindPDA:
		m := automaton.NewPDA(raw.Name)
		fillHeader(&m.Header, raw)
		addSymbols(m.StackAlphabet, raw.StackAlphabet)
		if raw.StackStart != "" {
			m.Bottom = automaton.Symbol(automaton.Normalize(strings.TrimSpace(raw.StackStart)))
		}
		return m, eachRecord(raw, kind, func(line int, text string, f []string) error {
			if len(f) != pdaFields {
				return malformed(kind, line, text, fmt.Sprintf("want %d fields (src, symbol, top, dst, push), got %d", pdaFields, len(f)))
			}
			g := automaton.StackStep{From: automaton.State(f[0]), On: symbol(f[1]), Top: symbol(f[2])}
			m.Delta.Add(g, automaton.StackMove{To: automaton.State(f[3]), Push: word(f[4])})
			return nil
		})

	case automaton.KindTM:
		m := automaton.NewTM(raw.Name)
		fillHeader(&m.Header, raw)
		addSymbols(m.TapeAlphabet, raw.TapeAlphabet)
		if raw.Blank != "" {
			m.Blank = automaton.Symbol(automaton.Normalize(strings.TrimSpace(raw.Blank)))
		}
		return m, eachRecord(raw, kind, func(line int, text string, f []string) error {
			if len(f) != tmFields {
				return malformed(kind, line, text, fmt.Sprintf("want %d fields (src, read, dst, write, direction), got %d", tmFields, len(f)))
			}
			dir, ok := automaton.ParseDirection(f[4])
			if !ok {
				return malformed(kind, line, text, fmt.Sprintf("direction %q is not L or R", f[4]))
			}
			g := automaton.TapeStep{From: automaton.State(f[0]), Read: automaton.Symbol(f[1])}
			m.Delta.Add(g, automaton.TapeMove{To: automaton.State(f[2]), Write: automaton.Symbol(f[3]), Move: dir})
			return nil
		})

	default:
		return nil, fmt.Errorf("%w: %s", automaton.ErrUnknownKind, kind)
	}
}

func fillHeader(h *automaton.Header, raw *rawDefinition) {
	for _, s := range raw.States {
		h.States.Add(automaton.State(field(s)))
	}
	addSymbols(h.Alphabet, raw.Alphabet)
	h.Start = automaton.State(field(raw.Start))
	for _, s := range raw.Accept {
		h.Accept.Add(automaton.State(field(s)))
	}
}

func addSymbols(dst automaton.SymbolSet, lines []string) {
	for _, s := range lines {
		dst.Add(automaton.Symbol(field(s)))
	}
}

// eachRecord splits every transition record on commas, trims the fields
// and hands them to fn together with the record's 1-based index.
func eachRecord(raw *rawDefinition, kind automaton.Kind, fn func(line int, text string, fields []string) error) error {
	for i, text := range raw.Transitions {
		parts := strings.Split(text, ",")
		for j := range parts {
			parts[j] = field(parts[j])
		}
		if err := fn(i+1, text, parts); err != nil {
			return err
		}
	}
	return nil
}

func field(s string) string {
	return automaton.Normalize(strings.TrimSpace(s))
}

func symbol(s string) automaton.Symbol {
	if automaton.IsEpsilon(s) {
		return automaton.Epsilon
	}
	return automaton.Symbol(s)
}

func word(s string) automaton.Word {
	if automaton.IsEpsilon(s) {
		return ""
	}
	return automaton.Word(s)
}

func malformed(kind automaton.Kind, line int, text, msg string) error {
	return &automaton.MalformedTransitionError{Kind: kind, Line: line, Text: text, Message: msg}
}
