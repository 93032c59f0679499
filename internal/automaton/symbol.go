package automaton

import (
	"sort"
	"strings"

	"github.com/rivo/uniseg"
	"golang.org/x/text/unicode/norm"
)

// State identifies a control location of a machine.
type State string

// Symbol is a single input, stack or tape symbol: one grapheme cluster.
type Symbol string

// Epsilon is the empty symbol. As a guard it consumes nothing.
const Epsilon Symbol = ""

// EpsilonToken is the written form of an empty symbol in definition files.
const EpsilonToken = "ε"

// IsEpsilon reports whether a definition field denotes the empty symbol.
func IsEpsilon(field string) bool {
	field = strings.TrimSpace(field)
	return field == "" || Normalize(field) == EpsilonToken
}

// Normalize returns s in Unicode normalization form C so that visually
// identical symbols compare equal.
func Normalize(s string) string {
	return norm.NFC.String(s)
}

// Symbols splits s into grapheme-cluster symbols.
func Symbols(s string) []Symbol {
	s = Normalize(s)
	if s == "" {
		return nil
	}
	out := make([]Symbol, 0, len(s))
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		out = append(out, Symbol(g.Str()))
	}
	return out
}

// IsSingleSymbol reports whether s is exactly one grapheme cluster.
func IsSingleSymbol(s string) bool {
	return uniseg.GraphemeClusterCount(Normalize(s)) == 1
}

// Join concatenates symbols back into a string.
func Join(symbols []Symbol) string {
	var b strings.Builder
	for _, s := range symbols {
		b.WriteString(string(s))
	}
	return b.String()
}

// StateSet is an unordered set of states.
type StateSet map[State]struct{}

// NewStateSet returns a set holding the given states.
func NewStateSet(states ...State) StateSet {
	set := make(StateSet, len(states))
	for _, s := range states {
		set[s] = struct{}{}
	}
	return set
}

// Has reports whether s is in the set.
func (set StateSet) Has(s State) bool {
	_, ok := set[s]
	return ok
}

// Add inserts s and reports whether it was newly added.
func (set StateSet) Add(s State) bool {
	if _, ok := set[s]; ok {
		return false
	}
	set[s] = struct{}{}
	return true
}

// Union adds every state of other to the set.
func (set StateSet) Union(other StateSet) {
	for s := range other {
		set[s] = struct{}{}
	}
}

// Intersects reports whether the two sets share a state.
func (set StateSet) Intersects(other StateSet) bool {
	small, large := set, other
	if len(small) > len(large) {
		small, large = large, small
	}
	for s := range small {
		if large.Has(s) {
			return true
		}
	}
	return false
}

// Equal reports whether both sets hold the same states.
func (set StateSet) Equal(other StateSet) bool {
	if len(set) != len(other) {
		return false
	}
	for s := range set {
		if !other.Has(s) {
			return false
		}
	}
	return true
}

// SubsetOf reports whether every state of set is in other.
func (set StateSet) SubsetOf(other StateSet) bool {
	for s := range set {
		if !other.Has(s) {
			return false
		}
	}
	return true
}

// Sorted returns the states in lexical order.
func (set StateSet) Sorted() []State {
	out := make([]State, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Clone returns an independent copy of the set.
func (set StateSet) Clone() StateSet {
	out := make(StateSet, len(set))
	out.Union(set)
	return out
}

// SymbolSet is an unordered set of symbols.
type SymbolSet map[Symbol]struct{}

// NewSymbolSet returns a set holding the given symbols.
func NewSymbolSet(symbols ...Symbol) SymbolSet {
	set := make(SymbolSet, len(symbols))
	for _, s := range symbols {
		set[s] = struct{}{}
	}
	return set
}

// Has reports whether s is in the set.
func (set SymbolSet) Has(s Symbol) bool {
	_, ok := set[s]
	return ok
}

// Add inserts s.
func (set SymbolSet) Add(s Symbol) {
	set[s] = struct{}{}
}
