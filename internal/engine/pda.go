package engine

import (
	"context"
	"strconv"
	"strings"

	"github.com/dshills/automata/internal/automaton"
)

// pdaConfig is one node of the pushdown configuration space. Each config
// owns its stack; successors never share backing arrays with it.
type pdaConfig struct {
	state automaton.State
	pos   int
	stack []automaton.Symbol // top at the end
}

func (c pdaConfig) key() string {
	var b strings.Builder
	b.WriteString(string(c.state))
	b.WriteByte(0)
	b.WriteString(strconv.Itoa(c.pos))
	b.WriteByte(0)
	for _, s := range c.stack {
		b.WriteString(string(s))
		b.WriteByte(0x1f)
	}
	return b.String()
}

// RunPDA searches for an accepting run of m on input. The search is
// depth-first over an explicit worklist and stops at the first successor
// that sits in an accept state with the input exhausted; the stack need
// not be empty. It returns the verdict and the number of configurations
// explored.
//
// The configuration space is not bounded a priori (ε-moves may grow the
// stack forever), so exploring more than opts.MaxConfigurations
// configurations yields Inconclusive and a *automaton.LimitError.
func RunPDA(ctx context.Context, m *automaton.PDA, input []automaton.Symbol, opts Options) (Verdict, int, error) {
	opts = opts.withDefaults()

	pushCache := make(map[automaton.Word][]automaton.Symbol)
	pushSymbols := func(w automaton.Word) []automaton.Symbol {
		syms, ok := pushCache[w]
		if !ok {
			syms = w.Symbols()
			pushCache[w] = syms
		}
		return syms
	}

	initial := pdaConfig{state: m.Start, stack: []automaton.Symbol{m.Bottom}}
	worklist := []pdaConfig{initial}

	var visited map[string]struct{}
	if opts.Dedupe {
		visited = map[string]struct{}{initial.key(): {}}
	}

	explored := 0
	for len(worklist) > 0 {
		if explored%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return Inconclusive, explored, err
			}
		}
		if explored >= opts.MaxConfigurations {
			return Inconclusive, explored, &automaton.LimitError{
				Kind:           automaton.KindPDA,
				Limit:          opts.MaxConfigurations,
				Configurations: true,
			}
		}

		cfg := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]
		explored++

		if opts.Trace != nil {
			opts.Trace(Configuration{State: cfg.state, Pos: cfg.pos, Stack: cfg.stack})
		}

		top := automaton.Epsilon
		if len(cfg.stack) > 0 {
			top = cfg.stack[len(cfg.stack)-1]
		}
		sym := automaton.Epsilon
		if cfg.pos < len(input) {
			sym = input[cfg.pos]
		}

		for _, g := range stackGuards(cfg.state, sym, top) {
			for _, mv := range m.Moves(g) {
				next := successor(cfg, g, mv, pushSymbols(mv.Push))
				if next.pos == len(input) && m.Accept.Has(next.state) {
					return Accepted, explored, nil
				}
				if visited != nil {
					k := next.key()
					if _, seen := visited[k]; seen {
						continue
					}
					visited[k] = struct{}{}
				}
				worklist = append(worklist, next)
			}
		}
	}
	return Rejected, explored, nil
}

// stackGuards lists the distinct guards that can fire in state with the
// given input and stack-top symbols. Consuming guards come last so that the
// depth-first search tries them first.
func stackGuards(state automaton.State, sym, top automaton.Symbol) []automaton.StackStep {
	ons := []automaton.Symbol{automaton.Epsilon}
	if sym != automaton.Epsilon {
		ons = append(ons, sym)
	}
	tops := []automaton.Symbol{automaton.Epsilon}
	if top != automaton.Epsilon {
		tops = append(tops, top)
	}
	guards := make([]automaton.StackStep, 0, len(ons)*len(tops))
	for _, on := range ons {
		for _, t := range tops {
			guards = append(guards, automaton.StackStep{From: state, On: on, Top: t})
		}
	}
	return guards
}

// successor applies mv to cfg. A concrete Top guard pops exactly one
// symbol; push is applied in reverse so push[0] ends on top.
func successor(cfg pdaConfig, g automaton.StackStep, mv automaton.StackMove, push []automaton.Symbol) pdaConfig {
	keep := len(cfg.stack)
	if g.Top != automaton.Epsilon {
		keep--
	}
	stack := make([]automaton.Symbol, keep, keep+len(push))
	copy(stack, cfg.stack[:keep])
	for i := len(push) - 1; i >= 0; i-- {
		stack = append(stack, push[i])
	}
	pos := cfg.pos
	if g.On != automaton.Epsilon {
		pos++
	}
	return pdaConfig{state: mv.To, pos: pos, stack: stack}
}
