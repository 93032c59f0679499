package engine

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/automata/internal/automaton"
)

// ============================================================================
// Fixtures
// ============================================================================

func endsInOne() *automaton.DFA {
	m := automaton.NewDFA("ends-in-1")
	m.States = automaton.NewStateSet("q0", "q1")
	m.Alphabet = automaton.NewSymbolSet("0", "1")
	m.Start = "q0"
	m.Accept = automaton.NewStateSet("q1")
	m.Delta.Add(automaton.Step{From: "q0", On: "0"}, "q0")
	m.Delta.Add(automaton.Step{From: "q0", On: "1"}, "q1")
	m.Delta.Add(automaton.Step{From: "q1", On: "0"}, "q0")
	m.Delta.Add(automaton.Step{From: "q1", On: "1"}, "q1")
	return m
}

// endsInOneOne accepts binary strings ending in "11" along
// one branch: q0 loops, guesses a 1 into q1, and q1 reads 1 into q2.
func endsInOneOne() *automaton.NFA {
	m := automaton.NewNFA("guess")
	m.States = automaton.NewStateSet("q0", "q1", "q2")
	m.Alphabet = automaton.NewSymbolSet("0", "1")
	m.Start = "q0"
	m.Accept = automaton.NewStateSet("q2")
	m.Delta.Add(automaton.Step{From: "q0", On: "0"}, "q0")
	m.Delta.Add(automaton.Step{From: "q0", On: "1"}, "q0")
	m.Delta.Add(automaton.Step{From: "q0", On: "1"}, "q1")
	m.Delta.Add(automaton.Step{From: "q1", On: "1"}, "q2")
	return m
}

// epsilonChain: p0 -ε-> p1 -ε-> p2 -ε-> p0, p2 -a-> p3, p3 -ε-> p4.
func epsilonChain() *automaton.NFA {
	m := automaton.NewNFA("chain")
	m.States = automaton.NewStateSet("p0", "p1", "p2", "p3", "p4")
	m.Alphabet = automaton.NewSymbolSet("a")
	m.Start = "p0"
	m.Accept = automaton.NewStateSet("p4")
	m.Delta.Add(automaton.Step{From: "p0", On: automaton.Epsilon}, "p1")
	m.Delta.Add(automaton.Step{From: "p1", On: automaton.Epsilon}, "p2")
	m.Delta.Add(automaton.Step{From: "p2", On: automaton.Epsilon}, "p0")
	m.Delta.Add(automaton.Step{From: "p2", On: "a"}, "p3")
	m.Delta.Add(automaton.Step{From: "p3", On: automaton.Epsilon}, "p4")
	return m
}

func anbn(acceptEmpty bool) *automaton.PDA {
	m := automaton.NewPDA("anbn")
	m.States = automaton.NewStateSet("q0", "q1", "q2")
	m.Alphabet = automaton.NewSymbolSet("a", "b")
	m.StackAlphabet = automaton.NewSymbolSet("$", "A")
	m.Start = "q0"
	m.Accept = automaton.NewStateSet("q2")
	add := func(from automaton.State, on, top automaton.Symbol, to automaton.State, push automaton.Word) {
		m.Delta.Add(automaton.StackStep{From: from, On: on, Top: top}, automaton.StackMove{To: to, Push: push})
	}
	add("q0", "a", "$", "q0", "A$")
	add("q0", "a", "A", "q0", "AA")
	add("q0", "b", "A", "q1", "")
	add("q1", "b", "A", "q1", "")
	add("q1", automaton.Epsilon, "$", "q2", "")
	if acceptEmpty {
		add("q0", automaton.Epsilon, "$", "q2", "")
	}
	return m
}

func parity() *automaton.TM {
	m := automaton.NewTM("parity")
	m.States = automaton.NewStateSet("q0", "q1", "q_accept")
	m.Alphabet = automaton.NewSymbolSet("a")
	m.Start = "q0"
	m.Accept = automaton.NewStateSet("q_accept")
	m.Delta.Add(automaton.TapeStep{From: "q0", Read: "a"}, automaton.TapeMove{To: "q1", Write: "a", Move: automaton.Right})
	m.Delta.Add(automaton.TapeStep{From: "q1", Read: "a"}, automaton.TapeMove{To: "q0", Write: "a", Move: automaton.Right})
	m.Delta.Add(automaton.TapeStep{From: "q0", Read: "_"}, automaton.TapeMove{To: "q_accept", Write: "_", Move: automaton.Right})
	return m
}

// allStrings enumerates every string over alphabet up to length n.
func allStrings(alphabet []string, n int) []string {
	out := []string{""}
	layer := []string{""}
	for i := 0; i < n; i++ {
		var next []string
		for _, p := range layer {
			for _, a := range alphabet {
				next = append(next, p+a)
			}
		}
		out = append(out, next...)
		layer = next
	}
	return out
}

// ============================================================================
// DFA
// ============================================================================

func TestRunDFA_EndsInOne(t *testing.T) {
	m := endsInOne()
	require.NoError(t, m.Validate())

	tests := map[string]bool{
		"0": false, "1": true, "01": true, "10": false, "111": true, "100": false, "": false,
	}
	for in, want := range tests {
		assert.Equal(t, want, RunDFA(m, automaton.Symbols(in)), "input %q", in)
	}
}

func TestRunDFA_MissingTransitionRejects(t *testing.T) {
	m := endsInOne()
	assert.False(t, RunDFA(m, automaton.Symbols("12")))
	assert.False(t, RunDFA(m, automaton.Symbols("x1")))
}

func TestRunDFA_Deterministic(t *testing.T) {
	m := endsInOne()
	for _, in := range allStrings([]string{"0", "1"}, 5) {
		first := RunDFA(m, automaton.Symbols(in))
		for i := 0; i < 3; i++ {
			assert.Equal(t, first, RunDFA(m, automaton.Symbols(in)), "input %q", in)
		}
	}
}

// ============================================================================
// NFA
// ============================================================================

func TestEpsilonClosure(t *testing.T) {
	m := epsilonChain()

	got := EpsilonClosure(m, automaton.NewStateSet("p0"))
	assert.Equal(t, []automaton.State{"p0", "p1", "p2"}, got.Sorted())

	got = EpsilonClosure(m, automaton.NewStateSet("p3"))
	assert.Equal(t, []automaton.State{"p3", "p4"}, got.Sorted())

	in := automaton.NewStateSet("p4")
	EpsilonClosure(m, in)
	assert.Equal(t, []automaton.State{"p4"}, in.Sorted(), "argument must not be modified")
}

func TestEpsilonClosure_Idempotent(t *testing.T) {
	m := epsilonChain()
	for _, seed := range [][]automaton.State{{"p0"}, {"p1"}, {"p3"}, {"p2", "p3"}, {"p0", "p1", "p2", "p3", "p4"}} {
		once := EpsilonClosure(m, automaton.NewStateSet(seed...))
		twice := EpsilonClosure(m, once)
		assert.True(t, once.Equal(twice), "seed %v", seed)
	}
}

func TestRunNFA_Scenario(t *testing.T) {
	m := endsInOneOne()
	require.NoError(t, m.Validate())

	tests := []struct {
		input string
		want  bool
	}{
		{"", false},
		{"a", false},
		{"ab", false},
		{"aba", false},
		{"aab", false},
		{"11", true},  // q0 -1-> q1 -1-> q2
		{"011", true}, // loop, then the branch
		{"10", false}, // the branch dies on 0
		{"1", false},
		{"0110", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RunNFA(m, automaton.Symbols(tt.input)), "input %q", tt.input)
	}
}

func TestRunNFA_EpsilonMoves(t *testing.T) {
	m := epsilonChain()
	assert.True(t, RunNFA(m, automaton.Symbols("a")))
	assert.False(t, RunNFA(m, automaton.Symbols("")))
	assert.False(t, RunNFA(m, automaton.Symbols("aa")))
}

func TestRunNFA_Monotonic(t *testing.T) {
	base := endsInOneOne()
	extended := endsInOneOne()
	extended.Delta.Add(automaton.Step{From: "q1", On: "0"}, "q2")
	extended.Delta.Add(automaton.Step{From: "q2", On: automaton.Epsilon}, "q0")

	for _, in := range allStrings([]string{"0", "1"}, 6) {
		if RunNFA(base, automaton.Symbols(in)) {
			assert.True(t, RunNFA(extended, automaton.Symbols(in)), "input %q lost by adding transitions", in)
		}
	}
}

// ============================================================================
// PDA
// ============================================================================

func TestRunPDA_AnBn(t *testing.T) {
	m := anbn(true)
	require.NoError(t, m.Validate())

	tests := []struct {
		input string
		want  Verdict
	}{
		{"", Accepted},
		{"ab", Accepted},
		{"aabb", Accepted},
		{"aaabbb", Accepted},
		{"aab", Rejected},
		{"abb", Rejected},
		{"ba", Rejected},
		{"abab", Rejected},
		{"a", Rejected},
	}
	for _, tt := range tests {
		got, _, err := RunPDA(context.Background(), m, automaton.Symbols(tt.input), DefaultOptions())
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.want, got, "input %q", tt.input)
	}
}

func TestRunPDA_EmptyInputNeedsEpsilonMove(t *testing.T) {
	got, _, err := RunPDA(context.Background(), anbn(false), nil, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, Rejected, got)
}

// Acceptance happens on a transition; an accepting start state alone does
// not accept the empty input.
func TestRunPDA_StartStateAcceptingNeedsTransition(t *testing.T) {
	m := automaton.NewPDA("bare")
	m.States.Add("q0")
	m.Start = "q0"
	m.Accept.Add("q0")

	got, _, err := RunPDA(context.Background(), m, nil, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, Rejected, got)

	m.StackAlphabet.Add("$")
	m.Delta.Add(automaton.StackStep{From: "q0", On: automaton.Epsilon, Top: "$"}, automaton.StackMove{To: "q0", Push: "$"})
	got, _, err = RunPDA(context.Background(), m, nil, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, Accepted, got)
}

func TestRunPDA_StackDiscipline(t *testing.T) {
	m := anbn(true)
	// A pop on an ε-guarded top must never underflow: pop the marker and
	// keep popping via ε-top moves that push nothing.
	m.Delta.Add(automaton.StackStep{From: "q1", On: automaton.Epsilon, Top: "A"}, automaton.StackMove{To: "q1"})
	m.Delta.Add(automaton.StackStep{From: "q1", On: automaton.Epsilon, Top: automaton.Epsilon}, automaton.StackMove{To: "q1"})

	for _, in := range allStrings([]string{"a", "b"}, 6) {
		traced := 0
		trace := func(c Configuration) {
			traced++
			if c.State == "q0" {
				assert.NotEmpty(t, c.Stack, "input %q: the marker is only popped on leaving q0", in)
			}
		}
		_, _, err := RunPDA(context.Background(), m, automaton.Symbols(in), NewOptions(WithTrace(trace)))
		require.NoError(t, err, in)
		assert.Positive(t, traced, in)
	}
}

func TestRunPDA_PopOnlyOnConcreteTop(t *testing.T) {
	m := automaton.NewPDA("pop")
	m.States = automaton.NewStateSet("s", "t")
	m.Alphabet = automaton.NewSymbolSet("x")
	m.Start = "s"
	m.Accept = automaton.NewStateSet("t")
	// ε top guard with an empty push leaves the stack untouched.
	m.Delta.Add(automaton.StackStep{From: "s", On: "x", Top: automaton.Epsilon}, automaton.StackMove{To: "s", Push: "Z"})
	m.Delta.Add(automaton.StackStep{From: "s", On: automaton.Epsilon, Top: "Z"}, automaton.StackMove{To: "t"})

	var depths []int
	got, _, err := RunPDA(context.Background(), m, automaton.Symbols("xx"), NewOptions(WithTrace(func(c Configuration) {
		depths = append(depths, len(c.Stack))
	})))
	require.NoError(t, err)
	assert.Equal(t, Accepted, got)
	for _, d := range depths {
		assert.GreaterOrEqual(t, d, 1)
	}
}

func TestRunPDA_PushOrder(t *testing.T) {
	m := automaton.NewPDA("order")
	m.States = automaton.NewStateSet("s", "m", "t")
	m.Alphabet = automaton.NewSymbolSet("x")
	m.Start = "s"
	m.Accept = automaton.NewStateSet("t")
	// Push "XY": X must end on top.
	m.Delta.Add(automaton.StackStep{From: "s", On: "x", Top: "$"}, automaton.StackMove{To: "m", Push: "XY$"})
	m.Delta.Add(automaton.StackStep{From: "m", On: automaton.Epsilon, Top: "X"}, automaton.StackMove{To: "t"})
	m.Delta.Add(automaton.StackStep{From: "m", On: automaton.Epsilon, Top: "Y"}, automaton.StackMove{To: "s"})

	var seen []string
	got, _, err := RunPDA(context.Background(), m, automaton.Symbols("x"), NewOptions(WithTrace(func(c Configuration) {
		seen = append(seen, automaton.Join(c.Stack))
	})))
	require.NoError(t, err)
	assert.Equal(t, Accepted, got)
	assert.Contains(t, seen, "$YX")
}

func TestRunPDA_UnboundedGrowthIsInconclusive(t *testing.T) {
	m := automaton.NewPDA("grow")
	m.States = automaton.NewStateSet("s", "t")
	m.Alphabet = automaton.NewSymbolSet("b")
	m.Start = "s"
	m.Accept = automaton.NewStateSet("t")
	// An ε-loop that keeps pushing never consumes input.
	m.Delta.Add(automaton.StackStep{From: "s", On: automaton.Epsilon, Top: automaton.Epsilon}, automaton.StackMove{To: "s", Push: "A"})
	require.NoError(t, m.Validate())

	got, n, err := RunPDA(context.Background(), m, automaton.Symbols("b"), NewOptions(WithMaxConfigurations(500)))
	assert.Equal(t, Inconclusive, got)
	assert.Equal(t, 500, n)
	assert.ErrorIs(t, err, automaton.ErrResourceExhausted)
	assert.NotErrorIs(t, err, automaton.ErrStepLimit)
}

func TestRunPDA_DedupeTerminatesCycles(t *testing.T) {
	m := anbn(false)
	// Pure state cycle on ε: terminates only with the visited filter.
	m.Delta.Add(automaton.StackStep{From: "q0", On: automaton.Epsilon, Top: automaton.Epsilon}, automaton.StackMove{To: "q1"})
	m.Delta.Add(automaton.StackStep{From: "q1", On: automaton.Epsilon, Top: automaton.Epsilon}, automaton.StackMove{To: "q0"})

	got, _, err := RunPDA(context.Background(), m, automaton.Symbols("aab"), NewOptions(WithDedupe(true)))
	require.NoError(t, err)
	assert.Equal(t, Rejected, got)

	got, _, err = RunPDA(context.Background(), m, automaton.Symbols("aab"), NewOptions(WithDedupe(false), WithMaxConfigurations(2000)))
	assert.Equal(t, Inconclusive, got)
	assert.ErrorIs(t, err, automaton.ErrResourceExhausted)

	got, _, err = RunPDA(context.Background(), m, automaton.Symbols("aabb"), NewOptions(WithDedupe(true)))
	require.NoError(t, err)
	assert.Equal(t, Accepted, got)
}

func TestRunPDA_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	got, _, err := RunPDA(ctx, anbn(true), automaton.Symbols("ab"), DefaultOptions())
	assert.Equal(t, Inconclusive, got)
	assert.ErrorIs(t, err, context.Canceled)
}

// ============================================================================
// TM
// ============================================================================

func TestRunTM_Parity(t *testing.T) {
	m := parity()
	require.NoError(t, m.Validate())

	tests := []struct {
		input string
		want  Verdict
		steps int
	}{
		{"", Accepted, 1},
		{"a", Rejected, 1},
		{"aa", Accepted, 3},
		{"aaa", Rejected, 3},
		{"aaaa", Accepted, 5},
	}
	for _, tt := range tests {
		got, steps, err := RunTM(context.Background(), m, automaton.Symbols(tt.input), DefaultOptions())
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.want, got, "input %q", tt.input)
		assert.Equal(t, tt.steps, steps, "input %q", tt.input)
	}
}

func TestRunTM_TotalRelationHitsStepLimit(t *testing.T) {
	m := automaton.NewTM("forever")
	m.States = automaton.NewStateSet("q0", "q1")
	m.Alphabet = automaton.NewSymbolSet("a")
	m.Start = "q0"
	m.Accept = automaton.NewStateSet("q1")
	for _, s := range []automaton.State{"q0", "q1"} {
		for _, sym := range []automaton.Symbol{"a", "_"} {
			m.Delta.Add(automaton.TapeStep{From: s, Read: sym}, automaton.TapeMove{To: "q1", Write: sym, Move: automaton.Right})
		}
	}
	require.NoError(t, m.Validate())

	got, steps, err := RunTM(context.Background(), m, automaton.Symbols("aa"), NewOptions(WithMaxSteps(250)))
	assert.Equal(t, Inconclusive, got)
	assert.Equal(t, 250, steps)
	assert.ErrorIs(t, err, automaton.ErrStepLimit)
}

func TestRunTM_LeftClampsAtZero(t *testing.T) {
	m := automaton.NewTM("clamp")
	m.States = automaton.NewStateSet("q0", "q1", "q2")
	m.Alphabet = automaton.NewSymbolSet("a")
	m.Start = "q0"
	m.Accept = automaton.NewStateSet("q2")
	// Move left from cell 0 twice; the head must stay on cell 0 and read
	// what was written there.
	m.Delta.Add(automaton.TapeStep{From: "q0", Read: "a"}, automaton.TapeMove{To: "q1", Write: "b", Move: automaton.Left})
	m.Delta.Add(automaton.TapeStep{From: "q1", Read: "b"}, automaton.TapeMove{To: "q2", Write: "b", Move: automaton.Left})

	var heads []int
	got, _, err := RunTM(context.Background(), m, automaton.Symbols("a"), NewOptions(WithTrace(func(c Configuration) {
		heads = append(heads, c.Head)
	})))
	require.NoError(t, err)
	assert.Equal(t, Accepted, got)
	assert.Equal(t, []int{0, 0, 0}, heads)
}

func TestRunTM_TapeGrowsRight(t *testing.T) {
	m := automaton.NewTM("grow")
	m.States = automaton.NewStateSet("q0", "q1")
	m.Alphabet = automaton.NewSymbolSet("a")
	m.Start = "q0"
	m.Accept = automaton.NewStateSet("q1")
	m.Delta.Add(automaton.TapeStep{From: "q0", Read: "_"}, automaton.TapeMove{To: "q0", Write: "x", Move: automaton.Right})
	m.Delta.Add(automaton.TapeStep{From: "q0", Read: "x"}, automaton.TapeMove{To: "q1", Write: "x", Move: automaton.Right})

	var lastTape string
	got, steps, err := RunTM(context.Background(), m, nil, NewOptions(WithMaxSteps(10), WithTrace(func(c Configuration) {
		lastTape = automaton.Join(c.Tape)
	})))
	assert.Equal(t, Inconclusive, got)
	assert.Equal(t, 10, steps)
	assert.ErrorIs(t, err, automaton.ErrStepLimit)
	assert.Equal(t, "xxxxxxxxxx_", lastTape)
}

func TestRunTM_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	got, _, err := RunTM(ctx, parity(), automaton.Symbols("aa"), DefaultOptions())
	assert.Equal(t, Inconclusive, got)
	assert.ErrorIs(t, err, context.Canceled)
}

// ============================================================================
// Dispatch
// ============================================================================

func TestSimulate(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		machine automaton.Machine
		input   string
		want    Verdict
	}{
		{endsInOne(), "01", Accepted},
		{endsInOne(), "10", Rejected},
		{endsInOneOne(), "011", Accepted},
		{anbn(true), "aabb", Accepted},
		{anbn(true), "aab", Rejected},
		{parity(), "aa", Accepted},
		{parity(), "a", Rejected},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s/%s", tt.machine.Kind(), tt.input), func(t *testing.T) {
			res := Simulate(ctx, tt.machine, automaton.Symbols(tt.input), DefaultOptions())
			require.NoError(t, res.Err)
			assert.Equal(t, tt.want, res.Verdict)
		})
	}
}

func TestSimulate_SharedDefinitionConcurrently(t *testing.T) {
	m := anbn(true)
	done := make(chan Verdict, 16)
	for i := 0; i < 16; i++ {
		go func(i int) {
			in := automaton.Symbols(fmt.Sprintf("%s%s", repeat("a", i%4), repeat("b", i%4)))
			done <- Simulate(context.Background(), m, in, DefaultOptions()).Verdict
		}(i)
	}
	for i := 0; i < 16; i++ {
		assert.Equal(t, Accepted, <-done)
	}
}

func TestVerdictString(t *testing.T) {
	assert.Equal(t, "Accepted", Accepted.String())
	assert.Equal(t, "Rejected", Rejected.String())
	assert.Equal(t, "Inconclusive", Inconclusive.String())

	v, err := ParseVerdict("accepted")
	require.NoError(t, err)
	assert.Equal(t, Accepted, v)
	_, err = ParseVerdict("maybe")
	assert.Error(t, err)
}

func repeat(s string, n int) string {
	out := ""
	for i := 0; i < n; i++ {
		out += s
	}
	return out
}
