package report

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/dshills/automata/internal/automaton"
	"github.com/dshills/automata/internal/engine"
	"github.com/dshills/automata/internal/suite"
)

func sampleReport() *suite.Report {
	return &suite.Report{
		RunID: "run-1",
		Suite: "sample",
		Results: []suite.CaseResult{
			{Machine: "DFA", Kind: automaton.KindDFA, Input: "0", Verdict: engine.Rejected, Steps: 1, Expect: engine.Rejected, HasExpect: true},
			{Machine: "DFA", Kind: automaton.KindDFA, Input: "1", Verdict: engine.Accepted, Steps: 1},
			{Index: 1, Machine: "PDA", Kind: automaton.KindPDA, Input: "", Verdict: engine.Inconclusive, Steps: 50,
				Err: &automaton.LimitError{Kind: automaton.KindPDA, Limit: 50, Configurations: true}},
			{Index: 1, Machine: "PDA", Kind: automaton.KindPDA, Input: "ab", Verdict: engine.Rejected, Steps: 4, Expect: engine.Accepted, HasExpect: true},
		},
	}
}

func TestTextWriter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewTextWriter(&buf, false).Write(sampleReport()))

	lines := strings.Split(buf.String(), "\n")
	assert.Equal(t, "DFA:", lines[0])
	assert.Equal(t, "0 → Rejected", lines[1])
	assert.Equal(t, "1 → Accepted", lines[2])
	assert.Equal(t, "", lines[3])
	assert.Equal(t, "PDA:", lines[4])
	assert.True(t, strings.HasPrefix(lines[5], " → Inconclusive ("), lines[5])
	assert.Equal(t, "ab → Rejected expected Accepted", lines[6])
	assert.Contains(t, buf.String(), "1 of 4 cases did not match")
	assert.NotContains(t, buf.String(), "\x1b[")
}

func TestTextWriter_SameNameMachinesKeepSeparateHeaders(t *testing.T) {
	report := &suite.Report{
		Results: []suite.CaseResult{
			{Index: 0, Machine: "dfa", Kind: automaton.KindDFA, Input: "1", Verdict: engine.Accepted},
			{Index: 1, Machine: "dfa", Kind: automaton.KindDFA, Input: "1", Verdict: engine.Rejected},
		},
	}
	var buf bytes.Buffer
	require.NoError(t, NewTextWriter(&buf, false).Write(report))
	assert.Equal(t, "dfa:\n1 → Accepted\n\ndfa:\n1 → Rejected\n", buf.String())
}

func TestTextWriter_Color(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewTextWriter(&buf, true).Write(sampleReport()))

	out := buf.String()
	assert.Contains(t, out, ansiGreen+"Accepted"+ansiReset)
	assert.Contains(t, out, ansiRed+"Rejected"+ansiReset)
	assert.Contains(t, out, ansiYellow+"Inconclusive"+ansiReset)
}

func TestTextWriter_Builtin(t *testing.T) {
	report, err := suite.NewRunner().Run(context.Background(), suite.Builtin())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, NewTextWriter(&buf, false).Write(report))

	want := `DFA:
0 → Rejected
1 → Accepted
01 → Accepted
10 → Rejected
111 → Accepted
100 → Rejected

NFA:
 → Rejected
a → Rejected
ab → Rejected
aba → Rejected
aab → Rejected
11 → Accepted
011 → Accepted
10 → Rejected

PDA:
 → Accepted
ab → Accepted
aabb → Accepted
aaabbb → Accepted
aab → Rejected

Turing Machine:
 → Accepted
a → Rejected
aa → Accepted
aaa → Rejected
`
	assert.Equal(t, want, buf.String())
}

func TestJSONLWriter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSONLWriter(&buf).Write(sampleReport()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 5)
	for _, l := range lines {
		assert.True(t, gjson.Valid(l), l)
	}

	first := gjson.Parse(lines[0])
	assert.Equal(t, "case", first.Get("type").String())
	assert.Equal(t, "run-1", first.Get("run").String())
	assert.Equal(t, "dfa", first.Get("kind").String())
	assert.Equal(t, "0", first.Get("input").String())
	assert.Equal(t, "Rejected", first.Get("expect").String())
	assert.True(t, first.Get("match").Bool())

	second := gjson.Parse(lines[1])
	assert.False(t, second.Get("expect").Exists())
	assert.False(t, second.Get("error").Exists())

	third := gjson.Parse(lines[2])
	assert.Equal(t, "", third.Get("input").String())
	assert.True(t, third.Get("input").Exists())
	assert.Equal(t, int64(50), third.Get("steps").Int())
	assert.Equal(t, int64(1), third.Get("index").Int())
	assert.Contains(t, third.Get("error").String(), "50")

	fourth := gjson.Parse(lines[3])
	assert.False(t, fourth.Get("match").Bool())

	sum := gjson.Parse(lines[4])
	assert.Equal(t, "summary", sum.Get("type").String())
	assert.Equal(t, int64(4), sum.Get("total").Int())
	assert.Equal(t, int64(1), sum.Get("accepted").Int())
	assert.Equal(t, int64(2), sum.Get("rejected").Int())
	assert.Equal(t, int64(1), sum.Get("inconclusive").Int())
	assert.Equal(t, int64(1), sum.Get("mismatched").Int())
}

func TestNew(t *testing.T) {
	var buf bytes.Buffer

	w, err := New(FormatJSONL, &buf, ColorNever)
	require.NoError(t, err)
	assert.IsType(t, &JSONLWriter{}, w)

	w, err = New(FormatText, &buf, ColorAlways)
	require.NoError(t, err)
	tw, ok := w.(*TextWriter)
	require.True(t, ok)
	assert.True(t, tw.color)

	_, err = New("xml", &buf, ColorNever)
	assert.Error(t, err)
}

func TestUseColor(t *testing.T) {
	var buf bytes.Buffer
	assert.True(t, UseColor(&buf, ColorAlways))
	assert.False(t, UseColor(&buf, ColorNever))
	assert.False(t, UseColor(&buf, ColorAuto), "buffers are never terminals")
}

func TestWriter_PropagatesErrors(t *testing.T) {
	err := NewTextWriter(failingWriter{}, false).Write(sampleReport())
	assert.Error(t, err)
	err = NewJSONLWriter(failingWriter{}).Write(sampleReport())
	assert.Error(t, err)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }
