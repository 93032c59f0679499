package report

import (
	"bufio"
	"fmt"
	"io"

	"github.com/dshills/automata/internal/engine"
	"github.com/dshills/automata/internal/suite"
)

const (
	ansiReset  = "\x1b[0m"
	ansiBold   = "\x1b[1m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
)

// TextWriter prints one section per machine:
//
//	DFA:
//	0 → Rejected
//	1 → Accepted
//
//	NFA:
//	...
type TextWriter struct {
	w     io.Writer
	color bool
}

// NewTextWriter creates a text writer.
func NewTextWriter(w io.Writer, color bool) *TextWriter {
	return &TextWriter{w: w, color: color}
}

// Write implements Writer.
func (t *TextWriter) Write(r *suite.Report) error {
	bw := bufio.NewWriter(t.w)

	for i, c := range r.Results {
		if i == 0 || c.Index != r.Results[i-1].Index {
			if i > 0 {
				bw.WriteString("\n")
			}
			fmt.Fprintf(bw, "%s:\n", t.paint(ansiBold, c.Machine))
		}
		fmt.Fprintf(bw, "%s → %s", c.Input, t.verdict(c.Verdict))
		if c.Err != nil {
			fmt.Fprintf(bw, " (%v)", c.Err)
		}
		if !c.Matched() {
			fmt.Fprintf(bw, " %s", t.paint(ansiRed, "expected "+c.Expect.String()))
		}
		bw.WriteString("\n")
	}

	if sum := r.Summary(); sum.Mismatched > 0 {
		fmt.Fprintf(bw, "\n%s\n", t.paint(ansiRed, fmt.Sprintf("%d of %d cases did not match", sum.Mismatched, sum.Total)))
	}
	return bw.Flush()
}

func (t *TextWriter) verdict(v engine.Verdict) string {
	switch v {
	case engine.Accepted:
		return t.paint(ansiGreen, v.String())
	case engine.Rejected:
		return t.paint(ansiRed, v.String())
	default:
		return t.paint(ansiYellow, v.String())
	}
}

func (t *TextWriter) paint(code, s string) string {
	if !t.color {
		return s
	}
	return code + s + ansiReset
}
