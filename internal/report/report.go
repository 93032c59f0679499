// Package report writes suite results as text or JSON lines.
package report

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/dshills/automata/internal/suite"
)

// Writer renders a suite report.
type Writer interface {
	Write(r *suite.Report) error
}

// Format selects a Writer.
type Format string

// Output formats.
const (
	FormatText  Format = "text"
	FormatJSONL Format = "jsonl"
)

// ColorMode controls ANSI colouring of text output.
type ColorMode string

// Colour modes.
const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// New returns the writer for format.
func New(format Format, w io.Writer, color ColorMode) (Writer, error) {
	switch format {
	case FormatText, "":
		return NewTextWriter(w, UseColor(w, color)), nil
	case FormatJSONL:
		return NewJSONLWriter(w), nil
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}

// UseColor resolves a colour mode for w. Auto colours only terminals.
func UseColor(w io.Writer, mode ColorMode) bool {
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
