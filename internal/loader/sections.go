package loader

import (
	"bufio"
	"bytes"
	"errors"
	"strings"

	"github.com/dshills/automata/internal/automaton"
)

// Section names of the text format.
const (
	SectionKind          = "Kind"
	SectionStates        = "States"
	SectionAlphabet      = "Alphabet"
	SectionStart         = "Start"
	SectionAccept        = "Accept"
	SectionTransitions   = "Transitions"
	SectionStackAlphabet = "StackAlphabet"
	SectionStackStart    = "StackStart"
	SectionTapeAlphabet  = "TapeAlphabet"
	SectionBlank         = "Blank"

	endMarker = "[End]"
)

// sectionDocument is a text definition with comments and blank lines
// removed and every line trimmed.
type sectionDocument struct {
	lines []string
}

func newSectionDocument(name string, data []byte) (*sectionDocument, error) {
	doc := &sectionDocument{}
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		doc.lines = append(doc.lines, automaton.Normalize(line))
	}
	if err := sc.Err(); err != nil {
		return nil, &ParseError{Path: name, Message: err.Error(), Err: err}
	}
	return doc, nil
}

// section returns the lines between [name] and the next [End].
func (d *sectionDocument) section(name string) ([]string, error) {
	header := "[" + name + "]"
	for i, line := range d.lines {
		if line != header {
			continue
		}
		for j := i + 1; j < len(d.lines); j++ {
			if d.lines[j] == endMarker {
				return d.lines[i+1 : j], nil
			}
		}
		return nil, &automaton.MissingSectionError{Section: name, Unterminated: true}
	}
	return nil, &automaton.MissingSectionError{Section: name}
}

// optional returns a section's lines, or nil if the header is absent.
// An unterminated optional section is still an error.
func (d *sectionDocument) optional(name string) ([]string, error) {
	lines, err := d.section(name)
	if err != nil {
		var mse *automaton.MissingSectionError
		if errors.As(err, &mse) && !mse.Unterminated {
			return nil, nil
		}
		return nil, err
	}
	return lines, nil
}

func decodeSections(name string, data []byte) (*rawDefinition, error) {
	doc, err := newSectionDocument(name, data)
	if err != nil {
		return nil, err
	}
	raw := &rawDefinition{}

	required := []struct {
		name string
		dst  *[]string
	}{
		{SectionStates, &raw.States},
		{SectionAlphabet, &raw.Alphabet},
		{SectionStart, &raw.startLines},
		{SectionAccept, &raw.Accept},
		{SectionTransitions, &raw.Transitions},
	}
	for _, r := range required {
		lines, err := doc.section(r.name)
		if err != nil {
			return nil, err
		}
		*r.dst = lines
	}
	if len(raw.startLines) != 1 {
		return nil, &automaton.ValidationError{Field: SectionStart, Message: "must contain exactly one state"}
	}
	raw.Start = raw.startLines[0]

	optional := []struct {
		name string
		dst  *[]string
	}{
		{SectionStackAlphabet, &raw.StackAlphabet},
		{SectionTapeAlphabet, &raw.TapeAlphabet},
	}
	for _, o := range optional {
		lines, err := doc.optional(o.name)
		if err != nil {
			return nil, err
		}
		*o.dst = lines
	}

	singles := []struct {
		name string
		dst  *string
	}{
		{SectionKind, &raw.Kind},
		{SectionStackStart, &raw.StackStart},
		{SectionBlank, &raw.Blank},
	}
	for _, s := range singles {
		lines, err := doc.optional(s.name)
		if err != nil {
			return nil, err
		}
		switch len(lines) {
		case 0:
		case 1:
			*s.dst = lines[0]
		default:
			return nil, &automaton.ValidationError{Field: s.name, Message: "must contain exactly one line"}
		}
	}
	return raw, nil
}
