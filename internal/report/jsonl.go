package report

import (
	"bufio"
	"io"

	"github.com/tidwall/sjson"

	"github.com/dshills/automata/internal/suite"
)

// JSONLWriter writes one JSON object per case followed by a summary
// object:
//
//	{"type":"case","run":"…","suite":"builtin","machine":"DFA","index":0,"kind":"dfa","input":"01","verdict":"Accepted","steps":2,"match":true}
//	{"type":"summary","run":"…","suite":"builtin","total":23,"accepted":13,…}
type JSONLWriter struct {
	w io.Writer
}

// NewJSONLWriter creates a JSON lines writer.
func NewJSONLWriter(w io.Writer) *JSONLWriter {
	return &JSONLWriter{w: w}
}

// Write implements Writer.
func (j *JSONLWriter) Write(r *suite.Report) error {
	bw := bufio.NewWriter(j.w)

	for _, c := range r.Results {
		line, err := set([]byte(`{}`),
			field{"type", "case"},
			field{"run", r.RunID},
			field{"suite", r.Suite},
			field{"machine", c.Machine},
			field{"index", c.Index},
			field{"kind", c.Kind.String()},
			field{"input", c.Input},
			field{"verdict", c.Verdict.String()},
			field{"steps", c.Steps},
			field{"match", c.Matched()},
		)
		if err != nil {
			return err
		}
		if c.HasExpect {
			if line, err = sjson.SetBytes(line, "expect", c.Expect.String()); err != nil {
				return err
			}
		}
		if c.Err != nil {
			if line, err = sjson.SetBytes(line, "error", c.Err.Error()); err != nil {
				return err
			}
		}
		bw.Write(line)
		bw.WriteByte('\n')
	}

	sum := r.Summary()
	line, err := set([]byte(`{}`),
		field{"type", "summary"},
		field{"run", r.RunID},
		field{"suite", r.Suite},
		field{"total", sum.Total},
		field{"accepted", sum.Accepted},
		field{"rejected", sum.Rejected},
		field{"inconclusive", sum.Inconclusive},
		field{"mismatched", sum.Mismatched},
		field{"duration_ms", r.Duration.Milliseconds()},
	)
	if err != nil {
		return err
	}
	bw.Write(line)
	bw.WriteByte('\n')
	return bw.Flush()
}

type field struct {
	path  string
	value any
}

func set(doc []byte, fields ...field) ([]byte, error) {
	var err error
	for _, f := range fields {
		if doc, err = sjson.SetBytes(doc, f.path, f.value); err != nil {
			return nil, err
		}
	}
	return doc, nil
}
