// Package suite runs batteries of inputs against automaton definitions.
//
// A suite is a YAML document:
//
//	name: examples
//	machines:
//	  - name: anbn
//	    kind: pda
//	    definition: defs/pda.txt
//	    inputs: ["", ab]
//	    cases:
//	      - {input: aab, expect: rejected}
//	    generate: |
//	      local out = {}
//	      for n = 1, 5 do
//	        table.insert(out, {input = string.rep("a", n) .. string.rep("b", n), expect = true})
//	      end
//	      return out
//
// Definition paths are resolved relative to the suite file.
package suite

import (
	"embed"
	"fmt"
	"io/fs"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/dshills/automata/internal/automaton"
	"github.com/dshills/automata/internal/engine"
	"github.com/dshills/automata/internal/loader"
)

// Suite is a named list of machines to exercise.
type Suite struct {
	Name     string        `yaml:"name"`
	Machines []MachineSpec `yaml:"machines"`

	// Path is the file the suite was read from, if any.
	Path string `yaml:"-"`

	fsys loader.FileSystem
	dir  string
}

// MachineSpec names a definition and the inputs to run on it.
type MachineSpec struct {
	Name       string   `yaml:"name"`
	Kind       string   `yaml:"kind"`
	Definition string   `yaml:"definition"`
	Inputs     []string `yaml:"inputs"`
	Cases      []Case   `yaml:"cases"`
	Generate   string   `yaml:"generate"` // Lua code returning more cases
}

// Case is one input with an optional expected verdict.
type Case struct {
	Input  string `yaml:"input"`
	Expect string `yaml:"expect"`
}

// expectation parses Expect. ok is false when the case makes no claim.
func (c Case) expectation() (v engine.Verdict, ok bool, err error) {
	if c.Expect == "" {
		return engine.Rejected, false, nil
	}
	v, err = engine.ParseVerdict(c.Expect)
	if err != nil {
		return engine.Rejected, false, err
	}
	return v, true, nil
}

// Parse decodes a suite document. Relative definition paths resolve
// against the directory of name, read through fsys.
func Parse(fsys loader.FileSystem, name string, data []byte) (*Suite, error) {
	var s Suite
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, &loader.ParseError{Path: name, Message: err.Error(), Err: err}
	}
	s.Path = name
	s.fsys = fsys
	s.dir = filepath.Dir(name)
	if s.Name == "" {
		s.Name = filepath.Base(name)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("loading suite %s: %w", name, err)
	}
	return &s, nil
}

// Load reads and parses the suite at path.
func Load(fsys loader.FileSystem, path string) (*Suite, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading suite %s: %w", path, err)
	}
	return Parse(fsys, path, data)
}

// Validate checks that every machine names a definition and a known kind.
func (s *Suite) Validate() error {
	if len(s.Machines) == 0 {
		return &automaton.ValidationError{Field: "machines", Message: "suite has no machines"}
	}
	for i, m := range s.Machines {
		if m.Definition == "" {
			return &automaton.ValidationError{Field: fmt.Sprintf("machines[%d].definition", i), Message: "required"}
		}
		if m.Kind != "" {
			if _, err := automaton.ParseKind(m.Kind); err != nil {
				return fmt.Errorf("machines[%d].kind: %w", i, err)
			}
		}
		for j, c := range m.Cases {
			if _, _, err := c.expectation(); err != nil {
				return &automaton.ValidationError{
					Field:   fmt.Sprintf("machines[%d].cases[%d].expect", i, j),
					Value:   c.Expect,
					Message: err.Error(),
				}
			}
		}
	}
	return nil
}

// DefinitionPath returns the path of a machine's definition as read
// through the suite's file system.
func (s *Suite) DefinitionPath(m MachineSpec) string {
	if filepath.IsAbs(m.Definition) || s.dir == "" {
		return m.Definition
	}
	return filepath.Join(s.dir, m.Definition)
}

// Files returns the suite file and every definition it references.
func (s *Suite) Files() []string {
	var files []string
	if s.Path != "" {
		files = append(files, s.Path)
	}
	for _, m := range s.Machines {
		files = append(files, s.DefinitionPath(m))
	}
	return files
}

// Single wraps one definition file and its inputs in a suite. kind may be
// empty to infer it from the file.
func Single(path, kind string, inputs []string) *Suite {
	return &Suite{
		Name:     filepath.Base(path),
		Machines: []MachineSpec{{Kind: kind, Definition: path, Inputs: inputs}},
		fsys:     loader.DefaultFS(),
	}
}

// FileSystem returns the file system definitions are read through.
func (s *Suite) FileSystem() loader.FileSystem {
	if s.fsys == nil {
		return loader.DefaultFS()
	}
	return s.fsys
}

//go:embed builtin/*.txt
var builtinFiles embed.FS

// embedFS adapts an embed.FS to loader.FileSystem.
type embedFS struct {
	fsys embed.FS
}

func (e embedFS) ReadFile(name string) ([]byte, error) {
	return e.fsys.ReadFile(filepath.ToSlash(name))
}

func (e embedFS) Stat(name string) (fs.FileInfo, error) {
	return fs.Stat(e.fsys, filepath.ToSlash(name))
}

// Builtin returns the battery that ships with the tool: one machine of each
// kind with the expected verdict of every input.
func Builtin() *Suite {
	accept := func(in string) Case { return Case{Input: in, Expect: "accepted"} }
	reject := func(in string) Case { return Case{Input: in, Expect: "rejected"} }

	return &Suite{
		Name: "builtin",
		Machines: []MachineSpec{
			{
				Name:       "DFA",
				Kind:       "dfa",
				Definition: "dfa.txt",
				Cases:      []Case{reject("0"), accept("1"), accept("01"), reject("10"), accept("111"), reject("100")},
			},
			{
				Name:       "NFA",
				Kind:       "nfa",
				Definition: "nfa.txt",
				Cases: []Case{
					reject(""), reject("a"), reject("ab"), reject("aba"), reject("aab"),
					accept("11"), accept("011"), reject("10"),
				},
			},
			{
				Name:       "PDA",
				Kind:       "pda",
				Definition: "pda.txt",
				Cases:      []Case{accept(""), accept("ab"), accept("aabb"), accept("aaabbb"), reject("aab")},
			},
			{
				Name:       "Turing Machine",
				Kind:       "tm",
				Definition: "tm.txt",
				Cases:      []Case{accept(""), reject("a"), accept("aa"), reject("aaa")},
			},
		},
		fsys: embedFS{fsys: builtinFiles},
		dir:  "builtin",
	}
}
