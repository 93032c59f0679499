// Package loader reads automaton definitions from files.
//
// The primary format is the sectioned text format:
//
//	# comment
//	[States]
//	q0
//	q1
//	[End]
//	[Alphabet]
//	0
//	1
//	[End]
//	[Start]
//	q0
//	[End]
//	[Accept]
//	q1
//	[End]
//	[Transitions]
//	q0, 1, q1
//	[End]
//
// Definitions may also be written as TOML (.toml) or YAML (.yaml, .yml)
// documents with the same fields. Every loaded definition is validated; a
// definition is either returned whole or not at all.
package loader

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/dshills/automata/internal/automaton"
)

// FileSystem is an abstraction for file system operations.
// This allows for easy testing with in-memory file systems.
type FileSystem interface {
	// ReadFile reads the entire file at path.
	ReadFile(path string) ([]byte, error)
	// Stat returns file info for path.
	Stat(path string) (fs.FileInfo, error)
}

// OSFS implements FileSystem using the real OS file system.
type OSFS struct{}

// ReadFile reads the entire file at path.
func (OSFS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Stat returns file info for path.
func (OSFS) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}

// DefaultFS returns the default file system (OS).
func DefaultFS() FileSystem {
	return OSFS{}
}

// Format identifies a definition file format.
type Format uint8

const (
	// FormatSections is the [Section] ... [End] text format.
	FormatSections Format = iota
	// FormatTOML is a TOML document.
	FormatTOML
	// FormatYAML is a YAML document.
	FormatYAML
)

// FormatFor picks a format from a file extension. Unknown extensions use
// the section format.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatSections
	}
}

// Loader loads definitions through a FileSystem.
type Loader struct {
	fs FileSystem
}

// New creates a loader backed by the OS file system.
func New() *Loader {
	return &Loader{fs: DefaultFS()}
}

// NewWithFS creates a loader with a custom file system.
func NewWithFS(fs FileSystem) *Loader {
	return &Loader{fs: fs}
}

// Load reads and validates the definition at path. kind may be
// KindUnknown, in which case the document's kind field or the file name
// decides.
func (l *Loader) Load(path string, kind automaton.Kind) (automaton.Machine, error) {
	data, err := l.fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading definition %s: %w", path, err)
	}
	return Parse(path, data, FormatFor(path), kind)
}

// LoadFromReader reads a definition from r in the given format. name is
// used for error messages and kind inference.
func (l *Loader) LoadFromReader(name string, r io.Reader, format Format, kind automaton.Kind) (automaton.Machine, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading definition %s: %w", name, err)
	}
	return Parse(name, data, format, kind)
}

// Parse decodes, builds and validates a definition.
func Parse(name string, data []byte, format Format, kind automaton.Kind) (automaton.Machine, error) {
	var (
		raw *rawDefinition
		err error
	)
	switch format {
	case FormatTOML:
		raw, err = decodeTOML(name, data)
	case FormatYAML:
		raw, err = decodeYAML(name, data)
	default:
		raw, err = decodeSections(name, data)
	}
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", name, err)
	}

	if raw.Name == "" {
		raw.Name = stem(name)
	}
	if kind == automaton.KindUnknown {
		kind, err = resolveKind(raw.Kind, name)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", name, err)
		}
	}

	m, err := build(raw, kind)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", name, err)
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("loading %s: %w", name, err)
	}
	return m, nil
}

// resolveKind uses the declared kind, else the leading letters of the file
// name (dfa.txt, nfa_even.txt, tm-copy.yaml).
func resolveKind(declared, name string) (automaton.Kind, error) {
	if strings.TrimSpace(declared) != "" {
		return automaton.ParseKind(declared)
	}
	base := strings.ToLower(stem(name))
	for _, prefix := range []string{"dfa", "nfa", "pda", "tm"} {
		if strings.HasPrefix(base, prefix) {
			return automaton.ParseKind(prefix)
		}
	}
	return automaton.KindUnknown, fmt.Errorf("%w: declare [Kind] or name the file dfa*, nfa*, pda* or tm*", automaton.ErrUnknownKind)
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ParseError represents an error while decoding a structured definition.
type ParseError struct {
	// Path is the file path that failed to parse.
	Path string
	// Message describes the parse error.
	Message string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error in %s: %s", e.Path, e.Message)
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Err
}
