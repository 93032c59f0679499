package loader

import (
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// decodeTOML parses a TOML definition:
//
//	kind = "pda"
//	states = ["q0", "q1", "q2"]
//	alphabet = ["a", "b"]
//	start = "q0"
//	accept = ["q2"]
//	transitions = ["q0, a, $, q0, A$", "q1, ε, $, q2, ε"]
func decodeTOML(path string, data []byte) (*rawDefinition, error) {
	var raw rawDefinition
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, &ParseError{Path: path, Message: err.Error(), Err: err}
	}
	return &raw, nil
}

// decodeYAML parses a YAML definition with the same keys as decodeTOML.
func decodeYAML(path string, data []byte) (*rawDefinition, error) {
	var raw rawDefinition
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &ParseError{Path: path, Message: err.Error(), Err: err}
	}
	return &raw, nil
}
