package source

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

type Kind string

const (
	// Parent scans the immediate subdirectories of a folder.
	Parent Kind = "parent"
	// Glob matches a pattern against .git directories.
	Glob Kind = "glob"
	// Deep walks upward from a folder to the nearest enclosing repository.
	Deep Kind = "deep"
)

func (kind Kind) Valid() bool {
	switch kind {
	case Parent, Glob, Deep:
		return true
	}
	return false
}

// Source describes where and how to look for local repositories.
type Source struct {
	Input string `yaml:"input"`
	Kind  Kind   `yaml:"type"`
}

// Parse classifies a bare string: anything carrying glob syntax is a Glob
// source, everything else a Parent folder.
func Parse(input string) Source {
	if IsDynamicPattern(input) {
		return Source{Input: input, Kind: Glob}
	}
	return Source{Input: input, Kind: Parent}
}

// Normalize fills in the kind of a descriptor that was declared without one.
func Normalize(source Source) Source {
	if source.Kind == "" {
		return Parse(source.Input)
	}
	return source
}

func IsDynamicPattern(input string) bool {
	return strings.ContainsAny(input, "*?[{")
}

func (source Source) String() string {
	return fmt.Sprintf("%-6s %s", source.Kind, source.Input)
}

// UnmarshalYAML accepts either a plain string or an {input, type} mapping.
func (source *Source) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		*source = Parse(value.Value)
		return nil
	}

	type raw Source
	var decoded raw
	if err := value.Decode(&decoded); err != nil {
		return err
	}

	if decoded.Input == "" {
		return fmt.Errorf("line %d: source is missing an input", value.Line)
	}
	if decoded.Kind != "" && !decoded.Kind.Valid() {
		return fmt.Errorf("line %d: invalid source type: %s", value.Line, decoded.Kind)
	}

	*source = Normalize(Source(decoded))
	return nil
}
