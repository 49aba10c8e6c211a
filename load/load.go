// Package load reads configuration files into typed records: it picks the
// parser by format, builds the node tree and runs the docbind engine.
// Watcher re-runs that pipeline whenever the file changes on disk.
package load

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/reoring/docbind"
	"github.com/reoring/docbind/node"
	sjson "github.com/reoring/docbind/source/json"
	syaml "github.com/reoring/docbind/source/yaml"
)

// Format selects the document parser.
type Format int

const (
	// FormatAuto detects JSON when the first non-blank byte opens an object
	// or array and falls back to YAML otherwise.
	FormatAuto Format = iota
	FormatYAML
	FormatJSON
)

func (f Format) String() string {
	switch f {
	case FormatYAML:
		return "yaml"
	case FormatJSON:
		return "json"
	}
	return "auto"
}

// FormatOf maps a file extension to a format.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatAuto
}

// ParseFormat parses "yaml", "json" or "auto".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return FormatAuto, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	}
	return FormatAuto, fmt.Errorf("load: unknown format %q", s)
}

// Parse builds the node tree of data.
func Parse(data []byte, f Format) (*node.Node, error) {
	if f == FormatAuto {
		f = sniff(data)
	}
	if f == FormatJSON {
		return sjson.Parse(data)
	}
	return syaml.Parse(data)
}

func sniff(data []byte) Format {
	t := bytes.TrimLeft(data, " \t\r\n\ufeff")
	if len(t) > 0 && (t[0] == '{' || t[0] == '[') {
		return FormatJSON
	}
	return FormatYAML
}

// ReadFile parses the file at path, choosing the format from its extension.
func ReadFile(path string) (*node.Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	n, err := Parse(data, FormatOf(path))
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return n, nil
}

// Bytes parses data and maps it onto a new T. err is non-nil only when the
// document cannot be parsed or T cannot be mapped; mapping problems go to
// the Reporter in opts and show up as ok == false.
func Bytes[T any](data []byte, f Format, opts ...docbind.Options) (T, bool, error) {
	var zero T
	s, err := docbind.SchemaOf[T]()
	if err != nil {
		return zero, false, err
	}
	n, err := Parse(data, f)
	if err != nil {
		return zero, false, fmt.Errorf("load: %w", err)
	}
	v, ok := docbind.MapWith[T](s, n, opts...)
	return v, ok, nil
}

// File is Bytes for the file at path.
func File[T any](path string, opts ...docbind.Options) (T, bool, error) {
	var zero T
	s, err := docbind.SchemaOf[T]()
	if err != nil {
		return zero, false, err
	}
	n, err := ReadFile(path)
	if err != nil {
		return zero, false, err
	}
	v, ok := docbind.MapWith[T](s, n, opts...)
	return v, ok, nil
}
