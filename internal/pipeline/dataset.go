package pipeline

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format is the encoding of a raw event file
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatJS   Format = "js" // `const EVENTS = [ ... ];` script with a literal array
)

// FormatFromPath picks a format from the file extension, defaulting to JSON
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".js":
		return FormatJS
	default:
		return FormatJSON
	}
}

// ReadRecords loads the raw records of an event file
func ReadRecords(path string) ([]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	records, err := DecodeRecords(data, FormatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return records, nil
}

// DecodeRecords decodes an array of raw records. An object with an "events"
// array is accepted in place of a bare array.
func DecodeRecords(data []byte, format Format) ([]any, error) {
	var doc any
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("invalid JSON: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("invalid YAML: %w", err)
		}
	case FormatJS:
		literal, err := scriptArray(data)
		if err != nil {
			return nil, err
		}
		// Object literals with bare keys are valid YAML flow collections
		if err := yaml.Unmarshal(literal, &doc); err != nil {
			return nil, fmt.Errorf("invalid array literal: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}

	switch v := doc.(type) {
	case []any:
		return v, nil
	case map[string]any:
		if events, ok := v["events"].([]any); ok {
			return events, nil
		}
		return nil, fmt.Errorf("object has no events array")
	case nil:
		return []any{}, nil
	default:
		return nil, fmt.Errorf("expected an array of records, got %T", doc)
	}
}

// scriptArray extracts the array literal assigned in a script, dropping
// whole-line // comments
func scriptArray(data []byte) ([]byte, error) {
	var kept [][]byte
	for _, line := range bytes.Split(data, []byte("\n")) {
		if bytes.HasPrefix(bytes.TrimSpace(line), []byte("//")) {
			continue
		}
		kept = append(kept, line)
	}
	src := bytes.Join(kept, []byte("\n"))

	start := 0
	if eq := bytes.IndexByte(src, '='); eq >= 0 {
		start = eq + 1
	}
	open := bytes.IndexByte(src[start:], '[')
	end := bytes.LastIndexByte(src, ']')
	if open < 0 || end < start+open {
		return nil, fmt.Errorf("no array literal found")
	}
	return src[start+open : end+1], nil
}
