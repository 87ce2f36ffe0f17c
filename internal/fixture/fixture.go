// Package fixture loads canned migration inputs from a JSON file so a run
// can be repeated without retyping paths.
//
// The file maps a tool key to an index and a list of inputs:
//
//	{"vivado": {"index": 1, "inputs": [
//	    {"projectFileFA": "C:/a/a.xpr", "targetDir": "C:/out/a"},
//	    {"projectFileFA": "C:/b/b.xpr", "targetDir": "C:/out/b"}]}}
//
// The entry at index is the one used.
package fixture

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
)

// DefaultPath is looked up relative to the working directory.
const DefaultPath = "debug_inputs.json"

var (
	// ErrKeyNotFound is returned when the file has no entry for the key.
	ErrKeyNotFound = errors.New("fixture key not found")
	// ErrIndexOutOfRange is returned when index does not select an input.
	ErrIndexOutOfRange = errors.New("fixture index out of range")
	// ErrMalformed is returned when a value has the wrong JSON type.
	ErrMalformed = errors.New("malformed fixture")
)

// Inputs is one canned pair of migration inputs.
type Inputs struct {
	ProjectFile string
	TargetDir   string
}

// Apply fills whichever of project and target is empty.
func (in Inputs) Apply(project, target string) (string, string) {
	if project == "" {
		project = in.ProjectFile
	}
	if target == "" {
		target = in.TargetDir
	}
	return project, target
}

// Available reports whether a fixture file exists at path.
func Available(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Load reads the inputs selected for key.
func Load(path, key string) (Inputs, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is the configured fixture file
	if err != nil {
		return Inputs{}, fmt.Errorf("reading fixture: %w", err)
	}
	return Parse(data, key)
}

// Parse decodes fixture data and returns the inputs selected for key.
func Parse(data []byte, key string) (Inputs, error) {
	var root map[string]any
	if err := json.Unmarshal(data, &root); err != nil {
		return Inputs{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	raw, ok := root[key]
	if !ok {
		return Inputs{}, fmt.Errorf("%w: %q", ErrKeyNotFound, key)
	}
	entry, ok := raw.(map[string]any)
	if !ok {
		return Inputs{}, fmt.Errorf("%w: %q is not an object", ErrMalformed, key)
	}

	index, err := intField(entry, "index")
	if err != nil {
		return Inputs{}, err
	}
	list, ok := entry["inputs"].([]any)
	if !ok {
		return Inputs{}, fmt.Errorf("%w: %q.inputs is not an array", ErrMalformed, key)
	}
	if index < 0 || index >= len(list) {
		return Inputs{}, fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, index, len(list))
	}

	item, ok := list[index].(map[string]any)
	if !ok {
		return Inputs{}, fmt.Errorf("%w: input %d is not an object", ErrMalformed, index)
	}
	project, err := stringField(item, "projectFileFA")
	if err != nil {
		return Inputs{}, err
	}
	target, err := stringField(item, "targetDir")
	if err != nil {
		return Inputs{}, err
	}
	return Inputs{ProjectFile: project, TargetDir: target}, nil
}

func intField(obj map[string]any, name string) (int, error) {
	v, ok := obj[name]
	if !ok {
		return 0, nil
	}
	f, ok := v.(float64)
	if !ok || f != math.Trunc(f) {
		return 0, fmt.Errorf("%w: %s must be an integer", ErrMalformed, name)
	}
	return int(f), nil
}

// stringField treats a missing or null field as empty.
func stringField(obj map[string]any, name string) (string, error) {
	v, ok := obj[name]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s must be a string", ErrMalformed, name)
	}
	return s, nil
}
