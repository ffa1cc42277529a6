// Package metadata loads workflow run-metadata documents.
package metadata

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// RunMetadata is the realized inputs/outputs record of a completed workflow
// run, keyed by fully-qualified (dotted) parameter names.
type RunMetadata struct {
	Inputs  map[string]any `yaml:"inputs"`
	Outputs map[string]any `yaml:"outputs"`
}

// Load reads and parses a run-metadata document from path.
// YAML is a superset of JSON, so Cromwell's JSON metadata parses directly.
func Load(path string) (*RunMetadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read metadata file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a run-metadata document. Both inputs and outputs must be
// present as mappings.
func Parse(data []byte) (*RunMetadata, error) {
	var raw struct {
		Inputs  map[string]any `yaml:"inputs"`
		Outputs map[string]any `yaml:"outputs"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse metadata: %w", err)
	}
	if raw.Inputs == nil {
		return nil, fmt.Errorf("parse metadata: missing 'inputs' mapping")
	}
	if raw.Outputs == nil {
		return nil, fmt.Errorf("parse metadata: missing 'outputs' mapping")
	}
	return &RunMetadata{Inputs: raw.Inputs, Outputs: raw.Outputs}, nil
}
