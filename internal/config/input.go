// Package config loads scenario files. The on-disk format is YAML with
// the field names declared on the domain types, so the file mirrors the
// domain one to one.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/wealthpath/retiresim/internal/domain"
)

// InputParser handles parsing of scenario configuration files.
type InputParser struct{}

// NewInputParser creates a new input parser.
func NewInputParser() *InputParser {
	return &InputParser{}
}

// LoadFromFile loads a scenario from a YAML file, applies defaults and
// validates it. The returned params are ready for the simulator.
func (ip *InputParser) LoadFromFile(filename string) (*domain.ScenarioParams, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	return ip.Parse(data)
}

// Parse decodes and validates raw YAML scenario bytes.
func (ip *InputParser) Parse(data []byte) (*domain.ScenarioParams, error) {
	var params domain.ScenarioParams
	if err := yaml.Unmarshal(data, &params); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	params.Normalize()
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("scenario validation failed: %w", err)
	}
	return &params, nil
}
