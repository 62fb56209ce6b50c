package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// RawTechnology is one unvalidated row of the technology table. Value keeps
// the loose [name, days, delete/keep] shape from the file so a malformed row
// is reported and skipped during the run instead of failing the whole load.
type RawTechnology struct {
	Pattern string `yaml:"pattern"`
	Value   any    `yaml:"value"`
}

type technologiesFile struct {
	Technologies []RawTechnology `yaml:"technologies"`
}

// LoadTechnologies reads the technology table, preserving document order.
func LoadTechnologies(path string) ([]RawTechnology, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read technologies file %s: %w", path, err)
	}

	var doc technologiesFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse technologies file %s: %w", path, err)
	}

	return doc.Technologies, nil
}
