package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the on-disk YAML catalog format
type File struct {
	Problems []ProblemSpec `yaml:"problems"`
}

// Load reads a YAML catalog from path
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}
	return Parse(data)
}

// Parse builds a catalog from YAML bytes
func Parse(data []byte) (*Catalog, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if len(f.Problems) == 0 {
		return nil, fmt.Errorf("catalog has no problems")
	}
	problems, err := Build(f.Problems)
	if err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}
	return &Catalog{problems: problems}, nil
}

// LoadOrDefault loads path when set and falls back to the built-in set
func LoadOrDefault(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}
