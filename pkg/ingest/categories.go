package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Only these single-letter opportunity category codes are evidenced in feed
// data so far. Additional codes are configured, not guessed.
var baseCategories = map[string]string{
	"O": "Other",
	"M": "Mandatory",
}

// CategoryMap resolves single-letter opportunity category codes to labels.
type CategoryMap map[string]string

type categoryConfig struct {
	Categories map[string]string `yaml:"categories"`
}

// LoadCategoryMap returns the built-in code table, extended by the YAML file
// at path when one is configured. File entries win over built-ins.
func LoadCategoryMap(path string) (CategoryMap, error) {
	m := make(CategoryMap, len(baseCategories))
	for code, label := range baseCategories {
		m[code] = label
	}

	if path == "" {
		return m, nil
	}

	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("reading category mapping file: %w", err)
	}

	var cfg categoryConfig
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return nil, fmt.Errorf("parsing category mapping file: %w", err)
	}

	for code, label := range cfg.Categories {
		code = strings.ToUpper(strings.TrimSpace(code))
		if code == "" || strings.TrimSpace(label) == "" {
			continue
		}
		m[code] = strings.TrimSpace(label)
	}

	return m, nil
}

// Label maps a code to its category label. Unknown codes pass through
// unchanged so unexpected feed values stay visible downstream.
func (m CategoryMap) Label(code string) string {
	if label, ok := m[code]; ok {
		return label
	}
	return code
}
