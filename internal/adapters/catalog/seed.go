package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/okian/hookah/internal/domain/model"
	"gopkg.in/yaml.v3"
)

// LoadSeed reads a flavors file in JSON (.json) or YAML (.yaml, .yml).
// The document is either a list of flavors or an object with a "flavors" list.
// Entries go through the same lenient decoding as the flavor store and are cleaned.
func LoadSeed(path string) ([]model.Flavor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSeedRead, err)
	}
	return ParseSeed(data, filepath.Ext(path))
}

// ParseSeed decodes seed data; ext selects the format.
func ParseSeed(data []byte, ext string) ([]model.Flavor, error) {
	switch strings.ToLower(ext) {
	case ".json":
	case ".yaml", ".yml":
		var doc any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("%w: yaml: %w", ErrSeedRead, err)
		}
		converted, err := json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("%w: yaml: %w", ErrSeedRead, err)
		}
		data = converted
	default:
		return nil, fmt.Errorf("%w: %q", ErrSeedFormat, ext)
	}

	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		var wrapper struct {
			Flavors json.RawMessage `json:"flavors"`
		}
		if err := json.Unmarshal(data, &wrapper); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrSeedRead, err)
		}
		data = wrapper.Flavors
	}

	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("%w: expected a list of flavors: %w", ErrSeedRead, err)
	}
	flavors := make([]model.Flavor, 0, len(items))
	for _, raw := range items {
		var f model.Flavor
		if err := json.Unmarshal(raw, &f); err != nil {
			continue
		}
		flavors = append(flavors, f)
	}
	return Clean(flavors), nil
}
