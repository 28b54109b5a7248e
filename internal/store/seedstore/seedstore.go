package seedstore

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/idilsaglam/catbus/internal/model"
)

// YAML-backed seed list. Single file, human-readable; JSON parses too since
// it is valid YAML. Read-only: votes live in memory for the process lifetime.

// Load reads the proposals stored at path. A missing file is not an error and
// yields nil, letting the caller fall back to model.DefaultSeed.
func Load(path string) ([]model.Proposal, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read file: %w", err)
	}
	var items []model.Proposal
	if err := yaml.Unmarshal(b, &items); err != nil {
		return nil, fmt.Errorf("yaml unmarshal: %w", err)
	}
	if items == nil {
		items = []model.Proposal{}
	}
	return items, nil
}

// LoadOrDefault is Load with the built-in seed substituted for a missing file.
func LoadOrDefault(path string) ([]model.Proposal, error) {
	items, err := Load(path)
	if err != nil {
		return nil, err
	}
	if items == nil {
		return model.DefaultSeed(), nil
	}
	return items, nil
}
