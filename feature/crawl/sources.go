package crawl

import (
	"errors"
	"fmt"
	"os"

	"ats-catalog/feature/ats"

	"gopkg.in/yaml.v3"
)

// SourcesFile is the YAML layout of the sources file.
type SourcesFile struct {
	Sources []ats.Source `yaml:"sources"`
}

// LoadSources reads and validates the sources at path.
// A missing file yields an error wrapping os.ErrNotExist.
func LoadSources(path string) ([]ats.Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sources %s: %w", path, err)
	}
	return ParseSources(data)
}

// ParseSources decodes and validates a sources document.
func ParseSources(data []byte) ([]ats.Source, error) {
	var file SourcesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse sources: %w", err)
	}

	var errs []error
	seen := map[string]int{}
	for i, src := range file.Sources {
		if err := src.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("sources[%d]: %w", i, err))
			continue
		}
		key := src.Scope().Key()
		if prev, dup := seen[key]; dup {
			errs = append(errs, fmt.Errorf("sources[%d]: duplicates sources[%d] (%s)", i, prev, src.Scope()))
			continue
		}
		seen[key] = i
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return file.Sources, nil
}
