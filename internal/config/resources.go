package config

import (
	"fmt"
	"maps"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"marketDash/internal/modules/dashboard/domain"
)

type resourcesFile struct {
	Resources []domain.Resource `yaml:"resources"`
}

// LoadResources returns the built-in resources with the overrides of the YAML file at path
// applied. An empty path returns the defaults unchanged.
func LoadResources(path string) (map[string]domain.Resource, error) {
	resources := domain.DefaultResources()
	if strings.TrimSpace(path) == "" {
		return resources, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read resources file: %w", err)
	}
	var file resourcesFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse resources file: %w", err)
	}

	for _, override := range file.Resources {
		name := strings.TrimSpace(override.Name)
		if name == "" {
			return nil, fmt.Errorf("resources file %s: entry without name", path)
		}
		merged := mergeResource(resources[name], override)
		merged.Name = name
		if merged.Path == "" {
			merged.Path = name
		}
		if merged.DateWindow == "" {
			merged.DateWindow = domain.DateWindowTrailingWeek
		}
		if err := merged.Validate(); err != nil {
			return nil, fmt.Errorf("resources file %s: %w", path, err)
		}
		resources[name] = merged
	}
	return resources, nil
}

// mergeResource replaces every field of base that override sets.
func mergeResource(base, override domain.Resource) domain.Resource {
	merged := base
	if override.Path != "" {
		merged.Path = override.Path
	}
	if override.InitialLimit > 0 {
		merged.InitialLimit = override.InitialLimit
	}
	if override.FetchLimit > 0 {
		merged.FetchLimit = override.FetchLimit
	}
	if override.DateWindow != "" {
		merged.DateWindow = override.DateWindow
	}
	if override.TextFilters != nil {
		merged.TextFilters = maps.Clone(override.TextFilters)
	}
	if override.ExactFilters != nil {
		merged.ExactFilters = maps.Clone(override.ExactFilters)
	}
	if override.NumericSort != nil {
		merged.NumericSort = append([]string(nil), override.NumericSort...)
	}
	return merged
}
