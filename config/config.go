package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/rios0rios0/workspacedeps/internal/output"
	"github.com/rios0rios0/workspacedeps/internal/resolver"
)

// Config is the top-level configuration for workspacedeps. Every value has
// a sensible default; the file only exists to pin project-wide settings so
// CI and local runs agree. CLI flags override file values.
type Config struct {
	Exclude           []string       `yaml:"exclude"`            // Dependency names never consolidated
	ExcludeMembers    []string       `yaml:"exclude_members"`    // Member name glob patterns to skip
	MinMembers        int            `yaml:"min_members"`        // Member threshold for new shared entries
	VersionResolution string         `yaml:"version_resolution"` // Conflict resolution strategy
	Format            string         `yaml:"format"`             // Default output format
	Sections          SectionsConfig `yaml:"sections"`
}

// SectionsConfig toggles which dependency tables are processed. Absent
// values default to true.
type SectionsConfig struct {
	Dependencies      *bool `yaml:"dependencies"`
	DevDependencies   *bool `yaml:"dev_dependencies"`
	BuildDependencies *bool `yaml:"build_dependencies"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		MinMembers:        2,
		VersionResolution: string(resolver.StrategyHighestCompatible),
		Format:            string(output.FormatText),
	}
}

// Load reads and parses a configuration file, filling absent values with
// defaults and validating the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
	}

	cfg := Default()
	if unmarshalErr := yaml.Unmarshal(data, cfg); unmarshalErr != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", unmarshalErr)
	}

	if validateErr := validate(cfg); validateErr != nil {
		return nil, validateErr
	}

	return cfg, nil
}

// FindConfigFile searches for a configuration file in standard locations.
// Returns the path to the first file found or an error if none is found.
func FindConfigFile() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = ""
	}

	locations := []string{
		".",
		".config",
		"configs",
	}
	if homeDir != "" {
		locations = append(
			locations,
			homeDir,
			filepath.Join(homeDir, ".config"),
		)
	}

	patterns := []string{
		".workspacedeps.yaml",
		".workspacedeps.yml",
		"workspacedeps.yaml",
		"workspacedeps.yml",
	}

	for _, loc := range locations {
		for _, pat := range patterns {
			p := filepath.Join(loc, pat)
			if _, statErr := os.Stat(p); statErr == nil {
				return p, nil
			}
		}
	}

	return "", errors.New("config file not found in default locations")
}

// validate checks for configuration values the engine would reject.
func validate(cfg *Config) error {
	if cfg.MinMembers < 1 {
		return fmt.Errorf("min_members must be a positive integer, got %d", cfg.MinMembers)
	}
	if _, err := resolver.ParseStrategy(cfg.VersionResolution); err != nil {
		return fmt.Errorf("invalid version_resolution: %w", err)
	}
	if _, err := output.ParseFormat(cfg.Format); err != nil {
		return fmt.Errorf("invalid format: %w", err)
	}
	if !cfg.Sections.Enabled() {
		return errors.New("at least one dependency section must be enabled")
	}
	return nil
}

// Enabled reports whether any section is left enabled.
func (s SectionsConfig) Enabled() bool {
	enabled := func(v *bool) bool { return v == nil || *v }
	return enabled(s.Dependencies) || enabled(s.DevDependencies) || enabled(s.BuildDependencies)
}
