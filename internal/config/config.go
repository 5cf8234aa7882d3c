// Package config loads the optional analyzer configuration file: scanner
// include/exclude globs plus a rule-table override that can add detection
// rules and reorder framework priority without code changes.
package config

import (
	"fmt"
	"os"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"

	"github.com/StinkyLord/archmap/internal/model"
)

// RuleDef is one user-supplied detection rule: a canonical display name and
// the patterns that detect it. Patterns are case-insensitive regular
// expressions tested against file content and path.
type RuleDef struct {
	Name     string   `yaml:"name"`
	Patterns []string `yaml:"patterns"`
}

// Validate checks that the rule has a name and at least one compilable pattern.
func (r RuleDef) Validate() error {
	if err := validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required),
		validation.Field(&r.Patterns, validation.Required, validation.Length(1, 0)),
	); err != nil {
		return err
	}
	for _, p := range r.Patterns {
		if _, err := regexp.Compile("(?i)" + p); err != nil {
			return fmt.Errorf("rule %q: invalid pattern %q: %w", r.Name, p, err)
		}
	}
	return nil
}

// Config is the full analyzer configuration. The zero value is valid and
// means: default include/exclude heuristics, built-in rule table.
type Config struct {
	// Include restricts scanning to paths matching these doublestar globs,
	// relative to the repository root. Empty means the built-in heuristics.
	Include []string `yaml:"include"`

	// Exclude drops paths matching these globs on top of the built-in
	// dependency/build directory skip list.
	Exclude []string `yaml:"exclude"`

	// FrameworkPriority overrides the first-match-wins order used to pick
	// the primary framework for the summary.
	FrameworkPriority []string `yaml:"frameworkPriority"`

	// Categories adds rules to the built-in table, keyed by category.
	Categories map[string][]RuleDef `yaml:"categories"`
}

// Validate checks category keys against the closed category set and
// validates every rule definition.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Include, validation.Each(validation.Required)),
		validation.Field(&c.Exclude, validation.Each(validation.Required)),
		validation.Field(&c.FrameworkPriority, validation.Each(validation.Required)),
	); err != nil {
		return err
	}
	for key, defs := range c.Categories {
		if !model.Category(key).Valid() {
			return fmt.Errorf("unknown category %q in rule table", key)
		}
		for _, def := range defs {
			if err := def.Validate(); err != nil {
				return fmt.Errorf("category %q: %w", key, err)
			}
		}
	}
	return nil
}

// Load reads a YAML configuration file with environment variable expansion.
// A load or validation failure is a ConfigurationError: fatal, nothing runs.
func Load(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", filename, err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", filename, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}
