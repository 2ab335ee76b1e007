package core

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds run-wide defaults, usually loaded from a YAML policy file.
type Config struct {
	// NonStrict is the default strictness of expectation blocks.
	NonStrict bool `yaml:"nonStrict"`
	// Iterations is the default iteration count of expectation blocks.
	Iterations int `yaml:"iterations"`
	// NonStrictClasses lists class descriptors whose members are always non-strict.
	NonStrictClasses []string `yaml:"nonStrictClasses"`
	// NonStrictMembers lists individual members that are always non-strict.
	NonStrictMembers []MemberRule `yaml:"nonStrictMembers"`
}

// LoadConfig parses a policy file with strict field validation. Unknown fields are an
// error. An empty document yields the zero Config.
func LoadConfig(r io.Reader) (Config, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	var config Config

	err := decoder.Decode(&config)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Config{}, nil
		}

		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	err = config.Validate()
	if err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return config, nil
}

// LoadConfigFile loads a policy file from path.
func LoadConfigFile(path string) (Config, error) {
	file, err := os.Open(path) //nolint:gosec // path is supplied by the user on purpose
	if err != nil {
		return Config{}, fmt.Errorf("failed to open config file: %w", err)
	}
	defer func() { _ = file.Close() }()

	return LoadConfig(file)
}

// Apply installs the config's non-strict rules on run.
func (c Config) Apply(run *TestRun) {
	for _, classDesc := range c.NonStrictClasses {
		run.Policy.AddClass(classDesc)
	}

	for _, rule := range c.NonStrictMembers {
		run.Policy.AddMember(rule)
	}
}

// Validate checks the config for values the engine cannot use.
func (c Config) Validate() error {
	if c.Iterations < 0 {
		//nolint:err113 // validation error with dynamic context
		return fmt.Errorf("iterations must not be negative, got %d", c.Iterations)
	}

	for i, rule := range c.NonStrictMembers {
		if rule.Member == "" {
			//nolint:err113 // validation error with dynamic context
			return fmt.Errorf("nonStrictMembers[%d]: member is required", i)
		}
	}

	return nil
}
