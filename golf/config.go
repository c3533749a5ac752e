package golf

import (
	"errors"
	"fmt"
	"os"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"

	"github.com/gnolang/pygolf/internal/printer"
	"github.com/gnolang/pygolf/internal/rules"
	tt "github.com/gnolang/pygolf/internal/types"
)

// DefaultConfigFile is the configuration read when none is named.
const DefaultConfigFile = ".pygolf.yaml"

// Config represents the overall configuration with a name and the rules
// to run.
type Config struct {
	Name          string                   `yaml:"name"`
	TargetVersion string                   `yaml:"target_version"`
	CacheDir      string                   `yaml:"cache_dir"`
	OutputSuffix  string                   `yaml:"output_suffix"`
	Rules         map[string]tt.ConfigRule `yaml:"rules"`
}

// DefaultConfig enables every rule for the default target.
func DefaultConfig() Config {
	cfg := Config{
		Name:          "pygolf",
		TargetVersion: printer.DefaultTarget.Original(),
		OutputSuffix:  ".golf.py",
		Rules:         make(map[string]tt.ConfigRule),
	}
	for _, name := range rules.Names() {
		cfg.Rules[name] = tt.ConfigRule{Enabled: true}
	}
	return cfg
}

// LoadConfig reads the configuration at path over the defaults. A missing
// file yields the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		path = DefaultConfigFile
	}

	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}
	defer f.Close()

	var loaded Config
	if err := yaml.NewDecoder(f).Decode(&loaded); err != nil {
		return cfg, fmt.Errorf("error parsing %s: %w", path, err)
	}
	if loaded.Name != "" {
		cfg.Name = loaded.Name
	}
	if loaded.TargetVersion != "" {
		cfg.TargetVersion = loaded.TargetVersion
	}
	if loaded.OutputSuffix != "" {
		cfg.OutputSuffix = loaded.OutputSuffix
	}
	cfg.CacheDir = loaded.CacheDir
	for name, rule := range loaded.Rules {
		cfg.Rules[name] = rule
	}
	return cfg, cfg.Validate()
}

// Validate checks the target version and the rule names.
func (c Config) Validate() error {
	if _, err := c.Target(); err != nil {
		return err
	}
	known := make(map[string]bool)
	for _, name := range rules.Names() {
		known[name] = true
	}
	for name := range c.Rules {
		if !known[name] {
			return fmt.Errorf("unknown rule %q", name)
		}
	}
	return nil
}

// Target parses the target version.
func (c Config) Target() (*semver.Version, error) {
	if c.TargetVersion == "" {
		return printer.DefaultTarget, nil
	}
	v, err := semver.NewVersion(c.TargetVersion)
	if err != nil {
		return nil, fmt.Errorf("invalid target version %q: %w", c.TargetVersion, err)
	}
	return v, nil
}

// Write stores the configuration as YAML at path.
func (c Config) Write(path string) error {
	if path == "" {
		path = DefaultConfigFile
	}
	d, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, d, 0o644)
}
