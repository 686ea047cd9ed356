// Package config loads project configuration from mml.yaml. Flags given
// on the command line override file values.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/fedesilva/minnieml/internal/semantic"
)

// Config is the project-level compiler configuration.
type Config struct {
	Module    string `yaml:"module"`
	Mode      string `yaml:"mode"`
	NoTCO     bool   `yaml:"noTco"`
	DumpAst   bool   `yaml:"dumpAst"`
	AllErrors bool   `yaml:"allErrors"`
	JSON      bool   `yaml:"json"`
}

// DefaultConfig returns the configuration used when no mml.yaml exists.
func DefaultConfig() Config {
	return Config{Mode: "binary"}
}

// Load reads the configuration file at path. A missing file yields the
// defaults without error; a malformed one is an error.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing %s: %w", path, err)
	}
	if cfg.Mode == "" {
		cfg.Mode = "binary"
	}
	if _, ok := semantic.ParseMode(cfg.Mode); !ok {
		return cfg, fmt.Errorf("%s: unknown mode %q", path, cfg.Mode)
	}
	return cfg, nil
}

// SemanticMode converts the configured mode name.
func (c Config) SemanticMode() semantic.Mode {
	m, _ := semantic.ParseMode(c.Mode)
	return m
}
