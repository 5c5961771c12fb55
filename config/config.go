// Package config loads runtime settings from YAML files. Settings cover the
// model provider, the output root for agent storage and logging; everything
// has a sensible default so an empty file is valid.
package config

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/XinyueZ/tinyagent/logging"
)

// LoggingConfig selects log verbosity and encoding.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Config is the top-level runtime configuration.
type Config struct {
	// Provider selects the model backend: "anthropic", "openai" or "mock".
	Provider string `yaml:"provider"`
	// Model is the provider-specific model identifier.
	Model string `yaml:"model"`
	// OutputRoot is the parent location for every agent's private storage.
	OutputRoot string `yaml:"output_root"`
	// MaxTurns caps model / tool rounds per agent invocation.
	MaxTurns int `yaml:"max_turns"`

	Logging LoggingConfig `yaml:"logging"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Provider:   "anthropic",
		OutputRoot: "output",
		MaxTurns:   50,
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads path and overlays it on the defaults. Fields absent from the
// file keep their default values.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}

	if cfg.MaxTurns <= 0 {
		cfg.MaxTurns = Default().MaxTurns
	}
	return cfg, nil
}

// LoadOrDefault reads path when it exists and falls back to Default() when it
// does not, so apps can treat their config file as optional. A file that
// exists but fails to parse is still an error.
func LoadOrDefault(path string) (Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}
	return Load(path)
}

// NewLogger builds a structured logger from the logging section, writing to
// out.
func (l LoggingConfig) NewLogger(out io.Writer) logging.Logger {
	return logging.NewLogger(&logging.LoggerConfig{
		Level:  logging.ParseLevel(l.Level),
		Format: l.Format,
		Output: out,
	})
}
