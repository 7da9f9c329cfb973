package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadFile reads a YAML configuration file, applies defaults and picks up
// the API token from HCLOUD_TOKEN. It does not validate; callers decide
// when validation runs so that flag overrides are honored first.
func LoadFile(path string) (*Config, error) {
	// #nosec G304
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML configuration. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to unmarshal yaml: %w", err)
	}

	// Zero workers is a valid cluster, so only an absent key gets the default.
	var present struct {
		NumWorkers *int `yaml:"num_workers"`
	}
	if err := yaml.Unmarshal(data, &present); err != nil {
		return nil, fmt.Errorf("failed to unmarshal yaml: %w", err)
	}
	if present.NumWorkers == nil {
		cfg.NumWorkers = DefaultNumWorkers
	}
	cfg.ApplyDefaults()
	cfg.HCloudToken = os.Getenv("HCLOUD_TOKEN")

	return cfg, nil
}

// Default returns a configuration with every default applied and no prefix.
func Default() *Config {
	cfg := &Config{NumWorkers: DefaultNumWorkers}
	cfg.ApplyDefaults()
	cfg.HCloudToken = os.Getenv("HCLOUD_TOKEN")
	return cfg
}
