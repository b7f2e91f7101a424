// Package config carries the settings shared by the CLI and the daemon,
// and the per-clip render request handed to the engine.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Defaults matching the legacy service.
const (
	DefaultWidth     = 1920
	DefaultHeight    = 1080
	DefaultFPS       = 30
	DefaultDuration  = 4.0
	DefaultStyle     = "cloud_blue"
	DefaultOutputDir = "outputs"

	// MaxTextLen bounds title and subtitle length; longer strings are a
	// caller error, not a layout problem.
	MaxTextLen = 100
)

// Config holds process-level settings.
type Config struct {
	ListenAddr string `yaml:"listen_addr"`
	OutputDir  string `yaml:"output_dir"`
	Container  string `yaml:"container"` // "mp4" (ffmpeg) or "avi" (built-in)
	Encoder    string `yaml:"encoder"`   // ffmpeg video encoder, empty = auto
	Quality    int    `yaml:"quality"`   // encoder quality, 0 = auto
	Workers    int    `yaml:"workers"`   // compose workers, 0 = auto
	Verbose    bool   `yaml:"verbose"`
}

// Default returns the config used when no file is given.
func Default() *Config {
	return &Config{
		ListenAddr: ":5000",
		OutputDir:  DefaultOutputDir,
		Container:  "mp4",
	}
}

// Load reads a YAML config file and applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	cfg.ApplyEnv()
	return cfg, nil
}

// ApplyEnv lets container orchestration override the file settings.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("OUTPUT_DIR"); v != "" {
		c.OutputDir = v
	}
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		c.ListenAddr = v
	}
}

// Save writes the config as YAML, mirroring Load.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
