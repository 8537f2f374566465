/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/ssargent/blobpack/pkg/ujson"
)

// Config represents the blobpack configuration
type Config struct {
	DataDir string  `yaml:"data_dir"`
	Decode  Decode  `yaml:"decode"`
	Encode  Encode  `yaml:"encode"`
	Logging Logging `yaml:"logging"`
}

// Decode contains JSON decoder settings
type Decode struct {
	PreciseFloat bool `yaml:"precise_float"`
	MaxDepth     int  `yaml:"max_depth"`
	// Comments accepts JSONC input: comments and trailing commas are
	// stripped before decoding.
	Comments bool `yaml:"comments"`
}

// Encode contains JSON output and layout settings
type Encode struct {
	EscapeUnicode bool `yaml:"escape_unicode"`
	// Named selects the named-attribute layout for encoded buffers.
	Named bool `yaml:"named"`
}

// Logging contains logging configuration
type Logging struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		DataDir: "./data",
		Decode: Decode{
			PreciseFloat: false,
			MaxDepth:     ujson.DefaultMaxDepth,
		},
		Logging: Logging{
			Level: "info",
		},
	}
}

// LoadConfig loads configuration from the specified path. Keys missing from
// the file keep their default values.
func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configPath)
	}

	if !filepath.IsAbs(configPath) {
		absPath, err := filepath.Abs(configPath)
		if err != nil {
			return nil, fmt.Errorf("invalid config path: %w", err)
		}
		configPath = absPath
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file: %w", err)
	}
	return config, nil
}

// SaveConfig saves the configuration to the specified path with secure permissions
func SaveConfig(config *Config, configPath string) error {
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// BootstrapConfig writes a default configuration, with dataDir if given, to
// configPath.
func BootstrapConfig(configPath string, dataDir string) (*Config, error) {
	config := DefaultConfig()
	if dataDir != "" {
		config.DataDir = dataDir
	}

	if err := SaveConfig(config, configPath); err != nil {
		return nil, fmt.Errorf("failed to save bootstrap config: %w", err)
	}

	return config, nil
}

// GetDefaultConfigPath returns the default configuration path for the current platform
func GetDefaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./blobpack.yaml"
	}

	// For Linux/macOS, use ~/.config/blobpack/config.yaml
	configDir := filepath.Join(homeDir, ".config", "blobpack")
	return filepath.Join(configDir, "config.yaml")
}

// ConfigExists checks if a configuration file exists
func ConfigExists(configPath string) bool {
	_, err := os.Stat(configPath)
	return !os.IsNotExist(err)
}

// Validate checks the configuration for values the codecs cannot use.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data_dir must not be empty")
	}
	if c.Decode.MaxDepth < 0 {
		return fmt.Errorf("decode.max_depth must not be negative, got %d", c.Decode.MaxDepth)
	}
	if _, err := ParseLevel(c.Logging.Level); err != nil {
		return err
	}
	return nil
}

// ParseLevel maps a logging level name to a slog level.
func ParseLevel(level string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return 0, fmt.Errorf("unknown logging level %q", level)
	}
	return l, nil
}

// DecodeOptions returns the JSON decoder options described by c.
func (c *Config) DecodeOptions() ujson.Options {
	return ujson.Options{
		PreciseFloat: c.Decode.PreciseFloat,
		MaxDepth:     c.Decode.MaxDepth,
	}
}

// EncodeOptions returns the JSON output options described by c.
func (c *Config) EncodeOptions() ujson.EncodeOptions {
	return ujson.EncodeOptions{
		EscapeUnicode: c.Encode.EscapeUnicode,
	}
}
