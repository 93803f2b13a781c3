// Package config provides configuration management for ivmd.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the ivmd configuration.
type Config struct {
	Endpoint        string `yaml:"endpoint,omitempty"`
	Token           string `yaml:"token,omitempty"`
	Style           string `yaml:"style,omitempty"`
	ExecutableClass string `yaml:"executable_class,omitempty"`
	Sanitize        bool   `yaml:"sanitize,omitempty"`
	OutputFormat    string `yaml:"output_format,omitempty"`
}

// Validate checks the settings needed to dispatch code to an endpoint.
// Rendering works without a valid config.
func (c *Config) Validate() error {
	if c.Endpoint == "" {
		return errors.New("endpoint is required")
	}

	if !strings.HasPrefix(c.Endpoint, "https://") && !strings.HasPrefix(c.Endpoint, "http://") {
		return errors.New("endpoint must use http or https")
	}

	return nil
}

// NormalizeEndpoint strips trailing slashes from the endpoint.
func (c *Config) NormalizeEndpoint() {
	c.Endpoint = strings.TrimRight(c.Endpoint, "/")
}

// ResolveOutput picks the output format for a command. An explicit --output
// wins; otherwise output_format from the file applies, then the flag default.
func (c *Config) ResolveOutput(flagValue string, flagChanged bool) string {
	if flagChanged || c.OutputFormat == "" {
		return flagValue
	}
	return c.OutputFormat
}

// LoadFromEnv loads configuration from environment variables.
// Environment variables override existing values only if set and non-empty.
// Precedence: IVMD_* → INTERVIRT_* → existing config value
func (c *Config) LoadFromEnv() {
	if endpoint := getEnvWithFallback("IVMD_ENDPOINT", "INTERVIRT_ENDPOINT"); endpoint != "" {
		c.Endpoint = endpoint
	}
	if token := getEnvWithFallback("IVMD_TOKEN", "INTERVIRT_TOKEN"); token != "" {
		c.Token = token
	}
	if style := os.Getenv("IVMD_STYLE"); style != "" {
		c.Style = style
	}
	if class := os.Getenv("IVMD_EXECUTABLE_CLASS"); class != "" {
		c.ExecutableClass = class
	}
}

// EnvVars lists every environment variable LoadFromEnv reads.
func EnvVars() []string {
	return []string{"IVMD_ENDPOINT", "IVMD_TOKEN", "IVMD_STYLE", "IVMD_EXECUTABLE_CLASS",
		"INTERVIRT_ENDPOINT", "INTERVIRT_TOKEN"}
}

// getEnvWithFallback returns the value of the primary env var, or the fallback if primary is empty.
func getEnvWithFallback(primary, fallback string) string {
	if v := os.Getenv(primary); v != "" {
		return v
	}
	return os.Getenv(fallback)
}

// DefaultConfigPath returns the default configuration file path.
func DefaultConfigPath() string {
	// Try XDG config directory first
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "ivmd", "config.yml")
	}

	// Fall back to ~/.config/ivmd/config.yml
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".ivmd", "config.yml")
	}

	return filepath.Join(home, ".config", "ivmd", "config.yml")
}

// ResolvePath returns path when set, otherwise the default path.
func ResolvePath(path string) string {
	if path != "" {
		return path
	}
	return DefaultConfigPath()
}

// Save writes the configuration to the specified path.
func (c *Config) Save(path string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write with restricted permissions (user read/write only)
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Load reads the configuration from the specified path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &cfg, nil
}

// LoadWithEnv loads configuration from file and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		// If file doesn't exist, start with empty config
		cfg = &Config{}
	}

	cfg.LoadFromEnv()
	return cfg, nil
}
