// Package config provides configuration management for the gateway.
// Configuration is loaded from a YAML file with environment variable
// substitution; command-line flags in cmd/gateway override the logging
// settings.
package config

import (
	"fmt"
	"time"
)

// Config holds all configuration settings for the gateway.
type Config struct {
	// Server settings
	HTTPPort int    `json:"httpPort" yaml:"httpPort"`
	Address  string `json:"address" yaml:"address"`

	// Server timeouts
	ReadTimeout     time.Duration `json:"readTimeout" yaml:"readTimeout"`
	WriteTimeout    time.Duration `json:"writeTimeout" yaml:"writeTimeout"`
	IdleTimeout     time.Duration `json:"idleTimeout" yaml:"idleTimeout"`
	ShutdownTimeout time.Duration `json:"shutdownTimeout" yaml:"shutdownTimeout"`

	// MaxRequestBodySize is the maximum allowed request body size in
	// bytes. Set to 0 to disable the limit.
	MaxRequestBodySize int64 `json:"maxRequestBodySize" yaml:"maxRequestBodySize"`

	// Upstream forwarding settings. UpstreamDialTimeout bounds
	// connection establishment and request write; response body reads
	// are unbounded to support streaming downloads.
	UpstreamDialTimeout time.Duration `json:"upstreamDialTimeout" yaml:"upstreamDialTimeout"`

	// Registry settings
	DefaultNamespace string `json:"defaultNamespace" yaml:"defaultNamespace"`

	// Secrets provider settings
	SecretsProvider  string `json:"secretsProvider" yaml:"secretsProvider"` // kubernetes, vault, env
	SecretsEnvPrefix string `json:"secretsEnvPrefix" yaml:"secretsEnvPrefix"`

	// Vault settings (used when secretsProvider is "vault")
	VaultAddress    string        `json:"vaultAddress" yaml:"vaultAddress"`
	VaultToken      string        `json:"vaultToken" yaml:"vaultToken"`
	VaultMountPath  string        `json:"vaultMountPath" yaml:"vaultMountPath"`
	VaultNamespace  string        `json:"vaultNamespace" yaml:"vaultNamespace"`
	VaultTimeout    time.Duration `json:"vaultTimeout" yaml:"vaultTimeout"`
	VaultMaxRetries int           `json:"vaultMaxRetries" yaml:"vaultMaxRetries"`

	// Observability - logging
	LogLevel         string `json:"logLevel" yaml:"logLevel"`
	LogFormat        string `json:"logFormat" yaml:"logFormat"`
	LogOutput        string `json:"logOutput" yaml:"logOutput"`
	AccessLogEnabled bool   `json:"accessLogEnabled" yaml:"accessLogEnabled"`

	// Observability - metrics
	MetricsEnabled bool   `json:"metricsEnabled" yaml:"metricsEnabled"`
	MetricsPath    string `json:"metricsPath" yaml:"metricsPath"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		HTTPPort:            8080,
		ReadTimeout:         30 * time.Second,
		WriteTimeout:        0, // unbounded, proxied responses may stream
		IdleTimeout:         120 * time.Second,
		ShutdownTimeout:     15 * time.Second,
		MaxRequestBodySize:  10 << 20,
		UpstreamDialTimeout: 10 * time.Second,
		DefaultNamespace:    "default",
		SecretsProvider:     "kubernetes",
		SecretsEnvPrefix:    "AGENTGW_SECRET_",
		VaultMountPath:      "secret",
		VaultTimeout:        10 * time.Second,
		VaultMaxRetries:     2,
		LogLevel:            "info",
		LogFormat:           "json",
		LogOutput:           "stdout",
		AccessLogEnabled:    true,
		MetricsEnabled:      true,
		MetricsPath:         "/metrics",
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid httpPort %d: must be between 1 and 65535", c.HTTPPort)
	}

	if c.UpstreamDialTimeout <= 0 {
		return fmt.Errorf("invalid upstreamDialTimeout %v: must be positive", c.UpstreamDialTimeout)
	}

	switch c.SecretsProvider {
	case "kubernetes", "env":
	case "vault":
		if c.VaultAddress == "" {
			return fmt.Errorf("vaultAddress is required when secretsProvider is vault")
		}
	default:
		return fmt.Errorf("invalid secretsProvider %q: must be one of: kubernetes, vault, env", c.SecretsProvider)
	}

	switch c.LogFormat {
	case "", "json", "console":
	default:
		return fmt.Errorf("invalid logFormat %q: must be json or console", c.LogFormat)
	}

	return nil
}
