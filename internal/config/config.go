// Package config provides configuration loading and management for catbus.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete catbus configuration
type Config struct {
	Wallet WalletConfig `yaml:"wallet"`
	Seed   SeedConfig   `yaml:"seed"`
	Log    LogConfig    `yaml:"log"`
	UI     UIConfig     `yaml:"ui"`
	Server ServerConfig `yaml:"server"`
}

// WalletConfig configures the wallet bridge connection
type WalletConfig struct {
	// Endpoint is the JSON-RPC URL of the wallet bridge
	Endpoint string `yaml:"endpoint"`
	// Network is one of Mainnet, Testnet, Signet, Regtest
	Network string `yaml:"network"`
	// Message is shown in the wallet's connect prompt
	Message string `yaml:"message"`
	// Timeout bounds a single wallet call, including the user prompt
	Timeout time.Duration `yaml:"timeout"`
}

// SeedConfig points at the initial proposal list
type SeedConfig struct {
	// Path is a YAML or JSON file; the built-in seed is used when it does not exist
	Path string `yaml:"path"`
}

// LogConfig configures diagnostics
type LogConfig struct {
	// Level is debug, info, warn or error
	Level string `yaml:"level"`
	// File receives log output; empty means stderr (the TUI always uses a file)
	File string `yaml:"file"`
}

// UIConfig configures terminal output
type UIConfig struct {
	// Theme is classic, neon or mono
	Theme string `yaml:"theme"`
	// Color is auto, always or never
	Color string `yaml:"color"`
}

// ServerConfig configures the HTTP API
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

var networks = map[string]bool{"Mainnet": true, "Testnet": true, "Signet": true, "Regtest": true}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Wallet: WalletConfig{
			Endpoint: "http://127.0.0.1:8732/rpc",
			Network:  "Mainnet",
			Message:  "Connect to anarcho-catbus to launch your runes!",
			Timeout:  2 * time.Minute,
		},
		Seed: SeedConfig{
			Path: "proposals.yaml",
		},
		Log: LogConfig{
			Level: "info",
		},
		UI: UIConfig{
			Theme: "classic",
			Color: "auto",
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:8080",
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.Wallet.Endpoint == "" {
		return fmt.Errorf("wallet.endpoint is required")
	}
	if !networks[c.Wallet.Network] {
		return fmt.Errorf("wallet.network must be one of Mainnet, Testnet, Signet, Regtest; got %q", c.Wallet.Network)
	}
	if c.Wallet.Timeout <= 0 {
		return fmt.Errorf("wallet.timeout must be positive")
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be debug, info, warn or error; got %q", c.Log.Level)
	}
	switch strings.ToLower(c.UI.Theme) {
	case "classic", "neon", "mono":
	default:
		return fmt.Errorf("ui.theme must be classic, neon or mono; got %q", c.UI.Theme)
	}
	switch strings.ToLower(c.UI.Color) {
	case "auto", "always", "never":
	default:
		return fmt.Errorf("ui.color must be auto, always or never; got %q", c.UI.Color)
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := &Config{}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// Merge merges another config into this one (other takes precedence for non-zero values)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	// Wallet
	if other.Wallet.Endpoint != "" {
		c.Wallet.Endpoint = other.Wallet.Endpoint
	}
	if other.Wallet.Network != "" {
		c.Wallet.Network = other.Wallet.Network
	}
	if other.Wallet.Message != "" {
		c.Wallet.Message = other.Wallet.Message
	}
	if other.Wallet.Timeout != 0 {
		c.Wallet.Timeout = other.Wallet.Timeout
	}

	// Seed
	if other.Seed.Path != "" {
		c.Seed.Path = other.Seed.Path
	}

	// Log
	if other.Log.Level != "" {
		c.Log.Level = other.Log.Level
	}
	if other.Log.File != "" {
		c.Log.File = other.Log.File
	}

	// UI
	if other.UI.Theme != "" {
		c.UI.Theme = other.UI.Theme
	}
	if other.UI.Color != "" {
		c.UI.Color = other.UI.Color
	}

	// Server
	if other.Server.Addr != "" {
		c.Server.Addr = other.Server.Addr
	}
}
