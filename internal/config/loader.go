package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

const (
	// ProjectConfigFile is the name of the project-level config file
	ProjectConfigFile = "catbus.yaml"
	// UserConfigDir is the directory for user-level config
	UserConfigDir = ".config/catbus"
	// UserConfigFile is the name of the user-level config file
	UserConfigFile = "config.yaml"
)

// Environment overrides, applied last.
const (
	EnvWalletEndpoint = "CATBUS_WALLET_ENDPOINT"
	EnvNetwork        = "CATBUS_NETWORK"
	EnvLogLevel       = "CATBUS_LOG_LEVEL"
)

// Loader handles configuration loading with layered precedence
type Loader struct {
	logger *zap.Logger
	getenv func(string) string
	// home and cwd are resolved lazily; tests pin them.
	home, cwd string
}

// NewLoader creates a new configuration loader
func NewLoader(logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{logger: logger, getenv: os.Getenv}
}

// Load loads configuration with layered precedence:
// 1. Default config
// 2. User config (~/.config/catbus/config.yaml)
// 3. Project config (catbus.yaml in current or parent directories)
// 4. explicitPath, if not empty (must exist)
// 5. Environment variables
//
// A config file that exists but cannot be read or parsed is an error.
func (l *Loader) Load(explicitPath string) (*Config, error) {
	config := DefaultConfig()

	if userConfigPath := l.userConfigPath(); userConfigPath != "" {
		if userConfig, err := LoadFromFile(userConfigPath); err == nil {
			l.logger.Debug("loaded user config", zap.String("path", userConfigPath))
			config.Merge(userConfig)
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("user config %s: %w", userConfigPath, err)
		}
	}

	if projectConfigPath := l.findProjectConfig(); projectConfigPath != "" {
		if projectConfig, err := LoadFromFile(projectConfigPath); err == nil {
			l.logger.Debug("loaded project config", zap.String("path", projectConfigPath))
			config.Merge(projectConfig)
		} else {
			return nil, fmt.Errorf("project config %s: %w", projectConfigPath, err)
		}
	} else {
		l.logger.Debug("no project config found")
	}

	if explicitPath != "" {
		explicit, err := LoadFromFile(explicitPath)
		if err != nil {
			return nil, fmt.Errorf("config %s: %w", explicitPath, err)
		}
		l.logger.Debug("loaded explicit config", zap.String("path", explicitPath))
		config.Merge(explicit)
	}

	config.Merge(l.fromEnv())

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (l *Loader) fromEnv() *Config {
	c := &Config{}
	c.Wallet.Endpoint = l.getenv(EnvWalletEndpoint)
	c.Wallet.Network = l.getenv(EnvNetwork)
	c.Log.Level = l.getenv(EnvLogLevel)
	return c
}

// userConfigPath returns the path to the user config file
func (l *Loader) userConfigPath() string {
	home := l.home
	if home == "" {
		h, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		home = h
	}
	return filepath.Join(home, UserConfigDir, UserConfigFile)
}

// findProjectConfig searches for catbus.yaml in current and parent directories
func (l *Loader) findProjectConfig() string {
	dir := l.cwd
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return ""
		}
		dir = cwd
	}

	for {
		configPath := filepath.Join(dir, ProjectConfigFile)
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}
