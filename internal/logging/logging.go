// Package logging builds the zap logger shared by every catbus component.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/idilsaglam/catbus/internal/config"
)

// DefaultTUILogFile is used when the TUI runs without log.file configured.
func DefaultTUILogFile() string {
	return filepath.Join(os.TempDir(), "catbus.log")
}

// New builds a console-encoded logger writing to cfg.File, or stderr when it is empty.
func New(cfg config.LogConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}

	out := "stderr"
	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
			return nil, fmt.Errorf("log dir: %w", err)
		}
		out = cfg.File
	}

	zc := zap.NewDevelopmentConfig()
	zc.Development = false
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zc.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	zc.OutputPaths = []string{out}
	zc.ErrorOutputPaths = []string{out}
	zc.DisableStacktrace = true

	l, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return l.Named("catbus"), nil
}
