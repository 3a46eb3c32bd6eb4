// Package logging builds the diagnostic zap logger. The TUI owns the terminal,
// so logs go to a file unless the caller asks for stderr as well.
package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/idilsaglam/campusfinder/internal/config"
)

type Options struct {
	// Path of the log file; empty disables file output.
	Path string
	// Level overrides cfg.Level when non-empty.
	Level string
	// Stderr also writes human-readable logs to stderr.
	Stderr bool
}

// New returns a production JSON logger. With no outputs at all it returns a
// no-op logger.
func New(cfg config.LoggingConfig, opt Options) (*zap.Logger, error) {
	levelName := cfg.Level
	if opt.Level != "" {
		levelName = opt.Level
	}
	level := zapcore.InfoLevel
	if levelName != "" {
		l, err := zapcore.ParseLevel(levelName)
		if err != nil {
			return nil, fmt.Errorf("log level: %w", err)
		}
		level = l
	}

	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.OutputPaths = nil
	zc.ErrorOutputPaths = nil
	if opt.Path != "" {
		if err := os.MkdirAll(filepath.Dir(opt.Path), 0o700); err != nil {
			return nil, fmt.Errorf("log dir: %w", err)
		}
		zc.OutputPaths = append(zc.OutputPaths, opt.Path)
		zc.ErrorOutputPaths = append(zc.ErrorOutputPaths, opt.Path)
	}
	if opt.Stderr {
		zc.OutputPaths = append(zc.OutputPaths, "stderr")
		zc.ErrorOutputPaths = append(zc.ErrorOutputPaths, "stderr")
	}
	if len(zc.OutputPaths) == 0 {
		return zap.NewNop(), nil
	}
	log, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return log.Named("campusfinder"), nil
}
