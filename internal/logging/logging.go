// Package logging builds the zap loggers used by the commands.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const DefaultLevel = "info"

// ParseLevel accepts zap level names (debug, info, warn, error).
// An empty string is the default level.
func ParseLevel(level string) (zapcore.Level, error) {
	if level == "" {
		level = DefaultLevel
	}
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return l, fmt.Errorf("logging: invalid level %q", level)
	}
	return l, nil
}

// Config returns the zap configuration for level and file. With no file
// the logger writes human-readable lines to stderr, otherwise JSON lines
// are appended to the file.
func Config(level, file string) (zap.Config, error) {
	l, err := ParseLevel(level)
	if err != nil {
		return zap.Config{}, err
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(l)
	cfg.Sampling = nil
	cfg.DisableStacktrace = true
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	if file == "" {
		cfg.Encoding = "console"
		cfg.EncoderConfig = zap.NewDevelopmentEncoderConfig()
		cfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
		cfg.OutputPaths = []string{"stderr"}
	} else {
		cfg.OutputPaths = []string{file}
	}
	cfg.ErrorOutputPaths = cfg.OutputPaths
	return cfg, nil
}

func New(level, file string) (*zap.Logger, error) {
	cfg, err := Config(level, file)
	if err != nil {
		return nil, err
	}
	log, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("logging: %w", err)
	}
	return log, nil
}

// ForTerminalUI is New for programs that own the terminal: without a log
// file nothing is logged.
func ForTerminalUI(level, file string) (*zap.Logger, error) {
	if file == "" {
		if _, err := ParseLevel(level); err != nil {
			return nil, err
		}
		return zap.NewNop(), nil
	}
	return New(level, file)
}
