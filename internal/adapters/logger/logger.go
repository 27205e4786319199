package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type option func(*zap.Config)

func OutputPath(path string) option {
	return func(cfg *zap.Config) {
		if path != "" {
			cfg.OutputPaths = append(cfg.OutputPaths, path)
		}
	}
}

func New(level string, options ...option) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("failed parse log level `%s`: %w", level, err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	for _, opt := range options {
		opt(&cfg)
	}

	log, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed build logger: %w", err)
	}

	return log, nil
}
