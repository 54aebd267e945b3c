package config

import (
	"time"

	"go.uber.org/zap/zapcore"
)

type Option func(*Config)

func WithLogLevel(level zapcore.Level) Option {
	return func(cfg *Config) {
		cfg.Log.LogLevel = level
	}
}

func WithLogSink(path string) Option {
	return func(cfg *Config) {
		cfg.Log.Sink = path
	}
}

func WithWriteTimeout(d time.Duration) Option {
	return func(cfg *Config) {
		cfg.Server.WriteTimeout = d
	}
}

// WithStorage overrides the storage driver and, when non-empty, its path.
func WithStorage(driver, path string) Option {
	return func(cfg *Config) {
		if driver != "" {
			cfg.Storage.Driver = driver
		}
		if path != "" {
			cfg.Storage.Path = path
		}
	}
}

func WithLibraryName(name string) Option {
	return func(cfg *Config) {
		if name != "" {
			cfg.LibraryName = name
		}
	}
}

func WithPort(port string) Option {
	return func(cfg *Config) {
		if port != "" {
			cfg.Server.Port = port
		}
	}
}
