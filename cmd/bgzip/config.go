package main

import (
	"fmt"
	"os"

	"github.com/klauspost/compress/flate"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/arloliu/htscodec/bgzf"
)

// Config holds the bgzip settings that can come from a YAML file.
// Command line flags override file values.
type Config struct {
	Level     int    `yaml:"level"`
	Workers   int    `yaml:"workers"`
	BlockSize int    `yaml:"block_size"`
	LogLevel  string `yaml:"log_level"`
}

// DefaultConfig returns the settings used without a config file.
func DefaultConfig() Config {
	return Config{
		Level:     flate.DefaultCompression,
		Workers:   1,
		BlockSize: bgzf.DefaultBlockDataSize,
		LogLevel:  "warn",
	}
}

// LoadConfig reads a YAML config file on top of the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	f, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("decode config %s: %w", path, err)
	}

	return cfg, nil
}

// WriterOptions converts the config into bgzf writer options.
func (c Config) WriterOptions(logger *zap.Logger) []bgzf.WriterOption {
	return []bgzf.WriterOption{
		bgzf.WithCompressionLevel(c.Level),
		bgzf.WithWorkers(c.Workers),
		bgzf.WithBlockDataSize(c.BlockSize),
		bgzf.WithWriterLogger(logger),
	}
}

// NewLogger builds a console logger on stderr at the configured level.
func (c Config) NewLogger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("log_level: %w", err)
	}

	zcfg := zap.NewDevelopmentConfig()
	zcfg.Level = zap.NewAtomicLevelAt(level)
	zcfg.DisableStacktrace = true

	return zcfg.Build()
}
