// Package config handles parcelgen.toml project configuration.
package config

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/wippyai/parcelgen/codec"
	"github.com/wippyai/parcelgen/errors"
)

// FileName is the configuration file looked up by FindAndLoad.
const FileName = "parcelgen.toml"

// Config represents a parcelgen.toml file.
type Config struct {
	Generate        Generate       `toml:"generate"`
	Implementations codec.Defaults `toml:"implementations"`
	Log             Log            `toml:"log"`

	// Dir is the directory containing the file (set at load time).
	Dir string `toml:"-"`
}

// Generate configures generation and output.
type Generate struct {
	// Package is the import path of the generated file.
	Package string `toml:"package"`
	// Name is the package clause of the generated file.
	Name   string `toml:"name"`
	Output string `toml:"output"`
	// Parallelism bounds concurrent aggregates; 0 means GOMAXPROCS.
	Parallelism int  `toml:"parallelism"`
	Models      bool `toml:"models"`
}

// Log configures the CLI logger.
type Log struct {
	Level       string `toml:"level"`
	Development bool   `toml:"development"`
}

// Default returns the configuration used when no file is found.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

func (c *Config) applyDefaults() {
	c.Implementations = c.Implementations.WithFallback()
	if c.Generate.Parallelism == 0 {
		c.Generate.Parallelism = runtime.GOMAXPROCS(0)
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Load parses parcelgen.toml from dir.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, FileName))
}

// LoadFile parses the file at path, applies defaults and validates it.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New(errors.PhaseConfig, errors.KindNotFound).
			Detail("cannot read %s", path).
			Cause(err).
			Build()
	}

	var c Config
	if _, err := toml.Decode(string(data), &c); err != nil {
		return nil, errors.New(errors.PhaseConfig, errors.KindInvalidInput).
			Detail("parse error in %s", path).
			Cause(err).
			Build()
	}

	c.Dir, err = filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, errors.New(errors.PhaseConfig, errors.KindInvalidInput).
			Detail("cannot resolve path %s", path).
			Cause(err).
			Build()
	}

	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// FindAndLoad walks up from startDir to find a parcelgen.toml file, then
// loads it. Returns nil if no file is found.
func FindAndLoad(startDir string) (*Config, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, FileName)); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, nil
		}
		dir = parent
	}
}

// Validate checks implementation names, parallelism and the log level.
func (c *Config) Validate() error {
	if err := c.Implementations.Validate(); err != nil {
		return err
	}
	if c.Generate.Parallelism < 0 {
		return errors.New(errors.PhaseConfig, errors.KindInvalidInput).
			Path("generate", "parallelism").
			Value(c.Generate.Parallelism).
			Detail("parallelism must not be negative").
			Build()
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return errors.New(errors.PhaseConfig, errors.KindInvalidInput).
			Path("log", "level").
			Value(c.Log.Level).
			Cause(err).
			Build()
	}
	return nil
}

// Logger builds a zap logger at the configured level.
func (c *Config) Logger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.Log.Level)
	if err != nil {
		return nil, err
	}
	zc := zap.NewProductionConfig()
	if c.Log.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}

// OutputPath resolves Generate.Output against Dir.
func (c *Config) OutputPath() string {
	if c.Generate.Output == "" || filepath.IsAbs(c.Generate.Output) || c.Dir == "" {
		return c.Generate.Output
	}
	return filepath.Join(c.Dir, c.Generate.Output)
}
