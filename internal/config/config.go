// Package config loads voicecmd settings from a YAML file, a .env file and
// VOICECMD_* environment variables, in increasing order of precedence.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/roach88/voicecmd/internal/speech"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "VOICECMD_"

// DefaultAddr is the listen address of "voicecmd serve".
const DefaultAddr = "127.0.0.1:8765"

// Config is the complete voicecmd configuration.
type Config struct {
	// Speech holds the engine settings sent to recognizers.
	Speech speech.Settings `yaml:",inline"`

	// Normalize enables transcript normalization before matching.
	Normalize bool `yaml:"normalize"`

	// Catalog is an optional CUE catalog installed instead of the built-in
	// navigation commands.
	Catalog string `yaml:"catalog"`

	// Addr is the listen address of the relay server.
	Addr string `yaml:"addr"`

	// LogFile enables rotating file logging when set.
	LogFile string `yaml:"log_file"`

	// LogLevel is debug, info, warn or error.
	LogLevel string `yaml:"log_level"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Speech:   speech.DefaultSettings(),
		Addr:     DefaultAddr,
		LogLevel: "info",
	}
}

// Loader reads configuration.
type Loader struct {
	useDotEnv bool
	dotEnv    []string
	lookupEnv func(string) (string, bool)
}

// NewLoader creates a loader that reads .env from the working directory and
// the process environment.
func NewLoader() *Loader {
	return &Loader{
		useDotEnv: true,
		lookupEnv: os.LookupEnv,
	}
}

// WithDotEnv toggles loading variables from .env files before reading config.
// With no files, ".env" in the working directory is used.
func (l *Loader) WithDotEnv(enabled bool, files ...string) *Loader {
	l.useDotEnv = enabled
	l.dotEnv = files
	return l
}

// WithLookupEnv overrides the environment lookup (useful for tests).
func (l *Loader) WithLookupEnv(fn func(string) (string, bool)) *Loader {
	if fn != nil {
		l.lookupEnv = fn
	}
	return l
}

// Load reads path (optional; "" skips the file) and applies environment
// overrides on top of the defaults.
func (l *Loader) Load(path string) (Config, error) {
	cfg := Default()

	if l.useDotEnv {
		// godotenv never overrides variables already set in the environment.
		if err := godotenv.Load(l.dotEnv...); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return cfg, fmt.Errorf("loading .env: %w", err)
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("reading config: %w", err)
		}
		if err := decode(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	if err := l.applyEnv(&cfg); err != nil {
		return cfg, err
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// decode parses YAML strictly: unknown keys are errors.
func decode(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (l *Loader) applyEnv(cfg *Config) error {
	str := func(key string, dst *string) {
		if v, ok := l.lookupEnv(EnvPrefix + key); ok {
			*dst = v
		}
	}
	boolean := func(key string, dst *bool) error {
		v, ok := l.lookupEnv(EnvPrefix + key)
		if !ok {
			return nil
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
		}
		*dst = b
		return nil
	}

	str("LANG", &cfg.Speech.Lang)
	str("CATALOG", &cfg.Catalog)
	str("ADDR", &cfg.Addr)
	str("LOG_FILE", &cfg.LogFile)
	str("LOG_LEVEL", &cfg.LogLevel)

	if err := boolean("CONTINUOUS", &cfg.Speech.Continuous); err != nil {
		return err
	}
	if err := boolean("INTERIM_RESULTS", &cfg.Speech.InterimResults); err != nil {
		return err
	}
	if err := boolean("NORMALIZE", &cfg.Normalize); err != nil {
		return err
	}

	if v, ok := l.lookupEnv(EnvPrefix + "MAX_ALTERNATIVES"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sMAX_ALTERNATIVES: %w", EnvPrefix, err)
		}
		cfg.Speech.MaxAlternatives = n
	}
	return nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Speech.Lang) == "" {
		return errors.New("lang must not be empty")
	}
	if c.Speech.MaxAlternatives < 1 {
		return fmt.Errorf("max_alternatives must be at least 1, got %d", c.Speech.MaxAlternatives)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be one of debug, info, warn, error; got %q", c.LogLevel)
	}
	return nil
}
