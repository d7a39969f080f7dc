// Package config loads the onionfetch CLI configuration from a YAML file,
// an optional .env file and ONIONFETCH_* environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override
const EnvPrefix = "ONIONFETCH_"

// Config is the CLI configuration.
type Config struct {
	Prefix    string            `yaml:"prefix"`
	Suffix    string            `yaml:"suffix"`
	Timeout   Duration          `yaml:"timeout"`
	Headers   map[string]string `yaml:"headers"`
	Cache     CacheConfig       `yaml:"cache"`
	RateLimit RateLimitConfig   `yaml:"rate_limit"`
	Logging   LoggingConfig     `yaml:"logging"`
}

// CacheConfig selects and sizes the response cache.
type CacheConfig struct {
	Enabled    bool      `yaml:"enabled"`
	TTL        Duration  `yaml:"ttl"`
	MaxEntries int       `yaml:"max_entries"`
	Driver     string    `yaml:"driver"` // map | ristretto
	MaxBytes   SizeBytes `yaml:"max_bytes"`
	Compressor string    `yaml:"compressor"` // none | gzip | snappy
}

// RateLimitConfig bounds outgoing requests. Zero RPS disables it.
type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Default returns the configuration used when no file is given
func Default() Config {
	return Config{
		Timeout: Duration(30 * time.Second),
		Cache: CacheConfig{
			Driver:     "map",
			MaxEntries: 100,
			MaxBytes:   SizeBytes(64 << 20),
			Compressor: "none",
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load reads the YAML file at path over the defaults, then applies
// environment overrides. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// LoadEnvFiles loads .env style files into the process environment.
// Missing files are ignored, variables already set are kept.
func LoadEnvFiles(files ...string) {
	for _, f := range files {
		if f == "" {
			continue
		}
		_ = godotenv.Load(f)
	}
}

func applyEnv(cfg *Config) error {
	if v, ok := lookup("PREFIX"); ok {
		cfg.Prefix = v
	}
	if v, ok := lookup("SUFFIX"); ok {
		cfg.Suffix = v
	}
	if v, ok := lookup("TIMEOUT"); ok {
		d, err := parseDuration(v)
		if err != nil {
			return fmt.Errorf("%sTIMEOUT: %w", EnvPrefix, err)
		}
		cfg.Timeout = d
	}
	if v, ok := lookup("CACHE"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sCACHE: %w", EnvPrefix, err)
		}
		cfg.Cache.Enabled = b
	}
	if v, ok := lookup("CACHE_TTL"); ok {
		d, err := parseDuration(v)
		if err != nil {
			return fmt.Errorf("%sCACHE_TTL: %w", EnvPrefix, err)
		}
		cfg.Cache.TTL = d
	}
	if v, ok := lookup("CACHE_DRIVER"); ok {
		cfg.Cache.Driver = v
	}
	if v, ok := lookup("RATE_LIMIT_RPS"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%sRATE_LIMIT_RPS: %w", EnvPrefix, err)
		}
		cfg.RateLimit.RPS = f
	}
	if v, ok := lookup("LOG_LEVEL"); ok {
		cfg.Logging.Level = v
	}
	return nil
}

func lookup(name string) (string, bool) {
	v, ok := os.LookupEnv(EnvPrefix + name)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

// Validate rejects unknown drivers and compressors and negative limits
func (c Config) Validate() error {
	switch strings.ToLower(c.Cache.Driver) {
	case "", "map", "ristretto":
	default:
		return fmt.Errorf("unknown cache driver %q", c.Cache.Driver)
	}
	switch strings.ToLower(c.Cache.Compressor) {
	case "", "none", "gzip", "snappy":
	default:
		return fmt.Errorf("unknown cache compressor %q", c.Cache.Compressor)
	}
	if c.Timeout < 0 || c.Cache.TTL < 0 {
		return fmt.Errorf("durations must not be negative")
	}
	if c.Cache.MaxEntries < 0 || c.RateLimit.RPS < 0 || c.RateLimit.Burst < 0 {
		return fmt.Errorf("limits must not be negative")
	}
	return nil
}

// SizeBytes represents a number of bytes, unmarshaled from human-friendly strings like "64MB" or plain integers.
type SizeBytes int64

func (s *SizeBytes) UnmarshalYAML(node *yaml.Node) error {
	raw := strings.TrimSpace(node.Value)
	if raw == "" {
		*s = 0
		return nil
	}
	if v, err := humanize.ParseBytes(raw); err == nil {
		*s = SizeBytes(v)
		return nil
	}
	return fmt.Errorf("invalid size value: %q", node.Value)
}

func (s SizeBytes) Int64() int64 { return int64(s) }

// Duration is a time.Duration parsed from strings like "100ms" or plain numbers (seconds).
type Duration time.Duration

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	v, err := parseDuration(node.Value)
	if err != nil {
		return err
	}
	*d = v
	return nil
}

func (d Duration) Duration() time.Duration { return time.Duration(d) }

func parseDuration(raw string) (Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	if td, err := time.ParseDuration(raw); err == nil {
		return Duration(td), nil
	}
	// allow numeric seconds
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return Duration(time.Duration(f * float64(time.Second))), nil
	}
	return 0, fmt.Errorf("invalid duration value: %q", raw)
}
