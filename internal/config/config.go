// Package config loads service configuration from TOML files, merging
// file values over built-in defaults.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/adityaaj2003/tunegan/pkg/errors"
	"github.com/adityaaj2003/tunegan/pkg/synth"
)

// Cache backend names accepted in [cache].backend.
const (
	CacheBackendFile  = "file"
	CacheBackendRedis = "redis"
	CacheBackendNone  = "none"
)

// Store backend names accepted in [store].backend.
const (
	StoreBackendMemory = "memory"
	StoreBackendMongo  = "mongo"
)

// Config is the full service configuration.
type Config struct {
	Server     ServerConfig     `toml:"server"`
	Cache      CacheConfig      `toml:"cache"`
	Store      StoreConfig      `toml:"store"`
	Generation GenerationConfig `toml:"generation"`
}

// ServerConfig configures the HTTP API server. Timeouts are in seconds.
type ServerConfig struct {
	Addr            string `toml:"addr"`
	AudioDir        string `toml:"audio_dir"`
	ShutdownTimeout int    `toml:"shutdown_timeout"`
	RequestTimeout  int    `toml:"request_timeout"`

	// GenerateRPM caps generation requests per client per minute.
	// 0 disables the limit.
	GenerateRPM int `toml:"generate_rpm"`
}

// ShutdownWait returns the shutdown timeout as a duration.
func (s *ServerConfig) ShutdownWait() time.Duration {
	return time.Duration(s.ShutdownTimeout) * time.Second
}

// RequestWait returns the per-request timeout as a duration.
func (s *ServerConfig) RequestWait() time.Duration {
	return time.Duration(s.RequestTimeout) * time.Second
}

// CacheConfig selects and configures the cache backend.
type CacheConfig struct {
	Backend   string `toml:"backend"` // file, redis, or none
	Dir       string `toml:"dir"`     // file backend
	RedisAddr string `toml:"redis_addr"`
	RedisDB   int    `toml:"redis_db"`
}

// StoreConfig selects and configures the track store backend.
type StoreConfig struct {
	Backend  string `toml:"backend"` // memory or mongo
	MongoURI string `toml:"mongo_uri"`
	Database string `toml:"database"`
}

// GenerationConfig sets default generation parameters. Per-request values
// override these.
type GenerationConfig struct {
	Duration   int `toml:"duration"`    // seconds
	SampleRate int `toml:"sample_rate"` // Hz
	TopK       int `toml:"top_k"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":8080",
			AudioDir:        "audio_output",
			ShutdownTimeout: 10,
			RequestTimeout:  60,
			GenerateRPM:     30,
		},
		Cache: CacheConfig{
			Backend:   CacheBackendFile,
			RedisAddr: "localhost:6379",
		},
		Store: StoreConfig{
			Backend:  StoreBackendMemory,
			Database: "tunegan",
		},
		Generation: GenerationConfig{
			Duration:   synth.DefaultDuration,
			SampleRate: synth.DefaultSampleRate,
			TopK:       synth.DefaultTopK,
		},
	}
}

// Load reads a TOML config file and merges it over the defaults.
// An empty path returns the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks backend names and value ranges.
func (c *Config) Validate() error {
	switch c.Cache.Backend {
	case CacheBackendFile, CacheBackendRedis, CacheBackendNone:
	default:
		return errors.New(errors.ErrCodeInvalidConfig,
			"unknown cache backend %q (must be file, redis, or none)", c.Cache.Backend)
	}

	switch c.Store.Backend {
	case StoreBackendMemory, StoreBackendMongo:
	default:
		return errors.New(errors.ErrCodeInvalidConfig,
			"unknown store backend %q (must be memory or mongo)", c.Store.Backend)
	}
	if c.Store.Backend == StoreBackendMongo && strings.TrimSpace(c.Store.MongoURI) == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "mongo store requires mongo_uri")
	}

	if strings.TrimSpace(c.Server.Addr) == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "server addr must not be empty")
	}
	if c.Server.GenerateRPM < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "generate_rpm must not be negative")
	}

	if d := c.Generation.Duration; d < synth.MinDuration || d > synth.MaxDuration {
		return errors.New(errors.ErrCodeInvalidConfig,
			"generation duration %d out of range [%d,%d]", d, synth.MinDuration, synth.MaxDuration)
	}

	return nil
}

// String renders the config for debug logging, with backend details elided
// to a summary line.
func (c *Config) String() string {
	return fmt.Sprintf("addr=%s cache=%s store=%s duration=%ds rate=%d",
		c.Server.Addr, c.Cache.Backend, c.Store.Backend,
		c.Generation.Duration, c.Generation.SampleRate)
}
