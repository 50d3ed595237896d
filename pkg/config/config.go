// Package config loads floorplan settings from a TOML file.
//
// A config file is optional. Every table and key may be left out; missing
// values keep their defaults, and unknown keys are rejected so typos do not
// go unnoticed:
//
//	[anneal]
//	initial_temperature = 100.0
//	decay = 0.95
//	frozen = 1.0
//	trials = 1000
//	seed = 42
//	metropolis = false
//
//	[anneal.weights]
//	recut = 1.0
//	rotate = 1.0
//	swap_modules = 1.0
//	swap_topology = 2.0
//
//	[render]
//	formats = ["svg", "png"]
//	scale = 20.0
//	labels = true
//
//	[cache]
//	backend = "redis"   # file, redis or none
//
//	[cache.redis]
//	addr = "localhost:6379"
//
//	[log]
//	level = "debug"
//	file = "/var/log/floorplan/floorplan.log"
//
//	[server]
//	addr = ":8080"
//	max_modules = 256
//
// Command-line flags are applied on top of the loaded values.
package config

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/xianaiyang/vlsiFloorplan/pkg/cache"
	fperrors "github.com/xianaiyang/vlsiFloorplan/pkg/errors"
	"github.com/xianaiyang/vlsiFloorplan/pkg/floorplan/anneal"
	"github.com/xianaiyang/vlsiFloorplan/pkg/pipeline"
)

// Cache backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// FileName is the config file looked up in the user config directory.
const FileName = "config.toml"

// Config is the complete file configuration.
type Config struct {
	Anneal Anneal `toml:"anneal"`
	Render Render `toml:"render"`
	Cache  Cache  `toml:"cache"`
	Log    Log    `toml:"log"`
	Server Server `toml:"server"`
}

// Anneal configures the search.
type Anneal struct {
	InitialTemperature float64        `toml:"initial_temperature"`
	Decay              float64        `toml:"decay"`
	Frozen             float64        `toml:"frozen"`
	Trials             int            `toml:"trials"`
	Weights            anneal.Weights `toml:"weights"`
	Seed               uint64         `toml:"seed"`
	Metropolis         bool           `toml:"metropolis"`
}

// Schedule returns the cooling schedule.
func (a Anneal) Schedule() anneal.Schedule {
	return anneal.Schedule{
		InitialTemperature: a.InitialTemperature,
		Decay:              a.Decay,
		Frozen:             a.Frozen,
		Trials:             a.Trials,
		Weights:            a.Weights,
	}
}

// Render configures output artifacts.
type Render struct {
	Formats []string `toml:"formats"`
	Scale   float64  `toml:"scale"`
	Stroke  float64  `toml:"stroke"`
	Labels  bool     `toml:"labels"`
	Initial bool     `toml:"initial"`
}

// Cache selects and configures the cache backend.
type Cache struct {
	Backend string            `toml:"backend"`
	Dir     string            `toml:"dir"`    // File backend directory; empty uses the user cache dir
	Prefix  string            `toml:"prefix"` // Key prefix, useful when several instances share Redis
	Redis   cache.RedisConfig `toml:"redis"`
}

// Log configures logging.
type Log struct {
	Level      string `toml:"level"`
	File       string `toml:"file"` // Rotating log file in addition to stderr
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
}

// Server configures the HTTP API.
type Server struct {
	Addr           string        `toml:"addr"`
	ReadTimeout    time.Duration `toml:"read_timeout"`
	WriteTimeout   time.Duration `toml:"write_timeout"`
	RequestTimeout time.Duration `toml:"request_timeout"` // Upper bound for one optimisation
	MaxModules     int           `toml:"max_modules"`
	MaxBodyBytes   int64         `toml:"max_body_bytes"`
}

// Default returns the built-in configuration.
func Default() *Config {
	s := anneal.DefaultSchedule()
	return &Config{
		Anneal: Anneal{
			InitialTemperature: s.InitialTemperature,
			Decay:              s.Decay,
			Frozen:             s.Frozen,
			Trials:             s.Trials,
			Weights:            s.Weights,
			Seed:               pipeline.DefaultSeed,
		},
		Render: Render{
			Formats: []string{pipeline.FormatSVG},
			Stroke:  pipeline.DefaultStroke,
		},
		Cache: Cache{
			Backend: BackendFile,
			Redis:   cache.RedisConfig{Addr: "localhost:6379", DialTimeout: 5 * time.Second},
		},
		Log: Log{
			Level:      "info",
			MaxSizeMB:  1,
			MaxBackups: 2,
			MaxAgeDays: 30,
		},
		Server: Server{
			Addr:           ":8080",
			ReadTimeout:    10 * time.Second,
			WriteTimeout:   2 * time.Minute,
			RequestTimeout: time.Minute,
			MaxModules:     512,
			MaxBodyBytes:   1 << 20,
		},
	}
}

// Load reads path on top of the defaults. A missing file is a
// FILE_NOT_FOUND error; unknown keys and invalid values are INVALID_CONFIG.
func Load(path string) (*Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, cfg)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fperrors.Wrap(fperrors.ErrCodeFileNotFound, err, "config file %s", path)
	}
	if err != nil {
		return nil, fperrors.Wrap(fperrors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fperrors.New(fperrors.ErrCodeInvalidConfig, "%s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDefault loads the user config file if it exists and returns the
// defaults otherwise.
func LoadDefault() (*Config, error) {
	path, err := DefaultPath()
	if err != nil {
		return Default(), nil
	}
	cfg, err := Load(path)
	if fperrors.Is(err, fperrors.ErrCodeFileNotFound) {
		return Default(), nil
	}
	return cfg, err
}

// DefaultPath returns the config file location under the user config
// directory, e.g. ~/.config/floorplan/config.toml.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "floorplan", FileName), nil
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.Anneal.Schedule().Validate(); err != nil {
		return err
	}
	if err := pipeline.ValidateFormats(c.Render.Formats); err != nil {
		return err
	}
	if c.Render.Scale < 0 || c.Render.Stroke < 0 {
		return fperrors.New(fperrors.ErrCodeInvalidConfig, "render: scale and stroke must not be negative")
	}
	switch c.Cache.Backend {
	case BackendFile, BackendNone:
	case BackendRedis:
		if c.Cache.Redis.Addr == "" {
			return fperrors.New(fperrors.ErrCodeInvalidConfig, "cache: redis backend needs an address")
		}
	default:
		return fperrors.New(fperrors.ErrCodeInvalidConfig, "cache: unknown backend %q (must be file, redis or none)", c.Cache.Backend)
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fperrors.Wrap(fperrors.ErrCodeInvalidConfig, err, "log: level")
	}
	if err := fperrors.ValidateModuleCount(c.Server.MaxModules); err != nil {
		return fperrors.Wrap(fperrors.ErrCodeInvalidConfig, err, "server: max_modules")
	}
	return nil
}

// LogLevel returns the parsed log level, or info if it is invalid.
func (c *Config) LogLevel() log.Level {
	level, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.InfoLevel
	}
	return level
}

// Options returns pipeline options for the configured search and rendering.
func (c *Config) Options() pipeline.Options {
	return pipeline.Options{
		Schedule:   c.Anneal.Schedule(),
		Seed:       pipeline.Seed(c.Anneal.Seed),
		Metropolis: c.Anneal.Metropolis,
		Formats:    append([]string(nil), c.Render.Formats...),
		Scale:      c.Render.Scale,
		Stroke:     c.Render.Stroke,
		Labels:     c.Render.Labels,
		Initial:    c.Render.Initial,
	}
}

// Write encodes c as TOML.
func (c *Config) Write(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}
