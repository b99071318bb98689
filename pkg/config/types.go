package config

import (
	"time"

	"github.com/getmockd/faque/pkg/engine"
	"github.com/getmockd/faque/pkg/history"
	"github.com/getmockd/faque/pkg/persist"
	"github.com/getmockd/faque/pkg/requestlog"
	"github.com/getmockd/faque/pkg/store"
)

// Config is the complete server configuration.
type Config struct {
	// Listen is the TCP address the server binds.
	Listen string `yaml:"listen"`

	// DataDir is where route snapshots and request history are kept.
	// Empty disables persistence.
	DataDir string `yaml:"dataDir"`

	// MaxRequestHistory is how many captured requests are kept.
	MaxRequestHistory int `yaml:"maxRequestHistory"`

	// MaxBodySize is how many body bytes are kept per captured request.
	MaxBodySize int `yaml:"maxBodySize"`

	// MaxRequestBodySize is how many body bytes the server reads per request.
	// Longer bodies are answered with 413.
	MaxRequestBodySize int64 `yaml:"maxRequestBodySize"`

	// MaxRoutes bounds the route table. Zero means unbounded.
	MaxRoutes int `yaml:"maxRoutes"`

	// SaveInterval is how often pending route changes are written.
	SaveInterval time.Duration `yaml:"saveInterval"`

	// CleanupInterval is how often the request history store is pruned.
	CleanupInterval time.Duration `yaml:"cleanupInterval"`

	ReadTimeout  time.Duration `yaml:"readTimeout"`
	WriteTimeout time.Duration `yaml:"writeTimeout"`

	// RouteFiles are glob patterns of YAML route files used to seed an empty table.
	RouteFiles []string `yaml:"routeFiles,omitempty"`

	Log LogConfig `yaml:"log"`

	// baseDir resolves relative RouteFiles; it is the config file's directory.
	baseDir string
}

// LogConfig selects the operational log output.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Listen:             ":8080",
		DataDir:            store.DefaultDataDir,
		MaxRequestHistory:  requestlog.DefaultMaxHistory,
		MaxBodySize:        requestlog.DefaultMaxBodySize,
		MaxRequestBodySize: engine.MaxRequestBodySize,
		SaveInterval:       persist.DefaultInterval,
		CleanupInterval:    history.DefaultCleanupInterval,
		ReadTimeout:        engine.DefaultReadTimeout,
		WriteTimeout:       engine.DefaultWriteTimeout,
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// BaseDir returns the directory relative route file patterns are resolved against.
func (c *Config) BaseDir() string {
	if c.baseDir == "" {
		return "."
	}
	return c.baseDir
}

// Store returns the storage configuration.
func (c *Config) Store() store.Config {
	return store.Config{DataDir: c.DataDir}
}
