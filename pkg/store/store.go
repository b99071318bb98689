// Package store provides the durable storage boundary for faque.
//
// Two kinds of data survive a restart:
//   - Route snapshots: the full route table, written by the persistence
//     coalescer (see RouteSnapshots).
//   - Request history: recorded requests, written one at a time by the
//     history writer (see package bolt).
//
// Directory layout under Config.DataDir:
//
//	config/routes.json     route snapshot
//	history/requests.db    request history
//
// An empty DataDir disables persistence; callers then use MemorySnapshots and
// skip the history store.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Common errors
var (
	ErrNotFound = errors.New("not found")
	ErrClosed   = errors.New("store is closed")
)

// Directory and file names under the data directory.
const (
	ConfigDirName   = "config"
	HistoryDirName  = "history"
	RoutesFileName  = "routes.json"
	HistoryFileName = "requests.db"
	DefaultDataDir  = "./data"
	dirPerm         = 0o700
)

// Config holds store configuration.
type Config struct {
	// DataDir is the base directory for persisted data.
	// Empty disables persistence.
	DataDir string `json:"dataDir,omitempty" yaml:"dataDir,omitempty"`
}

// DefaultConfig returns the default store configuration.
func DefaultConfig() Config {
	return Config{DataDir: DefaultDataDir}
}

// Enabled reports whether anything is persisted.
func (c Config) Enabled() bool {
	return c.DataDir != ""
}

// RoutesPath returns the route snapshot file path.
func (c Config) RoutesPath() string {
	return filepath.Join(c.DataDir, ConfigDirName, RoutesFileName)
}

// HistoryPath returns the request history database path.
func (c Config) HistoryPath() string {
	return filepath.Join(c.DataDir, HistoryDirName, HistoryFileName)
}

// EnsureDir creates the parent directory of path with owner-only permissions.
func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}
