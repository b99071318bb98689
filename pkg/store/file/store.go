// Package file provides a JSON file implementation of store.RouteSnapshots.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/getmockd/faque/pkg/logging"
	"github.com/getmockd/faque/pkg/route"
	"github.com/getmockd/faque/pkg/store"
)

// Current data format version for migration support
const dataVersion = 1

// snapshotData is the on-disk document.
type snapshotData struct {
	Version int           `json:"version"`
	SavedAt int64         `json:"savedAt,omitempty"`
	Routes  []route.Route `json:"routes"`
}

// SnapshotStore saves the route table to a single JSON file.
// Writes go to a temporary file which is then renamed over the target, so a
// crash mid-write leaves the previous snapshot intact.
type SnapshotStore struct {
	path string
	mu   sync.Mutex
	log  *slog.Logger
}

var _ store.RouteSnapshots = (*SnapshotStore)(nil)

// New creates a SnapshotStore writing to cfg.RoutesPath().
func New(cfg store.Config, log *slog.Logger) *SnapshotStore {
	return NewAt(cfg.RoutesPath(), log)
}

// NewAt creates a SnapshotStore writing to path.
func NewAt(path string, log *slog.Logger) *SnapshotStore {
	if log == nil {
		log = logging.Nop()
	}
	return &SnapshotStore{
		path: path,
		log:  log,
	}
}

// Path returns the snapshot file path.
func (s *SnapshotStore) Path() string {
	return s.path
}

// LoadRoutes reads the snapshot file.
func (s *SnapshotStore) LoadRoutes(ctx context.Context) ([]route.Route, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	var stored snapshotData
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot %s: %w", s.path, err)
	}
	if stored.Version > dataVersion {
		return nil, fmt.Errorf("snapshot %s has unsupported version %d", s.path, stored.Version)
	}

	s.log.Debug("route snapshot loaded", "path", s.path, "routes", len(stored.Routes))
	return stored.Routes, nil
}

// SaveRoutes writes routes with an atomic rename.
func (s *SnapshotStore) SaveRoutes(ctx context.Context, routes []route.Route) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if routes == nil {
		routes = []route.Route{}
	}

	data, err := json.MarshalIndent(snapshotData{
		Version: dataVersion,
		SavedAt: time.Now().Unix(),
		Routes:  routes,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := store.EnsureDir(s.path); err != nil {
		return err
	}

	// Atomic write: write to temp file, then rename
	tmpFile := s.path + ".tmp"
	if err := os.WriteFile(tmpFile, data, 0600); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := os.Rename(tmpFile, s.path); err != nil {
		_ = os.Remove(tmpFile) // Clean up temp file on failure
		return fmt.Errorf("failed to replace snapshot: %w", err)
	}
	return nil
}
