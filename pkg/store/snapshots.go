package store

import (
	"context"
	"slices"
	"sync"

	"github.com/getmockd/faque/pkg/route"
)

// RouteSnapshots persists the whole route table as one unit.
type RouteSnapshots interface {
	// LoadRoutes returns the last saved snapshot.
	// It returns ErrNotFound if nothing has been saved yet.
	LoadRoutes(ctx context.Context) ([]route.Route, error)

	// SaveRoutes replaces the saved snapshot with routes.
	SaveRoutes(ctx context.Context, routes []route.Route) error
}

// MemorySnapshots keeps the snapshot in memory. It is used when persistence is
// disabled and in tests.
type MemorySnapshots struct {
	mu     sync.Mutex
	routes []route.Route
	saved  bool
	saves  int
}

// NewMemorySnapshots creates an empty MemorySnapshots.
func NewMemorySnapshots() *MemorySnapshots {
	return &MemorySnapshots{}
}

// LoadRoutes returns a copy of the saved snapshot.
func (m *MemorySnapshots) LoadRoutes(ctx context.Context) ([]route.Route, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.saved {
		return nil, ErrNotFound
	}
	return slices.Clone(m.routes), nil
}

// SaveRoutes stores a copy of routes.
func (m *MemorySnapshots) SaveRoutes(ctx context.Context, routes []route.Route) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.routes = slices.Clone(routes)
	m.saved = true
	m.saves++
	return nil
}

// Saves returns how many times SaveRoutes succeeded.
func (m *MemorySnapshots) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}
