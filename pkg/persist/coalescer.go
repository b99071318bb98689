package persist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cappuccinotm/slogx"

	"github.com/getmockd/faque/pkg/logging"
	"github.com/getmockd/faque/pkg/route"
	"github.com/getmockd/faque/pkg/store"
)

// Defaults for a Coalescer.
const (
	DefaultInterval     = 2 * time.Second
	DefaultFinalTimeout = 5 * time.Second
)

// ErrPersistence wraps failures to read or write the route snapshot.
var ErrPersistence = errors.New("persistence failure")

// Coalescer turns route table changes into periodic snapshot writes.
type Coalescer struct {
	table     *route.Table
	snapshots store.RouteSnapshots

	interval     time.Duration
	finalTimeout time.Duration

	dirty   atomic.Bool
	flushMu sync.Mutex

	onSave func(err error, took time.Duration)
	log    *slog.Logger
}

// Option configures a Coalescer.
type Option func(*Coalescer)

// WithInterval sets how often the dirty flag is checked.
func WithInterval(d time.Duration) Option {
	return func(c *Coalescer) {
		if d > 0 {
			c.interval = d
		}
	}
}

// WithFinalTimeout bounds the flush performed when Run stops.
func WithFinalTimeout(d time.Duration) Option {
	return func(c *Coalescer) {
		if d > 0 {
			c.finalTimeout = d
		}
	}
}

// WithSaveHook sets a function called after every write attempt.
func WithSaveHook(fn func(err error, took time.Duration)) Option {
	return func(c *Coalescer) { c.onSave = fn }
}

// WithLogger sets the operational logger.
func WithLogger(log *slog.Logger) Option {
	return func(c *Coalescer) {
		if log != nil {
			c.log = log
		}
	}
}

// New creates a Coalescer and registers it as a listener on table.
func New(table *route.Table, snapshots store.RouteSnapshots, opts ...Option) *Coalescer {
	c := &Coalescer{
		table:        table,
		snapshots:    snapshots,
		interval:     DefaultInterval,
		finalTimeout: DefaultFinalTimeout,
		log:          logging.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	table.OnChange(c)
	return c
}

// RoutesChanged marks the table as needing a write.
func (c *Coalescer) RoutesChanged() {
	c.dirty.Store(true)
}

// Dirty reports whether a write is pending.
func (c *Coalescer) Dirty() bool {
	return c.dirty.Load()
}

// Flush writes a snapshot if the table changed since the last write.
// It reports whether a write happened. Concurrent calls are serialized.
func (c *Coalescer) Flush(ctx context.Context) (bool, error) {
	c.flushMu.Lock()
	defer c.flushMu.Unlock()

	if !c.dirty.Swap(false) {
		return false, nil
	}

	routes := c.table.All()
	start := time.Now()
	err := c.snapshots.SaveRoutes(ctx, routes)
	took := time.Since(start)
	if c.onSave != nil {
		c.onSave(err, took)
	}

	if err != nil {
		c.dirty.Store(true)
		c.log.Error("failed to save routes", slogx.Error(err), "routes", len(routes))
		return false, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	c.log.Debug("routes saved", "routes", len(routes), "took", took)
	return true, nil
}

// Run flushes every interval until ctx is canceled, then flushes once more
// with a bounded timeout.
func (c *Coalescer) Run(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_, _ = c.Flush(ctx) // logged; retried next tick
		case <-ctx.Done():
			finalCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.finalTimeout)
			_, _ = c.Flush(finalCtx)
			cancel()
			return
		}
	}
}

// LoadAtStartup fills the table from the saved snapshot and returns the
// loaded routes. It returns nil routes and no error when nothing was saved
// yet. Routes that fail validation are skipped and logged, and the table is
// left dirty so the next flush rewrites the snapshot without them.
//
// It must run before the table is shared: a clean load does not mark the
// table dirty.
func (c *Coalescer) LoadAtStartup(ctx context.Context) ([]route.Route, error) {
	routes, err := c.snapshots.LoadRoutes(ctx)
	if errors.Is(err, store.ErrNotFound) {
		c.log.Info("no route snapshot found, starting empty")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	loadErr := c.table.LoadAll(routes)
	c.dirty.Store(loadErr != nil)
	if loadErr != nil {
		c.log.Warn("skipped invalid routes in snapshot", slogx.Error(loadErr))
	}

	return c.table.All(), nil
}
