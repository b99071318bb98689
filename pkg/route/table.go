package route

import (
	"cmp"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/getmockd/faque/internal/matching"
	"github.com/getmockd/faque/pkg/logging"
)

// Listener is notified after every successful table mutation.
// RoutesChanged is called synchronously on the mutating goroutine and must not block.
type Listener interface {
	RoutesChanged()
}

// ListenerFunc adapts a function to the Listener interface.
type ListenerFunc func()

// RoutesChanged calls f.
func (f ListenerFunc) RoutesChanged() { f() }

// entry is the immutable value stored per key. A write replaces the whole entry.
type entry struct {
	route   Route
	pattern *matching.Pattern
	seq     uint64 // registration order
}

// Table is a concurrent registry of routes.
// The zero value is not usable; create tables with NewTable.
type Table struct {
	// bulk is held shared by single-key writers and exclusively by LoadAll and
	// Clear, which swap the whole map. Readers never take it.
	bulk   sync.RWMutex
	routes atomic.Pointer[sync.Map]

	seq       atomic.Uint64
	count     atomic.Int64
	maxRoutes int

	listenersMu sync.Mutex
	listeners   atomic.Pointer[[]Listener]

	log *slog.Logger
}

// Option configures a Table.
type Option func(*Table)

// WithMaxRoutes bounds the number of routes. Zero or negative means unbounded.
func WithMaxRoutes(n int) Option {
	return func(t *Table) { t.maxRoutes = n }
}

// WithLogger sets the operational logger.
func WithLogger(log *slog.Logger) Option {
	return func(t *Table) {
		if log != nil {
			t.log = log
		}
	}
}

// NewTable creates an empty route table.
func NewTable(opts ...Option) *Table {
	t := &Table{log: logging.Nop()}
	for _, opt := range opts {
		opt(t)
	}
	t.routes.Store(&sync.Map{})
	t.listeners.Store(&[]Listener{})
	return t
}

// OnChange registers a listener for table mutations.
func (t *Table) OnChange(l Listener) {
	t.listenersMu.Lock()
	defer t.listenersMu.Unlock()
	next := slices.Clone(*t.listeners.Load())
	next = append(next, l)
	t.listeners.Store(&next)
}

// notify runs listeners without holding any table lock, so a listener that
// itself mutates the table cannot deadlock.
func (t *Table) notify() {
	for _, l := range *t.listeners.Load() {
		l.RoutesChanged()
	}
}

// FindMatch returns the first enabled route, in registration order, whose
// method equals method (ignoring case) and whose pattern matches path.
func (t *Table) FindMatch(method, path string) (Route, error) {
	var best *entry
	t.routes.Load().Range(func(_, v any) bool {
		e := v.(*entry)
		if !e.route.Enabled || !strings.EqualFold(e.route.Method, method) {
			return true
		}
		if best != nil && e.seq > best.seq {
			return true
		}
		if e.pattern.Match(path) {
			best = e
		}
		return true
	})
	if best == nil {
		return Route{}, fmt.Errorf("%w: no route matches %s %s", ErrNotFound, method, path)
	}
	return best.route.clone(), nil
}

// Get returns the route stored for method and pathPattern.
func (t *Table) Get(method, pathPattern string) (Route, error) {
	v, ok := t.routes.Load().Load(MakeKey(method, pathPattern))
	if !ok {
		return Route{}, notFound(method, pathPattern)
	}
	return v.(*entry).route.clone(), nil
}

// Upsert creates or replaces a route.
//
// With a nil expectedVersion the write is unconditional: the stored version
// becomes 1 for a new key or the previous version plus one. With a non-nil
// expectedVersion the write only happens if the stored version equals it; a
// missing key counts as version 0. On mismatch a *ConflictError is returned and
// the table is unchanged.
//
// The returned route carries the new version. A version of 1 means the key was created.
func (t *Table) Upsert(r Route, expectedVersion *int64) (Route, error) {
	if err := r.Validate(); err != nil {
		return Route{}, err
	}
	r = r.normalize()
	pattern := matching.Compile(r.PathPattern)

	t.bulk.RLock()
	saved, err := t.upsert(t.routes.Load(), r, pattern, expectedVersion)
	t.bulk.RUnlock()
	if err != nil {
		return Route{}, err
	}

	t.log.Debug("route saved", "method", saved.Method, "pathPattern", saved.PathPattern, "version", saved.Version)
	t.notify()
	return saved.clone(), nil
}

func (t *Table) upsert(routes *sync.Map, r Route, pattern *matching.Pattern, expected *int64) (Route, error) {
	key := r.Key()
	for {
		cur, ok := routes.Load(key)
		if !ok {
			if expected != nil && *expected != 0 {
				return Route{}, &ConflictError{Method: r.Method, PathPattern: r.PathPattern, Expected: *expected}
			}
			if !t.reserve() {
				return Route{}, &ValidationError{Field: "routes", Value: t.maxRoutes,
					Reason: "maximum number of routes reached", cause: ErrRouteLimit}
			}
			r.Version = 1
			next := &entry{route: r, pattern: pattern, seq: t.seq.Add(1)}
			if _, loaded := routes.LoadOrStore(key, next); loaded {
				// Another writer created the key first; retry as an update.
				t.count.Add(-1)
				continue
			}
			return next.route, nil
		}

		old := cur.(*entry)
		if expected != nil && old.route.Version != *expected {
			return Route{}, &ConflictError{Method: r.Method, PathPattern: r.PathPattern,
				Expected: *expected, Actual: old.route.Version}
		}
		r.Version = old.route.Version + 1
		next := &entry{route: r, pattern: pattern, seq: old.seq}
		if routes.CompareAndSwap(key, old, next) {
			return next.route, nil
		}
		// Lost the race to another writer or a delete: re-evaluate.
	}
}

// reserve claims a slot for a new key, honouring maxRoutes.
func (t *Table) reserve() bool {
	n := t.count.Add(1)
	if t.maxRoutes > 0 && n > int64(t.maxRoutes) {
		t.count.Add(-1)
		return false
	}
	return true
}

// Delete removes the route stored for method and pathPattern.
func (t *Table) Delete(method, pathPattern string) error {
	t.bulk.RLock()
	_, ok := t.routes.Load().LoadAndDelete(MakeKey(method, pathPattern))
	if ok {
		t.count.Add(-1)
	}
	t.bulk.RUnlock()

	if !ok {
		return notFound(method, pathPattern)
	}
	t.log.Debug("route deleted", "method", strings.ToUpper(method), "pathPattern", pathPattern)
	t.notify()
	return nil
}

// Clear removes all routes.
func (t *Table) Clear() {
	t.bulk.Lock()
	t.routes.Store(&sync.Map{})
	t.count.Store(0)
	t.bulk.Unlock()

	t.notify()
}

// LoadAll replaces the table contents with routes.
//
// Stored versions are not preserved: every loaded route starts at version 1.
// Registration order follows the order of routes. When a key appears more than
// once the last occurrence wins but keeps the first position. Invalid routes,
// and routes beyond the configured maximum, are skipped and reported in the
// returned error; the valid ones are still loaded. Listeners are notified once.
func (t *Table) LoadAll(routes []Route) error {
	next := &sync.Map{}
	var (
		errs  []error
		count int64
	)
	for _, r := range routes {
		if err := r.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("%s %s: %w", r.Method, r.PathPattern, err))
			continue
		}
		r = r.normalize()
		r.Version = 1
		key := r.Key()
		pattern := matching.Compile(r.PathPattern)

		if cur, ok := next.Load(key); ok {
			next.Store(key, &entry{route: r, pattern: pattern, seq: cur.(*entry).seq})
			continue
		}
		if t.maxRoutes > 0 && count >= int64(t.maxRoutes) {
			errs = append(errs, fmt.Errorf("%s %s: %w", r.Method, r.PathPattern, ErrRouteLimit))
			continue
		}
		next.Store(key, &entry{route: r, pattern: pattern, seq: t.seq.Add(1)})
		count++
	}

	t.bulk.Lock()
	t.routes.Store(next)
	t.count.Store(count)
	t.bulk.Unlock()

	t.log.Info("routes loaded", "count", count, "skipped", len(errs))
	t.notify()
	return errors.Join(errs...)
}

// All returns a snapshot of every route in registration order.
func (t *Table) All() []Route {
	var entries []*entry
	t.routes.Load().Range(func(_, v any) bool {
		entries = append(entries, v.(*entry))
		return true
	})
	slices.SortFunc(entries, func(a, b *entry) int {
		return cmp.Compare(a.seq, b.seq)
	})

	result := make([]Route, 0, len(entries))
	for _, e := range entries {
		result = append(result, e.route.clone())
	}
	return result
}

// Count returns the number of stored routes.
func (t *Table) Count() int {
	return int(t.count.Load())
}
