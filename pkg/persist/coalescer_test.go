package persist

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/faque/pkg/route"
	"github.com/getmockd/faque/pkg/store"
)

func newRoute(method, pattern string, status int) route.Route {
	return route.Route{
		Method:      method,
		PathPattern: pattern,
		Response:    route.Response{StatusCode: status},
		Enabled:     true,
	}
}

// fakeSnapshots records saves and can run a hook or fail on demand.
type fakeSnapshots struct {
	mu      sync.Mutex
	saved   [][]route.Route
	onSave  func()
	failErr error
	loadErr error
	loaded  []route.Route
}

func (f *fakeSnapshots) LoadRoutes(context.Context) ([]route.Route, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	if f.loaded == nil {
		return nil, store.ErrNotFound
	}
	return f.loaded, nil
}

func (f *fakeSnapshots) SaveRoutes(_ context.Context, routes []route.Route) error {
	f.mu.Lock()
	hook, fail := f.onSave, f.failErr
	f.mu.Unlock()

	if hook != nil {
		hook()
	}
	if fail != nil {
		return fail
	}

	f.mu.Lock()
	f.saved = append(f.saved, routes)
	f.mu.Unlock()
	return nil
}

func (f *fakeSnapshots) saves() [][]route.Route {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saved
}

func TestCoalescer_FlushOnlyWhenDirty(t *testing.T) {
	table := route.NewTable()
	snaps := &fakeSnapshots{}
	c := New(table, snaps)
	ctx := context.Background()

	saved, err := c.Flush(ctx)
	require.NoError(t, err)
	assert.False(t, saved)

	_, err = table.Upsert(newRoute("GET", "/a", 200), nil)
	require.NoError(t, err)
	assert.True(t, c.Dirty())

	saved, err = c.Flush(ctx)
	require.NoError(t, err)
	assert.True(t, saved)
	assert.False(t, c.Dirty())

	saved, err = c.Flush(ctx)
	require.NoError(t, err)
	assert.False(t, saved)

	require.Len(t, snaps.saves(), 1)
	assert.Equal(t, "/a", snaps.saves()[0][0].PathPattern)
}

func TestCoalescer_BurstCoalescesIntoOneWrite(t *testing.T) {
	table := route.NewTable()
	snaps := &fakeSnapshots{}
	c := New(table, snaps)

	for i := range 100 {
		_, err := table.Upsert(newRoute("GET", "/burst", 200+i), nil)
		require.NoError(t, err)
	}

	saved, err := c.Flush(context.Background())
	require.NoError(t, err)
	assert.True(t, saved)
	require.Len(t, snaps.saves(), 1)
	assert.Equal(t, int64(100), snaps.saves()[0][0].Version)
}

func TestCoalescer_ChangeDuringWriteIsNotLost(t *testing.T) {
	table := route.NewTable()
	snaps := &fakeSnapshots{}
	c := New(table, snaps)
	ctx := context.Background()

	_, err := table.Upsert(newRoute("GET", "/first", 200), nil)
	require.NoError(t, err)

	// a mutation lands while the first snapshot is being written
	var once sync.Once
	snaps.onSave = func() {
		once.Do(func() {
			_, err := table.Upsert(newRoute("GET", "/second", 200), nil)
			assert.NoError(t, err)
		})
	}

	saved, err := c.Flush(ctx)
	require.NoError(t, err)
	require.True(t, saved)
	assert.Len(t, snaps.saves()[0], 1)
	assert.True(t, c.Dirty(), "change during write must leave the flag set")

	saved, err = c.Flush(ctx)
	require.NoError(t, err)
	require.True(t, saved)
	require.Len(t, snaps.saves(), 2)
	assert.Len(t, snaps.saves()[1], 2)
}

func TestCoalescer_FailedWriteIsRetried(t *testing.T) {
	table := route.NewTable()
	snaps := &fakeSnapshots{failErr: errors.New("disk full")}

	var hookErrs atomic.Int64
	c := New(table, snaps, WithSaveHook(func(err error, _ time.Duration) {
		if err != nil {
			hookErrs.Add(1)
		}
	}))
	ctx := context.Background()

	_, err := table.Upsert(newRoute("GET", "/a", 200), nil)
	require.NoError(t, err)

	saved, err := c.Flush(ctx)
	assert.False(t, saved)
	assert.ErrorIs(t, err, ErrPersistence)
	assert.ErrorContains(t, err, "disk full")
	assert.True(t, c.Dirty())
	assert.Equal(t, int64(1), hookErrs.Load())

	snaps.mu.Lock()
	snaps.failErr = nil
	snaps.mu.Unlock()

	saved, err = c.Flush(ctx)
	require.NoError(t, err)
	assert.True(t, saved)
	assert.False(t, c.Dirty())
}

func TestCoalescer_RunFlushesOnTickAndOnStop(t *testing.T) {
	table := route.NewTable()
	snaps := store.NewMemorySnapshots()
	c := New(table, snaps, WithInterval(10*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.Run(ctx)
		close(done)
	}()

	_, err := table.Upsert(newRoute("GET", "/tick", 200), nil)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return snaps.Saves() == 1 }, time.Second, 5*time.Millisecond)

	// a change right before shutdown is written by the final flush
	_, err = table.Upsert(newRoute("GET", "/last", 200), nil)
	require.NoError(t, err)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}

	got, err := snaps.LoadRoutes(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.False(t, c.Dirty())
}

func TestCoalescer_LoadAtStartup(t *testing.T) {
	snaps := &fakeSnapshots{loaded: []route.Route{
		newRoute("GET", "/a", 200),
		newRoute("POST", "/c", 201),
	}}
	table := route.NewTable()
	c := New(table, snaps)

	routes, err := c.LoadAtStartup(context.Background())
	require.NoError(t, err)
	require.Len(t, routes, 2)
	assert.Equal(t, "/a", routes[0].PathPattern)
	assert.Equal(t, int64(1), routes[0].Version)
	assert.Equal(t, 2, table.Count())

	assert.False(t, c.Dirty(), "loading must not schedule a re-save")
	saved, err := c.Flush(context.Background())
	require.NoError(t, err)
	assert.False(t, saved)
}

func TestCoalescer_LoadAtStartupRewritesSkippedRoutes(t *testing.T) {
	snaps := &fakeSnapshots{loaded: []route.Route{
		newRoute("GET", "/a", 200),
		newRoute("BOGUS", "/b", 200),
		newRoute("POST", "/c", 201),
	}}
	table := route.NewTable()
	c := New(table, snaps)

	routes, err := c.LoadAtStartup(context.Background())
	require.NoError(t, err)
	require.Len(t, routes, 2)
	assert.Equal(t, 2, table.Count())
	assert.True(t, c.Dirty(), "a snapshot with invalid routes must be rewritten")

	saved, err := c.Flush(context.Background())
	require.NoError(t, err)
	assert.True(t, saved)

	got := snaps.saves()
	require.Len(t, got, 1)
	require.Len(t, got[0], 2)
	assert.Equal(t, "/a", got[0][0].PathPattern)
	assert.Equal(t, "/c", got[0][1].PathPattern)
}

func TestCoalescer_LoadAtStartupFresh(t *testing.T) {
	table := route.NewTable()
	c := New(table, &fakeSnapshots{})

	routes, err := c.LoadAtStartup(context.Background())
	require.NoError(t, err)
	assert.Nil(t, routes)
	assert.Zero(t, table.Count())
}

func TestCoalescer_LoadAtStartupFailure(t *testing.T) {
	c := New(route.NewTable(), &fakeSnapshots{loadErr: errors.New("permission denied")})

	_, err := c.LoadAtStartup(context.Background())
	assert.ErrorIs(t, err, ErrPersistence)
}

func TestCoalescer_ConcurrentWritersAndFlushes(t *testing.T) {
	table := route.NewTable()
	snaps := store.NewMemorySnapshots()
	c := New(table, snaps)
	ctx := context.Background()

	var wg sync.WaitGroup
	for g := range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 50 {
				_, err := table.Upsert(newRoute("GET", "/w/"+string(rune('a'+g)), 200+i), nil)
				assert.NoError(t, err)
			}
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for range 50 {
			_, err := c.Flush(ctx)
			assert.NoError(t, err)
		}
	}()
	wg.Wait()

	_, err := c.Flush(ctx)
	require.NoError(t, err)

	got, err := snaps.LoadRoutes(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, table.All(), got)
}
