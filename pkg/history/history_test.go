package history

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/faque/pkg/requestlog"
	"github.com/getmockd/faque/pkg/store/bolt"
)

func openStore(t *testing.T) *bolt.HistoryStore {
	t.Helper()
	s, err := bolt.Open(filepath.Join(t.TempDir(), "requests.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func storedIDs(t *testing.T, s Store) []string {
	t.Helper()
	ids, err := s.IDs()
	require.NoError(t, err)
	return ids
}

func TestWriter_PersistsRecords(t *testing.T) {
	recorder := requestlog.NewRecorder()
	s := openStore(t)
	w := NewWriter(recorder, s, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	r := recorder.Record("POST", "/orders", "", nil, []byte("{}"))
	require.Eventually(t, func() bool {
		ids, err := s.IDs()
		return err == nil && slices.Contains(ids, r.ID)
	}, time.Second, 5*time.Millisecond)

	cancel()
	<-done
}

func TestWriter_DrainsQueueOnStop(t *testing.T) {
	recorder := requestlog.NewRecorder()
	s := openStore(t)
	w := NewWriter(recorder, s, nil, nil)

	// recorded before Run starts
	var ids []string
	for i := range 5 {
		ids = append(ids, recorder.Record("GET", fmt.Sprintf("/%d", i), "", nil, nil).ID)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	w.Run(ctx)

	assert.Equal(t, ids, storedIDs(t, s))
}

type failingStore struct {
	Store
	puts atomic.Int64
}

func (f *failingStore) Put(*requestlog.Record) error {
	f.puts.Add(1)
	return errors.New("disk full")
}

func TestWriter_FailuresAreCounted(t *testing.T) {
	recorder := requestlog.NewRecorder()
	var failures atomic.Int64
	w := NewWriter(recorder, &failingStore{}, func() { failures.Add(1) }, nil)

	recorder.Record("GET", "/", "", nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	w.Run(ctx)

	assert.Equal(t, int64(1), failures.Load())
}

func TestCleaner_DeletesEvicted(t *testing.T) {
	recorder := requestlog.NewRecorder(requestlog.WithMaxHistory(2))
	s := openStore(t)

	var all []*requestlog.Record
	for i := range 4 {
		r := recorder.Record("GET", fmt.Sprintf("/%d", i), "", nil, nil)
		require.NoError(t, s.Put(r))
		all = append(all, r)
	}

	c := NewCleaner(recorder, s, 0, nil)
	n, err := c.Clean()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{all[2].ID, all[3].ID}, storedIDs(t, s))

	n, err = c.Clean()
	require.NoError(t, err)
	assert.Zero(t, n)

	recorder.Clear()
	n, err = c.Clean()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Empty(t, storedIDs(t, s))
}

func TestCleaner_Run(t *testing.T) {
	recorder := requestlog.NewRecorder()
	s := openStore(t)
	r := recorder.Record("GET", "/", "", nil, nil)
	require.NoError(t, s.Put(r))
	recorder.Clear()

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		NewCleaner(recorder, s, 10*time.Millisecond, nil).Run(ctx)
	}()

	require.Eventually(t, func() bool { return len(storedIDs(t, s)) == 0 }, time.Second, 5*time.Millisecond)
	cancel()
	wg.Wait()
}

func TestRestore(t *testing.T) {
	s := openStore(t)
	src := requestlog.NewRecorder()
	var ids []string
	for i := range 5 {
		r := src.Record("GET", fmt.Sprintf("/%d", i), "", nil, nil)
		require.NoError(t, s.Put(r))
		ids = append(ids, r.ID)
	}

	recorder := requestlog.NewRecorder(requestlog.WithMaxHistory(3))
	n, err := Restore(context.Background(), s, recorder)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, ids[2:], recorder.ListIDs())
}
