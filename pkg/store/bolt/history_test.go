package bolt

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/faque/pkg/requestlog"
)

func openTemp(t *testing.T) (*HistoryStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "history", "requests.db")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, path
}

func TestHistoryStore_PutList(t *testing.T) {
	s, _ := openTemp(t)
	rec := requestlog.NewRecorder().Record("POST", "/api", "a=1", map[string]string{"X-Trace": "1"}, []byte("body"))

	require.NoError(t, s.Put(rec))
	// a second Put of the same id overwrites
	require.NoError(t, s.Put(rec))

	list, err := s.List()
	require.NoError(t, err)
	require.Len(t, list, 1)
	got := list[0]
	assert.Equal(t, rec.ID, got.ID)
	assert.Equal(t, "POST", got.Method)
	assert.Equal(t, "a=1", got.QueryString)
	assert.Equal(t, "1", got.Headers["X-Trace"])
	assert.Equal(t, "body", got.Body)
	assert.True(t, rec.Timestamp.Equal(got.Timestamp))
}

func TestHistoryStore_Empty(t *testing.T) {
	s, _ := openTemp(t)

	list, err := s.List()
	require.NoError(t, err)
	assert.Empty(t, list)

	ids, err := s.IDs()
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestHistoryStore_PutRequiresID(t *testing.T) {
	s, _ := openTemp(t)
	assert.Error(t, s.Put(&requestlog.Record{Path: "/"}))
	assert.Error(t, s.Put(nil))
}

func TestHistoryStore_ListAndIDsOldestFirst(t *testing.T) {
	s, _ := openTemp(t)
	recorder := requestlog.NewRecorder()

	var want []string
	for _, p := range []string{"/a", "/b", "/c"} {
		want = append(want, recorder.Record("GET", p, "", nil, nil).ID)
	}
	// insert out of order
	for _, i := range []int{2, 0, 1} {
		rec, err := recorder.Get(want[i])
		require.NoError(t, err)
		require.NoError(t, s.Put(rec))
	}

	ids, err := s.IDs()
	require.NoError(t, err)
	assert.Equal(t, want, ids)

	list, err := s.List()
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "/a", list[0].Path)
	assert.Equal(t, "/c", list[2].Path)
}

func TestHistoryStore_Delete(t *testing.T) {
	s, _ := openTemp(t)
	recorder := requestlog.NewRecorder()
	a := recorder.Record("GET", "/a", "", nil, nil)
	b := recorder.Record("GET", "/b", "", nil, nil)
	require.NoError(t, s.Put(a))
	require.NoError(t, s.Put(b))

	require.NoError(t, s.Delete(a.ID, "unknown"))
	require.NoError(t, s.Delete())

	ids, err := s.IDs()
	require.NoError(t, err)
	assert.Equal(t, []string{b.ID}, ids)
}

func TestHistoryStore_Reopen(t *testing.T) {
	s, path := openTemp(t)
	rec := requestlog.NewRecorder().Record("GET", "/kept", "", nil, nil)
	require.NoError(t, s.Put(rec))
	require.NoError(t, s.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	list, err := reopened.List()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, rec.ID, list[0].ID)
	assert.Equal(t, "/kept", list[0].Path)
}
