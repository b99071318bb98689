package file

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/faque/pkg/route"
	"github.com/getmockd/faque/pkg/store"
)

func sampleRoutes() []route.Route {
	return []route.Route{
		{
			Method:      "GET",
			PathPattern: "/hello",
			Response:    route.Response{StatusCode: 200, Headers: map[string]string{"Content-Type": "text/plain"}, Body: "hi"},
			Enabled:     true,
			Version:     3,
		},
		{
			Method:      "POST",
			PathPattern: "/api/**",
			Response:    route.Response{StatusCode: 201},
			Enabled:     false,
			Version:     1,
		},
	}
}

func TestSnapshotStore_LoadMissing(t *testing.T) {
	s := New(store.Config{DataDir: t.TempDir()}, nil)

	_, err := s.LoadRoutes(context.Background())
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSnapshotStore_SaveLoad(t *testing.T) {
	dir := t.TempDir()
	s := New(store.Config{DataDir: dir}, nil)
	ctx := context.Background()

	require.NoError(t, s.SaveRoutes(ctx, sampleRoutes()))
	assert.Equal(t, filepath.Join(dir, "config", "routes.json"), s.Path())

	got, err := New(store.Config{DataDir: dir}, nil).LoadRoutes(ctx)
	require.NoError(t, err)
	assert.Equal(t, sampleRoutes(), got)
}

func TestSnapshotStore_FileFormat(t *testing.T) {
	dir := t.TempDir()
	s := New(store.Config{DataDir: dir}, nil)
	require.NoError(t, s.SaveRoutes(context.Background(), nil))

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.EqualValues(t, dataVersion, doc["version"])
	assert.Equal(t, []any{}, doc["routes"])

	info, err := os.Stat(filepath.Dir(s.Path()))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o700), info.Mode().Perm())

	_, err = os.Stat(s.Path() + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file must not remain")
}

func TestSnapshotStore_Overwrite(t *testing.T) {
	s := NewAt(filepath.Join(t.TempDir(), "routes.json"), nil)
	ctx := context.Background()

	require.NoError(t, s.SaveRoutes(ctx, sampleRoutes()))
	require.NoError(t, s.SaveRoutes(ctx, sampleRoutes()[:1]))

	got, err := s.LoadRoutes(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestSnapshotStore_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "routes.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := NewAt(path, nil).LoadRoutes(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, store.ErrNotFound)
}

func TestSnapshotStore_FutureVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "routes.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"version":99,"routes":[]}`), 0o600))

	_, err := NewAt(path, nil).LoadRoutes(context.Background())
	assert.ErrorContains(t, err, "unsupported version")
}

func TestSnapshotStore_CanceledContext(t *testing.T) {
	s := NewAt(filepath.Join(t.TempDir(), "routes.json"), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, s.SaveRoutes(ctx, sampleRoutes()), context.Canceled)
	_, err := s.LoadRoutes(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
