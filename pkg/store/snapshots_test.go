package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/faque/pkg/route"
)

func TestMemorySnapshots(t *testing.T) {
	m := NewMemorySnapshots()
	ctx := context.Background()

	_, err := m.LoadRoutes(ctx)
	require.ErrorIs(t, err, ErrNotFound)

	routes := []route.Route{{Method: "GET", PathPattern: "/a", Response: route.Response{StatusCode: 200}, Enabled: true, Version: 1}}
	require.NoError(t, m.SaveRoutes(ctx, routes))
	routes[0].PathPattern = "/mutated"

	got, err := m.LoadRoutes(ctx)
	require.NoError(t, err)
	assert.Equal(t, "/a", got[0].PathPattern)
	assert.Equal(t, 1, m.Saves())

	require.NoError(t, m.SaveRoutes(ctx, nil))
	got, err = m.LoadRoutes(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestConfigPaths(t *testing.T) {
	c := Config{DataDir: "/var/lib/faque"}
	assert.True(t, c.Enabled())
	assert.Equal(t, "/var/lib/faque/config/routes.json", c.RoutesPath())
	assert.Equal(t, "/var/lib/faque/history/requests.db", c.HistoryPath())

	assert.False(t, Config{}.Enabled())
	assert.Equal(t, DefaultDataDir, DefaultConfig().DataDir)
}
