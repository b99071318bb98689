package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestLoadRouteFiles_SingleAndList(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "routes", "a.yaml"), `
method: GET
pathPattern: /hello
response:
  statusCode: 200
  body: hi
`)
	writeFile(t, filepath.Join(dir, "routes", "nested", "b.yaml"), `
- method: post
  pathPattern: /api/users
  response:
    statusCode: 201
    headers:
      Content-Type: application/json
- method: GET
  pathPattern: /api/off
  enabled: false
  response:
    statusCode: 204
`)

	routes, err := LoadRouteFiles([]string{"routes/**/*.yaml"}, dir)
	require.NoError(t, err)
	require.Len(t, routes, 3)

	assert.Equal(t, "/hello", routes[0].PathPattern)
	assert.Equal(t, "hi", routes[0].Response.Body)
	assert.True(t, routes[0].Enabled, "enabled by default")

	assert.Equal(t, "post", routes[1].Method)
	assert.Equal(t, "application/json", routes[1].Response.Headers["Content-Type"])

	assert.False(t, routes[2].Enabled)
}

func TestLoadRouteFiles_SortedOrder(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"c", "a", "b"} {
		writeFile(t, filepath.Join(dir, name+".yaml"),
			"method: GET\npathPattern: /"+name+"\nresponse:\n  statusCode: 200\n")
	}

	routes, err := LoadRouteFiles([]string{"*.yaml"}, dir)
	require.NoError(t, err)
	require.Len(t, routes, 3)
	assert.Equal(t, "/a", routes[0].PathPattern)
	assert.Equal(t, "/b", routes[1].PathPattern)
	assert.Equal(t, "/c", routes[2].PathPattern)
}

func TestLoadRouteFiles_NoMatches(t *testing.T) {
	routes, err := LoadRouteFiles([]string{"nothing/*.yaml"}, t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, routes)
}

func TestLoadRouteFiles_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"empty", "  \n", "empty"},
		{"bad yaml", "method: [", "parsing"},
		{"invalid route", "method: GET\npathPattern: no-slash\nresponse:\n  statusCode: 200\n", "pathPattern"},
		{"bad status", "method: GET\npathPattern: /x\nresponse:\n  statusCode: 42\n", "statusCode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFile(t, filepath.Join(dir, "r.yaml"), tt.content)

			_, err := LoadRouteFiles([]string{"r.yaml"}, dir)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadRouteFiles_ExpandsEnv(t *testing.T) {
	t.Setenv("FAQUE_TEST_GREETING", "hola")
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "r.yaml"),
		"method: GET\npathPattern: /greet\nresponse:\n  statusCode: 200\n  body: ${FAQUE_TEST_GREETING}\n")

	routes, err := LoadRouteFiles([]string{"r.yaml"}, dir)
	require.NoError(t, err)
	require.Len(t, routes, 1)
	assert.Equal(t, "hola", routes[0].Response.Body)
}
