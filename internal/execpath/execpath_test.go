package execpath

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetMissingReturnsFalse(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "exec-paths.bin"))
	require.NoError(t, err)
	_, ok := c.Get("/tools/node/20.10.0", "node")
	assert.False(t, ok)
}

func TestPutThenGetRoundTrips(t *testing.T) {
	dir := t.TempDir()
	exe := filepath.Join(dir, "node")
	require.NoError(t, os.WriteFile(exe, []byte("#!/bin/sh\n"), 0o755))

	cachePath := filepath.Join(t.TempDir(), "exec-paths.bin")
	c, err := Load(cachePath)
	require.NoError(t, err)
	require.NoError(t, c.Put(dir, "node", exe))

	got, ok := c.Get(dir, "node")
	require.True(t, ok)
	assert.Equal(t, exe, got)

	reloaded, err := Load(cachePath)
	require.NoError(t, err)
	got2, ok := reloaded.Get(dir, "node")
	require.True(t, ok)
	assert.Equal(t, exe, got2)
}

func TestGetRemovesStaleEntry(t *testing.T) {
	dir := t.TempDir()
	exe := filepath.Join(dir, "node")
	require.NoError(t, os.WriteFile(exe, []byte("x"), 0o755))

	c, err := Load(filepath.Join(t.TempDir(), "exec-paths.bin"))
	require.NoError(t, err)
	require.NoError(t, c.Put(dir, "node", exe))
	require.NoError(t, os.Remove(exe))

	_, ok := c.Get(dir, "node")
	assert.False(t, ok)
}

func TestInvalidateRuntimeRemovesPrefixedEntries(t *testing.T) {
	base := t.TempDir()
	dir := filepath.Join(base, "tools", "node", "20.10.0")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	exe := filepath.Join(dir, "node")
	require.NoError(t, os.WriteFile(exe, []byte("x"), 0o755))

	c, err := Load(filepath.Join(t.TempDir(), "exec-paths.bin"))
	require.NoError(t, err)
	require.NoError(t, c.Put(dir, "node", exe))
	require.NoError(t, c.InvalidateRuntime(filepath.Join(base, "tools", "node")))

	_, ok := c.Get(dir, "node")
	assert.False(t, ok)
}

func TestClearEmptiesCache(t *testing.T) {
	dir := t.TempDir()
	exe := filepath.Join(dir, "node")
	require.NoError(t, os.WriteFile(exe, []byte("x"), 0o755))

	c, err := Load(filepath.Join(t.TempDir(), "exec-paths.bin"))
	require.NoError(t, err)
	require.NoError(t, c.Put(dir, "node", exe))
	require.NoError(t, c.Clear())

	_, ok := c.Get(dir, "node")
	assert.False(t, ok)
}
