package providers

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsukumogami/vx/internal/platform"
)

func TestNodeDistEntryDecodesLTSShape(t *testing.T) {
	var entries []nodeDistEntry
	require.NoError(t, json.Unmarshal([]byte(`[
		{"version":"v20.10.0","lts":"Iron"},
		{"version":"v21.5.0","lts":false}
	]`), &entries))

	require.Len(t, entries, 2)
	assert.Equal(t, "v20.10.0", entries[0].Version)
	assert.NotEqual(t, false, entries[0].LTS)
	assert.Equal(t, false, entries[1].LTS)
}

func TestNodeJSDownloadURL(t *testing.T) {
	n := NewNodeJS(nil)

	url, ok := n.DownloadURL("20.10.0", platform.Platform{OS: platform.Linux, Arch: platform.X86_64})
	require.True(t, ok)
	assert.Equal(t, "https://nodejs.org/dist/v20.10.0/node-v20.10.0-linux-x64.tar.gz", url)

	url, ok = n.DownloadURL("20.10.0", platform.Platform{OS: platform.Windows, Arch: platform.X86_64})
	require.True(t, ok)
	assert.Equal(t, "https://nodejs.org/dist/v20.10.0/node-v20.10.0-win-x64.zip", url)

	url, ok = n.DownloadURL("20.10.0", platform.Platform{OS: platform.MacOS, Arch: platform.Aarch64})
	require.True(t, ok)
	assert.Equal(t, "https://nodejs.org/dist/v20.10.0/node-v20.10.0-darwin-arm64.tar.gz", url)
}

func TestNodeJSExecutableRelativePath(t *testing.T) {
	n := NewNodeJS(nil)
	assert.Equal(t, "node.exe", n.ExecutableRelativePath("20.10.0", platform.Platform{OS: platform.Windows}))
	assert.Equal(t, filepath.Join("bin", "node"), n.ExecutableRelativePath("20.10.0", platform.Platform{OS: platform.Linux}))
}

func TestNodeJSVerifyInstallation(t *testing.T) {
	n := NewNodeJS(nil)
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "bin"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bin", "node"), []byte("#!/bin/sh\n"), 0o755))

	exe, failure := n.VerifyInstallation("20.10.0", dir, platform.Platform{OS: platform.Linux})
	assert.Nil(t, failure)
	assert.Equal(t, filepath.Join(dir, "bin", "node"), exe)

	_, failure = n.VerifyInstallation("20.10.0", t.TempDir(), platform.Platform{OS: platform.Linux})
	require.NotNil(t, failure)
	assert.NotEmpty(t, failure.Suggestions)
}

func TestNpmIsBundledInNode(t *testing.T) {
	npm := NewNpm()
	assert.Equal(t, "node", npm.BundledIn())
	require.Len(t, npm.Dependencies(), 1)
	assert.Equal(t, "node", npm.Dependencies()[0].Name)

	_, err := npm.FetchVersions(context.Background())
	assert.Error(t, err)

	_, ok := npm.DownloadURL("20.10.0", platform.Platform{OS: platform.Linux})
	assert.False(t, ok)
}

func TestNpxIsBundledInNode(t *testing.T) {
	npx := NewNpx()
	assert.Equal(t, "node", npx.BundledIn())
	assert.Equal(t, filepath.Join("bin", "npx"), npx.ExecutableRelativePath("20.10.0", platform.Platform{OS: platform.Linux}))
	assert.Equal(t, "npx.cmd", npx.ExecutableRelativePath("20.10.0", platform.Platform{OS: platform.Windows}))
}
