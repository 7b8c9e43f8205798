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

func TestGoDistEntryStripsVersionPrefix(t *testing.T) {
	var entries []goDistEntry
	require.NoError(t, json.Unmarshal([]byte(`[
		{"version":"go1.22.0","stable":true},
		{"version":"go1.23rc1","stable":false}
	]`), &entries))

	require.Len(t, entries, 2)
	assert.Equal(t, "1.22.0", entries[0].Version[2:])
	assert.True(t, entries[0].Stable)
	assert.False(t, entries[1].Stable)
}

func TestGoDownloadURL(t *testing.T) {
	g := NewGo(nil)

	url, ok := g.DownloadURL("1.22.0", platform.Platform{OS: platform.Linux, Arch: platform.X86_64})
	require.True(t, ok)
	assert.Equal(t, "https://go.dev/dl/go1.22.0.linux-amd64.tar.gz", url)

	url, ok = g.DownloadURL("1.22.0", platform.Platform{OS: platform.Windows, Arch: platform.X86_64})
	require.True(t, ok)
	assert.Equal(t, "https://go.dev/dl/go1.22.0.windows-amd64.zip", url)

	_, ok = g.DownloadURL("1.22.0", platform.Platform{OS: "plan9", Arch: platform.X86_64})
	assert.False(t, ok)
}

func TestGoExecutableRelativePath(t *testing.T) {
	g := NewGo(nil)
	assert.Equal(t, filepath.Join("go", "bin", "go.exe"), g.ExecutableRelativePath("1.22.0", platform.Platform{OS: platform.Windows}))
	assert.Equal(t, filepath.Join("go", "bin", "go"), g.ExecutableRelativePath("1.22.0", platform.Platform{OS: platform.Linux}))
}

func TestGofmtIsBundledInGo(t *testing.T) {
	gofmt := NewGofmt()
	assert.Equal(t, "go", gofmt.BundledIn())
	require.Len(t, gofmt.Dependencies(), 1)
	assert.Equal(t, "go", gofmt.Dependencies()[0].Name)

	_, err := gofmt.FetchVersions(context.Background())
	assert.Error(t, err)

	exe := filepath.Join("go", "bin", "gofmt")
	assert.Equal(t, exe, gofmt.ExecutableRelativePath("1.22.0", platform.Platform{OS: platform.Linux}))
}

func TestGoVerifyInstallation(t *testing.T) {
	g := NewGo(nil)
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "go", "bin"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "go", "bin", "go"), []byte("#!/bin/sh\n"), 0o755))

	exe, failure := g.VerifyInstallation("1.22.0", dir, platform.Platform{OS: platform.Linux})
	assert.Nil(t, failure)
	assert.Equal(t, filepath.Join(dir, "go", "bin", "go"), exe)
}
