package providers

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsukumogami/vx/internal/platform"
)

func TestKubectlDownloadURL(t *testing.T) {
	k := NewKubectl()

	url, ok := k.DownloadURL("1.29.0", platform.Platform{OS: platform.Linux, Arch: platform.X86_64})
	require.True(t, ok)
	assert.Equal(t, "https://dl.k8s.io/release/v1.29.0/bin/linux/amd64/kubectl", url)

	url, ok = k.DownloadURL("1.29.0", platform.Platform{OS: platform.Windows, Arch: platform.Aarch64})
	require.True(t, ok)
	assert.Equal(t, "https://dl.k8s.io/release/v1.29.0/bin/windows/arm64/kubectl.exe", url)
}

func TestKubectlVerifyInstallation(t *testing.T) {
	k := NewKubectl()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "kubectl"), []byte("binary"), 0o755))

	exe, failure := k.VerifyInstallation("1.29.0", dir, platform.Platform{OS: platform.Linux})
	assert.Nil(t, failure)
	assert.Equal(t, filepath.Join(dir, "kubectl"), exe)
}

func TestJqAssetName(t *testing.T) {
	name, ok := jqAssetName(platform.Platform{OS: platform.Linux, Arch: platform.X86_64})
	require.True(t, ok)
	assert.Equal(t, "jq-linux-amd64", name)

	name, ok = jqAssetName(platform.Platform{OS: platform.Windows, Arch: platform.X86_64})
	require.True(t, ok)
	assert.Equal(t, "jq-windows-amd64.exe", name)

	_, ok = jqAssetName(platform.Platform{OS: platform.FreeBSD, Arch: platform.X86_64})
	assert.False(t, ok)
}

func TestHadolintAssetName(t *testing.T) {
	name, ok := hadolintAssetName(platform.Platform{OS: platform.MacOS, Arch: platform.Aarch64})
	require.True(t, ok)
	assert.Equal(t, "hadolint-Darwin-arm64", name)
}

func TestBunDownloadURL(t *testing.T) {
	b := NewBun()
	url, ok := b.DownloadURL("1.1.0", platform.Platform{OS: platform.Linux, Arch: platform.X86_64})
	require.True(t, ok)
	assert.Equal(t, "https://github.com/oven-sh/bun/releases/download/bun-v1.1.0/bun-linux-x64.zip", url)
}

func TestBunxIsBundledInBun(t *testing.T) {
	bunx := NewBunx()
	assert.Equal(t, "bun", bunx.BundledIn())
	require.Len(t, bunx.Dependencies(), 1)

	_, err := bunx.FetchVersions(context.Background())
	assert.Error(t, err)
}

func TestUVDownloadURL(t *testing.T) {
	u := NewUV()
	url, ok := u.DownloadURL("0.4.0", platform.Platform{OS: platform.Linux, Arch: platform.X86_64})
	require.True(t, ok)
	assert.Equal(t, "https://github.com/astral-sh/uv/releases/download/0.4.0/uv-x86_64-unknown-linux-gnu.tar.gz", url)

	url, ok = u.DownloadURL("0.4.0", platform.Platform{OS: platform.MacOS, Arch: platform.Aarch64})
	require.True(t, ok)
	assert.Equal(t, "https://github.com/astral-sh/uv/releases/download/0.4.0/uv-aarch64-apple-darwin.tar.gz", url)
}

func TestUvxIsBundledInUV(t *testing.T) {
	uvx := NewUvx()
	assert.Equal(t, "uv", uvx.BundledIn())
}

func TestGitDownloadURLOnlyResolvesOnWindows(t *testing.T) {
	g := NewGit()

	_, ok := g.DownloadURL("2.44.0", platform.Platform{OS: platform.Linux, Arch: platform.X86_64})
	assert.False(t, ok, "git has no direct download on linux; use the system package manager")

	url, ok := g.DownloadURL("2.44.0", platform.Platform{OS: platform.Windows, Arch: platform.X86_64})
	require.True(t, ok)
	assert.Equal(t, "https://github.com/git-for-windows/git/releases/download/v2.44.0.windows.1/PortableGit-2.44.0-64-bit.7z.exe", url)

	_, err := g.FetchVersions(context.Background())
	assert.Error(t, err)
}

func TestGitVerifyInstallationSuggestsPackageManager(t *testing.T) {
	g := NewGit()
	_, failure := g.VerifyInstallation("2.44.0", t.TempDir(), platform.Platform{OS: platform.Linux})
	require.NotNil(t, failure)
	assert.Contains(t, failure.Suggestions[0], "package manager")
}
