package providers

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tsukumogami/vx/internal/platform"
	"github.com/tsukumogami/vx/internal/registry"
)

// Bun is the Bun JavaScript runtime and bundler, fed by oven-sh/bun's
// GitHub releases, using the same githubReleaseSource helper the
// kubectl/jq/hadolint providers share.
type Bun struct {
	src githubReleaseSource
}

func NewBun() *Bun { return &Bun{src: newGitHubReleaseSource("oven-sh", "bun")} }

func (b *Bun) Name() string                         { return "bun" }
func (b *Bun) Description() string                  { return "Bun JavaScript runtime, bundler, and package manager" }
func (b *Bun) Aliases() []string                    { return nil }
func (b *Bun) Ecosystem() registry.Ecosystem        { return registry.EcosystemNodeJs }
func (b *Bun) Dependencies() []registry.Dependency  { return nil }
func (b *Bun) SupportedPlatforms() []platform.Platform { return nil }

func (b *Bun) FetchVersions(ctx context.Context) ([]registry.VersionInfo, error) {
	releases, err := b.src.fetchReleases(ctx)
	if err != nil {
		return nil, err
	}
	versions := make([]registry.VersionInfo, 0, len(releases))
	for _, r := range releases {
		versions = append(versions, registry.VersionInfo{
			Version:    strings.TrimPrefix(r.GetTagName(), "bun-v"),
			Prerelease: r.GetPrerelease(),
		})
	}
	return versions, nil
}

func (b *Bun) DownloadURL(version string, p platform.Platform) (string, bool) {
	asset, ok := bunAssetName(p)
	if !ok {
		return "", false
	}
	return fmt.Sprintf("https://github.com/oven-sh/bun/releases/download/bun-v%s/%s", version, asset), true
}

func bunAssetName(p platform.Platform) (string, bool) {
	var osPart string
	switch p.OS {
	case platform.Linux:
		osPart = "linux"
	case platform.MacOS:
		osPart = "darwin"
	case platform.Windows:
		osPart = "windows"
	default:
		return "", false
	}
	var archPart string
	switch p.Arch {
	case platform.X86_64:
		archPart = "x64"
	case platform.Aarch64:
		archPart = "aarch64"
	default:
		return "", false
	}
	return fmt.Sprintf("bun-%s-%s.zip", osPart, archPart), true
}

func (b *Bun) ExecutableRelativePath(version string, p platform.Platform) string {
	dir, _ := bunAssetDir(p)
	if p.OS == platform.Windows {
		return filepath.Join(dir, "bun.exe")
	}
	return filepath.Join(dir, "bun")
}

func bunAssetDir(p platform.Platform) (string, bool) {
	name, ok := bunAssetName(p)
	if !ok {
		return "", false
	}
	return name[:len(name)-len(".zip")], true
}

func (b *Bun) VerifyInstallation(version, installPath string, p platform.Platform) (string, *registry.VerifyFailure) {
	exe := filepath.Join(installPath, b.ExecutableRelativePath(version, p))
	if _, err := os.Stat(exe); err != nil {
		return "", &registry.VerifyFailure{Errors: []string{fmt.Sprintf("bun executable not found at %s", exe)}}
	}
	return exe, nil
}

// Bunx is bun's npx-equivalent package runner, bundled in the same
// archive as bun itself (a symlink to the bun binary upstream).
type Bunx struct{}

func NewBunx() *Bunx { return &Bunx{} }

func (x *Bunx) Name() string                  { return "bunx" }
func (x *Bunx) Description() string           { return "bunx package runner, bundled with bun" }
func (x *Bunx) Aliases() []string             { return nil }
func (x *Bunx) Ecosystem() registry.Ecosystem { return registry.EcosystemNodeJs }
func (x *Bunx) Dependencies() []registry.Dependency {
	return []registry.Dependency{{Name: "bun", Reason: "bunx ships inside bun's install tree"}}
}
func (x *Bunx) SupportedPlatforms() []platform.Platform { return nil }
func (x *Bunx) FetchVersions(context.Context) ([]registry.VersionInfo, error) {
	return nil, fmt.Errorf("bunx's version always mirrors its parent bun install; it has no independent version feed")
}
func (x *Bunx) DownloadURL(version string, p platform.Platform) (string, bool) { return "", false }
func (x *Bunx) ExecutableRelativePath(version string, p platform.Platform) string {
	dir, _ := bunAssetDir(p)
	if p.OS == platform.Windows {
		return filepath.Join(dir, "bunx.exe")
	}
	return filepath.Join(dir, "bunx")
}
func (x *Bunx) VerifyInstallation(version, installPath string, p platform.Platform) (string, *registry.VerifyFailure) {
	exe := filepath.Join(installPath, x.ExecutableRelativePath(version, p))
	if _, err := os.Stat(exe); err != nil {
		return "", &registry.VerifyFailure{Errors: []string{fmt.Sprintf("bunx not found at %s", exe)}}
	}
	return exe, nil
}
func (x *Bunx) BundledIn() string { return "bun" }
