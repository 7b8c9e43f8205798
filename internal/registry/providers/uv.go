package providers

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tsukumogami/vx/internal/platform"
	"github.com/tsukumogami/vx/internal/registry"
)

// UV is the astral-sh/uv Python package/project manager, fed by its
// GitHub releases. ExecutableRelativePath looks for uv under a
// directory named after the target triple (e.g.
// x86_64-unknown-linux-gnu/uv), not under a versioned one.
type UV struct {
	src githubReleaseSource
}

func NewUV() *UV { return &UV{src: newGitHubReleaseSource("astral-sh", "uv")} }

func (u *UV) Name() string                         { return "uv" }
func (u *UV) Description() string                  { return "fast Python package and project manager" }
func (u *UV) Aliases() []string                    { return nil }
func (u *UV) Ecosystem() registry.Ecosystem        { return registry.EcosystemPython }
func (u *UV) Dependencies() []registry.Dependency  { return nil }
func (u *UV) SupportedPlatforms() []platform.Platform { return nil }

func (u *UV) FetchVersions(ctx context.Context) ([]registry.VersionInfo, error) {
	releases, err := u.src.fetchReleases(ctx)
	if err != nil {
		return nil, err
	}
	versions := make([]registry.VersionInfo, 0, len(releases))
	for _, r := range releases {
		versions = append(versions, registry.VersionInfo{
			Version:    trimV(r.GetTagName()),
			Prerelease: r.GetPrerelease(),
		})
	}
	return versions, nil
}

func (u *UV) DownloadURL(version string, p platform.Platform) (string, bool) {
	target, ok := uvTarget(p)
	if !ok {
		return "", false
	}
	ext := "tar.gz"
	if p.OS == platform.Windows {
		ext = "zip"
	}
	return fmt.Sprintf("https://github.com/astral-sh/uv/releases/download/%s/uv-%s.%s", version, target, ext), true
}

func uvTarget(p platform.Platform) (string, bool) {
	var osPart string
	switch p.OS {
	case platform.Linux:
		osPart = "unknown-linux-gnu"
	case platform.MacOS:
		osPart = "apple-darwin"
	case platform.Windows:
		osPart = "pc-windows-msvc"
	default:
		return "", false
	}
	var archPart string
	switch p.Arch {
	case platform.X86_64:
		archPart = "x86_64"
	case platform.Aarch64:
		archPart = "aarch64"
	default:
		return "", false
	}
	return fmt.Sprintf("%s-%s", archPart, osPart), true
}

func (u *UV) ExecutableRelativePath(version string, p platform.Platform) string {
	target, _ := uvTarget(p)
	if p.OS == platform.Windows {
		return filepath.Join(target, "uv.exe")
	}
	return filepath.Join(target, "uv")
}

func (u *UV) VerifyInstallation(version, installPath string, p platform.Platform) (string, *registry.VerifyFailure) {
	exe := filepath.Join(installPath, u.ExecutableRelativePath(version, p))
	if _, err := os.Stat(exe); err != nil {
		return "", &registry.VerifyFailure{Errors: []string{fmt.Sprintf("uv binary not found at %s", exe)}}
	}
	return exe, nil
}

// Uvx is uv's ephemeral-tool runner, bundled in the same archive as uv.
type Uvx struct{}

func NewUvx() *Uvx { return &Uvx{} }

func (x *Uvx) Name() string                  { return "uvx" }
func (x *Uvx) Description() string           { return "uvx ephemeral tool runner, bundled with uv" }
func (x *Uvx) Aliases() []string             { return nil }
func (x *Uvx) Ecosystem() registry.Ecosystem { return registry.EcosystemPython }
func (x *Uvx) Dependencies() []registry.Dependency {
	return []registry.Dependency{{Name: "uv", Reason: "uvx ships inside uv's install tree"}}
}
func (x *Uvx) SupportedPlatforms() []platform.Platform { return nil }
func (x *Uvx) FetchVersions(context.Context) ([]registry.VersionInfo, error) {
	return nil, fmt.Errorf("uvx's version always mirrors its parent uv install; it has no independent version feed")
}
func (x *Uvx) DownloadURL(version string, p platform.Platform) (string, bool) { return "", false }
func (x *Uvx) ExecutableRelativePath(version string, p platform.Platform) string {
	target, _ := uvTarget(p)
	if p.OS == platform.Windows {
		return filepath.Join(target, "uvx.exe")
	}
	return filepath.Join(target, "uvx")
}
func (x *Uvx) VerifyInstallation(version, installPath string, p platform.Platform) (string, *registry.VerifyFailure) {
	exe := filepath.Join(installPath, x.ExecutableRelativePath(version, p))
	if _, err := os.Stat(exe); err != nil {
		return "", &registry.VerifyFailure{Errors: []string{fmt.Sprintf("uvx not found at %s", exe)}}
	}
	return exe, nil
}
func (x *Uvx) BundledIn() string { return "uv" }
