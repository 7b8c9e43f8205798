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

// Jq is the jq JSON processor, fed by jqlang/jq's GitHub releases,
// whose assets are bare per-platform binaries attached directly to
// each release rather than a separate binary mirror.
type Jq struct {
	src githubReleaseSource
}

func NewJq() *Jq { return &Jq{src: newGitHubReleaseSource("jqlang", "jq")} }

func (j *Jq) Name() string                         { return "jq" }
func (j *Jq) Description() string                  { return "command-line JSON processor" }
func (j *Jq) Aliases() []string                    { return nil }
func (j *Jq) Ecosystem() registry.Ecosystem        { return registry.EcosystemSystem }
func (j *Jq) Dependencies() []registry.Dependency  { return nil }
func (j *Jq) SupportedPlatforms() []platform.Platform { return nil }

func (j *Jq) FetchVersions(ctx context.Context) ([]registry.VersionInfo, error) {
	releases, err := j.src.fetchReleases(ctx)
	if err != nil {
		return nil, err
	}
	versions := make([]registry.VersionInfo, 0, len(releases))
	for _, r := range releases {
		versions = append(versions, registry.VersionInfo{
			Version:    strings.TrimPrefix(r.GetTagName(), "jq-"),
			Prerelease: r.GetPrerelease(),
		})
	}
	return versions, nil
}

// DownloadURL looks up the matching release by tag and finds its
// per-platform asset by name, the findAsset pattern shared with
// Hadolint below.
func (j *Jq) DownloadURL(version string, p platform.Platform) (string, bool) {
	want, ok := jqAssetName(p)
	if !ok {
		return "", false
	}
	ctx := context.Background()
	releases, err := j.src.fetchReleases(ctx)
	if err != nil {
		return "", false
	}
	tag := "jq-" + version
	for _, r := range releases {
		if r.GetTagName() != tag {
			continue
		}
		return findAsset(r, want)
	}
	return "", false
}

func jqAssetName(p platform.Platform) (string, bool) {
	osName, ok := jqOSName(p.OS)
	if !ok {
		return "", false
	}
	archName, ok := jqArchName(p.Arch)
	if !ok {
		return "", false
	}
	ext := ""
	if p.OS == platform.Windows {
		ext = ".exe"
	}
	return fmt.Sprintf("jq-%s-%s%s", osName, archName, ext), true
}

func jqOSName(o platform.OS) (string, bool) {
	switch o {
	case platform.Linux:
		return "linux", true
	case platform.MacOS:
		return "macos", true
	case platform.Windows:
		return "windows", true
	default:
		return "", false
	}
}

func jqArchName(a platform.Arch) (string, bool) {
	switch a {
	case platform.X86_64:
		return "amd64", true
	case platform.Aarch64:
		return "arm64", true
	default:
		return "", false
	}
}

func (j *Jq) ExecutableRelativePath(version string, p platform.Platform) string {
	if p.OS == platform.Windows {
		return "jq.exe"
	}
	return "jq"
}

func (j *Jq) VerifyInstallation(version, installPath string, p platform.Platform) (string, *registry.VerifyFailure) {
	exe := filepath.Join(installPath, j.ExecutableRelativePath(version, p))
	if _, err := os.Stat(exe); err != nil {
		return "", &registry.VerifyFailure{Errors: []string{fmt.Sprintf("jq binary not found at %s", exe)}}
	}
	return exe, nil
}
