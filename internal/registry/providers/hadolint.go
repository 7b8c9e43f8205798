package providers

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tsukumogami/vx/internal/platform"
	"github.com/tsukumogami/vx/internal/registry"
)

// Hadolint is the Dockerfile linter, fed by hadolint/hadolint's GitHub
// releases, mirroring Jq's findAsset lookup.
type Hadolint struct {
	src githubReleaseSource
}

func NewHadolint() *Hadolint {
	return &Hadolint{src: newGitHubReleaseSource("hadolint", "hadolint")}
}

func (h *Hadolint) Name() string                         { return "hadolint" }
func (h *Hadolint) Description() string                  { return "Dockerfile linter" }
func (h *Hadolint) Aliases() []string                    { return nil }
func (h *Hadolint) Ecosystem() registry.Ecosystem        { return registry.EcosystemSystem }
func (h *Hadolint) Dependencies() []registry.Dependency  { return nil }
func (h *Hadolint) SupportedPlatforms() []platform.Platform { return nil }

func (h *Hadolint) FetchVersions(ctx context.Context) ([]registry.VersionInfo, error) {
	releases, err := h.src.fetchReleases(ctx)
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

func (h *Hadolint) DownloadURL(version string, p platform.Platform) (string, bool) {
	want, ok := hadolintAssetName(p)
	if !ok {
		return "", false
	}
	releases, err := h.src.fetchReleases(context.Background())
	if err != nil {
		return "", false
	}
	tag := "v" + version
	for _, r := range releases {
		if r.GetTagName() != tag {
			continue
		}
		return findAsset(r, want)
	}
	return "", false
}

func hadolintAssetName(p platform.Platform) (string, bool) {
	osName, ok := hadolintOSName(p.OS)
	if !ok {
		return "", false
	}
	archName, ok := hadolintArchName(p.Arch)
	if !ok {
		return "", false
	}
	ext := ""
	if p.OS == platform.Windows {
		ext = ".exe"
	}
	return fmt.Sprintf("hadolint-%s-%s%s", osName, archName, ext), true
}

func hadolintOSName(o platform.OS) (string, bool) {
	switch o {
	case platform.Linux:
		return "Linux", true
	case platform.MacOS:
		return "Darwin", true
	case platform.Windows:
		return "Windows", true
	default:
		return "", false
	}
}

func hadolintArchName(a platform.Arch) (string, bool) {
	switch a {
	case platform.X86_64:
		return "x86_64", true
	case platform.Aarch64:
		return "arm64", true
	default:
		return "", false
	}
}

func (h *Hadolint) ExecutableRelativePath(version string, p platform.Platform) string {
	if p.OS == platform.Windows {
		return "hadolint.exe"
	}
	return "hadolint"
}

func (h *Hadolint) VerifyInstallation(version, installPath string, p platform.Platform) (string, *registry.VerifyFailure) {
	exe := filepath.Join(installPath, h.ExecutableRelativePath(version, p))
	if _, err := os.Stat(exe); err != nil {
		return "", &registry.VerifyFailure{Errors: []string{fmt.Sprintf("hadolint binary not found at %s", exe)}}
	}
	return exe, nil
}
