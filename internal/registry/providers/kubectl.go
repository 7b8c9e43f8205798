package providers

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tsukumogami/vx/internal/platform"
	"github.com/tsukumogami/vx/internal/registry"
)

// Kubectl is the Kubernetes CLI, fed by kubernetes/kubernetes's GitHub
// releases. Unlike node/go, kubectl ships one bare binary per platform
// rather than an archive, so DownloadURL points straight at the asset.
type Kubectl struct {
	src githubReleaseSource
}

func NewKubectl() *Kubectl {
	return &Kubectl{src: newGitHubReleaseSource("kubernetes", "kubernetes")}
}

func (k *Kubectl) Name() string                         { return "kubectl" }
func (k *Kubectl) Description() string                  { return "Kubernetes command-line tool" }
func (k *Kubectl) Aliases() []string                    { return nil }
func (k *Kubectl) Ecosystem() registry.Ecosystem        { return registry.EcosystemSystem }
func (k *Kubectl) Dependencies() []registry.Dependency  { return nil }
func (k *Kubectl) SupportedPlatforms() []platform.Platform { return nil }

func (k *Kubectl) FetchVersions(ctx context.Context) ([]registry.VersionInfo, error) {
	releases, err := k.src.fetchReleases(ctx)
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

// DownloadURL uses the dl.k8s.io binary mirror, which kubectl's own
// install docs point to directly rather than GitHub release assets
// (kubernetes/kubernetes releases don't attach a kubectl binary).
func (k *Kubectl) DownloadURL(version string, p platform.Platform) (string, bool) {
	osName, ok := kubectlOSName(p.OS)
	if !ok {
		return "", false
	}
	archName, ok := kubectlArchName(p.Arch)
	if !ok {
		return "", false
	}
	ext := ""
	if p.OS == platform.Windows {
		ext = ".exe"
	}
	return fmt.Sprintf("https://dl.k8s.io/release/v%s/bin/%s/%s/kubectl%s", version, osName, archName, ext), true
}

func kubectlOSName(o platform.OS) (string, bool) {
	switch o {
	case platform.Linux:
		return "linux", true
	case platform.MacOS:
		return "darwin", true
	case platform.Windows:
		return "windows", true
	default:
		return "", false
	}
}

func kubectlArchName(a platform.Arch) (string, bool) {
	switch a {
	case platform.X86_64:
		return "amd64", true
	case platform.Aarch64:
		return "arm64", true
	default:
		return "", false
	}
}

func (k *Kubectl) ExecutableRelativePath(version string, p platform.Platform) string {
	if p.OS == platform.Windows {
		return "kubectl.exe"
	}
	return "kubectl"
}

func (k *Kubectl) VerifyInstallation(version, installPath string, p platform.Platform) (string, *registry.VerifyFailure) {
	exe := filepath.Join(installPath, k.ExecutableRelativePath(version, p))
	if _, err := os.Stat(exe); err != nil {
		return "", &registry.VerifyFailure{Errors: []string{fmt.Sprintf("kubectl binary not found at %s", exe)}}
	}
	return exe, nil
}
