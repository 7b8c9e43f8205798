package providers

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tsukumogami/vx/internal/platform"
	"github.com/tsukumogami/vx/internal/registry"
)

// Git demonstrates the "no direct download on this platform" branch of
// the Runtime contract: on Linux, distributions expect git from the
// system package manager, so DownloadURL returns ok=false there and the
// driver must fail the install fast rather than guess at a tarball.
// macOS returns ok=false as well; only Windows has a download.
type Git struct{}

func NewGit() *Git { return &Git{} }

func (g *Git) Name() string                         { return "git" }
func (g *Git) Description() string                  { return "Git version control system" }
func (g *Git) Aliases() []string                    { return nil }
func (g *Git) Ecosystem() registry.Ecosystem        { return registry.EcosystemSystem }
func (g *Git) Dependencies() []registry.Dependency  { return nil }
func (g *Git) SupportedPlatforms() []platform.Platform { return nil }

func (g *Git) FetchVersions(ctx context.Context) ([]registry.VersionInfo, error) {
	return nil, fmt.Errorf("git has no direct-download version feed; install it via your system package manager")
}

// DownloadURL only resolves on Windows, where git-scm.com publishes a
// standalone portable archive. Elsewhere it returns false: Linux users
// get git from their distro, macOS users from Xcode Command Line Tools
// or Homebrew.
func (g *Git) DownloadURL(version string, p platform.Platform) (string, bool) {
	if p.OS != platform.Windows {
		return "", false
	}
	archName, ok := gitWindowsArch(p.Arch)
	if !ok {
		return "", false
	}
	return fmt.Sprintf("https://github.com/git-for-windows/git/releases/download/v%s.windows.1/PortableGit-%s-%s.7z.exe", version, version, archName), true
}

func gitWindowsArch(a platform.Arch) (string, bool) {
	switch a {
	case platform.X86_64:
		return "64-bit", true
	case platform.Aarch64:
		return "arm64", true
	default:
		return "", false
	}
}

func (g *Git) ExecutableRelativePath(version string, p platform.Platform) string {
	if p.OS == platform.Windows {
		return filepath.Join("bin", "git.exe")
	}
	return filepath.Join("bin", "git")
}

func (g *Git) VerifyInstallation(version, installPath string, p platform.Platform) (string, *registry.VerifyFailure) {
	exe := filepath.Join(installPath, g.ExecutableRelativePath(version, p))
	if _, err := os.Stat(exe); err != nil {
		return "", &registry.VerifyFailure{
			Errors:      []string{fmt.Sprintf("git executable not found at %s", exe)},
			Suggestions: []string{"on Linux, install git through your distro's package manager instead"},
		}
	}
	return exe, nil
}
