package driver

import (
	"net/url"
	"path"

	"github.com/tsukumogami/vx/internal/installer"
	"github.com/tsukumogami/vx/internal/installer/archive"
	"github.com/tsukumogami/vx/internal/platform"
	"github.com/tsukumogami/vx/internal/registry"
)

// detectArchiveFormat inspects a download URL's filename to decide
// whether it names a supported archive, reusing internal/installer/archive's
// extension table instead of duplicating it.
func detectArchiveFormat(downloadURL string) (archive.Format, bool) {
	u, err := url.Parse(downloadURL)
	if err != nil {
		return archive.DetectFormat(downloadURL)
	}
	return archive.DetectFormat(path.Base(u.Path))
}

// installerPlatform narrows a platform.Platform down to installer.Platform's
// shape, crossing the package boundary the installer keeps deliberately
// free of a registry/platform import (see installer.Verifier's doc comment).
func installerPlatform(p platform.Platform) installer.Platform {
	return installer.Platform{OS: string(p.OS), Arch: string(p.Arch), Libc: string(p.Libc)}
}

// runtimeVerifier adapts registry.Runtime.VerifyInstallation to
// installer.Verifier.
type runtimeVerifier struct {
	rt registry.Runtime
}

func (v runtimeVerifier) VerifyInstallation(version, installPath string, p installer.Platform) (string, []string, []string) {
	plat := platform.Platform{OS: platform.OS(p.OS), Arch: platform.Arch(p.Arch), Libc: platform.Libc(p.Libc)}
	execPath, failure := v.rt.VerifyInstallation(version, installPath, plat)
	if failure == nil {
		return execPath, nil, nil
	}
	return execPath, failure.Errors, failure.Suggestions
}
