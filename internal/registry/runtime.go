// Package registry holds the process-wide-shaped (but explicitly
// constructed, never a package singleton — see DESIGN.md) catalog of
// runtimes the driver knows how to resolve and install, plus the
// dependency graph between them.
package registry

import (
	"context"
	"time"

	"github.com/tsukumogami/vx/internal/platform"
)

// Ecosystem classifies a runtime's language world. Used by the resolver
// to pick a package-install pathway and by the CLI to group output.
type Ecosystem string

const (
	EcosystemNodeJs Ecosystem = "nodejs"
	EcosystemPython Ecosystem = "python"
	EcosystemRust   Ecosystem = "rust"
	EcosystemGo     Ecosystem = "go"
	EcosystemSystem Ecosystem = "system"
)

// CustomEcosystem builds a Custom(s) ecosystem tag for runtimes that
// don't fit one of the named language worlds (e.g. "kubernetes", "media").
func CustomEcosystem(s string) Ecosystem { return Ecosystem("custom:" + s) }

// VersionInfo describes one version a provider knows about. The
// resolver treats a runtime's full version list as an unordered bag and
// does its own sorting/filtering.
type VersionInfo struct {
	Version     string
	ReleasedAt  *time.Time
	Prerelease  bool
	LTS         bool
	DownloadURL string
	Checksum    string
	Metadata    map[string]string
}

// Dependency declares a runtime's dependency on another runtime, with
// optional version constraints. A version v is "compatible" iff it lies
// in [Min, Max] when those bounds are non-empty.
type Dependency struct {
	Name        string
	Optional    bool
	Min         string
	Max         string
	Recommended string
	Reason      string
}

// Runtime is the capability set every installable tool implements.
// Concrete runtimes are dispatched by the registry as interface values
// (Go's idiom-translation of the spec's trait-object plugin hierarchy —
// see DESIGN.md "sealed polymorphism").
type Runtime interface {
	// Name is the stable, lowercase canonical identity.
	Name() string
	Description() string
	// Aliases lists alternate names that resolve to this runtime
	// (e.g. "nodejs" for "node").
	Aliases() []string
	Ecosystem() Ecosystem
	// Dependencies lists other runtimes this one requires, with
	// optional version constraints.
	Dependencies() []Dependency
	// SupportedPlatforms lists the platforms this runtime can install
	// on. An empty slice means "all platforms".
	SupportedPlatforms() []platform.Platform

	// FetchVersions enumerates known versions. May hit the network;
	// the resolver caches the result (see internal/fsutil.VersionCache).
	FetchVersions(ctx context.Context) ([]VersionInfo, error)

	// DownloadURL returns the download location for (version, platform).
	// A nil/false return means "no direct download on this platform" —
	// the caller must fail the install fast, per the invariant in
	// spec §3 ("Runtime"): if DownloadURL returns ok for (v, p),
	// the runtime MUST accept install at that version/platform.
	DownloadURL(version string, p platform.Platform) (url string, ok bool)

	// ExecutableRelativePath is a pure function from (version, platform)
	// to the executable's path relative to its install root. The store
	// never scans the filesystem to find a binary.
	ExecutableRelativePath(version string, p platform.Platform) string

	// VerifyInstallation confirms an install tree is usable and returns
	// the absolute path to the main executable, or a structured failure.
	VerifyInstallation(version, installPath string, p platform.Platform) (execPath string, err *VerifyFailure)
}

// VerifyFailure is the structured failure VerifyInstallation returns.
type VerifyFailure struct {
	Errors      []string
	Suggestions []string
}

func (f *VerifyFailure) Error() string {
	if len(f.Errors) == 0 {
		return "installation verification failed"
	}
	return f.Errors[0]
}

// BundledIn, when non-empty, names the parent runtime whose install tree
// this runtime shares (e.g. "npm" is BundledIn "node"). A bundled
// runtime's ExecutableRelativePath resolves inside the parent's tree and
// its version always mirrors the parent's; the installer never creates a
// separate install directory for it.
type BundledRuntime interface {
	Runtime
	BundledIn() string
}

// PackageInstallable is implemented by runtimes that install via an
// upstream language-ecosystem package manager instead of a direct
// download (spec §4.2 "Package-manager-installed tools").
type PackageInstallable interface {
	Runtime
	PackageEcosystem() string
	PackageName() string
	RequiredRuntime() string
	RequiredRuntimeVersion() string // optional constraint, "" means any
}
