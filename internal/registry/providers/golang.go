package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/tsukumogami/vx/internal/platform"
	"github.com/tsukumogami/vx/internal/registry"
)

// Go is the Go toolchain, fed by go.dev's version feed
// (https://go.dev/dl/?mode=json), the same "ecosystem dist-index JSON"
// shape the teacher's ResolveNodeJS uses for node.js.
type Go struct {
	client *http.Client
}

func NewGo(client *http.Client) *Go {
	if client == nil {
		client = http.DefaultClient
	}
	return &Go{client: client}
}

func (g *Go) Name() string                         { return "go" }
func (g *Go) Description() string                  { return "Go programming language toolchain" }
func (g *Go) Aliases() []string                     { return []string{"golang"} }
func (g *Go) Ecosystem() registry.Ecosystem         { return registry.EcosystemGo }
func (g *Go) Dependencies() []registry.Dependency   { return nil }
func (g *Go) SupportedPlatforms() []platform.Platform { return nil }

type goDistEntry struct {
	Version string `json:"version"`
	Stable  bool   `json:"stable"`
}

func (g *Go) FetchVersions(ctx context.Context) ([]registry.VersionInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://go.dev/dl/?mode=json&include=all", nil)
	if err != nil {
		return nil, err
	}
	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch go.dev version feed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("go.dev version feed returned status %d", resp.StatusCode)
	}

	var entries []goDistEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("decode go.dev version feed: %w", err)
	}

	versions := make([]registry.VersionInfo, 0, len(entries))
	for _, e := range entries {
		versions = append(versions, registry.VersionInfo{
			Version:    e.Version[2:], // entries are named "go1.22.0"
			Prerelease: !e.Stable,
		})
	}
	return versions, nil
}

// DownloadURL builds the per-platform archive URL, e.g.
// https://go.dev/dl/go1.22.0.linux-amd64.tar.gz.
func (g *Go) DownloadURL(version string, p platform.Platform) (string, bool) {
	osName, ok := goOSName(p.OS)
	if !ok {
		return "", false
	}
	archName, ok := goArchName(p.Arch)
	if !ok {
		return "", false
	}
	ext := "tar.gz"
	if p.OS == platform.Windows {
		ext = "zip"
	}
	return fmt.Sprintf("https://go.dev/dl/go%s.%s-%s.%s", version, osName, archName, ext), true
}

func goOSName(o platform.OS) (string, bool) {
	switch o {
	case platform.Linux:
		return "linux", true
	case platform.MacOS:
		return "darwin", true
	case platform.Windows:
		return "windows", true
	case platform.FreeBSD:
		return "freebsd", true
	default:
		return "", false
	}
}

func goArchName(a platform.Arch) (string, bool) {
	switch a {
	case platform.X86_64:
		return "amd64", true
	case platform.Aarch64:
		return "arm64", true
	case platform.Armv7:
		return "armv6l", true
	case platform.PowerPC64LE:
		return "ppc64le", true
	case platform.S390X:
		return "s390x", true
	default:
		return "", false
	}
}

func (g *Go) ExecutableRelativePath(version string, p platform.Platform) string {
	if p.OS == platform.Windows {
		return filepath.Join("go", "bin", "go.exe")
	}
	return filepath.Join("go", "bin", "go")
}

func (g *Go) VerifyInstallation(version, installPath string, p platform.Platform) (string, *registry.VerifyFailure) {
	exe := filepath.Join(installPath, g.ExecutableRelativePath(version, p))
	if _, err := os.Stat(exe); err != nil {
		return "", &registry.VerifyFailure{Errors: []string{fmt.Sprintf("go executable not found at %s", exe)}}
	}
	return exe, nil
}

// Gofmt is bundled inside every Go toolchain install, at go/bin/gofmt.
type Gofmt struct{}

func NewGofmt() *Gofmt { return &Gofmt{} }

func (f *Gofmt) Name() string                  { return "gofmt" }
func (f *Gofmt) Description() string           { return "Go source formatter, bundled with the Go toolchain" }
func (f *Gofmt) Aliases() []string              { return nil }
func (f *Gofmt) Ecosystem() registry.Ecosystem { return registry.EcosystemGo }
func (f *Gofmt) Dependencies() []registry.Dependency {
	return []registry.Dependency{{Name: "go", Reason: "gofmt ships inside the go toolchain's install tree"}}
}
func (f *Gofmt) SupportedPlatforms() []platform.Platform { return nil }
func (f *Gofmt) FetchVersions(context.Context) ([]registry.VersionInfo, error) {
	return nil, fmt.Errorf("gofmt's version always mirrors its parent go install; it has no independent version feed")
}
func (f *Gofmt) DownloadURL(version string, p platform.Platform) (string, bool) { return "", false }
func (f *Gofmt) ExecutableRelativePath(version string, p platform.Platform) string {
	if p.OS == platform.Windows {
		return filepath.Join("go", "bin", "gofmt.exe")
	}
	return filepath.Join("go", "bin", "gofmt")
}
func (f *Gofmt) VerifyInstallation(version, installPath string, p platform.Platform) (string, *registry.VerifyFailure) {
	exe := filepath.Join(installPath, f.ExecutableRelativePath(version, p))
	if _, err := os.Stat(exe); err != nil {
		return "", &registry.VerifyFailure{Errors: []string{fmt.Sprintf("gofmt not found at %s", exe)}}
	}
	return exe, nil
}
func (f *Gofmt) BundledIn() string { return "go" }
