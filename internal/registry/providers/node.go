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

// NodeJS is the node.js runtime, fed by the dist-index.json feed
// exactly as the teacher's internal/version.Resolver.ResolveNodeJS
// does, generalized here to list every version rather than just LTS.
type NodeJS struct {
	client *http.Client
}

// NewNodeJS builds the node.js provider runtime.
func NewNodeJS(client *http.Client) *NodeJS {
	if client == nil {
		client = http.DefaultClient
	}
	return &NodeJS{client: client}
}

func (n *NodeJS) Name() string            { return "node" }
func (n *NodeJS) Description() string     { return "Node.js JavaScript runtime" }
func (n *NodeJS) Aliases() []string       { return []string{"nodejs"} }
func (n *NodeJS) Ecosystem() registry.Ecosystem { return registry.EcosystemNodeJs }
func (n *NodeJS) Dependencies() []registry.Dependency { return nil }
func (n *NodeJS) SupportedPlatforms() []platform.Platform { return nil }

type nodeDistEntry struct {
	Version string      `json:"version"`
	LTS     interface{} `json:"lts"`
}

// FetchVersions downloads https://nodejs.org/dist/index.json, the same
// feed and decode shape as the teacher's ResolveNodeJS.
func (n *NodeJS) FetchVersions(ctx context.Context) ([]registry.VersionInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://nodejs.org/dist/index.json", nil)
	if err != nil {
		return nil, err
	}
	resp, err := n.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch node.js dist index: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("node.js dist index returned status %d", resp.StatusCode)
	}

	var entries []nodeDistEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("decode node.js dist index: %w", err)
	}

	versions := make([]registry.VersionInfo, 0, len(entries))
	for _, e := range entries {
		versions = append(versions, registry.VersionInfo{
			Version: trimV(e.Version),
			LTS:     e.LTS != nil && e.LTS != false,
		})
	}
	return versions, nil
}

// DownloadURL builds the per-platform tarball URL node.js publishes
// for every release, e.g.
// https://nodejs.org/dist/v20.10.0/node-v20.10.0-linux-x64.tar.gz.
func (n *NodeJS) DownloadURL(version string, p platform.Platform) (string, bool) {
	osName, ok := nodeOSName(p.OS)
	if !ok {
		return "", false
	}
	archName, ok := nodeArchName(p.Arch)
	if !ok {
		return "", false
	}
	if p.OS == platform.Windows {
		return fmt.Sprintf("https://nodejs.org/dist/v%s/node-v%s-%s-%s.zip", version, version, osName, archName), true
	}
	return fmt.Sprintf("https://nodejs.org/dist/v%s/node-v%s-%s-%s.tar.gz", version, version, osName, archName), true
}

func nodeOSName(o platform.OS) (string, bool) {
	switch o {
	case platform.Linux:
		return "linux", true
	case platform.MacOS:
		return "darwin", true
	case platform.Windows:
		return "win", true
	default:
		return "", false
	}
}

func nodeArchName(a platform.Arch) (string, bool) {
	switch a {
	case platform.X86_64:
		return "x64", true
	case platform.Aarch64:
		return "arm64", true
	case platform.Armv7:
		return "armv7l", true
	default:
		return "", false
	}
}

func (n *NodeJS) ExecutableRelativePath(version string, p platform.Platform) string {
	if p.OS == platform.Windows {
		return "node.exe"
	}
	return filepath.Join("bin", "node")
}

func (n *NodeJS) VerifyInstallation(version, installPath string, p platform.Platform) (string, *registry.VerifyFailure) {
	exe := filepath.Join(installPath, n.ExecutableRelativePath(version, p))
	if _, err := os.Stat(exe); err != nil {
		return "", &registry.VerifyFailure{
			Errors:      []string{fmt.Sprintf("node executable not found at %s", exe)},
			Suggestions: []string{"reinstall with 'vx install node --force'"},
		}
	}
	return exe, nil
}

// Npm is bundled inside every node.js install tree, per node's own
// distribution layout (lib/node_modules/npm/bin/npm-cli.js plus a thin
// bin/npm launcher shim).
type Npm struct{}

func NewNpm() *Npm { return &Npm{} }

func (npm *Npm) Name() string                     { return "npm" }
func (npm *Npm) Description() string              { return "npm package manager, bundled with node.js" }
func (npm *Npm) Aliases() []string                { return nil }
func (npm *Npm) Ecosystem() registry.Ecosystem    { return registry.EcosystemNodeJs }
func (npm *Npm) Dependencies() []registry.Dependency {
	return []registry.Dependency{{Name: "node", Reason: "npm ships inside node's install tree"}}
}
func (npm *Npm) SupportedPlatforms() []platform.Platform { return nil }
func (npm *Npm) FetchVersions(context.Context) ([]registry.VersionInfo, error) {
	return nil, fmt.Errorf("npm's version always mirrors its parent node install; it has no independent version feed")
}
func (npm *Npm) DownloadURL(version string, p platform.Platform) (string, bool) { return "", false }
func (npm *Npm) ExecutableRelativePath(version string, p platform.Platform) string {
	if p.OS == platform.Windows {
		return "npm.cmd"
	}
	return filepath.Join("bin", "npm")
}
func (npm *Npm) VerifyInstallation(version, installPath string, p platform.Platform) (string, *registry.VerifyFailure) {
	exe := filepath.Join(installPath, npm.ExecutableRelativePath(version, p))
	if _, err := os.Stat(exe); err != nil {
		return "", &registry.VerifyFailure{Errors: []string{fmt.Sprintf("npm shim not found at %s", exe)}}
	}
	return exe, nil
}
func (npm *Npm) BundledIn() string { return "node" }

// Npx is npm's task-runner sibling, bundled the same way.
type Npx struct{}

func NewNpx() *Npx { return &Npx{} }

func (npx *Npx) Name() string                  { return "npx" }
func (npx *Npx) Description() string           { return "npx package runner, bundled with node.js" }
func (npx *Npx) Aliases() []string             { return nil }
func (npx *Npx) Ecosystem() registry.Ecosystem { return registry.EcosystemNodeJs }
func (npx *Npx) Dependencies() []registry.Dependency {
	return []registry.Dependency{{Name: "node", Reason: "npx ships inside node's install tree"}}
}
func (npx *Npx) SupportedPlatforms() []platform.Platform { return nil }
func (npx *Npx) FetchVersions(context.Context) ([]registry.VersionInfo, error) {
	return nil, fmt.Errorf("npx's version always mirrors its parent node install; it has no independent version feed")
}
func (npx *Npx) DownloadURL(version string, p platform.Platform) (string, bool) { return "", false }
func (npx *Npx) ExecutableRelativePath(version string, p platform.Platform) string {
	if p.OS == platform.Windows {
		return "npx.cmd"
	}
	return filepath.Join("bin", "npx")
}
func (npx *Npx) VerifyInstallation(version, installPath string, p platform.Platform) (string, *registry.VerifyFailure) {
	exe := filepath.Join(installPath, npx.ExecutableRelativePath(version, p))
	if _, err := os.Stat(exe); err != nil {
		return "", &registry.VerifyFailure{Errors: []string{fmt.Sprintf("npx shim not found at %s", exe)}}
	}
	return exe, nil
}
func (npx *Npx) BundledIn() string { return "node" }
