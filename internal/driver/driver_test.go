package driver

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsukumogami/vx/internal/execpath"
	"github.com/tsukumogami/vx/internal/installer"
	"github.com/tsukumogami/vx/internal/log"
	"github.com/tsukumogami/vx/internal/pipeline"
	"github.com/tsukumogami/vx/internal/platform"
	"github.com/tsukumogami/vx/internal/projectconfig"
	"github.com/tsukumogami/vx/internal/registry"
	"github.com/tsukumogami/vx/internal/resolver"
	"github.com/tsukumogami/vx/internal/store"
	"github.com/tsukumogami/vx/internal/vxconfig"
)

// fakeRuntime is a self-contained registry.Runtime backed by an
// in-process HTTP server serving a tiny tar.gz, so Ensure exercises a
// real download-extract-verify round trip without touching the network.
type fakeRuntime struct {
	name     string
	deps     []registry.Dependency
	versions []registry.VersionInfo
	srv      *httptest.Server
	unsup    bool
}

func newFakeRuntime(t *testing.T, name string, deps ...registry.Dependency) *fakeRuntime {
	t.Helper()
	dir := t.TempDir()
	archivePath := filepath.Join(dir, name+".tar.gz")
	f, err := os.Create(archivePath)
	require.NoError(t, err)
	gzw := gzip.NewWriter(f)
	tw := tar.NewWriter(gzw)
	content := "#!/bin/sh\necho " + name + "\n"
	require.NoError(t, tw.WriteHeader(&tar.Header{Name: "bin/" + name, Mode: 0o755, Size: int64(len(content))}))
	_, err = tw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, tw.Close())
	require.NoError(t, gzw.Close())
	require.NoError(t, f.Close())

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, archivePath)
	}))
	t.Cleanup(srv.Close)

	return &fakeRuntime{
		name:     name,
		deps:     deps,
		versions: []registry.VersionInfo{{Version: "1.0.0"}},
		srv:      srv,
	}
}

func (f *fakeRuntime) Name() string                        { return f.name }
func (f *fakeRuntime) Description() string                 { return f.name }
func (f *fakeRuntime) Aliases() []string                   { return nil }
func (f *fakeRuntime) Ecosystem() registry.Ecosystem        { return registry.EcosystemSystem }
func (f *fakeRuntime) Dependencies() []registry.Dependency  { return f.deps }
func (f *fakeRuntime) FetchVersions(context.Context) ([]registry.VersionInfo, error) {
	return f.versions, nil
}
func (f *fakeRuntime) DownloadURL(version string, p platform.Platform) (string, bool) {
	return f.srv.URL + "/" + f.name + ".tar.gz", true
}
func (f *fakeRuntime) ExecutableRelativePath(version string, p platform.Platform) string {
	return filepath.Join("bin", f.name)
}
func (f *fakeRuntime) VerifyInstallation(version, installPath string, p platform.Platform) (string, *registry.VerifyFailure) {
	execPath := filepath.Join(installPath, "bin", f.name)
	if _, err := os.Stat(execPath); err != nil {
		return "", &registry.VerifyFailure{Errors: []string{"missing executable"}}
	}
	return execPath, nil
}
func (f *fakeRuntime) SupportedPlatforms() []platform.Platform {
	if f.unsup {
		return []platform.Platform{{OS: "nonexistent-os"}}
	}
	return nil
}

func newTestDriver(t *testing.T, runtimes ...registry.Runtime) (*Driver, *vxconfig.Config) {
	t.Helper()
	base := t.TempDir()
	cfg := &vxconfig.Config{
		BaseDir:   base,
		ToolsDir:  filepath.Join(base, "tools"),
		CacheDir:  filepath.Join(base, "cache"),
		ShimsDir:  filepath.Join(base, "shims"),
		ConfigDir: base,
		LockDir:   filepath.Join(base, "lock"),
		LogsDir:   filepath.Join(base, "logs"),
		TmpDir:    filepath.Join(base, "tmp"),
	}

	reg := registry.New(log.NewNoop())
	reg.Register(registry.NewStaticProvider("test", "test provider", runtimes...))

	st := store.New(cfg)
	lock := store.NewLockFile(cfg.LockFilePath())
	plat := platform.Platform{OS: platform.Linux, Arch: platform.X86_64, Libc: platform.Glibc}

	res := resolver.New(reg, st, lock, &projectconfig.Config{}, plat, "linux", pipeline.ExecutionConfig{AutoInstall: true})
	execCache, err := execpath.Load(cfg.ExecPathCacheFile())
	require.NoError(t, err)
	inst := installer.New(http.DefaultClient, log.NewNoop())

	d := New(reg, res, st, lock, execCache, inst, plat, log.NewNoop())
	return d, cfg
}

func TestRunInstallsAndExecutesPrimary(t *testing.T) {
	node := newFakeRuntime(t, "node")
	d, _ := newTestDriver(t, node)

	exitCode, err := d.Run(context.Background(), pipeline.ResolveRequest{RuntimeName: "node", Version: "1.0.0", Args: nil}, pipeline.ExecutionConfig{AutoInstall: true})
	require.NoError(t, err)
	assert.Equal(t, 0, exitCode)
}

func TestRunExpandsAndInstallsDependenciesFirst(t *testing.T) {
	node := newFakeRuntime(t, "node")
	npm := newFakeRuntime(t, "npm", registry.Dependency{Name: "node"})
	d, cfg := newTestDriver(t, node, npm)

	exitCode, err := d.Run(context.Background(), pipeline.ResolveRequest{RuntimeName: "npm", Version: "1.0.0"}, pipeline.ExecutionConfig{AutoInstall: true})
	require.NoError(t, err)
	assert.Equal(t, 0, exitCode)

	_, err = os.Stat(filepath.Join(cfg.ToolsDir, "node", "1.0.0", "bin", "node"))
	assert.NoError(t, err, "dependency must be installed before the primary runs")
	_, err = os.Stat(filepath.Join(cfg.ToolsDir, "npm", "1.0.0", "bin", "npm"))
	assert.NoError(t, err)
}

func TestRunAutoInstallDisabledReportsAllMissing(t *testing.T) {
	node := newFakeRuntime(t, "node")
	npm := newFakeRuntime(t, "npm", registry.Dependency{Name: "node"})
	d, _ := newTestDriver(t, node, npm)

	_, err := d.Run(context.Background(), pipeline.ResolveRequest{RuntimeName: "npm", Version: "1.0.0"}, pipeline.ExecutionConfig{AutoInstall: false})
	require.Error(t, err)

	var pipeErr *pipeline.PipelineError
	require.ErrorAs(t, err, &pipeErr)
	assert.Equal(t, pipeline.StageEnsure, pipeErr.Stage)
	var missingErr *pipeline.ErrAutoInstallDisabled
	require.ErrorAs(t, err, &missingErr)
	assert.ElementsMatch(t, []string{"node", "npm"}, missingErr.Missing)
}

func TestRunUnsupportedPrimaryFailsEnsure(t *testing.T) {
	tool := newFakeRuntime(t, "fake-tool")
	tool.unsup = true
	d, _ := newTestDriver(t, tool)

	_, err := d.Run(context.Background(), pipeline.ResolveRequest{RuntimeName: "fake-tool", Version: "1.0.0"}, pipeline.ExecutionConfig{AutoInstall: true})
	require.Error(t, err)
	var unsupErr *pipeline.ErrUnsupportedRequired
	require.ErrorAs(t, err, &unsupErr)
}

func TestRunSecondInvocationSkipsReinstall(t *testing.T) {
	node := newFakeRuntime(t, "node")
	d, _ := newTestDriver(t, node)

	_, err := d.Run(context.Background(), pipeline.ResolveRequest{RuntimeName: "node", Version: "1.0.0"}, pipeline.ExecutionConfig{AutoInstall: true})
	require.NoError(t, err)

	exitCode, err := d.Run(context.Background(), pipeline.ResolveRequest{RuntimeName: "node", Version: "1.0.0"}, pipeline.ExecutionConfig{AutoInstall: false})
	require.NoError(t, err)
	assert.Equal(t, 0, exitCode)
}
