package main

import (
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/tsukumogami/vx/internal/driver"
	"github.com/tsukumogami/vx/internal/execpath"
	"github.com/tsukumogami/vx/internal/installer"
	"github.com/tsukumogami/vx/internal/log"
	"github.com/tsukumogami/vx/internal/pipeline"
	"github.com/tsukumogami/vx/internal/platform"
	"github.com/tsukumogami/vx/internal/projectconfig"
	"github.com/tsukumogami/vx/internal/registry"
	"github.com/tsukumogami/vx/internal/registry/providers"
	"github.com/tsukumogami/vx/internal/resolver"
	"github.com/tsukumogami/vx/internal/store"
	"github.com/tsukumogami/vx/internal/vxconfig"
)

// app bundles every collaborator a command needs. Each command's RunE
// builds its own with newApp; rootCmd's PersistentPreRun only sets up
// logging.
type app struct {
	cfg       *vxconfig.Config
	reg       *registry.Registry
	st        *store.Store
	lock      *store.LockFile
	project   *projectconfig.Config
	execCache *execpath.Cache
	drv       *driver.Driver
}

func newApp() (*app, error) {
	cfg, err := vxconfig.Load()
	if err != nil {
		return nil, fmt.Errorf("load vx config: %w", err)
	}
	reg := registry.New(log.Default())
	reg.Register(registry.NewStaticProvider("builtin", "built-in vx providers", providers.All(http.DefaultClient)...))
	if err := reg.ValidateNoCycles(); err != nil {
		return nil, fmt.Errorf("registry dependency graph: %w", err)
	}

	project, err := projectconfig.Load("vx.toml")
	if err != nil {
		return nil, fmt.Errorf("load vx.toml: %w", err)
	}

	st := store.New(cfg)

	lock, err := store.LoadLockFile(cfg.LockFilePath())
	if err != nil {
		return nil, fmt.Errorf("load lockfile: %w", err)
	}

	execCache, err := execpath.Load(cfg.ExecPathCacheFile())
	if err != nil {
		return nil, fmt.Errorf("load exec-path cache: %w", err)
	}

	plat := platform.Current()
	execCfg := pipeline.ExecutionConfig{
		AutoInstall:   project.Settings.AutoInstall,
		UseSystemPath: true,
	}
	res := resolver.New(reg, st, lock, project, plat, runtime.GOOS, execCfg)
	res.WithVersionCache(cfg.CacheDir, parseCacheDuration(project.Settings.CacheDuration))

	inst := installer.New(http.DefaultClient, log.Default())
	drv := driver.New(reg, res, st, lock, execCache, inst, plat, log.Default())

	return &app{cfg: cfg, reg: reg, st: st, lock: lock, project: project, execCache: execCache, drv: drv}, nil
}

// parseCacheDuration parses vx.toml's settings.cache_duration (e.g.
// "1h", "30m"); an empty or unparseable value returns 0, which the
// version cache replaces with fsutil.DefaultVersionCacheTTL.
func parseCacheDuration(s string) time.Duration {
	if s == "" {
		return 0
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0
	}
	return d
}

// exitCodeFor maps a pipeline error to the fixed exit-code set from
// spec §6, falling back to ExitGeneral for anything the pipeline
// itself didn't classify.
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var pe *pipeline.PipelineError
	if errors.As(err, &pe) {
		var unsupported *pipeline.ErrUnsupportedRequired
		var autoInstallOff *pipeline.ErrAutoInstallDisabled
		var noExe *pipeline.ErrNoExecutable
		var spawnFailed *pipeline.ErrSpawnFailed
		switch {
		case errors.As(pe.Err, &unsupported), errors.As(pe.Err, &autoInstallOff):
			return ExitNotFound
		case errors.As(pe.Err, &noExe):
			return ExitNotExecutable
		case errors.As(pe.Err, &spawnFailed):
			return ExitNotFound
		}
		return ExitGeneral
	}
	return ExitGeneral
}
