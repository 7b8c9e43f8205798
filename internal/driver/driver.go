// Package driver wires the resolve/ensure/prepare/execute stages from
// spec §4 into the single entry point the CLI calls, grounded on the
// teacher's internal/executor orchestration style (a plan built once,
// then carried unchanged through each later step).
package driver

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tsukumogami/vx/internal/execpath"
	"github.com/tsukumogami/vx/internal/installer"
	"github.com/tsukumogami/vx/internal/installer/lifecycle"
	"github.com/tsukumogami/vx/internal/log"
	"github.com/tsukumogami/vx/internal/pipeline"
	"github.com/tsukumogami/vx/internal/platform"
	"github.com/tsukumogami/vx/internal/registry"
	"github.com/tsukumogami/vx/internal/resolver"
	"github.com/tsukumogami/vx/internal/shim"
	"github.com/tsukumogami/vx/internal/store"
)

// maxWindowsPathEnvLength is the Windows environment-block limit; a
// constructed PATH at or beyond it can't be handed to CreateProcess.
const maxWindowsPathEnvLength = 32767

// lifecycleSource is implemented by registry providers that declare
// lifecycle hooks alongside their download/verify behavior. Not every
// Runtime needs one, so it's an optional capability interface in the
// same style as registry.BundledRuntime and registry.PackageInstallable.
type lifecycleSource interface {
	LifecycleHooks() lifecycle.Hooks
}

// Driver runs the four pipeline stages against a registry, install
// store, lockfile, and exec-path cache that the caller has already
// loaded (see cmd/vx for the standard wiring).
type Driver struct {
	reg       *registry.Registry
	res       *resolver.Resolver
	st        *store.Store
	lock      *store.LockFile
	execCache *execpath.Cache
	inst      *installer.Installer
	plat      platform.Platform
	logger    log.Logger
}

// New builds a Driver from its already-constructed collaborators.
func New(reg *registry.Registry, res *resolver.Resolver, st *store.Store, lock *store.LockFile, execCache *execpath.Cache, inst *installer.Installer, plat platform.Platform, logger log.Logger) *Driver {
	if logger == nil {
		logger = log.NewNoop()
	}
	return &Driver{reg: reg, res: res, st: st, lock: lock, execCache: execCache, inst: inst, plat: plat, logger: logger}
}

// Run executes all four stages in order and returns the exit code the
// calling process should itself exit with.
func (d *Driver) Run(ctx context.Context, req pipeline.ResolveRequest, cfg pipeline.ExecutionConfig) (int, error) {
	plan, err := d.resolveStage(ctx, req)
	if err != nil {
		return 0, err
	}
	plan.Config = cfg
	plan.Config.WorkingDir = req.Cwd

	if err := d.ensureStage(ctx, plan); err != nil {
		return 0, err
	}

	prepared, err := d.prepareStage(plan)
	if err != nil {
		return 0, err
	}

	return d.executeStage(ctx, plan.Primary.Name, plan.Primary.Version(), prepared)
}

// Install runs only the Resolve and Ensure stages, for `vx install`:
// the caller wants the tool downloaded and verified, not executed.
func (d *Driver) Install(ctx context.Context, req pipeline.ResolveRequest, cfg pipeline.ExecutionConfig) (*pipeline.ExecutionPlan, error) {
	plan, err := d.resolveStage(ctx, req)
	if err != nil {
		return nil, err
	}
	plan.Config = cfg
	plan.Config.WorkingDir = req.Cwd

	if err := d.ensureStage(ctx, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// resolveStage is Stage 1, delegated entirely to internal/resolver.
func (d *Driver) resolveStage(ctx context.Context, req pipeline.ResolveRequest) (*pipeline.ExecutionPlan, error) {
	plan, err := d.res.Resolve(ctx, req)
	if err != nil {
		return nil, &pipeline.PipelineError{Stage: pipeline.StageResolve, Runtime: req.RuntimeName, Version: req.Version, Err: err}
	}
	return plan, nil
}

// ensureStage is Stage 2: every required runtime (dependencies then
// primary, already topologically ordered by the resolver) must end up
// Installed. Unsupported required runtimes fail the stage; unsupported
// or failed injected runtimes only log a warning and are dropped from
// the plan, per spec §4.1.
func (d *Driver) ensureStage(ctx context.Context, plan *pipeline.ExecutionPlan) error {
	if plan.Config.Force {
		plan.Primary.ResetForReinstall()
	}

	required := plan.AllRequired()

	var missing []string
	for _, p := range required {
		if p.IsUnsupported() {
			return &pipeline.PipelineError{Stage: pipeline.StageEnsure, Runtime: p.Name, Err: &pipeline.ErrUnsupportedRequired{Runtime: p.Name, Reason: p.UnsupportedReason()}}
		}
		if p.IsNeedsInstall() {
			missing = append(missing, p.Name)
		}
	}
	if len(missing) > 0 && !plan.Config.AutoInstall {
		return &pipeline.PipelineError{Stage: pipeline.StageEnsure, Err: &pipeline.ErrAutoInstallDisabled{Missing: missing}}
	}

	for _, p := range required {
		if !p.IsNeedsInstall() {
			continue
		}
		if err := d.installOne(ctx, p, plan, required); err != nil {
			return &pipeline.PipelineError{Stage: pipeline.StageEnsure, Runtime: p.Name, Version: p.Version(), Err: err}
		}
	}

	kept := plan.Injected[:0]
	for _, p := range plan.Injected {
		if p.IsUnsupported() {
			d.logger.Warn("skipping injected tool, unsupported on this platform", "tool", p.Name, "reason", p.UnsupportedReason())
			continue
		}
		if p.IsInstalled() {
			kept = append(kept, p)
			continue
		}
		cp := p
		if err := d.installOne(ctx, &cp, plan, required); err != nil {
			d.logger.Warn("skipping injected tool, install failed", "tool", p.Name, "error", err)
			continue
		}
		kept = append(kept, cp)
	}
	plan.Injected = kept

	return nil
}

// installOne installs a single NeedsInstall entry, handling the
// bundled-runtime case (no separate download: the entry resolves
// inside its parent's already-installed tree) and otherwise running
// the full download/extract/verify flow, updating the lockfile and
// invalidating the exec-path cache on success.
func (d *Driver) installOne(ctx context.Context, p *pipeline.PlannedRuntime, plan *pipeline.ExecutionPlan, required []*pipeline.PlannedRuntime) error {
	rt, ok := d.reg.Resolve(p.Name)
	if !ok {
		return &pipeline.ErrUnknownRuntime{Name: p.Name}
	}

	if bundled, ok := rt.(registry.BundledRuntime); ok {
		return d.installBundled(p, bundled, required)
	}

	unlock, err := d.st.Lock(p.Name, p.Version())
	if err != nil {
		return err
	}
	defer unlock()

	installDir, err := d.st.PrepareInstallDir(p.Name, p.Version())
	if err != nil {
		return err
	}

	downloadURL, ok := rt.DownloadURL(p.Version(), d.plat)
	if !ok {
		os.RemoveAll(installDir)
		return &pipeline.ErrUnsupportedRequired{Runtime: p.Name, Reason: "no download available for " + d.plat.String()}
	}

	var hooks lifecycle.Hooks
	if ls, ok := rt.(lifecycleSource); ok {
		hooks = ls.LifecycleHooks()
	}

	icfg := installer.InstallConfig{
		ToolName:    p.Name,
		Version:     p.Version(),
		InstallDir:  installDir,
		DownloadURL: downloadURL,
		Method:      installMethodFor(downloadURL),
		Hooks:       hooks,
		Force:       plan.Config.Force,
	}
	if archiveFormat, ok := detectArchiveFormat(downloadURL); ok {
		icfg.ArchiveFormat = archiveFormat
	}

	result, err := d.inst.Install(ctx, icfg, runtimeVerifier{rt: rt}, installerPlatform(d.plat), nil)
	if err != nil {
		return err
	}

	p.MarkInstalledWithVersion(result.Version, result.ExecutablePath)

	if d.lock != nil {
		deps := dependencyNames(rt)
		d.lock.SetTool(p.Name, store.LockedTool{
			Version:      result.Version,
			Source:       string(rt.Ecosystem()),
			ResolvedFrom: "resolve",
			InstalledAt:  timePtr(),
		}, deps)
		if err := d.lock.Save(); err != nil {
			d.logger.Warn("failed to persist lockfile after install", "tool", p.Name, "error", err)
		}
	}
	if d.execCache != nil {
		if err := d.execCache.InvalidateRuntime(installDir); err != nil {
			d.logger.Warn("failed to invalidate exec-path cache", "tool", p.Name, "error", err)
		}
	}
	return nil
}

func (d *Driver) installBundled(p *pipeline.PlannedRuntime, bundled registry.BundledRuntime, required []*pipeline.PlannedRuntime) error {
	parentName := bundled.BundledIn()
	var parentVersion string
	for _, r := range required {
		if r.Name == parentName {
			parentVersion = r.Version()
			break
		}
	}
	if parentVersion == "" {
		return fmt.Errorf("bundled runtime %s requires parent %s to be in the plan", p.Name, parentName)
	}
	installDir := d.st.InstallDir(parentName, parentVersion)
	execPath := filepath.Join(installDir, bundled.ExecutableRelativePath(parentVersion, d.plat))
	if _, err := os.Stat(execPath); err != nil {
		return fmt.Errorf("bundled executable for %s not found at %s: %w", p.Name, execPath, err)
	}
	p.MarkInstalledWithVersion(parentVersion, execPath)
	return nil
}

// prepareStage is Stage 3: validate every resolved executable exists
// and build the PATH the primary process should see, with dependency
// and injected-tool bin directories prepended in topological order.
func (d *Driver) prepareStage(plan *pipeline.ExecutionPlan) (*pipeline.PreparedExecution, error) {
	for _, p := range plan.AllRequired() {
		if p.Executable() == "" {
			return nil, &pipeline.PipelineError{Stage: pipeline.StagePrepare, Runtime: p.Name, Err: &pipeline.ErrNoExecutable{Runtime: p.Name}}
		}
		if _, err := os.Stat(p.Executable()); err != nil {
			return nil, &pipeline.PipelineError{Stage: pipeline.StagePrepare, Runtime: p.Name, Err: &pipeline.ErrNoExecutable{Runtime: p.Name, Path: p.Executable()}}
		}
	}

	var binDirs []string
	for _, dep := range plan.Dependencies {
		binDirs = append(binDirs, filepath.Dir(dep.Executable()))
	}
	binDirs = append(binDirs, filepath.Dir(plan.Primary.Executable()))
	for _, inj := range plan.Injected {
		if inj.IsInstalled() {
			binDirs = append(binDirs, filepath.Dir(inj.Executable()))
		}
	}

	env := buildEnv(plan.Config.Env)
	pathValue := strings.Join(binDirs, string(os.PathListSeparator))
	if plan.Config.UseSystemPath {
		if existing := os.Getenv("PATH"); existing != "" {
			if pathValue != "" {
				pathValue = pathValue + string(os.PathListSeparator) + existing
			} else {
				pathValue = existing
			}
		}
	}
	env = append(env, "PATH="+pathValue)

	if d.plat.OS == platform.Windows && len(pathValue) >= maxWindowsPathEnvLength {
		return nil, &pipeline.PipelineError{Stage: pipeline.StagePrepare, Err: &pipeline.ErrPathTooLong{Length: len(pathValue)}}
	}

	executable := plan.Primary.Executable()
	if plan.Config.UseSystemPath {
		executable = filepath.Base(plan.Primary.Executable())
	}

	return &pipeline.PreparedExecution{
		Executable: executable,
		Args:       plan.Args,
		Env:        env,
		WorkingDir: plan.Config.WorkingDir,
		ShimPolicy: pipeline.ShimPolicy{
			ForwardSignals: !plan.Config.CaptureOutput,
			CaptureOutput:  plan.Config.CaptureOutput,
			Timeout:        plan.Config.Timeout,
		},
	}, nil
}

// executeStage is Stage 4: spawn the resolved executable through the
// shim launcher and propagate its exit code.
func (d *Driver) executeStage(ctx context.Context, name, version string, prepared *pipeline.PreparedExecution) (int, error) {
	mode := shim.ModeForkExec
	if prepared.ShimPolicy.CaptureOutput {
		mode = shim.ModeSimpleSpawn
	}
	req := shim.LaunchRequest{
		Executable: prepared.Executable,
		Args:       prepared.Args,
		Env:        prepared.Env,
		WorkingDir: prepared.WorkingDir,
		Mode:       mode,
		Timeout:    prepared.ShimPolicy.Timeout,
	}
	result, err := shim.Launch(ctx, req)
	if err != nil {
		return 0, &pipeline.PipelineError{Stage: pipeline.StageExecute, Runtime: name, Version: version, Err: &pipeline.ErrSpawnFailed{Executable: prepared.Executable, Err: err}}
	}
	return result.ExitCode, nil
}

func buildEnv(overrides map[string]string) []string {
	base := os.Environ()
	env := make([]string, 0, len(base)+len(overrides))
	for _, kv := range base {
		if strings.HasPrefix(kv, "PATH=") {
			continue
		}
		env = append(env, kv)
	}
	for k, v := range overrides {
		env = append(env, k+"="+v)
	}
	return env
}

func dependencyNames(rt registry.Runtime) []string {
	deps := rt.Dependencies()
	if len(deps) == 0 {
		return nil
	}
	names := make([]string, len(deps))
	for i, d := range deps {
		names[i] = d.Name
	}
	return names
}

func installMethodFor(downloadURL string) installer.Method {
	if _, ok := detectArchiveFormat(downloadURL); ok {
		return installer.MethodArchive
	}
	return installer.MethodBinary
}

func timePtr() *time.Time {
	now := time.Now()
	return &now
}
