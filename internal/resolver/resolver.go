// Package resolver implements the five-step resolve algorithm from
// spec §4.3: canonicalize, determine version, check platform support,
// expand dependencies, and produce an ExecutionPlan.
package resolver

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/tsukumogami/vx/internal/fsutil"
	"github.com/tsukumogami/vx/internal/pipeline"
	"github.com/tsukumogami/vx/internal/platform"
	"github.com/tsukumogami/vx/internal/projectconfig"
	"github.com/tsukumogami/vx/internal/registry"
	"github.com/tsukumogami/vx/internal/store"
)

// Resolver ties the registry, lockfile, project config, and install
// store together to turn a ResolveRequest into an ExecutionPlan.
type Resolver struct {
	reg       *registry.Registry
	st        *store.Store
	lock      *store.LockFile
	project   *projectconfig.Config
	plat      platform.Platform
	goos      string // current OS name for ToolSpec.SupportsOS, injected for testability
	autoBuild pipeline.ExecutionConfig
	versions  *fsutil.VersionCache // nil disables caching (e.g. in tests)
}

// New builds a Resolver. goos is the value used against
// projectconfig.ToolSpec.SupportsOS (normally runtime.GOOS, passed in
// explicitly so tests can simulate other platforms).
func New(reg *registry.Registry, st *store.Store, lock *store.LockFile, project *projectconfig.Config, plat platform.Platform, goos string, cfg pipeline.ExecutionConfig) *Resolver {
	return &Resolver{reg: reg, st: st, lock: lock, project: project, plat: plat, goos: goos, autoBuild: cfg}
}

// WithVersionCache attaches a fetch_versions cache (spec §3's "must be
// cacheable" requirement), keyed per runtime under cache/versions/. Call
// before Resolve; an unattached cache fetches fresh every time.
func (r *Resolver) WithVersionCache(cacheDir string, ttl time.Duration) {
	r.versions = fsutil.NewVersionCache(cacheDir, ttl)
}

// fetchVersions fetches rt's version list, consulting and populating
// the version cache when one is attached.
func (r *Resolver) fetchVersions(ctx context.Context, rt registry.Runtime) ([]registry.VersionInfo, error) {
	if r.versions != nil {
		if cached, ok := r.versions.Get(rt.Name()); ok {
			return cached, nil
		}
	}
	versions, err := rt.FetchVersions(ctx)
	if err != nil {
		return nil, err
	}
	if r.versions != nil {
		// Best-effort: a failed write just means the next resolve
		// fetches fresh again, same as an unattached cache.
		_ = r.versions.Put(rt.Name(), versions)
	}
	return versions, nil
}

// Resolve runs the five-step algorithm and returns an ExecutionPlan.
func (r *Resolver) Resolve(ctx context.Context, req pipeline.ResolveRequest) (*pipeline.ExecutionPlan, error) {
	canonical := r.reg.Canonicalize(req.RuntimeName)
	rt, ok := r.reg.Resolve(canonical)
	if !ok {
		return nil, &pipeline.ErrUnknownRuntime{Name: req.RuntimeName}
	}

	version, err := r.determineVersion(ctx, rt, req.Version)
	if err != nil {
		return nil, err
	}

	primary := r.planEntry(rt, version)

	order, err := r.reg.InstallOrder(canonical)
	if err != nil {
		return nil, fmt.Errorf("compute dependency order: %w", err)
	}

	var deps []pipeline.PlannedRuntime
	for _, depName := range order {
		if depName == canonical {
			continue // InstallOrder places target last; that's primary, not a dependency entry
		}
		depRt, ok := r.reg.Resolve(depName)
		if !ok {
			continue
		}
		depVersion, err := r.resolveDependencyVersion(ctx, rt, depRt, depName)
		if err != nil {
			return nil, err
		}
		deps = append(deps, r.planEntry(depRt, depVersion))
	}

	injected := r.injectedFromProjectConfig(ctx, canonical, deps)

	cfg := r.autoBuild
	cfg.WorkingDir = req.Cwd

	return &pipeline.ExecutionPlan{
		Primary:      primary,
		Dependencies: deps,
		Injected:     injected,
		Config:       cfg,
		Args:         req.Args,
	}, nil
}

// planEntry checks platform support and the install store, returning
// the appropriately-shaped PlannedRuntime for a single runtime.
func (r *Resolver) planEntry(rt registry.Runtime, version string) pipeline.PlannedRuntime {
	if !r.platformSupported(rt) {
		return pipeline.NewUnsupported(rt.Name(), fmt.Sprintf("%s does not support %s", rt.Name(), r.plat.String()))
	}
	if r.st != nil && r.st.IsInstalled(rt.Name(), version) {
		execPath := filepath.Join(r.st.InstallDir(rt.Name(), version), rt.ExecutableRelativePath(version, r.plat))
		return pipeline.NewInstalled(rt.Name(), version, execPath)
	}
	return pipeline.NewNeedsInstall(rt.Name(), version)
}

func (r *Resolver) platformSupported(rt registry.Runtime) bool {
	supported := rt.SupportedPlatforms()
	if len(supported) == 0 {
		return true // empty means "all platforms", per spec §3 Runtime
	}
	for _, p := range supported {
		if r.plat.Matches(p) {
			return true
		}
	}
	return false
}

// determineVersion implements resolve step 2 for the primary runtime:
// explicit request, then lockfile pin, then project config
// requirement, then global default/latest.
func (r *Resolver) determineVersion(ctx context.Context, rt registry.Runtime, requested string) (string, error) {
	if requested != "" {
		return requested, nil
	}
	if r.lock != nil {
		if locked, ok := r.lock.Tools[rt.Name()]; ok {
			return locked.Version, nil
		}
	}
	if r.project != nil {
		if spec, ok := r.project.Tools[rt.Name()]; ok {
			return r.resolveConstraint(ctx, rt, spec.Version)
		}
	}
	return r.latestStable(ctx, rt)
}

// resolveDependencyVersion implements resolve step 4: a lockfile pin
// satisfying min/max wins, else the declared recommended_version if
// compatible, else the highest compatible fetched version.
func (r *Resolver) resolveDependencyVersion(ctx context.Context, parent, dep registry.Runtime, depName string) (string, error) {
	var constraint registry.Dependency
	for _, d := range parent.Dependencies() {
		if d.Name == depName {
			constraint = d
			break
		}
	}

	if r.lock != nil {
		if locked, ok := r.lock.Tools[depName]; ok && satisfiesRange(locked.Version, constraint.Min, constraint.Max) {
			return locked.Version, nil
		}
	}
	if constraint.Recommended != "" && satisfiesRange(constraint.Recommended, constraint.Min, constraint.Max) {
		return constraint.Recommended, nil
	}

	versions, err := r.fetchVersions(ctx, dep)
	if err != nil {
		return "", fmt.Errorf("fetch versions for dependency %s: %w", depName, err)
	}
	best := ""
	for _, v := range versions {
		if v.Prerelease || !satisfiesRange(v.Version, constraint.Min, constraint.Max) {
			continue
		}
		if best == "" || CompareVersions(v.Version, best) > 0 {
			best = v.Version
		}
	}
	if best == "" {
		return "", &pipeline.ErrVersionNotFound{Runtime: depName, Constraint: fmt.Sprintf("[%s,%s]", constraint.Min, constraint.Max)}
	}
	return best, nil
}

// resolveConstraint resolves a project-config version spec (exact,
// range-partial, semver op, or "latest") against a runtime's fetched
// version list.
func (r *Resolver) resolveConstraint(ctx context.Context, rt registry.Runtime, spec string) (string, error) {
	if spec == "" || spec == "latest" {
		return r.latestStable(ctx, rt)
	}
	versions, err := r.fetchVersions(ctx, rt)
	if err != nil {
		return "", fmt.Errorf("fetch versions for %s: %w", rt.Name(), err)
	}
	matches := filterByConstraintSpec(versions, spec)
	if len(matches) == 0 {
		return "", &pipeline.ErrVersionNotFound{Runtime: rt.Name(), Constraint: spec}
	}
	sort.Slice(matches, func(i, j int) bool { return CompareVersions(matches[i], matches[j]) > 0 })
	return matches[0], nil
}

// latestStable implements "global config default or latest": highest
// non-prerelease version whose platform has a download_url.
func (r *Resolver) latestStable(ctx context.Context, rt registry.Runtime) (string, error) {
	versions, err := r.fetchVersions(ctx, rt)
	if err != nil {
		return "", fmt.Errorf("fetch versions for %s: %w", rt.Name(), err)
	}
	best := ""
	for _, v := range versions {
		if v.Prerelease {
			continue
		}
		if _, ok := rt.DownloadURL(v.Version, r.plat); !ok {
			continue
		}
		if best == "" || CompareVersions(v.Version, best) > 0 {
			best = v.Version
		}
	}
	if best == "" {
		return "", &pipeline.ErrVersionNotFound{Runtime: rt.Name(), Constraint: "latest"}
	}
	return best, nil
}

// injectedFromProjectConfig plans any project-config-pinned tools the
// user didn't explicitly request and that aren't already part of the
// primary's dependency chain. A platform-unsupported injected tool is
// still planned (as Unsupported) so Ensure can log-and-skip it, but its
// versions are never fetched, per the S3 scenario invariant.
func (r *Resolver) injectedFromProjectConfig(ctx context.Context, primaryName string, deps []pipeline.PlannedRuntime) []pipeline.PlannedRuntime {
	if r.project == nil {
		return nil
	}
	already := map[string]bool{primaryName: true}
	for _, d := range deps {
		already[d.Name] = true
	}

	var injected []pipeline.PlannedRuntime
	for name, spec := range r.project.Tools {
		canonical := r.reg.Canonicalize(name)
		if already[canonical] {
			continue
		}
		rt, ok := r.reg.Resolve(canonical)
		if !ok {
			continue
		}
		if !spec.SupportsOS(r.goos) {
			injected = append(injected, pipeline.NewUnsupported(canonical, fmt.Sprintf("excluded by project config os filter for %s", r.goos)))
			continue
		}
		version, err := r.resolveConstraint(ctx, rt, spec.Version)
		if err != nil {
			injected = append(injected, pipeline.NewUnsupported(canonical, err.Error()))
			continue
		}
		injected = append(injected, r.planEntry(rt, version))
	}
	return injected
}
