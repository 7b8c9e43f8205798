// Package pipeline defines the data that flows between the four
// execution stages (Resolve, Ensure, Prepare, Execute). The
// orchestrator that runs them in order is internal/driver.
package pipeline

import "time"

// ResolveRequest is what the CLI hands to Stage 1.
type ResolveRequest struct {
	RuntimeName string
	Version     string // "" means "use lockfile/config/latest"
	Args        []string
	Cwd         string
}

// ExecutionConfig carries the behavior flags threaded through the
// pipeline.
type ExecutionConfig struct {
	AutoInstall   bool
	UseSystemPath bool
	CaptureOutput bool
	Force         bool // reinstall even if already present, per `vx install --force`
	Timeout       time.Duration // zero means no timeout
	Env           map[string]string
	WorkingDir    string
}

// plannedState is the internal discriminant for PlannedRuntime; callers
// use the IsInstalled/IsNeedsInstall/IsUnsupported predicates rather
// than inspecting this directly, matching Go's idiom for what the spec
// models as a tagged union.
type plannedState int

const (
	stateNeedsInstall plannedState = iota
	stateInstalled
	stateUnsupported
)

// PlannedRuntime is one entry in an ExecutionPlan. Exactly one of the
// Is* predicates is true at any time; NeedsInstall transitions to
// Installed exactly once via MarkInstalledWithVersion.
type PlannedRuntime struct {
	Name    string
	state   plannedState
	version string // resolved, concrete version (no "latest", no range)
	exePath string // valid only when state == stateInstalled
	reason  string // valid only when state == stateUnsupported
}

// NewNeedsInstall builds a PlannedRuntime awaiting installation at the
// given fully-resolved version.
func NewNeedsInstall(name, version string) PlannedRuntime {
	return PlannedRuntime{Name: name, state: stateNeedsInstall, version: version}
}

// NewInstalled builds a PlannedRuntime that is already present in the
// install store.
func NewInstalled(name, version, exePath string) PlannedRuntime {
	return PlannedRuntime{Name: name, state: stateInstalled, version: version, exePath: exePath}
}

// NewUnsupported builds a PlannedRuntime for a runtime/platform
// combination the runtime itself has declared it cannot install.
func NewUnsupported(name, reason string) PlannedRuntime {
	return PlannedRuntime{Name: name, state: stateUnsupported, reason: reason}
}

func (p PlannedRuntime) IsInstalled() bool     { return p.state == stateInstalled }
func (p PlannedRuntime) IsNeedsInstall() bool  { return p.state == stateNeedsInstall }
func (p PlannedRuntime) IsUnsupported() bool   { return p.state == stateUnsupported }
func (p PlannedRuntime) Version() string       { return p.version }
func (p PlannedRuntime) Executable() string    { return p.exePath }
func (p PlannedRuntime) UnsupportedReason() string { return p.reason }

// ResetForReinstall transitions an Installed entry back to NeedsInstall,
// for `vx install --force`: the tool is present but the caller wants it
// downloaded again regardless.
func (p *PlannedRuntime) ResetForReinstall() {
	if p.state != stateInstalled {
		return
	}
	p.state = stateNeedsInstall
	p.exePath = ""
}

// MarkInstalledWithVersion performs the one-shot NeedsInstall ->
// Installed transition, stamping both the installer-returned executable
// path and the final resolved version. Calling it on an entry that is
// not NeedsInstall is a programmer error, reported via panic rather
// than a silent no-op, since a second call would violate the
// monotonicity invariant the spec calls out explicitly.
func (p *PlannedRuntime) MarkInstalledWithVersion(version, exePath string) {
	if p.state != stateNeedsInstall {
		panic("pipeline: MarkInstalledWithVersion called on a runtime that is not NeedsInstall: " + p.Name)
	}
	p.state = stateInstalled
	p.version = version
	p.exePath = exePath
}

// ExecutionPlan is Stage 1's output: a primary runtime, its transitive
// dependencies (leaves first), any config-injected extra runtimes, and
// the behavior flags to carry through the rest of the pipeline.
type ExecutionPlan struct {
	Primary      PlannedRuntime
	Dependencies []PlannedRuntime
	Injected     []PlannedRuntime
	Config       ExecutionConfig
	Args         []string
}

// AllRequired returns Dependencies followed by Primary — the set whose
// Unsupported status must fail the Ensure stage, as opposed to Injected
// entries which merely warn.
func (p *ExecutionPlan) AllRequired() []*PlannedRuntime {
	out := make([]*PlannedRuntime, 0, len(p.Dependencies)+1)
	for i := range p.Dependencies {
		out = append(out, &p.Dependencies[i])
	}
	out = append(out, &p.Primary)
	return out
}

// PreparedExecution is Stage 3's output, ready for Stage 4 to spawn.
type PreparedExecution struct {
	Executable string
	Args       []string
	Env        []string // "KEY=VALUE" pairs, ready for exec
	WorkingDir string
	ShimPolicy ShimPolicy
}

// ShimPolicy controls how Stage 4 manages process signals and output
// capture around the child process (see §4.6).
type ShimPolicy struct {
	ForwardSignals bool
	CaptureOutput  bool
	Timeout        time.Duration
}
