package registry

import (
	"fmt"

	"github.com/tsukumogami/vx/internal/log"
)

// Registry is the explicit, constructor-injected catalog of runtimes and
// their dependency graph. It is never a package-level singleton (see
// DESIGN.md "ambient global registries"): callers build one with New and
// pass it into the resolver/pipeline.
type Registry struct {
	logger    log.Logger
	providers []Provider
	runtimes  map[string]Runtime // canonical name -> runtime
	aliases   map[string]string  // alias -> canonical name
}

// New creates an empty Registry.
func New(logger log.Logger) *Registry {
	if logger == nil {
		logger = log.NewNoop()
	}
	return &Registry{
		logger:   logger,
		runtimes: make(map[string]Runtime),
		aliases:  make(map[string]string),
	}
}

// Register adds a provider's runtimes to the catalog. When two
// providers register the same canonical name, the later registration
// wins and a warning is logged (this design's tie-break for spec §9's
// open question; see DESIGN.md).
func (r *Registry) Register(p Provider) {
	r.providers = append(r.providers, p)
	for _, rt := range p.Runtimes() {
		name := rt.Name()
		if _, ok := r.runtimes[name]; ok {
			r.logger.Warn("duplicate runtime registration, last registration wins",
				"runtime", name, "new_provider", p.Name())
		}
		r.runtimes[name] = rt
		for _, alias := range rt.Aliases() {
			r.aliases[alias] = name
		}
	}
}

// Resolve canonicalizes a runtime name through the alias table, then
// looks it up. Lookup is case-sensitive on the canonical name.
func (r *Registry) Resolve(name string) (Runtime, bool) {
	if canonical, ok := r.aliases[name]; ok {
		name = canonical
	}
	rt, ok := r.runtimes[name]
	return rt, ok
}

// Canonicalize resolves an alias to its canonical runtime name without
// fetching the Runtime value. Returns the input unchanged if it is
// already canonical or unknown.
func (r *Registry) Canonicalize(name string) string {
	if canonical, ok := r.aliases[name]; ok {
		return canonical
	}
	return name
}

// All returns every registered runtime, keyed by canonical name.
func (r *Registry) All() map[string]Runtime {
	out := make(map[string]Runtime, len(r.runtimes))
	for k, v := range r.runtimes {
		out[k] = v
	}
	return out
}

// ErrUnknownRuntime is returned by InstallOrder (and by the resolver)
// when a name doesn't canonicalize to any registered runtime.
type ErrUnknownRuntime struct{ Name string }

func (e *ErrUnknownRuntime) Error() string {
	return fmt.Sprintf("unknown runtime %q", e.Name)
}

// ErrDependencyCycle is returned when the dependency graph contains a
// back-edge. Cycles are a registration-time programmer error, not a
// runtime condition — the driver should refuse to start rather than
// loop forever expanding dependencies.
type ErrDependencyCycle struct{ Path []string }

func (e *ErrDependencyCycle) Error() string {
	return fmt.Sprintf("dependency cycle detected: %v", e.Path)
}

// InstallOrder returns a topological ordering of target's transitive
// dependencies with target last (leaves first, consumers after).
func (r *Registry) InstallOrder(target string) ([]string, error) {
	canonical := r.Canonicalize(target)
	if _, ok := r.runtimes[canonical]; !ok {
		return nil, &ErrUnknownRuntime{Name: target}
	}

	var order []string
	visited := make(map[string]bool) // fully processed
	visiting := make(map[string]bool) // on the current DFS stack

	var visit func(name string, path []string) error
	visit = func(name string, path []string) error {
		if visited[name] {
			return nil
		}
		if visiting[name] {
			return &ErrDependencyCycle{Path: append(append([]string{}, path...), name)}
		}
		visiting[name] = true
		defer delete(visiting, name)

		rt, ok := r.runtimes[name]
		if !ok {
			return &ErrUnknownRuntime{Name: name}
		}
		for _, dep := range rt.Dependencies() {
			depName := r.Canonicalize(dep.Name)
			if err := visit(depName, append(path, name)); err != nil {
				return err
			}
		}
		visited[name] = true
		order = append(order, name)
		return nil
	}

	if err := visit(canonical, nil); err != nil {
		return nil, err
	}
	return order, nil
}

// ValidateNoCycles walks every registered runtime's dependency graph and
// fails registration-time (rather than first-resolve-time) if any cycle
// exists. Callers typically invoke this once after all providers have
// been registered.
func (r *Registry) ValidateNoCycles() error {
	for name := range r.runtimes {
		if _, err := r.InstallOrder(name); err != nil {
			if cyc, ok := err.(*ErrDependencyCycle); ok {
				return cyc
			}
		}
	}
	return nil
}
