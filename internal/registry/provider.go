package registry

// Provider is a factory that contributes one or more Runtime
// definitions to the Registry. Providers are registered explicitly at
// construction time by the caller (CLI main, or a test harness) rather
// than through package-level init() registration, so a Registry's
// contents are always fully determined by what was passed to New.
type Provider interface {
	Name() string
	Description() string
	// Supports reports whether this provider can answer for the given
	// canonical runtime name.
	Supports(name string) bool
	// Runtimes returns every runtime this provider contributes.
	Runtimes() []Runtime
	// GetRuntime looks up a single runtime by canonical name.
	GetRuntime(name string) (Runtime, bool)
}

// StaticProvider is a Provider backed by a fixed runtime list, the
// common case for a provider built from hand-written Runtime values
// rather than a dynamic backend.
type StaticProvider struct {
	name        string
	description string
	runtimes    map[string]Runtime
}

// NewStaticProvider builds a Provider from a fixed set of runtimes.
func NewStaticProvider(name, description string, runtimes ...Runtime) *StaticProvider {
	m := make(map[string]Runtime, len(runtimes))
	for _, r := range runtimes {
		m[r.Name()] = r
	}
	return &StaticProvider{name: name, description: description, runtimes: m}
}

func (p *StaticProvider) Name() string        { return p.name }
func (p *StaticProvider) Description() string { return p.description }

func (p *StaticProvider) Supports(name string) bool {
	_, ok := p.runtimes[name]
	return ok
}

func (p *StaticProvider) Runtimes() []Runtime {
	out := make([]Runtime, 0, len(p.runtimes))
	for _, r := range p.runtimes {
		out = append(out, r)
	}
	return out
}

func (p *StaticProvider) GetRuntime(name string) (Runtime, bool) {
	r, ok := p.runtimes[name]
	return r, ok
}
