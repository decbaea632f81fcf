package container

import (
	"fmt"

	"github.com/km-arc/goboot/framework/config"
)

// Well-known keys bound by Init.
const (
	SelfKey    = "container"
	ConfigKey  = "config"
	EnvironKey = "environ"
)

// ── Scanning contract ─────────────────────────────────────────────────────────

// Source is a named unit of code whose members are scanned for components.
type Source interface {
	Name() string
	Members() []any
}

// Scope controls how often a component's factory runs.
type Scope string

const (
	// ScopeSingleton builds once per container (the default).
	ScopeSingleton Scope = "singleton"
	// ScopePrototype builds on every resolution.
	ScopePrototype Scope = "prototype"
)

// Component is a declarative registration exported by a module.
type Component struct {
	Key     string
	Factory Factory
	Scope   Scope

	// Profiles restricts the component to containers started with at least
	// one of these profiles. Empty means always active.
	Profiles []string

	// Lazy singletons are not built during Init.
	Lazy bool

	// DependsOn lists keys the factory resolves; checked during validation.
	DependsOn []string

	Tags []string
}

func (comp *Component) singleton() bool {
	return comp.Scope == "" || comp.Scope == ScopeSingleton
}

func (comp *Component) activeIn(profiles map[string]bool) bool {
	if len(comp.Profiles) == 0 {
		return true
	}
	for _, p := range comp.Profiles {
		if profiles[p] {
			return true
		}
	}
	return false
}

// Scanner turns module members that are not Components or ServiceProviders
// into Components. Scanners are consulted in order; the first whose
// ShouldScan accepts a member and whose Scan yields a component wins.
type Scanner interface {
	ShouldScan(member any) bool
	Scan(member any) (*Component, bool)
}

// ScannerFunc adapts a function to Scanner; it accepts every member.
type ScannerFunc func(member any) (*Component, bool)

func (f ScannerFunc) ShouldScan(any) bool                { return true }
func (f ScannerFunc) Scan(member any) (*Component, bool) { return f(member) }

// Observer follows a container's lifecycle.
type Observer interface {
	OnResolve(key string, instance any)
	OnShutdown(containerID string)
}

// ── Init ──────────────────────────────────────────────────────────────────────

// Options is the full argument set of Init.
type Options struct {
	// Modules are scanned in order; later registrations of a key replace
	// earlier ones.
	Modules []Source

	// CustomScanners extend component discovery beyond declared Components.
	CustomScanners []Scanner

	// Profiles activates profile-restricted components.
	Profiles []string

	// Overrides replaces bindings after scanning, mostly for tests.
	Overrides map[string]any

	Observers []Observer

	// Config is bound under ConfigKey when non-nil.
	Config *config.Config

	// Environ is bound under EnvironKey when non-nil.
	Environ map[string]string

	// ContainerID replaces the generated container id.
	ContainerID string

	// ValidateOnly registers and validates everything but neither boots
	// providers nor builds eager singletons.
	ValidateOnly bool
}

// Init builds a container from opts.
//
//	c, err := container.Init(container.Options{Modules: mods, Profiles: []string{"prod"}})
func Init(opts Options) (*Container, error) {
	c := New()
	if opts.ContainerID != "" {
		c.id = opts.ContainerID
	}
	if opts.Config != nil {
		c.Instance(ConfigKey, opts.Config)
	}
	if opts.Environ != nil {
		c.Instance(EnvironKey, opts.Environ)
	}
	for _, o := range opts.Observers {
		c.Observe(o)
	}

	active := make(map[string]bool, len(opts.Profiles))
	for _, p := range opts.Profiles {
		active[p] = true
	}

	providers := NewProviderRegistry(c)
	var comps []*Component
	for _, src := range opts.Modules {
		for _, member := range src.Members() {
			switch m := member.(type) {
			case *Component:
				if m.activeIn(active) {
					comps = append(comps, m)
				}
			case ServiceProvider:
				providers.Register(m)
			default:
				if comp, ok := scan(opts.CustomScanners, m); ok && comp.activeIn(active) {
					comps = append(comps, comp)
				}
			}
		}
	}

	for _, comp := range comps {
		if err := c.register(comp); err != nil {
			return nil, err
		}
	}
	for k, v := range opts.Overrides {
		c.Instance(k, v)
	}

	if err := c.validate(comps); err != nil {
		return nil, err
	}
	if opts.ValidateOnly {
		return c, nil
	}

	providers.Boot()
	for _, comp := range comps {
		if !comp.singleton() || comp.Lazy {
			continue
		}
		if _, err := c.Get(comp.Key); err != nil {
			return nil, fmt.Errorf("container: build %q: %w", comp.Key, err)
		}
	}
	return c, nil
}

func scan(scanners []Scanner, member any) (*Component, bool) {
	for _, s := range scanners {
		if !s.ShouldScan(member) {
			continue
		}
		if comp, ok := s.Scan(member); ok && comp != nil {
			return comp, true
		}
	}
	return nil, false
}

// Register binds a single component, honouring its scope and tags.
func (c *Container) Register(comp *Component) error {
	return c.register(comp)
}

func (c *Container) register(comp *Component) error {
	if comp.Key == "" || comp.Factory == nil {
		return fmt.Errorf("%w: key %q", ErrInvalidComponent, comp.Key)
	}
	if comp.singleton() {
		c.Singleton(comp.Key, comp.Factory)
	} else {
		c.Bind(comp.Key, comp.Factory)
	}
	for _, tag := range comp.Tags {
		c.Tag([]string{comp.Key}, tag)
	}
	return nil
}

// validate checks that every declared dependency is bound and that the
// declared dependency graph is acyclic.
func (c *Container) validate(comps []*Component) error {
	deps := make(map[string][]string, len(comps))
	order := make([]string, 0, len(comps))
	for _, comp := range comps {
		if _, seen := deps[comp.Key]; !seen {
			order = append(order, comp.Key)
		}
		deps[comp.Key] = comp.DependsOn
		for _, d := range comp.DependsOn {
			if !c.Bound(d) {
				return MissingDependencyError{Component: comp.Key, Dependency: d}
			}
		}
	}

	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int, len(deps))
	var path []string
	var visit func(k string) error
	visit = func(k string) error {
		switch state[k] {
		case done:
			return nil
		case visiting:
			start := 0
			for i, p := range path {
				if p == k {
					start = i
					break
				}
			}
			cycle := append(append([]string(nil), path[start:]...), k)
			return CircularDependencyError{Path: cycle}
		}
		state[k] = visiting
		path = append(path, k)
		for _, d := range deps[k] {
			if err := visit(d); err != nil {
				return err
			}
		}
		path = path[:len(path)-1]
		state[k] = done
		return nil
	}
	for _, k := range order {
		if err := visit(k); err != nil {
			return err
		}
	}
	return nil
}
