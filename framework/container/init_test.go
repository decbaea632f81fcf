package container_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/goboot/framework/config"
	"github.com/km-arc/goboot/framework/container"
)

// source is a minimal container.Source for tests.
type source struct {
	name    string
	members []any
}

func (s source) Name() string   { return s.name }
func (s source) Members() []any { return s.members }

type plainService struct{}

func (plainService) Value() string { return "found by scanner" }

type anotherPlain struct{}

// typeScanner registers any member that is a reflect.Type of a given name.
type typeScanner struct{ name string }

func (s typeScanner) ShouldScan(m any) bool {
	t, ok := m.(reflect.Type)
	return ok && t.Name() == s.name
}

func (s typeScanner) Scan(m any) (*container.Component, bool) {
	t := m.(reflect.Type)
	return &container.Component{
		Key:     t.Name(),
		Factory: func(*container.Container) any { return reflect.New(t).Elem().Interface() },
	}, true
}

type recordingObserver struct {
	resolved []string
	shutdown []string
}

func (o *recordingObserver) OnResolve(key string, _ any) { o.resolved = append(o.resolved, key) }
func (o *recordingObserver) OnShutdown(id string)        { o.shutdown = append(o.shutdown, id) }

func comp(key string, v any, deps ...string) *container.Component {
	return &container.Component{
		Key:       key,
		Factory:   func(*container.Container) any { return v },
		DependsOn: deps,
	}
}

// ── Init ──────────────────────────────────────────────────────────────────────

func TestInit_RegistersComponentsInModuleOrder(t *testing.T) {
	t.Parallel()

	c, err := container.Init(container.Options{
		Modules: []container.Source{
			source{name: "a", members: []any{comp("greeting", "from a"), comp("only-a", 1)}},
			source{name: "b", members: []any{comp("greeting", "from b")}},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "from b", c.Make("greeting"), "later modules replace earlier keys")
	assert.Equal(t, 1, c.Make("only-a"))
}

func TestInit_EagerSingletonsBuilt_LazyAndPrototypeNot(t *testing.T) {
	t.Parallel()

	builds := map[string]int{}
	mk := func(key string, scope container.Scope, lazy bool) *container.Component {
		return &container.Component{
			Key:   key,
			Scope: scope,
			Lazy:  lazy,
			Factory: func(*container.Container) any {
				builds[key]++
				return key
			},
		}
	}

	c, err := container.Init(container.Options{
		Modules: []container.Source{source{name: "m", members: []any{
			mk("eager", "", false),
			mk("lazy", container.ScopeSingleton, true),
			mk("proto", container.ScopePrototype, false),
		}}},
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]int{"eager": 1}, builds)
	assert.True(t, c.Resolved("eager"))
	assert.False(t, c.Resolved("lazy"))

	c.Make("proto")
	c.Make("proto")
	assert.Equal(t, 2, builds["proto"])
}

func TestInit_ScannerDiscoversMembers(t *testing.T) {
	t.Parallel()

	mods := []container.Source{
		source{name: "scanner_mod", members: []any{reflect.TypeFor[plainService]()}},
	}

	c, err := container.Init(container.Options{Modules: mods, CustomScanners: []container.Scanner{typeScanner{name: "plainService"}}})
	require.NoError(t, err)
	require.True(t, c.Has("plainService"))
	assert.Equal(t, "found by scanner", c.Make("plainService").(plainService).Value())

	without, err := container.Init(container.Options{Modules: mods})
	require.NoError(t, err)
	assert.False(t, without.Has("plainService"))
}

func TestInit_FirstMatchingScannerWins(t *testing.T) {
	t.Parallel()

	first := container.ScannerFunc(func(m any) (*container.Component, bool) {
		if m != "x" {
			return nil, false
		}
		return comp("x", "first"), true
	})
	second := container.ScannerFunc(func(m any) (*container.Component, bool) {
		return comp("x", "second"), true
	})

	c, err := container.Init(container.Options{
		Modules:        []container.Source{source{name: "m", members: []any{"x", "y"}}},
		CustomScanners: []container.Scanner{typeScanner{name: "anotherPlain"}, first, second},
	})
	require.NoError(t, err)
	assert.Equal(t, "second", c.Make("x"), `"y" falls through to the second scanner and rebinds x`)
}

func TestInit_ServiceProviderMembers(t *testing.T) {
	t.Parallel()

	p := &eagerProvider{}
	c, err := container.Init(container.Options{
		Modules: []container.Source{source{name: "m", members: []any{p}}},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, p.registerCalls)
	assert.True(t, p.bootCalled)
	assert.Equal(t, "eager", c.Make("eager-svc"))
}

func TestInit_Profiles(t *testing.T) {
	t.Parallel()

	prodOnly := comp("store", "postgres")
	prodOnly.Profiles = []string{"prod"}
	testOnly := comp("store", "memory")
	testOnly.Profiles = []string{"test"}
	mods := []container.Source{source{name: "m", members: []any{prodOnly, testOnly}}}

	c, err := container.Init(container.Options{Modules: mods, Profiles: []string{"test"}})
	require.NoError(t, err)
	assert.Equal(t, "memory", c.Make("store"))

	none, err := container.Init(container.Options{Modules: mods})
	require.NoError(t, err)
	assert.False(t, none.Has("store"))
}

func TestInit_OverridesReplaceAndSatisfyDependencies(t *testing.T) {
	t.Parallel()

	svc := &container.Component{
		Key:       "service",
		DependsOn: []string{"repo"},
		Factory: func(c *container.Container) any {
			return "service using " + container.Resolve[string](c, "repo")
		},
	}

	c, err := container.Init(container.Options{
		Modules:   []container.Source{source{name: "m", members: []any{comp("repo", "real"), svc}}},
		Overrides: map[string]any{"repo": "fake"},
	})
	require.NoError(t, err)
	assert.Equal(t, "service using fake", c.Make("service"))
}

func TestInit_MissingDependency(t *testing.T) {
	t.Parallel()

	_, err := container.Init(container.Options{
		Modules: []container.Source{source{name: "m", members: []any{comp("service", 1, "repo")}}},
	})

	var md container.MissingDependencyError
	require.ErrorAs(t, err, &md)
	assert.Equal(t, container.MissingDependencyError{Component: "service", Dependency: "repo"}, md)
}

func TestInit_CircularDependency(t *testing.T) {
	t.Parallel()

	_, err := container.Init(container.Options{
		Modules: []container.Source{source{name: "m", members: []any{
			comp("a", 1, "b"),
			comp("b", 2, "c"),
			comp("c", 3, "a"),
		}}},
	})

	var cd container.CircularDependencyError
	require.ErrorAs(t, err, &cd)
	assert.Equal(t, []string{"a", "b", "c", "a"}, cd.Path)
	assert.Contains(t, err.Error(), `"a" -> "b" -> "c" -> "a"`)
}

func TestInit_InvalidComponent(t *testing.T) {
	t.Parallel()

	_, err := container.Init(container.Options{
		Modules: []container.Source{source{name: "m", members: []any{&container.Component{Key: "nofactory"}}}},
	})
	assert.ErrorIs(t, err, container.ErrInvalidComponent)
}

func TestInit_EagerBuildFailure(t *testing.T) {
	t.Parallel()

	bad := &container.Component{Key: "bad", Factory: func(*container.Container) any { panic("nope") }}
	_, err := container.Init(container.Options{
		Modules: []container.Source{source{name: "m", members: []any{bad}}},
	})
	require.ErrorIs(t, err, container.ErrFactoryPanic)
	assert.Contains(t, err.Error(), `build "bad"`)
}

func TestInit_ValidateOnly(t *testing.T) {
	t.Parallel()

	p := &eagerProvider{}
	built := false
	eager := &container.Component{Key: "eager", Factory: func(*container.Container) any {
		built = true
		return 1
	}}

	c, err := container.Init(container.Options{
		Modules:      []container.Source{source{name: "m", members: []any{p, eager}}},
		ValidateOnly: true,
	})
	require.NoError(t, err)
	assert.False(t, built)
	assert.False(t, p.bootCalled)
	assert.True(t, c.Bound("eager"))
}

func TestInit_PassThroughOptions(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{App: config.AppConfig{Name: "demo"}}
	obs := &recordingObserver{}

	c, err := container.Init(container.Options{
		Modules:     []container.Source{source{name: "m", members: []any{comp("x", 1)}}},
		Config:      cfg,
		Environ:     map[string]string{"K": "V"},
		ContainerID: "test-container",
		Observers:   []container.Observer{obs},
	})
	require.NoError(t, err)

	assert.Equal(t, "test-container", c.ID())
	assert.Same(t, cfg, c.Make(container.ConfigKey))
	assert.Equal(t, map[string]string{"K": "V"}, c.Make(container.EnvironKey))
	assert.Equal(t, []string{"x"}, obs.resolved)

	require.NoError(t, c.Shutdown())
	assert.Equal(t, []string{"test-container"}, obs.shutdown)
}

func TestInit_Empty(t *testing.T) {
	t.Parallel()

	c, err := container.Init(container.Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{container.SelfKey}, c.Bindings())
}
