// Package container provides the IoC container that goboot bootstraps, and
// the Init function that builds one from a list of modules.
//
// # Container Lifecycle
//
//  1. Init scans every module's members in order
//  2. *Component members are registered directly; ServiceProvider members
//     go through a ProviderRegistry; any other member is offered to the
//     custom scanners
//  3. Overrides replace bindings, then the declared dependency graph is
//     validated (missing keys, cycles)
//  4. Providers are booted and eager singletons are built
//  5. Shutdown closes singletons that implement Closer
//
// # Bindings
//
//	// Transient: new instance every Make()
//	c.Bind("Foo", func(c *container.Container) any { return &Foo{} })
//
//	// Singleton: created once, reused
//	c.Singleton("cache", func(c *container.Container) any {
//	    cfg := container.Resolve[*config.Config](c, "config")
//	    return cache.New(cfg)
//	})
//
//	// Pre-built value
//	c.Instance("config", myConfig)
//
//	// Alias
//	c.Alias("cache", "cacheManager")
//
// # Resolving
//
//	raw := c.Make("cache")                              // panics when unbound
//	raw, err := c.Get("cache")                          // returns NotBoundError
//	cache := container.Resolve[*Cache](c, "cache")      // typed
//
// # Components and scanners
//
//	mod := module.New("example.com/app/services", module.WithMembers(
//	    &container.Component{Key: "users", Factory: newUsers, DependsOn: []string{"db"}},
//	))
//
// A Scanner turns arbitrary members (types, structs, functions) into
// Components:
//
//	scanner := container.ScannerFunc(func(m any) (*container.Component, bool) {
//	    h, ok := m.(http.Handler)
//	    if !ok {
//	        return nil, false
//	    }
//	    return &container.Component{Key: container.TypeKey(h), Factory: func(*container.Container) any { return h }}, true
//	})
//
// # Service Providers
//
//	type AppServiceProvider struct{ container.BaseProvider }
//
//	func (p *AppServiceProvider) Register(app *container.Container) {
//	    app.Singleton("mailer", func(c *container.Container) any { return mail.New() })
//	}
//
// # Deferred Providers
//
//	type HeavyProvider struct{ container.BaseProvider }
//
//	func (p *HeavyProvider) IsDeferred() bool     { return true }
//	func (p *HeavyProvider) Provides() []string   { return []string{"heavy"} }
//	func (p *HeavyProvider) Register(app *container.Container) {
//	    app.Singleton("heavy", func(c *container.Container) any {
//	        return heavySetup() // only called on first app.Make("heavy")
//	    })
//	}
package container
