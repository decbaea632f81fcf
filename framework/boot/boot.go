package boot

import (
	"fmt"
	"log/slog"

	"github.com/km-arc/goboot/framework/config"
	"github.com/km-arc/goboot/framework/container"
	"github.com/km-arc/goboot/framework/module"
	"github.com/km-arc/goboot/framework/plugin"
)

// Initializer builds the container. container.Init is the default.
type Initializer func(container.Options) (*container.Container, error)

// Booter prepares the module list and scanners before delegating to an
// Initializer. The zero value is ready to use and reads its settings from
// the process environment on every call.
type Booter struct {
	// Catalog resolves module names. Defaults to module.Default.
	Catalog *module.Catalog

	// Registry lists plugin entry points. Defaults to plugin.Default,
	// followed by the manifest named by GOBOOT_PLUGIN_MANIFEST if any.
	Registry plugin.Registry

	// Group overrides GOBOOT_PLUGIN_GROUP.
	Group string

	Logger *slog.Logger

	// Environ replaces the process environment for settings lookups.
	Environ map[string]string

	Initializer Initializer
}

// Plan is the outcome of module preparation.
type Plan struct {
	// Modules is the final, deduplicated module list: user modules first,
	// then discovered plugins.
	Modules []*module.Module

	// Scanners holds the scanners harvested from Modules.
	Scanners []container.Scanner

	// AutoPlugins reports whether discovery ran.
	AutoPlugins bool

	// Failed lists plugin entry points skipped because they failed to load.
	Failed []plugin.Failure
}

// Init prepares modules and calls the initializer with opts, in which only
// Modules and CustomScanners are replaced. Caller scanners keep their place
// ahead of harvested ones. When opts.Environ is set it is used for the
// settings lookup as well as being passed through.
//
// Errors from user modules are returned unchanged. Broken plugins are
// logged and skipped.
func (b *Booter) Init(modules any, opts container.Options) (*container.Container, error) {
	_, c, err := b.Boot(modules, opts)
	return c, err
}

// Boot is Init that also returns the plan the container was built from.
// The plan is returned even when the initializer fails.
func (b *Booter) Boot(modules any, opts container.Options) (Plan, *container.Container, error) {
	environ := b.Environ
	if opts.Environ != nil {
		environ = opts.Environ
	}
	p, err := b.plan(modules, environ)
	if err != nil {
		return Plan{}, nil, err
	}

	opts.Modules = module.Sources(p.Modules)
	if len(p.Scanners) > 0 {
		scanners := make([]container.Scanner, 0, len(opts.CustomScanners)+len(p.Scanners))
		scanners = append(scanners, opts.CustomScanners...)
		opts.CustomScanners = append(scanners, p.Scanners...)
	}

	initialize := b.Initializer
	if initialize == nil {
		initialize = container.Init
	}
	c, err := initialize(opts)
	return p, c, err
}

// Resolve prepares modules like Init without building a container.
func (b *Booter) Resolve(modules any) (Plan, error) {
	return b.plan(modules, b.Environ)
}

func (b *Booter) plan(modules any, environ map[string]string) (Plan, error) {
	cat := b.catalog()

	mods, err := module.Normalize(cat, modules)
	if err != nil {
		return Plan{}, err
	}

	settings, err := config.ParseBoot(environ)
	if err != nil {
		return Plan{}, err
	}

	p := Plan{AutoPlugins: settings.AutoPlugins.Enabled()}
	if p.AutoPlugins {
		r := plugin.Resolver{
			Registry: b.registry(settings),
			Catalog:  cat,
			Group:    b.group(settings),
			Logger:   b.logger(),
		}
		res, err := r.Discover()
		if err != nil {
			return Plan{}, fmt.Errorf("boot: discover plugins: %w", err)
		}
		p.Failed = res.Failed

		all := make([]*module.Module, 0, len(mods)+len(res.Modules))
		all = append(all, mods...)
		all = append(all, res.Modules...)
		if mods, err = module.Normalize(cat, all); err != nil {
			return Plan{}, err
		}
	}

	p.Modules = mods
	p.Scanners = Harvest(mods)
	b.logger().Debug("modules prepared",
		slog.Any("modules", module.Names(p.Modules)),
		slog.Int("scanners", len(p.Scanners)),
		slog.Bool("auto_plugins", p.AutoPlugins),
	)
	return p, nil
}

func (b *Booter) catalog() *module.Catalog {
	if b.Catalog != nil {
		return b.Catalog
	}
	return module.Default
}

func (b *Booter) registry(settings config.BootConfig) plugin.Registry {
	if b.Registry != nil {
		return b.Registry
	}
	if settings.Manifest != "" {
		return plugin.Chain{plugin.Default, plugin.Manifest{Path: settings.Manifest}}
	}
	return plugin.Default
}

func (b *Booter) group(settings config.BootConfig) string {
	if b.Group != "" {
		return b.Group
	}
	return settings.Group
}

func (b *Booter) logger() *slog.Logger {
	if b.Logger != nil {
		return b.Logger
	}
	return slog.Default()
}

// Init is (&Booter{}).Init: default catalog, default registry and the
// process environment.
func Init(modules any, opts container.Options) (*container.Container, error) {
	return (&Booter{}).Init(modules, opts)
}
