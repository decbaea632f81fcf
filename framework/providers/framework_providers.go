package providers

import (
	"log/slog"
	"os"
	"strconv"
	"sync/atomic"

	"github.com/km-arc/goboot/framework/config"
	"github.com/km-arc/goboot/framework/container"
	"github.com/km-arc/goboot/framework/logging"
	"github.com/km-arc/goboot/framework/module"
	"github.com/km-arc/goboot/framework/routing"
)

// Built-in module names. Applications list them like any other module.
const (
	ConfigModule = "goboot/config"
	HTTPModule   = "goboot/http"
)

// Bound keys.
const (
	LoggerKey = "logger"
	RouterKey = "router"

	// RoutesTag groups the routing.Routes contributed by modules.
	RoutesTag = "routes"
)

func init() {
	module.Define(ConfigModule, module.WithMembers(&ConfigServiceProvider{}))
	module.Define(HTTPModule,
		module.WithMembers(&RoutingServiceProvider{}),
		module.WithScanners(RouteScanner{}),
	)
}

// ── ConfigServiceProvider ─────────────────────────────────────────────────────

// ConfigServiceProvider binds the application configuration and logger.
//
// Bound abstracts:
//   - "config"         → *config.Config (kept when Init already bound one)
//   - "configuration"  → alias of "config"
//   - "logger"         → *slog.Logger built from config.Log
type ConfigServiceProvider struct {
	container.BaseProvider
	EnvFiles []string
}

func (p *ConfigServiceProvider) Register(app *container.Container) {
	if !app.Bound(container.ConfigKey) {
		envFiles := p.EnvFiles
		app.Singleton(container.ConfigKey, func(c *container.Container) any {
			cfg, err := config.Load(envFiles...)
			if err != nil {
				panic(err)
			}
			return cfg
		})
	}
	app.Alias(container.ConfigKey, "configuration")

	app.Singleton(LoggerKey, func(c *container.Container) any {
		cfg := container.Resolve[*config.Config](c, container.ConfigKey)
		return logging.FromConfig(cfg.Log, os.Stderr)
	})
}

// ── RoutingServiceProvider ────────────────────────────────────────────────────

// RoutingServiceProvider binds the HTTP router. Every component tagged
// RoutesTag is applied to it when it is first resolved.
//
// Bound abstracts:
//   - "router"  → *routing.Router
type RoutingServiceProvider struct {
	container.BaseProvider
}

func (p *RoutingServiceProvider) Register(app *container.Container) {
	app.Singleton(RouterKey, func(c *container.Container) any {
		var r *routing.Router
		if c.Bound(LoggerKey) {
			r = routing.New(container.Resolve[*slog.Logger](c, LoggerKey))
		} else {
			r = routing.New(nil)
		}
		for _, v := range c.Tagged(RoutesTag) {
			if rs, ok := v.(routing.Routes); ok {
				r.Apply(rs)
			}
		}
		return r
	})
}

// ── RouteScanner ─────────────────────────────────────────────────────────────

var routeSeq atomic.Uint64

// RouteScanner turns routing.Routes members into lazy components tagged
// RoutesTag, so any module can contribute routes without a provider.
type RouteScanner struct{}

func (RouteScanner) ShouldScan(member any) bool {
	_, ok := member.(routing.Routes)
	return ok
}

func (RouteScanner) Scan(member any) (*container.Component, bool) {
	rs, ok := member.(routing.Routes)
	if !ok {
		return nil, false
	}
	name := rs.Name
	if name == "" {
		name = strconv.FormatUint(routeSeq.Add(1), 10)
	}
	return &container.Component{
		Key:     "routes." + name,
		Factory: func(*container.Container) any { return rs },
		Lazy:    true,
		Tags:    []string{RoutesTag},
	}, true
}
