package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"net/http"
	"os"
	"time"

	"github.com/km-arc/goboot/framework/boot"
	"github.com/km-arc/goboot/framework/config"
	"github.com/km-arc/goboot/framework/container"
	gohttp "github.com/km-arc/goboot/framework/http"
	"github.com/km-arc/goboot/framework/logging"
	"github.com/km-arc/goboot/framework/module"
	"github.com/km-arc/goboot/framework/providers"
	"github.com/km-arc/goboot/framework/routing"
)

// Version is reported by the diagnostics routes.
const Version = "0.1.0"

// Application is the top-level application container.
// It embeds the IoC Container so user code can call app.Make(),
// app.Singleton() and friends directly.
type Application struct {
	*container.Container

	cfg  *config.Config
	log  *slog.Logger
	plan boot.Plan
}

type options struct {
	envFiles  []string
	booter    boot.Booter
	container container.Options
	logger    *slog.Logger
}

// Option configures New.
type Option func(*options)

// WithEnvFiles sets the .env files loaded before configuration is parsed.
func WithEnvFiles(files ...string) Option {
	return func(o *options) { o.envFiles = files }
}

// WithBooter replaces the bootstrap settings (catalog, plugin registry,
// environment, initializer).
func WithBooter(b boot.Booter) Option {
	return func(o *options) { o.booter = b }
}

// WithContainerOptions sets the options forwarded to the container.
// Modules and CustomScanners are extended by the bootstrap, not replaced.
func WithContainerOptions(opts container.Options) Option {
	return func(o *options) { o.container = opts }
}

// WithLogger replaces the logger built from configuration.
func WithLogger(log *slog.Logger) Option {
	return func(o *options) { o.logger = log }
}

// New loads configuration, boots the built-in modules followed by modules
// (see module.Normalize for accepted forms) and any discovered plugins,
// and mounts the diagnostics routes.
func New(modules any, opts ...Option) (*Application, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	cfg := o.container.Config
	if cfg == nil {
		var err error
		if cfg, err = config.Load(o.envFiles...); err != nil {
			return nil, err
		}
	}
	log := o.logger
	if log == nil {
		log = logging.FromConfig(cfg.Log, os.Stderr)
	}

	b := o.booter
	if b.Logger == nil {
		b.Logger = log
	}
	copts := o.container
	copts.Config = cfg
	if copts.Profiles == nil {
		copts.Profiles = []string{cfg.App.Env}
	}
	overrides := map[string]any{providers.LoggerKey: log}
	maps.Copy(overrides, copts.Overrides)
	copts.Overrides = overrides

	mods := append([]any{providers.ConfigModule, providers.HTTPModule}, module.Flatten(modules)...)
	plan, c, err := b.Boot(mods, copts)
	if err != nil {
		return nil, fmt.Errorf("app: boot: %w", err)
	}

	a := &Application{Container: c, cfg: cfg, log: log, plan: plan}
	a.Router().Prefix("/_boot", a.diagnostics)

	log.Info("application booted",
		slog.String("container", c.ID()),
		slog.Any("modules", module.Names(plan.Modules)),
		slog.Int("scanners", len(plan.Scanners)),
		slog.Int("failed_plugins", len(plan.Failed)),
	)
	return a, nil
}

// Config returns the configuration the application was booted with.
func (a *Application) Config() *config.Config { return a.cfg }

// Logger returns the application logger.
func (a *Application) Logger() *slog.Logger { return a.log }

// Plan returns the module list and scanners the container was built from.
func (a *Application) Plan() boot.Plan { return a.plan }

// Router resolves the *routing.Router bound by the goboot/http module.
func (a *Application) Router() *routing.Router {
	return container.Resolve[*routing.Router](a.Container, providers.RouterKey)
}

// ServeHTTP implements http.Handler.
func (a *Application) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.Router().ServeHTTP(w, r)
}

// Run serves HTTP on the configured port until ctx ends, then shuts the
// server and the container down.
func (a *Application) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              ":" + a.cfg.App.Port,
		Handler:           a,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	a.log.Info("listening",
		slog.String("app", a.cfg.App.Name),
		slog.String("addr", srv.Addr),
		slog.String("env", a.cfg.App.Env),
	)
	go func() {
		serveErr <- srv.ListenAndServe()
	}()

	var err error
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if serr := srv.Shutdown(shutdownCtx); serr != nil {
			err = fmt.Errorf("app: shutdown http server: %w", serr)
		}
		cancel()
	case serr := <-serveErr:
		if !errors.Is(serr, http.ErrServerClosed) {
			err = fmt.Errorf("app: serve http: %w", serr)
		}
	}
	return errors.Join(err, a.Shutdown())
}

// Shutdown closes the container's closable singletons.
func (a *Application) Shutdown() error {
	return a.Container.Shutdown()
}

// Environment returns APP_ENV value.
func (a *Application) Environment() string { return a.cfg.App.Env }

// IsLocal reports whether APP_ENV is "local".
func (a *Application) IsLocal() bool { return a.Environment() == "local" }

// IsProduction reports whether APP_ENV is "production".
func (a *Application) IsProduction() bool { return a.Environment() == "production" }

// IsTesting reports whether APP_ENV is "testing".
func (a *Application) IsTesting() bool { return a.Environment() == "testing" }

// IsDebug reports APP_DEBUG.
func (a *Application) IsDebug() bool { return a.cfg.App.Debug }

// ── Diagnostics ──────────────────────────────────────────────────────────────

// ModuleReport is the body of GET /_boot/modules.
type ModuleReport struct {
	Container   string          `json:"container"`
	Version     string          `json:"version"`
	Modules     []string        `json:"modules"`
	Scanners    int             `json:"scanners"`
	AutoPlugins bool            `json:"auto_plugins"`
	Failed      []FailedPlugin  `json:"failed_plugins"`
	Routes      []routing.Route `json:"routes"`
}

// FailedPlugin describes a plugin entry point skipped during boot.
type FailedPlugin struct {
	Entry  string `json:"entry"`
	Module string `json:"module"`
	Error  string `json:"error"`
}

// Report summarizes the boot plan.
func (a *Application) Report() ModuleReport {
	failed := make([]FailedPlugin, len(a.plan.Failed))
	for i, f := range a.plan.Failed {
		failed[i] = FailedPlugin{Entry: f.Entry.Name, Module: f.Entry.Module, Error: f.Err.Error()}
	}
	return ModuleReport{
		Container:   a.ID(),
		Version:     Version,
		Modules:     module.Names(a.plan.Modules),
		Scanners:    len(a.plan.Scanners),
		AutoPlugins: a.plan.AutoPlugins,
		Failed:      failed,
		Routes:      a.Router().Routes(),
	}
}

func (a *Application) diagnostics(r *routing.Router) {
	r.Get("/modules", func(w http.ResponseWriter, _ *http.Request) {
		gohttp.NewResponse(w).Success(a.Report())
	})
	r.Get("/bindings", func(w http.ResponseWriter, _ *http.Request) {
		gohttp.NewResponse(w).Success(a.Bindings())
	})
	r.Get("/bindings/{key}", func(w http.ResponseWriter, req *http.Request) {
		key := routing.Param(req, "key")
		res := gohttp.NewResponse(w)
		if !a.Bound(key) {
			res.Problem(container.NotBoundError{Key: key})
			return
		}
		res.Success(map[string]any{"key": key, "resolved": a.Resolved(key)})
	})
}
