package plugin

import (
	"fmt"
	"log/slog"

	"github.com/km-arc/goboot/framework/module"
)

// Resolver imports the modules advertised by a registry.
//
// A plugin is optional: when its module cannot be imported the failure is
// logged once at warning level and discovery continues. Only a failing
// registry query is fatal.
type Resolver struct {
	Registry Registry        // defaults to Default
	Catalog  *module.Catalog // defaults to module.Default
	Group    string          // defaults to Group
	Logger   *slog.Logger    // defaults to slog.Default()
}

// Failure records an entry whose module could not be imported.
type Failure struct {
	Entry Entry
	Err   error
}

// Result is the outcome of a discovery run.
type Result struct {
	// Modules holds the imported plugin modules, deduplicated by name in
	// entry order.
	Modules []*module.Module

	// Failed lists entries skipped because their import failed.
	Failed []Failure
}

// Load returns the plugin modules of the configured group.
func (r *Resolver) Load() ([]*module.Module, error) {
	res, err := r.Discover()
	if err != nil {
		return nil, err
	}
	return res.Modules, nil
}

// Discover is Load with the per-entry failures kept for diagnostics.
func (r *Resolver) Discover() (Result, error) {
	group := r.Group
	if group == "" {
		group = Group
	}
	reg := r.Registry
	if reg == nil {
		reg = Default
	}
	cat := r.Catalog
	if cat == nil {
		cat = module.Default
	}
	log := r.Logger
	if log == nil {
		log = slog.Default()
	}

	entries, err := reg.Entries(group)
	if err != nil {
		return Result{}, fmt.Errorf("plugin: list entry points of %q: %w", group, err)
	}

	var res Result
	for _, e := range entries {
		if IsReserved(e.Module) {
			continue
		}
		m, err := cat.Import(e.Module)
		if err != nil {
			log.Warn("failed to load plugin entry point",
				slog.String("entry", e.Name),
				slog.String("module", e.Module),
				slog.Any("error", err),
			)
			res.Failed = append(res.Failed, Failure{Entry: e, Err: err})
			continue
		}
		res.Modules = append(res.Modules, m)
	}
	res.Modules = module.Dedupe(res.Modules)
	return res, nil
}
