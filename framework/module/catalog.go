package module

import (
	"fmt"
	"sort"
	"sync"
)

// Loader builds a module the first time it is imported. It may run
// arbitrary setup code and may fail.
type Loader func() (*Module, error)

// Catalog maps module names to loaders and caches the modules they build,
// the way a runtime caches imported packages.
//
// Only successful imports are cached; a failing loader runs again on the
// next Import. Loaders run without the catalog lock held so they may import
// other modules. Two goroutines importing the same uncached name may both
// run its loader; the first result stored wins.
type Catalog struct {
	mu      sync.RWMutex
	loaders map[string]Loader
	loaded  map[string]*Module
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		loaders: make(map[string]Loader),
		loaded:  make(map[string]*Module),
	}
}

// Default is the process-wide catalog that package-level Register, Define
// and Import operate on. Modules usually add themselves from init().
var Default = NewCatalog()

// Register makes a loader importable under name. It panics if name is empty,
// loader is nil, or name is already registered.
func (c *Catalog) Register(name string, loader Loader) {
	if name == "" {
		panic("module: Register with empty name")
	}
	if loader == nil {
		panic("module: Register loader is nil for " + name)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, dup := c.loaders[name]; dup {
		panic("module: Register called twice for " + name)
	}
	c.loaders[name] = loader
}

// Define registers a module that needs no setup beyond its options.
func (c *Catalog) Define(name string, opts ...Option) {
	c.Register(name, func() (*Module, error) { return New(name, opts...), nil })
}

// Import returns the module registered under name, running its loader on
// first use. Errors:
//   - *NotFoundError when nothing is registered under name
//   - *ImportError wrapping the loader's error, or ErrLoaderPanic when the
//     loader panicked or returned a nil module
func (c *Catalog) Import(name string) (*Module, error) {
	c.mu.RLock()
	if m, ok := c.loaded[name]; ok {
		c.mu.RUnlock()
		return m, nil
	}
	loader, ok := c.loaders[name]
	c.mu.RUnlock()

	if !ok {
		return nil, &NotFoundError{Name: name}
	}

	m, err := runLoader(loader)
	if err != nil {
		return nil, &ImportError{Name: name, Err: err}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.loaded[name]; ok {
		return existing, nil
	}
	c.loaded[name] = m
	return m, nil
}

func runLoader(loader Loader) (m *Module, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			m = nil
			err = fmt.Errorf("%w: %v", ErrLoaderPanic, rec)
		}
	}()
	m, err = loader()
	if err == nil && m == nil {
		err = fmt.Errorf("%w: loader returned no module", ErrLoaderPanic)
	}
	return m, err
}

// Loaded reports whether name has been imported successfully.
func (c *Catalog) Loaded(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.loaded[name]
	return ok
}

// Names returns every registered module name, sorted.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.loaders))
	for n := range c.loaders {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Register adds a loader to the Default catalog.
func Register(name string, loader Loader) { Default.Register(name, loader) }

// Define adds a static module to the Default catalog.
func Define(name string, opts ...Option) { Default.Define(name, opts...) }

// Import imports name from the Default catalog.
func Import(name string) (*Module, error) { return Default.Import(name) }
