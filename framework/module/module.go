package module

import "github.com/km-arc/goboot/framework/container"

// Module is a named unit of code handed to the container. Its name is the
// deduplication key across a bootstrap call.
type Module struct {
	name     string
	members  []any
	scanners []container.Scanner
}

// Option configures a Module built by New.
type Option func(*Module)

// WithMembers appends members (components, service providers or arbitrary
// values for scanners) to the module.
func WithMembers(members ...any) Option {
	return func(m *Module) { m.members = append(m.members, members...) }
}

// WithScanners exports scanners to be forwarded to the container alongside
// the module list. Calling it, even with no scanners, marks the export as
// present.
func WithScanners(scanners ...container.Scanner) Option {
	return func(m *Module) {
		if m.scanners == nil {
			m.scanners = []container.Scanner{}
		}
		m.scanners = append(m.scanners, scanners...)
	}
}

// New builds a module named name.
func New(name string, opts ...Option) *Module {
	m := &Module{name: name}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Name implements container.Source.
func (m *Module) Name() string { return m.name }

// Members implements container.Source.
func (m *Module) Members() []any { return m.members }

// Scanners returns the exported scanner list, nil when the module exports none.
func (m *Module) Scanners() []container.Scanner { return m.scanners }

// HasScanners reports whether the module exports a scanner list at all.
func (m *Module) HasScanners() bool { return m.scanners != nil }

// String returns the module name.
func (m *Module) String() string { return m.name }

// Names returns the names of mods in order.
func Names(mods []*Module) []string {
	out := make([]string, len(mods))
	for i, m := range mods {
		out[i] = m.name
	}
	return out
}

// Sources converts mods for container.Options.
func Sources(mods []*Module) []container.Source {
	out := make([]container.Source, len(mods))
	for i, m := range mods {
		out[i] = m
	}
	return out
}
