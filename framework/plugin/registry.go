package plugin

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/km-arc/goboot/framework/config"
)

// Group is the entry-point group plugins publish their modules under.
const Group = config.DefaultGroup

// ReservedTargets are infrastructure modules that are never loaded as
// plugins even when an entry point names them.
var ReservedTargets = []string{"goboot", "goboot/container"}

// IsReserved reports whether target is one of ReservedTargets.
func IsReserved(target string) bool {
	return slices.Contains(ReservedTargets, target)
}

// Entry is one advertised plugin: a name within a group pointing at the
// module to import.
type Entry struct {
	Group  string `yaml:"group"`
	Name   string `yaml:"name"`
	Module string `yaml:"module"`
}

// Registry answers which entries are advertised under a group.
type Registry interface {
	Entries(group string) ([]Entry, error)
}

// Set is a mutable, concurrency-safe registry. Entries are returned in the
// order they were added.
type Set struct {
	mu      sync.RWMutex
	entries []Entry
}

// Default is the process-wide registry packages add themselves to from init().
var Default = &Set{}

// Add advertises target under name in group.
func (s *Set) Add(group, name, target string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, Entry{Group: group, Name: name, Module: target})
}

// Entries implements Registry.
func (s *Set) Entries(group string) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return filter(s.entries, group), nil
}

// Register advertises target under name in group on the Default registry.
//
//	func init() { plugin.Register(plugin.Group, "billing", "example.com/billing") }
func Register(group, name, target string) { Default.Add(group, name, target) }

// Static is a fixed list of entries.
type Static []Entry

// Entries implements Registry.
func (s Static) Entries(group string) ([]Entry, error) { return filter(s, group), nil }

// Chain queries each registry in order and concatenates the results. The
// first failing registry aborts the query.
type Chain []Registry

// Entries implements Registry.
func (c Chain) Entries(group string) ([]Entry, error) {
	var out []Entry
	for _, r := range c {
		if r == nil {
			continue
		}
		es, err := r.Entries(group)
		if err != nil {
			return nil, err
		}
		out = append(out, es...)
	}
	return out, nil
}

// Manifest reads entries from a YAML file on every query, so edits are seen
// by the next bootstrap without a restart:
//
//	entries:
//	  - name: billing
//	    module: example.com/billing
//	  - group: goboot.modules
//	    name: audit
//	    module: example.com/audit
//
// An entry without a group belongs to Group.
type Manifest struct {
	Path string
}

type manifestFile struct {
	Entries []Entry `yaml:"entries"`
}

// ErrInvalidManifest is wrapped by errors reporting a malformed manifest.
var ErrInvalidManifest = errors.New("plugin: invalid manifest")

// Entries implements Registry.
func (m Manifest) Entries(group string) ([]Entry, error) {
	data, err := os.ReadFile(m.Path)
	if err != nil {
		return nil, fmt.Errorf("plugin: read manifest: %w", err)
	}

	var f manifestFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w %s: %v", ErrInvalidManifest, m.Path, err)
	}
	for i := range f.Entries {
		e := &f.Entries[i]
		if e.Module == "" {
			return nil, fmt.Errorf("%w %s: entry %d has no module", ErrInvalidManifest, m.Path, i)
		}
		if e.Group == "" {
			e.Group = Group
		}
		if e.Name == "" {
			e.Name = e.Module
		}
	}
	return filter(f.Entries, group), nil
}

func filter(entries []Entry, group string) []Entry {
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.Group == group {
			out = append(out, e)
		}
	}
	return out
}
