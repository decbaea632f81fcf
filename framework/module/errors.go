package module

import (
	"errors"
	"strconv"
)

// ErrLoaderPanic is wrapped when a loader panics or yields no module.
var ErrLoaderPanic = errors.New("module: loader failed")

// UnresolvableModuleError is returned when an item given to the normalizer
// cannot be mapped to a module. Item is the item's %#v representation.
type UnresolvableModuleError struct{ Item string }

// Error implements the error interface.
func (e *UnresolvableModuleError) Error() string {
	// Example: module: cannot determine module for 42
	return "module: cannot determine module for " + e.Item
}

// NotFoundError is returned when no loader is registered under Name.
type NotFoundError struct{ Name string }

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return "module: no module named " + strconv.Quote(e.Name)
}

// ImportError wraps a loader failure for Name.
type ImportError struct {
	Name string
	Err  error
}

// Error implements the error interface.
func (e *ImportError) Error() string {
	return "module: import " + strconv.Quote(e.Name) + ": " + e.Err.Error()
}

// Unwrap returns the loader's error.
func (e *ImportError) Unwrap() error { return e.Err }
