package container

import (
	"errors"
	"fmt"
	"strconv"
)

var (
	// ErrFactoryPanic is wrapped by FactoryPanicError.
	ErrFactoryPanic = errors.New("container: panic during factory")

	// ErrInvalidComponent is returned when a component has no key or no factory.
	ErrInvalidComponent = errors.New("container: invalid component")
)

// NotBoundError is returned when nothing is registered under a key.
type NotBoundError struct{ Key string }

// Error implements the error interface.
func (e NotBoundError) Error() string {
	// Example: container: no binding registered for "db"
	return "container: no binding registered for " + strconv.Quote(e.Key)
}

// WrongTypeError is returned by TryResolve when the instance is not a T.
type WrongTypeError struct {
	Key     string
	GotType string
}

// Error implements the error interface.
func (e WrongTypeError) Error() string {
	return "container: " + strconv.Quote(e.Key) + " has wrong type (" + e.GotType + ")"
}

// FactoryPanicError carries the value a factory panicked with.
type FactoryPanicError struct {
	Key   string
	Value any
}

// Error implements the error interface.
func (e FactoryPanicError) Error() string {
	return fmt.Sprintf("container: panic while building %q: %v", e.Key, e.Value)
}

// Unwrap lets errors.Is match ErrFactoryPanic, and the panic value when it
// is itself an error.
func (e FactoryPanicError) Unwrap() []error {
	if err, ok := e.Value.(error); ok {
		return []error{ErrFactoryPanic, err}
	}
	return []error{ErrFactoryPanic}
}

// MissingDependencyError is returned by validation when a component depends
// on a key nothing provides.
type MissingDependencyError struct {
	Component  string
	Dependency string
}

// Error implements the error interface.
func (e MissingDependencyError) Error() string {
	// Example: container: "service" depends on missing "repo"
	return "container: " + strconv.Quote(e.Component) + " depends on missing " + strconv.Quote(e.Dependency)
}

// CircularDependencyError is returned by validation when component
// dependencies form a cycle. Path starts and ends with the same key.
type CircularDependencyError struct{ Path []string }

// Error implements the error interface.
func (e CircularDependencyError) Error() string {
	msg := "container: circular dependency"
	for i, k := range e.Path {
		if i == 0 {
			msg += " " + strconv.Quote(k)
			continue
		}
		msg += " -> " + strconv.Quote(k)
	}
	return msg
}
