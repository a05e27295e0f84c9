package interp

import (
	"github.com/dolthub/swiss"
)

// Environment is a single lexical scope: a map from name to value, chained
// to an enclosing scope. It is backed by a swiss.Map rather than a plain Go
// map for its string-keyed value storage.
type Environment struct {
	values    *swiss.Map[string, Value]
	enclosing *Environment
}

// NewEnvironment creates a top-level environment with no enclosing scope.
func NewEnvironment() *Environment {
	return &Environment{values: swiss.NewMap[string, Value](8)}
}

// NewChildEnvironment creates a new scope whose parent is e.
func NewChildEnvironment(e *Environment) *Environment {
	return &Environment{values: swiss.NewMap[string, Value](8), enclosing: e}
}

// Define inserts name into the current scope unconditionally, overwriting
// any existing binding for it in this scope.
func (e *Environment) Define(name string, v Value) {
	e.values.Put(name, v)
}

// Get looks up name in the current scope, recursing into enclosing scopes
// if not found here.
func (e *Environment) Get(name string) (Value, error) {
	if v, ok := e.values.Get(name); ok {
		return v, nil
	}
	if e.enclosing != nil {
		return e.enclosing.Get(name)
	}
	return nil, runtimeErrorf("Undefined variable '%s'.", name)
}

// Assign walks the same scope chain as Get, overwriting the first binding
// found; it fails if name was never defined anywhere in the chain.
func (e *Environment) Assign(name string, v Value) error {
	if _, ok := e.values.Get(name); ok {
		e.values.Put(name, v)
		return nil
	}
	if e.enclosing != nil {
		return e.enclosing.Assign(name, v)
	}
	return runtimeErrorf("Undefined variable '%s'.", name)
}

// Ancestor returns the environment reached by following enclosing exactly
// depth times. The resolver guarantees depth is always valid for a
// reference produced by its own analysis, so no bounds check is made.
func (e *Environment) Ancestor(depth int) *Environment {
	env := e
	for i := 0; i < depth; i++ {
		env = env.enclosing
	}
	return env
}

// GetAt reads name directly from the environment depth scopes up, without
// walking intervening scopes.
func (e *Environment) GetAt(depth int, name string) Value {
	v, _ := e.Ancestor(depth).values.Get(name)
	return v
}

// AssignAt writes name directly into the environment depth scopes up.
func (e *Environment) AssignAt(depth int, name string, v Value) {
	e.Ancestor(depth).values.Put(name, v)
}
