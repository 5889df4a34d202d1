package eval

import "sort"

// Env is a scoped set of immutable bindings.
// Blocks evaluate in a child Env, so bindings made inside a block are not
// visible after it. A later let may shadow an earlier binding of the same name.
type Env struct {
	bindings map[string]Value
	parent   *Env
}

// NewEnv creates a new environment with an optional parent scope.
func NewEnv(parent *Env) *Env {
	return &Env{
		bindings: make(map[string]Value),
		parent:   parent,
	}
}

// Child creates a new child scope whose parent is this environment.
func (e *Env) Child() *Env {
	return NewEnv(e)
}

// Get looks up a binding by name, traversing parent scopes.
func (e *Env) Get(name string) (Value, bool) {
	for env := e; env != nil; env = env.parent {
		if val, ok := env.bindings[name]; ok {
			return val, true
		}
	}
	return nil, false
}

// Set binds name in this scope.
func (e *Env) Set(name string, val Value) {
	e.bindings[name] = val
}

// Names returns every name visible from this scope in sorted order.
func (e *Env) Names() []string {
	seen := make(map[string]struct{})
	for env := e; env != nil; env = env.parent {
		for name := range env.bindings {
			seen[name] = struct{}{}
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
