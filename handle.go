package calcgraph

import "fmt"

// Handle provides typed lifecycle control over one (graph, name, args)
// identity. The zero-argument form binds a plain node; extra arguments
// bind one memoization instance of a parameterized node.
type Handle[T any] struct {
	graph *Graph
	name  string
	args  []any
}

// Bind creates a handle for a node identity.
func Bind[T any](g *Graph, name string, args ...any) *Handle[T] {
	return &Handle[T]{graph: g, name: name, args: args}
}

// Get evaluates the node (resolving if not cached) and asserts the
// result type.
func (h *Handle[T]) Get() (T, error) {
	v, err := h.graph.Evaluate(h.name, h.args...)
	if err != nil {
		var zero T
		return zero, err
	}
	return assertValue[T](v)
}

// Peek returns the standing override or cached value without computing.
func (h *Handle[T]) Peek() (T, bool) {
	var zero T
	key, err := newKey(h.name, h.args)
	if err != nil {
		return zero, false
	}
	v, ok := h.graph.overrides.Load(key)
	if !ok {
		v, ok = h.graph.values.Load(key)
	}
	if !ok {
		return zero, false
	}
	typed, err := assertValue[T](v)
	if err != nil {
		return zero, false
	}
	return typed, true
}

// Override forces a value for the bound key.
func (h *Handle[T]) Override(v T) error {
	return h.graph.Override(h.name, v, h.args...)
}

// RemoveOverride removes a forced value; a no-op if none stands.
func (h *Handle[T]) RemoveOverride() error {
	return h.graph.RemoveOverride(h.name, h.args...)
}

// Invalidate purges the cached value and its dependents.
func (h *Handle[T]) Invalidate() error {
	return h.graph.Invalidate(h.name, h.args...)
}

// Reload invalidates and immediately re-evaluates.
func (h *Handle[T]) Reload() (T, error) {
	if err := h.Invalidate(); err != nil {
		var zero T
		return zero, err
	}
	return h.Get()
}

// IsCached checks if the value is currently cached.
func (h *Handle[T]) IsCached() bool {
	return h.graph.IsCached(h.name, h.args...)
}

// IsOverridden checks if a forced value currently stands.
func (h *Handle[T]) IsOverridden() bool {
	return h.graph.IsOverridden(h.name, h.args...)
}

// assertValue performs a safe type assertion with a proper error.
func assertValue[T any](value any) (T, error) {
	typed, ok := value.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("type assertion error: expected %T, got %T (value: %v)", zero, value, value)
	}
	return typed, nil
}
