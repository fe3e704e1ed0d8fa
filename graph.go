package calcgraph

import (
	"fmt"
	"sort"
)

// Graph is the evaluation engine. It owns the node registry, the value
// cache, the reverse-dependency index, the override map and the
// evaluation stack; all five live and die with one Graph instance.
type Graph struct {
	nodes      map[string]Node
	values     *keyedStore[any]
	overrides  *keyedStore[any]
	dependents map[Key][]Key
	evalStack  []Key
	extensions []Extension
}

// Option is a modifier for graphs
type Option func(*Graph)

// WithExtension returns an option that registers an extension to a graph
func WithExtension(ext Extension) Option {
	return func(g *Graph) {
		if err := g.UseExtension(ext); err != nil {
			panic(err)
		}
	}
}

// NewGraph creates a new graph with optional configuration
func NewGraph(opts ...Option) *Graph {
	g := &Graph{
		nodes:      make(map[string]Node),
		values:     newKeyedStore[any](),
		overrides:  newKeyedStore[any](),
		dependents: make(map[Key][]Key),
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// Register adds a node to the graph under its name. Registering a second
// node under the same name fails with DuplicateNameError and leaves the
// registry unchanged.
func (g *Graph) Register(node Node) error {
	name := node.Name()
	if _, ok := g.nodes[name]; ok {
		return &DuplicateNameError{Name: name}
	}
	g.nodes[name] = node
	return nil
}

// Evaluate resolves a node's value lazily. Resolution priority is
// override, then cache, then the node's compute function; a computed
// value is cached under the call's key. If an evaluation is already in
// progress, that evaluation is recorded as a dependent of this key so
// that invalidation can reach it later.
func (g *Graph) Evaluate(name string, args ...any) (any, error) {
	key, err := newKey(name, args)
	if err != nil {
		return nil, err
	}

	// Record the edge before resolving: nested evaluations triggered by
	// compute must see this key at the top of the stack, and edges must
	// exist even for keys served from cache or override.
	if n := len(g.evalStack); n > 0 {
		g.dependents[key] = append(g.dependents[key], g.evalStack[n-1])
	}

	g.evalStack = append(g.evalStack, key)
	defer func() {
		// Pop on every exit path, compute failure included.
		g.evalStack = g.evalStack[:len(g.evalStack)-1]
	}()

	if v, ok := g.overrides.Load(key); ok {
		return v, nil
	}
	if v, ok := g.values.Load(key); ok {
		return v, nil
	}

	node, ok := g.nodes[name]
	if !ok {
		return nil, &UnknownNodeError{Name: name}
	}

	op := &Operation{Kind: OpEvaluate, Key: key, Graph: g}
	v, err := g.wrap(op, func() (any, error) {
		return node.Compute(g, args...)
	})
	if err != nil {
		cerr := &ComputeError{Key: key, Cause: err}
		g.notifyError(cerr, op)
		return nil, cerr
	}
	if v == nil {
		verr := &InvalidValueError{Name: name, Reason: "compute returned nil"}
		g.notifyError(verr, op)
		return nil, verr
	}

	g.values.Store(key, v)
	return v, nil
}

// Override forces a value for (name, args), superseding computation and
// caching until the override is removed. Installing an override
// invalidates the key first, so dependents forget values derived from
// the previous state before the forced value lands.
func (g *Graph) Override(name string, value any, args ...any) error {
	if value == nil {
		return &InvalidValueError{Name: name, Reason: "override value must not be nil"}
	}
	key, err := newKey(name, args)
	if err != nil {
		return err
	}

	op := &Operation{Kind: OpOverride, Key: key, Graph: g}
	_, err = g.wrap(op, func() (any, error) {
		g.invalidateKey(key)
		g.overrides.Store(key, value)
		return nil, nil
	})
	return err
}

// RemoveOverride removes a forced value and invalidates the key so that
// the next access recomputes normally. Removing an override that does
// not exist is a no-op.
func (g *Graph) RemoveOverride(name string, args ...any) error {
	key, err := newKey(name, args)
	if err != nil {
		return err
	}
	if !g.overrides.Has(key) {
		return nil
	}

	op := &Operation{Kind: OpRemoveOverride, Key: key, Graph: g}
	_, err = g.wrap(op, func() (any, error) {
		g.overrides.Delete(key)
		g.invalidateKey(key)
		return nil, nil
	})
	return err
}

// SetValue pushes a new value into a settable node. The node's key is
// invalidated before the mutation lands, in the same order as an
// override install, so stale derived caches are purged first.
func (g *Graph) SetValue(name string, value any) error {
	if value == nil {
		return &InvalidValueError{Name: name, Reason: "value must not be nil"}
	}
	node, ok := g.nodes[name]
	if !ok {
		return &UnknownNodeError{Name: name}
	}
	settable, ok := node.(Settable)
	if !ok {
		return &InvalidCallError{Name: name, Reason: "node is not settable"}
	}
	key, err := newKey(name, nil)
	if err != nil {
		return err
	}

	op := &Operation{Kind: OpSetValue, Key: key, Graph: g}
	_, err = g.wrap(op, func() (any, error) {
		g.invalidateKey(key)
		settable.SetValue(value)
		return nil, nil
	})
	return err
}

// Invalidate purges the cached value for (name, args) and for its
// transitive dependents. Invalidating an uncached key is a safe no-op.
func (g *Graph) Invalidate(name string, args ...any) error {
	key, err := newKey(name, args)
	if err != nil {
		return err
	}

	op := &Operation{Kind: OpInvalidate, Key: key, Graph: g}
	_, err = g.wrap(op, func() (any, error) {
		g.invalidateKey(key)
		return nil, nil
	})
	return err
}

// invalidateKey performs the worklist walk over the dependents index.
// A non-overridden dependent loses its cached value and its own edge
// set; the edges are rediscovered on the next evaluation. An overridden
// dependent loses only its cached value: its forced value cannot have
// changed, so the walk does not descend through it, and its edges stay
// intact for the RemoveOverride that will need them.
func (g *Graph) invalidateKey(key Key) {
	g.values.Delete(key)

	worklist := g.dependents[key]
	delete(g.dependents, key)

	for len(worklist) > 0 {
		d := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]

		g.values.Delete(d)

		if g.overrides.Has(d) {
			continue
		}
		worklist = append(worklist, g.dependents[d]...)
		delete(g.dependents, d)
	}
}

// IsCached reports whether (name, args) currently has a cached value.
func (g *Graph) IsCached(name string, args ...any) bool {
	key, err := newKey(name, args)
	return err == nil && g.values.Has(key)
}

// IsOverridden reports whether (name, args) currently has a forced value.
func (g *Graph) IsOverridden(name string, args ...any) bool {
	key, err := newKey(name, args)
	return err == nil && g.overrides.Has(key)
}

// ExportDependents returns a copy of the reverse-dependency index, for
// debugging and extensions. Edges point from a key to the keys whose
// evaluation consumed its value.
func (g *Graph) ExportDependents() map[Key][]Key {
	out := make(map[Key][]Key, len(g.dependents))
	for k, deps := range g.dependents {
		out[k] = append([]Key(nil), deps...)
	}
	return out
}

// UseExtension registers an extension to the graph
func (g *Graph) UseExtension(ext Extension) error {
	g.extensions = append(g.extensions, ext)
	sort.SliceStable(g.extensions, func(i, j int) bool {
		return g.extensions[i].Order() < g.extensions[j].Order()
	})
	return ext.Init(g)
}

// Dispose shuts down the graph's extensions
func (g *Graph) Dispose() error {
	for _, ext := range g.extensions {
		if err := ext.Dispose(g); err != nil {
			return fmt.Errorf("disposing extension %s: %w", ext.Name(), err)
		}
	}
	return nil
}

// wrap chains extensions around an operation (middleware pattern); the
// extension with the lowest Order ends up outermost.
func (g *Graph) wrap(op *Operation, next func() (any, error)) (any, error) {
	for i := len(g.extensions) - 1; i >= 0; i-- {
		ext := g.extensions[i]
		currentNext := next
		next = func() (any, error) {
			return ext.Wrap(currentNext, op)
		}
	}
	return next()
}

func (g *Graph) notifyError(err error, op *Operation) {
	for _, ext := range g.extensions {
		ext.OnError(err, op, g)
	}
}
