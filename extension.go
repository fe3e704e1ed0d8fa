package calcgraph

// Extension provides hooks into graph operations. Extensions observe
// computations and mutations; they cannot change the resolution
// priority (override > cache > compute).
type Extension interface {
	// Name returns the extension's name
	Name() string

	// Order determines extension execution order (lower = earlier)
	Order() int

	// Init is called when the extension is registered to a graph
	Init(g *Graph) error

	// Wrap intercepts operations (compute invocations and mutations)
	Wrap(next func() (any, error), op *Operation) (any, error)

	// OnError is called when a compute function fails
	OnError(err error, op *Operation, g *Graph)

	// Dispose is called when the graph is disposed
	Dispose(g *Graph) error
}

// BaseExtension provides default implementations for Extension methods
type BaseExtension struct {
	name string
}

// NewBaseExtension creates a new base extension with the given name
func NewBaseExtension(name string) BaseExtension {
	return BaseExtension{name: name}
}

func (e *BaseExtension) Name() string {
	return e.name
}

func (e *BaseExtension) Order() int {
	return 100
}

func (e *BaseExtension) Init(g *Graph) error {
	return nil
}

func (e *BaseExtension) Wrap(next func() (any, error), op *Operation) (any, error) {
	return next()
}

func (e *BaseExtension) OnError(err error, op *Operation, g *Graph) {
}

func (e *BaseExtension) Dispose(g *Graph) error {
	return nil
}

// Operation describes what operation is happening
type Operation struct {
	Kind  OperationKind
	Key   Key
	Graph *Graph
}

// OperationKind represents the type of operation
type OperationKind string

const (
	// OpEvaluate indicates a compute invocation (cache and override hits
	// do not reach the extension chain)
	OpEvaluate OperationKind = "evaluate"
	// OpOverride indicates an override install
	OpOverride OperationKind = "override"
	// OpRemoveOverride indicates an override removal
	OpRemoveOverride OperationKind = "remove-override"
	// OpSetValue indicates a settable node receiving a pushed value
	OpSetValue OperationKind = "set-value"
	// OpInvalidate indicates an explicit invalidation
	OpInvalidate OperationKind = "invalidate"
)
