package calcgraph

// Node is the capability contract between the graph and its
// computations. Compute receives the graph so that it can evaluate
// other nodes; every such nested call is recorded as a dependency edge.
// Compute must never return a nil value: nil is reserved to mean
// "absent" throughout the engine.
type Node interface {
	Name() string
	Compute(g *Graph, args ...any) (any, error)
}

// Settable is a Node whose stored value can be pushed from outside the
// graph, through Graph.SetValue. The graph checks for this capability at
// call time; nodes are free to not implement it.
type Settable interface {
	Node
	SetValue(v any)
}

// ComputeFunc is the signature of a derived node's calculation.
type ComputeFunc func(g *Graph, args ...any) (any, error)

// Constant is a node with a fixed value chosen at construction.
type Constant struct {
	name  string
	value any
}

// NewConstant creates a constant node.
func NewConstant(name string, value any) *Constant {
	return &Constant{name: name, value: value}
}

func (n *Constant) Name() string {
	return n.name
}

func (n *Constant) Compute(_ *Graph, _ ...any) (any, error) {
	return n.value, nil
}

// Variable is a settable node: it returns its stored value and accepts
// new values through Graph.SetValue, which invalidates dependents before
// the mutation lands.
type Variable struct {
	name  string
	value any
}

// NewVariable creates a settable node with an initial value.
func NewVariable(name string, value any) *Variable {
	return &Variable{name: name, value: value}
}

func (n *Variable) Name() string {
	return n.name
}

func (n *Variable) Compute(_ *Graph, _ ...any) (any, error) {
	return n.value, nil
}

func (n *Variable) SetValue(v any) {
	n.value = v
}

// Calc is a derived node backed by a compute function.
type Calc struct {
	name string
	fn   ComputeFunc
}

// NewCalc creates a derived node. The function may call back into the
// graph any number of times before returning.
func NewCalc(name string, fn ComputeFunc) *Calc {
	return &Calc{name: name, fn: fn}
}

func (n *Calc) Name() string {
	return n.name
}

func (n *Calc) Compute(g *Graph, args ...any) (any, error) {
	return n.fn(g, args...)
}
