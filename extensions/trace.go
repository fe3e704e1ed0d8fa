package extensions

import (
	"fmt"
	"sort"

	"github.com/m1gwings/treedrawer/tree"

	calcgraph "github.com/calc-fn/calcgraph-go"
)

// TraceExtension records which keys were actually computed (cache and
// override hits never reach the extension chain) and can render the
// graph's dependents index as a tree for debugging.
type TraceExtension struct {
	calcgraph.BaseExtension
	graph    *calcgraph.Graph
	computed []calcgraph.Key
}

// NewTraceExtension creates a new trace extension.
func NewTraceExtension() *TraceExtension {
	return &TraceExtension{
		BaseExtension: calcgraph.NewBaseExtension("trace"),
	}
}

func (e *TraceExtension) Init(g *calcgraph.Graph) error {
	e.graph = g
	return nil
}

func (e *TraceExtension) Wrap(next func() (any, error), op *calcgraph.Operation) (any, error) {
	result, err := next()
	if err == nil && op.Kind == calcgraph.OpEvaluate {
		e.computed = append(e.computed, op.Key)
	}
	return result, err
}

// Computed returns the computed keys in the order their compute
// functions finished: inputs complete before the nodes that consume
// them.
func (e *TraceExtension) Computed() []calcgraph.Key {
	return append([]calcgraph.Key(nil), e.computed...)
}

// Reset clears the recorded computations.
func (e *TraceExtension) Reset() {
	e.computed = nil
}

// RenderDependents draws the current dependents index. Each root is a
// key nothing depends on upstream; its children are the keys that
// consumed its value, transitively.
func (e *TraceExtension) RenderDependents() string {
	deps := e.graph.ExportDependents()
	if len(deps) == 0 {
		return "(no dependency edges tracked)"
	}

	// Roots: keys that never appear as anyone's dependent.
	isDependent := make(map[calcgraph.Key]bool)
	for _, ds := range deps {
		for _, d := range ds {
			isDependent[d] = true
		}
	}
	var roots []calcgraph.Key
	for k := range deps {
		if !isDependent[k] {
			roots = append(roots, k)
		}
	}
	sort.Slice(roots, func(i, j int) bool { return roots[i].String() < roots[j].String() })

	t := tree.NewTree(tree.NodeString("graph"))
	for i, root := range roots {
		e.drawSubtree(t, i, root, deps, make(map[calcgraph.Key]bool))
	}
	return fmt.Sprint(t)
}

func (e *TraceExtension) drawSubtree(parent *tree.Tree, idx int, key calcgraph.Key, deps map[calcgraph.Key][]calcgraph.Key, seen map[calcgraph.Key]bool) {
	parent.AddChild(tree.NodeString(key.String()))
	node, err := parent.Child(idx)
	if err != nil {
		return
	}
	if seen[key] {
		return
	}
	seen[key] = true

	// The index tolerates duplicate edges; collapse them for drawing.
	drawn := make(map[calcgraph.Key]bool)
	childIdx := 0
	for _, d := range deps[key] {
		if drawn[d] {
			continue
		}
		drawn[d] = true
		e.drawSubtree(node, childIdx, d, deps, seen)
		childIdx++
	}
}
