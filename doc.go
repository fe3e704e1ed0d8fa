// Package calcgraph provides a memoizing calculation graph: named,
// optionally parameterized nodes compute values lazily, cache them, and
// automatically invalidate dependent caches when an upstream value
// changes or is overridden.
//
// # Overview
//
// A Graph owns four pieces of state: a registry of nodes, a value cache,
// a reverse-dependency index, and an override map. Nodes are registered
// once by name and evaluated on demand:
//
//	g := calcgraph.NewGraph()
//
//	g.Register(calcgraph.NewConstant("base1", 2.0))
//	g.Register(calcgraph.NewConstant("base2", 3.0))
//	g.Register(calcgraph.NewCalc("add", func(g *calcgraph.Graph, args ...any) (any, error) {
//	    a, err := g.Evaluate("base1")
//	    if err != nil {
//	        return nil, err
//	    }
//	    b, err := g.Evaluate("base2")
//	    if err != nil {
//	        return nil, err
//	    }
//	    return a.(float64) + b.(float64), nil
//	}))
//
//	sum, _ := g.Evaluate("add") // 5.0, computed once, cached after
//
// Dependencies are discovered during evaluation: every nested
// Graph.Evaluate call records an edge from the evaluated key to the
// evaluation currently in progress. No static dependency declaration
// exists or is needed.
//
// # Parameterized nodes
//
// Extra positional arguments select a distinct memoization instance of
// the same node:
//
//	g.Evaluate("discount factor", 5)  // cached separately from
//	g.Evaluate("discount factor", 10) // this one
//
// Arguments are restricted to booleans, strings, integers and floats so
// that key identity is total and deterministic; NaN floats are rejected.
//
// # Overrides and invalidation
//
// An override forces a key's value without running its compute function.
// Installing or removing an override invalidates the key, which purges
// cached values transitively through the reverse-dependency index. The
// walk stops at overridden keys: their value cannot change, so their
// dependents stay valid.
//
//	g.Override("base1", 20.0)
//	sum, _ = g.Evaluate("add") // 23.0, recomputed
//	g.RemoveOverride("base1")
//	sum, _ = g.Evaluate("add") // 5.0 again
//
// # Typed handles
//
// Handle binds a (graph, name, args) triple once and exposes a typed
// surface over Evaluate, Override and friends:
//
//	add := calcgraph.Bind[float64](g, "add")
//	sum, err := add.Get()
//
// # Declarative graphs
//
// The hclgraph subpackage loads graph definitions from HCL files, with
// formula expressions whose node references route through
// Graph.Evaluate so that dependency discovery and invalidation work
// unchanged.
//
// # Concurrency
//
// A Graph is not safe for concurrent use. Evaluation is a plain
// recursive call chain that re-enters the graph, so the graph holds no
// internal lock; callers that need concurrency must serialize every
// graph operation externally.
package calcgraph
