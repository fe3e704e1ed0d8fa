package calcgraph

import (
	"errors"
	"math"
	"testing"
)

func mustRegister(t *testing.T, g *Graph, n Node) {
	t.Helper()
	if err := g.Register(n); err != nil {
		t.Fatalf("register %s: %v", n.Name(), err)
	}
}

func evalFloat(t *testing.T, g *Graph, name string, args ...any) float64 {
	t.Helper()
	v, err := g.Evaluate(name, args...)
	if err != nil {
		t.Fatalf("evaluate %s: %v", name, err)
	}
	f, ok := v.(float64)
	if !ok {
		t.Fatalf("expected float64 from %s, got %T", name, v)
	}
	return f
}

func binOp(a, b string, op func(x, y float64) float64) ComputeFunc {
	return func(g *Graph, _ ...any) (any, error) {
		av, err := g.Evaluate(a)
		if err != nil {
			return nil, err
		}
		bv, err := g.Evaluate(b)
		if err != nil {
			return nil, err
		}
		return op(av.(float64), bv.(float64)), nil
	}
}

// counting wraps a compute function with a per-name invocation counter.
func counting(counts map[string]int, name string, fn ComputeFunc) *Calc {
	return NewCalc(name, func(g *Graph, args ...any) (any, error) {
		counts[name]++
		return fn(g, args...)
	})
}

// newArithGraph builds the base1=2, base2=3, add, mul, final fixture
// used across the override tests.
func newArithGraph(t *testing.T) (*Graph, map[string]int) {
	t.Helper()
	g := NewGraph()
	counts := make(map[string]int)

	mustRegister(t, g, NewConstant("base1", 2.0))
	mustRegister(t, g, NewConstant("base2", 3.0))
	mustRegister(t, g, counting(counts, "add", binOp("base1", "base2", func(x, y float64) float64 { return x + y })))
	mustRegister(t, g, counting(counts, "mul", binOp("base1", "base2", func(x, y float64) float64 { return x * y })))
	mustRegister(t, g, counting(counts, "final", binOp("add", "mul", func(x, y float64) float64 { return x - y })))

	return g, counts
}

func TestRegisterDuplicateName(t *testing.T) {
	g := NewGraph()
	mustRegister(t, g, NewConstant("rate", 0.05))

	err := g.Register(NewConstant("rate", 0.07))
	var dup *DuplicateNameError
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateNameError, got %v", err)
	}
	if dup.Name != "rate" {
		t.Errorf("expected name rate, got %q", dup.Name)
	}

	// First registration must still resolve.
	if got := evalFloat(t, g, "rate"); got != 0.05 {
		t.Errorf("expected 0.05, got %v", got)
	}
}

func TestEvaluateUnknownNode(t *testing.T) {
	g := NewGraph()

	_, err := g.Evaluate("missing")
	var unknown *UnknownNodeError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownNodeError, got %v", err)
	}
}

func TestMemoization(t *testing.T) {
	g := NewGraph()
	counts := make(map[string]int)
	mustRegister(t, g, counting(counts, "answer", func(*Graph, ...any) (any, error) {
		return 42.0, nil
	}))

	first := evalFloat(t, g, "answer")
	second := evalFloat(t, g, "answer")

	if first != 42.0 || second != 42.0 {
		t.Errorf("expected 42, got %v then %v", first, second)
	}
	if counts["answer"] != 1 {
		t.Errorf("expected one compute, got %d", counts["answer"])
	}
}

func TestDerivedValues(t *testing.T) {
	g, _ := newArithGraph(t)

	if got := evalFloat(t, g, "add"); got != 5.0 {
		t.Errorf("expected add == 5, got %v", got)
	}
	if got := evalFloat(t, g, "mul"); got != 6.0 {
		t.Errorf("expected mul == 6, got %v", got)
	}
}

func TestOverrideInvalidatesDependents(t *testing.T) {
	g, counts := newArithGraph(t)

	evalFloat(t, g, "add")
	evalFloat(t, g, "mul")

	if err := g.Override("base1", 20.0); err != nil {
		t.Fatalf("override: %v", err)
	}

	if got := evalFloat(t, g, "base1"); got != 20.0 {
		t.Errorf("expected overridden base1 == 20, got %v", got)
	}
	if got := evalFloat(t, g, "add"); got != 23.0 {
		t.Errorf("expected add == 23, got %v", got)
	}
	if got := evalFloat(t, g, "mul"); got != 60.0 {
		t.Errorf("expected mul == 60, got %v", got)
	}
	if counts["add"] != 2 || counts["mul"] != 2 {
		t.Errorf("expected both recomputed once, got add=%d mul=%d", counts["add"], counts["mul"])
	}
}

func TestRemoveOverrideRoundTrip(t *testing.T) {
	g, _ := newArithGraph(t)

	evalFloat(t, g, "add")
	evalFloat(t, g, "mul")

	if err := g.Override("base1", 20.0); err != nil {
		t.Fatalf("override: %v", err)
	}
	evalFloat(t, g, "add")
	evalFloat(t, g, "mul")

	if err := g.RemoveOverride("base1"); err != nil {
		t.Fatalf("remove override: %v", err)
	}

	if got := evalFloat(t, g, "add"); got != 5.0 {
		t.Errorf("expected add restored to 5, got %v", got)
	}
	if got := evalFloat(t, g, "mul"); got != 6.0 {
		t.Errorf("expected mul restored to 6, got %v", got)
	}
}

func TestDownstreamOverrideTruncatesPropagation(t *testing.T) {
	g, counts := newArithGraph(t)

	evalFloat(t, g, "add")
	evalFloat(t, g, "mul")
	addComputes := counts["add"]

	if err := g.Override("mul", 11.0); err != nil {
		t.Fatalf("override: %v", err)
	}

	if got := evalFloat(t, g, "final"); got != 5.0-11.0 {
		t.Errorf("expected final == -6, got %v", got)
	}
	if counts["add"] != addComputes {
		t.Errorf("overriding mul must not recompute add (computes %d -> %d)", addComputes, counts["add"])
	}
}

func TestOverriddenKeyKeepsEdgesForLaterRemoval(t *testing.T) {
	g, _ := newArithGraph(t)

	if err := g.Override("mul", 11.0); err != nil {
		t.Fatalf("override: %v", err)
	}
	// final consumes the overridden mul; the edge mul -> final must
	// survive the override so that removal reaches final.
	if got := evalFloat(t, g, "final"); got != 5.0-11.0 {
		t.Errorf("expected final == -6, got %v", got)
	}

	if err := g.RemoveOverride("mul"); err != nil {
		t.Fatalf("remove override: %v", err)
	}
	if got := evalFloat(t, g, "final"); got != 5.0-6.0 {
		t.Errorf("expected final == -1 after removal, got %v", got)
	}
}

func TestOverrideNilValue(t *testing.T) {
	g, _ := newArithGraph(t)
	evalFloat(t, g, "add")

	err := g.Override("base1", nil)
	var invalid *InvalidValueError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidValueError, got %v", err)
	}

	// Rejected override must not have invalidated anything.
	if !g.IsCached("add") {
		t.Error("expected add to remain cached")
	}
	if g.IsOverridden("base1") {
		t.Error("expected no override on base1")
	}
}

func TestRemoveOverrideWithoutOverrideIsNoop(t *testing.T) {
	g, counts := newArithGraph(t)
	evalFloat(t, g, "add")

	if err := g.RemoveOverride("base1"); err != nil {
		t.Fatalf("expected no-op, got %v", err)
	}
	if !g.IsCached("add") {
		t.Error("no-op removal must not invalidate dependents")
	}
	evalFloat(t, g, "add")
	if counts["add"] != 1 {
		t.Errorf("expected add computed once, got %d", counts["add"])
	}
}

func TestInvalidateWithoutDependents(t *testing.T) {
	g, _ := newArithGraph(t)

	if err := g.Invalidate("base1"); err != nil {
		t.Fatalf("invalidate uncached: %v", err)
	}

	evalFloat(t, g, "base1")
	if err := g.Invalidate("base1"); err != nil {
		t.Fatalf("invalidate leaf: %v", err)
	}
	if g.IsCached("base1") {
		t.Error("expected base1 uncached after invalidation")
	}
}

func TestParameterizedNodesKeySeparately(t *testing.T) {
	g := NewGraph()
	counts := make(map[string]int)
	mustRegister(t, g, counting(counts, "square", func(_ *Graph, args ...any) (any, error) {
		n := args[0].(int)
		return float64(n * n), nil
	}))
	mustRegister(t, g, NewConstant("unrelated", 1.0))

	if got := evalFloat(t, g, "square", 2); got != 4.0 {
		t.Errorf("expected 4, got %v", got)
	}
	if got := evalFloat(t, g, "square", 3); got != 9.0 {
		t.Errorf("expected 9, got %v", got)
	}
	if counts["square"] != 2 {
		t.Errorf("expected two computes for two argument tuples, got %d", counts["square"])
	}

	// An unrelated invalidation must not disturb either instance.
	evalFloat(t, g, "unrelated")
	if err := g.Invalidate("unrelated"); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	evalFloat(t, g, "square", 2)
	evalFloat(t, g, "square", 3)
	if counts["square"] != 2 {
		t.Errorf("expected cached instances to survive, got %d computes", counts["square"])
	}

	// Overrides key per argument tuple as well.
	if err := g.Override("square", 100.0, 2); err != nil {
		t.Fatalf("override: %v", err)
	}
	if got := evalFloat(t, g, "square", 2); got != 100.0 {
		t.Errorf("expected overridden instance == 100, got %v", got)
	}
	if got := evalFloat(t, g, "square", 3); got != 9.0 {
		t.Errorf("expected sibling instance untouched, got %v", got)
	}
}

func TestNamedParametersRejected(t *testing.T) {
	g, _ := newArithGraph(t)

	_, err := g.Evaluate("add", P("precision", 2))
	var invalid *InvalidCallError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidCallError, got %v", err)
	}

	// The failed call must leave no trace in the cache or the index.
	if g.IsCached("add") {
		t.Error("expected no cache entry after rejected call")
	}
	if len(g.ExportDependents()) != 0 {
		t.Error("expected no dependency edges after rejected call")
	}

	if err := g.Override("add", 1.0, P("precision", 2)); !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidCallError from Override, got %v", err)
	}
}

func TestUnsupportedArgumentsRejected(t *testing.T) {
	g, _ := newArithGraph(t)

	var invalid *InvalidCallError
	if _, err := g.Evaluate("add", math.NaN()); !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidCallError for NaN argument, got %v", err)
	}
	if _, err := g.Evaluate("add", []int{1}); !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidCallError for slice argument, got %v", err)
	}
}

func TestComputeErrorPropagates(t *testing.T) {
	g := NewGraph()
	boom := errors.New("boom")
	mustRegister(t, g, NewCalc("faulty", func(*Graph, ...any) (any, error) {
		return nil, boom
	}))
	mustRegister(t, g, NewCalc("derived", func(g *Graph, _ ...any) (any, error) {
		return g.Evaluate("faulty")
	}))

	_, err := g.Evaluate("derived")
	var cerr *ComputeError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected ComputeError, got %v", err)
	}
	if !errors.Is(err, boom) {
		t.Errorf("expected cause to unwrap to boom, got %v", err)
	}
	if g.IsCached("derived") || g.IsCached("faulty") {
		t.Error("failed computations must not be cached")
	}

	// The engine stays usable and the stack holds: a fresh top-level
	// evaluation must not inherit ancestry from the failed one.
	mustRegister(t, g, NewConstant("ok", 1.0))
	evalFloat(t, g, "ok")
	deps := g.ExportDependents()
	if len(deps[mustKey(t, "ok")]) != 0 {
		t.Errorf("expected no dependents recorded for top-level call, got %v", deps)
	}
}

func TestComputeNilValueRejected(t *testing.T) {
	g := NewGraph()
	mustRegister(t, g, NewCalc("absent", func(*Graph, ...any) (any, error) {
		return nil, nil
	}))

	_, err := g.Evaluate("absent")
	var invalid *InvalidValueError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidValueError, got %v", err)
	}
}

func TestSetValue(t *testing.T) {
	g := NewGraph()
	counts := make(map[string]int)
	mustRegister(t, g, NewVariable("spot", 250.0))
	mustRegister(t, g, counting(counts, "double", func(g *Graph, _ ...any) (any, error) {
		v, err := g.Evaluate("spot")
		if err != nil {
			return nil, err
		}
		return v.(float64) * 2, nil
	}))

	if got := evalFloat(t, g, "double"); got != 500.0 {
		t.Errorf("expected 500, got %v", got)
	}

	if err := g.SetValue("spot", 300.0); err != nil {
		t.Fatalf("set value: %v", err)
	}
	if got := evalFloat(t, g, "double"); got != 600.0 {
		t.Errorf("expected 600 after push, got %v", got)
	}
	if counts["double"] != 2 {
		t.Errorf("expected recompute after push, got %d computes", counts["double"])
	}
}

func TestSetValueErrors(t *testing.T) {
	g := NewGraph()
	mustRegister(t, g, NewConstant("fixed", 1.0))
	mustRegister(t, g, NewVariable("var", 1.0))

	var unknown *UnknownNodeError
	if err := g.SetValue("missing", 1.0); !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownNodeError, got %v", err)
	}

	var invalidCall *InvalidCallError
	if err := g.SetValue("fixed", 2.0); !errors.As(err, &invalidCall) {
		t.Fatalf("expected InvalidCallError for non-settable node, got %v", err)
	}

	var invalidValue *InvalidValueError
	if err := g.SetValue("var", nil); !errors.As(err, &invalidValue) {
		t.Fatalf("expected InvalidValueError for nil value, got %v", err)
	}
}

func mustKey(t *testing.T, name string, args ...any) Key {
	t.Helper()
	key, err := newKey(name, args)
	if err != nil {
		t.Fatalf("key %s: %v", name, err)
	}
	return key
}
