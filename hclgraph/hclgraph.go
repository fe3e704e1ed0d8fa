// Package hclgraph loads calculation graph definitions from HCL.
//
// A definition file declares three block kinds:
//
//	constant "risk_free_rate" {
//	  value = 0.02
//	}
//
//	input "spot" {
//	  value = 250
//	}
//
//	formula "forward" {
//	  expr = spot * pow(1 + risk_free_rate, 2)
//	}
//
// Formula expressions may reference any node by bare name. References
// resolve through Graph.Evaluate at compute time, so dependency
// discovery, memoization and invalidation behave exactly as for
// hand-written nodes: overriding risk_free_rate invalidates forward.
package hclgraph

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"

	calcgraph "github.com/calc-fn/calcgraph-go"
)

// Definition is a parsed graph description.
type Definition struct {
	Constants []ConstantBlock `hcl:"constant,block"`
	Inputs    []InputBlock    `hcl:"input,block"`
	Formulas  []FormulaBlock  `hcl:"formula,block"`
}

// ConstantBlock declares a fixed-value node. The value must be a
// literal; it is decoded when the file is parsed.
type ConstantBlock struct {
	Name  string    `hcl:"name,label"`
	Value cty.Value `hcl:"value"`
}

// InputBlock declares a settable node with an initial value.
type InputBlock struct {
	Name  string    `hcl:"name,label"`
	Value cty.Value `hcl:"value"`
}

// FormulaBlock declares a derived node. The expression is kept
// unevaluated until the node computes.
type FormulaBlock struct {
	Name string         `hcl:"name,label"`
	Expr hcl.Expression `hcl:"expr"`
}

// exprFunctions are the functions available inside formula expressions.
var exprFunctions = map[string]function.Function{
	"abs":    stdlib.AbsoluteFunc,
	"ceil":   stdlib.CeilFunc,
	"floor":  stdlib.FloorFunc,
	"log":    stdlib.LogFunc,
	"max":    stdlib.MaxFunc,
	"min":    stdlib.MinFunc,
	"pow":    stdlib.PowFunc,
	"signum": stdlib.SignumFunc,
}

// Load parses a graph definition from an HCL file on disk.
func Load(path string) (*Definition, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parsing %s: %w", path, diags)
	}
	return decode(file)
}

// Parse parses a graph definition from in-memory HCL source. The
// filename is used in diagnostics only.
func Parse(src []byte, filename string) (*Definition, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parsing %s: %w", filename, diags)
	}
	return decode(file)
}

func decode(file *hcl.File) (*Definition, error) {
	var def Definition
	if diags := gohcl.DecodeBody(file.Body, nil, &def); diags.HasErrors() {
		return nil, fmt.Errorf("decoding definition: %w", diags)
	}
	return &def, nil
}

// Build registers every block of the definition on the graph.
// Registration order follows the file but has no effect on evaluation.
func Build(g *calcgraph.Graph, def *Definition) error {
	for _, c := range def.Constants {
		v, err := fromCty(c.Value)
		if err != nil {
			return fmt.Errorf("constant %q: %w", c.Name, err)
		}
		if err := g.Register(calcgraph.NewConstant(c.Name, v)); err != nil {
			return err
		}
	}
	for _, in := range def.Inputs {
		v, err := fromCty(in.Value)
		if err != nil {
			return fmt.Errorf("input %q: %w", in.Name, err)
		}
		if err := g.Register(calcgraph.NewVariable(in.Name, v)); err != nil {
			return err
		}
	}
	for _, f := range def.Formulas {
		if err := g.Register(calcgraph.NewCalc(f.Name, formulaFunc(f))); err != nil {
			return err
		}
	}
	return nil
}

// LoadGraph loads a definition file and builds a fresh graph from it.
func LoadGraph(path string, opts ...calcgraph.Option) (*calcgraph.Graph, error) {
	def, err := Load(path)
	if err != nil {
		return nil, err
	}
	g := calcgraph.NewGraph(opts...)
	if err := Build(g, def); err != nil {
		return nil, err
	}
	return g, nil
}

// formulaFunc adapts an HCL expression into a compute function. Every
// node reference in the expression is fetched through Graph.Evaluate
// before the expression itself evaluates.
func formulaFunc(block FormulaBlock) calcgraph.ComputeFunc {
	expr := block.Expr
	return func(g *calcgraph.Graph, _ ...any) (any, error) {
		vars := make(map[string]cty.Value)
		for _, traversal := range expr.Variables() {
			if len(traversal) != 1 {
				return nil, fmt.Errorf("formula %q: only bare node references are supported", block.Name)
			}
			name := traversal.RootName()
			if _, ok := vars[name]; ok {
				continue
			}
			v, err := g.Evaluate(name)
			if err != nil {
				return nil, err
			}
			cv, err := toCty(v)
			if err != nil {
				return nil, fmt.Errorf("formula %q: reference %q: %w", block.Name, name, err)
			}
			vars[name] = cv
		}

		val, diags := expr.Value(&hcl.EvalContext{
			Variables: vars,
			Functions: exprFunctions,
		})
		if diags.HasErrors() {
			return nil, fmt.Errorf("formula %q: %w", block.Name, diags)
		}
		result, err := fromCty(val)
		if err != nil {
			return nil, fmt.Errorf("formula %q: %w", block.Name, err)
		}
		return result, nil
	}
}

// fromCty converts a cty value to the graph's value domain: numbers map
// to float64, strings to string, bools to bool.
func fromCty(v cty.Value) (any, error) {
	if v.IsNull() {
		return nil, fmt.Errorf("null value")
	}
	if !v.IsKnown() {
		return nil, fmt.Errorf("unknown value")
	}
	switch v.Type() {
	case cty.Number:
		f, _ := v.AsBigFloat().Float64()
		return f, nil
	case cty.String:
		return v.AsString(), nil
	case cty.Bool:
		return v.True(), nil
	default:
		return nil, fmt.Errorf("unsupported value type %s", v.Type().FriendlyName())
	}
}

func toCty(v any) (cty.Value, error) {
	switch x := v.(type) {
	case float64:
		return cty.NumberFloatVal(x), nil
	case int:
		return cty.NumberIntVal(int64(x)), nil
	case int64:
		return cty.NumberIntVal(x), nil
	case string:
		return cty.StringVal(x), nil
	case bool:
		return cty.BoolVal(x), nil
	default:
		return cty.NilVal, fmt.Errorf("unsupported value type %T", v)
	}
}
