package commands

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	calcgraph "github.com/calc-fn/calcgraph-go"
)

var scenarioCmd = &cobra.Command{
	Use:   "scenario FILE",
	Short: "Run a YAML what-if scenario against a graph definition",
	Long: `Run a sequence of scenario steps: evaluations, input pushes,
overrides and override removals, in file order.

A scenario file looks like:

  steps:
    - eval: [add, mul]
    - override: {node: base1, value: 20}
    - eval: [add]
    - remove_override: base1
    - set: {node: scale, value: 2}
    - eval: [final]`,
	Args: cobra.ExactArgs(1),
	RunE: runScenario,
}

func init() {
	rootCmd.AddCommand(scenarioCmd)
}

// Scenario is a decoded scenario file.
type Scenario struct {
	Steps []Step `yaml:"steps"`
}

// Step is one scenario action. Exactly one of the fields must be set.
type Step struct {
	Eval           []string    `yaml:"eval,omitempty"`
	Set            *Assignment `yaml:"set,omitempty"`
	Override       *Assignment `yaml:"override,omitempty"`
	RemoveOverride string      `yaml:"remove_override,omitempty"`
}

// Assignment names a node and the value pushed or forced onto it.
type Assignment struct {
	Node  string `yaml:"node"`
	Value any    `yaml:"value"`
}

// ParseScenario decodes a scenario, rejecting unknown fields so that a
// misspelled step name fails instead of silently doing nothing.
func ParseScenario(data []byte) (*Scenario, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var sc Scenario
	if err := dec.Decode(&sc); err != nil {
		return nil, fmt.Errorf("decoding scenario: %w", err)
	}
	return &sc, nil
}

// Run applies the scenario's steps in order, writing evaluation results
// to out.
func (sc *Scenario) Run(g *calcgraph.Graph, out io.Writer) error {
	for i, step := range sc.Steps {
		if err := step.apply(g, out); err != nil {
			return fmt.Errorf("step %d: %w", i+1, err)
		}
	}
	return nil
}

func (s *Step) apply(g *calcgraph.Graph, out io.Writer) error {
	actions := 0
	if len(s.Eval) > 0 {
		actions++
	}
	if s.Set != nil {
		actions++
	}
	if s.Override != nil {
		actions++
	}
	if s.RemoveOverride != "" {
		actions++
	}
	if actions != 1 {
		return fmt.Errorf("expected exactly one of eval, set, override, remove_override")
	}

	switch {
	case len(s.Eval) > 0:
		for _, name := range s.Eval {
			v, err := g.Evaluate(name)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s = %v\n", name, v)
		}
	case s.Set != nil:
		return g.SetValue(s.Set.Node, s.Set.Value)
	case s.Override != nil:
		return g.Override(s.Override.Node, s.Override.Value)
	case s.RemoveOverride != "":
		return g.RemoveOverride(s.RemoveOverride)
	}
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	g, err := loadGraph()
	if err != nil {
		return err
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read scenario: %w", err)
	}
	sc, err := ParseScenario(data)
	if err != nil {
		return err
	}

	return sc.Run(g, cmd.OutOrStdout())
}
