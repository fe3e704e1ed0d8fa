package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

var (
	evalSets      []string
	evalOverrides []string
)

var evalCmd = &cobra.Command{
	Use:   "eval NODE...",
	Short: "Evaluate nodes from a graph definition",
	Long: `Evaluate one or more nodes, printing name = value per line.

Examples:
  calcgraph eval -g model.hcl final
  calcgraph eval -g model.hcl --set spot=300 price
  calcgraph eval -g model.hcl --override vol=0.2 price delta`,
	Args: cobra.MinimumNArgs(1),
	RunE: runEval,
}

func init() {
	rootCmd.AddCommand(evalCmd)

	evalCmd.Flags().StringArrayVar(&evalSets, "set", nil, "Push name=value into a settable input (repeatable)")
	evalCmd.Flags().StringArrayVar(&evalOverrides, "override", nil, "Force name=value for any node (repeatable)")
}

func runEval(cmd *cobra.Command, args []string) error {
	g, err := loadGraph()
	if err != nil {
		return err
	}

	for _, assignment := range evalSets {
		name, value, err := parseAssignment(assignment)
		if err != nil {
			return err
		}
		if err := g.SetValue(name, value); err != nil {
			return fmt.Errorf("failed to set %s: %w", name, err)
		}
	}

	for _, assignment := range evalOverrides {
		name, value, err := parseAssignment(assignment)
		if err != nil {
			return err
		}
		if err := g.Override(name, value); err != nil {
			return fmt.Errorf("failed to override %s: %w", name, err)
		}
	}

	out := cmd.OutOrStdout()
	for _, name := range args {
		v, err := g.Evaluate(name)
		if err != nil {
			return fmt.Errorf("failed to evaluate %s: %w", name, err)
		}
		fmt.Fprintf(out, "%s = %v\n", name, v)
	}

	return nil
}

// parseAssignment splits a name=value flag. The value parses as a
// float, then a bool, then falls back to a plain string.
func parseAssignment(s string) (string, any, error) {
	name, raw, ok := strings.Cut(s, "=")
	if !ok || name == "" {
		return "", nil, fmt.Errorf("expected name=value, got %q", s)
	}
	return name, parseValue(raw), nil
}

func parseValue(raw string) any {
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}
	return raw
}
