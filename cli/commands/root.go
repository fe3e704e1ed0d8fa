// Package commands implements the calcgraph command-line interface.
package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	calcgraph "github.com/calc-fn/calcgraph-go"
	"github.com/calc-fn/calcgraph-go/extensions"
	"github.com/calc-fn/calcgraph-go/hclgraph"
)

var (
	graphPath string
	verbose   bool
)

var rootCmd = &cobra.Command{
	Use:   "calcgraph",
	Short: "Evaluate memoizing calculation graphs defined in HCL",
	Long: `calcgraph loads a calculation graph from an HCL definition and
evaluates nodes on demand. Values are computed lazily and cached;
overrides and input pushes invalidate dependent values automatically.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&graphPath, "graph", "g", "", "Path to the HCL graph definition")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log graph operations to stderr")
}

// loadGraph builds the graph named by --graph, wiring operation logging
// when --verbose is set.
func loadGraph() (*calcgraph.Graph, error) {
	if graphPath == "" {
		return nil, fmt.Errorf("--graph is required")
	}

	var opts []calcgraph.Option
	if verbose {
		handler := extensions.NewHumanHandler(os.Stderr, slog.LevelDebug)
		opts = append(opts, calcgraph.WithExtension(extensions.NewLoggingExtension(handler)))
	}

	g, err := hclgraph.LoadGraph(graphPath, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load graph: %w", err)
	}
	return g, nil
}
