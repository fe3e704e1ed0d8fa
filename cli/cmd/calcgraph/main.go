// Calcgraph CLI - evaluate memoizing calculation graphs from the command line.
package main

import (
	"os"

	"github.com/calc-fn/calcgraph-go/cli/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
