// Command capdag runs declarative capability pipelines.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "capdag",
		Short: "Run capability DAG pipelines",
		Long: `capdag builds a directed acyclic graph of capabilities from a YAML
pipeline and runs it, feeding every node the outputs of its predecessors.

Example:
  capdag run summarize --input prompt='"some text"' --parallel`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to configuration file (YAML)")
	rootCmd.PersistentFlags().StringSlice("pipelines", nil, "Pipeline directories (overrides pipeline_dirs)")

	rootCmd.AddCommand(newRunCmd(), newPlanCmd(), newVersionCmd())
	return rootCmd
}
