package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/kbukum/capdag/dag"
)

func newPlanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plan <pipeline>",
		Short: "Print a pipeline's topological order and levels",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			g, err := buildGraph(cfg, args[0], newRegistry(nil))
			if err != nil {
				return err
			}
			plan, err := dag.Describe(g)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(plan)
		},
	}
}
