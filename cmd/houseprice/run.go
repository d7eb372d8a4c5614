package main

import (
	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/houseprice/workflow"
)

func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "train, save, reload, evaluate and predict in one pass",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			runner := workflow.NewRunner(a.engine, a.schema, workflow.Paths{
				Train:       a.cfg.Data.Train,
				Test:        a.cfg.Data.Test,
				Model:       a.cfg.Model.Path,
				Predictions: a.cfg.Output.Predictions,
				Plot:        a.cfg.Output.Plot,
			}, a.out)
			_, err = runner.Run(cmd.Context())
			return err
		},
	}
	outputFlags(cmd)
	return cmd
}
