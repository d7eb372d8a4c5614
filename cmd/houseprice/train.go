package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/houseprice/dataset"
)

func trainCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "train",
		Short: "fit the pipeline on the training set and save the model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			a.console.Stage("Training model")
			records, err := dataset.Load(a.cfg.Data.Train, a.schema)
			if err != nil {
				return err
			}
			m, err := a.engine.Fit(ctx, records)
			if err != nil {
				return err
			}
			if err := a.engine.Save(ctx, m, a.cfg.Model.Path); err != nil {
				return err
			}

			var size int64
			if info, err := os.Stat(a.cfg.Model.Path); err == nil {
				size = info.Size()
			}
			a.console.Stage("End training")
			a.console.ModelSaved(a.cfg.Model.Path, size)
			return a.console.Err()
		},
	}
}
