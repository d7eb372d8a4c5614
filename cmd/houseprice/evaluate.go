package main

import (
	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/houseprice/dataset"
	"github.com/YuminosukeSato/houseprice/pkg/errors"
	"github.com/YuminosukeSato/houseprice/report"
)

func evaluateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "score a saved model against the labeled test set",
		Long: `Score a saved model against the labeled test set and print the metrics.
--predictions writes the scored rows as Id,SalePrice and --plot draws
predicted against actual prices.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			m, err := a.engine.Load(ctx, a.cfg.Model.Path)
			if err != nil {
				return err
			}
			records, err := dataset.Load(a.cfg.Data.Test, a.schema)
			if err != nil {
				return err
			}

			a.console.Stage("Evaluating model")
			metrics, err := a.engine.Evaluate(ctx, m, records)
			if err != nil {
				return err
			}
			a.console.Metrics(metrics)
			a.console.Stage("End evaluating")

			if a.cfg.Output.Plot == "" && a.cfg.Output.Predictions == "" {
				return a.console.Err()
			}
			preds, err := a.engine.PredictBatch(ctx, m, records)
			if err != nil {
				return err
			}
			if a.cfg.Output.Predictions != "" {
				out := make([]dataset.Prediction, len(records))
				for i := range records {
					out[i] = dataset.Prediction{ID: records[i].ID, SalePrice: preds[i]}
				}
				if err := dataset.WritePredictions(a.cfg.Output.Predictions, out); err != nil {
					return err
				}
			}
			if a.cfg.Output.Plot != "" {
				actual := make([]float64, len(records))
				for i := range records {
					actual[i] = records[i].SalePrice
				}
				if err := report.WriteScatter(a.cfg.Output.Plot, actual, preds); err != nil {
					return errors.Wrap(err, "write plot")
				}
			}
			return a.console.Err()
		},
	}
	outputFlags(cmd)
	return cmd
}
