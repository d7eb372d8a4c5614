package main

import (
	"slices"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/YuminosukeSato/houseprice/dataset"
	"github.com/YuminosukeSato/houseprice/pkg/errors"
)

// featureFlags は単一レコード予測で全て指定が必要な特徴量フラグ。
var featureFlags = []string{"lot-area", "year-remod-add", "yr-sold", "gr-liv-area"}

// recordFlags are the flags that describe a single house.
var recordFlags = append(slices.Clone(featureFlags), "ms-sub-class")

// singleRecord reports whether any record flag was given, and fails when
// that leaves a required feature unset.
func singleRecord(flags *pflag.FlagSet, id string) (bool, error) {
	single := false
	for _, name := range recordFlags {
		if flags.Changed(name) {
			single = true
		}
	}
	if !single {
		return false, nil
	}
	for _, name := range featureFlags {
		if !flags.Changed(name) {
			return true, errors.NewPredictionError(id, "missing required feature --"+name, nil)
		}
	}
	return true, nil
}

func predictCmd() *cobra.Command {
	var (
		input string
		rec   dataset.Record
	)

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "predict sale prices with a saved model",
		Long: `Predict a single house described by flags, or every row of a CSV file.
Without record flags the rows of --input (default: the test set) are scored
and printed as Id,SalePrice lines.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if rec.ID == "" {
				rec.ID = "cli"
			}
			single, err := singleRecord(cmd.Flags(), rec.ID)
			if err != nil {
				return err
			}

			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			m, err := a.engine.Load(ctx, a.cfg.Model.Path)
			if err != nil {
				return err
			}

			if single {
				price, err := a.engine.Predict(ctx, m, rec)
				if err != nil {
					return err
				}
				a.console.Prediction(rec.ID, price)
				return a.console.Err()
			}

			path := input
			if path == "" {
				path = a.cfg.Data.Test
			}
			records, err := dataset.Load(path, a.schema)
			if err != nil {
				return err
			}
			preds, err := a.engine.PredictBatch(ctx, m, records)
			if err != nil {
				return err
			}
			out := make([]dataset.Prediction, len(records))
			for i := range records {
				out[i] = dataset.Prediction{ID: records[i].ID, SalePrice: preds[i]}
				a.console.Prediction(records[i].ID, preds[i])
			}
			if a.cfg.Output.Predictions != "" {
				if err := dataset.WritePredictions(a.cfg.Output.Predictions, out); err != nil {
					return err
				}
			}
			return a.console.Err()
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&input, "input", "", "CSV of houses to score (default: the test set)")
	flags.StringVar(&rec.ID, "id", "", "id printed with a single prediction")
	flags.Float64Var(&rec.LotArea, "lot-area", 0, "lot size in square feet")
	flags.Float64Var(&rec.YearRemodAdd, "year-remod-add", 0, "remodel year")
	flags.Float64Var(&rec.YrSold, "yr-sold", 0, "year sold")
	flags.Float64Var(&rec.GrLivArea, "gr-liv-area", 0, "above grade living area in square feet")
	flags.StringVar(&rec.MSSubClass, "ms-sub-class", "", "building class")
	flags.String("predictions", "", "write Id,SalePrice CSV to this path")
	return cmd
}
