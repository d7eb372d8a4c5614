package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "houseprice",
		Short:         "train and evaluate a house sale price regressor",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "configuration file (yaml, json or toml)")
	flags.String("train", "", "training CSV (default data/train.csv)")
	flags.String("test", "", "test CSV (default data/test.csv)")
	flags.String("model", "", "model archive path (default HousePriceModel.zip)")
	flags.String("pipeline", "", "YAML pipeline descriptor; empty uses the built-in pipeline")
	flags.String("log-level", "", "debug, info, warn or error")
	flags.String("log-format", "", "console or json")
	flags.Int64("seed", 0, "random seed for row subsampling")
	flags.Int("workers", 0, "goroutines for batch prediction (0 = all CPUs)")

	root.AddCommand(runCmd(), trainCmd(), evaluateCmd(), predictCmd())
	return root
}

// outputFlags registers the optional artifact flags on commands that produce predictions.
func outputFlags(cmd *cobra.Command) {
	cmd.Flags().String("predictions", "", "write Id,SalePrice CSV to this path")
	cmd.Flags().String("plot", "", "write a predicted-vs-actual scatter plot (.png, .svg)")
}
