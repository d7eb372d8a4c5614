package main

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/houseprice/dataset"
	"github.com/YuminosukeSato/houseprice/fasttree"
	"github.com/YuminosukeSato/houseprice/pipeline"
	"github.com/YuminosukeSato/houseprice/pkg/config"
	"github.com/YuminosukeSato/houseprice/pkg/log"
	"github.com/YuminosukeSato/houseprice/report"
)

// app bundles what every subcommand needs.
type app struct {
	cfg     *config.Config
	schema  dataset.Schema
	engine  *pipeline.Engine
	console *report.Console
	out     io.Writer
	logger  log.Logger
}

func newApp(cmd *cobra.Command) (*app, error) {
	configFile, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return nil, err
	}
	if err := log.SetupLogger(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format); err != nil {
		return nil, err
	}

	spec := pipeline.DefaultSpec()
	if cfg.Pipeline.Spec != "" {
		if spec, err = pipeline.LoadSpec(cfg.Pipeline.Spec); err != nil {
			return nil, err
		}
	}

	opts := []pipeline.Option{
		pipeline.WithWorkers(cfg.Predict.Workers),
		pipeline.WithCallbacks(fasttree.LogEvaluation(10)),
	}
	if cfg.Train.Seed != 0 {
		opts = append(opts, pipeline.WithSeed(cfg.Train.Seed))
	}

	out := cmd.OutOrStdout()
	return &app{
		cfg:     cfg,
		schema:  dataset.HousingSchema(),
		engine:  pipeline.NewEngine(spec, opts...),
		console: report.NewConsole(out),
		out:     out,
		logger:  log.GetLoggerWithName("cli"),
	}, nil
}
