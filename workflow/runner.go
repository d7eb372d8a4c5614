package workflow

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/YuminosukeSato/houseprice/dataset"
	"github.com/YuminosukeSato/houseprice/fasttree"
	"github.com/YuminosukeSato/houseprice/metrics"
	"github.com/YuminosukeSato/houseprice/pipeline"
	"github.com/YuminosukeSato/houseprice/pkg/errors"
	"github.com/YuminosukeSato/houseprice/pkg/log"
	"github.com/YuminosukeSato/houseprice/report"
)

// Stage names, logged with log.PhaseKey.
const (
	StageLoadTrain = "load_train"
	StageTrain     = "train"
	StageSave      = "save"
	StageLoadModel = "load_model"
	StageLoadTest  = "load_test"
	StageEvaluate  = "evaluate"
	StagePredict   = "predict"
	StageOutput    = "output"
)

// Paths are the files a run reads and writes.
// Predictions and Plot are optional.
type Paths struct {
	Train       string
	Test        string
	Model       string
	Predictions string
	Plot        string
}

// Summary is the outcome of a successful run.
type Summary struct {
	RunID            string
	ModelPath        string
	ModelSize        int64
	TrainRows        int
	TestRows         int
	Metrics          metrics.Report
	ExamplePredicted float64
	ExampleActual    float64
	Predictions      []dataset.Prediction
	Duration         time.Duration
}

// Runner executes the stages in order. Any error aborts the run.
type Runner struct {
	engine  Engine
	schema  dataset.Schema
	paths   Paths
	console *report.Console
	logger  log.Logger
}

// NewRunner creates a runner printing its progress to out.
func NewRunner(engine Engine, schema dataset.Schema, paths Paths, out io.Writer) *Runner {
	return &Runner{
		engine:  engine,
		schema:  schema,
		paths:   paths,
		console: report.NewConsole(out),
		logger:  log.GetLoggerWithName("workflow"),
	}
}

func (r *Runner) stage(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrapf(err, "workflow: %s", name)
	}
	r.logger.Debug("Stage started", log.PhaseKey, name)
	return nil
}

// Run は学習から予測までのすべての段階を順番に実行する
//
//  1. 学習データの読み込み、学習、モデルの保存
//  2. 保存したモデルの再読み込み（以降はこのモデルを使う）
//  3. テストデータの読み込みと評価
//  4. 例のレコードと各テスト行の予測
//  5. 予測CSVと散布図の出力（パスが設定されている場合のみ）
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	start := time.Now()
	summary := &Summary{ModelPath: r.paths.Model, ExampleActual: ExampleActualPrice}

	// 学習
	if err := r.stage(ctx, StageLoadTrain); err != nil {
		return nil, err
	}
	r.console.Stage("Training model")
	train, err := dataset.Load(r.paths.Train, r.schema)
	if err != nil {
		return nil, errors.Wrap(err, "workflow: load training set")
	}
	summary.TrainRows = len(train)

	if err := r.stage(ctx, StageTrain); err != nil {
		return nil, err
	}
	fitted, err := r.engine.Fit(ctx, train)
	if err != nil {
		return nil, errors.Wrap(err, "workflow: train")
	}

	if err := r.stage(ctx, StageSave); err != nil {
		return nil, err
	}
	if err := r.engine.Save(ctx, fitted, r.paths.Model); err != nil {
		return nil, errors.Wrap(err, "workflow: save model")
	}
	if info, err := os.Stat(r.paths.Model); err == nil {
		summary.ModelSize = info.Size()
	}
	r.console.Stage("End training")
	r.console.ModelSaved(r.paths.Model, summary.ModelSize)

	if err := r.stage(ctx, StageLoadModel); err != nil {
		return nil, err
	}
	m, err := r.engine.Load(ctx, r.paths.Model)
	if err != nil {
		return nil, errors.Wrap(err, "workflow: load model")
	}
	summary.RunID = m.Metadata().RunID
	r.printImportance(m)

	// 評価
	if err := r.stage(ctx, StageLoadTest); err != nil {
		return nil, err
	}
	r.console.Stage("Evaluating model")
	test, err := dataset.Load(r.paths.Test, r.schema)
	if err != nil {
		return nil, errors.Wrap(err, "workflow: load test set")
	}
	summary.TestRows = len(test)

	if err := r.stage(ctx, StageEvaluate); err != nil {
		return nil, err
	}
	summary.Metrics, err = r.engine.Evaluate(ctx, m, test)
	if err != nil {
		return nil, errors.Wrap(err, "workflow: evaluate")
	}
	r.console.Metrics(summary.Metrics)
	r.console.Stage("End evaluating")
	r.console.Blank()

	// 予測
	if err := r.stage(ctx, StagePredict); err != nil {
		return nil, err
	}
	summary.ExamplePredicted, err = r.engine.Predict(ctx, m, ExampleRecord())
	if err != nil {
		return nil, errors.Wrap(err, "workflow: predict example")
	}
	r.console.Example(summary.ExamplePredicted, summary.ExampleActual)

	preds, err := r.engine.PredictBatch(ctx, m, test)
	if err != nil {
		return nil, errors.Wrap(err, "workflow: predict test set")
	}
	summary.Predictions = make([]dataset.Prediction, len(test))
	for i := range test {
		summary.Predictions[i] = dataset.Prediction{ID: test[i].ID, SalePrice: preds[i]}
		r.console.Prediction(test[i].ID, preds[i])
	}

	if err := r.stage(ctx, StageOutput); err != nil {
		return nil, err
	}
	if err := r.writeOutputs(test, preds, summary.Predictions); err != nil {
		return nil, err
	}
	if err := r.console.Err(); err != nil {
		return nil, errors.NewIOError("write", "console", err)
	}

	summary.Duration = time.Since(start)
	r.logger.Info("Workflow completed",
		"run_id", summary.RunID,
		log.RMSEKey, summary.Metrics.RMSE,
		log.R2ScoreKey, summary.Metrics.R2,
		log.PredsKey, len(summary.Predictions),
		log.DurationMsKey, summary.Duration.Milliseconds(),
	)
	return summary, nil
}

func (r *Runner) printImportance(m *pipeline.Model) {
	gains, err := m.Ensemble().FeatureImportance(fasttree.ImportanceGain)
	if err != nil {
		r.logger.Warn("Feature importance unavailable", "error", err)
		return
	}
	r.console.Importance(m.FeatureNames(), gains)
}

func (r *Runner) writeOutputs(test []dataset.Record, preds []float64, predictions []dataset.Prediction) error {
	if r.paths.Predictions != "" {
		if err := dataset.WritePredictions(r.paths.Predictions, predictions); err != nil {
			return errors.Wrap(err, "workflow: write predictions")
		}
		r.logger.Info("Predictions written", log.PathKey, r.paths.Predictions, log.PredsKey, len(predictions))
	}
	if r.paths.Plot != "" {
		actual := make([]float64, 0, len(test))
		predicted := make([]float64, 0, len(test))
		for i := range test {
			if test[i].HasLabel {
				actual = append(actual, test[i].SalePrice)
				predicted = append(predicted, preds[i])
			}
		}
		if err := report.WriteScatter(r.paths.Plot, actual, predicted); err != nil {
			return errors.Wrap(err, "workflow: write plot")
		}
		r.logger.Info("Plot written", log.PathKey, r.paths.Plot)
	}
	return nil
}
