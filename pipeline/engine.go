package pipeline

import (
	"context"
	"time"

	"github.com/YuminosukeSato/houseprice/dataset"
	"github.com/YuminosukeSato/houseprice/fasttree"
	"github.com/YuminosukeSato/houseprice/metrics"
	"github.com/YuminosukeSato/houseprice/pkg/errors"
	"github.com/YuminosukeSato/houseprice/pkg/log"
)

// Engine trains, evaluates, predicts and persists pipeline models.
// It holds configuration only; every model it returns is independent.
type Engine struct {
	spec      Spec
	schema    dataset.Schema
	workers   int
	callbacks []fasttree.Callback
	logger    log.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithSchema replaces the housing schema.
func WithSchema(schema dataset.Schema) Option {
	return func(e *Engine) { e.schema = schema }
}

// WithSeed overrides the estimator seed.
func WithSeed(seed int64) Option {
	return func(e *Engine) { e.spec.Estimator.Params.Seed = seed }
}

// WithWorkers sets the number of goroutines used for batch prediction.
func WithWorkers(workers int) Option {
	return func(e *Engine) { e.workers = workers }
}

// WithCallbacks adds boosting iteration callbacks.
func WithCallbacks(callbacks ...fasttree.Callback) Option {
	return func(e *Engine) { e.callbacks = append(e.callbacks, callbacks...) }
}

// NewEngine creates an engine for spec.
//
// Example:
//
//	engine := pipeline.NewEngine(pipeline.DefaultSpec(), pipeline.WithSeed(42))
//	m, err := engine.Fit(ctx, records)
func NewEngine(spec Spec, opts ...Option) *Engine {
	e := &Engine{
		spec:   spec,
		schema: dataset.HousingSchema(),
		logger: log.GetLoggerWithName("pipeline"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Spec returns the spec used by Fit.
func (e *Engine) Spec() Spec { return e.spec }

// Schema returns the input schema.
func (e *Engine) Schema() dataset.Schema { return e.schema }

// Fit trains a new model on labeled records.
func (e *Engine) Fit(ctx context.Context, records []dataset.Record) (*Model, error) {
	return Fit(ctx, e.spec, e.schema, records, e.callbacks...)
}

// Evaluate scores labeled records with the frozen model and compares them to the labels.
// Records without a label are a PredictionError.
func (e *Engine) Evaluate(ctx context.Context, m *Model, records []dataset.Record) (metrics.Report, error) {
	if err := ctx.Err(); err != nil {
		return metrics.Report{}, err
	}
	if len(records) == 0 {
		return metrics.Report{}, errors.NewPredictionError("", "no records to evaluate", errors.ErrEmptyData)
	}
	labels := make([]float64, len(records))
	for i := range records {
		if !records[i].HasLabel {
			return metrics.Report{}, errors.NewPredictionError(records[i].ID, "record has no label", errors.ErrMissingLabel)
		}
		labels[i] = records[i].SalePrice
	}

	start := time.Now()
	preds, err := m.PredictBatch(records, e.workers)
	if err != nil {
		return metrics.Report{}, err
	}
	report, err := metrics.Evaluate(labels, preds)
	if err != nil {
		return metrics.Report{}, errors.NewPredictionError("", "metrics", err)
	}

	e.logger.Info("Model evaluated",
		log.OperationKey, log.OperationScore,
		log.SamplesKey, report.N,
		log.RMSEKey, report.RMSE,
		log.R2ScoreKey, report.R2,
		log.MAEKey, report.MAE,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return report, nil
}

// Predict scores a single record.
func (e *Engine) Predict(ctx context.Context, m *Model, rec dataset.Record) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return m.Predict(rec)
}

// PredictBatch scores records in order.
func (e *Engine) PredictBatch(ctx context.Context, m *Model, records []dataset.Record) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	preds, err := m.PredictBatch(records, e.workers)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("Batch predicted", log.OperationKey, log.OperationPredict, log.PredsKey, len(preds))
	return preds, nil
}

// Save writes m to path.
func (e *Engine) Save(ctx context.Context, m *Model, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return m.Save(path)
}

// Load reads a model from path.
func (e *Engine) Load(ctx context.Context, path string) (*Model, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return LoadModel(path)
}
