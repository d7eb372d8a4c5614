package pipeline

import (
	"context"
	"math"
	"strconv"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/houseprice/dataset"
	"github.com/YuminosukeSato/houseprice/fasttree"
	"github.com/YuminosukeSato/houseprice/pkg/errors"
	"github.com/YuminosukeSato/houseprice/pkg/log"
)

// Fit は変換チェーンと推定器を学習データに当てはめる
//
// 各変換は学習フレームだけからパラメータを学習し、順番に適用される。
// その後 spec.Features 列とラベルで推定器を学習する。
// 失敗した場合はすべて TrainingError を返す。
func Fit(ctx context.Context, spec Spec, schema dataset.Schema, records []dataset.Record, callbacks ...fasttree.Callback) (m *Model, err error) {
	defer errors.Recover(&err, "pipeline.Fit")
	const op = "pipeline.Fit"

	if err := spec.Validate(schema); err != nil {
		return nil, errors.NewTrainingError(op, "invalid pipeline spec", err)
	}
	if len(records) == 0 {
		return nil, errors.NewTrainingError(op, "no training records", errors.ErrEmptyData)
	}
	labels := make([]float64, len(records))
	for i := range records {
		if !records[i].HasLabel {
			return nil, errors.NewTrainingError(op, "record "+records[i].ID+" has no label", errors.ErrMissingLabel)
		}
		y := records[i].SalePrice
		if math.IsNaN(y) || math.IsInf(y, 0) {
			return nil, errors.NewTrainingError(op, "record "+records[i].ID+" has a non-finite label", nil)
		}
		labels[i] = y
	}

	logger := log.GetLoggerWithName("pipeline")
	start := time.Now()

	transforms, err := Build(spec)
	if err != nil {
		return nil, errors.NewTrainingError(op, "invalid pipeline spec", err)
	}
	frame, err := NewFrame(records, schema)
	if err != nil {
		return nil, errors.NewTrainingError(op, "build frame", err)
	}
	for i, t := range transforms {
		if err := ctx.Err(); err != nil {
			return nil, errors.NewTrainingError(op, "cancelled", err)
		}
		step := t.Step()
		if err := t.Fit(frame); err != nil {
			return nil, errors.NewTrainingError(op, "fit step "+strconv.Itoa(i)+" ("+string(step.Kind)+")", err)
		}
		if frame, err = t.Apply(frame); err != nil {
			return nil, errors.NewTrainingError(op, "apply step "+strconv.Itoa(i)+" ("+string(step.Kind)+")", err)
		}
		logger.Debug("Step fitted", "step", i, log.ModelNameKey, string(step.Kind), "output", step.Output)
	}

	X, ok := frame.Vector(spec.Features)
	if !ok {
		return nil, errors.NewTrainingError(op, "column "+spec.Features+" missing after transforms", nil)
	}
	featureNames := frame.Slots(spec.Features)

	regressor := fasttree.NewRegressor(spec.Estimator.Params, callbacks...)
	if err := regressor.FitContext(ctx, X, mat.NewVecDense(len(labels), labels)); err != nil {
		if errors.IsTrainingError(err) {
			return nil, err
		}
		return nil, errors.NewTrainingError(op, "estimator failed", err)
	}
	regressor.Ensemble().FeatureNames = featureNames

	m = &Model{
		spec:       spec,
		schema:     schema,
		transforms: transforms,
		regressor:  regressor,
		meta: Metadata{
			RunID:        uuid.NewString(),
			CreatedAt:    time.Now().UTC(),
			TrainingRows: len(records),
			FeatureNames: featureNames,
			Schema:       schema.Fields,
		},
	}
	logger.Info("Pipeline fitted",
		log.OperationKey, log.OperationFit,
		log.SamplesKey, len(records),
		log.FeaturesKey, len(featureNames),
		log.EstimatorIDKey, m.meta.RunID,
		log.RandomSeedKey, spec.Estimator.Params.Seed,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return m, nil
}
