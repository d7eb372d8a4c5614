// Package workflow runs the training program: load, train, persist,
// evaluate and predict, strictly in that order.
package workflow

import (
	"context"

	"github.com/YuminosukeSato/houseprice/dataset"
	"github.com/YuminosukeSato/houseprice/metrics"
	"github.com/YuminosukeSato/houseprice/pipeline"
)

// Engine is the machine-learning capability the workflow depends on.
// *pipeline.Engine implements it.
type Engine interface {
	Fit(ctx context.Context, records []dataset.Record) (*pipeline.Model, error)
	Evaluate(ctx context.Context, m *pipeline.Model, records []dataset.Record) (metrics.Report, error)
	Predict(ctx context.Context, m *pipeline.Model, rec dataset.Record) (float64, error)
	PredictBatch(ctx context.Context, m *pipeline.Model, records []dataset.Record) ([]float64, error)
	Save(ctx context.Context, m *pipeline.Model, path string) error
	Load(ctx context.Context, path string) (*pipeline.Model, error)
}

var _ Engine = (*pipeline.Engine)(nil)

// ExampleRecord is the hand-written house scored after evaluation.
// It is the first row of the Kaggle training set.
func ExampleRecord() dataset.Record {
	return dataset.Record{
		ID:           "example",
		LotArea:      8450,
		YearRemodAdd: 2003,
		YrSold:       2008,
		GrLivArea:    1710,
	}
}

// ExampleActualPrice is the recorded sale price of ExampleRecord.
const ExampleActualPrice = 208500.0
