package fasttree

import (
	"context"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/houseprice/core/model"
	"github.com/YuminosukeSato/houseprice/pkg/errors"
)

var _ model.Regressor = (*Regressor)(nil)

// Regressor adapts Trainer and Ensemble to the matrix-based estimator interfaces.
//
// Example:
//
//	reg := fasttree.NewRegressor(fasttree.DefaultParams())
//	if err := reg.FitContext(ctx, X, y); err != nil { ... }
//	pred, err := reg.Predict(XTest)
type Regressor struct {
	Params    TrainingParams
	Callbacks []Callback

	ensemble *Ensemble
}

// NewRegressor creates an unfitted regressor.
func NewRegressor(params TrainingParams, callbacks ...Callback) *Regressor {
	return &Regressor{Params: params, Callbacks: callbacks}
}

// NewRegressorFromEnsemble wraps an already fitted ensemble, e.g. one loaded from disk.
func NewRegressorFromEnsemble(ensemble *Ensemble) *Regressor {
	return &Regressor{Params: ensemble.Params, ensemble: ensemble}
}

// Fit trains with a background context. y must be an n×1 column.
func (r *Regressor) Fit(X, y mat.Matrix) error {
	return r.FitContext(context.Background(), X, y)
}

// FitContext trains the regressor; ctx is checked between boosting iterations.
func (r *Regressor) FitContext(ctx context.Context, X, y mat.Matrix) error {
	rows, cols := y.Dims()
	if cols != 1 {
		return errors.NewDimensionError("Regressor.Fit", 1, cols, 1)
	}
	targets := make([]float64, rows)
	mat.Col(targets, 0, y)

	ensemble, err := NewTrainer(r.Params).WithCallbacks(r.Callbacks...).Fit(ctx, X, targets)
	if err != nil {
		return err
	}
	r.ensemble = ensemble
	return nil
}

// Predict returns an n×1 column of predictions.
func (r *Regressor) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !r.IsFitted() {
		return nil, errors.NewNotFittedError("Regressor", "Predict")
	}
	preds, err := r.ensemble.PredictMatrix(X)
	if err != nil {
		return nil, err
	}
	return mat.NewVecDense(len(preds), preds), nil
}

// IsFitted reports whether Fit has completed.
func (r *Regressor) IsFitted() bool {
	return r.ensemble != nil && r.ensemble.IsFitted()
}

// Ensemble returns the fitted ensemble, or nil before Fit.
func (r *Regressor) Ensemble() *Ensemble {
	return r.ensemble
}
