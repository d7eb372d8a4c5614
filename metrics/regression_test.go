package metrics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/houseprice/pkg/errors"
)

func TestMSE(t *testing.T) {
	tests := []struct {
		name    string
		yTrue   *mat.VecDense
		yPred   *mat.VecDense
		want    float64
		wantErr bool
	}{
		{
			name:  "perfect prediction",
			yTrue: mat.NewVecDense(5, []float64{1, 2, 3, 4, 5}),
			yPred: mat.NewVecDense(5, []float64{1, 2, 3, 4, 5}),
			want:  0,
		},
		{
			name:  "simple case",
			yTrue: mat.NewVecDense(4, []float64{1, 2, 3, 4}),
			yPred: mat.NewVecDense(4, []float64{1.5, 2.5, 2.5, 3.5}),
			want:  0.25,
		},
		{
			name:  "larger errors",
			yTrue: mat.NewVecDense(3, []float64{10, 20, 30}),
			yPred: mat.NewVecDense(3, []float64{12, 18, 33}),
			want:  17.0 / 3.0,
		},
		{
			name:    "dimension mismatch",
			yTrue:   mat.NewVecDense(3, []float64{1, 2, 3}),
			yPred:   mat.NewVecDense(2, []float64{1, 2}),
			wantErr: true,
		},
		{
			name:    "empty vectors",
			yTrue:   &mat.VecDense{},
			yPred:   &mat.VecDense{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MSE(tt.yTrue, tt.yPred)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-10)
		})
	}
}

func TestRMSEAndMAE(t *testing.T) {
	yTrue := mat.NewVecDense(3, []float64{10, 20, 30})
	yPred := mat.NewVecDense(3, []float64{12, 18, 33})

	rmse, err := RMSE(yTrue, yPred)
	require.NoError(t, err)
	assert.InDelta(t, math.Sqrt(17.0/3.0), rmse, 1e-10)

	mae, err := MAE(yTrue, yPred)
	require.NoError(t, err)
	assert.InDelta(t, 7.0/3.0, mae, 1e-10)

	_, err = MAE(yTrue, mat.NewVecDense(1, []float64{1}))
	var dimErr *errors.DimensionError
	assert.True(t, errors.As(err, &dimErr))
}

func TestR2Score(t *testing.T) {
	tests := []struct {
		name  string
		yTrue []float64
		yPred []float64
		want  float64
	}{
		{"perfect", []float64{1, 2, 3, 4}, []float64{1, 2, 3, 4}, 1},
		{"mean predictor", []float64{1, 2, 3, 4}, []float64{2.5, 2.5, 2.5, 2.5}, 0},
		{"worse than mean", []float64{1, 2, 3}, []float64{3, 2, 1}, -3},
		{"good fit", []float64{3, -0.5, 2, 7}, []float64{2.5, 0, 2, 8}, 0.9486081370449679},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := R2Score(mat.NewVecDense(len(tt.yTrue), tt.yTrue), mat.NewVecDense(len(tt.yPred), tt.yPred))
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-10)
		})
	}
}

func TestR2ScoreZeroVarianceWarns(t *testing.T) {
	var warnings []error
	errors.SetWarningHandler(func(w error) { warnings = append(warnings, w) })
	defer errors.SetWarningHandler(nil)

	got, err := R2Score(mat.NewVecDense(3, []float64{5, 5, 5}), mat.NewVecDense(3, []float64{4, 5, 6}))
	require.NoError(t, err)
	assert.Equal(t, 0.0, got)
	require.Len(t, warnings, 1)

	var undefined *errors.UndefinedMetricWarning
	assert.True(t, errors.As(warnings[0], &undefined))
}

func TestEvaluate(t *testing.T) {
	report, err := Evaluate([]float64{10, 20, 30}, []float64{12, 18, 33})
	require.NoError(t, err)

	assert.Equal(t, 3, report.N)
	assert.InDelta(t, 17.0/3.0, report.MSE, 1e-10)
	assert.InDelta(t, math.Sqrt(report.MSE), report.RMSE, 1e-12)
	assert.InDelta(t, 7.0/3.0, report.MAE, 1e-10)
	assert.LessOrEqual(t, report.R2, 1.0)
	assert.GreaterOrEqual(t, report.RMSE, 0.0)
	assert.Contains(t, report.String(), "n=3")
}

func TestEvaluateRejectsInvalidInput(t *testing.T) {
	_, err := Evaluate(nil, nil)
	assert.Error(t, err)

	_, err = Evaluate([]float64{1, 2}, []float64{1})
	assert.Error(t, err)

	_, err = Evaluate([]float64{1, 2}, []float64{1, math.NaN()})
	var instability *errors.NumericalInstabilityError
	assert.True(t, errors.As(err, &instability))
}
