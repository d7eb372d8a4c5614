package preprocessing

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/houseprice/pkg/errors"
)

func lotAreas() *mat.Dense {
	return mat.NewDense(4, 1, []float64{8450, 9600, 11250, 1300})
}

func TestMinMaxScaler(t *testing.T) {
	scaler := NewMinMaxScalerDefault()
	out, err := scaler.FitTransform(lotAreas())
	require.NoError(t, err)

	assert.InDelta(t, 0.7186, out.At(0, 0), 1e-4)
	assert.InDelta(t, 1.0, out.At(2, 0), 1e-12)
	assert.InDelta(t, 0.0, out.At(3, 0), 1e-12)

	// 学習範囲外の値はクリップされない
	beyond, err := scaler.Transform(mat.NewDense(1, 1, []float64{21200}))
	require.NoError(t, err)
	assert.InDelta(t, 2.0, beyond.At(0, 0), 1e-12)

	back, err := scaler.InverseTransform(out)
	require.NoError(t, err)
	assert.True(t, mat.EqualApprox(back, lotAreas(), 1e-9))
}

func TestMinMaxScalerFixZero(t *testing.T) {
	scaler := NewMinMaxScalerFixZero()
	out, err := scaler.FitTransform(mat.NewDense(3, 2, []float64{
		-4, 0,
		2, 5,
		0, 10,
	}))
	require.NoError(t, err)

	assert.Equal(t, []float64{4, 10}, scaler.Scale)
	assert.InDelta(t, -1.0, out.At(0, 0), 1e-12)
	assert.InDelta(t, 0.0, out.At(2, 0), 1e-12)
	assert.InDelta(t, 0.5, out.At(1, 1), 1e-12)
}

func TestMinMaxScalerConstantColumn(t *testing.T) {
	scaler := NewMinMaxScalerDefault()
	out, err := scaler.FitTransform(mat.NewDense(3, 1, []float64{7, 7, 7}))
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		assert.Equal(t, 0.0, out.At(i, 0))
	}
}

func TestStandardScaler(t *testing.T) {
	scaler := NewStandardScalerDefault()
	X := mat.NewDense(4, 2, []float64{
		1, 10,
		2, 10,
		3, 10,
		4, 10,
	})
	out, err := scaler.FitTransform(X)
	require.NoError(t, err)

	assert.InDelta(t, 2.5, scaler.Mean[0], 1e-12)
	assert.InDelta(t, 1.118034, scaler.Scale[0], 1e-6)
	assert.Equal(t, 1.0, scaler.Scale[1], "constant column keeps unit scale")
	assert.InDelta(t, -1.341641, out.At(0, 0), 1e-6)
	assert.Equal(t, 0.0, out.At(0, 1))

	back, err := scaler.InverseTransform(out)
	require.NoError(t, err)
	assert.True(t, mat.EqualApprox(back, X, 1e-9))
}

func TestScalerErrors(t *testing.T) {
	minmax := NewMinMaxScalerDefault()
	_, err := minmax.Transform(lotAreas())
	var notFitted *errors.NotFittedError
	assert.True(t, errors.As(err, &notFitted))

	require.NoError(t, minmax.Fit(lotAreas()))
	_, err = minmax.Transform(mat.NewDense(1, 2, nil))
	var dimErr *errors.DimensionError
	assert.True(t, errors.As(err, &dimErr))

	inverted := NewMinMaxScaler([2]float64{1, 0})
	assert.Error(t, inverted.Fit(lotAreas()))

	standard := NewStandardScalerDefault()
	_, err = standard.Transform(lotAreas())
	assert.True(t, errors.As(err, &notFitted))
}

func TestScalerJSONKeepsFittedState(t *testing.T) {
	scaler := NewMinMaxScalerDefault()
	require.NoError(t, scaler.Fit(lotAreas()))

	data, err := json.Marshal(scaler)
	require.NoError(t, err)

	var restored MinMaxScaler
	require.NoError(t, json.Unmarshal(data, &restored))
	assert.True(t, restored.IsFitted())

	want, err := scaler.Transform(lotAreas())
	require.NoError(t, err)
	got, err := restored.Transform(lotAreas())
	require.NoError(t, err)
	assert.True(t, mat.Equal(want, got))
}
