package pipeline

import (
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/houseprice/dataset"
	"github.com/YuminosukeSato/houseprice/pkg/errors"
)

func TestDefaultSpec(t *testing.T) {
	spec := DefaultSpec()
	require.NoError(t, spec.Validate(dataset.HousingSchema()))

	require.Len(t, spec.Steps, 2)
	assert.Equal(t, StepMinMax, spec.Steps[0].Kind)
	assert.Equal(t, dataset.ColumnLotArea, spec.Steps[0].Column)
	assert.True(t, spec.Steps[0].FixZero)
	assert.Equal(t, StepConcat, spec.Steps[1].Kind)
	assert.Equal(t, []string{"YearRemodAdd", "YrSold", "GrLivArea", "LotArea"}, spec.Steps[1].Inputs)

	params := spec.Estimator.Params
	assert.Equal(t, 100, params.NumIterations)
	assert.Equal(t, 20, params.NumLeaves)
	assert.Equal(t, 10, params.MinDataInLeaf)
	assert.InDelta(t, 0.2, params.LearningRate, 1e-12)
}

func TestLoadSpec(t *testing.T) {
	spec, err := LoadSpec(filepath.Join("testdata", "onehot.yaml"))
	require.NoError(t, err)

	assert.Equal(t, dataset.ColumnSalePrice, spec.Label)
	assert.Equal(t, DefaultFeatures, spec.Features)
	require.Len(t, spec.Steps, 4)
	assert.Equal(t, dataset.ColumnLotArea, spec.Steps[0].Output, "output defaults to column")
	assert.Equal(t, "GrLivAreaStd", spec.Steps[1].Output)
	assert.Equal(t, StepOneHot, spec.Steps[2].Kind)

	params := spec.Estimator.Params
	assert.Equal(t, 30, params.NumIterations)
	assert.Equal(t, 8, params.NumLeaves)
	assert.Equal(t, 5, params.MinDataInLeaf)
	assert.Equal(t, int64(7), params.Seed)
	assert.InDelta(t, 0.2, params.LearningRate, 1e-12, "unset values take defaults")
}

func TestLoadSpecErrors(t *testing.T) {
	_, err := LoadSpec(filepath.Join("testdata", "absent.yaml"))
	require.Error(t, err)
	assert.True(t, errors.IsIOError(err))
	assert.True(t, errors.Is(err, fs.ErrNotExist))

	_, err = LoadSpec(filepath.Join("testdata", "not_yaml.yaml"))
	var verr *errors.ValidationError
	require.True(t, errors.As(err, &verr))

	_, err = LoadSpec(filepath.Join("testdata", "bad_order.yaml"))
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "steps[0].inputs", verr.ParamName)
}

func TestSpecValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Spec)
		param  string
	}{
		{"wrong label", func(s *Spec) { s.Label = "LotArea" }, "label"},
		{"empty features", func(s *Spec) { s.Features = "" }, "features"},
		{"unknown kind", func(s *Spec) { s.Steps[0].Kind = "log" }, "steps[0].kind"},
		{"unknown column", func(s *Spec) { s.Steps[0].Column = "PoolArea" }, "steps[0].column"},
		{"label as input", func(s *Spec) { s.Steps[1].Inputs = append(s.Steps[1].Inputs, "SalePrice") }, "steps[1].inputs"},
		{"text into scaler", func(s *Spec) { s.Steps[0].Column = "MSSubClass" }, "steps[0].column"},
		{"numeric into onehot", func(s *Spec) { s.Steps[0] = StepSpec{Kind: StepOneHot, Column: "LotArea", Output: "LotArea"} }, "steps[0].column"},
		{"concat without output", func(s *Spec) { s.Steps[1].Output = "" }, "steps[1].output"},
		{"concat without inputs", func(s *Spec) { s.Steps[1].Inputs = nil }, "steps[1].inputs"},
		{"features not produced", func(s *Spec) { s.Features = "Vector" }, "features"},
		{"estimator kind", func(s *Spec) { s.Estimator.Kind = "sdca" }, "estimator.kind"},
		{"estimator params", func(s *Spec) { s.Estimator.Params.NumLeaves = 1 }, "num_leaves"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := DefaultSpec()
			tt.modify(&spec)
			err := spec.Validate(dataset.HousingSchema())
			var verr *errors.ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			assert.Equal(t, tt.param, verr.ParamName)
		})
	}
}

func TestBuildPreservesOrder(t *testing.T) {
	spec, err := LoadSpec(filepath.Join("testdata", "onehot.yaml"))
	require.NoError(t, err)

	transforms, err := Build(spec)
	require.NoError(t, err)
	require.Len(t, transforms, len(spec.Steps))
	for i, tr := range transforms {
		assert.Equal(t, spec.Steps[i], tr.Step())
	}
}
