package workflow

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/houseprice/dataset"
	"github.com/YuminosukeSato/houseprice/metrics"
	"github.com/YuminosukeSato/houseprice/pipeline"
	"github.com/YuminosukeSato/houseprice/pkg/errors"
)

// recordingEngine wraps the real engine, records the call order and can fail a named call.
type recordingEngine struct {
	*pipeline.Engine
	calls  []string
	failOn string
}

func (e *recordingEngine) call(name string) error {
	e.calls = append(e.calls, name)
	if e.failOn == name {
		return errors.New("injected " + name + " failure")
	}
	return nil
}

func (e *recordingEngine) Fit(ctx context.Context, records []dataset.Record) (*pipeline.Model, error) {
	if err := e.call("Fit"); err != nil {
		return nil, err
	}
	return e.Engine.Fit(ctx, records)
}

func (e *recordingEngine) Evaluate(ctx context.Context, m *pipeline.Model, records []dataset.Record) (metrics.Report, error) {
	if err := e.call("Evaluate"); err != nil {
		return metrics.Report{}, err
	}
	return e.Engine.Evaluate(ctx, m, records)
}

func (e *recordingEngine) Predict(ctx context.Context, m *pipeline.Model, rec dataset.Record) (float64, error) {
	if err := e.call("Predict"); err != nil {
		return 0, err
	}
	return e.Engine.Predict(ctx, m, rec)
}

func (e *recordingEngine) PredictBatch(ctx context.Context, m *pipeline.Model, records []dataset.Record) ([]float64, error) {
	if err := e.call("PredictBatch"); err != nil {
		return nil, err
	}
	return e.Engine.PredictBatch(ctx, m, records)
}

func (e *recordingEngine) Save(ctx context.Context, m *pipeline.Model, path string) error {
	if err := e.call("Save"); err != nil {
		return err
	}
	return e.Engine.Save(ctx, m, path)
}

func (e *recordingEngine) Load(ctx context.Context, path string) (*pipeline.Model, error) {
	if err := e.call("Load"); err != nil {
		return nil, err
	}
	return e.Engine.Load(ctx, path)
}

func newEngine() *recordingEngine {
	spec := pipeline.DefaultSpec()
	spec.Estimator.Params.NumIterations = 20
	return &recordingEngine{Engine: pipeline.NewEngine(spec, pipeline.WithWorkers(2))}
}

func testPaths(t *testing.T) Paths {
	dir := t.TempDir()
	return Paths{
		Train: filepath.Join("..", "dataset", "testdata", "train.csv"),
		Test:  filepath.Join("..", "dataset", "testdata", "test.csv"),
		Model: filepath.Join(dir, "HousePriceModel.zip"),
	}
}

func TestRunStageOrder(t *testing.T) {
	engine := newEngine()
	paths := testPaths(t)
	var out bytes.Buffer

	summary, err := NewRunner(engine, dataset.HousingSchema(), paths, &out).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"Fit", "Save", "Load", "Evaluate", "Predict", "PredictBatch"}, engine.calls)
	assert.Equal(t, 160, summary.TrainRows)
	assert.Equal(t, 60, summary.TestRows)
	assert.Equal(t, 60, summary.Metrics.N)
	assert.NotEmpty(t, summary.RunID)
	assert.Positive(t, summary.ModelSize)
	assert.Equal(t, ExampleActualPrice, summary.ExampleActual)
	assert.Positive(t, summary.ExamplePredicted)
	require.Len(t, summary.Predictions, 60)
	assert.Equal(t, "1461", summary.Predictions[0].ID)

	text := out.String()
	training := strings.Index(text, "Training model")
	evaluating := strings.Index(text, "Evaluating model")
	example := strings.Index(text, "Predicted SalePrice:")
	first := strings.Index(text, "\n1461,")
	assert.True(t, training >= 0 && training < evaluating && evaluating < example && example < first, text)
	assert.Contains(t, text, "actual SalePrice: 208500")
	assert.Contains(t, text, "The model is saved to "+paths.Model)
	assert.Contains(t, text, "RSquared = ")
	assert.Contains(t, text, "Feature importance (gain):")
}

func TestRunMatchesInMemoryModel(t *testing.T) {
	engine := newEngine()
	paths := testPaths(t)
	ctx := context.Background()

	summary, err := NewRunner(engine, dataset.HousingSchema(), paths, &bytes.Buffer{}).Run(ctx)
	require.NoError(t, err)

	train, err := dataset.Load(paths.Train, dataset.HousingSchema())
	require.NoError(t, err)
	m, err := engine.Engine.Fit(ctx, train)
	require.NoError(t, err)
	v, err := m.Predict(ExampleRecord())
	require.NoError(t, err)
	assert.Equal(t, v, summary.ExamplePredicted, "a reloaded model predicts exactly like the in-memory one")
}

func TestRunWritesOutputs(t *testing.T) {
	paths := testPaths(t)
	dir := filepath.Dir(paths.Model)
	paths.Predictions = filepath.Join(dir, "submission.csv")
	paths.Plot = filepath.Join(dir, "scatter.png")

	_, err := NewRunner(newEngine(), dataset.HousingSchema(), paths, &bytes.Buffer{}).Run(context.Background())
	require.NoError(t, err)

	data, err := os.ReadFile(paths.Predictions)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Equal(t, "Id,SalePrice", lines[0])
	assert.Len(t, lines, 61)
	assert.True(t, strings.HasPrefix(lines[1], "1461,"))

	info, err := os.Stat(paths.Plot)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestRunAbortsOnFailure(t *testing.T) {
	tests := []struct {
		failOn string
		calls  []string
	}{
		{"Fit", []string{"Fit"}},
		{"Save", []string{"Fit", "Save"}},
		{"Load", []string{"Fit", "Save", "Load"}},
		{"Evaluate", []string{"Fit", "Save", "Load", "Evaluate"}},
		{"Predict", []string{"Fit", "Save", "Load", "Evaluate", "Predict"}},
		{"PredictBatch", []string{"Fit", "Save", "Load", "Evaluate", "Predict", "PredictBatch"}},
	}

	for _, tt := range tests {
		t.Run(tt.failOn, func(t *testing.T) {
			engine := newEngine()
			engine.failOn = tt.failOn

			summary, err := NewRunner(engine, dataset.HousingSchema(), testPaths(t), &bytes.Buffer{}).Run(context.Background())
			require.Error(t, err)
			assert.Nil(t, summary)
			assert.Contains(t, err.Error(), "injected "+tt.failOn)
			assert.Equal(t, tt.calls, engine.calls)
		})
	}
}

func TestRunLoaderErrors(t *testing.T) {
	paths := testPaths(t)
	paths.Train = filepath.Join("..", "dataset", "testdata", "absent.csv")
	engine := newEngine()
	_, err := NewRunner(engine, dataset.HousingSchema(), paths, &bytes.Buffer{}).Run(context.Background())
	assert.True(t, errors.IsIOError(err))
	assert.Empty(t, engine.calls, "nothing is trained when the training set cannot be read")

	paths = testPaths(t)
	paths.Test = filepath.Join("..", "dataset", "testdata", "bad_value.csv")
	_, err = NewRunner(newEngine(), dataset.HousingSchema(), paths, &bytes.Buffer{}).Run(context.Background())
	assert.True(t, errors.IsParseError(err))
}

func TestRunUnlabeledTestSet(t *testing.T) {
	paths := testPaths(t)
	paths.Test = filepath.Join("..", "dataset", "testdata", "unlabeled.csv")
	_, err := NewRunner(newEngine(), dataset.HousingSchema(), paths, &bytes.Buffer{}).Run(context.Background())
	assert.True(t, errors.IsPredictionError(err))
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	engine := newEngine()
	_, err := NewRunner(engine, dataset.HousingSchema(), testPaths(t), &bytes.Buffer{}).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, engine.calls)
}
