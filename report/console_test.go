package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/YuminosukeSato/houseprice/metrics"
)

func TestConsoleLines(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)

	c.Stage("Training model")
	c.ModelSaved("HousePriceModel.zip", 2048)
	c.Example(201234.56789, 208500)
	c.Prediction("1461", 122000.5)
	c.Prediction("1462", 159500)

	assert.NoError(t, c.Err())
	assert.Equal(t, strings.Join([]string{
		"=============== Training model ===============",
		"The model is saved to HousePriceModel.zip (2.0 kB)",
		"Predicted SalePrice: 201234.5678, actual SalePrice: 208500",
		"1461,122000.5",
		"1462,159500",
		"",
	}, "\n"), buf.String())
}

func TestConsoleMetrics(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)
	c.Metrics(metrics.Report{RMSE: 25000.5, MSE: 625025000.25, MAE: 18000, R2: 0.8125, N: 1460})

	out := buf.String()
	assert.Contains(t, out, "Rms = 25000.5\n")
	assert.Contains(t, out, "Mae = 18000\n")
	assert.Contains(t, out, "RSquared = 0.8125,")
	assert.Contains(t, out, "Evaluated on 1,460 records")
}

func TestConsoleImportance(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)
	c.Importance([]string{"YearRemodAdd", "GrLivArea", "LotArea"}, []float64{1, 3, 0})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 4)
	assert.Contains(t, lines[1], "GrLivArea")
	assert.Contains(t, lines[1], "75.0%")
	assert.Contains(t, lines[2], "YearRemodAdd")
	assert.Contains(t, lines[3], "LotArea")

	buf.Reset()
	c.Importance([]string{"a"}, []float64{0})
	assert.Empty(t, buf.String(), "nothing is printed without any importance")
}

type failingWriter struct{ calls int }

func (w *failingWriter) Write(p []byte) (int, error) {
	w.calls++
	return 0, assert.AnError
}

func TestConsoleKeepsFirstError(t *testing.T) {
	w := &failingWriter{}
	c := NewConsole(w)
	c.Stage("a")
	c.Stage("b")
	assert.ErrorIs(t, c.Err(), assert.AnError)
	assert.Equal(t, 1, w.calls)
}
