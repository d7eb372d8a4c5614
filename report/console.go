// Package report renders workflow results for people: console lines in the
// layout of the training program and a predicted-vs-actual scatter plot.
package report

import (
	"fmt"
	"io"
	"sort"

	"github.com/dustin/go-humanize"

	"github.com/YuminosukeSato/houseprice/metrics"
)

const banner = "==============="

// Console writes progress and results to w.
// The first write error is kept and returned by Err; later writes are skipped.
type Console struct {
	w   io.Writer
	err error
}

// NewConsole returns a Console writing to w.
func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

func (c *Console) printf(format string, args ...interface{}) {
	if c.err != nil {
		return
	}
	_, c.err = fmt.Fprintf(c.w, format, args...)
}

// Err returns the first write error.
func (c *Console) Err() error {
	return c.err
}

// Stage prints a stage banner such as "=============== Training model ===============".
func (c *Console) Stage(title string) {
	c.printf("%s %s %s\n", banner, title, banner)
}

// Blank prints an empty line.
func (c *Console) Blank() {
	c.printf("\n")
}

// ModelSaved reports where the model archive was written and its size.
func (c *Console) ModelSaved(path string, size int64) {
	c.printf("The model is saved to %s (%s)\n", path, humanize.Bytes(uint64(size)))
}

// Metrics prints the evaluation metrics.
func (c *Console) Metrics(r metrics.Report) {
	c.printf("Rms = %s\n", humanize.Ftoa(r.RMSE))
	c.printf("Mae = %s\n", humanize.Ftoa(r.MAE))
	c.printf("RSquared = %s, a value between 0 and 1, the closer to 1, the better\n", humanize.FtoaWithDigits(r.R2, 6))
	c.printf("Evaluated on %s records\n", humanize.Comma(int64(r.N)))
}

// Example prints the prediction for the hand-written example record.
func (c *Console) Example(predicted, actual float64) {
	c.printf("Predicted SalePrice: %s, actual SalePrice: %s\n",
		humanize.FtoaWithDigits(predicted, 4), humanize.Ftoa(actual))
}

// Prediction prints one "Id,SalePrice" line.
func (c *Console) Prediction(id string, price float64) {
	c.printf("%s,%s\n", id, humanize.Ftoa(price))
}

// Importance prints features ordered by their share of the total importance.
func (c *Console) Importance(names []string, values []float64) {
	var total float64
	for _, v := range values {
		total += v
	}
	if total <= 0 || len(names) != len(values) {
		return
	}

	order := make([]int, len(values))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return values[order[a]] > values[order[b]] })

	c.printf("Feature importance (gain):\n")
	for _, i := range order {
		c.printf("  %-16s %5.1f%%\n", names[i], 100*values[i]/total)
	}
}
