package dataset

import (
	"os"

	"github.com/gocarina/gocsv"

	"github.com/YuminosukeSato/houseprice/pkg/errors"
)

// Prediction is one output row in the Id,SalePrice submission layout.
type Prediction struct {
	ID        string  `csv:"Id"`
	SalePrice float64 `csv:"SalePrice"`
}

// WritePredictions writes preds to path as CSV with an Id,SalePrice header.
func WritePredictions(path string, preds []Prediction) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.NewIOError("create", path, err)
	}
	if err := gocsv.MarshalFile(&preds, file); err != nil {
		_ = file.Close()
		return errors.NewIOError("write", path, err)
	}
	if err := file.Close(); err != nil {
		return errors.NewIOError("close", path, err)
	}
	return nil
}
