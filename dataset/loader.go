package dataset

import (
	"bytes"
	"encoding/csv"
	"io"
	"math"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/YuminosukeSato/houseprice/pkg/errors"
	"github.com/YuminosukeSato/houseprice/pkg/log"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Load reads every row of the CSV file at path.
//
// The header row is mandatory. A required column missing from the header, or
// a required numeric field that is empty or not a finite number, yields a
// ParseError naming the file, the 1-based data row, the record id and the
// column. Optional numeric fields that cannot be parsed default to 0, and so
// do optional fields cut off by a short row.
// A missing file yields an IOError satisfying errors.Is(err, fs.ErrNotExist).
func Load(path string, schema Schema) ([]Record, error) {
	if err := schema.Validate(); err != nil {
		return nil, err
	}
	logger := log.GetLoggerWithName("dataset")
	start := time.Now()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewIOError("read", path, err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	present, err := readHeader(data)
	if err != nil {
		return nil, errors.NewIOError("decode header", path, err)
	}
	for _, f := range schema.Fields {
		if f.Required && !present[f.Name] {
			return nil, errors.NewMissingColumnError(path, f.Name)
		}
	}

	// 末尾の任意列が欠けた行も読み込む。欠けた列は空文字として扱い、必須なら下で ParseError になる。
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	var raws []*rawRecord
	if err := gocsv.UnmarshalCSV(reader, &raws); err != nil {
		return nil, errors.NewIOError("decode", path, err)
	}

	records := make([]Record, 0, len(raws))
	var defaulted, labeled int
	var defaultedCols []string
	for i, raw := range raws {
		row := i + 1
		id := strings.TrimSpace(raw.ID)
		var rec Record
		for _, f := range schema.Fields {
			if !present[f.Name] {
				continue
			}
			value := strings.TrimSpace(raw.get(f.Name))
			if f.Kind == KindText {
				rec.setText(f.Name, value)
				continue
			}

			v, err := parseNumber(value)
			if err != nil {
				if f.Required {
					return nil, errors.NewParseError(path, row, id, f.Name, value, err)
				}
				logger.Debug("Optional value defaulted to 0",
					log.PathKey, path, "row", row, log.RecordIDKey, id, "column", f.Name, "value", value)
				defaulted++
				if !slices.Contains(defaultedCols, f.Name) {
					defaultedCols = append(defaultedCols, f.Name)
				}
				continue
			}
			rec.setNumeric(f.Name, v)
			if f.Role == RoleLabel {
				rec.HasLabel = true
			}
		}
		if rec.HasLabel {
			labeled++
		}
		records = append(records, rec)
	}

	if defaulted > 0 {
		errors.Warn(errors.NewDefaultedValueWarning(path, defaultedCols, defaulted))
	}

	logger.Info("Dataset loaded",
		log.PathKey, path,
		log.SamplesKey, len(records),
		"labeled", labeled,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return records, nil
}

// readHeader returns the set of column names in the first CSV row.
// An empty file has no columns.
func readHeader(data []byte) (map[string]bool, error) {
	header, err := csv.NewReader(bytes.NewReader(data)).Read()
	if err == io.EOF {
		return map[string]bool{}, nil
	}
	if err != nil {
		return nil, err
	}
	present := make(map[string]bool, len(header))
	for _, name := range header {
		present[strings.TrimSpace(name)] = true
	}
	return present, nil
}

// parseNumber accepts finite decimal numbers in the invariant format.
func parseNumber(s string) (float64, error) {
	if s == "" {
		return 0, errors.New("empty value")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errors.Newf("non-finite value %q", s)
	}
	return v, nil
}
