package pipeline

import (
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/houseprice/dataset"
	"github.com/YuminosukeSato/houseprice/pkg/errors"
)

// Frame is an immutable set of named columns over the same rows.
// Vector columns are rows × width matrices, text columns hold one string per row.
// Vector and text columns live in separate namespaces.
type Frame struct {
	rows    int
	vectors map[string]*mat.Dense
	slots   map[string][]string
	texts   map[string][]string
}

// NewFrame builds a frame from the feature columns of schema.
// Numeric features become width-1 vector columns, text features text columns.
// The id and label columns are not part of the frame.
func NewFrame(records []dataset.Record, schema dataset.Schema) (*Frame, error) {
	if len(records) == 0 {
		return nil, errors.NewValueError("NewFrame", "no records")
	}
	f := &Frame{
		rows:    len(records),
		vectors: make(map[string]*mat.Dense),
		slots:   make(map[string][]string),
		texts:   make(map[string][]string),
	}
	for _, field := range schema.Fields {
		if field.Role != dataset.RoleFeature {
			continue
		}
		switch field.Kind {
		case dataset.KindNumeric:
			col := mat.NewDense(len(records), 1, nil)
			for i := range records {
				v, _ := records[i].Numeric(field.Name)
				col.Set(i, 0, v)
			}
			f.vectors[field.Name] = col
			f.slots[field.Name] = []string{field.Name}
		case dataset.KindText:
			col := make([]string, len(records))
			for i := range records {
				col[i], _ = records[i].Text(field.Name)
			}
			f.texts[field.Name] = col
		}
	}
	return f, nil
}

// Rows returns the number of rows.
func (f *Frame) Rows() int {
	return f.rows
}

// Vector returns a vector column.
func (f *Frame) Vector(name string) (*mat.Dense, bool) {
	m, ok := f.vectors[name]
	return m, ok
}

// Slots returns the names of the components of a vector column.
func (f *Frame) Slots(name string) []string {
	return f.slots[name]
}

// Text returns a text column.
func (f *Frame) Text(name string) ([]string, bool) {
	col, ok := f.texts[name]
	return col, ok
}

// VectorNames lists vector columns in sorted order.
func (f *Frame) VectorNames() []string {
	names := make([]string, 0, len(f.vectors))
	for name := range f.vectors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// WithVector returns a copy of f where name holds m.
// Existing matrices are shared, never modified.
func (f *Frame) WithVector(name string, m *mat.Dense, slots []string) *Frame {
	out := &Frame{
		rows:    f.rows,
		vectors: make(map[string]*mat.Dense, len(f.vectors)+1),
		slots:   make(map[string][]string, len(f.slots)+1),
		texts:   f.texts,
	}
	for k, v := range f.vectors {
		out.vectors[k] = v
	}
	for k, v := range f.slots {
		out.slots[k] = v
	}
	out.vectors[name] = m
	out.slots[name] = slots
	return out
}
