// Package dataset loads house sale records from CSV and writes prediction files.
//
// Columns are located by header name. Extra columns are ignored, required
// columns must be present in the header and hold a finite number on every row.
package dataset

import (
	"github.com/YuminosukeSato/houseprice/pkg/errors"
)

// Kind is the value type of a column.
type Kind int

const (
	KindNumeric Kind = iota
	KindText
)

func (k Kind) String() string {
	if k == KindText {
		return "text"
	}
	return "numeric"
}

// Role is how the workflow uses a column.
type Role int

const (
	RoleFeature Role = iota
	RoleID
	RoleLabel
)

func (r Role) String() string {
	switch r {
	case RoleID:
		return "id"
	case RoleLabel:
		return "label"
	default:
		return "feature"
	}
}

// Column names of the housing dataset.
const (
	ColumnID           = "Id"
	ColumnMSSubClass   = "MSSubClass"
	ColumnLotArea      = "LotArea"
	ColumnYearRemodAdd = "YearRemodAdd"
	ColumnYrSold       = "YrSold"
	ColumnGrLivArea    = "GrLivArea"
	ColumnSalePrice    = "SalePrice"
)

// Field describes one column of the input file.
type Field struct {
	Name     string
	Kind     Kind
	Role     Role
	Required bool
}

// Schema is the ordered list of columns the loader reads.
type Schema struct {
	Fields []Field
}

// HousingSchema is the default schema: Id, the four numeric features,
// the optional MSSubClass category and the optional SalePrice label.
func HousingSchema() Schema {
	return Schema{Fields: []Field{
		{Name: ColumnID, Kind: KindText, Role: RoleID, Required: true},
		{Name: ColumnMSSubClass, Kind: KindText, Role: RoleFeature},
		{Name: ColumnLotArea, Kind: KindNumeric, Role: RoleFeature, Required: true},
		{Name: ColumnYearRemodAdd, Kind: KindNumeric, Role: RoleFeature, Required: true},
		{Name: ColumnYrSold, Kind: KindNumeric, Role: RoleFeature, Required: true},
		{Name: ColumnGrLivArea, Kind: KindNumeric, Role: RoleFeature, Required: true},
		{Name: ColumnSalePrice, Kind: KindNumeric, Role: RoleLabel},
	}}
}

// Field looks up a column by name.
func (s Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Label returns the label column, if the schema has one.
func (s Schema) Label() (Field, bool) {
	for _, f := range s.Fields {
		if f.Role == RoleLabel {
			return f, true
		}
	}
	return Field{}, false
}

// Validate checks that every field maps to a Record attribute with the
// matching kind, that names are unique and that there is at most one id and label.
func (s Schema) Validate() error {
	if len(s.Fields) == 0 {
		return errors.NewValidationError("schema", "no fields", nil)
	}
	seen := make(map[string]bool, len(s.Fields))
	roles := make(map[Role]int)
	for _, f := range s.Fields {
		if seen[f.Name] {
			return errors.NewValidationError("schema", "duplicate field", f.Name)
		}
		seen[f.Name] = true
		roles[f.Role]++

		kind, ok := recordColumns[f.Name]
		if !ok {
			return errors.NewValidationError("schema", "unknown column", f.Name)
		}
		if kind != f.Kind {
			return errors.NewValidationError("schema", "column "+f.Name+" must be "+kind.String(), f.Kind.String())
		}
		if f.Role == RoleLabel && f.Kind != KindNumeric {
			return errors.NewValidationError("schema", "label must be numeric", f.Name)
		}
	}
	if roles[RoleID] > 1 || roles[RoleLabel] > 1 {
		return errors.NewValidationError("schema", "at most one id and one label column", nil)
	}
	return nil
}
