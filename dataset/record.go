package dataset

// Record is one house sale. Optional fields absent from the file hold their zero value.
type Record struct {
	ID           string  `json:"id"`
	MSSubClass   string  `json:"ms_sub_class,omitempty"`
	LotArea      float64 `json:"lot_area"`
	YearRemodAdd float64 `json:"year_remod_add"`
	YrSold       float64 `json:"yr_sold"`
	GrLivArea    float64 `json:"gr_liv_area"`
	SalePrice    float64 `json:"sale_price,omitempty"`

	// HasLabel reports whether SalePrice was read from the file.
	HasLabel bool `json:"has_label"`
}

// recordColumns lists the columns a Record can hold and their kinds.
var recordColumns = map[string]Kind{
	ColumnID:           KindText,
	ColumnMSSubClass:   KindText,
	ColumnLotArea:      KindNumeric,
	ColumnYearRemodAdd: KindNumeric,
	ColumnYrSold:       KindNumeric,
	ColumnGrLivArea:    KindNumeric,
	ColumnSalePrice:    KindNumeric,
}

// Numeric returns a numeric column by name.
func (r *Record) Numeric(name string) (float64, bool) {
	switch name {
	case ColumnLotArea:
		return r.LotArea, true
	case ColumnYearRemodAdd:
		return r.YearRemodAdd, true
	case ColumnYrSold:
		return r.YrSold, true
	case ColumnGrLivArea:
		return r.GrLivArea, true
	case ColumnSalePrice:
		return r.SalePrice, true
	}
	return 0, false
}

// Text returns a text column by name.
func (r *Record) Text(name string) (string, bool) {
	switch name {
	case ColumnID:
		return r.ID, true
	case ColumnMSSubClass:
		return r.MSSubClass, true
	}
	return "", false
}

func (r *Record) setNumeric(name string, v float64) {
	switch name {
	case ColumnLotArea:
		r.LotArea = v
	case ColumnYearRemodAdd:
		r.YearRemodAdd = v
	case ColumnYrSold:
		r.YrSold = v
	case ColumnGrLivArea:
		r.GrLivArea = v
	case ColumnSalePrice:
		r.SalePrice = v
	}
}

func (r *Record) setText(name, v string) {
	switch name {
	case ColumnID:
		r.ID = v
	case ColumnMSSubClass:
		r.MSSubClass = v
	}
}

// rawRecord is the string view of a CSV row as decoded by gocsv.
type rawRecord struct {
	ID           string `csv:"Id"`
	MSSubClass   string `csv:"MSSubClass"`
	LotArea      string `csv:"LotArea"`
	YearRemodAdd string `csv:"YearRemodAdd"`
	YrSold       string `csv:"YrSold"`
	GrLivArea    string `csv:"GrLivArea"`
	SalePrice    string `csv:"SalePrice"`
}

func (r *rawRecord) get(name string) string {
	switch name {
	case ColumnID:
		return r.ID
	case ColumnMSSubClass:
		return r.MSSubClass
	case ColumnLotArea:
		return r.LotArea
	case ColumnYearRemodAdd:
		return r.YearRemodAdd
	case ColumnYrSold:
		return r.YrSold
	case ColumnGrLivArea:
		return r.GrLivArea
	case ColumnSalePrice:
		return r.SalePrice
	}
	return ""
}
