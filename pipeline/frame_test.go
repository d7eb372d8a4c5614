package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/houseprice/dataset"
)

func TestNewFrame(t *testing.T) {
	records := []dataset.Record{
		{ID: "1", MSSubClass: "60", LotArea: 8450, YearRemodAdd: 2003, YrSold: 2008, GrLivArea: 1710, SalePrice: 208500, HasLabel: true},
		{ID: "2", MSSubClass: "20", LotArea: 9600, YearRemodAdd: 1976, YrSold: 2007, GrLivArea: 1262, SalePrice: 181500, HasLabel: true},
	}
	f, err := NewFrame(records, dataset.HousingSchema())
	require.NoError(t, err)

	assert.Equal(t, 2, f.Rows())
	assert.Equal(t, []string{"GrLivArea", "LotArea", "YearRemodAdd", "YrSold"}, f.VectorNames())

	lot, ok := f.Vector("LotArea")
	require.True(t, ok)
	assert.Equal(t, []float64{8450, 9600}, mat.Col(nil, 0, lot))
	assert.Equal(t, []string{"LotArea"}, f.Slots("LotArea"))

	classes, ok := f.Text("MSSubClass")
	require.True(t, ok)
	assert.Equal(t, []string{"60", "20"}, classes)

	_, ok = f.Vector("SalePrice")
	assert.False(t, ok, "the label never enters the frame")
	_, ok = f.Text("Id")
	assert.False(t, ok)
}

func TestFrameWithVectorCopies(t *testing.T) {
	f, err := NewFrame([]dataset.Record{{ID: "1", LotArea: 1}}, dataset.HousingSchema())
	require.NoError(t, err)

	g := f.WithVector("Features", mat.NewDense(1, 2, []float64{3, 4}), []string{"a", "b"})
	_, ok := f.Vector("Features")
	assert.False(t, ok, "the original frame is unchanged")
	_, ok = g.Vector("Features")
	assert.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, g.Slots("Features"))
}

func TestNewFrameEmpty(t *testing.T) {
	_, err := NewFrame(nil, dataset.HousingSchema())
	assert.Error(t, err)
}
