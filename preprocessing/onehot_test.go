package preprocessing

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOneHotEncoder(t *testing.T) {
	enc := NewOneHotEncoder()
	out, err := enc.FitTransform([]string{"60", "20", "60", "70"})
	require.NoError(t, err)

	assert.Equal(t, []string{"20", "60", "70"}, enc.Categories)
	assert.Equal(t, 3, enc.Width())
	assert.Equal(t, []float64{0, 1, 0}, out.RawRowView(0))
	assert.Equal(t, []float64{1, 0, 0}, out.RawRowView(1))
	assert.Equal(t, []string{"MSSubClass=20", "MSSubClass=60", "MSSubClass=70"}, enc.FeatureNames("MSSubClass"))
}

func TestOneHotEncoderUnseenCategory(t *testing.T) {
	enc := NewOneHotEncoder()
	require.NoError(t, enc.Fit([]string{"20", "60"}))

	out, err := enc.Transform([]string{"190", "60"})
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0}, out.RawRowView(0))
	assert.Equal(t, []float64{0, 1}, out.RawRowView(1))
}

func TestOneHotEncoderRestored(t *testing.T) {
	enc := NewOneHotEncoder()
	require.NoError(t, enc.Fit([]string{"b", "a"}))
	data, err := json.Marshal(enc)
	require.NoError(t, err)

	var restored OneHotEncoder
	require.NoError(t, json.Unmarshal(data, &restored))
	out, err := restored.Transform([]string{"b"})
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1}, out.RawRowView(0))
}

func TestOneHotEncoderErrors(t *testing.T) {
	enc := NewOneHotEncoder()
	_, err := enc.Transform([]string{"a"})
	assert.Error(t, err)
	assert.Error(t, enc.Fit(nil))
}
