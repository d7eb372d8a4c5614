package model

import (
	"fmt"
	"io/fs"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/houseprice/pkg/errors"
)

type leafParams struct {
	Values []float64 `json:"values"`
	Name   string    `json:"name"`
}

func TestArchiveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.zip")

	entry, err := JSONEntry("params.json", leafParams{Values: []float64{1.5, -2}, Name: "leaf"})
	require.NoError(t, err)
	raw := ArchiveEntry{Name: "spec.yaml", Data: []byte("label: SalePrice\n")}

	require.NoError(t, SaveArchive(path, []ArchiveEntry{raw, entry}))

	archive, err := OpenArchive(path)
	require.NoError(t, err)
	assert.Equal(t, path, archive.Path)
	assert.Positive(t, archive.Size)

	data, err := archive.Entry("spec.yaml")
	require.NoError(t, err)
	assert.Equal(t, "label: SalePrice\n", string(data))

	var got leafParams
	require.NoError(t, archive.DecodeJSON("params.json", &got))
	assert.Equal(t, []float64{1.5, -2}, got.Values)
	assert.Equal(t, "leaf", got.Name)

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "temporary file must be renamed")
}

func TestOpenArchiveMissingFile(t *testing.T) {
	_, err := OpenArchive(filepath.Join(t.TempDir(), "absent.zip"))
	require.Error(t, err)
	assert.True(t, errors.IsIOError(err))
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestOpenArchiveCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.zip")
	require.NoError(t, os.WriteFile(path, []byte("not a zip archive"), 0o600))

	_, err := OpenArchive(path)
	require.Error(t, err)
	var modelErr *errors.ModelError
	assert.True(t, errors.As(err, &modelErr))
}

func TestArchiveMissingEntry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.zip")
	require.NoError(t, SaveArchive(path, nil))

	archive, err := OpenArchive(path)
	require.NoError(t, err)

	_, err = archive.Entry("ensemble.json")
	assert.Error(t, err)
	assert.Error(t, archive.DecodeJSON("meta.json", &leafParams{}))
}

func TestBaseEstimatorState(t *testing.T) {
	var e BaseEstimator
	assert.False(t, e.IsFitted())
	assert.Error(t, e.CheckFitted("Ensemble", "Predict"))

	e.SetFitted()
	assert.True(t, e.IsFitted())
	assert.NoError(t, e.CheckFitted("Ensemble", "Predict"))

	e.Reset()
	assert.False(t, e.IsFitted())
}

// limitedWriter accepts n bytes, then fails like a full disk.
type limitedWriter struct{ n int }

func (w *limitedWriter) Write(p []byte) (int, error) {
	if len(p) > w.n {
		written := w.n
		w.n = 0
		return written, fmt.Errorf("no space left on device")
	}
	w.n -= len(p)
	return len(p), nil
}

func TestWriteArchiveWriterFailureIsIOError(t *testing.T) {
	// 圧縮が効かない内容にして、zip のバッファを確実に溢れさせる
	data := make([]byte, 64<<10)
	rand.New(rand.NewSource(1)).Read(data)
	entry := ArchiveEntry{Name: "ensemble.json", Data: data}

	for _, limit := range []int{0, 16, 1 << 10} {
		t.Run(fmt.Sprintf("limit=%d", limit), func(t *testing.T) {
			err := WriteArchive(&limitedWriter{n: limit}, "HousePriceModel.zip.tmp", []ArchiveEntry{entry})
			require.Error(t, err)
			assert.True(t, errors.IsIOError(err), "got %T: %v", err, err)
			var merr *errors.ModelError
			assert.False(t, errors.As(err, &merr))
			assert.Contains(t, err.Error(), "HousePriceModel.zip.tmp")
			assert.Contains(t, err.Error(), "no space left on device")
		})
	}
}
