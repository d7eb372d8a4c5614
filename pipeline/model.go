package pipeline

import (
	"math"
	"time"

	"gonum.org/v1/gonum/mat"
	"gopkg.in/yaml.v3"

	"github.com/YuminosukeSato/houseprice/core/model"
	"github.com/YuminosukeSato/houseprice/core/parallel"
	"github.com/YuminosukeSato/houseprice/dataset"
	"github.com/YuminosukeSato/houseprice/fasttree"
	"github.com/YuminosukeSato/houseprice/pkg/errors"
	"github.com/YuminosukeSato/houseprice/pkg/log"
)

// Archive entry names.
const (
	entrySpec       = "spec.yaml"
	entryTransforms = "transforms.json"
	entryEnsemble   = "ensemble.json"
	entryMeta       = "meta.json"
)

// sequentialBatch is the batch size up to which PredictBatch stays on one goroutine.
const sequentialBatch = 32

// Metadata describes a training run.
type Metadata struct {
	RunID        string          `json:"run_id"`
	CreatedAt    time.Time       `json:"created_at"`
	TrainingRows int             `json:"training_rows"`
	FeatureNames []string        `json:"feature_names"`
	Schema       []dataset.Field `json:"schema"`
}

// Model は学習済みのパイプライン（変換パラメータ + 木のアンサンブル）
//
// Fit または LoadModel が返した後は変更されないため、複数のゴルーチンから
// 同時に予測してよい。ファイルから読み込んだモデルとメモリ上のモデルは
// 同じ入力に対して同じ値を返す。
type Model struct {
	spec       Spec
	schema     dataset.Schema
	transforms []Transform
	regressor  *fasttree.Regressor
	meta       Metadata
}

// Spec returns the spec the model was built from.
func (m *Model) Spec() Spec { return m.spec }

// Metadata returns the run metadata.
func (m *Model) Metadata() Metadata { return m.meta }

// Ensemble returns the fitted tree ensemble.
func (m *Model) Ensemble() *fasttree.Ensemble { return m.regressor.Ensemble() }

// FeatureNames lists the slots of the feature vector in estimator order.
func (m *Model) FeatureNames() []string { return m.meta.FeatureNames }

func (m *Model) fitted() bool {
	return m != nil && m.regressor != nil && m.regressor.IsFitted()
}

// checkRecord rejects records whose numeric features are not finite.
func (m *Model) checkRecord(rec *dataset.Record) error {
	for _, f := range m.schema.Fields {
		if f.Role != dataset.RoleFeature || f.Kind != dataset.KindNumeric {
			continue
		}
		v, _ := rec.Numeric(f.Name)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.NewPredictionError(rec.ID, "feature "+f.Name+" is not finite", nil)
		}
	}
	return nil
}

// features runs the frozen transform chain and returns the feature matrix.
func (m *Model) features(records []dataset.Record) (*mat.Dense, error) {
	frame, err := NewFrame(records, m.schema)
	if err != nil {
		return nil, err
	}
	for _, t := range m.transforms {
		frame, err = t.Apply(frame)
		if err != nil {
			return nil, err
		}
	}
	X, ok := frame.Vector(m.spec.Features)
	if !ok {
		return nil, errors.NewValueError("pipeline", "missing vector column "+m.spec.Features)
	}
	if _, c := X.Dims(); c != len(m.meta.FeatureNames) {
		return nil, errors.NewDimensionError("Model.features", len(m.meta.FeatureNames), c, 1)
	}
	return X, nil
}

func (m *Model) predictRecords(records []dataset.Record) ([]float64, error) {
	X, err := m.features(records)
	if err != nil {
		return nil, err
	}
	pred, err := m.regressor.Predict(X)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(records))
	mat.Col(out, 0, pred)
	return out, nil
}

// Predict scores a single record.
func (m *Model) Predict(rec dataset.Record) (float64, error) {
	if !m.fitted() {
		return 0, errors.NewPredictionError(rec.ID, "model is not fitted", errors.NewNotFittedError("pipeline.Model", "Predict"))
	}
	if err := m.checkRecord(&rec); err != nil {
		return 0, err
	}
	preds, err := m.predictRecords([]dataset.Record{rec})
	if err != nil {
		return 0, errors.NewPredictionError(rec.ID, "transform failed", err)
	}
	return preds[0], nil
}

// PredictBatch scores records in order. Batches larger than sequentialBatch
// are split into contiguous chunks scored concurrently; workers <= 0 uses every CPU.
func (m *Model) PredictBatch(records []dataset.Record, workers int) ([]float64, error) {
	if !m.fitted() {
		return nil, errors.NewPredictionError("", "model is not fitted", errors.NewNotFittedError("pipeline.Model", "PredictBatch"))
	}
	for i := range records {
		if err := m.checkRecord(&records[i]); err != nil {
			return nil, err
		}
	}

	out := make([]float64, len(records))
	errs := make([]error, len(records))
	parallel.ParallelizeWithThreshold(len(records), sequentialBatch, workers, func(start, end int) {
		preds, err := m.predictRecords(records[start:end])
		if err != nil {
			errs[start] = errors.NewPredictionError(records[start].ID, "transform failed", err)
			return
		}
		copy(out[start:end], preds)
	})
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Save は学習済みモデルをzipアーカイブとして保存する
//
// アーカイブには spec.yaml、transforms.json、ensemble.json、meta.json が含まれる。
func (m *Model) Save(path string) error {
	if !m.fitted() {
		return errors.NewNotFittedError("pipeline.Model", "Save")
	}
	specData, err := yaml.Marshal(m.spec)
	if err != nil {
		return errors.NewModelError("Model.Save", "encode "+entrySpec, err)
	}
	persisted, err := encodeTransforms(m.transforms)
	if err != nil {
		return err
	}

	entries := []model.ArchiveEntry{{Name: entrySpec, Data: specData}}
	for _, e := range []struct {
		name string
		v    interface{}
	}{
		{entryTransforms, persisted},
		{entryEnsemble, m.regressor.Ensemble()},
		{entryMeta, m.meta},
	} {
		entry, err := model.JSONEntry(e.name, e.v)
		if err != nil {
			return err
		}
		entries = append(entries, entry)
	}

	if err := model.SaveArchive(path, entries); err != nil {
		return err
	}
	log.GetLoggerWithName("pipeline").Info("Model saved",
		log.OperationKey, log.OperationSave,
		log.PathKey, path,
		"run_id", m.meta.RunID,
	)
	return nil
}

// LoadModel reads a model archive written by Model.Save.
// A missing file is an IOError; a corrupt or incomplete archive is a ModelError.
func LoadModel(path string) (*Model, error) {
	archive, err := model.OpenArchive(path)
	if err != nil {
		return nil, err
	}

	specData, err := archive.Entry(entrySpec)
	if err != nil {
		return nil, err
	}
	var spec Spec
	if err := yaml.Unmarshal(specData, &spec); err != nil {
		return nil, errors.NewModelError("LoadModel", "decode "+entrySpec, err)
	}
	spec.ApplyDefaults()

	var meta Metadata
	if err := archive.DecodeJSON(entryMeta, &meta); err != nil {
		return nil, err
	}
	schema := dataset.Schema{Fields: meta.Schema}
	if err := spec.Validate(schema); err != nil {
		return nil, errors.NewModelError("LoadModel", "invalid spec", err)
	}

	transforms, err := Build(spec)
	if err != nil {
		return nil, errors.NewModelError("LoadModel", "build transforms", err)
	}
	var persisted []persistedTransform
	if err := archive.DecodeJSON(entryTransforms, &persisted); err != nil {
		return nil, err
	}
	if err := restoreTransforms(transforms, persisted); err != nil {
		return nil, err
	}

	ensemble := &fasttree.Ensemble{}
	if err := archive.DecodeJSON(entryEnsemble, ensemble); err != nil {
		return nil, err
	}
	if !ensemble.IsFitted() {
		return nil, errors.NewModelError("LoadModel", "ensemble is not fitted", nil)
	}
	if err := ensemble.Validate(); err != nil {
		return nil, errors.NewModelError("LoadModel", "corrupt "+entryEnsemble, err)
	}
	if ensemble.NumFeatures != len(meta.FeatureNames) {
		return nil, errors.NewModelError("LoadModel", "feature count mismatch",
			errors.NewDimensionError("LoadModel", len(meta.FeatureNames), ensemble.NumFeatures, 1))
	}

	log.GetLoggerWithName("pipeline").Info("Model loaded",
		log.OperationKey, log.OperationLoad,
		log.PathKey, path,
		log.DataSizeKey, archive.Size,
		"run_id", meta.RunID,
		"trees", ensemble.NumTrees(),
	)
	return &Model{
		spec:       spec,
		schema:     schema,
		transforms: transforms,
		regressor:  fasttree.NewRegressorFromEnsemble(ensemble),
		meta:       meta,
	}, nil
}
