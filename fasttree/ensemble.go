package fasttree

import (
	"math"
	"strconv"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/houseprice/core/model"
	"github.com/YuminosukeSato/houseprice/pkg/errors"
)

// Importance types accepted by Ensemble.FeatureImportance.
const (
	ImportanceSplit = "split"
	ImportanceGain  = "gain"
)

// Ensemble is a fitted boosted tree model. It is immutable once returned by
// Trainer.Fit and safe for concurrent prediction.
type Ensemble struct {
	model.BaseEstimator

	InitScore    float64        `json:"init_score"`
	Trees        []Tree         `json:"trees"`
	NumFeatures  int            `json:"num_features"`
	FeatureNames []string       `json:"feature_names,omitempty"`
	Params       TrainingParams `json:"params"`
}

// Predict scores a single feature vector.
func (e *Ensemble) Predict(features []float64) (float64, error) {
	if err := e.CheckFitted("Ensemble", "Predict"); err != nil {
		return 0, err
	}
	if len(features) != e.NumFeatures {
		return 0, errors.NewDimensionError("Ensemble.Predict", e.NumFeatures, len(features), 1)
	}
	for j, v := range features {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, errors.NewValueError("Ensemble.Predict", "non-finite value in feature "+e.featureName(j))
		}
	}
	return e.predictRaw(features), nil
}

func (e *Ensemble) predictRaw(features []float64) float64 {
	score := e.InitScore
	for i := range e.Trees {
		score += e.Trees[i].Predict(features)
	}
	return score
}

// PredictMatrix scores every row of X.
func (e *Ensemble) PredictMatrix(X mat.Matrix) ([]float64, error) {
	rows, cols := X.Dims()
	out := make([]float64, rows)
	row := make([]float64, cols)
	for i := 0; i < rows; i++ {
		mat.Row(row, i, X)
		v, err := e.Predict(row)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// FeatureImportance returns per-feature split counts (ImportanceSplit)
// or summed split gains (ImportanceGain).
func (e *Ensemble) FeatureImportance(importanceType string) ([]float64, error) {
	if err := e.CheckFitted("Ensemble", "FeatureImportance"); err != nil {
		return nil, err
	}
	if importanceType != ImportanceSplit && importanceType != ImportanceGain {
		return nil, errors.NewValidationError("importance_type", "must be split or gain", importanceType)
	}

	importance := make([]float64, e.NumFeatures)
	for i := range e.Trees {
		for _, node := range e.Trees[i].Nodes {
			if node.IsLeaf() {
				continue
			}
			if importanceType == ImportanceSplit {
				importance[node.SplitFeature]++
			} else {
				importance[node.SplitFeature] += node.Gain
			}
		}
	}
	return importance, nil
}

// Validate checks the tree structure of a decoded ensemble.
// 学習時は子ノードが必ず親より後ろに追加されるので、parent < child を要求すれば循環も弾ける。
func (e *Ensemble) Validate() error {
	if e.NumFeatures <= 0 {
		return errors.NewValidationError("num_features", "must be > 0", e.NumFeatures)
	}
	for t := range e.Trees {
		nodes := e.Trees[t].Nodes
		for id, n := range nodes {
			where := "trees[" + strconv.Itoa(t) + "].nodes[" + strconv.Itoa(id) + "]"
			if n.IsLeaf() {
				if math.IsNaN(n.LeafValue) || math.IsInf(n.LeafValue, 0) {
					return errors.NewValidationError(where+".value", "must be finite", n.LeafValue)
				}
				continue
			}
			if n.LeftChild <= id || n.LeftChild >= len(nodes) {
				return errors.NewValidationError(where+".left", "child index out of range", n.LeftChild)
			}
			if n.RightChild <= id || n.RightChild >= len(nodes) {
				return errors.NewValidationError(where+".right", "child index out of range", n.RightChild)
			}
			if n.SplitFeature < 0 || n.SplitFeature >= e.NumFeatures {
				return errors.NewValidationError(where+".feature", "feature index out of range", n.SplitFeature)
			}
		}
	}
	return nil
}

// NumTrees returns the number of boosting rounds actually kept.
func (e *Ensemble) NumTrees() int {
	return len(e.Trees)
}

func (e *Ensemble) featureName(j int) string {
	if j < len(e.FeatureNames) {
		return e.FeatureNames[j]
	}
	return "#" + strconv.Itoa(j)
}
