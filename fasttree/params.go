package fasttree

import (
	"github.com/YuminosukeSato/houseprice/pkg/errors"
)

// TrainingParams contains all training hyperparameters
type TrainingParams struct {
	// Basic parameters
	NumIterations int     `json:"num_iterations" yaml:"num_trees"`
	LearningRate  float64 `json:"learning_rate" yaml:"learning_rate"`
	NumLeaves     int     `json:"num_leaves" yaml:"num_leaves"`
	MaxDepth      int     `json:"max_depth" yaml:"max_depth"` // 0 means unlimited
	MinDataInLeaf int     `json:"min_data_in_leaf" yaml:"min_data_in_leaf"`

	// Regularization
	Lambda         float64 `json:"lambda_l2" yaml:"lambda_l2"`
	MinGainToSplit float64 `json:"min_gain_to_split" yaml:"min_gain_to_split"`

	// Sampling
	SubsampleFraction float64 `json:"subsample_fraction" yaml:"subsample_fraction"`

	// Objective
	Objective  string  `json:"objective" yaml:"objective"`
	HuberDelta float64 `json:"huber_delta" yaml:"huber_delta"`

	Seed int64 `json:"seed" yaml:"seed"`
}

// DefaultParams returns the FastTree regression defaults:
// 100 trees, 20 leaves, at least 10 rows per leaf and a learning rate of 0.2.
func DefaultParams() TrainingParams {
	return TrainingParams{
		NumIterations:     100,
		LearningRate:      0.2,
		NumLeaves:         20,
		MinDataInLeaf:     10,
		SubsampleFraction: 1.0,
		Objective:         ObjectiveL2,
		HuberDelta:        1.0,
	}
}

// ApplyDefaults returns p with zero-valued fields taken from DefaultParams.
func (p TrainingParams) ApplyDefaults() TrainingParams {
	d := DefaultParams()
	if p.NumIterations == 0 {
		p.NumIterations = d.NumIterations
	}
	if p.LearningRate == 0 {
		p.LearningRate = d.LearningRate
	}
	if p.NumLeaves == 0 {
		p.NumLeaves = d.NumLeaves
	}
	if p.MinDataInLeaf == 0 {
		p.MinDataInLeaf = d.MinDataInLeaf
	}
	if p.SubsampleFraction == 0 {
		p.SubsampleFraction = d.SubsampleFraction
	}
	if p.Objective == "" {
		p.Objective = d.Objective
	}
	if p.HuberDelta == 0 {
		p.HuberDelta = d.HuberDelta
	}
	return p
}

// Validate checks parameter ranges after defaults have been applied.
func (p TrainingParams) Validate() error {
	switch {
	case p.NumIterations < 1:
		return errors.NewValidationError("num_trees", "must be >= 1", p.NumIterations)
	case p.LearningRate <= 0 || p.LearningRate > 1:
		return errors.NewValidationError("learning_rate", "must be in (0, 1]", p.LearningRate)
	case p.NumLeaves < 2:
		return errors.NewValidationError("num_leaves", "must be >= 2", p.NumLeaves)
	case p.MaxDepth < 0:
		return errors.NewValidationError("max_depth", "must be >= 0", p.MaxDepth)
	case p.MinDataInLeaf < 1:
		return errors.NewValidationError("min_data_in_leaf", "must be >= 1", p.MinDataInLeaf)
	case p.Lambda < 0:
		return errors.NewValidationError("lambda_l2", "must be >= 0", p.Lambda)
	case p.MinGainToSplit < 0:
		return errors.NewValidationError("min_gain_to_split", "must be >= 0", p.MinGainToSplit)
	case p.SubsampleFraction <= 0 || p.SubsampleFraction > 1:
		return errors.NewValidationError("subsample_fraction", "must be in (0, 1]", p.SubsampleFraction)
	case p.HuberDelta <= 0:
		return errors.NewValidationError("huber_delta", "must be > 0", p.HuberDelta)
	}
	if _, err := NewObjective(p); err != nil {
		return err
	}
	return nil
}
