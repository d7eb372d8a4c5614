package pipeline

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/YuminosukeSato/houseprice/dataset"
	"github.com/YuminosukeSato/houseprice/fasttree"
	"github.com/YuminosukeSato/houseprice/pkg/errors"
)

// StepKind names a transform step.
type StepKind string

const (
	// StepMinMax rescales a vector column with preprocessing.MinMaxScaler.
	StepMinMax StepKind = "minmax"
	// StepStandardize centers and scales a vector column with preprocessing.StandardScaler.
	StepStandardize StepKind = "standardize"
	// StepOneHot encodes a text column as indicator columns.
	StepOneHot StepKind = "onehot"
	// StepConcat joins vector columns into one, in the listed order.
	StepConcat StepKind = "concat"
)

// EstimatorFastTree is the only estimator kind.
const EstimatorFastTree = "fasttree"

// DefaultFeatures is the column the estimator reads unless the spec names another.
const DefaultFeatures = "Features"

// Spec is a declarative description of the transform chain and the estimator.
type Spec struct {
	Label     string        `yaml:"label"`
	Features  string        `yaml:"features"`
	Steps     []StepSpec    `yaml:"steps"`
	Estimator EstimatorSpec `yaml:"estimator"`
}

// StepSpec describes one step. Column is the input of minmax, standardize
// and onehot; Inputs are the inputs of concat. Output defaults to Column.
type StepSpec struct {
	Kind    StepKind `yaml:"kind" json:"kind"`
	Column  string   `yaml:"column,omitempty" json:"column,omitempty"`
	Output  string   `yaml:"output,omitempty" json:"output,omitempty"`
	Inputs  []string `yaml:"inputs,omitempty" json:"inputs,omitempty"`
	FixZero bool     `yaml:"fix_zero,omitempty" json:"fix_zero,omitempty"`
}

// EstimatorSpec selects the trainer and its hyperparameters.
type EstimatorSpec struct {
	Kind   string                  `yaml:"kind"`
	Params fasttree.TrainingParams `yaml:",inline"`
}

// DefaultSpec は出荷時の構成を返す
//
//  1. LotArea を0固定のMin-Maxで正規化
//  2. YearRemodAdd, YrSold, GrLivArea, LotArea を Features に連結
//  3. FastTree回帰（100本、20葉、葉あたり最小10行、学習率0.2）
func DefaultSpec() Spec {
	return Spec{
		Label:    dataset.ColumnSalePrice,
		Features: DefaultFeatures,
		Steps: []StepSpec{
			{Kind: StepMinMax, Column: dataset.ColumnLotArea, Output: dataset.ColumnLotArea, FixZero: true},
			{Kind: StepConcat, Output: DefaultFeatures, Inputs: []string{
				dataset.ColumnYearRemodAdd,
				dataset.ColumnYrSold,
				dataset.ColumnGrLivArea,
				dataset.ColumnLotArea,
			}},
		},
		Estimator: EstimatorSpec{Kind: EstimatorFastTree, Params: fasttree.DefaultParams()},
	}
}

// LoadSpec reads a YAML pipeline descriptor, applies defaults and validates
// it against the housing schema.
func LoadSpec(path string) (Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Spec{}, errors.NewIOError("read", path, err)
	}
	var spec Spec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return Spec{}, errors.NewValidationError("pipeline", "invalid YAML in "+path, err.Error())
	}
	spec.ApplyDefaults()
	if err := spec.Validate(dataset.HousingSchema()); err != nil {
		return Spec{}, err
	}
	return spec, nil
}

// ApplyDefaults fills in unset fields.
func (s *Spec) ApplyDefaults() {
	if s.Label == "" {
		s.Label = dataset.ColumnSalePrice
	}
	if s.Features == "" {
		s.Features = DefaultFeatures
	}
	if s.Estimator.Kind == "" {
		s.Estimator.Kind = EstimatorFastTree
	}
	s.Estimator.Params = s.Estimator.Params.ApplyDefaults()
	for i := range s.Steps {
		if s.Steps[i].Output == "" {
			s.Steps[i].Output = s.Steps[i].Column
		}
	}
}

// Validate walks the steps in order and checks that every input column is
// provided by the schema or an earlier step, with the right kind.
func (s Spec) Validate(schema dataset.Schema) error {
	if err := schema.Validate(); err != nil {
		return err
	}
	label, ok := schema.Label()
	if !ok {
		return errors.NewValidationError("label", "schema has no label column", nil)
	}
	if s.Label != label.Name {
		return errors.NewValidationError("label", "must be the schema label "+label.Name, s.Label)
	}
	if s.Features == "" {
		return errors.NewValidationError("features", "must not be empty", s.Features)
	}

	vectors := make(map[string]bool)
	texts := make(map[string]bool)
	for _, f := range schema.Fields {
		if f.Role != dataset.RoleFeature {
			continue
		}
		if f.Kind == dataset.KindNumeric {
			vectors[f.Name] = true
		} else {
			texts[f.Name] = true
		}
	}

	for i, step := range s.Steps {
		param := fmt.Sprintf("steps[%d]", i)
		output := step.Output
		if output == "" {
			output = step.Column
		}
		switch step.Kind {
		case StepMinMax, StepStandardize:
			if !vectors[step.Column] {
				return errors.NewValidationError(param+".column", "no numeric column with this name before this step", step.Column)
			}
		case StepOneHot:
			if !texts[step.Column] {
				return errors.NewValidationError(param+".column", "no text column with this name before this step", step.Column)
			}
		case StepConcat:
			if step.Output == "" {
				return errors.NewValidationError(param+".output", "concat needs an output column", nil)
			}
			if len(step.Inputs) == 0 {
				return errors.NewValidationError(param+".inputs", "concat needs at least one input", nil)
			}
			for _, in := range step.Inputs {
				if !vectors[in] {
					return errors.NewValidationError(param+".inputs", "no numeric column with this name before this step", in)
				}
			}
		default:
			return errors.NewValidationError(param+".kind", "unknown step kind", string(step.Kind))
		}
		if output == "" {
			return errors.NewValidationError(param+".output", "must not be empty", nil)
		}
		vectors[output] = true
	}

	if !vectors[s.Features] {
		return errors.NewValidationError("features", "column is not produced by any step", s.Features)
	}
	if s.Estimator.Kind != EstimatorFastTree {
		return errors.NewValidationError("estimator.kind", "unsupported estimator", s.Estimator.Kind)
	}
	return s.Estimator.Params.Validate()
}
