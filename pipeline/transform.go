package pipeline

import (
	"encoding/json"
	"strconv"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/houseprice/core/model"
	"github.com/YuminosukeSato/houseprice/pkg/errors"
	"github.com/YuminosukeSato/houseprice/preprocessing"
)

// Transform is one step of the chain. Fit learns parameters from the
// training frame only; Apply uses the frozen parameters and never refits.
type Transform interface {
	Step() StepSpec
	Fit(f *Frame) error
	Apply(f *Frame) (*Frame, error)
}

// Build は spec の各ステップに対応する未学習の変換を順番通りに作成する
func Build(spec Spec) ([]Transform, error) {
	transforms := make([]Transform, 0, len(spec.Steps))
	for i, step := range spec.Steps {
		if step.Output == "" {
			step.Output = step.Column
		}
		switch step.Kind {
		case StepMinMax:
			scaler := preprocessing.NewMinMaxScalerDefault()
			if step.FixZero {
				scaler = preprocessing.NewMinMaxScalerFixZero()
			}
			transforms = append(transforms, &scaleTransform{step: step, scaler: scaler})
		case StepStandardize:
			transforms = append(transforms, &scaleTransform{step: step, scaler: preprocessing.NewStandardScalerDefault()})
		case StepOneHot:
			transforms = append(transforms, &oneHotTransform{step: step, encoder: preprocessing.NewOneHotEncoder()})
		case StepConcat:
			transforms = append(transforms, &concatTransform{step: step})
		default:
			return nil, errors.NewValidationError("steps", "unknown step kind at index "+strconv.Itoa(i), string(step.Kind))
		}
	}
	return transforms, nil
}

func vectorInput(f *Frame, name string) (*mat.Dense, error) {
	m, ok := f.Vector(name)
	if !ok {
		return nil, errors.NewValueError("pipeline", "missing vector column "+name)
	}
	return m, nil
}

func asDense(m mat.Matrix) *mat.Dense {
	if d, ok := m.(*mat.Dense); ok {
		return d
	}
	return mat.DenseCopyOf(m)
}

// scaleTransform wraps a column scaler (MinMax or Standard).
type scaleTransform struct {
	step   StepSpec
	scaler model.Transformer
}

func (t *scaleTransform) Step() StepSpec { return t.step }

func (t *scaleTransform) Fit(f *Frame) error {
	in, err := vectorInput(f, t.step.Column)
	if err != nil {
		return err
	}
	return t.scaler.Fit(in)
}

func (t *scaleTransform) Apply(f *Frame) (*Frame, error) {
	in, err := vectorInput(f, t.step.Column)
	if err != nil {
		return nil, err
	}
	out, err := t.scaler.Transform(in)
	if err != nil {
		return nil, err
	}
	return f.WithVector(t.step.Output, asDense(out), f.Slots(t.step.Column)), nil
}

// oneHotTransform encodes a text column.
type oneHotTransform struct {
	step    StepSpec
	encoder *preprocessing.OneHotEncoder
}

func (t *oneHotTransform) Step() StepSpec { return t.step }

func (t *oneHotTransform) Fit(f *Frame) error {
	values, ok := f.Text(t.step.Column)
	if !ok {
		return errors.NewValueError("pipeline", "missing text column "+t.step.Column)
	}
	return t.encoder.Fit(values)
}

func (t *oneHotTransform) Apply(f *Frame) (*Frame, error) {
	values, ok := f.Text(t.step.Column)
	if !ok {
		return nil, errors.NewValueError("pipeline", "missing text column "+t.step.Column)
	}
	out, err := t.encoder.Transform(values)
	if err != nil {
		return nil, err
	}
	return f.WithVector(t.step.Output, out, t.encoder.FeatureNames(t.step.Column)), nil
}

// concatTransform joins vector columns side by side.
// Width is recorded at fit time so a prediction frame of another shape is rejected.
type concatTransform struct {
	step  StepSpec
	Width int `json:"width"`
}

func (t *concatTransform) Step() StepSpec { return t.step }

func (t *concatTransform) Fit(f *Frame) error {
	width := 0
	for _, name := range t.step.Inputs {
		in, err := vectorInput(f, name)
		if err != nil {
			return err
		}
		_, c := in.Dims()
		width += c
	}
	t.Width = width
	return nil
}

func (t *concatTransform) Apply(f *Frame) (*Frame, error) {
	rows := f.Rows()
	out := mat.NewDense(rows, t.Width, nil)
	slots := make([]string, 0, t.Width)
	offset := 0
	for _, name := range t.step.Inputs {
		in, err := vectorInput(f, name)
		if err != nil {
			return nil, err
		}
		_, c := in.Dims()
		if offset+c > t.Width {
			return nil, errors.NewDimensionError("concat "+t.step.Output, t.Width, offset+c, 1)
		}
		if c > 0 {
			out.Slice(0, rows, offset, offset+c).(*mat.Dense).Copy(in)
		}
		slots = append(slots, f.Slots(name)...)
		offset += c
	}
	if offset != t.Width {
		return nil, errors.NewDimensionError("concat "+t.step.Output, t.Width, offset, 1)
	}
	return f.WithVector(t.step.Output, out, slots), nil
}

// fittedState returns the JSON-serialisable parameters of a transform.
func fittedState(t Transform) interface{} {
	switch tt := t.(type) {
	case *scaleTransform:
		return tt.scaler
	case *oneHotTransform:
		return tt.encoder
	case *concatTransform:
		return tt
	}
	return nil
}

// persistedTransform is one entry of transforms.json.
type persistedTransform struct {
	Step  StepSpec        `json:"step"`
	State json.RawMessage `json:"state"`
}

func encodeTransforms(transforms []Transform) ([]persistedTransform, error) {
	out := make([]persistedTransform, len(transforms))
	for i, t := range transforms {
		state, err := json.Marshal(fittedState(t))
		if err != nil {
			return nil, errors.NewModelError("encodeTransforms", "encode step "+strconv.Itoa(i), err)
		}
		out[i] = persistedTransform{Step: t.Step(), State: state}
	}
	return out, nil
}

// restoreTransforms loads fitted parameters into freshly built transforms.
// The persisted steps must match Spec.Steps one to one.
func restoreTransforms(transforms []Transform, persisted []persistedTransform) error {
	if len(transforms) != len(persisted) {
		return errors.NewModelError("restoreTransforms", "step count mismatch", nil)
	}
	for i, t := range transforms {
		step := t.Step()
		if step.Kind != persisted[i].Step.Kind || step.Output != persisted[i].Step.Output {
			return errors.NewModelError("restoreTransforms", "step "+strconv.Itoa(i)+" does not match the pipeline steps", nil)
		}
		if err := json.Unmarshal(persisted[i].State, fittedState(t)); err != nil {
			return errors.NewModelError("restoreTransforms", "decode step "+strconv.Itoa(i), err)
		}
	}
	return nil
}
