// Package preprocessing は特徴量列の正規化とカテゴリ変数のエンコードを提供します。
//
// 各変換器は訓練データでFitしたパラメータを保持し、Transformでは再学習しません。
// 全ての変換器はJSONでパラメータを永続化できます。
package preprocessing

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/houseprice/core/model"
	"github.com/YuminosukeSato/houseprice/pkg/errors"
)

// 定数列とみなすスケールの閾値
const constantEpsilon = 1e-8

var (
	_ model.InverseTransformer = (*StandardScaler)(nil)
	_ model.InverseTransformer = (*MinMaxScaler)(nil)
)

// column は行列のj列目をスライスとして取り出す
func column(X mat.Matrix, j int) []float64 {
	r, _ := X.Dims()
	col := make([]float64, r)
	mat.Col(col, j, X)
	return col
}

// StandardScaler maps each column to zero mean and unit population variance.
// pipeline の "standardize" ステップ (例: GrLivArea -> GrLivAreaStd) が使う。
type StandardScaler struct {
	model.BaseEstimator

	Mean      []float64 `json:"mean"`
	Scale     []float64 `json:"scale"` // 母標準偏差。定数列では 1
	NFeatures int       `json:"n_features"`
	WithMean  bool      `json:"with_mean"`
	WithStd   bool      `json:"with_std"`
}

func NewStandardScaler(withMean, withStd bool) *StandardScaler {
	return &StandardScaler{WithMean: withMean, WithStd: withStd}
}

// NewStandardScalerDefault centers and scales.
func NewStandardScalerDefault() *StandardScaler {
	return NewStandardScaler(true, true)
}

// Fit は列ごとの平均と母分散を gonum/stat で求める。
func (s *StandardScaler) Fit(X mat.Matrix) error {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.NewModelError("StandardScaler.Fit", "empty data", errors.ErrEmptyData)
	}

	s.NFeatures = c
	s.Mean = make([]float64, c)
	s.Scale = make([]float64, c)

	for j := 0; j < c; j++ {
		mean, variance := stat.PopMeanVariance(column(X, j), nil)
		if s.WithMean {
			s.Mean[j] = mean
		}
		s.Scale[j] = 1.0
		if s.WithStd {
			std := math.Sqrt(variance)
			// 標準偏差が0に近い場合は1のまま（ゼロ除算を避ける）
			if std >= constantEpsilon {
				s.Scale[j] = std
			}
		}
	}

	s.SetFitted()
	return nil
}

func (s *StandardScaler) Transform(X mat.Matrix) (mat.Matrix, error) {
	if err := s.CheckFitted("StandardScaler", "Transform"); err != nil {
		return nil, err
	}

	r, c := X.Dims()
	if c != s.NFeatures {
		return nil, errors.NewDimensionError("StandardScaler.Transform", s.NFeatures, c, 1)
	}

	result := mat.NewDense(r, c, nil)
	result.Apply(func(i, j int, v float64) float64 {
		return (v - s.Mean[j]) / s.Scale[j]
	}, X)
	return result, nil
}

func (s *StandardScaler) FitTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.Transform(X)
}

func (s *StandardScaler) InverseTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := s.CheckFitted("StandardScaler", "InverseTransform"); err != nil {
		return nil, err
	}

	r, c := X.Dims()
	if c != s.NFeatures {
		return nil, errors.NewDimensionError("StandardScaler.InverseTransform", s.NFeatures, c, 1)
	}

	result := mat.NewDense(r, c, nil)
	result.Apply(func(i, j int, v float64) float64 {
		return v*s.Scale[j] + s.Mean[j]
	}, X)
	return result, nil
}

// MinMaxScaler はMin-Maxスケーラー
//
// FixZero が false の場合、データを FeatureRange（デフォルト[0,1]）に線形写像する。
// FixZero が true の場合、0を0のまま保ち、各列を max(|min|, |max|) で割る。
// 疎な特徴量の0を保存したい場合に使用する。
type MinMaxScaler struct {
	model.BaseEstimator

	DataMin []float64 `json:"data_min"`
	DataMax []float64 `json:"data_max"`
	// 除数。FixZero=false では max-min、true では max(|min|, |max|)、定数列では 1
	Scale        []float64  `json:"scale"`
	NFeatures    int        `json:"n_features"`
	FeatureRange [2]float64 `json:"feature_range"`
	FixZero      bool       `json:"fix_zero"`
}

func NewMinMaxScaler(featureRange [2]float64) *MinMaxScaler {
	return &MinMaxScaler{FeatureRange: featureRange}
}

// NewMinMaxScalerDefault scales into [0, 1].
func NewMinMaxScalerDefault() *MinMaxScaler {
	return NewMinMaxScaler([2]float64{0, 1})
}

// NewMinMaxScalerFixZero は LotArea の既定ステップで使う。出力は [-1, 1] に収まる。
func NewMinMaxScalerFixZero() *MinMaxScaler {
	return &MinMaxScaler{FeatureRange: [2]float64{-1.0, 1.0}, FixZero: true}
}

func (m *MinMaxScaler) Fit(X mat.Matrix) error {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.NewModelError("MinMaxScaler.Fit", "empty data", errors.ErrEmptyData)
	}
	if !m.FixZero && m.FeatureRange[0] >= m.FeatureRange[1] {
		return errors.NewValidationError("feature_range", "minimum must be smaller than maximum", m.FeatureRange)
	}

	m.NFeatures = c
	m.DataMin = make([]float64, c)
	m.DataMax = make([]float64, c)
	m.Scale = make([]float64, c)

	for j := 0; j < c; j++ {
		col := column(X, j)
		lo, hi := floats.Min(col), floats.Max(col)
		m.DataMin[j] = lo
		m.DataMax[j] = hi

		scale := hi - lo
		if m.FixZero {
			scale = math.Max(math.Abs(lo), math.Abs(hi))
		}
		if scale < constantEpsilon {
			scale = 1.0
		}
		m.Scale[j] = scale
	}

	m.SetFitted()
	return nil
}

// Transform does not clip values outside the training range.
func (m *MinMaxScaler) Transform(X mat.Matrix) (mat.Matrix, error) {
	if err := m.CheckFitted("MinMaxScaler", "Transform"); err != nil {
		return nil, err
	}

	r, c := X.Dims()
	if c != m.NFeatures {
		return nil, errors.NewDimensionError("MinMaxScaler.Transform", m.NFeatures, c, 1)
	}

	result := mat.NewDense(r, c, nil)
	if m.FixZero {
		result.Apply(func(i, j int, v float64) float64 {
			return v / m.Scale[j]
		}, X)
		return result, nil
	}

	// X_scaled = (X - X.min) / (X.max - X.min) * (max - min) + min
	featureRange := m.FeatureRange[1] - m.FeatureRange[0]
	result.Apply(func(i, j int, v float64) float64 {
		return (v-m.DataMin[j])/m.Scale[j]*featureRange + m.FeatureRange[0]
	}, X)
	return result, nil
}

func (m *MinMaxScaler) FitTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := m.Fit(X); err != nil {
		return nil, err
	}
	return m.Transform(X)
}

func (m *MinMaxScaler) InverseTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := m.CheckFitted("MinMaxScaler", "InverseTransform"); err != nil {
		return nil, err
	}

	r, c := X.Dims()
	if c != m.NFeatures {
		return nil, errors.NewDimensionError("MinMaxScaler.InverseTransform", m.NFeatures, c, 1)
	}

	result := mat.NewDense(r, c, nil)
	if m.FixZero {
		result.Apply(func(i, j int, v float64) float64 {
			return v * m.Scale[j]
		}, X)
		return result, nil
	}

	featureRange := m.FeatureRange[1] - m.FeatureRange[0]
	result.Apply(func(i, j int, v float64) float64 {
		return (v-m.FeatureRange[0])/featureRange*m.Scale[j] + m.DataMin[j]
	}, X)
	return result, nil
}
