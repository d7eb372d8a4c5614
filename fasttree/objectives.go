package fasttree

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/houseprice/pkg/errors"
)

// TrainingParams.Objective に指定できる名前。
const (
	ObjectiveL2    = "regression"
	ObjectiveL1    = "regression_l1"
	ObjectiveHuber = "huber"
)

// Objective は 1 サンプルあたりの損失とその 1 次・2 次微分を与える。
// ブースティングの各反復で葉の値は -sum(g) / (sum(h) + lambda) になる。
type Objective interface {
	Name() string
	// InitScore は全サンプル共通の初期予測値 (SalePrice の平均や中央値)。
	InitScore(y []float64) float64
	Gradient(pred, y float64) (grad, hess float64)
	Loss(pred, y float64) float64
}

// NewObjective resolves params.Objective. Aliases l2/mse and l1/mae are accepted.
func NewObjective(params TrainingParams) (Objective, error) {
	switch params.Objective {
	case ObjectiveL2, "l2", "mse", "":
		return squaredLoss{}, nil
	case ObjectiveL1, "l1", "mae":
		return absoluteLoss{}, nil
	case ObjectiveHuber:
		delta := params.HuberDelta
		if delta <= 0 {
			delta = 1
		}
		return huberLoss{delta: delta}, nil
	}
	return nil, errors.NewValidationError("objective", "unsupported objective", params.Objective)
}

type squaredLoss struct{}

func (squaredLoss) Name() string { return ObjectiveL2 }

func (squaredLoss) InitScore(y []float64) float64 {
	if len(y) == 0 {
		return 0
	}
	return stat.Mean(y, nil)
}

func (squaredLoss) Gradient(pred, y float64) (float64, float64) { return pred - y, 1 }

func (squaredLoss) Loss(pred, y float64) float64 {
	r := pred - y
	return r * r / 2
}

// absoluteLoss は符号勾配に固定ヘッシアン 1 を組み合わせる。
type absoluteLoss struct{}

func (absoluteLoss) Name() string { return ObjectiveL1 }

func (absoluteLoss) InitScore(y []float64) float64 { return median(y) }

func (absoluteLoss) Gradient(pred, y float64) (float64, float64) {
	r := pred - y
	if math.Abs(r) < 1e-7 {
		return 0, 1
	}
	return math.Copysign(1, r), 1
}

func (absoluteLoss) Loss(pred, y float64) float64 { return math.Abs(pred - y) }

// huberLoss: |r| <= delta では二乗損失、その外側では傾き delta の線形損失。
type huberLoss struct {
	delta float64
}

func (huberLoss) Name() string { return ObjectiveHuber }

func (huberLoss) InitScore(y []float64) float64 {
	if len(y) == 0 {
		return 0
	}
	return stat.Mean(y, nil)
}

func (h huberLoss) Gradient(pred, y float64) (float64, float64) {
	r := pred - y
	if math.Abs(r) <= h.delta {
		return r, 1
	}
	// 線形領域のヘッシアンは 0 だが、葉の値の分母が潰れないよう小さな値にする
	return math.Copysign(h.delta, r), 1e-7
}

func (h huberLoss) Loss(pred, y float64) float64 {
	a := math.Abs(pred - y)
	if a <= h.delta {
		return a * a / 2
	}
	return h.delta * (a - h.delta/2)
}

func median(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	s := slices.Clone(values)
	slices.Sort(s)
	if n%2 == 1 {
		return s[n/2]
	}
	return (s[n/2-1] + s[n/2]) / 2
}
