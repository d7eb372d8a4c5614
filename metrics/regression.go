// Package metrics は回帰モデルの評価指標を計算します。
package metrics

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/houseprice/pkg/errors"
)

// Report は1回の評価で得られる回帰指標
type Report struct {
	RMSE float64 `json:"rmse"`
	MSE  float64 `json:"mse"`
	MAE  float64 `json:"mae"`
	R2   float64 `json:"r2"`
	N    int     `json:"n"`
}

// String は1行の要約を返す
func (r Report) String() string {
	return fmt.Sprintf("n=%d rmse=%.4f mse=%.4f mae=%.4f r2=%.4f", r.N, r.RMSE, r.MSE, r.MAE, r.R2)
}

// Evaluate は正解値と予測値から全ての指標を計算する
//
// 入力は同じ長さで空でなく、全て有限でなければならない。
// 正解値の分散が0の場合、R2は0として報告され UndefinedMetricWarning が発行される。
func Evaluate(yTrue, yPred []float64) (Report, error) {
	if len(yTrue) == 0 {
		return Report{}, errors.NewValueError("Evaluate", "empty vector")
	}
	if len(yPred) != len(yTrue) {
		return Report{}, errors.NewDimensionError("Evaluate", len(yTrue), len(yPred), 0)
	}
	if err := errors.CheckNumericalStability("Evaluate.yTrue", yTrue, 0); err != nil {
		return Report{}, err
	}
	if err := errors.CheckNumericalStability("Evaluate.yPred", yPred, 0); err != nil {
		return Report{}, err
	}

	t := mat.NewVecDense(len(yTrue), yTrue)
	p := mat.NewVecDense(len(yPred), yPred)

	mse, err := MSE(t, p)
	if err != nil {
		return Report{}, err
	}
	mae, err := MAE(t, p)
	if err != nil {
		return Report{}, err
	}
	r2, err := R2Score(t, p)
	if err != nil {
		return Report{}, err
	}

	return Report{
		RMSE: math.Sqrt(mse),
		MSE:  mse,
		MAE:  mae,
		R2:   r2,
		N:    len(yTrue),
	}, nil
}

func checkPair(op string, yTrue, yPred *mat.VecDense) (int, error) {
	n := yTrue.Len()
	if n == 0 {
		return 0, errors.NewValueError(op, "empty vector")
	}
	if yPred.Len() != n {
		return 0, errors.NewDimensionError(op, n, yPred.Len(), 0)
	}
	return n, nil
}

// MSE は平均二乗誤差（Mean Squared Error）を計算する
func MSE(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := checkPair("MSE", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	// MSE = (1/n) * Σ(yTrue - yPred)²
	diff := mat.NewVecDense(n, nil)
	diff.SubVec(yTrue, yPred)
	return mat.Dot(diff, diff) / float64(n), nil
}

// RMSE は平方根平均二乗誤差（Root Mean Squared Error）を計算する
func RMSE(yTrue, yPred *mat.VecDense) (float64, error) {
	mse, err := MSE(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(mse), nil
}

// MAE は平均絶対誤差（Mean Absolute Error）を計算する
func MAE(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := checkPair("MAE", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	// MAE = (1/n) * Σ|yTrue - yPred|
	diff := mat.NewVecDense(n, nil)
	diff.SubVec(yTrue, yPred)
	return floats.Norm(diff.RawVector().Data, 1) / float64(n), nil
}

// R2Score は決定係数（R²）を計算する
//
// 正解値が全て同じ値の場合は定義できないため、0を返し警告を発行する。
func R2Score(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := checkPair("R2Score", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	truth := make([]float64, n)
	for i := range truth {
		truth[i] = yTrue.AtVec(i)
	}
	yMean := stat.Mean(truth, nil)

	// 全変動（TSS）と残差変動（RSS）
	var tss, rss float64
	for i := 0; i < n; i++ {
		d := truth[i] - yMean
		r := truth[i] - yPred.AtVec(i)
		tss += d * d
		rss += r * r
	}

	if tss == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning("r2", "labels have zero variance", 0))
		return 0, nil
	}

	// R² = 1 - RSS/TSS
	return 1 - rss/tss, nil
}
