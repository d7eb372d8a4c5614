package preprocessing

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/houseprice/core/model"
	"github.com/YuminosukeSato/houseprice/pkg/errors"
)

// OneHotEncoder はカテゴリ文字列を指示ベクトルに変換する
//
// カテゴリは辞書順に並べられ、出力の列順はその順序に従う。
// 学習時に存在しなかったカテゴリは全て0の行になる。
type OneHotEncoder struct {
	model.BaseEstimator

	// Categories は学習時に観測したカテゴリ（辞書順）
	Categories []string `json:"categories"`
}

// NewOneHotEncoder は新しいOneHotEncoderを作成する
func NewOneHotEncoder() *OneHotEncoder {
	return &OneHotEncoder{}
}

// Fit は観測されたカテゴリを記録する
func (o *OneHotEncoder) Fit(values []string) error {
	if len(values) == 0 {
		return errors.NewModelError("OneHotEncoder.Fit", "empty data", errors.ErrEmptyData)
	}

	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		seen[v] = struct{}{}
	}
	o.Categories = make([]string, 0, len(seen))
	for v := range seen {
		o.Categories = append(o.Categories, v)
	}
	sort.Strings(o.Categories)

	o.SetFitted()
	return nil
}

// position はカテゴリの列番号を返す。未知のカテゴリは-1
func (o *OneHotEncoder) position(v string) int {
	j := sort.SearchStrings(o.Categories, v)
	if j < len(o.Categories) && o.Categories[j] == v {
		return j
	}
	return -1
}

// Width は出力の列数
func (o *OneHotEncoder) Width() int {
	return len(o.Categories)
}

// Transform は各値をlen(Categories)列の指示ベクトルに変換する
func (o *OneHotEncoder) Transform(values []string) (*mat.Dense, error) {
	if err := o.CheckFitted("OneHotEncoder", "Transform"); err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, errors.NewModelError("OneHotEncoder.Transform", "empty data", errors.ErrEmptyData)
	}

	result := mat.NewDense(len(values), len(o.Categories), nil)
	for i, v := range values {
		if j := o.position(v); j >= 0 {
			result.Set(i, j, 1)
		}
	}
	return result, nil
}

// FitTransform は学習と変換を同時に行う
func (o *OneHotEncoder) FitTransform(values []string) (*mat.Dense, error) {
	if err := o.Fit(values); err != nil {
		return nil, err
	}
	return o.Transform(values)
}

// FeatureNames は出力列の名前を prefix=category の形式で返す
func (o *OneHotEncoder) FeatureNames(prefix string) []string {
	names := make([]string, len(o.Categories))
	for i, c := range o.Categories {
		names[i] = fmt.Sprintf("%s=%s", prefix, c)
	}
	return names
}
