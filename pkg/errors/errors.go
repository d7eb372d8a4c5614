// Package errors は houseprice 全体のエラーハンドリングと警告システムを提供します。
// 学習ワークフローの各段階（読み込み、学習、評価、予測）に対応するエラー種別を持ち、
// cockroachdb/errors によるスタックトレースを付与します。
package errors

import (
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// 警告はエラーと違って処理を止めない。既定では標準 log に出し、
// pkg/log が初期化されると SetZerologWarnFunc で zerolog に切り替わる。
var (
	warnMu     sync.Mutex
	warnStdlib = func(w error) { log.Printf("houseprice-warning: %v\n", w) }
	warnZero   func(w error)
)

// SetWarningHandler replaces the fallback handler. Tests use it to collect warnings.
func SetWarningHandler(handler func(w error)) {
	warnMu.Lock()
	warnStdlib = handler
	warnMu.Unlock()
}

// SetZerologWarnFunc は pkg/log から呼ばれる（pkg/errors -> pkg/log の循環 import を避けるため）。
func SetZerologWarnFunc(fn func(w error)) {
	warnMu.Lock()
	warnZero = fn
	warnMu.Unlock()
}

// Warn reports w without aborting.
func Warn(w error) {
	warnMu.Lock()
	defer warnMu.Unlock()
	switch {
	case warnZero != nil:
		warnZero(w)
	case warnStdlib != nil:
		warnStdlib(w)
	}
}

// DefaultedValueWarning: CSV の任意項目が読めず 0 で埋めた件数。
type DefaultedValueWarning struct {
	Path    string
	Columns []string
	Count   int
}

func (w *DefaultedValueWarning) Error() string {
	return fmt.Sprintf("%d optional values in %s could not be parsed and were set to 0 (columns: %s)",
		w.Count, w.Path, strings.Join(w.Columns, ", "))
}

func (w *DefaultedValueWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("path", w.Path).
		Strs("columns", w.Columns).
		Int("count", w.Count).
		Str("type", "DefaultedValueWarning")
}

func NewDefaultedValueWarning(path string, columns []string, count int) *DefaultedValueWarning {
	return &DefaultedValueWarning{Path: path, Columns: columns, Count: count}
}

// UndefinedMetricWarning は指標が定義できず Result で代用したことを示す。
// テストセットの SalePrice が全て同じ値だと R² がこれになる。
type UndefinedMetricWarning struct {
	Metric    string
	Condition string
	Result    float64
}

func (w *UndefinedMetricWarning) Error() string {
	return fmt.Sprintf("%s is undefined (%s); reporting %g", w.Metric, w.Condition, w.Result)
}

func (w *UndefinedMetricWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("metric", w.Metric).
		Str("condition", w.Condition).
		Float64("result", w.Result).
		Str("type", "UndefinedMetricWarning")
}

func NewUndefinedMetricWarning(metric, condition string, result float64) *UndefinedMetricWarning {
	return &UndefinedMetricWarning{Metric: metric, Condition: condition, Result: result}
}

// --- ワークフローのエラー種別 ---

// IOError はCSVやモデルファイルの読み書きに失敗した場合のエラーです。
// ファイルが存在しない場合は errors.Is(err, fs.ErrNotExist) で判定できます。
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("houseprice: %s %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("houseprice: %s %s", e.Op, e.Path)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

func (e *IOError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Str("path", e.Path).
		Str("type", "IOError")
}

func NewIOError(op, path string, err error) error {
	return errors.WithStack(&IOError{Op: op, Path: path, Err: err})
}

// ParseError はCSVの必須数値フィールドが解釈できない場合のエラーです。
// Row はヘッダーを除いた1始まりの行番号で、列自体が無い場合は0になります。
type ParseError struct {
	Path   string
	Row    int
	ID     string
	Column string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Row == 0 {
		return fmt.Sprintf("houseprice: parse %s: required column %q is missing", e.Path, e.Column)
	}
	msg := fmt.Sprintf("houseprice: parse %s: row %d (id=%q): column %q: invalid number %q", e.Path, e.Row, e.ID, e.Column, e.Value)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func (e *ParseError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("path", e.Path).
		Int("row", e.Row).
		Str("id", e.ID).
		Str("column", e.Column).
		Str("value", e.Value).
		Str("type", "ParseError")
}

// NewParseError は行の値が数値として解釈できない場合のParseErrorを作成します。
func NewParseError(path string, row int, id, column, value string, err error) error {
	return errors.WithStack(&ParseError{Path: path, Row: row, ID: id, Column: column, Value: value, Err: err})
}

// NewMissingColumnError は必須列がヘッダーに存在しない場合のParseErrorを作成します。
func NewMissingColumnError(path, column string) error {
	return errors.WithStack(&ParseError{Path: path, Column: column})
}

// TrainingError は推定器の学習に失敗した場合のエラーです。
// 収束しない場合や、変換後に必要な列が存在しない場合に発生します。
type TrainingError struct {
	Op     string
	Reason string
	Err    error
}

func (e *TrainingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("houseprice: %s: training failed: %s: %v", e.Op, e.Reason, e.Err)
	}
	return fmt.Sprintf("houseprice: %s: training failed: %s", e.Op, e.Reason)
}

func (e *TrainingError) Unwrap() error {
	return e.Err
}

func (e *TrainingError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Str("reason", e.Reason).
		Str("type", "TrainingError")
}

func NewTrainingError(op, reason string, err error) error {
	return errors.WithStack(&TrainingError{Op: op, Reason: reason, Err: err})
}

// PredictionError は予測時の入力レコードが不正な場合のエラーです。
type PredictionError struct {
	ID     string
	Reason string
	Err    error
}

func (e *PredictionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("houseprice: predict id=%q: %s: %v", e.ID, e.Reason, e.Err)
	}
	return fmt.Sprintf("houseprice: predict id=%q: %s", e.ID, e.Reason)
}

func (e *PredictionError) Unwrap() error {
	return e.Err
}

func (e *PredictionError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("id", e.ID).
		Str("reason", e.Reason).
		Str("type", "PredictionError")
}

func NewPredictionError(id, reason string, err error) error {
	return errors.WithStack(&PredictionError{ID: id, Reason: reason, Err: err})
}

// IsIOError はエラーチェーンにIOErrorが含まれるかを判定します。
func IsIOError(err error) bool {
	var target *IOError
	return errors.As(err, &target)
}

// IsParseError はエラーチェーンにParseErrorが含まれるかを判定します。
func IsParseError(err error) bool {
	var target *ParseError
	return errors.As(err, &target)
}

// IsTrainingError はエラーチェーンにTrainingErrorが含まれるかを判定します。
func IsTrainingError(err error) bool {
	var target *TrainingError
	return errors.As(err, &target)
}

// IsPredictionError はエラーチェーンにPredictionErrorが含まれるかを判定します。
func IsPredictionError(err error) bool {
	var target *PredictionError
	return errors.As(err, &target)
}

// --- 推定器の構造化エラー型 ---

// NotFittedError はモデルが未学習の状態で `Predict` や `Transform` を呼び出した場合のエラーです。
type NotFittedError struct {
	ModelName string
	Method    string
}

func (e *NotFittedError) Error() string {
	return fmt.Sprintf("houseprice: %s: this model is not fitted yet. Call Fit() before using %s()", e.ModelName, e.Method)
}

func (e *NotFittedError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("model_name", e.ModelName).
		Str("method", e.Method).
		Str("type", "NotFittedError")
}

func NewNotFittedError(modelName, method string) error {
	return errors.WithStack(&NotFittedError{ModelName: modelName, Method: method})
}

// DimensionError は入力データの次元が期待値と異なる場合のエラーです。
type DimensionError struct {
	Op       string
	Expected int
	Got      int
	Axis     int // 0 for rows, 1 for columns/features
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("houseprice: %s: dimension mismatch on axis %d (%s). Expected %d, got %d", e.Op, e.Axis, e.axisName(), e.Expected, e.Got)
}

func (e *DimensionError) axisName() string {
	if e.Axis == 0 {
		return "rows"
	}
	return "features"
}

func (e *DimensionError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Int("expected", e.Expected).
		Int("got", e.Got).
		Int("axis", e.Axis).
		Str("axis_name", e.axisName()).
		Str("type", "DimensionError")
}

func NewDimensionError(op string, expected, got, axis int) error {
	return errors.WithStack(&DimensionError{Op: op, Expected: expected, Got: got, Axis: axis})
}

// ValidationError は入力パラメータの検証に失敗した場合のエラーです。
type ValidationError struct {
	ParamName string
	Reason    string
	Value     interface{}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("houseprice: validation failed for parameter '%s': %s (got: %v)", e.ParamName, e.Reason, e.Value)
}

func (e *ValidationError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("param_name", e.ParamName).
		Str("reason", e.Reason).
		Interface("value", e.Value).
		Str("type", "ValidationError")
}

func NewValidationError(param, reason string, value interface{}) error {
	return errors.WithStack(&ValidationError{ParamName: param, Reason: reason, Value: value})
}

// ValueError は引数の値が不適切または不正な場合に発生するエラーです。
type ValueError struct {
	Op      string
	Message string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("houseprice: %s: %s", e.Op, e.Message)
}

func NewValueError(op, message string) error {
	return errors.WithStack(&ValueError{Op: op, Message: message})
}

// ModelError は機械学習モデルに関する一般的なエラーです。
type ModelError struct {
	Op   string
	Kind string
	Err  error
}

func (e *ModelError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("houseprice: %s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("houseprice: %s: %s", e.Op, e.Kind)
}

func (e *ModelError) Unwrap() error {
	return e.Err
}

func NewModelError(op, kind string, err error) error {
	return errors.WithStack(&ModelError{Op: op, Kind: kind, Err: err})
}

// NumericalInstabilityError: 学習中に NaN / Inf が出た。fasttree では収束失敗として TrainingError に包まれる。
type NumericalInstabilityError struct {
	Operation string // "leaf_value", "training_loss" など
	Values    []float64
	Iteration int
}

func (e *NumericalInstabilityError) Error() string {
	shown := e.Values
	if len(shown) > 5 {
		shown = shown[:5]
	}
	parts := make([]string, 0, len(shown)+1)
	for _, v := range shown {
		parts = append(parts, fmt.Sprintf("%.6g", v))
	}
	if len(e.Values) > len(shown) {
		parts = append(parts, "...")
	}
	return fmt.Sprintf("houseprice: numerical instability detected in %s at iteration %d. Values: [%s]",
		e.Operation, e.Iteration, strings.Join(parts, ", "))
}

func NewNumericalInstabilityError(operation string, values []float64, iteration int) error {
	return errors.WithStack(&NumericalInstabilityError{
		Operation: operation,
		Values:    values,
		Iteration: iteration,
	})
}

// --- cockroachdb/errors ラッパー関数 ---

// 呼び出し側が cockroachdb/errors と両方 import しなくて済むように再公開している。
func Is(err, target error) bool                         { return errors.Is(err, target) }
func As(err error, target interface{}) bool             { return errors.As(err, target) }
func Wrap(err error, msg string) error                  { return errors.Wrap(err, msg) }
func Wrapf(err error, format string, args ...any) error { return errors.Wrapf(err, format, args...) }
func New(msg string) error                              { return errors.New(msg) }
func Newf(format string, args ...any) error             { return errors.Newf(format, args...) }

// --- 共通エラー変数 ---

var (
	// ErrEmptyData は空のデータが渡された場合のエラーです。
	ErrEmptyData = New("empty data")

	// ErrMissingLabel はラベルの無いレコードで学習・評価しようとした場合のエラーです。
	ErrMissingLabel = New("missing label")
)
