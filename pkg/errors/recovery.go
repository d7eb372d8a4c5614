package errors

import (
	"fmt"
	"runtime/debug"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// PanicError は学習中・予測中に発生した panic を error に変換したものです。
type PanicError struct {
	Op    string
	Value interface{}
	Stack string
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic in %s: %v", e.Op, e.Value)
}

// MarshalZerologObject はスタックを含めて構造化ログに出力します。
func (e *PanicError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("op", e.Op).
		Str("panic", fmt.Sprint(e.Value)).
		Str("stack", e.Stack)
}

// NewPanicError captures the current goroutine stack.
func NewPanicError(op string, value interface{}) *PanicError {
	return &PanicError{Op: op, Value: value, Stack: string(debug.Stack())}
}

// Recover は defer で使い、panic を *err に書き戻します。
//
//	func (t *Trainer) Fit(ctx context.Context) (err error) {
//	    defer errors.Recover(&err, "Trainer.Fit")
//	    ...
//	}
//
// 既に err が設定されていれば、その err を原因として保持します。
func Recover(err *error, op string) {
	r := recover()
	if r == nil {
		return
	}
	pe := NewPanicError(op, r)
	if *err != nil {
		*err = errors.WithSecondaryError(errors.Wrap(*err, pe.Error()), pe)
		return
	}
	*err = pe
}
