// Package log は houseprice 全体で使う構造化ログのインターフェースです。
//
// 呼び出し側は slog と同じ形のキー・値ペアを渡し、実装は zerolog が担います
// (logger.go)。キー名は attributes.go にまとめてあります。
//
//	logger := log.GetLoggerWithName("pipeline")
//	logger.Info("Pipeline fitted",
//	    log.OperationKey, log.OperationFit,
//	    log.SamplesKey, len(records),
//	    log.FeaturesKey, 4,
//	)
package log

import (
	"context"
)

// Logger is the structured logger handed to every component.
//
// fields are alternating keys and values. Error also accepts an error as the
// first field; its type, structured detail and stack trace are then attached.
type Logger interface {
	Debug(msg string, fields ...any)
	Info(msg string, fields ...any)
	Warn(msg string, fields ...any)

	// Error logs at error level.
	//
	//	logger.Error("Model save failed", err, log.PathKey, path)
	Error(msg string, fields ...any)

	// With returns a logger that adds fields to every record,
	// e.g. the component name set by GetLoggerWithName.
	With(fields ...any) Logger

	// Enabled reports whether records at level are emitted.
	// Use it to skip building expensive debug fields such as per-iteration losses.
	Enabled(ctx context.Context, level Level) bool
}

// Level uses the slog numbering so configuration values map one to one.
type Level int

const (
	LevelDebug Level = -4
	LevelInfo  Level = 0
	LevelWarn  Level = 4
	LevelError Level = 8
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	}
	return "UNKNOWN"
}
