package log

import (
	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// appendError adds err to the event. Structured error kinds from pkg/errors
// are embedded as an object, and the cockroachdb stack trace is attached
// when one was recorded.
func appendError(e *zerolog.Event, key string, err error) {
	e.AnErr(key, err)

	var marshaler zerolog.LogObjectMarshaler
	if errors.As(err, &marshaler) {
		e.Object(key+"_detail", marshaler)
	}
	if stack := extractStacktrace(err); stack != "" {
		e.Str(StacktraceKey, stack)
	}
}

func extractStacktrace(err error) string {
	safeDetails := errors.GetSafeDetails(err).SafeDetails
	if len(safeDetails) > 0 {
		return safeDetails[0]
	}
	return ""
}
