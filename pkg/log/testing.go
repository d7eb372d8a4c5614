package log

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

// TestLogger はテスト用のロガーです。1 レコード 1 行の JSON でバッファに書き出します。
//
//	logger, buf := log.NewTestLogger(log.LevelDebug)
//	engine := pipeline.NewEngine(spec)
//	...
//	assert.Contains(t, buf.String(), "Pipeline fitted")
type TestLogger struct {
	mu     *sync.Mutex
	buf    *bytes.Buffer
	level  Level
	fields map[string]interface{}
}

func NewTestLogger(level Level) (*TestLogger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return &TestLogger{
		mu:     &sync.Mutex{},
		buf:    buf,
		level:  level,
		fields: map[string]interface{}{},
	}, buf
}

func (t *TestLogger) Debug(msg string, fields ...any) { t.log(LevelDebug, msg, fields) }
func (t *TestLogger) Info(msg string, fields ...any)  { t.log(LevelInfo, msg, fields) }
func (t *TestLogger) Warn(msg string, fields ...any)  { t.log(LevelWarn, msg, fields) }
func (t *TestLogger) Error(msg string, fields ...any) { t.log(LevelError, msg, fields) }

// With は同じバッファを共有する子ロガーを返す。
func (t *TestLogger) With(fields ...any) Logger {
	child := make(map[string]interface{}, len(t.fields)+len(fields)/2)
	for k, v := range t.fields {
		child[k] = v
	}
	putFields(child, fields)
	return &TestLogger{mu: t.mu, buf: t.buf, level: t.level, fields: child}
}

func (t *TestLogger) Enabled(_ context.Context, level Level) bool {
	return level >= t.level
}

// putFields mirrors the zerolog backend: a leading error without a key is stored under "error".
func putFields(dst map[string]interface{}, fields []any) {
	if len(fields)%2 == 1 {
		if err, ok := fields[0].(error); ok {
			dst["error"] = err.Error()
			fields = fields[1:]
		}
	}
	for i := 0; i+1 < len(fields); i += 2 {
		v := fields[i+1]
		if err, ok := v.(error); ok {
			v = err.Error()
		}
		dst[fmt.Sprint(fields[i])] = v
	}
}

func (t *TestLogger) log(level Level, msg string, fields []any) {
	if level < t.level {
		return
	}
	entry := make(map[string]interface{}, len(t.fields)+len(fields)/2+2)
	for k, v := range t.fields {
		entry[k] = v
	}
	putFields(entry, fields)
	entry["level"] = level.String()
	entry["message"] = msg

	line, err := json.Marshal(entry)
	if err != nil {
		line = []byte(fmt.Sprintf(`{"level":%q,"message":%q}`, level.String(), msg))
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.buf.Write(line)
	t.buf.WriteByte('\n')
}

// GetLogEntries decodes every captured line.
func (t *TestLogger) GetLogEntries() ([]map[string]interface{}, error) {
	t.mu.Lock()
	raw := strings.TrimSpace(t.buf.String())
	t.mu.Unlock()

	var entries []map[string]interface{}
	for _, line := range strings.Split(raw, "\n") {
		if line == "" {
			continue
		}
		entry := map[string]interface{}{}
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (t *TestLogger) ContainsMessage(message string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return strings.Contains(t.buf.String(), message)
}

// ContainsField は key=value を持つ行があるかを返す。JSON を経由するので数値は float64 で比較すること。
func (t *TestLogger) ContainsField(key string, value interface{}) bool {
	entries, err := t.GetLogEntries()
	if err != nil {
		return false
	}
	for _, e := range entries {
		if v, ok := e[key]; ok && v == value {
			return true
		}
	}
	return false
}

func (t *TestLogger) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.buf.Reset()
}
