package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ Logger = NoOpLogger{}
	_ Logger = (*SlogAdapter)(nil)
	_ Logger = (*PipelineLogger)(nil)
)

func newBufferLogger(level LogLevel) (*PipelineLogger, *bytes.Buffer) {
	var buf bytes.Buffer
	cfg := DefaultLoggerConfig()
	cfg.Output = &buf
	cfg.Level = level
	return NewLogger(cfg), &buf
}

func decodeLast(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.NotEmpty(t, lines)
	var m map[string]any
	require.NoError(t, json.Unmarshal(lines[len(lines)-1], &m))
	return m
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want LogLevel
		err  bool
	}{
		{"debug", LogLevelDebug, false},
		{"INFO", LogLevelInfo, false},
		{"", LogLevelInfo, false},
		{"warning", LogLevelWarn, false},
		{"error", LogLevelError, false},
		{"loud", LogLevelInfo, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if tt.err {
			assert.Error(t, err, tt.in)
			continue
		}
		assert.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestPipelineLogger_ContextAttrs(t *testing.T) {
	l, buf := newBufferLogger(LogLevelInfo)
	l.WithComponent("runner").WithInvocation("inv-1").WithContext("bucket", "b1").Info("started", "key", "in.txt")

	m := decodeLast(t, buf)
	assert.Equal(t, "started", m["msg"])
	assert.Equal(t, "runner", m["component"])
	assert.Equal(t, "inv-1", m["invocation_id"])
	assert.Equal(t, "b1", m["bucket"])
	assert.Equal(t, "in.txt", m["key"])
}

func TestPipelineLogger_WithDoesNotMutateParent(t *testing.T) {
	l, buf := newBufferLogger(LogLevelInfo)
	_ = l.WithContext("k", "v")
	l.Info("plain")
	m := decodeLast(t, buf)
	_, ok := m["k"]
	assert.False(t, ok)
}

func TestPipelineLogger_LevelFilter(t *testing.T) {
	l, buf := newBufferLogger(LogLevelWarn)
	l.Info("hidden")
	l.Debug("hidden")
	assert.Zero(t, buf.Len())
	l.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestPipelineLogger_LogStage(t *testing.T) {
	l, buf := newBufferLogger(LogLevelInfo)

	l.LogStage("read_from_s3", 10*time.Millisecond, nil)
	m := decodeLast(t, buf)
	assert.Equal(t, "Stage completed", m["msg"])
	assert.Equal(t, "read_from_s3", m["stage"])
	assert.Equal(t, true, m["success"])

	l.LogStage("call_llm", time.Millisecond, errors.New("boom"))
	m = decodeLast(t, buf)
	assert.Equal(t, "Stage failed", m["msg"])
	assert.Equal(t, "ERROR", m["level"])
	assert.Equal(t, "boom", m["error"])
}

func TestPipelineLogger_LogLLMCallAndRun(t *testing.T) {
	l, buf := newBufferLogger(LogLevelInfo)

	l.LogLLMCall("gpt", 42, time.Second, nil)
	m := decodeLast(t, buf)
	assert.Equal(t, "LLM call completed", m["msg"])
	assert.EqualValues(t, 42, m["token_count"])

	l.LogPipelineRun("s3-summarize", 3, time.Second, nil)
	m = decodeLast(t, buf)
	assert.Equal(t, "Pipeline run completed", m["msg"])
	assert.EqualValues(t, 3, m["stage_count"])
}

func TestWithInvocation(t *testing.T) {
	pl, buf := newBufferLogger(LogLevelInfo)
	WithInvocation(pl, "inv-1").Info("hello")
	assert.Equal(t, "inv-1", decodeLast(t, buf)["invocation_id"])

	var sbuf bytes.Buffer
	adapter := NewSlogAdapter(slog.New(slog.NewJSONHandler(&sbuf, nil)))
	WithInvocation(adapter, "inv-2").Warn("hello", "k", "v")
	m := decodeLast(t, &sbuf)
	assert.Equal(t, "inv-2", m["invocation_id"])
	assert.Equal(t, "v", m["k"])

	assert.Equal(t, NoOpLogger{}, WithInvocation(NoOpLogger{}, "x"))
}

func TestFromContext(t *testing.T) {
	pl, buf := newBufferLogger(LogLevelInfo)

	assert.Same(t, pl, FromContext(context.Background(), pl))

	ctx := ContextWithInvocation(context.Background(), "inv-3")
	id, ok := InvocationFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "inv-3", id)

	l := FromContext(ctx, pl)
	rec, ok := l.(RunRecorder)
	require.True(t, ok)
	rec.LogStage("read", time.Millisecond, nil)
	assert.Equal(t, "inv-3", decodeLast(t, buf)["invocation_id"])

	_, ok = InvocationFromContext(ContextWithInvocation(context.Background(), ""))
	assert.False(t, ok)
}

func TestRecorders(t *testing.T) {
	var _ RunRecorder = (*PipelineLogger)(nil)
	var _ LLMCallRecorder = (*PipelineLogger)(nil)

	l, buf := newBufferLogger(LogLevelInfo)
	l.LogPipelineRun("p", 3, time.Millisecond, errors.New("boom"))
	m := decodeLast(t, buf)
	assert.Equal(t, "Pipeline run failed", m["msg"])
	assert.Equal(t, "p", m["pipeline"])
}
