package logger

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type recorder struct {
	mu      sync.Mutex
	entries []zapcore.Entry
	fields  [][]zapcore.Field
}

func (r *recorder) OnWrite(entry zapcore.Entry, fields []zapcore.Field) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
	r.fields = append(r.fields, fields)
	return nil
}

func TestNew(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name   string
		config *Config
	}{
		{name: "nil config"},
		{name: "console", config: &Config{Console: true}},
		{name: "file", config: &Config{File: filepath.Join(dir, "app.log")}},
		{name: "rotate", config: &Config{Rotate: &RotateConfig{Filename: filepath.Join(dir, "rotate.log")}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(tt.config)
			require.NoError(t, err)
			require.NotNil(t, l)
			l.Info("hello", zap.String("k", "v"))
		})
	}
}

func TestRotateDefaults(t *testing.T) {
	c := &Config{Rotate: &RotateConfig{Filename: "x.log"}, Sampling: &SamplingConfig{}}
	c.setDefaults()
	assert.Equal(t, 100, c.Rotate.MaxSize)
	assert.Equal(t, 30, c.Rotate.MaxAge)
	assert.Equal(t, 10, c.Rotate.MaxBackups)
	assert.Equal(t, 100, c.Sampling.Initial)
	assert.False(t, c.Console, "console is only forced when no other output exists")
	assert.Equal(t, JSONFormat, c.Format)
}

func TestSetLevel(t *testing.T) {
	rec := &recorder{}
	l, err := NewWithOptions(WithLevel(InfoLevel), WithHook(rec), WithFileOutput(os.DevNull))
	require.NoError(t, err)

	l.Debug("dropped")
	child := l.With(zap.String("component", "ws"))
	l.SetLevel(DebugLevel)
	child.Debug("kept")

	assert.Equal(t, DebugLevel, child.Level(), "children share the level")
	require.Len(t, rec.entries, 1)
	assert.Equal(t, "kept", rec.entries[0].Message)
}

func TestContextFields(t *testing.T) {
	rec := &recorder{}
	l, err := NewWithOptions(WithHook(rec), WithFileOutput(os.DevNull))
	require.NoError(t, err)

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: traceID,
		SpanID:  spanID,
	}))

	l.InfoContext(ctx, "with span", zap.Int("n", 1))
	l.InfoContext(context.Background(), "without span")

	require.Len(t, rec.fields, 2)
	assert.Len(t, rec.fields[0], 3)
	assert.Equal(t, "trace_id", rec.fields[0][0].Key)
	assert.Equal(t, traceID.String(), rec.fields[0][0].String)
	assert.Len(t, rec.fields[1], 0)
}

func TestNamed(t *testing.T) {
	rec := &recorder{}
	l, err := NewWithOptions(WithHook(rec), WithName("guilded"), WithFileOutput(os.DevNull))
	require.NoError(t, err)
	l.Named("gateway").Warn("lost heartbeat")

	require.Len(t, rec.entries, 1)
	assert.Equal(t, "guilded.gateway", rec.entries[0].LoggerName)
	assert.Equal(t, zapcore.WarnLevel, rec.entries[0].Level)
}

func TestParseLevel(t *testing.T) {
	tests := map[string]Level{
		"debug": DebugLevel,
		"INFO":  InfoLevel,
		"warn":  WarnLevel,
		"error": ErrorLevel,
		"":      InfoLevel,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseLevel("loud")
	assert.Error(t, err)

	var lv Level
	require.NoError(t, lv.UnmarshalText([]byte("error")))
	assert.Equal(t, "error", lv.String())
}

func TestNop(t *testing.T) {
	l := NewNop()
	l.Error("nothing")
	assert.False(t, l.Enabled(ErrorLevel))
}
