package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestConfig_Validate(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	cfg.SampleRate = 2
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Exporter = "jaeger"
	assert.Error(t, cfg.Validate())
}

func TestNewProvider_Disabled(t *testing.T) {
	p, err := NewProvider(context.Background(), &Config{ServiceName: "test", Exporter: "otlp"})
	require.NoError(t, err)
	require.NotNil(t, p.TracerProvider())
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestRecordError(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	p, err := NewProvider(context.Background(), &Config{ServiceName: "test", Exporter: "noop", SampleRate: 1})
	require.NoError(t, err)
	p.TracerProvider().RegisterSpanProcessor(rec)

	_, span := StartSpan(context.Background(), "op")
	RecordError(span, errors.New("boom"))
	RecordError(span, nil)
	span.End()

	ended := rec.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "op", ended[0].Name())
	assert.Equal(t, "boom", ended[0].Status().Description)
}
