package tracing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestInitTracer_Disabled(t *testing.T) {
	shutdown, err := InitTracer(context.Background(), DefaultConfig("bookworm"))

	require.NoError(t, err)
	require.NotNil(t, shutdown, "disabled tracing still returns a shutdown func")
	assert.NoError(t, shutdown(context.Background()))
}

// enabledConfig points the exporter at a non-routable endpoint. The batch
// exporter connects lazily, so initialization still succeeds.
func enabledConfig(rate float64) Config {
	return Config{
		ServiceName:    "bookworm",
		ServiceVersion: "0.1.0",
		Environment:    "test",
		OTLPEndpoint:   "127.0.0.1:0",
		SampleRate:     rate,
		Enabled:        true,
	}
}

func TestInitTracer_InstallsGlobalProvider(t *testing.T) {
	shutdown, err := InitTracer(context.Background(), enabledConfig(1.0))
	require.NoError(t, err)
	defer shutdown(context.Background()) //nolint:errcheck

	_, ok := otel.GetTracerProvider().(*sdktrace.TracerProvider)
	assert.True(t, ok, "global provider should be the SDK provider")
}

func TestInitTracer_SampleRates(t *testing.T) {
	for _, rate := range []float64{0.0, 0.5, 1.0} {
		shutdown, err := InitTracer(context.Background(), enabledConfig(rate))
		require.NoError(t, err, "rate %v", rate)
		shutdown(context.Background()) //nolint:errcheck
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("bookworm")

	assert.Equal(t, "bookworm", cfg.ServiceName)
	assert.False(t, cfg.Enabled)
	assert.Equal(t, 1.0, cfg.SampleRate)
	assert.Equal(t, "localhost:4318", cfg.OTLPEndpoint)
}

func TestTracer_StartsSpans(t *testing.T) {
	tracer := Tracer("bookworm-test")
	require.NotNil(t, tracer)

	// Without an SDK provider this is a no-op span; it just must not panic.
	_, span := tracer.Start(context.Background(), "list-books")
	span.End()
}
