package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestSetupWithoutEndpointIsNoop(t *testing.T) {
	before := otel.GetTracerProvider()

	shutdown, err := Setup(context.Background(), Config{ServiceName: "bb"})
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
	assert.Same(t, before, otel.GetTracerProvider())
}

func TestSetupDisabledIgnoresEndpoint(t *testing.T) {
	before := otel.GetTracerProvider()

	shutdown, err := Setup(context.Background(), Config{
		Endpoint: "http://127.0.0.1:4318",
		Disabled: true,
	})
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
	assert.Same(t, before, otel.GetTracerProvider())
}

func TestSetupRegistersSDKProvider(t *testing.T) {
	before := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(before) })

	shutdown, err := Setup(context.Background(), Config{
		Endpoint:       "http://127.0.0.1:4318",
		ServiceName:    "bb",
		ServiceVersion: "test",
	})
	require.NoError(t, err)

	_, ok := otel.GetTracerProvider().(*sdktrace.TracerProvider)
	assert.True(t, ok)
	require.NoError(t, shutdown(context.Background()))
}
