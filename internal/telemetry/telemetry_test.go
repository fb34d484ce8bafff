package telemetry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jrsteele09/go-auth-portal/internal/telemetry"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

type testConfig struct {
	endpoint string
	enabled  bool
}

func (c testConfig) GetAppName() string      { return "portal-test" }
func (c testConfig) GetOtelEndpoint() string { return c.endpoint }
func (c testConfig) GetOtelEnabled() bool    { return c.enabled && c.endpoint != "" }

func TestSetup_DisabledIsNoop(t *testing.T) {
	before := otel.GetTracerProvider()

	shutdown, err := telemetry.Setup(context.Background(), testConfig{})
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
	require.Equal(t, before, otel.GetTracerProvider())
}

func TestEndSpan_RecordsError(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	_, span := telemetry.StartSpan(context.Background(), "registration.validate")
	telemetry.EndSpan(span, errors.New("boom"))

	_, second := telemetry.StartSpan(context.Background(), "registration.commit")
	telemetry.EndSpan(second, nil)

	ended := recorder.Ended()
	require.Len(t, ended, 2)
	require.Equal(t, "registration.validate", ended[0].Name())
	require.Equal(t, codes.Error, ended[0].Status().Code)
	require.Equal(t, codes.Unset, ended[1].Status().Code)
}
