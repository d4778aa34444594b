package telemetry

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSetupFromEnvWithoutConfig(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	defer os.Chdir(wd)
	require.NoError(t, os.Chdir(t.TempDir()))

	tel, err := SetupFromEnv(context.Background(), "test:telemetry")
	require.NoError(t, err)
	require.False(t, tel.Enabled())
	require.NoError(t, tel.Shutdown(context.Background()))
}

func TestSetupWithoutEndpoints(t *testing.T) {
	tel, err := Setup(context.Background(), "test:telemetry", Config{})
	require.NoError(t, err)
	require.False(t, tel.Enabled())
	require.False(t, tel.MetricsEnabled())
}

func TestSetupMetricsOnly(t *testing.T) {
	tel, err := Setup(context.Background(), "test:telemetry-metrics", Config{
		Otlp: OtlpConfig{
			Metrics: OtlpConnConfig{HttpEndpoint: "http://127.0.0.1:1/v1/metrics"},
		},
	})
	require.NoError(t, err)
	require.Nil(t, tel.TracerProvider)
	require.True(t, tel.Enabled())
	require.True(t, tel.MetricsEnabled())

	// the endpoint is unreachable, only the shutdown itself matters here
	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond*100)
	defer cancel()
	_ = tel.Shutdown(ctx)
}

func TestInstrumentPerfStatsStops(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond*50)
	defer cancel()
	InstrumentPerfStats(ctx, time.Millisecond*10)
	<-ctx.Done()
}
