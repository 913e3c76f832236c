package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// counterValues collects a counter's data points keyed by outcome.
func counterValues(t *testing.T, reader *sdkmetric.ManualReader, name string) map[string]int64 {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			for _, dp := range sum.DataPoints {
				v, _ := dp.Attributes.Value(attribute.Key("outcome"))
				out[v.AsString()] += dp.Value
			}
		}
	}
	return out
}

func TestMetricsRecordOutcomes(t *testing.T) {
	ctx := context.Background()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(ctx) })

	m, err := NewMetrics(provider)
	require.NoError(t, err)

	env := newTestEnv(t)
	env.auth.Metrics = m
	env.sessions.Metrics = m

	env.register(t, "alice", "a@x.com", "longpass1")
	_, err = env.auth.Register(ctx, RegisterInput{Username: "alice", Email: "a@x.com", Password: "longpass1"})
	require.Error(t, err)

	pair, err := env.auth.Login(ctx, "a@x.com", "longpass1")
	require.NoError(t, err)
	_, err = env.auth.Login(ctx, "a@x.com", "wrong")
	require.Error(t, err)

	_, err = env.sessions.Refresh(ctx, "bogus")
	require.Error(t, err)
	require.NoError(t, env.sessions.Logout(ctx, pair.RefreshToken))

	require.Equal(t, map[string]int64{"success": 1, "rejected": 1}, counterValues(t, reader, "auth.registrations"))
	require.Equal(t, map[string]int64{"success": 1, "rejected": 1}, counterValues(t, reader, "auth.logins"))
	require.Equal(t, map[string]int64{"rejected": 1}, counterValues(t, reader, "auth.refreshes"))
	require.Equal(t, map[string]int64{"success": 1}, counterValues(t, reader, "auth.logouts"))
}

func TestOutcome(t *testing.T) {
	t.Parallel()

	require.Equal(t, "success", outcome(nil))
	require.Equal(t, "rejected", outcome(ErrInvalidCredentials))
	require.Equal(t, "error", outcome(context.Canceled))
}
