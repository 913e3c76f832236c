package service

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const meterName = "github.com/aussiebroadwan/taskgate/internal/auth/service"

// Outcome values recorded on every counter.
const (
	outcomeSuccess  = "success"
	outcomeRejected = "rejected"
	outcomeError    = "error"
)

// Metrics holds the auth counters. The zero value is not usable; build it
// with NewMetrics.
type Metrics struct {
	logins        metric.Int64Counter
	registrations metric.Int64Counter
	refreshes     metric.Int64Counter
	logouts       metric.Int64Counter
}

// NewMetrics creates the counters on mp, or on the global MeterProvider when
// mp is nil.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	meter := mp.Meter(meterName)

	var (
		m   Metrics
		err error
	)
	if m.logins, err = meter.Int64Counter("auth.logins",
		metric.WithDescription("Login attempts by outcome")); err != nil {
		return nil, err
	}
	if m.registrations, err = meter.Int64Counter("auth.registrations",
		metric.WithDescription("Registration attempts by outcome")); err != nil {
		return nil, err
	}
	if m.refreshes, err = meter.Int64Counter("auth.refreshes",
		metric.WithDescription("Refresh token exchanges by outcome")); err != nil {
		return nil, err
	}
	if m.logouts, err = meter.Int64Counter("auth.logouts",
		metric.WithDescription("Logouts by outcome")); err != nil {
		return nil, err
	}
	return &m, nil
}

var noopMetrics, _ = NewMetrics(noop.NewMeterProvider())

func metricsOrNoop(m *Metrics) *Metrics {
	if m == nil {
		return noopMetrics
	}
	return m
}

// outcome classifies err: nil is success, a categorised service error is a
// rejection, anything else is an internal error.
func outcome(err error) string {
	switch {
	case err == nil:
		return outcomeSuccess
	case isServiceError(err):
		return outcomeRejected
	default:
		return outcomeError
	}
}

func record(ctx context.Context, c metric.Int64Counter, err error) {
	c.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome(err))))
}
