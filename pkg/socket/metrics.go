package socket

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/linesock/linesock-go/pkg/socket"

type metrics struct {
	connects      metric.Int64Counter
	connectErrors metric.Int64Counter
	bytesWritten  metric.Int64Counter
	linesRead     metric.Int64Counter

	attrs metric.MeasurementOption
}

func newMetrics(mp metric.MeterProvider, host string, port int, secure bool) *metrics {
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	meter := mp.Meter(meterName)

	m := &metrics{
		attrs: metric.WithAttributes(
			attribute.String("host", host),
			attribute.Int("port", port),
			attribute.Bool("secure", secure),
		),
	}
	m.connects, _ = meter.Int64Counter("linesock.connects",
		metric.WithDescription("Connections established"),
		metric.WithUnit("{connection}"))
	m.connectErrors, _ = meter.Int64Counter("linesock.connect.errors",
		metric.WithDescription("Connection attempts that failed"),
		metric.WithUnit("{connection}"))
	m.bytesWritten, _ = meter.Int64Counter("linesock.bytes.written",
		metric.WithDescription("Bytes written to servers"),
		metric.WithUnit("By"))
	m.linesRead, _ = meter.Int64Counter("linesock.lines.read",
		metric.WithDescription("Lines read from servers"),
		metric.WithUnit("{line}"))
	return m
}

func (m *metrics) add(counter metric.Int64Counter, n int) {
	if counter == nil || n == 0 {
		return
	}
	counter.Add(context.Background(), int64(n), m.attrs)
}
