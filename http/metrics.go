package http

import (
	"errors"

	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/freekieb7/staticd/http"

type metrics struct {
	responses    metric.Int64Counter
	failures     metric.Int64Counter
	anomalies    metric.Int64Counter
	requestSize  metric.Int64Histogram
	responseSize metric.Int64Histogram
	duration     metric.Float64Histogram
}

func newMetrics(meter metric.Meter) (*metrics, error) {
	var m metrics
	var err, errs error

	m.responses, err = meter.Int64Counter("staticd.responses",
		metric.WithDescription("Responses written, by status code"),
		metric.WithUnit("{response}"))
	errs = errors.Join(errs, err)

	m.failures, err = meter.Int64Counter("staticd.connection.failures",
		metric.WithDescription("Connections closed without a response, by reason"),
		metric.WithUnit("{connection}"))
	errs = errors.Join(errs, err)

	m.anomalies, err = meter.Int64Counter("staticd.anomalies",
		metric.WithDescription("Short reads and short writes that did not abort the response"),
		metric.WithUnit("{anomaly}"))
	errs = errors.Join(errs, err)

	m.requestSize, err = meter.Int64Histogram("staticd.request.size",
		metric.WithDescription("Bytes read from the client per connection"),
		metric.WithUnit("By"))
	errs = errors.Join(errs, err)

	m.responseSize, err = meter.Int64Histogram("staticd.response.size",
		metric.WithDescription("Bytes written to the client per connection"),
		metric.WithUnit("By"))
	errs = errors.Join(errs, err)

	m.duration, err = meter.Float64Histogram("staticd.connection.duration",
		metric.WithDescription("Time spent serving a connection"),
		metric.WithUnit("s"))
	errs = errors.Join(errs, err)

	if errs != nil {
		return nil, errs
	}
	return &m, nil
}
