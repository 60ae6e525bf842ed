package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/freekieb7/staticd/test"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/log/global"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestSetupWithoutEndpoint(t *testing.T) {
	shutdown, err := Setup(context.Background(), Options{})
	test.NoError(t, err)
	test.NoError(t, shutdown(context.Background()))
}

func TestSetupWithEndpoint(t *testing.T) {
	tracerProvider := otel.GetTracerProvider()
	meterProvider := otel.GetMeterProvider()
	loggerProvider := global.GetLoggerProvider()
	t.Cleanup(func() {
		otel.SetTracerProvider(tracerProvider)
		otel.SetMeterProvider(meterProvider)
		global.SetLoggerProvider(loggerProvider)
	})

	// Exporters connect lazily, so nothing has to listen on the endpoint.
	shutdown, err := Setup(context.Background(), Options{Endpoint: "http://127.0.0.1:1"})
	test.NoError(t, err)

	if _, ok := otel.GetTracerProvider().(*sdktrace.TracerProvider); !ok {
		t.Errorf("tracer provider not installed, got %T", otel.GetTracerProvider())
	}
	if _, ok := otel.GetMeterProvider().(*sdkmetric.MeterProvider); !ok {
		t.Errorf("meter provider not installed, got %T", otel.GetMeterProvider())
	}
	if _, ok := global.GetLoggerProvider().(*sdklog.LoggerProvider); !ok {
		t.Errorf("logger provider not installed, got %T", global.GetLoggerProvider())
	}

	// The final metric export cannot reach the collector, so only the deadline
	// bounds the first call. Afterwards there is nothing left to stop.
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	_ = shutdown(ctx)
	test.NoError(t, shutdown(context.Background()))
}

func TestNewLoggerText(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewLogger(buf, LoggerOptions{Level: slog.LevelInfo, Format: "text"})

	logger.Debug("hidden")
	logger.Info("listening", "addr", ":2020")

	test.NotContains(t, buf.String(), "hidden")
	test.Contains(t, buf.String(), "msg=listening addr=:2020")
}

func TestNewLoggerJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewLogger(buf, LoggerOptions{Level: slog.LevelDebug, Format: "json"})

	logger.Debug("request", "path", "/index.html")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("not json: %v: %q", err, buf.String())
	}
	test.Equal(t, "request", record["msg"])
	test.Equal(t, "/index.html", record["path"])
}

func TestNewLoggerExportKeepsLocalOutput(t *testing.T) {
	buf := &bytes.Buffer{}
	// Without Setup the bridge writes to the no-op global provider.
	logger := NewLogger(buf, LoggerOptions{Level: slog.LevelInfo, Export: true})

	logger.With("conn", "abc").WithGroup("g").Warn("incomplete response", "kind", "short_read")

	test.Contains(t, buf.String(), "conn=abc")
	test.Contains(t, buf.String(), "g.kind=short_read")
}

type recordingExporter struct {
	mu      sync.Mutex
	records []sdklog.Record
}

func (e *recordingExporter) Export(_ context.Context, records []sdklog.Record) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, record := range records {
		e.records = append(e.records, record.Clone())
	}
	return nil
}

func (e *recordingExporter) Shutdown(context.Context) error   { return nil }
func (e *recordingExporter) ForceFlush(context.Context) error { return nil }

func (e *recordingExporter) bodies() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	bodies := make([]string, 0, len(e.records))
	for _, record := range e.records {
		bodies = append(bodies, record.Body().AsString())
	}
	return bodies
}

func TestNewLoggerExportHonoursLevel(t *testing.T) {
	exporter := &recordingExporter{}
	provider := sdklog.NewLoggerProvider(sdklog.WithProcessor(sdklog.NewSimpleProcessor(exporter)))
	t.Cleanup(func() { provider.Shutdown(context.Background()) })

	buf := &bytes.Buffer{}
	logger := NewLogger(buf, LoggerOptions{Level: slog.LevelInfo, Export: true, Provider: provider})

	test.Equal(t, false, logger.Enabled(context.Background(), slog.LevelDebug))

	logger.Debug("request", "path", "/secret")
	logger.With("conn", "abc").Info("listening")

	test.NotContains(t, buf.String(), "/secret")
	test.Equal(t, 1, len(exporter.bodies()))
	test.Equal(t, "listening", exporter.bodies()[0])
}

func TestNewLoggerExportDebug(t *testing.T) {
	exporter := &recordingExporter{}
	provider := sdklog.NewLoggerProvider(sdklog.WithProcessor(sdklog.NewSimpleProcessor(exporter)))
	t.Cleanup(func() { provider.Shutdown(context.Background()) })

	logger := NewLogger(&bytes.Buffer{}, LoggerOptions{Level: slog.LevelDebug, Export: true, Provider: provider})
	logger.Debug("request", "path", "/index.html")

	test.Equal(t, 1, len(exporter.bodies()))
	test.Equal(t, "request", exporter.bodies()[0])
}
