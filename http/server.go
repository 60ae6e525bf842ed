package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/freekieb7/staticd/filesystem"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
)

// Server serves files found by its Resolver, one goroutine per connection.
// A Server built without NewServer reports to the global OpenTelemetry
// providers.
type Server struct {
	Name     string
	Resolver *filesystem.Resolver
	Logger   *slog.Logger

	// Zero means no deadline: a silent client holds its goroutine until it
	// goes away.
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// Now returns the time used for the Date header. Defaults to time.Now.
	Now func() time.Time

	initOnce sync.Once
	tracer   trace.Tracer
	metrics  *metrics

	mu         sync.Mutex
	listener   net.Listener
	inShutdown atomic.Bool
	active     atomic.Int64
	conns      sync.WaitGroup
}

func NewServer(name string, resolver *filesystem.Resolver) (*Server, error) {
	m, err := newMetrics(otel.Meter(instrumentationName))
	if err != nil {
		return nil, fmt.Errorf("http: creating instruments: %w", err)
	}

	return &Server{
		Name:     name,
		Resolver: resolver,
		Logger:   slog.Default(),
		Now:      time.Now,
		tracer:   otel.Tracer(instrumentationName),
		metrics:  m,
	}, nil
}

func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	return s.Serve(ctx, listener)
}

// Serve accepts connections on listener and hands each one to ServeConn in
// its own goroutine. ctx is the parent context of every connection; it does
// not stop the loop, Shutdown does. Serve always returns a non-nil error,
// ErrServerClosed after Shutdown.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	s.mu.Lock()
	if s.inShutdown.Load() {
		s.mu.Unlock()
		listener.Close()
		return ErrServerClosed
	}
	s.listener = listener
	s.mu.Unlock()

	var tempDelay time.Duration
	for {
		conn, err := listener.Accept()
		if err != nil {
			if s.inShutdown.Load() {
				return ErrServerClosed
			}
			if errors.Is(err, net.ErrClosed) {
				return err
			}

			if tempDelay == 0 {
				tempDelay = 5 * time.Millisecond
			} else {
				tempDelay *= 2
			}
			if tempDelay > time.Second {
				tempDelay = time.Second
			}
			s.logger().Error("failed to accept connection", "error", err, "retry_in", tempDelay)
			time.Sleep(tempDelay)
			continue
		}
		tempDelay = 0

		s.mu.Lock()
		if s.inShutdown.Load() {
			s.mu.Unlock()
			conn.Close()
			return ErrServerClosed
		}
		s.conns.Add(1)
		s.mu.Unlock()

		go func() {
			defer s.conns.Done()
			s.ServeConn(ctx, conn)
		}()
	}
}

// Shutdown stops accepting connections and waits until every connection that
// was already accepted has been served, or ctx is done.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.inShutdown.Store(true)
	var err error
	if s.listener != nil {
		err = s.listener.Close()
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.conns.Wait()
		close(done)
	}()

	select {
	case <-done:
		return err
	case <-ctx.Done():
		return errors.Join(err, ctx.Err())
	}
}

// ActiveConns returns the number of connections currently being served.
func (s *Server) ActiveConns() int64 {
	return s.active.Load()
}

// ServeConn reads one request from conn, writes one response and closes conn.
// The caller must not close conn itself.
//
// Malformed requests get 400 Bad Request and missing files 404 Not Found.
// I/O failures close the connection without any response. A panic is
// recovered and only ends this connection.
func (s *Server) ServeConn(ctx context.Context, conn net.Conn) {
	s.initInstruments()
	start := time.Now()
	s.active.Add(1)

	reqCtx := newRequestCtx(conn, s.logger())

	ctx, span := s.tracer.Start(ctx, "staticd.ServeConn",
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("staticd.conn.id", reqCtx.ID.String()),
			attribute.String("network.peer.address", remoteAddr(conn)),
		))

	defer func() {
		if r := recover(); r != nil {
			reqCtx.Logger.ErrorContext(ctx, "panic serving connection", "panic", r, "stack", string(debug.Stack()))
			s.fail(ctx, span, fmt.Errorf("panic: %v", r), "panic")
		}

		reqCtx.Close()
		span.End()
		s.metrics.duration.Record(ctx, time.Since(start).Seconds())
		s.active.Add(-1)
	}()

	if err := s.serve(ctx, reqCtx); err != nil {
		reqCtx.Logger.ErrorContext(ctx, "connection closed without response", "error", err)
		s.fail(ctx, span, err, failureReason(err))
	}
}

func (s *Server) serve(ctx context.Context, reqCtx *RequestCtx) error {
	if s.ReadTimeout > 0 {
		if err := reqCtx.Conn.SetReadDeadline(time.Now().Add(s.ReadTimeout)); err != nil {
			return fmt.Errorf("%w: %w", ErrRead, err)
		}
	}

	raw, err := ReadRequest(reqCtx.Conn)
	if err != nil {
		return err
	}
	reqCtx.Raw = raw
	s.metrics.requestSize.Record(ctx, int64(len(raw)))

	reqCtx.Header = Header{
		Status: StatusOK,
		Date:   s.now(),
		Server: s.Name,
	}

	if err := reqCtx.Request.Parse(raw); err != nil {
		reqCtx.Logger.DebugContext(ctx, "bad request", "error", err)
		reqCtx.Header.Status = StatusBadRequest
	} else {
		reqCtx.Logger.DebugContext(ctx, "request",
			"method", string(reqCtx.Request.Method),
			"path", string(reqCtx.Request.Path),
			"protocol", string(reqCtx.Request.Protocol))

		reqCtx.Resource, err = s.Resolver.Resolve(reqCtx.Request.Path)
		if err != nil {
			return err
		}

		if reqCtx.Resource.Exists {
			reqCtx.Header.ContentLength = reqCtx.Resource.Size
			reqCtx.Header.ContentType = reqCtx.Resource.ContentType.String()
		} else {
			reqCtx.Logger.DebugContext(ctx, "file not found", "file", reqCtx.Resource.Name)
			reqCtx.Header.Status = StatusNotFound
		}
		trace.SpanFromContext(ctx).SetAttributes(attribute.String("staticd.file", reqCtx.Resource.Name))
	}

	reqCtx.Response = reqCtx.Header.AppendTo(NewHeaderBuffer())
	headerLength := len(reqCtx.Response)

	if reqCtx.Header.ContentLength > 0 {
		reqCtx.Response, err = AppendPayload(reqCtx.Response, reqCtx.Resource.File, reqCtx.Header.ContentLength)
		if errors.Is(err, ErrShortRead) {
			s.anomaly(ctx, reqCtx, err, "short_read")
		} else if err != nil {
			return err
		}
	}

	if s.WriteTimeout > 0 {
		if err := reqCtx.Conn.SetWriteDeadline(time.Now().Add(s.WriteTimeout)); err != nil {
			return fmt.Errorf("%w: %w", ErrWrite, err)
		}
	}

	// After a short read the buffer holds less than Content-Length announces.
	// Only bytes the socket dropped count as a short write.
	expected := len(reqCtx.Response)
	written, err := reqCtx.Conn.Write(reqCtx.Response)
	if err != nil {
		return fmt.Errorf("%w: wrote %d of %d bytes: %w", ErrWrite, written, expected, err)
	}
	if written < expected {
		s.anomaly(ctx, reqCtx, fmt.Errorf("%w: wrote %d of %d bytes", ErrShortWrite, written, expected), "short_write")
	}

	status := attribute.Int("http.status", int(reqCtx.Header.Status))
	s.metrics.responses.Add(ctx, 1, metric.WithAttributes(status))
	s.metrics.responseSize.Record(ctx, int64(written), metric.WithAttributes(status))
	trace.SpanFromContext(ctx).SetAttributes(status, attribute.Int64("http.response.body.size", int64(max(written-headerLength, 0))))

	return nil
}

func (s *Server) anomaly(ctx context.Context, reqCtx *RequestCtx, err error, kind string) {
	reqCtx.Logger.WarnContext(ctx, "incomplete response", "error", err)
	s.metrics.anomalies.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
	trace.SpanFromContext(ctx).AddEvent(kind)
}

func (s *Server) fail(ctx context.Context, span trace.Span, err error, reason string) {
	span.RecordError(err)
	span.SetStatus(codes.Error, reason)
	s.metrics.failures.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}

// initInstruments fills in instruments a Server literal was built without.
func (s *Server) initInstruments() {
	s.initOnce.Do(func() {
		if s.tracer == nil {
			s.tracer = otel.Tracer(instrumentationName)
		}
		if s.metrics == nil {
			m, err := newMetrics(otel.Meter(instrumentationName))
			if err != nil {
				s.logger().Error("creating instruments failed, metrics disabled", "error", err)
				m, _ = newMetrics(noop.Meter{})
			}
			s.metrics = m
		}
	})
}

func (s *Server) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Server) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}
