package admin

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Server exposes process health and Prometheus metrics on a separate
// listener, away from the file server.
type Server struct {
	server *http.Server
}

// NewServer builds the admin server. activeConns reports the number of file
// server connections in flight and is published as a gauge.
func NewServer(addr string, activeConns func() int64, logger *slog.Logger) (*Server, error) {
	registry := prometheus.NewRegistry()

	err := errors.Join(
		registry.Register(collectors.NewGoCollector()),
		registry.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{})),
		registry.Register(prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Namespace: "staticd",
				Name:      "active_connections",
				Help:      "Number of connections currently being served",
			},
			func() float64 { return float64(activeConns()) },
		)),
	)
	if err != nil {
		return nil, err
	}

	router := http.NewServeMux()
	readOnly := []string{http.MethodGet, http.MethodHead}
	router.Handle("/healthz", MethodCheckMiddleware(readOnly, http.HandlerFunc(health)))
	router.Handle("/metrics", MethodCheckMiddleware(readOnly, promhttp.HandlerFor(registry, promhttp.HandlerOpts{
		Registry:          registry,
		EnableOpenMetrics: true,
	})))

	return &Server{
		server: &http.Server{
			Addr:              addr,
			Handler:           otelhttp.NewHandler(RecoverMiddleware(logger, router), "admin"),
			ReadHeaderTimeout: 5 * time.Second,
			ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelError),
		},
	}, nil
}

func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// ListenAndServe serves until Shutdown. It returns nil after a Shutdown.
func (s *Server) ListenAndServe() error {
	listener, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return err
	}

	return s.Serve(listener)
}

func (s *Server) Serve(listener net.Listener) error {
	if err := s.server.Serve(listener); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok\n"))
}
