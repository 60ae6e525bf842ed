package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"
)

var (
	ErrInvalidConfig = errors.New("config: invalid configuration")
)

const (
	DefaultAddr       = ":2020"
	DefaultServerName = "KSBT"
	DefaultLogFormat  = "text"
)

type Config struct {
	// Addr is the address the file server listens on.
	Addr string
	// Root is the directory files are served from. Empty or "." serves the
	// working directory.
	Root       string
	ServerName string

	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// AdminAddr enables the health and metrics listener when not empty.
	AdminAddr string

	LogLevel  slog.Level
	LogFormat string

	// OTLPEndpoint enables OpenTelemetry export when not empty.
	OTLPEndpoint string
}

// Load reads configuration from args, falling back to the environment
// looked up through getenv and then to the defaults.
func Load(args []string, getenv func(string) string) (Config, error) {
	var cfg Config

	env := func(key, fallback string) string {
		if v := getenv(key); v != "" {
			return v
		}
		return fallback
	}

	readTimeout, err := envDuration(getenv, "STATICD_READ_TIMEOUT")
	if err != nil {
		return cfg, err
	}
	writeTimeout, err := envDuration(getenv, "STATICD_WRITE_TIMEOUT")
	if err != nil {
		return cfg, err
	}

	var logLevel slog.Level
	if v := getenv("STATICD_LOG_LEVEL"); v != "" {
		if err := logLevel.UnmarshalText([]byte(v)); err != nil {
			return cfg, fmt.Errorf("%w: STATICD_LOG_LEVEL: %w", ErrInvalidConfig, err)
		}
	}

	flags := flag.NewFlagSet("staticd", flag.ContinueOnError)
	flags.SetOutput(io.Discard)

	flags.StringVar(&cfg.Addr, "addr", env("STATICD_ADDR", DefaultAddr), "listen address")
	flags.StringVar(&cfg.Root, "root", env("STATICD_ROOT", "."), "directory to serve files from")
	flags.StringVar(&cfg.ServerName, "server-name", env("STATICD_SERVER_NAME", DefaultServerName), "value of the Server header")
	flags.DurationVar(&cfg.ReadTimeout, "read-timeout", readTimeout, "deadline for reading a request, 0 disables")
	flags.DurationVar(&cfg.WriteTimeout, "write-timeout", writeTimeout, "deadline for writing a response, 0 disables")
	flags.StringVar(&cfg.AdminAddr, "admin-addr", getenv("STATICD_ADMIN_ADDR"), "health and metrics listen address, empty disables")
	flags.TextVar(&cfg.LogLevel, "log-level", logLevel, "debug, info, warn or error")
	flags.StringVar(&cfg.LogFormat, "log-format", env("STATICD_LOG_FORMAT", DefaultLogFormat), "text or json")
	flags.StringVar(&cfg.OTLPEndpoint, "otlp-endpoint", getenv("OTEL_EXPORTER_OTLP_ENDPOINT"), "OTLP gRPC endpoint, empty disables export")

	if err := flags.Parse(args); err != nil {
		return cfg, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

func (cfg Config) Validate() error {
	var errs []error

	if cfg.Addr == "" {
		errs = append(errs, errors.New("addr is required"))
	}
	if cfg.ServerName == "" {
		errs = append(errs, errors.New("server name is required"))
	}
	if strings.ContainsAny(cfg.ServerName, "\r\n") {
		errs = append(errs, errors.New("server name must be a single line"))
	}
	if cfg.ReadTimeout < 0 {
		errs = append(errs, errors.New("read timeout must not be negative"))
	}
	if cfg.WriteTimeout < 0 {
		errs = append(errs, errors.New("write timeout must not be negative"))
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		errs = append(errs, fmt.Errorf("unknown log format %q", cfg.LogFormat))
	}
	if cfg.AdminAddr != "" && cfg.AdminAddr == cfg.Addr {
		errs = append(errs, errors.New("admin addr must differ from addr"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

func envDuration(getenv func(string) string, key string) (time.Duration, error) {
	v := getenv(key)
	if v == "" {
		return 0, nil
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, key, err)
	}
	return d, nil
}
