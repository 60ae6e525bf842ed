package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/freekieb7/staticd/admin"
	"github.com/freekieb7/staticd/config"
	"github.com/freekieb7/staticd/filesystem"
	"github.com/freekieb7/staticd/http"
	"github.com/freekieb7/staticd/telemetry"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		log.Fatalln(err)
	}
}

func run() error {
	// Handle SIGINT (CTRL+C) and SIGTERM gracefully.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(os.Args[1:], os.Getenv)
	if err != nil {
		return err
	}

	shutdownTelemetry, err := telemetry.Setup(ctx, telemetry.Options{
		Endpoint:       cfg.OTLPEndpoint,
		ServiceName:    telemetry.ServiceName,
		ServiceVersion: version(),
	})
	if err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(ctx); err != nil {
			slog.Error("telemetry shutdown error", "error", err)
		}
	}()

	logger := telemetry.NewLogger(os.Stderr, telemetry.LoggerOptions{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		Export: cfg.OTLPEndpoint != "",
	})
	slog.SetDefault(logger)

	server, err := http.NewServer(cfg.ServerName, filesystem.NewResolver(filesystem.NewLocalFileSystem(cfg.Root)))
	if err != nil {
		return err
	}
	server.Logger = logger
	server.ReadTimeout = cfg.ReadTimeout
	server.WriteTimeout = cfg.WriteTimeout

	var adminServer *admin.Server
	if cfg.AdminAddr != "" {
		adminServer, err = admin.NewServer(cfg.AdminAddr, server.ActiveConns, logger)
		if err != nil {
			return err
		}
	}

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		logger.Info("listening and serving", "addr", cfg.Addr, "root", cfg.Root)
		err := server.ListenAndServe(groupCtx, cfg.Addr)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})

	if adminServer != nil {
		group.Go(func() error {
			logger.Info("admin listening", "addr", cfg.AdminAddr)
			return adminServer.ListenAndServe()
		})
	}

	group.Go(func() error {
		<-groupCtx.Done()
		logger.Info("shutting down")

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		err := server.Shutdown(ctx)
		if adminServer != nil {
			err = errors.Join(err, adminServer.Shutdown(ctx))
		}
		return err
	})

	return group.Wait()
}

// version reports the module version stamped by the go tool, if any.
func version() string {
	info, ok := debug.ReadBuildInfo()
	if !ok || info.Main.Version == "(devel)" {
		return ""
	}
	return info.Main.Version
}
