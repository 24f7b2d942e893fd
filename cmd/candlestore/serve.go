package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"candlestore/internal/api"
	"candlestore/internal/progress"

	"github.com/google/subcommands"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

type serveCmd struct {
	addr string
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "serves the import and symbol API over HTTP" }
func (*serveCmd) Usage() string {
	return `candlestore serve [-addr :8080]

Starts the HTTP API used by the desktop shell. Import progress is streamed
to websocket clients of /api/events and counted at /metrics.
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.addr, "addr", "", "Listen address (default from config server.addr)")
}

func (c *serveCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, log, err := bootstrap()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	hub := progress.NewHub(log)
	defer hub.Close()
	metrics := progress.NewMetrics()

	a, err := newApp(ctx, cfg, log, progress.Multi{hub, metrics})
	if err != nil {
		log.Error("failed to open store", zap.Error(err))
		return subcommands.ExitFailure
	}
	defer a.close()

	router, err := api.NewRouter(a.svc, hub, metrics.Handler(), a.logger)
	if err != nil {
		a.logger.Error("failed to build router", zap.Error(err))
		return subcommands.ExitFailure
	}

	addr := c.addr
	if addr == "" {
		addr = a.cfg.Server.Addr
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("Starting server", zap.String("addr", addr), zap.String("store", a.cfg.Store.Backend))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			a.logger.Error("Failed to start server", zap.Error(err))
			return subcommands.ExitFailure
		}
	case <-ctx.Done():
	}

	a.logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("Server forced to shutdown", zap.Error(err))
		return subcommands.ExitFailure
	}
	a.logger.Info("Server exited properly")
	return subcommands.ExitSuccess
}
