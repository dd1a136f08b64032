package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/lguibr/reminders/bollywood"
	"github.com/lguibr/reminders/logger"
	"github.com/lguibr/reminders/reminder"
	"github.com/lguibr/reminders/server"
	"github.com/lguibr/reminders/utils"
)

const readHeaderTimeout = 5 * time.Second

var (
	// listenAddress overrides the configured listen address.
	listenAddress string

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run the reminder service.",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if listenAddress != "" {
				cfg.ListenAddress = listenAddress
			}

			return runServer(ctx, cfg)
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	serveCmd.Flags().StringVarP(&listenAddress, "addr", "a", "", "listen address, overrides the configuration")
}

// runServer starts the actor tree and the HTTP front end and blocks until
// ctx is cancelled or the listener fails.
func runServer(ctx context.Context, cfg utils.Config) error {
	ctx = logger.WithName(ctx, "serve")

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := reminder.NewMetrics(registry)

	engine := bollywood.NewEngine()
	if reminder.StartSupervisor(engine, cfg, metrics) == nil {
		return errors.New("failed to start supervisor")
	}
	defer engine.Shutdown(cfg.ShutdownTimeout)

	client := reminder.NewClient(engine, cfg.RequestTimeout)
	httpServer := &http.Server{
		Addr:              cfg.ListenAddress,
		Handler:           server.New(engine, client, registry).Routes(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- httpServer.ListenAndServe()
	}()
	logger.InfoKV(ctx, "reminders server listening", "address", cfg.ListenAddress)

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.ErrorKV(ctx, "http server failed", "address", cfg.ListenAddress, "error", err)
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info(ctx, "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := client.Shutdown(); err != nil {
		logger.WarnKV(ctx, "coordinator shutdown", "error", err)
	}
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.ErrorKV(ctx, "http shutdown", "error", err)
		return fmt.Errorf("http shutdown: %w", err)
	}

	return nil
}
