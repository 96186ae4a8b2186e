package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/aretw0/pagecraft/internal/presentation/tui"
	pchttp "github.com/aretw0/pagecraft/pkg/adapters/http"
	"github.com/aretw0/pagecraft/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP document server",
	Long: `Serves stored documents over a JSON API: component CRUD, imports, HTML
rendering and export, plus a server-sent event stream of tree diffs.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := app.cfg
		logger := app.logger
		if cmd.Flags().Changed("port") {
			cfg.Server.Port, _ = cmd.Flags().GetInt("port")
		}

		var metrics *observability.Metrics
		var metricsHandler http.Handler
		if cfg.Server.Metrics {
			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			metrics = observability.NewMetrics(reg)
			metricsHandler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
		}

		streams := pchttp.NewStreamManager(logger)
		sessions, closeStore, err := newSessions(cmd.Context(), cfg, logger, metrics, streams.Publish)
		if err != nil {
			return err
		}
		defer closeStore()

		opts := []pchttp.Option{
			pchttp.WithStreams(streams),
			pchttp.WithLogger(logger),
		}
		if metricsHandler != nil {
			opts = append(opts, pchttp.WithMetricsHandler(metricsHandler))
		}
		if cfg.Publish.Enabled() {
			publisher, err := openPublisher(cfg.Publish)
			if err != nil {
				return err
			}
			if err := publisher.EnsureBucket(cmd.Context()); err != nil {
				return err
			}
			opts = append(opts, pchttp.WithPublisher(publisher))
		}

		srv := &http.Server{
			Addr:         net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
			Handler:      pchttp.NewHandler(sessions, opts...),
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
			IdleTimeout:  cfg.Server.IdleTimeout,
		}

		if isTerminal(cmd) {
			tui.PrintBanner(cmd.OutOrStdout())
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)
		go func() {
			logger.Info("starting pagecraft server", "addr", srv.Addr, "store", cfg.Store.Driver, "metrics", cfg.Server.Metrics)
			serverErrors <- srv.ListenAndServe()
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(shutdown)

		select {
		case err := <-serverErrors:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("server error: %w", err)

		case sig := <-shutdown:
			logger.Info("shutting down", "signal", sig.String())

			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				logger.Warn("graceful shutdown did not complete", "timeout", shutdownTimeout, "error", err)
				if err := srv.Close(); err != nil {
					return fmt.Errorf("close server: %w", err)
				}
			}
			logger.Info("pagecraft server stopped gracefully")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on (overrides server.port)")
}
