package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/workpad/internal/cli"
	"github.com/aretw0/workpad/internal/presentation/tui"
	httpAdapter "github.com/aretw0/workpad/pkg/adapters/http"
	"github.com/aretw0/workpad/pkg/domain"
	"github.com/aretw0/workpad/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  `Exposes the workpad store as a JSON API over HTTP, with server-sent diff events and Prometheus metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

		metrics, err := observability.NewMetrics(reg)
		if err != nil {
			return err
		}

		a, err := setup(cmd, reg,
			func(*slog.Logger) domain.LifecycleHooks { return metrics.Hooks() },
			observability.AuditHooks,
		)
		if err != nil {
			return err
		}
		defer a.Close()

		scheduler, err := cli.StartBackup(a.cfg.Backup, a.backend, a.logger)
		if err != nil {
			return err
		}
		if scheduler != nil {
			defer scheduler.Stop(context.Background())
		}

		addr := a.cfg.HTTP.Addr
		if port, _ := cmd.Flags().GetString("port"); port != "" {
			addr = ":" + port
		}

		opts := []httpAdapter.Option{httpAdapter.WithLogger(a.logger)}
		if a.cfg.HTTP.Metrics {
			opts = append(opts, httpAdapter.WithMetrics(reg))
		}
		srv := &http.Server{
			Addr:              addr,
			Handler:           httpAdapter.NewHandler(a.manager, opts...),
			ReadHeaderTimeout: 10 * time.Second,
		}

		if tui.IsTerminal() {
			tui.PrintBanner(os.Stderr)
		}

		serverErrors := make(chan error, 1)
		go func() {
			a.logger.Info("Starting workpad server", "addr", srv.Addr, "store", a.backend.Name)
			serverErrors <- srv.ListenAndServe()
		}()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		select {
		case err := <-serverErrors:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("server error: %w", err)
		case <-ctx.Done():
			a.logger.Info("Shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				a.logger.Warn("Graceful shutdown did not complete", "err", err)
				return srv.Close()
			}
			a.logger.Info("Workpad server stopped gracefully")
			return nil
		}
	},
}

func init() {
	serveCmd.Flags().StringP("port", "p", "", "Port to listen on (overrides http.addr)")
	rootCmd.AddCommand(serveCmd)
}
