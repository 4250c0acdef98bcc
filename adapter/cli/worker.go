package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/taskwise/internal/app"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run the background worker",
	Long: `Runs the outbox processor and the periodic insight refresh
without the HTTP API. Useful for scaling background work separately.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		container, err := app.NewContainer(ctx, cfg, logger)
		if err != nil {
			return fmt.Errorf("initialize container: %w", err)
		}
		defer container.Close()

		container.OutboxProcessor.Start(ctx)
		container.RefreshWorker.Start(ctx)

		// Purge published outbox rows past retention.
		go func() {
			ticker := time.NewTicker(cfg.OutboxCleanupInterval)
			defer ticker.Stop()
			retention := time.Duration(cfg.OutboxRetentionDays) * 24 * time.Hour
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					deleted, err := container.OutboxRepo.DeleteOld(ctx, retention)
					if err != nil {
						logger.Error("outbox cleanup failed", "error", err)
						continue
					}
					if deleted > 0 {
						logger.Info("outbox cleanup completed", "deleted", deleted)
					}
				}
			}
		}()

		var healthServer *http.Server
		if cfg.WorkerHealthAddr != "" {
			mux := http.NewServeMux()
			mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
			})
			mux.Handle("GET /metrics", container.Metrics.Handler())

			healthServer = &http.Server{Addr: cfg.WorkerHealthAddr, Handler: mux}
			go func() {
				logger.Info("worker health endpoint listening", "addr", cfg.WorkerHealthAddr)
				if err := healthServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Error("worker health endpoint failed", "error", err)
				}
			}()
		}

		logger.Info("worker started",
			"refresh_interval", cfg.RefreshInterval,
			"outbox_poll_interval", cfg.OutboxPollInterval,
		)

		<-ctx.Done()
		logger.Info("shutting down worker")

		if healthServer != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			_ = healthServer.Shutdown(shutdownCtx)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(workerCmd)
}
