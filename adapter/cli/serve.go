package cli

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/taskwise/adapter/api"
	"github.com/felixgeelhaar/taskwise/internal/app"
)

const shutdownTimeout = 15 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
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

		serverConfig := api.DefaultServerConfig()
		serverConfig.Addr = cfg.APIAddr
		handler := api.NewHandler(api.HandlerConfig{
			CreateTask:     container.CreateTaskHandler,
			UpdateTask:     container.UpdateTaskHandler,
			CompleteTask:   container.CompleteTaskHandler,
			DeleteTask:     container.DeleteTaskHandler,
			ListTasks:      container.ListTasksHandler,
			GetTask:        container.GetTaskHandler,
			GetInsights:    container.GetInsightsHandler,
			GetSettings:    container.GetSettingsHandler,
			UpdateSettings: container.UpdateSettingsHandler,
			Logger:         logger,
		})
		server := api.NewServer(serverConfig, handler, container.Metrics, logger)

		errCh := make(chan error, 1)
		go func() {
			if err := server.Start(); err != nil && err != http.ErrServerClosed {
				errCh <- err
			}
		}()

		select {
		case err := <-errCh:
			return fmt.Errorf("api server: %w", err)
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
