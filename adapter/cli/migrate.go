package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/taskwise/internal/app"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}

		// The container runs migrations while wiring up.
		container, err := app.NewContainer(cmd.Context(), cfg, logger)
		if err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		container.Close()

		logger.Info("migrations applied", "driver", container.DBDriver)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
