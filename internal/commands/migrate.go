package commands

import (
	"github.com/spf13/cobra"

	"toast/api/internal/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		pool, db, err := database.Open(cmd.Context(), cfg.Postgres)
		if err != nil {
			return err
		}
		defer pool.Close()
		defer db.Close()

		if err := database.Migrate(cmd.Context(), db); err != nil {
			return err
		}
		logger.Info().Msg("migrations applied")
		return nil
	},
}
