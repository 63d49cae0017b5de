package cmd

import (
	"melodex/cache"
	"melodex/config"
	"melodex/db"
	"melodex/logger"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete all catalog data",
	Long: `Delete every row from every catalog table, children before parents,
with referential integrity checks suspended for the duration.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()

		if err := db.ConnectDB(cfg); err != nil {
			return err
		}
		defer db.CloseDB()

		if err := db.ResetCatalog(cmd.Context(), db.DB); err != nil {
			return err
		}

		if err := db.ConnectRedis(cfg); err == nil {
			defer db.CloseRedis()
			if err := cache.Invalidate(cmd.Context()); err != nil {
				logger.Warn("failed to invalidate analytics cache", logger.ErrorField(err))
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(resetCmd)
}
