// cmd/migrate.go
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ucook/accessflow/db"
	logger "github.com/ucook/accessflow/logging"
)

func MigrateCMD() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			defer logger.Sync()

			gdb, err := db.Connect(cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close(gdb)
			if err := db.Migrate(gdb); err != nil {
				return err
			}
			logger.Info("Schema is up to date")
			return nil
		},
	}
}
