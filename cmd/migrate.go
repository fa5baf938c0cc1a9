package cmd

import (
	"github.com/spf13/cobra"
)

// migrateCmd creates or updates the catalog schema.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the catalog schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openCatalog()
		if err != nil {
			return err
		}
		defer a.logger.Sync()
		a.logger.Info("Catalog schema is up to date")
		return nil
	},
}

func init() {
	RootCmd.AddCommand(migrateCmd)
}
