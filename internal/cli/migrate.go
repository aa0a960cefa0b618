package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iliyamo/parking-registry/internal/config"
	"github.com/iliyamo/parking-registry/internal/database"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the clients, parking and client_parking tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dc, err := config.LoadDatabaseConfig()
			if err != nil {
				return err
			}
			db, err := database.Open(cmd.Context(), dc)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer db.Close()

			if err := database.Migrate(cmd.Context(), db); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema ready on %s/%s\n", dc.Host, dc.Name)
			return nil
		},
	}
}
