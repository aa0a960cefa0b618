// Package cli implements parkingctl, the operator command line for the
// parking registry.
package cli

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// NewRootCmd builds the parkingctl command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "parkingctl",
		Short: "Operator tooling for the parking registry",
		Long: `parkingctl creates the database schema and issues admin credentials
for the parking registry server.  Settings are read from the environment
and from a .env file in the working directory.`,
		SilenceUsage: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			_ = godotenv.Load()
		},
	}
	root.AddCommand(newMigrateCmd(), newTokenCmd(), newHashPasswordCmd())
	return root
}

// Execute runs parkingctl with os.Args.
func Execute() error {
	return NewRootCmd().Execute()
}
