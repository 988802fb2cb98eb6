package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/todoledger/internal/db"
	"github.com/example/todoledger/internal/wire"
)

// DevCmd returns the dev command group for development utilities.
func DevCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:    "dev",
		Short:  "Development utilities",
		Hidden: true,
		Long: `Development utilities for working against a throwaway SQLite store.

Point --config at a development config so the real store is never touched.`,
	}

	cmd.AddCommand(devSeedCmd())
	return cmd
}

func devSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Seed an empty SQLite store with fixture entries",
		Long: `Insert seven fixture entries owned by alice, bob and carol, with ids
interleaved so owner-filtered pages have gaps to skip. Refuses to run if the
store already holds entries.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			database := wire.SQLDB()
			if database == nil {
				cfg, _ := wire.Config()
				return fmt.Errorf("dev seed needs the sqlite backend (configured: %s)", cfg.Storage.Backend)
			}

			if err := db.SeedFixtures(database); err != nil {
				return fmt.Errorf("failed to seed fixtures: %w", err)
			}
			fmt.Println("✓ Seeded fixture data")
			fmt.Println("\nTry:")
			fmt.Println("  todo entry list --owner alice --limit 2")

			return nil
		},
	}
}
