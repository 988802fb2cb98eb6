package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/example/todoledger/internal/config"
	"github.com/example/todoledger/internal/wire"
)

// InitCmd returns the init command
func InitCmd() *cobra.Command {
	var backend, path string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize the entry store",
		Long: `Create the entry store and run setup: the id sequence starts at 0 and
the store is tagged with this tool's name and version. Running init again
leaves existing entries and the sequence untouched.

With --backend or --path, a .todo/config.yaml is written in the current
directory first.

Examples:
  todo init
  todo init --backend leveldb --path ./.todo/entries`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("backend") || cmd.Flags().Changed("path") {
				written, err := writeLocalConfig(backend, path)
				if err != nil {
					return err
				}
				wire.SetConfigPath(written)
				fmt.Printf("✓ Wrote %s\n", written)
			}

			cfg, source := wire.Config()
			info, err := wire.Store().Info(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to read store info: %w", err)
			}

			if source == "" {
				source = "(defaults)"
			}
			fmt.Printf("✓ Store ready (%s)\n", cfg.Storage.Backend)
			fmt.Printf("  Config:   %s\n", source)
			if cfg.Storage.Backend != config.BackendMemory {
				fmt.Printf("  Path:     %s\n", cfg.Storage.Path)
			}
			fmt.Printf("  Contract: %s %s\n", info.Name, info.Version)
			fmt.Println()
			fmt.Println("Next steps:")
			fmt.Println("  todo entry create \"My first entry\" --owner $USER")
			fmt.Println("  todo entry list --owner $USER")

			return nil
		},
	}

	cmd.Flags().StringVar(&backend, "backend", config.BackendSQLite, "Storage backend: sqlite, leveldb, memory")
	cmd.Flags().StringVar(&path, "path", "", "Storage path (sqlite file or leveldb directory)")

	return cmd
}

// writeLocalConfig saves a config in the working directory and returns its path.
func writeLocalConfig(backend, path string) (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}

	cfg := config.Default()
	cfg.Storage.Backend = backend
	if path != "" {
		cfg.Storage.Path = path
	}
	if err := cfg.Validate(); err != nil {
		return "", err
	}
	if err := config.SaveConfig(cwd, cfg); err != nil {
		return "", err
	}
	return filepath.Join(cwd, ".todo", "config.yaml"), nil
}
