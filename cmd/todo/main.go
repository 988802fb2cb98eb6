package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/todoledger/internal/cli"
	"github.com/example/todoledger/internal/version"
	"github.com/example/todoledger/internal/wire"
)

func main() {
	var configPath string
	var verbose bool

	rootCmd := &cobra.Command{
		Use:     "todo",
		Short:   "todo - owner-scoped to-do ledger",
		Version: version.String(),
		Long: `todo keeps a ledger of to-do entries. Every entry belongs to one owner,
and only that owner can update or delete it.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cli.SetupLogging(os.Stderr, verbose)
			wire.SetConfigPath(configPath)
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default .todo/config.yaml, then ~/.todo/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging")

	// Add subcommands
	rootCmd.AddCommand(cli.InitCmd())
	rootCmd.AddCommand(cli.EntryCmd())
	rootCmd.AddCommand(cli.LogCmd())
	rootCmd.AddCommand(cli.ServeCmd())
	rootCmd.AddCommand(cli.DoctorCmd())

	// Developer tools
	rootCmd.AddCommand(cli.DevCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
