package cli

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/todoledger/internal/config"
	"github.com/example/todoledger/internal/db"
	"github.com/example/todoledger/internal/ports/secondary"
	"github.com/example/todoledger/internal/version"
	"github.com/example/todoledger/internal/wire"
)

// CheckResult represents the outcome of a single check
type CheckResult struct {
	Name    string
	Status  string // "✓", "⚠", "✗"
	Details string // Only shown if Status != "✓"
}

// DoctorCmd returns the doctor command for store validation
func DoctorCmd() *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Validate the configured entry store",
		Long: `Health check for the configured entry store.

Reports the backend, config source, contract tag and the current value of
the id sequence. SQLite stores also report their schema version.

Examples:
  todo doctor              # Run full health check
  todo doctor --quiet      # Exit code only (0=healthy, 1=issues)`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cfg, source := wire.Config()
			store := wire.Store()

			results := []CheckResult{
				checkConfig(cfg, source),
				checkContract(ctx, store),
				checkSequence(ctx, store),
			}
			if database := wire.SQLDB(); database != nil {
				results = append(results, checkSchema(database))
			}

			hasErrors := false
			for _, r := range results {
				if r.Status == "✗" {
					hasErrors = true
					break
				}
			}

			if !quiet {
				fmt.Println()
				fmt.Println("Check              Status")
				fmt.Println("─────────────────────────")
				for _, r := range results {
					fmt.Printf("%-18s %s\n", r.Name, colorStatus(r.Status))
				}
				fmt.Println()
				for _, r := range results {
					if r.Details != "" {
						fmt.Printf("%s: %s\n", r.Name, r.Details)
					}
				}
				fmt.Println()
			}

			if hasErrors {
				return fmt.Errorf("doctor found problems")
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Exit code only")

	return cmd
}

func checkConfig(cfg *config.Config, source string) CheckResult {
	if source == "" {
		source = "defaults"
	}
	details := fmt.Sprintf("backend %s from %s", cfg.Storage.Backend, source)
	if cfg.Storage.Backend != config.BackendMemory {
		details += fmt.Sprintf(", path %s", cfg.Storage.Path)
	}
	if cfg.Storage.Backend == config.BackendMemory {
		return CheckResult{Name: "Config", Status: "⚠", Details: details + " (entries are lost on exit)"}
	}
	return CheckResult{Name: "Config", Status: "✓", Details: details}
}

func checkContract(ctx context.Context, store secondary.Store) CheckResult {
	info, err := store.Info(ctx)
	if err != nil {
		return CheckResult{Name: "Contract", Status: "✗", Details: err.Error()}
	}
	if info.Name != version.Name {
		return CheckResult{Name: "Contract", Status: "✗",
			Details: fmt.Sprintf("store belongs to %q, expected %q", info.Name, version.Name)}
	}
	details := fmt.Sprintf("%s %s", info.Name, info.Version)
	if info.Version != version.Version {
		return CheckResult{Name: "Contract", Status: "⚠",
			Details: details + fmt.Sprintf(" (binary is %s)", version.Version)}
	}
	return CheckResult{Name: "Contract", Status: "✓", Details: details}
}

func checkSequence(ctx context.Context, store secondary.Store) CheckResult {
	var current uint64
	err := store.View(ctx, func(tx secondary.Tx) error {
		var err error
		current, err = tx.Sequence().Current(ctx)
		return err
	})
	if err != nil {
		return CheckResult{Name: "Sequence", Status: "✗", Details: err.Error()}
	}
	return CheckResult{Name: "Sequence", Status: "✓", Details: fmt.Sprintf("last issued id %d", current)}
}

func checkSchema(database *sql.DB) CheckResult {
	current, err := db.CurrentVersion(database)
	if err != nil {
		return CheckResult{Name: "Schema", Status: "✗", Details: err.Error()}
	}
	latest := db.LatestVersion()
	if current != latest {
		return CheckResult{Name: "Schema", Status: "⚠",
			Details: fmt.Sprintf("schema version %d, binary expects %d", current, latest)}
	}
	return CheckResult{Name: "Schema", Status: "✓", Details: fmt.Sprintf("schema version %d", current)}
}

func colorStatus(status string) string {
	switch status {
	case "✓":
		return color.New(color.FgGreen).Sprint(status)
	case "⚠":
		return color.New(color.FgYellow).Sprint(status)
	default:
		return color.New(color.FgRed).Sprint(status)
	}
}
