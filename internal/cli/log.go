package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/todoledger/internal/ports/primary"
	"github.com/example/todoledger/internal/wire"
)

// LogCmd returns the log command
func LogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "log",
		Short: "View the entry audit trail",
		Long:  "View and prune the audit trail of entry changes (sqlite backend only)",
	}

	cmd.AddCommand(logShowCmd())
	cmd.AddCommand(logPruneCmd())

	return cmd
}

func logShowCmd() *cobra.Command {
	var actorID string
	var limit int

	cmd := &cobra.Command{
		Use:   "show [entry-id]",
		Short: "Show activity for an entry, or for all entries",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			service, err := wire.LogService()
			if err != nil {
				return err
			}

			filters := primary.LogFilters{
				ActorID: actorID,
				Limit:   limit,
			}
			if len(args) > 0 {
				id, err := parseEntryID(args[0])
				if err != nil {
					return err
				}
				filters.EntityID = fmt.Sprint(id)
			}

			entries, err := service.ListLogs(cmd.Context(), filters)
			if err != nil {
				return fmt.Errorf("failed to fetch logs: %w", err)
			}

			printLogEntries(entries)
			return nil
		},
	}

	cmd.Flags().StringVar(&actorID, "actor", "", "Only changes made by this actor")
	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "Maximum records to show (0 = all)")

	return cmd
}

func logPruneCmd() *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete old audit records",
		Long:  "Delete audit records older than the specified number of days (default 30)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			service, err := wire.LogService()
			if err != nil {
				return err
			}

			count, err := service.PruneLogs(cmd.Context(), days)
			if err != nil {
				return fmt.Errorf("failed to prune logs: %w", err)
			}

			if count == 0 {
				fmt.Printf("No log entries older than %d days found.\n", days)
			} else {
				fmt.Printf("Pruned %d log entries older than %d days.\n", count, days)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", 30, "Age threshold in days")

	return cmd
}

func printLogEntries(entries []*primary.LogEntry) {
	if len(entries) == 0 {
		fmt.Println("No log entries found.")
		return
	}

	fmt.Printf("Found %d log entries:\n\n", len(entries))
	for _, e := range entries {
		printLogEntry(e)
	}
}

func printLogEntry(e *primary.LogEntry) {
	actor := e.ActorID
	if actor == "" {
		actor = "-"
	}

	// Format: timestamp | actor | action | entity_type/entity_id | field change
	fmt.Printf("%s | %-12s | %s %s | %s/%s",
		formatTimestamp(e.CreatedAt),
		actor,
		actionIcon(e.Action),
		e.Action,
		e.EntityType,
		e.EntityID,
	)
	if e.Action == "update" && e.FieldName != "" {
		fmt.Printf(" | %s: %s -> %s", e.FieldName, e.OldValue, e.NewValue)
	}
	fmt.Println()
}

func actionIcon(action string) string {
	switch action {
	case "create":
		return "+"
	case "update":
		return "~"
	case "delete":
		return "-"
	default:
		return "?"
	}
}

func formatTimestamp(ts string) string {
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return ts
	}
	return t.Local().Format("2006-01-02 15:04:05")
}
