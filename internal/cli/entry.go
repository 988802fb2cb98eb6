package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/example/todoledger/internal/ctxutil"
	"github.com/example/todoledger/internal/wire"
)

// EntryCmd returns the entry command
func EntryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "entry",
		Short: "Manage to-do entries",
		Long: `Create, update, delete and list owner-scoped to-do entries.

--owner defaults to $` + ctxutil.ActorEnvVar + ` when not given.`,
	}

	cmd.AddCommand(entryCreateCmd())
	cmd.AddCommand(entryUpdateCmd())
	cmd.AddCommand(entryDeleteCmd())
	cmd.AddCommand(entryShowCmd())
	cmd.AddCommand(entryListCmd())

	return cmd
}

func entryCreateCmd() *cobra.Command {
	var owner, priority string

	cmd := &cobra.Command{
		Use:   "create [description]",
		Short: "Create a new entry",
		Long: `Create a new entry with status to_do.

Examples:
  todo entry create "Buy milk" --owner alice
  todo entry create "Ship release" --owner alice --priority high`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, who, err := ownerContext(cmd.Context(), owner)
			if err != nil {
				return err
			}
			return wire.EntryAdapter().Create(ctx, args[0], priority, who)
		},
	}

	cmd.Flags().StringVar(&owner, "owner", "", "Owner of the entry")
	cmd.Flags().StringVar(&priority, "priority", "", "Priority: none, low, medium, high")

	return cmd
}

func entryUpdateCmd() *cobra.Command {
	var owner, description, status, priority string

	cmd := &cobra.Command{
		Use:   "update [entry-id]",
		Short: "Update fields of an entry you own",
		Long: `Override the given fields of an entry. Fields not given keep their value.

Examples:
  todo entry update 3 --owner alice --status done
  todo entry update 3 --owner alice --description "Buy oat milk" --priority low`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseEntryID(args[0])
			if err != nil {
				return err
			}
			ctx, who, err := ownerContext(cmd.Context(), owner)
			if err != nil {
				return err
			}

			var desc *string
			if cmd.Flags().Changed("description") {
				desc = &description
			}
			return wire.EntryAdapter().Update(ctx, id, who, desc, status, priority)
		},
	}

	cmd.Flags().StringVar(&owner, "owner", "", "Owner of the entry")
	cmd.Flags().StringVar(&description, "description", "", "New description")
	cmd.Flags().StringVar(&status, "status", "", "New status: to_do, in_progress, done")
	cmd.Flags().StringVar(&priority, "priority", "", "New priority: none, low, medium, high")

	return cmd
}

func entryDeleteCmd() *cobra.Command {
	var owner string

	cmd := &cobra.Command{
		Use:   "delete [entry-id]",
		Short: "Delete an entry you own",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseEntryID(args[0])
			if err != nil {
				return err
			}
			ctx, who, err := ownerContext(cmd.Context(), owner)
			if err != nil {
				return err
			}
			return wire.EntryAdapter().Delete(ctx, id, who)
		},
	}

	cmd.Flags().StringVar(&owner, "owner", "", "Owner of the entry")

	return cmd
}

func entryShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [entry-id]",
		Short: "Show entry details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseEntryID(args[0])
			if err != nil {
				return err
			}
			_, err = wire.EntryAdapter().Show(cmd.Context(), id)
			return err
		},
	}
}

func entryListCmd() *cobra.Command {
	var owner string
	var startAfter uint64
	var limit uint32

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List an owner's entries, one page at a time",
		Long: `List entries in ascending id order.

The default page size is 10 and the maximum is 30. Pass the last id of a
page as --start-after to fetch the next one.

Examples:
  todo entry list --owner alice
  todo entry list --owner alice --limit 30 --start-after 42`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, who, err := ownerContext(cmd.Context(), owner)
			if err != nil {
				return err
			}

			var after *uint64
			if cmd.Flags().Changed("start-after") {
				after = &startAfter
			}
			var lim *uint32
			if cmd.Flags().Changed("limit") {
				lim = &limit
			}
			return wire.EntryAdapter().List(ctx, who, after, lim)
		},
	}

	cmd.Flags().StringVar(&owner, "owner", "", "Owner whose entries to list")
	cmd.Flags().Uint64Var(&startAfter, "start-after", 0, "Return entries with id greater than this")
	cmd.Flags().Uint32Var(&limit, "limit", 0, "Page size (default 10, max 30)")

	return cmd
}

// resolveOwner returns the flag value, falling back to the actor environment variable.
func resolveOwner(flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	if env := ctxutil.ActorFromEnv(); env != "" {
		return env, nil
	}
	return "", fmt.Errorf("--owner is required (or set %s)", ctxutil.ActorEnvVar)
}

// ownerContext resolves the owner and records it as the acting identity.
func ownerContext(ctx context.Context, flag string) (context.Context, string, error) {
	owner, err := resolveOwner(flag)
	if err != nil {
		return nil, "", err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return ctxutil.WithActorID(ctx, owner), owner, nil
}

func parseEntryID(s string) (uint64, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid entry id %q: must be a non-negative integer", s)
	}
	return id, nil
}
