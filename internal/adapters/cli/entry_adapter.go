// Package cli provides thin CLI adapters that translate between CLI concerns
// and application services. Adapters handle argument parsing, output formatting,
// but delegate business logic to services.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/example/todoledger/internal/core/entry"
	"github.com/example/todoledger/internal/ports/primary"
)

// EntryAdapter is a thin adapter that translates CLI operations to EntryService calls.
// It depends only on the EntryService interface, enabling easy testing with mocks.
type EntryAdapter struct {
	service primary.EntryService
	out     io.Writer
}

// NewEntryAdapter creates a new EntryAdapter with the given service.
func NewEntryAdapter(service primary.EntryService, out io.Writer) *EntryAdapter {
	return &EntryAdapter{
		service: service,
		out:     out,
	}
}

// Create creates a new entry. An empty priority means none.
func (a *EntryAdapter) Create(ctx context.Context, description, priority, owner string) error {
	req := primary.CreateEntryRequest{
		Description: description,
		Owner:       owner,
	}
	if priority != "" {
		p, err := entry.ParsePriority(priority)
		if err != nil {
			return err
		}
		req.Priority = &p
	}

	resp, err := a.service.CreateEntry(ctx, req)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "✓ Created entry %d: %s\n", resp.NewEntryID, description)
	return nil
}

// Update overrides the given fields. Empty status or priority leaves the field unchanged.
func (a *EntryAdapter) Update(ctx context.Context, id uint64, owner string, description *string, status, priority string) error {
	req := primary.UpdateEntryRequest{
		ID:          id,
		Description: description,
		Owner:       owner,
	}
	if status != "" {
		s, err := entry.ParseStatus(status)
		if err != nil {
			return err
		}
		req.Status = &s
	}
	if priority != "" {
		p, err := entry.ParsePriority(priority)
		if err != nil {
			return err
		}
		req.Priority = &p
	}

	resp, err := a.service.UpdateEntry(ctx, req)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "✓ Entry %d updated\n", resp.UpdatedEntryID)
	return nil
}

// Delete deletes an entry.
func (a *EntryAdapter) Delete(ctx context.Context, id uint64, owner string) error {
	resp, err := a.service.DeleteEntry(ctx, primary.DeleteEntryRequest{
		ID:    id,
		Owner: owner,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "✓ Deleted entry %d\n", resp.DeletedEntryID)
	return nil
}

// Show displays details for a single entry.
func (a *EntryAdapter) Show(ctx context.Context, id uint64) (*primary.Entry, error) {
	e, err := a.service.GetEntry(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get entry: %w", err)
	}

	fmt.Fprintf(a.out, "\nEntry:    %d\n", e.ID)
	fmt.Fprintf(a.out, "Owner:    %s\n", e.Owner)
	fmt.Fprintf(a.out, "Status:   %s\n", statusLabel(e.Status, 0))
	fmt.Fprintf(a.out, "Priority: %s\n", priorityLabel(e.Priority, 0))
	if e.Description != "" {
		fmt.Fprintf(a.out, "Description: %s\n", e.Description)
	}
	fmt.Fprintln(a.out)

	return e, nil
}

// List prints one page of an owner's entries.
func (a *EntryAdapter) List(ctx context.Context, owner string, startAfter *uint64, limit *uint32) error {
	resp, err := a.service.ListEntriesByOwner(ctx, primary.ListEntriesRequest{
		Owner:      owner,
		StartAfter: startAfter,
		Limit:      limit,
	})
	if err != nil {
		return fmt.Errorf("failed to list entries: %w", err)
	}

	if len(resp.Entries) == 0 {
		fmt.Fprintln(a.out, "No entries found")
		return nil
	}

	fmt.Fprintf(a.out, "\n%-8s %-12s %-8s %s\n", "ID", "STATUS", "PRIORITY", "DESCRIPTION")
	fmt.Fprintln(a.out, "────────────────────────────────────────────────────────────────")
	for _, e := range resp.Entries {
		fmt.Fprintf(a.out, "%-8d %s %s %s\n", e.ID, statusLabel(e.Status, 12), priorityLabel(e.Priority, 8), e.Description)
	}
	fmt.Fprintln(a.out)

	if len(resp.Entries) == entry.EffectiveLimit(limit) {
		last := resp.Entries[len(resp.Entries)-1].ID
		fmt.Fprintf(a.out, "More may follow: --start-after %d\n", last)
	}
	return nil
}

// statusLabel pads before colouring so escape codes do not break alignment.
func statusLabel(s entry.Status, width int) string {
	text := fmt.Sprintf("%-*s", width, s.String())
	switch s {
	case entry.StatusDone:
		return color.New(color.FgGreen).Sprint(text)
	case entry.StatusInProgress:
		return color.New(color.FgYellow).Sprint(text)
	default:
		return text
	}
}

func priorityLabel(p entry.Priority, width int) string {
	text := fmt.Sprintf("%-*s", width, p.String())
	switch p {
	case entry.PriorityHigh:
		return color.New(color.FgRed).Sprint(text)
	case entry.PriorityMedium:
		return color.New(color.FgYellow).Sprint(text)
	case entry.PriorityLow:
		return color.New(color.FgCyan).Sprint(text)
	default:
		return text
	}
}
