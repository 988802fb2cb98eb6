package app

import (
	"context"
	"fmt"

	"github.com/example/todoledger/internal/ports/primary"
	"github.com/example/todoledger/internal/ports/secondary"
)

// LogServiceImpl implements the LogService interface.
type LogServiceImpl struct {
	reader secondary.AuditLogReader
}

// NewLogService creates a new LogService with injected dependencies.
func NewLogService(reader secondary.AuditLogReader) *LogServiceImpl {
	return &LogServiceImpl{
		reader: reader,
	}
}

// ListLogs retrieves entry audit records matching the given filters.
func (s *LogServiceImpl) ListLogs(ctx context.Context, filters primary.LogFilters) ([]*primary.LogEntry, error) {
	records, err := s.reader.List(ctx, secondary.AuditLogFilters{
		EntityType: entityTypeEntry,
		EntityID:   filters.EntityID,
		ActorID:    filters.ActorID,
		Limit:      filters.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list logs: %w", err)
	}

	entries := make([]*primary.LogEntry, len(records))
	for i, r := range records {
		entries[i] = recordToLogEntry(r)
	}
	return entries, nil
}

// PruneLogs deletes audit records older than the specified number of days.
func (s *LogServiceImpl) PruneLogs(ctx context.Context, olderThanDays int) (int, error) {
	if olderThanDays <= 0 {
		return 0, fmt.Errorf("days must be positive, got %d", olderThanDays)
	}
	return s.reader.PruneOlderThan(ctx, olderThanDays)
}

func recordToLogEntry(r *secondary.AuditLogRecord) *primary.LogEntry {
	return &primary.LogEntry{
		ID:         r.ID,
		ActorID:    r.ActorID,
		EntityType: r.EntityType,
		EntityID:   r.EntityID,
		Action:     r.Action,
		FieldName:  r.FieldName,
		OldValue:   r.OldValue,
		NewValue:   r.NewValue,
		CreatedAt:  r.CreatedAt,
	}
}

// Ensure LogServiceImpl implements the interface
var _ primary.LogService = (*LogServiceImpl)(nil)
