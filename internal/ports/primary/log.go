package primary

import "context"

// LogService defines the primary port for the entry audit trail.
type LogService interface {
	// ListLogs retrieves audit records matching the given filters, oldest first.
	ListLogs(ctx context.Context, filters LogFilters) ([]*LogEntry, error)

	// PruneLogs deletes audit records older than the specified number of days.
	PruneLogs(ctx context.Context, olderThanDays int) (int, error)
}

// LogEntry represents an audit record at the port boundary.
type LogEntry struct {
	ID         string
	ActorID    string
	EntityType string
	EntityID   string
	Action     string // 'create', 'update', 'delete'
	FieldName  string // For updates only
	OldValue   string
	NewValue   string
	CreatedAt  string
}

// LogFilters contains filter options for querying audit records.
type LogFilters struct {
	EntityID string
	ActorID  string
	Limit    int
}
