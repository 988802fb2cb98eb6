package secondary

import "context"

// LogWriter defines the interface for writing audit log entries.
// Implementations extract the actor from context.
type LogWriter interface {
	// LogCreate logs a create operation for an entity.
	LogCreate(ctx context.Context, entityType, entityID string) error

	// LogUpdate logs an update operation for an entity field.
	// fieldName, oldValue, newValue describe what changed.
	LogUpdate(ctx context.Context, entityType, entityID, fieldName, oldValue, newValue string) error

	// LogDelete logs a delete operation for an entity.
	LogDelete(ctx context.Context, entityType, entityID string) error
}

// AuditLogReader reads back what a LogWriter stored.
// Only backends with an audit table implement it.
type AuditLogReader interface {
	// List retrieves audit records matching the filters, oldest first.
	List(ctx context.Context, filters AuditLogFilters) ([]*AuditLogRecord, error)

	// PruneOlderThan deletes records older than days and returns how many were removed.
	PruneOlderThan(ctx context.Context, days int) (int, error)
}

// AuditLogRecord represents an audit log row as stored in persistence.
type AuditLogRecord struct {
	ID         string
	ActorID    string // Empty string means null
	EntityType string
	EntityID   string
	Action     string // create, update, delete
	FieldName  string // Empty string means null
	OldValue   string // Empty string means null
	NewValue   string // Empty string means null
	CreatedAt  string
}

// AuditLogFilters contains filter options for querying audit log rows.
type AuditLogFilters struct {
	EntityType string
	EntityID   string
	ActorID    string
	Limit      int
}
