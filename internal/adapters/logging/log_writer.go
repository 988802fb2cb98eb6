// Package logging provides a secondary.LogWriter that emits audit records as
// structured log lines, for stores that have no audit table.
package logging

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/example/todoledger/internal/ctxutil"
	"github.com/example/todoledger/internal/ports/secondary"
)

// LogWriter writes audit records to a slog.Logger.
type LogWriter struct {
	logger *slog.Logger
}

// NewLogWriter creates a LogWriter. A nil logger means slog.Default().
func NewLogWriter(logger *slog.Logger) *LogWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogWriter{logger: logger.With("component", "audit")}
}

// LogCreate logs a create operation for an entity.
func (w *LogWriter) LogCreate(ctx context.Context, entityType, entityID string) error {
	w.write(ctx, entityType, entityID, "create")
	return nil
}

// LogUpdate logs an update operation for an entity field.
func (w *LogWriter) LogUpdate(ctx context.Context, entityType, entityID, fieldName, oldValue, newValue string) error {
	w.write(ctx, entityType, entityID, "update",
		slog.String("field", fieldName),
		slog.String("old", oldValue),
		slog.String("new", newValue),
	)
	return nil
}

// LogDelete logs a delete operation for an entity.
func (w *LogWriter) LogDelete(ctx context.Context, entityType, entityID string) error {
	w.write(ctx, entityType, entityID, "delete")
	return nil
}

func (w *LogWriter) write(ctx context.Context, entityType, entityID, action string, extra ...slog.Attr) {
	attrs := []slog.Attr{
		slog.String("log_id", uuid.NewString()),
		slog.String("action", action),
		slog.String("entity_type", entityType),
		slog.String("entity_id", entityID),
	}
	if actor := ctxutil.ActorFromContext(ctx); actor != "" {
		attrs = append(attrs, slog.String("actor", actor))
	}
	if requestID := ctxutil.RequestIDFromContext(ctx); requestID != "" {
		attrs = append(attrs, slog.String("request_id", requestID))
	}
	attrs = append(attrs, extra...)
	w.logger.LogAttrs(ctx, slog.LevelInfo, "audit", attrs...)
}

// Ensure LogWriter implements the interface
var _ secondary.LogWriter = (*LogWriter)(nil)
