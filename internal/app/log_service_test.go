package app

import (
	"context"
	"errors"
	"testing"

	"github.com/example/todoledger/internal/ports/primary"
	"github.com/example/todoledger/internal/ports/secondary"
)

// mockAuditLogReader implements secondary.AuditLogReader for testing.
type mockAuditLogReader struct {
	records     []*secondary.AuditLogRecord
	lastFilters secondary.AuditLogFilters
	prunedDays  int
	listErr     error
}

func (m *mockAuditLogReader) List(ctx context.Context, filters secondary.AuditLogFilters) ([]*secondary.AuditLogRecord, error) {
	m.lastFilters = filters
	if m.listErr != nil {
		return nil, m.listErr
	}
	var result []*secondary.AuditLogRecord
	for _, r := range m.records {
		if filters.EntityID != "" && r.EntityID != filters.EntityID {
			continue
		}
		if filters.ActorID != "" && r.ActorID != filters.ActorID {
			continue
		}
		result = append(result, r)
	}
	if filters.Limit > 0 && len(result) > filters.Limit {
		result = result[:filters.Limit]
	}
	return result, nil
}

func (m *mockAuditLogReader) PruneOlderThan(ctx context.Context, days int) (int, error) {
	m.prunedDays = days
	return 2, nil
}

func newTestLogService() (*LogServiceImpl, *mockAuditLogReader) {
	reader := &mockAuditLogReader{
		records: []*secondary.AuditLogRecord{
			{ID: "a", ActorID: "alice", EntityType: "entry", EntityID: "1", Action: "create"},
			{ID: "b", ActorID: "alice", EntityType: "entry", EntityID: "1", Action: "update", FieldName: "status", OldValue: "to_do", NewValue: "done"},
			{ID: "c", ActorID: "bob", EntityType: "entry", EntityID: "2", Action: "create"},
		},
	}
	return NewLogService(reader), reader
}

// ============================================================================
// ListLogs Tests
// ============================================================================

func TestListLogs_ByEntity(t *testing.T) {
	service, reader := newTestLogService()

	entries, err := service.ListLogs(context.Background(), primary.LogFilters{EntityID: "1"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[1].FieldName != "status" || entries[1].NewValue != "done" {
		t.Errorf("unexpected update entry %+v", entries[1])
	}
	if reader.lastFilters.EntityType != "entry" {
		t.Errorf("expected entity type filter 'entry', got %q", reader.lastFilters.EntityType)
	}
}

func TestListLogs_ByActorWithLimit(t *testing.T) {
	service, _ := newTestLogService()

	entries, err := service.ListLogs(context.Background(), primary.LogFilters{ActorID: "alice", Limit: 1})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(entries) != 1 || entries[0].ID != "a" {
		t.Errorf("expected first alice record, got %+v", entries)
	}
}

func TestListLogs_Error(t *testing.T) {
	service, reader := newTestLogService()
	reader.listErr = errors.New("db closed")

	if _, err := service.ListLogs(context.Background(), primary.LogFilters{}); err == nil {
		t.Fatal("expected error, got nil")
	}
}

// ============================================================================
// PruneLogs Tests
// ============================================================================

func TestPruneLogs(t *testing.T) {
	service, reader := newTestLogService()

	n, err := service.PruneLogs(context.Background(), 30)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if n != 2 || reader.prunedDays != 30 {
		t.Errorf("expected 2 pruned for 30 days, got %d for %d", n, reader.prunedDays)
	}
}

func TestPruneLogs_RejectsNonPositiveDays(t *testing.T) {
	service, _ := newTestLogService()

	if _, err := service.PruneLogs(context.Background(), 0); err == nil {
		t.Fatal("expected error for 0 days")
	}
}
