// Package worker records expense lifecycle events into the audit log,
// off the request path.
package worker

import (
	"context"
	"fmt"

	"finbook/internal/events"
	applog "finbook/internal/log"
	"finbook/internal/storage"
)

// AuditRecorder consumes expense events and appends them to the audit
// log table. Processing is idempotent enough for at-least-once delivery:
// a redelivered event produces a duplicate row, never corruption.
type AuditRecorder struct {
	storage *storage.SQLiteRepository
	logger  *applog.Logger
}

func NewAuditRecorder(store *storage.SQLiteRepository, logger *applog.Logger) *AuditRecorder {
	return &AuditRecorder{
		storage: store,
		logger:  logger.WithComponent(applog.ComponentWorker),
	}
}

// Record persists one event.
func (w *AuditRecorder) Record(ctx context.Context, ev *events.ExpenseEvent) error {
	entry := storage.AuditEntry{
		EventType:  ev.Type,
		UserID:     ev.UserID,
		ExpenseID:  ev.ExpenseID,
		OccurredAt: ev.OccurredAt,
	}
	if err := w.storage.RecordAuditEntry(ctx, entry); err != nil {
		return fmt.Errorf("record audit entry: %w", err)
	}

	w.logger.InfoContext(ctx, "Audit entry recorded",
		applog.FieldUserID, ev.UserID,
		applog.FieldExpenseID, ev.ExpenseID,
		"event_type", ev.Type)
	return nil
}

// Run consumes events from the stream until ctx is cancelled.
func (w *AuditRecorder) Run(ctx context.Context, client *events.Client) error {
	return client.Consume(ctx, func(ev *events.ExpenseEvent) error {
		return w.Record(ctx, ev)
	})
}
