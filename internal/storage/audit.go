package storage

import (
	"context"
	"fmt"
	"time"
)

// AuditEntry is one recorded expense lifecycle event, written by the
// worker from the event stream.
type AuditEntry struct {
	ID         int64
	EventType  string
	UserID     int64
	ExpenseID  int64
	OccurredAt time.Time
	RecordedAt time.Time
}

// RecordAuditEntry appends an event to the audit log.
func (r *SQLiteRepository) RecordAuditEntry(ctx context.Context, e AuditEntry) error {
	if e.RecordedAt.IsZero() {
		e.RecordedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO audit_log (event_type, user_id, expense_id, occurred_at, recorded_at) VALUES (?, ?, ?, ?, ?)`,
		e.EventType, e.UserID, e.ExpenseID, e.OccurredAt, e.RecordedAt)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

// ListAuditEntries returns the most recent audit entries for a user,
// newest first.
func (r *SQLiteRepository) ListAuditEntries(ctx context.Context, userID int64, limit int) ([]AuditEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, event_type, user_id, expense_id, occurred_at, recorded_at
		 FROM audit_log WHERE user_id = ?
		 ORDER BY occurred_at DESC, id DESC LIMIT ?`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	defer rows.Close()

	entries := make([]AuditEntry, 0)
	for rows.Next() {
		var e AuditEntry
		if err := rows.Scan(&e.ID, &e.EventType, &e.UserID, &e.ExpenseID, &e.OccurredAt, &e.RecordedAt); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit entries: %w", err)
	}
	return entries, nil
}
