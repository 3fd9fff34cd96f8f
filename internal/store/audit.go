package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// AuditEvent is one append-only row in the project's audit trail.
// DetailsJSON and AffectedFilesJSON are stored pre-marshaled so callers
// control serialization without this package importing every domain type.
type AuditEvent struct {
	ID                 string
	ProjectID          string
	EventType          string
	Actor              string
	Action             string
	DetailsJSON        string
	AffectedFilesJSON  string
	Classification     string
	CreatedAt          time.Time
}

// InsertAuditEvent appends an event. The audit trail is append-only: there
// is no update or delete path in this package.
func (s *Store) InsertAuditEvent(ctx context.Context, e *AuditEvent) error {
	if e.DetailsJSON == "" {
		e.DetailsJSON = "{}"
	}
	if e.AffectedFilesJSON == "" {
		e.AffectedFilesJSON = "[]"
	}
	e.CreatedAt = time.Now()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_trail (id, project_id, event_type, actor, action, details, affected_files, classification, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.ProjectID, e.EventType, e.Actor, e.Action, e.DetailsJSON, e.AffectedFilesJSON, e.Classification, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting audit event: %w", err)
	}
	return nil
}

// ListAuditEvents returns a project's audit trail, most recent first,
// optionally filtered to a single event type.
func (s *Store) ListAuditEvents(ctx context.Context, projectID, eventType string, limit int) ([]*AuditEvent, error) {
	if limit <= 0 {
		limit = 100
	}

	var rows *sql.Rows
	var err error
	if eventType == "" {
		rows, err = s.db.QueryContext(ctx, `
			SELECT id, project_id, event_type, actor, action, details, affected_files, classification, created_at
			FROM audit_trail WHERE project_id = ? ORDER BY created_at DESC LIMIT ?
		`, projectID, limit)
	} else {
		rows, err = s.db.QueryContext(ctx, `
			SELECT id, project_id, event_type, actor, action, details, affected_files, classification, created_at
			FROM audit_trail WHERE project_id = ? AND event_type = ? ORDER BY created_at DESC LIMIT ?
		`, projectID, eventType, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("querying audit trail: %w", err)
	}
	defer rows.Close()

	var out []*AuditEvent
	for rows.Next() {
		e := &AuditEvent{}
		if err := rows.Scan(&e.ID, &e.ProjectID, &e.EventType, &e.Actor, &e.Action, &e.DetailsJSON,
			&e.AffectedFilesJSON, &e.Classification, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning audit event: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating audit trail: %w", err)
	}
	return out, nil
}
