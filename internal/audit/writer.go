// Package audit writes the append-only project audit trail.
//
// Writes are best-effort: a failure to record an audit event must never
// fail, block, or roll back the operation that triggered it. Callers
// invoke WriteEvent after their own work has already succeeded and only
// log the failure, mirroring the MatrixNotifier.Notify contract in
// bdobrica-Ruriko's audit package.
package audit

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/emergent-company/compliance-mcp/internal/store"
)

// Event describes one audit-worthy action taken against a project.
type Event struct {
	ProjectID      string
	EventType      string
	Actor          string
	Action         string
	Details        map[string]any
	AffectedFiles  []string
	Classification string
}

// Writer records events to the shared store.
type Writer struct {
	store *store.Store
	log   *slog.Logger
}

// NewWriter creates a Writer backed by s. A nil logger defaults to slog.Default().
func NewWriter(s *store.Store, log *slog.Logger) *Writer {
	if log == nil {
		log = slog.Default()
	}
	return &Writer{store: s, log: log}
}

// WriteEvent appends evt to the audit trail. Marshaling or database
// failures are logged at WARN and swallowed — the caller's own operation
// has already completed and must not be undone because the audit write
// failed.
func (w *Writer) WriteEvent(ctx context.Context, evt Event) {
	details := evt.Details
	if details == nil {
		details = map[string]any{}
	}
	detailsJSON, err := json.Marshal(details)
	if err != nil {
		w.log.Warn("audit: failed to marshal details", "event_type", evt.EventType, "err", err)
		detailsJSON = []byte("{}")
	}

	affected := evt.AffectedFiles
	if affected == nil {
		affected = []string{}
	}
	affectedJSON, err := json.Marshal(affected)
	if err != nil {
		w.log.Warn("audit: failed to marshal affected files", "event_type", evt.EventType, "err", err)
		affectedJSON = []byte("[]")
	}

	record := &store.AuditEvent{
		ID:                uuid.NewString(),
		ProjectID:         evt.ProjectID,
		EventType:         evt.EventType,
		Actor:             evt.Actor,
		Action:            evt.Action,
		DetailsJSON:       string(detailsJSON),
		AffectedFilesJSON: string(affectedJSON),
		Classification:    evt.Classification,
		CreatedAt:         time.Now(),
	}

	if err := w.store.InsertAuditEvent(ctx, record); err != nil {
		w.log.Warn("audit: failed to write event", "project_id", evt.ProjectID, "event_type", evt.EventType, "err", err)
	}
}
